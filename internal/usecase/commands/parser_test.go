package commands

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"catcmd/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.FixedZone("CET", 3600))

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	reg, err := BuiltinRegistry()
	if err != nil {
		t.Fatalf("BuiltinRegistry: %v", err)
	}
	return NewParser(reg, WithClock(func() time.Time { return fixedNow }))
}

func TestParseNotACommand(t *testing.T) {
	p := newTestParser(t)
	for _, line := range []string{"", "   ", "hello world", "it's a trap", "say !tts hi", "!", "! tts hello"} {
		cmd, err := p.Parse(line)
		if err != nil || cmd != nil {
			t.Fatalf("Parse(%q) = %v, %v; want not a command", line, cmd, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse("!nonexistent")
	var unknown *UnknownCommandError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownCommandError", err)
	}
	if unknown.Name != "nonexistent" || KindOf(err) != ErrUnknownCommand {
		t.Fatalf("unexpected error detail %+v", unknown)
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse(`!tts "never closed`)
	if KindOf(err) != ErrSyntax {
		t.Fatalf("error = %v, want syntax error", err)
	}
}

func TestParseCommands(t *testing.T) {
	p := newTestParser(t)
	reg := p.Registry()
	meta := func(k Kind) Metadata {
		d, _ := reg.Descriptor(k)
		return d.metadata()
	}

	tests := []struct {
		line string
		want Command
	}{
		{"!discord", Discord{meta(KindDiscord)}},
		{"!showpolls", ShowPolls{meta(KindShowPolls)}},
		{"!lurk see you later", Lurk{meta(KindLurk)}},
		{"!pytest", Pytest{meta(KindPytest)}},
		{"!stats", Stats{meta(KindStats)}},
		{"!rmeme", RMeme{meta(KindRMeme)}},
		{"!w", W{meta(KindW)}},
		{"!L", L{meta(KindL)}},
		{"!points", Points{meta(KindPoints)}},
		{"!biscuits", Points{meta(KindPoints)}},
		{
			"!tts myvoice hello there",
			TTS{Metadata: Metadata{Cost: 1000, GlobalCooldown: 30 * time.Second}, Voice: "myvoice", Text: "hello there"},
		},
		{`!tts "hello there"`, TTS{Metadata: meta(KindTTS), Voice: DefaultVoice, Text: "hello there"}},
		{"!sb meow", Soundboard{Metadata: Metadata{Cost: 500, GlobalCooldown: 15 * time.Second}, Sound: "meow"}},
		{"!soundboard WAWA", Soundboard{Metadata: meta(KindSoundboard), Sound: "wawa"}},
		{"!vote 3", Vote{Metadata: meta(KindVote), Option: 3}},
		{"!vote 2 150", Vote{Metadata: meta(KindVote), Option: 2, Points: 150, HasPoints: true}},
		{"!vote cats 4", Vote{Metadata: meta(KindVote), Name: "cats", Option: 4}},
		{"!vote cats 1 0", Vote{Metadata: meta(KindVote), Name: "cats", Option: 1, HasPoints: true}},
		{"!roulette all", Roulette{Metadata: Metadata{ViewerCooldown: 15 * time.Second}, Amount: "all"}},
		{"!gamble ALL", Roulette{Metadata: meta(KindRoulette), Amount: "all"}},
		{"!roulette 050", Roulette{Metadata: meta(KindRoulette), Amount: "50"}},
		{"!endpoll ab", EndPoll{Metadata: meta(KindEndPoll), Name: "ab"}},
		{"!cancelpred ab", CancelPred{Metadata: meta(KindCancelPred), Name: "ab"}},
		{"!endpred ab 2", EndPred{Metadata: meta(KindEndPred), Name: "ab", WonOption: 2}},
		{"!linkdiscord cooluser", LinkDiscord{Metadata: Metadata{ViewerCooldown: 30 * time.Second}, Username: "cooluser"}},
		{"!linkacc X7Q2", LinkAcc{Metadata: meta(KindLinkAcc), Code: "X7Q2"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseNewPoll(t *testing.T) {
	p := newTestParser(t)
	cmd, err := p.Parse(`!newpoll ab "d" "o1" "o2" 5hr`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	poll, ok := cmd.(NewPoll)
	if !ok {
		t.Fatalf("got %T, want NewPoll", cmd)
	}
	if poll.Name != "ab" || poll.Description != "d" || !reflect.DeepEqual(poll.Options, []string{"o1", "o2"}) {
		t.Fatalf("unexpected poll %+v", poll)
	}
	want := fixedNow.UTC().Add(5 * time.Hour)
	if !poll.CloseAt.Equal(want) || poll.CloseAt.Location() != time.UTC {
		t.Fatalf("CloseAt = %v, want %v UTC", poll.CloseAt, want)
	}
	if poll.Meta().MinLevel != domain.LevelModerator {
		t.Fatalf("MinLevel = %s", poll.Meta().MinLevel)
	}

	pred, err := p.Parse(`!newpred bet "who wins" red blue green 2day`)
	if err != nil {
		t.Fatalf("Parse newpred: %v", err)
	}
	if np, ok := pred.(NewPred); !ok || np.Duration != 48*time.Hour || len(np.Options) != 3 {
		t.Fatalf("unexpected prediction %#v", pred)
	}
}

func TestParseNewPollRealClock(t *testing.T) {
	p := NewParser(MustBuiltinRegistry())
	before := time.Now().UTC()
	cmd, err := p.Parse(`!newpoll ab "d" "o1" "o2" 5hr`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	closeAt := cmd.(NewPoll).CloseAt
	if d := closeAt.Sub(before.Add(5 * time.Hour)); d < 0 || d > 3*time.Second {
		t.Fatalf("CloseAt off by %s", d)
	}
}

func TestParseArgumentErrors(t *testing.T) {
	p := newTestParser(t)
	lines := []string{
		"!newpoll ab d 5hr",
		"!endpoll",
		"!endpoll a b",
		"!endpred ab",
		"!cancelpred",
		"!vote",
		"!vote a 1 2 3",
		"!tts",
		"!sb",
		"!sb meow wawa",
		"!roulette",
		"!linkdiscord",
		"!linkacc a b",
	}
	for _, line := range lines {
		_, err := p.Parse(line)
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("Parse(%q) error = %v, want ArgumentError", line, err)
		}
		if argErr.Usage == "" {
			t.Fatalf("Parse(%q) has no usage", line)
		}
	}
}

func TestParseValidationErrors(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		line  string
		field string
	}{
		{"!sb nosuchsound", "sound"},
		{"!vote 9", "option"},
		{"!vote 0", "option"},
		{"!vote cats x", "option"},
		{"!vote 3 -5", "points"},
		{"!vote cats 1 lots", "points"},
		{`!vote "" 1 5`, "name"},
		{`!vote '' 3`, "name"},
		{`!vote 3 ''`, "points"},
		{"!roulette 10", "amount"},
		{"!roulette some", "amount"},
		{"!roulette 99999999999999999999999", "amount"},
		{"!tts hi", "text"},
		{`!tts ""`, "text"},
		{"!newpoll waytoolongname d o1 5hr", "name"},
		{`!newpoll ab "" o1 5hr`, "description"},
		{"!newpoll ab d o1 o2 o3 o4 o5 o6 5hr", "options"},
		{"!newpoll ab d o1 5hours", "duration"},
		{"!newpoll ab d o1 0min", "duration"},
		{"!newpoll ab d o1 99999999day", "duration"},
		{"!endpred ab 6", "won_option"},
		{"!linkdiscord x", "username"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := p.Parse(tt.line)
			if cmd != nil {
				t.Fatalf("partial command returned: %#v", cmd)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("field = %q, want %q (%v)", vErr.Field, tt.field, err)
			}
			if vErr.Constraint == "" || KindOf(err) != ErrValidation {
				t.Fatalf("missing constraint: %+v", vErr)
			}
		})
	}
}

func TestParseLongTTSText(t *testing.T) {
	p := newTestParser(t)
	long := make([]rune, 251)
	for i := range long {
		long[i] = 'é'
	}
	if _, err := p.Parse(`!tts "` + string(long) + `"`); KindOf(err) != ErrValidation {
		t.Fatalf("251 runes accepted: %v", err)
	}
	if _, err := p.Parse(`!tts "` + string(long[:250]) + `"`); err != nil {
		t.Fatalf("250 runes rejected: %v", err)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	p := newTestParser(t)
	lines := []string{
		"!discord",
		"!biscuits",
		"!lurk brb",
		`!newpoll ab "long description" "option one" o2 60min`,
		`!newpred bet 'say "hi"' yes no 3day`,
		"!endpoll ab",
		"!endpred ab 5",
		"!cancelpred ab",
		"!vote 3",
		"!vote 004 20",
		"!vote cats 4",
		"!vote cats 4 100",
		"!tts myvoice hello there friend",
		`!tts "it's fine"`,
		"!tts en hello there",
		"!sb XENO",
		"!gamble 75",
		"!roulette All",
		"!linkdiscord someone",
		"!linkacc abc123",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			first, err := p.Parse(line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", line, err)
			}
			rendered := p.Render(first)
			second, err := p.Parse(rendered)
			if err != nil {
				t.Fatalf("Parse(Render) %q: %v", rendered, err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("round trip mismatch:\n%#v\n%#v (via %q)", first, second, rendered)
			}
			if first.Kind() != second.Kind() {
				t.Fatalf("kind changed")
			}
		})
	}
}

func TestGrammarsProduceTheirKind(t *testing.T) {
	reg := MustBuiltinRegistry()
	samples := map[Kind][]string{
		KindNewPoll:     {"ab", "d", "o1", "1hr"},
		KindNewPred:     {"ab", "d", "o1", "1hr"},
		KindEndPoll:     {"ab"},
		KindEndPred:     {"ab", "1"},
		KindCancelPred:  {"ab"},
		KindVote:        {"1"},
		KindTTS:         {"hello"},
		KindSoundboard:  {"meow"},
		KindRoulette:    {"all"},
		KindLinkDiscord: {"someone"},
		KindLinkAcc:     {"code"},
	}
	for _, d := range reg.Descriptors() {
		cmd, err := d.Grammar(Input{Args: samples[d.Kind], Now: fixedNow, Meta: d.metadata(), name: d.Name, usage: d.Usage})
		if err != nil {
			t.Fatalf("%s grammar: %v", d.Name, err)
		}
		if cmd.Kind() != d.Kind {
			t.Fatalf("%s grammar produced %s", d.Name, cmd.Kind())
		}
		if cmd.Meta() != d.metadata() {
			t.Fatalf("%s metadata not copied: %+v", d.Name, cmd.Meta())
		}
	}
}

func TestParseRejectsGrammarOfAnotherKind(t *testing.T) {
	tests := []struct {
		name    string
		grammar Grammar
		got     Kind
	}{
		{"other kind", zeroGrammar, KindW},
		{"nil command", func(Input) (Command, error) { return nil, nil }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(Descriptor{Kind: KindLurk, Name: "lurk", Aliases: []string{"lurk"}, Grammar: tt.grammar})
			if err != nil {
				t.Fatalf("NewRegistry: %v", err)
			}
			cmd, err := NewParser(reg).Parse("!lurk")
			if cmd != nil {
				t.Fatalf("command returned: %#v", cmd)
			}
			var mismatch *KindMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("error = %v, want KindMismatchError", err)
			}
			if mismatch.Want != KindLurk || mismatch.Got != tt.got || KindOf(err) != 0 {
				t.Fatalf("mismatch = %+v", mismatch)
			}
		})
	}
}

func TestParseQuotedTrigger(t *testing.T) {
	p := newTestParser(t)
	for _, line := range []string{`"!lurk"`, `'!lurk'`, `"!LURK" brb`} {
		cmd, err := p.Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		if cmd == nil || cmd.Kind() != KindLurk {
			t.Fatalf("Parse(%q) = %#v, want lurk", line, cmd)
		}
	}
	for _, line := range []string{`"!" lurk`, `"hi" !lurk`, `'tis a cat`} {
		cmd, err := p.Parse(line)
		if err != nil || cmd != nil {
			t.Fatalf("Parse(%q) = %v, %v; want not a command", line, cmd, err)
		}
	}
}

func TestParseApostropheInZeroArgCommand(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse("!lurk I'm off to bed")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if syntaxErr.Quote != '\'' {
		t.Fatalf("quote = %q", syntaxErr.Quote)
	}
	cmd, err := p.Parse(`!lurk "I'm off to bed"`)
	if err != nil || cmd == nil || cmd.Kind() != KindLurk {
		t.Fatalf("quoted = %v, %v", cmd, err)
	}
}

func TestRenderUsesLargestExactUnit(t *testing.T) {
	p := newTestParser(t)
	for line, want := range map[string]string{
		"!newpoll ab d o1 o2 60min": "1hr",
		"!newpoll ab d o1 o2 90min": "90min",
		"!newpoll ab d o1 o2 48hr":  "2day",
		"!newpoll ab d o1 o2 25hr":  "25hr",
	} {
		cmd, err := p.Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		if got := p.Render(cmd); !strings.HasSuffix(got, " "+want) {
			t.Fatalf("Render(%q) = %q, want suffix %q", line, got, want)
		}
	}
}
