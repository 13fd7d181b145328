package commands

import (
	"strconv"
	"time"

	"catcmd/internal/domain"
)

// Kind identifies a command variant. The set is closed.
type Kind int

const (
	KindDiscord Kind = iota + 1
	KindShowPolls
	KindNewPoll
	KindNewPred
	KindEndPoll
	KindEndPred
	KindCancelPred
	KindVote
	KindLurk
	KindPytest
	KindPoints
	KindStats
	KindTTS
	KindRMeme
	KindSoundboard
	KindRoulette
	KindW
	KindL
	KindLinkDiscord
	KindLinkAcc
)

var kindNames = map[Kind]string{
	KindDiscord:     "discord",
	KindShowPolls:   "showpolls",
	KindNewPoll:     "newpoll",
	KindNewPred:     "newpred",
	KindEndPoll:     "endpoll",
	KindEndPred:     "endpred",
	KindCancelPred:  "cancelpred",
	KindVote:        "vote",
	KindLurk:        "lurk",
	KindPytest:      "pytest",
	KindPoints:      "points",
	KindStats:       "stats",
	KindTTS:         "tts",
	KindRMeme:       "rmeme",
	KindSoundboard:  "soundboard",
	KindRoulette:    "roulette",
	KindW:           "w",
	KindL:           "l",
	KindLinkDiscord: "linkdiscord",
	KindLinkAcc:     "linkacc",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Metadata is the static cost, privilege and cooldown metadata a command inherits
// from its descriptor. Cooldown bookkeeping happens outside this package.
type Metadata struct {
	Cost           int
	MinLevel       domain.ViewerLevel
	ViewerCooldown time.Duration
	GlobalCooldown time.Duration
}

// Command is a validated, immutable command value. Implementations live in
// this package only; switch on the concrete type or on Kind.
type Command interface {
	Kind() Kind
	Meta() Metadata
	// Args returns the canonical argument tokens, without the command name.
	Args() []string
	command()
}

// PollSpec is shared by NewPoll and NewPred.
type PollSpec struct {
	Name        string
	Description string
	Options     []string
	Duration    time.Duration
	CloseAt     time.Time
}

func (p PollSpec) args() []string {
	out := make([]string, 0, len(p.Options)+3)
	out = append(out, p.Name, p.Description)
	out = append(out, p.Options...)
	return append(out, formatDuration(p.Duration))
}

type (
	Discord   struct{ Metadata }
	ShowPolls struct{ Metadata }
	Lurk      struct{ Metadata }
	Pytest    struct{ Metadata }
	Points    struct{ Metadata }
	Stats     struct{ Metadata }
	RMeme     struct{ Metadata }
	W         struct{ Metadata }
	L         struct{ Metadata }

	NewPoll struct {
		Metadata
		PollSpec
	}
	NewPred struct {
		Metadata
		PollSpec
	}
	EndPoll struct {
		Metadata
		Name string
	}
	CancelPred struct {
		Metadata
		Name string
	}
	EndPred struct {
		Metadata
		Name      string
		WonOption int
	}

	// Vote fields are zero when the viewer left them out: Name "" targets the
	// active poll, Points 0 means a plain vote.
	Vote struct {
		Metadata
		Name      string
		Option    int
		Points    int
		HasPoints bool
	}

	TTS struct {
		Metadata
		Voice string
		Text  string
	}
	Soundboard struct {
		Metadata
		Sound string
	}
	// Roulette.Amount is either "all" or a decimal integer string.
	Roulette struct {
		Metadata
		Amount string
	}
	LinkDiscord struct {
		Metadata
		Username string
	}
	LinkAcc struct {
		Metadata
		Code string
	}
)

func (c Discord) Kind() Kind     { return KindDiscord }
func (c ShowPolls) Kind() Kind   { return KindShowPolls }
func (c Lurk) Kind() Kind        { return KindLurk }
func (c Pytest) Kind() Kind      { return KindPytest }
func (c Points) Kind() Kind      { return KindPoints }
func (c Stats) Kind() Kind       { return KindStats }
func (c RMeme) Kind() Kind       { return KindRMeme }
func (c W) Kind() Kind           { return KindW }
func (c L) Kind() Kind           { return KindL }
func (c NewPoll) Kind() Kind     { return KindNewPoll }
func (c NewPred) Kind() Kind     { return KindNewPred }
func (c EndPoll) Kind() Kind     { return KindEndPoll }
func (c CancelPred) Kind() Kind  { return KindCancelPred }
func (c EndPred) Kind() Kind     { return KindEndPred }
func (c Vote) Kind() Kind        { return KindVote }
func (c TTS) Kind() Kind         { return KindTTS }
func (c Soundboard) Kind() Kind  { return KindSoundboard }
func (c Roulette) Kind() Kind    { return KindRoulette }
func (c LinkDiscord) Kind() Kind { return KindLinkDiscord }
func (c LinkAcc) Kind() Kind     { return KindLinkAcc }

func (m Metadata) Meta() Metadata { return m }
func (Metadata) command()         {}

func (Discord) Args() []string   { return nil }
func (ShowPolls) Args() []string { return nil }
func (Lurk) Args() []string      { return nil }
func (Pytest) Args() []string    { return nil }
func (Points) Args() []string    { return nil }
func (Stats) Args() []string     { return nil }
func (RMeme) Args() []string     { return nil }
func (W) Args() []string         { return nil }
func (L) Args() []string         { return nil }

func (c NewPoll) Args() []string    { return c.PollSpec.args() }
func (c NewPred) Args() []string    { return c.PollSpec.args() }
func (c EndPoll) Args() []string    { return []string{c.Name} }
func (c CancelPred) Args() []string { return []string{c.Name} }
func (c EndPred) Args() []string    { return []string{c.Name, strconv.Itoa(c.WonOption)} }

func (c Vote) Args() []string {
	var out []string
	if c.Name != "" {
		out = append(out, c.Name)
	}
	out = append(out, strconv.Itoa(c.Option))
	if c.HasPoints {
		out = append(out, strconv.Itoa(c.Points))
	}
	return out
}

func (c TTS) Args() []string {
	if c.Voice == DefaultVoice {
		return []string{c.Text}
	}
	return []string{c.Voice, c.Text}
}

func (c Soundboard) Args() []string  { return []string{c.Sound} }
func (c Roulette) Args() []string    { return []string{c.Amount} }
func (c LinkDiscord) Args() []string { return []string{c.Username} }
func (c LinkAcc) Args() []string     { return []string{c.Code} }
