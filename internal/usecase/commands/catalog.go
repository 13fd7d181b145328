package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/hegedustibor/htgo-tts/voices"

	"catcmd/internal/domain"
)

const (
	TTSCost        = 1000
	SoundboardCost = 500
	RouletteMin    = 50
	RouletteAll    = "all"
	maxPollOptions = 5
	maxPollWindow  = 365 * 24 * time.Hour
)

// DefaultVoice is used by !tts when the viewer only gives the text.
var DefaultVoice = voices.English

// Sounds is the fixed soundboard set.
var Sounds = []string{
	"meow", "wawa", "xeno", "bonk", "honk", "airhorn", "bruh", "oof", "yippee", "sus",
}

var (
	pollName    = Length(1, 8)
	pollDesc    = Length(1, 40)
	pollOption  = Length(1, 40)
	voteOption  = IntRange(1, maxPollOptions)
	votePoints  = MinInt(0)
	ttsText     = Length(5, 250)
	ttsVoice    = Length(1, 32)
	soundName   = OneOf(Sounds...)
	rouletteAmt = Either(OneOf(RouletteAll), MinInt(RouletteMin))
	discordUser = Length(2, 32)
	linkCode    = Length(1, 64)
)

// BuiltinCatalog describes every command the bot understands.
func BuiltinCatalog() []Descriptor {
	return []Descriptor{
		noArgs(KindDiscord, "Posts the Discord invite.", func(m Metadata) Command { return Discord{m} }),
		noArgs(KindShowPolls, "Lists open polls and predictions.", func(m Metadata) Command { return ShowPolls{m} }),
		{
			Kind:        KindNewPoll,
			Name:        "newpoll",
			Aliases:     []string{"newpoll"},
			Usage:       "!newpoll <name> <description> <option>... <duration e.g. 5hr>",
			Description: "Opens a poll with up to five options.",
			MinLevel:    domain.LevelModerator,
			Grammar: func(in Input) (Command, error) {
				spec, err := parsePollSpec(in)
				if err != nil {
					return nil, err
				}
				return NewPoll{Metadata: in.Meta, PollSpec: spec}, nil
			},
		},
		{
			Kind:        KindNewPred,
			Name:        "newpred",
			Aliases:     []string{"newpred"},
			Usage:       "!newpred <name> <description> <option>... <duration e.g. 30min>",
			Description: "Opens a points prediction.",
			MinLevel:    domain.LevelModerator,
			Grammar: func(in Input) (Command, error) {
				spec, err := parsePollSpec(in)
				if err != nil {
					return nil, err
				}
				return NewPred{Metadata: in.Meta, PollSpec: spec}, nil
			},
		},
		{
			Kind:        KindEndPoll,
			Name:        "endpoll",
			Aliases:     []string{"endpoll"},
			Usage:       "!endpoll <name>",
			Description: "Closes a poll.",
			MinLevel:    domain.LevelModerator,
			Grammar: func(in Input) (Command, error) {
				name, err := singleName(in)
				if err != nil {
					return nil, err
				}
				return EndPoll{Metadata: in.Meta, Name: name}, nil
			},
		},
		{
			Kind:        KindEndPred,
			Name:        "endpred",
			Aliases:     []string{"endpred"},
			Usage:       "!endpred <name> <winning option>",
			Description: "Resolves a prediction and pays out the winners.",
			MinLevel:    domain.LevelModerator,
			Grammar: func(in Input) (Command, error) {
				if len(in.Args) != 2 {
					return nil, in.Usage()
				}
				name, won := in.Args[0], in.Args[1]
				if err := in.Check("name", name, pollName); err != nil {
					return nil, err
				}
				if err := in.Check("won_option", won, voteOption); err != nil {
					return nil, err
				}
				n, _ := strconv.Atoi(won)
				return EndPred{Metadata: in.Meta, Name: name, WonOption: n}, nil
			},
		},
		{
			Kind:        KindCancelPred,
			Name:        "cancelpred",
			Aliases:     []string{"cancelpred"},
			Usage:       "!cancelpred <name>",
			Description: "Cancels a prediction and refunds every bet.",
			MinLevel:    domain.LevelModerator,
			Grammar: func(in Input) (Command, error) {
				name, err := singleName(in)
				if err != nil {
					return nil, err
				}
				return CancelPred{Metadata: in.Meta, Name: name}, nil
			},
		},
		{
			Kind:        KindVote,
			Name:        "vote",
			Aliases:     []string{"vote"},
			Usage:       "!vote [name] <option 1-5> [points]",
			Description: "Votes in a poll or bets on a prediction.",
			Grammar:     parseVote,
		},
		noArgs(KindLurk, "Announces that you are lurking.", func(m Metadata) Command { return Lurk{m} }),
		noArgs(KindPytest, "Runs the bot self check.", func(m Metadata) Command { return Pytest{m} }),
		{
			Kind:        KindPoints,
			Name:        "points",
			Aliases:     []string{"points", "biscuits"},
			Usage:       "!points",
			Description: "Shows your points balance.",
			Grammar:     func(in Input) (Command, error) { return Points{in.Meta}, nil },
		},
		noArgs(KindStats, "Shows your chat stats.", func(m Metadata) Command { return Stats{m} }),
		{
			Kind:           KindTTS,
			Name:           "tts",
			Aliases:        []string{"tts"},
			Usage:          "!tts [voice] <text>",
			Description:    "Reads your message out loud on stream.",
			Cost:           TTSCost,
			GlobalCooldown: 30 * time.Second,
			Grammar:        parseTTS,
		},
		noArgs(KindRMeme, "Shows a random meme.", func(m Metadata) Command { return RMeme{m} }),
		{
			Kind:           KindSoundboard,
			Name:           "soundboard",
			Aliases:        []string{"soundboard", "sb"},
			Usage:          "!sb <" + strings.Join(Sounds, "|") + ">",
			Description:    "Plays a sound on stream.",
			Cost:           SoundboardCost,
			GlobalCooldown: 15 * time.Second,
			Grammar: func(in Input) (Command, error) {
				if len(in.Args) != 1 {
					return nil, in.Usage()
				}
				if err := in.Check("sound", in.Args[0], soundName); err != nil {
					return nil, err
				}
				return Soundboard{Metadata: in.Meta, Sound: strings.ToLower(in.Args[0])}, nil
			},
		},
		{
			Kind:           KindRoulette,
			Name:           "roulette",
			Aliases:        []string{"roulette", "gamble"},
			Usage:          "!roulette <all|amount>",
			Description:    "Gambles points, 50 or more.",
			ViewerCooldown: 15 * time.Second,
			Grammar: func(in Input) (Command, error) {
				if len(in.Args) != 1 {
					return nil, in.Usage()
				}
				amount := in.Args[0]
				if err := in.Check("amount", amount, rouletteAmt); err != nil {
					return nil, err
				}
				if strings.EqualFold(amount, RouletteAll) {
					amount = RouletteAll
				} else {
					n, _ := strconv.Atoi(amount)
					amount = strconv.Itoa(n)
				}
				return Roulette{Metadata: in.Meta, Amount: amount}, nil
			},
		},
		noArgs(KindW, "Cheers the streamer on.", func(m Metadata) Command { return W{m} }),
		noArgs(KindL, "Commiserates.", func(m Metadata) Command { return L{m} }),
		{
			Kind:           KindLinkDiscord,
			Name:           "linkdiscord",
			Aliases:        []string{"linkdiscord"},
			Usage:          "!linkdiscord <discord username>",
			Description:    "Starts linking your Discord account.",
			ViewerCooldown: 30 * time.Second,
			Grammar: func(in Input) (Command, error) {
				if len(in.Args) != 1 {
					return nil, in.Usage()
				}
				if err := in.Check("username", in.Args[0], discordUser); err != nil {
					return nil, err
				}
				return LinkDiscord{Metadata: in.Meta, Username: in.Args[0]}, nil
			},
		},
		{
			Kind:        KindLinkAcc,
			Name:        "linkacc",
			Aliases:     []string{"linkacc"},
			Usage:       "!linkacc <code>",
			Description: "Finishes linking accounts across platforms.",
			Grammar: func(in Input) (Command, error) {
				if len(in.Args) != 1 {
					return nil, in.Usage()
				}
				if err := in.Check("code", in.Args[0], linkCode); err != nil {
					return nil, err
				}
				return LinkAcc{Metadata: in.Meta, Code: in.Args[0]}, nil
			},
		},
	}
}

// noArgs builds the descriptor of a command without arguments. Trailing
// tokens are ignored so "!lurk see you later" still counts.
func noArgs(kind Kind, description string, build func(Metadata) Command) Descriptor {
	name := kind.String()
	return Descriptor{
		Kind:        kind,
		Name:        name,
		Aliases:     []string{name},
		Usage:       "!" + name,
		Description: description,
		Grammar: func(in Input) (Command, error) {
			return build(in.Meta), nil
		},
	}
}

func singleName(in Input) (string, error) {
	if len(in.Args) != 1 {
		return "", in.Usage()
	}
	if err := in.Check("name", in.Args[0], pollName); err != nil {
		return "", err
	}
	return in.Args[0], nil
}

func parsePollSpec(in Input) (PollSpec, error) {
	if len(in.Args) < 4 {
		return PollSpec{}, in.Usage()
	}
	name, desc := in.Args[0], in.Args[1]
	options := in.Args[2 : len(in.Args)-1]
	rawDuration := in.Args[len(in.Args)-1]

	if err := in.Check("name", name, pollName); err != nil {
		return PollSpec{}, err
	}
	if err := in.Check("description", desc, pollDesc); err != nil {
		return PollSpec{}, err
	}
	if err := in.Check("options", strconv.Itoa(len(options)), IntRange(1, maxPollOptions)); err != nil {
		return PollSpec{}, err
	}
	for _, opt := range options {
		if err := in.Check("option", opt, pollOption); err != nil {
			return PollSpec{}, err
		}
	}
	if err := in.Check("duration", rawDuration, DurationFormat); err != nil {
		return PollSpec{}, err
	}
	d, err := ParseDuration(rawDuration)
	if err != nil || d <= 0 {
		return PollSpec{}, &ValidationError{
			Command:    in.name,
			Field:      "duration",
			Constraint: "positive duration up to " + formatDuration(maxPollWindow),
			Value:      rawDuration,
		}
	}

	return PollSpec{
		Name:        name,
		Description: desc,
		Options:     append([]string(nil), options...),
		Duration:    d,
		CloseAt:     in.Now.Add(d),
	}, nil
}

// parseVote handles the three vote shapes:
//
//	!vote <option>
//	!vote <option> <points>   (first token all digits)
//	!vote <name> <option>
//	!vote <name> <option> <points>
func parseVote(in Input) (Command, error) {
	var name, option, points string
	var hasName, hasPoints bool
	switch len(in.Args) {
	case 1:
		option = in.Args[0]
	case 2:
		if isDigits(in.Args[0]) {
			option, points = in.Args[0], in.Args[1]
			hasPoints = true
		} else {
			name, option = in.Args[0], in.Args[1]
			hasName = true
		}
	case 3:
		name, option, points = in.Args[0], in.Args[1], in.Args[2]
		hasName, hasPoints = true, true
	default:
		return nil, in.Usage()
	}

	if hasName {
		if err := in.Check("name", name, pollName); err != nil {
			return nil, err
		}
	}
	if err := in.Check("option", option, voteOption); err != nil {
		return nil, err
	}
	vote := Vote{Metadata: in.Meta, Name: name}
	vote.Option, _ = strconv.Atoi(option)
	if hasPoints {
		if err := in.Check("points", points, votePoints); err != nil {
			return nil, err
		}
		vote.Points, _ = strconv.Atoi(points)
		vote.HasPoints = true
	}
	return vote, nil
}

func parseTTS(in Input) (Command, error) {
	var voice, text string
	switch len(in.Args) {
	case 0:
		return nil, in.Usage()
	case 1:
		voice, text = DefaultVoice, in.Args[0]
	default:
		voice, text = in.Args[0], strings.Join(in.Args[1:], " ")
		if err := in.Check("voice", voice, ttsVoice); err != nil {
			return nil, err
		}
	}
	if err := in.Check("text", text, ttsText); err != nil {
		return nil, err
	}
	return TTS{Metadata: in.Meta, Voice: voice, Text: text}, nil
}
