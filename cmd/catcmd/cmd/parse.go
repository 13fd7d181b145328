package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"catcmd/internal/domain"
	"catcmd/internal/usecase/commands"
)

var (
	parseLevel    string
	parsePlatform string
	parseUser     string
)

// ErrRejected is returned when the line is a command the bot would refuse.
var ErrRejected = errors.New("command rejected")

var parseCmd = &cobra.Command{
	Use:   "parse <line>",
	Short: "Parses a chat line into a command",
	Long: `Runs one chat line through tokenizing, lookup, validation and the
permission check. Quote the whole line so the shell keeps it intact:

  catcmd parse --level mod '!newpoll cats "Best cat?" tabby calico 5min'`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseLevel, "level", "viewer", "Viewer level: viewer, subscriber, moderator, broadcaster")
	parseCmd.Flags().StringVar(&parsePlatform, "platform", "twitch", "Platform: twitch, youtube, discord, kick")
	parseCmd.Flags().StringVar(&parseUser, "user", "cli", "Username of the sender")
	rootCmd.AddCommand(parseCmd)
}

type parseOutput struct {
	EnvelopeID string   `json:"envelope_id"`
	IsCommand  bool     `json:"is_command"`
	Command    string   `json:"command,omitempty"`
	Args       []string `json:"args,omitempty"`
	Canonical  string   `json:"canonical,omitempty"`
	Cost       int      `json:"cost,omitempty"`
	MinLevel   string   `json:"min_level,omitempty"`
	ErrorKind  string   `json:"error_kind,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	level, err := domain.ParseViewerLevel(parseLevel)
	if err != nil {
		return err
	}
	platform, ok := domain.ParsePlatform(parsePlatform)
	if !ok {
		return fmt.Errorf("unknown platform %q", parsePlatform)
	}

	parser := commands.NewParser(commands.MustBuiltinRegistry())
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Platform:  platform,
		UserID:    parseUser,
		Username:  parseUser,
		Text:      args[0],
		Timestamp: time.Now().UTC(),
		Level:     level,
	}

	out := parseOutput{}
	env, parseErr := commands.NewEnvelope(msg, parser)
	if parseErr != nil {
		out.IsCommand = commands.KindOf(parseErr) != commands.ErrSyntax
		out.ErrorKind = commands.KindOf(parseErr).String()
		out.Error = parseErr.Error()
	} else {
		out.EnvelopeID = env.ID()
		if c := env.Command(); c != nil {
			out.IsCommand = true
			out.Command = c.Kind().String()
			out.Args = c.Args()
			out.Canonical = parser.Render(c)
			out.Cost = c.Meta().Cost
			out.MinLevel = c.Meta().MinLevel.String()
		}
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := printJSON(w, out); err != nil {
			return err
		}
	} else {
		switch {
		case out.Error != "":
			fmt.Fprintf(w, "rejected (%s): %s\n", out.ErrorKind, out.Error)
		case !out.IsCommand:
			fmt.Fprintln(w, "not a command")
		default:
			fmt.Fprintf(w, "command:   %s\n", out.Command)
			fmt.Fprintf(w, "args:      %s\n", strings.Join(out.Args, " | "))
			fmt.Fprintf(w, "canonical: %s\n", out.Canonical)
			fmt.Fprintf(w, "cost:      %d\n", out.Cost)
			fmt.Fprintf(w, "min level: %s\n", out.MinLevel)
		}
	}

	if parseErr != nil {
		return fmt.Errorf("%w: %s", ErrRejected, out.ErrorKind)
	}
	return nil
}
