package events

import (
	"time"

	"catcmd/internal/domain"
	"catcmd/internal/usecase/commands"
)

// ChatMessageDTO is the wire form of every ingested chat line.
type ChatMessageDTO struct {
	EnvelopeID string `json:"envelope_id"`
	MessageID  string `json:"message_id"`
	Platform   string `json:"platform"`
	ChannelID  string `json:"channel_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Text       string `json:"text"`
	Level      string `json:"level"`
	IsCommand  bool   `json:"is_command"`
	Timestamp  string `json:"timestamp"`
}

// CommandDTO describes an accepted command for executors listening on the bus.
type CommandDTO struct {
	EnvelopeID     string   `json:"envelope_id"`
	Command        string   `json:"command"`
	Args           []string `json:"args"`
	Canonical      string   `json:"canonical"`
	Cost           int      `json:"cost"`
	MinLevel       string   `json:"min_level"`
	ViewerCooldown float64  `json:"viewer_cooldown_seconds,omitempty"`
	GlobalCooldown float64  `json:"global_cooldown_seconds,omitempty"`
	Platform       string   `json:"platform"`
	ChannelID      string   `json:"channel_id"`
	UserID         string   `json:"user_id"`
	Username       string   `json:"username"`
	Timestamp      string   `json:"timestamp"`
}

// AppErrorDTO reports a chat line the bot failed to process.
type AppErrorDTO struct {
	MessageID string `json:"message_id"`
	Platform  string `json:"platform"`
	ChannelID string `json:"channel_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func NewAppErrorDTO(msg domain.ChatMessage, err error) AppErrorDTO {
	return AppErrorDTO{
		MessageID: msg.ID,
		Platform:  string(msg.Platform),
		ChannelID: msg.ChannelID,
		Username:  msg.Username,
		Text:      msg.Text,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func NewChatMessageDTO(env *commands.Envelope) ChatMessageDTO {
	msg := env.Message()
	return ChatMessageDTO{
		EnvelopeID: env.ID(),
		MessageID:  msg.ID,
		Platform:   string(msg.Platform),
		ChannelID:  msg.ChannelID,
		UserID:     msg.UserID,
		Username:   msg.Username,
		Text:       msg.Text,
		Level:      msg.Level.String(),
		IsCommand:  env.HasCommand(),
		Timestamp:  timestamp(msg.Timestamp),
	}
}

// NewCommandDTO renders the command of env. env must carry a command.
func NewCommandDTO(registry *commands.Registry, env *commands.Envelope) CommandDTO {
	msg := env.Message()
	cmd := env.Command()
	meta := cmd.Meta()
	args := cmd.Args()
	if args == nil {
		args = []string{}
	}
	return CommandDTO{
		EnvelopeID:     env.ID(),
		Command:        cmd.Kind().String(),
		Args:           args,
		Canonical:      commands.Render(registry, cmd),
		Cost:           meta.Cost,
		MinLevel:       meta.MinLevel.String(),
		ViewerCooldown: meta.ViewerCooldown.Seconds(),
		GlobalCooldown: meta.GlobalCooldown.Seconds(),
		Platform:       string(msg.Platform),
		ChannelID:      msg.ChannelID,
		UserID:         msg.UserID,
		Username:       msg.Username,
		Timestamp:      timestamp(msg.Timestamp),
	}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
