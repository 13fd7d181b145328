package domain

import (
	"context"
	"time"
)

type OutgoingMessagePort interface {
	SendMessage(ctx context.Context, platform Platform, channelID, text string) error
}

// CommandLogEntry is the persisted trace of a command that passed parsing,
// permission and cooldown checks.
type CommandLogEntry struct {
	EnvelopeID string
	MessageID  string
	Platform   Platform
	ChannelID  string
	UserID     string
	Username   string
	Command    string
	Canonical  string
	Cost       int
	CreatedAt  time.Time
}

type CommandLogRepository interface {
	RecordCommand(ctx context.Context, entry CommandLogEntry) error
	ListRecentCommands(ctx context.Context, limit int) ([]CommandLogEntry, error)
}
