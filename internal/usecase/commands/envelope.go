package commands

import (
	"github.com/google/uuid"

	"catcmd/internal/domain"
)

// Envelope is a chat message together with its parsed, authorized command.
// Only NewEnvelope builds one, so holding an Envelope means the command (if
// any) already passed the permission gate.
type Envelope struct {
	id      string
	message domain.ChatMessage
	command Command
}

// NewEnvelope parses msg.Text and checks the requester level. Ordinary chat
// yields an envelope without command. Parse errors and permission denials
// fail the whole construction.
func NewEnvelope(msg domain.ChatMessage, parser *Parser) (*Envelope, error) {
	cmd, err := parser.Parse(msg.Text)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		if err := CheckPermission(msg.Level, cmd).Err(); err != nil {
			return nil, err
		}
	}
	return &Envelope{
		id:      uuid.NewString(),
		message: msg,
		command: cmd,
	}, nil
}

func (e *Envelope) ID() string                  { return e.id }
func (e *Envelope) Message() domain.ChatMessage { return e.message }

// Command is nil for ordinary chat.
func (e *Envelope) Command() Command { return e.command }

func (e *Envelope) HasCommand() bool { return e.command != nil }
