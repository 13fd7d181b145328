// Package handle_message turns ingested chat lines into dispatched commands.
package handle_message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"catcmd/internal/domain"
	"catcmd/internal/usecase/commands"
)

// Dispatcher hands authorized commands to whatever executes them.
type Dispatcher interface {
	Dispatch(ctx context.Context, env *commands.Envelope) error
}

// ChatObserver sees every envelope, command or not (overlays, chat logs).
type ChatObserver interface {
	ObserveChat(ctx context.Context, env *commands.Envelope)
}

// CooldownTracker owns the cooldown timestamps the core only declares.
// Acquire consumes the cooldowns of cmd for userID, or reports how long the
// caller has to wait.
type CooldownTracker interface {
	Acquire(now time.Time, userID string, cmd commands.Command) (wait time.Duration, ok bool)
}

type Interactor struct {
	parser     *commands.Parser
	out        domain.OutgoingMessagePort
	dispatcher Dispatcher
	cooldowns  CooldownTracker
	history    domain.CommandLogRepository
	observer   ChatObserver

	replyErrors bool
	now         func() time.Time
}

type Option func(*Interactor)

func WithCooldowns(t CooldownTracker) Option {
	return func(uc *Interactor) { uc.cooldowns = t }
}

func WithHistory(repo domain.CommandLogRepository) Option {
	return func(uc *Interactor) { uc.history = repo }
}

func WithObserver(o ChatObserver) Option {
	return func(uc *Interactor) { uc.observer = o }
}

// WithErrorReplies makes the bot answer usage, validation, permission and
// cooldown failures in chat instead of only logging them.
func WithErrorReplies(enabled bool) Option {
	return func(uc *Interactor) { uc.replyErrors = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(uc *Interactor) { uc.now = now }
}

func NewInteractor(out domain.OutgoingMessagePort, parser *commands.Parser, dispatcher Dispatcher, opts ...Option) *Interactor {
	uc := &Interactor{
		parser:     parser,
		out:        out,
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Handle processes one chat line. Failures that belong to the viewer (bad
// arguments, missing privilege, cooldown) are answered, not returned; the
// returned error is reserved for infrastructure problems.
func (uc *Interactor) Handle(ctx context.Context, msg domain.ChatMessage) error {
	env, err := commands.NewEnvelope(msg, uc.parser)
	if err != nil {
		return uc.reject(ctx, msg, err)
	}

	if uc.observer != nil {
		uc.observer.ObserveChat(ctx, env)
	}
	if !env.HasCommand() {
		return nil
	}

	cmd := env.Command()
	if uc.cooldowns != nil {
		if wait, ok := uc.cooldowns.Acquire(uc.now(), msg.UserID, cmd); !ok {
			log.Printf("handle_message: %s from %s on cooldown for %s", cmd.Kind(), msg.Username, wait)
			return uc.reply(ctx, msg, fmt.Sprintf("@%s !%s is on cooldown, try again in %s", msg.Username, cmd.Kind(), roundWait(wait)))
		}
	}

	if uc.history != nil {
		entry := domain.CommandLogEntry{
			EnvelopeID: env.ID(),
			MessageID:  msg.ID,
			Platform:   msg.Platform,
			ChannelID:  msg.ChannelID,
			UserID:     msg.UserID,
			Username:   msg.Username,
			Command:    cmd.Kind().String(),
			Canonical:  uc.parser.Render(cmd),
			Cost:       cmd.Meta().Cost,
			CreatedAt:  uc.now().UTC(),
		}
		if err := uc.history.RecordCommand(ctx, entry); err != nil {
			log.Printf("handle_message: record %s: %v", entry.Command, err)
		}
	}

	if uc.dispatcher == nil {
		return nil
	}
	if err := uc.dispatcher.Dispatch(ctx, env); err != nil {
		return fmt.Errorf("handle_message: dispatch %s: %w", cmd.Kind(), err)
	}
	return nil
}

func (uc *Interactor) reject(ctx context.Context, msg domain.ChatMessage, err error) error {
	var (
		argErr    *commands.ArgumentError
		valErr    *commands.ValidationError
		denied    *commands.PermissionDeniedError
		unknown   *commands.UnknownCommandError
		syntaxErr *commands.SyntaxError
	)

	switch {
	case errors.As(err, &unknown):
		log.Printf("handle_message: %s tried unknown command %q", msg.Username, unknown.Name)
		return nil
	case errors.As(err, &syntaxErr):
		log.Printf("handle_message: syntax error from %s: %v", msg.Username, err)
		return uc.reply(ctx, msg, fmt.Sprintf("@%s unbalanced %c quote, close it or wrap the text in %c", msg.Username, syntaxErr.Quote, otherQuote(syntaxErr.Quote)))
	case errors.As(err, &argErr):
		return uc.reply(ctx, msg, fmt.Sprintf("@%s usage: %s", msg.Username, argErr.Usage))
	case errors.As(err, &valErr):
		return uc.reply(ctx, msg, fmt.Sprintf("@%s invalid %s: must be %s", msg.Username, valErr.Field, valErr.Constraint))
	case errors.As(err, &denied):
		log.Printf("handle_message: %s denied: %v", msg.Username, err)
		return uc.reply(ctx, msg, fmt.Sprintf("@%s !%s is for %ss only", msg.Username, denied.Command, denied.Required))
	default:
		return fmt.Errorf("handle_message: %w", err)
	}
}

func (uc *Interactor) reply(ctx context.Context, msg domain.ChatMessage, text string) error {
	if !uc.replyErrors || uc.out == nil {
		return nil
	}
	if err := uc.out.SendMessage(ctx, msg.Platform, msg.ChannelID, text); err != nil {
		return fmt.Errorf("handle_message: reply: %w", err)
	}
	return nil
}

func roundWait(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Second
	}
	return d.Round(time.Second)
}

func otherQuote(q rune) rune {
	if q == '"' {
		return '\''
	}
	return '"'
}
