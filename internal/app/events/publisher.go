package events

import (
	"context"

	"catcmd/internal/domain"
	"catcmd/internal/usecase/commands"
)

// Publisher puts envelopes on the bus. It serves as both the chat observer
// and the command dispatcher of the message interactor; executors subscribe
// to TopicCommand.
type Publisher struct {
	bus      *Bus
	registry *commands.Registry
}

func NewPublisher(bus *Bus, registry *commands.Registry) *Publisher {
	return &Publisher{bus: bus, registry: registry}
}

func (p *Publisher) ObserveChat(_ context.Context, env *commands.Envelope) {
	p.bus.Publish(TopicChatMessage, NewChatMessageDTO(env))
}

func (p *Publisher) Dispatch(ctx context.Context, env *commands.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !env.HasCommand() {
		return nil
	}
	p.bus.Publish(TopicCommand, NewCommandDTO(p.registry, env))
	return nil
}

// ReportError publishes a processing failure for msg on TopicAppError.
func (p *Publisher) ReportError(msg domain.ChatMessage, err error) {
	if err == nil {
		return
	}
	p.bus.Publish(TopicAppError, NewAppErrorDTO(msg, err))
}
