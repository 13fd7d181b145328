// Package outs routes replies to the adapter of the platform a message came from.
package outs

import (
	"context"
	"fmt"
	"log"
	"sync"

	"catcmd/internal/domain"
)

// Sender is implemented by the platform adapters.
type Sender interface {
	SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error
}

// MultiSender picks the Sender registered for a platform.
type MultiSender struct {
	mu      sync.RWMutex
	senders map[domain.Platform]Sender
}

func NewMultiSender() *MultiSender {
	return &MultiSender{
		senders: make(map[domain.Platform]Sender),
	}
}

func (m *MultiSender) Register(platform domain.Platform, sender Sender) {
	if m == nil || sender == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.senders[platform] = sender
}

func (m *MultiSender) Unregister(platform domain.Platform) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.senders, platform)
}

func (m *MultiSender) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if m == nil {
		return fmt.Errorf("outs: no multi sender configured")
	}
	m.mu.RLock()
	sender, ok := m.senders[platform]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("outs: no sender registered for platform %s", platform)
	}

	return sender.SendMessage(ctx, platform, channelID, text)
}

// LogSender writes replies to the log. It stands in for platforms without a
// chat connection, such as the websocket console.
type LogSender struct{}

func (LogSender) SendMessage(_ context.Context, platform domain.Platform, channelID, text string) error {
	log.Printf("outs: [%s %s] %s", platform, channelID, text)
	return nil
}

var _ domain.OutgoingMessagePort = (*MultiSender)(nil)
