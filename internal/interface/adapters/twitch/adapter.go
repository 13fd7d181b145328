// Package twitchadapter reads Twitch IRC chat and writes replies.
package twitchadapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adeithe/go-twitch/irc"
	"github.com/google/uuid"

	"catcmd/internal/domain"
)

type Config struct {
	Username   string
	OAuthToken string
	Channels   []string
}

type MessageHandler func(ctx context.Context, msg domain.ChatMessage) error

type Adapter struct {
	cfg Config

	mu      sync.RWMutex
	handler MessageHandler
	conn    *irc.Conn
}

func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

func (a *Adapter) SetHandler(h MessageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = h
}

// Start connects, joins the configured channels and blocks until ctx ends.
func (a *Adapter) Start(ctx context.Context) error {
	if len(a.cfg.Channels) == 0 {
		return errors.New("twitch: no channels configured")
	}
	if a.cfg.Username == "" || a.cfg.OAuthToken == "" {
		return errors.New("twitch: empty username or oauth token")
	}

	conn := &irc.Conn{}

	if err := conn.SetLogin(a.cfg.Username, a.cfg.OAuthToken); err != nil {
		return fmt.Errorf("twitch: SetLogin: %w", err)
	}

	conn.OnMessage(func(cm irc.ChatMessage) {
		a.mu.RLock()
		handler := a.handler
		a.mu.RUnlock()
		if handler == nil {
			return
		}

		sender := cm.Sender
		msg := newChatMessage(
			cm.Channel,
			strconv.FormatInt(sender.ID, 10),
			sender.DisplayName,
			cm.Text,
			domain.LevelFromFlags(sender.IsBroadcaster, sender.IsModerator, sender.IsSubscriber),
		)
		if err := handler(ctx, msg); err != nil {
			log.Printf("twitch: handler error: %v", err)
		}
	})

	if err := conn.Connect(); err != nil {
		return fmt.Errorf("twitch: Connect: %w", err)
	}

	if err := conn.Join(a.cfg.Channels...); err != nil {
		conn.Close()
		return fmt.Errorf("twitch: Join: %w", err)
	}

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()

	log.Printf("twitch: connected as %s to channels %v", a.cfg.Username, a.cfg.Channels)

	<-ctx.Done()

	a.mu.Lock()
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	a.mu.Unlock()

	return ctx.Err()
}

func (a *Adapter) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if platform != domain.PlatformTwitch {
		return fmt.Errorf("twitch: adapter does not support platform %s", platform)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return errors.New("twitch: connection not initialized or closed")
	}

	log.Printf("twitch: Say(%s): %s", channelID, text)
	return conn.Say(strings.TrimPrefix(channelID, "#"), text)
}

func newChatMessage(channel, userID, username, text string, level domain.ViewerLevel) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Platform:  domain.PlatformTwitch,
		ChannelID: channel,
		UserID:    userID,
		Username:  username,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Level:     level,
	}
}
