// Package kickadapter reads Kick chat over the chatroom websocket and posts
// replies through the Kick API.
package kickadapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	kicksdk "github.com/glichtv/kick-sdk"
	"github.com/google/uuid"
	kickchatwrapper "github.com/johanvandegriff/kick-chat-wrapper"

	"catcmd/internal/domain"
)

type Config struct {
	// AccessToken is the bot's user token. Without it the adapter only reads.
	AccessToken string

	BroadcasterUserID int

	// ChatroomID differs from the broadcaster user id; see
	// https://kick.com/api/v2/channels/{slug}, field "chatroom":{"id":...}.
	ChatroomID int
}

type MessageHandler func(ctx context.Context, msg domain.ChatMessage) error

type Adapter struct {
	cfg Config

	mu      sync.RWMutex
	handler MessageHandler
	sdk     *kicksdk.Client
	ws      *kickchatwrapper.Client
}

func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

func (a *Adapter) SetHandler(h MessageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = h
}

// Start joins the chatroom and blocks until ctx ends.
func (a *Adapter) Start(ctx context.Context) error {
	if a.cfg.ChatroomID == 0 {
		return errors.New("kick: ChatroomID not configured")
	}

	var sdkClient *kicksdk.Client
	if a.cfg.AccessToken != "" {
		sdkClient = kicksdk.NewClient(
			kicksdk.WithAccessTokens(kicksdk.AccessTokens{
				UserAccessToken: a.cfg.AccessToken,
			}),
		)
	}

	wsClient, err := kickchatwrapper.NewClient()
	if err != nil {
		return fmt.Errorf("kick: creating ws client: %w", err)
	}

	if err := wsClient.JoinChannelByID(a.cfg.ChatroomID); err != nil {
		return fmt.Errorf("kick: JoinChannelByID: %w", err)
	}

	msgChan := wsClient.ListenForMessages()

	a.mu.Lock()
	a.sdk = sdkClient
	a.ws = wsClient
	a.mu.Unlock()

	log.Printf("kick: connected to chatroom %d (broadcasterUserID=%d, replies=%t)", a.cfg.ChatroomID, a.cfg.BroadcasterUserID, sdkClient != nil)

	go func() {
		for {
			select {
			case m, ok := <-msgChan:
				if !ok {
					log.Println("kick: message channel closed")
					return
				}

				a.mu.RLock()
				handler := a.handler
				a.mu.RUnlock()
				if handler == nil {
					continue
				}

				badges := make([]string, 0, len(m.Sender.Identity.Badges))
				for _, b := range m.Sender.Identity.Badges {
					badges = append(badges, b.Type)
				}
				msg := domain.ChatMessage{
					ID:        uuid.NewString(),
					Platform:  domain.PlatformKick,
					ChannelID: strconv.Itoa(m.ChatroomID),
					UserID:    strconv.Itoa(m.Sender.ID),
					Username:  m.Sender.Username,
					Text:      m.Content,
					Timestamp: time.Now().UTC(),
					Level:     senderLevel(m.Sender.ID, a.cfg.BroadcasterUserID, badges),
				}

				if err := handler(ctx, msg); err != nil {
					log.Printf("kick: handler error: %v", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()

	a.mu.Lock()
	if a.ws != nil {
		a.ws.Close()
		a.ws = nil
	}
	a.mu.Unlock()

	return ctx.Err()
}

func (a *Adapter) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if platform != domain.PlatformKick {
		return fmt.Errorf("kick: adapter does not support platform %s", platform)
	}

	a.mu.RLock()
	client := a.sdk
	a.mu.RUnlock()

	if client == nil {
		return errors.New("kick: no API client (read-only or not started)")
	}
	if text == "" {
		return nil
	}
	if a.cfg.BroadcasterUserID == 0 {
		return errors.New("kick: BroadcasterUserID not configured")
	}

	resp, err := client.Chat().PostMessage(ctx, kicksdk.PostChatMessageInput{
		BroadcasterUserID: a.cfg.BroadcasterUserID,
		Content:           text,
		PosterType:        kicksdk.MessagePosterUser,
	})
	if err != nil {
		return fmt.Errorf("kick: post chat message: %w", err)
	}

	if !resp.Payload.IsSent {
		meta := resp.ResponseMetadata
		log.Printf(
			"kick: PostMessage rejected (status=%d, message_id=%s, kick_message=%q, kick_error=%q, description=%q)",
			meta.StatusCode,
			resp.Payload.MessageID,
			meta.KickMessage,
			meta.KickError,
			meta.KickErrorDescription,
		)
		return fmt.Errorf("kick: message not accepted by the API (status %d)", meta.StatusCode)
	}

	return nil
}

// senderLevel ranks a Kick sender from its badges. The configured broadcaster
// id always maps to broadcaster.
func senderLevel(senderID, broadcasterUserID int, badges []string) domain.ViewerLevel {
	var owner, mod, sub bool
	if broadcasterUserID != 0 && senderID == broadcasterUserID {
		owner = true
	}
	for _, b := range badges {
		switch strings.ToLower(b) {
		case "broadcaster":
			owner = true
		case "moderator":
			mod = true
		case "subscriber", "founder", "og":
			sub = true
		}
	}
	return domain.LevelFromFlags(owner, mod, sub)
}
