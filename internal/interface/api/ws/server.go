package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"catcmd/internal/app/events"
	"catcmd/internal/domain"
	"catcmd/internal/usecase/commands"
)

type Config struct {
	Addr string
	// Console lets clients type chat lines that are handled as broadcaster
	// input.
	Console bool
	Parser  *commands.Parser
	History domain.CommandLogRepository
	Stats   CommandCounter
}

// CommandCounter aggregates the command log per command name.
type CommandCounter interface {
	CountByCommand(ctx context.Context) (map[string]int, error)
}

func (c *Config) addr() string {
	if strings.TrimSpace(c.Addr) == "" {
		return "127.0.0.1:8089"
	}
	return c.Addr
}

// MessageHandler receives console lines. It matches the interactor's Handle.
type MessageHandler func(ctx context.Context, msg domain.ChatMessage) error

// Server exposes /ws/chat, relaying bus events as JSON frames, and the
// read-only /api endpoints.
type Server struct {
	addr     string
	console  bool
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	handler MessageHandler

	api *apiHandlers
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Frame is what clients receive: the bus topic and its payload.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewServer(cfg Config) *Server {
	return &Server{
		addr:    cfg.addr(),
		console: cfg.Console,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(cfg.Console),
		},
		clients: make(map[*wsClient]struct{}),
		api:     newAPIHandlers(cfg),
	}
}

// checkOrigin accepts any origin for the read-only relay. With the console on,
// a connection can act as the broadcaster, so browsers must come from this
// host or from loopback.
func checkOrigin(console bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if !console {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		host := u.Hostname()
		if strings.EqualFold(host, "localhost") {
			return true
		}
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}
}

func (s *Server) SetHandler(h MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Server) getHandler() MessageHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// Handler builds the HTTP routes. Client goroutines stop when ctx ends.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/chat", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	s.api.register(mux)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ws: shutdown error: %v", err)
		}
		s.closeClients()
	}()

	log.Printf("ws: listening on %s", s.addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Relay forwards chat, command and error events from bus to every client until ctx
// ends or the bus closes.
func (s *Server) Relay(ctx context.Context, bus *events.Bus) {
	chat, unsubChat := bus.Subscribe(events.TopicChatMessage)
	defer unsubChat()
	cmds, unsubCmds := bus.Subscribe(events.TopicCommand)
	defer unsubCmds()
	appErrs, unsubErrs := bus.Subscribe(events.TopicAppError)
	defer unsubErrs()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-chat:
			if !ok {
				return
			}
			s.Broadcast(ctx, Frame{Type: events.TopicChatMessage, Data: payload})
		case payload, ok := <-cmds:
			if !ok {
				return
			}
			s.Broadcast(ctx, Frame{Type: events.TopicCommand, Data: payload})
		case payload, ok := <-appErrs:
			if !ok {
				return
			}
			s.Broadcast(ctx, Frame{Type: events.TopicAppError, Data: payload})
		}
	}
}

// Broadcast writes frame to every client, dropping clients that fail.
func (s *Server) Broadcast(ctx context.Context, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("ws: encode %s: %v", frame.Type, err)
		return
	}

	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if ctx.Err() != nil {
			return
		}
		if err := c.writeJSON(json.RawMessage(payload)); err != nil {
			log.Printf("ws: removing client due to write error: %v", err)
			s.removeClient(c)
		}
	}
}

// ClientCount reports the connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	clientCount := len(s.clients)
	s.mu.Unlock()

	log.Printf("ws: new connection from %s (%d active clients)", r.RemoteAddr, clientCount)

	go s.handleClient(ctx, client)
}

func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	defer func() {
		s.removeClient(client)
		log.Printf("ws: connection closed (%d active clients)", s.ClientCount())
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}

		if msgType != websocket.TextMessage {
			continue
		}

		if err := s.dispatchIncoming(ctx, data); err != nil {
			log.Printf("ws: incoming dispatch error: %v", err)
		}
	}
}

type incomingPayload struct {
	Text      string `json:"text"`
	Platform  string `json:"platform"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

// dispatchIncoming turns a console frame into a broadcaster chat message.
// Frames are JSON payloads or plain text.
func (s *Server) dispatchIncoming(ctx context.Context, data []byte) error {
	if !s.console {
		return nil
	}
	handler := s.getHandler()
	if handler == nil {
		return nil
	}

	msg, err := consoleMessage(data)
	if err != nil {
		return err
	}
	return handler(ctx, msg)
}

func consoleMessage(data []byte) (domain.ChatMessage, error) {
	payload := incomingPayload{}
	if err := json.Unmarshal(data, &payload); err != nil {
		payload = incomingPayload{Text: string(data)}
	}
	payload.Text = strings.TrimSpace(payload.Text)
	if payload.Text == "" {
		return domain.ChatMessage{}, fmt.Errorf("ws: empty incoming text")
	}

	platform, ok := domain.ParsePlatform(payload.Platform)
	if !ok {
		platform = domain.PlatformTwitch
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" {
		username = "console"
	}
	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		userID = "console"
	}

	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Platform:  platform,
		ChannelID: strings.TrimSpace(payload.ChannelID),
		UserID:    userID,
		Username:  username,
		Text:      payload.Text,
		Timestamp: time.Now().UTC(),
		Level:     domain.LevelBroadcaster,
	}, nil
}

func (s *Server) removeClient(c *wsClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*wsClient]struct{})
	s.mu.Unlock()
	for c := range clients {
		c.conn.Close()
	}
}
