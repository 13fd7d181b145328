package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"catcmd/internal/domain"
	"catcmd/internal/usecase/commands"
)

const maxHistoryLimit = 500

type apiHandlers struct {
	registry *commands.Registry
	parser   *commands.Parser
	history  domain.CommandLogRepository
	stats    CommandCounter
}

func newAPIHandlers(cfg Config) *apiHandlers {
	if cfg.Parser == nil {
		return nil
	}
	return &apiHandlers{
		registry: cfg.Parser.Registry(),
		parser:   cfg.Parser,
		history:  cfg.History,
		stats:    cfg.Stats,
	}
}

func (a *apiHandlers) register(mux *http.ServeMux) {
	if a == nil || mux == nil {
		return
	}

	mux.HandleFunc("/api/commands", a.withCORS(a.handleCommands))
	mux.HandleFunc("/api/parse", a.withCORS(a.handleParse))
	if a.history != nil {
		mux.HandleFunc("/api/history", a.withCORS(a.handleHistory))
	}
	if a.stats != nil {
		mux.HandleFunc("/api/history/stats", a.withCORS(a.handleStats))
	}
}

func (a *apiHandlers) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
}

type commandInfo struct {
	Name                  string   `json:"name"`
	Aliases               []string `json:"aliases"`
	Usage                 string   `json:"usage"`
	Description           string   `json:"description"`
	Cost                  int      `json:"cost"`
	MinLevel              string   `json:"min_level"`
	ViewerCooldownSeconds float64  `json:"viewer_cooldown_seconds"`
	GlobalCooldownSeconds float64  `json:"global_cooldown_seconds"`
}

type parseRequest struct {
	Text     string `json:"text"`
	Level    string `json:"level"`
	Platform string `json:"platform"`
}

type parseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type parseResponse struct {
	IsCommand bool        `json:"is_command"`
	Command   string      `json:"command,omitempty"`
	Args      []string    `json:"args,omitempty"`
	Canonical string      `json:"canonical,omitempty"`
	Error     *parseError `json:"error,omitempty"`
}

type historyEntry struct {
	EnvelopeID string    `json:"envelope_id"`
	Platform   string    `json:"platform"`
	ChannelID  string    `json:"channel_id"`
	Username   string    `json:"username"`
	Command    string    `json:"command"`
	Canonical  string    `json:"canonical"`
	Cost       int       `json:"cost"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *apiHandlers) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	descs := a.registry.Descriptors()
	out := make([]commandInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, commandInfo{
			Name:                  d.Name,
			Aliases:               d.Aliases,
			Usage:                 d.Usage,
			Description:           d.Description,
			Cost:                  d.Cost,
			MinLevel:              d.MinLevel.String(),
			ViewerCooldownSeconds: d.ViewerCooldown.Seconds(),
			GlobalCooldownSeconds: d.GlobalCooldown.Seconds(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleParse runs a line through the envelope pipeline without dispatching
// it, so overlays and tooling can preview what the bot would accept.
func (a *apiHandlers) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	level := domain.LevelViewer
	if strings.TrimSpace(req.Level) != "" {
		parsed, err := domain.ParseViewerLevel(req.Level)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		level = parsed
	}

	platform := domain.PlatformTwitch
	if strings.TrimSpace(req.Platform) != "" {
		p, ok := domain.ParsePlatform(req.Platform)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid platform")
			return
		}
		platform = p
	}

	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Platform:  platform,
		UserID:    "api",
		Username:  "api",
		Text:      req.Text,
		Timestamp: time.Now().UTC(),
		Level:     level,
	}

	env, err := commands.NewEnvelope(msg, a.parser)
	if err != nil {
		writeJSON(w, http.StatusOK, parseResponse{
			IsCommand: commands.KindOf(err) != commands.ErrSyntax,
			Error:     &parseError{Kind: commands.KindOf(err).String(), Message: err.Error()},
		})
		return
	}
	if !env.HasCommand() {
		writeJSON(w, http.StatusOK, parseResponse{})
		return
	}

	cmd := env.Command()
	writeJSON(w, http.StatusOK, parseResponse{
		IsCommand: true,
		Command:   cmd.Kind().String(),
		Args:      cmd.Args(),
		Canonical: a.parser.Render(cmd),
	})
}

func (a *apiHandlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := a.history.ListRecentCommands(r.Context(), limit)
	if err != nil {
		log.Printf("api: history: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			EnvelopeID: e.EnvelopeID,
			Platform:   string(e.Platform),
			ChannelID:  e.ChannelID,
			Username:   e.Username,
			Command:    e.Command,
			Canonical:  e.Canonical,
			Cost:       e.Cost,
			CreatedAt:  e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counts, err := a.stats.CountByCommand(r.Context())
	if err != nil {
		log.Printf("api: stats: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
