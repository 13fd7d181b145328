package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"catcmd/internal/domain"
)

const defaultListLimit = 50

// CommandLogStore persists every authorized command the bot dispatched.
type CommandLogStore struct {
	db *sql.DB
}

func NewCommandLogStore(dbPath string) (*CommandLogStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &CommandLogStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS command_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	envelope_id TEXT NOT NULL UNIQUE,
	message_id TEXT,
	platform TEXT NOT NULL,
	channel_id TEXT,
	user_id TEXT,
	username TEXT,
	command TEXT NOT NULL,
	canonical TEXT NOT NULL,
	cost INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_log_created_at ON command_log(created_at DESC);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: migrate command_log: %w", err)
	}
	return nil
}

func (s *CommandLogStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordCommand inserts entry. Recording the same envelope twice keeps the
// first row.
func (s *CommandLogStore) RecordCommand(ctx context.Context, entry domain.CommandLogEntry) error {
	if entry.EnvelopeID == "" {
		return fmt.Errorf("sqlite: command log entry without envelope id")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const stmt = `
INSERT INTO command_log (envelope_id, message_id, platform, channel_id, user_id, username, command, canonical, cost, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(envelope_id) DO NOTHING;
`

	_, err := s.db.ExecContext(
		ctx,
		stmt,
		entry.EnvelopeID,
		nullString(entry.MessageID),
		string(entry.Platform),
		nullString(entry.ChannelID),
		nullString(entry.UserID),
		nullString(entry.Username),
		entry.Command,
		entry.Canonical,
		entry.Cost,
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record command: %w", err)
	}
	return nil
}

// ListRecentCommands returns up to limit entries, newest first.
func (s *CommandLogStore) ListRecentCommands(ctx context.Context, limit int) ([]domain.CommandLogEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `
SELECT envelope_id, message_id, platform, channel_id, user_id, username, command, canonical, cost, created_at
FROM command_log
ORDER BY created_at DESC, id DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list commands: %w", err)
	}
	defer rows.Close()

	var out []domain.CommandLogEntry
	for rows.Next() {
		var entry domain.CommandLogEntry
		var platform string
		var messageID, channelID, userID, username sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&entry.EnvelopeID, &messageID, &platform, &channelID, &userID, &username, &entry.Command, &entry.Canonical, &entry.Cost, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan command: %w", err)
		}
		entry.Platform = domain.Platform(platform)
		entry.MessageID = messageID.String
		entry.ChannelID = channelID.String
		entry.UserID = userID.String
		entry.Username = username.String
		entry.CreatedAt = createdAt.Time
		out = append(out, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list command rows: %w", err)
	}
	return out, nil
}

// CountByCommand aggregates the log per command name.
func (s *CommandLogStore) CountByCommand(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT command, COUNT(*) FROM command_log GROUP BY command;`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: count commands: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scan count: %w", err)
		}
		counts[name] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: count rows: %w", err)
	}
	return counts, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ domain.CommandLogRepository = (*CommandLogStore)(nil)
