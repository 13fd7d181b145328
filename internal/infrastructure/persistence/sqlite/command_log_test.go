package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"catcmd/internal/domain"
)

func newStore(t *testing.T) *CommandLogStore {
	t.Helper()
	store, err := NewCommandLogStore(filepath.Join(t.TempDir(), "data", "catcmd.db"))
	if err != nil {
		t.Fatalf("NewCommandLogStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func entry(id, command string, at time.Time) domain.CommandLogEntry {
	return domain.CommandLogEntry{
		EnvelopeID: id,
		MessageID:  "msg-" + id,
		Platform:   domain.PlatformTwitch,
		ChannelID:  "#catcmd",
		UserID:     "42",
		Username:   "kit",
		Command:    command,
		Canonical:  "!" + command,
		CreatedAt:  at,
	}
}

func TestNewCommandLogStoreRejectsEmptyPath(t *testing.T) {
	if _, err := NewCommandLogStore(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	tts := entry("e1", "tts", base)
	tts.Cost = 1000
	tts.Canonical = `!tts "hello there"`
	for _, e := range []domain.CommandLogEntry{
		tts,
		entry("e2", "lurk", base.Add(time.Minute)),
		entry("e3", "vote", base.Add(2*time.Minute)),
	} {
		if err := store.RecordCommand(ctx, e); err != nil {
			t.Fatalf("RecordCommand(%s): %v", e.EnvelopeID, err)
		}
	}

	got, err := store.ListRecentCommands(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentCommands: %v", err)
	}
	if len(got) != 2 || got[0].EnvelopeID != "e3" || got[1].EnvelopeID != "e2" {
		t.Fatalf("recent = %+v", got)
	}

	all, err := store.ListRecentCommands(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecentCommands: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	last := all[2]
	if last.Cost != 1000 || last.Canonical != `!tts "hello there"` || last.Platform != domain.PlatformTwitch || last.MessageID != "msg-e1" {
		t.Fatalf("round trip = %+v", last)
	}
	if !last.CreatedAt.Equal(base) {
		t.Fatalf("created_at = %s, want %s", last.CreatedAt, base)
	}
}

func TestRecordCommandIsIdempotentPerEnvelope(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	now := time.Now().UTC()

	if err := store.RecordCommand(ctx, entry("e1", "lurk", now)); err != nil {
		t.Fatalf("RecordCommand: %v", err)
	}
	if err := store.RecordCommand(ctx, entry("e1", "stats", now)); err != nil {
		t.Fatalf("RecordCommand duplicate: %v", err)
	}
	got, err := store.ListRecentCommands(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentCommands: %v", err)
	}
	if len(got) != 1 || got[0].Command != "lurk" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestRecordCommandRequiresEnvelopeID(t *testing.T) {
	store := newStore(t)
	if err := store.RecordCommand(context.Background(), entry("", "lurk", time.Now())); err == nil {
		t.Fatal("expected error for missing envelope id")
	}
}

func TestCountByCommand(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	now := time.Now().UTC()
	for i, name := range []string{"w", "w", "l", "w"} {
		if err := store.RecordCommand(ctx, entry(string(rune('a'+i)), name, now)); err != nil {
			t.Fatalf("RecordCommand: %v", err)
		}
	}
	counts, err := store.CountByCommand(ctx)
	if err != nil {
		t.Fatalf("CountByCommand: %v", err)
	}
	if counts["w"] != 3 || counts["l"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestStoreReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catcmd.db")
	store, err := NewCommandLogStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.RecordCommand(ctx, entry("e1", "lurk", time.Now().UTC())); err != nil {
		t.Fatalf("RecordCommand: %v", err)
	}
	store.Close()

	reopened, err := NewCommandLogStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.ListRecentCommands(ctx, 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("after reopen: %v %v", got, err)
	}
}
