package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/writha/writha-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.DiscardHandler)
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(id, email, username string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: "$argon2id$fakehashfortest",
		UserType:     domain.UserTypeReader,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// makeTestStory creates a story owned by writerID. The writer row must
// already exist.
func makeTestStory(id, writerID, title string) *domain.Story {
	now := time.Now()
	return &domain.Story{
		ID:        id,
		WriterID:  writerID,
		Title:     title,
		Genre:     "Fantasy",
		GenreSlug: "fantasy",
		IsFree:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// seedUserAndStory inserts a writer and one of their stories.
func seedUserAndStory(t *testing.T, s *Store, userID, storyID string) {
	t.Helper()
	ctx := context.Background()
	u := makeTestUser(userID, userID+"@example.com", userID)
	u.UserType = domain.UserTypeWriter
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := s.CreateStory(ctx, makeTestStory(storyID, userID, "Story "+storyID)); err != nil {
		t.Fatalf("seed story: %v", err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"users", "sessions", "stories", "chapters", "library",
		"ratings", "comments", "notifications",
		"wallets", "wallet_transactions", "recommendation_feedback",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.DiscardHandler)

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}
