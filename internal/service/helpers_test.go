package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store/kv"
	"github.com/writha/writha-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// setupStore creates a temp SQLite store for service tests.
func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// setupReaderState creates a temp Badger reader-state store.
func setupReaderState(t *testing.T) *kv.ReaderStateStore {
	t.Helper()
	state, err := kv.Open(filepath.Join(t.TempDir(), "reader-state"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })
	return state
}

// seedUser creates a user directly in the store.
func seedUser(t *testing.T, st *sqlite.Store, id, username string, userType domain.UserType) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:           id,
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "$argon2id$fakehashfortest",
		UserType:     userType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return user
}

// seedStory creates a story directly in the store.
func seedStory(t *testing.T, st *sqlite.Store, id, writerID, title string, free bool, price int64, createdAt time.Time) *domain.Story {
	t.Helper()
	story := &domain.Story{
		ID:        id,
		WriterID:  writerID,
		Title:     title,
		Genre:     "Fantasy",
		GenreSlug: "fantasy",
		IsFree:    free,
		Price:     price,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, st.CreateStory(context.Background(), story))
	return story
}

// seedChapters creates n numbered chapters on a story.
func seedChapters(t *testing.T, st *sqlite.Store, storyID string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		chapter := &domain.Chapter{
			ID:        storyID + "-ch" + string(rune('0'+i)),
			StoryID:   storyID,
			Number:    i,
			Title:     "Chapter",
			Content:   "Content",
			CreatedAt: time.Now(),
		}
		require.NoError(t, st.CreateChapter(context.Background(), chapter))
	}
}
