// Package kv provides Badger-backed storage for per-user reader state:
// display preferences and last reading positions. This data is hot, small,
// and per-user, so it lives in a key-value store beside the SQLite database
// rather than in it.
package kv

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// ReaderStateStore persists reader preferences and positions.
type ReaderStateStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// position is the stored bookmark for one user on one story.
type position struct {
	Chapter int `json:"chapter"`
}

// Open opens (or creates) the reader state database at path.
func Open(path string, logger *slog.Logger) (*ReaderStateStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Reader state database opened", "path", path)
	}

	return &ReaderStateStore{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *ReaderStateStore) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing reader state database")
	}
	return s.db.Close()
}

func prefsKey(userID string) []byte {
	return []byte("prefs:" + userID)
}

func positionKey(userID, storyID string) []byte {
	return []byte("pos:" + userID + ":" + storyID)
}

// get retrieves a value by key.
func (s *ReaderStateStore) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *ReaderStateStore) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// GetPreferences returns the user's saved reader preferences, or the
// defaults when none have been saved yet.
func (s *ReaderStateStore) GetPreferences(ctx context.Context, userID string) (domain.ReaderPreferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.ReaderPreferences{}, err
	}

	var prefs domain.ReaderPreferences
	err := s.get(prefsKey(userID), &prefs)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DefaultPreferences(), nil
	}
	if err != nil {
		return domain.ReaderPreferences{}, err
	}
	// Stored values predating a bounds change still clamp on the way out.
	return prefs.Clamp(domain.DefaultPreferences()), nil
}

// SavePreferences persists the user's reader preferences.
func (s *ReaderStateStore) SavePreferences(ctx context.Context, userID string, prefs domain.ReaderPreferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(prefsKey(userID), prefs)
}

// GetPosition returns the user's saved chapter position for a story.
// Returns store.ErrNotFound when the user has never read the story.
func (s *ReaderStateStore) GetPosition(ctx context.Context, userID, storyID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var pos position
	err := s.get(positionKey(userID, storyID), &pos)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return pos.Chapter, nil
}

// SavePosition persists the user's chapter position for a story.
func (s *ReaderStateStore) SavePosition(ctx context.Context, userID, storyID string, chapter int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(positionKey(userID, storyID), position{Chapter: chapter})
}
