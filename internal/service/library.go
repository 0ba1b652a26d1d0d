package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/store"
)

// LibraryService manages a reader's saved stories. Paid stories enter the
// library through purchase only, since a library entry grants reading
// access.
type LibraryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(st store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: st, logger: logger}
}

// Add saves a free story to the user's library. Adding a story that is
// already there is a no-op.
func (s *LibraryService) Add(ctx context.Context, userID, storyID string) error {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("story not found")
		}
		return fmt.Errorf("lookup story: %w", err)
	}
	if !story.IsFree {
		return domainerrors.Forbidden("paid stories are added by purchasing them")
	}
	if err := s.store.AddToLibrary(ctx, userID, storyID); err != nil {
		return fmt.Errorf("add to library: %w", err)
	}
	return nil
}

// Remove takes a story out of the user's library.
func (s *LibraryService) Remove(ctx context.Context, userID, storyID string) error {
	if err := s.store.RemoveFromLibrary(ctx, userID, storyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("story is not in your library")
		}
		return fmt.Errorf("remove from library: %w", err)
	}
	return nil
}

// List returns the user's library, most recently added first.
func (s *LibraryService) List(ctx context.Context, userID string) ([]*domain.Story, error) {
	stories, err := s.store.ListLibrary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return stories, nil
}
