package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/store"
)

// RatingService manages story ratings. Ratings double as taste signals for
// the recommendation pipeline.
type RatingService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(st store.Store, logger *slog.Logger) *RatingService {
	return &RatingService{store: st, logger: logger}
}

// Rate records the user's star rating for a story. Re-rating overwrites.
// Returns the story's updated rating summary.
func (s *RatingService) Rate(ctx context.Context, userID, storyID string, value int) (store.RatingSummary, error) {
	if value < domain.MinRating || value > domain.MaxRating {
		return store.RatingSummary{}, domainerrors.Validationf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.RatingSummary{}, domainerrors.NotFound("story not found")
		}
		return store.RatingSummary{}, fmt.Errorf("lookup story: %w", err)
	}
	if story.WriterID == userID {
		return store.RatingSummary{}, domainerrors.Forbidden("you can't rate your own story")
	}

	now := time.Now()
	rating := &domain.Rating{
		UserID:    userID,
		StoryID:   storyID,
		Rating:    value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.UpsertRating(ctx, rating); err != nil {
		return store.RatingSummary{}, fmt.Errorf("save rating: %w", err)
	}

	summary, err := s.store.GetRatingSummary(ctx, storyID)
	if err != nil {
		return store.RatingSummary{}, fmt.Errorf("rating summary: %w", err)
	}
	return summary, nil
}

// Summary returns the aggregate rating for a story.
func (s *RatingService) Summary(ctx context.Context, storyID string) (store.RatingSummary, error) {
	summary, err := s.store.GetRatingSummary(ctx, storyID)
	if err != nil {
		return store.RatingSummary{}, fmt.Errorf("rating summary: %w", err)
	}
	return summary, nil
}
