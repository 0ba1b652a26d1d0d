package sqlite

import (
	"context"
	"database/sql"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// UpsertRating inserts or replaces the user's rating for a story.
func (s *Store) UpsertRating(ctx context.Context, rating *domain.Rating) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, story_id, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, story_id)
		DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at`,
		rating.UserID,
		rating.StoryID,
		rating.Rating,
		formatTime(rating.CreatedAt),
		formatTime(rating.UpdatedAt),
	)
	return err
}

// GetRating retrieves the user's rating for a story.
// Returns store.ErrNotFound if the user has not rated the story.
func (s *Store) GetRating(ctx context.Context, userID, storyID string) (*domain.Rating, error) {
	var (
		r         domain.Rating
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, story_id, rating, created_at, updated_at
		FROM ratings WHERE user_id = ? AND story_id = ?`,
		userID, storyID).Scan(&r.UserID, &r.StoryID, &r.Rating, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRatingSignals returns the user's ratings joined with story titles and
// genres, most recent first. This is the taste input for recommendations.
func (s *Store) ListRatingSignals(ctx context.Context, userID string) ([]domain.RatingSignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.story_id, s.title, COALESCE(s.genre, ''), r.rating
		FROM ratings r
		JOIN stories s ON s.id = r.story_id
		WHERE r.user_id = ?
		ORDER BY r.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.RatingSignal
	for rows.Next() {
		var sig domain.RatingSignal
		if err := rows.Scan(&sig.StoryID, &sig.Title, &sig.Genre, &sig.Rating); err != nil {
			return nil, err
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// GetRatingSummary returns the average rating and rating count for a story.
// A story with no ratings has a zero summary, not an error.
func (s *Store) GetRatingSummary(ctx context.Context, storyID string) (store.RatingSummary, error) {
	var summary store.RatingSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM ratings WHERE story_id = ?`,
		storyID).Scan(&summary.Average, &summary.Count)
	return summary, err
}
