package sqlite

import (
	"context"
	"database/sql"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// ListCandidates returns stories eligible for recommending to the user: not
// their own, not in their library, not previously dismissed, and matching the
// filter's genre and current-story exclusion. Newest first, which doubles as
// the deterministic fallback order when the reranker is unavailable.
func (s *Store) ListCandidates(ctx context.Context, userID string, filter store.CandidateFilter) ([]domain.Candidate, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, title, COALESCE(description, ''), COALESCE(genre, ''), COALESCE(cover_url, ''), is_free
		FROM stories
		WHERE writer_id != ?
		  AND id NOT IN (SELECT story_id FROM library WHERE user_id = ?)
		  AND id NOT IN (
			SELECT story_id FROM recommendation_feedback
			WHERE user_id = ? AND action = ?)`
	args := []any{userID, userID, userID, string(domain.FeedbackDismissed)}

	if filter.ExcludeStoryID != "" {
		query += " AND id != ?"
		args = append(args, filter.ExcludeStoryID)
	}
	if filter.GenreSlug != "" {
		query += " AND genre_slug = ?"
		args = append(args, filter.GenreSlug)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			c      domain.Candidate
			isFree int
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Genre, &c.CoverURL, &isFree); err != nil {
			return nil, err
		}
		c.IsFree = isFree != 0
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// SaveFeedback upserts the user's reaction to a recommended story. Called
// fire-and-forget by the service layer; a repeat reaction overwrites.
func (s *Store) SaveFeedback(ctx context.Context, fb *domain.Feedback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendation_feedback (user_id, story_id, action, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, story_id)
		DO UPDATE SET action = excluded.action, created_at = excluded.created_at`,
		fb.UserID,
		fb.StoryID,
		string(fb.Action),
		formatTime(fb.CreatedAt),
	)
	return err
}

// ListDismissedStoryIDs returns the ids of stories the user dismissed from
// their recommendations.
func (s *Store) ListDismissedStoryIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT story_id FROM recommendation_feedback
		WHERE user_id = ? AND action = ?`,
		userID, string(domain.FeedbackDismissed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return ids, nil
}
