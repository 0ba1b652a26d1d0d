package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// AddToLibrary saves a story into the user's library. Adding a story that is
// already saved is a no-op, so the operation is idempotent.
func (s *Store) AddToLibrary(ctx context.Context, userID, storyID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library (user_id, story_id, added_at) VALUES (?, ?, ?)`,
		userID, storyID, formatTime(time.Now()))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil
	}
	return err
}

// RemoveFromLibrary removes a story from the user's library.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) RemoveFromLibrary(ctx context.Context, userID, storyID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM library WHERE user_id = ? AND story_id = ?`, userID, storyID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListLibrary returns the stories in the user's library, most recently
// added first.
func (s *Store) ListLibrary(ctx context.Context, userID string) ([]*domain.Story, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixColumns("s", storyColumns)+`
		FROM stories s
		JOIN library l ON l.story_id = s.id
		WHERE l.user_id = ?
		ORDER BY l.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []*domain.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

// ListLibraryStoryIDs returns just the story ids in the user's library.
// Used to build the recommendation exclusion set.
func (s *Store) ListLibraryStoryIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT story_id FROM library WHERE user_id = ?`, userID)
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
	return ids, rows.Err()
}

// InLibrary reports whether the story is in the user's library.
func (s *Store) InLibrary(ctx context.Context, userID, storyID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM library WHERE user_id = ? AND story_id = ?`,
		userID, storyID).Scan(&n)
	return n > 0, err
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias, for use in joins.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
