package sqlite

import (
	"context"
	"database/sql"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// CreateComment inserts a comment on a story.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, story_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.StoryID,
		comment.UserID,
		comment.Content,
		formatTime(comment.CreatedAt),
	)
	return err
}

// GetComment returns one comment by id.
// Returns store.ErrNotFound if the comment does not exist.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.story_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = ?`, id)

	var (
		c         domain.Comment
		createdAt string
	)
	err := row.Scan(&c.ID, &c.StoryID, &c.UserID, &c.Username, &c.Content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns up to limit comments on a story, newest first, with
// the commenter's username denormalized in.
func (s *Store) ListComments(ctx context.Context, storyID string, limit int) ([]*domain.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.story_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.story_id = ?
		ORDER BY c.created_at DESC
		LIMIT ?`, storyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var (
			c         domain.Comment
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.StoryID, &c.UserID, &c.Username, &c.Content, &createdAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment.
// Returns store.ErrNotFound if the comment does not exist.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
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
