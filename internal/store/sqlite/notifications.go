package sqlite

import (
	"context"
	"database/sql"

	"github.com/writha/writha-server/internal/domain"
)

// CreateNotification inserts a notification and emits it to live listeners.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, category, title, body, ref_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.UserID,
		string(n.Category),
		n.Title,
		nullString(n.Body),
		nullString(n.RefID),
		boolToInt(n.Read),
		formatTime(n.CreatedAt),
	)
	if err != nil {
		return err
	}

	s.emitter.NotificationCreated(n)
	return nil
}

// ListNotifications returns up to limit notifications for the user,
// newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category, title, body, ref_id, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Notification
	for rows.Next() {
		var (
			n         domain.Notification
			category  string
			body      sql.NullString
			refID     sql.NullString
			read      int
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &category, &n.Title, &body, &refID, &read, &createdAt); err != nil {
			return nil, err
		}
		n.Category = domain.NotificationCategory(category)
		n.Body = body.String
		n.RefID = refID.String
		n.Read = read != 0
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

// CountUnreadNotifications returns the account-wide unread count, which is
// independent of any fetch window.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`,
		userID).Scan(&n)
	return n, err
}

// MarkNotificationRead flips one notification to read. Reports whether the
// row actually changed, so already-read and unknown ids are both no-ops.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1
		WHERE id = ? AND user_id = ? AND read = 0`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllNotificationsRead flips every unread notification for the user and
// returns how many were flipped.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1
		WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
