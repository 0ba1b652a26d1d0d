package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/id"
	"github.com/writha/writha-server/internal/store"
)

// feedWindowSize is how many items one feed fetch returns. The unread count
// always covers the whole account, not just this window.
const feedWindowSize = 20

// NotificationService manages per-user notification feeds. Creation flows
// through the store, which emits the live SSE event; this service adds the
// feed window and read-state operations on top.
type NotificationService struct {
	store  store.Store
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(st store.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: st, logger: logger}
}

// FeedResponse is one fetch of the notification feed.
type FeedResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// Feed filters for the notification feed.
const (
	FeedFilterUnread    = "unread"
	FeedFilterImportant = "important"
)

// Feed returns the newest feedWindowSize notifications together with the
// account-wide unread count. filter narrows the window to a derived view
// over the same fetch: "unread" or "important" (system and payment items).
// An empty filter returns the full window. Either way the unread count
// covers the whole account, not the filtered view.
func (s *NotificationService) Feed(ctx context.Context, userID, filter string) (*FeedResponse, error) {
	items, err := s.store.ListNotifications(ctx, userID, feedWindowSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	feed := domain.NewFeed(items, unread)
	switch filter {
	case FeedFilterUnread:
		items = feed.Unread()
	case FeedFilterImportant:
		items = feed.Important()
	default:
		items = feed.Items()
	}
	return &FeedResponse{Notifications: items, UnreadCount: feed.UnreadCount()}, nil
}

// UnreadCount returns the account-wide unread count on its own, for badge
// polls that don't need the items.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// ReadStateResponse reports the outcome of a read-state change.
type ReadStateResponse struct {
	// Changed is how many items actually flipped from unread to read.
	Changed     int `json:"changed"`
	UnreadCount int `json:"unread_count"`
}

// MarkRead marks one notification read. Marking an already-read or unknown
// notification changes nothing and is not an error.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*ReadStateResponse, error) {
	changed, err := s.store.MarkNotificationRead(ctx, userID, notificationID)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	unread, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	resp := &ReadStateResponse{UnreadCount: unread}
	if changed {
		resp.Changed = 1
	}
	return resp, nil
}

// MarkAllRead marks every notification for the user read, including ones
// outside the current feed window. The unread count is zero afterwards.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*ReadStateResponse, error) {
	changed, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("mark all read: %w", err)
	}
	return &ReadStateResponse{Changed: changed, UnreadCount: 0}, nil
}

// Notify creates a notification for a user. The store emits the live event
// to any connected SSE clients.
func (s *NotificationService) Notify(ctx context.Context, userID string, category domain.NotificationCategory, title, body, refID string) (*domain.Notification, error) {
	notifID, err := id.Generate("notif")
	if err != nil {
		return nil, fmt.Errorf("generate notification ID: %w", err)
	}

	n := &domain.Notification{
		ID:        notifID,
		UserID:    userID,
		Category:  category,
		Title:     title,
		Body:      body,
		RefID:     refID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// notifyBestEffort creates a notification and only logs on failure. Used
// where the triggering operation already succeeded and must not be rolled
// back over a missed notification.
func (s *NotificationService) notifyBestEffort(ctx context.Context, userID string, category domain.NotificationCategory, title, body, refID string) {
	if _, err := s.Notify(ctx, userID, category, title, body, refID); err != nil {
		s.logger.Warn("Failed to create notification",
			"user_id", userID,
			"category", category,
			"error", err,
		)
	}
}
