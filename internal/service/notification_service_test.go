package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writha/writha-server/internal/domain"
)

func setupNotifications(t *testing.T) (*NotificationService, string) {
	t.Helper()
	st := setupStore(t)
	svc := NewNotificationService(st, testLogger())
	user := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)
	return svc, user.ID
}

func TestFeed_WindowAndAccountWideUnread(t *testing.T) {
	svc, userID := setupNotifications(t)
	ctx := context.Background()

	for i := range 25 {
		_, err := svc.Notify(ctx, userID, domain.NotificationStory, fmt.Sprintf("Update %d", i), "", "")
		require.NoError(t, err)
	}

	feed, err := svc.Feed(ctx, userID, "")
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, 20, "the window holds 20 items")
	assert.Equal(t, 25, feed.UnreadCount, "the counter covers the whole account")
}

func TestFeed_Filters(t *testing.T) {
	svc, userID := setupNotifications(t)
	ctx := context.Background()

	_, err := svc.Notify(ctx, userID, domain.NotificationSystem, "Welcome", "", "")
	require.NoError(t, err)
	funded, err := svc.Notify(ctx, userID, domain.NotificationPayment, "Wallet funded", "", "")
	require.NoError(t, err)
	chapter, err := svc.Notify(ctx, userID, domain.NotificationStory, "New chapter", "", "")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, userID, domain.NotificationSocial, "New comment", "", "")
	require.NoError(t, err)

	// Important keeps system and payment items only, newest first.
	feed, err := svc.Feed(ctx, userID, FeedFilterImportant)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, funded.ID, feed.Notifications[0].ID)
	assert.Equal(t, 4, feed.UnreadCount, "the counter ignores the filter")

	// Unread shrinks as items get read.
	_, err = svc.MarkRead(ctx, userID, chapter.ID)
	require.NoError(t, err)
	feed, err = svc.Feed(ctx, userID, FeedFilterUnread)
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, 3)
	assert.Equal(t, 3, feed.UnreadCount)
}

func TestMarkRead_Idempotent(t *testing.T) {
	svc, userID := setupNotifications(t)
	ctx := context.Background()

	n, err := svc.Notify(ctx, userID, domain.NotificationSystem, "Welcome", "", "")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, userID, domain.NotificationStory, "New chapter", "", "")
	require.NoError(t, err)

	resp, err := svc.MarkRead(ctx, userID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Changed)
	assert.Equal(t, 1, resp.UnreadCount)

	// Marking again changes nothing and doesn't drive the counter down.
	resp, err = svc.MarkRead(ctx, userID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Changed)
	assert.Equal(t, 1, resp.UnreadCount)

	// Unknown ids are also a quiet no-op.
	resp, err = svc.MarkRead(ctx, userID, "notif-unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Changed)
	assert.Equal(t, 1, resp.UnreadCount)
}

func TestMarkAllRead_ZeroesCounter(t *testing.T) {
	svc, userID := setupNotifications(t)
	ctx := context.Background()

	for i := range 25 {
		_, err := svc.Notify(ctx, userID, domain.NotificationStory, fmt.Sprintf("Update %d", i), "", "")
		require.NoError(t, err)
	}

	resp, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Changed, "items outside the window flip too")
	assert.Equal(t, 0, resp.UnreadCount)

	count, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	feed, err := svc.Feed(ctx, userID, "")
	require.NoError(t, err)
	for _, item := range feed.Notifications {
		assert.True(t, item.Read)
	}
}

func TestMarkRead_OtherUsersNotificationUntouched(t *testing.T) {
	st := setupStore(t)
	svc := NewNotificationService(st, testLogger())
	a := seedUser(t, st, "user-a", "ada", domain.UserTypeReader)
	b := seedUser(t, st, "user-b", "bola", domain.UserTypeReader)
	ctx := context.Background()

	n, err := svc.Notify(ctx, a.ID, domain.NotificationPayment, "Wallet funded", "", "")
	require.NoError(t, err)

	resp, err := svc.MarkRead(ctx, b.ID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Changed)

	count, err := svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
