// Package sse manages server-sent event connections and delivers live
// notification pushes to connected clients.
package sse

import (
	"time"

	"github.com/writha/writha-server/internal/domain"
)

// EventType identifies the kind of SSE event.
type EventType string

// Event types.
const (
	EventHeartbeat           EventType = "heartbeat"
	EventConnected           EventType = "connected"
	EventNotificationCreated EventType = "notification.created"
	EventUnreadCount         EventType = "notification.unread_count"
)

// Event is the wire format for one SSE message. UserID is delivery metadata,
// not payload: events with a UserID set are only sent to that user's
// connections.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`

	Notification *domain.Notification `json:"notification,omitempty"`
	UnreadCount  *int                 `json:"unread_count,omitempty"`
}

// NewHeartbeatEvent creates a keepalive event delivered to every client.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now()}
}

// NewNotificationEvent creates a live push for a freshly created
// notification, addressed to its recipient.
func NewNotificationEvent(n *domain.Notification) Event {
	return Event{
		Type:         EventNotificationCreated,
		UserID:       n.UserID,
		Timestamp:    time.Now(),
		Notification: n,
	}
}

// NewUnreadCountEvent pushes the user's new account-wide unread count, so
// other open tabs keep their badge in sync after a mark-read.
func NewUnreadCountEvent(userID string, count int) Event {
	return Event{
		Type:        EventUnreadCount,
		UserID:      userID,
		Timestamp:   time.Now(),
		UnreadCount: &count,
	}
}
