package domain

import "time"

// NotificationCategory classifies a notification for filtering.
type NotificationCategory string

// Notification categories.
const (
	NotificationSystem  NotificationCategory = "system"
	NotificationPayment NotificationCategory = "payment"
	NotificationStory   NotificationCategory = "story"
	NotificationSocial  NotificationCategory = "social"
)

// Important reports whether the category belongs in the important view.
func (c NotificationCategory) Important() bool {
	return c == NotificationSystem || c == NotificationPayment
}

// Notification is a single feed item delivered to one user.
type Notification struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Category  NotificationCategory `json:"category"`
	Title     string               `json:"title"`
	Body      string               `json:"body,omitempty"`
	// Optional deep link, e.g. a story or wallet transaction.
	RefID     string    `json:"ref_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed is one fetch of a user's notification feed: a newest-first window of
// items plus an unread counter that is tracked independently of the window
// and covers the whole account. The filtered views are derived from the
// same window, never a separate fetch.
type Feed struct {
	items  []*Notification
	unread int
}

// NewFeed builds a feed from an initial newest-first fetch and the
// account-wide unread count reported alongside it.
func NewFeed(items []*Notification, unread int) *Feed {
	if unread < 0 {
		unread = 0
	}
	return &Feed{items: items, unread: unread}
}

// Items returns the feed window, newest first.
func (f *Feed) Items() []*Notification {
	return f.items
}

// UnreadCount returns the account-wide unread counter.
func (f *Feed) UnreadCount() int {
	return f.unread
}

// Unread returns the held items that are still unread, newest first.
func (f *Feed) Unread() []*Notification {
	var out []*Notification
	for _, n := range f.items {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}

// Important returns the held system and payment items, newest first.
func (f *Feed) Important() []*Notification {
	var out []*Notification
	for _, n := range f.items {
		if n.Category.Important() {
			out = append(out, n)
		}
	}
	return out
}
