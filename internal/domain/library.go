package domain

import "time"

// LibraryEntry records that a story is in a user's library, either saved by
// the reader or granted by a purchase.
type LibraryEntry struct {
	UserID  string    `json:"user_id"`
	StoryID string    `json:"story_id"`
	AddedAt time.Time `json:"added_at"`
}
