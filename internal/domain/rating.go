package domain

import "time"

// Rating bounds. One rating per user per story; re-rating overwrites.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a reader's star rating for a story.
type Rating struct {
	UserID    string    `json:"user_id"`
	StoryID   string    `json:"story_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
