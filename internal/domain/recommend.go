package domain

import "time"

// RatingSignal is one of the reader's ratings used as a taste signal for
// recommendations. Every explicit rating counts, high or low; low ratings
// tell the ranker what to steer away from.
type RatingSignal struct {
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
	Genre   string `json:"genre,omitempty"`
	Rating  int    `json:"rating"`
}

// Candidate is a story eligible for recommendation: published, not in the
// reader's library, and not previously dismissed.
type Candidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	IsFree      bool   `json:"is_free"`
}

// FeedbackAction is what the reader did with a recommendation.
type FeedbackAction string

// Feedback actions.
const (
	FeedbackDismissed FeedbackAction = "dismissed"
	FeedbackSaved     FeedbackAction = "saved"
)

// Feedback records a reader's reaction to a recommended story. Stored
// fire-and-forget; a lost write only means the story may be recommended
// again.
type Feedback struct {
	UserID    string         `json:"user_id"`
	StoryID   string         `json:"story_id"`
	Action    FeedbackAction `json:"action"`
	CreatedAt time.Time      `json:"created_at"`
}
