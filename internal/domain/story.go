package domain

import "time"

// Story represents a serialized story (or textbook) published by a writer.
// Immutable for the duration of a reading session; chapters are appended by
// the writer publishing flow.
type Story struct {
	ID            string    `json:"id"`
	WriterID      string    `json:"writer_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	CoverURL      string    `json:"cover_url,omitempty"`
	CoverBlurhash string    `json:"cover_blurhash,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	GenreSlug     string    `json:"genre_slug,omitempty"`
	IsFree        bool      `json:"is_free"`
	// Price in kobo. Ignored when IsFree.
	Price       int64     `json:"price"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chapter is one installment of a story. Numbers are 1-based and unique per
// story, contiguous by convention but not enforced.
type Chapter struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	Number    int       `json:"chapter_number"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
