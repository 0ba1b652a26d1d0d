// Package search provides full-text story and writer search using Bleve,
// with fuzzy matching and genre filtering.
package search

import (
	"github.com/writha/writha-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeStory  DocType = "story"
	DocTypeWriter DocType = "writer"
)

// Document is the unified document structure for the Bleve index.
// Stories and writers share one index with type discrimination, so a single
// query serves the search page's mixed results.
type Document struct {
	// Identity
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary searchable text. Story: title, Writer: username.
	Name string `json:"name"`

	// Story-specific fields (empty for writers)
	Description string `json:"description,omitempty"`
	WriterName  string `json:"writer_name,omitempty"` // Denormalized for search
	GenreSlug   string `json:"genre_slug,omitempty"`
	IsFree      bool   `json:"is_free,omitempty"`

	// Writer-specific fields
	Bio string `json:"bio,omitempty"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.WriterName != "" {
		m["writer_name"] = d.WriterName
	}
	if d.GenreSlug != "" {
		m["genre_slug"] = d.GenreSlug
	}
	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	if d.IsFree {
		m["is_free"] = true
	}

	return m
}

// StoryToDocument converts a domain Story to a search Document. The writer
// name is denormalized in by the caller, as the search package shouldn't
// depend on store.
func StoryToDocument(story *domain.Story, writerName string) *Document {
	return &Document{
		ID:          story.ID,
		Type:        DocTypeStory,
		Name:        story.Title,
		Description: story.Description,
		WriterName:  writerName,
		GenreSlug:   story.GenreSlug,
		IsFree:      story.IsFree,
		CreatedAt:   story.CreatedAt.UnixMilli(),
		UpdatedAt:   story.UpdatedAt.UnixMilli(),
	}
}

// WriterToDocument converts a writer account to a search Document.
func WriterToDocument(u *domain.User) *Document {
	return &Document{
		ID:        u.ID,
		Type:      DocTypeWriter,
		Name:      u.Username,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt.UnixMilli(),
		UpdatedAt: u.UpdatedAt.UnixMilli(),
	}
}
