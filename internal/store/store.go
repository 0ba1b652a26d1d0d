// Package store defines the persistence interfaces for the Writha server.
// The SQLite implementation lives in store/sqlite; per-user reader state is
// kept in a Badger key-value store under store/kv.
package store

import (
	"context"
	"time"

	"github.com/writha/writha-server/internal/domain"
)

// UserStore manages user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// SessionStore manages refresh sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error)
}

// StoryFilter narrows ListStories results. Zero values mean no filter.
type StoryFilter struct {
	GenreSlug string
	WriterID  string
	FreeOnly  bool
	Limit     int
}

// StoryStore manages stories and their chapters.
type StoryStore interface {
	CreateStory(ctx context.Context, story *domain.Story) error
	GetStory(ctx context.Context, id string) (*domain.Story, error)
	ListStories(ctx context.Context, filter StoryFilter) ([]*domain.Story, error)
	UpdateStory(ctx context.Context, story *domain.Story) error
	DeleteStory(ctx context.Context, id string) error

	CreateChapter(ctx context.Context, chapter *domain.Chapter) error
	GetChapterByNumber(ctx context.Context, storyID string, number int) (*domain.Chapter, error)
	ListChapters(ctx context.Context, storyID string) ([]*domain.Chapter, error)
	CountChapters(ctx context.Context, storyID string) (int, error)
}

// LibraryStore manages per-user libraries.
type LibraryStore interface {
	AddToLibrary(ctx context.Context, userID, storyID string) error
	RemoveFromLibrary(ctx context.Context, userID, storyID string) error
	ListLibrary(ctx context.Context, userID string) ([]*domain.Story, error)
	ListLibraryStoryIDs(ctx context.Context, userID string) ([]string, error)
	InLibrary(ctx context.Context, userID, storyID string) (bool, error)
}

// RatingSummary is the aggregate rating for a story.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// RatingStore manages story ratings.
type RatingStore interface {
	UpsertRating(ctx context.Context, rating *domain.Rating) error
	GetRating(ctx context.Context, userID, storyID string) (*domain.Rating, error)
	ListRatingSignals(ctx context.Context, userID string) ([]domain.RatingSignal, error)
	GetRatingSummary(ctx context.Context, storyID string) (RatingSummary, error)
}

// CommentStore manages story comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	ListComments(ctx context.Context, storyID string, limit int) ([]*domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// NotificationStore manages per-user notification feeds.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	// ListNotifications returns up to limit items for the user, newest first.
	ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	// MarkNotificationRead flips one item. Reports whether anything changed,
	// so repeat calls stay idempotent.
	MarkNotificationRead(ctx context.Context, userID, id string) (bool, error)
	// MarkAllNotificationsRead flips every unread item for the user and
	// returns how many were flipped.
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
}

// WalletStore manages wallet balances and transactions. Purchase runs the
// debit, the writer credit, both transaction rows, and the library grant in
// one database transaction.
type WalletStore interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	FundWallet(ctx context.Context, tx *domain.Transaction) (*domain.Wallet, error)
	Purchase(ctx context.Context, debit, credit *domain.Transaction) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error)
}

// CandidateFilter narrows the recommendation candidate pool.
type CandidateFilter struct {
	// ExcludeStoryID drops the story currently on the reader's screen.
	ExcludeStoryID string
	// GenreSlug keeps only stories in one genre when set.
	GenreSlug string
	Limit     int
}

// RecommendationStore manages candidate selection and feedback for the
// recommendation pipeline.
type RecommendationStore interface {
	// ListCandidates returns stories matching the filter that the user has
	// not written, saved, or dismissed, newest first. That order is the
	// pipeline's deterministic fallback order.
	ListCandidates(ctx context.Context, userID string, filter CandidateFilter) ([]domain.Candidate, error)
	SaveFeedback(ctx context.Context, fb *domain.Feedback) error
	ListDismissedStoryIDs(ctx context.Context, userID string) ([]string, error)
}

// Store is the complete persistence interface used by the service layer.
type Store interface {
	UserStore
	SessionStore
	StoryStore
	LibraryStore
	RatingStore
	CommentStore
	NotificationStore
	WalletStore
	RecommendationStore

	Close() error
}

// EventEmitter publishes store change events, typically to SSE clients.
type EventEmitter interface {
	NotificationCreated(n *domain.Notification)
}

// NoopEmitter discards all events. Used before the SSE manager is wired and
// in tests.
type NoopEmitter struct{}

// NewNoopEmitter returns an emitter that does nothing.
func NewNoopEmitter() *NoopEmitter { return &NoopEmitter{} }

// NotificationCreated implements EventEmitter.
func (*NoopEmitter) NotificationCreated(_ *domain.Notification) {}

// SearchIndexer maintains the story search index as stories change.
type SearchIndexer interface {
	IndexStory(story *domain.Story) error
	RemoveStory(id string) error
}

// NoopSearchIndexer discards all indexing requests.
type NoopSearchIndexer struct{}

// NewNoopSearchIndexer returns an indexer that does nothing.
func NewNoopSearchIndexer() *NoopSearchIndexer { return &NoopSearchIndexer{} }

// IndexStory implements SearchIndexer.
func (*NoopSearchIndexer) IndexStory(_ *domain.Story) error { return nil }

// RemoveStory implements SearchIndexer.
func (*NoopSearchIndexer) RemoveStory(_ string) error { return nil }
