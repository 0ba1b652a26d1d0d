package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/search"
	"github.com/writha/writha-server/internal/store"
)

// SearchService maintains the catalog search index and serves queries. It
// implements store.SearchIndexer, so story writes keep the index current.
type SearchService struct {
	index  *search.Index
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, st store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: st, logger: logger}
}

// Search runs a catalog query.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = search.DefaultParams().Limit
	}
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// IndexStory implements store.SearchIndexer.
func (s *SearchService) IndexStory(story *domain.Story) error {
	writerName := s.writerName(story.WriterID)
	return s.index.IndexDocument(search.StoryToDocument(story, writerName))
}

// RemoveStory implements store.SearchIndexer.
func (s *SearchService) RemoveStory(id string) error {
	return s.index.DeleteDocument(id)
}

// IndexWriter adds or updates a writer profile in the index.
func (s *SearchService) IndexWriter(u *domain.User) error {
	if !u.IsWriter() {
		return nil
	}
	return s.index.IndexDocument(search.WriterToDocument(u))
}

// Reindex drops the index and rebuilds it from the catalog. Used on startup
// when the mapping version changes and from the admin resync endpoint.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	stories, err := s.store.ListStories(ctx, store.StoryFilter{})
	if err != nil {
		return 0, fmt.Errorf("list stories: %w", err)
	}

	docs := make([]*search.Document, 0, len(stories))
	writers := make(map[string]string)
	for _, story := range stories {
		name, ok := writers[story.WriterID]
		if !ok {
			name = s.writerName(story.WriterID)
			writers[story.WriterID] = name
		}
		docs = append(docs, search.StoryToDocument(story, name))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index stories: %w", err)
	}

	s.logger.Info("Search index rebuilt", "stories", len(docs))
	return len(docs), nil
}

// writerName resolves a writer's username for denormalization into story
// documents. Missing writers index with an empty name rather than failing.
func (s *SearchService) writerName(writerID string) string {
	user, err := s.store.GetUser(context.Background(), writerID)
	if err != nil {
		s.logger.Warn("Failed to resolve writer name for search index",
			"writer_id", writerID,
			"error", err,
		)
		return ""
	}
	return user.Username
}
