package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/id"
	"github.com/writha/writha-server/internal/media/images"
	"github.com/writha/writha-server/internal/normalize"
	"github.com/writha/writha-server/internal/store"
	"github.com/writha/writha-server/internal/util"
)

// StoryService handles story publishing and chapter management.
type StoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewStoryService creates a new story service.
func NewStoryService(st store.Store, logger *slog.Logger) *StoryService {
	return &StoryService{store: st, logger: logger}
}

// PublishStoryRequest contains new story data.
type PublishStoryRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Genre       string `json:"genre" validate:"required,max=50"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
	IsFree      bool   `json:"is_free"`
	// Price in kobo. Required for paid stories.
	Price int64 `json:"price" validate:"omitempty,gte=0"`
	// Raw cover image bytes, used for the BlurHash placeholder.
	CoverData []byte `json:"-"`
}

// AddChapterRequest contains a new chapter for an existing story.
type AddChapterRequest struct {
	StoryID string `json:"story_id" validate:"required"`
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required"`
}

// PublishStory creates a new story for a writer or educator account.
func (s *StoryService) PublishStory(ctx context.Context, writerID string, req PublishStoryRequest) (*domain.Story, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	writer, err := s.store.GetUser(ctx, writerID)
	if err != nil {
		return nil, fmt.Errorf("lookup writer: %w", err)
	}
	if !writer.IsWriter() {
		return nil, domainerrors.Forbidden("only writer and educator accounts can publish")
	}

	if !req.IsFree && req.Price <= 0 {
		return nil, domainerrors.Validation("paid stories need a price")
	}

	storyID, err := id.Generate("story")
	if err != nil {
		return nil, fmt.Errorf("generate story ID: %w", err)
	}

	now := time.Now()
	story := &domain.Story{
		ID:          storyID,
		WriterID:    writerID,
		Title:       normalize.Title(req.Title),
		Description: normalize.Description(req.Description),
		CoverURL:    req.CoverURL,
		Genre:       req.Genre,
		GenreSlug:   util.Slugify(req.Genre),
		IsFree:      req.IsFree,
		Price:       req.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsFree {
		story.Price = 0
	}

	if len(req.CoverData) > 0 {
		hash, hashErr := images.ComputeBlurHash(req.CoverData)
		if hashErr != nil {
			// The placeholder is cosmetic, publishing proceeds without it.
			s.logger.Warn("Failed to compute cover blurhash",
				"story_id", storyID,
				"error", hashErr,
			)
		} else {
			story.CoverBlurhash = hash
		}
	}

	if err := s.store.CreateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	s.logger.Info("Story published",
		"story_id", storyID,
		"writer_id", writerID,
		"genre", story.GenreSlug,
	)

	return story, nil
}

// AddChapter appends a chapter to a story owned by the writer. Chapter
// numbers are assigned sequentially.
func (s *StoryService) AddChapter(ctx context.Context, writerID string, req AddChapterRequest) (*domain.Chapter, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	story, err := s.store.GetStory(ctx, req.StoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("lookup story: %w", err)
	}
	if story.WriterID != writerID {
		return nil, domainerrors.Forbidden("story belongs to another writer")
	}

	count, err := s.store.CountChapters(ctx, req.StoryID)
	if err != nil {
		return nil, fmt.Errorf("count chapters: %w", err)
	}

	chapterID, err := id.Generate("chapter")
	if err != nil {
		return nil, fmt.Errorf("generate chapter ID: %w", err)
	}

	chapter := &domain.Chapter{
		ID:        chapterID,
		StoryID:   req.StoryID,
		Number:    count + 1,
		Title:     normalize.Title(req.Title),
		Content:   normalize.ChapterContent(req.Content),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateChapter(ctx, chapter); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}

	// Touch the story so catalog ordering reflects fresh chapters.
	story.UpdatedAt = time.Now()
	if err := s.store.UpdateStory(ctx, story); err != nil {
		s.logger.Warn("Failed to touch story after chapter publish",
			"story_id", story.ID,
			"error", err,
		)
	}

	s.logger.Info("Chapter published",
		"story_id", req.StoryID,
		"chapter", chapter.Number,
	)

	return chapter, nil
}

// GetStory returns one story with its chapter count and rating summary.
func (s *StoryService) GetStory(ctx context.Context, storyID string) (*StoryDetail, error) {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("lookup story: %w", err)
	}

	count, err := s.store.CountChapters(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("count chapters: %w", err)
	}

	summary, err := s.store.GetRatingSummary(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}

	return &StoryDetail{
		Story:        story,
		ChapterCount: count,
		Rating:       summary,
	}, nil
}

// StoryDetail is a story with its derived catalog data.
type StoryDetail struct {
	Story        *domain.Story       `json:"story"`
	ChapterCount int                 `json:"chapter_count"`
	Rating       store.RatingSummary `json:"rating"`
}

// ListStories returns catalog stories, newest first.
func (s *StoryService) ListStories(ctx context.Context, filter store.StoryFilter) ([]*domain.Story, error) {
	stories, err := s.store.ListStories(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return stories, nil
}

// ListChapters returns a story's chapters in order.
func (s *StoryService) ListChapters(ctx context.Context, storyID string) ([]*domain.Chapter, error) {
	chapters, err := s.store.ListChapters(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

// MarkCompleted flags a story as complete. Only the owner can do this.
func (s *StoryService) MarkCompleted(ctx context.Context, writerID, storyID string) (*domain.Story, error) {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("lookup story: %w", err)
	}
	if story.WriterID != writerID {
		return nil, domainerrors.Forbidden("story belongs to another writer")
	}
	if story.IsCompleted {
		return story, nil
	}

	story.IsCompleted = true
	story.UpdatedAt = time.Now()
	if err := s.store.UpdateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("update story: %w", err)
	}
	return story, nil
}

// DeleteStory removes a story and its chapters. Only the owner can do this.
func (s *StoryService) DeleteStory(ctx context.Context, writerID, storyID string) error {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("story not found")
		}
		return fmt.Errorf("lookup story: %w", err)
	}
	if story.WriterID != writerID {
		return domainerrors.Forbidden("story belongs to another writer")
	}
	if err := s.store.DeleteStory(ctx, storyID); err != nil {
		return fmt.Errorf("delete story: %w", err)
	}

	s.logger.Info("Story deleted", "story_id", storyID, "writer_id", writerID)
	return nil
}
