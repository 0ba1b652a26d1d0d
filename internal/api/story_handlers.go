package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/service"
	"github.com/writha/writha-server/internal/store"
)

func (s *Server) registerStoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "publishStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories",
		Summary:     "Publish story",
		Description: "Creates a new story. Writer and educator accounts only.",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories",
		Summary:     "List stories",
		Description: "Returns catalog stories, newest first",
		Tags:        []string{"Stories"},
	}, s.handleListStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStory",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Get story",
		Description: "Returns one story with its chapter count and rating summary",
		Tags:        []string{"Stories"},
	}, s.handleGetStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteStory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Delete story",
		Description: "Removes a story and its chapters. Owner only.",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "addChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{id}/chapters",
		Summary:     "Add chapter",
		Description: "Appends a chapter to a story. Chapter numbers are assigned sequentially.",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "listChapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/chapters",
		Summary:     "List chapters",
		Description: "Returns a story's chapters in order",
		Tags:        []string{"Stories"},
	}, s.handleListChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "completeStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{id}/complete",
		Summary:     "Mark story completed",
		Description: "Flags a story as complete. Owner only, idempotent.",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCompleteStory)
}

// === DTOs ===

// PublishStoryInput contains a new story.
type PublishStoryInput struct {
	Body struct {
		Title       string `json:"title" validate:"required,min=1,max=200" doc:"Story title"`
		Description string `json:"description,omitempty" validate:"max=5000" doc:"Story description, HTML is converted to Markdown"`
		Genre       string `json:"genre" validate:"required,max=50" doc:"Genre name, slugged server-side"`
		CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
		CoverBase64 string `json:"cover_base64,omitempty" doc:"Base64-encoded cover image, used for the BlurHash placeholder"`
		IsFree      bool   `json:"is_free" doc:"Whether the story is free to read"`
		Price       int64  `json:"price,omitempty" validate:"omitempty,gte=0" doc:"Price in kobo, required for paid stories"`
	}
}

// StoryOutput wraps a story for Huma.
type StoryOutput struct {
	Body domain.Story
}

// StoryDetailOutput wraps a story detail for Huma.
type StoryDetailOutput struct {
	Body service.StoryDetail
}

// ListStoriesInput filters the catalog listing.
type ListStoriesInput struct {
	Genre    string `query:"genre" validate:"omitempty,max=50" doc:"Filter by genre slug"`
	WriterID string `query:"writer_id" validate:"omitempty,max=64" doc:"Filter by writer"`
	FreeOnly bool   `query:"free_only" doc:"Only free stories"`
	Limit    int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 50)"`
}

// StoriesOutput wraps a story list for Huma.
type StoriesOutput struct {
	Body []*domain.Story
}

// StoryIDInput addresses one story by path.
type StoryIDInput struct {
	ID string `path:"id" doc:"Story ID"`
}

// AddChapterInput contains a new chapter.
type AddChapterInput struct {
	ID   string `path:"id" doc:"Story ID"`
	Body struct {
		Title   string `json:"title" validate:"required,min=1,max=200" doc:"Chapter title"`
		Content string `json:"content" validate:"required" doc:"Chapter body, HTML is converted to Markdown"`
	}
}

// ChapterOutput wraps a chapter for Huma.
type ChapterOutput struct {
	Body domain.Chapter
}

// ChaptersOutput wraps a chapter list for Huma.
type ChaptersOutput struct {
	Body []*domain.Chapter
}

// === Handlers ===

func (s *Server) handlePublishStory(ctx context.Context, input *PublishStoryInput) (*StoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.PublishStoryRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Genre:       input.Body.Genre,
		CoverURL:    input.Body.CoverURL,
		IsFree:      input.Body.IsFree,
		Price:       input.Body.Price,
	}
	if input.Body.CoverBase64 != "" {
		data, decErr := base64.StdEncoding.DecodeString(input.Body.CoverBase64)
		if decErr != nil {
			return nil, huma.Error400BadRequest("cover_base64 is not valid base64")
		}
		req.CoverData = data
	}

	story, err := s.services.Story.PublishStory(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: *story}, nil
}

func (s *Server) handleListStories(ctx context.Context, input *ListStoriesInput) (*StoriesOutput, error) {
	stories, err := s.services.Story.ListStories(ctx, store.StoryFilter{
		GenreSlug: input.Genre,
		WriterID:  input.WriterID,
		FreeOnly:  input.FreeOnly,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &StoriesOutput{Body: stories}, nil
}

func (s *Server) handleGetStory(ctx context.Context, input *StoryIDInput) (*StoryDetailOutput, error) {
	detail, err := s.services.Story.GetStory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &StoryDetailOutput{Body: *detail}, nil
}

func (s *Server) handleDeleteStory(ctx context.Context, input *StoryIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Story.DeleteStory(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleAddChapter(ctx context.Context, input *AddChapterInput) (*ChapterOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	chapter, err := s.services.Story.AddChapter(ctx, userID, service.AddChapterRequest{
		StoryID: input.ID,
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &ChapterOutput{Body: *chapter}, nil
}

func (s *Server) handleListChapters(ctx context.Context, input *StoryIDInput) (*ChaptersOutput, error) {
	chapters, err := s.services.Story.ListChapters(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ChaptersOutput{Body: chapters}, nil
}

func (s *Server) handleCompleteStory(ctx context.Context, input *StoryIDInput) (*StoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	story, err := s.services.Story.MarkCompleted(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: *story}, nil
}
