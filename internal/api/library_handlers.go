package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/domain"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "List library",
		Description: "Returns the user's library, most recently added first",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToLibrary",
		Method:      http.MethodPut,
		Path:        "/api/v1/library/{storyID}",
		Summary:     "Add to library",
		Description: "Saves a free story to the library. Paid stories enter through purchase. Idempotent.",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddToLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromLibrary",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library/{storyID}",
		Summary:     "Remove from library",
		Description: "Takes a story out of the library",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFromLibrary)
}

// LibraryStoryInput addresses one library entry by story.
type LibraryStoryInput struct {
	StoryID string `path:"storyID" doc:"Story ID"`
}

// LibraryOutput wraps the library listing for Huma.
type LibraryOutput struct {
	Body []*domain.Story
}

func (s *Server) handleListLibrary(ctx context.Context, _ *struct{}) (*LibraryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	stories, err := s.services.Library.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &LibraryOutput{Body: stories}, nil
}

func (s *Server) handleAddToLibrary(ctx context.Context, input *LibraryStoryInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Library.Add(ctx, userID, input.StoryID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleRemoveFromLibrary(ctx context.Context, input *LibraryStoryInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Library.Remove(ctx, userID, input.StoryID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
