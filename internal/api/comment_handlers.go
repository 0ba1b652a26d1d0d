package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{id}/comments",
		Summary:     "Add comment",
		Description: "Posts a comment on a story and notifies the writer",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/comments",
		Summary:     "List comments",
		Description: "Returns the newest comments on a story",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Removes the user's own comment",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// AddCommentInput contains a new comment.
type AddCommentInput struct {
	ID   string `path:"id" doc:"Story ID"`
	Body struct {
		Content string `json:"content" validate:"required,min=1,max=2000" doc:"Comment text, HTML is stripped"`
	}
}

// CommentOutput wraps a comment for Huma.
type CommentOutput struct {
	Body domain.Comment
}

// ListCommentsInput pages a story's comments.
type ListCommentsInput struct {
	ID    string `path:"id" doc:"Story ID"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 50)"`
}

// CommentsOutput wraps a comment list for Huma.
type CommentsOutput struct {
	Body []*domain.Comment
}

// CommentIDInput addresses one comment by path.
type CommentIDInput struct {
	ID string `path:"id" doc:"Comment ID"`
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := s.services.Comment.Add(ctx, userID, service.AddCommentRequest{
		StoryID: input.ID,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: *comment}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*CommentsOutput, error) {
	comments, err := s.services.Comment.List(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: comments}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Comment.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
