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
	"github.com/writha/writha-server/internal/normalize"
	"github.com/writha/writha-server/internal/store"
)

// CommentService manages story comments.
type CommentService struct {
	store         store.Store
	notifications *NotificationService
	logger        *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(st store.Store, notifications *NotificationService, logger *slog.Logger) *CommentService {
	return &CommentService{store: st, notifications: notifications, logger: logger}
}

// AddCommentRequest contains a new comment.
type AddCommentRequest struct {
	StoryID string `json:"story_id" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// Add posts a comment on a story and notifies the writer.
func (s *CommentService) Add(ctx context.Context, userID string, req AddCommentRequest) (*domain.Comment, error) {
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

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		ID:        commentID,
		StoryID:   req.StoryID,
		UserID:    userID,
		Username:  user.Username,
		Content:   normalize.StripTags(req.Content),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if story.WriterID != userID {
		s.notifications.notifyBestEffort(ctx, story.WriterID, domain.NotificationSocial,
			fmt.Sprintf("%s commented on %s", user.Username, story.Title),
			normalize.Excerpt(comment.Content, 120),
			story.ID,
		)
	}

	return comment, nil
}

// List returns the newest comments on a story.
func (s *CommentService) List(ctx context.Context, storyID string, limit int) ([]*domain.Comment, error) {
	comments, err := s.store.ListComments(ctx, storyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Delete removes the user's own comment.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return fmt.Errorf("lookup comment: %w", err)
	}
	if comment.UserID != userID {
		return domainerrors.Forbidden("comment belongs to another user")
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
