package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/service"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getNotificationFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "Notification feed",
		Description: "Returns the newest notifications together with the account-wide unread count",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUnreadCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/unread-count",
		Summary:     "Unread count",
		Description: "Returns the account-wide unread notification count for badge polls",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUnreadCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark notification read",
		Description: "Marks one notification read. Already-read and unknown notifications are a quiet no-op.",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/read-all",
		Summary:     "Mark all notifications read",
		Description: "Marks every notification read, including ones outside the current feed window",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkAllRead)
}

// === DTOs ===

// FeedInput selects an optional derived view of the feed window.
type FeedInput struct {
	Filter string `query:"filter" validate:"omitempty,oneof=unread important" doc:"Narrow the window to unread items, or to important (system and payment) items"`
}

// FeedOutput wraps the notification feed for Huma.
type FeedOutput struct {
	Body service.FeedResponse
}

// UnreadCountResponse carries the account-wide unread counter.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count" doc:"Account-wide unread notification count"`
}

// UnreadCountOutput wraps the unread count for Huma.
type UnreadCountOutput struct {
	Body UnreadCountResponse
}

// NotificationIDInput addresses one notification by path.
type NotificationIDInput struct {
	ID string `path:"id" doc:"Notification ID"`
}

// ReadStateOutput wraps a read-state change result for Huma.
type ReadStateOutput struct {
	Body service.ReadStateResponse
}

// === Handlers ===

func (s *Server) handleGetFeed(ctx context.Context, input *FeedInput) (*FeedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	feed, err := s.services.Notification.Feed(ctx, userID, input.Filter)
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: *feed}, nil
}

func (s *Server) handleGetUnreadCount(ctx context.Context, _ *struct{}) (*UnreadCountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.services.Notification.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountOutput{Body: UnreadCountResponse{UnreadCount: count}}, nil
}

func (s *Server) handleMarkRead(ctx context.Context, input *NotificationIDInput) (*ReadStateOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.services.Notification.MarkRead(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReadStateOutput{Body: *resp}, nil
}

func (s *Server) handleMarkAllRead(ctx context.Context, _ *struct{}) (*ReadStateOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.services.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ReadStateOutput{Body: *resp}, nil
}
