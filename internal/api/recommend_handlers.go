package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/service"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns the reader's personalized story shortlist. Failures degrade to a deterministic fallback, never an error.",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordRecommendationFeedback",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations/{storyID}/feedback",
		Summary:     "Record recommendation feedback",
		Description: "Records whether the reader dismissed or saved a recommended story. The write is fire-and-forget.",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordFeedback)
}

// === DTOs ===

// RecommendationsInput carries the optional pool filters.
type RecommendationsInput struct {
	CurrentStoryID string `query:"current_story_id" doc:"Story the reader is currently viewing, excluded from the shortlist"`
	Genre          string `query:"genre" doc:"Restrict recommendations to one genre"`
}

// RecommendationsOutput wraps the shortlist for Huma.
type RecommendationsOutput struct {
	Body []domain.Candidate
}

// FeedbackInput records the reader's reaction to a recommendation.
type FeedbackInput struct {
	StoryID string `path:"storyID" doc:"Story ID"`
	Body    struct {
		Action string `json:"action" validate:"required,oneof=dismissed saved" doc:"What the reader did: dismissed or saved"`
	}
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.services.Recommend.GetRecommendations(ctx, userID, service.RecommendOptions{
		CurrentStoryID: input.CurrentStoryID,
		Genre:          input.Genre,
	})
	if err != nil {
		return nil, err
	}
	return &RecommendationsOutput{Body: recs}, nil
}

func (s *Server) handleRecordFeedback(ctx context.Context, input *FeedbackInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Recommend.RecordFeedback(userID, input.StoryID, domain.FeedbackAction(input.Body.Action)); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
