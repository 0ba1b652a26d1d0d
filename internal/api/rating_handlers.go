package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/store"
)

func (s *Server) registerRatingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "rateStory",
		Method:      http.MethodPut,
		Path:        "/api/v1/stories/{id}/rating",
		Summary:     "Rate story",
		Description: "Records a 1-5 star rating. Re-rating overwrites. Ratings also feed the recommendation pipeline.",
		Tags:        []string{"Ratings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRatingSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/rating",
		Summary:     "Rating summary",
		Description: "Returns the aggregate rating for a story",
		Tags:        []string{"Ratings"},
	}, s.handleGetRatingSummary)
}

// RateStoryInput contains a star rating.
type RateStoryInput struct {
	ID   string `path:"id" doc:"Story ID"`
	Body struct {
		Rating int `json:"rating" validate:"required,gte=1,lte=5" doc:"Star rating, 1-5"`
	}
}

// RatingSummaryOutput wraps a rating summary for Huma.
type RatingSummaryOutput struct {
	Body store.RatingSummary
}

func (s *Server) handleRateStory(ctx context.Context, input *RateStoryInput) (*RatingSummaryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.services.Rating.Rate(ctx, userID, input.ID, input.Body.Rating)
	if err != nil {
		return nil, err
	}
	return &RatingSummaryOutput{Body: summary}, nil
}

func (s *Server) handleGetRatingSummary(ctx context.Context, input *StoryIDInput) (*RatingSummaryOutput, error) {
	summary, err := s.services.Rating.Summary(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RatingSummaryOutput{Body: summary}, nil
}
