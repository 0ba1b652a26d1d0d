package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search across stories and writers",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Drops the search index and rebuilds it from the catalog",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains catalog search parameters.
type SearchInput struct {
	Query     string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Types     string `query:"types" validate:"omitempty,max=100" doc:"Comma-separated types to search (story,writer). Omit for all."`
	Genre     string `query:"genre" validate:"omitempty,max=50" doc:"Filter stories by genre slug"`
	FreeOnly  bool   `query:"free_only" doc:"Only free stories"`
	Limit     int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset    int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
	SortBy    string `query:"sort" validate:"omitempty,oneof=relevance title recent" doc:"Sort order (default relevance)"`
	Highlight bool   `query:"highlight" doc:"Include match highlighting"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body search.Result
}

// ReindexResponse reports how many stories were reindexed.
type ReindexResponse struct {
	Stories int `json:"stories" doc:"Number of stories indexed"`
}

// ReindexOutput wraps the reindex result for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.Params{
		Query:     input.Query,
		GenreSlug: input.Genre,
		FreeOnly:  input.FreeOnly,
		Limit:     input.Limit,
		Offset:    input.Offset,
		SortBy:    input.SortBy,
		Highlight: input.Highlight,
	}

	if input.Types != "" {
		for t := range strings.SplitSeq(input.Types, ",") {
			switch strings.TrimSpace(t) {
			case "story":
				params.Types = append(params.Types, string(search.DocTypeStory))
			case "writer":
				params.Types = append(params.Types, string(search.DocTypeWriter))
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Search index rebuilt by request", "user_id", userID, "stories", count)
	return &ReindexOutput{Body: ReindexResponse{Stories: count}}, nil
}
