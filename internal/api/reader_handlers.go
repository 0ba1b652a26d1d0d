package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/domain"
)

func (s *Server) registerReaderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "openReaderSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/{storyID}/open",
		Summary:     "Open reading session",
		Description: "Opens a reading session on a story, resuming at the saved position. Opening an already-open story returns the existing session.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleOpenSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "readerNextChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/{storyID}/next",
		Summary:     "Next chapter",
		Description: "Advances the session one chapter. A no-op at the last chapter.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleNextChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "readerPreviousChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/{storyID}/previous",
		Summary:     "Previous chapter",
		Description: "Moves the session back one chapter. A no-op at the first chapter.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePreviousChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "readerJumpToChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/{storyID}/jump",
		Summary:     "Jump to chapter",
		Description: "Moves the session directly to a chapter. Out-of-range targets are a no-op.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleJumpToChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "readerSetFullscreen",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/{storyID}/fullscreen",
		Summary:     "Set fullscreen state",
		Description: "Records the fullscreen state the client achieved. A reported client failure is logged and the session continues windowed; it is never an error.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetFullscreen)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeReaderSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/{storyID}/close",
		Summary:     "Close reading session",
		Description: "Ends the reading session, persisting the final position. Idempotent.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCloseSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReaderPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/reader/preferences",
		Summary:     "Get reader preferences",
		Description: "Returns the user's effective reader display preferences",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReaderPreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/reader/preferences",
		Summary:     "Update reader preferences",
		Description: "Applies a preference patch. Out-of-range values are clamped, never rejected; the effective preferences are returned and applied to open sessions.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePreferences)
}

// === DTOs ===

// OpenSessionInput opens a reading session.
type OpenSessionInput struct {
	StoryID string `path:"storyID" doc:"Story ID"`
	Body    struct {
		Chapter int `json:"chapter,omitempty" validate:"omitempty,gte=0" doc:"Requested starting chapter. 0 resumes the saved position."`
	}
}

// ReaderStoryInput addresses the session for one story.
type ReaderStoryInput struct {
	StoryID string `path:"storyID" doc:"Story ID"`
}

// JumpInput moves the session to a specific chapter.
type JumpInput struct {
	StoryID string `path:"storyID" doc:"Story ID"`
	Body    struct {
		Chapter int `json:"chapter" validate:"required" doc:"Target chapter number, 1-based"`
	}
}

// FullscreenInput reports the client's fullscreen outcome.
type FullscreenInput struct {
	StoryID string `path:"storyID" doc:"Story ID"`
	Body    struct {
		Fullscreen bool   `json:"fullscreen" doc:"Fullscreen state the client achieved"`
		Error      string `json:"error,omitempty" validate:"max=500" doc:"Client-side error when entering fullscreen failed"`
	}
}

// PreferencesInput patches reader display preferences.
type PreferencesInput struct {
	Body domain.ReaderPreferences
}

// PreferencesOutput wraps reader preferences for Huma.
type PreferencesOutput struct {
	Body domain.ReaderPreferences
}

// SessionChapter is the chapter payload inside a session response.
type SessionChapter struct {
	Number  int    `json:"chapter_number" doc:"1-based chapter number"`
	Title   string `json:"title" doc:"Chapter title"`
	Content string `json:"content" doc:"Chapter body in Markdown"`
}

// SessionResponse is a reading session as seen by the client: current
// position, display preferences, and the chapter to render.
type SessionResponse struct {
	ID           string                   `json:"id" doc:"Session ID"`
	StoryID      string                   `json:"story_id" doc:"Story ID"`
	StoryTitle   string                   `json:"story_title" doc:"Story title"`
	State        string                   `json:"state" doc:"Session state: loading, ready, or closed"`
	Position     int                      `json:"position" doc:"Current chapter number, 1-based"`
	ChapterCount int                      `json:"chapter_count" doc:"Total chapters in the story"`
	Fullscreen   bool                     `json:"fullscreen" doc:"Fullscreen state"`
	Preferences  domain.ReaderPreferences `json:"preferences" doc:"Effective display preferences"`
	Chapter      *SessionChapter          `json:"chapter,omitempty" doc:"The chapter at the current position"`
}

// SessionOutput wraps a session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

func toSessionResponse(session *domain.ReaderSession) SessionResponse {
	resp := SessionResponse{
		ID:           session.ID,
		StoryID:      session.StoryID,
		StoryTitle:   session.StoryTitle,
		State:        string(session.State),
		Position:     session.Position,
		ChapterCount: session.ChapterCount(),
		Fullscreen:   session.Fullscreen,
		Preferences:  session.Prefs,
	}
	if current := session.Current(); current != nil {
		resp.Chapter = &SessionChapter{
			Number:  current.Number,
			Title:   current.Title,
			Content: current.Content,
		}
	}
	return resp
}

// === Handlers ===

func (s *Server) handleOpenSession(ctx context.Context, input *OpenSessionInput) (*SessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.services.Reader.OpenSession(ctx, userID, input.StoryID, input.Body.Chapter)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handleNextChapter(ctx context.Context, input *ReaderStoryInput) (*SessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.services.Reader.NextChapter(ctx, userID, input.StoryID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handlePreviousChapter(ctx context.Context, input *ReaderStoryInput) (*SessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.services.Reader.PreviousChapter(ctx, userID, input.StoryID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handleJumpToChapter(ctx context.Context, input *JumpInput) (*SessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.services.Reader.JumpToChapter(ctx, userID, input.StoryID, input.Body.Chapter)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handleSetFullscreen(ctx context.Context, input *FullscreenInput) (*SessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.services.Reader.SetFullscreen(ctx, userID, input.StoryID, input.Body.Fullscreen, input.Body.Error)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handleCloseSession(ctx context.Context, input *ReaderStoryInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Reader.CloseSession(ctx, userID, input.StoryID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := s.services.Reader.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: prefs}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *PreferencesInput) (*PreferencesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	effective, err := s.services.Reader.UpdatePreferences(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: effective}, nil
}
