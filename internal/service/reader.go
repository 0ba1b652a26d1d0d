package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/id"
	"github.com/writha/writha-server/internal/store"
	"github.com/writha/writha-server/internal/store/kv"
)

// ReaderService manages active reading sessions. Sessions live in memory for
// the duration of a read; chapter position and display preferences persist in
// the reader-state store so the next open resumes where the reader left off.
type ReaderService struct {
	store  store.Store
	state  *kv.ReaderStateStore
	logger *slog.Logger

	mu sync.Mutex
	// Active sessions keyed by userID + ":" + storyID. One session per
	// user per story; reopening returns the existing session.
	sessions map[string]*domain.ReaderSession
}

// NewReaderService creates a new reader service.
func NewReaderService(st store.Store, state *kv.ReaderStateStore, logger *slog.Logger) *ReaderService {
	return &ReaderService{
		store:    st,
		state:    state,
		logger:   logger,
		sessions: make(map[string]*domain.ReaderSession),
	}
}

func sessionKey(userID, storyID string) string {
	return userID + ":" + storyID
}

// OpenSession opens a reading session on a story. The starting chapter is the
// requested one when given, otherwise the persisted position, clamped into
// the story's chapter range either way. Opening an already-open story returns
// the existing session.
func (s *ReaderService) OpenSession(ctx context.Context, userID, storyID string, requested int) (*domain.ReaderSession, error) {
	s.mu.Lock()
	if existing, ok := s.sessions[sessionKey(userID, storyID)]; ok && existing.State != domain.SessionClosed {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("lookup story: %w", err)
	}

	if err := s.checkAccess(ctx, userID, story); err != nil {
		return nil, err
	}

	sessionID, err := id.Generate("reader")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.ReaderSession{
		ID:         sessionID,
		UserID:     userID,
		StoryID:    storyID,
		StoryTitle: story.Title,
		State:      domain.SessionLoading,
		OpenedAt:   now,
		UpdatedAt:  now,
	}

	chapterPtrs, err := s.store.ListChapters(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("load chapters: %w", err)
	}
	chapters := make([]domain.Chapter, len(chapterPtrs))
	for i, c := range chapterPtrs {
		chapters[i] = *c
	}

	prefs, err := s.state.GetPreferences(ctx, userID)
	if err != nil {
		// Reading works fine on defaults, don't fail the open.
		s.logger.Warn("Failed to load reader preferences", "user_id", userID, "error", err)
		prefs = domain.DefaultPreferences()
	}
	session.Prefs = prefs

	start := requested
	if start == 0 {
		saved, posErr := s.state.GetPosition(ctx, userID, storyID)
		switch {
		case posErr == nil:
			start = saved
		case errors.Is(posErr, store.ErrNotFound):
			start = 1
		default:
			s.logger.Warn("Failed to load reading position", "user_id", userID, "story_id", storyID, "error", posErr)
			start = 1
		}
	}

	session.Ready(chapters, start)

	s.mu.Lock()
	s.sessions[sessionKey(userID, storyID)] = session
	s.mu.Unlock()

	s.persistPosition(ctx, session)

	s.logger.Info("Reader session opened",
		"session_id", sessionID,
		"story_id", storyID,
		"position", session.Position,
		"chapters", session.ChapterCount(),
	)

	return session, nil
}

// checkAccess verifies the user may read the story: free stories and the
// writer's own stories are always readable, paid stories need a library
// entry (granted on purchase).
func (s *ReaderService) checkAccess(ctx context.Context, userID string, story *domain.Story) error {
	if story.IsFree || story.WriterID == userID {
		return nil
	}
	owned, err := s.store.InLibrary(ctx, userID, story.ID)
	if err != nil {
		return fmt.Errorf("check library: %w", err)
	}
	if !owned {
		return domainerrors.Forbidden("purchase this story to read it")
	}
	return nil
}

// getSession returns the open session for user+story.
func (s *ReaderService) getSession(userID, storyID string) (*domain.ReaderSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionKey(userID, storyID)]
	if !ok || session.State == domain.SessionClosed {
		return nil, domainerrors.NotFound("no open reading session for this story")
	}
	return session, nil
}

// NextChapter advances the session one chapter. At the last chapter this is
// a no-op and the current chapter is returned unchanged.
func (s *ReaderService) NextChapter(ctx context.Context, userID, storyID string) (*domain.ReaderSession, error) {
	session, err := s.getSession(userID, storyID)
	if err != nil {
		return nil, err
	}
	if session.Next() {
		s.persistPosition(ctx, session)
	}
	return session, nil
}

// PreviousChapter moves the session back one chapter. At the first chapter
// this is a no-op.
func (s *ReaderService) PreviousChapter(ctx context.Context, userID, storyID string) (*domain.ReaderSession, error) {
	session, err := s.getSession(userID, storyID)
	if err != nil {
		return nil, err
	}
	if session.Previous() {
		s.persistPosition(ctx, session)
	}
	return session, nil
}

// JumpToChapter moves the session directly to chapter n. Out-of-range
// targets are a no-op.
func (s *ReaderService) JumpToChapter(ctx context.Context, userID, storyID string, n int) (*domain.ReaderSession, error) {
	session, err := s.getSession(userID, storyID)
	if err != nil {
		return nil, err
	}
	if session.JumpTo(n) {
		s.persistPosition(ctx, session)
	}
	return session, nil
}

// UpdatePreferences applies a preference patch, clamped into supported
// ranges, and persists the result. Works with or without an open session.
func (s *ReaderService) UpdatePreferences(ctx context.Context, userID string, patch domain.ReaderPreferences) (domain.ReaderPreferences, error) {
	current, err := s.state.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load reader preferences", "user_id", userID, "error", err)
		current = domain.DefaultPreferences()
	}

	effective := patch.Clamp(current)
	if err := s.state.SavePreferences(ctx, userID, effective); err != nil {
		return domain.ReaderPreferences{}, fmt.Errorf("save preferences: %w", err)
	}

	// Keep any open sessions for this user in sync.
	s.mu.Lock()
	for _, session := range s.sessions {
		if session.UserID == userID && session.State == domain.SessionReady {
			session.ApplyPreferences(effective)
		}
	}
	s.mu.Unlock()

	return effective, nil
}

// GetPreferences returns the user's effective reader preferences.
func (s *ReaderService) GetPreferences(ctx context.Context, userID string) (domain.ReaderPreferences, error) {
	return s.state.GetPreferences(ctx, userID)
}

// SetFullscreen records the fullscreen state the client achieved. When the
// client reports that entering fullscreen failed, the failure is logged and
// the session continues windowed; it is never an error.
func (s *ReaderService) SetFullscreen(ctx context.Context, userID, storyID string, on bool, clientError string) (*domain.ReaderSession, error) {
	session, err := s.getSession(userID, storyID)
	if err != nil {
		return nil, err
	}
	if clientError != "" {
		s.logger.Warn("Client fullscreen request failed",
			"session_id", session.ID,
			"error", clientError,
		)
		return session, nil
	}
	session.SetFullscreen(on)
	return session, nil
}

// CloseSession ends the reading session, persisting the final position.
// Closing a session that isn't open is a no-op.
func (s *ReaderService) CloseSession(ctx context.Context, userID, storyID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionKey(userID, storyID)]
	if ok {
		delete(s.sessions, sessionKey(userID, storyID))
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}

	s.persistPosition(ctx, session)
	session.Close()

	s.logger.Info("Reader session closed",
		"session_id", session.ID,
		"story_id", storyID,
		"position", session.Position,
	)
	return nil
}

// persistPosition saves the session position. A failed save only costs the
// reader their resume point, so it is logged rather than propagated.
func (s *ReaderService) persistPosition(ctx context.Context, session *domain.ReaderSession) {
	if session.Position < 1 {
		return
	}
	if err := s.state.SavePosition(ctx, session.UserID, session.StoryID, session.Position); err != nil {
		s.logger.Warn("Failed to persist reading position",
			"session_id", session.ID,
			"position", session.Position,
			"error", err,
		)
	}
}
