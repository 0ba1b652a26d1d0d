package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// seedCatalog inserts a writer plus n stories with ascending created_at, so
// "story-<n-1>" is the newest.
func seedCatalog(t *testing.T, s *Store, n int) {
	t.Helper()
	ctx := context.Background()
	writer := makeTestUser("writer-1", "w@example.com", "writer1")
	writer.UserType = domain.UserTypeWriter
	if err := s.CreateUser(ctx, writer); err != nil {
		t.Fatalf("seed writer: %v", err)
	}
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		st := makeTestStory(fmt.Sprintf("story-%d", i), "writer-1", fmt.Sprintf("Story %d", i))
		st.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		st.UpdatedAt = st.CreatedAt
		if err := s.CreateStory(ctx, st); err != nil {
			t.Fatalf("seed story: %v", err)
		}
	}
}

func TestListCandidates_ExcludesLibraryAndDismissed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCatalog(t, s, 6)
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}

	// story-5 is saved, story-4 was dismissed.
	if err := s.AddToLibrary(ctx, "reader-1", "story-5"); err != nil {
		t.Fatalf("AddToLibrary: %v", err)
	}
	if err := s.SaveFeedback(ctx, &domain.Feedback{
		UserID: "reader-1", StoryID: "story-4",
		Action: domain.FeedbackDismissed, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}

	candidates, err := s.ListCandidates(ctx, "reader-1", store.CandidateFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(candidates))
	}
	// Newest first, with the excluded pair gone.
	want := []string{"story-3", "story-2", "story-1", "story-0"}
	for i, c := range candidates {
		if c.ID != want[i] {
			t.Errorf("candidate %d: got %s, want %s", i, c.ID, want[i])
		}
	}
}

func TestListCandidates_ExcludesOwnStories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCatalog(t, s, 3)

	candidates, err := s.ListCandidates(ctx, "writer-1", store.CandidateFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates for the author, got %d", len(candidates))
	}
}

func TestListCandidates_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCatalog(t, s, 15)
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}

	candidates, err := s.ListCandidates(ctx, "reader-1", store.CandidateFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 10 {
		t.Errorf("expected 10 candidates, got %d", len(candidates))
	}
}

func TestListCandidates_ExcludesCurrentStory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCatalog(t, s, 3)
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}

	candidates, err := s.ListCandidates(ctx, "reader-1", store.CandidateFilter{
		ExcludeStoryID: "story-1",
		Limit:          10,
	})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.ID == "story-1" {
			t.Error("the story on screen must not be recommended")
		}
	}
}

func TestListCandidates_GenreFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCatalog(t, s, 2)
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}

	romance := makeTestStory("story-romance", "writer-1", "Harmattan Letters")
	romance.Genre = "Romance"
	romance.GenreSlug = "romance"
	if err := s.CreateStory(ctx, romance); err != nil {
		t.Fatalf("seed romance story: %v", err)
	}

	candidates, err := s.ListCandidates(ctx, "reader-1", store.CandidateFilter{
		GenreSlug: "romance",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "story-romance" {
		t.Fatalf("expected only the romance story, got %v", candidates)
	}
}

func TestSaveFeedback_SavedNotExcluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCatalog(t, s, 2)
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}

	// A saved reaction does not remove the story from the candidate pool;
	// the library entry created alongside it does.
	if err := s.SaveFeedback(ctx, &domain.Feedback{
		UserID: "reader-1", StoryID: "story-0",
		Action: domain.FeedbackSaved, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}

	candidates, err := s.ListCandidates(ctx, "reader-1", store.CandidateFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(candidates))
	}

	ids, err := s.ListDismissedStoryIDs(ctx, "reader-1")
	if err != nil {
		t.Fatalf("ListDismissedStoryIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no dismissed ids, got %v", ids)
	}
}
