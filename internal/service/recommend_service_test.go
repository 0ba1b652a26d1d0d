package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store/sqlite"
)

// fakeRanker records calls and returns a canned result.
type fakeRanker struct {
	calls       int
	result      []domain.Candidate
	err         error
	lastSignals []domain.RatingSignal
}

func (r *fakeRanker) Rank(_ context.Context, signals []domain.RatingSignal, _ []domain.Candidate) ([]domain.Candidate, error) {
	r.calls++
	r.lastSignals = signals
	return r.result, r.err
}

// seedCatalog creates a writer plus n stories with ascending created_at, so
// the candidate fetch order (newest first) is story-n, story-n-1, ...
func seedCatalog(t *testing.T, st *sqlite.Store, n int) []*domain.Story {
	t.Helper()
	writer := seedUser(t, st, "user-catalog-writer", "adaobi", domain.UserTypeWriter)
	base := time.Now().Add(-time.Hour)
	stories := make([]*domain.Story, n)
	for i := range n {
		id := fmt.Sprintf("story-%d", i+1)
		stories[i] = seedStory(t, st, id, writer.ID, "Story "+id, true, 0, base.Add(time.Duration(i)*time.Minute))
	}
	return stories
}

// rateStory stores a rating directly, bypassing the service ownership check.
func rateStory(t *testing.T, st *sqlite.Store, userID, storyID string, value int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, st.UpsertRating(context.Background(), &domain.Rating{
		UserID:    userID,
		StoryID:   storyID,
		Rating:    value,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestGetRecommendations_EmptyPool(t *testing.T) {
	st := setupStore(t)
	ranker := &fakeRanker{}
	svc := NewRecommendationService(st, ranker, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	recs, err := svc.GetRecommendations(context.Background(), "user-1", RecommendOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, ranker.calls, "no candidates means no LLM call")
}

func TestGetRecommendations_NoSignals_SkipsRanker(t *testing.T) {
	st := setupStore(t)
	ranker := &fakeRanker{}
	svc := NewRecommendationService(st, ranker, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	seedCatalog(t, st, 6)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{})
	require.NoError(t, err)
	assert.Zero(t, ranker.calls, "a reader with no ratings has nothing to personalize on")

	// Fallback is the first four candidates in fetch order, newest first.
	require.Len(t, recs, 4)
	assert.Equal(t, "story-6", recs[0].ID)
	assert.Equal(t, "story-5", recs[1].ID)
	assert.Equal(t, "story-4", recs[2].ID)
	assert.Equal(t, "story-3", recs[3].ID)
}

func TestGetRecommendations_LowRatingsStillRank(t *testing.T) {
	st := setupStore(t)
	ranker := &fakeRanker{}
	svc := NewRecommendationService(st, ranker, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	stories := seedCatalog(t, st, 6)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)
	// A 2-star rating is still a taste signal: it tells the ranker what
	// to avoid.
	rateStory(t, st, reader.ID, stories[0].ID, 2)

	_, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, ranker.calls)
	require.Len(t, ranker.lastSignals, 1)
	assert.Equal(t, 2, ranker.lastSignals[0].Rating)
}

func TestGetRecommendations_RankerFailure_FallsBack(t *testing.T) {
	st := setupStore(t)
	ranker := &fakeRanker{err: fmt.Errorf("model timeout")}
	svc := NewRecommendationService(st, ranker, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	stories := seedCatalog(t, st, 6)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)
	rateStory(t, st, reader.ID, stories[0].ID, 5)

	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{})
	require.NoError(t, err, "rerank failures never reach the reader")
	assert.Equal(t, 1, ranker.calls)
	require.Len(t, recs, 4)
	assert.Equal(t, "story-6", recs[0].ID)
}

func TestGetRecommendations_RankerOrderWins(t *testing.T) {
	st := setupStore(t)
	ranker := &fakeRanker{result: []domain.Candidate{
		{ID: "story-3", Title: "Story story-3"},
		{ID: "story-1", Title: "Story story-1"},
	}}
	svc := NewRecommendationService(st, ranker, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	stories := seedCatalog(t, st, 6)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)
	rateStory(t, st, reader.ID, stories[1].ID, 4)

	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{})
	require.NoError(t, err)

	// A ranker that picks only two stories does not shrink the shortlist:
	// its picks lead, the rest follow in fetch order (newest first).
	require.Len(t, recs, 4)
	assert.Equal(t, "story-3", recs[0].ID)
	assert.Equal(t, "story-1", recs[1].ID)
	assert.Equal(t, "story-6", recs[2].ID)
	assert.Equal(t, "story-5", recs[3].ID)
}

func TestGetRecommendations_ExcludesCurrentStory(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	seedCatalog(t, st, 4)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{
		CurrentStoryID: "story-4",
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.NotEqual(t, "story-4", rec.ID, "the story on screen must not be recommended")
	}
}

func TestGetRecommendations_GenreFilter(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	seedCatalog(t, st, 3)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	romance := &domain.Story{
		ID:        "story-romance",
		WriterID:  "user-catalog-writer",
		Title:     "Harmattan Letters",
		Genre:     "Romance",
		GenreSlug: "romance",
		IsFree:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, st.CreateStory(context.Background(), romance))

	// The display name slugifies down to the stored genre slug.
	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{
		Genre: "Romance",
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "story-romance", recs[0].ID)
}

func TestGetRecommendations_NilRankerUsesFallback(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	stories := seedCatalog(t, st, 3)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)
	rateStory(t, st, reader.ID, stories[0].ID, 5)

	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRecordFeedback_DismissedExcludesStory(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	seedCatalog(t, st, 3)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	require.NoError(t, svc.RecordFeedback(reader.ID, "story-2", domain.FeedbackDismissed))

	// The write lands on the worker goroutine, poll briefly for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		ids, err := st.ListDismissedStoryIDs(context.Background(), reader.ID)
		require.NoError(t, err)
		if len(ids) == 1 {
			assert.Equal(t, "story-2", ids[0])
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("dismissed feedback never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	recs, err := svc.GetRecommendations(context.Background(), reader.ID, RecommendOptions{})
	require.NoError(t, err)
	for _, rec := range recs {
		assert.NotEqual(t, "story-2", rec.ID)
	}
}

func TestRecordFeedback_SavedAddsFreeStoryToLibrary(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	seedCatalog(t, st, 3)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	require.NoError(t, svc.RecordFeedback(reader.ID, "story-1", domain.FeedbackSaved))

	deadline := time.Now().Add(2 * time.Second)
	for {
		owned, err := st.InLibrary(context.Background(), reader.ID, "story-1")
		require.NoError(t, err)
		if owned {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("saved story never reached the library")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRecordFeedback_StopDrainsQueue(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())

	seedCatalog(t, st, 3)
	reader := seedUser(t, st, "user-1", "tunde", domain.UserTypeReader)

	require.NoError(t, svc.RecordFeedback(reader.ID, "story-1", domain.FeedbackDismissed))
	require.NoError(t, svc.RecordFeedback(reader.ID, "story-3", domain.FeedbackDismissed))

	// Stop must not return until every queued write has been processed.
	svc.Stop()

	ids, err := st.ListDismissedStoryIDs(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestRecordFeedback_UnknownAction(t *testing.T) {
	st := setupStore(t)
	svc := NewRecommendationService(st, nil, 4, 10, testLogger())
	t.Cleanup(svc.Stop)

	err := svc.RecordFeedback("user-1", "story-1", "archived")
	assert.Error(t, err)
}
