package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/textgen"
)

// fakeChatClient returns a canned completion, or an error.
type fakeChatClient struct {
	content string
	err     error

	lastRequest *textgen.ChatRequest
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req textgen.ChatRequest) (textgen.ChatResponse, error) {
	f.lastRequest = &req
	if f.err != nil {
		return textgen.ChatResponse{}, f.err
	}
	return textgen.ChatResponse{
		Choices: []textgen.ChatChoice{
			{Message: textgen.ChatMessage{Role: textgen.RoleSystem, Content: f.content}},
		},
	}, nil
}

func testCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "story-1", Title: "First"},
		{ID: "story-2", Title: "Second"},
		{ID: "story-3", Title: "Third"},
		{ID: "story-4", Title: "Fourth"},
		{ID: "story-5", Title: "Fifth"},
		{ID: "story-6", Title: "Sixth"},
	}
}

func testSignals() []domain.RatingSignal {
	return []domain.RatingSignal{
		{StoryID: "story-9", Title: "Old Favorite", Genre: "Fantasy", Rating: 5},
	}
}

func TestLLMRanker_OrdersByModelChoice(t *testing.T) {
	client := &fakeChatClient{content: `{"story_ids": ["story-3", "story-1"]}`}
	ranker := NewLLMRanker(client, "test-model", 4)

	got, err := ranker.Rank(context.Background(), testSignals(), testCandidates())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "story-3", got[0].ID)
	assert.Equal(t, "story-1", got[1].ID)
}

func TestLLMRanker_DropsUnknownAndDuplicateIDs(t *testing.T) {
	client := &fakeChatClient{content: `{"story_ids": ["story-2", "made-up", "story-2", "story-5"]}`}
	ranker := NewLLMRanker(client, "test-model", 4)

	got, err := ranker.Rank(context.Background(), testSignals(), testCandidates())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "story-2", got[0].ID)
	assert.Equal(t, "story-5", got[1].ID)
}

func TestLLMRanker_CapsAtMaxResults(t *testing.T) {
	client := &fakeChatClient{content: `{"story_ids": ["story-1", "story-2", "story-3", "story-4", "story-5", "story-6"]}`}
	ranker := NewLLMRanker(client, "test-model", 4)

	got, err := ranker.Rank(context.Background(), testSignals(), testCandidates())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestLLMRanker_ErrorsPropagate(t *testing.T) {
	client := &fakeChatClient{err: errors.New("boom")}
	ranker := NewLLMRanker(client, "test-model", 4)

	_, err := ranker.Rank(context.Background(), testSignals(), testCandidates())
	assert.Error(t, err)
}

func TestLLMRanker_MalformedResponseIsError(t *testing.T) {
	client := &fakeChatClient{content: `here are some picks: story-1, story-2`}
	ranker := NewLLMRanker(client, "test-model", 4)

	_, err := ranker.Rank(context.Background(), testSignals(), testCandidates())
	assert.Error(t, err)
}

func TestLLMRanker_AllUnknownIDsIsError(t *testing.T) {
	client := &fakeChatClient{content: `{"story_ids": ["nope-1", "nope-2"]}`}
	ranker := NewLLMRanker(client, "test-model", 4)

	_, err := ranker.Rank(context.Background(), testSignals(), testCandidates())
	assert.Error(t, err)
}

func TestLLMRanker_EmptyCandidates(t *testing.T) {
	client := &fakeChatClient{content: `{"story_ids": []}`}
	ranker := NewLLMRanker(client, "test-model", 4)

	got, err := ranker.Rank(context.Background(), testSignals(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Nil(t, client.lastRequest, "no LLM call for an empty pool")
}

func TestMerge_AppendsOmittedInFetchOrder(t *testing.T) {
	candidates := testCandidates()
	ranked := []domain.Candidate{candidates[2], candidates[0]}

	got := Merge(ranked, candidates, 4)
	require.Len(t, got, 4)
	assert.Equal(t, "story-3", got[0].ID)
	assert.Equal(t, "story-1", got[1].ID)
	// Omitted candidates follow in their original fetch order.
	assert.Equal(t, "story-2", got[2].ID)
	assert.Equal(t, "story-4", got[3].ID)
}

func TestMerge_TruncatesAndDedupes(t *testing.T) {
	candidates := testCandidates()

	got := Merge(candidates, candidates, 4)
	assert.Len(t, got, 4)

	// A short pool stays short.
	got = Merge([]domain.Candidate{candidates[1]}, candidates[:2], 4)
	require.Len(t, got, 2)
	assert.Equal(t, "story-2", got[0].ID)
	assert.Equal(t, "story-1", got[1].ID)

	assert.Empty(t, Merge(nil, nil, 4))
}

func TestFallback(t *testing.T) {
	candidates := testCandidates()

	got := Fallback(candidates, 4)
	require.Len(t, got, 4)
	// Fetch order preserved.
	assert.Equal(t, "story-1", got[0].ID)
	assert.Equal(t, "story-4", got[3].ID)

	assert.Len(t, Fallback(candidates[:2], 4), 2)
	assert.Empty(t, Fallback(nil, 4))
}
