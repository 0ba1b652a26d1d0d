package recommend

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"strings"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/textgen"
)

// chatCompletionClient is the slice of textgen.Client the ranker needs.
type chatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req textgen.ChatRequest) (textgen.ChatResponse, error)
}

// LLMRanker reranks candidates with a chat completion model. The model only
// ever chooses among ids we supplied; anything else it returns is dropped.
type LLMRanker struct {
	client     chatCompletionClient
	model      string
	maxResults int
}

// NewLLMRanker creates a ranker on top of an OpenAI-compatible client.
func NewLLMRanker(client chatCompletionClient, model string, maxResults int) *LLMRanker {
	if maxResults <= 0 {
		maxResults = 4
	}
	return &LLMRanker{client: client, model: model, maxResults: maxResults}
}

type llmCandidatePayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
}

type llmSignalPayload struct {
	Title  string `json:"title"`
	Genre  string `json:"genre,omitempty"`
	Rating int    `json:"rating"`
}

type llmRankResponse struct {
	StoryIDs []string `json:"story_ids"`
}

// Rank asks the model to pick and order the best candidates for the reader.
// Returns an error when the model cannot be reached or returns nothing
// usable; callers fall back to Fallback in that case.
func (r *LLMRanker) Rank(ctx context.Context, signals []domain.RatingSignal, candidates []domain.Candidate) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	candidateMap := make(map[string]domain.Candidate, len(candidates))
	candidatePayload := make([]llmCandidatePayload, 0, len(candidates))
	for _, c := range candidates {
		candidateMap[c.ID] = c
		candidatePayload = append(candidatePayload, llmCandidatePayload{
			ID:          c.ID,
			Title:       c.Title,
			Description: truncate(c.Description, 400),
			Genre:       c.Genre,
		})
	}

	signalPayload := make([]llmSignalPayload, 0, len(signals))
	for _, sig := range signals {
		signalPayload = append(signalPayload, llmSignalPayload{
			Title:  sig.Title,
			Genre:  sig.Genre,
			Rating: sig.Rating,
		})
	}

	candidateJSON, err := json.Marshal(candidatePayload)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}
	signalJSON, err := json.Marshal(signalPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal signals: %w", err)
	}

	userPrompt := fmt.Sprintf(`A reader has rated these stories (1-5 stars):
%s

Pick up to %d stories from the following candidates that this reader is most
likely to enjoy, best match first. Use only the "id" values from the
candidate list; never invent ids.

Candidates:
%s

Respond strictly as JSON: {"story_ids": ["id1", "id2"]}`,
		string(signalJSON), r.maxResults, string(candidateJSON))

	resp, err := r.client.CreateChatCompletion(ctx, textgen.ChatRequest{
		Model:       r.model,
		Temperature: 0.2,
		Messages: []textgen.ChatMessage{
			{
				Role:    textgen.RoleSystem,
				Content: "You are a book recommendation engine. Base your picks only on the reader's ratings and the candidate metadata provided.",
			},
			{
				Role:    textgen.RoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &textgen.ResponseFormat{Type: textgen.ResponseFormatJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed llmRankResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse rank response: %w", err)
	}

	seen := make(map[string]bool, len(parsed.StoryIDs))
	ranked := make([]domain.Candidate, 0, r.maxResults)
	for _, id := range parsed.StoryIDs {
		if len(ranked) >= r.maxResults {
			break
		}
		// Ids the model made up, or repeated, are silently dropped.
		c, ok := candidateMap[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ranked = append(ranked, c)
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("rank response contained no known story ids")
	}
	return ranked, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
