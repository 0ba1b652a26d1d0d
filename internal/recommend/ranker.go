// Package recommend implements recommendation reranking: an LLM-backed
// ranker that orders candidate stories by the reader's rating history, and a
// deterministic fallback used whenever the LLM is unavailable or misbehaves.
package recommend

import (
	"context"

	"github.com/writha/writha-server/internal/domain"
)

// Ranker orders candidate stories for a reader, best match first, returning
// at most maxResults of them.
type Ranker interface {
	Rank(ctx context.Context, signals []domain.RatingSignal, candidates []domain.Candidate) ([]domain.Candidate, error)
}

// Fallback returns the first maxResults candidates in their fetch order.
// The candidate query orders newest first, so this is stable across calls.
func Fallback(candidates []domain.Candidate, maxResults int) []domain.Candidate {
	if maxResults <= 0 || maxResults > len(candidates) {
		maxResults = len(candidates)
	}
	return candidates[:maxResults]
}

// Merge puts the ranker's picks first, appends the candidates it omitted in
// their original fetch order, and truncates to maxResults. A ranker that
// picks fewer stories than the shortlist holds never shrinks the shortlist.
func Merge(ranked, candidates []domain.Candidate, maxResults int) []domain.Candidate {
	if maxResults <= 0 {
		maxResults = len(candidates)
	}

	picked := make(map[string]bool, len(ranked))
	out := make([]domain.Candidate, 0, maxResults)
	for _, c := range ranked {
		if len(out) >= maxResults || picked[c.ID] {
			continue
		}
		picked[c.ID] = true
		out = append(out, c)
	}
	for _, c := range candidates {
		if len(out) >= maxResults {
			break
		}
		if picked[c.ID] {
			continue
		}
		picked[c.ID] = true
		out = append(out, c)
	}
	return out
}
