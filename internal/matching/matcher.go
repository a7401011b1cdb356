// Package matching composes the embedding client and the similarity index
// into the single-candidate search step.
package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/vectorstore"
)

// ErrNoCandidate reports that nothing in the index cleared the relevance
// floor. It is a legitimate search outcome, not a failure; callers present
// it as an invitation to adjust filters.
var ErrNoCandidate = errors.New("no candidate cleared the similarity threshold")

// Matcher retrieves the single best-scoring candidate for a confirmed
// preference summary. Repeated searches are independent queries; previously
// shown candidates are not excluded.
type Matcher struct {
	embedder engine.Embedder
	store    vectorstore.VectorStore
	minScore float32
}

// New creates a matcher. minScore of 0 defers entirely to the index.
func New(embedder engine.Embedder, store vectorstore.VectorStore, minScore float32) *Matcher {
	return &Matcher{
		embedder: embedder,
		store:    store,
		minScore: minScore,
	}
}

// FindCandidate embeds the search prompt, builds the equality filter, and
// queries the index for the top candidate.
func (m *Matcher) FindCandidate(ctx context.Context, searchPrompt string, summaryMeta, sessionFilters map[string]string) (vectorstore.Candidate, error) {
	vector, err := m.embedder.Embed(ctx, searchPrompt)
	if err != nil {
		return vectorstore.Candidate{}, fmt.Errorf("failed to embed search prompt: %w", err)
	}
	if len(vector) == 0 {
		return vectorstore.Candidate{}, fmt.Errorf("embedding produced an empty vector")
	}

	filter := MergeFilters(summaryMeta, sessionFilters)

	candidates, err := m.store.Query(ctx, vector, filter, 1, m.minScore)
	if err != nil {
		return vectorstore.Candidate{}, fmt.Errorf("similarity search failed: %w", err)
	}
	if len(candidates) == 0 {
		return vectorstore.Candidate{}, ErrNoCandidate
	}

	return candidates[0], nil
}

// MergeFilters overlays session filters on top of summary metadata. Session
// selections win on key collision; empty values never produce a term.
func MergeFilters(summaryMeta, sessionFilters map[string]string) map[string]string {
	merged := make(map[string]string, len(summaryMeta)+len(sessionFilters))
	for k, v := range summaryMeta {
		if v != "" {
			merged[k] = v
		}
	}
	for k, v := range sessionFilters {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}
