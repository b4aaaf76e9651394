package ai

import (
	"context"
	"fmt"
	"sort"

	embedding "github.com/matthewjhunter/go-embedding"
)

// Match pairs a candidate index with its similarity to the query.
type Match struct {
	Index int
	Score float64
}

// RelatedMatcher finds stored generations whose inputs are semantically close
// to a query, using cosine similarity over embeddings.
type RelatedMatcher struct {
	embedder embedding.Embedder
}

func NewRelatedMatcher(embedder embedding.Embedder) *RelatedMatcher {
	return &RelatedMatcher{embedder: embedder}
}

// Rank embeds the query and all candidates and returns matches ordered by
// descending similarity. Empty candidates produce an empty result.
func (m *RelatedMatcher) Rank(ctx context.Context, query string, candidates []string) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	queryEmb, err := embedding.Single(ctx, m.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidateEmbs, err := m.embedder.Embed(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	if len(candidateEmbs) != len(candidates) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d candidates", len(candidateEmbs), len(candidates))
	}

	matches := make([]Match, len(candidates))
	for i, emb := range candidateEmbs {
		matches[i] = Match{Index: i, Score: embedding.CosineSimilarity(queryEmb, emb)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}
