package driven

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// KeywordIndex provides BM25 keyword search over document composite text.
// The index is rebuilt wholesale and goes stale after a TTL or on Invalidate.
type KeywordIndex interface {
	// Build replaces the index with the given corpus.
	// An empty corpus is reported as BuildResult{Success: false}, not as an error.
	Build(ctx context.Context, corpus []domain.Document) domain.BuildResult

	// Rebuild reloads the corpus from the document source and builds the index.
	// Concurrent calls share a single build.
	Rebuild(ctx context.Context) (domain.BuildResult, error)

	// Search performs a BM25 search, rebuilding first if the index is stale.
	Search(ctx context.Context, query string, topK int) (domain.KeywordSearch, error)

	// Score returns the raw BM25 score of each document for the query.
	// Documents with zero score are omitted.
	Score(ctx context.Context, query string) (map[string]float64, error)

	// Suggest returns sorted unique indexed tokens starting with prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)

	// Invalidate marks the index stale so the next search rebuilds it.
	Invalidate()

	// State returns the current lifecycle state.
	State() domain.IndexState
}
