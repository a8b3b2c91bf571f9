package driving

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// SearchService provides free-text search capabilities to external actors.
type SearchService interface {
	// Search performs hybrid search across all indexed documents.
	// Empty or unanalyzable queries return a response with a no_valid_tokens status.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchResponse, error)

	// Suggest returns indexed terms completing the prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}
