package driven

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// VectorStore provides embedding storage and cosine similarity search.
// Implementations keep vectors in process memory; a restart implies an empty store.
type VectorStore interface {
	// Save appends a vector and returns its generated ID.
	// The first saved vector fixes the store's dimension.
	Save(ctx context.Context, embedding []float32, metadata domain.VectorMetadata) (string, error)

	// Search returns the top matches for the query vector, best first.
	// An empty store or a filter matching nothing yields an empty slice.
	Search(ctx context.Context, query []float32, q domain.VectorQuery) ([]domain.VectorMatch, error)

	// DeleteByDocument removes every vector of the document and returns the count.
	// Unknown documents are a no-op.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// Vectors returns the stored records of a document matching the query filter.
	Vectors(ctx context.Context, documentID string, q domain.VectorQuery) ([]domain.VectorRecord, error)

	// Stats reports the vector count and dimension.
	Stats(ctx context.Context) domain.VectorStats
}
