package driving

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// IndexReport summarises the indexing of one or more documents.
type IndexReport struct {
	// Documents is the number of documents processed.
	Documents int

	// Chunks is the number of chunks produced.
	Chunks int

	// Embedded is the number of vectors stored.
	Embedded int

	// Failed is the number of embeddings that failed and were skipped.
	Failed int

	// Keyword is the result of the keyword index build, if one ran.
	Keyword domain.BuildResult
}

// IndexService owns the lifecycle of the derived indexes.
type IndexService interface {
	// Init populates the indexes from the document source.
	Init(ctx context.Context) (IndexReport, error)

	// Index (re)indexes one document, retiring its previous chunks and vectors.
	Index(ctx context.Context, doc *domain.Document) (IndexReport, error)

	// Remove drops a document's vectors and invalidates the keyword index.
	// Unknown documents are a no-op.
	Remove(ctx context.Context, documentID string) error

	// Rebuild discards and repopulates every index.
	Rebuild(ctx context.Context) (IndexReport, error)

	// Stats reports the sizes of the indexes.
	Stats(ctx context.Context) IndexStats

	// Close releases resources.
	Close() error
}

// IndexStats reports the sizes of the indexes.
type IndexStats struct {
	Vectors      domain.VectorStats
	KeywordState domain.IndexState
}
