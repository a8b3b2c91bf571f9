package driven

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// ChunkProcessor processes document content to produce chunks.
// Processors are chained in a pipeline (e.g., chunking, then bounding).
type ChunkProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// A processor that creates chunks (e.g., chunker) receives nil and returns new chunks.
	// A processor that modifies chunks (e.g., limiter) receives and returns chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// ChunkPipeline chains multiple ChunkProcessors.
type ChunkPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
