package driven

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// DocumentSource provides read access to applicant documents.
// The search core only reads from it; ingestion is owned by another system.
type DocumentSource interface {
	// Find returns documents matching the filter, ordered by ID.
	Find(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if the document does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentWriter stores documents on behalf of the ingestion collaborator.
// Only the import tooling uses it.
type DocumentWriter interface {
	// Save stores or replaces a document.
	Save(ctx context.Context, doc *domain.Document) error

	// Delete removes a document. Deleting an unknown document is a no-op.
	Delete(ctx context.Context, id string) error
}

// DocumentStore is a document source that also accepts writes.
type DocumentStore interface {
	DocumentSource
	DocumentWriter
}
