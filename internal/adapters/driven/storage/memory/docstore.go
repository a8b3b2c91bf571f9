package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	now       func() time.Time
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore(docs ...domain.Document) *DocumentStore {
	s := &DocumentStore{
		documents: make(map[string]domain.Document),
		now:       time.Now,
	}
	for i := range docs {
		s.documents[docs[i].ID] = cloneDocument(docs[i])
	}
	return s
}

// Save stores or replaces a document. CreatedAt is kept across replacements.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneDocument(*doc)
	now := s.now()
	if prev, ok := s.documents[doc.ID]; ok && !prev.CreatedAt.IsZero() {
		stored.CreatedAt = prev.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.documents[doc.ID] = stored
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneDocument(doc)
	return &out, nil
}

// Find returns documents matching the filter, ordered by ID.
func (s *DocumentStore) Find(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		doc := s.documents[id]
		if filter.Matches(&doc) {
			result = append(result, cloneDocument(doc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete removes a document. Unknown IDs are a no-op.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// cloneDocument copies the sections map so callers cannot mutate stored state.
func cloneDocument(d domain.Document) domain.Document {
	if d.Sections != nil {
		sections := make(map[domain.Section]string, len(d.Sections))
		for k, v := range d.Sections {
			sections[k] = v
		}
		d.Sections = sections
	}
	return d
}
