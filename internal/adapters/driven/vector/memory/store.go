// Package memory provides an in-process vector store with brute-force cosine search.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultTopK is used when a query does not set TopK.
const DefaultTopK = 10

// Store keeps vectors in memory. Reads and writes are serialized by a RWMutex.
// The first saved vector fixes the dimension until the store is emptied.
type Store struct {
	mu        sync.RWMutex
	records   map[string]domain.VectorRecord
	byDoc     map[string][]string
	dimension int
	now       func() time.Time
}

// NewStore creates an empty vector store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]domain.VectorRecord),
		byDoc:   make(map[string][]string),
		now:     time.Now,
	}
}

// Save validates and stores a vector, returning its new ID.
func (s *Store) Save(_ context.Context, embedding []float32, metadata domain.VectorMetadata) (string, error) {
	if len(embedding) == 0 {
		return "", fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	if err := metadata.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 && len(embedding) != s.dimension {
		return "", fmt.Errorf("%w: got %d, store has %d", domain.ErrDimensionMismatch, len(embedding), s.dimension)
	}
	if s.dimension == 0 {
		s.dimension = len(embedding)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	id := uuid.New().String()
	s.records[id] = domain.VectorRecord{
		ID:        id,
		Embedding: vec,
		Metadata:  cloneMetadata(metadata),
		CreatedAt: s.now(),
	}
	s.byDoc[metadata.DocumentID] = append(s.byDoc[metadata.DocumentID], id)

	return id, nil
}

// Search returns the most similar vectors matching the query filter, best first.
// Ties are broken by record ID to keep results deterministic.
func (s *Store) Search(ctx context.Context, query []float32, q domain.VectorQuery) ([]domain.VectorMatch, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []domain.VectorMatch{}, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, store has %d", domain.ErrDimensionMismatch, len(query), s.dimension)
	}

	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches := make([]domain.VectorMatch, 0, len(s.records))
	for id, rec := range s.records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !q.Matches(rec.Metadata) {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ID:         id,
			Similarity: Cosine(query, rec.Embedding),
			Metadata:   rec.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteByDocument removes every vector of the document.
func (s *Store) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byDoc[documentID]
	for _, id := range ids {
		delete(s.records, id)
	}
	delete(s.byDoc, documentID)

	if len(s.records) == 0 {
		s.dimension = 0
	}
	return len(ids), nil
}

// Vectors returns the document's records that match the query filter, in insertion order.
func (s *Store) Vectors(_ context.Context, documentID string, q domain.VectorQuery) ([]domain.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.VectorRecord
	for _, id := range s.byDoc[documentID] {
		rec := s.records[id]
		if q.Matches(rec.Metadata) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Stats reports the vector count and dimension.
func (s *Store) Stats(_ context.Context) domain.VectorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.VectorStats{Count: len(s.records), Dimension: s.dimension}
}

// Cosine returns the cosine similarity of a and b, accumulated in float64.
// Mismatched lengths or zero vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func cloneMetadata(m domain.VectorMetadata) domain.VectorMetadata {
	if m.Attributes != nil {
		attrs := make(map[string]string, len(m.Attributes))
		for k, v := range m.Attributes {
			attrs[k] = v
		}
		m.Attributes = attrs
	}
	return m
}
