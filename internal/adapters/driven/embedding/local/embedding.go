// Package local provides an offline embedding service based on feature
// hashing of tokenizer terms. It needs no model and no network, and
// identical texts always embed identically.
package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 512

// ModelName is reported for every local embedding.
const ModelName = "local-feature-hash"

// bigramWeight scales adjacent-pair features relative to single terms.
const bigramWeight = 0.5

// Terms splits text into index terms.
type Terms interface {
	Terms(text string) []string
}

// EmbeddingService hashes unigrams and bigrams into a signed, L2-normalised vector.
type EmbeddingService struct {
	terms      Terms
	dimensions int
}

// Option configures the service.
type Option func(*EmbeddingService)

// WithDimensions sets the vector size.
func WithDimensions(n int) Option {
	return func(s *EmbeddingService) {
		if n > 0 {
			s.dimensions = n
		}
	}
}

// NewEmbeddingService creates a local embedding service over the given term splitter.
func NewEmbeddingService(terms Terms, opts ...Option) *EmbeddingService {
	s := &EmbeddingService{terms: terms, dimensions: DefaultDimensions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := s.terms.Terms(text)
	if len(terms) == 0 {
		return nil, fmt.Errorf("local: %w: text has no terms", domain.ErrInvalidInput)
	}

	acc := make([]float64, s.dimensions)
	for i, t := range terms {
		s.add(acc, t, 1)
		if i > 0 {
			s.add(acc, terms[i-1]+"\x00"+t, bigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// add hashes feature into a bucket; one hash bit picks the sign so
// collisions tend to cancel rather than accumulate.
func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(s.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	acc[idx] += weight
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
