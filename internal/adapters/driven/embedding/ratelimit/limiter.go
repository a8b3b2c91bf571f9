// Package ratelimit wraps an embedding service with a token bucket and
// honours provider backoff on 429 responses.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/embedding"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults are conservative for hosted providers.
const (
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 20
	DefaultBackoff           = 30 * time.Second
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int

	// Backoff is used after a 429 response without Retry-After.
	Backoff time.Duration
}

// EmbeddingService delays calls to the wrapped service so they stay within the limit.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
	backoff time.Duration
	now     func() time.Time

	mu      sync.Mutex
	retryAt time.Time
}

// New wraps next with a rate limiter.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		backoff: cfg.Backoff,
		now:     time.Now,
	}
}

// Wait blocks until a request may be made, respecting any backoff period.
// It returns early with the context error when ctx is done.
func (s *EmbeddingService) Wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if d := retryAt.Sub(s.now()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return s.limiter.Wait(ctx)
}

// record starts a backoff period when err is a rate-limit response.
func (s *EmbeddingService) record(err error) {
	wait, ok := embedding.RateLimited(err)
	if !ok {
		return
	}
	if wait <= 0 {
		wait = s.backoff
	}
	logger.Warn("Embedding provider rate limited, backing off %s", wait)

	s.mu.Lock()
	defer s.mu.Unlock()
	if at := s.now().Add(wait); at.After(s.retryAt) {
		s.retryAt = at
	}
}

// Embed waits for a token and delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := s.next.Embed(ctx, text)
	s.record(err)
	return v, err
}

// EmbedBatch waits for one token per text and delegates.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	if n := len(texts) - 1; n > 0 {
		if n > s.limiter.Burst() {
			n = s.limiter.Burst()
		}
		if err := s.limiter.WaitN(ctx, n); err != nil {
			return nil, err
		}
	}
	v, err := s.next.EmbedBatch(ctx, texts)
	s.record(err)
	return v, err
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping is not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}
