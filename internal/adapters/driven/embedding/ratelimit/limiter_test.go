package ratelimit

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/embedding"
)

type stubEmbedder struct {
	calls atomic.Int32
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls.Add(1)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, s.err
}

func (s *stubEmbedder) Dimensions() int              { return 2 }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

func TestEmbed_Delegates(t *testing.T) {
	next := &stubEmbedder{}
	s := New(next, Config{})

	v, err := s.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)

	vs, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vs, 3)

	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, 2, s.Dimensions())
	assert.Equal(t, "stub", s.ModelName())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}

func TestEmbed_RespectsContextWhileThrottled(t *testing.T) {
	next := &stubEmbedder{}
	s := New(next, Config{RequestsPerSecond: 0.001, Burst: 1})

	_, err := s.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = s.Embed(ctx, "second")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestEmbed_BacksOffAfterRateLimit(t *testing.T) {
	next := &stubEmbedder{err: &embedding.StatusError{
		Provider:   "stub",
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: time.Hour,
	}}
	s := New(next, Config{})

	_, err := s.Embed(context.Background(), "x")
	_, limited := embedding.RateLimited(err)
	require.True(t, limited)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Embed(ctx, "y")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestEmbed_IgnoresOtherErrors(t *testing.T) {
	next := &stubEmbedder{err: &embedding.StatusError{Provider: "stub", StatusCode: http.StatusInternalServerError}}
	s := New(next, Config{})

	_, _ = s.Embed(context.Background(), "x")
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()
	assert.True(t, retryAt.IsZero())
}
