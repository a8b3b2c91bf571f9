package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// reversedServer answers with data in reverse order to exercise index placement.
func reversedServer(t *testing.T, dims int, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		requests.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}
		var data []item
		for i := len(req.Input) - 1; i >= 0; i-- {
			v := make([]float64, dims)
			v[0] = float64(len(req.Input[i]))
			data = append(data, item{Embedding: v, Index: i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	s, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, s.Dimensions())
	assert.Equal(t, "text-embedding-3-large", s.ModelName())

	s, err = NewEmbeddingService(Config{APIKey: "k", Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, 1536, s.Dimensions())
}

func TestEmbedBatch_OrdersByIndexAndBatches(t *testing.T) {
	var requests atomic.Int32
	srv := reversedServer(t, 3, &requests)

	s, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: srv.URL, Dimensions: 3, BatchSize: 2})
	require.NoError(t, err)

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(2), vecs[1][0])
	assert.Equal(t, float32(3), vecs[2][0])
	assert.Equal(t, int32(2), requests.Load())

	assert.NoError(t, s.Ping(context.Background()))
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	var requests atomic.Int32
	srv := reversedServer(t, 2, &requests)

	s, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: srv.URL, Dimensions: 3})
	require.NoError(t, err)

	_, err = s.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestEmbed_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	s, err := NewEmbeddingService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "bad key")
}
