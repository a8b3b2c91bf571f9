package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

func newServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		resp := embedResponse{Model: req.Model}
		for i := range req.Input {
			v := make([]float64, dims)
			v[i%dims] = 1
			resp.Embeddings = append(resp.Embeddings, v)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultDimensions, s.Dimensions())
	assert.Equal(t, DefaultBaseURL, s.baseURL)
}

func TestEmbedBatch(t *testing.T) {
	srv := newServer(t, 4)
	s := NewEmbeddingService(Config{BaseURL: srv.URL + "/", Model: "test-model", Dimensions: 4})

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0, 0, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1, 0, 0}, vecs[1])

	v, err := s.Embed(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, v, 4)

	none, err := s.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEmbed_Errors(t *testing.T) {
	srv := newServer(t, 3)

	t.Run("dimension mismatch", func(t *testing.T) {
		s := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "test-model", Dimensions: 4})
		_, err := s.Embed(context.Background(), "a")
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("empty text", func(t *testing.T) {
		s := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "test-model", Dimensions: 3})
		_, err := s.Embed(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("server error", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer bad.Close()

		s := NewEmbeddingService(Config{BaseURL: bad.URL, Model: "test-model"})
		_, err := s.Embed(context.Background(), "a")
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "model not found")
		assert.Error(t, s.Ping(context.Background()))
	})
}

func TestPing(t *testing.T) {
	srv := newServer(t, 3)
	s := NewEmbeddingService(Config{BaseURL: srv.URL})
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
