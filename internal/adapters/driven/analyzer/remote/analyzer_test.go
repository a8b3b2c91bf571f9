package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/tokenizer"
)

func analyzerServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "백엔드 개발자입니다", req.Text)

		_, _ = w.Write([]byte(`{"morphemes":[
			{"surface":"백엔드","tag":"NNG"},
			{"surface":"개발자","tag":"nng"},
			{"surface":"이","tag":"VCP"},
			{"surface":"ㅂ니다","tag":"EF"}
		]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	a, err := New(Config{BaseURL: "http://analyzer:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http:http://analyzer:8080", a.Name())
}

func TestAnalyze(t *testing.T) {
	a, err := New(Config{BaseURL: analyzerServer(t).URL})
	require.NoError(t, err)

	got, err := a.Analyze(context.Background(), "백엔드 개발자입니다")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "백엔드", got[0].Surface)
	assert.Equal(t, "NNG", got[1].Tag)
}

func TestAnalyze_FeedsTokenizer(t *testing.T) {
	a, err := New(Config{BaseURL: analyzerServer(t).URL})
	require.NoError(t, err)

	tok := tokenizer.New(tokenizer.WithAnalyzer(a))
	assert.Equal(t, []string{"백엔드", "개발자"}, tok.Tokenize("백엔드 개발자입니다"))
}

func TestAnalyze_Unavailable(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		a, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = a.Analyze(context.Background(), "텍스트")
		assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		a, err := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
		require.NoError(t, err)
		_, err = a.Analyze(context.Background(), "텍스트")
		assert.ErrorIs(t, err, domain.ErrAnalyzerUnavailable)
	})

	t.Run("fallback tokenization", func(t *testing.T) {
		a, err := New(Config{BaseURL: "http://127.0.0.1:1"})
		require.NoError(t, err)

		tok := tokenizer.New(tokenizer.WithAnalyzer(a))
		assert.Equal(t, []string{"kafka", "의존성"}, tok.Tokenize("Kafka 의존성"))
	})
}
