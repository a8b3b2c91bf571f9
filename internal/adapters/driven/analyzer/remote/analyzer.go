// Package remote provides a morphological analyzer adapter that calls an
// external analysis service over HTTP.
//
// The service accepts POST {"text": "..."} on /analyze and responds with
// {"morphemes": [{"surface": "...", "tag": "NNG"}, ...]}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.MorphAnalyzer = (*Analyzer)(nil)

// DefaultTimeout bounds one analysis request.
const DefaultTimeout = 2 * time.Second

// Config holds configuration for the analyzer client.
type Config struct {
	// BaseURL is the analyzer service URL (required).
	BaseURL string

	// Timeout is the request timeout (default: 2s).
	Timeout time.Duration
}

// Analyzer calls a remote morphological analyzer.
type Analyzer struct {
	client  *http.Client
	baseURL string
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Morphemes []struct {
		Surface string `json:"surface"`
		Tag     string `json:"tag"`
	} `json:"morphemes"`
}

// New creates an analyzer client.
func New(cfg Config) (*Analyzer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analyzer: %w: base URL is required", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Analyzer{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Name returns the analyzer name for logging.
func (a *Analyzer) Name() string {
	return "http:" + a.baseURL
}

// Analyze splits text into tagged morphemes.
// Every failure wraps domain.ErrAnalyzerUnavailable.
func (a *Analyzer) Analyze(ctx context.Context, text string) ([]driven.Morpheme, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", domain.ErrAnalyzerUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrAnalyzerUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrAnalyzerUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrAnalyzerUnavailable, err)
	}

	morphemes := make([]driven.Morpheme, 0, len(out.Morphemes))
	for _, m := range out.Morphemes {
		morphemes = append(morphemes, driven.Morpheme{Surface: m.Surface, Tag: strings.ToUpper(m.Tag)})
	}
	return morphemes, nil
}
