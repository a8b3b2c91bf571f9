// Package embedding holds the HTTP transport shared by the embedding
// provider adapters in its subpackages.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string

	// RetryAfter is the server-requested backoff on 429 responses.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Unwrap lets callers match provider failures with domain.ErrEmbeddingUnavailable.
func (e *StatusError) Unwrap() error {
	return domain.ErrEmbeddingUnavailable
}

// RateLimited reports whether err is a 429 response and the requested backoff.
func RateLimited(err error) (time.Duration, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return se.RetryAfter, true
	}
	return 0, false
}

// Client sends JSON requests to one provider.
type Client struct {
	HTTP     *http.Client
	Provider string
	Header   http.Header
}

// NewClient creates a client with the given request timeout.
func NewClient(provider string, timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Provider: provider,
		Header:   make(http.Header),
	}
}

// PostJSON marshals in, posts it to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.Provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.Provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get issues a GET request and discards the body. Used for health checks.
func (c *Client) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.Provider, err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w: %w", c.Provider, domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Provider:   c.Provider,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(msg)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.Provider, err)
	}
	return nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// ToFloat32 converts a provider vector.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
