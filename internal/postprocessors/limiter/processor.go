// Package limiter bounds chunk content to a maximum number of characters.
package limiter

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.ChunkProcessor = (*Processor)(nil)

// DefaultMaxRunes is the default upper bound on chunk content length.
const DefaultMaxRunes = 2000

// Processor truncates chunk content on a character boundary.
// Chunks left empty after trimming are dropped.
type Processor struct {
	maxRunes int
}

// Option configures the limiter.
type Option func(*Processor)

// WithMaxRunes sets the maximum characters per chunk.
func WithMaxRunes(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxRunes = n
		}
	}
}

// New creates a limiter with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxRunes: DefaultMaxRunes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "limiter"
}

// MaxRunes returns the configured bound.
func (p *Processor) MaxRunes() int {
	return p.maxRunes
}

// Process bounds every chunk. The input slice is not modified.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if utf8.RuneCountInString(c.Content) > p.maxRunes {
			c.Content = strings.TrimSpace(string([]rune(c.Content)[:p.maxRunes]))
		}
		if c.Content == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
