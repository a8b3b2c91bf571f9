package postprocessors

import (
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/postprocessors/chunker"
	"github.com/custodia-labs/hirescope/internal/postprocessors/limiter"
)

// DefaultChain is the processor order used when none is configured.
var DefaultChain = []string{"chunker", "limiter"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("limiter", buildLimiter)
}

// NewDefaultPipeline builds the chunker and limiter chain.
// maxRunes bounds chunk content; zero or negative uses the limiter default.
func NewDefaultPipeline(maxRunes int) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	configs := map[string]map[string]any{
		"limiter": {"max_runes": maxRunes},
	}
	return r.BuildPipeline(DefaultChain, configs)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - summary_length (int): Characters of full text used as summary (default: 200)
//   - min_fragment (int): Shortest list item kept (default: 10)
func buildChunker(cfg map[string]any) (driven.ChunkProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "summary_length"); n > 0 {
			opts = append(opts, chunker.WithSummaryLength(n))
		}
		if _, ok := cfg["min_fragment"]; ok {
			opts = append(opts, chunker.WithMinFragment(getIntFromConfig(cfg, "min_fragment")))
		}
	}

	return chunker.New(opts...), nil
}

// buildLimiter creates a limiter processor from generic config.
// Supported config keys:
//   - max_runes (int): Characters per chunk (default: 2000)
func buildLimiter(cfg map[string]any) (driven.ChunkProcessor, error) {
	var opts []limiter.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "max_runes"); n > 0 {
			opts = append(opts, limiter.WithMaxRunes(n))
		}
	}

	return limiter.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
