package config

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyDataDir        = "data_dir"
	KeyLexiconPath    = "lexicon_path"
	KeyAnalyzerURL    = "analyzer.url"
	KeyChunkMaxRunes  = "chunk.max_runes"
	KeyWorkerPoolSize = "workers"

	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingAPIKey     = "embedding.api_key"
	KeyEmbeddingDimensions = "embedding.dimensions"
	KeyEmbeddingTimeout    = "embedding.timeout"
	KeyEmbeddingRPS        = "embedding.requests_per_second"
	KeyEmbeddingBurst      = "embedding.burst"
	KeyEmbeddingConcurrency = "embedding.concurrency"

	KeyKeywordTTL            = "keyword.ttl"
	KeyKeywordK1             = "keyword.k1"
	KeyKeywordB              = "keyword.b"
	KeyKeywordHighlightOpen  = "keyword.highlight_open"
	KeyKeywordHighlightClose = "keyword.highlight_close"
	KeyKeywordSuggestLimit   = "keyword.suggest_limit"

	KeySimilarityHigh          = "similarity.thresholds.high"
	KeySimilarityMedium        = "similarity.thresholds.medium"
	KeySimilarityVectorWeight  = "similarity.vector_weight"
	KeySimilarityKeywordWeight = "similarity.keyword_weight"
	KeySimilarityEvidenceFloor = "similarity.evidence_floor"
	KeySimilarityMaxEvidence   = "similarity.max_evidence"
)

// LoadSettings overlays the values present in store onto the defaults and
// validates the result. configDir anchors relative paths and the default
// data directory; it is usually the directory holding config.toml.
func LoadSettings(store driven.ConfigStore, configDir string) (domain.Settings, error) {
	s := domain.DefaultSettings()
	s.DataDir = filepath.Join(configDir, "data")

	str(store, KeyDataDir, &s.DataDir)
	str(store, KeyLexiconPath, &s.LexiconPath)
	str(store, KeyAnalyzerURL, &s.AnalyzerURL)
	integer(store, KeyChunkMaxRunes, &s.MaxChunkRunes)
	integer(store, KeyWorkerPoolSize, &s.WorkerPoolSize)

	e := &s.Embedding
	if v := store.GetString(KeyEmbeddingProvider); v != "" {
		e.Provider = domain.EmbeddingProvider(v)
	}
	str(store, KeyEmbeddingModel, &e.Model)
	str(store, KeyEmbeddingBaseURL, &e.BaseURL)
	str(store, KeyEmbeddingAPIKey, &e.APIKey)
	integer(store, KeyEmbeddingDimensions, &e.Dimensions)
	if v := store.GetDuration(KeyEmbeddingTimeout); v > 0 {
		e.Timeout = v
	}
	float(store, KeyEmbeddingRPS, &e.RequestsPerSecond)
	integer(store, KeyEmbeddingBurst, &e.Burst)
	integer(store, KeyEmbeddingConcurrency, &e.Concurrency)

	k := &s.Keyword
	if v := store.GetDuration(KeyKeywordTTL); v > 0 {
		k.TTL = v
	}
	float(store, KeyKeywordK1, &k.K1)
	float(store, KeyKeywordB, &k.B)
	str(store, KeyKeywordHighlightOpen, &k.HighlightOpen)
	str(store, KeyKeywordHighlightClose, &k.HighlightClose)
	integer(store, KeyKeywordSuggestLimit, &k.SuggestLimit)

	sim := &s.Similarity
	float(store, KeySimilarityHigh, &sim.Thresholds.High)
	float(store, KeySimilarityMedium, &sim.Thresholds.Medium)
	float(store, KeySimilarityVectorWeight, &sim.VectorWeight)
	float(store, KeySimilarityKeywordWeight, &sim.KeywordWeight)
	float(store, KeySimilarityEvidenceFloor, &sim.EvidenceFloor)
	integer(store, KeySimilarityMaxEvidence, &sim.MaxEvidence)

	if s.LexiconPath != "" && !filepath.IsAbs(s.LexiconPath) {
		s.LexiconPath = filepath.Join(configDir, s.LexiconPath)
	}

	if err := Validate(s); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// Validate checks settings for values no component can run with.
func Validate(s domain.Settings) error {
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%s %q: %w", KeyEmbeddingProvider, s.Embedding.Provider, domain.ErrInvalidInput)
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return fmt.Errorf("%s is required for %s: %w", KeyEmbeddingAPIKey, s.Embedding.Provider, domain.ErrInvalidInput)
	}
	if s.Embedding.Dimensions < 0 {
		return fmt.Errorf("%s must not be negative: %w", KeyEmbeddingDimensions, domain.ErrInvalidInput)
	}

	t := s.Similarity.Thresholds
	if t.Medium <= 0 || t.High > 1 || t.Medium > t.High {
		return fmt.Errorf("risk thresholds need 0 < medium <= high <= 1, got medium=%.2f high=%.2f: %w",
			t.Medium, t.High, domain.ErrInvalidInput)
	}
	if s.Similarity.VectorWeight < 0 || s.Similarity.KeywordWeight < 0 ||
		s.Similarity.VectorWeight+s.Similarity.KeywordWeight == 0 {
		return fmt.Errorf("similarity weights must be non-negative with a positive sum: %w", domain.ErrInvalidInput)
	}

	if s.Keyword.K1 < 0 || s.Keyword.B < 0 || s.Keyword.B > 1 {
		return fmt.Errorf("bm25 parameters need k1 >= 0 and 0 <= b <= 1: %w", domain.ErrInvalidInput)
	}
	return nil
}

func str(store driven.ConfigStore, key string, dst *string) {
	if v := store.GetString(key); v != "" {
		*dst = v
	}
}

func integer(store driven.ConfigStore, key string, dst *int) {
	if _, ok := store.Get(key); ok {
		if v := store.GetInt(key); v > 0 {
			*dst = v
		}
	}
}

func float(store driven.ConfigStore, key string, dst *float64) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetFloat(key)
	}
}
