package domain

import "time"

const unknownDescription = "Unknown"

// SearchMode defines how search operations combine different retrieval methods.
type SearchMode string

// Available search modes.
const (
	// SearchModeTextOnly uses only BM25 keyword search.
	SearchModeTextOnly SearchMode = "text_only"

	// SearchModeHybrid combines BM25 and vector similarity search.
	SearchModeHybrid SearchMode = "hybrid"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	return m == SearchModeTextOnly || m == SearchModeHybrid
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeTextOnly:
		return "Text Only (keyword search)"
	case SearchModeHybrid:
		return "Hybrid (text + semantic search)"
	default:
		return unknownDescription
	}
}

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	EmbeddingProviderNone   EmbeddingProvider = "none"
	EmbeddingProviderLocal  EmbeddingProvider = "local"
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the embedding provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderNone, EmbeddingProviderLocal, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider          EmbeddingProvider
	Model             string
	BaseURL           string
	APIKey            string
	Dimensions        int // 0 selects the provider default
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Concurrency       int
}

// KeywordSettings configures the BM25 keyword index.
type KeywordSettings struct {
	TTL            time.Duration
	K1             float64
	B              float64
	HighlightOpen  string
	HighlightClose string
	SuggestLimit   int
}

// SimilaritySettings configures similarity scoring.
type SimilaritySettings struct {
	Thresholds    RiskThresholds
	VectorWeight  float64
	KeywordWeight float64
	EvidenceFloor float64
	MaxEvidence   int
}

// Settings is the typed application configuration.
type Settings struct {
	DataDir        string
	LexiconPath    string
	AnalyzerURL    string
	MaxChunkRunes  int
	WorkerPoolSize int
	Embedding      EmbeddingSettings
	Keyword        KeywordSettings
	Similarity     SimilaritySettings
}

// DefaultKeywordSettings returns BM25 defaults: one hour TTL, k1 1.5, b 0.75.
func DefaultKeywordSettings() KeywordSettings {
	return KeywordSettings{
		TTL:            time.Hour,
		K1:             1.5,
		B:              0.75,
		HighlightOpen:  "<mark>",
		HighlightClose: "</mark>",
		SuggestLimit:   10,
	}
}

// DefaultSimilaritySettings returns the standard scoring weights.
func DefaultSimilaritySettings() SimilaritySettings {
	return SimilaritySettings{
		Thresholds:    DefaultRiskThresholds(),
		VectorWeight:  0.7,
		KeywordWeight: 0.3,
		EvidenceFloor: 0.5,
		MaxEvidence:   10,
	}
}

// DefaultSettings returns the full default configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxChunkRunes:  2000,
		WorkerPoolSize: 0,
		Embedding: EmbeddingSettings{
			Provider:          EmbeddingProviderLocal,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             10,
			Concurrency:       4,
		},
		Keyword:    DefaultKeywordSettings(),
		Similarity: DefaultSimilaritySettings(),
	}
}
