package domain

// SearchOptions configures a free-text search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Types filters to specific document types.
	Types []DocumentType

	// KeywordOnly disables the vector path even when embeddings are available.
	KeywordOnly bool
}

// ResultSource records which retrieval path produced a result.
type ResultSource string

// Result sources.
const (
	ResultSourceKeyword ResultSource = "keyword"
	ResultSourceVector  ResultSource = "vector"
	ResultSourceHybrid  ResultSource = "hybrid"
)

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the chunk that matched, if the hit came from the vector path.
	Chunk *Chunk

	// Score is the relevance score, normalised per algorithm.
	Score float64

	// Highlights contains snippets with matched terms wrapped in markers.
	Highlights []string

	// Source is the retrieval path that produced the hit.
	Source ResultSource
}

// KeywordStatus describes the outcome of a keyword search.
type KeywordStatus string

// Keyword search outcomes.
const (
	KeywordStatusOK            KeywordStatus = "ok"
	KeywordStatusNoValidTokens KeywordStatus = "no_valid_tokens"
	KeywordStatusIndexEmpty    KeywordStatus = "index_empty"
)

// KeywordSearch is the structured response of a BM25 search.
type KeywordSearch struct {
	// Status is ok, no_valid_tokens or index_empty.
	Status KeywordStatus

	// Tokens are the query tokens the search scored with.
	Tokens []string

	// Results are the ranked hits; empty unless Status is ok.
	Results []SearchResult
}

// SearchResponse is the structured response of the hybrid search service.
type SearchResponse struct {
	// Query is the trimmed query text.
	Query string

	// Mode records the retrieval mode actually used.
	Mode SearchMode

	// Status carries the keyword outcome, so callers can render "no valid tokens".
	Status KeywordStatus

	// Results are the ranked hits.
	Results []SearchResult

	// Degraded is true when the vector path was requested but unavailable.
	Degraded bool
}

// BuildResult reports the outcome of a keyword index build.
type BuildResult struct {
	Success       bool
	DocumentCount int
}

// IndexState is the keyword index lifecycle state.
type IndexState string

// Keyword index lifecycle states.
const (
	IndexStateUninitialized IndexState = "UNINITIALIZED"
	IndexStateBuilding      IndexState = "BUILDING"
	IndexStateReady         IndexState = "READY"
	IndexStateStale         IndexState = "STALE"
)
