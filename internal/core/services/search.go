package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
	"github.com/custodia-labs/hirescope/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// rrfK is the reciprocal rank fusion constant.
const rrfK = 60

// defaultSearchLimit is used when SearchOptions.Limit is unset.
const defaultSearchLimit = 20

// scoredDocument holds intermediate search results before hydration.
type scoredDocument struct {
	documentID string
	score      float64
	source     domain.ResultSource
	keyword    *domain.SearchResult
	chunk      *domain.Chunk
}

// SearchService provides hybrid search functionality.
type SearchService struct {
	docs             driven.DocumentSource
	keywordIndex     driven.KeywordIndex
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
	suggestLimit     int
}

// NewSearchService creates a new search service.
// The vectorStore and embeddingService parameters are optional (can be nil).
func NewSearchService(
	docs driven.DocumentSource,
	keywordIndex driven.KeywordIndex,
	vectorStore driven.VectorStore,
	embeddingService driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		docs:             docs,
		keywordIndex:     keywordIndex,
		vectorStore:      vectorStore,
		embeddingService: embeddingService,
		suggestLimit:     domain.DefaultKeywordSettings().SuggestLimit,
	}
}

// SetSuggestLimit sets the default number of suggestions.
func (s *SearchService) SetSuggestLimit(n int) {
	if n > 0 {
		s.suggestLimit = n
	}
}

// Search performs hybrid search across all indexed documents.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (domain.SearchResponse, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	resp := domain.SearchResponse{
		Query:   query,
		Mode:    s.effectiveMode(opts),
		Status:  domain.KeywordStatusOK,
		Results: []domain.SearchResult{},
	}

	if query == "" {
		logger.Debug("Empty query, returning no results")
		resp.Status = domain.KeywordStatusNoValidTokens
		return resp, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// Request more results internally to account for filtering
	internalLimit := limit * 2
	if len(opts.Types) > 0 {
		internalLimit = limit * 3
		logger.Debug("Type filter: %v", opts.Types)
	}

	logger.Info("Effective search mode: %s", resp.Mode.Description())

	var (
		ranked []scoredDocument
		err    error
	)
	switch resp.Mode {
	case domain.SearchModeHybrid:
		ranked, resp.Status, resp.Degraded, err = s.hybridSearch(ctx, query, internalLimit)
	default:
		ranked, resp.Status, err = s.keywordSearch(ctx, query, internalLimit)
	}
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return resp, fmt.Errorf("search: %w", err)
	}

	results, err := s.hydrateResults(ctx, ranked)
	if err != nil {
		return resp, fmt.Errorf("hydrate results: %w", err)
	}

	if len(opts.Types) > 0 {
		results = filterByTypes(results, opts.Types)
		logger.Debug("After type filter: %d results", len(results))
	}

	if len(results) > limit {
		results = results[:limit]
	}
	resp.Results = results
	logger.Info("Final results: %d", len(results))

	return resp, nil
}

// Suggest returns indexed terms completing the prefix.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if s.keywordIndex == nil {
		return nil, errors.New("keyword index unavailable")
	}
	if limit <= 0 {
		limit = s.suggestLimit
	}
	return s.keywordIndex.Suggest(ctx, prefix, limit)
}

// effectiveMode determines the search mode based on options and available services.
func (s *SearchService) effectiveMode(opts domain.SearchOptions) domain.SearchMode {
	if opts.KeywordOnly || s.vectorStore == nil || s.embeddingService == nil {
		return domain.SearchModeTextOnly
	}
	return domain.SearchModeHybrid
}

// keywordSearch performs BM25 search over document composite text.
func (s *SearchService) keywordSearch(
	ctx context.Context, query string, limit int,
) ([]scoredDocument, domain.KeywordStatus, error) {
	if s.keywordIndex == nil {
		logger.Warn("Keyword search unavailable: keyword index is nil")
		return nil, domain.KeywordStatusOK, errors.New("keyword index unavailable")
	}

	res, err := s.keywordIndex.Search(ctx, query, limit)
	if err != nil {
		return nil, domain.KeywordStatusOK, fmt.Errorf("keyword search: %w", err)
	}
	logger.Debug("Keyword search: status=%s tokens=%v hits=%d", res.Status, res.Tokens, len(res.Results))

	out := make([]scoredDocument, len(res.Results))
	for i := range res.Results {
		out[i] = scoredDocument{
			documentID: res.Results[i].Document.ID,
			score:      res.Results[i].Score,
			source:     domain.ResultSourceKeyword,
			keyword:    &res.Results[i],
		}
	}
	return out, res.Status, nil
}

// vectorSearch embeds the query and ranks documents by their best chunk.
func (s *SearchService) vectorSearch(ctx context.Context, query string, limit int) ([]scoredDocument, error) {
	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	// Several chunks of one document may match; over-fetch before grouping.
	matches, err := s.vectorStore.Search(ctx, embedding, domain.VectorQuery{
		TopK: limit * 3,
		Kind: domain.VectorKindChunk,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	seen := make(map[string]bool)
	var out []scoredDocument
	for _, m := range matches {
		if m.Similarity <= 0 || seen[m.Metadata.DocumentID] {
			continue
		}
		seen[m.Metadata.DocumentID] = true
		out = append(out, scoredDocument{
			documentID: m.Metadata.DocumentID,
			score:      m.Similarity,
			source:     domain.ResultSourceVector,
			chunk: &domain.Chunk{
				ID:         m.Metadata.ChunkID,
				DocumentID: m.Metadata.DocumentID,
				Type:       m.Metadata.ChunkType,
				Content:    m.Metadata.Attributes[attrContent],
			},
		})
		if len(out) == limit {
			break
		}
	}
	logger.Debug("Vector search: %d chunk hits, %d documents", len(matches), len(out))
	return out, nil
}

// hybridSearch runs keyword and vector searches in parallel and merges them with RRF.
// When either side fails the other is used on its own.
func (s *SearchService) hybridSearch(
	ctx context.Context, query string, limit int,
) ([]scoredDocument, domain.KeywordStatus, bool, error) {
	var (
		keywordResults, vectorResults []scoredDocument
		status                        domain.KeywordStatus
		keywordErr, vectorErr         error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keywordResults, status, keywordErr = s.keywordSearch(gctx, query, limit)
		return nil
	})
	g.Go(func() error {
		vectorResults, vectorErr = s.vectorSearch(gctx, query, limit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, status, false, err
	}

	if status == domain.KeywordStatusNoValidTokens {
		return nil, status, false, nil
	}

	switch {
	case keywordErr != nil && vectorErr != nil:
		logger.Warn("Hybrid search: both keyword and vector searches failed")
		return nil, status, true, fmt.Errorf("hybrid search: keyword=%w, vector=%w", keywordErr, vectorErr)
	case keywordErr != nil:
		logger.Warn("Hybrid search: keyword search failed, using vector results only: %v", keywordErr)
		return vectorResults, domain.KeywordStatusOK, false, nil
	case vectorErr != nil:
		logger.Warn("Hybrid search: vector search failed, using keyword results only: %v", vectorErr)
		return keywordResults, status, true, nil
	}

	merged := reciprocalRankFusion(keywordResults, vectorResults, rrfK)
	logger.Debug("Hybrid search: merged %d keyword + %d vector into %d",
		len(keywordResults), len(vectorResults), len(merged))
	if status == domain.KeywordStatusIndexEmpty && len(merged) > 0 {
		status = domain.KeywordStatusOK
	}
	return merged, status, false, nil
}

// reciprocalRankFusion merges two ranked lists. k damps the weight of top ranks.
// Ties are broken by document ID.
func reciprocalRankFusion(keyword, vector []scoredDocument, k int) []scoredDocument {
	byID := make(map[string]*scoredDocument)
	var order []string

	add := func(list []scoredDocument) {
		for rank, d := range list {
			rrf := 1.0 / float64(k+rank+1)
			cur, ok := byID[d.documentID]
			if !ok {
				d.score = rrf
				byID[d.documentID] = &d
				order = append(order, d.documentID)
				continue
			}
			cur.score += rrf
			cur.source = domain.ResultSourceHybrid
			if cur.keyword == nil {
				cur.keyword = d.keyword
			}
			if cur.chunk == nil {
				cur.chunk = d.chunk
			}
		}
	}
	add(keyword)
	add(vector)

	out := make([]scoredDocument, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].documentID < out[j].documentID
	})
	return out
}

// hydrateResults converts ranked documents into SearchResults.
// Vector-only hits are loaded from the document source; vanished documents are skipped.
func (s *SearchService) hydrateResults(ctx context.Context, ranked []scoredDocument) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		result := domain.SearchResult{Score: r.score, Source: r.source, Chunk: r.chunk}

		if r.keyword != nil {
			result.Document = r.keyword.Document
			result.Highlights = r.keyword.Highlights
		} else {
			if s.docs == nil {
				return nil, errors.New("document source unavailable")
			}
			doc, err := s.docs.Get(ctx, r.documentID)
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping vanished document %s", r.documentID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get document %s: %w", r.documentID, err)
			}
			result.Document = *doc
		}
		results = append(results, result)
	}
	return results, nil
}

// filterByTypes keeps results whose document type is listed.
func filterByTypes(results []domain.SearchResult, types []domain.DocumentType) []domain.SearchResult {
	out := results[:0]
	for _, r := range results {
		for _, t := range types {
			if r.Document.Type == t {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
