package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

func resultIDs(results []domain.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Document.ID
	}
	return ids
}

func searchCorpus() []domain.Document {
	return []domain.Document{
		backendResume("res-a", "app-1", "Kim Minsu"),
		backendResume("res-b", "app-2", "Park Jisoo"),
		designerResume("res-c", "app-3"),
		coverLetter("cl-d", "app-4"),
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	h := newHarness(t, &bagEmbedder{dims: 256}, searchCorpus()...)

	for _, q := range []string{"", "   "} {
		resp, err := h.search.Search(context.Background(), q, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, domain.KeywordStatusNoValidTokens, resp.Status)
		assert.Empty(t, resp.Results)
		assert.NotNil(t, resp.Results)
	}
}

func TestSearch_StopwordsOnly(t *testing.T) {
	h := newHarness(t, nil, searchCorpus()...)

	resp, err := h.search.Search(context.Background(), "the and of", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.KeywordStatusNoValidTokens, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestSearch_KeywordOnlyWithoutEmbedder(t *testing.T) {
	h := newHarness(t, nil, searchCorpus()...)

	resp, err := h.search.Search(context.Background(), "kafka", domain.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.SearchModeTextOnly, resp.Mode)
	assert.False(t, resp.Degraded)
	assert.Equal(t, domain.KeywordStatusOK, resp.Status)
	assert.ElementsMatch(t, []string{"res-a", "res-b"}, resultIDs(resp.Results))
	for _, r := range resp.Results {
		assert.Equal(t, domain.ResultSourceKeyword, r.Source)
		assert.Nil(t, r.Chunk)
		require.NotEmpty(t, r.Highlights)
		assert.Contains(t, r.Highlights[0], "<mark>Kafka</mark>")
	}
}

func TestSearch_KeywordOnlyOption(t *testing.T) {
	h := newHarness(t, &bagEmbedder{dims: 256}, searchCorpus()...)
	before := h.embedder.calls.Load()

	resp, err := h.search.Search(context.Background(), "kafka", domain.SearchOptions{KeywordOnly: true})
	require.NoError(t, err)

	assert.Equal(t, domain.SearchModeTextOnly, resp.Mode)
	assert.Equal(t, before, h.embedder.calls.Load(), "query must not be embedded")
	assert.Len(t, resp.Results, 2)
}

func TestSearch_Hybrid(t *testing.T) {
	h := newHarness(t, &bagEmbedder{dims: 512}, searchCorpus()...)

	resp, err := h.search.Search(context.Background(), "payment gateway backend development", domain.SearchOptions{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, domain.SearchModeHybrid, resp.Mode)
	assert.False(t, resp.Degraded)
	require.GreaterOrEqual(t, len(resp.Results), 2)

	top := resultIDs(resp.Results[:2])
	assert.ElementsMatch(t, []string{"res-a", "res-b"}, top)
	for _, r := range resp.Results[:2] {
		assert.Equal(t, domain.ResultSourceHybrid, r.Source)
		require.NotNil(t, r.Chunk)
		assert.Equal(t, r.Document.ID, r.Chunk.DocumentID)
		assert.NotEmpty(t, r.Chunk.Content)
		assert.NotEmpty(t, r.Highlights)
	}
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score, resp.Results[i].Score)
	}
}

func TestSearch_DegradesWhenEmbeddingFails(t *testing.T) {
	h := newHarness(t, &bagEmbedder{dims: 256, failOn: "unembeddable"}, searchCorpus()...)

	resp, err := h.search.Search(context.Background(), "kafka unembeddable", domain.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.SearchModeHybrid, resp.Mode)
	assert.True(t, resp.Degraded)
	assert.ElementsMatch(t, []string{"res-a", "res-b"}, resultIDs(resp.Results))
	for _, r := range resp.Results {
		assert.Equal(t, domain.ResultSourceKeyword, r.Source)
	}
}

func TestSearch_TypeFilterAndLimit(t *testing.T) {
	h := newHarness(t, nil, searchCorpus()...)
	ctx := context.Background()

	resp, err := h.search.Search(ctx, "backend engineer", domain.SearchOptions{
		Types: []domain.DocumentType{domain.DocumentTypeCoverLetter},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cl-d"}, resultIDs(resp.Results))

	resp, err = h.search.Search(ctx, "backend engineer", domain.SearchOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearch_NoMatch(t *testing.T) {
	h := newHarness(t, nil, searchCorpus()...)

	resp, err := h.search.Search(context.Background(), "haskell", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.KeywordStatusOK, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestSearch_SkipsVanishedDocuments(t *testing.T) {
	h := newHarness(t, &bagEmbedder{dims: 512}, searchCorpus()...)
	ctx := context.Background()

	require.NoError(t, h.store.Delete(ctx, "res-b"))
	h.keyword.Invalidate()

	resp, err := h.search.Search(ctx, "payment gateway backend development", domain.SearchOptions{})
	require.NoError(t, err)
	assert.NotContains(t, resultIDs(resp.Results), "res-b")
	assert.Contains(t, resultIDs(resp.Results), "res-a")
}

func TestSuggest(t *testing.T) {
	h := newHarness(t, nil, searchCorpus()...)

	got, err := h.search.Suggest(context.Background(), "ka", 0)
	require.NoError(t, err)
	assert.Contains(t, got, "kafka")

	got, err = h.search.Suggest(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReciprocalRankFusion(t *testing.T) {
	keyword := []scoredDocument{
		{documentID: "a", source: domain.ResultSourceKeyword},
		{documentID: "b", source: domain.ResultSourceKeyword},
	}
	vector := []scoredDocument{
		{documentID: "b", source: domain.ResultSourceVector, chunk: &domain.Chunk{ID: "b:skills:0"}},
		{documentID: "c", source: domain.ResultSourceVector},
	}

	merged := reciprocalRankFusion(keyword, vector, rrfK)
	require.Len(t, merged, 3)

	assert.Equal(t, "b", merged[0].documentID)
	assert.Equal(t, domain.ResultSourceHybrid, merged[0].source)
	assert.InDelta(t, 1.0/62+1.0/61, merged[0].score, 1e-12)
	require.NotNil(t, merged[0].chunk)
	assert.Equal(t, "b:skills:0", merged[0].chunk.ID)

	assert.Equal(t, "a", merged[1].documentID)
	assert.Equal(t, domain.ResultSourceKeyword, merged[1].source)
	assert.Equal(t, "c", merged[2].documentID)
	assert.Equal(t, domain.ResultSourceVector, merged[2].source)
}

func TestReciprocalRankFusion_TieBreaksByID(t *testing.T) {
	merged := reciprocalRankFusion(
		[]scoredDocument{{documentID: "z"}},
		[]scoredDocument{{documentID: "m"}},
		rrfK,
	)
	require.Len(t, merged, 2)
	assert.Equal(t, "m", merged[0].documentID)
	assert.Equal(t, "z", merged[1].documentID)
}
