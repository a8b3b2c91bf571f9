package mcp

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response    domain.SearchResponse
	suggestions []string
	err         error

	lastQuery string
	lastOpts  domain.SearchOptions
	lastLimit int
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockSearchService) Suggest(_ context.Context, _ string, limit int) ([]string, error) {
	m.lastLimit = limit
	return m.suggestions, m.err
}

// mockSimilarityService is a mock implementation of driving.SimilarityService.
type mockSimilarityService struct {
	verdict     domain.SimilarityVerdict
	applicant   domain.ApplicantVerdict
	recommended domain.RecommendationSet
	err         error

	lastLimit int
}

func (m *mockSimilarityService) Assess(_ context.Context, _ string) (domain.SimilarityVerdict, error) {
	return m.verdict, m.err
}

func (m *mockSimilarityService) AssessApplicant(_ context.Context, _ string) (domain.ApplicantVerdict, error) {
	return m.applicant, m.err
}

func (m *mockSimilarityService) Recommend(_ context.Context, _ string, limit int) (domain.RecommendationSet, error) {
	m.lastLimit = limit
	return m.recommended, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats driving.IndexStats
}

func (m *mockIndexService) Init(_ context.Context) (driving.IndexReport, error) {
	return driving.IndexReport{}, nil
}

func (m *mockIndexService) Index(_ context.Context, _ *domain.Document) (driving.IndexReport, error) {
	return driving.IndexReport{}, nil
}

func (m *mockIndexService) Remove(_ context.Context, _ string) error { return nil }

func (m *mockIndexService) Rebuild(_ context.Context) (driving.IndexReport, error) {
	return driving.IndexReport{}, nil
}

func (m *mockIndexService) Stats(_ context.Context) driving.IndexStats { return m.stats }

func (m *mockIndexService) Close() error { return nil }

func validPorts() *Ports {
	return &Ports{
		Search:     &mockSearchService{},
		Similarity: &mockSimilarityService{},
	}
}
