package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

const (
	defaultSearchLimit    = 10
	defaultSuggestLimit   = 10
	defaultRecommendLimit = 5
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string   `json:"query" jsonschema:"the search query, Korean or English"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Types       []string `json:"types,omitempty" jsonschema:"restrict to document types: resume, cover_letter, portfolio"`
	KeywordOnly bool     `json:"keyword_only,omitempty" jsonschema:"skip semantic search and rank by BM25 only"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Query    string               `json:"query"`
	Mode     string               `json:"mode"`
	Status   string               `json:"status"`
	Degraded bool                 `json:"degraded,omitempty"`
	Results  []SearchResultOutput `json:"results"`
	Count    int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID  string   `json:"document_id"`
	ApplicantID string   `json:"applicant_id"`
	Type        string   `json:"type"`
	Score       float64  `json:"score"`
	Source      string   `json:"source"`
	Highlights  []string `json:"highlights,omitempty"`
	ChunkType   string   `json:"chunk_type,omitempty"`
	Content     string   `json:"content,omitempty"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Prefix string `json:"prefix" jsonschema:"the term prefix to complete"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions (default 10)"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	Suggestions []string `json:"suggestions"`
}

// SimilarityInput is the input schema for the assess_similarity tool.
type SimilarityInput struct {
	DocumentID  string `json:"document_id,omitempty" jsonschema:"the document to assess"`
	ApplicantID string `json:"applicant_id,omitempty" jsonschema:"assess every document of this applicant instead"`
}

// SimilarityOutput is the output schema for the assess_similarity tool.
type SimilarityOutput struct {
	Risk       string          `json:"risk"`
	Score      float64         `json:"score"`
	Confidence string          `json:"confidence"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Documents  []VerdictOutput `json:"documents"`
}

// VerdictOutput is the verdict of one document.
type VerdictOutput struct {
	DocumentID     string           `json:"document_id"`
	Risk           string           `json:"risk"`
	Score          float64          `json:"score"`
	VectorScore    *float64         `json:"vector_score,omitempty"`
	KeywordScore   float64          `json:"keyword_score"`
	Confidence     string           `json:"confidence"`
	Status         string           `json:"status"`
	SharedKeywords []string         `json:"shared_keywords,omitempty"`
	Evidence       []EvidenceOutput `json:"evidence,omitempty"`
	Message        string           `json:"message"`
}

// EvidenceOutput is a chunk pair that contributed to a verdict.
type EvidenceOutput struct {
	ChunkType         string  `json:"chunk_type"`
	MatchedDocumentID string  `json:"matched_document_id"`
	Similarity        float64 `json:"similarity"`
	Contribution      float64 `json:"contribution"`
}

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose profile drives the recommendation"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of candidates (default 5)"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	DocumentID      string                 `json:"document_id"`
	Confidence      string                 `json:"confidence"`
	Status          string                 `json:"status"`
	Message         string                 `json:"message,omitempty"`
	Recommendations []RecommendationOutput `json:"recommendations"`
}

// RecommendationOutput is one recommended candidate.
type RecommendationOutput struct {
	DocumentID   string   `json:"document_id"`
	ApplicantID  string   `json:"applicant_id"`
	Position     string   `json:"position,omitempty"`
	Score        float64  `json:"score"`
	SharedSkills []string `json:"shared_skills,omitempty"`
	Reason       string   `json:"reason"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search applicant documents with combined keyword and semantic ranking",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest",
		Description: "Complete a search term from the indexed vocabulary",
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assess_similarity",
		Description: "Assess the plagiarism risk of a document or of all documents of an applicant",
	}, s.handleAssessSimilarity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Recommend other candidates with a profile similar to a document",
	}, s.handleRecommend)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := domain.SearchOptions{Limit: limit, KeywordOnly: input.KeywordOnly}
	for _, t := range input.Types {
		dt := domain.DocumentType(strings.TrimSpace(t))
		if !dt.IsValid() {
			return nil, SearchOutput{}, fmt.Errorf("unknown document type %q: %w", t, domain.ErrInvalidInput)
		}
		opts.Types = append(opts.Types, dt)
	}

	resp, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Query:    resp.Query,
		Mode:     resp.Mode.String(),
		Status:   string(resp.Status),
		Degraded: resp.Degraded,
		Results:  make([]SearchResultOutput, len(resp.Results)),
		Count:    len(resp.Results),
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		out := SearchResultOutput{
			DocumentID:  r.Document.ID,
			ApplicantID: r.Document.ApplicantID,
			Type:        r.Document.Type.String(),
			Score:       r.Score,
			Source:      string(r.Source),
			Highlights:  r.Highlights,
		}
		if r.Chunk != nil {
			out.ChunkType = string(r.Chunk.Type)
			out.Content = r.Chunk.Content
		}
		output.Results[i] = out
	}

	return nil, output, nil
}

// handleSuggest handles the suggest tool invocation.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	terms, err := s.ports.Search.Suggest(ctx, input.Prefix, limit)
	if err != nil {
		return nil, SuggestOutput{}, err
	}
	if terms == nil {
		terms = []string{}
	}
	return nil, SuggestOutput{Suggestions: terms}, nil
}

// handleAssessSimilarity handles the assess_similarity tool invocation.
func (s *Server) handleAssessSimilarity(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarityInput,
) (*mcp.CallToolResult, SimilarityOutput, error) {
	switch {
	case input.ApplicantID != "":
		v, err := s.ports.Similarity.AssessApplicant(ctx, input.ApplicantID)
		if err != nil {
			return nil, SimilarityOutput{}, err
		}
		out := SimilarityOutput{
			Risk:       v.Risk.String(),
			Score:      v.Score,
			Confidence: string(v.Confidence),
			Status:     string(v.Status),
			Message:    v.Message,
			Documents:  make([]VerdictOutput, len(v.Documents)),
		}
		for i := range v.Documents {
			out.Documents[i] = toVerdictOutput(&v.Documents[i])
		}
		return nil, out, nil

	case input.DocumentID != "":
		v, err := s.ports.Similarity.Assess(ctx, input.DocumentID)
		if err != nil {
			return nil, SimilarityOutput{}, err
		}
		return nil, SimilarityOutput{
			Risk:       v.Risk.String(),
			Score:      v.Score,
			Confidence: string(v.Confidence),
			Status:     string(v.Status),
			Message:    v.Message,
			Documents:  []VerdictOutput{toVerdictOutput(&v)},
		}, nil

	default:
		return nil, SimilarityOutput{}, ErrMissingTarget
	}
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	if input.DocumentID == "" {
		return nil, RecommendOutput{}, ErrMissingTarget
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecommendLimit
	}

	set, err := s.ports.Similarity.Recommend(ctx, input.DocumentID, limit)
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	out := RecommendOutput{
		DocumentID:      set.DocumentID,
		Confidence:      string(set.Confidence),
		Status:          string(set.Status),
		Message:         set.Message,
		Recommendations: make([]RecommendationOutput, len(set.Recommendations)),
	}
	for i := range set.Recommendations {
		r := &set.Recommendations[i]
		out.Recommendations[i] = RecommendationOutput{
			DocumentID:   r.Document.ID,
			ApplicantID:  r.Document.ApplicantID,
			Position:     r.Document.Field(domain.SectionPosition),
			Score:        r.Score,
			SharedSkills: r.SharedSkills,
			Reason:       r.Reason,
		}
	}
	return nil, out, nil
}

func toVerdictOutput(v *domain.SimilarityVerdict) VerdictOutput {
	out := VerdictOutput{
		DocumentID:     v.DocumentID,
		Risk:           v.Risk.String(),
		Score:          v.Score,
		KeywordScore:   v.KeywordScore,
		Confidence:     string(v.Confidence),
		Status:         string(v.Status),
		SharedKeywords: v.SharedKeywords,
		Message:        v.Message,
	}
	if v.VectorAvailable {
		vs := v.VectorScore
		out.VectorScore = &vs
	}
	for _, e := range v.Evidence {
		out.Evidence = append(out.Evidence, EvidenceOutput{
			ChunkType:         string(e.ChunkType),
			MatchedDocumentID: e.MatchedDocumentID,
			Similarity:        e.Similarity,
			Contribution:      e.Contribution,
		})
	}
	return out
}
