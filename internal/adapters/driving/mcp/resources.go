package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// uriScheme is the custom URI scheme for hirescope resources.
const uriScheme = "hirescope://"

// registerResources registers the resource handlers that have a backing port.
func (s *Server) registerResources() {
	if s.ports.Index != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "stats",
			Name:        "index-stats",
			Description: "Sizes and state of the vector and keyword indexes",
			MIMEType:    "application/json",
		}, s.handleStatsResource)
	}

	if s.ports.Documents != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "documents/{documentId}",
			Name:        "document",
			Description: "Sections of a specific applicant document",
			MIMEType:    "application/json",
		}, s.handleDocumentResource)
	}
}

type statsInfo struct {
	Vectors      int    `json:"vectors"`
	Dimension    int    `json:"dimension"`
	KeywordState string `json:"keyword_state"`
}

// handleStatsResource returns the index statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.ports.Index.Stats(ctx)
	return jsonResource(req.Params.URI, statsInfo{
		Vectors:      stats.Vectors.Count,
		Dimension:    stats.Vectors.Dimension,
		KeywordState: string(stats.KeywordState),
	})
}

type documentInfo struct {
	ID          string            `json:"id"`
	ApplicantID string            `json:"applicant_id"`
	Type        string            `json:"type"`
	Sections    map[string]string `json:"sections"`
}

// handleDocumentResource returns the sections of a specific document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// URI shape: hirescope://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Documents.Get(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	info := documentInfo{
		ID:          doc.ID,
		ApplicantID: doc.ApplicantID,
		Type:        doc.Type.String(),
		Sections:    make(map[string]string, len(doc.Sections)),
	}
	for k, v := range doc.Sections {
		info.Sections[string(k)] = v
	}
	return jsonResource(req.Params.URI, info)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like hirescope://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
