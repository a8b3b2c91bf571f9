package mcp

import (
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides free-text search and suggestions.
	Search driving.SearchService

	// Similarity provides plagiarism verdicts and recommendations.
	Similarity driving.SimilarityService

	// Index reports index statistics. Optional.
	Index driving.IndexService

	// Documents serves document resources. Optional.
	Documents driven.DocumentSource
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Similarity == nil {
		return ErrMissingSimilarityService
	}
	return nil
}
