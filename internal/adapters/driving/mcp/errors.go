// Package mcp provides an MCP (Model Context Protocol) server adapter for hirescope.
// It lets AI assistants search applicant documents and request similarity verdicts.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingSimilarityService is returned when the similarity service is not provided.
var ErrMissingSimilarityService = errors.New("mcp: similarity service is required")

// ErrMissingTarget is returned when a similarity tool gets neither a document nor an applicant.
var ErrMissingTarget = errors.New("mcp: document_id or applicant_id is required")
