// Package domain defines the core business entities for hirescope.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An applicant document split into named sections
//   - Chunk: A typed, bounded fragment of a document used for indexing
//   - VectorRecord: An embedding with validated metadata
//   - SearchResult: A ranked hit from keyword, vector or hybrid search
//   - SimilarityVerdict: A plagiarism-risk decision with its evidence
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
