package domain

import (
	"fmt"
	"time"
)

// VectorKind distinguishes per-chunk vectors from per-document profile vectors.
type VectorKind string

// Vector kinds.
const (
	// VectorKindChunk is an embedding of a single chunk.
	VectorKindChunk VectorKind = "chunk"

	// VectorKindProfile is an embedding of a document's integrated profile text.
	// There is one profile vector per document.
	VectorKindProfile VectorKind = "profile"
)

// VectorMetadata is the structured metadata attached to a stored vector.
type VectorMetadata struct {
	// Kind is chunk or profile.
	Kind VectorKind

	// DocumentID references the source document. Required.
	DocumentID string

	// ApplicantID references the applicant owning the document.
	ApplicantID string

	// ChunkID references the source chunk (chunk vectors only).
	ChunkID string

	// ChunkType is the chunk type (chunk vectors only).
	ChunkType ChunkType

	// Attributes holds free-form string attributes.
	Attributes map[string]string
}

// Validate checks the metadata at creation time so that downstream
// code never reads a missing field.
func (m VectorMetadata) Validate() error {
	if m.DocumentID == "" {
		return fmt.Errorf("%w: vector metadata missing document id", ErrInvalidInput)
	}
	switch m.Kind {
	case VectorKindChunk:
		if !m.ChunkType.IsValid() {
			return fmt.Errorf("%w: chunk vector has invalid chunk type %q", ErrInvalidInput, m.ChunkType)
		}
		if m.ChunkID == "" {
			return fmt.Errorf("%w: chunk vector missing chunk id", ErrInvalidInput)
		}
	case VectorKindProfile:
	default:
		return fmt.Errorf("%w: unknown vector kind %q", ErrInvalidInput, m.Kind)
	}
	return nil
}

// VectorRecord is an embedding owned by the vector store.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Metadata  VectorMetadata
	CreatedAt time.Time
}

// VectorQuery restricts a vector similarity search.
type VectorQuery struct {
	// TopK is the maximum number of matches returned.
	TopK int

	// Kind restricts matches to one vector kind; empty matches all.
	Kind VectorKind

	// ChunkType restricts chunk matches to one type; empty matches all.
	ChunkType ChunkType

	// ExcludeDocumentIDs drops vectors of these documents.
	ExcludeDocumentIDs []string

	// ExcludeApplicantID drops vectors of this applicant.
	ExcludeApplicantID string
}

// Matches reports whether the metadata passes the query filter.
func (q VectorQuery) Matches(m VectorMetadata) bool {
	if q.Kind != "" && m.Kind != q.Kind {
		return false
	}
	if q.ChunkType != "" && m.ChunkType != q.ChunkType {
		return false
	}
	if q.ExcludeApplicantID != "" && m.ApplicantID == q.ExcludeApplicantID {
		return false
	}
	return !containsString(q.ExcludeDocumentIDs, m.DocumentID)
}

// VectorMatch is a scored vector returned by a similarity search.
type VectorMatch struct {
	ID         string
	Similarity float64
	Metadata   VectorMetadata
}

// VectorStats summarises a vector store.
type VectorStats struct {
	// Count is the number of stored vectors.
	Count int

	// Dimension is the embedding length implied by the first record (0 if empty).
	Dimension int
}
