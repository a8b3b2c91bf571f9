package domain

import "fmt"

// ChunkType classifies a chunk by the semantic part of the document it came from.
type ChunkType string

// Supported chunk types.
const (
	ChunkTypeSummary          ChunkType = "summary"
	ChunkTypeSkills           ChunkType = "skills"
	ChunkTypeExperience       ChunkType = "experience"
	ChunkTypeEducation        ChunkType = "education"
	ChunkTypeGrowthBackground ChunkType = "growth_background"
	ChunkTypeMotivation       ChunkType = "motivation"
	ChunkTypeCareerHistory    ChunkType = "career_history"
)

// ChunkTypes lists every chunk type in production order.
var ChunkTypes = []ChunkType{
	ChunkTypeSummary,
	ChunkTypeSkills,
	ChunkTypeExperience,
	ChunkTypeEducation,
	ChunkTypeGrowthBackground,
	ChunkTypeMotivation,
	ChunkTypeCareerHistory,
}

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	for _, ct := range ChunkTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (t ChunkType) String() string {
	return string(t)
}

// Chunk represents a searchable unit within a document.
// Every chunk belongs to exactly one document.
type Chunk struct {
	// ID is globally unique: document id, chunk type and ordinal.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Type is the semantic chunk type.
	Type ChunkType

	// Content is the text content of this chunk.
	Content string

	// Metadata records where the chunk came from.
	Metadata ChunkMetadata
}

// ChunkMetadata records the provenance of a chunk.
type ChunkMetadata struct {
	// Section is the document section the text was taken from.
	// Synthesized summaries use SectionName.
	Section Section

	// Ordinal is the position of the chunk among chunks of the same type.
	Ordinal int
}

// ChunkID builds the canonical chunk identifier.
func ChunkID(documentID string, t ChunkType, ordinal int) string {
	return fmt.Sprintf("%s:%s:%d", documentID, t, ordinal)
}
