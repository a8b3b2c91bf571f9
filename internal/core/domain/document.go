package domain

import (
	"strings"
	"time"
)

// DocumentType identifies the kind of applicant document.
type DocumentType string

// Supported document types.
const (
	DocumentTypeResume      DocumentType = "resume"
	DocumentTypeCoverLetter DocumentType = "cover_letter"
	DocumentTypePortfolio   DocumentType = "portfolio"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeResume, DocumentTypeCoverLetter, DocumentTypePortfolio:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Section names a field of an applicant document.
type Section string

// Known document sections.
const (
	SectionName             Section = "name"
	SectionPosition         Section = "position"
	SectionDepartment       Section = "department"
	SectionSkills           Section = "skills"
	SectionExperience       Section = "experience"
	SectionEducation        Section = "education"
	SectionGrowthBackground Section = "growth_background"
	SectionMotivation       Section = "motivation"
	SectionCareerHistory    Section = "career_history"
	SectionFullText         Section = "full_text"
)

// SearchableSections lists, in order, the sections concatenated into a
// document's composite searchable text.
var SearchableSections = []Section{
	SectionName,
	SectionPosition,
	SectionDepartment,
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionGrowthBackground,
	SectionMotivation,
	SectionCareerHistory,
	SectionFullText,
}

// Document represents an applicant document as provided by the document source.
// It is never mutated by the search core; re-ingestion replaces it wholesale.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ApplicantID links the document to the applicant who submitted it.
	ApplicantID string

	// Type is the document kind (resume, cover letter, portfolio).
	Type DocumentType

	// Sections maps section names to raw text.
	Sections map[Section]string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced.
	UpdatedAt time.Time
}

// Field returns the trimmed text of a section, or "" if absent.
func (d *Document) Field(s Section) string {
	if d == nil || d.Sections == nil {
		return ""
	}
	return strings.TrimSpace(d.Sections[s])
}

// SearchableText concatenates the searchable sections into one string.
// Empty sections are skipped.
func (d *Document) SearchableText() string {
	parts := make([]string, 0, len(SearchableSections))
	for _, s := range SearchableSections {
		if v := d.Field(s); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// IsEmpty returns true if every section is blank.
func (d *Document) IsEmpty() bool {
	for s := range d.Sections {
		if d.Field(s) != "" {
			return false
		}
	}
	return true
}

// DocumentFilter narrows a document source query.
// Zero values match everything.
type DocumentFilter struct {
	// IDs restricts the result to specific documents.
	IDs []string

	// ApplicantID restricts the result to one applicant's documents.
	ApplicantID string

	// Types restricts the result to specific document types.
	Types []DocumentType
}

// Matches reports whether the document satisfies the filter.
func (f DocumentFilter) Matches(d *Document) bool {
	if len(f.IDs) > 0 && !containsString(f.IDs, d.ID) {
		return false
	}
	if f.ApplicantID != "" && d.ApplicantID != f.ApplicantID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == d.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
