// Package chunker splits applicant documents into typed semantic chunks.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.ChunkProcessor = (*Processor)(nil)

// DefaultSummaryLength is the number of characters of full text used as the summary.
const DefaultSummaryLength = 200

// DefaultMinFragment is the shortest list item kept when splitting a section.
const DefaultMinFragment = 10

// skillsLabel prefixes the skills chunk.
const skillsLabel = "skills: "

// itemSeparator matches newlines, numbered-list markers and bullet markers.
var itemSeparator = regexp.MustCompile(`(?:^|\s+)(?:\d{1,2}[.)]|[-*•·▪])\s+|\r?\n+`)

// singleSections map to zero-or-one chunk each.
var singleSections = []struct {
	section domain.Section
	typ     domain.ChunkType
}{
	{domain.SectionGrowthBackground, domain.ChunkTypeGrowthBackground},
	{domain.SectionMotivation, domain.ChunkTypeMotivation},
	{domain.SectionCareerHistory, domain.ChunkTypeCareerHistory},
}

// Processor splits a document's sections into typed chunks.
// It implements the ChunkProcessor interface.
type Processor struct {
	summaryLength int
	minFragment   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithSummaryLength sets how many characters of full text form the summary chunk.
func WithSummaryLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.summaryLength = n
		}
	}
}

// WithMinFragment sets the shortest list item kept when splitting.
func WithMinFragment(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minFragment = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		summaryLength: DefaultSummaryLength,
		minFragment:   DefaultMinFragment,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process derives chunks from the document sections.
// Input chunks are ignored; a document with only empty sections yields no chunks.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, nil
	}

	var chunks []domain.Chunk
	add := func(t domain.ChunkType, section domain.Section, content string) {
		ordinal := 0
		for i := range chunks {
			if chunks[i].Type == t {
				ordinal++
			}
		}
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, t, ordinal),
			DocumentID: doc.ID,
			Type:       t,
			Content:    content,
			Metadata: domain.ChunkMetadata{
				Section: section,
				Ordinal: ordinal,
			},
		})
	}

	if section, summary := p.summary(doc); summary != "" {
		add(domain.ChunkTypeSummary, section, summary)
	}

	if skills := doc.Field(domain.SectionSkills); skills != "" {
		add(domain.ChunkTypeSkills, domain.SectionSkills, skillsLabel+skills)
	}

	for _, item := range p.splitItems(doc.Field(domain.SectionExperience)) {
		add(domain.ChunkTypeExperience, domain.SectionExperience, item)
	}

	for _, item := range p.splitItems(doc.Field(domain.SectionEducation)) {
		add(domain.ChunkTypeEducation, domain.SectionEducation, item)
	}

	for _, s := range singleSections {
		if text := doc.Field(s.section); text != "" {
			add(s.typ, s.section, text)
		}
	}

	return chunks, nil
}

// summary returns the leading characters of the full text, or a string
// synthesized from the structured identity fields.
func (p *Processor) summary(doc *domain.Document) (domain.Section, string) {
	if full := doc.Field(domain.SectionFullText); full != "" {
		return domain.SectionFullText, strings.TrimSpace(truncateRunes(full, p.summaryLength))
	}

	var parts []string
	for _, s := range []domain.Section{domain.SectionName, domain.SectionPosition, domain.SectionDepartment} {
		if v := doc.Field(s); v != "" {
			parts = append(parts, string(s)+": "+v)
		}
	}
	return domain.SectionName, strings.Join(parts, " / ")
}

// splitItems splits a list-like section into items.
// Fragments shorter than minFragment are discarded; if nothing survives
// the whole field becomes a single item.
func (p *Processor) splitItems(text string) []string {
	if text == "" {
		return nil
	}

	var items []string
	for _, fragment := range itemSeparator.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" || utf8.RuneCountInString(fragment) < p.minFragment {
			continue
		}
		items = append(items, fragment)
	}

	if len(items) == 0 {
		return []string{text}
	}
	return items
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
