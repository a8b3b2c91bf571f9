package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// chunkTypeWeights weight the per-type vector similarity of a document.
var chunkTypeWeights = map[domain.ChunkType]float64{
	domain.ChunkTypeMotivation:       0.25,
	domain.ChunkTypeGrowthBackground: 0.25,
	domain.ChunkTypeExperience:       0.20,
	domain.ChunkTypeCareerHistory:    0.10,
	domain.ChunkTypeSkills:           0.10,
	domain.ChunkTypeSummary:          0.05,
	domain.ChunkTypeEducation:        0.05,
}

// documentTypeWeights weight document verdicts into an applicant verdict.
var documentTypeWeights = map[domain.DocumentType]float64{
	domain.DocumentTypeResume:      0.4,
	domain.DocumentTypeCoverLetter: 0.3,
	domain.DocumentTypePortfolio:   0.3,
}

// Attribute overlap weights.
const (
	skillWeight    = 0.7
	positionWeight = 0.3
)

// keywordBlend splits the keyword score between attribute overlap and BM25.
const keywordBlend = 0.5

// bm25Saturation is the half-saturation point used when no self score exists.
const bm25Saturation = 10.0

// profileSections make up the text embedded as a document's profile vector.
var profileSections = []domain.Section{
	domain.SectionPosition,
	domain.SectionDepartment,
	domain.SectionSkills,
	domain.SectionExperience,
	domain.SectionEducation,
	domain.SectionCareerHistory,
	domain.SectionGrowthBackground,
	domain.SectionMotivation,
	domain.SectionFullText,
}

// profileText joins the sections describing who a candidate is.
// The name is left out so two candidates are compared on substance.
func profileText(doc *domain.Document) string {
	parts := make([]string, 0, len(profileSections))
	for _, s := range profileSections {
		if v := doc.Field(s); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}

// weightedMean averages values by weight, renormalized over the keys present.
// Returns false when no key carries weight.
func weightedMean[K comparable](values map[K]float64, weights map[K]float64) (float64, bool) {
	var sum, total float64
	for k, v := range values {
		w := weights[k]
		if w <= 0 {
			continue
		}
		sum += w * v
		total += w
	}
	if total == 0 {
		return 0, false
	}
	return sum / total, true
}

// normalizedWeight returns the weight of k renormalized over the present keys.
func normalizedWeight[K comparable](k K, present map[K]float64, weights map[K]float64) float64 {
	var total float64
	for p := range present {
		total += weights[p]
	}
	if total == 0 {
		return 0
	}
	return weights[k] / total
}

// jaccard returns |a∩b| / |a∪b| and the sorted intersection.
func jaccard(a, b []string) (float64, []string) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}

	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}

	union := len(set)
	var shared []string
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			shared = append(shared, t)
		} else {
			union++
		}
	}

	sort.Strings(shared)
	return float64(len(shared)) / float64(union), shared
}

// normalizeBM25 maps a raw BM25 score into [0,1] relative to the query
// document's score against itself, or by saturation when that is unknown.
func normalizeBM25(score, self float64) float64 {
	if score <= 0 {
		return 0
	}
	if self > 0 {
		return clamp01(score / self)
	}
	return score / (score + bm25Saturation)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// attributeOverlap scores skill and position overlap between two documents.
type attributeOverlap struct {
	skills   float64
	position float64
	shared   []string
}

// score combines skill Jaccard and position match.
func (a attributeOverlap) score() float64 {
	return skillWeight*a.skills + positionWeight*a.position
}

// Tokenizer extracts de-duplicated terms from text.
type Tokenizer interface {
	Tokenize(text string) []string
}

// compareAttributes computes the skill and position overlap of two documents.
func compareAttributes(tok Tokenizer, a, b *domain.Document) attributeOverlap {
	var out attributeOverlap
	out.skills, out.shared = jaccard(tok.Tokenize(a.Field(domain.SectionSkills)), tok.Tokenize(b.Field(domain.SectionSkills)))

	pa, pb := a.Field(domain.SectionPosition), b.Field(domain.SectionPosition)
	switch {
	case pa == "" || pb == "":
	case strings.EqualFold(pa, pb):
		out.position = 1
	default:
		out.position, _ = jaccard(tok.Tokenize(pa), tok.Tokenize(pb))
	}
	return out
}
