package domain

// RiskLevel is the plagiarism-risk classification of a document.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Default risk thresholds.
const (
	DefaultHighRiskThreshold   = 0.8
	DefaultMediumRiskThreshold = 0.6
)

// RiskThresholds are the inclusive lower bounds of the HIGH and MEDIUM levels.
type RiskThresholds struct {
	High   float64
	Medium float64
}

// DefaultRiskThresholds returns the standard 0.8 / 0.6 thresholds.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{High: DefaultHighRiskThreshold, Medium: DefaultMediumRiskThreshold}
}

// Classify maps an aggregate score onto a risk level.
func (t RiskThresholds) Classify(score float64) RiskLevel {
	switch {
	case score >= t.High:
		return RiskHigh
	case score >= t.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return string(r)
}

// Confidence describes how much of the scoring machinery contributed to a verdict.
type Confidence string

// Confidence levels.
const (
	// ConfidenceFull means vector and keyword signals were both available.
	ConfidenceFull Confidence = "full"

	// ConfidencePartial means some chunks could not be embedded.
	ConfidencePartial Confidence = "partial"

	// ConfidenceLow means the vector path was unavailable and the score is keyword-only.
	ConfidenceLow Confidence = "low"
)

// VerdictStatus describes whether a verdict could be computed.
type VerdictStatus string

// Verdict statuses.
const (
	VerdictStatusOK            VerdictStatus = "ok"
	VerdictStatusNeedsMoreData VerdictStatus = "needs_more_data"
)

// Evidence records a chunk pair that contributed to a similarity score.
type Evidence struct {
	ChunkType         ChunkType
	SourceChunkID     string
	MatchedDocumentID string
	MatchedChunkID    string
	Similarity        float64
	Contribution      float64
}

// SimilarityVerdict is the plagiarism-risk assessment of one document.
type SimilarityVerdict struct {
	DocumentID string
	Risk       RiskLevel
	Score      float64

	// VectorScore is the weighted chunk similarity; meaningless when
	// VectorAvailable is false.
	VectorScore     float64
	VectorAvailable bool

	// KeywordScore combines attribute overlap and BM25 relevance.
	KeywordScore float64

	Confidence     Confidence
	Status         VerdictStatus
	Evidence       []Evidence
	SharedKeywords []string
	Message        string
}

// ApplicantVerdict combines the verdicts of an applicant's documents.
type ApplicantVerdict struct {
	ApplicantID string
	Risk        RiskLevel
	Score       float64
	Confidence  Confidence
	Status      VerdictStatus
	Documents   []SimilarityVerdict
	Message     string
}

// Recommendation is a similar candidate found from profile vectors.
type Recommendation struct {
	Document       Document
	Score          float64
	VectorScore    float64
	AttributeScore float64
	SharedSkills   []string
	Reason         string
}

// RecommendationSet is the ranked response of a recommendation query.
type RecommendationSet struct {
	DocumentID      string
	Confidence      Confidence
	Status          VerdictStatus
	Recommendations []Recommendation
	Message         string
}
