package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
	"github.com/custodia-labs/hirescope/internal/logger"
	"github.com/custodia-labs/hirescope/internal/workerpool"
)

// Ensure SimilarityService implements the interface.
var _ driving.SimilarityService = (*SimilarityService)(nil)

// Candidate limits.
const (
	keywordCandidates     = 10
	defaultRecommendLimit = 5
)

// SimilarityService scores plagiarism risk from chunk vectors and keyword
// overlap, and recommends candidates from profile vectors.
type SimilarityService struct {
	docs         driven.DocumentSource
	pipeline     driven.ChunkPipeline
	vectorStore  driven.VectorStore
	keywordIndex driven.KeywordIndex
	tokenizer    Tokenizer
	pool         *workerpool.Pool
	settings     domain.SimilaritySettings
}

// SimilarityOption configures the similarity service.
type SimilarityOption func(*SimilarityService)

// WithSimilaritySettings overrides weights, thresholds and evidence limits.
func WithSimilaritySettings(cfg domain.SimilaritySettings) SimilarityOption {
	return func(s *SimilarityService) {
		s.settings = cfg
	}
}

// WithScoringPool runs per-chunk vector searches on the pool.
func WithScoringPool(p *workerpool.Pool) SimilarityOption {
	return func(s *SimilarityService) {
		s.pool = p
	}
}

// NewSimilarityService creates a similarity service.
// The vectorStore parameter is optional (can be nil); verdicts are then keyword-only.
func NewSimilarityService(
	docs driven.DocumentSource,
	pipeline driven.ChunkPipeline,
	vectorStore driven.VectorStore,
	keywordIndex driven.KeywordIndex,
	tokenizer Tokenizer,
	opts ...SimilarityOption,
) *SimilarityService {
	s := &SimilarityService{
		docs:         docs,
		pipeline:     pipeline,
		vectorStore:  vectorStore,
		keywordIndex: keywordIndex,
		tokenizer:    tokenizer,
		settings:     domain.DefaultSimilaritySettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess scores one document against everything else indexed.
func (s *SimilarityService) Assess(ctx context.Context, documentID string) (domain.SimilarityVerdict, error) {
	logger.Section("Similarity Assessment")

	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return domain.SimilarityVerdict{}, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return s.assess(ctx, doc)
}

// AssessApplicant combines the verdicts of every document of an applicant,
// weighting document types and keeping the strongest verdict per type.
func (s *SimilarityService) AssessApplicant(ctx context.Context, applicantID string) (domain.ApplicantVerdict, error) {
	logger.Section("Applicant Assessment")

	docs, err := s.docs.Find(ctx, domain.DocumentFilter{ApplicantID: applicantID})
	if err != nil {
		return domain.ApplicantVerdict{}, fmt.Errorf("find documents: %w", err)
	}
	if len(docs) == 0 {
		return domain.ApplicantVerdict{}, fmt.Errorf("applicant %s: %w", applicantID, domain.ErrNotFound)
	}

	out := domain.ApplicantVerdict{
		ApplicantID: applicantID,
		Risk:        domain.RiskLow,
		Status:      domain.VerdictStatusNeedsMoreData,
		Confidence:  domain.ConfidenceFull,
		Documents:   make([]domain.SimilarityVerdict, 0, len(docs)),
	}

	byType := make(map[domain.DocumentType]float64)
	for i := range docs {
		v, err := s.assess(ctx, &docs[i])
		if err != nil {
			return domain.ApplicantVerdict{}, err
		}
		out.Documents = append(out.Documents, v)
		if v.Status != domain.VerdictStatusOK {
			continue
		}
		if cur, ok := byType[docs[i].Type]; !ok || v.Score > cur {
			byType[docs[i].Type] = v.Score
		}
		out.Confidence = weakerConfidence(out.Confidence, v.Confidence)
	}

	score, ok := weightedMean(byType, documentTypeWeights)
	if !ok {
		out.Confidence = domain.ConfidenceLow
		out.Message = "no document of this applicant could be compared"
		return out, nil
	}

	out.Status = domain.VerdictStatusOK
	out.Score = score
	out.Risk = s.settings.Thresholds.Classify(score)
	out.Message = fmt.Sprintf("%s risk across %d document(s), score %.2f", out.Risk, len(byType), score)
	return out, nil
}

// Recommend ranks other candidates similar to the document's profile.
// Candidates sharing the document's applicant are excluded.
func (s *SimilarityService) Recommend(ctx context.Context, documentID string, limit int) (domain.RecommendationSet, error) {
	logger.Section("Recommendation")

	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return domain.RecommendationSet{}, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if limit <= 0 {
		limit = defaultRecommendLimit
	}

	set := domain.RecommendationSet{
		DocumentID:      doc.ID,
		Status:          domain.VerdictStatusOK,
		Confidence:      domain.ConfidenceFull,
		Recommendations: []domain.Recommendation{},
	}

	base, err := s.profileCandidates(ctx, doc, limit*3)
	if err != nil {
		return set, err
	}
	if base == nil {
		set.Confidence = domain.ConfidenceLow
		base, err = s.keywordCandidates(ctx, doc, limit*3)
		if err != nil {
			return set, err
		}
	}

	best := make(map[string]domain.Recommendation)
	for id, baseScore := range base {
		cand, err := s.docs.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return set, fmt.Errorf("get candidate %s: %w", id, err)
		}
		if doc.ApplicantID != "" && cand.ApplicantID == doc.ApplicantID {
			continue
		}

		attr := compareAttributes(s.tokenizer, doc, cand)
		rec := domain.Recommendation{
			Document:       *cand,
			Score:          s.blend(baseScore, attr.score()),
			VectorScore:    baseScore,
			AttributeScore: attr.score(),
			SharedSkills:   attr.shared,
		}
		if rec.SharedSkills == nil {
			rec.SharedSkills = []string{}
		}
		rec.Reason = recommendationReason(attr, baseScore, set.Confidence == domain.ConfidenceFull)

		key := cand.ApplicantID
		if key == "" {
			key = cand.ID
		}
		if cur, ok := best[key]; !ok || rec.Score > cur.Score {
			best[key] = rec
		}
	}

	for _, rec := range best {
		set.Recommendations = append(set.Recommendations, rec)
	}
	sort.Slice(set.Recommendations, func(i, j int) bool {
		a, b := set.Recommendations[i], set.Recommendations[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Document.ID < b.Document.ID
	})
	if len(set.Recommendations) > limit {
		set.Recommendations = set.Recommendations[:limit]
	}

	if len(set.Recommendations) == 0 {
		set.Status = domain.VerdictStatusNeedsMoreData
		set.Message = "no other candidates to recommend"
		return set, nil
	}
	set.Message = fmt.Sprintf("%d candidate(s) similar to document %s", len(set.Recommendations), doc.ID)
	if set.Confidence == domain.ConfidenceLow {
		set.Message += "; profile vector unavailable, ranked by keyword relevance"
	}
	return set, nil
}

// profileCandidates returns profile similarity per candidate document, or
// nil when the document has no profile vector.
func (s *SimilarityService) profileCandidates(ctx context.Context, doc *domain.Document, k int) (map[string]float64, error) {
	if s.vectorStore == nil {
		return nil, nil
	}

	profiles, err := s.vectorStore.Vectors(ctx, doc.ID, domain.VectorQuery{Kind: domain.VectorKindProfile})
	if err != nil {
		return nil, fmt.Errorf("load profile vector: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	matches, err := s.vectorStore.Search(ctx, profiles[0].Embedding, domain.VectorQuery{
		TopK:               k,
		Kind:               domain.VectorKindProfile,
		ExcludeDocumentIDs: []string{doc.ID},
		ExcludeApplicantID: doc.ApplicantID,
	})
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	out := make(map[string]float64, len(matches))
	for _, m := range matches {
		out[m.Metadata.DocumentID] = clamp01(m.Similarity)
	}
	return out, nil
}

// keywordCandidates returns normalized BM25 relevance of the profile text per candidate.
func (s *SimilarityService) keywordCandidates(ctx context.Context, doc *domain.Document, k int) (map[string]float64, error) {
	if s.keywordIndex == nil {
		return map[string]float64{}, nil
	}

	scores, err := s.keywordIndex.Score(ctx, profileText(doc))
	if err != nil {
		return nil, fmt.Errorf("keyword relevance: %w", err)
	}

	self := scores[doc.ID]
	out := make(map[string]float64)
	for _, id := range topScored(scores, doc.ID, k) {
		out[id] = normalizeBM25(scores[id], self)
	}
	return out, nil
}

// vectorSignal is the chunk-level vector part of a verdict.
type vectorSignal struct {
	available bool
	partial   bool
	matched   bool
	score     float64
	evidence  []domain.Evidence
	documents []string
}

// keywordSignal is the attribute and BM25 part of a verdict.
type keywordSignal struct {
	score      float64
	shared     []string
	candidates int
}

// assess computes the verdict of a loaded document.
func (s *SimilarityService) assess(ctx context.Context, doc *domain.Document) (domain.SimilarityVerdict, error) {
	v := domain.SimilarityVerdict{
		DocumentID:     doc.ID,
		Risk:           domain.RiskLow,
		Status:         domain.VerdictStatusOK,
		Evidence:       []domain.Evidence{},
		SharedKeywords: []string{},
	}

	if doc.IsEmpty() {
		v.Status = domain.VerdictStatusNeedsMoreData
		v.Confidence = domain.ConfidenceLow
		v.Message = "document has no content to compare"
		return v, nil
	}

	vec, err := s.vectorSignal(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return v, ctxErr
		}
		logger.Warn("Vector scoring unavailable for %s: %v", doc.ID, err)
		vec = vectorSignal{}
	}

	kw, err := s.keywordSignal(ctx, doc, vec.documents)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return v, ctxErr
		}
		logger.Warn("Keyword scoring unavailable for %s: %v", doc.ID, err)
		kw = keywordSignal{}
	}

	if !vec.matched && kw.candidates == 0 {
		v.Status = domain.VerdictStatusNeedsMoreData
		v.Confidence = domain.ConfidenceLow
		v.Message = "no other documents to compare against"
		return v, nil
	}

	v.KeywordScore = kw.score
	if kw.shared != nil {
		v.SharedKeywords = kw.shared
	}

	var note string
	switch {
	case vec.available && vec.matched:
		v.VectorAvailable = true
		v.VectorScore = vec.score
		v.Score = s.blend(vec.score, kw.score)
		v.Evidence = vec.evidence
		v.Confidence = domain.ConfidenceFull
		if vec.partial {
			v.Confidence = domain.ConfidencePartial
		}
	case vec.available:
		v.Score = kw.score
		v.Confidence = domain.ConfidenceLow
		note = "no comparable chunks in other documents, keyword-only"
	default:
		v.Score = kw.score
		v.Confidence = domain.ConfidenceLow
		note = "vector similarity unavailable, keyword-only"
	}

	v.Score = clamp01(v.Score)
	v.Risk = s.settings.Thresholds.Classify(v.Score)
	v.Message = verdictMessage(v, note)

	logger.Debug("Verdict %s: risk=%s score=%.3f vector=%.3f(%t) keyword=%.3f evidence=%d",
		doc.ID, v.Risk, v.Score, v.VectorScore, v.VectorAvailable, v.KeywordScore, len(v.Evidence))
	return v, nil
}

// vectorSignal finds, for every chunk of the document, the most similar
// chunk of the same type in any other document.
func (s *SimilarityService) vectorSignal(ctx context.Context, doc *domain.Document) (vectorSignal, error) {
	var sig vectorSignal
	if s.vectorStore == nil {
		return sig, nil
	}

	records, err := s.vectorStore.Vectors(ctx, doc.ID, domain.VectorQuery{Kind: domain.VectorKindChunk})
	if err != nil {
		return sig, fmt.Errorf("load chunk vectors: %w", err)
	}
	if len(records) == 0 {
		return sig, nil
	}
	sig.available = true

	if s.pipeline != nil {
		chunks, err := s.pipeline.Process(ctx, doc)
		if err == nil && len(records) < len(chunks) {
			sig.partial = true
		}
	}

	best := make([]*domain.VectorMatch, len(records))
	tasks := make([]workerpool.Task, len(records))
	for i, rec := range records {
		tasks[i] = func(ctx context.Context) error {
			matches, err := s.vectorStore.Search(ctx, rec.Embedding, domain.VectorQuery{
				TopK:               1,
				Kind:               domain.VectorKindChunk,
				ChunkType:          rec.Metadata.ChunkType,
				ExcludeDocumentIDs: []string{doc.ID},
			})
			if err != nil {
				return err
			}
			if len(matches) > 0 {
				best[i] = &matches[0]
			}
			return nil
		}
	}
	if err := s.run(ctx, tasks); err != nil {
		return vectorSignal{}, fmt.Errorf("chunk search: %w", err)
	}

	// Mean of per-chunk maxima within each type.
	sums := make(map[domain.ChunkType]float64)
	counts := make(map[domain.ChunkType]int)
	seenDocs := make(map[string]bool)
	for i, rec := range records {
		t := rec.Metadata.ChunkType
		counts[t]++
		if best[i] == nil {
			continue
		}
		sig.matched = true
		sums[t] += clamp01(best[i].Similarity)
		if id := best[i].Metadata.DocumentID; !seenDocs[id] {
			seenDocs[id] = true
			sig.documents = append(sig.documents, id)
		}
	}

	perType := make(map[domain.ChunkType]float64, len(counts))
	for t, n := range counts {
		perType[t] = sums[t] / float64(n)
	}
	sig.score, _ = weightedMean(perType, chunkTypeWeights)

	vectorShare := s.vectorShare()
	for i, rec := range records {
		m := best[i]
		if m == nil || m.Similarity < s.settings.EvidenceFloor {
			continue
		}
		t := rec.Metadata.ChunkType
		weight := normalizedWeight(t, perType, chunkTypeWeights) / float64(counts[t])
		sig.evidence = append(sig.evidence, domain.Evidence{
			ChunkType:         t,
			SourceChunkID:     rec.Metadata.ChunkID,
			MatchedDocumentID: m.Metadata.DocumentID,
			MatchedChunkID:    m.Metadata.ChunkID,
			Similarity:        m.Similarity,
			Contribution:      vectorShare * weight * m.Similarity,
		})
	}
	sort.SliceStable(sig.evidence, func(i, j int) bool {
		a, b := sig.evidence[i], sig.evidence[j]
		if a.Contribution != b.Contribution {
			return a.Contribution > b.Contribution
		}
		return a.SourceChunkID < b.SourceChunkID
	})
	if n := s.settings.MaxEvidence; n > 0 && len(sig.evidence) > n {
		sig.evidence = sig.evidence[:n]
	}
	if sig.evidence == nil {
		sig.evidence = []domain.Evidence{}
	}

	return sig, nil
}

// keywordSignal scores the document's strongest keyword overlap with any
// candidate: top BM25 matches of its composite text plus vector-matched documents.
func (s *SimilarityService) keywordSignal(ctx context.Context, doc *domain.Document, extra []string) (keywordSignal, error) {
	var sig keywordSignal
	if s.keywordIndex == nil {
		return sig, nil
	}

	scores, err := s.keywordIndex.Score(ctx, doc.SearchableText())
	if err != nil {
		return sig, fmt.Errorf("keyword relevance: %w", err)
	}
	self := scores[doc.ID]

	ids := topScored(scores, doc.ID, keywordCandidates)
	seen := make(map[string]bool, len(ids)+len(extra))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range extra {
		if !seen[id] && id != doc.ID {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	bestScore := -1.0
	for _, id := range ids {
		cand, err := s.docs.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return sig, fmt.Errorf("get candidate %s: %w", id, err)
		}
		sig.candidates++

		attr := compareAttributes(s.tokenizer, doc, cand)
		pair := keywordBlend*attr.score() + (1-keywordBlend)*normalizeBM25(scores[id], self)
		if pair > bestScore {
			bestScore = pair
			sig.score = pair
			sig.shared = attr.shared
		}
	}
	return sig, nil
}

// run executes tasks on the scoring pool, or inline without one.
func (s *SimilarityService) run(ctx context.Context, tasks []workerpool.Task) error {
	if s.pool != nil {
		return s.pool.Run(ctx, tasks)
	}
	for _, task := range tasks {
		if err := task(ctx); err != nil {
			return err
		}
	}
	return nil
}

// blend combines a vector and a keyword score with the configured weights.
func (s *SimilarityService) blend(vector, keyword float64) float64 {
	wv, wk := s.settings.VectorWeight, s.settings.KeywordWeight
	if wv < 0 || wk < 0 || wv+wk == 0 {
		def := domain.DefaultSimilaritySettings()
		wv, wk = def.VectorWeight, def.KeywordWeight
	}
	return (wv*vector + wk*keyword) / (wv + wk)
}

// vectorShare is the fraction of the final score carried by the vector signal.
func (s *SimilarityService) vectorShare() float64 {
	return s.blend(1, 0)
}

// topScored returns up to k document IDs by descending score, excluding one ID.
func topScored(scores map[string]float64, exclude string, k int) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		if id != exclude {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > k {
		ids = ids[:k]
	}
	return ids
}

// weakerConfidence returns the less certain of two confidence levels.
func weakerConfidence(a, b domain.Confidence) domain.Confidence {
	rank := map[domain.Confidence]int{
		domain.ConfidenceLow:     0,
		domain.ConfidencePartial: 1,
		domain.ConfidenceFull:    2,
	}
	if rank[b] < rank[a] {
		return b
	}
	return a
}

// verdictMessage summarises a verdict for display. A non-empty note says
// why the vector signal was not used.
func verdictMessage(v domain.SimilarityVerdict, note string) string {
	msg := fmt.Sprintf("%s risk, score %.2f", v.Risk, v.Score)
	if len(v.Evidence) > 0 {
		e := v.Evidence[0]
		msg += fmt.Sprintf("; strongest overlap in %s with document %s (%.2f)", e.ChunkType, e.MatchedDocumentID, e.Similarity)
	}
	if note != "" {
		msg += "; " + note
	}
	return msg
}

// recommendationReason explains why a candidate was recommended.
func recommendationReason(attr attributeOverlap, base float64, vector bool) string {
	var parts []string
	if len(attr.shared) > 0 {
		parts = append(parts, "shared skills: "+strings.Join(attr.shared, ", "))
	}
	switch {
	case attr.position == 1:
		parts = append(parts, "same position")
	case attr.position > 0:
		parts = append(parts, "related position")
	}
	if vector {
		parts = append(parts, fmt.Sprintf("profile similarity %.2f", base))
	} else {
		parts = append(parts, fmt.Sprintf("keyword relevance %.2f", base))
	}
	return strings.Join(parts, "; ")
}
