package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/keyword/bm25"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/storage/memory"
	vectormem "github.com/custodia-labs/hirescope/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/postprocessors"
	"github.com/custodia-labs/hirescope/internal/tokenizer"
)

// --- Mock implementations ---

// bagEmbedder hashes lowercase words into a fixed-size count vector.
// Identical texts embed identically; texts containing failOn are rejected.
type bagEmbedder struct {
	dims    int
	failOn  string
	failAll bool
	calls   atomic.Int64
	closed  bool
}

var errEmbed = errors.New("embedding backend down")

func (e *bagEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.failAll || (e.failOn != "" && strings.Contains(text, e.failOn)) {
		return nil, errEmbed
	}
	vec := make([]float32, e.dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%uint32(e.dims)]++
	}
	return vec, nil
}

func (e *bagEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *bagEmbedder) Dimensions() int              { return e.dims }
func (e *bagEmbedder) ModelName() string            { return "bag-of-words" }
func (e *bagEmbedder) Ping(_ context.Context) error { return nil }
func (e *bagEmbedder) Close() error {
	e.closed = true
	return nil
}

// --- Fixtures ---

const (
	sharedGrowth     = "어려서부터 라디오를 분해하고 다시 조립하며 공학에 대한 호기심을 키웠습니다 대학 시절에는 오픈소스 커뮤니티 활동을 꾸준히 이어갔습니다"
	sharedMotivation = "귀사의 결제 플랫폼이 수백만 사용자를 안정적으로 지원하는 모습에 깊은 인상을 받았고 대규모 트래픽 처리 경험으로 기여하고 싶습니다"
)

func backendResume(id, applicant, name string) domain.Document {
	return domain.Document{
		ID:          id,
		ApplicantID: applicant,
		Type:        domain.DocumentTypeResume,
		Sections: map[domain.Section]string{
			domain.SectionName:             name,
			domain.SectionPosition:         "backend engineer",
			domain.SectionSkills:           "Go, Kafka, PostgreSQL, Kubernetes",
			domain.SectionExperience:       "- payment gateway backend development\n- settlement batch performance tuning",
			domain.SectionEducation:        "computer science bachelor degree",
			domain.SectionGrowthBackground: sharedGrowth,
			domain.SectionMotivation:       sharedMotivation,
			domain.SectionCareerHistory:    "fintech startup five years platform team",
		},
	}
}

func designerResume(id, applicant string) domain.Document {
	return domain.Document{
		ID:          id,
		ApplicantID: applicant,
		Type:        domain.DocumentTypeResume,
		Sections: map[domain.Section]string{
			domain.SectionName:             "Lee Jiwoo",
			domain.SectionPosition:         "product designer",
			domain.SectionSkills:           "Figma, Illustrator, typography",
			domain.SectionExperience:       "- mobile banking onboarding redesign\n- brand identity refresh for retail chain",
			domain.SectionGrowthBackground: "grew up drawing comics and painting murals with neighbourhood friends",
			domain.SectionMotivation:       "want to craft delightful consumer experiences for everyday shoppers",
		},
	}
}

func coverLetter(id, applicant string) domain.Document {
	return domain.Document{
		ID:          id,
		ApplicantID: applicant,
		Type:        domain.DocumentTypeCoverLetter,
		Sections: map[domain.Section]string{
			domain.SectionPosition:   "backend engineer",
			domain.SectionMotivation: "passionate about observability tooling and incident response culture",
			domain.SectionSkills:     "Go, Prometheus",
		},
	}
}

// harness wires every service over in-memory adapters.
type harness struct {
	store      *memory.DocumentStore
	vectors    *vectormem.Store
	keyword    *bm25.Index
	embedder   *bagEmbedder
	pipeline   *postprocessors.Pipeline
	index      *IndexService
	search     *SearchService
	similarity *SimilarityService
}

// newHarness builds the services and runs Init. A nil embedder disables vectors.
func newHarness(t *testing.T, embedder *bagEmbedder, docs ...domain.Document) *harness {
	t.Helper()

	store := memory.NewDocumentStore(docs...)
	tok := tokenizer.New()
	pipeline, err := postprocessors.NewDefaultPipeline(2000)
	require.NoError(t, err)

	vectors := vectormem.NewStore()
	keyword := bm25.New(tok, bm25.WithSource(store))

	var emb driven.EmbeddingService
	if embedder != nil {
		emb = embedder
	}

	h := &harness{
		store:      store,
		vectors:    vectors,
		keyword:    keyword,
		embedder:   embedder,
		pipeline:   pipeline,
		index:      NewIndexService(store, pipeline, vectors, keyword, emb, WithEmbedConcurrency(2)),
		search:     NewSearchService(store, keyword, vectors, emb),
		similarity: NewSimilarityService(store, pipeline, vectors, keyword, tok),
	}

	_, err = h.index.Init(context.Background())
	require.NoError(t, err)
	return h
}
