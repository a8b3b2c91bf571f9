package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

func newDoc(sections map[domain.Section]string) *domain.Document {
	return &domain.Document{
		ID:          "doc-1",
		ApplicantID: "app-1",
		Type:        domain.DocumentTypeResume,
		Sections:    sections,
	}
}

func chunksOfType(chunks []domain.Chunk, t domain.ChunkType) []domain.Chunk {
	var out []domain.Chunk
	for _, c := range chunks {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		assert.Equal(t, DefaultSummaryLength, p.summaryLength)
		assert.Equal(t, DefaultMinFragment, p.minFragment)
	})

	t.Run("custom values", func(t *testing.T) {
		p := New(WithSummaryLength(50), WithMinFragment(3))
		assert.Equal(t, 50, p.summaryLength)
		assert.Equal(t, 3, p.minFragment)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithSummaryLength(0), WithMinFragment(-1))
		assert.Equal(t, DefaultSummaryLength, p.summaryLength)
		assert.Equal(t, DefaultMinFragment, p.minFragment)
	})
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "chunker", New().Name())
}

func TestProcess_EmptyDocument(t *testing.T) {
	p := New()

	t.Run("all sections empty yields zero chunks", func(t *testing.T) {
		doc := newDoc(map[domain.Section]string{
			domain.SectionSkills:     "",
			domain.SectionExperience: "   ",
			domain.SectionMotivation: "\n",
		})
		chunks, err := p.Process(context.Background(), doc, nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("nil sections", func(t *testing.T) {
		chunks, err := p.Process(context.Background(), newDoc(nil), nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("nil document", func(t *testing.T) {
		chunks, err := p.Process(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestProcess_Summary(t *testing.T) {
	p := New()

	t.Run("synthesized from structured fields", func(t *testing.T) {
		doc := newDoc(map[domain.Section]string{
			domain.SectionName:     "김민수",
			domain.SectionPosition: "백엔드 개발자",
		})
		chunks, err := p.Process(context.Background(), doc, nil)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, domain.ChunkTypeSummary, chunks[0].Type)
		assert.Equal(t, "name: 김민수 / position: 백엔드 개발자", chunks[0].Content)
		assert.Equal(t, domain.SectionName, chunks[0].Metadata.Section)
	})

	t.Run("prefers leading full text", func(t *testing.T) {
		full := strings.Repeat("가", 250)
		doc := newDoc(map[domain.Section]string{
			domain.SectionName:     "김민수",
			domain.SectionFullText: full,
		})
		chunks, err := p.Process(context.Background(), doc, nil)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, strings.Repeat("가", 200), chunks[0].Content)
		assert.Equal(t, domain.SectionFullText, chunks[0].Metadata.Section)
	})
}

func TestProcess_Skills(t *testing.T) {
	doc := newDoc(map[domain.Section]string{
		domain.SectionSkills: "Go, Kafka\nPostgreSQL\n- Kubernetes",
	})

	chunks, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)

	skills := chunksOfType(chunks, domain.ChunkTypeSkills)
	require.Len(t, skills, 1)
	assert.Equal(t, "skills: Go, Kafka\nPostgreSQL\n- Kubernetes", skills[0].Content)
}

func TestProcess_ExperienceSplitting(t *testing.T) {
	p := New()

	t.Run("numbered list", func(t *testing.T) {
		doc := newDoc(map[domain.Section]string{
			domain.SectionExperience: "1. 결제 시스템 백엔드 개발 (2019-2021) 2. 정산 배치 성능 개선 프로젝트",
		})
		chunks, err := p.Process(context.Background(), doc, nil)
		require.NoError(t, err)

		exp := chunksOfType(chunks, domain.ChunkTypeExperience)
		require.Len(t, exp, 2)
		assert.Equal(t, "결제 시스템 백엔드 개발 (2019-2021)", exp[0].Content)
		assert.Equal(t, "정산 배치 성능 개선 프로젝트", exp[1].Content)
		assert.Equal(t, 0, exp[0].Metadata.Ordinal)
		assert.Equal(t, 1, exp[1].Metadata.Ordinal)
	})

	t.Run("bullets and newlines discard short fragments", func(t *testing.T) {
		doc := newDoc(map[domain.Section]string{
			domain.SectionExperience: "• 주문 서비스 마이크로서비스 전환\n• 짧음\n* 사내 배포 파이프라인 구축 운영",
		})
		chunks, err := p.Process(context.Background(), doc, nil)
		require.NoError(t, err)

		exp := chunksOfType(chunks, domain.ChunkTypeExperience)
		require.Len(t, exp, 2)
		assert.Equal(t, "주문 서비스 마이크로서비스 전환", exp[0].Content)
		assert.Equal(t, "사내 배포 파이프라인 구축 운영", exp[1].Content)
	})

	t.Run("nothing survives keeps whole field", func(t *testing.T) {
		doc := newDoc(map[domain.Section]string{
			domain.SectionEducation: "- 학사\n- 석사",
		})
		chunks, err := p.Process(context.Background(), doc, nil)
		require.NoError(t, err)

		edu := chunksOfType(chunks, domain.ChunkTypeEducation)
		require.Len(t, edu, 1)
		assert.Equal(t, "- 학사\n- 석사", edu[0].Content)
	})
}

func TestProcess_SingleSections(t *testing.T) {
	doc := newDoc(map[domain.Section]string{
		domain.SectionGrowthBackground: "어려서부터 컴퓨터를 분해하며 자랐습니다.",
		domain.SectionMotivation:       "귀사의 결제 플랫폼에 기여하고 싶습니다.",
		domain.SectionCareerHistory:    "",
	})

	chunks, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Len(t, chunksOfType(chunks, domain.ChunkTypeGrowthBackground), 1)
	assert.Len(t, chunksOfType(chunks, domain.ChunkTypeMotivation), 1)
	assert.Empty(t, chunksOfType(chunks, domain.ChunkTypeCareerHistory))
}

func TestProcess_UniqueIDs(t *testing.T) {
	doc := newDoc(map[domain.Section]string{
		domain.SectionName:             "김민수",
		domain.SectionSkills:           "Go, Kafka",
		domain.SectionExperience:       "- 결제 시스템 백엔드 개발\n- 정산 배치 성능 개선\n- 주문 서비스 전환 작업",
		domain.SectionEducation:        "- 컴퓨터공학 학사 졸업\n- 소프트웨어공학 석사 졸업",
		domain.SectionGrowthBackground: "어려서부터 컴퓨터를 분해하며 자랐습니다.",
		domain.SectionMotivation:       "귀사의 결제 플랫폼에 기여하고 싶습니다.",
		domain.SectionCareerHistory:    "A사 3년, B사 2년 근무",
	})

	chunks, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 10)

	seen := make(map[string]bool)
	for _, c := range chunks {
		assert.False(t, seen[c.ID], "duplicate chunk id %s", c.ID)
		seen[c.ID] = true
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.NotEmpty(t, c.Content)
	}
	assert.True(t, seen["doc-1:experience:2"])
}

func TestProcess_Rederives(t *testing.T) {
	doc := newDoc(map[domain.Section]string{domain.SectionSkills: "Go"})
	p := New()

	first, err := p.Process(context.Background(), doc, nil)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
