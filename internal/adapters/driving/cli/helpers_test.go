package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hirescope/internal/core/domain"
)

const (
	testGrowth     = "어려서부터 라디오를 분해하고 다시 조립하며 공학에 대한 호기심을 키웠습니다"
	testMotivation = "귀사의 결제 플랫폼이 수백만 사용자를 안정적으로 지원하는 모습에 깊은 인상을 받았습니다"
)

func testResume(id, applicant string) domain.Document {
	return domain.Document{
		ID:          id,
		ApplicantID: applicant,
		Type:        domain.DocumentTypeResume,
		Sections: map[domain.Section]string{
			domain.SectionName:             "Kim Minjun",
			domain.SectionPosition:         "backend engineer",
			domain.SectionSkills:           "Go, Kafka, PostgreSQL, Kubernetes",
			domain.SectionExperience:       "- payment gateway backend development\n- settlement batch performance tuning",
			domain.SectionEducation:        "computer science bachelor degree",
			domain.SectionGrowthBackground: testGrowth,
			domain.SectionMotivation:       testMotivation,
			domain.SectionCareerHistory:    "fintech startup five years platform team",
		},
	}
}

func testFixtures() []domain.Document {
	return []domain.Document{
		testResume("res-a", "app-a"),
		testResume("res-b", "app-b"),
		{
			ID:          "res-c",
			ApplicantID: "app-c",
			Type:        domain.DocumentTypeResume,
			Sections: map[domain.Section]string{
				domain.SectionPosition:         "product designer",
				domain.SectionSkills:           "Figma, Illustrator, typography",
				domain.SectionExperience:       "- mobile banking onboarding redesign\n- brand identity refresh",
				domain.SectionGrowthBackground: "grew up drawing comics and painting murals with friends",
				domain.SectionMotivation:       "want to craft delightful consumer experiences for shoppers",
			},
		},
		{
			ID:          "cl-d",
			ApplicantID: "app-a",
			Type:        domain.DocumentTypeCoverLetter,
			Sections: map[domain.Section]string{
				domain.SectionPosition:   "backend engineer",
				domain.SectionMotivation: "passionate about observability tooling and incident response culture",
				domain.SectionSkills:     "Go, Prometheus",
			},
		},
	}
}

// setupTestServices wires real services over an in-memory store with the
// local embedder, and returns a cleanup that restores the globals.
func setupTestServices(t *testing.T) (*memory.DocumentStore, func()) {
	t.Helper()

	s := domain.DefaultSettings()
	s.DataDir = t.TempDir()
	s.WorkerPoolSize = 2

	store := memory.NewDocumentStore(testFixtures()...)
	a, err := NewApp(context.Background(), s, store)
	require.NoError(t, err)

	_, err = a.Index.Init(context.Background())
	require.NoError(t, err)

	useApp(a)
	indexed = true
	settings = s
	configStore = memory.NewConfigStore()

	return store, func() {
		_ = a.Close()
		app = nil
		documentStore = nil
		indexService = nil
		searchService = nil
		similarityService = nil
		configStore = nil
		settings = domain.Settings{}
		indexed = false
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between Execute calls.
func resetFlags() {
	searchLimit = 10
	searchTypes = nil
	searchKeywordOnly = false
	searchJSON = false
	suggestLimit = 0
	similarityApplicant = false
	similarityJSON = false
	recommendLimit = 5
	recommendJSON = false
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func captureVerdict(v *domain.SimilarityVerdict) (string, error) {
	buf := new(bytes.Buffer)
	similarityCmd.SetOut(buf)
	defer similarityCmd.SetOut(nil)

	printVerdict(similarityCmd, newRenderer(buf), v)
	return buf.String(), nil
}
