package driving

import (
	"context"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// SimilarityService assesses duplication risk and recommends similar candidates.
type SimilarityService interface {
	// Assess scores one document against everything else indexed.
	Assess(ctx context.Context, documentID string) (domain.SimilarityVerdict, error)

	// AssessApplicant combines the verdicts of every document of an applicant.
	AssessApplicant(ctx context.Context, applicantID string) (domain.ApplicantVerdict, error)

	// Recommend ranks other candidates similar to the document's profile.
	Recommend(ctx context.Context, documentID string, limit int) (domain.RecommendationSet, error)
}
