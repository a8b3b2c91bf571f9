package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

var (
	similarityApplicant bool
	similarityJSON      bool
	recommendLimit      int
	recommendJSON       bool
)

var similarityCmd = &cobra.Command{
	Use:   "similarity [doc-id]",
	Short: "Assess plagiarism risk of a document",
	Long: `Compares a document chunk by chunk against every other applicant's
documents and reports a LOW, MEDIUM or HIGH risk verdict with evidence.

With --applicant the argument is an applicant ID and every document of
that applicant is assessed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilarity,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [doc-id]",
	Short: "Recommend candidates with a similar profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	similarityCmd.Flags().BoolVarP(&similarityApplicant, "applicant", "a", false, "treat the argument as an applicant ID")
	similarityCmd.Flags().BoolVar(&similarityJSON, "json", false, "output the verdict as JSON")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 5, "maximum number of candidates")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output recommendations as JSON")
	rootCmd.AddCommand(similarityCmd)
	rootCmd.AddCommand(recommendCmd)
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	ctx := cmd.Context()
	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	if similarityApplicant {
		verdict, err := similarityService.AssessApplicant(ctx, args[0])
		if err != nil {
			return fmt.Errorf("assess applicant: %w", err)
		}
		if similarityJSON {
			return outputJSON(cmd, verdict)
		}
		r := newRenderer(cmd.OutOrStdout())
		cmd.Printf("%s %s  score %.3f  confidence %s\n",
			r.Title("Applicant "+verdict.ApplicantID), r.Risk(verdict.Risk), verdict.Score, verdict.Confidence)
		cmd.Println(verdict.Message)
		cmd.Println()
		for i := range verdict.Documents {
			printVerdict(cmd, r, &verdict.Documents[i])
		}
		return nil
	}

	verdict, err := similarityService.Assess(ctx, args[0])
	if err != nil {
		return fmt.Errorf("assess document: %w", err)
	}
	if similarityJSON {
		return outputJSON(cmd, verdict)
	}
	printVerdict(cmd, newRenderer(cmd.OutOrStdout()), &verdict)
	return nil
}

func printVerdict(cmd *cobra.Command, r *renderer, v *domain.SimilarityVerdict) {
	cmd.Printf("%s %s  score %.3f\n", r.Title("Document "+v.DocumentID), r.Risk(v.Risk), v.Score)
	if v.Status == domain.VerdictStatusNeedsMoreData {
		cmd.Printf("  %s\n\n", v.Message)
		return
	}

	vector := "n/a"
	if v.VectorAvailable {
		vector = fmt.Sprintf("%.3f", v.VectorScore)
	}
	cmd.Printf("  vector %s  keyword %.3f  confidence %s\n", vector, v.KeywordScore, v.Confidence)
	if len(v.SharedKeywords) > 0 {
		cmd.Printf("  shared keywords: %s\n", strings.Join(v.SharedKeywords, ", "))
	}
	for _, e := range v.Evidence {
		cmd.Printf("  %s %-12s %.3f matches %s\n", r.Muted("-"), e.ChunkType, e.Similarity, e.MatchedDocumentID)
	}
	cmd.Printf("  %s\n\n", v.Message)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if similarityService == nil {
		return errors.New("similarity service not configured")
	}

	ctx := cmd.Context()
	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	set, err := similarityService.Recommend(ctx, args[0], recommendLimit)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if recommendJSON {
		return outputJSON(cmd, set)
	}

	if len(set.Recommendations) == 0 {
		cmd.Println("No similar candidates found.")
		if set.Message != "" {
			cmd.Println(set.Message)
		}
		return nil
	}

	r := newRenderer(cmd.OutOrStdout())
	cmd.Println(r.Title(fmt.Sprintf("Candidates similar to %s (confidence %s):", set.DocumentID, set.Confidence)))
	cmd.Println()
	for i := range set.Recommendations {
		rec := &set.Recommendations[i]
		cmd.Printf("  [%d] %s (%s) %.3f\n", i+1, rec.Document.ApplicantID, rec.Document.ID, rec.Score)
		if pos := rec.Document.Field(domain.SectionPosition); pos != "" {
			cmd.Printf("      %s\n", pos)
		}
		cmd.Printf("      %s\n", r.Muted(rec.Reason))
	}
	return nil
}
