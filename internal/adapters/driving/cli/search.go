package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

var (
	searchLimit       int
	searchTypes       []string
	searchKeywordOnly bool
	searchJSON        bool
	suggestLimit      int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search applicant documents",
	Long: `Performs hybrid search across all applicant documents.
Combines keyword (BM25) and semantic (vector) search with reciprocal rank
fusion, and falls back to keywords when embeddings are unavailable.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Suggest indexed terms for a prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "document types (resume, cover_letter, portfolio)")
	searchCmd.Flags().BoolVar(&searchKeywordOnly, "keyword-only", false, "rank by BM25 only")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "maximum number of suggestions (default from settings)")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:       searchLimit,
		KeywordOnly: searchKeywordOnly,
	}
	for _, t := range searchTypes {
		dt := domain.DocumentType(t)
		if !dt.IsValid() {
			return fmt.Errorf("unknown document type %q", t)
		}
		opts.Types = append(opts.Types, dt)
	}

	ctx := cmd.Context()
	if !searchKeywordOnly {
		if err := ensureIndexed(ctx); err != nil {
			return err
		}
	}

	resp, err := searchService.Search(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, resp)
	}

	return outputSearchTable(cmd, resp)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp domain.SearchResponse) error {
	r := newRenderer(cmd.OutOrStdout())

	if resp.Status == domain.KeywordStatusNoValidTokens {
		cmd.Println("No valid search terms in query.")
		return nil
	}
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	header := fmt.Sprintf("Results (%s)", resp.Mode)
	if resp.Degraded {
		header += " - semantic search unavailable, keyword results only"
	}
	cmd.Println(r.Title(header + ":"))
	cmd.Println()
	for i := range resp.Results {
		res := &resp.Results[i]

		// Format: [N] ID (type, applicant) Score
		cmd.Printf("  [%d] %s (%s, %s) %.3f\n", i+1, res.Document.ID,
			res.Document.Type, res.Document.ApplicantID, res.Score)
		cmd.Printf("      %s\n", r.Muted("via "+string(res.Source)))

		switch {
		case len(res.Highlights) > 0:
			cmd.Printf("      %s\n", r.Highlight(res.Highlights[0],
				settings.Keyword.HighlightOpen, settings.Keyword.HighlightClose))
		case res.Chunk != nil:
			cmd.Printf("      [%s] %s\n", res.Chunk.Type, truncate(res.Chunk.Content, 120))
		}
		cmd.Println()
	}

	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	terms, err := searchService.Suggest(cmd.Context(), args[0], suggestLimit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}
	if len(terms) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, t := range terms {
		cmd.Println(t)
	}
	return nil
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
