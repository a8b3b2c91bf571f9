package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search indexes",
	Long: `Discards the vector and keyword indexes and repopulates them from the
document store, embedding every chunk again.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(statsCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	cmd.Println("Rebuilding indexes...")
	report, err := indexService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	indexed = true

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report driving.IndexReport) {
	cmd.Printf("Documents: %d\n", report.Documents)
	cmd.Printf("Chunks:    %d\n", report.Chunks)
	cmd.Printf("Vectors:   %d\n", report.Embedded)
	if report.Failed > 0 {
		cmd.Printf("Failed:    %d (embedding errors, keyword search still covers them)\n", report.Failed)
	}
	if report.Keyword.Success {
		cmd.Printf("Keyword index: %d documents\n", report.Keyword.DocumentCount)
	} else {
		cmd.Println("Keyword index: empty")
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	ctx := cmd.Context()
	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	stats := indexService.Stats(ctx)
	r := newRenderer(cmd.OutOrStdout())
	cmd.Println(r.Title("Index statistics"))
	cmd.Printf("  Vectors:       %d\n", stats.Vectors.Count)
	cmd.Printf("  Dimension:     %d\n", stats.Vectors.Dimension)
	cmd.Printf("  Keyword index: %s\n", stats.KeywordState)
	if settings.Embedding.Provider != "" {
		cmd.Printf("  Embedding:     %s\n", settings.Embedding.Provider)
	}
	return nil
}
