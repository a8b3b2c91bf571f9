// Package cli provides the hirescope command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/config"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hirescope/internal/core/domain"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
	"github.com/custodia-labs/hirescope/internal/core/ports/driving"
	"github.com/custodia-labs/hirescope/internal/logger"
)

// version is set at build time.
var version = "dev"

// annotationConfigOnly marks commands that need configuration but no services.
const annotationConfigOnly = "config-only"

// annotationStandalone marks commands that need neither.
const annotationStandalone = "standalone"

// Persistent flags.
var (
	verbose    bool
	configDir  string
	dataDirArg string
)

// Services used by the commands. Tests assign them directly.
var (
	configStore       driven.ConfigStore
	settings          domain.Settings
	documentStore     driven.DocumentStore
	indexService      driving.IndexService
	searchService     driving.SearchService
	similarityService driving.SimilarityService

	app     *App
	indexed bool
)

var rootCmd = &cobra.Command{
	Use:   "hirescope",
	Short: "Search and screen applicant documents",
	Long: `hirescope searches resumes, cover letters and portfolios with combined
keyword (BM25) and semantic ranking, flags likely plagiarism between
applicants, and recommends candidates with similar profiles.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.hirescope)")
	rootCmd.PersistentFlags().StringVar(&dataDirArg, "data-dir", "", "data directory (default <config>/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if app != nil {
			if err := app.Close(); err != nil {
				logger.Warn("Closing services: %v", err)
			}
			app = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch {
	case cmd.Annotations[annotationStandalone] == "true":
		return nil
	case cmd.Annotations[annotationConfigOnly] == "true":
		if configStore != nil {
			return nil
		}
		_, err := loadConfig()
		return err
	case searchService != nil:
		return nil
	default:
		return bootstrap(cmd.Context())
	}
}

// loadConfig opens the configuration store and assembles settings.
func loadConfig() (string, error) {
	dir := configDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return "", fmt.Errorf("open config: %w", err)
	}
	configStore = store

	s, err := config.LoadSettings(store, dir)
	if err != nil {
		return "", fmt.Errorf("load settings from %s: %w", store.Path(), err)
	}
	if dataDirArg != "" {
		s.DataDir = dataDirArg
	}
	settings = s
	return dir, nil
}

// bootstrap wires the services from configuration.
func bootstrap(ctx context.Context) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	a, err := OpenApp(ctx, settings)
	if err != nil {
		return err
	}
	useApp(a)
	return nil
}

func useApp(a *App) {
	app = a
	documentStore = a.Documents
	indexService = a.Index
	searchService = a.Search
	similarityService = a.Similarity
	indexed = false
}

// ensureIndexed populates the in-memory indexes once per process.
func ensureIndexed(ctx context.Context) error {
	if indexed {
		return nil
	}
	report, err := indexService.Init(ctx)
	if err != nil {
		return fmt.Errorf("build indexes: %w", err)
	}
	logger.Info("Indexed %d documents: %d chunks, %d vectors, %d failed",
		report.Documents, report.Chunks, report.Embedded, report.Failed)
	indexed = true
	return nil
}
