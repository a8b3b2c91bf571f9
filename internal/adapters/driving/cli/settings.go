package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hirescope/internal/adapters/driven/config"
	"github.com/custodia-labs/hirescope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hirescope/internal/core/ports/driven"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

Keys use dot notation, for example embedding.provider or keyword.ttl.`,
	Annotations: map[string]string{annotationConfigOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{annotationConfigOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it to config.toml.

Examples:
  hirescope settings set embedding.provider ollama
  hirescope settings set keyword.ttl 30m
  hirescope settings set similarity.thresholds.high 0.85`,
	Annotations: map[string]string{annotationConfigOnly: "true"},
	Args:        cobra.ExactArgs(2),
	RunE:        runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("settings not configured")
	}

	s := settings
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n\n", configStore.Path())

	cmd.Println("[General]")
	cmd.Printf("  Data dir: %s\n", s.DataDir)
	cmd.Printf("  Lexicon: %s\n", orNone(s.LexiconPath))
	cmd.Printf("  Analyzer: %s\n", orNone(s.AnalyzerURL))
	cmd.Printf("  Max chunk runes: %d\n", s.MaxChunkRunes)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", s.Embedding.Provider)
	if s.Embedding.Model != "" {
		cmd.Printf("  Model: %s\n", s.Embedding.Model)
	}
	if s.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.Embedding.BaseURL)
	}
	if s.Embedding.Provider.RequiresAPIKey() {
		if s.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(s.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Rate limit: %.1f/s, burst %d\n", s.Embedding.RequestsPerSecond, s.Embedding.Burst)
	cmd.Println()

	cmd.Println("[Keyword]")
	cmd.Printf("  TTL: %s\n", s.Keyword.TTL)
	cmd.Printf("  k1: %.2f  b: %.2f\n", s.Keyword.K1, s.Keyword.B)
	cmd.Println()

	cmd.Println("[Similarity]")
	cmd.Printf("  Thresholds: HIGH >= %.2f, MEDIUM >= %.2f\n",
		s.Similarity.Thresholds.High, s.Similarity.Thresholds.Medium)
	cmd.Printf("  Weights: vector %.2f, keyword %.2f\n",
		s.Similarity.VectorWeight, s.Similarity.KeywordWeight)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("settings not configured")
	}

	key, raw := args[0], args[1]
	value := parseValue(raw)

	// Reject values that leave the configuration unusable before saving.
	probe := overlay{ConfigStore: configStore, key: key, value: memory.NewConfigStore(map[string]any{key: value})}
	if _, err := config.LoadSettings(probe, ""); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	shown := raw
	if strings.Contains(key, "api_key") {
		shown = maskAPIKey(raw)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

// parseValue converts a command line value to the most specific TOML type.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// overlay reads one key from a pending value and the rest from the store.
type overlay struct {
	driven.ConfigStore
	key   string
	value driven.ConfigStore
}

func (o overlay) pick(key string) driven.ConfigStore {
	if key == o.key {
		return o.value
	}
	return o.ConfigStore
}

func (o overlay) Get(key string) (any, bool) { return o.pick(key).Get(key) }
func (o overlay) GetString(key string) string { return o.pick(key).GetString(key) }
func (o overlay) GetInt(key string) int { return o.pick(key).GetInt(key) }
func (o overlay) GetBool(key string) bool { return o.pick(key).GetBool(key) }
func (o overlay) GetFloat(key string) float64 { return o.pick(key).GetFloat(key) }
func (o overlay) GetDuration(key string) time.Duration { return o.pick(key).GetDuration(key) }
func (o overlay) GetStringSlice(key string) []string { return o.pick(key).GetStringSlice(key) }
