package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/embeddings"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/store"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signalcast",
	Short: "Signalcast scores, relates, and filters content against what a user already knows.",
	Long: `Signalcast is the personalization engine behind a content delivery
pipeline. It scores ingested content against a user profile, tracks how the
user's knowledge deepens per topic, detects knowledge gaps against a
prerequisite graph, discovers relationships between content items, and
filters out repetitive deliveries.

Content and profiles are supplied as JSON files; knowledge state and the
delivery log persist in a local SQLite database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.signalcast.yaml)")
}

// initConfig loads the engine configuration. Every command runs behind it.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the SQLite store under the configured data directory.
func openStore() (*store.Store, error) {
	cfg := config.Get()
	return store.NewStore(cfg.App.DataDir)
}

// embeddingProvider builds the cached Gemini provider when an API key is
// configured. Without one the similarity engine degrades to topic overlap,
// so a missing key is a warning, not a failure.
func embeddingProvider() embeddings.Provider {
	cfg := config.Get()

	gemini, err := embeddings.NewGeminiProvider(cfg.AI.Gemini.EmbeddingModel)
	if err != nil {
		logger.Warn("embedding provider unavailable, comparisons degrade to topic overlap", "error", err.Error())
		return nil
	}

	timeout, err := time.ParseDuration(cfg.AI.Gemini.Timeout)
	if err != nil || timeout <= 0 {
		logger.Warn("invalid ai.gemini.timeout, using 30s", "value", cfg.AI.Gemini.Timeout)
		timeout = 30 * time.Second
	}

	return embeddings.NewCachedProvider(gemini, cfg.AI.Gemini.CacheMaxAgeHours, cfg.AI.Gemini.RetryAttempts, timeout)
}
