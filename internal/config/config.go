package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all engine configuration. Every threshold the engine uses is
// a required configuration input; the viper defaults below are the exact
// fallback values the engine was tuned with.
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Scoring    Scoring    `mapstructure:"scoring"`
	Knowledge  Knowledge  `mapstructure:"knowledge"`
	Gaps       Gaps       `mapstructure:"gaps"`
	Similarity Similarity `mapstructure:"similarity"`
	Novelty    Novelty    `mapstructure:"novelty"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// AI holds embedding-provider configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini embedding configuration
type GeminiConfig struct {
	APIKey           string `mapstructure:"api_key"`
	EmbeddingModel   string `mapstructure:"embedding_model"`
	Dimensions       int32  `mapstructure:"dimensions"`
	Timeout          string `mapstructure:"timeout"`
	RetryAttempts    int    `mapstructure:"retry_attempts"`
	CacheMaxAgeHours int    `mapstructure:"cache_max_age_hours"`
}

// Scoring holds content-scoring configuration
type Scoring struct {
	MaxAgeHours     float64             `mapstructure:"max_age_hours"` // Recency horizon; content older scores 0
	RelevanceWeight float64             `mapstructure:"relevance_weight"`
	QualityWeight   float64             `mapstructure:"quality_weight"`
	RecencyWeight   float64             `mapstructure:"recency_weight"`
	DiversityWeight float64             `mapstructure:"diversity_weight"`
	SynonymsFile    string              `mapstructure:"synonyms_file"` // Optional YAML overriding the synonym table
	Synonyms        map[string][]string `mapstructure:"-"`             // Resolved synonym table
}

// Knowledge holds knowledge-state progression configuration
type Knowledge struct {
	MinContentCount       int     `mapstructure:"min_content_count"`      // Interactions required before any advancement
	BeginnerThreshold     float64 `mapstructure:"beginner_threshold"`     // Confidence to leave beginner
	IntermediateThreshold float64 `mapstructure:"intermediate_threshold"` // Confidence to leave intermediate
}

// Gaps holds gap-analysis configuration
type Gaps struct {
	DetectionThreshold float64 `mapstructure:"detection_threshold"` // Confidence below which a prerequisite counts as a gap
	ShallowThreshold   float64 `mapstructure:"shallow_threshold"`
	OutdatedThreshold  float64 `mapstructure:"outdated_threshold"`
	OutdatedAfterDays  int     `mapstructure:"outdated_after_days"`
	PrerequisitesFile  string  `mapstructure:"prerequisites_file"` // Optional YAML overriding the built-in graph
}

// Similarity holds relationship-discovery configuration
type Similarity struct {
	OverlapPrefilter  float64 `mapstructure:"overlap_prefilter"`  // Topic overlap below which pairs are skipped
	StrongThreshold   float64 `mapstructure:"strong_threshold"`   // Similarity above which a pair is strongly related
	ModerateThreshold float64 `mapstructure:"moderate_threshold"` // Lower bound of the prerequisite/related band
	ContrastThreshold float64 `mapstructure:"contrast_threshold"` // Similarity below which shared-topic pairs contrast
	ComplexityDelta   float64 `mapstructure:"complexity_delta"`   // Complexity difference that makes a pair builds_on
	MinStrength       float64 `mapstructure:"min_strength"`       // Floor below which no relationship is emitted
	CrossDomainMin    float64 `mapstructure:"cross_domain_min"`   // Similarity bar for cross-domain connections
	SimilarityWeight  float64 `mapstructure:"similarity_weight"`  // Strength blend: similarity share
	OverlapWeight     float64 `mapstructure:"overlap_weight"`     // Strength blend: topic-overlap share
	Workers           int     `mapstructure:"workers"`            // Fan-out width for pairwise comparison
}

// Novelty holds anti-repetition configuration
type Novelty struct {
	HighThreshold float64 `mapstructure:"high_threshold"` // Base similarity threshold before novelty adjustment
	NoveltyScale  float64 `mapstructure:"novelty_scale"`  // How much novelty preference lowers the threshold
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment
// variables, in increasing precedence.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".signalcast")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := resolveSynonyms(config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values. These are the tuned
// fallbacks the engine ships with; deployments override them per user base.
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".signalcast-cache")

	// Embedding provider defaults
	viper.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.dimensions", 768)
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.retry_attempts", 3)
	viper.SetDefault("ai.gemini.cache_max_age_hours", 720)

	// Scoring defaults
	viper.SetDefault("scoring.max_age_hours", 168.0)
	viper.SetDefault("scoring.relevance_weight", 0.4)
	viper.SetDefault("scoring.quality_weight", 0.3)
	viper.SetDefault("scoring.recency_weight", 0.2)
	viper.SetDefault("scoring.diversity_weight", 0.1)

	// Knowledge progression defaults
	viper.SetDefault("knowledge.min_content_count", 3)
	viper.SetDefault("knowledge.beginner_threshold", 0.7)
	viper.SetDefault("knowledge.intermediate_threshold", 0.8)

	// Gap analysis defaults
	viper.SetDefault("gaps.detection_threshold", 0.3)
	viper.SetDefault("gaps.shallow_threshold", 0.5)
	viper.SetDefault("gaps.outdated_threshold", 0.7)
	viper.SetDefault("gaps.outdated_after_days", 180)

	// Similarity defaults
	viper.SetDefault("similarity.overlap_prefilter", 0.1)
	viper.SetDefault("similarity.strong_threshold", 0.7)
	viper.SetDefault("similarity.moderate_threshold", 0.4)
	viper.SetDefault("similarity.contrast_threshold", 0.2)
	viper.SetDefault("similarity.complexity_delta", 0.3)
	viper.SetDefault("similarity.min_strength", 0.3)
	viper.SetDefault("similarity.cross_domain_min", 0.4)
	viper.SetDefault("similarity.similarity_weight", 0.7)
	viper.SetDefault("similarity.overlap_weight", 0.3)
	viper.SetDefault("similarity.workers", 8)

	// Anti-repetition defaults
	viper.SetDefault("novelty.high_threshold", 0.8)
	viper.SetDefault("novelty.novelty_scale", 0.2)
}

// validateConfig checks invariants the engine depends on.
func validateConfig(config *Config) error {
	s := config.Scoring
	weightSum := s.RelevanceWeight + s.QualityWeight + s.RecencyWeight + s.DiversityWeight
	if weightSum <= 0 {
		return fmt.Errorf("scoring weights must be positive, got sum %.3f", weightSum)
	}

	if config.Knowledge.MinContentCount < 1 {
		return fmt.Errorf("knowledge.min_content_count must be at least 1, got %d", config.Knowledge.MinContentCount)
	}

	if config.Gaps.DetectionThreshold < 0 || config.Gaps.DetectionThreshold > 1 {
		return fmt.Errorf("gaps.detection_threshold must be in [0,1], got %.3f", config.Gaps.DetectionThreshold)
	}

	if config.Similarity.Workers < 1 {
		return fmt.Errorf("similarity.workers must be at least 1, got %d", config.Similarity.Workers)
	}

	if config.Novelty.HighThreshold <= 0 || config.Novelty.HighThreshold > 1 {
		return fmt.Errorf("novelty.high_threshold must be in (0,1], got %.3f", config.Novelty.HighThreshold)
	}

	return nil
}
