package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	Generation Generation `mapstructure:"generation"`
	Weights    Weights    `mapstructure:"weights"`
	Ledger     Ledger     `mapstructure:"ledger"`
	Scoring    Scoring    `mapstructure:"scoring"`
	Locales    Locales    `mapstructure:"locales"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	Seed       uint64 `mapstructure:"seed"` // 0 means seed from the clock
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`

	// ReferenceDate (YYYY-MM-DD) pins "now" for review dates so seeded runs
	// reproduce across days. Empty uses the wall clock.
	ReferenceDate string `mapstructure:"reference_date"`
}

// referenceDateLayout is the accepted app.reference_date format.
const referenceDateLayout = "2006-01-02"

// ReferenceTime parses ReferenceDate as midday UTC. ok is false when no date
// is configured or it does not parse.
func (a App) ReferenceTime() (t time.Time, ok bool) {
	if a.ReferenceDate == "" {
		return time.Time{}, false
	}
	day, err := time.Parse(referenceDateLayout, a.ReferenceDate)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(12 * time.Hour), true
}

// Generation holds the composition, ledger and metadata tunables
type Generation struct {
	EmptyBodyProbability float64            `mapstructure:"empty_body_probability"`
	ShortFormProbability float64            `mapstructure:"short_form_probability"`
	InformalProbability  float64            `mapstructure:"informal_probability"`
	SlangProbability     float64            `mapstructure:"slang_probability"`
	ClosingProbability   float64            `mapstructure:"closing_probability"`
	ClosingMinLength     int                `mapstructure:"closing_min_length"`
	SlotProbabilities    map[string]float64 `mapstructure:"slot_probabilities"`
	EvictThreshold       float64            `mapstructure:"evict_threshold"`
	EvictFraction        float64            `mapstructure:"evict_fraction"`
	PersistProbability   float64            `mapstructure:"persist_probability"`
	RatingJitter         float64            `mapstructure:"rating_jitter"`
	VerifiedProbability  float64            `mapstructure:"verified_probability"`
}

// Weights holds the three selector tables. Keys are locale codes, persona
// names and star ratings ("1".."5").
type Weights struct {
	Locales  map[string]float64 `mapstructure:"locales"`
	Personas map[string]float64 `mapstructure:"personas"`
	Ratings  map[string]float64 `mapstructure:"ratings"`
}

// Ledger holds phrase-usage ledger persistence configuration
type Ledger struct {
	Backend       string `mapstructure:"backend"` // memory, file, sqlite, redis
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

// Scoring holds quality scorer configuration
type Scoring struct {
	HistoryWindow         int     `mapstructure:"history_window"`
	JaccardWindow         int     `mapstructure:"jaccard_window"`
	CacheSize             int     `mapstructure:"cache_size"`
	LanguageMinConfidence float64 `mapstructure:"language_min_confidence"`
}

// Locales holds locale pack configuration
type Locales struct {
	Dir string `mapstructure:"dir"` // extra YAML packs, override embedded ones by code
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".reviewsynth")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvPrefix("REVIEWSYNTH")
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
	config.App.ConfigFile = viper.ConfigFileUsed()

	postProcessConfig(config)

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

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.seed", 0)
	viper.SetDefault("app.data_dir", ".reviewsynth")
	viper.SetDefault("app.reference_date", "")

	viper.SetDefault("generation.empty_body_probability", 0.05)
	viper.SetDefault("generation.short_form_probability", 0.25)
	viper.SetDefault("generation.informal_probability", 0.18)
	viper.SetDefault("generation.slang_probability", 0.5)
	viper.SetDefault("generation.closing_probability", 0.1)
	viper.SetDefault("generation.closing_min_length", 80)
	viper.SetDefault("generation.slot_probabilities", map[string]float64{
		"opening":  0.9,
		"quality":  0.8,
		"fit":      0.7,
		"product":  0.75,
		"style":    0.6,
		"usage":    0.6,
		"personal": 0.5,
	})
	viper.SetDefault("generation.evict_threshold", 0.3)
	viper.SetDefault("generation.evict_fraction", 0.5)
	viper.SetDefault("generation.persist_probability", 0.1)
	viper.SetDefault("generation.rating_jitter", 0.05)
	viper.SetDefault("generation.verified_probability", 0.93)

	viper.SetDefault("weights.locales", map[string]float64{"en": 0.55, "de": 0.2, "fr": 0.15, "es": 0.1})
	viper.SetDefault("weights.personas", map[string]float64{
		"young_professional": 0.3,
		"student":            0.2,
		"parent":             0.25,
		"retiree":            0.1,
		"fashion_enthusiast": 0.15,
	})
	viper.SetDefault("weights.ratings", map[string]float64{"5": 0.55, "4": 0.25, "3": 0.1, "2": 0.05, "1": 0.05})

	viper.SetDefault("ledger.backend", "file")
	viper.SetDefault("ledger.path", "")
	viper.SetDefault("ledger.redis_addr", "localhost:6379")
	viper.SetDefault("ledger.redis_db", 0)
	viper.SetDefault("ledger.redis_key", "reviewsynth:ledger")

	viper.SetDefault("scoring.history_window", 100)
	viper.SetDefault("scoring.jaccard_window", 50)
	viper.SetDefault("scoring.cache_size", 1024)
	viper.SetDefault("scoring.language_min_confidence", 0.2)

	viper.SetDefault("locales.dir", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ledger.redis_addr", []string{
		"REVIEWSYNTH_REDIS_ADDR",
		"REDIS_ADDR",
	})

	bindEnvKeys("ledger.redis_password", []string{
		"REVIEWSYNTH_REDIS_PASSWORD",
		"REDIS_PASSWORD",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"REVIEWSYNTH_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig expands paths and fills derived values
func postProcessConfig(config *Config) {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Locales.Dir != "" {
		config.Locales.Dir = expandPath(config.Locales.Dir)
	}

	if config.Ledger.Path == "" {
		switch config.Ledger.Backend {
		case "sqlite":
			config.Ledger.Path = filepath.Join(config.App.DataDir, "ledger.db")
		case "file":
			config.Ledger.Path = filepath.Join(config.App.DataDir, "ledger.json")
		}
	} else {
		config.Ledger.Path = expandPath(config.Ledger.Path)
	}

	if config.App.Debug {
		config.Logging.Level = "debug"
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	probabilities := map[string]float64{
		"generation.empty_body_probability": config.Generation.EmptyBodyProbability,
		"generation.short_form_probability": config.Generation.ShortFormProbability,
		"generation.informal_probability":   config.Generation.InformalProbability,
		"generation.slang_probability":      config.Generation.SlangProbability,
		"generation.closing_probability":    config.Generation.ClosingProbability,
		"generation.evict_threshold":        config.Generation.EvictThreshold,
		"generation.evict_fraction":         config.Generation.EvictFraction,
		"generation.persist_probability":    config.Generation.PersistProbability,
		"generation.rating_jitter":          config.Generation.RatingJitter,
		"generation.verified_probability":   config.Generation.VerifiedProbability,
	}
	for _, key := range sortedKeys(probabilities) {
		if p := probabilities[key]; p < 0 || p > 1 {
			errors = append(errors, fmt.Sprintf("%s must be within [0,1], got %v", key, p))
		}
	}
	for _, slot := range sortedKeys(config.Generation.SlotProbabilities) {
		if p := config.Generation.SlotProbabilities[slot]; p < 0 || p > 1 {
			errors = append(errors, fmt.Sprintf("generation.slot_probabilities.%s must be within [0,1], got %v", slot, p))
		}
	}

	if len(config.Weights.Locales) == 0 {
		errors = append(errors, "weights.locales must not be empty")
	}
	if len(config.Weights.Personas) == 0 {
		errors = append(errors, "weights.personas must not be empty")
	}
	if len(config.Weights.Ratings) == 0 {
		errors = append(errors, "weights.ratings must not be empty")
	}
	for _, key := range sortedKeys(config.Weights.Ratings) {
		r, err := strconv.Atoi(key)
		if err != nil || r < 1 || r > 5 {
			errors = append(errors, fmt.Sprintf("weights.ratings key %q is not a rating between 1 and 5", key))
		}
	}

	if config.App.ReferenceDate != "" {
		if _, err := time.Parse(referenceDateLayout, config.App.ReferenceDate); err != nil {
			errors = append(errors, fmt.Sprintf("app.reference_date %q is not a YYYY-MM-DD date", config.App.ReferenceDate))
		}
	}

	switch config.Ledger.Backend {
	case "memory", "file", "sqlite":
	case "redis":
		if config.Ledger.RedisAddr == "" {
			errors = append(errors, "ledger.redis_addr is required for the redis backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown ledger backend: %s. Supported: memory, file, sqlite, redis", config.Ledger.Backend))
	}

	if config.Scoring.HistoryWindow <= 0 || config.Scoring.JaccardWindow <= 0 {
		errors = append(errors, "scoring windows must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RatingWeights converts the string-keyed rating table into star ratings.
// Invalid keys are rejected by validateConfig before this is reachable.
func (w Weights) RatingWeights() map[int]float64 {
	out := make(map[int]float64, len(w.Ratings))
	for key, weight := range w.Ratings {
		if r, err := strconv.Atoi(key); err == nil {
			out[r] = weight
		}
	}
	return out
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
