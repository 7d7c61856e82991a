package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig  `toml:"logging"`
	Storage     StorageConfig  `toml:"storage"`
	Provider    ProviderConfig `toml:"provider"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Report      ReportConfig   `toml:"report"`
	Watch       WatchConfig    `toml:"watch"`
	LLM         LLMConfig      `toml:"llm"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
	Dir        string   `toml:"dir"`         // Log directory when file output is enabled (default: ./logs beside the executable)
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// ProviderConfig configures the fundamentals data API client
type ProviderConfig struct {
	BaseURL     string `toml:"base_url" validate:"required,url"`
	APIKey      string `toml:"api_key"`                        // Prefer FINSIGHT_PROVIDER_API_KEY
	RateLimit   string `toml:"rate_limit"`                     // Minimum interval between requests (default: "250ms")
	Timeout     string `toml:"timeout"`                        // HTTP request timeout (default: "30s")
	CacheTTL    string `toml:"cache_ttl"`                      // Response cache lifetime, "0" disables caching (default: "24h")
	PeriodLimit int    `toml:"period_limit" validate:"gte=1"` // Statement periods requested per endpoint (default: 10)
}

// AnalysisConfig holds run parameters for the metrics engine
type AnalysisConfig struct {
	WACC          float64 `toml:"wacc" validate:"gte=0,lte=1"` // Cost of capital for EVA (default: 0.10)
	PeersFile     string  `toml:"peers_file"`                  // Optional YAML peer sets for benchmarking
	DefaultExpert string  `toml:"default_expert"`              // Expert view applied when none is requested
	StoreResults  bool    `toml:"store_results"`               // Persist every rendered report
}

// ReportConfig controls rendered output
type ReportConfig struct {
	Format    string `toml:"format" validate:"oneof=text markdown html pdf json"`
	OutputDir string `toml:"output_dir"`
}

// WatchConfig configures the scheduled watchlist refresh
type WatchConfig struct {
	Enabled     bool     `toml:"enabled"`
	Schedule    string   `toml:"schedule"` // Standard 5-field cron expression
	Tickers     []string `toml:"tickers"`
	Concurrency int      `toml:"concurrency" validate:"gte=1,lte=16"`
}

// GeminiConfig contains Google Gemini API configuration for commentary
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
}

// ClaudeConfig contains Anthropic Claude API configuration for commentary
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens" validate:"gte=1"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=1"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the commentary provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Provider: ProviderConfig{
			BaseURL:     "https://api.financialdatasets.ai",
			RateLimit:   "250ms",
			Timeout:     "30s",
			CacheTTL:    "24h",
			PeriodLimit: 10,
		},
		Analysis: AnalysisConfig{
			WACC: 0.10,
		},
		Report: ReportConfig{
			Format:    "markdown",
			OutputDir: "./reports",
		},
		Watch: WatchConfig{
			Enabled:     false,        // Disabled by default - user must explicitly opt-in
			Schedule:    "0 6 * * 1-5", // Weekdays at 06:00
			Concurrency: 2,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     "2m",
			Temperature: 0.4,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-5",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.4,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied by the caller afterwards.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FINSIGHT_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINSIGHT_ENV"); env != "" {
		config.Environment = env
	}

	// Logging configuration
	if level := os.Getenv("FINSIGHT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("FINSIGHT_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}

	// Storage configuration
	if path := os.Getenv("FINSIGHT_STORAGE_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	// Provider configuration
	if baseURL := os.Getenv("FINSIGHT_PROVIDER_BASE_URL"); baseURL != "" {
		config.Provider.BaseURL = baseURL
	}
	if rateLimit := os.Getenv("FINSIGHT_PROVIDER_RATE_LIMIT"); rateLimit != "" {
		config.Provider.RateLimit = rateLimit
	}
	if ttl := os.Getenv("FINSIGHT_PROVIDER_CACHE_TTL"); ttl != "" {
		config.Provider.CacheTTL = ttl
	}

	// Analysis configuration
	if wacc := os.Getenv("FINSIGHT_WACC"); wacc != "" {
		if w, err := strconv.ParseFloat(wacc, 64); err == nil {
			config.Analysis.WACC = w
		}
	}
	if peers := os.Getenv("FINSIGHT_PEERS_FILE"); peers != "" {
		config.Analysis.PeersFile = peers
	}

	// Report configuration
	if format := os.Getenv("FINSIGHT_REPORT_FORMAT"); format != "" {
		config.Report.Format = format
	}

	// Watch configuration
	if tickers := os.Getenv("FINSIGHT_WATCH_TICKERS"); tickers != "" {
		config.Watch.Tickers = splitList(tickers)
	}
	if schedule := os.Getenv("FINSIGHT_WATCH_SCHEDULE"); schedule != "" {
		config.Watch.Schedule = schedule
	}

	// LLM configuration
	if provider := os.Getenv("FINSIGHT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
}

// FlagOverrides carries command-line values that take precedence over
// files and environment. Zero values leave the config untouched.
type FlagOverrides struct {
	LogLevel  string
	Format    string
	OutputDir string
	WACC      float64
	PeersFile string
	Store     bool
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.LogLevel != "" {
		config.Logging.Level = flags.LogLevel
	}
	if flags.Format != "" {
		config.Report.Format = flags.Format
	}
	if flags.OutputDir != "" {
		config.Report.OutputDir = flags.OutputDir
	}
	if flags.WACC > 0 {
		config.Analysis.WACC = flags.WACC
	}
	if flags.PeersFile != "" {
		config.Analysis.PeersFile = flags.PeersFile
	}
	if flags.Store {
		config.Analysis.StoreResults = true
	}
}

// Validate checks field constraints, duration strings and the watch schedule.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"provider.rate_limit": c.Provider.RateLimit,
		"provider.timeout":    c.Provider.Timeout,
		"provider.cache_ttl":  c.Provider.CacheTTL,
		"gemini.timeout":      c.Gemini.Timeout,
		"claude.timeout":      c.Claude.Timeout,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}

	if c.Watch.Enabled {
		if len(c.Watch.Tickers) == 0 {
			return fmt.Errorf("invalid configuration: watch enabled without tickers")
		}
		if err := ValidateSchedule(c.Watch.Schedule); err != nil {
			return fmt.Errorf("invalid configuration: watch.schedule: %w", err)
		}
	}
	return nil
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → config fallback → error
func ResolveAPIKey(name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"provider_api_key":  {"FINSIGHT_PROVIDER_API_KEY", "FINANCIAL_DATASETS_API_KEY"},
		"gemini_api_key":    {"FINSIGHT_GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"anthropic_api_key": {"ANTHROPIC_API_KEY", "FINSIGHT_CLAUDE_API_KEY"},
	}

	for _, envVarName := range keyToEnvMapping[name] {
		if envValue := os.Getenv(envVarName); envValue != "" {
			return envValue, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// ValidateSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) != 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// Duration parses a configured duration string, returning fallback when the
// value is empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
