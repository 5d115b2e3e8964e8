package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/intentsearch/internal/domain/catalog"
)

// Config holds the intentsearch API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Sources    SourcesConfig    `yaml:"sources"`
	Cache      CacheConfig      `yaml:"cache"`
	Suggest    SuggestConfig    `yaml:"suggest"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"` // websocket origins; "*" allows any
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, memory (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ClassifierConfig holds intent classification settings.
type ClassifierConfig struct {
	Provider  string `yaml:"provider"` // http, openai (default: http)
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"` // openai only
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Timeout returns the per-call classification timeout.
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// SourcesConfig holds the product and content search endpoints.
type SourcesConfig struct {
	Products SourceConfig `yaml:"products"`
	Content  SourceConfig `yaml:"content"`
}

// SourceConfig holds one search source.
type SourceConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Timeout returns the per-request source timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// CacheConfig bounds the per-session caches and the session registry.
type CacheConfig struct {
	ClassificationCapacity int `yaml:"classification_capacity"`
	ResultCapacity         int `yaml:"result_capacity"`
	SessionCapacity        int `yaml:"session_capacity"`
	SessionIdleSec         int `yaml:"session_idle_sec"`
}

// SuggestConfig holds autocomplete settings.
type SuggestConfig struct {
	DebounceMs     int `yaml:"debounce_ms"`
	MinChars       int `yaml:"min_chars"`
	MaxSuggestions int `yaml:"max_suggestions"`
	RecentCapacity int `yaml:"recent_capacity"`
	RecentTTLDays  int `yaml:"recent_ttl_days"` // 0 keeps recent lists forever
}

// RecentTTL returns how long an idle device's recent list is kept.
func (s SuggestConfig) RecentTTL() time.Duration {
	return time.Duration(s.RecentTTLDays) * 24 * time.Hour
}

// CatalogConfig overrides the compiled-in reference data. Empty lists keep the defaults.
type CatalogConfig struct {
	Sports   []catalog.Sport `yaml:"sports"`
	Pages    []catalog.Page  `yaml:"pages"`
	Terms    []string        `yaml:"terms"`
	Trending []string        `yaml:"trending"`
}

// Build returns the default catalog with the configured overrides applied.
func (c CatalogConfig) Build() *catalog.Catalog {
	cat := catalog.Default()
	if len(c.Sports) > 0 {
		cat.Sports = c.Sports
	}
	if len(c.Pages) > 0 {
		cat.Pages = c.Pages
	}
	if len(c.Terms) > 0 {
		cat.Terms = c.Terms
	}
	if len(c.Trending) > 0 {
		cat.Trending = c.Trending
	}
	return cat
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, applying
// defaults and validating the result.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Classifier.Provider == "" {
		c.Classifier.Provider = "http"
	}
	if c.Classifier.TimeoutMs <= 0 {
		c.Classifier.TimeoutMs = 3000
	}
	if c.Sources.Products.TimeoutMs <= 0 {
		c.Sources.Products.TimeoutMs = 5000
	}
	if c.Sources.Content.TimeoutMs <= 0 {
		c.Sources.Content.TimeoutMs = 5000
	}
	if c.Cache.ClassificationCapacity <= 0 {
		c.Cache.ClassificationCapacity = 128
	}
	if c.Cache.ResultCapacity <= 0 {
		c.Cache.ResultCapacity = 128
	}
	if c.Cache.SessionCapacity <= 0 {
		c.Cache.SessionCapacity = 1024
	}
	if c.Cache.SessionIdleSec <= 0 {
		c.Cache.SessionIdleSec = 1800
	}
	if c.Suggest.DebounceMs <= 0 {
		c.Suggest.DebounceMs = 300
	}
	if c.Suggest.MinChars <= 0 {
		c.Suggest.MinChars = 2
	}
	if c.Suggest.MaxSuggestions <= 0 {
		c.Suggest.MaxSuggestions = 10
	}
	if c.Suggest.RecentCapacity <= 0 {
		c.Suggest.RecentCapacity = 8
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "intentsearch:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case "valkey", "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be \"valkey\", \"redis\" or \"memory\", got %q", c.Database.Driver)
	}

	switch c.Classifier.Provider {
	case "http":
		if c.Classifier.BaseURL == "" {
			return fmt.Errorf("classifier.base_url is required")
		}
	case "openai":
		if c.Classifier.Model == "" {
			return fmt.Errorf("classifier.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("classifier.provider must be \"http\" or \"openai\", got %q", c.Classifier.Provider)
	}

	if c.Sources.Products.BaseURL == "" {
		return fmt.Errorf("sources.products.base_url is required")
	}
	if c.Sources.Content.BaseURL == "" {
		return fmt.Errorf("sources.content.base_url is required")
	}

	if c.Suggest.RecentTTLDays < 0 {
		return fmt.Errorf("suggest.recent_ttl_days must not be negative, got %d", c.Suggest.RecentTTLDays)
	}
	if c.Suggest.MaxSuggestions < 1 {
		return fmt.Errorf("suggest.max_suggestions must be positive, got %d", c.Suggest.MaxSuggestions)
	}
	for i, s := range c.Catalog.Sports {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("catalog.sports[%d].title is required", i)
		}
	}
	for i, p := range c.Catalog.Pages {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("catalog.pages[%d].name is required", i)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
