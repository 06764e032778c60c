// Package config loads newscheck settings from the config directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ppiankov/newscheck/internal/privacy"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile    = "config.yaml"
	DefaultEnvFile       = ".env"
	DefaultAddr          = "127.0.0.1:8000"
	DefaultStoragePath   = ".newscheck/newscheck.db"
	DefaultRetainDays    = 90
	DefaultFetchTimeout  = 15 * time.Second
	DefaultCacheSize     = 256
	DefaultCacheTTL      = 10 * time.Minute
	DefaultOutputFormat  = "verbose"
	DefaultColor         = "auto"
	DefaultXKeyEnv       = "X_API_KEY"
	DefaultXKeySecretEnv = "X_API_KEY_SECRET"
)

// DefaultCORSOrigins are the local frontend dev server origins.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// OutputFormats lists the values accepted by output.format.
var OutputFormats = []string{"verbose", "silent", "json", "markdown"}

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetch   FetchConfig   `yaml:"fetch"`
	X       XConfig       `yaml:"x"`
	Storage StorageConfig `yaml:"storage"`
	Privacy PrivacyConfig `yaml:"privacy"`
	Output  OutputConfig  `yaml:"output"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type FetchConfig struct {
	Timeout       Duration `yaml:"timeout"`
	UserAgent     string   `yaml:"user_agent"`
	RedditBaseURL string   `yaml:"reddit_base_url"`
	CacheSize     int      `yaml:"cache_size"`
	CacheTTL      Duration `yaml:"cache_ttl"`
}

type XConfig struct {
	APIKeyEnv       string `yaml:"api_key_env"`
	APIKeySecretEnv string `yaml:"api_key_secret_env"`

	// Resolved from env vars (or the .env file) at load time.
	APIKey       string `yaml:"-"`
	APIKeySecret string `yaml:"-"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	RetainDays int    `yaml:"retain_days"`
}

type PrivacyConfig struct {
	StoreFullText bool         `yaml:"store_full_text"`
	Redact        RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	Color  string `yaml:"color"` // auto, always or never
}

// Redactor builds the redactor described by the privacy section.
// Returns nil when redaction is disabled.
func (c *Config) Redactor() (*privacy.Redactor, error) {
	if !c.Privacy.Redact.Enabled {
		return nil, nil
	}
	patterns := c.Privacy.Redact.Patterns
	if len(patterns) == 0 {
		patterns = privacy.DefaultPatterns
	}
	return privacy.NewRedactor(patterns)
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
// A missing config.yaml is not an error: newscheck works out of the box.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	var cfg Config
	data, err := os.ReadFile(filepath.Join(dir, DefaultConfigFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	dotenv, err := readDotenv(filepath.Join(dir, DefaultEnvFile))
	if err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg, dotenv)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func readDotenv(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vals, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
	if cfg.Fetch.Timeout.Duration == 0 {
		cfg.Fetch.Timeout.Duration = DefaultFetchTimeout
	}
	if cfg.Fetch.CacheSize == 0 {
		cfg.Fetch.CacheSize = DefaultCacheSize
	}
	if cfg.Fetch.CacheTTL.Duration == 0 {
		cfg.Fetch.CacheTTL.Duration = DefaultCacheTTL
	}
	if cfg.X.APIKeyEnv == "" {
		cfg.X.APIKeyEnv = DefaultXKeyEnv
	}
	if cfg.X.APIKeySecretEnv == "" {
		cfg.X.APIKeySecretEnv = DefaultXKeySecretEnv
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.RetainDays == 0 {
		cfg.Storage.RetainDays = DefaultRetainDays
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = DefaultColor
	}
}

// resolveEnv fills secrets from the process environment, falling back to the
// .env file. The process environment always wins.
func resolveEnv(cfg *Config, dotenv map[string]string) {
	lookup := func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return dotenv[name]
	}
	cfg.X.APIKey = lookup(cfg.X.APIKeyEnv)
	cfg.X.APIKeySecret = lookup(cfg.X.APIKeySecretEnv)
}

func validate(cfg *Config) error {
	if cfg.Fetch.Timeout.Duration < 0 {
		return errors.New("fetch.timeout: must be positive")
	}
	if cfg.Fetch.CacheSize < 0 {
		return errors.New("fetch.cache_size: must not be negative")
	}
	if cfg.Storage.RetainDays < 0 {
		return errors.New("storage.retain_days: must not be negative")
	}

	if !contains(OutputFormats, cfg.Output.Format) {
		return fmt.Errorf("output.format: unknown format %q (want %s)", cfg.Output.Format, strings.Join(OutputFormats, ", "))
	}
	switch cfg.Output.Color {
	case "auto", "always", "never":
		// valid
	default:
		return fmt.Errorf("output.color: unknown mode %q (want auto, always or never)", cfg.Output.Color)
	}

	for _, origin := range cfg.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("server.cors_origins: %q is not an http(s) origin", origin)
		}
	}

	if _, err := privacy.NewRedactor(cfg.Privacy.Redact.Patterns); err != nil {
		return fmt.Errorf("privacy.redact: %w", err)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
