package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestYAML(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test yaml: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_X_KEY", "key-123")
	t.Setenv("TEST_X_SECRET", "secret-456")

	writeTestYAML(t, dir, DefaultConfigFile, `
server:
  addr: ":9000"
  cors_origins:
    - "https://newscheck.example"
fetch:
  timeout: 5s
  user_agent: "newscheck-test"
  reddit_base_url: "https://old.reddit.com"
  cache_size: 16
  cache_ttl: 1m
x:
  api_key_env: TEST_X_KEY
  api_key_secret_env: TEST_X_SECRET
storage:
  path: custom.db
  retain_days: 7
privacy:
  store_full_text: true
  redact:
    enabled: true
    patterns:
      - "(?i)token"
output:
  format: json
  color: never
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://newscheck.example" {
		t.Errorf("cors_origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Fetch.Timeout.Duration != 5*time.Second {
		t.Errorf("fetch.timeout = %v", cfg.Fetch.Timeout.Duration)
	}
	if cfg.Fetch.UserAgent != "newscheck-test" {
		t.Errorf("user_agent = %q", cfg.Fetch.UserAgent)
	}
	if cfg.Fetch.RedditBaseURL != "https://old.reddit.com" {
		t.Errorf("reddit_base_url = %q", cfg.Fetch.RedditBaseURL)
	}
	if cfg.Fetch.CacheSize != 16 || cfg.Fetch.CacheTTL.Duration != time.Minute {
		t.Errorf("cache = %d/%v", cfg.Fetch.CacheSize, cfg.Fetch.CacheTTL.Duration)
	}
	if cfg.X.APIKey != "key-123" || cfg.X.APIKeySecret != "secret-456" {
		t.Errorf("x credentials = %q/%q", cfg.X.APIKey, cfg.X.APIKeySecret)
	}
	if cfg.Storage.Path != "custom.db" || cfg.Storage.RetainDays != 7 {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if !cfg.Privacy.StoreFullText || !cfg.Privacy.Redact.Enabled {
		t.Errorf("privacy = %+v", cfg.Privacy)
	}
	if cfg.Output.Format != "json" || cfg.Output.Color != "never" {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("server.addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("cors_origins = %v, want defaults", cfg.Server.CORSOrigins)
	}
	if cfg.Storage.Path != DefaultStoragePath {
		t.Errorf("storage.path = %q, want %q", cfg.Storage.Path, DefaultStoragePath)
	}
	if cfg.Storage.RetainDays != DefaultRetainDays {
		t.Errorf("retain_days = %d, want %d", cfg.Storage.RetainDays, DefaultRetainDays)
	}
	if cfg.Fetch.Timeout.Duration != DefaultFetchTimeout {
		t.Errorf("fetch.timeout = %v, want %v", cfg.Fetch.Timeout.Duration, DefaultFetchTimeout)
	}
	if cfg.Fetch.CacheSize != DefaultCacheSize || cfg.Fetch.CacheTTL.Duration != DefaultCacheTTL {
		t.Errorf("cache = %d/%v", cfg.Fetch.CacheSize, cfg.Fetch.CacheTTL.Duration)
	}
	if cfg.X.APIKeyEnv != DefaultXKeyEnv || cfg.X.APIKeySecretEnv != DefaultXKeySecretEnv {
		t.Errorf("x env names = %q/%q", cfg.X.APIKeyEnv, cfg.X.APIKeySecretEnv)
	}
	if cfg.Output.Format != DefaultOutputFormat || cfg.Output.Color != DefaultColor {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestDefault_DoesNotShareOrigins(t *testing.T) {
	cfg := Default()
	cfg.Server.CORSOrigins[0] = "changed"
	if DefaultCORSOrigins[0] == "changed" {
		t.Fatal("defaults share storage with config")
	}
}

func TestLoad_DurationParsing(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
fetch:
  cache_ttl: 72h
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Fetch.CacheTTL.Duration != 72*time.Hour {
		t.Errorf("cache_ttl = %v, want 72h", cfg.Fetch.CacheTTL.Duration)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
fetch:
  timeout: soon
`)

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "parse duration") {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"output format", "output:\n  format: html\n", "output.format"},
		{"color mode", "output:\n  color: rainbow\n", "output.color"},
		{"cors origin", "server:\n  cors_origins: [\"localhost:5173\"]\n", "server.cors_origins"},
		{"redact pattern", "privacy:\n  redact:\n    enabled: true\n    patterns: [\"[bad\"]\n", "privacy.redact"},
		{"negative retain", "storage:\n  retain_days: -1\n", "storage.retain_days"},
		{"negative cache", "fetch:\n  cache_size: -5\n", "fetch.cache_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTestYAML(t, dir, DefaultConfigFile, tt.yaml)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `{{{invalid`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if want := "parse config"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for empty dir")
	}
	if want := "config dir is required"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_DotenvResolution(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, `
x:
  api_key_env: NC_DOTENV_KEY
  api_key_secret_env: NC_DOTENV_SECRET
`)
	writeTestYAML(t, dir, DefaultEnvFile, "NC_DOTENV_KEY=from-file\nNC_DOTENV_SECRET=secret-from-file\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.X.APIKey != "from-file" || cfg.X.APIKeySecret != "secret-from-file" {
		t.Errorf("x credentials = %q/%q", cfg.X.APIKey, cfg.X.APIKeySecret)
	}
	if _, ok := os.LookupEnv("NC_DOTENV_KEY"); ok {
		t.Error(".env values leaked into the process environment")
	}
}

func TestLoad_EnvBeatsDotenv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NC_PRIORITY_KEY", "from-env")
	writeTestYAML(t, dir, DefaultConfigFile, "x:\n  api_key_env: NC_PRIORITY_KEY\n")
	writeTestYAML(t, dir, DefaultEnvFile, "NC_PRIORITY_KEY=from-file\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.X.APIKey != "from-env" {
		t.Errorf("api_key = %q, want from-env", cfg.X.APIKey)
	}
}

func TestLoad_EnvVarMissing(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, DefaultConfigFile, "x:\n  api_key_env: NONEXISTENT_VAR_12345\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.X.APIKey != "" {
		t.Errorf("api_key = %q, want empty", cfg.X.APIKey)
	}
}

func TestConfig_Redactor(t *testing.T) {
	cfg := Default()
	r, err := cfg.Redactor()
	if err != nil || r != nil {
		t.Fatalf("disabled redaction should give nil redactor, got %v, %v", r, err)
	}

	cfg.Privacy.Redact.Enabled = true
	r, err = cfg.Redactor()
	if err != nil {
		t.Fatalf("redactor: %v", err)
	}
	if got := r.Apply("mail jane@example.com"); got != "mail [REDACTED]" {
		t.Errorf("default patterns not applied: %q", got)
	}

	cfg.Privacy.Redact.Patterns = []string{`(?i)secret`}
	r, err = cfg.Redactor()
	if err != nil {
		t.Fatalf("redactor: %v", err)
	}
	if got := r.Apply("Secret jane@example.com"); got != "[REDACTED] jane@example.com" {
		t.Errorf("custom patterns not applied: %q", got)
	}
}
