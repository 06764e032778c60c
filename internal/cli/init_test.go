package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/newscheck/internal/config"
)

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")

	out, _, err := runCLI(t, "init", "--config", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "with 2 config files") {
		t.Errorf("unexpected output:\n%s", out)
	}

	info, err := os.Stat(filepath.Join(dir, config.DefaultEnvFile))
	if err != nil {
		t.Fatalf("stat .env: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf(".env mode = %v, want 0600", info.Mode().Perm())
	}

	t.Setenv("X_API_KEY", "")
	t.Setenv("X_API_KEY_SECRET", "")
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.Server.Addr != config.DefaultAddr || cfg.Output.Format != "verbose" {
		t.Errorf("unexpected example config: %+v", cfg)
	}

	out, _, err = runCLI(t, "init", "--config", dir)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out, "already initialized") {
		t.Errorf("expected already initialized, got:\n%s", out)
	}
}
