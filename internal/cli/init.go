package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/newscheck/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	Args:  cobra.NoArgs,
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0
	files := []struct {
		name string
		data string
		perm os.FileMode
	}{
		{config.DefaultConfigFile, exampleConfig, 0o644},
		{config.DefaultEnvFile, exampleEnv, 0o600},
	}
	for _, f := range files {
		wrote, err := writeIfNotExists(out, filepath.Join(configDir, f.name), []byte(f.data), f.perm)
		if err != nil {
			return err
		}
		if wrote {
			created++
		}
	}

	if created == 0 {
		fmt.Fprintf(out, "Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Fprintf(out, "Initialized %s with %d config files.\n", configDir, created)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(out io.Writer, path string, data []byte, perm os.FileMode) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# newscheck configuration

server:
  addr: "127.0.0.1:8000"
  cors_origins:
    - "http://localhost:5173"
    - "http://127.0.0.1:5173"

fetch:
  timeout: 15s
  # user_agent: ""        # empty rotates browser user agents
  # reddit_base_url: ""   # empty uses https://www.reddit.com
  cache_size: 256
  cache_ttl: 10m

x:
  # read from the environment or from .env in this directory
  api_key_env: X_API_KEY
  api_key_secret_env: X_API_KEY_SECRET

storage:
  path: .newscheck/newscheck.db
  retain_days: 90

privacy:
  store_full_text: false
  redact:
    enabled: false
    patterns: []

output:
  format: verbose   # verbose, silent, json, markdown
  color: auto       # auto, always, never
`

const exampleEnv = `# X API app credentials. Leave empty to scrape x.com pages instead.
X_API_KEY=
X_API_KEY_SECRET=
`
