package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/ppiankov/newscheck/internal/config"
	"github.com/ppiankov/newscheck/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, storage and credentials",
	Args:  cobra.NoArgs,
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	var errs []error
	fail := func(format string, args ...any) {
		printCheck(w, false, format, args...)
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printInfo(w, "config directory %s not found (run 'newscheck init'), using defaults", configDir)
	} else {
		printCheck(w, true, "config directory %s", configDir)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fail("config.yaml: %v", err)
		return fmt.Errorf("%w: %w", errReported, errors.Join(errs...))
	}
	printCheck(w, true, "config.yaml (format %s, addr %s)", cfg.Output.Format, cfg.Server.Addr)

	if _, err := cfg.Redactor(); err != nil {
		fail("privacy.redact: %v", err)
	} else if cfg.Privacy.Redact.Enabled {
		printCheck(w, true, "redaction enabled")
	}

	if cfg.Fetch.RedditBaseURL != "" {
		if u, err := url.Parse(cfg.Fetch.RedditBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			fail("fetch.reddit_base_url: %q is not an absolute URL", cfg.Fetch.RedditBaseURL)
		} else {
			printCheck(w, true, "reddit api %s", cfg.Fetch.RedditBaseURL)
		}
	}

	if cfg.X.APIKey != "" && cfg.X.APIKeySecret != "" {
		printCheck(w, true, "x api credentials (%s, %s)", cfg.X.APIKeyEnv, cfg.X.APIKeySecretEnv)
	} else {
		printInfo(w, "x api credentials not set (%s, %s), x.com pages will be scraped", cfg.X.APIKeyEnv, cfg.X.APIKeySecretEnv)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		fail("database: %v", err)
	} else {
		defer func() { _ = db.Close() }()
		if v, err := db.SchemaVersion(cmd.Context()); err != nil {
			fail("database schema: %v", err)
		} else {
			printCheck(w, true, "database %s (schema v%d)", cfg.Storage.Path, v)
		}
		checkFetchHealth(cmd.Context(), w, db)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", errReported, errors.Join(errs...))
	}
	fmt.Fprintln(w, "\nAll checks passed.")
	return nil
}

// checkFetchHealth reports sites whose recent fetches mostly fail.
func checkFetchHealth(ctx context.Context, w io.Writer, db *store.Store) {
	stats, err := db.GetSiteStats(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil || len(stats) == 0 {
		return
	}
	for _, ss := range stats {
		if ss.Total >= 5 && ss.FetchFailed*2 > ss.Total {
			printInfo(w, "fetch failing: %s, %d of %d checks in the last 7 days could not download the post",
				ss.Site, ss.FetchFailed, ss.Total)
		}
	}
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}
