package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/newscheck/internal/check"
	"github.com/ppiankov/newscheck/internal/config"
	"github.com/ppiankov/newscheck/internal/fetch"
	"github.com/ppiankov/newscheck/internal/link"
	"github.com/ppiankov/newscheck/internal/logutil"
	"github.com/ppiankov/newscheck/internal/store"
	"golang.org/x/term"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildFetcher routes Reddit links to the JSON API, X links to the X API
// when credentials are configured, and everything else to the page scraper.
func buildFetcher(cfg *config.Config) fetch.Fetcher {
	timeout := cfg.Fetch.Timeout.Duration
	router := fetch.NewRouter(fetch.NewPage(timeout, cfg.Fetch.UserAgent))
	router.Handle(link.SiteReddit, fetch.NewReddit(timeout, cfg.Fetch.RedditBaseURL))

	creds := fetch.XCredentials{APIKey: cfg.X.APIKey, APIKeySecret: cfg.X.APIKeySecret}
	if creds.Configured() {
		xf, err := fetch.NewX(timeout, creds)
		if err != nil {
			logutil.Warnf("x api disabled: %v", err)
		} else {
			router.Handle(link.SiteX, xf)
		}
	} else {
		logutil.Debugf("x api credentials not set (%s, %s), scraping x.com pages", cfg.X.APIKeyEnv, cfg.X.APIKeySecretEnv)
	}
	return router
}

// buildChecker assembles the pipeline. The returned store is nil when
// withStore is false and must be closed by the caller otherwise.
func buildChecker(ctx context.Context, cfg *config.Config, f fetch.Fetcher, withStore bool) (*check.Checker, *store.Store, error) {
	redactor, err := cfg.Redactor()
	if err != nil {
		return nil, nil, err
	}

	c := &check.Checker{
		Fetcher:       f,
		Redactor:      redactor,
		StoreFullText: cfg.Privacy.StoreFullText,
	}
	if !withStore {
		return c, nil, nil
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if n, err := db.PruneOld(ctx, cfg.Storage.RetainDays); err != nil {
		logutil.Warnf("prune: %v", err)
	} else if n > 0 {
		logutil.Debugf("pruned %d checks older than %d days", n, cfg.Storage.RetainDays)
	}
	c.Store = db
	return c, db, nil
}

// colorEnabled resolves an auto/always/never mode against w.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
