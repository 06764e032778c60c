package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/newscheck/internal/api"
	"github.com/ppiankov/newscheck/internal/fetch"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the check API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  serveAction,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "do not record checks in history")
	rootCmd.AddCommand(serveCmd)
}

func serveAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewCached(buildFetcher(cfg), cfg.Fetch.CacheSize, cfg.Fetch.CacheTTL.Duration)
	checker, db, err := buildChecker(ctx, cfg, fetcher, !serveNoStore)
	if err != nil {
		return err
	}

	opts := api.Options{Checker: checker, CORSOrigins: cfg.Server.CORSOrigins}
	if db != nil {
		defer func() { _ = db.Close() }()
		opts.History = db
	}

	return api.New(opts).Run(ctx, addr)
}
