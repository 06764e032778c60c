package cli

import (
	"fmt"

	"github.com/ppiankov/newscheck/internal/check"
	"github.com/ppiankov/newscheck/internal/report"
	"github.com/spf13/cobra"
)

var (
	checkSilent  bool
	checkVerbose bool
	checkFormat  string
	checkNoFetch bool
	checkNoColor bool
	checkNoStore bool
)

var checkCmd = &cobra.Command{
	Use:   "check <link>",
	Short: "Check the claim made in a Reddit or X post",
	Example: `  newscheck check https://www.reddit.com/r/news/abc123/some_title/
  newscheck check -s http://redd.it/abc123
  newscheck check --format json https://x.com/someuser/status/1234567890`,
	Args: cobra.ExactArgs(1),
	RunE: checkAction,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkSilent, "silent", "s", false, "print a short verdict")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "print the full verdict (default)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "output format: verbose, silent, json, markdown (default from config)")
	checkCmd.Flags().BoolVar(&checkNoFetch, "no-fetch", false, "validate the link without downloading the post")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "disable colored output")
	checkCmd.Flags().BoolVar(&checkNoStore, "no-store", false, "do not record the check in history")
	checkCmd.MarkFlagsMutuallyExclusive("silent", "verbose")
	rootCmd.AddCommand(checkCmd)
}

func checkAction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := cfg.Output.Format
	switch {
	case checkFormat != "":
		format = checkFormat
	case checkSilent:
		format = "silent"
	case checkVerbose:
		format = "verbose"
	}

	out := cmd.OutOrStdout()
	color := !checkNoColor && colorEnabled(cfg.Output.Color, out)
	formatter, err := report.New(format, color)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	checker, db, err := buildChecker(ctx, cfg, buildFetcher(cfg), !checkNoStore)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	res, err := checker.Run(ctx, args[0], check.Options{SkipFetch: checkNoFetch})
	if check.IsValidationError(err) {
		report.UsageError(cmd.ErrOrStderr(), rootCmd.Name(), err)
		return fmt.Errorf("%w: %v", errReported, err)
	}
	if err != nil {
		return err
	}

	return formatter.Format(out, res)
}
