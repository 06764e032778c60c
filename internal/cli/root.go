// Package cli provides the command-line interface for newscheck.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/newscheck/internal/logutil"
	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

const defaultConfigDir = ".newscheck"

var (
	configDir string
	debug     bool
)

// errReported marks failures whose message has already been shown.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "newscheck",
	Short: "Check claims made in Reddit and X posts",
	Long: "newscheck validates a link to a Reddit or X post, fetches the post, extracts the claim " +
		"and reports a verdict. Claim analysis is not available yet, so verdicts are undetermined.",
	Version:       fmt.Sprintf("%s (%s)", Version, Commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logutil.SetVerbose(debug)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newscheck %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", defaultConfigDir, "config directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolP("version", "V", false, "print version information")
	rootCmd.SetVersionTemplate("newscheck {{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
