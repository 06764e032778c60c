package cli

import (
	"fmt"

	"github.com/ppiankov/newscheck/internal/link"
	"github.com/ppiankov/newscheck/internal/report"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported link formats and output formats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Supported links:")
		for _, tmpl := range link.SupportedTemplates() {
			fmt.Fprintf(out, "  %s\n", tmpl)
		}
		fmt.Fprintln(out, "\nOutput formats:")
		for _, name := range report.Formats {
			fmt.Fprintf(out, "  %s\n", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
