// Package report renders check results for people and machines.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/newscheck/internal/check"
	"github.com/ppiankov/newscheck/internal/link"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Formatter writes a formatted check result to w.
type Formatter interface {
	Format(w io.Writer, r check.Result) error
}

// Formats lists the names accepted by New.
var Formats = []string{"verbose", "silent", "json", "markdown"}

// New returns the formatter registered under name.
func New(name string, color bool) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "verbose", "terminal", "":
		return NewTerminal(color), nil
	case "silent":
		return NewSilent(), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want %s)", name, strings.Join(Formats, ", "))
	}
}

// UsageError explains a rejected link and lists the accepted shapes.
func UsageError(w io.Writer, prog string, err error) {
	fmt.Fprintf(w, "ERROR: %v\n\n", err)
	fmt.Fprintln(w, "Usage:")
	for _, tmpl := range link.SupportedTemplates() {
		fmt.Fprintf(w, "  %s check [-s] [-v] %s\n", prog, tmpl)
	}
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.4f s", d.Seconds())
}

func formatPercentage(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func claimText(r check.Result) string {
	switch {
	case !r.Claim.Empty():
		return r.Claim.Text
	case r.FetchError != "":
		return "(post could not be fetched)"
	case !r.Fetched():
		return "(post was not fetched)"
	default:
		return "(no claim extracted)"
	}
}
