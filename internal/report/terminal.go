package report

import (
	"fmt"
	"io"

	"github.com/ppiankov/newscheck/internal/check"
)

// TerminalFormatter prints the full verdict block.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the verbose verdict for r to w.
func (f *TerminalFormatter) Format(w io.Writer, r check.Result) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, f.bold("===========   Verdict   ============="))
	fmt.Fprintf(w, "Check requested at: %s\n", r.CheckedAt.Format(timeLayout))
	fmt.Fprintf(w, "Link: %s\n", r.Link.Link)
	fmt.Fprintf(w, "Site detected: %s\n", r.Link.Site)
	if r.Link.Community != "" {
		fmt.Fprintf(w, "Posted in/by: %s\n", r.Link.Community)
	}

	if r.Content != nil {
		if r.Content.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", r.Content.Title)
		}
		fmt.Fprintf(w, "Claim: %s\n", claimText(r))
		if n := len(r.Claim.Links); n > 0 {
			fmt.Fprintf(w, "Sources cited: %s\n", f.dim(fmt.Sprintf("%d link(s)", n)))
		}
	} else if r.FetchError != "" {
		fmt.Fprintf(w, "Fetch: %s\n", f.red(r.FetchError))
	}

	fmt.Fprintf(w, "Truth value: %s\n", f.verdictColor(r.Verdict.IsTrue, fmt.Sprint(r.Verdict.IsTrue)))
	fmt.Fprintf(w, "Probability of being true: %s\n", formatPercentage(r.Verdict.TruthPercentage))
	if r.Verdict.Justification != "" {
		fmt.Fprintf(w, "Justification: %s\n", f.dim(r.Verdict.Justification))
	}
	fmt.Fprintf(w, "Time spent on analysis: %s\n", formatElapsed(r.Elapsed))
	fmt.Fprintln(w)
	return nil
}

func (f *TerminalFormatter) verdictColor(isTrue bool, s string) string {
	if isTrue {
		return f.green(s)
	}
	return f.red(s)
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) red(s string) string {
	if !f.color {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
