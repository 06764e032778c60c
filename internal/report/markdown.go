package report

import (
	"fmt"
	"io"

	"github.com/ppiankov/newscheck/internal/check"
)

// MarkdownFormatter formats a check result as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes r as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, r check.Result) error {
	fmt.Fprintf(w, "# newscheck verdict\n\n")
	fmt.Fprintf(w, "- **Link:** <%s>\n", r.Link.Link)
	fmt.Fprintf(w, "- **Site:** %s\n", r.Link.Site)
	fmt.Fprintf(w, "- **Checked at:** %s\n", r.CheckedAt.Format(timeLayout))
	fmt.Fprintf(w, "- **Truth value:** %t (%s)\n", r.Verdict.IsTrue, formatPercentage(r.Verdict.TruthPercentage))
	fmt.Fprintf(w, "- **Time spent:** %s\n\n", formatElapsed(r.Elapsed))

	fmt.Fprintf(w, "## Claim\n\n")
	fmt.Fprintf(w, "> %s\n\n", claimText(r))
	if r.Content != nil && r.Content.Title != "" && r.Content.Title != r.Claim.Text {
		fmt.Fprintf(w, "Title: %s\n\n", r.Content.Title)
	}
	if r.FetchError != "" {
		fmt.Fprintf(w, "*Fetch failed: %s*\n\n", r.FetchError)
	}

	if len(r.Claim.Links) > 0 {
		fmt.Fprintf(w, "## Sources\n\n")
		for _, l := range r.Claim.Links {
			fmt.Fprintf(w, "- <%s>\n", l)
		}
		fmt.Fprintln(w)
	}

	if r.Verdict.Justification != "" {
		fmt.Fprintf(w, "## Justification\n\n%s\n", r.Verdict.Justification)
	}
	return nil
}
