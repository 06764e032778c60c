package report

import (
	"fmt"
	"io"

	"github.com/ppiankov/newscheck/internal/check"
)

// SilentFormatter prints just enough to read the outcome.
type SilentFormatter struct{}

func NewSilent() *SilentFormatter {
	return &SilentFormatter{}
}

func (f *SilentFormatter) Format(w io.Writer, r check.Result) error {
	_, err := fmt.Fprintf(w,
		"\nCheck at: %s\nThe claim at '%s' from %s, is %s.\nProbability of truth: %s.\nTime spent on analysis: %s\n",
		r.CheckedAt.Format(timeLayout),
		r.Link.Link,
		r.Link.Site,
		r.Verdict.Likely(),
		formatPercentage(r.Verdict.TruthPercentage),
		formatElapsed(r.Elapsed),
	)
	return err
}
