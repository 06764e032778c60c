package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ppiankov/newscheck/internal/check"
	"github.com/ppiankov/newscheck/internal/fetch"
)

type jsonResult struct {
	ID              string         `json:"id"`
	Link            string         `json:"link"`
	Site            string         `json:"site"`
	Template        string         `json:"template"`
	PostID          string         `json:"post_id"`
	Community       string         `json:"community,omitempty"`
	Title           string         `json:"title,omitempty"`
	Author          string         `json:"author,omitempty"`
	Via             string         `json:"fetched_via,omitempty"`
	FetchError      string         `json:"fetch_error,omitempty"`
	Claim           string         `json:"claim,omitempty"`
	Sentences       []string       `json:"sentences,omitempty"`
	Sources         []string       `json:"sources,omitempty"`
	Anchors         []fetch.Anchor `json:"anchors,omitempty"`
	IsTrue          bool           `json:"is_true"`
	TruthPercentage float64        `json:"truth_percentage"`
	Justification   string         `json:"justification"`
	CheckedAt       string         `json:"checked_at"`
	ElapsedMS       int64          `json:"elapsed_ms"`
	Stored          bool           `json:"stored"`
}

// JSONFormatter formats a check result as indented JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes r as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, r check.Result) error {
	out := jsonResult{
		ID:              r.ID,
		Link:            r.Link.Link,
		Site:            r.Link.Site.String(),
		Template:        r.Link.Template,
		PostID:          r.Link.PostID,
		Community:       r.Link.Community,
		FetchError:      r.FetchError,
		Claim:           r.Claim.Text,
		Sentences:       r.Claim.Sentences,
		Sources:         r.Claim.Links,
		IsTrue:          r.Verdict.IsTrue,
		TruthPercentage: r.Verdict.TruthPercentage,
		Justification:   r.Verdict.Justification,
		CheckedAt:       r.CheckedAt.UTC().Format(time.RFC3339),
		ElapsedMS:       r.Elapsed.Milliseconds(),
		Stored:          r.Stored,
	}
	if r.Content != nil {
		out.Title = r.Content.Title
		out.Author = r.Content.Author
		out.Via = r.Content.Via
		out.Anchors = r.Content.Anchors
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
