// Package link validates post links and classifies the site they belong to.
//
// Only a fixed family of Reddit and X link shapes is accepted. Validation is
// a pure function over its input and a static format table, so it is safe to
// call from any number of goroutines.
package link

import (
	"net/url"
	"regexp"
	"strings"
)

// MaxLength caps the input size before any pattern is tried.
const MaxLength = 2048

// Site identifies the platform a link belongs to.
type Site string

const (
	SiteReddit Site = "Reddit"
	SiteX      Site = "X"
)

// Valid reports whether s is a supported site.
func (s Site) Valid() bool {
	return s == SiteReddit || s == SiteX
}

func (s Site) String() string {
	return string(s)
}

// ParseSite resolves a site name case-insensitively ("reddit", "x", "twitter").
func ParseSite(name string) (Site, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "reddit", "redd":
		return SiteReddit, true
	case "x", "twitter":
		return SiteX, true
	}
	return "", false
}

// ValidatedLink is a link that matched one of the supported formats.
// The zero value is never returned by Validate.
type ValidatedLink struct {
	Link      string // original input, unmodified
	Site      Site
	Template  string // format template that matched
	PostID    string
	Community string // subreddit or username; empty when the format has none
}

type format struct {
	template string
	site     Site
	pattern  *regexp.Regexp
	// capture group indexes, 0 when absent
	postID    int
	community int
}

// Patterns are anchored on both ends; each accepts http and https and an
// optional trailing slash. Reddit permalinks carry exactly three segments
// after r/.
var formats = []format{
	{
		template: "http(s)://redd.it/{post_id}",
		site:     SiteReddit,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?redd\.it/(\w+)/?$`),
		postID:   1,
	},
	{
		template:  "http(s)://www.reddit.com/r/{subreddit}/{post_id}/{post_title}/",
		site:      SiteReddit,
		pattern:   regexp.MustCompile(`^https?://(?:www\.)?reddit\.com/r/(\w+)/(\w+)/(\w+)/?$`),
		community: 1,
		postID:    2,
	},
	{
		template:  "http(s)://x.com/{username}/status/{post_id}",
		site:      SiteX,
		pattern:   regexp.MustCompile(`^https?://(?:www\.)?x\.com/(\w+)/status/(\w+)/?$`),
		community: 1,
		postID:    2,
	},
	{
		template: "http(s)://x.com/i/web/status/{post_id}",
		site:     SiteX,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?x\.com/i/web/status/(\w+)/?$`),
		postID:   1,
	},
}

var templates = func() []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, f.template)
	}
	return out
}()

// SupportedTemplates returns the format templates in a fixed order.
func SupportedTemplates() []string {
	return append([]string(nil), templates...)
}

// Validate checks raw against the supported formats and returns the
// classified link. Failures are EmptyInputError, MalformedLinkError or
// UnsupportedFormatError, all matching ErrInvalidLink.
func Validate(raw string) (ValidatedLink, error) {
	if strings.TrimSpace(raw) == "" {
		return ValidatedLink{}, EmptyInputError{}
	}
	if len(raw) > MaxLength {
		return ValidatedLink{}, MalformedLinkError{Link: raw, Reason: "link exceeds 2048 characters"}
	}

	for _, f := range formats {
		m := f.pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		return newValidatedLink(raw, f, m)
	}

	if reason := malformedReason(raw); reason != "" {
		return ValidatedLink{}, MalformedLinkError{Link: raw, Reason: reason}
	}
	return ValidatedLink{}, UnsupportedFormatError{Link: raw, Templates: SupportedTemplates()}
}

func newValidatedLink(raw string, f format, m []string) (ValidatedLink, error) {
	if !f.site.Valid() {
		return ValidatedLink{}, UnsupportedFormatError{Link: raw, Templates: SupportedTemplates()}
	}
	vl := ValidatedLink{
		Link:     raw,
		Site:     f.site,
		Template: f.template,
	}
	if f.postID > 0 {
		vl.PostID = m[f.postID]
	}
	if f.community > 0 {
		vl.Community = m[f.community]
	}
	return vl, nil
}

// malformedReason returns why raw is not an absolute URL, or "" when it is one.
func malformedReason(raw string) string {
	if strings.ContainsAny(raw, " \t\r\n") {
		return "contains whitespace"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "cannot be parsed as a URL"
	}
	if u.Scheme == "" {
		return "missing scheme (want http:// or https://)"
	}
	if u.Opaque != "" || u.Host == "" {
		return "missing host"
	}
	return ""
}
