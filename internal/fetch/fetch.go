// Package fetch retrieves the content of a validated post link.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/newscheck/internal/link"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 5 << 20
)

// Anchor is a hyperlink found in fetched content.
type Anchor struct {
	Text string `json:"text,omitempty"`
	Href string `json:"href"`
}

// Content is the text extracted from a post.
type Content struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	Anchors   []Anchor  `json:"anchors,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Via       string    `json:"via"` // fetcher name
}

// Fetcher retrieves the content behind a validated link.
type Fetcher interface {
	// Name returns the fetcher identifier (e.g. "reddit").
	Name() string

	// Fetch downloads and extracts the post content.
	Fetch(ctx context.Context, vl link.ValidatedLink) (Content, error)
}

// StatusError is returned when the remote side answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Router dispatches to a site-specific fetcher and falls back to a generic one.
type Router struct {
	bySite   map[link.Site]Fetcher
	fallback Fetcher
}

// NewRouter creates a router using fallback for sites without a dedicated fetcher.
func NewRouter(fallback Fetcher) *Router {
	return &Router{
		bySite:   make(map[link.Site]Fetcher),
		fallback: fallback,
	}
}

// Handle registers f for site. Call before the router is shared.
func (r *Router) Handle(site link.Site, f Fetcher) {
	r.bySite[site] = f
}

func (r *Router) Name() string {
	return "router"
}

// Fetch picks the fetcher for the link's site.
func (r *Router) Fetch(ctx context.Context, vl link.ValidatedLink) (Content, error) {
	return r.For(vl.Site).Fetch(ctx, vl)
}

// For returns the fetcher that handles site.
func (r *Router) For(site link.Site) Fetcher {
	if f, ok := r.bySite[site]; ok && f != nil {
		return f
	}
	return r.fallback
}
