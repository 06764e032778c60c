package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/newscheck/internal/link"
)

const pageSourceName = "page"

var browserUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
}

// PageFetcher downloads the post page and extracts text with goquery.
type PageFetcher struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// NewPage creates a generic HTML fetcher. An empty userAgent rotates through
// common browser strings.
func NewPage(timeout time.Duration, userAgent string) *PageFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PageFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
		now:       time.Now,
	}
}

func (p *PageFetcher) Name() string {
	return pageSourceName
}

func (p *PageFetcher) Fetch(ctx context.Context, vl link.ValidatedLink) (Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vl.Link, nil)
	if err != nil {
		return Content{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.pickUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com")

	resp, err := p.client.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("fetch %s: %w", vl.Link, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Content{}, &StatusError{URL: vl.Link, StatusCode: resp.StatusCode}
	}

	content, err := ParseHTML(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Content{}, err
	}
	content.FetchedAt = p.now().UTC()
	content.Via = pageSourceName
	return content, nil
}

func (p *PageFetcher) pickUserAgent() string {
	if p.userAgent != "" {
		return p.userAgent
	}
	return browserUserAgents[rand.IntN(len(browserUserAgents))]
}

// ParseHTML extracts the title, body text and anchors from an HTML document.
func ParseHTML(r io.Reader) (Content, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Content{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	title := collapseSpace(doc.Find("title").First().Text())
	if title == "" {
		title = collapseSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	body := collapseSpace(doc.Find("body").Text())
	if body == "" {
		body = collapseSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		anchors = append(anchors, Anchor{Text: collapseSpace(s.Text()), Href: href})
	})

	return Content{Title: title, Body: body, Anchors: anchors}, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
