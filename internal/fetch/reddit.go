package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/newscheck/internal/link"
)

const (
	redditSourceName = "reddit"
	redditBaseURL    = "https://www.reddit.com"
	redditUserAgent  = "newscheck/1.0"
)

// RedditFetcher reads a single post through Reddit's public JSON API.
type RedditFetcher struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewReddit creates a Reddit fetcher. An empty baseURL uses www.reddit.com.
func NewReddit(timeout time.Duration, baseURL string) *RedditFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = redditBaseURL
	}
	return &RedditFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (rf *RedditFetcher) Name() string {
	return redditSourceName
}

func (rf *RedditFetcher) Fetch(ctx context.Context, vl link.ValidatedLink) (Content, error) {
	if vl.Site != link.SiteReddit {
		return Content{}, fmt.Errorf("reddit: cannot fetch %s link", vl.Site)
	}
	if vl.PostID == "" {
		return Content{}, errors.New("reddit: post id is required")
	}

	url := fmt.Sprintf("%s/comments/%s.json?limit=1", rf.baseURL, vl.PostID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Content{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := rf.client.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("fetch post %s: %w", vl.PostID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Content{}, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var listings []redditListing
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&listings); err != nil {
		return Content{}, fmt.Errorf("decode post %s: %w", vl.PostID, err)
	}

	post, ok := firstPost(listings)
	if !ok {
		return Content{}, fmt.Errorf("post %s: empty listing", vl.PostID)
	}

	return rf.contentFromPost(post), nil
}

func (rf *RedditFetcher) contentFromPost(p redditPost) Content {
	c := Content{
		Title:     strings.TrimSpace(p.Title),
		Body:      strings.TrimSpace(p.Selftext),
		Author:    p.Author,
		FetchedAt: rf.now().UTC(),
		Via:       redditSourceName,
	}
	if c.Body == "" {
		c.Body = c.Title
	}
	if p.URL != "" && (p.Permalink == "" || !strings.Contains(p.URL, p.Permalink)) {
		c.Anchors = append(c.Anchors, Anchor{Text: p.Domain, Href: p.URL})
	}
	if p.Permalink != "" {
		c.Anchors = append(c.Anchors, Anchor{Text: "permalink", Href: redditBaseURL + p.Permalink})
	}
	return c
}

func firstPost(listings []redditListing) (redditPost, bool) {
	if len(listings) == 0 {
		return redditPost{}, false
	}
	for _, child := range listings[0].Data.Children {
		if child.Kind == "t3" || child.Kind == "" {
			return child.Data, true
		}
	}
	return redditPost{}, false
}

type redditListing struct {
	Data struct {
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Kind string     `json:"kind"`
	Data redditPost `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Domain     string  `json:"domain"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}
