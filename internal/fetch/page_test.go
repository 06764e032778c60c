package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/newscheck/internal/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html>
<head><title>  Breaking:   moon made of cheese </title>
<style>body { color: red }</style></head>
<body>
  <h1>Claim</h1>
  <p>Scientists   confirm the moon is cheese.</p>
  <script>var tracking = true;</script>
  <a href="https://example.com/source">the source</a>
  <a href="#top">top</a>
  <a href="javascript:void(0)">nothing</a>
  <a href="/relative">relative</a>
</body>
</html>`

func TestParseHTML(t *testing.T) {
	content, err := ParseHTML(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Equal(t, "Breaking: moon made of cheese", content.Title)
	assert.Contains(t, content.Body, "Scientists confirm the moon is cheese.")
	assert.NotContains(t, content.Body, "tracking")
	assert.NotContains(t, content.Body, "color: red")

	require.Len(t, content.Anchors, 2)
	assert.Equal(t, Anchor{Text: "the source", Href: "https://example.com/source"}, content.Anchors[0])
	assert.Equal(t, "/relative", content.Anchors[1].Href)
}

func TestParseHTML_OpenGraphFallback(t *testing.T) {
	page := `<html><head>
<meta property="og:title" content="OG title">
<meta property="og:description" content="OG description">
</head><body></body></html>`

	content, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "OG title", content.Title)
	assert.Equal(t, "OG description", content.Body)
}

// pageFetcherFor points a PageFetcher at srv regardless of the link host.
func pageFetcherFor(srv *httptest.Server, userAgent string) *PageFetcher {
	p := NewPage(time.Second, userAgent)
	p.client = &http.Client{
		Timeout: time.Second,
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			r.URL.Scheme = "http"
			r.URL.Host = strings.TrimPrefix(srv.URL, "http://")
			return http.DefaultTransport.RoundTrip(r)
		}),
	}
	return p
}

func TestPageFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/someuser/status/999", r.URL.Path)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "https://www.google.com", r.Header.Get("Referer"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	p := pageFetcherFor(srv, "test-agent")
	content, err := p.Fetch(context.Background(), mustValidate(t, "https://x.com/someuser/status/999"))
	require.NoError(t, err)
	assert.Equal(t, "page", content.Via)
	assert.Equal(t, "Breaking: moon made of cheese", content.Title)
	assert.False(t, content.FetchedAt.IsZero())
}

func TestPageFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := pageFetcherFor(srv, "")
	_, err := p.Fetch(context.Background(), mustValidate(t, "http://redd.it/abc123"))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "404")
}

func TestPageFetcher_RotatesUserAgent(t *testing.T) {
	p := NewPage(0, "")
	for i := 0; i < 10; i++ {
		ua := p.pickUserAgent()
		assert.Contains(t, browserUserAgents, ua)
	}
	assert.Equal(t, "fixed", NewPage(0, " fixed ").pickUserAgent())
}

type stubFetcher struct {
	name    string
	calls   int
	content Content
	err     error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(_ context.Context, _ link.ValidatedLink) (Content, error) {
	s.calls++
	return s.content, s.err
}

func TestRouter(t *testing.T) {
	page := &stubFetcher{name: "page", content: Content{Via: "page"}}
	reddit := &stubFetcher{name: "reddit", content: Content{Via: "reddit"}}

	r := NewRouter(page)
	r.Handle(link.SiteReddit, reddit)

	got, err := r.Fetch(context.Background(), mustValidate(t, "http://redd.it/abc123"))
	require.NoError(t, err)
	assert.Equal(t, "reddit", got.Via)

	got, err = r.Fetch(context.Background(), mustValidate(t, "https://x.com/i/web/status/555"))
	require.NoError(t, err)
	assert.Equal(t, "page", got.Via, "sites without a fetcher fall back")

	assert.Same(t, reddit, r.For(link.SiteReddit))
	assert.Same(t, page, r.For(link.SiteX))
}

func TestCached(t *testing.T) {
	inner := &stubFetcher{name: "reddit", content: Content{Title: "cached"}}
	c := NewCached(inner, 8, time.Minute)
	vl := mustValidate(t, "http://redd.it/abc123")

	for i := 0; i < 3; i++ {
		got, err := c.Fetch(context.Background(), vl)
		require.NoError(t, err)
		assert.Equal(t, "cached", got.Title)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "reddit", c.Name())
}

func TestCached_DoesNotStoreErrors(t *testing.T) {
	inner := &stubFetcher{name: "page", err: errors.New("boom")}
	c := NewCached(inner, 8, time.Minute)
	vl := mustValidate(t, "http://redd.it/abc123")

	_, err := c.Fetch(context.Background(), vl)
	require.Error(t, err)
	_, err = c.Fetch(context.Background(), vl)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, c.Len())
}
