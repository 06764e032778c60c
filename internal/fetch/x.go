package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/fields"
	"github.com/michimani/gotwi/resources"
	"github.com/michimani/gotwi/tweet/tweetlookup"
	"github.com/michimani/gotwi/tweet/tweetlookup/types"
	"github.com/ppiankov/newscheck/internal/link"
)

const xSourceName = "x"

// XCredentials are the app-only credentials used to obtain a bearer token.
type XCredentials struct {
	APIKey       string
	APIKeySecret string
}

// Configured reports whether both halves of the credentials are present.
func (c XCredentials) Configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APIKeySecret) != ""
}

type tweetLookupFunc func(ctx context.Context, id string) (*types.GetOutput, error)

// XFetcher reads a post through the X API v2 tweet lookup endpoint.
// The API client, and with it the bearer token, is created on first Fetch.
type XFetcher struct {
	timeout   time.Duration
	creds     XCredentials
	transport http.RoundTripper // nil uses http.DefaultTransport

	mu     sync.Mutex
	lookup tweetLookupFunc
	now    func() time.Time
}

// NewX creates an X fetcher authenticated with an OAuth2 bearer token.
func NewX(timeout time.Duration, creds XCredentials) (*XFetcher, error) {
	if !creds.Configured() {
		return nil, errors.New("x: api key and secret are required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &XFetcher{timeout: timeout, creds: creds, now: time.Now}, nil
}

// client returns the tweet lookup, creating the API client if needed.
// A failed attempt is retried on the next call.
func (xf *XFetcher) client() (tweetLookupFunc, error) {
	xf.mu.Lock()
	defer xf.mu.Unlock()
	if xf.lookup != nil {
		return xf.lookup, nil
	}

	client, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           &http.Client{Timeout: xf.timeout, Transport: xf.transport},
		AuthenticationMethod: gotwi.AuthenMethodOAuth2BearerToken,
		APIKey:               xf.creds.APIKey,
		APIKeySecret:         xf.creds.APIKeySecret,
	})
	if err != nil {
		return nil, fmt.Errorf("create X client: %w", summarizeXError(err))
	}
	if !client.IsReady() {
		return nil, errors.New("x: client not ready")
	}

	xf.lookup = func(ctx context.Context, id string) (*types.GetOutput, error) {
		return tweetlookup.Get(ctx, client, &types.GetInput{
			ID:          id,
			TweetFields: fields.TweetFieldList{fields.TweetFieldCreatedAt, fields.TweetFieldAuthorID},
		})
	}
	return xf.lookup, nil
}

func (xf *XFetcher) Name() string {
	return xSourceName
}

func (xf *XFetcher) Fetch(ctx context.Context, vl link.ValidatedLink) (Content, error) {
	if vl.Site != link.SiteX {
		return Content{}, fmt.Errorf("x: cannot fetch %s link", vl.Site)
	}
	if vl.PostID == "" {
		return Content{}, errors.New("x: post id is required")
	}

	lookup, err := xf.client()
	if err != nil {
		return Content{}, err
	}

	out, err := lookup(ctx, vl.PostID)
	if err != nil {
		return Content{}, fmt.Errorf("lookup post %s: %w", vl.PostID, summarizeXError(err))
	}
	if out == nil || out.Data.Text == nil {
		if out != nil && len(out.Errors) > 0 {
			return Content{}, fmt.Errorf("lookup post %s: %w", vl.PostID, partialError(out.Errors))
		}
		return Content{}, fmt.Errorf("lookup post %s: empty response", vl.PostID)
	}

	text := strings.TrimSpace(gotwi.StringValue(out.Data.Text))
	author := vl.Community
	if author == "" {
		author = gotwi.StringValue(out.Data.AuthorID)
	}

	return Content{
		Title:     firstLine(text),
		Body:      text,
		Author:    author,
		FetchedAt: xf.now().UTC(),
		Via:       xSourceName,
	}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func partialError(partials []resources.PartialError) error {
	msgs := make([]string, 0, len(partials))
	for _, pe := range partials {
		switch {
		case pe.Detail != nil && *pe.Detail != "":
			msgs = append(msgs, *pe.Detail)
		case pe.Title != nil && *pe.Title != "":
			msgs = append(msgs, *pe.Title)
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "unknown error")
	}
	return errors.New(strings.Join(msgs, "; "))
}

func summarizeXError(err error) error {
	var gwErr *gotwi.GotwiError
	if !errors.As(err, &gwErr) || gwErr == nil {
		return err
	}

	parts := make([]string, 0, 3)
	if gwErr.Title != "" {
		parts = append(parts, gwErr.Title)
	}
	if gwErr.Detail != "" {
		parts = append(parts, gwErr.Detail)
	}
	for _, apiErr := range gwErr.APIErrors {
		if apiErr.Message != "" {
			parts = append(parts, apiErr.Message)
		}
	}
	if len(parts) == 0 {
		return err
	}
	return errors.New(strings.Join(parts, "; "))
}
