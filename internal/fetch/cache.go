package fetch

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ppiankov/newscheck/internal/link"
)

// Cached memoizes successful fetches by link for a bounded time.
type Cached struct {
	next  Fetcher
	cache *expirable.LRU[string, Content]
}

// NewCached wraps next with an LRU of size entries that expire after ttl.
func NewCached(next Fetcher, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 256
	}
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, Content](size, nil, ttl),
	}
}

func (c *Cached) Name() string {
	return c.next.Name()
}

func (c *Cached) Fetch(ctx context.Context, vl link.ValidatedLink) (Content, error) {
	if content, ok := c.cache.Get(vl.Link); ok {
		return content, nil
	}
	content, err := c.next.Fetch(ctx, vl)
	if err != nil {
		return Content{}, err
	}
	c.cache.Add(vl.Link, content)
	return content, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}
