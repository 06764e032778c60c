// Package check runs a link through validation, fetching, claim extraction
// and recording.
package check

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/newscheck/internal/claim"
	"github.com/ppiankov/newscheck/internal/fetch"
	"github.com/ppiankov/newscheck/internal/link"
	"github.com/ppiankov/newscheck/internal/logutil"
	"github.com/ppiankov/newscheck/internal/privacy"
	"github.com/ppiankov/newscheck/internal/store"
	"github.com/ppiankov/newscheck/internal/verdict"
)

// Saver persists finished checks.
type Saver interface {
	SaveCheck(ctx context.Context, in store.CheckInput) (store.Check, error)
}

// Options tweak a single run.
type Options struct {
	SkipFetch bool // validate only, do not download the post
	SkipStore bool // do not record the check
}

// Result is the outcome of one check.
type Result struct {
	ID         string
	Link       link.ValidatedLink
	Content    *fetch.Content // nil when fetching was skipped or failed
	FetchError string
	Claim      claim.Claim
	Verdict    verdict.Verdict
	CheckedAt  time.Time
	Elapsed    time.Duration
	Stored     bool
}

// Fetched reports whether post content is available.
func (r Result) Fetched() bool {
	return r.Content != nil
}

// Checker wires the pipeline stages together. Fetcher, Store and Redactor
// are optional.
type Checker struct {
	Fetcher       fetch.Fetcher
	Store         Saver
	Redactor      *privacy.Redactor
	StoreFullText bool

	now   func() time.Time
	newID func() string
}

// Run checks raw. Validation errors are returned unchanged so callers can
// inspect them with errors.As. A failed fetch is recorded in the result.
func (c *Checker) Run(ctx context.Context, raw string, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := c.clock()
	vl, err := link.Validate(raw)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ID:        c.id(),
		Link:      vl,
		Verdict:   verdict.Undetermined(),
		CheckedAt: start.UTC(),
	}

	if !opts.SkipFetch && c.Fetcher != nil {
		content, err := c.Fetcher.Fetch(ctx, vl)
		switch {
		case err == nil:
			res.Content = &content
			res.Claim = claim.Extract(content.Title, content.Body)
		case ctx.Err() != nil:
			return Result{}, fmt.Errorf("check %s: %w", vl.Link, ctx.Err())
		default:
			res.FetchError = err.Error()
			logutil.Debugf("fetch %s via %s: %v", vl.Link, c.Fetcher.Name(), err)
		}
	}

	res.Elapsed = c.clock().Sub(start)

	if c.Store != nil && !opts.SkipStore {
		if _, err := c.Store.SaveCheck(ctx, c.record(res)); err != nil {
			logutil.Warnf("save check %s: %v", res.ID, err)
		} else {
			res.Stored = true
		}
	}

	return res, nil
}

func (c *Checker) record(res Result) store.CheckInput {
	in := store.CheckInput{
		ID:              res.ID,
		Link:            res.Link.Link,
		Site:            res.Link.Site.String(),
		PostID:          res.Link.PostID,
		Claim:           c.Redactor.Apply(res.Claim.Text),
		StoreFullText:   c.StoreFullText,
		IsTrue:          res.Verdict.IsTrue,
		TruthPercentage: res.Verdict.TruthPercentage,
		Justification:   res.Verdict.Justification,
		FetchError:      res.FetchError,
		CheckedAt:       res.CheckedAt,
		Elapsed:         res.Elapsed,
	}
	if res.Content != nil {
		in.Title = c.Redactor.Apply(res.Content.Title)
		in.Text = c.Redactor.Apply(strings.TrimSpace(res.Content.Body))
	}
	return in
}

func (c *Checker) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Checker) id() string {
	if c.newID != nil {
		return c.newID()
	}
	return uuid.NewString()
}

// IsValidationError reports whether err came from link validation.
func IsValidationError(err error) bool {
	return errors.Is(err, link.ErrInvalidLink)
}
