// Package store keeps the history of checks in SQLite.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SnippetRunes is the length of the snippet kept for every check.
const SnippetRunes = 200

// ErrNotFound is returned by GetCheck when no check has the given id.
var ErrNotFound = errors.New("check not found")

type Store struct {
	db *sql.DB
}

// Check is one recorded run of the check pipeline.
type Check struct {
	ID              string
	Link            string
	Site            string
	PostID          string
	Title           string
	Claim           string
	Snippet         string
	Text            string
	TextHash        string
	IsTrue          bool
	TruthPercentage float64
	Justification   string
	FetchError      string
	CheckedAt       time.Time
	Elapsed         time.Duration
}

type CheckInput struct {
	ID              string
	Link            string
	Site            string
	PostID          string
	Title           string
	Claim           string
	Text            string
	StoreFullText   bool // when false only the snippet is kept
	IsTrue          bool
	TruthPercentage float64
	Justification   string
	FetchError      string
	CheckedAt       time.Time
	Elapsed         time.Duration
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// the API server shares one store across requests
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCheck records a check. Saving the same id twice replaces the row.
func (s *Store) SaveCheck(ctx context.Context, in CheckInput) (Check, error) {
	if s == nil || s.db == nil {
		return Check{}, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(in.ID) == "" {
		return Check{}, errors.New("id is required")
	}
	if strings.TrimSpace(in.Link) == "" {
		return Check{}, errors.New("link is required")
	}
	if strings.TrimSpace(in.Site) == "" {
		return Check{}, errors.New("site is required")
	}
	if strings.TrimSpace(in.PostID) == "" {
		return Check{}, errors.New("post_id is required")
	}
	if in.CheckedAt.IsZero() {
		return Check{}, errors.New("checked_at is required")
	}
	if in.TruthPercentage < 0 || in.TruthPercentage > 100 {
		return Check{}, fmt.Errorf("truth_percentage %v out of range", in.TruthPercentage)
	}

	snippet := firstNRunes(strings.TrimSpace(in.Text), SnippetRunes)
	hash := textHash(in.Text, in.Link)

	var textVal sql.NullString
	if in.StoreFullText && in.Text != "" {
		textVal = sql.NullString{String: in.Text, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checks (
			id, link, site, post_id, title, claim, snippet, text, text_hash,
			is_true, truth_percentage, justification, fetch_error, checked_at, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			claim = excluded.claim,
			snippet = excluded.snippet,
			text = excluded.text,
			text_hash = excluded.text_hash,
			is_true = excluded.is_true,
			truth_percentage = excluded.truth_percentage,
			justification = excluded.justification,
			fetch_error = excluded.fetch_error,
			checked_at = excluded.checked_at,
			elapsed_ms = excluded.elapsed_ms
	`,
		in.ID,
		in.Link,
		in.Site,
		in.PostID,
		nullString(in.Title),
		nullString(in.Claim),
		snippet,
		textVal,
		hash,
		boolToInt(in.IsTrue),
		in.TruthPercentage,
		in.Justification,
		nullString(in.FetchError),
		formatTime(in.CheckedAt),
		in.Elapsed.Milliseconds(),
	)
	if err != nil {
		return Check{}, fmt.Errorf("insert check: %w", err)
	}

	return s.GetCheck(ctx, in.ID)
}

// GetCheck returns the check with the given id or ErrNotFound.
func (s *Store) GetCheck(ctx context.Context, id string) (Check, error) {
	if s == nil || s.db == nil {
		return Check{}, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.db.QueryRowContext(ctx, selectChecks+" WHERE id = ?", id)
	c, err := scanCheck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Check{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

// CheckFilter holds optional filters for ListChecks.
type CheckFilter struct {
	Site   string // filter by site (e.g. "Reddit")
	PostID string // filter by post id
	Limit  int    // 0 means no limit
}

// ListChecks returns checks made since the given time, newest first.
func (s *Store) ListChecks(ctx context.Context, since time.Time, filters ...CheckFilter) ([]Check, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := selectChecks + " WHERE checked_at >= ?"
	args := []any{formatTime(since)}

	var filter CheckFilter
	if len(filters) > 0 {
		filter = filters[0]
	}
	if filter.Site != "" {
		query += " AND site = ?"
		args = append(args, filter.Site)
	}
	if filter.PostID != "" {
		query += " AND post_id = ?"
		args = append(args, filter.PostID)
	}

	query += " ORDER BY checked_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var checks []Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checks: %w", err)
	}

	return checks, nil
}

// PruneOld deletes checks older than retainDays. Returns the number removed.
func (s *Store) PruneOld(ctx context.Context, retainDays int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if retainDays <= 0 {
		return 0, nil
	}

	cutoff := formatTime(time.Now().AddDate(0, 0, -retainDays))

	res, err := s.db.ExecContext(ctx, "DELETE FROM checks WHERE checked_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune old checks: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// SiteStats holds aggregated check stats for one site.
type SiteStats struct {
	Site        string
	Total       int
	UniquePosts int
	FetchFailed int
	AvgElapsed  time.Duration
	LastChecked time.Time
}

// GetSiteStats returns per-site aggregates for checks since the given time.
func (s *Store) GetSiteStats(ctx context.Context, since time.Time) ([]SiteStats, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT site,
			COUNT(*) AS total,
			COUNT(DISTINCT post_id) AS unique_posts,
			SUM(CASE WHEN fetch_error IS NOT NULL AND fetch_error != '' THEN 1 ELSE 0 END) AS fetch_failed,
			CAST(AVG(elapsed_ms) AS INTEGER) AS avg_elapsed,
			MAX(checked_at) AS last_checked
		FROM checks
		WHERE checked_at >= ?
		GROUP BY site
		ORDER BY site
	`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("get site stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []SiteStats
	for rows.Next() {
		var ss SiteStats
		var avgMS int64
		var lastChecked string
		if err := rows.Scan(&ss.Site, &ss.Total, &ss.UniquePosts, &ss.FetchFailed, &avgMS, &lastChecked); err != nil {
			return nil, fmt.Errorf("scan site stats: %w", err)
		}
		ss.AvgElapsed = time.Duration(avgMS) * time.Millisecond
		ss.LastChecked, err = parseTime(lastChecked)
		if err != nil {
			return nil, fmt.Errorf("parse last_checked: %w", err)
		}
		stats = append(stats, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate site stats: %w", err)
	}

	return stats, nil
}

const selectChecks = `
	SELECT id, link, site, post_id, title, claim, snippet, text, text_hash,
		is_true, truth_percentage, justification, fetch_error, checked_at, elapsed_ms
	FROM checks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheck(scanner rowScanner) (Check, error) {
	var (
		c                                 Check
		titleVal, claimVal, textVal, fErr sql.NullString
		isTrue                            int
		checkedAt                         string
		elapsedMS                         int64
	)

	if err := scanner.Scan(
		&c.ID,
		&c.Link,
		&c.Site,
		&c.PostID,
		&titleVal,
		&claimVal,
		&c.Snippet,
		&textVal,
		&c.TextHash,
		&isTrue,
		&c.TruthPercentage,
		&c.Justification,
		&fErr,
		&checkedAt,
		&elapsedMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Check{}, err
		}
		return Check{}, fmt.Errorf("scan check: %w", err)
	}

	c.Title = titleVal.String
	c.Claim = claimVal.String
	c.Text = textVal.String
	c.FetchError = fErr.String
	c.IsTrue = isTrue != 0
	c.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	var err error
	c.CheckedAt, err = parseTime(checkedAt)
	if err != nil {
		return Check{}, fmt.Errorf("parse checked_at: %w", err)
	}

	return c, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

// textHash fingerprints the post text, falling back to the link when nothing
// was fetched.
func textHash(text, link string) string {
	if text == "" {
		text = link
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func firstNRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
