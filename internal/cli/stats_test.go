package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/newscheck/internal/store"
)

func TestPrintStats(t *testing.T) {
	now := time.Now()
	stats := []store.SiteStats{
		{Site: "X", Total: 4, UniquePosts: 3, FetchFailed: 0, AvgElapsed: 300 * time.Millisecond, LastChecked: now.Add(-time.Hour)},
		{Site: "Reddit", Total: 10, UniquePosts: 7, FetchFailed: 2, AvgElapsed: 1200 * time.Millisecond, LastChecked: now.Add(-2 * time.Minute)},
	}

	var buf bytes.Buffer
	printStats(&buf, stats, 30*24*time.Hour, now)
	output := buf.String()

	if !strings.Contains(output, "30 days: 14 checks across 2 sites") {
		t.Errorf("header missing totals, got:\n%s", output)
	}
	if !strings.Contains(output, "Checks by Site") {
		t.Error("missing checks by site section")
	}
	if strings.Index(output, "\n  Reddit ") > strings.Index(output, "\n  X ") {
		t.Errorf("sites should be sorted by checks descending:\n%s", output)
	}
	if !strings.Contains(output, "80%") {
		t.Errorf("missing reddit fetch rate, got:\n%s", output)
	}
	if !strings.Contains(output, "2 minutes ago") {
		t.Errorf("missing relative last check time, got:\n%s", output)
	}
	if !strings.Contains(output, "2 of 14 checks") {
		t.Errorf("missing fetch failure summary, got:\n%s", output)
	}
}

func TestPrintStats_NoFailures(t *testing.T) {
	now := time.Now()
	stats := []store.SiteStats{{Site: "X", Total: 3, UniquePosts: 3, LastChecked: now}}

	var buf bytes.Buffer
	printStats(&buf, stats, 48*time.Hour, now)
	if strings.Contains(buf.String(), "Fetch Failures") {
		t.Errorf("unexpected failure section:\n%s", buf.String())
	}
}

func TestPrintStatsJSON(t *testing.T) {
	stats := []store.SiteStats{
		{Site: "Reddit", Total: 10, UniquePosts: 7, FetchFailed: 5, AvgElapsed: 1500 * time.Millisecond, LastChecked: time.Now()},
		{Site: "X", Total: 2, UniquePosts: 2},
	}

	var buf bytes.Buffer
	if err := printStatsJSON(&buf, stats, 7*24*time.Hour); err != nil {
		t.Fatalf("print stats json: %v", err)
	}

	var got jsonStatsOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("parse json: %v\noutput:\n%s", err, buf.String())
	}
	if got.Window != "7 days" || got.Total != 12 || len(got.Sites) != 2 {
		t.Fatalf("unexpected output: %+v", got)
	}
	reddit := got.Sites[0]
	if reddit.FetchRate != 50 || reddit.AvgElapsed != 1500 || reddit.UniquePosts != 7 {
		t.Errorf("unexpected reddit stats: %+v", reddit)
	}
}

func TestStatsCommand_Empty(t *testing.T) {
	dir := testConfigDir(t)
	out, _, err := runCLI(t, "stats", "--config", dir)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "No checks recorded") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"48h", 48 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"bad", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.input)
		if tt.err && err == nil {
			t.Errorf("parseDuration(%q) expected error", tt.input)
			continue
		}
		if !tt.err && err != nil {
			t.Errorf("parseDuration(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFetchSuccessPct(t *testing.T) {
	tests := []struct {
		ss   store.SiteStats
		want float64
	}{
		{store.SiteStats{Total: 10, FetchFailed: 5}, 50},
		{store.SiteStats{Total: 0}, 0},
		{store.SiteStats{Total: 4}, 100},
	}
	for _, tt := range tests {
		if got := fetchSuccessPct(tt.ss); got != tt.want {
			t.Errorf("fetchSuccessPct(%+v) = %v, want %v", tt.ss, got, tt.want)
		}
	}
}
