package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/newscheck/internal/store"
	"github.com/spf13/cobra"
)

var (
	statsSince  string
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show check counts and fetch health per site",
	Args:  cobra.NoArgs,
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "30d", "time window (e.g. 7d, 48h)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(statsCmd)
}

func statsAction(cmd *cobra.Command, _ []string) error {
	if statsFormat != "terminal" && statsFormat != "json" {
		return fmt.Errorf("unknown format %q (want terminal or json)", statsFormat)
	}
	sinceDur, err := parseDuration(statsSince)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	stats, err := db.GetSiteStats(cmd.Context(), time.Now().Add(-sinceDur))
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsFormat == "json" {
		return printStatsJSON(out, stats, sinceDur)
	}
	if len(stats) == 0 {
		fmt.Fprintln(out, "No checks recorded. Run 'newscheck check <link>' first.")
		return nil
	}
	printStats(out, stats, sinceDur, time.Now())
	return nil
}

type jsonStatsOutput struct {
	Window string          `json:"window"`
	Sites  []jsonSiteStats `json:"sites"`
	Total  int             `json:"total"`
}

type jsonSiteStats struct {
	Site        string    `json:"site"`
	Total       int       `json:"total"`
	UniquePosts int       `json:"unique_posts"`
	FetchFailed int       `json:"fetch_failed"`
	FetchRate   float64   `json:"fetch_success_pct"`
	AvgElapsed  int64     `json:"avg_elapsed_ms"`
	LastChecked time.Time `json:"last_checked"`
}

func printStatsJSON(w io.Writer, stats []store.SiteStats, since time.Duration) error {
	out := jsonStatsOutput{
		Window: formatStatsDuration(since),
		Sites:  make([]jsonSiteStats, 0, len(stats)),
	}
	for _, ss := range stats {
		out.Sites = append(out.Sites, jsonSiteStats{
			Site:        ss.Site,
			Total:       ss.Total,
			UniquePosts: ss.UniquePosts,
			FetchFailed: ss.FetchFailed,
			FetchRate:   fetchSuccessPct(ss),
			AvgElapsed:  ss.AvgElapsed.Milliseconds(),
			LastChecked: ss.LastChecked.UTC(),
		})
		out.Total += ss.Total
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printStats(w io.Writer, stats []store.SiteStats, since time.Duration, now time.Time) {
	total := 0
	failed := 0
	for _, ss := range stats {
		total += ss.Total
		failed += ss.FetchFailed
	}

	fmt.Fprintf(w, "newscheck stats, %s: %d checks across %d sites\n\n", formatStatsDuration(since), total, len(stats))

	sorted := make([]store.SiteStats, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Site < sorted[j].Site
	})

	fmt.Fprintln(w, "--- Checks by Site ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-8s  %6s  %5s  %7s  %8s  %s\n", "Site", "Checks", "Posts", "Fetched", "Avg time", "Last check")
	for _, ss := range sorted {
		fmt.Fprintf(w, "  %-8s  %6d  %5d  %6.0f%%  %8s  %s\n",
			ss.Site, ss.Total, ss.UniquePosts, fetchSuccessPct(ss),
			ss.AvgElapsed.Round(time.Millisecond), humanize.RelTime(ss.LastChecked, now, "ago", "from now"))
	}
	fmt.Fprintln(w)

	if failed > 0 {
		fmt.Fprintf(w, "--- Fetch Failures ---\n\n")
		fmt.Fprintf(w, "  %d of %d checks (%.1f%%) could not download the post\n\n", failed, total, pct(failed, total))
	}
}

func fetchSuccessPct(ss store.SiteStats) float64 {
	if ss.Total == 0 {
		return 0
	}
	return pct(ss.Total-ss.FetchFailed, ss.Total)
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// parseDuration handles both Go durations and "Nd" day notation.
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatStatsDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%dh", hours)
}
