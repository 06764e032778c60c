package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/newscheck/internal/link"
	"github.com/ppiankov/newscheck/internal/store"
	"github.com/spf13/cobra"
)

var (
	historySince  string
	historySite   string
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent checks",
	Args:  cobra.NoArgs,
	RunE:  historyAction,
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "7d", "time window (e.g. 7d, 48h)")
	historyCmd.Flags().StringVar(&historySite, "site", "", "only show checks for this site (reddit or x)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of checks to show (0 for all)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(historyCmd)
}

func historyAction(cmd *cobra.Command, _ []string) error {
	if historyFormat != "terminal" && historyFormat != "json" {
		return fmt.Errorf("unknown format %q (want terminal or json)", historyFormat)
	}
	if historyLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	sinceDur, err := parseDuration(historySince)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}

	filter := store.CheckFilter{Limit: historyLimit}
	if historySite != "" {
		site, ok := link.ParseSite(historySite)
		if !ok {
			return fmt.Errorf("unknown site %q (want reddit or x)", historySite)
		}
		filter.Site = site.String()
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

	checks, err := db.ListChecks(cmd.Context(), time.Now().Add(-sinceDur), filter)
	if err != nil {
		return fmt.Errorf("list checks: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyFormat == "json" {
		return printHistoryJSON(out, checks)
	}
	if len(checks) == 0 {
		fmt.Fprintln(out, "No checks found.")
		return nil
	}
	printHistory(out, checks, time.Now(), colorEnabled(cfg.Output.Color, out))
	return nil
}

type jsonHistoryEntry struct {
	ID              string    `json:"id"`
	Link            string    `json:"link"`
	Site            string    `json:"site"`
	PostID          string    `json:"post_id"`
	Title           string    `json:"title,omitempty"`
	Claim           string    `json:"claim,omitempty"`
	IsTrue          bool      `json:"is_true"`
	TruthPercentage float64   `json:"truth_percentage"`
	Justification   string    `json:"justification"`
	FetchError      string    `json:"fetch_error,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	ElapsedMS       int64     `json:"elapsed_ms"`
}

func printHistoryJSON(w io.Writer, checks []store.Check) error {
	entries := make([]jsonHistoryEntry, 0, len(checks))
	for _, c := range checks {
		entries = append(entries, jsonHistoryEntry{
			ID:              c.ID,
			Link:            c.Link,
			Site:            c.Site,
			PostID:          c.PostID,
			Title:           c.Title,
			Claim:           c.Claim,
			IsTrue:          c.IsTrue,
			TruthPercentage: c.TruthPercentage,
			Justification:   c.Justification,
			FetchError:      c.FetchError,
			CheckedAt:       c.CheckedAt.UTC(),
			ElapsedMS:       c.Elapsed.Milliseconds(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func printHistory(w io.Writer, checks []store.Check, now time.Time, color bool) {
	for _, c := range checks {
		when := humanize.RelTime(c.CheckedAt, now, "ago", "from now")
		status := "fetched"
		if c.FetchError != "" {
			status = "fetch failed"
		}
		label := fmt.Sprintf("%-6s %s", c.Site, c.PostID)
		if color {
			label = "\033[1m" + label + "\033[0m"
		}
		fmt.Fprintf(w, "%s  %s (%s)\n", label, when, status)
		fmt.Fprintf(w, "  %s\n", c.Link)
		if c.Claim != "" {
			fmt.Fprintf(w, "  claim: %s\n", c.Claim)
		}
		fmt.Fprintf(w, "  verdict: %.0f%%, %s\n\n", c.TruthPercentage, c.Justification)
	}
}
