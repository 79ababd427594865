package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/nao1215/aicompliance/internal/database"
	"github.com/nao1215/aicompliance/internal/model"
	"github.com/nao1215/aicompliance/internal/report"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// Score directions between two reports.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// defaultHistoryLimit caps the history listing.
const defaultHistoryLimit = 20

var (
	// errHostRequired is returned when history is called without a host.
	errHostRequired = errors.New("host is required (use --list to see analyzed sites)")

	// errNotEnoughReports is returned by --compare with fewer than two reports.
	errNotEnoughReports = errors.New("at least 2 reports are required for comparison")
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [HOST]",
		Short: "Show stored reports and compare runs",
		Long: `History reads the reports stored by previous analyze runs.

Examples:
  # List every analyzed site
  aicompliance history --list

  # Show the reports of a site
  aicompliance history example.com

  # Only reports of the last week
  aicompliance history --since 7d example.com

  # Show a stored report
  aicompliance history --id 3

  # Compare the latest report with the previous one
  aicompliance history --compare example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List every analyzed site")
	cmd.Flags().Int64("id", 0, "Show the stored report with this ID")
	cmd.Flags().String("since", "", "Only reports newer than this age (e.g. 7d, 48h)")
	cmd.Flags().Int("limit", defaultHistoryLimit, "Maximum number of reports listed (0 lists all)")
	cmd.Flags().Bool("json", false, "Output JSON")
	cmd.Flags().Bool("compare", false, "Compare the latest report with the previous one")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	_ = cmd.Flags().MarkHidden("db-dir") //nolint:errcheck // flag exists

	return cmd
}

// historyOptions are the parsed flags of the history command.
type historyOptions struct {
	host    string
	list    bool
	id      int64
	since   time.Time
	limit   int
	json    bool
	compare bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryOptions(cmd, args, time.Now())
	if err != nil {
		return err
	}
	// Validate before opening the database.
	if opts.host == "" && !opts.list && opts.id == 0 {
		return errHostRequired
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	db, err := database.Open(dbDir, database.Options{EnableWAL: true, Logger: newLogger(cmd)})
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No reports stored yet. Run 'aicompliance analyze <url>' first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case opts.list:
		return listSites(ctx, out, db, opts.json)
	case opts.id > 0:
		return showReport(ctx, out, db, opts.id, opts.json)
	case opts.compare:
		return compareLatest(ctx, out, db, opts.host, opts.json)
	default:
		return listHistory(ctx, out, db, opts)
	}
}

func parseHistoryOptions(cmd *cobra.Command, args []string, now time.Time) (historyOptions, error) {
	var opts historyOptions
	var err error
	flags := cmd.Flags()

	if len(args) > 0 {
		opts.host = database.HostOf(args[0])
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.id, err = flags.GetInt64("id"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.compare, err = flags.GetBool("compare"); err != nil {
		return opts, err
	}

	since, err := flags.GetString("since")
	if err != nil {
		return opts, err
	}
	if since != "" {
		age, err := parseAge(since)
		if err != nil {
			return opts, fmt.Errorf("invalid --since %q: %w", since, err)
		}
		opts.since = now.Add(-age)
	}
	return opts, nil
}

// parseAge parses a Go duration or a number of days such as "7d".
func parseAge(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, errors.New("age must not be negative")
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("age must not be negative")
	}
	return d, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listSites prints every analyzed host.
func listSites(ctx context.Context, w io.Writer, db *database.ReportDB, asJSON bool) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		if sites == nil {
			sites = []database.SiteSummary{}
		}
		return writeJSON(w, sites)
	}
	if len(sites) == 0 {
		fmt.Fprintln(w, "No analyzed sites found.")
		return nil
	}

	tbl := table.New("Host", "Reports", "Last Analyzed").WithWriter(w)
	for _, s := range sites {
		tbl.AddRow(s.Host, s.Reports, s.LastScanned.Format("2006-01-02 15:04:05"))
	}
	tbl.Print()
	return nil
}

// listHistory prints the stored reports of one host.
func listHistory(ctx context.Context, w io.Writer, db *database.ReportDB, opts historyOptions) error {
	entries, err := db.History(ctx, opts.host, opts.since, opts.limit)
	if err != nil {
		return err
	}
	if opts.json {
		if entries == nil {
			entries = []database.HistoryEntry{}
		}
		return writeJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(w, "No reports found for %s\n", opts.host)
		return nil
	}

	fmt.Fprintf(w, "Reports for %s (%d):\n\n", opts.host, len(entries))
	tbl := table.New("ID", "Date", "Score", "Level", "Pages").WithWriter(w)
	for _, e := range entries {
		tbl.AddRow(e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.1f%%", e.Percentage), e.Tier.String(), e.PagesAnalyzed)
	}
	tbl.Print()
	return nil
}

// showReport prints one stored report.
func showReport(ctx context.Context, w io.Writer, db *database.ReportDB, id int64, asJSON bool) error {
	rep, err := db.ReportByID(ctx, id)
	if err != nil {
		return err
	}
	if rep == nil {
		return fmt.Errorf("report with ID %d not found", id)
	}

	format := report.FormatText
	if asJSON {
		format = report.FormatJSON
	}
	rw, err := report.New(format, w)
	if err != nil {
		return err
	}
	_, err = rw.Write(rep)
	return err
}

// Comparison holds the difference between two reports of a site.
type Comparison struct {
	Host            string          `json:"host"`
	PreviousDate    time.Time       `json:"previous_date"`
	CurrentDate     time.Time       `json:"current_date"`
	PreviousPercent float64         `json:"previous_percentage"`
	CurrentPercent  float64         `json:"current_percentage"`
	Delta           float64         `json:"delta"`
	Direction       string          `json:"direction"`
	PreviousTier    model.Tier      `json:"previous_level"`
	CurrentTier     model.Tier      `json:"current_level"`
	Categories      []CategoryDelta `json:"categories"`
}

// CategoryDelta is the score change of one category.
type CategoryDelta struct {
	Key      model.CategoryKey `json:"key"`
	Name     string            `json:"name"`
	Previous float64           `json:"previous"`
	Current  float64           `json:"current"`
	Delta    float64           `json:"delta"`
}

// compareReports compares two reports category by category.
func compareReports(host string, previous, current *model.ComplianceReport) *Comparison {
	c := &Comparison{
		Host:            host,
		PreviousDate:    previous.GeneratedAt,
		CurrentDate:     current.GeneratedAt,
		PreviousPercent: model.Round1(previous.Percentage),
		CurrentPercent:  model.Round1(current.Percentage),
		Delta:           model.Round1(current.Percentage - previous.Percentage),
		PreviousTier:    previous.Tier,
		CurrentTier:     current.Tier,
	}
	c.Direction = direction(c.Delta)

	for _, key := range model.CategoryOrder {
		prev, _ := previous.Category(key)
		cur, _ := current.Category(key)
		c.Categories = append(c.Categories, CategoryDelta{
			Key:      key,
			Name:     key.Info().Name,
			Previous: model.Round1(prev.Score),
			Current:  model.Round1(cur.Score),
			Delta:    model.Round1(cur.Score - prev.Score),
		})
	}
	return c
}

func direction(delta float64) string {
	switch {
	case math.Abs(delta) < 0.05:
		return directionUnchanged
	case delta > 0:
		return directionImproved
	default:
		return directionWorsened
	}
}

// compareLatest compares the two newest reports of host.
func compareLatest(ctx context.Context, w io.Writer, db *database.ReportDB, host string, asJSON bool) error {
	entries, err := db.History(ctx, host, time.Time{}, 2)
	if err != nil {
		return err
	}
	if len(entries) < 2 {
		return fmt.Errorf("%w (found %d for %s)", errNotEnoughReports, len(entries), host)
	}

	current, err := db.ReportByID(ctx, entries[0].ID)
	if err != nil {
		return err
	}
	previous, err := db.ReportByID(ctx, entries[1].ID)
	if err != nil {
		return err
	}
	if current == nil || previous == nil {
		return fmt.Errorf("%w for %s", errNotEnoughReports, host)
	}

	cmp := compareReports(host, previous, current)
	if asJSON {
		return writeJSON(w, cmp)
	}

	fmt.Fprintf(w, "Comparison for %s\n", host)
	fmt.Fprintf(w, "  previous: %s  %.1f%% %s\n", cmp.PreviousDate.Format("2006-01-02 15:04:05"), cmp.PreviousPercent, cmp.PreviousTier.Label())
	fmt.Fprintf(w, "  current:  %s  %.1f%% %s\n", cmp.CurrentDate.Format("2006-01-02 15:04:05"), cmp.CurrentPercent, cmp.CurrentTier.Label())
	fmt.Fprintf(w, "  change:   %+.1f points (%s)\n\n", cmp.Delta, cmp.Direction)

	tbl := table.New("Category", "Previous", "Current", "Delta").WithWriter(w)
	for _, d := range cmp.Categories {
		tbl.AddRow(d.Name, fmt.Sprintf("%.1f", d.Previous), fmt.Sprintf("%.1f", d.Current), fmt.Sprintf("%+.1f", d.Delta))
	}
	tbl.Print()
	return nil
}
