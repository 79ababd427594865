package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/aicompliance/internal/log"
	"github.com/nao1215/aicompliance/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "reports.db"

// createdAtFormat sorts lexically in chronological order.
const createdAtFormat = "2006-01-02 15:04:05.000"

// ReportDB stores compliance reports for historical comparison.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	logger *slog.Logger
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB inside dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	rdb := &ReportDB{db: db, dbPath: dbPath, logger: logger}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Debug("opened report database", "path", dbPath)
	return rdb, nil
}

// Path returns the database file path.
func (rdb *ReportDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ReportDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		website TEXT NOT NULL,
		host TEXT NOT NULL,
		percentage REAL NOT NULL,
		tier TEXT NOT NULL,
		pages_analyzed INTEGER NOT NULL,
		report_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_host ON reports(host);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// HostOf returns the lowercased host of a website URL. Inputs without a
// scheme are treated as bare hosts.
func HostOf(website string) string {
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(website))
	}
	return strings.ToLower(u.Host)
}

// SaveReport stores a report and returns its ID.
func (rdb *ReportDB) SaveReport(ctx context.Context, report *model.ComplianceReport) (int64, error) {
	if report == nil {
		return 0, ErrNilReport
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	created := report.GeneratedAt
	if created.IsZero() {
		created = time.Now()
	}

	query := `
	INSERT INTO reports (website, host, percentage, tier, pages_analyzed, report_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := rdb.db.ExecContext(ctx, query,
		report.Website,
		HostOf(report.Website),
		model.Round1(report.Percentage),
		report.Tier.String(),
		report.PagesAnalyzed,
		string(reportJSON),
		created.UTC().Format(createdAtFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}
	rdb.logger.Debug("saved report", "id", id, "website", report.Website)
	return id, nil
}

// LatestReport returns the most recent report for host, or nil when none
// exists.
func (rdb *ReportDB) LatestReport(ctx context.Context, host string) (*model.ComplianceReport, error) {
	query := `
	SELECT report_json FROM reports
	WHERE host = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`
	return rdb.queryReport(ctx, query, HostOf(host))
}

// ReportByID returns the report with the given ID, or nil when none exists.
func (rdb *ReportDB) ReportByID(ctx context.Context, id int64) (*model.ComplianceReport, error) {
	return rdb.queryReport(ctx, `SELECT report_json FROM reports WHERE id = ?`, id)
}

func (rdb *ReportDB) queryReport(ctx context.Context, query string, args ...any) (*model.ComplianceReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.ComplianceReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// HistoryEntry contains summary information about a stored report.
// This is used for displaying history without loading the full report.
type HistoryEntry struct {
	ID            int64      `json:"id"`
	Website       string     `json:"website"`
	Host          string     `json:"host"`
	Percentage    float64    `json:"percentage"`
	Tier          model.Tier `json:"compliance_level"`
	PagesAnalyzed int        `json:"pages_analyzed"`
	CreatedAt     time.Time  `json:"created_at"`
}

// History returns the reports stored for host, newest first. A zero since
// disables the time filter and a non-positive limit returns every entry.
func (rdb *ReportDB) History(ctx context.Context, host string, since time.Time, limit int) ([]HistoryEntry, error) {
	query := `
	SELECT id, website, host, percentage, tier, pages_analyzed, created_at
	FROM reports
	WHERE host = ?
	`
	args := []any{HostOf(host)}

	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC().Format(createdAtFormat))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var tier, created string
		if err := rows.Scan(&entry.ID, &entry.Website, &entry.Host, &entry.Percentage, &tier, &entry.PagesAnalyzed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if entry.Tier, err = model.ParseTier(tier); err != nil {
			rdb.logger.Debug("skipping history entry with unknown tier", "id", entry.ID, "tier", tier)
			continue
		}
		entry.CreatedAt = parseTimestamp(created)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SiteSummary is one row of ListSites.
type SiteSummary struct {
	Host        string    `json:"host"`
	Reports     int       `json:"reports"`
	LastScanned time.Time `json:"last_analyzed"`
}

// ListSites returns every host with at least one stored report.
func (rdb *ReportDB) ListSites(ctx context.Context) ([]SiteSummary, error) {
	query := `
	SELECT host, COUNT(*), MAX(created_at)
	FROM reports
	GROUP BY host
	ORDER BY host
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []SiteSummary
	for rows.Next() {
		var site SiteSummary
		var last string
		if err := rows.Scan(&site.Host, &site.Reports, &last); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		site.LastScanned = parseTimestamp(last)
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	createdAtFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp parses s as UTC. Unknown formats yield the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
