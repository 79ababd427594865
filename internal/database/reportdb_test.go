package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/aicompliance/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *ReportDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newReport(website string, pct float64, at time.Time) *model.ComplianceReport {
	return &model.ComplianceReport{
		Website:       website,
		PagesAnalyzed: 3,
		Categories: []model.CategoryResult{
			{Key: model.CategoryContent, Name: "Content Quality", Score: 40, Max: 80},
		},
		TotalScore:      pct * 2.3,
		MaxScore:        230,
		Percentage:      pct,
		Tier:            model.TierFor(pct),
		Recommendation:  model.TierFor(pct).Recommendation(),
		PriorityActions: []string{},
		GeneratedAt:     at,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"https://Example.com/path", "example.com"},
		{"http://example.com:8080", "example.com:8080"},
		{"example.com", "example.com"},
		{"EXAMPLE.com/about", "example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := HostOf(tt.input); got != tt.want {
				t.Errorf("HostOf(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := db.SaveReport(ctx, newReport("https://example.com", 65.2, at))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}

	t.Run("by id", func(t *testing.T) {
		got, err := db.ReportByID(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("expected report")
		}
		if got.Website != "https://example.com" || got.Tier != model.TierGood {
			t.Errorf("unexpected report %+v", got)
		}
		if c, ok := got.Category(model.CategoryContent); !ok || c.Score != 40 {
			t.Errorf("expected content category to survive, got %+v", got.Categories)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		got, err := db.ReportByID(ctx, id+100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil report, got %+v", got)
		}
	})

	t.Run("nil report", func(t *testing.T) {
		if _, err := db.SaveReport(ctx, nil); !errors.Is(err, ErrNilReport) {
			t.Errorf("expected ErrNilReport, got %v", err)
		}
	})
}

func TestLatestReport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, pct := range []float64{30, 50, 85} {
		if _, err := db.SaveReport(ctx, newReport("https://example.com/", pct, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}
	if _, err := db.SaveReport(ctx, newReport("https://other.org", 10, base.Add(5*time.Hour))); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	got, err := db.LatestReport(ctx, "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Percentage != 85 {
		t.Fatalf("expected latest report at 85%%, got %+v", got)
	}

	none, err := db.LatestReport(ctx, "unknown.net")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for unknown host, got %+v", none)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 4 {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		if _, err := db.SaveReport(ctx, newReport("https://example.com", float64(20*i), at)); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		entries, err := db.History(ctx, "https://example.com", time.Time{}, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(entries))
		}
		if entries[0].Percentage != 60 || entries[3].Percentage != 0 {
			t.Errorf("unexpected order: %+v", entries)
		}
		if !entries[0].CreatedAt.Equal(base.Add(72 * time.Hour)) {
			t.Errorf("unexpected created_at %v", entries[0].CreatedAt)
		}
		if entries[0].Tier != model.TierGood {
			t.Errorf("expected GOOD, got %v", entries[0].Tier)
		}
	})

	t.Run("since filter", func(t *testing.T) {
		entries, err := db.History(ctx, "example.com", base.Add(36*time.Hour), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := db.History(ctx, "example.com", time.Time{}, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected 1 entry, got %d", len(entries))
		}
	})
}

func TestListSites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	for _, site := range []string{"https://b.example", "https://a.example", "https://b.example/x"} {
		if _, err := db.SaveReport(ctx, newReport(site, 50, at)); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	sites, err := db.ListSites(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(sites))
	}
	if sites[0].Host != "a.example" || sites[1].Host != "b.example" || sites[1].Reports != 2 {
		t.Errorf("unexpected sites %+v", sites)
	}
	if !sites[0].LastScanned.Equal(at) {
		t.Errorf("unexpected last scanned %v", sites[0].LastScanned)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-01-02 03:04:05.678", time.Date(2025, 1, 2, 3, 4, 5, 678_000_000, time.UTC)},
		{"2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
