package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/aicompliance/internal/config"
)

func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	flag := cmd.Flags().Lookup("output")
	if flag == nil {
		t.Fatal("expected output flag")
	}
	if flag.Shorthand != "o" {
		t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
	}
	if flag.DefValue != config.DefaultConfigFile {
		t.Errorf("expected default %q, got %q", config.DefaultConfigFile, flag.DefValue)
	}

	force := cmd.Flags().Lookup("force")
	if force == nil || force.Shorthand != "f" {
		t.Fatal("expected force flag with shorthand 'f'")
	}
}

func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates loadable config file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "nested", ".aicompliance.yaml")
		var buf bytes.Buffer
		cmd := NewInitCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", outputPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "aicompliance analyze --config "+outputPath) {
			t.Errorf("expected analyze hint with the path, got %q", buf.String())
		}

		f, err := config.LoadConfigFile(outputPath)
		if err != nil {
			t.Fatalf("template does not load: %v", err)
		}
		if f.Settings.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected maxPages %d, got %d", config.DefaultMaxPages, f.Settings.MaxPages)
		}
		if f.Settings.CrawlDelay != config.DefaultCrawlDelay {
			t.Errorf("expected crawlDelay %v, got %v", config.DefaultCrawlDelay, f.Settings.CrawlDelay)
		}
		if len(f.Defaults.IgnorePatterns) == 0 {
			t.Error("expected default ignore patterns")
		}
		if f.Settings.MinWordCount != 1000 || f.Settings.Format != config.FormatText {
			t.Errorf("unexpected scoring settings %+v", f.Settings)
		}
		if len(f.Sites) != 0 {
			t.Errorf("site examples must stay commented out, got %v", f.Sites)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "existing.yaml")
		if err := os.WriteFile(outputPath, []byte("keep"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath})
		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for existing file")
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "keep" {
			t.Error("existing file was modified")
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "existing.yaml")
		if err := os.WriteFile(outputPath, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath, "-f"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "settings:") {
			t.Error("expected template content")
		}
	})
}
