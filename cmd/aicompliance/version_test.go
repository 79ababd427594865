package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"aicompliance version", "commit:", "built:", "scoring: 6 categories, 230 points, tiers at 40/60/80%"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output %q", want, output)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--json"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Version string `json:"version"`
			Scoring struct {
				MaxScore   int                `json:"max_score"`
				Categories map[string]float64 `json:"categories"`
				Tiers      map[string]float64 `json:"tiers"`
			} `json:"scoring"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if got.Version == "" {
			t.Error("expected version")
		}
		if got.Scoring.MaxScore != 230 || len(got.Scoring.Categories) != 6 {
			t.Errorf("unexpected scoring model %+v", got.Scoring)
		}
		if got.Scoring.Categories["content_quality"] != 80 || got.Scoring.Tiers["EXCELLENT"] != 80 {
			t.Errorf("unexpected scoring model %+v", got.Scoring)
		}
	})
}

func TestReadBuildInfo(t *testing.T) {
	t.Parallel()

	info := readBuildInfo()
	if info.Version == "" || info.Commit == "" || info.Date == "" || info.Go == "" {
		t.Errorf("expected every field to be set, got %+v", info)
	}
	if len(info.Commit) > 7 {
		t.Errorf("expected short commit, got %q", info.Commit)
	}
	if getVersion() != info.Version {
		t.Errorf("getVersion() = %q, want %q", getVersion(), info.Version)
	}
}
