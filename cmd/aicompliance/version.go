package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/nao1215/aicompliance/internal/model"
	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// readBuildInfo merges ldflags with the VCS stamps of the module build.
// ldflags win; missing values become "unknown", the version "(devel)".
func readBuildInfo() buildInfo {
	info := buildInfo{Version: version, Commit: commit, Date: date, Go: runtime.Version()}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.Date == "":
				info.Date = s.Value
			}
		}
	}

	if info.Version == "" {
		info.Version = "(devel)"
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

func getVersion() string {
	return readBuildInfo().Version
}

// scoringModel summarizes the categories and tier bounds reports are
// computed with, so that stored reports can be matched to a release.
type scoringModel struct {
	MaxScore   int                `json:"max_score"`
	Categories map[string]float64 `json:"categories"`
	Tiers      map[string]float64 `json:"tiers"`
}

func currentScoringModel() scoringModel {
	m := scoringModel{
		MaxScore:   model.MaxScore(),
		Categories: make(map[string]float64, len(model.CategoryOrder)),
		Tiers: map[string]float64{
			model.TierExcellent.String(): model.ExcellentThreshold,
			model.TierGood.String():      model.GoodThreshold,
			model.TierModerate.String():  model.ModerateThreshold,
		},
	}
	for _, key := range model.CategoryOrder {
		m.Categories[string(key)] = key.Info().Max
	}
	return m
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and scoring model information",
		Long: `Print the release, commit and build date of aicompliance together with
the scoring model it uses: the points of every category and the tier
bounds. Scores of reports produced by different scoring models are not
directly comparable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					buildInfo
					Scoring scoringModel `json:"scoring"`
				}{readBuildInfo(), currentScoringModel()})
			}
			printVersion(cmd.OutOrStdout(), readBuildInfo())
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Output JSON")
	return cmd
}

func printVersion(w io.Writer, info buildInfo) {
	fmt.Fprintf(w, "aicompliance version %s\n", info.Version)
	fmt.Fprintf(w, "  commit: %s\n", info.Commit)
	fmt.Fprintf(w, "  built:  %s (%s)\n", info.Date, info.Go)
	fmt.Fprintf(w, "  scoring: %d categories, %d points, tiers at %.0f/%.0f/%.0f%%\n",
		len(model.CategoryOrder), model.MaxScore(),
		model.ModerateThreshold, model.GoodThreshold, model.ExcellentThreshold)
}
