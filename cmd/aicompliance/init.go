package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/aicompliance.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration for analyze",
		Long: `Init writes ` + config.DefaultConfigFile + `, a commented configuration file read by the
analyze command.

The file sets how many pages of a site are sampled, how politely they are
fetched and which content targets earn full points in the content quality
category. Per-site entries hold the cookies and headers needed to reach
pages behind a login or a consent wall, and URL patterns that keep the
sample on representative content.

Examples:
  # Write .aicompliance.yaml to the current directory
  aicompliance init

  # Keep a configuration per project
  aicompliance init -o configs/shop.yaml
  aicompliance analyze --config configs/shop.yaml shop.example.com

  # Replace an existing file
  aicompliance init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Path of the configuration file to write")
	cmd.Flags().BoolP("force", "f", false,
		"Replace an existing file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/aicompliance.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", outputPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  - adjust maxPages and crawlDelay to the size of the site")
	fmt.Fprintln(out, "  - tune minWordCount, minHeadings and minParagraphs to your content")
	fmt.Fprintf(out, "  - run: aicompliance analyze --config %s <url>\n", outputPath)
	return nil
}
