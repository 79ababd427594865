package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/aicompliance/internal/config"
	"github.com/nao1215/aicompliance/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aicompliance",
		Short: "Score how AI-search ready a website is",
		Long: `aicompliance crawls a small sample of a website and scores it against
six categories: content quality, technical performance, semantic structure,
AI readiness, E-E-A-T and mobile optimization.

Reports can be printed as text, JSON, Markdown or written as an Excel
workbook. Every analysis is stored locally so that later runs can be
compared with the history command.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format: text or json")
	cmd.PersistentFlags().String("config", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Ctrl-C cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// newLogger creates the stderr logger selected by the global flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format = config.LogFormatText
	}
	return log.NewLogger(cmd.ErrOrStderr(), format, getVerboseFlag(cmd))
}
