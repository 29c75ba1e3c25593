package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/javup/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	noColor    bool
	logLevel   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "javup",
		Short: "Keep local Java installations up to date",
		Long: `javup keeps a set of local Java installations in sync with the latest
releases published by their vendors:
- update: download, verify and swap in new releases
- check: report available updates without touching anything
- notifications and hooks around every update`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: javup.yaml)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.NoColor = &noColor
	cli.LogLevel = &logLevel

	// Add subcommands
	cmd.AddCommand(
		cli.NewUpdateCmd(),
		cli.NewCheckCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
