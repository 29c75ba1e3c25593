package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/glorpus-work/javup/internal/logger"
	"github.com/glorpus-work/javup/pkg/config"
	"github.com/glorpus-work/javup/pkg/controller"
	"github.com/glorpus-work/javup/pkg/download"
	"github.com/glorpus-work/javup/pkg/notify"
	"github.com/glorpus-work/javup/pkg/provision"
	"github.com/glorpus-work/javup/pkg/runner"
	"github.com/glorpus-work/javup/pkg/vendor"
	"github.com/spf13/cobra"
)

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var (
		dryRun  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the configured installations",
		Long: `Update every enabled installation from the configuration file to the
latest release published by its vendor. Installations that are already
up to date are left alone. A failing installation does not stop the
others and does not change the exit code; only a configuration that
cannot be loaded does.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), dryRun, workers)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what would be updated")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (0=auto)")

	return cmd
}

// NewCheckCmd creates the check command, a shorthand for update --dry-run.
func NewCheckCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report available updates without installing them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), true, workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (0=auto)")

	return cmd
}

func runUpdate(ctx context.Context, out, errOut io.Writer, dryRun bool, workers int) error {
	start := time.Now()

	configPath := configPathFlag()
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(absPath)
	if err != nil {
		return err
	}

	logLevel := cfg.Settings.LogLevel
	if flagLevel := logLevelFlag(); flagLevel != "" {
		logLevel = flagLevel
	}
	logger.InitLogger(logLevel)

	display := NewDisplay(cfg.Settings.NoColor || noColorFlag())
	fmt.Fprintf(out, "Using configuration from %s.\n", display.Path(absPath))

	userAgent := cfg.Settings.UserAgent
	if userAgent == "" {
		userAgent = "javup/" + Version
	}
	client := &http.Client{Timeout: cfg.Settings.HTTPTimeout.Std()}
	downloader := download.NewManager(cfg.Settings.HTTPTimeout.Std(), userAgent)

	reporter := newReporter(out, errOut, display)
	ctrl := &controller.Controller{
		QuerierFor:  func(v vendor.Vendor) controller.Querier { return v.NewQuerier(client, userAgent) },
		Provisioner: provision.New(downloader),
		Notifier:    notify.NewRunner(),
		Hooks:       controller.Hooks{OnEvent: reporter.onEvent},
		BaseDir:     filepath.Dir(absPath),
		DryRun:      dryRun,
	}

	if workers == 0 {
		workers = cfg.Settings.Workers
	}
	pool := runner.New(runner.PoolSize(workers))

	jobs := make([]runner.Job, 0, len(cfg.Installations))
	for _, installation := range cfg.Installations {
		jobs = append(jobs, func(ctx context.Context) {
			reporter.onResult(ctrl.Process(ctx, installation))
		})
	}
	pool.Run(ctx, jobs)

	fmt.Fprintf(out, "Total time: %s\n", time.Since(start).Round(time.Second))
	return nil
}
