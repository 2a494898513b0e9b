// Package run implements the continuous analysis loop.
package run

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cloudtrim/internal/actions"
	"cloudtrim/internal/config"
	"cloudtrim/internal/cycle"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/output"

	// Register collectors
	_ "cloudtrim/internal/collect/aws"
	_ "cloudtrim/internal/collect/azure"
	_ "cloudtrim/internal/collect/gcp"
)

type runOptions struct {
	collectors   string
	interval     time.Duration
	autoOptimize bool
	cycles       int
	outputDir    string
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze continuously at a fixed interval",
		Long: `Run analysis cycles forever (or for a fixed number of cycles),
writing a report after each one. With --auto-optimize, underutilized
compute instances are stopped after each cycle.

Examples:
  # Analyze every hour
  cloudtrim run

  # Analyze every 15 minutes and stop idle instances
  cloudtrim run --interval 15m --auto-optimize

  # Run exactly three cycles, then exit
  cloudtrim run --cycles 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				opts.interval = config.Config.Interval
			}
			if !cmd.Flags().Changed("auto-optimize") {
				opts.autoOptimize = config.Config.AutoOptimize
			}
			return runLoop(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.collectors, "collectors", "", "Comma-separated list of collectors to run (default: all)")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Hour, "Time between analysis cycles")
	cmd.Flags().BoolVar(&opts.autoOptimize, "auto-optimize", false, "Stop underutilized compute instances after each cycle")
	cmd.Flags().IntVar(&opts.cycles, "cycles", 0, "Number of cycles to run before exiting (0 = forever)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "output", "Directory for report output")

	return cmd
}

func runLoop(ctx context.Context, opts *runOptions) error {
	if opts.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", opts.interval)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("Starting continuous analysis", map[string]interface{}{
		"interval":      opts.interval.String(),
		"auto_optimize": opts.autoOptimize,
	})

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for completed := 0; ; {
		if err := executeCycle(ctx, opts); err != nil {
			// A failed cycle is logged and retried on the next tick
			logging.Error("Analysis cycle failed", err, nil)
		}

		completed++
		if opts.cycles > 0 && completed >= opts.cycles {
			return nil
		}

		select {
		case <-ctx.Done():
			logging.Info("Shutting down", nil)
			return nil
		case <-ticker.C:
		}
	}
}

func executeCycle(ctx context.Context, opts *runOptions) error {
	outcome, err := cycle.Run(ctx, cycle.Options{
		Collectors: opts.collectors,
		AWSRegions: config.AWSRegionList(),
		Window:     time.Duration(config.Config.WindowHours) * time.Hour,
		Thresholds: config.Thresholds(),
		MaxWorkers: config.Config.MaxWorkers,
	})
	if err != nil {
		return err
	}

	writer := output.NewWriter(output.Config{
		Type:      output.FileSystem,
		OutputDir: opts.outputDir,
	})
	path, err := writer.Write(outcome.Report, outcome.Skipped)
	if err != nil {
		return err
	}
	logging.Info("Report written", map[string]interface{}{"path": path})

	if opts.autoOptimize {
		stopped := actions.StopUnderutilized(ctx, outcome.Report, outcome.Samples)
		if stopped > 0 {
			logging.Info("Auto-optimize pass complete", map[string]interface{}{
				"stopped": stopped,
			})
		}
	}

	return nil
}
