// Package analyze implements the one-shot analysis command.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cloudtrim/internal/config"
	"cloudtrim/internal/cycle"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
	"cloudtrim/internal/output"

	// Register collectors
	_ "cloudtrim/internal/collect/aws"
	_ "cloudtrim/internal/collect/azure"
	_ "cloudtrim/internal/collect/gcp"
)

type analyzeOptions struct {
	collectors      string
	awsRegions      string
	windowHours     int
	cpuThreshold    float64
	memoryThreshold float64
	outputType      string
	outputDir       string
	bucket          string
	bucketRegion    string
}

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a single analysis cycle and write the report",
		Long: `Collect utilization samples from the configured cloud providers,
classify each resource against the thresholds, and write an aggregated
optimization report.

Examples:
  # Analyze everything with default thresholds
  cloudtrim analyze

  # Analyze only EC2 instances and EBS volumes in two regions
  cloudtrim analyze --collectors ec2-instances,ebs-volumes --aws-regions us-east-1,us-west-2

  # Tighten the CPU threshold and upload the report to S3
  cloudtrim analyze --cpu-threshold 5 --output s3 --bucket my-reports --bucket-region us-east-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd, opts)
			return runAnalyze(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.collectors, "collectors", "", "Comma-separated list of collectors to run (default: all)")
	cmd.Flags().StringVar(&opts.awsRegions, "aws-regions", "", "Comma-separated AWS regions to collect from")
	cmd.Flags().IntVar(&opts.windowHours, "window-hours", 24, "Observation window in hours")
	cmd.Flags().Float64Var(&opts.cpuThreshold, "cpu-threshold", 10, "CPU utilization threshold percent")
	cmd.Flags().Float64Var(&opts.memoryThreshold, "memory-threshold", 15, "Memory utilization threshold percent")
	cmd.Flags().StringVarP(&opts.outputType, "output", "o", "filesystem", "Output type (filesystem or s3)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "output", "Directory for filesystem output")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "S3 bucket name (required when output=s3)")
	cmd.Flags().StringVar(&opts.bucketRegion, "bucket-region", "", "S3 bucket region (required when output=s3)")

	return cmd
}

// applyConfigDefaults fills in flag values the user did not set from
// the resolved configuration.
func applyConfigDefaults(cmd *cobra.Command, opts *analyzeOptions) {
	if !cmd.Flags().Changed("window-hours") {
		opts.windowHours = config.Config.WindowHours
	}
	if !cmd.Flags().Changed("cpu-threshold") {
		opts.cpuThreshold = config.Config.CPUThresholdPercent
	}
	if !cmd.Flags().Changed("memory-threshold") {
		opts.memoryThreshold = config.Config.MemoryThresholdPercent
	}
	if !cmd.Flags().Changed("aws-regions") {
		opts.awsRegions = config.Config.AWSRegions
	}
}

func runAnalyze(ctx context.Context, opts *analyzeOptions) error {
	if opts.outputType == string(output.S3) && (opts.bucket == "" || opts.bucketRegion == "") {
		return fmt.Errorf("--bucket and --bucket-region are required when --output=s3")
	}

	thresholds := optimize.Thresholds{
		CPUPercent:    opts.cpuThreshold,
		MemoryPercent: opts.memoryThreshold,
	}

	awsRegions := config.AWSRegionList()
	if opts.awsRegions != "" {
		awsRegions = splitList(opts.awsRegions)
	}

	outcome, err := cycle.Run(ctx, cycle.Options{
		Collectors: opts.collectors,
		AWSRegions: awsRegions,
		Window:     time.Duration(opts.windowHours) * time.Hour,
		Thresholds: thresholds,
		MaxWorkers: config.Config.MaxWorkers,
	})
	if err != nil {
		return err
	}

	writer := output.NewWriter(output.Config{
		Type:      output.Type(opts.outputType),
		OutputDir: opts.outputDir,
		S3Bucket:  opts.bucket,
		S3Region:  opts.bucketRegion,
	})

	path, err := writer.Write(outcome.Report, outcome.Skipped)
	if err != nil {
		return err
	}

	logging.Info("Report written", map[string]interface{}{
		"path":            path,
		"recommendations": len(outcome.Report.Recommendations),
	})

	for _, recommendation := range outcome.Report.Recommendations {
		fmt.Println(recommendation)
	}

	return nil
}

func splitList(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
