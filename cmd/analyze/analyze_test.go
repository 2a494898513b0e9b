package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"cloudtrim/internal/cycle"
	"cloudtrim/internal/optimize"
)

func safeUnpatch(patch *mpatch.Patch) {
	if err := patch.Unpatch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error unpatching: %v\n", err)
	}
}

// TestNewAnalyzeCmd tests the creation of the analyze command
func TestNewAnalyzeCmd(t *testing.T) {
	cmd := NewAnalyzeCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "analyze", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	flags := []struct {
		name     string
		defValue string
	}{
		{"collectors", ""},
		{"aws-regions", ""},
		{"window-hours", "24"},
		{"cpu-threshold", "10"},
		{"memory-threshold", "15"},
		{"output", "filesystem"},
		{"output-dir", "output"},
		{"bucket", ""},
		{"bucket-region", ""},
	}
	for _, f := range flags {
		flag := cmd.Flags().Lookup(f.name)
		require.NotNil(t, flag, "flag %s", f.name)
		assert.Equal(t, f.defValue, flag.DefValue, "flag %s", f.name)
	}
}

// TestRunAnalyzeWritesReport tests that a cycle outcome ends up on disk
func TestRunAnalyzeWritesReport(t *testing.T) {
	dir := t.TempDir()

	timestamp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	report := optimize.Aggregate([]optimize.ClassificationResult{
		{
			ResourceID:             "i-idle",
			Provider:               optimize.AWS,
			Kind:                   optimize.Compute,
			Underutilized:          true,
			Reason:                 optimize.ReasonLowCPU,
			EstimatedMonthlySaving: 146.0,
		},
	}, timestamp)

	patch, err := mpatch.PatchMethod(cycle.Run, func(ctx context.Context, opts cycle.Options) (*cycle.Outcome, error) {
		assert.Equal(t, "ec2-instances", opts.Collectors)
		return &cycle.Outcome{Report: report}, nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	opts := &analyzeOptions{
		collectors:      "ec2-instances",
		windowHours:     24,
		cpuThreshold:    10,
		memoryThreshold: 15,
		outputType:      "filesystem",
		outputDir:       dir,
	}
	require.NoError(t, runAnalyze(context.Background(), opts))

	expected := filepath.Join(dir, "2026", "05", "01", "optimization_report_12-00-00.json")
	_, statErr := os.Stat(expected)
	assert.NoError(t, statErr)
}

// TestRunAnalyzeRequiresBucketForS3 tests S3 flag validation
func TestRunAnalyzeRequiresBucketForS3(t *testing.T) {
	opts := &analyzeOptions{
		windowHours:     24,
		cpuThreshold:    10,
		memoryThreshold: 15,
		outputType:      "s3",
	}

	err := runAnalyze(context.Background(), opts)
	assert.ErrorContains(t, err, "--bucket")
}

// TestRunAnalyzePropagatesCycleErrors tests cycle failure handling
func TestRunAnalyzePropagatesCycleErrors(t *testing.T) {
	patch, err := mpatch.PatchMethod(cycle.Run, func(ctx context.Context, opts cycle.Options) (*cycle.Outcome, error) {
		return nil, fmt.Errorf("mock cycle error")
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	opts := &analyzeOptions{
		windowHours:     24,
		cpuThreshold:    10,
		memoryThreshold: 15,
		outputType:      "filesystem",
		outputDir:       t.TempDir(),
	}

	assert.ErrorContains(t, runAnalyze(context.Background(), opts), "mock cycle error")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"us-east-1", "us-west-2"}, splitList("us-east-1, us-west-2"))
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
}
