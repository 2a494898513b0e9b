package run

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undefinedlabs/go-mpatch"

	"cloudtrim/internal/actions"
	"cloudtrim/internal/cycle"
	"cloudtrim/internal/optimize"
)

func safeUnpatch(patch *mpatch.Patch) {
	if err := patch.Unpatch(); err != nil {
		fmt.Fprintf(os.Stderr, "Error unpatching: %v\n", err)
	}
}

func emptyOutcome() *cycle.Outcome {
	return &cycle.Outcome{
		Report: optimize.Aggregate(nil, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
}

// TestNewRunCmd tests the creation of the run command
func TestNewRunCmd(t *testing.T) {
	cmd := NewRunCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "run", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	flags := []struct {
		name     string
		defValue string
	}{
		{"collectors", ""},
		{"interval", "1h0m0s"},
		{"auto-optimize", "false"},
		{"cycles", "0"},
		{"output-dir", "output"},
	}
	for _, f := range flags {
		flag := cmd.Flags().Lookup(f.name)
		require.NotNil(t, flag, "flag %s", f.name)
		assert.Equal(t, f.defValue, flag.DefValue, "flag %s", f.name)
	}
}

// TestRunLoopExecutesRequestedCycles tests the --cycles exit condition
func TestRunLoopExecutesRequestedCycles(t *testing.T) {
	var calls int32
	patch, err := mpatch.PatchMethod(cycle.Run, func(ctx context.Context, opts cycle.Options) (*cycle.Outcome, error) {
		atomic.AddInt32(&calls, 1)
		return emptyOutcome(), nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	opts := &runOptions{
		interval:  time.Millisecond,
		cycles:    3,
		outputDir: t.TempDir(),
	}
	require.NoError(t, runLoop(context.Background(), opts))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

// TestRunLoopRejectsNonPositiveInterval tests interval validation
func TestRunLoopRejectsNonPositiveInterval(t *testing.T) {
	opts := &runOptions{interval: 0, cycles: 1}
	assert.Error(t, runLoop(context.Background(), opts))
}

// TestRunLoopContinuesAfterCycleError tests that a failed cycle does
// not end the loop
func TestRunLoopContinuesAfterCycleError(t *testing.T) {
	var calls int32
	patch, err := mpatch.PatchMethod(cycle.Run, func(ctx context.Context, opts cycle.Options) (*cycle.Outcome, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, fmt.Errorf("mock cycle error")
		}
		return emptyOutcome(), nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patch)

	opts := &runOptions{
		interval:  time.Millisecond,
		cycles:    2,
		outputDir: t.TempDir(),
	}
	require.NoError(t, runLoop(context.Background(), opts))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestRunLoopAutoOptimize tests that flagged compute triggers a stop pass
func TestRunLoopAutoOptimize(t *testing.T) {
	outcome := &cycle.Outcome{
		Report: optimize.Aggregate([]optimize.ClassificationResult{
			{
				ResourceID:             "i-idle",
				Provider:               optimize.AWS,
				Kind:                   optimize.Compute,
				Underutilized:          true,
				Reason:                 optimize.ReasonLowCPU,
				EstimatedMonthlySaving: 146.0,
			},
		}, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
		Samples: map[string]optimize.ResourceSample{
			"i-idle": {ResourceID: "i-idle", Provider: optimize.AWS, Kind: optimize.Compute, Location: "us-east-1"},
		},
	}

	patchCycle, err := mpatch.PatchMethod(cycle.Run, func(ctx context.Context, opts cycle.Options) (*cycle.Outcome, error) {
		return outcome, nil
	})
	require.NoError(t, err)
	defer safeUnpatch(patchCycle)

	var stopCalls int32
	patchStop, err := mpatch.PatchMethod(actions.StopUnderutilized, func(ctx context.Context, report optimize.OptimizationReport, samples map[string]optimize.ResourceSample) int {
		atomic.AddInt32(&stopCalls, 1)
		assert.Contains(t, samples, "i-idle")
		return 1
	})
	require.NoError(t, err)
	defer safeUnpatch(patchStop)

	opts := &runOptions{
		interval:     time.Millisecond,
		cycles:       1,
		autoOptimize: true,
		outputDir:    t.TempDir(),
	}
	require.NoError(t, runLoop(context.Background(), opts))

	assert.Equal(t, int32(1), atomic.LoadInt32(&stopCalls))
}
