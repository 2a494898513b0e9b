// Package cycle runs one collection and classification pass: resolve
// collectors, fan work out to the pool, classify the samples, and
// aggregate the results into a report.
package cycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
	"cloudtrim/internal/worker"
)

// Options selects what a cycle examines.
type Options struct {
	// Collectors is a comma-separated list of collector names; empty
	// selects every registered collector.
	Collectors string

	// AWSRegions lists the regions AWS collectors fan out across.
	AWSRegions []string

	Window     time.Duration
	Thresholds optimize.Thresholds
	MaxWorkers int
}

// Outcome carries the aggregated report plus everything a caller
// needs to act on it.
type Outcome struct {
	Report  optimize.OptimizationReport
	Skipped []optimize.SkippedSample

	// Samples indexes the collected samples by resource ID so actions
	// can recover location context for flagged resources.
	Samples map[string]optimize.ResourceSample
}

// Run executes a single optimization cycle.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}

	collectors, invalid := collect.DefaultRegistry.Resolve(opts.Collectors)
	for _, name := range invalid {
		logging.Warn("Ignoring unknown collector", map[string]interface{}{
			"collector": name,
		})
	}
	if len(collectors) == 0 {
		return nil, fmt.Errorf("no valid collectors selected")
	}

	names := make([]string, 0, len(collectors))
	for _, c := range collectors {
		names = append(names, c.ArgumentName())
	}
	logging.CycleStart(names, int(opts.Window.Hours()))

	var (
		mu      sync.Mutex
		samples []optimize.ResourceSample
	)

	var tasks []worker.Task
	for _, collector := range collectors {
		locations := []string{""}
		if collector.Provider() == optimize.AWS && len(opts.AWSRegions) > 0 {
			locations = opts.AWSRegions
		}
		for _, location := range locations {
			collector, location := collector, location
			tasks = append(tasks, func(taskCtx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				logging.CollectorStart(collector.ArgumentName(), location)
				collected, err := collector.Collect(taskCtx, collect.Options{
					Location: location,
					Window:   opts.Window,
				})
				if err != nil {
					logging.CollectorError(collector.ArgumentName(), location, err)
					return err
				}
				mu.Lock()
				samples = append(samples, collected...)
				mu.Unlock()
				logging.CollectorComplete(collector.ArgumentName(), location, len(collected))
				return nil
			})
		}
	}

	worker.Run(opts.MaxWorkers, tasks)

	results, skipped, err := optimize.ClassifyAll(samples, opts.Thresholds)
	if err != nil {
		return nil, err
	}
	report := optimize.Aggregate(results, time.Now().UTC())

	index := make(map[string]optimize.ResourceSample, len(samples))
	for _, sample := range samples {
		index[sample.ResourceID] = sample
	}

	flagged := 0
	for _, result := range results {
		if result.Underutilized {
			flagged++
		}
	}
	logging.CycleComplete(len(samples), flagged, len(skipped), report.EstimatedMonthlySavingsTotal)

	return &Outcome{
		Report:  report,
		Skipped: skipped,
		Samples: index,
	}, nil
}
