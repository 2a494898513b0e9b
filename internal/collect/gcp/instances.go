package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	compute "cloud.google.com/go/compute/apiv1"
	"cloud.google.com/go/compute/apiv1/computepb"
	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/timestamppb"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/config"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
)

// machineHourlyRates maps common machine types to USD per hour
// (on-demand list prices). Types outside the table fall back to a
// flat default.
var machineHourlyRates = map[string]float64{
	"e2-micro":      0.0084,
	"e2-small":      0.0168,
	"e2-medium":     0.0335,
	"e2-standard-2": 0.067,
	"e2-standard-4": 0.134,
	"n1-standard-1": 0.0475,
	"n1-standard-2": 0.095,
	"n1-standard-4": 0.19,
	"n2-standard-2": 0.0971,
	"n2-standard-4": 0.1942,
	"c2-standard-4": 0.2088,
}

const defaultMachineHourlyRate = 0.10

// InstanceCollector samples Compute Engine instances across all zones
// of the configured project with CPU utilization averages from Cloud
// Monitoring.
type InstanceCollector struct{}

func init() {
	if err := collect.DefaultRegistry.Register(&InstanceCollector{}); err != nil {
		panic(fmt.Sprintf("Failed to register GCP instance collector: %v", err))
	}
}

func (c *InstanceCollector) Name() string                { return "gcp-instances" }
func (c *InstanceCollector) ArgumentName() string        { return "gcp-instances" }
func (c *InstanceCollector) Label() string               { return "GCP Instances" }
func (c *InstanceCollector) Provider() optimize.Provider { return optimize.GCP }

func (c *InstanceCollector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	project := config.Config.GCPProject
	if project == "" {
		logging.Debug("GCP project not configured, skipping instance collection", nil)
		return nil, nil
	}

	instancesClient, err := compute.NewInstancesRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create instances client: %w", err)
	}
	defer instancesClient.Close()

	metricClient, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric client: %w", err)
	}
	defer metricClient.Close()

	var samples []optimize.ResourceSample
	it := instancesClient.AggregatedList(ctx, &computepb.AggregatedListInstancesRequest{
		Project: project,
	})
	for {
		pair, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list instances: %w", err)
		}
		for _, instance := range pair.Value.Instances {
			samples = append(samples, c.sample(ctx, metricClient, project, instance, opts))
		}
	}

	return samples, nil
}

func (c *InstanceCollector) sample(ctx context.Context, metricClient *monitoring.MetricClient, project string, instance *computepb.Instance, opts collect.Options) optimize.ResourceSample {
	running := instance.GetStatus() == "RUNNING"

	var cpu *float64
	if running {
		cpu = averageCPU(ctx, metricClient, project, instance.GetName(), opts.Window)
	}

	machineType := lastSegment(instance.GetMachineType())
	hourlyCost := defaultMachineHourlyRate
	if rate, ok := machineHourlyRates[machineType]; ok {
		hourlyCost = rate
	}

	return optimize.ResourceSample{
		ResourceID:             fmt.Sprintf("%d", instance.GetId()),
		Provider:               optimize.GCP,
		Kind:                   optimize.Compute,
		Name:                   instance.GetName(),
		Location:               lastSegment(instance.GetZone()),
		AvgCPUPercent:          cpu,
		HourlyCost:             hourlyCost,
		IsAttachedOrRunning:    running,
		ObservationWindowHours: opts.WindowHours(),
	}
}

// averageCPU averages the instance CPU utilization over the
// observation window, or returns nil when no points exist. Cloud
// Monitoring reports utilization as a 0..1 fraction.
func averageCPU(ctx context.Context, metricClient *monitoring.MetricClient, project, instanceName string, window time.Duration) *float64 {
	end := time.Now().UTC()
	start := end.Add(-window)

	filter := fmt.Sprintf(`metric.type="compute.googleapis.com/instance/cpu/utilization" AND metric.labels.instance_name="%s"`, instanceName)
	it := metricClient.ListTimeSeries(ctx, &monitoringpb.ListTimeSeriesRequest{
		Name:   "projects/" + project,
		Filter: filter,
		Interval: &monitoringpb.TimeInterval{
			StartTime: timestamppb.New(start),
			EndTime:   timestamppb.New(end),
		},
		View: monitoringpb.ListTimeSeriesRequest_FULL,
	})

	var sum float64
	var count int
	for {
		series, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logging.Warn("Failed to get instance metrics, treating as absent", map[string]interface{}{
				"instance": instanceName,
				"error":    err.Error(),
			})
			return nil
		}
		for _, point := range series.GetPoints() {
			sum += point.GetValue().GetDoubleValue()
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count) * 100
	return &avg
}

func lastSegment(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
