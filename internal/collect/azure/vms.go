package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/config"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
)

// vmHourlyRates maps common VM sizes to USD per hour (pay-as-you-go
// list prices). Sizes outside the table fall back to a flat default.
var vmHourlyRates = map[string]float64{
	"Standard_B1s":    0.0104,
	"Standard_B2s":    0.0416,
	"Standard_B2ms":   0.0832,
	"Standard_D2s_v3": 0.096,
	"Standard_D4s_v3": 0.192,
	"Standard_D8s_v3": 0.384,
	"Standard_E2s_v3": 0.126,
	"Standard_E4s_v3": 0.252,
	"Standard_F2s_v2": 0.0846,
	"Standard_F4s_v2": 0.169,
}

const defaultVMHourlyRate = 0.10

// VMCollector samples Azure virtual machines across the configured
// subscription with CPU utilization averages from Azure Monitor.
type VMCollector struct{}

func init() {
	if err := collect.DefaultRegistry.Register(&VMCollector{}); err != nil {
		panic(fmt.Sprintf("Failed to register Azure VM collector: %v", err))
	}
}

func (c *VMCollector) Name() string                { return "azure-vms" }
func (c *VMCollector) ArgumentName() string        { return "azure-vms" }
func (c *VMCollector) Label() string               { return "Azure VMs" }
func (c *VMCollector) Provider() optimize.Provider { return optimize.Azure }

func (c *VMCollector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	subscriptionID := config.Config.AzureSubscriptionID
	if subscriptionID == "" {
		logging.Debug("Azure subscription not configured, skipping VM collection", nil)
		return nil, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vmClient, err := armcompute.NewVirtualMachinesClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM client: %w", err)
	}

	metricsClient, err := armmonitor.NewMetricsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	var samples []optimize.ResourceSample
	pager := vmClient.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %w", err)
		}
		for _, vm := range page.Value {
			samples = append(samples, c.sample(ctx, metricsClient, vm, opts))
		}
	}

	return samples, nil
}

func (c *VMCollector) sample(ctx context.Context, metricsClient *armmonitor.MetricsClient, vm *armcompute.VirtualMachine, opts collect.Options) optimize.ResourceSample {
	var size, location string
	if vm.Properties != nil && vm.Properties.HardwareProfile != nil {
		size = string(*vm.Properties.HardwareProfile.VMSize)
	}
	if vm.Location != nil {
		location = *vm.Location
	}

	hourlyCost := defaultVMHourlyRate
	if rate, ok := vmHourlyRates[size]; ok {
		hourlyCost = rate
	}

	// ListAll carries no power state; a deallocated VM reports no
	// metrics, and absent metrics never flag a resource.
	return optimize.ResourceSample{
		ResourceID:             deref(vm.ID),
		Provider:               optimize.Azure,
		Kind:                   optimize.Compute,
		Name:                   deref(vm.Name),
		Location:               location,
		AvgCPUPercent:          averageCPU(ctx, metricsClient, deref(vm.ID), opts.Window),
		HourlyCost:             hourlyCost,
		IsAttachedOrRunning:    true,
		ObservationWindowHours: opts.WindowHours(),
	}
}

// averageCPU averages the Percentage CPU metric over the observation
// window, or returns nil when the metric is unavailable.
func averageCPU(ctx context.Context, metricsClient *armmonitor.MetricsClient, resourceID string, window time.Duration) *float64 {
	end := time.Now().UTC()
	start := end.Add(-window)
	timespan := fmt.Sprintf("%s/%s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	resp, err := metricsClient.List(ctx, resourceID, &armmonitor.MetricsClientListOptions{
		Timespan:    to.Ptr(timespan),
		Interval:    to.Ptr("PT1H"),
		Metricnames: to.Ptr("Percentage CPU"),
		Aggregation: to.Ptr("Average"),
	})
	if err != nil {
		logging.Warn("Failed to get VM metrics, treating as absent", map[string]interface{}{
			"resource_id": resourceID,
			"error":       err.Error(),
		})
		return nil
	}

	var sum float64
	var count int
	for _, metric := range resp.Value {
		for _, series := range metric.Timeseries {
			for _, point := range series.Data {
				if point.Average != nil {
					sum += *point.Average
					count++
				}
			}
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
