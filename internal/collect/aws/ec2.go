package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/ec2"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
)

// EC2Collector samples EC2 instances with CPU and memory utilization
// averages over the observation window.
type EC2Collector struct{}

func init() {
	if err := collect.DefaultRegistry.Register(&EC2Collector{}); err != nil {
		panic(fmt.Sprintf("Failed to register EC2 collector: %v", err))
	}
}

func (c *EC2Collector) Name() string                { return "ec2-instances" }
func (c *EC2Collector) ArgumentName() string        { return "ec2-instances" }
func (c *EC2Collector) Label() string               { return "EC2 Instances" }
func (c *EC2Collector) Provider() optimize.Provider { return optimize.AWS }

func (c *EC2Collector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	sess, err := GetSession(opts.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	ec2Client := ec2.New(sess)
	cwClient := cloudwatch.New(sess)

	var samples []optimize.ResourceSample
	err = ec2Client.DescribeInstancesPagesWithContext(ctx, &ec2.DescribeInstancesInput{},
		func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
			for _, reservation := range page.Reservations {
				for _, instance := range reservation.Instances {
					samples = append(samples, c.sample(ctx, cwClient, instance, opts))
				}
			}
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}

	return samples, nil
}

func (c *EC2Collector) sample(ctx context.Context, cwClient *cloudwatch.CloudWatch, instance *ec2.Instance, opts collect.Options) optimize.ResourceSample {
	instanceID := awssdk.StringValue(instance.InstanceId)
	running := awssdk.StringValue(instance.State.Name) == ec2.InstanceStateNameRunning

	var cpu, memory *float64
	if running {
		cpu = averageMetric(ctx, cwClient, metricConfig{
			Namespace:     "AWS/EC2",
			ResourceID:    instanceID,
			DimensionName: "InstanceId",
			MetricName:    "CPUUtilization",
			Window:        opts.Window,
		})
		// Memory needs the CloudWatch agent; absent on unmanaged hosts.
		memory = averageMetric(ctx, cwClient, metricConfig{
			Namespace:     "CWAgent",
			ResourceID:    instanceID,
			DimensionName: "InstanceId",
			MetricName:    "mem_used_percent",
			Window:        opts.Window,
		})
	} else {
		logging.Debug("Skipping metrics for non-running instance", map[string]interface{}{
			"instance_id": instanceID,
			"state":       awssdk.StringValue(instance.State.Name),
		})
	}

	return optimize.ResourceSample{
		ResourceID:             instanceID,
		Provider:               optimize.AWS,
		Kind:                   optimize.Compute,
		Name:                   nameTag(instance.Tags),
		Location:               opts.Location,
		AvgCPUPercent:          cpu,
		AvgMemoryPercent:       memory,
		HourlyCost:             ec2HourlyCost(awssdk.StringValue(instance.InstanceType)),
		IsAttachedOrRunning:    running,
		ObservationWindowHours: opts.WindowHours(),
	}
}

func nameTag(tags []*ec2.Tag) string {
	for _, tag := range tags {
		if awssdk.StringValue(tag.Key) == "Name" {
			return awssdk.StringValue(tag.Value)
		}
	}
	return ""
}
