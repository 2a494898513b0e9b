package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/rds"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/optimize"
)

// RDSCollector samples RDS database instances with CPU utilization
// averages. RDS exposes no memory-percentage metric, so memory stays
// absent and never contributes to classification.
type RDSCollector struct{}

func init() {
	if err := collect.DefaultRegistry.Register(&RDSCollector{}); err != nil {
		panic(fmt.Sprintf("Failed to register RDS collector: %v", err))
	}
}

func (c *RDSCollector) Name() string                { return "rds-instances" }
func (c *RDSCollector) ArgumentName() string        { return "rds-instances" }
func (c *RDSCollector) Label() string               { return "RDS Instances" }
func (c *RDSCollector) Provider() optimize.Provider { return optimize.AWS }

func (c *RDSCollector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	sess, err := GetSession(opts.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	rdsClient := rds.New(sess)
	cwClient := cloudwatch.New(sess)

	var samples []optimize.ResourceSample
	err = rdsClient.DescribeDBInstancesPagesWithContext(ctx, &rds.DescribeDBInstancesInput{},
		func(page *rds.DescribeDBInstancesOutput, lastPage bool) bool {
			for _, db := range page.DBInstances {
				dbID := awssdk.StringValue(db.DBInstanceIdentifier)
				available := awssdk.StringValue(db.DBInstanceStatus) == "available"

				var cpu *float64
				if available {
					cpu = averageMetric(ctx, cwClient, metricConfig{
						Namespace:     "AWS/RDS",
						ResourceID:    dbID,
						DimensionName: "DBInstanceIdentifier",
						MetricName:    "CPUUtilization",
						Window:        opts.Window,
					})
				}

				samples = append(samples, optimize.ResourceSample{
					ResourceID:             dbID,
					Provider:               optimize.AWS,
					Kind:                   optimize.Database,
					Location:               opts.Location,
					AvgCPUPercent:          cpu,
					HourlyCost:             rdsHourlyCost(awssdk.StringValue(db.DBInstanceClass)),
					IsAttachedOrRunning:    available,
					ObservationWindowHours: opts.WindowHours(),
				})
			}
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("failed to describe DB instances: %w", err)
	}

	return samples, nil
}
