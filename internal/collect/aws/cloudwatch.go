package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"cloudtrim/internal/logging"
)

// metricConfig describes one CloudWatch metric lookup.
type metricConfig struct {
	Namespace     string
	ResourceID    string
	DimensionName string
	MetricName    string
	Window        time.Duration
}

// averageMetric returns the average of a metric over the observation
// window, or nil when the metric is unavailable. Retrieval failures
// are logged and treated as absent so one flaky metric never fails a
// collector run; per the classifier contract, an absent metric can
// never flag a resource.
func averageMetric(ctx context.Context, cwClient *cloudwatch.CloudWatch, cfg metricConfig) *float64 {
	end := time.Now()
	start := end.Add(-cfg.Window)

	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(cfg.Namespace),
		MetricName: aws.String(cfg.MetricName),
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int64(3600),
		Statistics: []*string{aws.String(cloudwatch.StatisticAverage)},
		Dimensions: []*cloudwatch.Dimension{
			{
				Name:  aws.String(cfg.DimensionName),
				Value: aws.String(cfg.ResourceID),
			},
		},
	}

	output, err := cwClient.GetMetricStatisticsWithContext(ctx, input)
	if err != nil {
		logging.Warn("Failed to get metric statistics, treating as absent", map[string]interface{}{
			"metric":      cfg.MetricName,
			"namespace":   cfg.Namespace,
			"resource_id": cfg.ResourceID,
			"error":       err.Error(),
		})
		return nil
	}

	if len(output.Datapoints) == 0 {
		return nil
	}

	var sum float64
	for _, dp := range output.Datapoints {
		sum += aws.Float64Value(dp.Average)
	}
	avg := sum / float64(len(output.Datapoints))
	return &avg
}
