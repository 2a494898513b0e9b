package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/s3"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
)

// S3Collector samples S3 buckets. Bucket size comes from the daily
// AWS/S3 storage metrics; a bucket with no recorded bytes is treated
// as empty and therefore unused.
type S3Collector struct{}

func init() {
	if err := collect.DefaultRegistry.Register(&S3Collector{}); err != nil {
		panic(fmt.Sprintf("Failed to register S3 collector: %v", err))
	}
}

func (c *S3Collector) Name() string                { return "s3-buckets" }
func (c *S3Collector) ArgumentName() string        { return "s3-buckets" }
func (c *S3Collector) Label() string               { return "S3 Buckets" }
func (c *S3Collector) Provider() optimize.Provider { return optimize.AWS }

func (c *S3Collector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	sess, err := GetSession(opts.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s3Client := s3.New(sess)
	cwClient := cloudwatch.New(sess)

	output, err := s3Client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	var samples []optimize.ResourceSample
	for _, bucket := range output.Buckets {
		name := awssdk.StringValue(bucket.Name)
		sizeBytes, known := bucketSizeBytes(ctx, cwClient, name)

		// An unknown size must never imply emptiness; the bucket is
		// treated as in use until the metric confirms otherwise.
		samples = append(samples, optimize.ResourceSample{
			ResourceID:             name,
			Provider:               optimize.AWS,
			Kind:                   optimize.ObjectStore,
			Name:                   name,
			Location:               opts.Location,
			HourlyCost:             s3HourlyCost(sizeBytes),
			IsAttachedOrRunning:    !known || sizeBytes > 0,
			ObservationWindowHours: opts.WindowHours(),
		})
	}

	return samples, nil
}

// bucketSizeBytes reads the most recent BucketSizeBytes datapoint.
// The metric is published once a day, so the lookup spans two days to
// guarantee at least one datapoint for non-empty buckets. The second
// return value reports whether the size is actually known: a failed
// query yields (0, false), while a successful query with no datapoints
// means the bucket is empty and yields (0, true).
func bucketSizeBytes(ctx context.Context, cwClient *cloudwatch.CloudWatch, bucket string) (float64, bool) {
	end := time.Now()
	start := end.Add(-48 * time.Hour)

	output, err := cwClient.GetMetricStatisticsWithContext(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  awssdk.String("AWS/S3"),
		MetricName: awssdk.String("BucketSizeBytes"),
		StartTime:  awssdk.Time(start),
		EndTime:    awssdk.Time(end),
		Period:     awssdk.Int64(86400),
		Statistics: []*string{awssdk.String(cloudwatch.StatisticAverage)},
		Dimensions: []*cloudwatch.Dimension{
			{Name: awssdk.String("BucketName"), Value: awssdk.String(bucket)},
			{Name: awssdk.String("StorageType"), Value: awssdk.String("StandardStorage")},
		},
	})
	if err != nil {
		logging.Warn("Failed to get bucket size, treating bucket as in use", map[string]interface{}{
			"bucket": bucket,
			"error":  err.Error(),
		})
		return 0, false
	}
	if len(output.Datapoints) == 0 {
		return 0, true
	}

	latest := output.Datapoints[0]
	for _, dp := range output.Datapoints[1:] {
		if dp.Timestamp.After(*latest.Timestamp) {
			latest = dp
		}
	}
	return awssdk.Float64Value(latest.Average), true
}
