package aws

import (
	"context"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtrim/internal/optimize"
)

// unreachableCloudWatch returns a client whose every call fails,
// simulating timeouts and auth errors.
func unreachableCloudWatch(t *testing.T) *cloudwatch.CloudWatch {
	t.Helper()
	sess, err := session.NewSession(&awssdk.Config{
		Region:      awssdk.String("us-east-1"),
		Endpoint:    awssdk.String("http://127.0.0.1:1"),
		Credentials: credentials.NewStaticCredentials("test", "test", ""),
		MaxRetries:  awssdk.Int(0),
	})
	require.NoError(t, err)
	return cloudwatch.New(sess)
}

func TestBucketSizeUnknownOnMetricFailure(t *testing.T) {
	cwClient := unreachableCloudWatch(t)

	size, known := bucketSizeBytes(context.Background(), cwClient, "reports")
	assert.False(t, known)
	assert.Zero(t, size)
}

// A bucket whose size cannot be retrieved must sample as in use and
// never classify as unused storage.
func TestMetricFailureNeverFlagsBucket(t *testing.T) {
	cwClient := unreachableCloudWatch(t)

	sizeBytes, known := bucketSizeBytes(context.Background(), cwClient, "reports")
	sample := optimize.ResourceSample{
		ResourceID:             "reports",
		Provider:               optimize.AWS,
		Kind:                   optimize.ObjectStore,
		Name:                   "reports",
		HourlyCost:             s3HourlyCost(sizeBytes),
		IsAttachedOrRunning:    !known || sizeBytes > 0,
		ObservationWindowHours: 24,
	}

	result, err := optimize.Classify(sample, optimize.DefaultThresholds())
	require.NoError(t, err)
	assert.False(t, result.Underutilized)
	assert.Equal(t, optimize.ReasonNone, result.Reason)
}

func TestAverageMetricAbsentOnFailure(t *testing.T) {
	cwClient := unreachableCloudWatch(t)

	avg := averageMetric(context.Background(), cwClient, metricConfig{
		Namespace:     "AWS/EC2",
		ResourceID:    "i-abc",
		DimensionName: "InstanceId",
		MetricName:    "CPUUtilization",
		Window:        24 * time.Hour,
	})
	assert.Nil(t, avg)
}
