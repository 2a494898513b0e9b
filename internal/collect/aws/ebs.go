package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	"cloudtrim/internal/collect"
	"cloudtrim/internal/optimize"
)

// EBSCollector samples EBS volumes; attachment state is the only
// signal the classifier needs for block storage.
type EBSCollector struct{}

func init() {
	if err := collect.DefaultRegistry.Register(&EBSCollector{}); err != nil {
		panic(fmt.Sprintf("Failed to register EBS collector: %v", err))
	}
}

func (c *EBSCollector) Name() string                { return "ebs-volumes" }
func (c *EBSCollector) ArgumentName() string        { return "ebs-volumes" }
func (c *EBSCollector) Label() string               { return "EBS Volumes" }
func (c *EBSCollector) Provider() optimize.Provider { return optimize.AWS }

func (c *EBSCollector) Collect(ctx context.Context, opts collect.Options) ([]optimize.ResourceSample, error) {
	sess, err := GetSession(opts.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	ec2Client := ec2.New(sess)

	var samples []optimize.ResourceSample
	err = ec2Client.DescribeVolumesPagesWithContext(ctx, &ec2.DescribeVolumesInput{},
		func(page *ec2.DescribeVolumesOutput, lastPage bool) bool {
			for _, volume := range page.Volumes {
				samples = append(samples, optimize.ResourceSample{
					ResourceID:             awssdk.StringValue(volume.VolumeId),
					Provider:               optimize.AWS,
					Kind:                   optimize.BlockStorage,
					Location:               opts.Location,
					HourlyCost:             ebsHourlyCost(awssdk.StringValue(volume.VolumeType), awssdk.Int64Value(volume.Size)),
					IsAttachedOrRunning:    len(volume.Attachments) > 0,
					ObservationWindowHours: opts.WindowHours(),
				})
			}
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("failed to describe volumes: %w", err)
	}

	return samples, nil
}
