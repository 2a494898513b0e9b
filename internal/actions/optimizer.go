// Package actions applies optimizations to flagged resources. Only
// compute instances are ever touched: stopping a machine is
// reversible, deleting storage is not.
package actions

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"

	compute "cloud.google.com/go/compute/apiv1"
	"cloud.google.com/go/compute/apiv1/computepb"

	awscollect "cloudtrim/internal/collect/aws"
	"cloudtrim/internal/config"
	"cloudtrim/internal/logging"
	"cloudtrim/internal/optimize"
)

// StopUnderutilized stops every underutilized compute instance in the
// report. Failures are logged per resource and never abort the pass;
// the number of successful stops is returned.
func StopUnderutilized(ctx context.Context, report optimize.OptimizationReport, samples map[string]optimize.ResourceSample) int {
	stopped := 0
	for _, provider := range optimize.Providers {
		for _, result := range report.PerProviderResults[provider] {
			if !result.Underutilized || result.Kind != optimize.Compute {
				continue
			}

			sample, ok := samples[result.ResourceID]
			if !ok {
				logging.Warn("No sample context for flagged resource, skipping stop", map[string]interface{}{
					"resource_id": result.ResourceID,
				})
				continue
			}

			if err := stopInstance(ctx, sample); err != nil {
				logging.Error("Failed to stop instance", err, map[string]interface{}{
					"provider":    string(provider),
					"resource_id": result.ResourceID,
				})
				continue
			}

			logging.Info("Stopped underutilized instance", map[string]interface{}{
				"provider":    string(provider),
				"resource_id": result.ResourceID,
			})
			stopped++
		}
	}
	return stopped
}

func stopInstance(ctx context.Context, sample optimize.ResourceSample) error {
	switch sample.Provider {
	case optimize.AWS:
		return stopEC2Instance(ctx, sample)
	case optimize.Azure:
		return deallocateAzureVM(ctx, sample)
	case optimize.GCP:
		return stopGCPInstance(ctx, sample)
	default:
		return fmt.Errorf("unsupported provider %q", sample.Provider)
	}
}

func stopEC2Instance(ctx context.Context, sample optimize.ResourceSample) error {
	sess, err := awscollect.GetSession(sample.Location)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	_, err = ec2.New(sess).StopInstancesWithContext(ctx, &ec2.StopInstancesInput{
		InstanceIds: []*string{awssdk.String(sample.ResourceID)},
	})
	return err
}

func deallocateAzureVM(ctx context.Context, sample optimize.ResourceSample) error {
	resourceGroup, vmName, err := parseAzureVMID(sample.ResourceID)
	if err != nil {
		return err
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := armcompute.NewVirtualMachinesClient(config.Config.AzureSubscriptionID, cred, nil)
	if err != nil {
		return fmt.Errorf("failed to create VM client: %w", err)
	}

	poller, err := client.BeginDeallocate(ctx, resourceGroup, vmName, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}

func stopGCPInstance(ctx context.Context, sample optimize.ResourceSample) error {
	client, err := compute.NewInstancesRESTClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instances client: %w", err)
	}
	defer client.Close()

	op, err := client.Stop(ctx, &computepb.StopInstanceRequest{
		Project:  config.Config.GCPProject,
		Zone:     sample.Location,
		Instance: sample.Name,
	})
	if err != nil {
		return err
	}
	return op.Wait(ctx)
}

// parseAzureVMID extracts the resource group and VM name from an ARM
// resource ID of the form
// /subscriptions/<sub>/resourceGroups/<rg>/providers/Microsoft.Compute/virtualMachines/<name>.
func parseAzureVMID(resourceID string) (resourceGroup, vmName string, err error) {
	parts := strings.Split(strings.Trim(resourceID, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		switch strings.ToLower(parts[i]) {
		case "resourcegroups":
			resourceGroup = parts[i+1]
		case "virtualmachines":
			vmName = parts[i+1]
		}
	}
	if resourceGroup == "" || vmName == "" {
		return "", "", fmt.Errorf("malformed Azure VM resource ID %q", resourceID)
	}
	return resourceGroup, vmName, nil
}
