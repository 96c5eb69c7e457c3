// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"context"
	"fmt"
	"time"

	"finetune.quickstart/internal/logging"
	"finetune.quickstart/pkg/models"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
)

// DefaultPollFrequency is how often a waited deployment is re-checked
const DefaultPollFrequency = 10 * time.Second

// AzureProvider deploys fine-tuned models on an Azure OpenAI account
type AzureProvider struct {
	client        *armcognitiveservices.DeploymentsClient
	resourceGroup string
	accountName   string
	pollFrequency time.Duration
}

// NewAzureProvider creates a new Azure provider instance
func NewAzureProvider(clientFactory *armcognitiveservices.ClientFactory, resourceGroup, accountName string) *AzureProvider {
	return &AzureProvider{
		client:        clientFactory.NewDeploymentsClient(),
		resourceGroup: resourceGroup,
		accountName:   accountName,
		pollFrequency: DefaultPollFrequency,
	}
}

// DeployModel creates or updates a deployment. Without req.Wait it returns once the
// service has accepted the request.
func (p *AzureProvider) DeployModel(ctx context.Context, req *models.DeploymentRequest) (*models.Deployment, error) {
	deployment := armcognitiveservices.Deployment{
		Properties: &armcognitiveservices.DeploymentProperties{
			Model: &armcognitiveservices.DeploymentModel{
				Name:    to.Ptr(req.ModelName),
				Format:  to.Ptr(req.ModelFormat),
				Version: to.Ptr(req.ModelVersion),
			},
		},
		SKU: &armcognitiveservices.SKU{
			Name:     to.Ptr(req.SKU),
			Capacity: to.Ptr(req.Capacity),
		},
	}

	logging.WithFields(map[string]interface{}{
		"op":         "deploy",
		"model":      req.ModelName,
		"deployment": req.DeploymentName,
	}).Debug("creating deployment")

	poller, err := p.client.BeginCreateOrUpdate(ctx, p.resourceGroup, p.accountName, req.DeploymentName, deployment, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start deployment %s: %w", req.DeploymentName, err)
	}

	if !req.Wait {
		return &models.Deployment{
			Name:         req.DeploymentName,
			ModelName:    req.ModelName,
			ModelFormat:  req.ModelFormat,
			ModelVersion: req.ModelVersion,
			SKU:          req.SKU,
			Capacity:     req.Capacity,
			Status:       models.DeploymentPending,
		}, nil
	}

	result, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: p.pollFrequency})
	if err != nil {
		return nil, fmt.Errorf("deployment %s did not complete: %w", req.DeploymentName, err)
	}

	return convertDeploymentToModel(&result.Deployment, req.DeploymentName), nil
}

// GetDeploymentStatus retrieves the status of a deployment
func (p *AzureProvider) GetDeploymentStatus(ctx context.Context, deploymentName string) (*models.Deployment, error) {
	resp, err := p.client.Get(ctx, p.resourceGroup, p.accountName, deploymentName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %s: %w", deploymentName, err)
	}

	return convertDeploymentToModel(&resp.Deployment, deploymentName), nil
}

func convertDeploymentToModel(deployment *armcognitiveservices.Deployment, fallbackName string) *models.Deployment {
	result := &models.Deployment{
		Name:   fallbackName,
		Status: models.DeploymentUnknown,
	}
	if deployment.Name != nil {
		result.Name = *deployment.Name
	}
	if deployment.SKU != nil {
		result.SKU = deref(deployment.SKU.Name)
		if deployment.SKU.Capacity != nil {
			result.Capacity = *deployment.SKU.Capacity
		}
	}
	if props := deployment.Properties; props != nil {
		if props.Model != nil {
			result.ModelName = deref(props.Model.Name)
			result.ModelFormat = deref(props.Model.Format)
			result.ModelVersion = deref(props.Model.Version)
		}
		if props.ProvisioningState != nil {
			result.ProvisioningState = string(*props.ProvisioningState)
			result.Status = mapProvisioningState(*props.ProvisioningState)
		}
	}
	return result
}

func mapProvisioningState(state armcognitiveservices.DeploymentProvisioningState) models.DeploymentStatus {
	switch state {
	case armcognitiveservices.DeploymentProvisioningStateSucceeded:
		return models.DeploymentActive
	case armcognitiveservices.DeploymentProvisioningStateAccepted,
		armcognitiveservices.DeploymentProvisioningStateCreating:
		return models.DeploymentPending
	case armcognitiveservices.DeploymentProvisioningStateMoving:
		return models.DeploymentUpdating
	case armcognitiveservices.DeploymentProvisioningStateDeleting:
		return models.DeploymentDeleting
	case armcognitiveservices.DeploymentProvisioningStateFailed,
		armcognitiveservices.DeploymentProvisioningStateCanceled,
		armcognitiveservices.DeploymentProvisioningStateDisabled:
		return models.DeploymentFailed
	default:
		return models.DeploymentUnknown
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
