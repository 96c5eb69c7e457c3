// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package services

import (
	"context"
	"fmt"

	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/internal/logging"
	"finetune.quickstart/internal/providers"
	"finetune.quickstart/pkg/models"
)

// Ensure deploymentServiceImpl implements DeploymentService interface
var _ DeploymentService = (*deploymentServiceImpl)(nil)

// deploymentServiceImpl implements the DeploymentService interface
type deploymentServiceImpl struct {
	provider   providers.ModelDeploymentProvider
	ftProvider providers.FineTuningProvider
}

// NewDeploymentService creates a new instance of DeploymentService
func NewDeploymentService(provider providers.ModelDeploymentProvider, ftProvider providers.FineTuningProvider) DeploymentService {
	return &deploymentServiceImpl{
		provider:   provider,
		ftProvider: ftProvider,
	}
}

// DeployModel looks up the job's fine-tuned model and deploys it
func (s *deploymentServiceImpl) DeployModel(ctx context.Context, cfg *models.DeploymentConfig) (*models.Deployment, error) {
	if cfg == nil {
		return nil, fmt.Errorf("deployment request cannot be nil")
	}
	if cfg.JobID == "" || cfg.DeploymentName == "" {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments,
			"JobID and DeploymentName must be provided", "pass --job-id and --name")
	}

	job, err := s.ftProvider.GetFineTuningStatus(ctx, cfg.JobID)
	if err != nil {
		return nil, exterrors.FromService(fmt.Errorf("failed to get fine-tuning job details: %w", err), "get fine-tuning job")
	}
	if job == nil || job.FineTunedModel == "" {
		return nil, exterrors.Validation(exterrors.CodeModelNotReady,
			fmt.Sprintf("fine-tuned model not found for job ID %s", cfg.JobID),
			fmt.Sprintf("wait until the job has succeeded; check it with 'jobs show --id %s'", cfg.JobID))
	}
	if job.Status != models.StatusSucceeded {
		return nil, exterrors.Validation(exterrors.CodeModelNotReady,
			fmt.Sprintf("job %s has status %s; only succeeded jobs can be deployed", cfg.JobID, job.Status), "")
	}

	req := &models.DeploymentRequest{
		DeploymentName: cfg.DeploymentName,
		ModelName:      job.FineTunedModel,
		ModelFormat:    cfg.ModelFormat,
		ModelVersion:   cfg.ModelVersion,
		SKU:            cfg.SKU,
		Capacity:       cfg.Capacity,
		Wait:           cfg.Wait,
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments, err.Error(), "")
	}

	deployment, err := s.provider.DeployModel(ctx, req)
	if err != nil {
		return nil, exterrors.FromService(fmt.Errorf("failed to deploy model: %w", err), "deploy model")
	}

	logging.WithFields(map[string]interface{}{
		"job_id":     cfg.JobID,
		"model":      req.ModelName,
		"deployment": deployment.Name,
		"status":     deployment.Status,
	}).Info("deployment submitted")

	return deployment, nil
}

// GetDeploymentStatus retrieves the current status of a deployment
func (s *deploymentServiceImpl) GetDeploymentStatus(ctx context.Context, deploymentName string) (*models.Deployment, error) {
	if deploymentName == "" {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments, "deployment name is required", "pass --name")
	}

	deployment, err := s.provider.GetDeploymentStatus(ctx, deploymentName)
	if err != nil {
		return nil, exterrors.FromService(err, "get deployment")
	}
	return deployment, nil
}
