// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package providers

import (
	"context"

	"finetune.quickstart/pkg/models"
)

// FineTuningProvider defines the interface for fine-tuning operations.
// Every method issues exactly one request; implementations must not retry.
type FineTuningProvider interface {
	// UploadFile uploads a training or validation dataset
	UploadFile(ctx context.Context, filePath string) (*models.UploadedFile, error)

	// GetUploadedFile retrieves information about an uploaded file
	GetUploadedFile(ctx context.Context, fileID string) (*models.UploadedFile, error)

	// CreateFineTuningJob creates a new fine-tuning job
	CreateFineTuningJob(ctx context.Context, req *models.CreateFineTuningRequest) (*models.FineTuningJob, error)

	// GetFineTuningStatus retrieves the current state of a fine-tuning job
	GetFineTuningStatus(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// ListFineTuningJobs lists fine-tuning jobs, newest first
	ListFineTuningJobs(ctx context.Context, limit int, after string) ([]*models.FineTuningJob, error)

	// GetJobEvents retrieves one page of events in the order the service returns them
	GetJobEvents(ctx context.Context, jobID string, limit int, after string) (*models.JobEventsList, error)

	// GetJobCheckpoints retrieves checkpoints for a fine-tuning job
	GetJobCheckpoints(ctx context.Context, jobID string, limit int, after string) (*models.JobCheckpointsList, error)

	// PauseJob pauses a fine-tuning job
	PauseJob(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// ResumeJob resumes a paused fine-tuning job
	ResumeJob(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// CancelJob cancels a fine-tuning job
	CancelJob(ctx context.Context, jobID string) (*models.FineTuningJob, error)
}

// InferenceProvider sends chat prompts to a base or fine-tuned model
type InferenceProvider interface {
	CreateChatCompletion(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// ModelDeploymentProvider defines the interface for model deployment operations
type ModelDeploymentProvider interface {
	// DeployModel creates or updates a deployment of a fine-tuned model
	DeployModel(ctx context.Context, req *models.DeploymentRequest) (*models.Deployment, error)

	// GetDeploymentStatus retrieves the status of a deployment
	GetDeploymentStatus(ctx context.Context, deploymentName string) (*models.Deployment, error)
}
