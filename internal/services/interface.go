// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package services

import (
	"context"
	"time"

	"finetune.quickstart/pkg/models"
)

// FineTuningService defines the business logic interface for fine-tuning operations.
// Remote calls are made once; nothing is retried.
type FineTuningService interface {
	// UploadFile checks the local file and uploads it
	UploadFile(ctx context.Context, filePath string) (*models.UploadedFile, error)

	// GetUploadedFile retrieves an uploaded file handle
	GetUploadedFile(ctx context.Context, fileID string) (*models.UploadedFile, error)

	// CreateFineTuningJob creates a new fine-tuning job, uploading local: files first
	CreateFineTuningJob(ctx context.Context, req *models.CreateFineTuningRequest) (*models.FineTuningJob, error)

	// GetFineTuningStatus retrieves the current status of a job
	GetFineTuningStatus(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// GetJobReport retrieves the job and one page of its events, oldest first
	GetJobReport(ctx context.Context, jobID string, eventLimit int) (*models.JobReport, error)

	// ListFineTuningJobs lists fine-tuning jobs
	ListFineTuningJobs(ctx context.Context, limit int, after string) ([]*models.FineTuningJob, error)

	// GetJobEvents retrieves one page of events, oldest first
	GetJobEvents(ctx context.Context, jobID string, limit int, after string) (*models.JobEventsList, error)

	// GetJobCheckpoints retrieves checkpoints for a job
	GetJobCheckpoints(ctx context.Context, jobID string, limit int, after string) (*models.JobCheckpointsList, error)

	// PauseJob pauses a running job
	PauseJob(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// ResumeJob resumes a paused job
	ResumeJob(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// CancelJob cancels a job
	CancelJob(ctx context.Context, jobID string) (*models.FineTuningJob, error)

	// GetFineTunedModel returns the model a job produced, or a local error if it has none yet
	GetFineTunedModel(ctx context.Context, jobID string) (string, error)

	// WatchJob re-polls a job at a fixed interval until it is terminal. onPoll receives
	// each poll with only the events not reported before. Any poll error ends the watch.
	WatchJob(ctx context.Context, jobID string, interval time.Duration, onPoll func(*models.JobReport)) (*models.FineTuningJob, error)
}

// InferenceService sends prompts to a base or fine-tuned model
type InferenceService interface {
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// DeploymentService defines the business logic interface for model deployment operations
type DeploymentService interface {
	// DeployModel deploys the fine-tuned model produced by a job
	DeployModel(ctx context.Context, cfg *models.DeploymentConfig) (*models.Deployment, error)

	// GetDeploymentStatus retrieves the current status of a deployment
	GetDeploymentStatus(ctx context.Context, deploymentName string) (*models.Deployment, error)
}

// StateStore records what the client uploaded and submitted. Implementations are a
// cache; failures are reported but never fail the remote operation.
type StateStore interface {
	SaveFile(ctx context.Context, file *models.UploadedFile) error
	SaveJob(ctx context.Context, job *models.FineTuningJob) error
}
