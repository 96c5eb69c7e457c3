// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package openai

import (
	"context"
	"fmt"
	"os"

	"finetune.quickstart/internal/logging"
	"finetune.quickstart/pkg/models"
	"github.com/openai/openai-go/v3"
)

// OpenAIProvider implements the fine-tuning and inference providers on top of the
// OpenAI SDK. The same client serves api.openai.com and Azure OpenAI endpoints.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(client *openai.Client) *OpenAIProvider {
	return &OpenAIProvider{
		client: client,
	}
}

// UploadFile uploads a file for fine-tuning
func (p *OpenAIProvider) UploadFile(ctx context.Context, filePath string) (*models.UploadedFile, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	logging.WithField("op", "upload").WithField("path", filePath).Debug("uploading file")

	uploadedFile, err := p.client.Files.New(ctx, openai.FileNewParams{
		File:    file,
		Purpose: openai.FilePurposeFineTune,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	if uploadedFile == nil || uploadedFile.ID == "" {
		return nil, fmt.Errorf("uploaded file is empty")
	}

	return convertOpenAIFileToModel(uploadedFile), nil
}

// GetUploadedFile retrieves information about an uploaded file
func (p *OpenAIProvider) GetUploadedFile(ctx context.Context, fileID string) (*models.UploadedFile, error) {
	file, err := p.client.Files.Get(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertOpenAIFileToModel(file), nil
}

// CreateFineTuningJob creates a new fine-tuning job via OpenAI API
func (p *OpenAIProvider) CreateFineTuningJob(ctx context.Context, req *models.CreateFineTuningRequest) (*models.FineTuningJob, error) {
	params := convertInternalJobParamToOpenAiJobParams(req)

	logging.WithFields(map[string]interface{}{
		"op":      "create_job",
		"model":   req.BaseModel,
		"file_id": req.TrainingFile,
	}).Debug("creating fine-tuning job")

	job, err := p.client.FineTuning.Jobs.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create fine-tuning job: %w", err)
	}

	return convertOpenAIJobToModel(job), nil
}

// GetFineTuningStatus retrieves the status of a fine-tuning job
func (p *OpenAIProvider) GetFineTuningStatus(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	job, err := p.client.FineTuning.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fine-tuning job %s: %w", jobID, err)
	}

	return convertOpenAIJobToModel(job), nil
}

// ListFineTuningJobs lists all fine-tuning jobs
func (p *OpenAIProvider) ListFineTuningJobs(ctx context.Context, limit int, after string) ([]*models.FineTuningJob, error) {
	params := openai.FineTuningJobListParams{}
	if limit > 0 {
		params.Limit = openai.Int(int64(limit))
	}
	if after != "" {
		params.After = openai.String(after)
	}

	jobList, err := p.client.FineTuning.Jobs.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list fine-tuning jobs: %w", err)
	}

	jobs := make([]*models.FineTuningJob, 0, len(jobList.Data))
	for i := range jobList.Data {
		jobs = append(jobs, convertOpenAIJobToModel(&jobList.Data[i]))
	}
	return jobs, nil
}

// GetJobEvents retrieves events for a fine-tuning job
func (p *OpenAIProvider) GetJobEvents(ctx context.Context, jobID string, limit int, after string) (*models.JobEventsList, error) {
	params := openai.FineTuningJobListEventsParams{}
	if limit > 0 {
		params.Limit = openai.Int(int64(limit))
	}
	if after != "" {
		params.After = openai.String(after)
	}

	eventsPage, err := p.client.FineTuning.Jobs.ListEvents(ctx, jobID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for job %s: %w", jobID, err)
	}

	return convertOpenAIJobEventsToModel(eventsPage.Data, eventsPage.HasMore), nil
}

// GetJobCheckpoints retrieves checkpoints for a fine-tuning job
func (p *OpenAIProvider) GetJobCheckpoints(ctx context.Context, jobID string, limit int, after string) (*models.JobCheckpointsList, error) {
	params := openai.FineTuningJobCheckpointListParams{}
	if limit > 0 {
		params.Limit = openai.Int(int64(limit))
	}
	if after != "" {
		params.After = openai.String(after)
	}

	checkpointsPage, err := p.client.FineTuning.Jobs.Checkpoints.List(ctx, jobID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for job %s: %w", jobID, err)
	}

	return convertOpenAIJobCheckpointsToModel(checkpointsPage.Data, checkpointsPage.HasMore), nil
}

// PauseJob pauses a fine-tuning job
func (p *OpenAIProvider) PauseJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	job, err := p.client.FineTuning.Jobs.Pause(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to pause fine-tuning job %s: %w", jobID, err)
	}
	return convertOpenAIJobToModel(job), nil
}

// ResumeJob resumes a paused fine-tuning job
func (p *OpenAIProvider) ResumeJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	job, err := p.client.FineTuning.Jobs.Resume(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to resume fine-tuning job %s: %w", jobID, err)
	}
	return convertOpenAIJobToModel(job), nil
}

// CancelJob cancels a fine-tuning job
func (p *OpenAIProvider) CancelJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	job, err := p.client.FineTuning.Jobs.Cancel(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel fine-tuning job %s: %w", jobID, err)
	}
	return convertOpenAIJobToModel(job), nil
}

// CreateChatCompletion sends one non-streaming chat request
func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	params, err := convertChatRequestToOpenAIParams(req)
	if err != nil {
		return nil, err
	}

	logging.WithField("op", "chat").WithField("model", req.Model).Debug("sending chat completion")

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	return convertOpenAIChatCompletionToModel(completion)
}
