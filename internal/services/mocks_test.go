// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package services

import (
	"context"
	"errors"

	"finetune.quickstart/internal/providers"
	"finetune.quickstart/pkg/models"
)

var (
	_ providers.FineTuningProvider      = (*MockFineTuningProvider)(nil)
	_ providers.InferenceProvider       = (*MockInferenceProvider)(nil)
	_ providers.ModelDeploymentProvider = (*MockModelDeploymentProvider)(nil)
	_ StateStore                        = (*MockStateStore)(nil)
)

// MockFineTuningProvider is a mock implementation of the FineTuningProvider interface for testing
type MockFineTuningProvider struct {
	UploadFileFunc          func(ctx context.Context, filePath string) (*models.UploadedFile, error)
	GetUploadedFileFunc     func(ctx context.Context, fileID string) (*models.UploadedFile, error)
	CreateFineTuningJobFunc func(ctx context.Context, req *models.CreateFineTuningRequest) (*models.FineTuningJob, error)
	GetFineTuningStatusFunc func(ctx context.Context, jobID string) (*models.FineTuningJob, error)
	ListFineTuningJobsFunc  func(ctx context.Context, limit int, after string) ([]*models.FineTuningJob, error)
	GetJobEventsFunc        func(ctx context.Context, jobID string, limit int, after string) (*models.JobEventsList, error)
	GetJobCheckpointsFunc   func(ctx context.Context, jobID string, limit int, after string) (*models.JobCheckpointsList, error)
	PauseJobFunc            func(ctx context.Context, jobID string) (*models.FineTuningJob, error)
	ResumeJobFunc           func(ctx context.Context, jobID string) (*models.FineTuningJob, error)
	CancelJobFunc           func(ctx context.Context, jobID string) (*models.FineTuningJob, error)
}

func (m *MockFineTuningProvider) UploadFile(ctx context.Context, filePath string) (*models.UploadedFile, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, filePath)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) GetUploadedFile(ctx context.Context, fileID string) (*models.UploadedFile, error) {
	if m.GetUploadedFileFunc != nil {
		return m.GetUploadedFileFunc(ctx, fileID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) CreateFineTuningJob(ctx context.Context, req *models.CreateFineTuningRequest) (*models.FineTuningJob, error) {
	if m.CreateFineTuningJobFunc != nil {
		return m.CreateFineTuningJobFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) GetFineTuningStatus(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	if m.GetFineTuningStatusFunc != nil {
		return m.GetFineTuningStatusFunc(ctx, jobID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) ListFineTuningJobs(ctx context.Context, limit int, after string) ([]*models.FineTuningJob, error) {
	if m.ListFineTuningJobsFunc != nil {
		return m.ListFineTuningJobsFunc(ctx, limit, after)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) GetJobEvents(ctx context.Context, jobID string, limit int, after string) (*models.JobEventsList, error) {
	if m.GetJobEventsFunc != nil {
		return m.GetJobEventsFunc(ctx, jobID, limit, after)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) GetJobCheckpoints(ctx context.Context, jobID string, limit int, after string) (*models.JobCheckpointsList, error) {
	if m.GetJobCheckpointsFunc != nil {
		return m.GetJobCheckpointsFunc(ctx, jobID, limit, after)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) PauseJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	if m.PauseJobFunc != nil {
		return m.PauseJobFunc(ctx, jobID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) ResumeJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	if m.ResumeJobFunc != nil {
		return m.ResumeJobFunc(ctx, jobID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockFineTuningProvider) CancelJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	if m.CancelJobFunc != nil {
		return m.CancelJobFunc(ctx, jobID)
	}
	return nil, errors.New("not implemented")
}

// MockInferenceProvider is a mock implementation for testing
type MockInferenceProvider struct {
	CreateChatCompletionFunc func(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

func (m *MockInferenceProvider) CreateChatCompletion(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if m.CreateChatCompletionFunc != nil {
		return m.CreateChatCompletionFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

// MockModelDeploymentProvider is a mock implementation for testing
type MockModelDeploymentProvider struct {
	DeployModelFunc         func(ctx context.Context, req *models.DeploymentRequest) (*models.Deployment, error)
	GetDeploymentStatusFunc func(ctx context.Context, deploymentName string) (*models.Deployment, error)
}

func (m *MockModelDeploymentProvider) DeployModel(ctx context.Context, req *models.DeploymentRequest) (*models.Deployment, error) {
	if m.DeployModelFunc != nil {
		return m.DeployModelFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *MockModelDeploymentProvider) GetDeploymentStatus(ctx context.Context, deploymentName string) (*models.Deployment, error) {
	if m.GetDeploymentStatusFunc != nil {
		return m.GetDeploymentStatusFunc(ctx, deploymentName)
	}
	return nil, nil
}

// MockStateStore is a mock implementation of StateStore for testing
type MockStateStore struct {
	SaveFileFunc func(ctx context.Context, file *models.UploadedFile) error
	SaveJobFunc  func(ctx context.Context, job *models.FineTuningJob) error
}

func (m *MockStateStore) SaveFile(ctx context.Context, file *models.UploadedFile) error {
	if m.SaveFileFunc != nil {
		return m.SaveFileFunc(ctx, file)
	}
	return nil
}

func (m *MockStateStore) SaveJob(ctx context.Context, job *models.FineTuningJob) error {
	if m.SaveJobFunc != nil {
		return m.SaveJobFunc(ctx, job)
	}
	return nil
}
