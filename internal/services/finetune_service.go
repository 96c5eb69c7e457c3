// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/internal/logging"
	"finetune.quickstart/internal/providers"
	"finetune.quickstart/internal/state"
	"finetune.quickstart/internal/utils"
	"finetune.quickstart/pkg/models"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// DefaultEventLimit is the page size used when showing or watching a job
const DefaultEventLimit = 20

// Ensure fineTuningServiceImpl implements FineTuningService interface
var _ FineTuningService = (*fineTuningServiceImpl)(nil)

// fineTuningServiceImpl implements the FineTuningService interface
type fineTuningServiceImpl struct {
	provider   providers.FineTuningProvider
	stateStore StateStore
	newRunID   func() string
}

// NewFineTuningService creates a new instance of FineTuningService. stateStore may be nil.
func NewFineTuningService(provider providers.FineTuningProvider, stateStore StateStore) FineTuningService {
	return &fineTuningServiceImpl{
		provider:   provider,
		stateStore: stateStore,
		newRunID:   uuid.NewString,
	}
}

// UploadFile checks that the path is a regular file and uploads it
func (s *fineTuningServiceImpl) UploadFile(ctx context.Context, filePath string) (*models.UploadedFile, error) {
	if filePath == "" {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments, "file path cannot be empty", "pass the dataset path with --file")
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, exterrors.Validation(
				exterrors.CodeFileNotFound,
				fmt.Sprintf("file does not exist: %s", filePath),
				"check the path, or create the file with 'dataset prepare'",
			)
		}
		return nil, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	if fileInfo.IsDir() {
		return nil, exterrors.Validation(
			exterrors.CodeFileNotFound,
			fmt.Sprintf("path is a directory, not a file: %s", filePath),
			"pass the path of a .jsonl dataset file",
		)
	}

	file, err := s.provider.UploadFile(ctx, filePath)
	if err != nil {
		return nil, exterrors.FromService(err, "upload file")
	}

	if s.stateStore != nil {
		if err := s.stateStore.SaveFile(ctx, file); err != nil {
			logging.WithField("file_id", file.ID).Warnf("failed to record upload in ledger: %v", err)
		}
	}

	return file, nil
}

// GetUploadedFile retrieves an uploaded file handle
func (s *fineTuningServiceImpl) GetUploadedFile(ctx context.Context, fileID string) (*models.UploadedFile, error) {
	if fileID == "" {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments, "file ID is required", "pass the file ID with --id")
	}

	file, err := s.provider.GetUploadedFile(ctx, fileID)
	if err != nil {
		return nil, exterrors.FromService(err, "get file")
	}
	return file, nil
}

// CreateFineTuningJob creates a new fine-tuning job with business validation
func (s *fineTuningServiceImpl) CreateFineTuningJob(ctx context.Context, req *models.CreateFineTuningRequest) (*models.FineTuningJob, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, exterrors.Validation(exterrors.CodeInvalidJobConfig, err.Error(), "set the value with a flag or in the --file job config")
	}

	// The caller's request is left untouched; uploads and the run id go on a copy.
	submitted := *req
	progress := color.New(color.FgGreen)

	if utils.IsLocalFilePath(submitted.TrainingFile) {
		progress.Fprintln(os.Stderr, "Uploading training file...")
		file, err := s.UploadFile(ctx, utils.GetLocalFilePath(submitted.TrainingFile))
		if err != nil {
			return nil, fmt.Errorf("failed to upload training file: %w", err)
		}
		submitted.TrainingFile = file.ID
	}

	if submitted.ValidationFile != nil && utils.IsLocalFilePath(*submitted.ValidationFile) {
		progress.Fprintln(os.Stderr, "Uploading validation file...")
		file, err := s.UploadFile(ctx, utils.GetLocalFilePath(*submitted.ValidationFile))
		if err != nil {
			return nil, fmt.Errorf("failed to upload validation file: %w", err)
		}
		submitted.ValidationFile = &file.ID
	}

	metadata := make(map[string]string, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if metadata[state.ClientRunIDKey] == "" {
		metadata[state.ClientRunIDKey] = s.newRunID()
	}
	submitted.Metadata = metadata

	job, err := s.provider.CreateFineTuningJob(ctx, &submitted)
	if err != nil {
		return nil, exterrors.FromService(err, "create fine-tuning job")
	}

	logging.WithFields(map[string]interface{}{
		"job_id":        job.ID,
		"model":         submitted.BaseModel,
		"client_run_id": metadata[state.ClientRunIDKey],
	}).Info("fine-tuning job created")

	s.recordJob(ctx, job)
	return job, nil
}

// GetFineTuningStatus retrieves the current status of a job
func (s *fineTuningServiceImpl) GetFineTuningStatus(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	if err := requireJobID(jobID); err != nil {
		return nil, err
	}

	job, err := s.provider.GetFineTuningStatus(ctx, jobID)
	if err != nil {
		return nil, exterrors.FromService(err, "get fine-tuning job")
	}

	s.recordJob(ctx, job)
	return job, nil
}

// GetJobReport is one manual poll: a job retrieval followed by one event listing
func (s *fineTuningServiceImpl) GetJobReport(ctx context.Context, jobID string, eventLimit int) (*models.JobReport, error) {
	job, err := s.GetFineTuningStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}

	events, err := s.GetJobEvents(ctx, jobID, eventLimit, "")
	if err != nil {
		return nil, err
	}

	return &models.JobReport{
		Job:    job,
		Events: events.Data,
	}, nil
}

// ListFineTuningJobs lists fine-tuning jobs
func (s *fineTuningServiceImpl) ListFineTuningJobs(ctx context.Context, limit int, after string) ([]*models.FineTuningJob, error) {
	jobs, err := s.provider.ListFineTuningJobs(ctx, limit, after)
	if err != nil {
		return nil, exterrors.FromService(err, "list fine-tuning jobs")
	}
	return jobs, nil
}

// GetJobEvents retrieves one page of events. The service returns them newest first;
// they are handed back oldest first.
func (s *fineTuningServiceImpl) GetJobEvents(ctx context.Context, jobID string, limit int, after string) (*models.JobEventsList, error) {
	if err := requireJobID(jobID); err != nil {
		return nil, err
	}

	events, err := s.provider.GetJobEvents(ctx, jobID, limit, after)
	if err != nil {
		return nil, exterrors.FromService(err, "list job events")
	}

	return &models.JobEventsList{
		Data:    oldestFirst(events.Data),
		HasMore: events.HasMore,
	}, nil
}

// GetJobCheckpoints retrieves checkpoints for a job
func (s *fineTuningServiceImpl) GetJobCheckpoints(ctx context.Context, jobID string, limit int, after string) (*models.JobCheckpointsList, error) {
	if err := requireJobID(jobID); err != nil {
		return nil, err
	}

	checkpoints, err := s.provider.GetJobCheckpoints(ctx, jobID, limit, after)
	if err != nil {
		return nil, exterrors.FromService(err, "list job checkpoints")
	}
	return checkpoints, nil
}

// executeJobAction performs a job state change action (pause, resume, cancel)
func (s *fineTuningServiceImpl) executeJobAction(ctx context.Context, jobID string, action models.JobAction) (*models.FineTuningJob, error) {
	if err := requireJobID(jobID); err != nil {
		return nil, err
	}

	var (
		job *models.FineTuningJob
		err error
	)
	switch action {
	case models.JobActionPause:
		job, err = s.provider.PauseJob(ctx, jobID)
	case models.JobActionResume:
		job, err = s.provider.ResumeJob(ctx, jobID)
	case models.JobActionCancel:
		job, err = s.provider.CancelJob(ctx, jobID)
	default:
		return nil, fmt.Errorf("unsupported job action %q", action)
	}
	if err != nil {
		return nil, exterrors.FromService(err, fmt.Sprintf("%s fine-tuning job", action))
	}

	s.recordJob(ctx, job)
	return job, nil
}

// PauseJob pauses a running job
func (s *fineTuningServiceImpl) PauseJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	return s.executeJobAction(ctx, jobID, models.JobActionPause)
}

// ResumeJob resumes a paused job
func (s *fineTuningServiceImpl) ResumeJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	return s.executeJobAction(ctx, jobID, models.JobActionResume)
}

// CancelJob cancels a job
func (s *fineTuningServiceImpl) CancelJob(ctx context.Context, jobID string) (*models.FineTuningJob, error) {
	return s.executeJobAction(ctx, jobID, models.JobActionCancel)
}

// GetFineTunedModel returns the model produced by a succeeded job
func (s *fineTuningServiceImpl) GetFineTunedModel(ctx context.Context, jobID string) (string, error) {
	job, err := s.GetFineTuningStatus(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job == nil || job.Status != models.StatusSucceeded || job.FineTunedModel == "" {
		status := models.JobStatus("unknown")
		if job != nil {
			status = job.Status
		}
		return "", exterrors.Validation(
			exterrors.CodeModelNotReady,
			fmt.Sprintf("fine-tuned model not found for job ID %s (status: %s)", jobID, status),
			fmt.Sprintf("wait until the job has succeeded; check it with 'jobs show --id %s'", jobID),
		)
	}
	return job.FineTunedModel, nil
}

// WatchJob polls at a fixed interval until the job is terminal. Each report carries
// only the events not delivered by an earlier poll, oldest first.
func (s *fineTuningServiceImpl) WatchJob(
	ctx context.Context,
	jobID string,
	interval time.Duration,
	onPoll func(*models.JobReport),
) (*models.FineTuningJob, error) {
	seen := map[string]bool{}
	polls := 0
	var last *models.FineTuningJob

	err := utils.PollUntilDone(ctx, interval, 0, func(ctx context.Context) (bool, error) {
		job, err := s.GetFineTuningStatus(ctx, jobID)
		if err != nil {
			return false, err
		}
		last = job

		// The first poll shows one page; later polls walk back to the last event seen.
		events, err := s.eventsSince(ctx, jobID, seen, polls > 0)
		if err != nil {
			return false, err
		}
		polls++

		if onPoll != nil {
			onPoll(&models.JobReport{Job: job, Events: events})
		}
		return job.Status.IsTerminal(), nil
	})
	if err != nil {
		return last, exterrors.FromService(err, "watch fine-tuning job")
	}
	return last, nil
}

// eventsSince returns the events not yet in seen, oldest first, and marks them seen.
// With catchUp it keeps requesting older pages until it reaches a seen event or the
// end of the log, so a burst larger than one page is not cut short.
func (s *fineTuningServiceImpl) eventsSince(
	ctx context.Context,
	jobID string,
	seen map[string]bool,
	catchUp bool,
) ([]models.JobEvent, error) {
	var fresh []models.JobEvent
	after := ""
	for {
		page, err := s.provider.GetJobEvents(ctx, jobID, DefaultEventLimit, after)
		if err != nil {
			return nil, exterrors.FromService(err, "list job events")
		}

		reachedSeen := false
		for _, event := range page.Data {
			if seen[event.ID] {
				reachedSeen = true
				break
			}
			fresh = append(fresh, event)
		}

		if reachedSeen || !catchUp || !page.HasMore || len(page.Data) == 0 {
			break
		}
		after = page.Data[len(page.Data)-1].ID
	}

	for _, event := range fresh {
		seen[event.ID] = true
	}
	return oldestFirst(fresh), nil
}

func (s *fineTuningServiceImpl) recordJob(ctx context.Context, job *models.FineTuningJob) {
	if s.stateStore == nil || job == nil {
		return
	}
	if err := s.stateStore.SaveJob(ctx, job); err != nil {
		logging.WithField("job_id", job.ID).Warnf("failed to record job in ledger: %v", err)
	}
}

func requireJobID(jobID string) error {
	if jobID == "" {
		return exterrors.Validation(exterrors.CodeInvalidArguments, "job ID is required", "pass the job ID with --id")
	}
	return nil
}

// oldestFirst returns the events in reverse order without modifying the input
func oldestFirst(events []models.JobEvent) []models.JobEvent {
	reversed := make([]models.JobEvent, len(events))
	for i, event := range events {
		reversed[len(events)-1-i] = event
	}
	return reversed
}
