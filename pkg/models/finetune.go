// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobStatus represents the status of a fine-tuning job
type JobStatus string

const (
	StatusPending         JobStatus = "pending"
	StatusValidatingFiles JobStatus = "validating_files"
	StatusQueued          JobStatus = "queued"
	StatusRunning         JobStatus = "running"
	StatusPaused          JobStatus = "paused"
	StatusSucceeded       JobStatus = "succeeded"
	StatusFailed          JobStatus = "failed"
	StatusCancelled       JobStatus = "cancelled"
)

// IsTerminal returns true once the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// JobAction represents an action that can be performed on a fine-tuning job
type JobAction string

const (
	JobActionPause  JobAction = "pause"
	JobActionResume JobAction = "resume"
	JobActionCancel JobAction = "cancel"
)

// MethodType represents the training method of a fine-tuning job
type MethodType string

const (
	Supervised MethodType = "supervised"
)

// Duration is a job run time rendered as "1h 05m"
type Duration time.Duration

func (d Duration) String() string {
	if d == 0 {
		return "-"
	}
	td := time.Duration(d)
	hours := int(td.Hours())
	minutes := int(td.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// FineTuningJob is the client-side copy of a remote fine-tuning job
type FineTuningJob struct {
	ID              string            `json:"id" yaml:"id"`
	Status          JobStatus         `json:"status" yaml:"status"`
	BaseModel       string            `json:"model" yaml:"model"`
	FineTunedModel  string            `json:"fine_tuned_model,omitempty" yaml:"fine_tuned_model,omitempty"`
	TrainingFile    string            `json:"training_file" yaml:"training_file"`
	ValidationFile  string            `json:"validation_file,omitempty" yaml:"validation_file,omitempty"`
	Method          string            `json:"method,omitempty" yaml:"method,omitempty"`
	Hyperparameters *Hyperparameters  `json:"hyperparameters,omitempty" yaml:"hyperparameters,omitempty"`
	Seed            int64             `json:"seed,omitempty" yaml:"seed,omitempty"`
	TrainedTokens   int64             `json:"trained_tokens,omitempty" yaml:"trained_tokens,omitempty"`
	ResultFiles     []string          `json:"result_files,omitempty" yaml:"result_files,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at" yaml:"created_at"`
	FinishedAt      *time.Time        `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	EstimatedFinish *time.Time        `json:"estimated_finish,omitempty" yaml:"estimated_finish,omitempty"`
	Duration        Duration          `json:"duration" yaml:"duration"`
	Error           *ErrorDetail      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Hyperparameters are the effective hyperparameters reported for a job
type Hyperparameters struct {
	NEpochs                int64   `json:"n_epochs,omitempty" yaml:"n_epochs,omitempty"`
	BatchSize              int64   `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	LearningRateMultiplier float64 `json:"learning_rate_multiplier,omitempty" yaml:"learning_rate_multiplier,omitempty"`
}

// ErrorDetail carries the error the service attached to a failed job
type ErrorDetail struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Param   string `json:"param,omitempty" yaml:"param,omitempty"`
}

// JobEvent is one entry of a job's event log
type JobEvent struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Level     string    `json:"level" yaml:"level"`
	Message   string    `json:"message" yaml:"message"`
	Type      string    `json:"type,omitempty" yaml:"type,omitempty"`
}

// JobEventsList is a page of events, oldest first
type JobEventsList struct {
	Data    []JobEvent `json:"data" yaml:"data"`
	HasMore bool       `json:"has_more" yaml:"has_more"`
}

// CheckpointMetrics holds the metrics recorded at a checkpoint
type CheckpointMetrics struct {
	TrainLoss                  float64 `json:"train_loss,omitempty" yaml:"train_loss,omitempty"`
	TrainMeanTokenAccuracy     float64 `json:"train_mean_token_accuracy,omitempty" yaml:"train_mean_token_accuracy,omitempty"`
	FullValidLoss              float64 `json:"full_valid_loss,omitempty" yaml:"full_valid_loss,omitempty"`
	FullValidMeanTokenAccuracy float64 `json:"full_valid_mean_token_accuracy,omitempty" yaml:"full_valid_mean_token_accuracy,omitempty"`
}

// JobCheckpoint is an intermediate model snapshot produced by a job
type JobCheckpoint struct {
	ID                       string             `json:"id" yaml:"id"`
	CreatedAt                time.Time          `json:"created_at" yaml:"created_at"`
	FineTunedModelCheckpoint string             `json:"fine_tuned_model_checkpoint" yaml:"fine_tuned_model_checkpoint"`
	FineTuningJobID          string             `json:"fine_tuning_job_id" yaml:"fine_tuning_job_id"`
	StepNumber               int64              `json:"step_number" yaml:"step_number"`
	Metrics                  *CheckpointMetrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// JobCheckpointsList is a page of checkpoints
type JobCheckpointsList struct {
	Data    []JobCheckpoint `json:"data" yaml:"data"`
	HasMore bool            `json:"has_more" yaml:"has_more"`
}

// UploadedFile is the handle returned by the service for an uploaded dataset
type UploadedFile struct {
	ID            string    `json:"id" yaml:"id"`
	Filename      string    `json:"filename" yaml:"filename"`
	Bytes         int64     `json:"bytes" yaml:"bytes"`
	Purpose       string    `json:"purpose" yaml:"purpose"`
	Status        string    `json:"status" yaml:"status"`
	StatusDetails string    `json:"status_details,omitempty" yaml:"status_details,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// JobReport is one poll of a job: its current state and events, oldest first
type JobReport struct {
	Job    *FineTuningJob `json:"job" yaml:"job"`
	Events []JobEvent     `json:"events" yaml:"events"`
}
