package models

import (
	"fmt"
	"time"
)

// FineTuningJobTableView is the table display representation for job listings
type FineTuningJobTableView struct {
	ID             string
	Status         JobStatus
	BaseModel      string
	FineTunedModel string
	Created        string
	Duration       string
}

// JobDetailsView is the basic job info section
type JobDetailsView struct {
	ID             string
	Status         JobStatus
	Model          string
	FineTunedModel string
	Created        string
	Finished       string
	EstimatedETA   string
	TrainingFile   string
	ValidationFile string
	Method         string
	Epochs         string
	BatchSize      string
	LearningRate   string
	TrainedTokens  string
	Error          string
}

// JobEventTableView is one row of the event log
type JobEventTableView struct {
	Created string
	Level   string
	Message string
}

// JobCheckpointTableView is one row of the checkpoint listing
type JobCheckpointTableView struct {
	Step       int64
	Checkpoint string
	TrainLoss  string
	ValidLoss  string
	Created    string
}

// UploadedFileTableView is the table display representation of an uploaded file
type UploadedFileTableView struct {
	ID       string
	Filename string
	Bytes    int64
	Status   string
	Created  string
}

// ToTableView converts a FineTuningJob to its table view (for list command)
func (j *FineTuningJob) ToTableView() *FineTuningJobTableView {
	return &FineTuningJobTableView{
		ID:             j.ID,
		Status:         j.Status,
		BaseModel:      j.BaseModel,
		FineTunedModel: stringOrDash(j.FineTunedModel),
		Created:        formatTimeOrDash(j.CreatedAt),
		Duration:       j.Duration.String(),
	}
}

// ToDetailsView converts a FineTuningJob to its detail view (for show command)
func (j *FineTuningJob) ToDetailsView() *JobDetailsView {
	view := &JobDetailsView{
		ID:             j.ID,
		Status:         j.Status,
		Model:          j.BaseModel,
		FineTunedModel: stringOrDash(j.FineTunedModel),
		Created:        formatTimeOrDash(j.CreatedAt),
		Finished:       formatTimePointerOrDash(j.FinishedAt),
		EstimatedETA:   formatTimePointerOrDash(j.EstimatedFinish),
		TrainingFile:   j.TrainingFile,
		ValidationFile: stringOrDash(j.ValidationFile),
		Method:         stringOrDash(j.Method),
		Epochs:         "-",
		BatchSize:      "-",
		LearningRate:   "-",
		TrainedTokens:  formatInt64OrDash(j.TrainedTokens),
		Error:          "-",
	}

	if j.Hyperparameters != nil {
		view.Epochs = formatInt64OrDash(j.Hyperparameters.NEpochs)
		view.BatchSize = formatInt64OrDash(j.Hyperparameters.BatchSize)
		view.LearningRate = formatFloatOrDash(j.Hyperparameters.LearningRateMultiplier)
	}

	if j.Error != nil && j.Error.Message != "" {
		view.Error = fmt.Sprintf("%s: %s", j.Error.Code, j.Error.Message)
	}

	return view
}

// ToTableViews converts a slice of jobs to table views
func ToTableViews(jobs []*FineTuningJob) []*FineTuningJobTableView {
	views := make([]*FineTuningJobTableView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, job.ToTableView())
	}
	return views
}

// ToTableViews converts the events to table rows, preserving order
func (l *JobEventsList) ToTableViews() []*JobEventTableView {
	views := make([]*JobEventTableView, 0, len(l.Data))
	for _, event := range l.Data {
		views = append(views, &JobEventTableView{
			Created: formatTimeOrDash(event.CreatedAt),
			Level:   event.Level,
			Message: event.Message,
		})
	}
	return views
}

// ToTableViews converts the checkpoints to table rows
func (l *JobCheckpointsList) ToTableViews() []*JobCheckpointTableView {
	views := make([]*JobCheckpointTableView, 0, len(l.Data))
	for _, checkpoint := range l.Data {
		view := &JobCheckpointTableView{
			Step:       checkpoint.StepNumber,
			Checkpoint: checkpoint.FineTunedModelCheckpoint,
			TrainLoss:  "-",
			ValidLoss:  "-",
			Created:    formatTimeOrDash(checkpoint.CreatedAt),
		}
		if checkpoint.Metrics != nil {
			view.TrainLoss = formatFloatOrDash(checkpoint.Metrics.TrainLoss)
			view.ValidLoss = formatFloatOrDash(checkpoint.Metrics.FullValidLoss)
		}
		views = append(views, view)
	}
	return views
}

// ToTableView converts an uploaded file handle to its table view
func (f *UploadedFile) ToTableView() *UploadedFileTableView {
	return &UploadedFileTableView{
		ID:       f.ID,
		Filename: f.Filename,
		Bytes:    f.Bytes,
		Status:   stringOrDash(f.Status),
		Created:  formatTimeOrDash(f.CreatedAt),
	}
}

func formatFloatOrDash(f float64) string {
	if f == 0 {
		return "-"
	}
	return fmt.Sprintf("%g", f)
}

func formatInt64OrDash(i int64) string {
	if i == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", i)
}

func stringOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTimeOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func formatTimePointerOrDash(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
