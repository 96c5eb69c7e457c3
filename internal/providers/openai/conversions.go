// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package openai

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"

	"finetune.quickstart/internal/utils"
	"finetune.quickstart/pkg/models"
)

// statusPaused is reported by the service but has no SDK constant
const statusPaused openai.FineTuningJobStatus = "paused"

var jobStatuses = map[openai.FineTuningJobStatus]models.JobStatus{
	openai.FineTuningJobStatusValidatingFiles: models.StatusValidatingFiles,
	openai.FineTuningJobStatusQueued:          models.StatusQueued,
	openai.FineTuningJobStatusRunning:         models.StatusRunning,
	statusPaused:                              models.StatusPaused,
	openai.FineTuningJobStatusSucceeded:       models.StatusSucceeded,
	openai.FineTuningJobStatusFailed:          models.StatusFailed,
	openai.FineTuningJobStatusCancelled:       models.StatusCancelled,
}

// mapOpenAIStatusToJobStatus maps an SDK status onto the domain enum. Statuses the
// client does not know yet are reported as pending rather than terminal.
func mapOpenAIStatusToJobStatus(status openai.FineTuningJobStatus) models.JobStatus {
	if mapped, ok := jobStatuses[status]; ok {
		return mapped
	}
	return models.StatusPending
}

// convertOpenAIJobToModel converts OpenAI SDK job to domain model
func convertOpenAIJobToModel(openaiJob *openai.FineTuningJob) *models.FineTuningJob {
	status := mapOpenAIStatusToJobStatus(openaiJob.Status)

	job := &models.FineTuningJob{
		ID:              openaiJob.ID,
		Status:          status,
		BaseModel:       openaiJob.Model,
		FineTunedModel:  openaiJob.FineTunedModel,
		TrainingFile:    openaiJob.TrainingFile,
		ValidationFile:  openaiJob.ValidationFile,
		Method:          string(openaiJob.Method.Type),
		Hyperparameters: convertOpenAIHyperparameters(openaiJob),
		Seed:            openaiJob.Seed,
		TrainedTokens:   openaiJob.TrainedTokens,
		ResultFiles:     openaiJob.ResultFiles,
		CreatedAt:       utils.UnixTimestampToUTC(openaiJob.CreatedAt),
		Duration:        models.Duration(utils.CalculateDuration(openaiJob.CreatedAt, openaiJob.FinishedAt)),
	}

	if len(openaiJob.Metadata) > 0 {
		job.Metadata = make(map[string]string, len(openaiJob.Metadata))
		for k, v := range openaiJob.Metadata {
			job.Metadata[k] = v
		}
	}

	// Finish time only means something once the job is terminal, and the estimate
	// only while it is not.
	if status.IsTerminal() {
		job.FinishedAt = utils.UnixTimestampToUTCPtr(openaiJob.FinishedAt)
	} else {
		job.EstimatedFinish = utils.UnixTimestampToUTCPtr(openaiJob.EstimatedFinish)
	}

	if openaiJob.Error.Code != "" || openaiJob.Error.Message != "" {
		job.Error = &models.ErrorDetail{
			Code:    openaiJob.Error.Code,
			Message: openaiJob.Error.Message,
			Param:   openaiJob.Error.Param,
		}
	}

	return job
}

func convertOpenAIHyperparameters(openaiJob *openai.FineTuningJob) *models.Hyperparameters {
	hyperparameters := &models.Hyperparameters{}
	if openaiJob.Method.Type == "supervised" {
		hp := openaiJob.Method.Supervised.Hyperparameters
		hyperparameters.BatchSize = hp.BatchSize.OfInt
		hyperparameters.LearningRateMultiplier = hp.LearningRateMultiplier.OfFloat
		hyperparameters.NEpochs = hp.NEpochs.OfInt
	} else {
		// Older jobs only report the top-level block
		hyperparameters.BatchSize = openaiJob.Hyperparameters.BatchSize.OfInt
		hyperparameters.LearningRateMultiplier = openaiJob.Hyperparameters.LearningRateMultiplier.OfFloat
		hyperparameters.NEpochs = openaiJob.Hyperparameters.NEpochs.OfInt
	}

	if *hyperparameters == (models.Hyperparameters{}) {
		return nil
	}
	return hyperparameters
}

// convertOpenAIJobEventsToModel converts OpenAI SDK job events to domain model,
// keeping the service's order
func convertOpenAIJobEventsToModel(data []openai.FineTuningJobEvent, hasMore bool) *models.JobEventsList {
	events := make([]models.JobEvent, 0, len(data))
	for _, event := range data {
		events = append(events, models.JobEvent{
			ID:        event.ID,
			CreatedAt: utils.UnixTimestampToUTC(event.CreatedAt),
			Level:     string(event.Level),
			Message:   event.Message,
			Type:      string(event.Type),
		})
	}

	return &models.JobEventsList{
		Data:    events,
		HasMore: hasMore,
	}
}

// convertOpenAIJobCheckpointsToModel converts OpenAI SDK job checkpoints to domain model
func convertOpenAIJobCheckpointsToModel(data []openai.FineTuningJobCheckpoint, hasMore bool) *models.JobCheckpointsList {
	checkpoints := make([]models.JobCheckpoint, 0, len(data))
	for _, checkpoint := range data {
		checkpoints = append(checkpoints, models.JobCheckpoint{
			ID:                       checkpoint.ID,
			CreatedAt:                utils.UnixTimestampToUTC(checkpoint.CreatedAt),
			FineTunedModelCheckpoint: checkpoint.FineTunedModelCheckpoint,
			FineTuningJobID:          checkpoint.FineTuningJobID,
			StepNumber:               checkpoint.StepNumber,
			Metrics: &models.CheckpointMetrics{
				TrainLoss:                  checkpoint.Metrics.TrainLoss,
				TrainMeanTokenAccuracy:     checkpoint.Metrics.TrainMeanTokenAccuracy,
				FullValidLoss:              checkpoint.Metrics.FullValidLoss,
				FullValidMeanTokenAccuracy: checkpoint.Metrics.FullValidMeanTokenAccuracy,
			},
		})
	}

	return &models.JobCheckpointsList{
		Data:    checkpoints,
		HasMore: hasMore,
	}
}

// convertOpenAIFileToModel converts an SDK file object to the uploaded file handle
func convertOpenAIFileToModel(file *openai.FileObject) *models.UploadedFile {
	return &models.UploadedFile{
		ID:            file.ID,
		Filename:      file.Filename,
		Bytes:         file.Bytes,
		Purpose:       string(file.Purpose),
		Status:        string(file.Status),
		StatusDetails: file.StatusDetails,
		CreatedAt:     utils.UnixTimestampToUTC(file.CreatedAt),
	}
}

// Converts the internal create finetuning request model to OpenAI job parameters
func convertInternalJobParamToOpenAiJobParams(config *models.CreateFineTuningRequest) openai.FineTuningJobNewParams {
	jobParams := openai.FineTuningJobNewParams{
		Model:        openai.FineTuningJobNewParamsModel(config.BaseModel),
		TrainingFile: config.TrainingFile,
	}

	if config.ValidationFile != nil && *config.ValidationFile != "" {
		jobParams.ValidationFile = openai.String(*config.ValidationFile)
	}

	if config.Suffix != nil && *config.Suffix != "" {
		jobParams.Suffix = openai.String(*config.Suffix)
	}

	if config.Seed != nil {
		jobParams.Seed = openai.Int(*config.Seed)
	}

	if len(config.Metadata) > 0 {
		jobParams.Metadata = make(map[string]string, len(config.Metadata))
		for k, v := range config.Metadata {
			jobParams.Metadata[k] = v
		}
	}

	// Unset hyperparameters are left to the service ("auto")
	if config.Method.Supervised != nil {
		hp := config.Method.Supervised.Hyperparameters
		supervisedMethod := openai.SupervisedMethodParam{
			Hyperparameters: openai.SupervisedHyperparameters{},
		}

		if hp.BatchSize != nil {
			supervisedMethod.Hyperparameters.BatchSize = openai.SupervisedHyperparametersBatchSizeUnion{
				OfInt: openai.Int(*hp.BatchSize),
			}
		}
		if hp.LearningRateMultiplier != nil {
			supervisedMethod.Hyperparameters.LearningRateMultiplier = openai.SupervisedHyperparametersLearningRateMultiplierUnion{
				OfFloat: openai.Float(*hp.LearningRateMultiplier),
			}
		}
		if hp.Epochs != nil {
			supervisedMethod.Hyperparameters.NEpochs = openai.SupervisedHyperparametersNEpochsUnion{
				OfInt: openai.Int(*hp.Epochs),
			}
		}

		jobParams.Method = openai.FineTuningJobNewParamsMethod{
			Type:       "supervised",
			Supervised: supervisedMethod,
		}
	}

	return jobParams
}

// convertChatRequestToOpenAIParams maps a chat request onto completion parameters
func convertChatRequestToOpenAIParams(req *models.ChatRequest) (openai.ChatCompletionNewParams, error) {
	if req.Model == "" {
		return openai.ChatCompletionNewParams{}, errors.New("model is required")
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, errors.New("at least one message is required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for i, msg := range req.Messages {
		switch msg.Role {
		case models.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(*req.MaxTokens)
	}

	return params, nil
}

// convertOpenAIChatCompletionToModel keeps the first choice
func convertOpenAIChatCompletionToModel(completion *openai.ChatCompletion) (*models.ChatResponse, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	choice := completion.Choices[0]
	return &models.ChatResponse{
		ID:           completion.ID,
		Model:        completion.Model,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: models.TokenUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}
