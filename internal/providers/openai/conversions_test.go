// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package openai

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/require"

	"finetune.quickstart/pkg/models"
)

func decodeJob(t *testing.T, raw string) *openai.FineTuningJob {
	t.Helper()
	var job openai.FineTuningJob
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	return &job
}

func encodeParams(t *testing.T, params interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestMapOpenAIStatusToJobStatus(t *testing.T) {
	tests := []struct {
		input    openai.FineTuningJobStatus
		expected models.JobStatus
	}{
		{"validating_files", models.StatusValidatingFiles},
		{"queued", models.StatusQueued},
		{"running", models.StatusRunning},
		{"paused", models.StatusPaused},
		{"succeeded", models.StatusSucceeded},
		{"failed", models.StatusFailed},
		{"cancelled", models.StatusCancelled},
		{"something_new", models.StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			require.Equal(t, tt.expected, mapOpenAIStatusToJobStatus(tt.input))
		})
	}
}

func TestConvertOpenAIJobToModel(t *testing.T) {
	t.Run("SucceededSupervisedJob", func(t *testing.T) {
		job := convertOpenAIJobToModel(decodeJob(t, `{
			"id": "ftjob-abc",
			"object": "fine_tuning.job",
			"created_at": 1700000000,
			"finished_at": 1700003900,
			"estimated_finish": 1700004000,
			"model": "gpt-4o-mini-2024-07-18",
			"fine_tuned_model": "ft:gpt-4o-mini-2024-07-18:org::abc",
			"organization_id": "org-1",
			"status": "succeeded",
			"training_file": "file-train",
			"validation_file": "file-valid",
			"result_files": ["file-result"],
			"seed": 42,
			"trained_tokens": 12345,
			"metadata": {"client_run_id": "run-1"},
			"hyperparameters": {"n_epochs": 1},
			"method": {
				"type": "supervised",
				"supervised": {"hyperparameters": {"n_epochs": 3, "batch_size": 8, "learning_rate_multiplier": 0.5}}
			}
		}`))

		require.Equal(t, "ftjob-abc", job.ID)
		require.Equal(t, models.StatusSucceeded, job.Status)
		require.Equal(t, "gpt-4o-mini-2024-07-18", job.BaseModel)
		require.Equal(t, "ft:gpt-4o-mini-2024-07-18:org::abc", job.FineTunedModel)
		require.Equal(t, "file-train", job.TrainingFile)
		require.Equal(t, "file-valid", job.ValidationFile)
		require.Equal(t, "supervised", job.Method)
		require.Equal(t, []string{"file-result"}, job.ResultFiles)
		require.Equal(t, int64(42), job.Seed)
		require.Equal(t, int64(12345), job.TrainedTokens)
		require.Equal(t, map[string]string{"client_run_id": "run-1"}, job.Metadata)
		require.Equal(t, &models.Hyperparameters{NEpochs: 3, BatchSize: 8, LearningRateMultiplier: 0.5}, job.Hyperparameters)
		require.Equal(t, time.Unix(1700000000, 0).UTC(), job.CreatedAt)
		require.NotNil(t, job.FinishedAt)
		require.Nil(t, job.EstimatedFinish, "terminal jobs carry no estimate")
		require.Equal(t, models.Duration(time.Hour+5*time.Minute), job.Duration)
		require.Nil(t, job.Error)
	})

	t.Run("RunningJobUsesEstimate", func(t *testing.T) {
		job := convertOpenAIJobToModel(decodeJob(t, `{
			"id": "ftjob-run",
			"created_at": 1700000000,
			"estimated_finish": 1700004000,
			"model": "gpt-4o-mini",
			"status": "running",
			"training_file": "file-train",
			"hyperparameters": {"n_epochs": "auto"}
		}`))

		require.Equal(t, models.StatusRunning, job.Status)
		require.Nil(t, job.FinishedAt)
		require.NotNil(t, job.EstimatedFinish)
		require.Equal(t, models.Duration(0), job.Duration)
		require.Nil(t, job.Hyperparameters, "auto hyperparameters are not reported")
		require.Empty(t, job.FineTunedModel)
	})

	t.Run("FailedJobCarriesError", func(t *testing.T) {
		job := convertOpenAIJobToModel(decodeJob(t, `{
			"id": "ftjob-bad",
			"created_at": 1700000000,
			"finished_at": 1700000100,
			"model": "gpt-4o-mini",
			"status": "failed",
			"training_file": "file-train",
			"error": {"code": "invalid_training_file", "message": "line 3 is not valid JSON", "param": "training_file"}
		}`))

		require.Equal(t, models.StatusFailed, job.Status)
		require.Equal(t, &models.ErrorDetail{
			Code:    "invalid_training_file",
			Message: "line 3 is not valid JSON",
			Param:   "training_file",
		}, job.Error)
	})
}

func TestConvertOpenAIJobEventsToModel_KeepsServiceOrder(t *testing.T) {
	var events []openai.FineTuningJobEvent
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": "ev-3", "created_at": 1700000300, "level": "info", "message": "Job succeeded", "object": "fine_tuning.job.event", "type": "message"},
		{"id": "ev-2", "created_at": 1700000200, "level": "warn", "message": "Step 10 slow", "object": "fine_tuning.job.event"},
		{"id": "ev-1", "created_at": 1700000100, "level": "info", "message": "Job started", "object": "fine_tuning.job.event"}
	]`), &events))

	list := convertOpenAIJobEventsToModel(events, true)

	require.True(t, list.HasMore)
	require.Len(t, list.Data, 3)
	require.Equal(t, "ev-3", list.Data[0].ID)
	require.Equal(t, "ev-1", list.Data[2].ID)
	require.Equal(t, "warn", list.Data[1].Level)
	require.Equal(t, "message", list.Data[0].Type)
}

func TestConvertOpenAIJobCheckpointsToModel(t *testing.T) {
	var checkpoints []openai.FineTuningJobCheckpoint
	require.NoError(t, json.Unmarshal([]byte(`[{
		"id": "ftckpt-1",
		"created_at": 1700000000,
		"fine_tuned_model_checkpoint": "ft:gpt-4o-mini:org::abc:ckpt-step-10",
		"fine_tuning_job_id": "ftjob-abc",
		"object": "fine_tuning.job.checkpoint",
		"step_number": 10,
		"metrics": {"train_loss": 0.25, "full_valid_loss": 0.5, "train_mean_token_accuracy": 0.9}
	}]`), &checkpoints))

	list := convertOpenAIJobCheckpointsToModel(checkpoints, false)

	require.Len(t, list.Data, 1)
	checkpoint := list.Data[0]
	require.Equal(t, int64(10), checkpoint.StepNumber)
	require.Equal(t, "ftjob-abc", checkpoint.FineTuningJobID)
	require.Equal(t, 0.25, checkpoint.Metrics.TrainLoss)
	require.Equal(t, 0.5, checkpoint.Metrics.FullValidLoss)
	require.Equal(t, 0.9, checkpoint.Metrics.TrainMeanTokenAccuracy)
}

func TestConvertOpenAIFileToModel(t *testing.T) {
	var file openai.FileObject
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "file-abc",
		"bytes": 2048,
		"created_at": 1700000000,
		"filename": "train.jsonl",
		"object": "file",
		"purpose": "fine-tune",
		"status": "processed"
	}`), &file))

	uploaded := convertOpenAIFileToModel(&file)

	require.Equal(t, "file-abc", uploaded.ID)
	require.Equal(t, int64(2048), uploaded.Bytes)
	require.Equal(t, "train.jsonl", uploaded.Filename)
	require.Equal(t, "fine-tune", uploaded.Purpose)
	require.Equal(t, "processed", uploaded.Status)
}

func TestConvertInternalJobParamToOpenAiJobParams(t *testing.T) {
	ptr := func(s string) *string { return &s }

	t.Run("MinimalRequest", func(t *testing.T) {
		params := convertInternalJobParamToOpenAiJobParams(&models.CreateFineTuningRequest{
			BaseModel:    "gpt-4o-mini",
			TrainingFile: "file-train",
		})

		body := encodeParams(t, params)
		require.Equal(t, "gpt-4o-mini", body["model"])
		require.Equal(t, "file-train", body["training_file"])
		require.NotContains(t, body, "validation_file")
		require.NotContains(t, body, "suffix")
		require.NotContains(t, body, "method")
	})

	t.Run("FullRequest", func(t *testing.T) {
		epochs := int64(3)
		seed := int64(7)
		lr := 0.5

		params := convertInternalJobParamToOpenAiJobParams(&models.CreateFineTuningRequest{
			BaseModel:      "gpt-4o-mini",
			TrainingFile:   "file-train",
			ValidationFile: ptr("file-valid"),
			Suffix:         ptr("support"),
			Seed:           &seed,
			Metadata:       map[string]string{"client_run_id": "run-1"},
			Method: models.MethodConfig{
				Type: models.Supervised,
				Supervised: &models.SupervisedConfig{
					Hyperparameters: models.HyperparametersConfig{
						Epochs:                 &epochs,
						LearningRateMultiplier: &lr,
					},
				},
			},
		})

		body := encodeParams(t, params)
		require.Equal(t, "file-valid", body["validation_file"])
		require.Equal(t, "support", body["suffix"])
		require.EqualValues(t, 7, body["seed"])
		require.Equal(t, map[string]interface{}{"client_run_id": "run-1"}, body["metadata"])

		method := body["method"].(map[string]interface{})
		require.Equal(t, "supervised", method["type"])
		hp := method["supervised"].(map[string]interface{})["hyperparameters"].(map[string]interface{})
		require.EqualValues(t, 3, hp["n_epochs"])
		require.EqualValues(t, 0.5, hp["learning_rate_multiplier"])
		require.NotContains(t, hp, "batch_size", "unset hyperparameters are left to the service")
	})
}

func TestConvertChatRequestToOpenAIParams(t *testing.T) {
	t.Run("AllRoles", func(t *testing.T) {
		temperature := 0.2
		maxTokens := int64(50)

		params, err := convertChatRequestToOpenAIParams(&models.ChatRequest{
			Model: "ft:gpt-4o-mini:org::abc",
			Messages: []models.ChatMessage{
				{Role: models.RoleSystem, Content: "You are terse."},
				{Role: models.RoleUser, Content: "Hi"},
				{Role: models.RoleAssistant, Content: "Hello."},
				{Role: models.RoleUser, Content: "Bye"},
			},
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
		require.NoError(t, err)

		body := encodeParams(t, params)
		require.Equal(t, "ft:gpt-4o-mini:org::abc", body["model"])
		require.EqualValues(t, 0.2, body["temperature"])
		require.EqualValues(t, 50, body["max_completion_tokens"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 4)
		roles := make([]string, 0, len(messages))
		for _, m := range messages {
			roles = append(roles, m.(map[string]interface{})["role"].(string))
		}
		require.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	})

	t.Run("MissingModel", func(t *testing.T) {
		_, err := convertChatRequestToOpenAIParams(&models.ChatRequest{
			Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "Hi"}},
		})
		require.ErrorContains(t, err, "model is required")
	})

	t.Run("NoMessages", func(t *testing.T) {
		_, err := convertChatRequestToOpenAIParams(&models.ChatRequest{Model: "gpt-4o-mini"})
		require.ErrorContains(t, err, "at least one message is required")
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := convertChatRequestToOpenAIParams(&models.ChatRequest{
			Model:    "gpt-4o-mini",
			Messages: []models.ChatMessage{{Role: "tool", Content: "{}"}},
		})
		require.ErrorContains(t, err, `unsupported role "tool"`)
	})
}

func TestConvertOpenAIChatCompletionToModel(t *testing.T) {
	t.Run("FirstChoice", func(t *testing.T) {
		var completion openai.ChatCompletion
		require.NoError(t, json.Unmarshal([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "ft:gpt-4o-mini:org::abc",
			"choices": [{"index": 0, "finish_reason": "stop", "logprobs": null, "message": {"role": "assistant", "content": "Hello!", "refusal": null}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
		}`), &completion))

		response, err := convertOpenAIChatCompletionToModel(&completion)
		require.NoError(t, err)
		require.Equal(t, "Hello!", response.Content)
		require.Equal(t, "stop", response.FinishReason)
		require.Equal(t, models.TokenUsage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7}, response.Usage)
	})

	t.Run("NoChoices", func(t *testing.T) {
		_, err := convertOpenAIChatCompletionToModel(&openai.ChatCompletion{})
		require.ErrorContains(t, err, "no choices")
	})
}
