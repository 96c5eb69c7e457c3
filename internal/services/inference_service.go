// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package services

import (
	"context"
	"fmt"

	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/internal/providers"
	"finetune.quickstart/pkg/models"
)

var _ InferenceService = (*inferenceServiceImpl)(nil)

type inferenceServiceImpl struct {
	provider providers.InferenceProvider
}

// NewInferenceService creates a new instance of InferenceService
func NewInferenceService(provider providers.InferenceProvider) InferenceService {
	return &inferenceServiceImpl{provider: provider}
}

// Chat sends one non-streaming request and returns the assistant reply
func (s *inferenceServiceImpl) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if req.Model == "" {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments, "model is required",
			"pass the fine-tuned model name with --model, or the job with --job-id")
	}
	if len(req.Messages) == 0 {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments, "at least one message is required",
			"pass --prompt or --messages-file")
	}
	for i, msg := range req.Messages {
		if !msg.Role.IsValid() {
			return nil, exterrors.Validation(exterrors.CodeInvalidArguments,
				fmt.Sprintf("message %d has invalid role %q", i, msg.Role),
				"roles must be system, user or assistant")
		}
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments,
			fmt.Sprintf("temperature must be between 0 and 2, got %g", *req.Temperature), "")
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return nil, exterrors.Validation(exterrors.CodeInvalidArguments,
			fmt.Sprintf("max tokens must be positive, got %d", *req.MaxTokens), "")
	}

	response, err := s.provider.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, exterrors.FromService(err, "chat completion")
	}
	return response, nil
}
