// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateFineTuningRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateFineTuningRequest
		wantErr string
	}{
		{
			name: "Minimal",
			req:  CreateFineTuningRequest{BaseModel: "gpt-4o-mini", TrainingFile: "file-1"},
		},
		{
			name:    "MissingModel",
			req:     CreateFineTuningRequest{TrainingFile: "file-1"},
			wantErr: "model is required",
		},
		{
			name:    "MetadataAtLimit",
			req:     CreateFineTuningRequest{BaseModel: "gpt-4o-mini", TrainingFile: "file-1", Metadata: metadataOf(15, false)},
		},
		{
			name:    "MetadataTooManyKeys",
			req:     CreateFineTuningRequest{BaseModel: "gpt-4o-mini", TrainingFile: "file-1", Metadata: metadataOf(16, false)},
			wantErr: "metadata can hold at most 15 entries",
		},
		{
			name:    "MetadataWithOwnRunID",
			req:     CreateFineTuningRequest{BaseModel: "gpt-4o-mini", TrainingFile: "file-1", Metadata: metadataOf(16, true)},
		},
		{
			name:    "MissingTrainingFile",
			req:     CreateFineTuningRequest{BaseModel: "gpt-4o-mini"},
			wantErr: "training_file is required",
		},
		{
			name: "SuffixAtLimit",
			req: CreateFineTuningRequest{
				BaseModel:    "gpt-4o-mini",
				TrainingFile: "file-1",
				Suffix:       ptr(strings.Repeat("a", MaxSuffixLength)),
			},
		},
		{
			name: "SuffixTooLong",
			req: CreateFineTuningRequest{
				BaseModel:    "gpt-4o-mini",
				TrainingFile: "file-1",
				Suffix:       ptr(strings.Repeat("a", MaxSuffixLength+1)),
			},
			wantErr: "suffix must be at most 64 characters",
		},
		{
			name: "UnsupportedMethod",
			req: CreateFineTuningRequest{
				BaseModel:    "gpt-4o-mini",
				TrainingFile: "file-1",
				Method:       MethodConfig{Type: "dpo"},
			},
			wantErr: `unsupported method type "dpo"`,
		},
		{
			name: "SupervisedHyperparameters",
			req: CreateFineTuningRequest{
				BaseModel:    "gpt-4o-mini",
				TrainingFile: "file-1",
				Method: MethodConfig{
					Type: Supervised,
					Supervised: &SupervisedConfig{Hyperparameters: HyperparametersConfig{
						Epochs:                 ptr(int64(3)),
						BatchSize:              ptr(int64(8)),
						LearningRateMultiplier: ptr(0.5),
					}},
				},
			},
		},
		{
			name: "NonPositiveEpochs",
			req: CreateFineTuningRequest{
				BaseModel:    "gpt-4o-mini",
				TrainingFile: "file-1",
				Method: MethodConfig{
					Type:       Supervised,
					Supervised: &SupervisedConfig{Hyperparameters: HyperparametersConfig{Epochs: ptr(int64(0))}},
				},
			},
			wantErr: "epochs must be positive",
		},
		{
			name: "NegativeLearningRate",
			req: CreateFineTuningRequest{
				BaseModel:    "gpt-4o-mini",
				TrainingFile: "file-1",
				Method: MethodConfig{
					Supervised: &SupervisedConfig{Hyperparameters: HyperparametersConfig{LearningRateMultiplier: ptr(-1.0)}},
				},
			},
			wantErr: "learning_rate_multiplier must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// metadataOf builds n metadata entries; withRunID makes one of them the client run id.
func metadataOf(n int, withRunID bool) map[string]string {
	metadata := make(map[string]string, n)
	for i := range n {
		metadata[fmt.Sprintf("key-%d", i)] = "value"
	}
	if withRunID && n > 0 {
		delete(metadata, "key-0")
		metadata[MetadataClientRunID] = "run-1"
	}
	return metadata
}
