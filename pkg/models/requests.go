// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package models

import (
	"errors"
	"fmt"
)

// MaxSuffixLength is the longest suffix the service accepts for a fine-tuned model name
const MaxSuffixLength = 64

// MaxMetadataPairs is the service's limit on job metadata entries
const MaxMetadataPairs = 16

// MetadataClientRunID is the metadata key the client stamps on every job it submits.
// It takes one of the MaxMetadataPairs entries.
const MetadataClientRunID = "client_run_id"

// CreateFineTuningRequest describes a job submission. It can be loaded from a YAML
// config file and overridden from command-line flags.
type CreateFineTuningRequest struct {
	BaseModel      string            `yaml:"model" json:"model"`
	TrainingFile   string            `yaml:"training_file" json:"training_file"`
	ValidationFile *string           `yaml:"validation_file,omitempty" json:"validation_file,omitempty"`
	Suffix         *string           `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Seed           *int64            `yaml:"seed,omitempty" json:"seed,omitempty"`
	Metadata       map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Method         MethodConfig      `yaml:"method,omitempty" json:"method,omitempty"`
}

// MethodConfig selects the training method and its hyperparameters
type MethodConfig struct {
	Type       MethodType        `yaml:"type,omitempty" json:"type,omitempty"`
	Supervised *SupervisedConfig `yaml:"supervised,omitempty" json:"supervised,omitempty"`
}

// SupervisedConfig holds supervised fine-tuning settings
type SupervisedConfig struct {
	Hyperparameters HyperparametersConfig `yaml:"hyperparameters" json:"hyperparameters"`
}

// HyperparametersConfig holds requested hyperparameters. A nil field lets the
// service choose ("auto").
type HyperparametersConfig struct {
	Epochs                 *int64   `yaml:"epochs,omitempty" json:"epochs,omitempty"`
	BatchSize              *int64   `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	LearningRateMultiplier *float64 `yaml:"learning_rate_multiplier,omitempty" json:"learning_rate_multiplier,omitempty"`
}

// Validate checks the request before it is sent
func (r *CreateFineTuningRequest) Validate() error {
	if r.BaseModel == "" {
		return errors.New("model is required")
	}
	if r.TrainingFile == "" {
		return errors.New("training_file is required")
	}
	if r.Suffix != nil && len(*r.Suffix) > MaxSuffixLength {
		return fmt.Errorf("suffix must be at most %d characters, got %d", MaxSuffixLength, len(*r.Suffix))
	}

	if limit := metadataLimit(r.Metadata); len(r.Metadata) > limit {
		return fmt.Errorf("metadata can hold at most %d entries (one is reserved for %s), got %d",
			limit, MetadataClientRunID, len(r.Metadata))
	}

	switch r.Method.Type {
	case "", Supervised:
	default:
		return fmt.Errorf("unsupported method type %q", r.Method.Type)
	}

	if r.Method.Supervised != nil {
		hp := r.Method.Supervised.Hyperparameters
		if hp.Epochs != nil && *hp.Epochs <= 0 {
			return errors.New("epochs must be positive")
		}
		if hp.BatchSize != nil && *hp.BatchSize <= 0 {
			return errors.New("batch_size must be positive")
		}
		if hp.LearningRateMultiplier != nil && *hp.LearningRateMultiplier <= 0 {
			return errors.New("learning_rate_multiplier must be positive")
		}
	}

	return nil
}

func metadataLimit(metadata map[string]string) int {
	if _, ok := metadata[MetadataClientRunID]; ok {
		return MaxMetadataPairs
	}
	return MaxMetadataPairs - 1
}
