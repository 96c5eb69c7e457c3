// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"

	"finetune.quickstart/pkg/models"
	"github.com/braydonk/yaml"
)

// ParseCreateFineTuningRequestConfig loads a job config file. Unknown keys are rejected
// so that a misspelled hyperparameter is not silently dropped. The request is not
// validated here; command-line overrides are applied first.
func ParseCreateFineTuningRequestConfig(filePath string) (*models.CreateFineTuningRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var config models.CreateFineTuningRequest
	if err := decoder.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config file %s is empty", filePath)
		}
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return &config, nil
}
