// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"finetune.quickstart/internal/exterrors"
)

const (
	HintFindJobID      = "Run 'finetune jobs list' to find the job ID, or 'finetune history' for jobs submitted from this machine."
	HintDeploymentName = "Choose a deployment name that is unique within the Azure OpenAI account, e.g. 'support-bot-v1'."
	HintSubmitJobUsage = "Usage: finetune jobs submit --model gpt-4o-mini --training-file local:./train.jsonl, or finetune jobs submit --file job.yaml"
)

// flagHints maps a flag to the hint printed when it is missing
var flagHints = map[string]string{
	"id":              HintFindJobID,
	"job-id":          HintFindJobID,
	"deployment-name": HintDeploymentName,
	"name":            HintDeploymentName,
}

// validateEnvironment checks that the selected provider has a credential
func validateEnvironment() error {
	if appConfig == nil {
		return exterrors.Internal(exterrors.CodeInternal, "configuration was not loaded")
	}
	return appConfig.Validate()
}

// validateDeployEnvironment checks the Azure Resource Manager settings the deployer needs
func validateDeployEnvironment() error {
	if appConfig == nil {
		return exterrors.Internal(exterrors.CodeInternal, "configuration was not loaded")
	}
	return appConfig.ValidateDeployment()
}

// validateRequiredFlags returns one error naming every empty flag
func validateRequiredFlags(flags map[string]string) error {
	var missing []string
	for name, value := range flags {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)

	names := make([]string, len(missing))
	for i, name := range missing {
		names[i] = "--" + name
	}

	var message string
	if len(names) == 1 {
		message = fmt.Sprintf("%s is required", names[0])
	} else {
		message = fmt.Sprintf("%s are required", strings.Join(names, ", "))
	}

	var hints []string
	seen := map[string]bool{}
	for _, name := range missing {
		if hint, ok := flagHints[name]; ok && !seen[hint] {
			seen[hint] = true
			hints = append(hints, hint)
		}
	}

	if len(hints) > 0 {
		message = fmt.Sprintf("%s\n\n%s", message, strings.Join(hints, "\n"))
	}
	return exterrors.Validation(exterrors.CodeInvalidArguments, message, "")
}

// validateSubmitFlags requires either a job config file or both --model and --training-file
func validateSubmitFlags(filename, model, trainingFile string) error {
	if filename != "" {
		return nil
	}

	switch {
	case model == "" && trainingFile == "":
		return exterrors.Validation(exterrors.CodeInvalidArguments,
			fmt.Sprintf("either --file or --model with --training-file is required\n\n%s", HintSubmitJobUsage), "")
	case trainingFile == "":
		return exterrors.Validation(exterrors.CodeInvalidArguments,
			"--training-file is required when --model is provided", HintSubmitJobUsage)
	case model == "":
		return exterrors.Validation(exterrors.CodeInvalidArguments,
			"--model is required when --training-file is provided", HintSubmitJobUsage)
	}
	return nil
}
