// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

// Error codes for user cancellation.
const (
	CodeCancelled = "cancelled"
)

// Error codes for configuration errors.
const (
	CodeMissingAPIKey          = "missing_api_key"
	CodeMissingAzureEndpoint   = "missing_azure_endpoint"
	CodeMissingAzureDeployVars = "missing_azure_deploy_vars"
	CodeUnknownProvider        = "unknown_provider"
	CodeInvalidEnvFile         = "invalid_env_file"
)

// Error codes for validation errors.
const (
	CodeInvalidArguments   = "invalid_arguments"
	CodeInvalidJobConfig   = "invalid_job_config"
	CodeInvalidDataset     = "invalid_dataset"
	CodeFileNotFound       = "file_not_found"
	CodeModelNotReady      = "model_not_ready"
	CodeUnsupportedCommand = "unsupported_for_provider"
)

// Error codes for failures without a more specific classification.
const (
	CodeInternal = "internal"
)
