// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"testing"

	"finetune.quickstart/internal/config"
	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestNewDeployCommand_Flags(t *testing.T) {
	cmd := newDeployCommand()

	require.Equal(t, "deploy", cmd.Use)
	require.Contains(t, cmd.Short, "Deploy")
	require.NotNil(t, cmd.PreRunE, "deploy command should have PreRunE for validation")

	expectedFlags := []struct {
		name         string
		shorthand    string
		defaultValue string
	}{
		{"job-id", "i", ""},
		{"name", "n", ""},
		{"model-format", "", models.DefaultModelFormat},
		{"model-version", "", models.DefaultModelVersion},
		{"sku", "s", models.DefaultSKU},
		{"capacity", "c", "1"},
		{"wait", "", "false"},
		{"output", "o", "table"},
	}

	for _, flag := range expectedFlags {
		t.Run(flag.name, func(t *testing.T) {
			f := cmd.Flags().Lookup(flag.name)
			require.NotNil(t, f, "Flag --%s should be defined", flag.name)
			require.Equal(t, flag.shorthand, f.Shorthand)
			require.Equal(t, flag.defaultValue, f.DefValue)
		})
	}

	var subcommands []string
	for _, sub := range cmd.Commands() {
		subcommands = append(subcommands, sub.Use)
	}
	require.Equal(t, []string{"show"}, subcommands)
}

// useAzureProvider points the CLI at an Azure OpenAI account; nothing is contacted.
func useAzureProvider(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvStateDir, t.TempDir())
	t.Setenv(config.EnvProvider, string(config.ProviderAzure))
	t.Setenv(config.EnvAzureOpenAIEndpoint, "https://aoai-finetune.openai.azure.com")
	t.Setenv(config.EnvAzureOpenAIAPIKey, "azure-key")
}

func TestDeploy_RejectsOpenAIProvider(t *testing.T) {
	service := newFakeOpenAI(t, nil)
	t.Setenv(config.EnvAzureSubscriptionID, "00000000-0000-0000-0000-000000000000")
	t.Setenv(config.EnvAzureResourceGroup, "rg-finetune")
	t.Setenv(config.EnvAzureAccountName, "aoai-finetune")

	_, err := executeCommand(t, "deploy", "--job-id", "ftjob-1", "--name", "support-bot")

	var localErr *exterrors.LocalError
	require.ErrorAs(t, err, &localErr)
	require.Equal(t, exterrors.CodeUnsupportedCommand, localErr.Code)
	require.Contains(t, localErr.Suggestion, config.EnvProvider+"=azure")
	require.Empty(t, service.calls(), "the job is not looked up")
}

func TestDeploy_RequiresAzureSettings(t *testing.T) {
	useAzureProvider(t)
	t.Setenv(config.EnvAzureSubscriptionID, "")
	t.Setenv(config.EnvAzureResourceGroup, "rg-finetune")
	t.Setenv(config.EnvAzureAccountName, "")

	_, err := executeCommand(t, "deploy", "--job-id", "ftjob-1", "--name", "support-bot")

	var localErr *exterrors.LocalError
	require.ErrorAs(t, err, &localErr)
	require.Equal(t, exterrors.CodeMissingAzureDeployVars, localErr.Code)
	require.Contains(t, err.Error(), config.EnvAzureSubscriptionID)
	require.Contains(t, err.Error(), config.EnvAzureAccountName)
	require.NotContains(t, err.Error(), config.EnvAzureResourceGroup)
}

func TestDeploy_RequiresFlags(t *testing.T) {
	useAzureProvider(t)
	t.Setenv(config.EnvAzureSubscriptionID, "00000000-0000-0000-0000-000000000000")
	t.Setenv(config.EnvAzureResourceGroup, "rg-finetune")
	t.Setenv(config.EnvAzureAccountName, "aoai-finetune")

	_, err := executeCommand(t, "deploy", "--job-id", "ftjob-1")
	require.ErrorContains(t, err, "--name is required")
	require.ErrorContains(t, err, HintDeploymentName)
}
