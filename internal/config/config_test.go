// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"finetune.quickstart/internal/exterrors"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envFrom(map[string]string{EnvStateDir: "/tmp/ft"}))

	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.Provider)
	require.Equal(t, DefaultAzureAPIVersion, cfg.Azure.APIVersion)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, "/tmp/ft", cfg.StateDir)
}

func TestLoad_StateDirDefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := load(envFrom(nil))

	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".finetune"), cfg.StateDir)
}

func TestLoad_Azure(t *testing.T) {
	cfg, err := load(envFrom(map[string]string{
		EnvProvider:              "Azure",
		EnvAzureOpenAIEndpoint:   "https://acct.openai.azure.com/",
		EnvAzureOpenAIAPIVersion: "2024-10-21",
		EnvAzureSubscriptionID:   "sub",
		EnvStateDir:              "/tmp/ft",
	}))

	require.NoError(t, err)
	require.Equal(t, ProviderAzure, cfg.Provider)
	require.Equal(t, "https://acct.openai.azure.com", cfg.Azure.Endpoint)
	require.Equal(t, "2024-10-21", cfg.Azure.APIVersion)
	require.Equal(t, "sub", cfg.Azure.SubscriptionID)
}

func TestLoad_UnknownProvider(t *testing.T) {
	_, err := load(envFrom(map[string]string{EnvProvider: "anthropic"}))

	var localErr *exterrors.LocalError
	require.ErrorAs(t, err, &localErr)
	require.Equal(t, exterrors.CodeUnknownProvider, localErr.Code)
	require.Contains(t, localErr.Suggestion, EnvProvider)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantCode string
	}{
		{"OpenAIWithKey", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, ""},
		{"OpenAIMissingKey", Config{Provider: ProviderOpenAI}, exterrors.CodeMissingAPIKey},
		{"AzureWithEndpoint", Config{Provider: ProviderAzure, Azure: AzureConfig{Endpoint: "https://a.openai.azure.com"}}, ""},
		{"AzureMissingEndpoint", Config{Provider: ProviderAzure}, exterrors.CodeMissingAzureEndpoint},
		{"Unknown", Config{Provider: "other"}, exterrors.CodeUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			var localErr *exterrors.LocalError
			require.ErrorAs(t, err, &localErr)
			require.Equal(t, tt.wantCode, localErr.Code)
			require.NotEmpty(t, localErr.Suggestion)
		})
	}
}

func TestConfig_ValidateDeployment(t *testing.T) {
	cfg := &Config{Provider: ProviderAzure, Azure: AzureConfig{SubscriptionID: "sub"}}

	err := cfg.ValidateDeployment()

	require.Error(t, err)
	require.Contains(t, err.Error(), EnvAzureResourceGroup)
	require.Contains(t, err.Error(), EnvAzureAccountName)
	require.NotContains(t, err.Error(), EnvAzureSubscriptionID)

	cfg.Azure.ResourceGroup = "rg"
	cfg.Azure.AccountName = "acct"
	require.NoError(t, cfg.ValidateDeployment())
}

func TestConfig_ValidateDeployment_RequiresAzureProvider(t *testing.T) {
	cfg := &Config{
		Provider: ProviderOpenAI,
		Azure:    AzureConfig{SubscriptionID: "sub", ResourceGroup: "rg", AccountName: "acct"},
	}

	err := cfg.ValidateDeployment()

	var localErr *exterrors.LocalError
	require.ErrorAs(t, err, &localErr)
	require.Equal(t, exterrors.CodeUnsupportedCommand, localErr.Code)
	require.Contains(t, localErr.Suggestion, EnvProvider+"=azure")
}

func TestEnvironmentConstants_AreUniqueAndNonEmpty(t *testing.T) {
	constants := []string{
		EnvProvider,
		EnvOpenAIAPIKey,
		EnvOpenAIBaseURL,
		EnvOpenAIOrgID,
		EnvOpenAIProjectID,
		EnvAzureOpenAIEndpoint,
		EnvAzureOpenAIAPIKey,
		EnvAzureOpenAIAPIVersion,
		EnvAzureTenantID,
		EnvAzureSubscriptionID,
		EnvAzureResourceGroup,
		EnvAzureAccountName,
		EnvStateDir,
		EnvLogLevel,
	}

	seen := make(map[string]bool)
	for _, c := range constants {
		require.NotEmpty(t, c, "Environment constant should not be empty")
		require.False(t, seen[c], "Duplicate environment constant value: %s", c)
		seen[c] = true
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("ExplicitFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("FINETUNE_TEST_ONLY_VALUE=from-file\n"), 0600))
		t.Setenv("FINETUNE_TEST_ONLY_VALUE", "")
		os.Unsetenv("FINETUNE_TEST_ONLY_VALUE")

		require.NoError(t, LoadEnvFile(path))
		require.Equal(t, "from-file", os.Getenv("FINETUNE_TEST_ONLY_VALUE"))
	})

	t.Run("ProcessEnvironmentWins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("FINETUNE_TEST_ONLY_OVERRIDE=from-file\n"), 0600))
		t.Setenv("FINETUNE_TEST_ONLY_OVERRIDE", "from-process")

		require.NoError(t, LoadEnvFile(path))
		require.Equal(t, "from-process", os.Getenv("FINETUNE_TEST_ONLY_OVERRIDE"))
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))

		var localErr *exterrors.LocalError
		require.ErrorAs(t, err, &localErr)
		require.Equal(t, exterrors.CodeInvalidEnvFile, localErr.Code)
	})

	t.Run("MissingDefaultFileIsIgnored", func(t *testing.T) {
		t.Chdir(t.TempDir())
		require.NoError(t, LoadEnvFile(""))
	})
}
