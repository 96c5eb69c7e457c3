// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"finetune.quickstart/internal/exterrors"
	"github.com/joho/godotenv"
)

// ProviderType selects which hosted API the client talks to
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderAzure  ProviderType = "azure"
)

const (
	EnvProvider              = "FINETUNE_PROVIDER"
	EnvOpenAIAPIKey          = "OPENAI_API_KEY"
	EnvOpenAIBaseURL         = "OPENAI_BASE_URL"
	EnvOpenAIOrgID           = "OPENAI_ORG_ID"
	EnvOpenAIProjectID       = "OPENAI_PROJECT_ID"
	EnvAzureOpenAIEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureOpenAIAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvAzureOpenAIAPIVersion = "AZURE_OPENAI_API_VERSION"
	EnvAzureTenantID         = "AZURE_TENANT_ID"
	EnvAzureSubscriptionID   = "AZURE_SUBSCRIPTION_ID"
	EnvAzureResourceGroup    = "AZURE_RESOURCE_GROUP"
	EnvAzureAccountName      = "AZURE_ACCOUNT_NAME"
	EnvStateDir              = "FINETUNE_STATE_DIR"
	EnvLogLevel              = "FINETUNE_LOG_LEVEL"
)

const (
	// DefaultAzureAPIVersion is the Azure OpenAI data-plane version that supports fine-tuning
	DefaultAzureAPIVersion = "2025-04-01-preview"
	// DefaultEnvFile is loaded from the working directory when present
	DefaultEnvFile = ".env"
	// DefaultLogLevel keeps the console quiet unless something goes wrong
	DefaultLogLevel = "warn"

	stateDirName = ".finetune"
)

// OpenAIConfig holds settings for api.openai.com or a compatible endpoint
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Organization string
	Project      string
}

// AzureConfig holds settings for an Azure OpenAI resource
type AzureConfig struct {
	Endpoint       string
	APIKey         string
	APIVersion     string
	TenantID       string
	SubscriptionID string
	ResourceGroup  string
	AccountName    string
}

// Config is the resolved client configuration
type Config struct {
	Provider ProviderType
	OpenAI   OpenAIConfig
	Azure    AzureConfig
	StateDir string
	LogLevel string
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment. Variables that are
// already set win. An empty path loads DefaultEnvFile if it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		return exterrors.Configuration(
			exterrors.CodeInvalidEnvFile,
			fmt.Sprintf("failed to load environment file %s: %v", path, err),
			"check that the file exists and contains KEY=VALUE lines",
		)
	}
	return nil
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	provider := ProviderType(strings.ToLower(strings.TrimSpace(getenv(EnvProvider))))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if provider != ProviderOpenAI && provider != ProviderAzure {
		return nil, exterrors.Configuration(
			exterrors.CodeUnknownProvider,
			fmt.Sprintf("unknown provider %q", provider),
			fmt.Sprintf("set %s to %q or %q", EnvProvider, ProviderOpenAI, ProviderAzure),
		)
	}

	cfg := &Config{
		Provider: provider,
		OpenAI: OpenAIConfig{
			APIKey:       getenv(EnvOpenAIAPIKey),
			BaseURL:      getenv(EnvOpenAIBaseURL),
			Organization: getenv(EnvOpenAIOrgID),
			Project:      getenv(EnvOpenAIProjectID),
		},
		Azure: AzureConfig{
			Endpoint:       strings.TrimSuffix(getenv(EnvAzureOpenAIEndpoint), "/"),
			APIKey:         getenv(EnvAzureOpenAIAPIKey),
			APIVersion:     getenv(EnvAzureOpenAIAPIVersion),
			TenantID:       getenv(EnvAzureTenantID),
			SubscriptionID: getenv(EnvAzureSubscriptionID),
			ResourceGroup:  getenv(EnvAzureResourceGroup),
			AccountName:    getenv(EnvAzureAccountName),
		},
		StateDir: getenv(EnvStateDir),
		LogLevel: getenv(EnvLogLevel),
	}

	if cfg.Azure.APIVersion == "" {
		cfg.Azure.APIVersion = DefaultAzureAPIVersion
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.StateDir = filepath.Join(home, stateDirName)
	}

	return cfg, nil
}

// Validate checks that the selected provider can authenticate
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return exterrors.Configuration(
				exterrors.CodeMissingAPIKey,
				"no API credential configured",
				fmt.Sprintf("set %s in the environment or in a .env file", EnvOpenAIAPIKey),
			)
		}
	case ProviderAzure:
		if c.Azure.Endpoint == "" {
			return exterrors.Configuration(
				exterrors.CodeMissingAzureEndpoint,
				"no Azure OpenAI endpoint configured",
				fmt.Sprintf("set %s, e.g. https://<account>.openai.azure.com", EnvAzureOpenAIEndpoint),
			)
		}
	default:
		return exterrors.Configuration(
			exterrors.CodeUnknownProvider,
			fmt.Sprintf("unknown provider %q", c.Provider),
			fmt.Sprintf("set %s to %q or %q", EnvProvider, ProviderOpenAI, ProviderAzure),
		)
	}
	return nil
}

// ValidateDeployment checks the settings needed to manage Azure deployments
func (c *Config) ValidateDeployment() error {
	if c.Provider != ProviderAzure {
		return exterrors.Validation(
			exterrors.CodeUnsupportedCommand,
			fmt.Sprintf("deploy needs the %s provider, but %s is %q", ProviderAzure, EnvProvider, c.Provider),
			fmt.Sprintf("set %s=%s and %s to the Azure OpenAI account that ran the job",
				EnvProvider, ProviderAzure, EnvAzureOpenAIEndpoint),
		)
	}

	required := map[string]string{
		EnvAzureSubscriptionID: c.Azure.SubscriptionID,
		EnvAzureResourceGroup:  c.Azure.ResourceGroup,
		EnvAzureAccountName:    c.Azure.AccountName,
	}

	var missing []string
	for _, name := range []string{EnvAzureSubscriptionID, EnvAzureResourceGroup, EnvAzureAccountName} {
		if required[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return exterrors.Configuration(
			exterrors.CodeMissingAzureDeployVars,
			fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")),
			"set them to the subscription, resource group and Azure OpenAI account that ran the job",
		)
	}
	return nil
}
