// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package factory

import (
	"fmt"

	"finetune.quickstart/internal/config"
	"finetune.quickstart/internal/providers"
	azureprovider "finetune.quickstart/internal/providers/azure"
	openaiprovider "finetune.quickstart/internal/providers/openai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

// NewCredential returns the Entra ID credential used for Azure OpenAI and ARM calls.
// An azd login is tried first, then the DefaultAzureCredential chain.
func NewCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	azdCredential, err := azidentity.NewAzureDeveloperCLICredential(&azidentity.AzureDeveloperCLICredentialOptions{
		TenantID:                   cfg.Azure.TenantID,
		AdditionallyAllowedTenants: []string{"*"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create azd credential: %w", err)
	}

	defaultCredential, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID:                   cfg.Azure.TenantID,
		AdditionallyAllowedTenants: []string{"*"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create azure credential: %w", err)
	}

	credential, err := azidentity.NewChainedTokenCredential([]azcore.TokenCredential{azdCredential, defaultCredential}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure credential: %w", err)
	}
	return credential, nil
}

// NewOpenAIClient builds the SDK client for the configured provider. SDK retries are
// disabled: every operation is exactly one request.
func NewOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}

	switch cfg.Provider {
	case config.ProviderAzure:
		opts = append(opts, azure.WithEndpoint(cfg.Azure.Endpoint, cfg.Azure.APIVersion))
		if cfg.Azure.APIKey != "" {
			opts = append(opts, azure.WithAPIKey(cfg.Azure.APIKey))
		} else {
			credential, err := NewCredential(cfg)
			if err != nil {
				return nil, err
			}
			opts = append(opts, azure.WithTokenCredential(credential))
		}
	default:
		opts = append(opts, option.WithAPIKey(cfg.OpenAI.APIKey))
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Organization != "" {
			opts = append(opts, option.WithOrganization(cfg.OpenAI.Organization))
		}
		if cfg.OpenAI.Project != "" {
			opts = append(opts, option.WithProject(cfg.OpenAI.Project))
		}
	}

	client := openai.NewClient(opts...)
	return &client, nil
}

// NewFineTuningProvider creates a FineTuningProvider based on provider type
func NewFineTuningProvider(cfg *config.Config) (providers.FineTuningProvider, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return openaiprovider.NewOpenAIProvider(client), nil
}

// NewInferenceProvider creates an InferenceProvider based on provider type
func NewInferenceProvider(cfg *config.Config) (providers.InferenceProvider, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return openaiprovider.NewOpenAIProvider(client), nil
}

// NewModelDeploymentProvider creates a ModelDeploymentProvider for the configured
// Azure OpenAI account
func NewModelDeploymentProvider(cfg *config.Config) (providers.ModelDeploymentProvider, error) {
	if err := cfg.ValidateDeployment(); err != nil {
		return nil, err
	}

	credential, err := NewCredential(cfg)
	if err != nil {
		return nil, err
	}

	clientFactory, err := armcognitiveservices.NewClientFactory(cfg.Azure.SubscriptionID, credential, &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cognitive services client: %w", err)
	}

	return azureprovider.NewAzureProvider(clientFactory, cfg.Azure.ResourceGroup, cfg.Azure.AccountName), nil
}
