// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package models

import "errors"

// DeploymentStatus represents the provisioning status of a model deployment
type DeploymentStatus string

const (
	DeploymentPending  DeploymentStatus = "pending"
	DeploymentActive   DeploymentStatus = "active"
	DeploymentUpdating DeploymentStatus = "updating"
	DeploymentFailed   DeploymentStatus = "failed"
	DeploymentDeleting DeploymentStatus = "deleting"
	DeploymentUnknown  DeploymentStatus = "unknown"
)

const (
	DefaultModelFormat  = "OpenAI"
	DefaultModelVersion = "1"
	DefaultSKU          = "Standard"
	DefaultCapacity     = 1
)

// DeploymentRequest describes a deployment of a fine-tuned model
type DeploymentRequest struct {
	DeploymentName string
	ModelName      string
	ModelFormat    string
	ModelVersion   string
	SKU            string
	Capacity       int32
	Wait           bool
}

// ApplyDefaults fills unset optional fields
func (r *DeploymentRequest) ApplyDefaults() {
	if r.ModelFormat == "" {
		r.ModelFormat = DefaultModelFormat
	}
	if r.ModelVersion == "" {
		r.ModelVersion = DefaultModelVersion
	}
	if r.SKU == "" {
		r.SKU = DefaultSKU
	}
	if r.Capacity <= 0 {
		r.Capacity = DefaultCapacity
	}
}

// Validate checks the required fields
func (r *DeploymentRequest) Validate() error {
	if r.DeploymentName == "" {
		return errors.New("deployment name is required")
	}
	if r.ModelName == "" {
		return errors.New("model name is required")
	}
	return nil
}

// Deployment is a model deployment on an Azure OpenAI account
type Deployment struct {
	Name              string           `json:"name" yaml:"name"`
	ModelName         string           `json:"model" yaml:"model"`
	ModelFormat       string           `json:"model_format" yaml:"model_format"`
	ModelVersion      string           `json:"model_version" yaml:"model_version"`
	SKU               string           `json:"sku" yaml:"sku"`
	Capacity          int32            `json:"capacity" yaml:"capacity"`
	Status            DeploymentStatus `json:"status" yaml:"status"`
	ProvisioningState string           `json:"provisioning_state" yaml:"provisioning_state"`
}

// DeploymentConfig is what the operator asks for: deploy the model produced by a job
type DeploymentConfig struct {
	JobID          string
	DeploymentName string
	ModelFormat    string
	ModelVersion   string
	SKU            string
	Capacity       int32
	Wait           bool
}
