// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeploymentStatus_Constants(t *testing.T) {
	tests := []struct {
		name     string
		status   DeploymentStatus
		expected string
	}{
		{"DeploymentPending", DeploymentPending, "pending"},
		{"DeploymentActive", DeploymentActive, "active"},
		{"DeploymentUpdating", DeploymentUpdating, "updating"},
		{"DeploymentFailed", DeploymentFailed, "failed"},
		{"DeploymentDeleting", DeploymentDeleting, "deleting"},
		{"DeploymentUnknown", DeploymentUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestDeploymentRequest_ApplyDefaults(t *testing.T) {
	t.Run("FillsEmptyFields", func(t *testing.T) {
		req := &DeploymentRequest{DeploymentName: "ft-demo", ModelName: "ft:gpt-4o-mini:org::abc"}
		req.ApplyDefaults()

		require.Equal(t, DefaultModelFormat, req.ModelFormat)
		require.Equal(t, DefaultModelVersion, req.ModelVersion)
		require.Equal(t, DefaultSKU, req.SKU)
		require.Equal(t, int32(DefaultCapacity), req.Capacity)
	})

	t.Run("KeepsExplicitValues", func(t *testing.T) {
		req := &DeploymentRequest{SKU: "GlobalStandard", Capacity: 5, ModelVersion: "2"}
		req.ApplyDefaults()

		require.Equal(t, "GlobalStandard", req.SKU)
		require.Equal(t, int32(5), req.Capacity)
		require.Equal(t, "2", req.ModelVersion)
	})
}

func TestDeploymentRequest_Validate(t *testing.T) {
	require.ErrorContains(t, (&DeploymentRequest{ModelName: "m"}).Validate(), "deployment name is required")
	require.ErrorContains(t, (&DeploymentRequest{DeploymentName: "d"}).Validate(), "model name is required")
	require.NoError(t, (&DeploymentRequest{DeploymentName: "d", ModelName: "m"}).Validate())
}
