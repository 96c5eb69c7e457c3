// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"

	"finetune.quickstart/internal/utils"
	"finetune.quickstart/pkg/models"
	"github.com/azure/azure-dev/cli/azd/pkg/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deploymentColumns = []output.Column{
	utils.Column("Name", "Name"),
	utils.Column("Model", "ModelName"),
	utils.Column("SKU", "SKU"),
	utils.Column("Capacity", "Capacity"),
	utils.Column("Status", "Status"),
}

type deployFlags struct {
	jobID          string
	deploymentName string
	modelFormat    string
	modelVersion   string
	sku            string
	capacity       int32
	wait           bool
	output         string
}

func newDeployCommand() *cobra.Command {
	flags := &deployFlags{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the model of a succeeded fine-tuning job to Azure OpenAI.",
		Long: "Deploy the model produced by a succeeded fine-tuning job as an Azure OpenAI deployment. " +
			"Requires AZURE_SUBSCRIPTION_ID, AZURE_RESOURCE_GROUP and AZURE_ACCOUNT_NAME.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEnvironment(); err != nil {
				return err
			}
			return validateDeployEnvironment()
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{
				"job-id": flags.jobID,
				"name":   flags.deploymentName,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(flags.output)
			if err != nil {
				return err
			}

			deploySvc, err := newDeploymentService()
			if err != nil {
				return err
			}

			text := fmt.Sprintf("Submitting deployment %s...", flags.deploymentName)
			if flags.wait {
				text = fmt.Sprintf("Deploying %s, this can take several minutes...", flags.deploymentName)
			}
			stop := startSpinner(ctx, text)
			deployment, err := deploySvc.DeployModel(ctx, &models.DeploymentConfig{
				JobID:          flags.jobID,
				DeploymentName: flags.deploymentName,
				ModelFormat:    flags.modelFormat,
				ModelVersion:   flags.modelVersion,
				SKU:            flags.sku,
				Capacity:       flags.capacity,
				Wait:           flags.wait,
			})
			stop()
			if err != nil {
				return err
			}

			if err := printDeployment(cmd, format, deployment); err != nil {
				return err
			}
			if format == utils.FormatTable {
				if deployment.Status == models.DeploymentActive {
					color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
						"\nDeployment %s is ready. Chat with it: finetune chat --model %s --prompt \"...\"\n",
						deployment.Name, deployment.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "\nCheck progress with: finetune deploy show --name %s\n", deployment.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.jobID, "job-id", "i", "", "Succeeded fine-tuning job whose model is deployed")
	cmd.Flags().StringVarP(&flags.deploymentName, "name", "n", "", "Deployment name")
	cmd.Flags().StringVar(&flags.modelFormat, "model-format", models.DefaultModelFormat, "Model format")
	cmd.Flags().StringVar(&flags.modelVersion, "model-version", models.DefaultModelVersion, "Model version")
	cmd.Flags().StringVarP(&flags.sku, "sku", "s", models.DefaultSKU, "Deployment SKU, e.g. Standard or GlobalStandard")
	cmd.Flags().Int32VarP(&flags.capacity, "capacity", "c", models.DefaultCapacity, "Capacity in thousands of tokens per minute")
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "Wait until provisioning finishes")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "table", "Output format: table, json, yaml")

	cmd.AddCommand(newDeployShowCommand())

	return cmd
}

func newDeployShowCommand() *cobra.Command {
	var deploymentName string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the provisioning status of a deployment.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"name": deploymentName})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(outputFormat)
			if err != nil {
				return err
			}

			deploySvc, err := newDeploymentService()
			if err != nil {
				return err
			}

			stop := startSpinner(ctx, fmt.Sprintf("Fetching deployment %s...", deploymentName))
			deployment, err := deploySvc.GetDeploymentStatus(ctx, deploymentName)
			stop()
			if err != nil {
				return err
			}

			return printDeployment(cmd, format, deployment)
		},
	}

	cmd.Flags().StringVarP(&deploymentName, "name", "n", "", "Deployment name")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func printDeployment(cmd *cobra.Command, format utils.OutputFormat, deployment *models.Deployment) error {
	return utils.PrintObject(cmd.OutOrStdout(), format, deployment, []*models.Deployment{deployment}, deploymentColumns)
}
