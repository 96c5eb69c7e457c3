// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"

	"finetune.quickstart/internal/utils"
	"finetune.quickstart/pkg/models"
	"github.com/azure/azure-dev/cli/azd/pkg/output"
	"github.com/spf13/cobra"
)

var fileColumns = []output.Column{
	utils.Column("ID", "ID"),
	utils.Column("Filename", "Filename"),
	utils.Column("Bytes", "Bytes"),
	utils.Column("Status", "Status"),
	utils.Column("Created", "Created"),
}

func newFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload and inspect training files",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateEnvironment()
		},
	}

	cmd.AddCommand(newFilesUploadCommand())
	cmd.AddCommand(newFilesShowCommand())

	return cmd
}

func newFilesUploadCommand() *cobra.Command {
	var filePath string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a JSONL training file.",
		Long: "Upload a JSONL training file for fine-tuning. The file is not validated locally; " +
			"run 'finetune dataset validate' first.",
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"file": filePath})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(outputFormat)
			if err != nil {
				return err
			}

			fineTuneSvc, closeLedger, err := newFineTuningService(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			stop := startSpinner(ctx, fmt.Sprintf("Uploading %s...", filePath))
			file, err := fineTuneSvc.UploadFile(ctx, filePath)
			stop()
			if err != nil {
				return err
			}

			return printUploadedFile(cmd, format, file)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to the JSONL training file")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	cmd.MarkFlagFilename("file", "jsonl")

	return cmd
}

func newFilesShowCommand() *cobra.Command {
	var fileID string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show an uploaded file and its processing status.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"id": fileID})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(outputFormat)
			if err != nil {
				return err
			}

			fineTuneSvc, closeLedger, err := newFineTuningService(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			stop := startSpinner(ctx, fmt.Sprintf("Fetching file %s...", fileID))
			file, err := fineTuneSvc.GetUploadedFile(ctx, fileID)
			stop()
			if err != nil {
				return err
			}

			return printUploadedFile(cmd, format, file)
		},
	}

	cmd.Flags().StringVarP(&fileID, "id", "i", "", "Uploaded file ID")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func printUploadedFile(cmd *cobra.Command, format utils.OutputFormat, file *models.UploadedFile) error {
	rows := []*models.UploadedFileTableView{file.ToTableView()}
	if err := utils.PrintObject(cmd.OutOrStdout(), format, file, rows, fileColumns); err != nil {
		return err
	}
	if format == utils.FormatTable && file.StatusDetails != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nDetails: %s\n", file.StatusDetails)
	}
	return nil
}
