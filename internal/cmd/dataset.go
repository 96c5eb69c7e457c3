// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"finetune.quickstart/internal/dataset"
	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDatasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Prepare and validate training data",
	}

	cmd.AddCommand(newDatasetPrepareCommand())
	cmd.AddCommand(newDatasetValidateCommand())

	return cmd
}

func newDatasetPrepareCommand() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Convert a YAML or JSON list of conversations into a JSONL training file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRequiredFlags(map[string]string{"input": input, "output": output}); err != nil {
				return err
			}

			count, err := dataset.Prepare(input, output)
			if err != nil {
				return exterrors.Validation(exterrors.CodeInvalidDataset, err.Error(),
					"each record needs a messages list of {role, content} entries")
			}

			w := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(w, "wrote %d record(s) to %s\n", count, output)
			fmt.Fprintf(w, "Next: finetune dataset validate %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "YAML or JSON file holding a list of records")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the JSONL training file to write")
	cmd.MarkFlagFilename("input", "yaml", "yml", "json")

	return cmd
}

func newDatasetValidateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check every line of a JSONL training file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := utils.ParseOutputFormat(output)
			if err != nil {
				return err
			}

			path := args[0]
			report, err := dataset.ValidateFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				return exterrors.Validation(exterrors.CodeFileNotFound, err.Error(), "check the path of the training file")
			}
			if err != nil {
				return exterrors.User(exterrors.CodeInvalidDataset, err.Error())
			}

			if format != utils.FormatTable {
				if err := utils.PrintObject(cmd.OutOrStdout(), format, report, nil, nil); err != nil {
					return err
				}
			} else {
				printValidationReport(cmd.OutOrStdout(), path, report)
			}

			if !report.Valid() {
				return exterrors.Validation(
					exterrors.CodeInvalidDataset,
					fmt.Sprintf("%s failed validation: %d of %d line(s) are invalid", path, len(report.Errors), report.Lines),
					"fix the listed lines, or regenerate the file with 'finetune dataset prepare'",
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func printValidationReport(w io.Writer, path string, report *dataset.Report) {
	for _, lineErr := range report.Errors {
		color.New(color.FgRed).Fprintf(os.Stderr, "  %s\n", lineErr.Error())
	}
	if report.Valid() {
		color.New(color.FgGreen).Fprintf(w, "%s: %d record(s), all valid\n", path, report.Records)
		return
	}
	fmt.Fprintf(w, "%s: %d line(s), %d valid, %d invalid\n", path, report.Lines, report.Records, len(report.Errors))
}
