// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"finetune.quickstart/internal/version"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the version of the fine-tuning client.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintln(w, "Fine-tuning Quickstart")
			color.New(color.FgWhite).Fprintf(w, "Version: %s\n", version.Version)
			return nil
		},
	}
}
