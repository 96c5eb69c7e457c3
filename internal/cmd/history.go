// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"

	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/internal/state"
	"finetune.quickstart/internal/utils"
	"github.com/azure/azure-dev/cli/azd/pkg/output"
	"github.com/spf13/cobra"
)

type historyJobRow struct {
	ID             string
	Status         string
	Model          string
	FineTunedModel string
	RunID          string
	Updated        string
}

type historyFileRow struct {
	ID       string
	Filename string
	Bytes    int64
	Uploaded string
}

var historyJobColumns = []output.Column{
	utils.Column("ID", "ID"),
	utils.Column("Status", "Status"),
	utils.Column("Model", "Model"),
	utils.Column("Fine-tuned Model", "FineTunedModel"),
	utils.Column("Run ID", "RunID"),
	utils.Column("Last Seen", "Updated"),
}

var historyFileColumns = []output.Column{
	utils.Column("ID", "ID"),
	utils.Column("Filename", "Filename"),
	utils.Column("Bytes", "Bytes"),
	utils.Column("Uploaded", "Uploaded"),
}

func newHistoryCommand() *cobra.Command {
	var showFiles bool
	var jobID string
	var top int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List jobs and uploads recorded on this machine, newest first.",
		Long: "List the jobs and uploads recorded in the local ledger, newest first. The ledger is a cache " +
			"of what this client has seen; 'finetune jobs show' always asks the service.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(outputFormat)
			if err != nil {
				return err
			}

			store, err := state.Open(ctx, appConfig.StateDir)
			if err != nil {
				return err
			}
			defer store.Close()

			w := cmd.OutOrStdout()

			if jobID != "" {
				record, err := store.GetJob(ctx, jobID)
				if err != nil {
					return err
				}
				if record == nil {
					return exterrors.Validation(exterrors.CodeInvalidArguments,
						fmt.Sprintf("job %s is not in the local ledger", jobID), HintFindJobID)
				}
				return utils.PrintObject(w, format, record, toHistoryJobRows([]state.JobRecord{*record}), historyJobColumns)
			}

			if showFiles {
				files, err := store.ListFiles(ctx, top)
				if err != nil {
					return err
				}
				return utils.PrintObject(w, format, files, toHistoryFileRows(files), historyFileColumns)
			}

			jobs, err := store.ListJobs(ctx, top)
			if err != nil {
				return err
			}
			if format == utils.FormatTable && len(jobs) == 0 {
				fmt.Fprintln(w, "No jobs recorded yet. Submit one with 'finetune jobs submit'.")
				return nil
			}
			return utils.PrintObject(w, format, jobs, toHistoryJobRows(jobs), historyJobColumns)
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "List uploaded files instead of jobs")
	cmd.Flags().StringVarP(&jobID, "id", "i", "", "Show the ledger record of one job")
	cmd.Flags().IntVarP(&top, "top", "t", 20, "Number of records to return (0 for all)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func toHistoryJobRows(jobs []state.JobRecord) []historyJobRow {
	rows := make([]historyJobRow, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, historyJobRow{
			ID:             job.ID,
			Status:         utils.StatusLabel(job.Status),
			Model:          job.BaseModel,
			FineTunedModel: dashIfEmpty(job.FineTunedModel),
			RunID:          dashIfEmpty(job.ClientRunID),
			Updated:        utils.FormatTime(job.UpdatedAt),
		})
	}
	return rows
}

func toHistoryFileRows(files []state.FileRecord) []historyFileRow {
	rows := make([]historyFileRow, 0, len(files))
	for _, file := range files {
		rows = append(rows, historyFileRow{
			ID:       file.ID,
			Filename: file.Filename,
			Bytes:    file.Bytes,
			Uploaded: utils.FormatTime(file.UploadedAt),
		})
	}
	return rows
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
