// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"finetune.quickstart/internal/services"
	"finetune.quickstart/internal/utils"
	"finetune.quickstart/pkg/models"
	"github.com/azure/azure-dev/cli/azd/pkg/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// DefaultWatchInterval is the fixed delay between polls of 'jobs watch'
const DefaultWatchInterval = 30 * time.Second

var jobColumns = []output.Column{
	utils.Column("ID", "ID"),
	utils.Column("Status", "Status"),
	utils.Column("Model", "BaseModel"),
	utils.Column("Fine-tuned Model", "FineTunedModel"),
	utils.Column("Created", "Created"),
	utils.Column("Duration", "Duration"),
}

var eventColumns = []output.Column{
	utils.Column("Created", "Created"),
	utils.Column("Level", "Level"),
	utils.Column("Message", "Message"),
}

var checkpointColumns = []output.Column{
	utils.Column("Step", "Step"),
	utils.Column("Checkpoint", "Checkpoint"),
	utils.Column("Train Loss", "TrainLoss"),
	utils.Column("Valid Loss", "ValidLoss"),
	utils.Column("Created", "Created"),
}

func newOperationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "jobs",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateEnvironment()
		},
		Short: "Manage fine-tuning jobs",
	}

	cmd.AddCommand(newOperationSubmitCommand())
	cmd.AddCommand(newOperationShowCommand())
	cmd.AddCommand(newOperationEventsCommand())
	cmd.AddCommand(newOperationListCommand())
	cmd.AddCommand(newOperationCheckpointsCommand())
	cmd.AddCommand(newOperationPauseCommand())
	cmd.AddCommand(newOperationResumeCommand())
	cmd.AddCommand(newOperationCancelCommand())
	cmd.AddCommand(newOperationWatchCommand())

	return cmd
}

type submitFlags struct {
	filename               string
	model                  string
	trainingFile           string
	validationFile         string
	suffix                 string
	seed                   int64
	epochs                 int64
	batchSize              int64
	learningRateMultiplier float64
	output                 string
}

func newOperationSubmitCommand() *cobra.Command {
	flags := &submitFlags{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a fine-tuning job.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateSubmitFlags(flags.filename, flags.model, flags.trainingFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(flags.output)
			if err != nil {
				return err
			}

			req, err := buildSubmitRequest(cmd, flags)
			if err != nil {
				return err
			}

			fineTuneSvc, closeLedger, err := newFineTuningService(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			stop := startSpinner(ctx, "Creating fine-tuning job...")
			job, err := fineTuneSvc.CreateFineTuningJob(ctx, req)
			stop()
			if err != nil {
				return err
			}

			if format != utils.FormatTable {
				return utils.PrintObject(cmd.OutOrStdout(), format, job, nil, nil)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, strings.Repeat("=", 60))
			color.New(color.FgGreen).Fprintln(w, "Successfully submitted fine-tuning job!")
			fmt.Fprintf(w, "Job ID:     %s\n", job.ID)
			fmt.Fprintf(w, "Model:      %s\n", job.BaseModel)
			fmt.Fprintf(w, "Status:     %s\n", utils.StatusLabel(job.Status))
			fmt.Fprintf(w, "Created:    %s\n", utils.FormatTime(job.CreatedAt))
			fmt.Fprintln(w, strings.Repeat("=", 60))
			fmt.Fprintf(w, "Check progress with: finetune jobs show --id %s\n", job.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.filename, "file", "f", "", "Path to the job config file.")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Base model to fine-tune. Overrides config file. Required if --file is not provided")
	cmd.Flags().StringVarP(&flags.trainingFile, "training-file", "t", "", "Training file ID or local path. Use 'local:' prefix for local paths. Required if --file is not provided")
	cmd.Flags().StringVarP(&flags.validationFile, "validation-file", "v", "", "Validation file ID or local path. Use 'local:' prefix for local paths.")
	cmd.Flags().StringVarP(&flags.suffix, "suffix", "s", "", "An optional string of up to 64 characters that will be added to your fine-tuned model name. Overrides config file.")
	cmd.Flags().Int64VarP(&flags.seed, "seed", "r", 0, "Random seed for reproducibility of the job. If a seed is not specified, one will be generated for you. Overrides config file.")
	cmd.Flags().Int64Var(&flags.epochs, "epochs", 0, "Number of training epochs. Overrides config file.")
	cmd.Flags().Int64Var(&flags.batchSize, "batch-size", 0, "Training batch size. Overrides config file.")
	cmd.Flags().Float64Var(&flags.learningRateMultiplier, "learning-rate-multiplier", 0, "Learning rate multiplier. Overrides config file.")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "table", "Output format: table, json, yaml")

	cmd.MarkFlagFilename("file", "yaml", "yml")
	return cmd
}

// buildSubmitRequest loads the job config file, if any, and applies flag overrides
func buildSubmitRequest(cmd *cobra.Command, flags *submitFlags) (*models.CreateFineTuningRequest, error) {
	req := &models.CreateFineTuningRequest{}
	if flags.filename != "" {
		parsed, err := utils.ParseCreateFineTuningRequestConfig(flags.filename)
		if err != nil {
			return nil, err
		}
		req = parsed
	}

	if flags.model != "" {
		req.BaseModel = flags.model
	}
	if flags.trainingFile != "" {
		req.TrainingFile = flags.trainingFile
	}
	if flags.validationFile != "" {
		req.ValidationFile = &flags.validationFile
	}
	if flags.suffix != "" {
		req.Suffix = &flags.suffix
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &flags.seed
	}

	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if changed("epochs") || changed("batch-size") || changed("learning-rate-multiplier") {
		req.Method.Type = models.Supervised
		if req.Method.Supervised == nil {
			req.Method.Supervised = &models.SupervisedConfig{}
		}
		hp := &req.Method.Supervised.Hyperparameters
		if changed("epochs") {
			hp.Epochs = &flags.epochs
		}
		if changed("batch-size") {
			hp.BatchSize = &flags.batchSize
		}
		if changed("learning-rate-multiplier") {
			hp.LearningRateMultiplier = &flags.learningRateMultiplier
		}
	}

	return req, nil
}

// newOperationShowCommand creates a command to show the fine-tuning job details
func newOperationShowCommand() *cobra.Command {
	var jobID string
	var limit int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show fine-tuning job details and its latest events.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"id": jobID})
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

			stop := startSpinner(ctx, fmt.Sprintf("Fetching fine-tuning job %s...", jobID))
			report, err := fineTuneSvc.GetJobReport(ctx, jobID, limit)
			stop()
			if err != nil {
				return err
			}

			if format != utils.FormatTable {
				return utils.PrintObject(cmd.OutOrStdout(), format, report, nil, nil)
			}

			w := cmd.OutOrStdout()
			printJobDetails(w, report.Job)
			if len(report.Events) > 0 {
				fmt.Fprintln(w, "\nJob Events:")
				events := &models.JobEventsList{Data: report.Events}
				if err := utils.PrintObject(w, format, nil, events.ToTableViews(), eventColumns); err != nil {
					return err
				}
			}
			printNextStep(w, report.Job)
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobID, "id", "i", "", "Fine-tuning job ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", services.DefaultEventLimit, "Number of most recent events to show")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func newOperationEventsCommand() *cobra.Command {
	var jobID string
	var limit int
	var after string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the events of a fine-tuning job, oldest first.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"id": jobID})
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

			stop := startSpinner(ctx, "Fetching job events...")
			events, err := fineTuneSvc.GetJobEvents(ctx, jobID, limit, after)
			stop()
			if err != nil {
				return err
			}

			if err := utils.PrintObject(cmd.OutOrStdout(), format, events, events.ToTableViews(), eventColumns); err != nil {
				return err
			}
			if format == utils.FormatTable && events.HasMore {
				fmt.Fprintln(cmd.OutOrStdout(), "  ... (older events available, raise --limit)")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobID, "id", "i", "", "Fine-tuning job ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", services.DefaultEventLimit, "Number of events to return")
	cmd.Flags().StringVar(&after, "after", "", "Pagination cursor: return events after this event ID")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

// newOperationListCommand creates a command to list fine-tuning jobs
func newOperationListCommand() *cobra.Command {
	var limit int
	var after string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fine-tuning jobs.",
		Args:  cobra.NoArgs,
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

			stop := startSpinner(ctx, "Fetching fine-tuning jobs...")
			jobs, err := fineTuneSvc.ListFineTuningJobs(ctx, limit, after)
			stop()
			if err != nil {
				return err
			}

			return utils.PrintObject(cmd.OutOrStdout(), format, jobs, models.ToTableViews(jobs), jobColumns)
		},
	}

	cmd.Flags().IntVarP(&limit, "top", "t", 10, "Number of jobs to return")
	cmd.Flags().StringVar(&after, "after", "", "Pagination cursor")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

func newOperationCheckpointsCommand() *cobra.Command {
	var jobID string
	var limit int
	var after string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List the checkpoints of a fine-tuning job.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"id": jobID})
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

			stop := startSpinner(ctx, "Fetching job checkpoints...")
			checkpoints, err := fineTuneSvc.GetJobCheckpoints(ctx, jobID, limit, after)
			stop()
			if err != nil {
				return err
			}

			if format == utils.FormatTable && len(checkpoints.Data) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints yet. Checkpoints are created as training progresses.")
				return nil
			}
			return utils.PrintObject(cmd.OutOrStdout(), format, checkpoints, checkpoints.ToTableViews(), checkpointColumns)
		},
	}

	cmd.Flags().StringVarP(&jobID, "id", "i", "", "Fine-tuning job ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of checkpoints to return")
	cmd.Flags().StringVar(&after, "after", "", "Pagination cursor")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func newOperationPauseCommand() *cobra.Command {
	return newJobActionCommand(models.JobActionPause, "Pauses a running fine-tuning job.")
}

func newOperationResumeCommand() *cobra.Command {
	return newJobActionCommand(models.JobActionResume, "Resumes a paused fine-tuning job.")
}

func newOperationCancelCommand() *cobra.Command {
	return newJobActionCommand(models.JobActionCancel, "Cancels a fine-tuning job.")
}

// newJobActionCommand builds the pause, resume and cancel commands
func newJobActionCommand(action models.JobAction, short string) *cobra.Command {
	var jobID string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"id": jobID})
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

			stop := startSpinner(ctx, fmt.Sprintf("Requesting %s of job %s...", action, jobID))
			var job *models.FineTuningJob
			switch action {
			case models.JobActionPause:
				job, err = fineTuneSvc.PauseJob(ctx, jobID)
			case models.JobActionResume:
				job, err = fineTuneSvc.ResumeJob(ctx, jobID)
			default:
				job, err = fineTuneSvc.CancelJob(ctx, jobID)
			}
			stop()
			if err != nil {
				return err
			}

			if format != utils.FormatTable {
				return utils.PrintObject(cmd.OutOrStdout(), format, job, nil, nil)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Job %s: %s\n", job.ID, utils.StatusLabel(job.Status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobID, "id", "i", "", "Fine-tuning job ID")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func newOperationWatchCommand() *cobra.Command {
	var jobID string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a fine-tuning job at a fixed interval until it finishes.",
		Long: "Poll a fine-tuning job at a fixed interval until it succeeds, fails or is cancelled. " +
			"New events are printed as they appear. Any failed poll ends the watch; press Ctrl+C to stop early.",
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateRequiredFlags(map[string]string{"id": jobID})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fineTuneSvc, closeLedger, err := newFineTuningService(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			w := cmd.OutOrStdout()
			var lastStatus models.JobStatus
			job, err := fineTuneSvc.WatchJob(ctx, jobID, interval, func(report *models.JobReport) {
				for _, event := range report.Events {
					fmt.Fprintf(w, "%s  [%s] %s\n", utils.FormatTime(event.CreatedAt), event.Level, event.Message)
				}
				if report.Job.Status != lastStatus {
					lastStatus = report.Job.Status
					color.New(color.FgCyan).Fprintf(w, "status: %s\n", utils.StatusLabel(lastStatus))
				}
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(w)
			printJobDetails(w, job)
			printNextStep(w, job)
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobID, "id", "i", "", "Fine-tuning job ID")
	cmd.Flags().DurationVar(&interval, "interval", DefaultWatchInterval, "Fixed delay between polls")

	return cmd
}

func printJobDetails(w io.Writer, job *models.FineTuningJob) {
	view := job.ToDetailsView()

	color.New(color.FgGreen).Fprintln(w, "Fine-tuning Job Details")
	fmt.Fprintf(w, "Job ID:              %s\n", view.ID)
	fmt.Fprintf(w, "Status:              %s\n", utils.StatusLabel(view.Status))
	fmt.Fprintf(w, "Model:               %s\n", view.Model)
	fmt.Fprintf(w, "Fine-tuned Model:    %s\n", view.FineTunedModel)
	fmt.Fprintf(w, "Created At:          %s\n", view.Created)
	if job.Status.IsTerminal() {
		fmt.Fprintf(w, "Finished At:         %s\n", view.Finished)
	} else {
		fmt.Fprintf(w, "Estimated Finish:    %s\n", view.EstimatedETA)
	}
	fmt.Fprintf(w, "Method:              %s\n", view.Method)
	fmt.Fprintf(w, "Training File:       %s\n", view.TrainingFile)
	fmt.Fprintf(w, "Validation File:     %s\n", view.ValidationFile)
	fmt.Fprintf(w, "Trained Tokens:      %s\n", view.TrainedTokens)

	if job.Hyperparameters != nil {
		fmt.Fprintln(w, "\nHyperparameters:")
		fmt.Fprintf(w, "  Epochs:                   %s\n", view.Epochs)
		fmt.Fprintf(w, "  Batch Size:               %s\n", view.BatchSize)
		fmt.Fprintf(w, "  Learning Rate Multiplier: %s\n", view.LearningRate)
	}

	if job.Error != nil && job.Error.Message != "" {
		color.New(color.FgRed).Fprintf(w, "\nError: %s\n", view.Error)
	}
}

func printNextStep(w io.Writer, job *models.FineTuningJob) {
	fmt.Fprintln(w)
	switch {
	case job.Status == models.StatusSucceeded && job.FineTunedModel != "":
		fmt.Fprintf(w, "Try the model: finetune chat --model %s --prompt \"...\"\n", job.FineTunedModel)
	case !job.Status.IsTerminal():
		fmt.Fprintf(w, "The job is still %s. Run 'finetune jobs show --id %s' again later.\n", job.Status, job.ID)
	}
}
