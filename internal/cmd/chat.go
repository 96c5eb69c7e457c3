// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"os"

	"finetune.quickstart/internal/dataset"
	"finetune.quickstart/internal/exterrors"
	"finetune.quickstart/internal/utils"
	"finetune.quickstart/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type chatFlags struct {
	model        string
	jobID        string
	system       string
	prompt       string
	messagesFile string
	temperature  float64
	maxTokens    int64
	output       string
}

func newChatCommand() *cobra.Command {
	flags := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one chat completion request to a fine-tuned model.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEnvironment(); err != nil {
				return err
			}
			return validateChatFlags(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := utils.ParseOutputFormat(flags.output)
			if err != nil {
				return err
			}

			req, err := buildChatRequest(cmd, flags)
			if err != nil {
				return err
			}

			if req.Model == "" {
				model, err := resolveJobModel(ctx, flags.jobID)
				if err != nil {
					return err
				}
				req.Model = model
			}

			inferenceSvc, err := newInferenceService()
			if err != nil {
				return err
			}

			stop := startSpinner(ctx, fmt.Sprintf("Waiting for %s...", req.Model))
			response, err := inferenceSvc.Chat(ctx, req)
			stop()
			if err != nil {
				return err
			}

			if format != utils.FormatTable {
				return utils.PrintObject(cmd.OutOrStdout(), format, response, nil, nil)
			}

			w := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintln(w, "assistant:")
			fmt.Fprintln(w, response.Content)
			fmt.Fprintf(w, "\n(model %s, finish reason %s, tokens %d prompt + %d completion = %d)\n",
				response.Model, response.FinishReason,
				response.Usage.PromptTokens, response.Usage.CompletionTokens, response.Usage.TotalTokens)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Fine-tuned model ID, e.g. ft:gpt-4o-mini:org::abc123")
	cmd.Flags().StringVar(&flags.jobID, "job-id", "", "Use the model produced by this succeeded fine-tuning job")
	cmd.Flags().StringVar(&flags.system, "system", "", "Optional system message")
	cmd.Flags().StringVarP(&flags.prompt, "prompt", "p", "", "User message")
	cmd.Flags().StringVar(&flags.messagesFile, "messages-file", "", "JSON or JSONL file whose first record holds a messages array")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "Sampling temperature between 0 and 2")
	cmd.Flags().Int64Var(&flags.maxTokens, "max-tokens", 0, "Maximum number of tokens to generate")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "table", "Output format: table, json, yaml")

	cmd.MarkFlagsMutuallyExclusive("model", "job-id")
	cmd.MarkFlagsMutuallyExclusive("prompt", "messages-file")
	cmd.MarkFlagFilename("messages-file", "json", "jsonl")

	return cmd
}

func validateChatFlags(flags *chatFlags) error {
	if flags.model == "" && flags.jobID == "" {
		return exterrors.Validation(exterrors.CodeInvalidArguments,
			"either --model or --job-id is required", HintFindJobID)
	}
	if flags.prompt == "" && flags.messagesFile == "" {
		return exterrors.Validation(exterrors.CodeInvalidArguments,
			"either --prompt or --messages-file is required", "")
	}
	return nil
}

// buildChatRequest assembles the conversation from the prompt flags or the messages file
func buildChatRequest(cmd *cobra.Command, flags *chatFlags) (*models.ChatRequest, error) {
	req := &models.ChatRequest{Model: flags.model}

	if flags.system != "" {
		req.Messages = append(req.Messages, models.ChatMessage{Role: models.RoleSystem, Content: flags.system})
	}

	if flags.messagesFile != "" {
		file, err := os.Open(flags.messagesFile)
		if err != nil {
			return nil, exterrors.Validation(exterrors.CodeFileNotFound,
				fmt.Sprintf("failed to open messages file: %v", err), "")
		}
		defer file.Close()

		record, err := dataset.ReadConversation(file)
		if err != nil {
			return nil, exterrors.Validation(exterrors.CodeInvalidArguments, err.Error(),
				`the file needs a {"messages": [{"role": "user", "content": "..."}]} record`)
		}
		req.Messages = append(req.Messages, record.Messages...)
	} else {
		req.Messages = append(req.Messages, models.ChatMessage{Role: models.RoleUser, Content: flags.prompt})
	}

	if cmd.Flags().Changed("temperature") {
		req.Temperature = &flags.temperature
	}
	if cmd.Flags().Changed("max-tokens") {
		req.MaxTokens = &flags.maxTokens
	}

	return req, nil
}

func resolveJobModel(ctx context.Context, jobID string) (string, error) {
	fineTuneSvc, closeLedger, err := newFineTuningService(ctx)
	if err != nil {
		return "", err
	}
	defer closeLedger()

	stop := startSpinner(ctx, fmt.Sprintf("Looking up the model of job %s...", jobID))
	defer stop()
	return fineTuneSvc.GetFineTunedModel(ctx, jobID)
}
