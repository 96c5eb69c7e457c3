// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"finetune.quickstart/internal/config"
	"finetune.quickstart/internal/logging"
	"github.com/spf13/cobra"
)

type rootFlagsDefinition struct {
	Debug   bool
	EnvFile string
}

var rootFlags rootFlagsDefinition

// appConfig is resolved once per invocation by the root pre-run hook
var appConfig *config.Config

func NewRootCommand() *cobra.Command {
	// jobs and deploy validate credentials in their own pre-run hooks, after the
	// root hook has loaded the environment.
	cobra.EnableTraverseRunHooks = true

	rootCmd := &cobra.Command{
		Use:           "finetune <command> [options]",
		Short:         "Prepare datasets, run fine-tuning jobs and chat with the resulting models.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupEnvironment()
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Debug,
		"debug",
		false,
		"Enable debug logging, including Azure SDK request logs",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.EnvFile,
		"env-file",
		"",
		"Load environment variables from this file instead of ./.env",
	)

	rootCmd.AddCommand(newDatasetCommand())
	rootCmd.AddCommand(newFilesCommand())
	rootCmd.AddCommand(newOperationCommand())
	rootCmd.AddCommand(newChatCommand())
	rootCmd.AddCommand(newDeployCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func setupEnvironment() error {
	if err := config.LoadEnvFile(rootFlags.EnvFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Options{
		Level: cfg.LogLevel,
		Debug: rootFlags.Debug,
	})
	logging.WithField("provider", cfg.Provider).Debug("configuration loaded")

	appConfig = cfg
	return nil
}
