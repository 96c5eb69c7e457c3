// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"os"
	"os/signal"

	"finetune.quickstart/internal/cmd"
	"finetune.quickstart/internal/exterrors"

	"github.com/fatih/color"
)

func init() {
	forceColorVal, has := os.LookupEnv("FORCE_COLOR")
	if has && forceColorVal == "1" {
		color.NoColor = false
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cmd.NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	if suggestion := exterrors.SuggestionOf(err); suggestion != "" {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
	stop()
	os.Exit(1)
}
