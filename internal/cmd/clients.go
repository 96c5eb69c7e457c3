// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"os"

	"finetune.quickstart/internal/logging"
	"finetune.quickstart/internal/providers/factory"
	"finetune.quickstart/internal/services"
	"finetune.quickstart/internal/state"
	"github.com/azure/azure-dev/cli/azd/pkg/ux"
)

// startSpinner shows a spinner on stderr and returns the function that stops it
func startSpinner(ctx context.Context, text string) func() {
	spinner := ux.NewSpinner(&ux.SpinnerOptions{
		Text:        text,
		ClearOnStop: true,
		Writer:      os.Stderr,
	})
	if err := spinner.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start spinner: %v\n", err)
	}
	return func() {
		_ = spinner.Stop(ctx)
	}
}

// openLedger opens the local job ledger. A ledger that cannot be opened is logged
// and skipped; it never blocks a remote operation.
func openLedger(ctx context.Context) (*state.Store, func()) {
	store, err := state.Open(ctx, appConfig.StateDir)
	if err != nil {
		logging.WithField("dir", appConfig.StateDir).Warnf("job ledger unavailable: %v", err)
		return nil, func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logging.Log.Debugf("failed to close job ledger: %v", err)
		}
	}
}

// newFineTuningService wires the configured provider to the ledger. The returned
// function releases the ledger.
func newFineTuningService(ctx context.Context) (services.FineTuningService, func(), error) {
	provider, err := factory.NewFineTuningProvider(appConfig)
	if err != nil {
		return nil, nil, err
	}

	store, closeLedger := openLedger(ctx)
	if store == nil {
		return services.NewFineTuningService(provider, nil), closeLedger, nil
	}
	return services.NewFineTuningService(provider, store), closeLedger, nil
}

func newInferenceService() (services.InferenceService, error) {
	provider, err := factory.NewInferenceProvider(appConfig)
	if err != nil {
		return nil, err
	}
	return services.NewInferenceService(provider), nil
}

func newDeploymentService() (services.DeploymentService, error) {
	deployProvider, err := factory.NewModelDeploymentProvider(appConfig)
	if err != nil {
		return nil, err
	}
	ftProvider, err := factory.NewFineTuningProvider(appConfig)
	if err != nil {
		return nil, err
	}
	return services.NewDeploymentService(deployProvider, ftProvider), nil
}
