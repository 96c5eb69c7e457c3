// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package utils

import "finetune.quickstart/pkg/models"

var statusSymbols = map[models.JobStatus]string{
	models.StatusPending:         "⌛",
	models.StatusValidatingFiles: "🔎",
	models.StatusQueued:          "📚",
	models.StatusRunning:         "🔄",
	models.StatusPaused:          "⏸️",
	models.StatusSucceeded:       "✅",
	models.StatusFailed:          "💥",
	models.StatusCancelled:       "❌",
}

// GetStatusSymbol returns the glyph shown next to a job status.
func GetStatusSymbol(status models.JobStatus) string {
	if symbol, ok := statusSymbols[status]; ok {
		return symbol
	}
	return "❓"
}

// StatusLabel is the symbol followed by the status name, e.g. "✅ succeeded".
func StatusLabel(status models.JobStatus) string {
	return GetStatusSymbol(status) + " " + string(status)
}
