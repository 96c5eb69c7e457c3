// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package version

// Version is set at build time via -ldflags "-X finetune.quickstart/internal/version.Version=..."
var Version = "0.1.0"
