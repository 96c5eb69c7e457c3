// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package utils

import "strings"

// LocalFilePrefix marks a flag value as a local path rather than a remote file ID
const LocalFilePrefix = "local:"

// IsLocalFilePath reports whether value refers to a local file
func IsLocalFilePath(value string) bool {
	return strings.HasPrefix(value, LocalFilePrefix)
}

// GetLocalFilePath strips the local prefix
func GetLocalFilePath(value string) string {
	return strings.TrimPrefix(value, LocalFilePrefix)
}
