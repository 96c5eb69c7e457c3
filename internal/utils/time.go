// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package utils

import (
	"time"
)

// TimeFormat defines the standard time format used for display output
const TimeFormat = "2006-01-02 15:04:05 UTC"

// UnixTimestampToUTC converts a Unix timestamp (seconds since epoch) to a UTC time.Time.
// Returns zero time.Time if timestamp is 0.
func UnixTimestampToUTC(timestamp int64) time.Time {
	if timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(timestamp, 0).UTC()
}

// UnixTimestampToUTCPtr is UnixTimestampToUTC for optional fields; 0 maps to nil.
func UnixTimestampToUTCPtr(timestamp int64) *time.Time {
	if timestamp == 0 {
		return nil
	}
	t := UnixTimestampToUTC(timestamp)
	return &t
}

// FormatTime formats a time.Time to the standard display format.
// Returns empty string if time is zero.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// CalculateDuration returns the run time between two Unix timestamps, or 0 while the
// job has not finished.
func CalculateDuration(createdAt, finishedAt int64) time.Duration {
	if createdAt == 0 || finishedAt == 0 || finishedAt < createdAt {
		return 0
	}
	return time.Duration(finishedAt-createdAt) * time.Second
}
