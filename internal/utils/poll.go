// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrPollLimitReached is returned when the poll budget runs out before completion
var ErrPollLimitReached = errors.New("poll limit reached before completion")

// PollFunc performs one poll. It returns done once polling should stop. A non-nil
// error stops polling immediately and is returned unchanged.
type PollFunc func(ctx context.Context) (done bool, err error)

// PollUntilDone calls poll at a fixed interval until it reports done, fails, or ctx is
// cancelled. maxPolls <= 0 means no limit. There is no backoff.
func PollUntilDone(ctx context.Context, interval time.Duration, maxPolls int, poll PollFunc) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	backoff := retry.NewConstant(interval)
	if maxPolls > 0 {
		backoff = retry.WithMaxRetries(uint64(maxPolls-1), backoff)
	}

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		done, err := poll(ctx)
		if err != nil {
			return err
		}
		if !done {
			return retry.RetryableError(ErrPollLimitReached)
		}
		return nil
	})
}
