// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryBase is the first backoff delay of Retry; it doubles per attempt.
var RetryBase = 100 * time.Millisecond

// Retry re-runs fn, a whole mutation cycle, while it fails with
// ErrConflict, up to attempts extra times. Any other error is returned at
// once. attempts <= 0 runs fn exactly once.
func Retry(ctx context.Context, attempts int, fn func(ctx context.Context) (Result, error)) (Result, error) {
	if attempts <= 0 {
		return fn(ctx)
	}

	var (
		res Result
		try int
	)
	backoff := retry.WithMaxRetries(uint64(attempts), retry.NewExponential(RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		try++
		var err error
		res, err = fn(ctx)
		if errors.Is(err, ErrConflict) {
			slog.Info("blog mutation conflicted, retrying", "attempt", try)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
