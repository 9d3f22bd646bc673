/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/tablestore/errors"
)

// RetryConfig defines the backoff policy applied to transient backend
// failures. Caller errors are never retried.
type RetryConfig struct {
	MaxAttempts   int           // Total attempts including the first call
	BaseDelay     time.Duration // Delay before the first retry
	MaxDelay      time.Duration // Upper bound on a single delay
	BackoffFactor float64       // Exponential multiplier per attempt
	JitterFactor  float64       // Random jitter fraction, 0..1
}

// DefaultRetryConfig returns the default retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// delay computes the jittered exponential backoff for the given attempt.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt))
	if max := float64(c.MaxDelay); d > max {
		d = max
	}
	if c.JitterFactor > 0 {
		d += d * c.JitterFactor * (rand.Float64()*2 - 1)
	}
	return time.Duration(d)
}

// do runs one backend call, mapping its failure into the error taxonomy and
// retrying transient failures with backoff. The context deadline is honored
// between attempts.
func (s *Store) do(ctx context.Context, op, table string, call func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil {
			return nil
		}

		lastErr = mapError(op, table, err)
		if !errors.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == s.retry.MaxAttempts-1 {
			break
		}

		wait := s.retry.delay(attempt)
		s.logger.Debug("retrying after transient failure",
			zap.String("operation", op),
			zap.String("table", table),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(lastErr))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
