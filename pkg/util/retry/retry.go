// Copyright (C) 2017 ScyllaDB

package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// Backoff specifies a policy for how long to wait between retries.
// It is called after a failing request to determine the amount of time
// that should pass before trying again.
type Backoff = backoff.BackOff

// Stop indicates that no more retries should be made.
const Stop = backoff.Stop

// NewExponentialBackoff returns Backoff that increases the wait time
// exponentially starting from initialInterval up to maxInterval.
// If maxElapsedTime is > 0 the backoff stops after that time.
func NewExponentialBackoff(initialInterval, maxElapsedTime, maxInterval time.Duration, multiplier, randomFactor float64) Backoff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxElapsedTime = maxElapsedTime
	b.MaxInterval = maxInterval
	b.Multiplier = multiplier
	b.RandomizationFactor = randomFactor
	b.Reset()
	return b
}

// WithMaxRetries wraps Backoff and limits the number of retries.
func WithMaxRetries(b Backoff, maxRetries uint64) Backoff {
	return backoff.WithMaxRetries(b, maxRetries)
}

// BackoffFunc is a Backoff that returns the result of the function.
type BackoffFunc func() time.Duration

// NextBackOff implements Backoff.
func (f BackoffFunc) NextBackOff() time.Duration {
	return f()
}

// Reset implements Backoff.
func (f BackoffFunc) Reset() {}

// Notify is a notify-on-error function. It receives an operation error and
// backoff delay if the operation failed (with an error).
type Notify = backoff.Notify

// WithNotify calls the op function with retries using the backoff policy
// until it succeeds, returns a permanent error or the context is canceled.
// A permanent error is returned unwrapped.
func WithNotify(ctx context.Context, op func() error, b Backoff, n Notify) error {
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), n)
}

// Permanent wraps the given err in a permanent error, the operation is not
// retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent returns true if err is a permanent error.
func IsPermanent(err error) bool {
	var pe *backoff.PermanentError
	return errors.As(err, &pe)
}
