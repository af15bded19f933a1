// Package retry runs remote calls again when, and only when, the backend
// answered with a rate-limit response.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campusbite/backend"
	"campusbite/metrics"

	"github.com/eapache/go-resiliency/retrier"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// Options bound the retry budget. A zero BaseDelay retries without
// waiting; a negative one means DefaultBaseDelay.
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Defaults returns 3 retries starting at 2s (2s, 4s, 8s).
func Defaults() Options {
	return Options{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseDelay < 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	return o
}

// MaxDelay is the longest cumulative wait Do can spend sleeping.
func (o Options) MaxDelay() time.Duration {
	o = o.withDefaults()
	return o.BaseDelay * time.Duration((1<<o.MaxRetries)-1)
}

// RateLimitError is returned once the retry budget is spent.
type RateLimitError struct {
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts, please try again later: %v", e.Attempts, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

type classifier struct{}

func (classifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case backend.IsRateLimited(err):
		return retrier.Retry
	default:
		return retrier.Fail
	}
}

// Do calls op until it succeeds, fails with a non rate-limit error, or has
// been attempted MaxRetries+1 times. The wait before retry n (0-based) is
// BaseDelay * 2^n.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	var (
		result   T
		attempts int
	)
	r := retrier.New(retrier.ExponentialBackoff(opts.MaxRetries, opts.BaseDelay), classifier{})

	err := r.RunFn(ctx, func(ctx context.Context, retries int) error {
		attempts = retries + 1
		if retries > 0 {
			metrics.RateLimitRetries.Inc()
			log.Printf("Rate limit hit, retry %d/%d", retries, opts.MaxRetries)
		}
		v, err := op(ctx)
		if err == nil {
			result = v
		}
		return err
	})
	if err != nil {
		var zero T
		if backend.IsRateLimited(err) {
			metrics.RateLimitExhausted.Inc()
			return zero, &RateLimitError{Attempts: attempts, Err: err}
		}
		return zero, err
	}
	return result, nil
}

// IsRateLimit reports whether err is an exhausted retry budget.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
