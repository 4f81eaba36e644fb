package retry

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Policy controls the bounded exponential backoff applied by Do.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultPolicy is tuned for local backend services (embedding, vector
// store, generation): short initial delay, a few attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		Multiplier:   2.0,
	}
}

type abortError struct {
	err error
}

func (e *abortError) Error() string { return e.err.Error() }
func (e *abortError) Unwrap() error { return e.err }

// Abort wraps an error so that Do stops immediately instead of retrying.
// Use it for permanent failures (4xx responses, malformed input).
func Abort(err error) error {
	if err == nil {
		return nil
	}
	return &abortError{err: err}
}

// Do runs fn with bounded exponential backoff. Every returned error is
// considered transient unless wrapped with Abort. Context cancellation
// stops the loop between attempts.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		return goerr.New("retry policy requires at least one attempt")
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var abort *abortError
		if errors.As(err, &abort) {
			return abort.err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return goerr.Wrap(ctx.Err(), "retry cancelled", goerr.V("attempt", attempt))
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return goerr.Wrap(lastErr, "retries exhausted", goerr.V("attempts", p.MaxAttempts))
}
