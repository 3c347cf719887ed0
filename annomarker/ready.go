package annomarker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotReady is returned by resources still loading:
	// it is transient and the operation may be retried.
	ErrNotReady = errors.New("annomarker: resource not ready")

	// ErrRetryBudgetExhausted is returned by WaitReady when the
	// resource is still not ready after the last attempt.
	ErrRetryBudgetExhausted = errors.New("annomarker: retry budget exhausted")
)

// Retry bounds the polling of a resource.
type Retry struct {
	Attempts int
	Delay    time.Duration
}

var DefaultRetry = Retry{Attempts: 10, Delay: 100 * time.Millisecond}

// WaitReady calls check until it succeeds, fails with an error
// other than ErrNotReady, or the retry budget is exhausted.
// At least one attempt is always made.
func WaitReady(ctx context.Context, r Retry, check func() error) error {
	attempts := max(1, r.Attempts)
	for i := 1; ; i++ {
		err := check()
		if err == nil || !errors.Is(err, ErrNotReady) {
			return err
		}
		if i >= attempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetryBudgetExhausted, attempts, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Delay):
		}
	}
}
