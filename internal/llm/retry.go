package llm

import (
	"context"
	"time"
)

// BaseProvider holds the retry configuration shared by every concrete
// provider. Embed it and call Retry around the underlying SDK call.
type BaseProvider struct {
	name       string
	maxRetries int
	retryDelay time.Duration
}

// NewBaseProvider builds a BaseProvider with a linear backoff of
// retryDelay * attempt between tries.
func NewBaseProvider(name string, maxRetries int, retryDelay time.Duration) BaseProvider {
	return BaseProvider{name: name, maxRetries: maxRetries, retryDelay: retryDelay}
}

// Name returns the provider name passed to NewBaseProvider.
func (b BaseProvider) Name() string {
	return b.name
}

// Retry runs op, retrying on errors isRetryable accepts, up to
// maxRetries times with linear backoff. It returns immediately on a
// non-retryable error or when ctx is canceled.
func (b BaseProvider) Retry(ctx context.Context, isRetryable func(error) bool, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.retryDelay * time.Duration(attempt)):
			}
		}

		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return lastErr
}
