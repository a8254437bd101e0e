package cache

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// newBackOff is a test seam for the delay schedule between read attempts.
var newBackOff = func(initial time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// fetchWithRetry calls fetcher until it succeeds or the retry policy gives
// up. Only reads go through here.
func (c *QueryCache) fetchWithRetry(ctx context.Context, fetcher Fetcher) (any, error) {
	var (
		value   any
		retries int
	)
	op := func() error {
		v, err := fetcher(ctx)
		if err == nil {
			value = v
			return nil
		}
		if ctx.Err() != nil || !c.retry(retries, err) {
			return backoff.Permanent(err)
		}
		retries++
		c.logger.Debug(ctx, "retrying read", "attempt", retries+1, "error", err)
		return err
	}

	b := backoff.WithContext(newBackOff(c.retryDelay), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return value, nil
}
