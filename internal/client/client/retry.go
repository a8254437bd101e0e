package client

import (
	"context"
	"errors"
	"net/http"
)

// MaxReadRetries is the number of additional attempts granted to a failed read.
const MaxReadRetries = 2

// ShouldRetry is the read retry policy. retries is the number of retries
// already performed for the read. 401 and every other 4xx are final, as is a
// cancelled context; anything else is retried up to MaxReadRetries times.
func ShouldRetry(retries int, err error) bool {
	return RetryUpTo(MaxReadRetries)(retries, err)
}

// RetryUpTo returns ShouldRetry with a custom retry limit.
func RetryUpTo(limit int) func(retries int, err error) bool {
	return func(retries int, err error) bool {
		if err == nil {
			return false
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		if status, ok := StatusOf(err); ok {
			if status == http.StatusUnauthorized || (status >= 400 && status < 500) {
				return false
			}
		}
		return retries < limit
	}
}

// NeverRetry is the policy of every mutation.
func NeverRetry(int, error) bool { return false }
