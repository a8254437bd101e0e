package cache

import (
	"context"
	"fmt"
)

// Query is Fetch with a typed result.
func Query[T any](ctx context.Context, c *QueryCache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: %s holds %T, not %T", key, v, zero)
	}
	return t, nil
}

// Peek returns the cached value of key when it holds a T.
func Peek[T any](c *QueryCache, key Key) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
