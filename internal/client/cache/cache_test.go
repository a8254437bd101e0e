package cache

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, opts Options) *QueryCache {
	t.Helper()
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Millisecond
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func counter(value any, calls *atomic.Int32) Fetcher {
	return func(context.Context) (any, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestKey(t *testing.T) {
	k := K("users", int64(7), "posts")
	assert.Equal(t, "users/7/posts", k.String())
	assert.True(t, k.HasPrefix(K("users")))
	assert.True(t, k.HasPrefix(K("users", 7)))
	assert.False(t, k.HasPrefix(K("users", 8)))
	assert.False(t, K("users").HasPrefix(k))
	assert.True(t, k.Equal(parseKey(k.String())))
	assert.Panics(t, func() { K(1.5) })
}

func TestFetch_FreshValueIsServedFromCache(t *testing.T) {
	c := newTestCache(t, Options{})
	var calls atomic.Int32

	for range 3 {
		v, err := c.Fetch(context.Background(), K("timeline"), counter("tl", &calls))
		require.NoError(t, err)
		assert.Equal(t, "tl", v)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetch_StaleValueIsRefetched(t *testing.T) {
	clk := &clock{now: time.Unix(1000, 0)}
	c := newTestCache(t, Options{StaleTime: time.Minute})
	c.now = clk.Now
	var calls atomic.Int32

	_, err := c.Fetch(context.Background(), K("posts"), counter("p", &calls))
	require.NoError(t, err)
	clk.Advance(30 * time.Second)
	_, err = c.Fetch(context.Background(), K("posts"), counter("p", &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	clk.Advance(31 * time.Second)
	_, err = c.Fetch(context.Background(), K("posts"), counter("p", &calls))
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetch_NegativeStaleTimeAlwaysFetches(t *testing.T) {
	c := newTestCache(t, Options{StaleTime: -1})
	var calls atomic.Int32
	for range 2 {
		_, err := c.Fetch(context.Background(), K("me"), counter("me", &calls))
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetch_EntriesUnusedPastGCTimeAreEvicted(t *testing.T) {
	clk := &clock{now: time.Unix(1000, 0)}
	c := newTestCache(t, Options{GCTime: time.Minute})
	c.now = clk.Now

	c.Set(K("posts", 1), "one")
	_, ok := c.Get(K("posts", 1))
	require.True(t, ok)

	clk.Advance(59 * time.Second)
	_, ok = c.Get(K("posts", 1))
	require.True(t, ok, "access refreshes the entry")

	clk.Advance(61 * time.Second)
	_, ok = c.Get(K("posts", 1))
	assert.False(t, ok)
	assert.Empty(t, c.Keys())
}

func TestFetch_MaxEntriesBoundsTheStore(t *testing.T) {
	c := newTestCache(t, Options{MaxEntries: 2})
	c.Set(K("a"), 1)
	c.Set(K("b"), 2)
	c.Set(K("c"), 3)

	_, ok := c.Get(K("a"))
	assert.False(t, ok)
	assert.Len(t, c.Keys(), 2)
}

func TestFetch_ConcurrentCallersShareOneRequest(t *testing.T) {
	c := newTestCache(t, Options{})
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), K("timeline"), fetch)
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestFetch_RetriesFollowThePolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int32
	}{
		{"server error retried twice", &client.APIError{Status: http.StatusInternalServerError}, 3},
		{"unavailable retried twice", errors.New("connection refused"), 3},
		{"unauthorized is final", &client.APIError{Status: http.StatusUnauthorized}, 1},
		{"forbidden is final", &client.APIError{Status: http.StatusForbidden}, 1},
		{"not found is final", &client.APIError{Status: http.StatusNotFound}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, Options{Retry: client.ShouldRetry})
			var calls atomic.Int32
			_, err := c.Fetch(context.Background(), K("timeline"), func(context.Context) (any, error) {
				calls.Add(1)
				return nil, tt.err
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantCalls, calls.Load())
			_, ok := c.Get(K("timeline"))
			assert.False(t, ok)
		})
	}
}

func TestFetch_RetrySucceedsOnLaterAttempt(t *testing.T) {
	c := newTestCache(t, Options{Retry: client.ShouldRetry})
	var calls atomic.Int32
	v, err := c.Fetch(context.Background(), K("me"), func(context.Context) (any, error) {
		if calls.Add(1) < 3 {
			return nil, &client.APIError{Status: http.StatusBadGateway}
		}
		return "me", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "me", v)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetch_SharedFetchSurvivesFirstCallerCancelling(t *testing.T) {
	c := newTestCache(t, Options{})
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return "shared", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctxA, K("p"), fetch)
		errA <- err
	}()
	<-started

	type result struct {
		v   any
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := c.Fetch(context.Background(), K("p"), fetch)
		resB <- result{v, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "shared", b.v)
	assert.EqualValues(t, 1, calls.Load())

	v, ok := c.Get(K("p"))
	require.True(t, ok)
	assert.Equal(t, "shared", v)
}

func TestCancel_DiscardsInFlightResult(t *testing.T) {
	c := newTestCache(t, Options{})
	c.Set(K("posts"), "before")
	c.Invalidate(K("posts"))

	started := make(chan struct{})
	done := make(chan struct{})
	var got any
	go func() {
		defer close(done)
		got, _ = c.Fetch(context.Background(), K("posts"), func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return "late", ctx.Err()
		})
	}()

	<-started
	c.Cancel(K("posts"))
	<-done

	assert.Equal(t, "before", got)
	v, _ := c.Get(K("posts"))
	assert.Equal(t, "before", v)
}

func TestCancel_ResultThatIgnoresCancellationIsNotStored(t *testing.T) {
	c := newTestCache(t, Options{})
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), K("timeline"), func(context.Context) (any, error) {
			close(started)
			<-release
			return "server snapshot", nil
		})
	}()

	<-started
	c.Cancel(K("timeline"))
	c.Set(K("timeline"), "optimistic")
	close(release)
	<-done

	v, _ := c.Get(K("timeline"))
	assert.Equal(t, "optimistic", v)
}

func TestCancel_WithoutValueReportsCanceled(t *testing.T) {
	c := newTestCache(t, Options{})
	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), K("me"), func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
		errc <- err
	}()
	<-started
	c.Cancel(K("me"))
	assert.ErrorIs(t, <-errc, ErrCanceled)
}

func TestInvalidate_RefetchesKnownQueries(t *testing.T) {
	c := newTestCache(t, Options{})
	var calls atomic.Int32
	var value atomic.Value
	value.Store("v1")
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return value.Load(), nil
	}

	_, err := c.Fetch(context.Background(), K("posts", 1), fetch)
	require.NoError(t, err)
	c.Set(K("timeline"), "set without fetcher")

	value.Store("v2")
	c.Invalidate(K("posts"), K("timeline"))
	require.NoError(t, c.WaitIdle(context.Background()))

	v, _ := c.Get(K("posts", 1))
	assert.Equal(t, "v2", v)
	assert.EqualValues(t, 2, calls.Load())

	// Entries without a fetcher stay stale until the next Fetch.
	v, _ = c.Get(K("timeline"))
	assert.Equal(t, "set without fetcher", v)
	var tl atomic.Int32
	v, err = c.Fetch(context.Background(), K("timeline"), counter("fresh", &tl))
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestInvalidate_SupersedesInFlightFetch(t *testing.T) {
	c := newTestCache(t, Options{})
	var calls atomic.Int32
	first := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(first)
			<-release
			return "old", nil
		}
		return "new", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), K("timeline"), fetch)
	}()
	<-first
	c.Invalidate(K("timeline"))
	require.NoError(t, c.WaitIdle(context.Background()))
	close(release)
	<-done

	v, _ := c.Get(K("timeline"))
	assert.Equal(t, "new", v)
}

func TestWaitIdle_HonoursContext(t *testing.T) {
	c := newTestCache(t, Options{})
	block := make(chan struct{})
	defer close(block)
	c.Set(K("k"), 0)
	c.mu.Lock()
	e, _ := c.lookup(K("k"))
	e.fetcher = func(ctx context.Context) (any, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return 1, nil
	}
	c.mu.Unlock()

	c.Invalidate(K("k"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitIdle(ctx), context.DeadlineExceeded)
}

func TestClose_CancelsFetchesAndStopsRefetching(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), K("me"), func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
		errc <- err
	}()
	<-started
	c.Close()
	assert.ErrorIs(t, <-errc, context.Canceled)

	var calls atomic.Int32
	c.Set(K("posts"), "x")
	c.mu.Lock()
	e, _ := c.lookup(K("posts"))
	e.fetcher = counter("y", &calls)
	c.mu.Unlock()
	c.Invalidate(K("posts"))
	require.NoError(t, c.WaitIdle(context.Background()))
	assert.Zero(t, calls.Load())
}

func TestUpdate_OnlyTouchesExistingValues(t *testing.T) {
	c := newTestCache(t, Options{})
	assert.False(t, c.Update(K("missing"), func(any) any { return 1 }))
	_, ok := c.Get(K("missing"))
	assert.False(t, ok)

	c.Set(K("n"), 1)
	assert.True(t, c.Update(K("n"), func(old any) any { return old.(int) + 1 }))
	v, _ := c.Get(K("n"))
	assert.Equal(t, 2, v)
}

func TestQuery_TypedAccess(t *testing.T) {
	c := newTestCache(t, Options{})
	got, err := Query(context.Background(), c, K("n"), func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	n, ok := Peek[int](c, K("n"))
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = Peek[string](c, K("n"))
	assert.False(t, ok)

	_, err = Query(context.Background(), c, K("n"), func(context.Context) (string, error) { return "x", nil })
	assert.Error(t, err)
}

func TestRemove_DropsMatchingKeys(t *testing.T) {
	c := newTestCache(t, Options{})
	c.Set(K("posts"), 1)
	c.Set(K("posts", 2), 2)
	c.Set(K("me"), 3)

	c.Remove(K("posts"))
	assert.Equal(t, []Key{K("me")}, c.Keys())

	c.Remove(Key{})
	assert.Empty(t, c.Keys())
}

func TestClose_PendingRefetchDoesNotCallFetcher(t *testing.T) {
	c := newTestCache(t, Options{})
	var calls atomic.Int32
	_, err := c.Fetch(context.Background(), K("posts"), counter("v1", &calls))
	require.NoError(t, err)

	// A refetch scheduled by Invalidate that only gets to run after Close.
	c.mu.Lock()
	c.pending++
	c.mu.Unlock()
	c.Close()
	c.refetch(K("posts"))

	require.NoError(t, c.WaitIdle(context.Background()))
	assert.EqualValues(t, 1, calls.Load())
	_, err = c.load(context.Background(), K("posts"))
	assert.ErrorIs(t, err, ErrCanceled)
	assert.EqualValues(t, 1, calls.Load())
}
