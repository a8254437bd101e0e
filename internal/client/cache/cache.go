// Package cache keeps query results in memory and runs optimistic mutations
// against them.
//
// Every key holds its own denormalized copy of the data it was fetched with.
// A mutation that changes one entity has to name every key embedding a copy
// of it; the cache does not propagate changes between keys.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/notify"
	"github.com/dmitrijs2005/chirp/internal/logging"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime  = time.Minute
	DefaultGCTime     = 5 * time.Minute
	DefaultMaxEntries = 512
	DefaultRetryDelay = time.Second
)

// ErrCanceled is returned by Fetch when the fetch was cancelled and the key
// has no value to fall back to.
var ErrCanceled = errors.New("query canceled")

// Fetcher loads the value of one key.
type Fetcher func(ctx context.Context) (any, error)

// RetryPolicy decides whether a failed read is attempted again. retries is
// the number of retries already performed.
type RetryPolicy func(retries int, err error) bool

type Options struct {
	// StaleTime is how long a fetched value is served without refetching.
	// Zero selects DefaultStaleTime, a negative value disables freshness.
	StaleTime  time.Duration
	GCTime     time.Duration
	MaxEntries int
	Retry      RetryPolicy
	// RetryDelay is the initial backoff between read attempts.
	RetryDelay time.Duration
	Notifier   notify.Notifier
	Logger     logging.Logger
}

type entry struct {
	key        Key
	value      any
	hasValue   bool
	updatedAt  time.Time
	accessedAt time.Time
	stale      bool
	fetcher    Fetcher
	// gen changes whenever an in-flight result must be discarded.
	gen    uint64
	cancel context.CancelFunc
}

type QueryCache struct {
	staleTime  time.Duration
	gcTime     time.Duration
	retry      RetryPolicy
	retryDelay time.Duration
	notifier   notify.Notifier
	logger     logging.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu      sync.Mutex
	store   *lru.Cache[string, *entry]
	closed  bool
	pending int
	idle    chan struct{}
}

func New(opts Options) (*QueryCache, error) {
	if opts.StaleTime < 0 {
		opts.StaleTime = 0
	} else if opts.StaleTime == 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.GCTime <= 0 {
		opts.GCTime = DefaultGCTime
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Retry == nil {
		opts.Retry = func(int, error) bool { return false }
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	store, err := lru.New[string, *entry](opts.MaxEntries)
	if err != nil {
		return nil, err
	}

	c := &QueryCache{
		staleTime:  opts.StaleTime,
		gcTime:     opts.GCTime,
		retry:      opts.Retry,
		retryDelay: opts.RetryDelay,
		notifier:   opts.Notifier,
		logger:     opts.Logger.With("component", "cache"),
		now:        time.Now,
		store:      store,
		idle:       make(chan struct{}),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// lookup returns the live entry of k, evicting it when unused past GCTime.
// Callers hold c.mu.
func (c *QueryCache) lookup(k Key) (*entry, bool) {
	id := k.String()
	e, ok := c.store.Get(id)
	if !ok {
		return nil, false
	}
	now := c.now()
	if e.cancel == nil && now.Sub(e.accessedAt) > c.gcTime {
		c.store.Remove(id)
		return nil, false
	}
	e.accessedAt = now
	return e, true
}

func (c *QueryCache) lookupOrCreate(k Key) *entry {
	if e, ok := c.lookup(k); ok {
		return e
	}
	e := &entry{key: append(Key(nil), k...), accessedAt: c.now()}
	c.store.Add(k.String(), e)
	return e
}

// matching returns the entries under any of prefixes without touching
// their recency. Callers hold c.mu.
func (c *QueryCache) matching(prefixes []Key) []*entry {
	var out []*entry
	for _, id := range c.store.Keys() {
		if !matchesAny(parseKey(id), prefixes) {
			continue
		}
		if e, ok := c.store.Peek(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func (c *QueryCache) fresh(e *entry) bool {
	return e.hasValue && !e.stale && c.now().Sub(e.updatedAt) < c.staleTime
}

// Fetch returns the value of key, calling fetcher when no fresh value is
// cached. Failed fetches are retried according to the retry policy.
func (c *QueryCache) Fetch(ctx context.Context, key Key, fetcher Fetcher) (any, error) {
	c.mu.Lock()
	e := c.lookupOrCreate(key)
	e.fetcher = fetcher
	if c.fresh(e) {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	return c.load(ctx, key)
}

// load runs one deduplicated fetch of key and stores its result unless the
// key was cancelled meanwhile. The shared fetch outlives the caller that
// started it; only Cancel, Invalidate and Close abort it. Each caller stops
// waiting when its own ctx is done.
func (c *QueryCache) load(ctx context.Context, key Key) (any, error) {
	id := key.String()
	ch := c.group.DoChan(id, func() (any, error) {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrCanceled
		}
		e := c.lookupOrCreate(key)
		fetcher := e.fetcher
		if fetcher == nil {
			c.mu.Unlock()
			return nil, errors.New("cache: no fetcher for " + id)
		}
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		stop := context.AfterFunc(c.ctx, cancel)
		e.cancel = cancel
		gen := e.gen
		c.mu.Unlock()

		v, err := c.fetchWithRetry(fctx, fetcher)
		stop()
		cancel()

		c.mu.Lock()
		defer c.mu.Unlock()
		if e.gen != gen {
			// Superseded: hand the result to the waiters but keep it out
			// of the cache.
			switch {
			case err == nil:
				return v, nil
			case e.hasValue:
				return e.value, nil
			default:
				return nil, fmt.Errorf("%w: %v", ErrCanceled, err)
			}
		}
		e.cancel = nil
		if err != nil {
			return nil, err
		}
		e.value = v
		e.hasValue = true
		e.stale = false
		e.updatedAt = c.now()
		c.store.Add(id, e)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns the cached value of key, fresh or not.
func (c *QueryCache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok || !e.hasValue {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key as freshly fetched.
func (c *QueryCache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookupOrCreate(key)
	c.put(e, value)
}

func (c *QueryCache) put(e *entry, value any) {
	e.value = value
	e.hasValue = true
	e.stale = false
	e.updatedAt = c.now()
}

// Update replaces the value of key with fn(old). It does nothing and
// returns false when key holds no value.
func (c *QueryCache) Update(key Key, fn func(old any) any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok || !e.hasValue {
		return false
	}
	c.put(e, fn(e.value))
	return true
}

// Keys lists the cached keys under any of prefixes, or every key when none
// is given.
func (c *QueryCache) Keys(prefixes ...Key) []Key {
	if len(prefixes) == 0 {
		prefixes = []Key{{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Key
	for _, e := range c.matching(prefixes) {
		out = append(out, e.key)
	}
	return out
}

// Cancel aborts in-flight fetches of keys under prefixes. Their results are
// discarded.
func (c *QueryCache) Cancel(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.matching(prefixes) {
		e.gen++
		if e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
		c.group.Forget(e.key.String())
	}
}

// Remove cancels and drops every key under prefixes.
func (c *QueryCache) Remove(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.matching(prefixes) {
		e.gen++
		if e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
		id := e.key.String()
		c.group.Forget(id)
		c.store.Remove(id)
	}
}

// Invalidate marks keys under prefixes stale and refetches in the
// background those that were fetched through Fetch.
func (c *QueryCache) Invalidate(prefixes ...Key) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	var refetch []Key
	for _, e := range c.matching(prefixes) {
		e.stale = true
		if e.cancel != nil {
			// A fetch started before the invalidation must not overwrite
			// the refetch.
			e.gen++
			e.cancel = nil
			c.group.Forget(e.key.String())
		}
		if e.fetcher != nil {
			refetch = append(refetch, e.key)
		}
	}
	c.pending += len(refetch)
	c.mu.Unlock()

	for _, k := range refetch {
		go c.refetch(k)
	}
}

func (c *QueryCache) refetch(k Key) {
	defer c.settle()
	if _, err := c.load(c.ctx, k); err != nil && !errors.Is(err, ErrCanceled) && !errors.Is(err, context.Canceled) {
		c.logger.Warn(c.ctx, "background refetch failed", "key", k.String(), "error", err)
	}
}

func (c *QueryCache) settle() {
	c.mu.Lock()
	c.pending--
	if c.pending == 0 {
		close(c.idle)
		c.idle = make(chan struct{})
	}
	c.mu.Unlock()
}

// WaitIdle blocks until no background refetch is running.
func (c *QueryCache) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == 0 {
		c.mu.Unlock()
		return nil
	}
	ch := c.idle
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every fetch and stops background refetching.
func (c *QueryCache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}
