package cache

import (
	"context"
	"time"
)

// Mutation describes one server write and its optimistic effect on the
// cache. Apply and Reconcile must return new values and leave old untouched,
// since old is what a rollback restores.
type Mutation[R any] struct {
	Name string
	// Keys are the prefixes the optimistic update touches.
	Keys []Key
	// Apply predicts the value of one touched key. It may be nil for
	// mutations that only invalidate.
	Apply func(key Key, old any) any
	Run   func(ctx context.Context) (R, error)
	// Reconcile folds server-assigned data into a touched key after success.
	Reconcile func(key Key, current any, result R) any
	// Invalidate lists keys refetched on settle in addition to Keys.
	Invalidate []Key

	SuccessNotice string
	FailureNotice string
}

type snapshot struct {
	key       Key
	value     any
	updatedAt time.Time
	stale     bool
}

// OptimisticContext holds the values a mutation overwrote, for rollback.
type OptimisticContext struct {
	snapshots []snapshot
}

// Len reports how many entries were captured.
func (o *OptimisticContext) Len() int { return len(o.snapshots) }

// Snapshot captures every valued entry under prefixes.
func (c *QueryCache) Snapshot(prefixes ...Key) *OptimisticContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	octx := &OptimisticContext{}
	for _, e := range c.matching(prefixes) {
		if !e.hasValue {
			continue
		}
		octx.snapshots = append(octx.snapshots, snapshot{
			key:       e.key,
			value:     e.value,
			updatedAt: e.updatedAt,
			stale:     e.stale,
		})
	}
	return octx
}

// Restore writes every snapshot back verbatim.
func (c *QueryCache) Restore(octx *OptimisticContext) {
	if octx == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range octx.snapshots {
		e := c.lookupOrCreate(s.key)
		e.value = s.value
		e.hasValue = true
		e.updatedAt = s.updatedAt
		e.stale = s.stale
	}
}

// Mutate runs m once: in-flight fetches of the touched keys are cancelled,
// their values are snapshotted and replaced by the prediction, and the
// server call decides between reconciling and restoring the snapshots.
// Touched and extra keys are invalidated either way.
func Mutate[R any](ctx context.Context, c *QueryCache, m Mutation[R]) (R, error) {
	log := c.logger.With("mutation", m.Name)

	c.Cancel(m.Keys...)
	octx := c.Snapshot(m.Keys...)

	if m.Apply != nil {
		for _, s := range octx.snapshots {
			key := s.key
			c.Update(key, func(old any) any { return m.Apply(key, old) })
		}
	}
	log.Debug(ctx, "optimistic update applied", "entries", octx.Len())

	res, err := m.Run(ctx)

	if err != nil {
		c.Restore(octx)
		log.Warn(ctx, "mutation failed, rolled back", "entries", octx.Len(), "error", err)
		if m.FailureNotice != "" {
			c.notifier.Error(ctx, m.FailureNotice, err)
		}
	} else {
		if m.Reconcile != nil {
			for _, s := range octx.snapshots {
				key := s.key
				c.Update(key, func(cur any) any { return m.Reconcile(key, cur, res) })
			}
		}
		log.Debug(ctx, "mutation settled")
		if m.SuccessNotice != "" {
			c.notifier.Success(ctx, m.SuccessNotice)
		}
	}

	c.Invalidate(append(append([]Key(nil), m.Keys...), m.Invalidate...)...)
	return res, err
}
