package cache

import (
	"hash/maphash"
	"time"
)

const (
	maxShards = 16
	// minShardEntries keeps small bounded caches in one shard so eviction
	// stays globally oldest-first.
	minShardEntries = 1024
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a copy-on-write map whose entries go stale ttl after they were
// stored. Keys are spread over shards by hash and a write copies only its
// own shard. Expired entries are dropped whenever a writer copies a shard.
type TTL[K comparable, V any] struct {
	shards   []*Snapshot[map[K]entry[V]]
	seed     maphash.Seed
	ttl      time.Duration
	perShard int
	now      func() time.Time
}

type Option func(*options)

type options struct {
	now        func() time.Time
	maxEntries int
}

// WithClock injects the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMaxEntries bounds the map; the oldest entry of the written shard is
// evicted on overflow.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		o.maxEntries = n
	}
}

func NewTTL[K comparable, V any](ttl time.Duration, opts ...Option) *TTL[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	n := shardCount(o.maxEntries)
	c := &TTL[K, V]{
		shards: make([]*Snapshot[map[K]entry[V]], n),
		seed:   maphash.MakeSeed(),
		ttl:    ttl,
		now:    o.now,
	}
	if o.maxEntries > 0 {
		c.perShard = (o.maxEntries + n - 1) / n
	}
	for i := range c.shards {
		c.shards[i] = NewSnapshot(map[K]entry[V]{})
	}
	return c
}

func shardCount(maxEntries int) int {
	if maxEntries <= 0 {
		return maxShards
	}
	return max(1, min(maxShards, maxEntries/minShardEntries))
}

func (c *TTL[K, V]) shard(key K) *Snapshot[map[K]entry[V]] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	return c.shards[maphash.Comparable(c.seed, key)%uint64(len(c.shards))]
}

// Get returns the value for key if it was stored no more than ttl ago.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	e, ok := c.shard(key).Load()[key]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value as fresh at the current clock reading.
func (c *TTL[K, V]) Set(key K, value V) {
	c.SetAt(key, value, c.now())
}

// SetAt stores value with an explicit freshness timestamp, for records that
// carry their own last-updated time.
func (c *TTL[K, V]) SetAt(key K, value V, storedAt time.Time) {
	now := c.now()
	c.shard(key).Update(func(current map[K]entry[V]) map[K]entry[V] {
		next := c.copyLive(current, now, len(current)+1)
		next[key] = entry[V]{value: value, storedAt: storedAt}
		if c.perShard > 0 && len(next) > c.perShard {
			evictOldest(next, key)
		}
		return next
	})
}

// Invalidate removes key. Absent keys are a no-op.
func (c *TTL[K, V]) Invalidate(key K) {
	snap := c.shard(key)
	if _, ok := snap.Load()[key]; !ok {
		return
	}
	now := c.now()
	snap.Update(func(current map[K]entry[V]) map[K]entry[V] {
		next := c.copyLive(current, now, len(current))
		delete(next, key)
		return next
	})
}

// Purge drops every entry.
func (c *TTL[K, V]) Purge() {
	for _, snap := range c.shards {
		snap.Update(func(map[K]entry[V]) map[K]entry[V] {
			return map[K]entry[V]{}
		})
	}
}

// Len reports the number of stored entries, stale ones included.
func (c *TTL[K, V]) Len() int {
	n := 0
	for _, snap := range c.shards {
		n += len(snap.Load())
	}
	return n
}

func (c *TTL[K, V]) copyLive(current map[K]entry[V], now time.Time, capacity int) map[K]entry[V] {
	next := make(map[K]entry[V], capacity)
	for k, e := range current {
		if now.Sub(e.storedAt) > c.ttl {
			continue
		}
		next[k] = e
	}
	return next
}

func evictOldest[K comparable, V any](m map[K]entry[V], keep K) {
	var (
		oldestKey K
		oldest    time.Time
		found     bool
	)
	for k, e := range m {
		if k == keep {
			continue
		}
		if !found || e.storedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.storedAt, true
		}
	}
	if found {
		delete(m, oldestKey)
	}
}
