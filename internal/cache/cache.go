// Package cache memoizes derived stats per (actor, element, primary stats
// snapshot).
package cache

import (
	"container/list"
	"hash/maphash"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/elemcore/internal/stats"
)

// Key identifies one cached derived stat vector. Snapshot is the fingerprint
// of the actor's primary stats at computation time.
type Key struct {
	ActorID  string
	Element  string
	Snapshot uint64
}

// Options configures a Cache.
type Options struct {
	// Shards is rounded up to a power of two. Default 16.
	Shards int
	// Capacity is the total entry bound across shards. Default 65536.
	Capacity int
	// TTL is a safety net; 0 disables expiry. Invalidation is driven by
	// snapshot changes, not by TTL.
	TTL time.Duration
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
}

type entry struct {
	key   Key
	value stats.DerivedStats
	added time.Time
}

type shard struct {
	mu       sync.Mutex
	ll       *list.List
	items    map[Key]*list.Element
	byActor  map[string]map[Key]*list.Element
	capacity int

	// clock orders invalidations within the shard. gens holds the clock
	// value of each actor's last Invalidate; floor is the clock at the last
	// Purge and bounds every generation from below.
	clock uint64
	floor uint64
	gens  map[string]uint64
}

// Cache is a sharded LRU. Entries of one actor always live in the same
// shard, so Invalidate touches a single lock.
//
// Thread-safe: each shard has its own mutex.
type Cache struct {
	shards []*shard
	mask   uint64
	seed   maphash.Seed
	ttl    time.Duration
	now    func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache.
func New(opts Options) *Cache {
	n := opts.Shards
	if n <= 0 {
		n = 16
	}
	pow := 1
	for pow < n {
		pow <<= 1
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 1 << 16
	}
	perShard := max(capacity/pow, 1)

	c := &Cache{
		shards: make([]*shard, pow),
		mask:   uint64(pow - 1),
		seed:   maphash.MakeSeed(),
		ttl:    opts.TTL,
		now:    time.Now,
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			ll:       list.New(),
			items:    make(map[Key]*list.Element),
			byActor:  make(map[string]map[Key]*list.Element),
			gens:     make(map[string]uint64),
			capacity: perShard,
		}
	}
	return c
}

func (c *Cache) shardFor(actorID string) *shard {
	return c.shards[maphash.String(c.seed, actorID)&c.mask]
}

// Get returns the cached vector for key.
func (c *Cache) Get(key Key) (stats.DerivedStats, bool) {
	s := c.shardFor(key.ActorID)

	s.mu.Lock()
	el, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		return stats.DerivedStats{}, false
	}
	e := el.Value.(*entry)
	if c.ttl > 0 && c.now().Sub(e.added) > c.ttl {
		s.remove(el)
		s.mu.Unlock()
		c.misses.Add(1)
		return stats.DerivedStats{}, false
	}
	s.ll.MoveToFront(el)
	v := e.value.Clone()
	s.mu.Unlock()

	c.hits.Add(1)
	return v, true
}

// Generation returns the invalidation generation of actorID. It grows on
// every Invalidate of the actor and on Purge.
func (c *Cache) Generation(actorID string) uint64 {
	s := c.shardFor(actorID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation(actorID)
}

// Put stores value under key. Entries of the same actor and element with a
// different snapshot are dropped, they can never be hit again.
func (c *Cache) Put(key Key, value stats.DerivedStats) {
	s := c.shardFor(key.ActorID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.put(s, key, value)
}

// PutAt stores value only if actorID has not been invalidated since gen was
// read with Generation. Reports whether the value was stored.
func (c *Cache) PutAt(key Key, gen uint64, value stats.DerivedStats) bool {
	s := c.shardFor(key.ActorID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation(key.ActorID) != gen {
		return false
	}
	c.put(s, key, value)
	return true
}

// put stores a copy of value. Caller holds s.mu.
func (c *Cache) put(s *shard, key Key, value stats.DerivedStats) {
	now := c.now()
	value = value.Clone()

	if el, ok := s.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.added = now
		s.ll.MoveToFront(el)
		return
	}

	for k, el := range s.byActor[key.ActorID] {
		if k.Element == key.Element && k.Snapshot != key.Snapshot {
			s.remove(el)
		}
	}

	el := s.ll.PushFront(&entry{key: key, value: value, added: now})
	s.items[key] = el
	idx, ok := s.byActor[key.ActorID]
	if !ok {
		idx = make(map[Key]*list.Element)
		s.byActor[key.ActorID] = idx
	}
	idx[key] = el

	for s.ll.Len() > s.capacity {
		s.remove(s.ll.Back())
		c.evictions.Add(1)
	}
}

// Invalidate drops every entry of actorID and advances its generation, so
// results computed before the call can no longer be stored with PutAt.
// Returns the number of entries removed.
func (c *Cache) Invalidate(actorID string) int {
	s := c.shardFor(actorID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock++
	s.gens[actorID] = s.clock

	idx := s.byActor[actorID]
	n := len(idx)
	for _, el := range idx {
		s.remove(el)
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.ll.Len()
		s.mu.Unlock()
	}
	return n
}

// Purge drops everything and advances every generation.
func (c *Cache) Purge() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.ll.Init()
		clear(s.items)
		clear(s.byActor)
		s.clock++
		s.floor = s.clock
		clear(s.gens)
		s.mu.Unlock()
	}
}

// Stats returns cumulative counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
	}
}

// generation returns the generation of actorID. Caller holds s.mu.
func (s *shard) generation(actorID string) uint64 {
	return max(s.gens[actorID], s.floor)
}

// remove unlinks el. Caller holds s.mu.
func (s *shard) remove(el *list.Element) {
	e := el.Value.(*entry)
	s.ll.Remove(el)
	delete(s.items, e.key)
	if idx, ok := s.byActor[e.key.ActorID]; ok {
		delete(idx, e.key)
		if len(idx) == 0 {
			delete(s.byActor, e.key.ActorID)
		}
	}
}
