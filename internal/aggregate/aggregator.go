// Package aggregate combines contributor outputs into derived stats.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/udisondev/elemcore/internal/cache"
	"github.com/udisondev/elemcore/internal/contributor"
	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/stats"
)

// ErrAggregationTimeout is returned together with a partial, Degraded result
// when some contributors did not answer within the aggregation timeout.
var ErrAggregationTimeout = errors.New("aggregation timed out")

// DefaultTimeout bounds one fan-out when Options.Timeout is zero.
const DefaultTimeout = 100 * time.Millisecond

// Options configures an Aggregator.
type Options struct {
	// Timeout bounds the collective contributor fan-out.
	Timeout time.Duration
	// MaxParallel limits concurrently running contributors per computation.
	// 0 means no limit.
	MaxParallel int
	// Rules selects the merge rule per stat. Missing stats use Sum.
	Rules stats.Rules
}

// Aggregator computes DerivedStats per (actor, element).
//
// Thread-safe. Concurrent requests for the same (actor, element, snapshot)
// share one computation; different keys never wait on each other.
type Aggregator struct {
	store    *element.Store
	registry *contributor.Registry
	cache    *cache.Cache

	timeout     time.Duration
	maxParallel int
	rules       stats.Rules

	group   singleflight.Group
	metrics *metrics
	tracer  trace.Tracer
}

// New creates an aggregator.
func New(store *element.Store, registry *contributor.Registry, c *cache.Cache, opts Options) *Aggregator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Aggregator{
		store:       store,
		registry:    registry,
		cache:       c,
		timeout:     timeout,
		maxParallel: opts.MaxParallel,
		rules:       opts.Rules,
		metrics:     newMetrics(),
		tracer:      otel.Tracer(instrumentationName),
	}
}

// Get returns the derived stats of actor for elem.
//
// If ctx is cancelled while waiting, Get returns ctx.Err() but the shared
// computation keeps running and its result is still cached. On timeout the
// partial result is returned with ErrAggregationTimeout and is not cached.
func (a *Aggregator) Get(ctx context.Context, actor contributor.Actor, elem string) (stats.DerivedStats, error) {
	if elem != a.store.OmniID() && !a.store.Has(elem) {
		return stats.DerivedStats{}, fmt.Errorf("aggregating %q: %w", elem, element.ErrUnknownElement)
	}

	key := cache.Key{
		ActorID:  actor.ActorID(),
		Element:  elem,
		Snapshot: actor.PrimaryStats().Fingerprint(),
	}
	// Read before the lookup: an Invalidate racing with this call makes the
	// computation below unstorable and moves later callers to a new flight.
	gen := a.cache.Generation(key.ActorID)
	if v, ok := a.cache.Get(key); ok {
		a.metrics.hit(ctx)
		return v, nil
	}
	a.metrics.miss(ctx)

	detached := context.WithoutCancel(ctx)
	ch := a.group.DoChan(flightKey(key, gen), func() (any, error) {
		// A flight that finished between our cache miss and DoChan has
		// already stored the result.
		if v, ok := a.cache.Get(key); ok {
			return v, nil
		}
		return a.compute(detached, actor, key, gen), nil
	})

	select {
	case <-ctx.Done():
		return stats.DerivedStats{}, ctx.Err()
	case res := <-ch:
		d := res.Val.(stats.DerivedStats).Clone()
		if d.Degraded {
			return d, ErrAggregationTimeout
		}
		return d, nil
	}
}

// Invalidate drops every cached vector of actorID. Computations already
// running for the actor finish but their results are not cached.
func (a *Aggregator) Invalidate(actorID string) int {
	return a.cache.Invalidate(actorID)
}

// Cache returns the underlying cache.
func (a *Aggregator) Cache() *cache.Cache { return a.cache }

func flightKey(k cache.Key, gen uint64) string {
	return k.ActorID + "\x00" + k.Element + "\x00" +
		strconv.FormatUint(k.Snapshot, 16) + "\x00" + strconv.FormatUint(gen, 16)
}

// compute runs every contributor once and merges the results. It never
// returns an error: failing contributors are skipped. The result is cached
// only while the actor is still at generation gen.
func (a *Aggregator) compute(ctx context.Context, actor contributor.Actor, key cache.Key, gen uint64) stats.DerivedStats {
	start := time.Now()

	ctx, span := a.tracer.Start(ctx, "aggregate.compute", trace.WithAttributes(
		attribute.String("actor", key.ActorID),
		attribute.String("element", key.Element)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var entries []contributor.Entry
	for e := range a.registry.ByPriority() {
		entries = append(entries, e)
	}

	// Slots are written by contributor goroutines and read after the join,
	// possibly while late contributors are still running.
	slots := make([]atomic.Pointer[contributor.Contribution], len(entries))

	var g errgroup.Group
	if a.maxParallel > 0 {
		g.SetLimit(a.maxParallel)
	}
	for i, e := range entries {
		g.Go(func() error {
			if c, ok := a.call(ctx, e, actor, key.Element); ok {
				slots[i].Store(&c)
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	degraded := false
	select {
	case <-done:
	case <-ctx.Done():
		degraded = true
	}

	b := stats.NewBuilder(a.rules)
	for i, e := range entries {
		c := slots[i].Load()
		if c == nil {
			if degraded {
				a.metrics.failure(ctx, e.SystemID, "timeout")
			}
			continue
		}
		a.merge(b, e.SystemID, key.Element, c)
	}

	d := b.Build(key.ActorID, key.Element)
	d.Degraded = degraded

	elapsed := time.Since(start)
	a.metrics.computed(ctx, key.Element, float64(elapsed.Microseconds())/1000, degraded)
	span.SetAttributes(attribute.Int("contributors", len(entries)), attribute.Bool("degraded", degraded))

	if degraded {
		slog.Warn("aggregation degraded",
			"actor", key.ActorID,
			"element", key.Element,
			"contributors", len(entries),
			"elapsed", elapsed)
		return d
	}

	if !a.cache.PutAt(key, gen, d) {
		slog.Debug("discarding stale aggregation",
			"actor", key.ActorID,
			"element", key.Element)
	}
	return d
}

// call invokes one contributor, converting panics and errors into a skip.
func (a *Aggregator) call(ctx context.Context, e contributor.Entry, actor contributor.Actor, elem string) (c contributor.Contribution, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("contributor panicked",
				"system", e.SystemID,
				"actor", actor.ActorID(),
				"element", elem,
				"panic", r)
			a.metrics.failure(ctx, e.SystemID, "panic")
			ok = false
		}
	}()

	c, err := e.Contributor.Contribute(ctx, actor, elem)
	if err != nil {
		slog.Warn("contributor failed",
			"system", e.SystemID,
			"actor", actor.ActorID(),
			"element", elem,
			"error", err)
		a.metrics.failure(ctx, e.SystemID, "error")
		return contributor.Contribution{}, false
	}
	if c.SystemID != e.SystemID {
		slog.Warn("contribution system id mismatch",
			"system", e.SystemID,
			"got", c.SystemID)
		a.metrics.failure(ctx, e.SystemID, "mismatch")
		return contributor.Contribution{}, false
	}
	if c.Element != "" && c.Element != elem {
		slog.Warn("contribution element mismatch",
			"system", e.SystemID,
			"want", elem,
			"got", c.Element)
		a.metrics.failure(ctx, e.SystemID, "mismatch")
		return contributor.Contribution{}, false
	}
	return c, true
}

func (a *Aggregator) merge(b *stats.Builder, system, elem string, c *contributor.Contribution) {
	for stat, v := range c.Stats {
		if !usable(v) || !a.store.Supports(elem, stat) {
			slog.Debug("dropping element delta", "system", system, "element", elem, "stat", stat, "value", v)
			continue
		}
		b.AddElement(stat, v)
	}
	for stat, v := range c.Omni {
		if !usable(v) || !element.IsKnownStat(stat) {
			slog.Debug("dropping omni delta", "system", system, "stat", stat, "value", v)
			continue
		}
		b.AddOmni(stat, v)
	}
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
