// Package engine wires the element store, contributor registry, aggregator,
// cache, status engine and combat resolver into the query interface game
// systems call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/elemcore/internal/aggregate"
	"github.com/udisondev/elemcore/internal/cache"
	"github.com/udisondev/elemcore/internal/combat"
	"github.com/udisondev/elemcore/internal/config"
	"github.com/udisondev/elemcore/internal/contrib"
	"github.com/udisondev/elemcore/internal/contributor"
	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/interaction"
	"github.com/udisondev/elemcore/internal/stats"
	"github.com/udisondev/elemcore/internal/status"
)

// ErrMasteryDisabled is returned by Train when no mastery store is attached.
var ErrMasteryDisabled = errors.New("mastery contributor is not enabled")

// Engine is the elemental engine. Constructed explicitly; there are no
// package-level instances.
type Engine struct {
	cfg   config.Engine
	store *element.Store

	registry    *contributor.Registry
	cache       *cache.Cache
	aggregator  *aggregate.Aggregator
	interaction *interaction.Resolver
	statuses    *status.Engine
	combat      *combat.Resolver

	mastery *contrib.MasteryContributor

	mu       sync.Mutex
	stopFunc func() bool
}

// New creates an engine from cfg over store. No contributors are
// registered; see Register, RegisterTables and EnableMastery.
func New(cfg config.Engine, store *element.Store) (*Engine, error) {
	if store == nil {
		return nil, errors.New("element store is nil")
	}
	rules, err := cfg.Aggregation.Rules()
	if err != nil {
		return nil, fmt.Errorf("aggregation config: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		store:       store,
		registry:    contributor.NewRegistry(),
		interaction: interaction.NewResolver(store),
		cache: cache.New(cache.Options{
			Shards:   cfg.Cache.Shards,
			Capacity: cfg.Cache.Capacity,
			TTL:      cfg.Cache.TTL,
		}),
	}
	e.aggregator = aggregate.New(store, e.registry, e.cache, aggregate.Options{
		Timeout:     cfg.Aggregation.Timeout,
		MaxParallel: cfg.Aggregation.MaxParallel,
		Rules:       rules,
	})
	e.statuses = status.NewEngine(e.interaction, status.Options{
		TickInterval: cfg.Status.TickInterval,
		Workers:      cfg.Status.Workers,
		OnApplied:    e.onStatusApplied,
	})
	e.combat = combat.NewResolver(combat.Formulas{
		HitScale:  cfg.Combat.HitScale,
		CritScale: cfg.Combat.CritScale,
	}, e.interaction, e.statuses)

	return e, nil
}

// Store returns the element store.
func (e *Engine) Store() *element.Store { return e.store }

// Registry returns the contributor registry.
func (e *Engine) Registry() *contributor.Registry { return e.registry }

// Statuses returns the status effect engine.
func (e *Engine) Statuses() *status.Engine { return e.statuses }

// CacheStats returns cache counters.
func (e *Engine) CacheStats() cache.Stats { return e.cache.Stats() }

// Register adds a contributor. Every cached result is dropped because any
// actor may be affected.
func (e *Engine) Register(c contributor.Contributor) error {
	if err := e.registry.Register(c.SystemID(), c.Priority(), c); err != nil {
		return err
	}
	e.cache.Purge()
	slog.Info("contributor registered", "system", c.SystemID(), "priority", c.Priority())
	return nil
}

// Unregister removes a contributor and drops every cached result.
func (e *Engine) Unregister(systemID string) bool {
	if !e.registry.Unregister(systemID) {
		return false
	}
	e.cache.Purge()
	slog.Info("contributor unregistered", "system", systemID)
	return true
}

// RegisterTables registers one TableContributor per table.
func (e *Engine) RegisterTables(tables []contrib.Table) error {
	for _, t := range tables {
		tc, err := contrib.NewTableContributor(t)
		if err != nil {
			return err
		}
		if err := e.Register(tc); err != nil {
			return fmt.Errorf("table %s: %w", t.SystemID, err)
		}
	}
	return nil
}

// EnableMastery registers the mastery contributor over src with the
// configured priority.
func (e *Engine) EnableMastery(src contrib.MasteryStore) error {
	m := contrib.NewMasteryContributor(e.store, src, e.cfg.Mastery.Priority)
	if err := e.Register(m); err != nil {
		return err
	}
	e.mu.Lock()
	e.mastery = m
	e.mu.Unlock()
	return nil
}

// Train adds mastery experience and broadcasts the resulting events.
func (e *Engine) Train(ctx context.Context, actorID, elem string, delta float64) error {
	e.mu.Lock()
	m := e.mastery
	e.mu.Unlock()
	if m == nil {
		return ErrMasteryDisabled
	}

	events, err := m.Train(ctx, actorID, elem, delta)
	if err != nil {
		return err
	}
	var errs []error
	for _, ev := range events {
		if err := e.HandleEvent(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetElementStats returns the derived stats of actor for elem. Passing the
// omni id returns element-agnostic stats only.
func (e *Engine) GetElementStats(ctx context.Context, actor contributor.Actor, elem string) (stats.DerivedStats, error) {
	return e.aggregator.Get(ctx, actor, elem)
}

// ResolveInteraction classifies the pair and returns the trigger
// probability for the given masteries.
func (e *Engine) ResolveInteraction(attElem, defElem string, attMastery, defMastery float64) (element.Relationship, float64) {
	return e.interaction.Resolve(attElem, defElem, attMastery, defMastery)
}

// ApplyStatusTrigger attempts to inflict a status effect.
func (e *Engine) ApplyStatusTrigger(req status.TriggerRequest) (status.Instance, bool) {
	return e.statuses.ApplyTrigger(req)
}

// ActiveEffects returns the live status effects on actorID.
func (e *Engine) ActiveEffects(actorID string) []status.Instance {
	return e.statuses.Active(actorID)
}

// ResolveAttack aggregates both sides and resolves one attack. The
// attacker is seen through attElem, the defender through defElem.
// A triggered interaction is broadcast as an ElementInteraction event.
func (e *Engine) ResolveAttack(ctx context.Context, attacker, defender contributor.Actor, attElem, defElem string, rolls combat.Rolls) (combat.Outcome, error) {
	att, err := e.side(ctx, attacker, attElem)
	if err != nil {
		return combat.Outcome{}, fmt.Errorf("attacker %s: %w", attacker.ActorID(), err)
	}
	def, err := e.side(ctx, defender, defElem)
	if err != nil {
		return combat.Outcome{}, fmt.Errorf("defender %s: %w", defender.ActorID(), err)
	}

	out := e.combat.Resolve(combat.Attack{Attacker: att, Defender: def}, rolls)

	if out.InteractionTriggered {
		ev := contributor.ElementInteraction(attacker.ActorID(), attElem, defender.ActorID(), defElem,
			out.Relationship, out.InteractionProbability)
		if err := e.registry.Broadcast(ctx, ev); err != nil {
			slog.Warn("interaction event delivery failed", "attacker", attacker.ActorID(), "error", err)
		}
	}
	return out, nil
}

func (e *Engine) side(ctx context.Context, actor contributor.Actor, elem string) (combat.Side, error) {
	def, ok := e.store.Definition(elem)
	if !ok {
		return combat.Side{}, fmt.Errorf("%w: %s", element.ErrUnknownElement, elem)
	}
	ds, err := e.aggregator.Get(ctx, actor, elem)
	if err != nil && !errors.Is(err, aggregate.ErrAggregationTimeout) {
		return combat.Side{}, err
	}
	return combat.Side{ActorID: actor.ActorID(), Element: elem, Base: def.Base, Stats: ds}, nil
}

// NotifyPrimaryStatChange drops the cached stats of actorID. The next query
// recomputes with the new primary stat snapshot.
func (e *Engine) NotifyPrimaryStatChange(actorID string) {
	n := e.aggregator.Invalidate(actorID)
	slog.Debug("primary stats changed", "actor", actorID, "dropped", n)
}

// HandleEvent delivers ev to every event-handling contributor and drops
// the cached stats of the affected actor. Handler failures are returned
// joined; invalidation happens regardless.
func (e *Engine) HandleEvent(ctx context.Context, ev contributor.Event) error {
	err := e.registry.Broadcast(ctx, ev)
	if ev.ActorID != "" {
		e.aggregator.Invalidate(ev.ActorID)
	}
	return err
}

func (e *Engine) onStatusApplied(inst status.Instance) {
	ev := contributor.StatusEffectApplied(inst.TargetID, inst.Element, inst.Kind, inst.Stacks)
	if err := e.HandleEvent(context.Background(), ev); err != nil {
		slog.Warn("status event delivery failed", "target", inst.TargetID, "kind", inst.Kind, "error", err)
	}
}

// Start launches the status tick loop. The loop stops on Stop or when ctx
// is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopFunc != nil {
		return
	}
	e.statuses.Start()
	e.stopFunc = context.AfterFunc(ctx, e.Stop)
	slog.Info("element engine started",
		"elements", e.store.Len(),
		"contributors", e.registry.Len(),
		"tick_interval", e.cfg.Status.TickInterval)
}

// Stop terminates the status tick loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	stop := e.stopFunc
	e.stopFunc = nil
	e.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	e.statuses.Stop()
	slog.Info("element engine stopped")
}

// Run starts the engine and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.Start(ctx)
	<-ctx.Done()
	e.Stop()
	return nil
}
