package status

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/elemcore/internal/dynamics"
	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/interaction"
)

// DefaultTickInterval is the engine loop period when Options leaves it zero.
const DefaultTickInterval = 200 * time.Millisecond

// Options configures an Engine.
type Options struct {
	TickInterval time.Duration
	// Workers bounds how many actors tick in parallel. Default 8.
	Workers int
	// OnApplied is called after an effect was activated, stacked or
	// refreshed. Runs on the caller goroutine of ApplyTrigger.
	OnApplied func(Instance)
}

// TriggerRequest is one attempt to inflict a status effect.
//
// Kind may be empty: the first status effect of AttackerElement is used.
// Roll is a uniform sample from [0,1); the trigger fires when
// Roll < p_eff, which keeps the outcome deterministic for a given roll.
type TriggerRequest struct {
	AttackerID      string
	TargetID        string
	AttackerElement string
	DefenderElement string
	Kind            string

	AttackerMastery float64
	DefenderMastery float64

	// Derived stats of both sides for the attacker element.
	StatusProbability  float64
	StatusResistance   float64
	DurationBonus      float64
	DurationReduction  float64
	IntensityBonus     float64
	IntensityReduction float64

	Hit  bool
	Roll float64
}

// Engine applies and ticks status effects of all actors.
//
// Thread-safety: managers live in a sync.Map keyed by actor id. Each
// actor's effects are only mutated by its own Manager; different actors
// tick in parallel on a bounded worker pool.
type Engine struct {
	store    *element.Store
	resolver *interaction.Resolver

	managers sync.Map // key: actor id, value: *Manager

	interval  time.Duration
	workers   int
	onApplied func(Instance)

	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewEngine creates a status engine. Must call Start to run the tick loop;
// Tick can also be driven manually.
func NewEngine(resolver *interaction.Resolver, opts Options) *Engine {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Engine{
		store:     resolver.Store(),
		resolver:  resolver,
		interval:  interval,
		workers:   workers,
		onApplied: opts.OnApplied,
	}
}

// Probability returns the trigger probability of req before refractory
// suppression. Same-element pairs return 0.
//
// Status probability and resistance shift the mastery delta in units of
// the trigger scale, so +1.0 status probability weighs like one full
// trigger scale of mastery advantage.
func (e *Engine) Probability(req TriggerRequest) float64 {
	rel := e.resolver.Classify(req.AttackerElement, req.DefenderElement)
	if rel == element.Same {
		return 0
	}
	delta := interaction.MasteryDelta(req.AttackerMastery, req.DefenderMastery)
	statusDelta := dynamics.Finite(req.StatusProbability) - dynamics.Finite(req.StatusResistance)
	delta += statusDelta * e.store.Dynamics().TriggerScale
	return e.resolver.Trigger(rel, delta)
}

// ApplyTrigger attempts to inflict a status effect on the target. It returns
// the target's instance of that kind after the attempt and whether the
// attempt activated, stacked or refreshed it.
func (e *Engine) ApplyTrigger(req TriggerRequest) (Instance, bool) {
	kind := req.Kind
	if kind == "" {
		def, ok := e.store.Definition(req.AttackerElement)
		if !ok || len(def.StatusEffects) == 0 {
			return Instance{}, false
		}
		kind = def.StatusEffects[0].Kind
	}

	def, owner, ok := e.store.StatusEffect(kind)
	if !ok {
		slog.Debug("unknown status effect", "kind", kind, "attacker", req.AttackerID)
		return Instance{}, false
	}
	if !req.Hit && !def.ApplyOnMiss {
		inst, _ := e.Get(req.TargetID, kind)
		return inst, false
	}

	roll := req.Roll
	if math.IsNaN(roll) {
		roll = 1
	}

	a := activation{
		kind:       kind,
		element:    owner,
		attackerID: req.AttackerID,
		def:        def,
		duration:   scaled(def.BaseDuration, req.DurationBonus, req.DurationReduction),
		intensity:  scaled(def.BaseIntensity, req.IntensityBonus, req.IntensityReduction),
		p:          e.Probability(req),
		roll:       roll,
		now:        time.Now(),
	}

	for {
		m := e.manager(req.TargetID)
		inst, changed, retired := m.apply(a)
		if retired {
			// Lost a race with idle cleanup; the map entry is already gone.
			e.managers.CompareAndDelete(req.TargetID, m)
			continue
		}
		if changed {
			slog.Debug("status effect applied",
				"kind", kind,
				"target", req.TargetID,
				"attacker", req.AttackerID,
				"stacks", inst.Stacks,
				"refractory", inst.Refractory)
			if e.onApplied != nil {
				e.onApplied(inst)
			}
		}
		return inst, changed
	}
}

// scaled applies additive bonus and reduction: base*(1+bonus-reduction),
// floored at 0.
func scaled(base, bonus, reduction float64) float64 {
	v := base * (1 + dynamics.Finite(bonus) - dynamics.Finite(reduction))
	if v < 0 {
		return 0
	}
	return v
}

func (e *Engine) manager(actorID string) *Manager {
	if m, ok := e.managers.Load(actorID); ok {
		return m.(*Manager)
	}
	m, _ := e.managers.LoadOrStore(actorID, NewManager(actorID))
	return m.(*Manager)
}

// Tick advances one actor by dt seconds. Returns the number of live
// instances.
func (e *Engine) Tick(actorID string, dt float64) int {
	m, ok := e.managers.Load(actorID)
	if !ok {
		return 0
	}
	return m.(*Manager).Tick(dt)
}

// TickAll advances every actor by dt seconds on the worker pool and drops
// idle managers.
func (e *Engine) TickAll(ctx context.Context, dt float64) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	e.managers.Range(func(key, value any) bool {
		m := value.(*Manager)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if m.Tick(dt) == 0 && m.retireIfIdle() {
				e.managers.CompareAndDelete(key, m)
			}
			return nil
		})
		return true
	})
	return g.Wait()
}

// Start launches the tick loop. Calling Start twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.stopCh = make(chan struct{})
	e.wg.Add(1)
	go e.run(e.stopCh)
}

// Stop terminates the tick loop and blocks until it exits.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	close(e.stopCh)
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) run(stopCh <-chan struct{}) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := e.TickAll(context.Background(), dt); err != nil {
				slog.Error("status tick failed", "error", err)
			}
		case <-stopCh:
			return
		}
	}
}

// Get returns the instance of kind on actorID.
func (e *Engine) Get(actorID, kind string) (Instance, bool) {
	m, ok := e.managers.Load(actorID)
	if !ok {
		return Instance{}, false
	}
	return m.(*Manager).Get(kind)
}

// Active returns every live instance on actorID.
func (e *Engine) Active(actorID string) []Instance {
	m, ok := e.managers.Load(actorID)
	if !ok {
		return nil
	}
	return m.(*Manager).Active()
}

// Refractory returns the refractory counter of kind on actorID.
func (e *Engine) Refractory(actorID, kind string) float64 {
	m, ok := e.managers.Load(actorID)
	if !ok {
		return 0
	}
	return m.(*Manager).Refractory(kind)
}

// Remove drops one effect from actorID.
func (e *Engine) Remove(actorID, kind string) bool {
	m, ok := e.managers.Load(actorID)
	if !ok {
		return false
	}
	return m.(*Manager).Remove(kind)
}

// RemoveActor drops every effect and refractory state of actorID, e.g. on
// logout or death.
func (e *Engine) RemoveActor(actorID string) bool {
	m, ok := e.managers.LoadAndDelete(actorID)
	if !ok {
		return false
	}
	m.(*Manager).retire()
	return true
}

// Actors returns the number of actors with a manager.
func (e *Engine) Actors() int {
	n := 0
	e.managers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
