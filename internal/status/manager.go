package status

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/elemcore/internal/dynamics"
	"github.com/udisondev/elemcore/internal/element"
)

// Manager owns the status effects of a single actor. Only the manager
// mutates its instances.
//
// Thread-safe: all methods are protected by sync.Mutex.
type Manager struct {
	mu      sync.Mutex
	actorID string
	effects map[string]*Instance

	// refractory outlives the instances that built it, keyed by kind.
	refractory map[string]refractoryState

	// retired is set when the engine dropped this manager; callers holding a
	// stale pointer must fetch a fresh one.
	retired bool
}

// NewManager creates an empty manager for actorID.
func NewManager(actorID string) *Manager {
	return &Manager{
		actorID:    actorID,
		effects:    make(map[string]*Instance),
		refractory: make(map[string]refractoryState),
	}
}

// ActorID returns the owner actor.
func (m *Manager) ActorID() string { return m.actorID }

type refractoryState struct {
	value float64
	decay float64
}

// activation is a resolved trigger for one kind, waiting for its roll.
type activation struct {
	kind       string
	element    string
	attackerID string
	def        element.StatusEffectDef
	duration   float64
	intensity  float64
	p          float64
	roll       float64
	now        time.Time
}

// Refractory returns the current refractory counter of kind.
func (m *Manager) Refractory(kind string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refractory[kind].value
}

// apply rolls the activation against the refractory-suppressed probability
// and activates, stacks or refreshes the instance. It returns the resulting
// instance, whether anything changed and whether the manager was retired.
func (m *Manager) apply(a activation) (Instance, bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retired {
		return Instance{}, false, true
	}

	pEff := dynamics.SuppressByRefractory(a.p, m.refractory[a.kind].value)
	inst := m.effects[a.kind]
	if !(a.roll < pEff) {
		if inst != nil {
			return *inst, false, false
		}
		return Instance{}, false, false
	}

	switch {
	case inst == nil || !inst.Alive():
		inst = &Instance{
			Kind:       a.kind,
			Element:    a.element,
			TargetID:   m.actorID,
			AttackerID: a.attackerID,
			Phase:      Active,
			Stacks:     1,
			Intensity:  a.intensity,
			Duration:   a.duration,
			Drive:      1,
			AppliedAt:  a.now,
			def:        a.def,
			baseIntens: a.intensity,
		}
		m.effects[a.kind] = inst

	case a.def.Stackable && inst.Stacks < a.def.EffectiveMaxStacks():
		inst.Stacks++
		if a.def.StackAndRefresh {
			inst.Duration = a.duration
		}
		m.reactivate(inst, a)

	case a.def.RefreshDuration:
		inst.Duration = a.duration
		m.reactivate(inst, a)

	default:
		// Neither stacking nor refresh is possible.
		return *inst, false, false
	}

	r := m.refractory[a.kind]
	r.value += a.def.Dynamics.RefractoryGain
	r.decay = a.def.Dynamics.RefractoryDecay
	m.refractory[a.kind] = r
	inst.Refractory = r.value
	inst.UpdatedAt = a.now
	return *inst, true, false
}

// reactivate returns a re-triggered instance to Active. A Decaying instance
// has no active time left and gets a fresh window.
func (m *Manager) reactivate(inst *Instance, a activation) {
	if inst.Phase == Decaying && inst.Duration <= 0 {
		inst.Duration = a.duration
	}
	inst.Phase = Active
	inst.Drive = 1
	inst.AttackerID = a.attackerID
	inst.baseIntens = max(inst.baseIntens, a.intensity)
}

// Tick advances every instance by dt seconds and removes expired ones.
// Returns the number of instances still alive. Non-finite or non-positive
// dt is a no-op.
func (m *Manager) Tick(dt float64) int {
	dt = dynamics.Finite(dt)
	if dt <= 0 {
		return m.Len()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for kind, inst := range m.effects {
		step(inst, dt)
		inst.UpdatedAt = now
		if inst.Phase == Expired {
			delete(m.effects, kind)
		}
	}

	for kind, r := range m.refractory {
		r.value = dynamics.EvolveRefractory(r.value, r.decay, dt)
		if r.value < dynamics.Epsilon {
			r.value = 0
			delete(m.refractory, kind)
		} else {
			m.refractory[kind] = r
		}
		if inst, ok := m.effects[kind]; ok {
			inst.Refractory = r.value
		}
	}
	return len(m.effects)
}

// step integrates one instance by dt.
func step(inst *Instance, dt float64) {
	dyn := inst.def.Dynamics

	var input float64
	if inst.Phase == Active {
		input = float64(inst.Stacks) * inst.baseIntens * inst.Drive
	}
	inst.Intensity = dynamics.EvolveIntensity(inst.Intensity, input, dyn.IntensityGain, dyn.IntensityDamping, dt)

	switch inst.Phase {
	case Active:
		inst.Drive = dynamics.Decay(inst.Drive, dyn.DecayRate, dt)
		inst.Duration -= dt
		if inst.Duration <= 0 {
			inst.Duration = 0
			inst.Drive = 0
			inst.Phase = Decaying
		}
	case Decaying:
		if inst.Intensity < dynamics.Epsilon {
			inst.Intensity = 0
			inst.Phase = Expired
		}
	}
}

// Get returns the instance of kind.
func (m *Manager) Get(kind string) (Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.effects[kind]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// Active returns copies of all live instances sorted by kind.
func (m *Manager) Active() []Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Instance, 0, len(m.effects))
	for _, inst := range m.effects {
		out = append(out, *inst)
	}
	slices.SortFunc(out, func(a, b Instance) int { return cmp.Compare(a.Kind, b.Kind) })
	return out
}

// Remove drops the instance of kind. The refractory counter is kept.
func (m *Manager) Remove(kind string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.effects[kind]; !ok {
		return false
	}
	delete(m.effects, kind)
	return true
}

// Len returns the number of instances.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.effects)
}

// retireIfIdle marks the manager retired when it holds no state.
func (m *Manager) retireIfIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.effects) == 0 && len(m.refractory) == 0 {
		m.retired = true
	}
	return m.retired
}

func (m *Manager) retire() {
	m.mu.Lock()
	m.retired = true
	m.mu.Unlock()
}
