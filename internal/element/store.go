package element

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// DefaultOmniID is the pseudo-element id used for element-agnostic stats.
const DefaultOmniID = "omni"

// ErrInvalidConfig is returned by NewStore for any malformed catalog.
// Configuration errors are fatal: the engine must refuse to start.
var ErrInvalidConfig = errors.New("invalid element configuration")

// ErrUnknownElement is returned by lookups for an id not in the catalog.
var ErrUnknownElement = errors.New("unknown element")

// Store is the immutable element catalog. It is read-only after NewStore
// returns, so concurrent readers need no synchronization.
type Store struct {
	omniID string
	order  []string
	index  map[string]int
	defs   []Definition

	// relations is an n×n matrix, row = attacker, column = defender.
	relations []Relationship

	triggers    [relationshipCount]float64
	multipliers [relationshipCount]float64
	scaling     float64
	minMult     float64
	maxMult     float64
	dynamics    InteractionDynamics
	power       PowerCurve

	effects       map[string]StatusEffectDef
	effectElement map[string]string
}

// NewStore validates the catalog and builds the lookup tables.
func NewStore(cat Catalog) (*Store, error) {
	if len(cat.Elements) == 0 {
		return nil, fmt.Errorf("%w: no elements defined", ErrInvalidConfig)
	}

	omni := cat.OmniID
	if omni == "" {
		omni = DefaultOmniID
	}

	s := &Store{
		omniID:        omni,
		index:         make(map[string]int, len(cat.Elements)),
		defs:          make([]Definition, 0, len(cat.Elements)),
		effects:       make(map[string]StatusEffectDef),
		effectElement: make(map[string]string),
	}

	for _, def := range cat.Elements {
		if def.ID == "" {
			return nil, fmt.Errorf("%w: element with empty id", ErrInvalidConfig)
		}
		if def.ID == omni {
			return nil, fmt.Errorf("%w: element id %q is reserved for omni stats", ErrInvalidConfig, def.ID)
		}
		if _, dup := s.index[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate element id %q", ErrInvalidConfig, def.ID)
		}
		for _, stat := range def.Stats {
			if !IsKnownStat(stat) {
				return nil, fmt.Errorf("%w: element %q lists unknown stat %q", ErrInvalidConfig, def.ID, stat)
			}
		}
		s.index[def.ID] = len(s.defs)
		s.defs = append(s.defs, def)
		s.order = append(s.order, def.ID)
	}

	if err := s.buildRelations(); err != nil {
		return nil, err
	}
	if err := s.buildEffects(); err != nil {
		return nil, err
	}
	if err := s.setTuning(cat); err != nil {
		return nil, err
	}

	slog.Info("element store loaded",
		"elements", len(s.defs),
		"status_effects", len(s.effects),
		"omni", s.omniID)

	return s, nil
}

func (s *Store) buildRelations() error {
	n := len(s.defs)
	s.relations = make([]Relationship, n*n)
	for i := range n {
		s.relations[i*n+i] = Same
	}

	set := func(att, def string, rel Relationship) error {
		ai := s.index[att]
		di, ok := s.index[def]
		if !ok {
			return fmt.Errorf("%w: element %q %s unknown element %q", ErrInvalidConfig, att, rel, def)
		}
		if ai == di {
			return fmt.Errorf("%w: element %q cannot be %s to itself", ErrInvalidConfig, att, rel)
		}
		cur := s.relations[ai*n+di]
		if cur != Neutral && cur != rel {
			return fmt.Errorf("%w: pair %s->%s is both %s and %s", ErrInvalidConfig, att, def, cur, rel)
		}
		s.relations[ai*n+di] = rel
		return nil
	}

	for _, def := range s.defs {
		for _, target := range def.Generates {
			if err := set(def.ID, target, Generating); err != nil {
				return err
			}
		}
		for _, target := range def.Overcomes {
			if err := set(def.ID, target, Overcoming); err != nil {
				return err
			}
		}
	}

	// No element may overcome every other element.
	if n > 2 {
		for i, def := range s.defs {
			overcome := 0
			for j := range n {
				if s.relations[i*n+j] == Overcoming {
					overcome++
				}
			}
			if overcome == n-1 {
				return fmt.Errorf("%w: element %q overcomes every other element", ErrInvalidConfig, def.ID)
			}
		}
	}
	return nil
}

func (s *Store) buildEffects() error {
	for _, def := range s.defs {
		for _, eff := range def.StatusEffects {
			if eff.Kind == "" {
				return fmt.Errorf("%w: element %q has status effect with empty kind", ErrInvalidConfig, def.ID)
			}
			if owner, dup := s.effectElement[eff.Kind]; dup {
				return fmt.Errorf("%w: status effect %q defined by both %q and %q", ErrInvalidConfig, eff.Kind, owner, def.ID)
			}
			if err := validateEffect(eff); err != nil {
				return fmt.Errorf("%w: status effect %q: %v", ErrInvalidConfig, eff.Kind, err)
			}
			s.effects[eff.Kind] = eff
			s.effectElement[eff.Kind] = def.ID
		}
	}
	return nil
}

func validateEffect(eff StatusEffectDef) error {
	for name, v := range map[string]float64{
		"base_duration":     eff.BaseDuration,
		"base_intensity":    eff.BaseIntensity,
		"intensity_gain":    eff.Dynamics.IntensityGain,
		"intensity_damping": eff.Dynamics.IntensityDamping,
		"decay_rate":        eff.Dynamics.DecayRate,
		"refractory_gain":   eff.Dynamics.RefractoryGain,
		"refractory_decay":  eff.Dynamics.RefractoryDecay,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s must be a finite non-negative number, got %v", name, v)
		}
	}
	if eff.Stackable && eff.MaxStacks < 1 {
		return fmt.Errorf("stackable effect needs max_stacks >= 1, got %d", eff.MaxStacks)
	}
	if eff.StackAndRefresh && (!eff.Stackable || !eff.RefreshDuration) {
		return errors.New("stack_and_refresh requires both stackable and refresh_duration")
	}
	return nil
}

func (s *Store) setTuning(cat Catalog) error {
	rt := cat.Relationships
	for name, p := range map[string]float64{
		"generating": rt.Generating,
		"overcoming": rt.Overcoming,
		"neutral":    rt.Neutral,
	} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: base trigger %s must be in [0,1], got %v", ErrInvalidConfig, name, p)
		}
	}
	s.triggers[Same] = 0
	s.triggers[Generating] = rt.Generating
	s.triggers[Overcoming] = rt.Overcoming
	s.triggers[Neutral] = rt.Neutral

	s.multipliers[Same] = orOne(rt.SameMultiplier)
	s.multipliers[Generating] = orOne(rt.GeneratingMultiplier)
	s.multipliers[Overcoming] = orOne(rt.OvercomingMultiplier)
	s.multipliers[Neutral] = orOne(rt.NeutralMultiplier)
	for _, m := range s.multipliers {
		if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
			return fmt.Errorf("%w: damage multipliers must be finite and non-negative", ErrInvalidConfig)
		}
	}
	if math.IsNaN(rt.MultiplierScaling) || math.IsInf(rt.MultiplierScaling, 0) || rt.MultiplierScaling < 0 {
		return fmt.Errorf("%w: multiplier_scaling must be finite and non-negative, got %v", ErrInvalidConfig, rt.MultiplierScaling)
	}
	if math.IsNaN(rt.MinMultiplier) || math.IsInf(rt.MinMultiplier, 0) || rt.MinMultiplier < 0 {
		return fmt.Errorf("%w: min_multiplier must be finite and non-negative, got %v", ErrInvalidConfig, rt.MinMultiplier)
	}
	if math.IsNaN(rt.MaxMultiplier) || math.IsInf(rt.MaxMultiplier, 0) || rt.MaxMultiplier < 0 ||
		(rt.MaxMultiplier > 0 && rt.MaxMultiplier < rt.MinMultiplier) {
		return fmt.Errorf("%w: max_multiplier must be 0 or at least min_multiplier, got %v", ErrInvalidConfig, rt.MaxMultiplier)
	}
	s.scaling = rt.MultiplierScaling
	s.minMult = rt.MinMultiplier
	s.maxMult = rt.MaxMultiplier

	dyn := cat.Interaction
	if dyn.TriggerScale == 0 && dyn.Steepness == 0 {
		dyn = DefaultInteractionDynamics()
	}
	if !(dyn.TriggerScale > 0) || math.IsInf(dyn.TriggerScale, 0) {
		return fmt.Errorf("%w: trigger_scale must be positive, got %v", ErrInvalidConfig, dyn.TriggerScale)
	}
	if !(dyn.Steepness > 0) || math.IsInf(dyn.Steepness, 0) {
		return fmt.Errorf("%w: steepness must be positive, got %v", ErrInvalidConfig, dyn.Steepness)
	}
	s.dynamics = dyn

	pc := cat.Power
	if pc == (PowerCurve{}) {
		pc = DefaultPowerCurve()
	}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.power = pc
	return nil
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// OmniID returns the pseudo-element id of element-agnostic stats.
func (s *Store) OmniID() string { return s.omniID }

// Elements returns element ids in catalog order.
func (s *Store) Elements() []string { return slices.Clone(s.order) }

// Len returns the number of elements.
func (s *Store) Len() int { return len(s.defs) }

// Has reports whether id is a defined element.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Definition returns the element definition by id.
func (s *Store) Definition(id string) (Definition, bool) {
	i, ok := s.index[id]
	if !ok {
		return Definition{}, false
	}
	return s.defs[i], true
}

// Relationship classifies the ordered pair (attacker, defender).
// Identical ids are always Same; unknown ids yield ErrUnknownElement.
func (s *Store) Relationship(attacker, defender string) (Relationship, error) {
	if attacker == defender {
		return Same, nil
	}
	ai, ok := s.index[attacker]
	if !ok {
		return Neutral, fmt.Errorf("%w: %q", ErrUnknownElement, attacker)
	}
	di, ok := s.index[defender]
	if !ok {
		return Neutral, fmt.Errorf("%w: %q", ErrUnknownElement, defender)
	}
	return s.relations[ai*len(s.defs)+di], nil
}

// BaseTrigger returns the configured base trigger of a relationship class.
func (s *Store) BaseTrigger(r Relationship) float64 {
	if r >= relationshipCount {
		return 0
	}
	return s.triggers[r]
}

// DamageMultiplier returns the configured damage multiplier of a class.
func (s *Store) DamageMultiplier(r Relationship) float64 {
	if r >= relationshipCount {
		return 1
	}
	return s.multipliers[r]
}

// ScaledDamageMultiplier returns the class multiplier of r shifted by
// delta * multiplier_scaling and bounded by min/max_multiplier. Same-element
// pairs keep their flat multiplier.
func (s *Store) ScaledDamageMultiplier(r Relationship, delta float64) float64 {
	m := s.DamageMultiplier(r)
	if r == Same || r >= relationshipCount || s.scaling == 0 {
		return m
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
	}
	m += delta * s.scaling
	m = max(m, s.minMult)
	if s.maxMult > 0 {
		m = min(m, s.maxMult)
	}
	return m
}

// Dynamics returns the interaction scaling coefficients.
func (s *Store) Dynamics() InteractionDynamics { return s.dynamics }

// PowerCurve returns the experience to power-scale curve.
func (s *Store) PowerCurve() PowerCurve { return s.power }

// StatusEffect returns a status effect definition and its owning element.
func (s *Store) StatusEffect(kind string) (StatusEffectDef, string, bool) {
	def, ok := s.effects[kind]
	if !ok {
		return StatusEffectDef{}, "", false
	}
	return def, s.effectElement[kind], true
}

// StatusEffectKinds returns every configured status effect kind, sorted.
func (s *Store) StatusEffectKinds() []string {
	kinds := make([]string, 0, len(s.effects))
	for k := range s.effects {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Supports reports whether element id exposes stat. The omni id supports
// every stat.
func (s *Store) Supports(id, stat string) bool {
	if id == s.omniID {
		return IsKnownStat(stat)
	}
	def, ok := s.Definition(id)
	if !ok {
		return false
	}
	if len(def.Stats) == 0 {
		return IsKnownStat(stat)
	}
	return slices.Contains(def.Stats, stat)
}
