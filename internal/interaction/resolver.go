// Package interaction classifies element pairs and computes interaction
// trigger probabilities on top of the element store.
package interaction

import (
	"log/slog"
	"math"

	"github.com/udisondev/elemcore/internal/dynamics"
	"github.com/udisondev/elemcore/internal/element"
)

// Resolver is stateless apart from the read-only store and is safe for
// concurrent use.
type Resolver struct {
	store *element.Store
}

// NewResolver creates a resolver over store.
func NewResolver(store *element.Store) *Resolver {
	return &Resolver{store: store}
}

// Store returns the underlying element store.
func (r *Resolver) Store() *element.Store { return r.store }

// Classify returns the relationship of attacker towards defender.
// Unknown ids degrade to Neutral.
func (r *Resolver) Classify(attacker, defender string) element.Relationship {
	rel, err := r.store.Relationship(attacker, defender)
	if err != nil {
		slog.Debug("classify unknown element",
			"attacker", attacker,
			"defender", defender,
			"error", err)
		return element.Neutral
	}
	return rel
}

// ComputeTrigger returns the interaction trigger probability for an attack
// of attacker element against defender element. Same-element pairs never
// interact and return 0.
func (r *Resolver) ComputeTrigger(attacker, defender string, attackerMastery, defenderMastery float64) float64 {
	_, p := r.Resolve(attacker, defender, attackerMastery, defenderMastery)
	return p
}

// Resolve classifies the pair and computes its trigger probability.
func (r *Resolver) Resolve(attacker, defender string, attackerMastery, defenderMastery float64) (element.Relationship, float64) {
	rel := r.Classify(attacker, defender)
	if rel == element.Same {
		return rel, 0
	}
	return rel, r.Trigger(rel, MasteryDelta(attackerMastery, defenderMastery))
}

// Trigger computes the probability for an already classified relationship
// and stat delta.
func (r *Resolver) Trigger(rel element.Relationship, delta float64) float64 {
	if rel == element.Same {
		return 0
	}
	dyn := r.store.Dynamics()
	return dynamics.TriggerProbability(r.store.BaseTrigger(rel), delta, dyn.TriggerScale, dyn.Steepness)
}

// DamageMultiplier returns the configured damage multiplier for rel.
func (r *Resolver) DamageMultiplier(rel element.Relationship) float64 {
	return r.store.DamageMultiplier(rel)
}

// ScaledDamageMultiplier returns the damage multiplier of rel adjusted by
// the mastery difference of the pair.
func (r *Resolver) ScaledDamageMultiplier(rel element.Relationship, attackerMastery, defenderMastery float64) float64 {
	return r.store.ScaledDamageMultiplier(rel, MasteryDelta(attackerMastery, defenderMastery))
}

// MasteryDelta returns attacker - defender mastery, or 0 when either side is
// not a finite number.
func MasteryDelta(attacker, defender float64) float64 {
	if math.IsNaN(attacker) || math.IsInf(attacker, 0) || math.IsNaN(defender) || math.IsInf(defender, 0) {
		return 0
	}
	d := attacker - defender
	if math.IsInf(d, 0) {
		return 0
	}
	return d
}
