// Package combat turns derived elemental stats into combat outcomes:
// hit, critical hit, elemental damage and element-driven status effects.
package combat

import (
	"math"

	"github.com/udisondev/elemcore/internal/dynamics"
	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/stats"
)

// Side is one participant of an attack as seen through one element:
// the element base properties plus the actor's derived stats for it.
type Side struct {
	ActorID string
	Element string
	Base    element.BaseProperties
	Stats   stats.DerivedStats
}

func (s Side) total(stat string) float64 {
	return dynamics.Finite(s.Stats.Total(stat))
}

// Formulas holds the scaling of stat differences fed into the sigmoid.
type Formulas struct {
	// HitScale converts accuracy - dodge into sigmoid input.
	HitScale float64
	// CritScale converts crit rate - resist crit rate into sigmoid input.
	CritScale float64
}

// DefaultFormulas returns the stock scales: rates are fractions, so a
// difference of 1.0 moves the logit by one unit.
func DefaultFormulas() Formulas {
	return Formulas{HitScale: 1, CritScale: 1}
}

const (
	minRate = 1e-6
	maxRate = 1 - 1e-6
)

// logit is the inverse of dynamics.Sigmoid.
func logit(p float64) float64 {
	if math.IsNaN(p) {
		p = 0.5
	}
	p = min(max(p, minRate), maxRate)
	return math.Log(p / (1 - p))
}

// HitChance returns the probability the attack lands.
// The attacker element base accuracy is the chance at equal stats; the
// accuracy minus dodge difference shifts it along the sigmoid.
//
//	p = Sigmoid(logit(base) + (accuracy - dodge) / scale)
func (f Formulas) HitChance(att, def Side) float64 {
	diff := att.total(element.StatAccuracy) - def.total(element.StatDodge)
	return dynamics.Sigmoid(logit(att.Base.Accuracy) + diff/dynamics.Scale(f.HitScale))
}

// CritChance returns the probability of a critical hit.
//
//	p = Sigmoid(logit(base) + (critRate - resistCritRate) / scale)
func (f Formulas) CritChance(att, def Side) float64 {
	diff := att.total(element.StatCritRate) - def.total(element.StatResistCritRate)
	return dynamics.Sigmoid(logit(att.Base.CritRate) + diff/dynamics.Scale(f.CritScale))
}

// CritMultiplier returns the damage multiplier of a critical hit:
// base crit damage + crit damage - resist crit damage, at least 1.
func CritMultiplier(att, def Side) float64 {
	m := att.Base.CritDamage + att.total(element.StatCritDamage) - def.total(element.StatResistCritDamage)
	if m < 1 || math.IsNaN(m) {
		return 1
	}
	return m
}

// ElementalDamage computes the damage of one elemental attack.
//
// Penetration is subtracted from defense before the power/defense ratio:
//
//	power    = base damage + power points
//	defense  = max(0, base defense + defense points - penetration)
//	raw      = power² / (power + defense)
//	modifier = 1 + amplification - reduction - absorption
//	damage   = raw * modifier * relationMultiplier * critMultiplier
//
// Result is floored at 0.
func ElementalDamage(att, def Side, relationMultiplier, critMultiplier float64) float64 {
	power := att.Base.Damage + att.total(element.StatPower)
	if power <= 0 {
		return 0
	}

	defense := def.Base.Defense + def.total(element.StatDefense) - att.total(element.StatPenetration)
	if defense < 0 {
		defense = 0
	}

	raw := power * power / (power + defense)

	modifier := 1 + att.total(element.StatAmplification) -
		def.total(element.StatReduction) -
		def.total(element.StatAbsorption)
	if modifier <= 0 {
		return 0
	}

	dmg := raw * modifier * dynamics.Finite(relationMultiplier) * max(dynamics.Finite(critMultiplier), 1)
	if dmg < 0 || math.IsNaN(dmg) {
		return 0
	}
	if math.IsInf(dmg, 1) {
		return math.MaxFloat64
	}
	return dmg
}
