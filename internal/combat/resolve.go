package combat

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/interaction"
	"github.com/udisondev/elemcore/internal/status"
)

// Rolls are uniform samples from [0,1) driving one attack. Supplying them
// explicitly makes Resolve deterministic.
type Rolls struct {
	Hit         float64
	Crit        float64
	Interaction float64
	Status      float64
}

// RandomRolls draws fresh rolls from math/rand/v2.
func RandomRolls() Rolls {
	return Rolls{
		Hit:         rand.Float64(),
		Crit:        rand.Float64(),
		Interaction: rand.Float64(),
		Status:      rand.Float64(),
	}
}

// Attack describes one elemental attack.
type Attack struct {
	Attacker Side
	Defender Side
	// StatusKind selects the status effect to inflict; empty means the
	// attacker element's first effect.
	StatusKind string
}

// Outcome is the full result of one attack.
type Outcome struct {
	HitChance  float64
	Hit        bool
	CritChance float64
	Crit       bool
	Damage     float64

	Relationship           element.Relationship
	InteractionProbability float64
	InteractionTriggered   bool

	Status        status.Instance
	StatusApplied bool
}

// Resolver resolves attacks. Thread-safe.
type Resolver struct {
	formulas    Formulas
	interaction *interaction.Resolver
	statuses    *status.Engine
}

// NewResolver creates a combat resolver. statuses may be nil, in which
// case no status effects are inflicted.
func NewResolver(f Formulas, ir *interaction.Resolver, statuses *status.Engine) *Resolver {
	return &Resolver{formulas: f, interaction: ir, statuses: statuses}
}

// Resolve runs hit, crit, damage, interaction and status in order.
// A miss deals no damage and skips the interaction; status effects that
// apply on miss are still attempted.
func (r *Resolver) Resolve(a Attack, rolls Rolls) Outcome {
	att, def := a.Attacker, a.Defender
	var out Outcome

	out.HitChance = r.formulas.HitChance(att, def)
	out.Hit = rolls.Hit < out.HitChance

	attMastery := att.total(element.StatMastery)
	defMastery := def.total(element.StatMastery)
	out.Relationship, out.InteractionProbability = r.interaction.Resolve(att.Element, def.Element, attMastery, defMastery)

	if out.Hit {
		out.CritChance = r.formulas.CritChance(att, def)
		out.Crit = rolls.Crit < out.CritChance

		crit := 1.0
		if out.Crit {
			crit = CritMultiplier(att, def)
		}
		out.InteractionTriggered = rolls.Interaction < out.InteractionProbability

		// The relationship multiplier applies only when the interaction fires.
		mult := 1.0
		if out.InteractionTriggered {
			mult = r.interaction.ScaledDamageMultiplier(out.Relationship, attMastery, defMastery)
		}
		out.Damage = ElementalDamage(att, def, mult, crit)
	}

	if r.statuses != nil {
		out.Status, out.StatusApplied = r.statuses.ApplyTrigger(status.TriggerRequest{
			AttackerID:         att.ActorID,
			TargetID:           def.ActorID,
			AttackerElement:    att.Element,
			DefenderElement:    def.Element,
			Kind:               a.StatusKind,
			AttackerMastery:    attMastery,
			DefenderMastery:    defMastery,
			StatusProbability:  att.total(element.StatStatusProbability),
			StatusResistance:   def.total(element.StatStatusResistance),
			DurationBonus:      att.total(element.StatStatusDuration),
			DurationReduction:  def.total(element.StatStatusDurationReduction),
			IntensityBonus:     att.total(element.StatStatusIntensity),
			IntensityReduction: def.total(element.StatStatusIntensityReduction),
			Hit:                out.Hit,
			Roll:               rolls.Status,
		})
	}

	slog.Debug("attack resolved",
		"attacker", att.ActorID,
		"defender", def.ActorID,
		"relationship", out.Relationship,
		"hit", out.Hit,
		"crit", out.Crit,
		"damage", out.Damage,
		"status_applied", out.StatusApplied)

	return out
}
