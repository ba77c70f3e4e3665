// Package status runs elemental status effects (burning, chilled, ...) on
// actors: triggering, stacking, intensity dynamics and expiry.
package status

import (
	"time"

	"github.com/udisondev/elemcore/internal/element"
)

// Phase is the lifecycle state of a status effect instance.
type Phase uint8

const (
	Inactive Phase = iota
	Active
	Decaying
	Expired
)

func (p Phase) String() string {
	switch p {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Decaying:
		return "decaying"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Instance is one status effect of one kind on one target actor.
// Values returned by the engine are copies.
type Instance struct {
	Kind       string
	Element    string
	TargetID   string
	AttackerID string

	Phase     Phase
	Stacks    int
	Intensity float64
	// Duration is the remaining active time in seconds.
	Duration float64
	// Drive scales the intensity input; it decays while Active.
	Drive      float64
	Refractory float64

	AppliedAt time.Time
	UpdatedAt time.Time

	def        element.StatusEffectDef
	baseIntens float64
}

// Definition returns the effect definition the instance was created from.
func (i Instance) Definition() element.StatusEffectDef { return i.def }

// Alive reports whether the instance still has an effect on its target.
func (i Instance) Alive() bool {
	return i.Phase == Active || i.Phase == Decaying
}
