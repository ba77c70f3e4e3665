package contributor

import (
	"time"

	"github.com/udisondev/elemcore/internal/element"
)

// EventKind identifies an element event.
type EventKind uint8

const (
	EventMasteryLevelChanged EventKind = iota + 1
	EventElementInteraction
	EventTrainingCompleted
	EventStatusEffectApplied
	EventEquipmentChanged
)

func (k EventKind) String() string {
	switch k {
	case EventMasteryLevelChanged:
		return "mastery_level_changed"
	case EventElementInteraction:
		return "element_interaction"
	case EventTrainingCompleted:
		return "training_completed"
	case EventStatusEffectApplied:
		return "status_effect_applied"
	case EventEquipmentChanged:
		return "equipment_changed"
	default:
		return "unknown"
	}
}

// Event is delivered to every EventHandler contributor. ActorID names the
// actor whose derived stats are affected; the remaining fields are set
// according to Kind.
type Event struct {
	Kind    EventKind
	ActorID string
	Element string
	At      time.Time

	// EventMasteryLevelChanged
	OldLevel element.MasteryLevel
	NewLevel element.MasteryLevel

	// EventTrainingCompleted
	Experience float64

	// EventElementInteraction
	TargetID     string
	TargetElem   string
	Relationship element.Relationship
	Probability  float64

	// EventStatusEffectApplied
	EffectKind string
	Stacks     int
}

// MasteryLevelChanged builds an EventMasteryLevelChanged event.
func MasteryLevelChanged(actorID, elem string, from, to element.MasteryLevel) Event {
	return Event{
		Kind:     EventMasteryLevelChanged,
		ActorID:  actorID,
		Element:  elem,
		At:       time.Now(),
		OldLevel: from,
		NewLevel: to,
	}
}

// TrainingCompleted builds an EventTrainingCompleted event.
func TrainingCompleted(actorID, elem string, experience float64) Event {
	return Event{
		Kind:       EventTrainingCompleted,
		ActorID:    actorID,
		Element:    elem,
		At:         time.Now(),
		Experience: experience,
	}
}

// ElementInteraction builds an EventElementInteraction event.
func ElementInteraction(actorID, elem, targetID, targetElem string, rel element.Relationship, p float64) Event {
	return Event{
		Kind:         EventElementInteraction,
		ActorID:      actorID,
		Element:      elem,
		At:           time.Now(),
		TargetID:     targetID,
		TargetElem:   targetElem,
		Relationship: rel,
		Probability:  p,
	}
}

// StatusEffectApplied builds an EventStatusEffectApplied event for the
// target actor.
func StatusEffectApplied(targetID, elem, kind string, stacks int) Event {
	return Event{
		Kind:       EventStatusEffectApplied,
		ActorID:    targetID,
		Element:    elem,
		At:         time.Now(),
		EffectKind: kind,
		Stacks:     stacks,
	}
}

// EquipmentChanged builds an EventEquipmentChanged event.
func EquipmentChanged(actorID string) Event {
	return Event{Kind: EventEquipmentChanged, ActorID: actorID, At: time.Now()}
}
