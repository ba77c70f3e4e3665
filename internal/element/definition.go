package element

// Definition describes one element. Immutable after the Store is built;
// slices are shared and must be treated as read-only.
type Definition struct {
	ID       string
	Category string

	// Stats lists the derived stats this element supports.
	// Empty means every known stat.
	Stats []string

	Base BaseProperties

	// Generates and Overcomes list defender element ids. Any pair not
	// listed (and not the same element) is neutral.
	Generates []string
	Overcomes []string

	StatusEffects []StatusEffectDef
}

// BaseProperties are the per-element coefficients a mastery contributor
// scales by the actor's power scale.
type BaseProperties struct {
	Damage     float64
	Defense    float64
	CritRate   float64
	CritDamage float64
	Accuracy   float64
}

// StatusEffectDef configures one status effect kind an element can inflict.
type StatusEffectDef struct {
	Kind string

	BaseDuration  float64 // seconds
	BaseIntensity float64

	MaxStacks       int
	Stackable       bool
	RefreshDuration bool

	// StackAndRefresh allows a re-trigger to both add a stack and refresh
	// duration. Without it exactly one of the two happens.
	StackAndRefresh bool

	// ApplyOnMiss lets the effect trigger even when the attack missed.
	ApplyOnMiss bool

	Dynamics StatusDynamics
}

// EffectiveMaxStacks returns the stack bound: 1 for non-stackable kinds.
func (d StatusEffectDef) EffectiveMaxStacks() int {
	if !d.Stackable || d.MaxStacks < 1 {
		return 1
	}
	return d.MaxStacks
}

// StatusDynamics are the coefficients of the status intensity model.
type StatusDynamics struct {
	IntensityGain    float64
	IntensityDamping float64
	DecayRate        float64 // decay of the driving input once applied
	RefractoryGain   float64
	RefractoryDecay  float64
}

// InteractionDynamics scales the mastery delta before the sigmoid.
type InteractionDynamics struct {
	TriggerScale float64
	Steepness    float64
}

// DefaultInteractionDynamics mirrors the stock tuning.
func DefaultInteractionDynamics() InteractionDynamics {
	return InteractionDynamics{TriggerScale: 50.0, Steepness: 1.0}
}

// DefaultStatusDynamics mirrors the stock tuning.
func DefaultStatusDynamics() StatusDynamics {
	return StatusDynamics{
		IntensityGain:    0.02,
		IntensityDamping: 0.01,
		DecayRate:        0.05,
		RefractoryGain:   0.5,
		RefractoryDecay:  0.1,
	}
}

// RelationshipTuning holds per-class base triggers and damage multipliers.
// The same-element trigger is always 0 and is not configurable.
type RelationshipTuning struct {
	Generating float64
	Overcoming float64
	Neutral    float64

	GeneratingMultiplier float64
	OvercomingMultiplier float64
	NeutralMultiplier    float64
	SameMultiplier       float64

	// MultiplierScaling adds (attacker - defender mastery) * scaling to the
	// class multiplier of an interacting pair. 0 keeps multipliers flat.
	MultiplierScaling float64
	// MinMultiplier and MaxMultiplier bound the scaled multiplier.
	// MaxMultiplier 0 means no upper bound.
	MinMultiplier float64
	MaxMultiplier float64
}

// DefaultRelationshipTuning mirrors the stock base triggers.
func DefaultRelationshipTuning() RelationshipTuning {
	return RelationshipTuning{
		Generating:           0.3,
		Overcoming:           0.8,
		Neutral:              0.1,
		GeneratingMultiplier: 1.0,
		OvercomingMultiplier: 1.25,
		NeutralMultiplier:    1.0,
		SameMultiplier:       1.0,
	}
}

// Catalog is the plain data the Store is built from. It is produced by the
// config loader; the Store never parses files itself.
type Catalog struct {
	OmniID        string
	Elements      []Definition
	Relationships RelationshipTuning
	Interaction   InteractionDynamics
	Power         PowerCurve
}
