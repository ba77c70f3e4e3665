package testutil

import (
	"testing"

	"github.com/udisondev/elemcore/internal/element"
)

// Five-element cycle ids. Generating: wood → fire → earth → metal → water → wood.
// Overcoming skips one step: wood → earth, fire → metal, earth → water,
// metal → wood, water → fire.
const (
	Wood  = "wood"
	Fire  = "fire"
	Earth = "earth"
	Metal = "metal"
	Water = "water"
)

// Status effect kinds of the five-element fixture.
const (
	EffectBurning   = "burning"   // stackable x5, no refresh
	EffectChilled   = "chilled"   // refresh only
	EffectEntangled = "entangled" // applies on miss
	EffectBleeding  = "bleeding"  // stack and refresh
	EffectPetrified = "petrified" // single, refresh
)

// FiveElementCatalog returns a complete catalog for the five-element cycle.
func FiveElementCatalog() element.Catalog {
	dyn := element.DefaultStatusDynamics()
	base := element.BaseProperties{Damage: 100, Defense: 80, CritRate: 0.05, CritDamage: 1.5, Accuracy: 0.9}

	return element.Catalog{
		OmniID:        element.DefaultOmniID,
		Relationships: element.DefaultRelationshipTuning(),
		Interaction:   element.DefaultInteractionDynamics(),
		Power:         element.DefaultPowerCurve(),
		Elements: []element.Definition{
			{
				ID: Wood, Category: "five_elements", Base: base,
				Generates: []string{Fire}, Overcomes: []string{Earth},
				StatusEffects: []element.StatusEffectDef{{
					Kind: EffectEntangled, BaseDuration: 3, BaseIntensity: 1,
					RefreshDuration: true, ApplyOnMiss: true, Dynamics: dyn,
				}},
			},
			{
				ID: Fire, Category: "five_elements", Base: base,
				Generates: []string{Earth}, Overcomes: []string{Metal},
				StatusEffects: []element.StatusEffectDef{{
					Kind: EffectBurning, BaseDuration: 5, BaseIntensity: 10,
					Stackable: true, MaxStacks: 5, Dynamics: dyn,
				}},
			},
			{
				ID: Earth, Category: "five_elements", Base: base,
				Generates: []string{Metal}, Overcomes: []string{Water},
				StatusEffects: []element.StatusEffectDef{{
					Kind: EffectPetrified, BaseDuration: 2, BaseIntensity: 5,
					RefreshDuration: true, Dynamics: dyn,
				}},
			},
			{
				ID: Metal, Category: "five_elements", Base: base,
				Generates: []string{Water}, Overcomes: []string{Wood},
				StatusEffects: []element.StatusEffectDef{{
					Kind: EffectBleeding, BaseDuration: 4, BaseIntensity: 3,
					Stackable: true, MaxStacks: 3, RefreshDuration: true, StackAndRefresh: true,
					Dynamics: dyn,
				}},
			},
			{
				ID: Water, Category: "five_elements", Base: base,
				Generates: []string{Wood}, Overcomes: []string{Fire},
				StatusEffects: []element.StatusEffectDef{{
					Kind: EffectChilled, BaseDuration: 6, BaseIntensity: 2,
					RefreshDuration: true, Dynamics: dyn,
				}},
			},
		},
	}
}

// FiveElementStore builds the five-element store or fails the test.
func FiveElementStore(tb testing.TB) *element.Store {
	tb.Helper()
	s, err := element.NewStore(FiveElementCatalog())
	if err != nil {
		tb.Fatalf("building five-element store: %v", err)
	}
	return s
}
