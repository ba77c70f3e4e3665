package element

import (
	"errors"
	"math"
	"sort"
)

// MasteryLevel is the tier an actor reaches in one element by experience.
type MasteryLevel uint8

const (
	Beginner MasteryLevel = iota
	Novice
	Apprentice
	Regular
	Adept
	Expert
	AdvancedExpert
	Master
	AdvancedMaster
	GrandMaster
	Completer
	Transcender
	Sage
	Archmage
	Legendary
	Mythic
	Transcendent
	Celestial
	Divine
	Immortal
	Eternal
	Omniscient
	Omnipotent
	Supreme
)

type masteryTier struct {
	name      string
	threshold float64 // minimum experience
	bonus     float64
}

var masteryTiers = [...]masteryTier{
	Beginner:       {"beginner", 0, 1.0},
	Novice:         {"novice", 1e3, 1.1},
	Apprentice:     {"apprentice", 5e3, 1.25},
	Regular:        {"regular", 15e3, 1.4},
	Adept:          {"adept", 50e3, 1.6},
	Expert:         {"expert", 150e3, 1.8},
	AdvancedExpert: {"advanced_expert", 500e3, 2.0},
	Master:         {"master", 1.5e6, 2.3},
	AdvancedMaster: {"advanced_master", 5e6, 2.7},
	GrandMaster:    {"grand_master", 15e6, 3.2},
	Completer:      {"completer", 50e6, 3.8},
	Transcender:    {"transcender", 150e6, 4.5},
	Sage:           {"sage", 500e6, 5.5},
	Archmage:       {"archmage", 1.5e9, 6.8},
	Legendary:      {"legendary", 5e9, 8.5},
	Mythic:         {"mythic", 15e9, 10.5},
	Transcendent:   {"transcendent", 50e9, 13.0},
	Celestial:      {"celestial", 150e9, 16.0},
	Divine:         {"divine", 500e9, 20.0},
	Immortal:       {"immortal", 1.5e12, 25.0},
	Eternal:        {"eternal", 5e12, 32.0},
	Omniscient:     {"omniscient", 15e12, 40.0},
	Omnipotent:     {"omnipotent", 50e12, 50.0},
	Supreme:        {"supreme", 150e12, 65.0},
}

// MasteryLevelFor returns the mastery level reached with exp experience.
// Negative and non-finite experience map to Beginner.
func MasteryLevelFor(exp float64) MasteryLevel {
	if math.IsNaN(exp) || exp <= 0 {
		return Beginner
	}
	// First tier whose threshold exceeds exp, minus one.
	i := sort.Search(len(masteryTiers), func(i int) bool {
		return masteryTiers[i].threshold > exp
	})
	return MasteryLevel(i - 1)
}

// Bonus returns the level bonus multiplier.
func (l MasteryLevel) Bonus() float64 {
	if int(l) >= len(masteryTiers) {
		return masteryTiers[Supreme].bonus
	}
	return masteryTiers[l].bonus
}

// Threshold returns the experience needed to reach the level.
func (l MasteryLevel) Threshold() float64 {
	if int(l) >= len(masteryTiers) {
		return masteryTiers[Supreme].threshold
	}
	return masteryTiers[l].threshold
}

func (l MasteryLevel) String() string {
	if int(l) >= len(masteryTiers) {
		return "unknown"
	}
	return masteryTiers[l].name
}

// PowerCurve maps accumulated experience to a power scale:
//
//	power = Scale * ln(1 + exp/Pivot)
//	exp   = Pivot * (exp(power/Scale) - 1)
type PowerCurve struct {
	Scale float64
	Pivot float64
}

// DefaultPowerCurve returns the stock curve.
func DefaultPowerCurve() PowerCurve {
	return PowerCurve{Scale: 100, Pivot: 1000}
}

// Validate checks both coefficients are positive and finite.
func (c PowerCurve) Validate() error {
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return errors.New("power curve scale must be positive")
	}
	if !(c.Pivot > 0) || math.IsInf(c.Pivot, 0) {
		return errors.New("power curve pivot must be positive")
	}
	return nil
}

// PowerScale converts experience into power scale. Negative or non-finite
// experience yields 0.
func (c PowerCurve) PowerScale(exp float64) float64 {
	if math.IsNaN(exp) || exp <= 0 {
		return 0
	}
	if math.IsInf(exp, 1) {
		return math.MaxFloat64
	}
	return c.Scale * math.Log1p(exp/c.Pivot)
}

// Experience is the inverse of PowerScale: the experience needed to reach
// power. Log1p/Expm1 keep the round trip stable near zero.
func (c PowerCurve) Experience(power float64) float64 {
	if math.IsNaN(power) || power <= 0 {
		return 0
	}
	e := c.Pivot * math.Expm1(power/c.Scale)
	if math.IsInf(e, 1) {
		return math.MaxFloat64
	}
	return e
}
