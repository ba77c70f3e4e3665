package stats

import (
	"fmt"
	"strings"
)

// MergeRule decides how deltas of several contributors for the same stat
// combine.
type MergeRule uint8

const (
	// Sum adds all deltas. Default.
	Sum MergeRule = iota
	// Max keeps the largest delta.
	Max
	// Min keeps the smallest delta.
	Min
	// Override keeps the delta of the highest priority contributor.
	Override
)

func (r MergeRule) String() string {
	switch r {
	case Sum:
		return "sum"
	case Max:
		return "max"
	case Min:
		return "min"
	case Override:
		return "override"
	default:
		return fmt.Sprintf("MergeRule(%d)", uint8(r))
	}
}

// ParseMergeRule parses a rule name as used in configuration files.
func ParseMergeRule(s string) (MergeRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sum":
		return Sum, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	case "override", "first":
		return Override, nil
	default:
		return Sum, fmt.Errorf("unknown merge rule %q", s)
	}
}

// Rules maps stat names to merge rules. Stats without an entry use Sum.
type Rules map[string]MergeRule

// For returns the rule of stat.
func (r Rules) For(stat string) MergeRule {
	if rule, ok := r[stat]; ok {
		return rule
	}
	return Sum
}

// accumulator merges one component of one stat. Deltas must be fed in
// priority-descending order.
type accumulator struct {
	v   float64
	set bool
}

func (a *accumulator) add(rule MergeRule, delta float64) {
	if !a.set {
		a.v, a.set = delta, true
		return
	}
	switch rule {
	case Max:
		a.v = max(a.v, delta)
	case Min:
		a.v = min(a.v, delta)
	case Override:
		// First (highest priority) delta wins.
	default:
		a.v += delta
	}
}

// Builder merges contributions into a DerivedStats. Omni and element
// components are merged independently with the same rule.
//
// Feed contributions in priority-descending order. Not safe for concurrent use.
type Builder struct {
	rules Rules
	omni  map[string]*accumulator
	elem  map[string]*accumulator
}

// NewBuilder creates a builder using rules.
func NewBuilder(rules Rules) *Builder {
	return &Builder{
		rules: rules,
		omni:  make(map[string]*accumulator),
		elem:  make(map[string]*accumulator),
	}
}

// AddElement merges an element-specific delta.
func (b *Builder) AddElement(stat string, delta float64) {
	acc(b.elem, stat).add(b.rules.For(stat), delta)
}

// AddOmni merges an element-agnostic delta.
func (b *Builder) AddOmni(stat string, delta float64) {
	acc(b.omni, stat).add(b.rules.For(stat), delta)
}

func acc(m map[string]*accumulator, stat string) *accumulator {
	a, ok := m[stat]
	if !ok {
		a = &accumulator{}
		m[stat] = a
	}
	return a
}

// Build returns the merged vector.
func (b *Builder) Build(actorID, element string) DerivedStats {
	d := Empty(actorID, element)
	for stat, a := range b.elem {
		v := d.Values[stat]
		v.Element = a.v
		d.Values[stat] = v
	}
	for stat, a := range b.omni {
		v := d.Values[stat]
		v.Omni = a.v
		d.Values[stat] = v
	}
	return d
}
