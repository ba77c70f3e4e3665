// Package stats holds the derived elemental stat vector produced by the
// aggregator.
package stats

import (
	"maps"
	"slices"
	"time"
)

// Value is one derived stat split into its element-agnostic (Omni) and
// element-specific components.
type Value struct {
	Omni    float64
	Element float64
}

// Total returns Omni + Element. Omni is only ever added, never multiplied.
func (v Value) Total() float64 { return v.Omni + v.Element }

// DerivedStats is the final stat vector of one actor for one element.
// It is immutable once returned by the aggregator.
type DerivedStats struct {
	ActorID    string
	Element    string
	Values     map[string]Value
	Degraded   bool
	ComputedAt time.Time
}

// Empty returns an all-zero vector for (actorID, element).
func Empty(actorID, element string) DerivedStats {
	return DerivedStats{
		ActorID:    actorID,
		Element:    element,
		Values:     map[string]Value{},
		ComputedAt: time.Now(),
	}
}

// Get returns the split value of stat. Missing stats are zero.
func (d DerivedStats) Get(stat string) Value {
	return d.Values[stat]
}

// Total returns the combined value of stat.
func (d DerivedStats) Total(stat string) float64 {
	return d.Values[stat].Total()
}

// Omni returns the element-agnostic component of stat.
func (d DerivedStats) Omni(stat string) float64 {
	return d.Values[stat].Omni
}

// ElementPart returns the element-specific component of stat.
func (d DerivedStats) ElementPart(stat string) float64 {
	return d.Values[stat].Element
}

// Stats returns the names of all stats present in the vector, sorted.
func (d DerivedStats) Stats() []string {
	return slices.Sorted(maps.Keys(d.Values))
}

// Totals flattens the vector to stat → total.
func (d DerivedStats) Totals() map[string]float64 {
	out := make(map[string]float64, len(d.Values))
	for k, v := range d.Values {
		out[k] = v.Total()
	}
	return out
}

// Clone returns a deep copy.
func (d DerivedStats) Clone() DerivedStats {
	d.Values = maps.Clone(d.Values)
	if d.Values == nil {
		d.Values = map[string]Value{}
	}
	return d
}
