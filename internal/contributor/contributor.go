// Package contributor defines the pluggable contributor interface and the
// registry the aggregator iterates over.
package contributor

import (
	"context"
	"time"
)

// Contributor is implemented by every subsystem that adds elemental stats
// to an actor: races, items, talents, mastery.
//
// Contribute must not call back into the aggregator. It receives no
// aggregator handle, so recursive aggregation cannot be expressed.
type Contributor interface {
	SystemID() string
	Priority() int64
	Contribute(ctx context.Context, actor Actor, element string) (Contribution, error)
}

// EventHandler is optionally implemented by contributors that react to
// element events (e.g. to drop their own memoized state).
type EventHandler interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// Contribution is the partial stat vector one contributor adds for one
// (actor, element). Stats holds element-specific deltas, Omni holds
// element-agnostic deltas. Both are additive.
type Contribution struct {
	SystemID  string
	Element   string
	Stats     map[string]float64
	Omni      map[string]float64
	Priority  int64
	Timestamp time.Time
}

// NewContribution returns an empty contribution stamped with the current time.
func NewContribution(systemID, element string, priority int64) Contribution {
	return Contribution{
		SystemID:  systemID,
		Element:   element,
		Stats:     make(map[string]float64),
		Omni:      make(map[string]float64),
		Priority:  priority,
		Timestamp: time.Now(),
	}
}

// Add adds delta to an element-specific stat.
func (c *Contribution) Add(stat string, delta float64) {
	if c.Stats == nil {
		c.Stats = make(map[string]float64)
	}
	c.Stats[stat] += delta
}

// AddOmni adds delta to an element-agnostic stat.
func (c *Contribution) AddOmni(stat string, delta float64) {
	if c.Omni == nil {
		c.Omni = make(map[string]float64)
	}
	c.Omni[stat] += delta
}

// Empty reports whether the contribution carries no deltas.
func (c Contribution) Empty() bool {
	return len(c.Stats) == 0 && len(c.Omni) == 0
}
