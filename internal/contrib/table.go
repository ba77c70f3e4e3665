package contrib

import (
	"context"
	"errors"
	"maps"

	"github.com/udisondev/elemcore/internal/contributor"
)

// ErrEmptyTableID is returned for a table without a system id.
var ErrEmptyTableID = errors.New("table system id is empty")

// Bonus is a set of flat stat deltas.
type Bonus struct {
	// Omni holds element-agnostic deltas.
	Omni map[string]float64
	// Elements holds element-specific deltas keyed by element id.
	Elements map[string]map[string]float64
	// Scaling converts primary stats into omni deltas:
	// Scaling[primary][stat] is added once per point of primary.
	Scaling map[string]map[string]float64
}

// Table is a static bonus table, e.g. racial bonuses or an item set.
// Default applies to every actor; Actors adds per-actor bonuses on top.
type Table struct {
	SystemID string
	Priority int64
	Default  Bonus
	Actors   map[string]Bonus
}

// TableContributor serves a Table. Immutable, safe for concurrent use.
type TableContributor struct {
	t Table
}

// NewTableContributor creates a contributor serving t. The table is
// copied shallowly and must not be mutated afterwards.
func NewTableContributor(t Table) (*TableContributor, error) {
	if t.SystemID == "" {
		return nil, ErrEmptyTableID
	}
	t.Actors = maps.Clone(t.Actors)
	return &TableContributor{t: t}, nil
}

// SystemID implements contributor.Contributor.
func (c *TableContributor) SystemID() string { return c.t.SystemID }

// Priority implements contributor.Contributor.
func (c *TableContributor) Priority() int64 { return c.t.Priority }

// Contribute implements contributor.Contributor.
func (c *TableContributor) Contribute(_ context.Context, actor contributor.Actor, elem string) (contributor.Contribution, error) {
	out := contributor.NewContribution(c.t.SystemID, elem, c.t.Priority)
	primary := actor.PrimaryStats()

	apply := func(b Bonus) {
		for stat, v := range b.Omni {
			out.AddOmni(stat, v)
		}
		for stat, v := range b.Elements[elem] {
			out.Add(stat, v)
		}
		for name, per := range b.Scaling {
			points, ok := primary.Get(name)
			if !ok || points == 0 {
				continue
			}
			for stat, v := range per {
				out.AddOmni(stat, v*points)
			}
		}
	}

	apply(c.t.Default)
	if b, ok := c.t.Actors[actor.ActorID()]; ok {
		apply(b)
	}
	return out, nil
}
