package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/udisondev/elemcore/internal/contributor"
)

// FakeContributor is a configurable contributor that counts its calls.
// With Fn nil it returns Stats/Omni for every element.
type FakeContributor struct {
	ID   string
	Prio int64

	Stats map[string]float64
	Omni  map[string]float64
	Fn    func(ctx context.Context, actor contributor.Actor, element string) (contributor.Contribution, error)

	calls atomic.Int64

	mu     sync.Mutex
	events []contributor.Event
	// EventErr is returned from HandleEvent when set.
	EventErr error
}

// NewFakeContributor creates a contributor returning fixed deltas.
func NewFakeContributor(id string, prio int64, stats, omni map[string]float64) *FakeContributor {
	return &FakeContributor{ID: id, Prio: prio, Stats: stats, Omni: omni}
}

// SystemID implements contributor.Contributor.
func (f *FakeContributor) SystemID() string { return f.ID }

// Priority implements contributor.Contributor.
func (f *FakeContributor) Priority() int64 { return f.Prio }

// Contribute implements contributor.Contributor.
func (f *FakeContributor) Contribute(ctx context.Context, actor contributor.Actor, element string) (contributor.Contribution, error) {
	f.calls.Add(1)
	if f.Fn != nil {
		return f.Fn(ctx, actor, element)
	}
	c := contributor.NewContribution(f.ID, element, f.Prio)
	for k, v := range f.Stats {
		c.Add(k, v)
	}
	for k, v := range f.Omni {
		c.AddOmni(k, v)
	}
	return c, nil
}

// HandleEvent implements contributor.EventHandler.
func (f *FakeContributor) HandleEvent(_ context.Context, ev contributor.Event) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	return f.EventErr
}

// Calls returns how many times Contribute ran.
func (f *FakeContributor) Calls() int64 { return f.calls.Load() }

// Events returns the events received so far.
func (f *FakeContributor) Events() []contributor.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]contributor.Event, len(f.events))
	copy(out, f.events)
	return out
}

// PlainContributor hides HandleEvent of a FakeContributor.
type PlainContributor struct {
	*FakeContributor
}

// HandleEvent shadows the embedded method so PlainContributor is not an
// EventHandler.
func (PlainContributor) HandleEvent() {}

// NewActor returns a static actor with the given primary stats.
func NewActor(id string, primary map[string]float64) contributor.StaticActor {
	return contributor.StaticActor{ID: id, Stats: contributor.NewPrimaryStats(primary)}
}
