// Package contrib provides the stock contributors: experience-driven
// element mastery and static bonus tables for races and items.
package contrib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/elemcore/internal/contributor"
	"github.com/udisondev/elemcore/internal/element"
)

// MasterySystemID is the system id of MasteryContributor.
const MasterySystemID = "mastery"

// ErrNegativeExperience is returned when training would remove experience.
var ErrNegativeExperience = errors.New("experience delta must be non-negative")

// MasteryStore persists accumulated experience per (actor, element).
// Implemented by MemoryMasteryStore and db.MasteryRepository.
type MasteryStore interface {
	Experience(ctx context.Context, actorID, elem string) (float64, error)
	AddExperience(ctx context.Context, actorID, elem string, delta float64) (float64, error)
}

type masteryKey struct {
	actorID string
	elem    string
}

// MasteryContributor converts accumulated experience into element stats.
//
// For experience exp in an element with base properties b:
//
//	element_mastery = PowerScale(exp)
//	growth          = level bonus - 1
//	power_point     = b.Damage * growth
//	defense_point   = b.Defense * growth
//	crit_rate       = b.CritRate * growth
//	accurate_rate   = 0.05 * growth
//
// Experience is memoized per (actor, element) until an event for that
// pair arrives. Thread-safe.
type MasteryContributor struct {
	store    *element.Store
	src      MasteryStore
	priority int64

	mu   sync.RWMutex
	memo map[masteryKey]float64
	// clock orders Forget calls. forgotKey and forgotActor record the clock
	// of the last Forget per pair and per actor; a load that started before
	// a Forget must not fill the memo.
	clock       uint64
	forgotKey   map[masteryKey]uint64
	forgotActor map[string]uint64
}

// NewMasteryContributor creates a mastery contributor.
func NewMasteryContributor(store *element.Store, src MasteryStore, priority int64) *MasteryContributor {
	return &MasteryContributor{
		store:    store,
		src:      src,
		priority: priority,
		memo:     make(map[masteryKey]float64),

		forgotKey:   make(map[masteryKey]uint64),
		forgotActor: make(map[string]uint64),
	}
}

// SystemID implements contributor.Contributor.
func (m *MasteryContributor) SystemID() string { return MasterySystemID }

// Priority implements contributor.Contributor.
func (m *MasteryContributor) Priority() int64 { return m.priority }

// Contribute implements contributor.Contributor.
func (m *MasteryContributor) Contribute(ctx context.Context, actor contributor.Actor, elem string) (contributor.Contribution, error) {
	c := contributor.NewContribution(MasterySystemID, elem, m.priority)

	def, ok := m.store.Definition(elem)
	if !ok {
		// Omni or unknown element: mastery is element-specific only.
		return c, nil
	}

	exp, err := m.experience(ctx, actor.ActorID(), elem)
	if err != nil {
		return c, err
	}
	if exp <= 0 {
		return c, nil
	}

	power := m.store.PowerCurve().PowerScale(exp)
	growth := element.MasteryLevelFor(exp).Bonus() - 1

	c.Add(element.StatMastery, power)
	if growth > 0 {
		c.Add(element.StatPower, def.Base.Damage*growth)
		c.Add(element.StatDefense, def.Base.Defense*growth)
		c.Add(element.StatCritRate, def.Base.CritRate*growth)
		c.Add(element.StatAccuracy, 0.05*growth)
	}
	return c, nil
}

func (m *MasteryContributor) experience(ctx context.Context, actorID, elem string) (float64, error) {
	key := masteryKey{actorID: actorID, elem: elem}

	m.mu.RLock()
	exp, ok := m.memo[key]
	version := m.version(key)
	m.mu.RUnlock()
	if ok {
		return exp, nil
	}

	exp, err := m.src.Experience(ctx, actorID, elem)
	if err != nil {
		return 0, fmt.Errorf("loading experience of %s in %s: %w", actorID, elem, err)
	}

	m.mu.Lock()
	if m.version(key) == version {
		m.memo[key] = exp
	}
	m.mu.Unlock()
	return exp, nil
}

// version returns the clock of the last Forget covering key. Caller holds
// m.mu.
func (m *MasteryContributor) version(key masteryKey) uint64 {
	return max(m.forgotKey[key], m.forgotActor[key.actorID])
}

// HandleEvent implements contributor.EventHandler. Mastery and training
// events drop the memo of the affected pair; an empty element drops every
// element of the actor.
func (m *MasteryContributor) HandleEvent(_ context.Context, ev contributor.Event) error {
	switch ev.Kind {
	case contributor.EventMasteryLevelChanged, contributor.EventTrainingCompleted:
		m.Forget(ev.ActorID, ev.Element)
	}
	return nil
}

// Forget drops memoized experience. Loads in flight at the time of the
// call do not repopulate the memo.
func (m *MasteryContributor) Forget(actorID, elem string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock++
	if elem != "" {
		key := masteryKey{actorID: actorID, elem: elem}
		m.forgotKey[key] = m.clock
		delete(m.memo, key)
		return
	}
	m.forgotActor[actorID] = m.clock
	for k := range m.memo {
		if k.actorID == actorID {
			delete(m.memo, k)
		}
	}
}

// Train adds experience and returns the events the caller must broadcast:
// TrainingCompleted always, MasteryLevelChanged when a tier was crossed.
func (m *MasteryContributor) Train(ctx context.Context, actorID, elem string, delta float64) ([]contributor.Event, error) {
	if !m.store.Has(elem) {
		return nil, fmt.Errorf("%w: %s", element.ErrUnknownElement, elem)
	}
	if !(delta >= 0) {
		return nil, ErrNegativeExperience
	}

	before, err := m.src.Experience(ctx, actorID, elem)
	if err != nil {
		return nil, fmt.Errorf("loading experience of %s in %s: %w", actorID, elem, err)
	}
	after, err := m.src.AddExperience(ctx, actorID, elem, delta)
	if err != nil {
		return nil, fmt.Errorf("adding experience to %s in %s: %w", actorID, elem, err)
	}

	events := []contributor.Event{contributor.TrainingCompleted(actorID, elem, delta)}
	from, to := element.MasteryLevelFor(before), element.MasteryLevelFor(after)
	if from != to {
		slog.Info("mastery level changed",
			"actor", actorID,
			"element", elem,
			"from", from,
			"to", to)
		events = append(events, contributor.MasteryLevelChanged(actorID, elem, from, to))
	}
	return events, nil
}
