package contrib

import (
	"context"
	"sync"
)

// MemoryMasteryStore keeps experience in memory. Used by tests and elemctl.
type MemoryMasteryStore struct {
	mu  sync.RWMutex
	exp map[masteryKey]float64
}

// NewMemoryMasteryStore creates an empty store.
func NewMemoryMasteryStore() *MemoryMasteryStore {
	return &MemoryMasteryStore{exp: make(map[masteryKey]float64)}
}

// Experience implements MasteryStore. Unknown pairs have 0 experience.
func (s *MemoryMasteryStore) Experience(_ context.Context, actorID, elem string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exp[masteryKey{actorID: actorID, elem: elem}], nil
}

// AddExperience implements MasteryStore.
func (s *MemoryMasteryStore) AddExperience(_ context.Context, actorID, elem string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := masteryKey{actorID: actorID, elem: elem}
	s.exp[k] += delta
	return s.exp[k], nil
}

// Set overwrites the experience of one pair.
func (s *MemoryMasteryStore) Set(actorID, elem string, exp float64) {
	s.mu.Lock()
	s.exp[masteryKey{actorID: actorID, elem: elem}] = exp
	s.mu.Unlock()
}
