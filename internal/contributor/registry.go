package contributor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// ErrDuplicateSystemID is returned by Register for an already registered id.
var ErrDuplicateSystemID = errors.New("contributor system id already registered")

// ErrEmptySystemID is returned for registrations without a system id.
var ErrEmptySystemID = errors.New("contributor system id is empty")

// Entry is one registered contributor.
type Entry struct {
	SystemID    string
	Priority    int64
	Contributor Contributor
}

// Registry holds contributors ordered by priority.
//
// Thread-safety: readers load an immutable sorted snapshot through an atomic
// pointer and never block. Writers are serialized by mu and publish a new
// snapshot (copy-on-write), so changes are visible only to iterations that
// start afterwards.
type Registry struct {
	mu      sync.Mutex
	entries atomic.Pointer[[]Entry]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := []Entry{}
	r.entries.Store(&empty)
	return r
}

// Register adds a contributor. Fails with ErrDuplicateSystemID if the id
// is taken.
func (r *Registry) Register(systemID string, priority int64, c Contributor) error {
	if systemID == "" {
		return ErrEmptySystemID
	}
	if c == nil {
		return fmt.Errorf("registering %q: nil contributor", systemID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.entries.Load()
	if slices.ContainsFunc(cur, func(e Entry) bool { return e.SystemID == systemID }) {
		return fmt.Errorf("%w: %q", ErrDuplicateSystemID, systemID)
	}

	next := make([]Entry, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, Entry{SystemID: systemID, Priority: priority, Contributor: c})
	r.publish(next)

	slog.Debug("contributor registered", "system", systemID, "priority", priority)
	return nil
}

// Replace registers c under systemID, replacing any existing contributor
// with the same id.
func (r *Registry) Replace(systemID string, priority int64, c Contributor) error {
	if systemID == "" {
		return ErrEmptySystemID
	}
	if c == nil {
		return fmt.Errorf("replacing %q: nil contributor", systemID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.entries.Load()
	next := make([]Entry, 0, len(cur)+1)
	for _, e := range cur {
		if e.SystemID != systemID {
			next = append(next, e)
		}
	}
	next = append(next, Entry{SystemID: systemID, Priority: priority, Contributor: c})
	r.publish(next)

	slog.Debug("contributor replaced", "system", systemID, "priority", priority)
	return nil
}

// Unregister removes a contributor. Removing an unknown id is a no-op.
// Returns true if something was removed.
func (r *Registry) Unregister(systemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.entries.Load()
	i := slices.IndexFunc(cur, func(e Entry) bool { return e.SystemID == systemID })
	if i < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(cur), i, i+1)
	r.publish(next)

	slog.Debug("contributor unregistered", "system", systemID)
	return true
}

// publish sorts next and makes it the current snapshot. Caller holds mu.
func (r *Registry) publish(next []Entry) {
	slices.SortStableFunc(next, func(a, b Entry) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.SystemID, b.SystemID)
	})
	r.entries.Store(&next)
}

// Get returns the contributor registered under systemID.
func (r *Registry) Get(systemID string) (Contributor, bool) {
	for _, e := range *r.entries.Load() {
		if e.SystemID == systemID {
			return e.Contributor, true
		}
	}
	return nil, false
}

// Len returns the number of registered contributors.
func (r *Registry) Len() int {
	return len(*r.entries.Load())
}

// SystemIDs returns registered ids in priority order.
func (r *Registry) SystemIDs() []string {
	cur := *r.entries.Load()
	ids := make([]string, len(cur))
	for i, e := range cur {
		ids[i] = e.SystemID
	}
	return ids
}

// Snapshot returns the current entries in priority order (highest first).
// The slice is shared and must not be modified.
func (r *Registry) Snapshot() []Entry {
	return *r.entries.Load()
}

// ByPriority yields entries from highest to lowest priority, ties by system
// id. The sequence is lazy and restartable; every iteration observes the
// registry as it was when that iteration started.
func (r *Registry) ByPriority() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range *r.entries.Load() {
			if !yield(e) {
				return
			}
		}
	}
}

// Broadcast delivers ev to every contributor implementing EventHandler.
// Handler failures are logged and joined into the returned error; delivery
// to the remaining handlers continues.
func (r *Registry) Broadcast(ctx context.Context, ev Event) error {
	var errs []error
	for e := range r.ByPriority() {
		h, ok := e.Contributor.(EventHandler)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := h.HandleEvent(ctx, ev); err != nil {
			slog.Warn("contributor event handler failed",
				"system", e.SystemID,
				"event", ev.Kind,
				"actor", ev.ActorID,
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.SystemID, err))
		}
	}
	return errors.Join(errs...)
}
