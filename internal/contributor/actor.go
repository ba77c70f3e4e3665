package contributor

import (
	"cmp"
	"encoding/binary"
	"math"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// Actor is anything that owns elemental stats: players, monsters, summons.
type Actor interface {
	ActorID() string
	PrimaryStats() PrimaryStats
}

// PrimaryStat is one named primary stat value (STR, level, ...).
type PrimaryStat struct {
	Name  string
	Value float64
}

// PrimaryStats is a name-sorted snapshot of an actor's primary stats.
// Any change in it invalidates derived stats of the actor.
type PrimaryStats []PrimaryStat

// NewPrimaryStats builds a sorted snapshot from m.
func NewPrimaryStats(m map[string]float64) PrimaryStats {
	out := make(PrimaryStats, 0, len(m))
	for name, v := range m {
		out = append(out, PrimaryStat{Name: name, Value: v})
	}
	slices.SortFunc(out, func(a, b PrimaryStat) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Get returns the value of name.
func (p PrimaryStats) Get(name string) (float64, bool) {
	i, ok := slices.BinarySearchFunc(p, name, func(s PrimaryStat, n string) int {
		return cmp.Compare(s.Name, n)
	})
	if !ok {
		return 0, false
	}
	return p[i].Value, true
}

// Fingerprint returns a 64-bit blake2b digest of the snapshot. Equal
// snapshots always produce equal fingerprints.
func (p PrimaryStats) Fingerprint() uint64 {
	h, err := blake2b.New(8, nil)
	if err != nil {
		// Only fails for size > 64 or key > 64.
		panic(err)
	}

	var buf [8]byte
	for _, s := range p {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s.Name)))
		h.Write(buf[:])
		h.Write([]byte(s.Name))
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(s.Value))
		h.Write(buf[:])
	}
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// StaticActor is an Actor with a fixed primary stats snapshot.
type StaticActor struct {
	ID    string
	Stats PrimaryStats
}

// ActorID implements Actor.
func (a StaticActor) ActorID() string { return a.ID }

// PrimaryStats implements Actor.
func (a StaticActor) PrimaryStats() PrimaryStats { return a.Stats }
