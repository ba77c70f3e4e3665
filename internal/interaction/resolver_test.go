package interaction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/elemcore/internal/dynamics"
	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/testutil"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(testutil.FiveElementStore(t))
}

func TestResolver_SameElementNeverTriggers(t *testing.T) {
	r := newResolver(t)

	for _, id := range r.Store().Elements() {
		rel, p := r.Resolve(id, id, 1e9, 0)
		assert.Equal(t, element.Same, rel)
		assert.Zero(t, p)
		assert.Zero(t, r.ComputeTrigger(id, id, 0, 1e9))
	}
}

func TestResolver_Classify(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		att, def string
		want     element.Relationship
	}{
		{testutil.Wood, testutil.Fire, element.Generating},
		{testutil.Fire, testutil.Wood, element.Neutral},
		{testutil.Wood, testutil.Earth, element.Overcoming},
		{testutil.Earth, testutil.Wood, element.Neutral},
		{testutil.Metal, testutil.Wood, element.Overcoming},
		{testutil.Water, testutil.Wood, element.Generating},
		{testutil.Fire, testutil.Fire, element.Same},
		{testutil.Fire, "void", element.Neutral},
		{"void", testutil.Fire, element.Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.att+"->"+tt.def, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Classify(tt.att, tt.def))
		})
	}
}

func TestResolver_OvercomingWithMasteryAdvantage(t *testing.T) {
	r := newResolver(t)

	// overcoming base 0.8, scale 50, attacker mastery 1e6 vs defender 1e4
	rel, p := r.Resolve(testutil.Wood, testutil.Earth, 1e6, 1e4)
	require.Equal(t, element.Overcoming, rel)
	assert.GreaterOrEqual(t, p, 0.8)
	assert.LessOrEqual(t, p, 1.0)

	// Both sides clamp to 1 at this base, so only >= holds.
	zero := r.ComputeTrigger(testutil.Wood, testutil.Earth, 1e4, 1e4)
	assert.GreaterOrEqual(t, p, zero)

	// Neutral base 0.1 leaves room below the clamp.
	zero = r.ComputeTrigger(testutil.Fire, testutil.Wood, 100, 100)
	ahead := r.ComputeTrigger(testutil.Fire, testutil.Wood, 150, 100)
	require.Less(t, zero, 1.0)
	assert.Greater(t, ahead, zero)
}

func TestResolver_NeutralMonotonicInMastery(t *testing.T) {
	r := newResolver(t)

	low := r.ComputeTrigger(testutil.Fire, testutil.Wood, 0, 100)
	mid := r.ComputeTrigger(testutil.Fire, testutil.Wood, 100, 100)
	high := r.ComputeTrigger(testutil.Fire, testutil.Wood, 100, 0)

	assert.Less(t, low, mid)
	assert.Less(t, mid, high)
	assert.InDelta(t, 0.1+0.5, mid, 1e-12)
}

func TestResolver_NonFiniteMastery(t *testing.T) {
	r := newResolver(t)

	want := r.ComputeTrigger(testutil.Wood, testutil.Fire, 0, 0)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, want, r.ComputeTrigger(testutil.Wood, testutil.Fire, v, 10))
		assert.Equal(t, want, r.ComputeTrigger(testutil.Wood, testutil.Fire, 10, v))
	}
	assert.Zero(t, MasteryDelta(math.MaxFloat64, -math.MaxFloat64))
}

func TestResolver_UnknownElementIsNeutral(t *testing.T) {
	r := newResolver(t)

	rel, p := r.Resolve("void", "abyss", 0, 0)
	assert.Equal(t, element.Neutral, rel)
	want := dynamics.TriggerProbability(r.Store().BaseTrigger(element.Neutral), 0,
		r.Store().Dynamics().TriggerScale, r.Store().Dynamics().Steepness)
	assert.Equal(t, want, p)
}

func TestResolver_DamageMultiplier(t *testing.T) {
	r := newResolver(t)

	assert.InDelta(t, 1.25, r.DamageMultiplier(element.Overcoming), 1e-12)
	assert.InDelta(t, 1.0, r.DamageMultiplier(element.Same), 1e-12)
}

func BenchmarkResolver_Resolve(b *testing.B) {
	r := NewResolver(testutil.FiveElementStore(b))

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_, _ = r.Resolve(testutil.Wood, testutil.Earth, 1e6, 1e4)
	}
}
