package status

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/interaction"
	"github.com/udisondev/elemcore/internal/testutil"
)

func newEngine(t *testing.T, mutate func(*element.Catalog)) *Engine {
	t.Helper()
	cat := testutil.FiveElementCatalog()
	if mutate != nil {
		mutate(&cat)
	}
	store, err := element.NewStore(cat)
	require.NoError(t, err)
	return NewEngine(interaction.NewResolver(store), Options{TickInterval: 5 * time.Millisecond})
}

// fastDecay makes every effect fade within a few simulated seconds.
func fastDecay(c *element.Catalog) {
	for i := range c.Elements {
		for j := range c.Elements[i].StatusEffects {
			c.Elements[i].StatusEffects[j].Dynamics = element.StatusDynamics{
				IntensityGain:    0.5,
				IntensityDamping: 2,
				DecayRate:        0.5,
				RefractoryGain:   0.5,
				RefractoryDecay:  5,
			}
		}
	}
}

func req(att, def string, roll float64) TriggerRequest {
	return TriggerRequest{
		AttackerID:      "attacker",
		TargetID:        "target",
		AttackerElement: att,
		DefenderElement: def,
		Hit:             true,
		Roll:            roll,
	}
}

func TestEngine_SameElementNeverTriggers(t *testing.T) {
	e := newEngine(t, nil)

	_, ok := e.ApplyTrigger(req(testutil.Fire, testutil.Fire, 0))
	assert.False(t, ok)
	assert.Zero(t, e.Probability(req(testutil.Fire, testutil.Fire, 0)))
	assert.Empty(t, e.Active("target"))
}

func TestEngine_MissOnlyWhenApplyOnMiss(t *testing.T) {
	e := newEngine(t, nil)

	r := req(testutil.Fire, testutil.Metal, 0)
	r.Hit = false
	_, ok := e.ApplyTrigger(r)
	assert.False(t, ok, "burning needs a hit")

	r = req(testutil.Wood, testutil.Earth, 0)
	r.Hit = false
	inst, ok := e.ApplyTrigger(r)
	assert.True(t, ok, "entangled applies on miss")
	assert.Equal(t, testutil.EffectEntangled, inst.Kind)
	assert.Equal(t, testutil.Wood, inst.Element)
}

func TestEngine_DeterministicRoll(t *testing.T) {
	e := newEngine(t, nil)

	// fire -> wood is neutral: 0.1 + sigmoid(0) = 0.6
	r := req(testutil.Fire, testutil.Wood, 0)
	require.InDelta(t, 0.6, e.Probability(r), 1e-12)

	r.Roll = 0.61
	_, ok := e.ApplyTrigger(r)
	assert.False(t, ok)

	r.Roll = 0.59
	inst, ok := e.ApplyTrigger(r)
	assert.True(t, ok)
	assert.Equal(t, Active, inst.Phase)
	assert.Equal(t, 1, inst.Stacks)
}

func TestEngine_StatusStatsShiftProbability(t *testing.T) {
	e := newEngine(t, nil)

	base := req(testutil.Fire, testutil.Wood, 0)
	strong := base
	strong.StatusProbability = 0.4
	resisted := base
	resisted.StatusResistance = 0.4

	assert.Greater(t, e.Probability(strong), e.Probability(base))
	assert.Less(t, e.Probability(resisted), e.Probability(base))
}

func TestEngine_StackingUpToMax(t *testing.T) {
	e := newEngine(t, nil)
	r := req(testutil.Fire, testutil.Metal, 0)

	for i := 1; i <= 5; i++ {
		inst, ok := e.ApplyTrigger(r)
		require.True(t, ok, "application %d", i)
		assert.Equal(t, i, inst.Stacks)
	}

	// burning stacks but never refreshes: at max stacks nothing changes
	inst, ok := e.ApplyTrigger(r)
	assert.False(t, ok)
	assert.Equal(t, 5, inst.Stacks)
	assert.InDelta(t, 2.5, e.Refractory("target", testutil.EffectBurning), 1e-12)
}

func TestEngine_RefreshWithoutStacking(t *testing.T) {
	e := newEngine(t, nil)
	r := req(testutil.Water, testutil.Fire, 0)

	inst, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	require.InDelta(t, 6.0, inst.Duration, 1e-12)

	e.Tick("target", 2)
	inst, _ = e.Get("target", testutil.EffectChilled)
	require.InDelta(t, 4.0, inst.Duration, 1e-9)

	inst, ok = e.ApplyTrigger(r)
	require.True(t, ok)
	assert.Equal(t, 1, inst.Stacks)
	assert.InDelta(t, 6.0, inst.Duration, 1e-12)
}

func TestEngine_StackAndRefresh(t *testing.T) {
	e := newEngine(t, nil)
	r := req(testutil.Metal, testutil.Wood, 0)

	_, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	e.Tick("target", 3)

	inst, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	assert.Equal(t, 2, inst.Stacks)
	assert.InDelta(t, 4.0, inst.Duration, 1e-12)
}

func TestEngine_StackWithoutRefreshKeepsDuration(t *testing.T) {
	e := newEngine(t, nil)
	r := req(testutil.Fire, testutil.Metal, 0)

	_, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	e.Tick("target", 2)

	inst, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	assert.Equal(t, 2, inst.Stacks)
	assert.InDelta(t, 3.0, inst.Duration, 1e-9)
}

func TestEngine_RefractorySuppresses(t *testing.T) {
	e := newEngine(t, nil)
	r := req(testutil.Water, testutil.Fire, 0)

	// overcoming clamps to 1; after one activation refractory is 0.5
	require.Equal(t, 1.0, e.Probability(r))
	_, ok := e.ApplyTrigger(r)
	require.True(t, ok)

	r.Roll = 0.7 // p_eff = 1/1.5
	_, ok = e.ApplyTrigger(r)
	assert.False(t, ok)

	r.Roll = 0.6
	_, ok = e.ApplyTrigger(r)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, e.Refractory("target", testutil.EffectChilled), 1e-12)

	e.Tick("target", 10)
	assert.InDelta(t, 1.0*0.36787944117144233, e.Refractory("target", testutil.EffectChilled), 1e-9)
}

func TestEngine_Lifecycle(t *testing.T) {
	e := newEngine(t, fastDecay)
	r := req(testutil.Earth, testutil.Water, 0)

	inst, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	require.Equal(t, Active, inst.Phase)

	e.Tick("target", 1)
	inst, _ = e.Get("target", testutil.EffectPetrified)
	assert.Equal(t, Active, inst.Phase)

	e.Tick("target", 1)
	inst, _ = e.Get("target", testutil.EffectPetrified)
	assert.Equal(t, Decaying, inst.Phase)
	assert.Zero(t, inst.Duration)

	for range 200 {
		e.Tick("target", 0.1)
		if got, ok := e.Get("target", testutil.EffectPetrified); ok {
			assert.GreaterOrEqual(t, got.Intensity, 0.0)
		}
	}
	_, ok = e.Get("target", testutil.EffectPetrified)
	assert.False(t, ok, "expired instance must be removed")
	assert.Empty(t, e.Active("target"))
}

func TestEngine_TickIgnoresNonFiniteDt(t *testing.T) {
	for _, dt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		e := newEngine(t, fastDecay)
		before, ok := e.ApplyTrigger(req(testutil.Earth, testutil.Water, 0))
		require.True(t, ok)

		e.Tick("target", dt)
		inst, ok := e.Get("target", testutil.EffectPetrified)
		require.True(t, ok, "dt=%v", dt)
		assert.Equal(t, before.Duration, inst.Duration, "dt=%v", dt)
		assert.Equal(t, before.Intensity, inst.Intensity, "dt=%v", dt)

		for range 1000 {
			e.Tick("target", 1)
		}
		_, ok = e.Get("target", testutil.EffectPetrified)
		assert.False(t, ok, "dt=%v: instance must still expire", dt)
	}
}

func TestEngine_IntensityGrowsWithStacks(t *testing.T) {
	e := newEngine(t, nil)
	one := req(testutil.Fire, testutil.Metal, 0)
	one.TargetID = "one"
	five := one
	five.TargetID = "five"

	_, _ = e.ApplyTrigger(one)
	for range 5 {
		_, _ = e.ApplyTrigger(five)
	}
	e.Tick("one", 1)
	e.Tick("five", 1)

	a, _ := e.Get("one", testutil.EffectBurning)
	b, _ := e.Get("five", testutil.EffectBurning)
	assert.Greater(t, b.Intensity, a.Intensity)
	assert.Greater(t, a.Intensity, 10.0)
}

func TestEngine_DurationAndIntensityScaling(t *testing.T) {
	e := newEngine(t, nil)
	r := req(testutil.Water, testutil.Fire, 0)
	r.DurationBonus = 0.5
	r.DurationReduction = 0.25
	r.IntensityReduction = 2

	inst, ok := e.ApplyTrigger(r)
	require.True(t, ok)
	assert.InDelta(t, 6*1.25, inst.Duration, 1e-12)
	assert.Zero(t, inst.Intensity)
}

func TestEngine_TickAllDropsIdleActors(t *testing.T) {
	e := newEngine(t, fastDecay)

	for _, target := range []string{"a", "b", "c"} {
		r := req(testutil.Earth, testutil.Water, 0)
		r.TargetID = target
		_, ok := e.ApplyTrigger(r)
		require.True(t, ok)
	}
	require.Equal(t, 3, e.Actors())

	for range 300 {
		require.NoError(t, e.TickAll(context.Background(), 0.1))
	}
	assert.Zero(t, e.Actors())

	// A retired actor can be targeted again.
	r := req(testutil.Earth, testutil.Water, 0)
	r.TargetID = "a"
	_, ok := e.ApplyTrigger(r)
	assert.True(t, ok)
}

func TestEngine_RemoveActor(t *testing.T) {
	e := newEngine(t, nil)
	_, _ = e.ApplyTrigger(req(testutil.Fire, testutil.Metal, 0))

	assert.True(t, e.Remove("target", testutil.EffectBurning))
	assert.False(t, e.Remove("target", testutil.EffectBurning))
	assert.True(t, e.RemoveActor("target"))
	assert.False(t, e.RemoveActor("target"))
	assert.Zero(t, e.Refractory("target", testutil.EffectBurning))
}

func TestEngine_StartStop(t *testing.T) {
	e := newEngine(t, fastDecay)
	e.Start()
	e.Start()

	_, ok := e.ApplyTrigger(req(testutil.Earth, testutil.Water, 0))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		inst, ok := e.Get("target", testutil.EffectPetrified)
		return !ok || inst.Phase == Decaying
	}, 5*time.Second, 10*time.Millisecond)

	e.Stop()
	e.Stop()
}

func TestEngine_ConcurrentActors(t *testing.T) {
	e := newEngine(t, nil)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := req(testutil.Fire, testutil.Metal, 0)
			r.TargetID = []string{"a", "b", "c", "d"}[i%4]
			for range 50 {
				e.ApplyTrigger(r)
				e.Tick(r.TargetID, 0.01)
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c", "d"} {
		inst, ok := e.Get(id, testutil.EffectBurning)
		require.True(t, ok)
		assert.LessOrEqual(t, inst.Stacks, 5)
	}
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "decaying", Decaying.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
