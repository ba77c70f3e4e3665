package combat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/interaction"
	"github.com/udisondev/elemcore/internal/stats"
	"github.com/udisondev/elemcore/internal/status"
	"github.com/udisondev/elemcore/internal/testutil"
)

var base = element.BaseProperties{Damage: 100, Defense: 80, CritRate: 0.05, CritDamage: 1.5, Accuracy: 0.9}

func side(id, elem string, values map[string]float64) Side {
	d := stats.Empty(id, elem)
	for k, v := range values {
		d.Values[k] = stats.Value{Element: v}
	}
	return Side{ActorID: id, Element: elem, Base: base, Stats: d}
}

func TestHitChance(t *testing.T) {
	f := DefaultFormulas()

	even := f.HitChance(side("a", "fire", nil), side("d", "wood", nil))
	assert.InDelta(t, 0.9, even, 1e-9)

	accurate := f.HitChance(side("a", "fire", map[string]float64{element.StatAccuracy: 2}), side("d", "wood", nil))
	evasive := f.HitChance(side("a", "fire", nil), side("d", "wood", map[string]float64{element.StatDodge: 2}))
	assert.Greater(t, accurate, even)
	assert.Less(t, evasive, even)
	assert.Less(t, accurate, 1.0)
	assert.Greater(t, evasive, 0.0)
}

func TestCritChance(t *testing.T) {
	f := DefaultFormulas()

	even := f.CritChance(side("a", "fire", nil), side("d", "wood", nil))
	assert.InDelta(t, 0.05, even, 1e-9)

	resisted := f.CritChance(
		side("a", "fire", map[string]float64{element.StatCritRate: 0.5}),
		side("d", "wood", map[string]float64{element.StatResistCritRate: 0.5}))
	assert.InDelta(t, even, resisted, 1e-12)

	nan := f.CritChance(side("a", "fire", map[string]float64{element.StatCritRate: math.NaN()}), side("d", "wood", nil))
	assert.InDelta(t, even, nan, 1e-12)
}

func TestCritMultiplier(t *testing.T) {
	assert.Equal(t, 1.5, CritMultiplier(side("a", "fire", nil), side("d", "wood", nil)))
	assert.Equal(t, 2.0, CritMultiplier(side("a", "fire", map[string]float64{element.StatCritDamage: 0.5}), side("d", "wood", nil)))
	assert.Equal(t, 1.0, CritMultiplier(side("a", "fire", nil), side("d", "wood", map[string]float64{element.StatResistCritDamage: 5})))
}

func TestElementalDamage(t *testing.T) {
	tests := []struct {
		name      string
		att, def  map[string]float64
		rel, crit float64
		want      float64
	}{
		{
			name: "base",
			rel:  1, crit: 1,
			want: 100 * 100 / 180.0,
		},
		{
			name: "power and defense",
			att:  map[string]float64{element.StatPower: 20},
			def:  map[string]float64{element.StatDefense: 40},
			rel:  1, crit: 1,
			want: 120 * 120 / 240.0,
		},
		{
			name: "penetration floors defense at zero",
			att:  map[string]float64{element.StatPenetration: 500},
			rel:  1, crit: 1,
			want: 100,
		},
		{
			name: "amplification minus reduction and absorption",
			att:  map[string]float64{element.StatAmplification: 0.5},
			def:  map[string]float64{element.StatReduction: 0.2, element.StatAbsorption: 0.1},
			rel:  1, crit: 1,
			want: 100 * 100 / 180.0 * 1.2,
		},
		{
			name: "fully absorbed",
			def:  map[string]float64{element.StatAbsorption: 1.5},
			rel:  1, crit: 1,
			want: 0,
		},
		{
			name: "relationship and crit",
			rel:  1.25, crit: 2,
			want: 100 * 100 / 180.0 * 2.5,
		},
		{
			name: "crit below one is ignored",
			rel:  1, crit: 0.2,
			want: 100 * 100 / 180.0,
		},
		{
			name: "negative power",
			att:  map[string]float64{element.StatPower: -150},
			rel:  1, crit: 1,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ElementalDamage(side("a", "fire", tt.att), side("d", "wood", tt.def), tt.rel, tt.crit)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func newResolver(t *testing.T) (*Resolver, *status.Engine) {
	t.Helper()
	store := testutil.FiveElementStore(t)
	ir := interaction.NewResolver(store)
	se := status.NewEngine(ir, status.Options{})
	return NewResolver(DefaultFormulas(), ir, se), se
}

func TestResolve_HitCritInteractionStatus(t *testing.T) {
	r, se := newResolver(t)

	att := side("p1", testutil.Fire, map[string]float64{element.StatMastery: 100})
	def := side("m1", testutil.Metal, nil)

	out := r.Resolve(Attack{Attacker: att, Defender: def}, Rolls{Hit: 0, Crit: 0, Interaction: 0, Status: 0})
	require.True(t, out.Hit)
	assert.True(t, out.Crit)
	assert.Equal(t, element.Overcoming, out.Relationship)
	assert.True(t, out.InteractionTriggered)
	assert.InDelta(t, 100*100/180.0*1.25*1.5, out.Damage, 1e-9)

	require.True(t, out.StatusApplied)
	assert.Equal(t, testutil.EffectBurning, out.Status.Kind)
	inst, ok := se.Get("m1", testutil.EffectBurning)
	require.True(t, ok)
	assert.Equal(t, "p1", inst.AttackerID)
}

func TestResolve_MasteryScalesInteractionDamage(t *testing.T) {
	cat := testutil.FiveElementCatalog()
	cat.Relationships.MultiplierScaling = 0.001
	cat.Relationships.MaxMultiplier = 2
	store, err := element.NewStore(cat)
	require.NoError(t, err)
	r := NewResolver(DefaultFormulas(), interaction.NewResolver(store), nil)

	att := side("p1", testutil.Fire, map[string]float64{element.StatMastery: 100})
	def := side("m1", testutil.Metal, nil)

	out := r.Resolve(Attack{Attacker: att, Defender: def}, Rolls{Hit: 0, Crit: 1, Interaction: 0})
	require.True(t, out.InteractionTriggered)
	assert.InDelta(t, 100*100/180.0*(1.25+0.1), out.Damage, 1e-9)
}

func TestResolve_Miss(t *testing.T) {
	r, _ := newResolver(t)

	att := side("p1", testutil.Fire, nil)
	def := side("m1", testutil.Metal, nil)

	out := r.Resolve(Attack{Attacker: att, Defender: def}, Rolls{Hit: 0.99, Crit: 0, Interaction: 0, Status: 0})
	assert.False(t, out.Hit)
	assert.Zero(t, out.Damage)
	assert.False(t, out.Crit)
	assert.False(t, out.StatusApplied, "burning does not apply on miss")
}

func TestResolve_NoInteractionNoMultiplier(t *testing.T) {
	r, _ := newResolver(t)

	att := side("p1", testutil.Fire, nil)
	def := side("m1", testutil.Metal, nil)

	out := r.Resolve(Attack{Attacker: att, Defender: def}, Rolls{Hit: 0, Crit: 0.99, Interaction: 1, Status: 1})
	assert.True(t, out.Hit)
	assert.False(t, out.Crit)
	assert.False(t, out.InteractionTriggered)
	assert.InDelta(t, 100*100/180.0, out.Damage, 1e-9)
	assert.False(t, out.StatusApplied)
}

func TestResolve_SameElement(t *testing.T) {
	r, _ := newResolver(t)

	att := side("p1", testutil.Water, nil)
	def := side("m1", testutil.Water, nil)

	out := r.Resolve(Attack{Attacker: att, Defender: def}, Rolls{})
	assert.Equal(t, element.Same, out.Relationship)
	assert.Zero(t, out.InteractionProbability)
	assert.False(t, out.InteractionTriggered)
	assert.False(t, out.StatusApplied)
}

func TestRandomRolls(t *testing.T) {
	for range 100 {
		r := RandomRolls()
		for _, v := range []float64{r.Hit, r.Crit, r.Interaction, r.Status} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func BenchmarkResolve(b *testing.B) {
	store := testutil.FiveElementStore(b)
	ir := interaction.NewResolver(store)
	r := NewResolver(DefaultFormulas(), ir, nil)
	a := Attack{Attacker: side("p1", testutil.Fire, nil), Defender: side("m1", testutil.Metal, nil)}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		_ = r.Resolve(a, Rolls{Hit: 0.5, Crit: 0.5, Interaction: 0.5})
	}
}
