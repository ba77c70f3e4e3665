package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMergeRule(t *testing.T) {
	tests := []struct {
		in      string
		want    MergeRule
		wantErr bool
	}{
		{"", Sum, false},
		{"sum", Sum, false},
		{" MAX ", Max, false},
		{"min", Min, false},
		{"override", Override, false},
		{"first", Override, false},
		{"avg", Sum, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMergeRule(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) MergeRule {
	t.Helper()
	r, err := ParseMergeRule(s)
	require.NoError(t, err)
	return r
}

func TestBuilder_Rules(t *testing.T) {
	rules := Rules{
		"crit_rate":     Max,
		"dodge_rate":    Min,
		"power_point":   Sum,
		"accurate_rate": Override,
	}
	b := NewBuilder(rules)

	// priority-descending feed
	for _, d := range []float64{0.3, 0.1, 0.5} {
		b.AddElement("crit_rate", d)
		b.AddElement("dodge_rate", d)
		b.AddElement("power_point", d*100)
		b.AddElement("accurate_rate", d)
		b.AddElement("block_rate", d)
	}
	b.AddOmni("power_point", 7)
	b.AddOmni("crit_rate", 0.05)

	got := b.Build("actor", "fire")

	want := map[string]Value{
		"crit_rate":     {Omni: 0.05, Element: 0.5},
		"dodge_rate":    {Element: 0.1},
		"power_point":   {Omni: 7, Element: 90},
		"accurate_rate": {Element: 0.3},
		"block_rate":    {Element: 0.9},
	}
	if diff := cmp.Diff(want, got.Values, cmpFloat()); diff != "" {
		t.Errorf("merged values mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 97.0, got.Total("power_point"), 1e-9)
	assert.InDelta(t, 0.55, got.Total("crit_rate"), 1e-9)
	assert.Zero(t, got.Total("unknown"))
	assert.Equal(t, []string{"accurate_rate", "block_rate", "crit_rate", "dodge_rate", "power_point"}, got.Stats())
}

func TestBuilder_OmniIsAdditiveNotMultiplicative(t *testing.T) {
	b := NewBuilder(nil)
	b.AddElement("power_point", 10)
	b.AddOmni("power_point", 3)

	d := b.Build("a", "water")
	assert.Equal(t, Value{Omni: 3, Element: 10}, d.Get("power_point"))
	assert.Equal(t, 13.0, d.Total("power_point"))
	assert.Equal(t, 3.0, d.Omni("power_point"))
	assert.Equal(t, 10.0, d.ElementPart("power_point"))
}

func TestDerivedStats_Clone(t *testing.T) {
	d := Empty("a", "fire")
	d.Values["power_point"] = Value{Element: 1}

	c := d.Clone()
	c.Values["power_point"] = Value{Element: 2}

	assert.Equal(t, 1.0, d.Total("power_point"))
	assert.Equal(t, map[string]float64{"power_point": 1}, d.Totals())

	var zero DerivedStats
	assert.NotNil(t, zero.Clone().Values)
}

func cmpFloat() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
}
