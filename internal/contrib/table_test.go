package contrib

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/elemcore/internal/element"
	"github.com/udisondev/elemcore/internal/testutil"
)

func TestTableContributor(t *testing.T) {
	tc, err := NewTableContributor(Table{
		SystemID: "race",
		Priority: 900,
		Default: Bonus{
			Omni:     map[string]float64{element.StatDodge: 0.1},
			Elements: map[string]map[string]float64{testutil.Fire: {element.StatPower: 5}},
			Scaling:  map[string]map[string]float64{"strength": {element.StatPower: 0.5}},
		},
		Actors: map[string]Bonus{
			"p1": {Elements: map[string]map[string]float64{testutil.Fire: {element.StatPower: 10}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "race", tc.SystemID())
	assert.Equal(t, int64(900), tc.Priority())

	tests := []struct {
		name      string
		actor     string
		primary   map[string]float64
		elem      string
		wantStats map[string]float64
		wantOmni  map[string]float64
	}{
		{
			name:      "default only",
			actor:     "p2",
			elem:      testutil.Fire,
			wantStats: map[string]float64{element.StatPower: 5},
			wantOmni:  map[string]float64{element.StatDodge: 0.1},
		},
		{
			name:      "actor bonus adds on top",
			actor:     "p1",
			elem:      testutil.Fire,
			wantStats: map[string]float64{element.StatPower: 15},
			wantOmni:  map[string]float64{element.StatDodge: 0.1},
		},
		{
			name:      "other element",
			actor:     "p1",
			elem:      testutil.Water,
			wantStats: map[string]float64{},
			wantOmni:  map[string]float64{element.StatDodge: 0.1},
		},
		{
			name:      "primary stat scaling",
			actor:     "p2",
			primary:   map[string]float64{"strength": 20},
			elem:      testutil.Water,
			wantStats: map[string]float64{},
			wantOmni:  map[string]float64{element.StatDodge: 0.1, element.StatPower: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tc.Contribute(context.Background(), testutil.NewActor(tt.actor, tt.primary), tt.elem)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStats, c.Stats)
			assert.Equal(t, tt.wantOmni, c.Omni)
		})
	}
}

func TestNewTableContributor_EmptyID(t *testing.T) {
	_, err := NewTableContributor(Table{})
	assert.ErrorIs(t, err, ErrEmptyTableID)
}
