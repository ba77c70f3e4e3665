package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/elemcore/internal/contrib"
	"github.com/udisondev/elemcore/internal/testutil"
)

var _ contrib.MasteryStore = (*MasteryRepository)(nil)

func TestMasteryRepository(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	repo := NewMasteryRepository(tdb.Pool)
	ctx := context.Background()

	t.Run("missing row is zero", func(t *testing.T) {
		tdb.Truncate(t, "actor_element_mastery")
		exp, err := repo.Experience(ctx, "p1", "fire")
		require.NoError(t, err)
		assert.Zero(t, exp)
	})

	t.Run("add accumulates", func(t *testing.T) {
		tdb.Truncate(t, "actor_element_mastery")
		exp, err := repo.AddExperience(ctx, "p1", "fire", 100)
		require.NoError(t, err)
		assert.Equal(t, 100.0, exp)

		exp, err = repo.AddExperience(ctx, "p1", "fire", 50.5)
		require.NoError(t, err)
		assert.Equal(t, 150.5, exp)

		got, err := repo.Experience(ctx, "p1", "fire")
		require.NoError(t, err)
		assert.Equal(t, 150.5, got)
	})

	t.Run("concurrent adds are atomic", func(t *testing.T) {
		tdb.Truncate(t, "actor_element_mastery")
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AddExperience(ctx, "p1", "water", 10)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		exp, err := repo.Experience(ctx, "p1", "water")
		require.NoError(t, err)
		assert.Equal(t, 200.0, exp)
	})

	t.Run("set load delete", func(t *testing.T) {
		tdb.Truncate(t, "actor_element_mastery")
		require.NoError(t, repo.Set(ctx, "p1", "fire", 10))
		require.NoError(t, repo.Set(ctx, "p1", "wood", 20))
		require.NoError(t, repo.Set(ctx, "p1", "fire", 30))
		require.NoError(t, repo.Set(ctx, "p2", "fire", 1))

		all, err := repo.LoadActor(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"fire": 30, "wood": 20}, all)

		n, err := repo.DeleteActor(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		exp, err := repo.Experience(ctx, "p2", "fire")
		require.NoError(t, err)
		assert.Equal(t, 1.0, exp)
	})

	t.Run("negative experience rejected", func(t *testing.T) {
		tdb.Truncate(t, "actor_element_mastery")
		_, err := repo.AddExperience(ctx, "p1", "fire", -5)
		assert.Error(t, err)
	})

	t.Run("mastery contributor over postgres", func(t *testing.T) {
		tdb.Truncate(t, "actor_element_mastery")
		m := contrib.NewMasteryContributor(testutil.FiveElementStore(t), repo, 1000)
		events, err := m.Train(ctx, "p1", testutil.Fire, 2e3)
		require.NoError(t, err)
		assert.Len(t, events, 2)

		c, err := m.Contribute(ctx, testutil.NewActor("p1", nil), testutil.Fire)
		require.NoError(t, err)
		assert.Greater(t, c.Stats["element_mastery"], 0.0)
	})
}

func TestMigrations(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()

	version, err := SchemaVersion(ctx, tdb.DSN)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, RollbackMigration(ctx, tdb.DSN))
	version, err = SchemaVersion(ctx, tdb.DSN)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, RunMigrations(ctx, tdb.DSN))
	version, err = SchemaVersion(ctx, tdb.DSN)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, "postgres://x:y@127.0.0.1:1/none?sslmode=disable")
	assert.Error(t, err)
}
