package models

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/hitscan/featureflag"
	"github.com/aukilabs/hitscan/geom"
	"github.com/stretchr/testify/require"
)

func TestNewWorld(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		w := NewWorld(4, nil)

		require.NotEmpty(t, w.ID)
		require.Equal(t, 4, w.Noise.Seed())
		require.Nil(t, w.Volumes.Resolve)
		require.False(t, w.Volumes.UniqueTags)
		require.NotEqual(t, w.ID, NewWorld(4, nil).ID)
	})

	t.Run("feature flags", func(t *testing.T) {
		w := NewWorld(0, featureflag.New([]string{
			string(featureflag.FlagScaledVolumeTransforms),
			string(featureflag.FlagUniqueVolumeTags),
		}))

		require.NotNil(t, w.Volumes.Resolve)
		require.True(t, w.Volumes.UniqueTags)
	})
}

func TestWorldStats(t *testing.T) {
	w := NewWorld(9, nil)
	w.Volumes.Create(geom.Vector3f{}, geom.Vector3f{X: 1, Y: 1, Z: 1}, 3)

	stats := w.Stats()
	require.Equal(t, w.ID, stats.ID)
	require.Equal(t, 9, stats.Seed)
	require.Equal(t, 1, stats.VolumeCount)
}

func TestWorldStore(t *testing.T) {
	var store WorldStore
	require.Zero(t, store.Count())

	a := NewWorld(0, nil)
	b := NewWorld(0, nil)
	store.Add(a)
	store.Add(b)
	require.Equal(t, 2, store.Count())
	require.ElementsMatch(t, []string{a.ID, b.ID}, store.IDs())

	t.Run("get", func(t *testing.T) {
		w, err := store.Get(a.ID)
		require.NoError(t, err)
		require.Same(t, a, w)
	})

	t.Run("get unknown world", func(t *testing.T) {
		_, err := store.Get("unknown")
		require.Error(t, err)
		require.Equal(t, ErrTypeWorldNotFound, errors.Type(err))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.Remove(a.ID))
		require.Equal(t, 1, store.Count())

		_, err := store.Get(a.ID)
		require.True(t, errors.IsType(err, ErrTypeWorldNotFound))

		err = store.Remove(a.ID)
		require.True(t, errors.IsType(err, ErrTypeWorldNotFound))
	})
}
