package models

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/hitscan/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func unitBox(center geom.Vector3f) (geom.Vector3f, geom.Vector3f) {
	return geom.Sub(center, geom.Vector3f{X: 1, Y: 1, Z: 1}), geom.Add(center, geom.Vector3f{X: 1, Y: 1, Z: 1})
}

func TestVolumeStoreCreate(t *testing.T) {
	var store VolumeStore

	for i := 0; i < 3; i++ {
		min, max := unitBox(geom.Vector3f{X: float32(i) * 10})
		h, err := store.Create(min, max, uint64(100+i))
		require.NoError(t, err)
		require.Equal(t, Handle(i), h)
	}
	require.Equal(t, 3, store.Len())

	v, err := store.Volume(1)
	require.NoError(t, err)
	require.Equal(t, uint64(101), v.Tag)
	require.True(t, v.Center.Equal(geom.Vector3f{X: 10}))
	require.True(t, v.Extents.Equal(geom.Vector3f{X: 1, Y: 1, Z: 1}))
	require.Equal(t, mgl32.Ident4(), v.Transform)
}

func TestVolumeStoreInvalidHandle(t *testing.T) {
	var store VolumeStore
	min, max := unitBox(geom.Vector3f{})
	_, err := store.Create(min, max, 1)
	require.NoError(t, err)

	t.Run("update transform", func(t *testing.T) {
		err := store.UpdateTransform(1, mgl32.Translate3D(1, 2, 3))
		require.Error(t, err)
		require.Equal(t, ErrTypeInvalidHandle, errors.Type(err))
	})

	t.Run("lookup", func(t *testing.T) {
		_, err := store.Volume(42)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeInvalidHandle))
	})

	t.Run("empty store", func(t *testing.T) {
		var empty VolumeStore
		err := empty.UpdateTransform(0, mgl32.Ident4())
		require.True(t, errors.IsType(err, ErrTypeInvalidHandle))
	})
}

func TestVolumeStoreRaycast(t *testing.T) {
	t.Run("single volume hit", func(t *testing.T) {
		var store VolumeStore
		for i := 0; i < 3; i++ {
			min, max := unitBox(geom.Vector3f{X: float32(i) * 10})
			store.Create(min, max, uint64(100*(i+1)))
		}

		ray := geom.NewRay(geom.Vector3f{X: 10, Z: -10}, geom.Vector3f{Z: 1})
		hit, ok := store.Raycast(ray)

		require.True(t, ok)
		require.Equal(t, Handle(1), hit.Handle)
		require.Equal(t, uint64(200), hit.Tag)
		require.InDelta(t, 9, hit.Distance, 1e-4)
		require.True(t, hit.Point.EqualWithEpsilon(ray.At(hit.Distance), 1e-6))
		require.True(t, hit.Point.EqualWithEpsilon(geom.Vector3f{X: 10, Z: -1}, 1e-4))
	})

	t.Run("closest volume wins regardless of order", func(t *testing.T) {
		nearMin, nearMax := unitBox(geom.Vector3f{})
		farMin, farMax := unitBox(geom.Vector3f{Z: 5})
		ray := geom.NewRay(geom.Vector3f{Z: -10}, geom.Vector3f{Z: 1})

		var farFirst VolumeStore
		farFirst.Create(farMin, farMax, 1)
		farFirst.Create(nearMin, nearMax, 2)

		hit, ok := farFirst.Raycast(ray)
		require.True(t, ok)
		require.Equal(t, uint64(2), hit.Tag)
		require.Equal(t, Handle(1), hit.Handle)

		var nearFirst VolumeStore
		nearFirst.Create(nearMin, nearMax, 2)
		nearFirst.Create(farMin, farMax, 1)

		hit, ok = nearFirst.Raycast(ray)
		require.True(t, ok)
		require.Equal(t, uint64(2), hit.Tag)
		require.Equal(t, Handle(0), hit.Handle)
	})

	t.Run("ties go to the first handle", func(t *testing.T) {
		var store VolumeStore
		min, max := unitBox(geom.Vector3f{})
		store.Create(min, max, 7)
		store.Create(min, max, 8)

		hit, ok := store.Raycast(geom.NewRay(geom.Vector3f{Z: -10}, geom.Vector3f{Z: 1}))
		require.True(t, ok)
		require.Equal(t, Handle(0), hit.Handle)
		require.Equal(t, uint64(7), hit.Tag)
	})

	t.Run("no hit", func(t *testing.T) {
		var store VolumeStore
		min, max := unitBox(geom.Vector3f{})
		store.Create(min, max, 7)

		hit, ok := store.Raycast(geom.NewRay(geom.Vector3f{X: 5, Z: -10}, geom.Vector3f{Z: 1}))
		require.False(t, ok)
		require.Equal(t, Hit{}, hit)

		hit, ok = (&VolumeStore{}).Raycast(geom.NewRay(geom.Vector3f{}, geom.Vector3f{Z: 1}))
		require.False(t, ok)
		require.Equal(t, Hit{}, hit)
	})

	t.Run("updated translation moves the volume", func(t *testing.T) {
		var store VolumeStore
		min, max := unitBox(geom.Vector3f{})
		h, _ := store.Create(min, max, 7)
		require.NoError(t, store.UpdateTransform(h, mgl32.Translate3D(0, 5, 0)))

		_, ok := store.Raycast(geom.NewRay(geom.Vector3f{Z: -10}, geom.Vector3f{Z: 1}))
		require.False(t, ok)

		hit, ok := store.Raycast(geom.NewRay(geom.Vector3f{Y: 5, Z: -10}, geom.Vector3f{Z: 1}))
		require.True(t, ok)
		require.InDelta(t, 9, hit.Distance, 1e-4)

		v, err := store.Volume(h)
		require.NoError(t, err)
		world := geom.ResolveWorld(v)
		require.True(t, world.Center.Equal(geom.Vector3f{Y: 5}))
		require.True(t, world.Extents.Equal(v.Extents))
		require.True(t, v.Center.Equal(geom.Vector3f{}))
	})

	t.Run("rotation leaves the local extents untouched", func(t *testing.T) {
		var store VolumeStore
		h, _ := store.Create(geom.Vector3f{X: -1, Y: -1, Z: -2}, geom.Vector3f{X: 1, Y: 1, Z: 2}, 7)
		transform := mgl32.Translate3D(0, 0, 3).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))
		require.NoError(t, store.UpdateTransform(h, transform))

		v, _ := store.Volume(h)
		world := geom.ResolveWorld(v)
		require.True(t, world.Center.Equal(geom.Vector3f{Z: 3}))
		require.True(t, world.Min.Equal(geom.Vector3f{X: -1, Y: -1, Z: -2}))
		require.True(t, world.Max.Equal(geom.Vector3f{X: 1, Y: 1, Z: 2}))
		require.True(t, world.Extents.Equal(geom.Vector3f{X: 1, Y: 1, Z: 2}))
	})

	t.Run("scaled resolution", func(t *testing.T) {
		store := VolumeStore{Resolve: geom.ResolveWorldScaled}
		min, max := unitBox(geom.Vector3f{})
		h, _ := store.Create(min, max, 7)
		require.NoError(t, store.UpdateTransform(h, mgl32.Scale3D(2, 2, 2)))

		hit, ok := store.Raycast(geom.NewRay(geom.Vector3f{Z: -10}, geom.Vector3f{Z: 1}))
		require.True(t, ok)
		require.InDelta(t, 8, hit.Distance, 1e-4)
	})
}

func TestVolumeStoreTags(t *testing.T) {
	min, max := unitBox(geom.Vector3f{})

	t.Run("duplicates are allowed by default", func(t *testing.T) {
		var store VolumeStore
		_, err := store.Create(min, max, 7)
		require.NoError(t, err)
		_, err = store.Create(min, max, 7)
		require.NoError(t, err)

		stats := store.Stats()
		require.Equal(t, 2, stats.VolumeCount)
		require.Equal(t, 1, stats.TagCount)
	})

	t.Run("unique tags", func(t *testing.T) {
		store := VolumeStore{UniqueTags: true}
		_, err := store.Create(min, max, 7)
		require.NoError(t, err)

		_, err = store.Create(min, max, 7)
		require.Error(t, err)
		require.Equal(t, ErrTypeDuplicateTag, errors.Type(err))
		require.Equal(t, 1, store.Len())

		_, err = store.Create(min, max, 8)
		require.NoError(t, err)
	})
}

func TestVolumeStoreRegion(t *testing.T) {
	var store VolumeStore
	for i := 0; i < 3; i++ {
		min, max := unitBox(geom.Vector3f{X: float32(i) * 10})
		store.Create(min, max, uint64(i))
	}

	require.Equal(t, []Handle{1, 2}, store.Region(geom.Vector3f{X: 8, Y: -5, Z: -5}, geom.Vector3f{X: 25, Y: 5, Z: 5}))
	require.Equal(t, []Handle{1, 2}, store.Region(geom.Vector3f{X: 25, Y: 5, Z: 5}, geom.Vector3f{X: 8, Y: -5, Z: -5}))
	require.Empty(t, store.Region(geom.Vector3f{X: 100}, geom.Vector3f{X: 101, Y: 1, Z: 1}))

	require.NoError(t, store.UpdateTransform(0, mgl32.Translate3D(15, 0, 0)))
	require.Equal(t, []Handle{0, 1, 2}, store.Region(geom.Vector3f{X: 8, Y: -5, Z: -5}, geom.Vector3f{X: 25, Y: 5, Z: 5}))
}

func TestVolumeStoreStats(t *testing.T) {
	var store VolumeStore
	min, max := unitBox(geom.Vector3f{})
	store.Create(min, max, 1)
	store.Create(min, max, 2)

	store.Raycast(geom.NewRay(geom.Vector3f{Z: -10}, geom.Vector3f{Z: 1}))
	store.Raycast(geom.NewRay(geom.Vector3f{Z: -10}, geom.Vector3f{Z: -1}))

	require.Equal(t, VolumeStats{
		VolumeCount:  2,
		TagCount:     2,
		RaycastCount: 2,
	}, store.Stats())
}
