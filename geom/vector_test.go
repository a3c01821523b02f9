package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestEqualWithEpsilon(t *testing.T) {
	require.True(t, EqualWithEpsilon(0.1, 0.2, 0.11))
	require.False(t, EqualWithEpsilon(0.1, 0.3, 0.11))
}

func TestDot(t *testing.T) {
	xAxis := Vector3f{1, 0, 0}
	yAxis := Vector3f{0, 1, 0}

	require.Equal(t, (float32)(0), xAxis.Dot(yAxis))
	require.Equal(t, (float32)(32), Vector3f{1, 2, 3}.Dot(Vector3f{4, 5, 6}))
}

func TestVectorClass(t *testing.T) {
	zeroVector := Vector3f{0, 0, 0}
	oneVector := Vector3f{1, 1, 1}

	require.True(t, zeroVector.Equal(Vector3f{0, 0, 0}))
	require.True(t, oneVector.EqualWithEpsilon(Vector3f{0.9, 1.1, 1}, 0.11))
	require.True(t, zeroVector.LesserOrEqualThan(oneVector))
	require.False(t, oneVector.LesserOrEqualThan(zeroVector))

	require.True(t, oneVector.Equal(Add(zeroVector, oneVector)))
	require.True(t, oneVector.Equal(Sub(oneVector, zeroVector)))
	require.True(t, zeroVector.Equal(Mul(oneVector, 0)))
	require.True(t, Vector3f{2, 6, 12}.Equal(MulComponents(Vector3f{1, 2, 3}, Vector3f{2, 3, 4})))
	require.True(t, Vector3f{1, 2, 3}.Equal(Min(Vector3f{1, 5, 3}, Vector3f{4, 2, 6})))
	require.True(t, Vector3f{4, 5, 6}.Equal(Max(Vector3f{1, 5, 3}, Vector3f{4, 2, 6})))

	l1Vector := Vector3f{1, 0, 0}
	require.Equal(t, (float32)(1), l1Vector.Length())

	require.Equal(t, (float32)(1), oneVector.Component(0))
	require.Equal(t, (float32)(3), Vector3f{1, 2, 3}.Component(2))
}

func TestNormalized(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		n := Normalized(Vector3f{3, 4, 12})
		require.True(t, EqualWithEpsilon(n.Length(), 1, 0.0001))
		require.True(t, n.EqualWithEpsilon(Vector3f{3.0 / 13, 4.0 / 13, 12.0 / 13}, 0.0001))
	})

	t.Run("zero vector is left untouched", func(t *testing.T) {
		require.True(t, Vector3f{}.Equal(Normalized(Vector3f{})))
	})
}

func TestVec3Conversion(t *testing.T) {
	v := Vector3f{1, -2, 3}
	require.Equal(t, mgl32.Vec3{1, -2, 3}, v.Vec3())
	require.True(t, v.Equal(NewVector3fFromVec3(v.Vec3())))
}

func TestRayAt(t *testing.T) {
	r := NewRay(Vector3f{1, 0, 0}, Vector3f{0, 2, 0})
	require.True(t, Vector3f{1, 6, 0}.Equal(r.At(3)))
}
