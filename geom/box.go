package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned box defined by its min and max corners.
type AABB struct {
	Min Vector3f
	Max Vector3f
	Tag uint64
}

func NewAABB(min, max Vector3f, tag uint64) AABB {
	return AABB{
		Min: min,
		Max: max,
		Tag: tag,
	}
}

func (b AABB) Overlaps(other AABB) bool {
	return b.Min.LesserOrEqualThan(other.Max) && other.Min.LesserOrEqualThan(b.Max)
}

// OBB is a box expressed in the local space of an object and placed in the
// world by Transform.
//
// Min and Max are the local corners as given at creation. They are kept as
// is and are not re-ordered per axis.
type OBB struct {
	Center  Vector3f
	Min     Vector3f
	Max     Vector3f
	Extents Vector3f // Half-Extents!
	Tag     uint64

	// Column-major world transform. Columns 0 to 2 are the box axes and
	// column 3 is the world position.
	Transform mgl32.Mat4
}

func NewOBB(min, max Vector3f, tag uint64) OBB {
	extents := Mul(Sub(max, min), 0.5)

	return OBB{
		Center:    Add(min, extents),
		Min:       min,
		Max:       max,
		Extents:   extents,
		Tag:       tag,
		Transform: mgl32.Ident4(),
	}
}

// Axis returns the i-th orientation axis of the box transform.
func (b OBB) Axis(i int) Vector3f {
	return NewVector3fFromVec3(b.Transform.Col(i).Vec3())
}

// Translation returns the world position held by the box transform.
func (b OBB) Translation() Vector3f {
	return NewVector3fFromVec3(b.Transform.Col(3).Vec3())
}

// Bounds returns the world-space axis-aligned box enclosing a resolved OBB.
// The transform axes are expected to be orthonormal, which is the case for
// rigid transforms and for boxes returned by ResolveWorldScaled.
func (b OBB) Bounds() AABB {
	axes := [3]Vector3f{b.Axis(0), b.Axis(1), b.Axis(2)}

	lo := Vector3f{}
	hi := Vector3f{}
	for i, axis := range axes {
		a := Mul(axis, b.Min.Component(i))
		c := Mul(axis, b.Max.Component(i))
		lo = Add(lo, Min(a, c))
		hi = Add(hi, Max(a, c))
	}

	return AABB{
		Min: Add(b.Center, lo),
		Max: Add(b.Center, hi),
		Tag: b.Tag,
	}
}

// ResolveWorld returns the transient world form of b used by raycasts.
//
// Only the center is moved: it becomes the transform translation. Min, Max
// and Extents are copied untouched, so a scale held by the transform is not
// reflected in the box size.
func ResolveWorld(b OBB) OBB {
	return OBB{
		Center:    b.Translation(),
		Min:       b.Min,
		Max:       b.Max,
		Extents:   b.Extents,
		Tag:       b.Tag,
		Transform: b.Transform,
	}
}

// ResolveWorldScaled is like ResolveWorld but folds the length of each
// transform axis into the box corners and extents. The returned transform
// holds unit axes.
func ResolveWorldScaled(b OBB) OBB {
	out := ResolveWorld(b)

	var scale [3]float32
	for i := 0; i < 3; i++ {
		axis := b.Transform.Col(i).Vec3()
		scale[i] = axis.Len()
		if scale[i] == 0 {
			scale[i] = 1
			continue
		}
		out.Transform.SetCol(i, axis.Mul(1/scale[i]).Vec4(0))
	}

	s := Vector3f{scale[0], scale[1], scale[2]}
	out.Min = MulComponents(b.Min, s)
	out.Max = MulComponents(b.Max, s)
	out.Extents = MulComponents(b.Extents, s)
	return out
}
