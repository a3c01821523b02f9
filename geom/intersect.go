package geom

import (
	"math"
)

const (
	// Below this projection of the ray direction on a box axis, the ray is
	// considered parallel to the planes of that axis.
	ParallelEpsilon = (float32)(0.001)

	// Farthest distance reported by IntersectOBB.
	MaxRayDistance = (float32)(100000)
)

// IntersectAABB tests r against b with the slab method.
//
// The returned distance is the length of the vector going from the ray origin
// to the entry point, measured along the unnormalized ray direction.
func IntersectAABB(r Ray, b AABB) (bool, float32) {
	dir := Normalized(r.Direction)

	// A zero component gives an infinite reciprocal; the min/max below
	// handle it without special casing.
	invX := 1 / dir.X
	invY := 1 / dir.Y
	invZ := 1 / dir.Z

	t1 := (b.Min.X - r.Origin.X) * invX
	t2 := (b.Max.X - r.Origin.X) * invX
	t3 := (b.Min.Y - r.Origin.Y) * invY
	t4 := (b.Max.Y - r.Origin.Y) * invY
	t5 := (b.Min.Z - r.Origin.Z) * invZ
	t6 := (b.Max.Z - r.Origin.Z) * invZ

	tMin := maxf(maxf(minf(t1, t2), minf(t3, t4)), minf(t5, t6))
	tMax := minf(minf(maxf(t1, t2), maxf(t3, t4)), maxf(t5, t6))

	// whole box is behind the ray:
	if tMax < 0 {
		return false, -1
	}

	if tMin > tMax {
		return false, -1
	}

	return true, Mul(r.Direction, tMin).Length()
}

// IntersectOBB tests r against a resolved OBB using the slab method in the
// basis formed by the box transform axes. The box spans [Min, Max] along each
// axis, relative to Center.
func IntersectOBB(r Ray, b OBB) (bool, float32) {
	tMin := (float32)(0)
	tMax := MaxRayDistance

	delta := Sub(b.Center, r.Origin)

	for i := 0; i < 3; i++ {
		axis := b.Axis(i)
		boxMin := b.Min.Component(i)
		boxMax := b.Max.Component(i)

		e := axis.Dot(delta)
		f := r.Direction.Dot(axis)

		if math.Abs((float64)(f)) > (float64)(ParallelEpsilon) {
			t1 := (e + boxMin) / f
			t2 := (e + boxMax) / f
			if t1 > t2 {
				t1, t2 = t2, t1
			}

			if t2 < tMax {
				tMax = t2
			}
			if t1 > tMin {
				tMin = t1
			}
			if tMax < tMin {
				return false, -1
			}
			continue
		}

		// parallel to the slab, the origin must already be inside it. The
		// origin lies at -e along the axis, relative to the center:
		if e+boxMin > 0 || e+boxMax < 0 {
			return false, -1
		}
	}

	return true, tMin
}

// minf and maxf return their first argument when the comparison is false,
// including when one side is NaN.
func minf(a, b float32) float32 {
	if b < a {
		return b
	}
	return a
}

func maxf(a, b float32) float32 {
	if a < b {
		return b
	}
	return a
}
