package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func EqualWithEpsilon(a float32, b float32, epsilon float64) bool {
	return math.Abs((float64)(a-b)) <= epsilon
}

type Vector3f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func NewVector3f(x, y, z float32) Vector3f {
	return Vector3f{x, y, z}
}

func (v1 Vector3f) EqualWithEpsilon(v2 Vector3f, epsilon float64) bool {
	return math.Abs((float64)(v1.X-v2.X)) <= epsilon &&
		math.Abs((float64)(v1.Y-v2.Y)) <= epsilon &&
		math.Abs((float64)(v1.Z-v2.Z)) <= epsilon
}

func (v1 Vector3f) Equal(v2 Vector3f) bool {
	return v1.X == v2.X && v1.Y == v2.Y && v1.Z == v2.Z
}

func (v1 Vector3f) LesserOrEqualThan(v2 Vector3f) bool {
	return v1.X <= v2.X && v1.Y <= v2.Y && v1.Z <= v2.Z
}

func Add(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func Sub(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func Mul(a Vector3f, s float32) Vector3f {
	return Vector3f{a.X * s, a.Y * s, a.Z * s}
}

// MulComponents multiplies a and b component-wise.
func MulComponents(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func Min(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

func Max(a Vector3f, b Vector3f) Vector3f {
	return Vector3f{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

func (a Vector3f) Length() float32 {
	return (float32)(math.Sqrt((float64)(a.X*a.X + a.Y*a.Y + a.Z*a.Z)))
}

// Normalized returns a unit length copy of a. The zero vector is returned
// unchanged.
func Normalized(a Vector3f) Vector3f {
	if a.X == 0 && a.Y == 0 && a.Z == 0 {
		return a
	}

	invLength := 1 / a.Length()
	return Vector3f{a.X * invLength, a.Y * invLength, a.Z * invLength}
}

func (a Vector3f) Dot(b Vector3f) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Component returns the i-th component, 0 being x.
func (a Vector3f) Component(i int) float32 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func NewVector3fFromVec3(v mgl32.Vec3) Vector3f {
	return Vector3f{v[0], v[1], v[2]}
}

func (a Vector3f) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{a.X, a.Y, a.Z}
}
