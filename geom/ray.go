package geom

// Ray is a half-line starting at Origin. Direction does not need to be
// normalized.
type Ray struct {
	Origin    Vector3f `json:"origin"`
	Direction Vector3f `json:"direction"`
}

func NewRay(origin, direction Vector3f) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
	}
}

// At returns the point reached after travelling t times Direction from
// Origin.
func (r Ray) At(t float32) Vector3f {
	return Add(r.Origin, Mul(r.Direction, t))
}
