package websocket

import (
	"github.com/aukilabs/hitscan/geom"
	"github.com/aukilabs/hitscan/models"
	"github.com/go-gl/mathgl/mgl32"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type WorldJoinRequest struct {
	// The world to join. A new world is created when empty.
	WorldID string `json:"world_id,omitempty"`

	// The seed of a created world. The server default is used when nil.
	Seed *int `json:"seed,omitempty"`
}

type WorldJoinResponse struct {
	WorldID string `json:"world_id"`
	Seed    int    `json:"seed"`
}

type VolumeAddRequest struct {
	Min geom.Vector3f `json:"min"`
	Max geom.Vector3f `json:"max"`
	Tag uint64        `json:"tag"`
}

type VolumeAddResponse struct {
	Handle models.Handle `json:"handle"`
}

type VolumeUpdateTransformRequest struct {
	Handle models.Handle `json:"handle"`

	// Column-major 4x4 matrix. Required.
	Transform *mgl32.Mat4 `json:"transform"`
}

type RaycastRequest struct {
	Origin    geom.Vector3f `json:"origin"`
	Direction geom.Vector3f `json:"direction"`
}

// RaycastResponse only carries the hit fields when a volume was hit.
type RaycastResponse struct {
	Found bool `json:"hit"`
	*models.Hit
}

type NoiseRequest struct {
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Frequency float32 `json:"frequency"`
	Octaves   int     `json:"octaves"`
}

type NoiseResponse struct {
	Value float32 `json:"value"`
}
