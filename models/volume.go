package models

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/hitscan/geom"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	ErrTypeInvalidHandle = "invalid-handle"
	ErrTypeDuplicateTag  = "duplicate-tag"
)

// Handle identifies a volume within its store. Handles are assigned in
// creation order starting at 0 and stay valid for the store lifetime.
type Handle uint32

// Hit describes the closest volume intersected by a ray.
type Hit struct {
	Handle   Handle        `json:"handle"`
	Tag      uint64        `json:"tag"`
	Distance float32       `json:"distance"`
	Point    geom.Vector3f `json:"point"`
}

// VolumeStats is a snapshot of a volume store.
type VolumeStats struct {
	VolumeCount  int    `json:"volume_count"`
	TagCount     int    `json:"tag_count"`
	RaycastCount uint64 `json:"raycast_count"`
}

// VolumeStore is an append-only registry of oriented bounding boxes that can
// be queried with rays.
type VolumeStore struct {
	// Computes the world form of a volume before it is tested. Defaults to
	// geom.ResolveWorld.
	Resolve func(geom.OBB) geom.OBB

	// Makes Create reject a tag that is already registered.
	UniqueTags bool

	mutex        sync.RWMutex
	volumes      []geom.OBB
	tags         map[uint64]int
	raycastCount atomic.Uint64
}

func (s *VolumeStore) Create(min, max geom.Vector3f, tag uint64) (Handle, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tags == nil {
		s.tags = make(map[uint64]int)
	}

	if s.UniqueTags && s.tags[tag] != 0 {
		return 0, errors.New("volume tag is already registered").
			WithType(ErrTypeDuplicateTag).
			WithTag("tag", tag)
	}

	s.volumes = append(s.volumes, geom.NewOBB(min, max, tag))
	s.tags[tag]++

	instrumentVolumeAdded()
	return Handle(len(s.volumes) - 1), nil
}

// UpdateTransform replaces the world transform of the volume at h.
func (s *VolumeStore) UpdateTransform(h Handle, transform mgl32.Mat4) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkHandle(h); err != nil {
		return err
	}

	s.volumes[h].Transform = transform
	return nil
}

// Volume returns a copy of the volume at h, as stored.
func (s *VolumeStore) Volume(h Handle) (geom.OBB, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkHandle(h); err != nil {
		return geom.OBB{}, err
	}
	return s.volumes[h], nil
}

func (s *VolumeStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.volumes)
}

// Raycast returns the closest volume hit by r. Volumes are tested in handle
// order and a later volume only wins with a strictly smaller distance.
func (s *VolumeStore) Raycast(r geom.Ray) (Hit, bool) {
	start := time.Now()
	s.raycastCount.Add(1)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	resolve := s.resolver()
	closest := (float32)(math.MaxFloat32)
	var hitVolume *geom.OBB
	var hitHandle Handle

	for i := range s.volumes {
		hit, distance := geom.IntersectOBB(r, resolve(s.volumes[i]))
		if hit && distance < closest {
			closest = distance
			hitVolume = &s.volumes[i]
			hitHandle = Handle(i)
		}
	}

	instrumentRaycast(hitVolume != nil, time.Since(start))

	if hitVolume == nil {
		return Hit{}, false
	}

	return Hit{
		Handle:   hitHandle,
		Tag:      hitVolume.Tag,
		Distance: closest,
		Point:    r.At(closest),
	}, true
}

// Region returns, in ascending order, the handles of the volumes whose world
// bounds overlap the box going from min to max.
func (s *VolumeStore) Region(min, max geom.Vector3f) []Handle {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	region := geom.NewAABB(geom.Min(min, max), geom.Max(min, max), 0)
	resolve := s.resolver()

	var handles []Handle
	for i, v := range s.volumes {
		if resolve(v).Bounds().Overlaps(region) {
			handles = append(handles, Handle(i))
		}
	}
	return handles
}

func (s *VolumeStore) Stats() VolumeStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return VolumeStats{
		VolumeCount:  len(s.volumes),
		TagCount:     len(s.tags),
		RaycastCount: s.raycastCount.Load(),
	}
}

func (s *VolumeStore) resolver() func(geom.OBB) geom.OBB {
	if s.Resolve != nil {
		return s.Resolve
	}
	return geom.ResolveWorld
}

func (s *VolumeStore) checkHandle(h Handle) error {
	if int(h) >= len(s.volumes) {
		return errors.New("volume handle is out of range").
			WithType(ErrTypeInvalidHandle).
			WithTag("handle", h).
			WithTag("volume_count", len(s.volumes))
	}
	return nil
}
