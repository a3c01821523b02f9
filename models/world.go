package models

import (
	"sort"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/hitscan/featureflag"
	"github.com/aukilabs/hitscan/geom"
	"github.com/aukilabs/hitscan/noise"
	"github.com/google/uuid"
)

const (
	ErrTypeWorldNotFound = "world-not-found"
)

// World owns the volumes and the noise seed used by a set of callers. Worlds
// are independent from each other.
type World struct {
	ID      string
	Volumes *VolumeStore
	Noise   *noise.Generator
}

// NewWorld creates a world with a random id. Feature flags select how volumes
// are resolved in world space and whether volume tags must be unique.
func NewWorld(seed int, flags featureflag.FeatureFlag) *World {
	volumes := &VolumeStore{}

	flags.IfSet(featureflag.FlagScaledVolumeTransforms, func() {
		volumes.Resolve = geom.ResolveWorldScaled
	})
	flags.IfSet(featureflag.FlagUniqueVolumeTags, func() {
		volumes.UniqueTags = true
	})

	return &World{
		ID:      uuid.New().String(),
		Volumes: volumes,
		Noise:   noise.NewGenerator(seed),
	}
}

// WorldStats is a snapshot of a world.
type WorldStats struct {
	ID string `json:"world_id"`
	VolumeStats
	Seed int `json:"seed"`
}

func (w *World) Stats() WorldStats {
	return WorldStats{
		ID:          w.ID,
		VolumeStats: w.Volumes.Stats(),
		Seed:        w.Noise.Seed(),
	}
}

type WorldStore struct {
	initOnce sync.Once
	mutex    sync.RWMutex
	worlds   map[string]*World
}

func (s *WorldStore) init() {
	s.worlds = map[string]*World{}
}

func (s *WorldStore) Add(w *World) {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.worlds[w.ID] = w
	instrumentIncreaseWorldGauge()
}

func (s *WorldStore) Remove(id string) error {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	w, ok := s.worlds[id]
	if !ok {
		return worldNotFound(id)
	}
	delete(s.worlds, id)

	instrumentDecreaseWorldGauge(w.Volumes.Len())
	return nil
}

func (s *WorldStore) Get(id string) (*World, error) {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	w, ok := s.worlds[id]
	if !ok {
		return nil, worldNotFound(id)
	}
	return w, nil
}

// IDs returns the ids of the stored worlds, sorted.
func (s *WorldStore) IDs() []string {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.worlds))
	for id := range s.worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *WorldStore) Count() int {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.worlds)
}

func worldNotFound(id string) error {
	return errors.New("world not found").
		WithType(ErrTypeWorldNotFound).
		WithTag("world_id", id)
}
