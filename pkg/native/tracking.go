package native

import (
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

// DefaultWorldToMeters is the number of world units per meter.
const DefaultWorldToMeters = 100

// TrackingProvider supplies the relation between the engine world
// and the native tracking space.
type TrackingProvider interface {
	// TrackingToWorld provides the transformation from tracking space
	// to world space, if currently known.
	TrackingToWorld() (space.Transform, bool)
	WorldToMetersScale() float32
}

// StaticTracking is a settable TrackingProvider.
type StaticTracking struct {
	lock      sync.Mutex
	transform space.Transform
	valid     bool
	scale     float32
}

var _ TrackingProvider = (*StaticTracking)(nil)

func NewStaticTracking(t space.Transform, scale ...float32) *StaticTracking {
	return &StaticTracking{
		transform: t,
		valid:     true,
		scale:     utils.OptionalDefaulted[float32](DefaultWorldToMeters, scale...),
	}
}

func (s *StaticTracking) Set(t space.Transform) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.transform = t
	s.valid = true
}

// Invalidate marks the tracking space as unavailable.
func (s *StaticTracking) Invalidate() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.valid = false
}

func (s *StaticTracking) TrackingToWorld() (space.Transform, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.transform, s.valid
}

func (s *StaticTracking) WorldToMetersScale() float32 {
	return s.scale
}
