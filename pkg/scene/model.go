package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// CaptureMode controls whether a scene capture is requested if
// no valid room is found.
type CaptureMode int

const (
	CaptureNever CaptureMode = iota
	CaptureOnce
	CaptureAlways
)

func (m CaptureMode) String() string {
	switch m {
	case CaptureNever:
		return "never"
	case CaptureOnce:
		return "once"
	case CaptureAlways:
		return "always"
	}
	return fmt.Sprintf("CaptureMode(%d)", int(m))
}

func ParseCaptureMode(s string) (CaptureMode, error) {
	switch strings.ToLower(s) {
	case "never", "":
		return CaptureNever, nil
	case "once":
		return CaptureOnce, nil
	case "always":
		return CaptureAlways, nil
	}
	return CaptureNever, fmt.Errorf("invalid capture mode %q", s)
}

// Element is a classified scene space.
type Element struct {
	Handle space.Handle    `json:"handle"`
	UUID   space.UUID      `json:"uuid"`
	Labels []string        `json:"labels,omitempty"`
	Plane  *space.Bounds2D `json:"plane,omitempty"`
	Volume *space.Bounds3D `json:"volume,omitempty"`
}

func (e *Element) HasLabel(l string) bool {
	return slices.Contains(e.Labels, l)
}

// Scene is the model of a captured room.
type Scene struct {
	Room     space.RoomLayout `json:"room"`
	Elements []*Element       `json:"elements"`
}

func (s *Scene) Element(id space.UUID) *Element {
	for _, e := range s.Elements {
		if e.UUID == id {
			return e
		}
	}
	return nil
}

func (s *Scene) Floor() *Element {
	return s.Element(s.Room.Floor)
}

func (s *Scene) Ceiling() *Element {
	return s.Element(s.Room.Ceiling)
}

func (s *Scene) Walls() []*Element {
	var r []*Element
	for _, w := range s.Room.Walls {
		if e := s.Element(w); e != nil {
			r = append(r, e)
		}
	}
	return r
}

// WithLabel returns all elements carrying the given semantic label.
func (s *Scene) WithLabel(l string) []*Element {
	var r []*Element
	for _, e := range s.Elements {
		if e.HasLabel(l) {
			r = append(r, e)
		}
	}
	return r
}
