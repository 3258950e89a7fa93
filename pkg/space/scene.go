package space

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// Bounds2D is the extent of a scene plane in engine space.
// The X components are always zero.
type Bounds2D struct {
	Position math32.Vector3 `json:"position"`
	Size     math32.Vector3 `json:"size"`
}

// Bounds3D is the extent of a scene volume in engine space.
type Bounds3D struct {
	Position math32.Vector3 `json:"position"`
	Size     math32.Vector3 `json:"size"`
}

// RoomLayout describes the walls, floor and ceiling of a captured room.
type RoomLayout struct {
	Ceiling UUID   `json:"ceiling"`
	Floor   UUID   `json:"floor"`
	Walls   []UUID `json:"walls,omitempty"`
}

// IsValid checks whether the layout describes a closed room:
// floor and ceiling must be known and at least
// four valid walls must be present.
func (r *RoomLayout) IsValid() bool {
	if !r.Ceiling.IsValid() || !r.Floor.IsValid() || len(r.Walls) <= 3 {
		return false
	}
	for _, w := range r.Walls {
		if !w.IsValid() {
			return false
		}
	}
	return true
}

// UUIDs returns all spaces referenced by the layout.
func (r *RoomLayout) UUIDs() []UUID {
	return append([]UUID{r.Floor, r.Ceiling}, r.Walls...)
}

func (r RoomLayout) String() string {
	return fmt.Sprintf("room{floor: %s, ceiling: %s, walls: %d}", r.Floor, r.Ceiling, len(r.Walls))
}
