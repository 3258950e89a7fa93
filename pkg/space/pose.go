package space

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// Pose is a location and orientation in engine space
// (X forward, Y right, Z up, centimeters).
type Pose struct {
	Position    math32.Vector3 `json:"position"`
	Orientation math32.Quat    `json:"orientation"`
}

// Identity is the neutral rotation.
var Identity = math32.Quat{W: 1}

func NewPose(x, y, z float32) Pose {
	return Pose{
		Position:    math32.Vec3(x, y, z),
		Orientation: Identity,
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%g,%g,%g)/(%g,%g,%g,%g)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W)
}

// Transform is a rigid transformation (rotation followed by a translation).
type Transform struct {
	Rotation    math32.Quat    `json:"rotation"`
	Translation math32.Vector3 `json:"translation"`
}

var IdentityTransform = Transform{Rotation: Identity}

// Inverse returns the inverse of a rigid transformation
// with a unit quaternion rotation.
func (t Transform) Inverse() Transform {
	inv := Conjugate(t.Rotation)
	return Transform{
		Rotation:    inv,
		Translation: t.Translation.MulScalar(-1).MulQuat(inv),
	}
}

// Apply maps a pose from the source into the target space of the
// transformation.
func (t Transform) Apply(p Pose) Pose {
	rot := t.Rotation
	return Pose{
		Position:    p.Position.MulQuat(rot).Add(t.Translation),
		Orientation: rot.Mul(p.Orientation),
	}
}

// Conjugate is the inverse of a unit quaternion.
func Conjugate(q math32.Quat) math32.Quat {
	return math32.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}
