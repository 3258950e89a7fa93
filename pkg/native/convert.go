package native

import (
	"cogentcore.org/core/math32"

	"github.com/mandelsoft/spaceanchors/pkg/space"
)

var componentTypes = map[space.ComponentType]SpaceComponentType{
	space.ComponentLocatable:              SpaceComponentLocatable,
	space.ComponentStorable:               SpaceComponentStorable,
	space.ComponentSharable:               SpaceComponentSharable,
	space.ComponentScenePlane:             SpaceComponentBounded2D,
	space.ComponentSceneVolume:            SpaceComponentBounded3D,
	space.ComponentSemanticClassification: SpaceComponentSemanticLabels,
	space.ComponentRoomLayout:             SpaceComponentRoomLayout,
	space.ComponentSpaceContainer:         SpaceComponentSpaceContainer,
	space.ComponentTriangleMesh:           SpaceComponentTriangleMesh,
}

func ToNativeComponentType(t space.ComponentType) SpaceComponentType {
	if n, ok := componentTypes[t]; ok {
		return n
	}
	return SpaceComponentMax
}

func FromNativeComponentType(t SpaceComponentType) space.ComponentType {
	for c, n := range componentTypes {
		if n == t {
			return c
		}
	}
	return space.ComponentUndefined
}

func ToNativeStorageLocation(l space.StorageLocation) SpaceStorageLocation {
	if l == space.StorageLocal {
		return SpaceStorageLocationLocal
	}
	return SpaceStorageLocationInvalid
}

func FromNativeStorageLocation(l SpaceStorageLocation) space.StorageLocation {
	if l == SpaceStorageLocationLocal {
		return space.StorageLocal
	}
	return space.StorageInvalid
}

func ToNativePersistenceMode(m space.PersistenceMode) SpaceStoragePersistenceMode {
	if m == space.PersistenceIndefinite {
		return SpaceStoragePersistenceIndefinite
	}
	return SpaceStoragePersistenceInvalid
}

func ToNativeFilterType(f space.QueryFilterType) SpaceQueryFilterType {
	switch f {
	case space.FilterByIds:
		return SpaceQueryFilterIds
	case space.FilterByComponentType:
		return SpaceQueryFilterComponents
	}
	return SpaceQueryFilterNone
}

// ToNativeVector maps an engine position (X forward, Y right, Z up,
// world units) to native tracking space (meters).
func ToNativeVector(v math32.Vector3, worldToMeters float32) Vector3f {
	return Vector3f{X: v.Y / worldToMeters, Y: v.Z / worldToMeters, Z: -v.X / worldToMeters}
}

func FromNativeVector(v Vector3f, worldToMeters float32) math32.Vector3 {
	return math32.Vec3(-v.Z*worldToMeters, v.X*worldToMeters, v.Y*worldToMeters)
}

func ToNativeQuat(q math32.Quat) Quatf {
	return Quatf{X: q.Y, Y: q.Z, Z: -q.X, W: -q.W}
}

func FromNativeQuat(q Quatf) math32.Quat {
	return math32.Quat{X: -q.Z, Y: q.X, Z: q.Y, W: -q.W}
}

func ToNativePose(p space.Pose, worldToMeters float32) Posef {
	return Posef{
		Orientation: ToNativeQuat(p.Orientation),
		Position:    ToNativeVector(p.Position, worldToMeters),
	}
}

func FromNativePose(p Posef, worldToMeters float32) space.Pose {
	return space.Pose{
		Position:    FromNativeVector(p.Position, worldToMeters),
		Orientation: FromNativeQuat(p.Orientation),
	}
}

// FromNativeRect maps a native plane rectangle to engine space.
// The plane lies in the Y/Z plane of the anchor.
func FromNativeRect(r Rectf) space.Bounds2D {
	return space.Bounds2D{
		Position: math32.Vec3(0, r.Pos.X, r.Pos.Y),
		Size:     math32.Vec3(0, r.Size.W, r.Size.H),
	}
}

// FromNativeBounds maps a native volume box to engine space.
func FromNativeBounds(b Boundsf) space.Bounds3D {
	return space.Bounds3D{
		Position: math32.Vec3(b.Pos.Z, b.Pos.X, b.Pos.Y),
		Size:     math32.Vec3(b.Size.D, b.Size.W, b.Size.H),
	}
}
