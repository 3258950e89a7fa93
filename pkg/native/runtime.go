package native

import (
	"fmt"

	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Vector3f is a position in native tracking space
// (x right, y up, z backward, meters).
type Vector3f struct {
	X, Y, Z float32
}

type Quatf struct {
	X, Y, Z, W float32
}

type Posef struct {
	Orientation Quatf
	Position    Vector3f
}

type Vector2f struct {
	X, Y float32
}

type Sizef struct {
	W, H float32
}

// Rectf is the two-dimensional bounding box of a space.
type Rectf struct {
	Pos  Vector2f
	Size Sizef
}

type Size3f struct {
	W, H, D float32
}

// Boundsf is the three-dimensional bounding box of a space.
type Boundsf struct {
	Pos  Vector3f
	Size Size3f
}

type TrackingOrigin int32

const (
	TrackingOriginEyeLevel   TrackingOrigin = 0
	TrackingOriginFloorLevel TrackingOrigin = 1
	TrackingOriginStage      TrackingOrigin = 2
)

// SpaceComponentType is the native component type code.
type SpaceComponentType int32

const (
	SpaceComponentLocatable      SpaceComponentType = 0
	SpaceComponentStorable       SpaceComponentType = 1
	SpaceComponentSharable       SpaceComponentType = 2
	SpaceComponentBounded2D      SpaceComponentType = 3
	SpaceComponentBounded3D      SpaceComponentType = 4
	SpaceComponentSemanticLabels SpaceComponentType = 5
	SpaceComponentRoomLayout     SpaceComponentType = 6
	SpaceComponentSpaceContainer SpaceComponentType = 7
	SpaceComponentTriangleMesh   SpaceComponentType = 8
	SpaceComponentMax            SpaceComponentType = 0x7fffffff
)

func (t SpaceComponentType) String() string {
	return fmt.Sprintf("%s(%d)", FromNativeComponentType(t), int32(t))
}

type SpaceStorageLocation int32

const (
	SpaceStorageLocationInvalid SpaceStorageLocation = 0
	SpaceStorageLocationLocal   SpaceStorageLocation = 1
)

type SpaceStoragePersistenceMode int32

const (
	SpaceStoragePersistenceInvalid    SpaceStoragePersistenceMode = 0
	SpaceStoragePersistenceIndefinite SpaceStoragePersistenceMode = 1
)

type SpaceQueryType int32

const (
	SpaceQueryTypeAction SpaceQueryType = 0
)

type SpaceQueryActionType int32

const (
	SpaceQueryActionLoad SpaceQueryActionType = 0
)

type SpaceQueryFilterType int32

const (
	SpaceQueryFilterNone       SpaceQueryFilterType = 0
	SpaceQueryFilterIds        SpaceQueryFilterType = 1
	SpaceQueryFilterComponents SpaceQueryFilterType = 2
)

const (
	// MaxQueryIds is the capacity of the id filter of a native query.
	MaxQueryIds = 1024
	// MaxQueryComponentTypes is the capacity of the component filter
	// of a native query.
	MaxQueryComponentTypes = 16
	// SemanticLabelsCapacity is the buffer size used to retrieve
	// semantic labels.
	SemanticLabelsCapacity = 1024
)

type SpatialAnchorCreateInfo struct {
	BaseTracking TrackingOrigin
	PoseInSpace  Posef
	Time         float64
}

type SpaceQueryInfo struct {
	QueryType      SpaceQueryType
	MaxQuerySpaces int32
	Timeout        float64
	Location       SpaceStorageLocation
	ActionType     SpaceQueryActionType
	FilterType     SpaceQueryFilterType
	IdInfo         []space.UUID
	ComponentsInfo []SpaceComponentType
}

type SpaceQueryResult struct {
	Space space.Handle
	UUID  space.UUID
}

// RoomLayoutInfo describes the layout of a room space. The wall
// UUIDs are delivered into a caller provided buffer.
type RoomLayoutInfo struct {
	Ceiling   space.UUID
	Floor     space.UUID
	WallCount int
}

// Runtime is the capability surface of the native XR runtime
// used for anchor handling. All request operations are asynchronous:
// they return a request id, whose completion is reported later by
// an event delivered through PollEvent.
type Runtime interface {
	Initialized() bool
	TrackingOrigin() TrackingOrigin
	TimeInSeconds() float64

	// PollEvent returns the next queued event. SuccessEventUnavailable
	// indicates an empty queue.
	PollEvent() (EventDataBuffer, Result)

	CreateSpatialAnchor(info *SpatialAnchorCreateInfo) (space.RequestId, Result)
	DestroySpace(h space.Handle) Result

	SetSpaceComponentStatus(h space.Handle, t SpaceComponentType, enable bool, timeout float64) (space.RequestId, Result)
	GetSpaceComponentStatus(h space.Handle, t SpaceComponentType) (enabled bool, pending bool, r Result)

	SaveSpace(h space.Handle, location SpaceStorageLocation, mode SpaceStoragePersistenceMode) (space.RequestId, Result)
	EraseSpace(h space.Handle, location SpaceStorageLocation) (space.RequestId, Result)

	QuerySpaces(info *SpaceQueryInfo) (space.RequestId, Result)
	// RetrieveSpaceQueryResults copies the results of a query into buf.
	// It always returns the number of available results, a nil or
	// too small buffer just reports the required size.
	RetrieveSpaceQueryResults(id space.RequestId, buf []SpaceQueryResult) (int, Result)

	GetSpaceBoundingBox2D(h space.Handle) (Rectf, Result)
	GetSpaceBoundingBox3D(h space.Handle) (Boundsf, Result)
	// GetSpaceSemanticLabels copies a comma separated label list into buf
	// and returns the used size.
	GetSpaceSemanticLabels(h space.Handle, buf []byte) (int, Result)
	GetSpaceRoomLayout(h space.Handle, walls []space.UUID) (RoomLayoutInfo, Result)

	RequestSceneCapture(request string) (space.RequestId, Result)
}
