package native

import (
	"errors"
	"strings"
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/space"
)

var ErrTrackingUnavailable = errors.New("tracking space unavailable")

// Adapter translates anchor operations into native runtime calls.
// A call either yields a request id accepted by the runtime or
// an error. Rejected calls never provide a request id.
type Adapter struct {
	runtime  Runtime
	tracking TrackingProvider
}

func NewAdapter(rt Runtime, tracking TrackingProvider) *Adapter {
	return &Adapter{
		runtime:  rt,
		tracking: tracking,
	}
}

func (a *Adapter) Runtime() Runtime {
	return a.runtime
}

func (a *Adapter) Tracking() TrackingProvider {
	return a.tracking
}

func (a *Adapter) check(call string, r Result) error {
	err := Check(call, r)
	if err != nil {
		log.Warn("{{call}} failed: {{result}}", "call", call, "result", r)
	}
	return err
}

func (a *Adapter) request(call string, id space.RequestId, r Result) (space.RequestId, error) {
	if err := a.check(call, r); err != nil {
		return 0, err
	}
	log.Debug("{{call}} accepted with request id {{request}}", "call", call, "request", id)
	return id, nil
}

// CreateAnchor requests a new spatial anchor for a world pose.
func (a *Adapter) CreateAnchor(pose space.Pose) (space.RequestId, error) {
	if !a.runtime.Initialized() {
		return a.request("CreateSpatialAnchor", 0, FailureNotInitialized)
	}
	trackingToWorld, ok := a.tracking.TrackingToWorld()
	if !ok {
		log.Warn("cannot create anchor: {{error}}", "error", ErrTrackingUnavailable)
		return 0, ErrTrackingUnavailable
	}
	local := trackingToWorld.Inverse().Apply(pose)

	info := &SpatialAnchorCreateInfo{
		BaseTracking: a.runtime.TrackingOrigin(),
		PoseInSpace:  ToNativePose(local, a.tracking.WorldToMetersScale()),
		Time:         a.runtime.TimeInSeconds(),
	}
	id, r := a.runtime.CreateSpatialAnchor(info)
	return a.request("CreateSpatialAnchor", id, r)
}

func (a *Adapter) DestroyAnchor(h space.Handle) error {
	return a.check("DestroySpace", a.runtime.DestroySpace(h))
}

func (a *Adapter) SetComponentStatus(h space.Handle, t space.ComponentType, enable bool, timeout time.Duration) (space.RequestId, error) {
	id, r := a.runtime.SetSpaceComponentStatus(h, ToNativeComponentType(t), enable, timeout.Seconds())
	return a.request("SetSpaceComponentStatus", id, r)
}

func (a *Adapter) GetComponentStatus(h space.Handle, t space.ComponentType) (space.ComponentStatus, error) {
	enabled, pending, r := a.runtime.GetSpaceComponentStatus(h, ToNativeComponentType(t))
	if err := Check("GetSpaceComponentStatus", r); err != nil {
		return space.ComponentStatus{}, err
	}
	return space.ComponentStatus{Enabled: enabled, ChangePending: pending}, nil
}

func (a *Adapter) SaveAnchor(h space.Handle, location space.StorageLocation, mode space.PersistenceMode) (space.RequestId, error) {
	id, r := a.runtime.SaveSpace(h, ToNativeStorageLocation(location), ToNativePersistenceMode(mode))
	return a.request("SaveSpace", id, r)
}

func (a *Adapter) EraseAnchor(h space.Handle, location space.StorageLocation) (space.RequestId, error) {
	id, r := a.runtime.EraseSpace(h, ToNativeStorageLocation(location))
	return a.request("EraseSpace", id, r)
}

// QuerySpaces starts a space query. Filter lists exceeding the native
// capacity are truncated. Only the list selected by the filter type
// is transmitted.
func (a *Adapter) QuerySpaces(q space.QueryInfo) (space.RequestId, error) {
	info := &SpaceQueryInfo{
		QueryType:      SpaceQueryTypeAction,
		MaxQuerySpaces: int32(q.MaxQuerySpaces),
		Timeout:        q.Timeout.Seconds(),
		Location:       ToNativeStorageLocation(q.Location),
		ActionType:     SpaceQueryActionLoad,
		FilterType:     ToNativeFilterType(q.FilterType),
	}

	switch info.FilterType {
	case SpaceQueryFilterIds:
		ids := q.IDFilter
		if len(ids) > MaxQueryIds {
			log.Warn("query id filter truncated from {{given}} to {{max}} entries", "given", len(ids), "max", MaxQueryIds)
			ids = ids[:MaxQueryIds]
		}
		info.IdInfo = append([]space.UUID(nil), ids...)
	case SpaceQueryFilterComponents:
		types := q.ComponentFilter
		if len(types) > MaxQueryComponentTypes {
			log.Warn("query component filter truncated from {{given}} to {{max}} entries", "given", len(types), "max", MaxQueryComponentTypes)
			types = types[:MaxQueryComponentTypes]
		}
		for _, t := range types {
			info.ComponentsInfo = append(info.ComponentsInfo, ToNativeComponentType(t))
		}
	}

	id, r := a.runtime.QuerySpaces(info)
	return a.request("QuerySpaces", id, r)
}

// GetScenePlane provides the engine space bounds of a plane space.
func (a *Adapter) GetScenePlane(h space.Handle) (space.Bounds2D, error) {
	rect, r := a.runtime.GetSpaceBoundingBox2D(h)
	if err := Check("GetSpaceBoundingBox2D", r); err != nil {
		return space.Bounds2D{}, err
	}
	return FromNativeRect(rect), nil
}

// GetSceneVolume provides the engine space bounds of a volume space.
func (a *Adapter) GetSceneVolume(h space.Handle) (space.Bounds3D, error) {
	bounds, r := a.runtime.GetSpaceBoundingBox3D(h)
	if err := Check("GetSpaceBoundingBox3D", r); err != nil {
		return space.Bounds3D{}, err
	}
	return FromNativeBounds(bounds), nil
}

func (a *Adapter) GetSemanticLabels(h space.Handle) ([]string, error) {
	buf := make([]byte, SemanticLabelsCapacity)
	n, r := a.runtime.GetSpaceSemanticLabels(h, buf)
	if err := Check("GetSpaceSemanticLabels", r); err != nil {
		return nil, err
	}
	if n > len(buf) {
		n = len(buf)
	}
	labels := strings.TrimRight(string(buf[:n]), "\x00")
	if labels == "" {
		return nil, nil
	}
	return strings.Split(labels, ","), nil
}

func (a *Adapter) GetRoomLayout(h space.Handle, maxWalls int) (space.RoomLayout, error) {
	if maxWalls < 0 {
		return space.RoomLayout{}, Check("GetSpaceRoomLayout", FailureInvalidParameter)
	}
	walls := make([]space.UUID, maxWalls)
	info, r := a.runtime.GetSpaceRoomLayout(h, walls)
	if err := Check("GetSpaceRoomLayout", r); err != nil {
		return space.RoomLayout{}, err
	}
	if info.WallCount < len(walls) {
		walls = walls[:info.WallCount]
	}
	return space.RoomLayout{
		Ceiling: info.Ceiling,
		Floor:   info.Floor,
		Walls:   walls,
	}, nil
}

func (a *Adapter) RequestSceneCapture(request string) (space.RequestId, error) {
	id, r := a.runtime.RequestSceneCapture(request)
	return a.request("RequestSceneCapture", id, r)
}
