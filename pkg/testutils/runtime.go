package testutils

import (
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Call is a recorded runtime invocation.
type Call struct {
	Name      string
	Handle    space.Handle
	RequestId space.RequestId
	Component native.SpaceComponentType
	Enable    bool
}

// Runtime is a scripted native runtime. Requests are accepted
// with consecutive request ids, completion events must be
// pushed explicitly.
type Runtime struct {
	lock        sync.Mutex
	initialized bool
	nextRequest space.RequestId
	rejections  map[string]native.Result
	calls       []Call
	events      []native.EventDataBuffer

	results    map[space.RequestId][]native.SpaceQueryResult
	components map[space.Handle]map[native.SpaceComponentType]bool
	planes     map[space.Handle]native.Rectf
	volumes    map[space.Handle]native.Boundsf
	labels     map[space.Handle]string
	rooms      map[space.Handle]roomInfo

	lastCreate *native.SpatialAnchorCreateInfo
	lastQuery  *native.SpaceQueryInfo
}

type roomInfo struct {
	info  native.RoomLayoutInfo
	walls []space.UUID
}

var _ native.Runtime = (*Runtime)(nil)

func NewRuntime() *Runtime {
	return &Runtime{
		initialized: true,
		nextRequest: 1,
		rejections:  map[string]native.Result{},
		results:     map[space.RequestId][]native.SpaceQueryResult{},
		components:  map[space.Handle]map[native.SpaceComponentType]bool{},
		planes:      map[space.Handle]native.Rectf{},
		volumes:     map[space.Handle]native.Boundsf{},
		labels:      map[space.Handle]string{},
		rooms:       map[space.Handle]roomInfo{},
	}
}

////////////////////////////////////////////////////////////////////////////////
// scripting

func (r *Runtime) SetInitialized(b bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.initialized = b
}

// SetNextRequestId sets the id used for the next accepted request.
func (r *Runtime) SetNextRequestId(id space.RequestId) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextRequest = id
}

// Reject lets all further invocations of the given call fail.
func (r *Runtime) Reject(call string, res native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.rejections[call] = res
}

func (r *Runtime) Accept(call string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.rejections, call)
}

// Push queues completion events.
func (r *Runtime) Push(payloads ...native.Payload) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, p := range payloads {
		r.events = append(r.events, native.EncodeEvent(p))
	}
}

func (r *Runtime) PushRaw(bufs ...native.EventDataBuffer) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, bufs...)
}

func (r *Runtime) SetQueryResults(id space.RequestId, results ...native.SpaceQueryResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.results[id] = results
}

func (r *Runtime) SetComponent(h space.Handle, t native.SpaceComponentType, enabled bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	m := r.components[h]
	if m == nil {
		m = map[native.SpaceComponentType]bool{}
		r.components[h] = m
	}
	m[t] = enabled
}

func (r *Runtime) SetPlane(h space.Handle, rect native.Rectf) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.planes[h] = rect
}

func (r *Runtime) SetVolume(h space.Handle, b native.Boundsf) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.volumes[h] = b
}

func (r *Runtime) SetLabels(h space.Handle, labels string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.labels[h] = labels
}

func (r *Runtime) SetRoomLayout(h space.Handle, layout space.RoomLayout) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.rooms[h] = roomInfo{
		info:  native.RoomLayoutInfo{Ceiling: layout.Ceiling, Floor: layout.Floor, WallCount: len(layout.Walls)},
		walls: layout.Walls,
	}
}

// Calls returns the recorded invocations of the given call,
// or all invocations without name.
func (r *Runtime) Calls(name ...string) []Call {
	r.lock.Lock()
	defer r.lock.Unlock()
	var list []Call
	for _, c := range r.calls {
		if len(name) == 0 || c.Name == name[0] {
			list = append(list, c)
		}
	}
	return list
}

func (r *Runtime) LastCreate() *native.SpatialAnchorCreateInfo {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.lastCreate
}

func (r *Runtime) LastQuery() *native.SpaceQueryInfo {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.lastQuery
}

func (r *Runtime) request(c Call) (space.RequestId, native.Result) {
	if !r.initialized {
		return 0, native.FailureNotInitialized
	}
	if res, ok := r.rejections[c.Name]; ok {
		c.RequestId = 0
		r.calls = append(r.calls, c)
		return 0, res
	}
	c.RequestId = r.nextRequest
	r.nextRequest++
	r.calls = append(r.calls, c)
	return c.RequestId, native.Success
}

////////////////////////////////////////////////////////////////////////////////
// native.Runtime

func (r *Runtime) Initialized() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.initialized
}

func (r *Runtime) TrackingOrigin() native.TrackingOrigin {
	return native.TrackingOriginFloorLevel
}

func (r *Runtime) TimeInSeconds() float64 {
	return 0
}

func (r *Runtime) PollEvent() (native.EventDataBuffer, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.events) == 0 {
		return native.EventDataBuffer{}, native.SuccessEventUnavailable
	}
	e := r.events[0]
	r.events = r.events[1:]
	return e, native.Success
}

func (r *Runtime) CreateSpatialAnchor(info *native.SpatialAnchorCreateInfo) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	c := *info
	r.lastCreate = &c
	return r.request(Call{Name: "CreateSpatialAnchor"})
}

func (r *Runtime) DestroySpace(h space.Handle) native.Result {
	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.initialized {
		return native.FailureNotInitialized
	}
	r.calls = append(r.calls, Call{Name: "DestroySpace", Handle: h})
	return r.rejections["DestroySpace"]
}

func (r *Runtime) SetSpaceComponentStatus(h space.Handle, t native.SpaceComponentType, enable bool, timeout float64) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.request(Call{Name: "SetSpaceComponentStatus", Handle: h, Component: t, Enable: enable})
}

func (r *Runtime) GetSpaceComponentStatus(h space.Handle, t native.SpaceComponentType) (bool, bool, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if res, ok := r.rejections["GetSpaceComponentStatus"]; ok {
		return false, false, res
	}
	return r.components[h][t], false, native.Success
}

func (r *Runtime) SaveSpace(h space.Handle, location native.SpaceStorageLocation, mode native.SpaceStoragePersistenceMode) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.request(Call{Name: "SaveSpace", Handle: h})
}

func (r *Runtime) EraseSpace(h space.Handle, location native.SpaceStorageLocation) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.request(Call{Name: "EraseSpace", Handle: h})
}

func (r *Runtime) QuerySpaces(info *native.SpaceQueryInfo) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	c := *info
	r.lastQuery = &c
	return r.request(Call{Name: "QuerySpaces"})
}

func (r *Runtime) RetrieveSpaceQueryResults(id space.RequestId, buf []native.SpaceQueryResult) (int, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if res, ok := r.rejections["RetrieveSpaceQueryResults"]; ok {
		return 0, res
	}
	results, ok := r.results[id]
	if !ok {
		return 0, native.FailureInvalidParameter
	}
	if len(buf) < len(results) {
		return len(results), native.Success
	}
	copy(buf, results)
	return len(results), native.Success
}

func (r *Runtime) GetSpaceBoundingBox2D(h space.Handle) (native.Rectf, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	rect, ok := r.planes[h]
	if !ok {
		return rect, native.FailureInvalidParameter
	}
	return rect, native.Success
}

func (r *Runtime) GetSpaceBoundingBox3D(h space.Handle) (native.Boundsf, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	b, ok := r.volumes[h]
	if !ok {
		return b, native.FailureInvalidParameter
	}
	return b, native.Success
}

func (r *Runtime) GetSpaceSemanticLabels(h space.Handle, buf []byte) (int, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	l, ok := r.labels[h]
	if !ok {
		return 0, native.FailureInvalidParameter
	}
	return copy(buf, l), native.Success
}

func (r *Runtime) GetSpaceRoomLayout(h space.Handle, walls []space.UUID) (native.RoomLayoutInfo, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	room, ok := r.rooms[h]
	if !ok {
		return native.RoomLayoutInfo{}, native.FailureInvalidParameter
	}
	n := copy(walls, room.walls)
	info := room.info
	info.WallCount = n
	return info, native.Success
}

func (r *Runtime) RequestSceneCapture(request string) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.request(Call{Name: "RequestSceneCapture"})
}
