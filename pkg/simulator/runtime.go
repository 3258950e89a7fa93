package simulator

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Options configures a simulated runtime.
type Options struct {
	// Latency is the delay until completion events become available.
	Latency time.Duration
	// Storage is used for saved spaces. By default an in-memory
	// storage is used.
	Storage *Storage
	// Fixture is the scene provided after a scene capture.
	Fixture *Fixture
	// Captured makes the fixture scene available from the beginning.
	Captured bool
	Origin   native.TrackingOrigin
}

type spaceState struct {
	uuid       space.UUID
	pose       native.Posef
	components map[native.SpaceComponentType]bool
	plane      *native.Rectf
	volume     *native.Boundsf
	labels     string
	room       *native.RoomLayoutInfo
	walls      []space.UUID
	scene      bool
}

// Runtime is an in-process implementation of the native runtime
// surface. Completion events are delivered through PollEvent after
// the configured latency.
type Runtime struct {
	lock        sync.Mutex
	initialized bool
	origin      native.TrackingOrigin
	start       time.Time
	lastRequest uint64
	lastHandle  uint64
	spaces      map[space.Handle]*spaceState
	byUUID      map[space.UUID]space.Handle
	results     map[space.RequestId][]native.SpaceQueryResult
	rejections  map[string][]native.Result
	failures    map[native.EventType][]native.Result
	storage     *Storage
	fixture     *Fixture
	captured    bool
	queue       *eventQueue
}

var _ native.Runtime = (*Runtime)(nil)

func New(opts Options) (*Runtime, error) {
	storage := opts.Storage
	if storage == nil {
		var err error
		storage, err = NewStorage("/anchors")
		if err != nil {
			return nil, err
		}
	}
	r := &Runtime{
		initialized: true,
		origin:      opts.Origin,
		start:       time.Now(),
		spaces:      map[space.Handle]*spaceState{},
		byUUID:      map[space.UUID]space.Handle{},
		results:     map[space.RequestId][]native.SpaceQueryResult{},
		rejections:  map[string][]native.Result{},
		failures:    map[native.EventType][]native.Result{},
		storage:     storage,
		fixture:     opts.Fixture,
		queue:       newEventQueue("simulator", opts.Latency),
	}
	if opts.Captured && opts.Fixture != nil {
		r.capture()
	}
	log.Info("simulated runtime started", "latency", opts.Latency.String(), "scene", opts.Fixture != nil)
	return r, nil
}

// Close shuts down the event queue. The runtime is not initialized
// anymore afterwards.
func (r *Runtime) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.initialized {
		r.initialized = false
		r.queue.shutdown()
	}
	return nil
}

func (r *Runtime) Storage() *Storage {
	return r.storage
}

// RejectNext lets the next invocation of the given call fail
// with the given result.
func (r *Runtime) RejectNext(call string, res native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.rejections[call] = append(r.rejections[call], res)
}

// FailNext lets the next completion event of the given type
// report the given result.
func (r *Runtime) FailNext(t native.EventType, res native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failures[t] = append(r.failures[t], res)
}

func (r *Runtime) Lookup(id space.UUID) (space.Handle, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	h, ok := r.byUUID[id]
	return h, ok
}

func (r *Runtime) Spaces() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.spaces)
}

func (r *Runtime) rejected(call string) native.Result {
	if !r.initialized {
		return native.FailureNotInitialized
	}
	list := r.rejections[call]
	if len(list) == 0 {
		return native.Success
	}
	r.rejections[call] = list[1:]
	log.Debug("rejecting {{call}}", "call", call)
	return list[0]
}

func (r *Runtime) completion(t native.EventType) native.Result {
	list := r.failures[t]
	if len(list) == 0 {
		return native.Success
	}
	r.failures[t] = list[1:]
	return list[0]
}

func (r *Runtime) nextRequest() space.RequestId {
	r.lastRequest++
	return space.RequestId(r.lastRequest)
}

func (r *Runtime) addSpace(id space.UUID, s *spaceState) space.Handle {
	r.lastHandle++
	h := space.Handle(r.lastHandle)
	s.uuid = id
	if s.components == nil {
		s.components = map[native.SpaceComponentType]bool{}
	}
	r.spaces[h] = s
	r.byUUID[id] = h
	return h
}

func (r *Runtime) Initialized() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.initialized
}

func (r *Runtime) TrackingOrigin() native.TrackingOrigin {
	return r.origin
}

func (r *Runtime) TimeInSeconds() float64 {
	return time.Since(r.start).Seconds()
}

func (r *Runtime) PollEvent() (native.EventDataBuffer, native.Result) {
	if !r.Initialized() {
		return native.EventDataBuffer{}, native.FailureNotInitialized
	}
	e, ok := r.queue.poll()
	if !ok {
		return native.EventDataBuffer{}, native.SuccessEventUnavailable
	}
	return e, native.Success
}

func (r *Runtime) CreateSpatialAnchor(info *native.SpatialAnchorCreateInfo) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("CreateSpatialAnchor"); !res.Success() {
		return 0, res
	}
	id := r.nextRequest()
	ev := native.SpatialAnchorCreateCompleteData{
		RequestId: id,
		Result:    r.completion(native.EventSpatialAnchorCreateComplete),
	}
	if ev.Result.Success() {
		ev.UUID = space.NewUUID()
		ev.Space = r.addSpace(ev.UUID, &spaceState{pose: info.PoseInSpace})
	}
	r.queue.add(ev)
	return id, native.Success
}

func (r *Runtime) DestroySpace(h space.Handle) native.Result {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("DestroySpace"); !res.Success() {
		return res
	}
	s := r.spaces[h]
	if s == nil {
		return native.FailureInvalidParameter
	}
	delete(r.spaces, h)
	delete(r.byUUID, s.uuid)
	return native.Success
}

func (r *Runtime) SetSpaceComponentStatus(h space.Handle, t native.SpaceComponentType, enable bool, timeout float64) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("SetSpaceComponentStatus"); !res.Success() {
		return 0, res
	}
	s := r.spaces[h]
	if s == nil {
		return 0, native.FailureInvalidParameter
	}
	id := r.nextRequest()
	ev := native.SpaceSetComponentStatusCompleteData{
		RequestId:     id,
		Result:        r.completion(native.EventSpaceSetComponentStatusComplete),
		Space:         h,
		UUID:          s.uuid,
		ComponentType: t,
		Enabled:       enable,
	}
	if ev.Result.Success() {
		s.components[t] = enable
	} else {
		ev.Enabled = s.components[t]
	}
	r.queue.add(ev)
	return id, native.Success
}

func (r *Runtime) GetSpaceComponentStatus(h space.Handle, t native.SpaceComponentType) (bool, bool, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s := r.spaces[h]
	if s == nil {
		return false, false, native.FailureInvalidParameter
	}
	return s.components[t], false, native.Success
}

func (r *Runtime) SaveSpace(h space.Handle, location native.SpaceStorageLocation, mode native.SpaceStoragePersistenceMode) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("SaveSpace"); !res.Success() {
		return 0, res
	}
	s := r.spaces[h]
	if s == nil || location != native.SpaceStorageLocationLocal || mode != native.SpaceStoragePersistenceIndefinite {
		return 0, native.FailureInvalidParameter
	}
	if !s.components[native.SpaceComponentStorable] {
		return 0, native.FailureInvalidOperation
	}

	id := r.nextRequest()
	ev := native.SpaceSaveCompleteData{
		RequestId: id,
		Space:     h,
		Result:    r.completion(native.EventSpaceSaveComplete),
		UUID:      s.uuid,
		Location:  location,
	}
	if ev.Result.Success() {
		err := r.storage.Save(&Record{
			UUID:       s.uuid,
			Pose:       PoseFrom(s.pose),
			Components: enabledComponents(s),
			Mode:       "Indefinite",
		})
		if err != nil {
			log.LogError(err, "cannot save space {{uuid}}", "uuid", s.uuid)
			ev.Result = native.FailureOperationFailed
		}
	}
	r.queue.add(ev)
	return id, native.Success
}

func (r *Runtime) EraseSpace(h space.Handle, location native.SpaceStorageLocation) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("EraseSpace"); !res.Success() {
		return 0, res
	}
	s := r.spaces[h]
	if s == nil || location != native.SpaceStorageLocationLocal {
		return 0, native.FailureInvalidParameter
	}

	id := r.nextRequest()
	ev := native.SpaceEraseCompleteData{
		RequestId: id,
		Result:    r.completion(native.EventSpaceEraseComplete),
		UUID:      s.uuid,
		Location:  location,
	}
	if ev.Result.Success() {
		err := r.storage.Erase(s.uuid)
		if err != nil {
			log.LogError(err, "cannot erase space {{uuid}}", "uuid", s.uuid)
			ev.Result = native.FailureOperationFailed
		}
	}
	r.queue.add(ev)
	return id, native.Success
}

func (r *Runtime) QuerySpaces(info *native.SpaceQueryInfo) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("QuerySpaces"); !res.Success() {
		return 0, res
	}
	if info.Location != native.SpaceStorageLocationLocal ||
		len(info.IdInfo) > native.MaxQueryIds ||
		len(info.ComponentsInfo) > native.MaxQueryComponentTypes {
		return 0, native.FailureInvalidParameter
	}

	id := r.nextRequest()
	done := native.SpaceQueryCompleteData{
		RequestId: id,
		Result:    r.completion(native.EventSpaceQueryComplete),
	}
	if !done.Result.Success() {
		r.queue.add(done)
		return id, native.Success
	}

	found, err := r.query(info)
	if err != nil {
		log.LogError(err, "query {{request}} failed", "request", id)
		done.Result = native.FailureOperationFailed
		r.queue.add(done)
		return id, native.Success
	}
	if len(found) == 0 {
		r.queue.add(done)
		return id, native.Success
	}
	r.results[id] = found
	r.queue.add(native.SpaceQueryResultsData{RequestId: id}, done)
	return id, native.Success
}

func (r *Runtime) query(info *native.SpaceQueryInfo) ([]native.SpaceQueryResult, error) {
	var found []native.SpaceQueryResult

	add := func(h space.Handle) bool {
		found = append(found, native.SpaceQueryResult{Space: h, UUID: r.spaces[h].uuid})
		return info.MaxQuerySpaces <= 0 || len(found) < int(info.MaxQuerySpaces)
	}

	if info.FilterType == native.SpaceQueryFilterComponents {
		// scene spaces are always available from the local store
		for _, h := range r.sceneHandles() {
			s := r.spaces[h]
			if slices.ContainsFunc(info.ComponentsInfo, func(t native.SpaceComponentType) bool { return s.components[t] }) {
				if !add(h) {
					break
				}
			}
		}
		return found, nil
	}

	records, err := r.storage.List()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if info.FilterType == native.SpaceQueryFilterIds && !slices.Contains(info.IdInfo, rec.UUID) {
			continue
		}
		if !add(r.materialize(rec)) {
			break
		}
	}
	return found, nil
}

// materialize provides a handle for a stored space.
func (r *Runtime) materialize(rec *Record) space.Handle {
	if h, ok := r.byUUID[rec.UUID]; ok {
		return h
	}
	s := &spaceState{
		pose:       rec.Pose.Native(),
		components: map[native.SpaceComponentType]bool{},
	}
	for _, t := range rec.Components {
		s.components[native.ToNativeComponentType(t)] = true
	}
	return r.addSpace(rec.UUID, s)
}

func (r *Runtime) sceneHandles() []space.Handle {
	var list []space.Handle
	for h, s := range r.spaces {
		if s.scene {
			list = append(list, h)
		}
	}
	slices.Sort(list)
	return list
}

func (r *Runtime) RetrieveSpaceQueryResults(id space.RequestId, buf []native.SpaceQueryResult) (int, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	results, ok := r.results[id]
	if !ok {
		return 0, native.FailureInvalidParameter
	}
	if buf == nil {
		return len(results), native.Success
	}
	if len(buf) < len(results) {
		return len(results), native.FailureInsufficientSize
	}
	copy(buf, results)
	delete(r.results, id)
	return len(results), native.Success
}

func (r *Runtime) GetSpaceBoundingBox2D(h space.Handle) (native.Rectf, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s := r.spaces[h]
	if s == nil {
		return native.Rectf{}, native.FailureInvalidParameter
	}
	if s.plane == nil || !s.components[native.SpaceComponentBounded2D] {
		return native.Rectf{}, native.FailureInvalidOperation
	}
	return *s.plane, native.Success
}

func (r *Runtime) GetSpaceBoundingBox3D(h space.Handle) (native.Boundsf, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s := r.spaces[h]
	if s == nil {
		return native.Boundsf{}, native.FailureInvalidParameter
	}
	if s.volume == nil || !s.components[native.SpaceComponentBounded3D] {
		return native.Boundsf{}, native.FailureInvalidOperation
	}
	return *s.volume, native.Success
}

func (r *Runtime) GetSpaceSemanticLabels(h space.Handle, buf []byte) (int, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s := r.spaces[h]
	if s == nil {
		return 0, native.FailureInvalidParameter
	}
	if !s.components[native.SpaceComponentSemanticLabels] {
		return 0, native.FailureInvalidOperation
	}
	if len(buf) < len(s.labels) {
		return len(s.labels), native.FailureInsufficientSize
	}
	return copy(buf, s.labels), native.Success
}

func (r *Runtime) GetSpaceRoomLayout(h space.Handle, walls []space.UUID) (native.RoomLayoutInfo, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s := r.spaces[h]
	if s == nil {
		return native.RoomLayoutInfo{}, native.FailureInvalidParameter
	}
	if s.room == nil || !s.components[native.SpaceComponentRoomLayout] {
		return native.RoomLayoutInfo{}, native.FailureInvalidOperation
	}
	info := *s.room
	if len(walls) < len(s.walls) {
		return info, native.FailureInsufficientSize
	}
	copy(walls, s.walls)
	return info, native.Success
}

func (r *Runtime) RequestSceneCapture(request string) (space.RequestId, native.Result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if res := r.rejected("RequestSceneCapture"); !res.Success() {
		return 0, res
	}
	if r.fixture == nil {
		return 0, native.FailureUnsupported
	}
	id := r.nextRequest()
	ev := native.SceneCaptureCompleteData{
		RequestId: id,
		Result:    r.completion(native.EventSceneCaptureComplete),
	}
	if ev.Result.Success() && !r.captured {
		log.Info("capturing scene for {{request}}", "request", request)
		r.capture()
	}
	r.queue.add(ev)
	return id, native.Success
}

// capture creates the spaces described by the fixture.
func (r *Runtime) capture() {
	f := r.fixture
	surface := func(s *Surface, extra ...native.SpaceComponentType) space.UUID {
		st := &spaceState{
			pose: native.Posef{
				Orientation: native.Quatf{W: 1},
				Position:    native.Vector3f{X: s.Position.X, Y: s.Position.Y, Z: s.Position.Z},
			},
			components: map[native.SpaceComponentType]bool{
				native.SpaceComponentLocatable:      true,
				native.SpaceComponentSemanticLabels: true,
			},
			labels: strings.Join(s.Labels, ","),
			scene:  true,
		}
		if s.Plane != nil {
			p := s.Plane.Native()
			st.plane = &p
			st.components[native.SpaceComponentBounded2D] = true
		}
		if s.Volume != nil {
			b := s.Volume.Native()
			st.volume = &b
			st.components[native.SpaceComponentBounded3D] = true
		}
		for _, t := range extra {
			st.components[t] = true
		}
		id := space.NewUUID()
		r.addSpace(id, st)
		return id
	}

	room := &spaceState{
		pose: native.Posef{Orientation: native.Quatf{W: 1}},
		components: map[native.SpaceComponentType]bool{
			native.SpaceComponentLocatable:      true,
			native.SpaceComponentRoomLayout:     true,
			native.SpaceComponentSpaceContainer: true,
		},
		scene: true,
	}
	room.room = &native.RoomLayoutInfo{
		Floor:   surface(&f.Floor),
		Ceiling: surface(&f.Ceiling),
	}
	for i := range f.Walls {
		room.walls = append(room.walls, surface(&f.Walls[i]))
	}
	room.room.WallCount = len(room.walls)
	for i := range f.Objects {
		surface(&f.Objects[i])
	}
	r.addSpace(space.NewUUID(), room)
	r.captured = true
}

func enabledComponents(s *spaceState) []space.ComponentType {
	var r []space.ComponentType
	for t, ok := range s.components {
		if ok {
			r = append(r, native.FromNativeComponentType(t))
		}
	}
	slices.Sort(r)
	return r
}
