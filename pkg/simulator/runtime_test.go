package simulator_test

import (
	"strings"
	"time"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/simulator"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

func pollAll(rt *simulator.Runtime) []native.EventDataBuffer {
	var list []native.EventDataBuffer
	for {
		buf, r := rt.PollEvent()
		if r != native.Success {
			return list
		}
		list = append(list, buf)
	}
}

func createSpace(rt *simulator.Runtime) native.SpatialAnchorCreateCompleteData {
	id, r := rt.CreateSpatialAnchor(&native.SpatialAnchorCreateInfo{
		PoseInSpace: native.Posef{
			Position:    native.Vector3f{X: 1},
			Orientation: native.Quatf{W: 1},
		},
	})
	Expect(r).To(Equal(native.Success))
	evs := pollAll(rt)
	Expect(evs).To(HaveLen(1))
	ev := Must(native.DecodeEvent[native.SpatialAnchorCreateCompleteData](evs[0]))
	Expect(ev.RequestId).To(Equal(id))
	return ev
}

func enable(rt *simulator.Runtime, h space.Handle, t native.SpaceComponentType) {
	_, r := rt.SetSpaceComponentStatus(h, t, true, 0)
	Expect(r).To(Equal(native.Success))
	pollAll(rt)
}

var _ = Describe("simulated runtime", func() {
	var rt *simulator.Runtime

	BeforeEach(func() {
		rt = Must(simulator.New(simulator.Options{}))
	})

	AfterEach(func() {
		rt.Close()
	})

	It("creates spaces", func() {
		Expect(rt.Initialized()).To(BeTrue())
		ev := createSpace(rt)
		Expect(ev.Result).To(Equal(native.Success))
		Expect(ev.UUID.IsValid()).To(BeTrue())
		Expect(ev.Space.IsValid()).To(BeTrue())
		h, ok := rt.Lookup(ev.UUID)
		Expect(ok).To(BeTrue())
		Expect(h).To(Equal(ev.Space))
		Expect(rt.Spaces()).To(Equal(1))

		Expect(rt.DestroySpace(ev.Space)).To(Equal(native.Success))
		Expect(rt.Spaces()).To(Equal(0))
		Expect(rt.DestroySpace(ev.Space)).To(Equal(native.FailureInvalidParameter))
	})

	It("uses consecutive request ids", func() {
		a, _ := rt.CreateSpatialAnchor(&native.SpatialAnchorCreateInfo{})
		b, _ := rt.CreateSpatialAnchor(&native.SpatialAnchorCreateInfo{})
		Expect(b).To(Equal(a + 1))
	})

	It("updates component states", func() {
		ev := createSpace(rt)
		enabled, _, r := rt.GetSpaceComponentStatus(ev.Space, native.SpaceComponentStorable)
		Expect(r).To(Equal(native.Success))
		Expect(enabled).To(BeFalse())

		id, r := rt.SetSpaceComponentStatus(ev.Space, native.SpaceComponentStorable, true, 0)
		Expect(r).To(Equal(native.Success))
		evs := pollAll(rt)
		Expect(evs).To(HaveLen(1))
		status := Must(native.DecodeEvent[native.SpaceSetComponentStatusCompleteData](evs[0]))
		Expect(status.RequestId).To(Equal(id))
		Expect(status.UUID).To(Equal(ev.UUID))
		Expect(status.Enabled).To(BeTrue())

		enabled, _, _ = rt.GetSpaceComponentStatus(ev.Space, native.SpaceComponentStorable)
		Expect(enabled).To(BeTrue())
	})

	It("saves and erases storable spaces", func() {
		ev := createSpace(rt)
		_, r := rt.SaveSpace(ev.Space, native.SpaceStorageLocationLocal, native.SpaceStoragePersistenceIndefinite)
		Expect(r).To(Equal(native.FailureInvalidOperation))

		enable(rt, ev.Space, native.SpaceComponentStorable)
		id, r := rt.SaveSpace(ev.Space, native.SpaceStorageLocationLocal, native.SpaceStoragePersistenceIndefinite)
		Expect(r).To(Equal(native.Success))
		evs := pollAll(rt)
		Expect(evs).To(HaveLen(1))
		saved := Must(native.DecodeEvent[native.SpaceSaveCompleteData](evs[0]))
		Expect(saved.RequestId).To(Equal(id))
		Expect(saved.Result).To(Equal(native.Success))
		Expect(rt.Storage().Has(ev.UUID)).To(BeTrue())

		rec := Must(rt.Storage().Load(ev.UUID))
		Expect(rec.Pose.String()).To(Equal("1,0,0"))
		Expect(rec.Components).To(ContainElement(space.ComponentStorable))

		id, r = rt.EraseSpace(ev.Space, native.SpaceStorageLocationLocal)
		Expect(r).To(Equal(native.Success))
		evs = pollAll(rt)
		erased := Must(native.DecodeEvent[native.SpaceEraseCompleteData](evs[0]))
		Expect(erased.RequestId).To(Equal(id))
		Expect(erased.UUID).To(Equal(ev.UUID))
		Expect(rt.Storage().Has(ev.UUID)).To(BeFalse())

		_, r = rt.EraseSpace(ev.Space, native.SpaceStorageLocationLocal)
		Expect(r).To(Equal(native.Success))
		erased = Must(native.DecodeEvent[native.SpaceEraseCompleteData](pollAll(rt)[0]))
		Expect(erased.Result).To(Equal(native.FailureOperationFailed))
	})

	It("queries stored spaces", func() {
		ev := createSpace(rt)
		enable(rt, ev.Space, native.SpaceComponentStorable)
		rt.SaveSpace(ev.Space, native.SpaceStorageLocationLocal, native.SpaceStoragePersistenceIndefinite)
		pollAll(rt)

		id, r := rt.QuerySpaces(&native.SpaceQueryInfo{
			Location:   native.SpaceStorageLocationLocal,
			FilterType: native.SpaceQueryFilterIds,
			IdInfo:     []space.UUID{ev.UUID},
		})
		Expect(r).To(Equal(native.Success))
		evs := pollAll(rt)
		Expect(evs).To(HaveLen(2))
		Expect(evs[0].EventType).To(Equal(native.EventSpaceQueryResults))
		Expect(evs[1].EventType).To(Equal(native.EventSpaceQueryComplete))

		n, r := rt.RetrieveSpaceQueryResults(id, nil)
		Expect(r).To(Equal(native.Success))
		Expect(n).To(Equal(1))
		buf := make([]native.SpaceQueryResult, n)
		n, r = rt.RetrieveSpaceQueryResults(id, buf)
		Expect(r).To(Equal(native.Success))
		Expect(buf[0]).To(Equal(native.SpaceQueryResult{Space: ev.Space, UUID: ev.UUID}))

		_, r = rt.RetrieveSpaceQueryResults(id, buf)
		Expect(r).To(Equal(native.FailureInvalidParameter))
	})

	It("completes empty queries without results", func() {
		_, r := rt.QuerySpaces(&native.SpaceQueryInfo{
			Location:   native.SpaceStorageLocationLocal,
			FilterType: native.SpaceQueryFilterIds,
			IdInfo:     []space.UUID{space.NewUUID()},
		})
		Expect(r).To(Equal(native.Success))
		evs := pollAll(rt)
		Expect(evs).To(HaveLen(1))
		Expect(evs[0].EventType).To(Equal(native.EventSpaceQueryComplete))

		_, r = rt.QuerySpaces(&native.SpaceQueryInfo{Location: native.SpaceStorageLocationInvalid})
		Expect(r).To(Equal(native.FailureInvalidParameter))
	})

	It("rejects requests on demand", func() {
		rt.RejectNext("CreateSpatialAnchor", native.FailureOperationFailed)
		_, r := rt.CreateSpatialAnchor(&native.SpatialAnchorCreateInfo{})
		Expect(r).To(Equal(native.FailureOperationFailed))
		Expect(pollAll(rt)).To(BeEmpty())

		ev := createSpace(rt)
		Expect(ev.Result).To(Equal(native.Success))
	})

	It("fails completions on demand", func() {
		rt.FailNext(native.EventSpatialAnchorCreateComplete, native.FailureSpaceMappingInsufficient)
		ev := createSpace(rt)
		Expect(ev.Result).To(Equal(native.FailureSpaceMappingInsufficient))
		Expect(ev.UUID.IsValid()).To(BeFalse())
		Expect(rt.Spaces()).To(Equal(0))
	})

	It("stops after close", func() {
		rt.Close()
		Expect(rt.Initialized()).To(BeFalse())
		_, r := rt.PollEvent()
		Expect(r).To(Equal(native.FailureNotInitialized))
		_, r = rt.CreateSpatialAnchor(&native.SpatialAnchorCreateInfo{})
		Expect(r).To(Equal(native.FailureNotInitialized))
	})

	It("delays completions", func() {
		delayed := Must(simulator.New(simulator.Options{Latency: 50 * time.Millisecond}))
		defer delayed.Close()
		delayed.CreateSpatialAnchor(&native.SpatialAnchorCreateInfo{})
		_, r := delayed.PollEvent()
		Expect(r).To(Equal(native.SuccessEventUnavailable))
		Eventually(func() native.Result {
			_, r := delayed.PollEvent()
			return r
		}).Should(Equal(native.Success))
	})

	Context("scene", func() {
		It("requires a scene", func() {
			_, r := rt.RequestSceneCapture("")
			Expect(r).To(Equal(native.FailureUnsupported))
		})

		It("captures the scene", func() {
			scene := Must(simulator.New(simulator.Options{Fixture: simulator.DefaultFixture()}))
			defer scene.Close()
			Expect(scene.Spaces()).To(Equal(0))

			id, r := scene.RequestSceneCapture("capture")
			Expect(r).To(Equal(native.Success))
			evs := pollAll(scene)
			Expect(evs).To(HaveLen(1))
			done := Must(native.DecodeEvent[native.SceneCaptureCompleteData](evs[0]))
			Expect(done.RequestId).To(Equal(id))
			Expect(done.Result).To(Equal(native.Success))
			// floor, ceiling, 4 walls, a table and the room
			Expect(scene.Spaces()).To(Equal(8))

			scene.RequestSceneCapture("again")
			pollAll(scene)
			Expect(scene.Spaces()).To(Equal(8))

			qid, _ := scene.QuerySpaces(&native.SpaceQueryInfo{
				Location:       native.SpaceStorageLocationLocal,
				FilterType:     native.SpaceQueryFilterComponents,
				ComponentsInfo: []native.SpaceComponentType{native.SpaceComponentRoomLayout},
			})
			pollAll(scene)
			buf := make([]native.SpaceQueryResult, 1)
			n, r := scene.RetrieveSpaceQueryResults(qid, buf)
			Expect(r).To(Equal(native.Success))
			Expect(n).To(Equal(1))

			walls := make([]space.UUID, 4)
			layout, r := scene.GetSpaceRoomLayout(buf[0].Space, walls)
			Expect(r).To(Equal(native.Success))
			Expect(layout.WallCount).To(Equal(4))
			Expect(walls[3].IsValid()).To(BeTrue())

			floor, ok := scene.Lookup(layout.Floor)
			Expect(ok).To(BeTrue())
			labels := make([]byte, native.SemanticLabelsCapacity)
			n, r = scene.GetSpaceSemanticLabels(floor, labels)
			Expect(r).To(Equal(native.Success))
			Expect(string(labels[:n])).To(Equal("FLOOR"))
			plane, r := scene.GetSpaceBoundingBox2D(floor)
			Expect(r).To(Equal(native.Success))
			Expect(plane.Size).To(Equal(native.Sizef{W: 4, H: 3}))
			_, r = scene.GetSpaceBoundingBox3D(floor)
			Expect(r).To(Equal(native.FailureInvalidOperation))
		})

		It("provides captured scenes", func() {
			scene := Must(simulator.New(simulator.Options{Fixture: simulator.DefaultFixture(), Captured: true}))
			defer scene.Close()
			Expect(scene.Spaces()).To(Equal(8))
		})

		It("parses scenes", func() {
			f := Must(simulator.ParseFixture([]byte(strings.TrimSpace(`
floor:
  labels: [FLOOR]
  plane: {x: -1, y: -1, width: 2, height: 2}
ceiling:
  labels: [CEILING]
  position: {y: 2}
walls:
- labels: [WALL_FACE]
  position: {z: -1}
`))))
			Expect(f.Floor.Plane.Native().Size).To(Equal(native.Sizef{W: 2, H: 2}))
			Expect(f.Ceiling.Position.Y).To(Equal(float32(2)))
			Expect(f.Walls).To(HaveLen(1))

			_, err := simulator.ParseFixture([]byte("walls: {"))
			Expect(err).To(MatchError(ContainSubstring("invalid scene fixture")))
		})
	})
})
