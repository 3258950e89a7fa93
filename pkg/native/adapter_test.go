package native_test

import (
	"cogentcore.org/core/math32"
	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/testutils"
)

var _ = Describe("adapter", func() {
	var rt *testutils.Runtime
	var tracking *native.StaticTracking
	var adapter *native.Adapter

	BeforeEach(func() {
		rt = testutils.NewRuntime()
		tracking = native.NewStaticTracking(space.IdentityTransform)
		adapter = native.NewAdapter(rt, tracking)
	})

	Context("results", func() {
		It("maps errors to results", func() {
			err := native.Check("SaveSpace", native.FailureInvalidParameter)
			Expect(err).To(MatchError("native call SaveSpace failed: Failure_InvalidParameter"))
			Expect(native.ResultOf(err)).To(Equal(native.FailureInvalidParameter))
			Expect(native.ResultOf(nil)).To(Equal(native.Success))
			Expect(native.Check("SaveSpace", native.SuccessPending)).To(Succeed())
		})
	})

	Context("create", func() {
		It("converts the pose to tracking space", func() {
			id := Must(adapter.CreateAnchor(space.NewPose(100, 200, 300)))
			Expect(id).To(Equal(space.RequestId(1)))

			info := rt.LastCreate()
			Expect(info).NotTo(BeNil())
			Expect(info.BaseTracking).To(Equal(native.TrackingOriginFloorLevel))
			Expect(info.PoseInSpace.Position).To(Equal(native.Vector3f{X: 2, Y: 3, Z: -1}))
		})

		It("applies the inverse tracking transformation", func() {
			tracking.Set(space.Transform{Rotation: space.Identity, Translation: math32.Vec3(100, 0, 0)})
			Must(adapter.CreateAnchor(space.NewPose(100, 0, 0)))
			Expect(rt.LastCreate().PoseInSpace.Position).To(Equal(native.Vector3f{}))
		})

		It("fails without tracking space", func() {
			tracking.Invalidate()
			_, err := adapter.CreateAnchor(space.NewPose(0, 0, 0))
			Expect(err).To(MatchError(native.ErrTrackingUnavailable))
			Expect(rt.Calls()).To(BeEmpty())
		})

		It("fails for uninitialized runtime", func() {
			rt.SetInitialized(false)
			_, err := adapter.CreateAnchor(space.NewPose(0, 0, 0))
			Expect(native.ResultOf(err)).To(Equal(native.FailureNotInitialized))
		})

		It("reports rejected calls", func() {
			rt.Reject("CreateSpatialAnchor", native.FailureOperationFailed)
			id, err := adapter.CreateAnchor(space.NewPose(0, 0, 0))
			Expect(id).To(Equal(space.RequestId(0)))
			Expect(native.ResultOf(err)).To(Equal(native.FailureOperationFailed))
		})
	})

	Context("query", func() {
		It("transfers only the id filter", func() {
			ids := make([]space.UUID, native.MaxQueryIds+10)
			for i := range ids {
				ids[i] = space.NewUUID()
			}
			q := space.QueryByIds(space.StorageLocal, 5, ids...)
			q.ComponentFilter = []space.ComponentType{space.ComponentStorable}
			Must(adapter.QuerySpaces(q))

			info := rt.LastQuery()
			Expect(info.FilterType).To(Equal(native.SpaceQueryFilterIds))
			Expect(info.MaxQuerySpaces).To(Equal(int32(5)))
			Expect(info.Location).To(Equal(native.SpaceStorageLocationLocal))
			Expect(info.IdInfo).To(Equal(ids[:native.MaxQueryIds]))
			Expect(info.ComponentsInfo).To(BeNil())
		})

		It("truncates the component filter", func() {
			var types []space.ComponentType
			for i := 0; i < native.MaxQueryComponentTypes+2; i++ {
				types = append(types, space.ComponentScenePlane)
			}
			Must(adapter.QuerySpaces(space.QueryByComponents(space.StorageLocal, 0, types...)))

			info := rt.LastQuery()
			Expect(info.FilterType).To(Equal(native.SpaceQueryFilterComponents))
			Expect(info.ComponentsInfo).To(HaveLen(native.MaxQueryComponentTypes))
			Expect(info.ComponentsInfo[0]).To(Equal(native.SpaceComponentBounded2D))
			Expect(info.IdInfo).To(BeNil())
		})
	})

	Context("component status", func() {
		It("requests status changes", func() {
			Must(adapter.SetComponentStatus(42, space.ComponentStorable, true, 0))
			calls := rt.Calls("SetSpaceComponentStatus")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Handle).To(Equal(space.Handle(42)))
			Expect(calls[0].Component).To(Equal(native.SpaceComponentStorable))
			Expect(calls[0].Enable).To(BeTrue())
		})

		It("gets the status", func() {
			rt.SetComponent(42, native.SpaceComponentLocatable, true)
			Expect(Must(adapter.GetComponentStatus(42, space.ComponentLocatable))).To(Equal(space.ComponentStatus{Enabled: true}))
			Expect(Must(adapter.GetComponentStatus(42, space.ComponentStorable))).To(Equal(space.ComponentStatus{}))
		})
	})

	Context("scene", func() {
		It("splits semantic labels", func() {
			rt.SetLabels(1, "WALL_FACE,DOOR_FRAME\x00\x00")
			rt.SetLabels(2, "")
			Expect(Must(adapter.GetSemanticLabels(1))).To(Equal([]string{"WALL_FACE", "DOOR_FRAME"}))
			Expect(Must(adapter.GetSemanticLabels(2))).To(BeNil())
		})

		It("limits the walls of a room layout", func() {
			layout := space.RoomLayout{
				Floor:   space.NewUUID(),
				Ceiling: space.NewUUID(),
				Walls:   []space.UUID{space.NewUUID(), space.NewUUID(), space.NewUUID(), space.NewUUID()},
			}
			rt.SetRoomLayout(1, layout)

			r := Must(adapter.GetRoomLayout(1, 16))
			Expect(r).To(Equal(layout))

			r = Must(adapter.GetRoomLayout(1, 2))
			Expect(r.Walls).To(Equal(layout.Walls[:2]))
			Expect(r.IsValid()).To(BeFalse())
		})

		It("rejects a negative wall capacity", func() {
			rt.SetRoomLayout(1, space.RoomLayout{Floor: space.NewUUID(), Ceiling: space.NewUUID()})
			_, err := adapter.GetRoomLayout(1, -1)
			Expect(native.ResultOf(err)).To(Equal(native.FailureInvalidParameter))
			Expect(rt.Calls()).To(BeEmpty())
		})

		It("maps plane bounds", func() {
			rt.SetPlane(1, native.Rectf{Pos: native.Vector2f{X: 1, Y: 2}, Size: native.Sizef{W: 3, H: 4}})
			b := Must(adapter.GetScenePlane(1))
			Expect(b.Position).To(Equal(math32.Vec3(0, 1, 2)))
			Expect(b.Size).To(Equal(math32.Vec3(0, 3, 4)))
		})

		It("maps volume bounds", func() {
			rt.SetVolume(1, native.Boundsf{Pos: native.Vector3f{X: 1, Y: 2, Z: 3}, Size: native.Size3f{W: 4, H: 5, D: 6}})
			b := Must(adapter.GetSceneVolume(1))
			Expect(b.Position).To(Equal(math32.Vec3(3, 1, 2)))
			Expect(b.Size).To(Equal(math32.Vec3(6, 4, 5)))
		})

		It("fails for unknown spaces", func() {
			_, err := adapter.GetScenePlane(4711)
			Expect(native.ResultOf(err)).To(Equal(native.FailureInvalidParameter))
		})
	})
})
