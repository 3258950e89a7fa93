package events_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/testutils"
)

var _ = Describe("demultiplexer", func() {
	var rt *testutils.Runtime
	var bus *events.Bus
	var demux *events.Demultiplexer
	var found []events.Event

	BeforeEach(func() {
		rt = testutils.NewRuntime()
		bus = events.NewBus()
		demux = events.NewDemultiplexer(rt, bus)
		found = nil
		bus.SubscribeFunc(events.AllKinds, func(e events.Event) { found = append(found, e) })
	})

	It("ignores empty events", func() {
		Expect(demux.Dispatch(native.EventDataBuffer{EventType: native.EventNone})).To(BeTrue())
		Expect(found).To(BeEmpty())
	})

	It("rejects unknown events", func() {
		Expect(demux.Dispatch(native.EventDataBuffer{EventType: 4711, Data: []byte{1, 2, 3}})).To(BeFalse())
		Expect(found).To(BeEmpty())
	})

	It("drops malformed events", func() {
		buf := native.EncodeEvent(native.SpaceSaveCompleteData{RequestId: 1})
		buf.Data = buf.Data[:4]
		Expect(demux.Dispatch(buf)).To(BeFalse())
		Expect(found).To(BeEmpty())
	})

	It("translates create completions", func() {
		id := space.NewUUID()
		Expect(demux.Dispatch(native.EncodeEvent(native.SpatialAnchorCreateCompleteData{
			RequestId: 3, Result: native.Success, Space: 42, UUID: id,
		}))).To(BeTrue())
		Expect(found).To(Equal([]events.Event{
			events.AnchorCreateComplete{RequestId: 3, Result: native.Success, Handle: 42, UUID: id},
		}))
	})

	It("translates component status completions", func() {
		Expect(demux.Dispatch(native.EncodeEvent(native.SpaceSetComponentStatusCompleteData{
			RequestId: 3, Space: 42, ComponentType: native.SpaceComponentBounded3D, Enabled: true,
		}))).To(BeTrue())
		Expect(found).To(Equal([]events.Event{
			events.SetComponentStatusComplete{RequestId: 3, Handle: 42, ComponentType: space.ComponentSceneVolume, Enabled: true},
		}))
	})

	It("translates save and erase completions", func() {
		id := space.NewUUID()
		demux.Dispatch(native.EncodeEvent(native.SpaceSaveCompleteData{RequestId: 1, Space: 42, UUID: id, Location: native.SpaceStorageLocationLocal}))
		demux.Dispatch(native.EncodeEvent(native.SpaceEraseCompleteData{RequestId: 2, Result: native.Failure, UUID: id, Location: native.SpaceStorageLocationLocal}))
		Expect(found).To(Equal([]events.Event{
			events.SaveComplete{RequestId: 1, Handle: 42, UUID: id, Location: space.StorageLocal},
			events.EraseComplete{RequestId: 2, Result: native.Failure, UUID: id, Location: space.StorageLocal},
		}))
	})

	It("publishes the query results in order", func() {
		a, b := space.NewUUID(), space.NewUUID()
		rt.SetQueryResults(5, native.SpaceQueryResult{Space: 1, UUID: a}, native.SpaceQueryResult{Space: 2, UUID: b})

		Expect(demux.Dispatch(native.EncodeEvent(native.SpaceQueryResultsData{RequestId: 5}))).To(BeTrue())
		Expect(demux.Dispatch(native.EncodeEvent(native.SpaceQueryCompleteData{RequestId: 5}))).To(BeTrue())
		Expect(found).To(Equal([]events.Event{
			events.QueryResultsBegin{RequestId: 5},
			events.QueryResultElement{RequestId: 5, Handle: 1, UUID: a},
			events.QueryResultElement{RequestId: 5, Handle: 2, UUID: b},
			events.QueryComplete{RequestId: 5},
		}))
	})

	It("publishes an empty result set if the retrieval fails", func() {
		rt.SetQueryResults(5, native.SpaceQueryResult{Space: 1, UUID: space.NewUUID()})
		rt.Reject("RetrieveSpaceQueryResults", native.FailureInsufficientSize)

		Expect(demux.Dispatch(native.EncodeEvent(native.SpaceQueryResultsData{RequestId: 5}))).To(BeTrue())
		Expect(found).To(Equal([]events.Event{
			events.QueryResultsBegin{RequestId: 5},
		}))
	})

	It("translates scene capture completions", func() {
		demux.Dispatch(native.EncodeEvent(native.SceneCaptureCompleteData{RequestId: 9, Result: native.FailureUnsupported}))
		Expect(found).To(Equal([]events.Event{
			events.SceneCaptureComplete{RequestId: 9, Result: native.FailureUnsupported},
		}))
	})
})
