package native_test

import (
	"github.com/go-test/deep"
	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

var _ = Describe("event records", func() {
	id := space.NewUUID()

	It("decodes encoded payloads", func() {
		data := native.SpaceSetComponentStatusCompleteData{
			RequestId:     7,
			Result:        native.FailureOperationFailed,
			Space:         42,
			UUID:          id,
			ComponentType: native.SpaceComponentStorable,
			Enabled:       true,
		}
		buf := native.EncodeEvent(data)
		Expect(buf.EventType).To(Equal(native.EventSpaceSetComponentStatusComplete))

		r := Must(native.DecodeEvent[native.SpaceSetComponentStatusCompleteData](buf))
		Expect(deep.Equal(r, data)).To(BeNil())
	})

	It("uses a packed little endian layout", func() {
		buf := native.EncodeEvent(native.SpaceQueryCompleteData{RequestId: 0x0102, Result: native.Failure})
		Expect(buf.Data).To(HaveLen(12))
		Expect(buf.Data[:2]).To(Equal([]byte{0x02, 0x01}))
	})

	It("rejects mismatching types", func() {
		buf := native.EncodeEvent(native.SpaceQueryResultsData{RequestId: 1})
		_, err := native.DecodeEvent[native.SpaceQueryCompleteData](buf)
		Expect(err).To(MatchError(ContainSubstring("type mismatch")))
	})

	It("rejects truncated records", func() {
		buf := native.EncodeEvent(native.SpatialAnchorCreateCompleteData{RequestId: 1, Space: 2, UUID: id})
		buf.Data = buf.Data[:len(buf.Data)-1]
		_, err := native.DecodeEvent[native.SpatialAnchorCreateCompleteData](buf)
		Expect(err).To(MatchError(ContainSubstring("truncated")))
	})

	It("names event types", func() {
		Expect(native.EventSceneCaptureComplete.String()).To(Equal("SceneCaptureComplete"))
		Expect(native.EventType(4711).String()).To(Equal("EventType(4711)"))
	})
})
