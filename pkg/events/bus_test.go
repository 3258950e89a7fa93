package events_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/native"
)

type recorder struct {
	name   string
	record *[]string
}

func (r *recorder) HandleEvent(e events.Event) {
	*r.record = append(*r.record, fmt.Sprintf("%s:%s:%s", r.name, e.Kind(), e.Request()))
}

var _ = Describe("bus", func() {
	var bus *events.Bus
	var record []string

	BeforeEach(func() {
		bus = events.NewBus()
		record = nil
	})

	It("delivers in registration order", func() {
		bus.Subscribe(events.KindSaveComplete, &recorder{"a", &record})
		bus.Subscribe(events.KindSaveComplete, &recorder{"b", &record})
		bus.Subscribe(events.KindEraseComplete, &recorder{"c", &record})

		bus.Publish(events.SaveComplete{RequestId: 1})
		bus.Publish(events.EraseComplete{RequestId: 2})
		Expect(record).To(Equal([]string{
			"a:SaveComplete:1",
			"b:SaveComplete:1",
			"c:EraseComplete:2",
		}))
	})

	It("delivers all kinds", func() {
		bus.Subscribe(events.AllKinds, &recorder{"all", &record})
		bus.Subscribe(events.KindQueryComplete, &recorder{"q", &record})

		bus.Publish(events.QueryComplete{RequestId: 3})
		bus.Publish(events.SceneCaptureComplete{RequestId: 4})
		Expect(record).To(Equal([]string{
			"q:QueryComplete:3",
			"all:QueryComplete:3",
			"all:SceneCaptureComplete:4",
		}))
	})

	It("stops delivery after unsubscribe", func() {
		s := bus.Subscribe(events.KindSaveComplete, &recorder{"a", &record})
		bus.Subscribe(events.KindSaveComplete, &recorder{"b", &record})
		Expect(bus.Subscriptions(events.KindSaveComplete)).To(Equal(2))

		s.Unsubscribe()
		s.Unsubscribe()
		Expect(s.Active()).To(BeFalse())
		Expect(bus.Subscriptions(events.KindSaveComplete)).To(Equal(1))

		bus.Publish(events.SaveComplete{RequestId: 1})
		Expect(record).To(Equal([]string{"b:SaveComplete:1"}))
	})

	It("skips handlers unsubscribed during delivery", func() {
		var second *events.Subscription
		bus.SubscribeFunc(events.KindSaveComplete, func(e events.Event) {
			record = append(record, "first")
			second.Unsubscribe()
		})
		second = bus.SubscribeFunc(events.KindSaveComplete, func(e events.Event) {
			record = append(record, "second")
		})
		bus.Publish(events.SaveComplete{RequestId: 1})
		Expect(record).To(Equal([]string{"first"}))
	})

	It("unsubscribes all handlers", func() {
		s := bus.Subscribe(events.AllKinds, &recorder{"all", &record})
		bus.Subscribe(events.KindSaveComplete, &recorder{"a", &record})
		bus.UnsubscribeAll()

		Expect(s.Active()).To(BeFalse())
		bus.Publish(events.SaveComplete{RequestId: 1})
		Expect(record).To(BeEmpty())
	})

	It("subscribes typed handlers", func() {
		var found []events.SaveComplete
		s := events.On(bus, func(e events.SaveComplete) { found = append(found, e) })
		Expect(s.Kind()).To(Equal(events.KindSaveComplete))

		bus.Publish(events.SaveComplete{RequestId: 1, Result: native.FailureOperationFailed})
		bus.Publish(events.EraseComplete{RequestId: 2})
		Expect(found).To(Equal([]events.SaveComplete{{RequestId: 1, Result: native.FailureOperationFailed}}))
	})

	It("validates kinds", func() {
		Expect(events.IsKind(events.KindQueryResultElement)).To(BeTrue())
		Expect(events.IsKind("Unknown")).To(BeFalse())
	})
})
