package watch_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	. "github.com/mandelsoft/goutils/testutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/server"
	"github.com/mandelsoft/spaceanchors/pkg/service"
	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/watch"
)

type collector struct {
	lock   sync.Mutex
	events []watch.Envelope
}

func (c *collector) HandleEvent(e watch.Envelope) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) Kinds() []events.Kind {
	c.lock.Lock()
	defer c.lock.Unlock()
	var r []events.Kind
	for _, e := range c.events {
		r = append(r, e.Kind)
	}
	return r
}

func (c *collector) Get(i int) watch.Envelope {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.events[i]
}

var _ = Describe("watch", func() {
	It("wraps bus events", func() {
		env := Must(watch.NewEnvelope(events.SaveComplete{RequestId: 5, Result: native.Success}))
		Expect(env.Kind).To(Equal(events.KindSaveComplete))
		Expect(env.RequestId).To(Equal(space.RequestId(5)))

		var e events.SaveComplete
		MustBeSuccessful(json.Unmarshal(env.Event, &e))
		Expect(e.RequestId).To(Equal(space.RequestId(5)))
	})

	It("subscribes and unsubscribes watch handlers", func() {
		bus := events.NewBus()
		reg := watch.NewBusRegistry(bus)
		c := &collector{}
		req := watch.Request{Kinds: []events.Kind{events.KindSaveComplete, events.KindEraseComplete}}

		reg.RegisterWatchHandler(req, c)
		Expect(reg.Watches()).To(Equal(1))
		Expect(bus.Subscriptions(events.KindSaveComplete)).To(Equal(1))

		bus.Publish(events.SaveComplete{RequestId: 1})
		bus.Publish(events.QueryComplete{RequestId: 2})
		bus.Publish(events.EraseComplete{RequestId: 3})
		Expect(c.Kinds()).To(Equal([]events.Kind{events.KindSaveComplete, events.KindEraseComplete}))

		reg.UnregisterWatchHandler(req, c)
		Expect(reg.Watches()).To(Equal(0))
		bus.Publish(events.SaveComplete{RequestId: 4})
		Expect(c.Kinds()).To(HaveLen(2))
	})

	It("ignores unknown and duplicate kinds", func() {
		req := watch.Request{Kinds: []events.Kind{events.KindSaveComplete, "SaveCompleted", events.KindSaveComplete}}
		Expect(req.EffectiveKinds()).To(Equal([]events.Kind{events.KindSaveComplete}))
		Expect(watch.Request{}.EffectiveKinds()).To(Equal([]events.Kind{events.AllKinds}))
		Expect(watch.Request{Kinds: []events.Kind{"Unknown"}}.EffectiveKinds()).To(BeEmpty())

		bus := events.NewBus()
		reg := watch.NewBusRegistry(bus)
		c := &collector{}
		reg.RegisterWatchHandler(req, c)
		Expect(bus.Subscriptions(events.KindSaveComplete)).To(Equal(1))

		bus.Publish(events.SaveComplete{RequestId: 1})
		Expect(c.Kinds()).To(Equal([]events.Kind{events.KindSaveComplete}))
		reg.UnregisterWatchHandler(req, c)
	})

	Context("server", func() {
		var ctx context.Context
		var services service.Services
		var srv *server.Server
		var bus *events.Bus
		var reg *watch.BusRegistry
		var watches *watch.RequestHandler[watch.Request, watch.Envelope]

		BeforeEach(func() {
			ctx = ctxutil.TimeoutContext(context.Background(), 30*time.Second)
			bus = events.NewBus()
			reg = watch.NewBusRegistry(bus)
			watches = watch.WatchHttpHandler[watch.Request, watch.Envelope](reg)

			srv = server.NewServer("localhost:0", time.Second)
			srv.Handle("/watch", watches)
			services = service.New(ctx)
			MustBeSuccessful(services.Add(srv))
			MustBeSuccessful(services.Start())
		})

		AfterEach(func() {
			watches.Close()
			ctxutil.Cancel(ctx)
			MustBeSuccessful(services.Wait())
		})

		It("streams matching events", func() {
			wctx := ctxutil.CancelContext(ctx)
			c := &collector{}
			client := watch.NewClient[watch.Request, watch.Envelope]("ws://" + srv.Address().String() + "/watch")
			s := Must(client.Register(wctx, watch.Request{Kinds: []events.Kind{events.KindQueryComplete}}, c))

			Eventually(reg.Watches).Should(Equal(1))
			Expect(watches.Connections()).To(Equal(1))

			bus.Publish(events.SaveComplete{RequestId: 1})
			bus.Publish(events.QueryComplete{RequestId: 2, Result: native.Success})

			Eventually(c.Kinds).Should(Equal([]events.Kind{events.KindQueryComplete}))
			Expect(c.Get(0).RequestId).To(Equal(space.RequestId(2)))

			ctxutil.Cancel(wctx)
			MustBeSuccessful(s.Wait())
			Eventually(reg.Watches).Should(Equal(0))
			Eventually(watches.Connections).Should(Equal(0))
		})

		It("watches all kinds by default", func() {
			wctx := ctxutil.CancelContext(ctx)
			defer ctxutil.Cancel(wctx)
			c := &collector{}
			client := watch.NewClient[watch.Request, watch.Envelope]("ws://" + srv.Address().String() + "/watch")
			Must(client.Register(wctx, watch.Request{}, c))

			Eventually(reg.Watches).Should(Equal(1))
			Expect(bus.Subscriptions(events.AllKinds)).To(Equal(1))

			bus.Publish(events.SaveComplete{RequestId: 1})
			bus.Publish(events.EraseComplete{RequestId: 2})
			Eventually(c.Kinds).Should(Equal([]events.Kind{events.KindSaveComplete, events.KindEraseComplete}))
		})
	})
})
