package events

import (
	"slices"
	"sync"
	"sync/atomic"
)

type Handler interface {
	HandleEvent(e Event)
}

type HandlerFunc func(e Event)

func (f HandlerFunc) HandleEvent(e Event) {
	f(e)
}

// Publisher is the sending side of a Bus.
type Publisher interface {
	Publish(e Event)
}

// Registry is the subscribing side of a Bus.
type Registry interface {
	Subscribe(kind Kind, h Handler) *Subscription
	UnsubscribeAll()
}

// Subscription is the registration of a handler for events
// of a dedicated kind.
type Subscription struct {
	bus     *Bus
	kind    Kind
	handler Handler
	active  atomic.Bool
}

func (s *Subscription) Kind() Kind {
	return s.kind
}

func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Unsubscribe deactivates the subscription. Events published after
// Unsubscribe returns are not delivered anymore. A concurrently running
// Publish may still deliver an event it has already selected the
// handler for.
func (s *Subscription) Unsubscribe() {
	if s.active.CompareAndSwap(true, false) {
		s.bus.prune(s.kind)
	}
}

// Bus is a synchronous multicast event bus. Handlers are called
// in registration order on the publishing goroutine.
type Bus struct {
	lock     sync.Mutex
	handlers map[Kind][]*Subscription
}

var (
	_ Publisher = (*Bus)(nil)
	_ Registry  = (*Bus)(nil)
)

func NewBus() *Bus {
	return &Bus{
		handlers: map[Kind][]*Subscription{},
	}
}

// Subscribe registers a handler for events of the given kind.
// AllKinds registers the handler for any event.
func (b *Bus) Subscribe(kind Kind, h Handler) *Subscription {
	s := &Subscription{
		bus:     b,
		kind:    kind,
		handler: h,
	}
	s.active.Store(true)

	b.lock.Lock()
	defer b.lock.Unlock()
	b.handlers[kind] = append(b.handlers[kind], s)
	log.Debug("subscribed handler for {{kind}}", "kind", kindName(kind))
	return s
}

func (b *Bus) SubscribeFunc(kind Kind, f func(Event)) *Subscription {
	return b.Subscribe(kind, HandlerFunc(f))
}

// UnsubscribeAll deactivates all subscriptions.
func (b *Bus) UnsubscribeAll() {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, list := range b.handlers {
		for _, s := range list {
			s.active.Store(false)
		}
	}
	b.handlers = map[Kind][]*Subscription{}
	log.Debug("all handlers unsubscribed")
}

func (b *Bus) Subscriptions(kind Kind) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.handlers[kind])
}

func (b *Bus) prune(kind Kind) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.pruneLocked(kind)
}

func (b *Bus) pruneLocked(kind Kind) {
	list := slices.DeleteFunc(slices.Clone(b.handlers[kind]), func(s *Subscription) bool { return !s.Active() })
	if len(list) == 0 {
		delete(b.handlers, kind)
	} else {
		b.handlers[kind] = list
	}
}

func (b *Bus) getHandlers(kind Kind) []*Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.pruneLocked(kind)
	b.pruneLocked(AllKinds)
	return append(slices.Clone(b.handlers[kind]), b.handlers[AllKinds]...)
}

// Publish delivers an event to all handlers subscribed for its kind.
func (b *Bus) Publish(e Event) {
	list := b.getHandlers(e.Kind())
	log.Trace("publishing {{kind}} for request {{request}} to {{amount}} handlers", "kind", e.Kind(), "request", e.Request(), "amount", len(list))
	for _, s := range list {
		if s.Active() {
			s.handler.HandleEvent(e)
		}
	}
}

// On subscribes a typed handler for the kind of events of type E.
func On[E Event](r Registry, f func(E)) *Subscription {
	var _nil E
	return r.Subscribe(_nil.Kind(), HandlerFunc(func(e Event) {
		if t, ok := e.(E); ok {
			f(t)
		}
	}))
}

func kindName(k Kind) string {
	if k == AllKinds {
		return "all kinds"
	}
	return string(k)
}
