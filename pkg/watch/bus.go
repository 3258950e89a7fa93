package watch

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Request is the registration request of a watch connection.
// An empty kind list watches all events.
type Request struct {
	Kinds []events.Kind `json:"kinds,omitempty"`
}

// EffectiveKinds returns the kinds to subscribe for. Unknown
// kinds are ignored and every kind is returned once.
func (r Request) EffectiveKinds() []events.Kind {
	if len(r.Kinds) == 0 {
		return []events.Kind{events.AllKinds}
	}
	var kinds []events.Kind
	for _, k := range r.Kinds {
		if k == events.AllKinds {
			return []events.Kind{events.AllKinds}
		}
		if !events.IsKind(k) {
			log.Warn("ignoring unknown event kind {{kind}}", "kind", k)
			continue
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Envelope is the wire representation of a bus event.
type Envelope struct {
	Kind      events.Kind     `json:"kind"`
	RequestId space.RequestId `json:"requestId"`
	Event     json.RawMessage `json:"event"`
}

func NewEnvelope(e events.Event) (Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Kind:      e.Kind(),
		RequestId: e.Request(),
		Event:     data,
	}, nil
}

// BusRegistry connects watch connections to an event bus.
type BusRegistry struct {
	lock          sync.Mutex
	registry      events.Registry
	subscriptions map[EventHandler[Envelope]][]*events.Subscription
}

var _ Registry[Request, Envelope] = (*BusRegistry)(nil)

func NewBusRegistry(reg events.Registry) *BusRegistry {
	return &BusRegistry{
		registry:      reg,
		subscriptions: map[EventHandler[Envelope]][]*events.Subscription{},
	}
}

func (r *BusRegistry) RegisterWatchHandler(req Request, h EventHandler[Envelope]) {
	kinds := req.EffectiveKinds()

	forward := events.HandlerFunc(func(e events.Event) {
		env, err := NewEnvelope(e)
		if err != nil {
			log.LogError(err, "cannot encode {{kind}} event", "kind", e.Kind())
			return
		}
		h.HandleEvent(env)
	})

	r.lock.Lock()
	defer r.lock.Unlock()
	for _, k := range kinds {
		r.subscriptions[h] = append(r.subscriptions[h], r.registry.Subscribe(k, forward))
	}
	log.Info("registered watch for {{kinds}}", "kinds", kinds)
}

func (r *BusRegistry) UnregisterWatchHandler(req Request, h EventHandler[Envelope]) {
	r.lock.Lock()
	subs := r.subscriptions[h]
	delete(r.subscriptions, h)
	r.lock.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (r *BusRegistry) Watches() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.subscriptions)
}
