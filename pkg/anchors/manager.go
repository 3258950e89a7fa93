package anchors

import (
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// binding correlates an accepted request with the handling
// of its completion events.
type binding struct {
	id       space.RequestId
	op       Operation
	terminal events.Kind
	// element handles non-terminal events of the request.
	element func(e events.Event)
	// complete handles the terminal event of the request.
	complete func(e events.Event)
	// abort fails the request without a terminal event.
	abort func(err error)
}

// Manager issues asynchronous anchor operations and correlates
// their completion events with the pending requests.
type Manager struct {
	lock          sync.Mutex
	adapter       *native.Adapter
	targets       *Targets
	bindings      map[space.RequestId]*binding
	subscriptions []*events.Subscription
}

var _ events.Handler = (*Manager)(nil)

var handledKinds = []events.Kind{
	events.KindAnchorCreateComplete,
	events.KindSetComponentStatusComplete,
	events.KindQueryResultElement,
	events.KindQueryComplete,
	events.KindSaveComplete,
	events.KindEraseComplete,
	events.KindSceneCaptureComplete,
}

// NewManager provides a manager listening for completion events
// on the given registry.
func NewManager(adapter *native.Adapter, reg events.Registry, targets *Targets) *Manager {
	m := &Manager{
		adapter:  adapter,
		targets:  targets,
		bindings: map[space.RequestId]*binding{},
	}
	for _, k := range handledKinds {
		m.subscriptions = append(m.subscriptions, reg.Subscribe(k, m))
	}
	return m
}

// Close stops event handling. Pending callbacks are not called
// anymore.
func (m *Manager) Close() {
	m.lock.Lock()
	subs := m.subscriptions
	m.subscriptions = nil
	pending := len(m.bindings)
	m.lock.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	if pending > 0 {
		log.Info("closing manager with {{amount}} pending requests", "amount", pending)
	}
}

func (m *Manager) Targets() *Targets {
	return m.targets
}

func (m *Manager) Adapter() *native.Adapter {
	return m.adapter
}

// Pending returns the number of requests waiting for completion.
func (m *Manager) Pending() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.bindings)
}

func (m *Manager) HasBinding(id space.RequestId) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	_, ok := m.bindings[id]
	return ok
}

// issue executes a native request and records the binding for
// the returned request id. The lock is kept across both steps,
// so that a completion polled concurrently always finds its binding.
// A pending request with the same id is failed with ErrDisplaced.
func (m *Manager) issue(b *binding, call func() (space.RequestId, error)) error {
	m.lock.Lock()
	id, err := call()
	if err != nil {
		m.lock.Unlock()
		return err
	}
	old := m.bindings[id]
	b.id = id
	m.bindings[id] = b
	m.lock.Unlock()

	log.Debug("{{op}} request {{request}} pending", "op", b.op, "request", id)
	if old != nil {
		log.Warn("request id {{request}} of pending {{old}} request reused for {{op}}", "request", id, "old", old.op, "op", b.op)
		if old.abort != nil {
			old.abort(displaced(old.op, id))
		}
	}
	return nil
}

func (m *Manager) HandleEvent(e events.Event) {
	id := e.Request()

	m.lock.Lock()
	b := m.bindings[id]
	if b == nil {
		m.lock.Unlock()
		log.Debug("dropping {{kind}} for unknown request {{request}}", "kind", e.Kind(), "request", id)
		return
	}
	if e.Kind() == b.terminal {
		delete(m.bindings, id)
		m.lock.Unlock()
		log.Debug("{{op}} request {{request}} completed", "op", b.op, "request", id)
		b.complete(e)
		return
	}
	m.lock.Unlock()

	if b.element != nil {
		b.element(e)
	} else {
		log.Debug("ignoring {{kind}} for {{op}} request {{request}}", "kind", e.Kind(), "op", b.op, "request", id)
	}
}

// enableDefaultComponents makes a new space locatable and storable.
// Failures are only logged.
func (m *Manager) enableDefaultComponents(h space.Handle) {
	for _, t := range []space.ComponentType{space.ComponentLocatable, space.ComponentStorable} {
		_, err := m.adapter.SetComponentStatus(h, t, true, 0)
		if err != nil {
			log.LogError(err, "cannot enable {{component}} for space {{handle}}", "component", t, "handle", h)
		}
	}
}

// ReleaseTarget removes a target. A native space attached to
// the target is destroyed.
func (m *Manager) ReleaseTarget(r TargetRef) bool {
	a, ok := m.targets.Release(r)
	if !ok {
		return false
	}
	if a.IsValid() {
		if err := m.adapter.DestroyAnchor(a.Handle()); err != nil {
			log.LogError(err, "cannot destroy {{anchor}} of released target", "anchor", a)
		}
	}
	return true
}

func completionFailure(op Operation, id space.RequestId, r native.Result) error {
	return &CompletionError{Op: op, RequestId: id, Result: r}
}
