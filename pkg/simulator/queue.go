package simulator

import (
	"sync"
	"time"

	"k8s.io/client-go/util/workqueue"

	"github.com/mandelsoft/spaceanchors/pkg/native"
)

// batch is a sequence of events delivered together. Events of
// a single request are always put into one batch to keep their order.
type batch struct {
	events []native.EventDataBuffer
}

// eventQueue delays completion events by a configurable latency.
type eventQueue struct {
	lock    sync.Mutex
	latency time.Duration
	queue   workqueue.DelayingInterface
	ready   []native.EventDataBuffer
}

func newEventQueue(name string, latency time.Duration) *eventQueue {
	return &eventQueue{
		latency: latency,
		queue:   workqueue.NewNamedDelayingQueue(name),
	}
}

func (q *eventQueue) add(payloads ...native.Payload) {
	b := &batch{}
	for _, p := range payloads {
		b.events = append(b.events, native.EncodeEvent(p))
	}
	q.queue.AddAfter(b, q.latency)
}

// poll returns the next due event without blocking.
func (q *eventQueue) poll() (native.EventDataBuffer, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.ready) == 0 && q.queue.Len() > 0 {
		item, shutdown := q.queue.Get()
		if shutdown {
			break
		}
		q.ready = append(q.ready, item.(*batch).events...)
		q.queue.Done(item)
	}
	if len(q.ready) == 0 {
		return native.EventDataBuffer{}, false
	}
	e := q.ready[0]
	q.ready = q.ready[1:]
	return e, true
}

func (q *eventQueue) shutdown() {
	q.queue.ShutDown()
}
