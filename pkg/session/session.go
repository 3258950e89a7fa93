package session

import (
	"context"
	"sync"
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/anchors"
	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/healthz"
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/service"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

const DefaultPollPeriod = 10 * time.Millisecond

// Session owns the connection to a native runtime: the event bus,
// the demultiplexer and the request correlation manager.
// Events are dispatched by Poll, either called explicitly
// or by the poll loop of a started session.
type Session struct {
	pollLock sync.Mutex
	runtime  native.Runtime
	adapter  *native.Adapter
	bus      *events.Bus
	demux    *events.Demultiplexer
	manager  *anchors.Manager
	period   time.Duration
	key      string

	lock    sync.Mutex
	ready   service.Trigger
	syncher service.Syncher
	closed  bool
}

var _ service.Service = (*Session)(nil)

func New(rt native.Runtime, tracking native.TrackingProvider, period ...time.Duration) *Session {
	bus := events.NewBus()
	adapter := native.NewAdapter(rt, tracking)
	return &Session{
		runtime: rt,
		adapter: adapter,
		bus:     bus,
		demux:   events.NewDemultiplexer(rt, bus),
		manager: anchors.NewManager(adapter, bus, anchors.NewTargets()),
		period:  utils.OptionalDefaulted(DefaultPollPeriod, period...),
		key:     "session poll loop",
	}
}

func (s *Session) Runtime() native.Runtime {
	return s.runtime
}

func (s *Session) Adapter() *native.Adapter {
	return s.adapter
}

func (s *Session) Bus() *events.Bus {
	return s.bus
}

func (s *Session) Demultiplexer() *events.Demultiplexer {
	return s.demux
}

func (s *Session) Manager() *anchors.Manager {
	return s.manager
}

func (s *Session) Targets() *anchors.Targets {
	return s.manager.Targets()
}

// Poll dispatches all events currently available from the runtime.
// It returns the number of handled events.
func (s *Session) Poll() int {
	s.pollLock.Lock()
	defer s.pollLock.Unlock()

	n := 0
	for {
		buf, r := s.runtime.PollEvent()
		if r == native.SuccessEventUnavailable {
			break
		}
		if !r.Success() {
			log.Debug("polling events failed: {{result}}", "result", r)
			break
		}
		if s.demux.Dispatch(buf) {
			n++
		} else {
			log.Debug("unhandled event {{type}}", "type", buf.EventType)
		}
	}
	return n
}

// Start runs the poll loop until the context is canceled.
func (s *Session) Start(ctx context.Context) (service.Syncher, service.Syncher, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.syncher == nil {
		wg := &sync.WaitGroup{}
		s.syncher = service.Sync(wg)
		s.ready = service.SyncTrigger()
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.run(ctx)
		}()
	}
	return s.ready, s.syncher, nil
}

func (s *Session) run(ctx context.Context) {
	log.Info("starting poll loop", "period", s.period.String())
	healthz.Start(s.key, s.period)
	defer healthz.End(s.key)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.ready.Trigger()
	for {
		select {
		case <-ctx.Done():
			log.Info("poll loop stopped")
			return
		case <-ticker.C:
			s.Poll()
			healthz.Tick(s.key)
		}
	}
}

func (s *Session) Wait() error {
	s.lock.Lock()
	syncher := s.syncher
	s.lock.Unlock()
	if syncher == nil {
		return nil
	}
	return syncher.Wait()
}

// Close stops the event handling of the session. All handlers
// registered at the session bus are unsubscribed.
func (s *Session) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.manager.Close()
	s.bus.UnsubscribeAll()
	log.Info("session closed")
	return nil
}
