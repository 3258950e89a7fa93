package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mandelsoft/logging"

	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
)

var REALM = logging.DefineRealm("anchors/service", "service lifecycle")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

// Service is a long running activity bound to a context.
// Start returns a ready syncher signaling the completed startup
// and a done syncher signaling the termination of the service.
type Service interface {
	Start(ctx context.Context) (ready Syncher, done Syncher, err error)
	Wait() error
}

// Services manages the lifecycle of a set of services sharing
// a common context.
type Services interface {
	Add(s Service) error
	Start() error
	Stop()
	Wait() error
}

type services struct {
	lock     sync.Mutex
	ctx      context.Context
	services []Service
	started  bool
	wg       sync.WaitGroup
	errs     []error
}

func New(ctx context.Context) Services {
	return &services{
		ctx: ctxutil.CancelContext(ctx),
	}
}

// Add registers a service. If the services are already started
// the service is started immediately and Add waits for it to be ready.
func (t *services) Add(s Service) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.services = append(t.services, s)
	if !t.started {
		return nil
	}
	ready, err := t.start(s)
	if err != nil {
		return err
	}
	return t.waitReady(ready)
}

func (t *services) Start() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.started {
		return nil
	}
	t.started = true

	var ready []Syncher
	for _, s := range t.services {
		r, err := t.start(s)
		if err != nil {
			return err
		}
		ready = append(ready, r)
	}
	return t.waitReady(ready...)
}

func (t *services) waitReady(ready ...Syncher) error {
	for _, r := range ready {
		if r == nil {
			continue
		}
		if err := r.Wait(); err != nil {
			ctxutil.Cancel(t.ctx)
			return err
		}
	}
	return nil
}

func (t *services) start(s Service) (Syncher, error) {
	log.Debug("starting service {{service}}", "service", fmt.Sprintf("%T", s))
	ready, done, err := s.Start(t.ctx)
	if err == nil && done == nil {
		err = fmt.Errorf("does not return a done syncher")
	}
	if err != nil {
		ctxutil.Cancel(t.ctx)
		return nil, fmt.Errorf("service %T: %w", s, err)
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := done.Wait(); err != nil {
			log.LogError(err, "service {{service}} failed", "service", fmt.Sprintf("%T", s))
			t.lock.Lock()
			t.errs = append(t.errs, err)
			t.lock.Unlock()
		}
	}()
	return ready, nil
}

// Stop cancels the context shared by all services.
func (t *services) Stop() {
	ctxutil.Cancel(t.ctx)
}

func (t *services) Wait() error {
	t.wg.Wait()
	t.lock.Lock()
	defer t.lock.Unlock()
	return errors.Join(t.errs...)
}
