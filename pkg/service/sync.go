package service

import (
	"context"
	"errors"
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/future"
)

type Syncher interface {
	SetError(err error)
	Wait() error
}

// Sync provides a syncher waiting for a wait group.
func Sync(wg *sync.WaitGroup) Syncher {
	return &syncher{
		wait: wg,
	}
}

type syncher struct {
	lock sync.Mutex
	wait *sync.WaitGroup
	err  []error
}

func (s *syncher) SetError(err error) {
	if err != nil {
		s.lock.Lock()
		defer s.lock.Unlock()
		s.err = append(s.err, err)
	}
}

func (s *syncher) Wait() error {
	s.wait.Wait()
	s.lock.Lock()
	defer s.lock.Unlock()
	return errors.Join(s.err...)
}

// Trigger is a syncher released by an explicit trigger.
type Trigger interface {
	Syncher
	Trigger()
}

func SyncTrigger() Trigger {
	return &trigger{
		trigger: future.NewFuture(),
	}
}

type trigger struct {
	lock    sync.Mutex
	err     error
	trigger future.Trigger
}

var _ Trigger = (*trigger)(nil)

func (t *trigger) Trigger() {
	t.trigger.Trigger()
}

func (t *trigger) SetError(err error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.err = err
}

func (t *trigger) Wait() error {
	t.trigger.Wait(context.Background())
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.err
}
