package future

import (
	"context"
	"sync"

	"github.com/mandelsoft/goutils/general"
)

////////////////////////////////////////////////////////////////////////////////

type Future interface {
	Wait(ctx context.Context) bool
}

type Trigger interface {
	Future
	Trigger() bool
}

type future struct {
	retrigger bool
	lock      sync.Mutex
	fired     bool
	done      int
	waiting   chan struct{}
}

// NewFuture provides a trigger. A retriggerable trigger can
// be used multiple times, triggers without waiters are counted.
// Otherwise the first trigger releases all current and future
// waiters.
func NewFuture(retrigger ...bool) Trigger {
	return &future{retrigger: general.Optional(retrigger...)}
}

func (f *future) Wait(ctx context.Context) bool {
	f.lock.Lock()
	if f.done > 0 {
		f.done--
		f.lock.Unlock()
		return true
	}

	if f.waiting == nil {
		f.waiting = make(chan struct{})
	}

	wait := f.waiting
	f.lock.Unlock()

	select {
	case <-wait:
		return true
	case <-ctx.Done():
		return false
	}
}

// Trigger releases the waiters. It reports whether the trigger
// can be used again.
func (f *future) Trigger() bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	if !f.retrigger {
		if !f.fired {
			f.fired = true
			if f.waiting == nil {
				f.waiting = make(chan struct{})
			}
			close(f.waiting)
		}
		return false
	}
	if f.waiting != nil {
		close(f.waiting)
		f.waiting = nil
	} else {
		f.done++
	}
	return true
}
