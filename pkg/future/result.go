package future

import (
	"context"
	"sync"
)

// Result is a one-shot future for a value or an error.
type Result[T any] interface {
	// Wait blocks until the result is available or the context is done.
	// In the latter case the context error is returned.
	Wait(ctx context.Context) (T, error)
	Done() <-chan struct{}
}

// Promise is the producing side of a Result.
type Promise[T any] interface {
	Result[T]
	// Resolve sets the result. Only the first call has an effect,
	// it reports whether the result has been set.
	Resolve(v T, err error) bool
}

type promise[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func NewPromise[T any]() Promise[T] {
	return &promise[T]{done: make(chan struct{})}
}

func (p *promise[T]) Resolve(v T, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.value = v
		p.err = err
		resolved = true
		close(p.done)
	})
	return resolved
}

func (p *promise[T]) Done() <-chan struct{} {
	return p.done
}

func (p *promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var _nil T
		return _nil, ctx.Err()
	}
}
