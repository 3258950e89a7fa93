package anchors

import (
	"sync/atomic"
)

// Callback is called exactly once with the result of an
// asynchronous operation. On failure the error is set and the
// value carries whatever the completion reported, for example
// the UUID of a failed erase or the partial results of a query.
type Callback[T any] func(result T, err error)

type completion[T any] struct {
	done atomic.Bool
	cb   Callback[T]
}

func newCompletion[T any](cb Callback[T]) *completion[T] {
	return &completion[T]{cb: cb}
}

func (c *completion[T]) succeed(v T) {
	c.call(v, nil)
}

func (c *completion[T]) fail(err error) {
	var _nil T
	c.call(_nil, err)
}

func (c *completion[T]) call(v T, err error) {
	if !c.done.CompareAndSwap(false, true) {
		log.Error("duplicate completion ignored", "error", err)
		return
	}
	if c.cb != nil {
		c.cb(v, err)
	}
}
