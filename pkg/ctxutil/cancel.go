package ctxutil

import (
	"context"
)

type contextKey string

var cancelkey = contextKey("cancel")

// CancelContext provides a cancelable context, which can be
// canceled with Cancel by everybody holding the context.
func CancelContext(ctx context.Context) context.Context {
	return cancelContext(context.WithCancel(ctx))
}

func cancelContext(ctx context.Context, cancel context.CancelFunc) context.Context {
	return context.WithValue(ctx, cancelkey, cancel)
}

func Cancel(ctx context.Context) {
	if c, ok := ctx.Value(cancelkey).(context.CancelFunc); ok {
		c()
	}
}
