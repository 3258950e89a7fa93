package ctxutil

import (
	"context"
	"time"
)

// TimeoutContext provides a context with timeout, which can be
// canceled with Cancel.
func TimeoutContext(ctx context.Context, duration time.Duration) context.Context {
	return cancelContext(context.WithTimeout(ctx, duration))
}
