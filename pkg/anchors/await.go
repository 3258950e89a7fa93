package anchors

import (
	"context"
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/future"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Await starts an asynchronous operation and waits for its callback.
// Completion events must be dispatched concurrently, for example
// by a running session poll loop, otherwise Await blocks until the
// context is done.
func Await[T any](ctx context.Context, start func(cb Callback[T]) bool) (T, error) {
	p := future.NewPromise[T]()
	start(func(v T, err error) { p.Resolve(v, err) })
	return p.Wait(ctx)
}

func (m *Manager) AwaitCreate(ctx context.Context, pose space.Pose, target TargetRef) (*Anchor, error) {
	return Await(ctx, func(cb Callback[*Anchor]) bool {
		return m.CreateSpatialAnchor(pose, target, cb)
	})
}

func (m *Manager) AwaitSave(ctx context.Context, target TargetRef, location space.StorageLocation) (*Anchor, error) {
	return Await(ctx, func(cb Callback[*Anchor]) bool {
		return m.SaveAnchor(target, location, cb)
	})
}

func (m *Manager) AwaitErase(ctx context.Context, target TargetRef) (space.UUID, error) {
	return Await(ctx, func(cb Callback[space.UUID]) bool {
		return m.EraseAnchor(target, cb)
	})
}

func (m *Manager) AwaitComponentStatus(ctx context.Context, target TargetRef, t space.ComponentType, enable bool, timeout time.Duration) (ComponentStatusResult, error) {
	return Await(ctx, func(cb Callback[ComponentStatusResult]) bool {
		return m.SetAnchorComponentStatus(target, t, enable, timeout, cb)
	})
}

func (m *Manager) AwaitQuery(ctx context.Context, q space.QueryInfo) ([]space.QueryResult, error) {
	return Await(ctx, func(cb Callback[[]space.QueryResult]) bool {
		return m.QueryAnchorsAdvanced(q, cb)
	})
}

func (m *Manager) AwaitSceneCapture(ctx context.Context, request string) (space.RequestId, error) {
	return Await(ctx, func(cb Callback[space.RequestId]) bool {
		return m.RequestSceneCapture(request, cb)
	})
}
