package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/anchors"
	"github.com/mandelsoft/spaceanchors/pkg/config"
	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/scene"
	"github.com/mandelsoft/spaceanchors/pkg/session"
	"github.com/mandelsoft/spaceanchors/pkg/simulator"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

const DefaultTimeout = 30 * time.Second

// Env is a running anchor session on top of the simulated runtime.
type Env struct {
	ctx      context.Context
	runtime  *simulator.Runtime
	session  *session.Session
	tracking *native.StaticTracking
}

func (o *Options) config() *config.Config {
	return &config.Config{
		Latency:    &o.latency,
		PollPeriod: &o.pollPeriod,
	}
}

func (o *Options) CaptureMode() (scene.CaptureMode, error) {
	return scene.ParseCaptureMode(o.capture)
}

func (o *Options) Fixture() (*simulator.Fixture, error) {
	if o.scene == "" {
		return simulator.DefaultFixture(), nil
	}
	return simulator.ReadFixture(o.fs, o.scene)
}

// NewEnv creates the runtime and starts the event poll loop. The
// environment must be closed to stop it.
func (o *Options) NewEnv(ctx context.Context, captured bool) (*Env, error) {
	cfg := o.config()
	latency, err := cfg.GetLatency()
	if err != nil {
		return nil, err
	}
	period, err := cfg.GetPollPeriod()
	if err != nil {
		return nil, err
	}
	fixture, err := o.Fixture()
	if err != nil {
		return nil, fmt.Errorf("cannot read scene %q: %w", o.scene, err)
	}
	storage, err := simulator.NewStorage(o.storage, o.fs)
	if err != nil {
		return nil, fmt.Errorf("cannot access storage %q: %w", o.storage, err)
	}
	rt, err := simulator.New(simulator.Options{
		Latency:  latency,
		Storage:  storage,
		Fixture:  fixture,
		Captured: captured,
	})
	if err != nil {
		return nil, err
	}

	env := &Env{
		ctx:      ctxutil.CancelContext(ctx),
		runtime:  rt,
		tracking: native.NewStaticTracking(space.IdentityTransform),
	}
	env.session = session.New(rt, env.tracking, period)
	ready, _, err := env.session.Start(env.ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}
	err = ready.Wait()
	if err != nil {
		env.Close()
		return nil, err
	}
	log.Debug("environment ready", "storage", o.storage)
	return env, nil
}

func (e *Env) Context() context.Context {
	return e.ctx
}

// Timeout provides a context for a single operation.
func (e *Env) Timeout() context.Context {
	return ctxutil.TimeoutContext(e.ctx, DefaultTimeout)
}

func (e *Env) Runtime() *simulator.Runtime {
	return e.runtime
}

func (e *Env) Session() *session.Session {
	return e.session
}

func (e *Env) Manager() *anchors.Manager {
	return e.session.Manager()
}

func (e *Env) Close() error {
	ctxutil.Cancel(e.ctx)
	e.session.Wait()
	e.session.Close()
	return e.runtime.Close()
}

// Adopt looks up a stored anchor and binds it to a new target.
func (e *Env) Adopt(name string, id space.UUID) (anchors.TargetRef, *anchors.Anchor, error) {
	ctx := e.Timeout()
	defer ctxutil.Cancel(ctx)

	found, err := e.Manager().AwaitQuery(ctx, space.QueryByIds(space.StorageLocal, 1, id))
	if err != nil {
		return anchors.NoTarget, nil, err
	}
	if len(found) == 0 {
		return anchors.NoTarget, nil, fmt.Errorf("anchor %s not found", id)
	}
	ref, a := e.Manager().Targets().Adopt(name, found[0])
	return ref, a, nil
}
