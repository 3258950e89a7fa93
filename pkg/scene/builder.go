package scene

import (
	"errors"
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/anchors"
	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

var ErrNoScene = errors.New("no valid scene found")

const (
	DefaultMaxWalls  = 16
	DefaultMaxQuery  = 256
	sceneCaptureName = "scene builder"
)

type Options struct {
	Capture  CaptureMode
	MaxWalls int
	MaxQuery int
}

// Handler is called for every finished population.
type Handler func(s *Scene, err error)

// Builder populates a scene model from the spaces known to the
// runtime. It looks for a valid room layout, and classifies the
// plane and volume spaces. If no room is found a scene capture may
// be requested. Every completed capture triggers a new population.
type Builder struct {
	lock     sync.Mutex
	manager  *anchors.Manager
	opts     Options
	handler  Handler
	sub      *events.Subscription
	scene    *Scene
	captured bool
}

func NewBuilder(m *anchors.Manager, reg events.Registry, opts Options, h Handler) *Builder {
	if opts.MaxWalls <= 0 {
		opts.MaxWalls = DefaultMaxWalls
	}
	if opts.MaxQuery <= 0 {
		opts.MaxQuery = DefaultMaxQuery
	}
	b := &Builder{
		manager: m,
		opts:    opts,
		handler: h,
	}
	b.sub = events.On(reg, b.captureComplete)
	return b
}

func (b *Builder) Close() {
	b.sub.Unsubscribe()
}

// Scene returns the last successfully populated scene.
func (b *Builder) Scene() *Scene {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.scene
}

func (b *Builder) Clear() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.scene = nil
}

// Populate starts the population. The result is reported to the handler.
func (b *Builder) Populate() bool {
	q := space.QueryByComponents(space.StorageLocal, b.opts.MaxQuery, space.ComponentRoomLayout)
	return b.manager.QueryAnchorsAdvanced(q, b.roomsFound)
}

func (b *Builder) report(s *Scene, err error) {
	if err == nil {
		b.lock.Lock()
		b.scene = s
		b.lock.Unlock()
	}
	if b.handler != nil {
		b.handler(s, err)
	}
}

func (b *Builder) roomsFound(results []space.QueryResult, err error) {
	if err != nil {
		b.report(nil, err)
		return
	}
	for _, r := range results {
		layout, err := b.manager.GetRoomLayout(r.Handle, b.opts.MaxWalls)
		if err != nil {
			log.LogError(err, "cannot get room layout of {{space}}", "space", r.UUID)
			continue
		}
		if !layout.IsValid() {
			log.Info("ignoring invalid {{room}}", "room", layout)
			continue
		}
		log.Info("found {{room}}", "room", layout)
		q := space.QueryByComponents(space.StorageLocal, b.opts.MaxQuery, space.ComponentScenePlane, space.ComponentSceneVolume)
		b.manager.QueryAnchorsAdvanced(q, func(results []space.QueryResult, err error) {
			b.elementsFound(layout, results, err)
		})
		return
	}
	b.noScene()
}

func (b *Builder) noScene() {
	b.lock.Lock()
	capture := b.opts.Capture == CaptureAlways || (b.opts.Capture == CaptureOnce && !b.captured)
	b.captured = b.captured || capture
	b.lock.Unlock()

	if !capture {
		b.report(nil, ErrNoScene)
		return
	}
	log.Info("no scene found, requesting scene capture")
	b.manager.RequestSceneCapture(sceneCaptureName, func(_ space.RequestId, err error) {
		if err != nil {
			b.report(nil, err)
		}
	})
}

func (b *Builder) elementsFound(layout space.RoomLayout, results []space.QueryResult, err error) {
	if err != nil {
		b.report(nil, err)
		return
	}
	s := &Scene{Room: layout}
	for _, r := range results {
		e := &Element{Handle: r.Handle, UUID: r.UUID}
		if b.enabled(r.Handle, space.ComponentSemanticClassification) {
			labels, err := b.manager.GetSemanticClassification(r.Handle)
			if err != nil {
				log.LogError(err, "cannot get semantic labels of {{space}}", "space", r.UUID)
			}
			e.Labels = labels
		}
		if b.enabled(r.Handle, space.ComponentScenePlane) {
			if p, err := b.manager.GetScenePlane(r.Handle); err == nil {
				e.Plane = &p
			}
		}
		if b.enabled(r.Handle, space.ComponentSceneVolume) {
			if v, err := b.manager.GetSceneVolume(r.Handle); err == nil {
				e.Volume = &v
			}
		}
		s.Elements = append(s.Elements, e)
	}
	log.Info("scene populated with {{amount}} elements", "amount", len(s.Elements))
	b.report(s, nil)
}

func (b *Builder) enabled(h space.Handle, t space.ComponentType) bool {
	st, err := b.manager.GetComponentStatus(h, t)
	return err == nil && st.Enabled
}

func (b *Builder) captureComplete(e events.SceneCaptureComplete) {
	if !e.Result.Success() {
		log.Warn("scene capture {{request}} failed: {{result}}", "request", e.RequestId, "result", e.Result)
		return
	}
	log.Info("scene capture {{request}} completed, repopulating", "request", e.RequestId)
	b.Clear()
	b.Populate()
}
