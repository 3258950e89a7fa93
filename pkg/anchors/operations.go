package anchors

import (
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// ComponentStatusResult is the outcome of a component status change.
type ComponentStatusResult struct {
	Anchor        *Anchor
	ComponentType space.ComponentType
	Enabled       bool
}

// CreateSpatialAnchor requests a new anchor at a world pose for a target.
// On success the anchor is attached to the target. It returns
// whether the request has been started, otherwise the callback
// has already been called with the failure.
func (m *Manager) CreateSpatialAnchor(pose space.Pose, target TargetRef, cb Callback[*Anchor]) bool {
	c := newCompletion(cb)

	if !m.targets.Alive(target) {
		c.fail(missingTarget(OpCreate))
		return false
	}
	if m.targets.Anchor(target).IsValid() {
		c.fail(precondition(OpCreate, "%s already has an anchor", target))
		return false
	}

	b := &binding{
		op:       OpCreate,
		terminal: events.KindAnchorCreateComplete,
		abort:    c.fail,
	}
	b.complete = func(e events.Event) {
		ev := e.(events.AnchorCreateComplete)
		if !ev.Result.Success() {
			c.fail(completionFailure(OpCreate, ev.RequestId, ev.Result))
			return
		}
		a := m.targets.AssureAnchor(target)
		if a == nil {
			log.Info("{{target}} gone, destroying created space {{handle}}", "target", target, "handle", ev.Handle)
			if err := m.adapter.DestroyAnchor(ev.Handle); err != nil {
				log.LogError(err, "cannot destroy space {{handle}}", "handle", ev.Handle)
			}
			c.fail(staleTarget(OpCreate, ev.RequestId))
			return
		}
		a.set(ev.Handle, ev.UUID)
		m.enableDefaultComponents(ev.Handle)
		log.Info("created {{anchor}}", "anchor", a)
		c.succeed(a)
	}

	err := m.issue(b, func() (space.RequestId, error) {
		return m.adapter.CreateAnchor(pose)
	})
	if err != nil {
		c.fail(rejected(OpCreate, err))
		return false
	}
	return true
}

// EraseAnchor removes the locally stored copy of the anchor of a target.
// The callback gets the UUID of the erased space.
func (m *Manager) EraseAnchor(target TargetRef, cb Callback[space.UUID]) bool {
	c := newCompletion(cb)

	a, err := m.anchorFor(OpErase, target)
	if err != nil {
		c.fail(err)
		return false
	}
	if !a.IsStoredAt(space.StorageLocal) {
		c.fail(precondition(OpErase, "%s is not stored locally", a))
		return false
	}

	b := &binding{
		op:       OpErase,
		terminal: events.KindEraseComplete,
		abort:    c.fail,
	}
	b.complete = func(e events.Event) {
		ev := e.(events.EraseComplete)
		if !ev.Result.Success() {
			c.call(ev.UUID, completionFailure(OpErase, ev.RequestId, ev.Result))
			return
		}
		if cur := m.targets.Anchor(target); cur != nil {
			cur.setStored(space.StorageLocal, false)
		}
		log.Info("erased space {{uuid}}", "uuid", ev.UUID)
		c.succeed(ev.UUID)
	}

	err = m.issue(b, func() (space.RequestId, error) {
		return m.adapter.EraseAnchor(a.Handle(), space.StorageLocal)
	})
	if err != nil {
		c.fail(rejected(OpErase, err))
		return false
	}
	return true
}

// SaveAnchor persists the anchor of a target at a storage location.
func (m *Manager) SaveAnchor(target TargetRef, location space.StorageLocation, cb Callback[*Anchor]) bool {
	c := newCompletion(cb)

	a, err := m.anchorFor(OpSave, target)
	if err != nil {
		c.fail(err)
		return false
	}

	b := &binding{
		op:       OpSave,
		terminal: events.KindSaveComplete,
		abort:    c.fail,
	}
	b.complete = func(e events.Event) {
		ev := e.(events.SaveComplete)
		if !ev.Result.Success() {
			c.call(m.targets.Anchor(target), completionFailure(OpSave, ev.RequestId, ev.Result))
			return
		}
		cur := m.targets.Anchor(target)
		if cur == nil {
			c.fail(staleTarget(OpSave, ev.RequestId))
			return
		}
		cur.setStored(location, true)
		log.Info("saved {{anchor}} at {{location}}", "anchor", cur, "location", location)
		c.succeed(cur)
	}

	err = m.issue(b, func() (space.RequestId, error) {
		return m.adapter.SaveAnchor(a.Handle(), location, space.PersistenceIndefinite)
	})
	if err != nil {
		c.fail(rejected(OpSave, err))
		return false
	}
	return true
}

// SetAnchorComponentStatus enables or disables a component of the anchor of a target.
func (m *Manager) SetAnchorComponentStatus(target TargetRef, t space.ComponentType, enable bool, timeout time.Duration, cb Callback[ComponentStatusResult]) bool {
	c := newCompletion(cb)

	a, err := m.anchorFor(OpSetComponentStatus, target)
	if err != nil {
		c.fail(err)
		return false
	}

	b := &binding{
		op:       OpSetComponentStatus,
		terminal: events.KindSetComponentStatusComplete,
		abort:    c.fail,
	}
	b.complete = func(e events.Event) {
		ev := e.(events.SetComponentStatusComplete)
		if !ev.Result.Success() {
			c.call(ComponentStatusResult{
				Anchor:        m.targets.Anchor(target),
				ComponentType: ev.ComponentType,
				Enabled:       ev.Enabled,
			}, completionFailure(OpSetComponentStatus, ev.RequestId, ev.Result))
			return
		}
		cur := m.targets.Anchor(target)
		if cur == nil {
			c.fail(staleTarget(OpSetComponentStatus, ev.RequestId))
			return
		}
		c.succeed(ComponentStatusResult{
			Anchor:        cur,
			ComponentType: ev.ComponentType,
			Enabled:       ev.Enabled,
		})
	}

	err = m.issue(b, func() (space.RequestId, error) {
		return m.adapter.SetComponentStatus(a.Handle(), t, enable, timeout)
	})
	if err != nil {
		c.fail(rejected(OpSetComponentStatus, err))
		return false
	}
	return true
}

// QueryAnchors looks up stored anchors by UUID.
func (m *Manager) QueryAnchors(uuids []space.UUID, location space.StorageLocation, max int, cb Callback[[]space.QueryResult]) bool {
	return m.QueryAnchorsAdvanced(space.QueryByIds(location, max, uuids...), cb)
}

// QueryAnchorsAdvanced executes a general space query. Results are
// reported in arrival order once the query is complete. Every
// found space is made locatable and storable. If the query fails,
// the results received so far are passed together with the error.
func (m *Manager) QueryAnchorsAdvanced(q space.QueryInfo, cb Callback[[]space.QueryResult]) bool {
	c := newCompletion(cb)
	results := []space.QueryResult{}

	b := &binding{
		op:       OpQuery,
		terminal: events.KindQueryComplete,
	}
	b.abort = func(err error) {
		c.call(results, err)
	}
	b.element = func(e events.Event) {
		ev, ok := e.(events.QueryResultElement)
		if !ok {
			return
		}
		m.enableDefaultComponents(ev.Handle)
		results = append(results, space.QueryResult{
			Handle:   ev.Handle,
			UUID:     ev.UUID,
			Location: q.Location,
		})
	}
	b.complete = func(e events.Event) {
		ev := e.(events.QueryComplete)
		if !ev.Result.Success() {
			c.call(results, completionFailure(OpQuery, ev.RequestId, ev.Result))
			return
		}
		log.Info("query {{request}} found {{amount}} spaces", "request", ev.RequestId, "amount", len(results))
		c.succeed(results)
	}

	err := m.issue(b, func() (space.RequestId, error) {
		return m.adapter.QuerySpaces(q)
	})
	if err != nil {
		c.fail(rejected(OpQuery, err))
		return false
	}
	return true
}

// RequestSceneCapture starts the scene capture flow of the runtime.
// The callback is called with the request id once the flow is finished.
func (m *Manager) RequestSceneCapture(request string, cb Callback[space.RequestId]) bool {
	c := newCompletion(cb)

	b := &binding{
		op:       OpSceneCapture,
		terminal: events.KindSceneCaptureComplete,
		abort:    c.fail,
	}
	b.complete = func(e events.Event) {
		ev := e.(events.SceneCaptureComplete)
		if !ev.Result.Success() {
			c.call(ev.RequestId, completionFailure(OpSceneCapture, ev.RequestId, ev.Result))
			return
		}
		c.succeed(ev.RequestId)
	}

	err := m.issue(b, func() (space.RequestId, error) {
		return m.adapter.RequestSceneCapture(request)
	})
	if err != nil {
		c.fail(rejected(OpSceneCapture, err))
		return false
	}
	return true
}

// anchorFor returns the anchor of a living target with a valid handle.
func (m *Manager) anchorFor(op Operation, target TargetRef) (*Anchor, error) {
	if !m.targets.Alive(target) {
		return nil, missingTarget(op)
	}
	a := m.targets.Anchor(target)
	if !a.IsValid() {
		return nil, precondition(op, "%s has no valid anchor", target)
	}
	return a, nil
}
