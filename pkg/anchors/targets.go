package anchors

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mandelsoft/spaceanchors/pkg/space"
)

// Anchor is the application side representation of a native
// spatial anchor.
type Anchor struct {
	lock   sync.Mutex
	handle space.Handle
	uuid   space.UUID
	stored map[space.StorageLocation]bool
}

func NewAnchor(h space.Handle, id space.UUID) *Anchor {
	return &Anchor{
		handle: h,
		uuid:   id,
		stored: map[space.StorageLocation]bool{},
	}
}

func (a *Anchor) Handle() space.Handle {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.handle
}

func (a *Anchor) UUID() space.UUID {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.uuid
}

func (a *Anchor) IsValid() bool {
	return a != nil && a.Handle().IsValid()
}

func (a *Anchor) IsStoredAt(l space.StorageLocation) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.stored[l]
}

func (a *Anchor) StoredLocations() []space.StorageLocation {
	a.lock.Lock()
	defer a.lock.Unlock()

	var r []space.StorageLocation
	for l, ok := range a.stored {
		if ok {
			r = append(r, l)
		}
	}
	slices.Sort(r)
	return r
}

func (a *Anchor) set(h space.Handle, id space.UUID) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.handle = h
	a.uuid = id
}

func (a *Anchor) setStored(l space.StorageLocation, stored bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if stored {
		a.stored[l] = true
	} else {
		delete(a.stored, l)
	}
}

func (a *Anchor) String() string {
	return fmt.Sprintf("anchor %s[%s]", a.UUID(), a.Handle())
}

////////////////////////////////////////////////////////////////////////////////

// TargetRef is a weak reference to an application object able
// to carry an anchor. A reference to a released target never
// resolves again, even if its slot is reused.
type TargetRef struct {
	index      uint32
	generation uint32
}

var NoTarget TargetRef

func (r TargetRef) String() string {
	return fmt.Sprintf("target %d/%d", r.index, r.generation)
}

// target is an application object carrying an optional anchor.
type target struct {
	name   string
	anchor *Anchor
}

type slot struct {
	generation uint32
	target     *target
}

// Targets is an arena of targets addressed by generation
// checked references.
type Targets struct {
	lock  sync.Mutex
	slots []slot
	free  []uint32
}

func NewTargets() *Targets {
	return &Targets{}
}

// New creates a new target.
func (t *Targets) New(name string) TargetRef {
	t.lock.Lock()
	defer t.lock.Unlock()

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	}
	s := &t.slots[index]
	s.generation++
	s.target = &target{name: name}
	return TargetRef{index: index, generation: s.generation}
}

func (t *Targets) lookup(r TargetRef) *target {
	if r.generation == 0 || int(r.index) >= len(t.slots) {
		return nil
	}
	s := &t.slots[r.index]
	if s.generation != r.generation {
		return nil
	}
	return s.target
}

// Release removes a target. It returns the anchor attached
// to the target, if any.
func (t *Targets) Release(r TargetRef) (*Anchor, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	tgt := t.lookup(r)
	if tgt == nil {
		return nil, false
	}
	s := &t.slots[r.index]
	s.target = nil
	s.generation++
	t.free = append(t.free, r.index)
	return tgt.anchor, true
}

func (t *Targets) Alive(r TargetRef) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.lookup(r) != nil
}

func (t *Targets) Name(r TargetRef) (string, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	tgt := t.lookup(r)
	if tgt == nil {
		return "", false
	}
	return tgt.name, true
}

// Anchor returns the anchor of a target. It returns nil for
// released targets or targets without anchor.
func (t *Targets) Anchor(r TargetRef) *Anchor {
	t.lock.Lock()
	defer t.lock.Unlock()
	tgt := t.lookup(r)
	if tgt == nil {
		return nil
	}
	return tgt.anchor
}

// AssureAnchor returns the anchor of a target, a new anchor
// is attached if required. It returns nil for released targets.
func (t *Targets) AssureAnchor(r TargetRef) *Anchor {
	t.lock.Lock()
	defer t.lock.Unlock()
	tgt := t.lookup(r)
	if tgt == nil {
		return nil
	}
	if tgt.anchor == nil {
		tgt.anchor = NewAnchor(space.InvalidHandle, space.InvalidUUID)
	}
	return tgt.anchor
}

// Lookup finds a living target by name.
func (t *Targets) Lookup(name string) (TargetRef, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	for i, s := range t.slots {
		if s.target != nil && s.target.name == name {
			return TargetRef{index: uint32(i), generation: s.generation}, true
		}
	}
	return NoTarget, false
}

// List returns references to all living targets.
func (t *Targets) List() []TargetRef {
	t.lock.Lock()
	defer t.lock.Unlock()

	var r []TargetRef
	for i, s := range t.slots {
		if s.target != nil {
			r = append(r, TargetRef{index: uint32(i), generation: s.generation})
		}
	}
	return r
}

// Adopt creates a target for a space found by a query.
func (t *Targets) Adopt(name string, r space.QueryResult) (TargetRef, *Anchor) {
	ref := t.New(name)
	a := t.AssureAnchor(ref)
	a.set(r.Handle, r.UUID)
	if r.Location != space.StorageInvalid {
		a.setStored(r.Location, true)
	}
	return ref, a
}
