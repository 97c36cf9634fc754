package choreo

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
)

// Handle is a registered binding. Its accessors report the state as of the last evaluation.
type Handle struct {
	def   Binding
	index int

	rng        scroll.Range
	suspended  bool
	logged     bool
	state      State
	progress   float32
	lastWrite  float32
	hasWritten bool

	captured bool
	fromPos  [3]float32
	fromLook [3]float32
}

// Name returns the binding's name.
func (h *Handle) Name() string { return h.def.Name }

// State returns the binding's current state.
func (h *Handle) State() State { return h.state }

// Progress returns the binding's current progress, in [0, 1].
func (h *Handle) Progress() float32 { return h.progress }

// Range returns the last successfully resolved scroll range.
func (h *Handle) Range() scroll.Range { return h.rng }

// Suspended reports whether the binding's section could not be resolved. A suspended binding
// stays BEFORE and never writes.
func (h *Handle) Suspended() bool { return h.suspended }

// Choreographer evaluates keyframe bindings against the scroll offset and writes the camera.
//
// Every binding is an independent BEFORE/ACTIVE/AFTER state machine over its section's range.
// While ACTIVE a binding interpolates from the camera values captured the first time it
// became active to its targets. Leaving the range writes the boundary value once and then
// nothing, so the last value persists. Progress depends only on the offset, so scrolling back
// replays the same values. Bindings that touch the same property apply in registration order,
// so the latest registration wins.
//
// A Choreographer must only be used from the goroutine that owns its scene.
type Choreographer struct {
	scene    scene.Scene
	registry *scroll.Registry
	ease     EaseFunc
	logf     func(format string, args ...any)

	bindings []*Handle
	offset   float32
}

// NewChoreographer creates a choreographer that writes into s and resolves sections from reg.
//
// Parameters:
//   - s: the scene whose camera is driven
//   - reg: the section registry
//   - options: a variadic list of ChoreographerBuilderOption functions
//
// Returns:
//   - *Choreographer: the new choreographer
func NewChoreographer(s scene.Scene, reg *scroll.Registry, options ...ChoreographerBuilderOption) *Choreographer {
	if s == nil || reg == nil {
		panic("choreo: NewChoreographer requires a scene and a registry")
	}
	c := &Choreographer{
		scene:    s,
		registry: reg,
		ease:     DefaultEase(),
		logf:     log.Printf,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Offset returns the offset of the last evaluation.
func (c *Choreographer) Offset() float32 {
	return c.offset
}

// Bindings returns the registered bindings in registration order.
func (c *Choreographer) Bindings() []*Handle {
	return c.bindings
}

// Register adds a binding. Its initial state is computed from the current offset and nothing is
// written: a binding registered inside or past its range does not move the camera until the
// offset changes (or Seek is called).
//
// Parameters:
//   - b: the binding
//
// Returns:
//   - *Handle: the registered binding
//   - error: error if the binding's section handle is unknown to the registry
func (c *Choreographer) Register(b Binding) (*Handle, error) {
	if _, ok := c.registry.Section(b.Section); !ok {
		return nil, fmt.Errorf("binding %q: %w: %d", b.Name, scroll.ErrUnknownSection, int(b.Section))
	}
	if b.Ease == nil {
		b.Ease = c.ease
	}
	h := &Handle{def: b, index: len(c.bindings)}
	c.bindings = append(c.bindings, h)

	if c.resolve(h) {
		h.state = StateAt(c.offset, h.rng)
		h.progress = Progress(c.offset, h.rng)
	}
	return h, nil
}

// Update evaluates every binding at a new scroll offset.
//
// Bindings that left their range, or crossed all of it since the last update, write their
// boundary value first: in registration order when scrolling down and in reverse when scrolling
// up, so chained bindings unwind in the order they were passed. Active bindings then write in
// registration order. A binding's new state is committed only once its write and hook have run,
// so an update cut short by a panicking hook re-issues the missing writes on the next call.
//
// Parameters:
//   - offset: the scroll offset in pixels
func (c *Choreographer) Update(offset float32) {
	down := offset >= c.offset
	c.offset = offset

	var exits, active []step
	for _, h := range c.bindings {
		if !c.resolve(h) {
			h.state, h.progress = StateBefore, 0
			continue
		}
		next := StateAt(offset, h.rng)
		h.progress = Progress(offset, h.rng)

		switch {
		case next == StateActive:
			active = append(active, step{h, next})
		case next != h.state:
			exits = append(exits, step{h, next})
		}
	}

	if down {
		for _, st := range exits {
			c.commit(st)
		}
	} else {
		for i := len(exits) - 1; i >= 0; i-- {
			c.commit(exits[i])
		}
	}
	for _, st := range active {
		c.commit(st)
	}
}

// Seek evaluates every binding at offset as if the page had been scrolled there from the top:
// bindings that are ACTIVE or AFTER write their progress in registration order, whatever their
// previous state. It is the explicit catch-up used when restoring a saved scroll position.
//
// Parameters:
//   - offset: the scroll offset in pixels
func (c *Choreographer) Seek(offset float32) {
	c.offset = offset
	for _, h := range c.bindings {
		if !c.resolve(h) {
			h.state, h.progress = StateBefore, 0
			continue
		}
		next := StateAt(offset, h.rng)
		h.progress = Progress(offset, h.rng)
		if next == StateBefore {
			h.state = next
			continue
		}
		c.commit(step{h, next})
	}
}

// Resize drops cached section ranges and re-evaluates at the current offset. Bindings whose
// trigger now exists resume; bindings whose trigger vanished are suspended.
func (c *Choreographer) Resize() {
	c.registry.Invalidate()
	c.Update(c.offset)
}

// step is a pending transition of one binding within an update.
type step struct {
	h     *Handle
	state State
}

// commit writes the binding and then records its new state.
func (c *Choreographer) commit(st step) {
	c.apply(st.h)
	st.h.state = st.state
}

// resolve refreshes h's range and reports whether the binding can run.
func (c *Choreographer) resolve(h *Handle) bool {
	rng, err := c.registry.Resolve(h.def.Section)
	if err != nil {
		if !h.logged {
			c.logf("[Choreo] binding %q suspended: %v", h.def.Name, err)
			h.logged = true
		}
		h.suspended = true
		return false
	}
	if h.suspended {
		c.logf("[Choreo] binding %q resumed", h.def.Name)
	}
	h.suspended = false
	h.rng = rng
	return true
}

// apply writes h at its current progress and runs its hook if the progress changed.
func (c *Choreographer) apply(h *Handle) {
	cam := c.scene.Camera()
	if !h.captured {
		h.fromPos = cam.Position()
		h.fromLook = lookPoint(c.scene)
		h.captured = true
	}

	e := h.def.Ease(h.progress)
	if h.progress <= 0 {
		e = 0
	} else if h.progress >= 1 {
		e = 1
	}

	if !h.def.Position.Empty() {
		pos := cam.Position()
		for i := range 3 {
			if h.def.Position.Has(i) {
				pos[i] = common.Lerp(h.fromPos[i], h.def.Position.Value[i], e)
			}
		}
		cam.SetPosition(pos)
	}
	if !h.def.LookAt.Empty() {
		pt := h.fromLook
		for i := range 3 {
			if h.def.LookAt.Has(i) {
				pt[i] = common.Lerp(h.fromLook[i], h.def.LookAt.Value[i], e)
			}
		}
		cam.LookAt(pt)
	}

	if h.hasWritten && h.lastWrite == h.progress {
		return
	}
	if h.def.OnProgress != nil {
		if err := h.def.OnProgress(h.progress, c.scene); err != nil {
			c.logf("[Choreo] binding %q: on progress: %v", h.def.Name, err)
		}
	}
	h.lastWrite = h.progress
	h.hasWritten = true
}

// lookPoint returns the camera's look-at point, or a point one unit ahead if it has none.
func lookPoint(s scene.Scene) [3]float32 {
	cam := s.Camera()
	if t, ok := cam.Target(); ok {
		return t
	}
	return common.Add3(cam.Position(), cam.Direction())
}
