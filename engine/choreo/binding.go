package choreo

import (
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
)

// State is a binding's position relative to its section's scroll range.
type State int

const (
	// StateBefore means the offset is above the range start (or the section is unresolvable).
	StateBefore State = iota
	// StateActive means start <= offset <= end.
	StateActive
	// StateAfter means the offset is past the range end.
	StateAfter
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateBefore:
		return "before"
	case StateActive:
		return "active"
	case StateAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Axis is a bit set of vector components.
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ
)

// Partial3 is a 3-vector where only the components in Axes are meaningful.
type Partial3 struct {
	Value [3]float32
	Axes  Axis
}

// Set returns p with component i (0 = x, 1 = y, 2 = z) set to v.
func (p Partial3) Set(i int, v float32) Partial3 {
	p.Value[i] = v
	p.Axes |= Axis(1) << i
	return p
}

// Has reports whether component i is set.
func (p Partial3) Has(i int) bool {
	return p.Axes&(Axis(1)<<i) != 0
}

// Empty reports whether no component is set.
func (p Partial3) Empty() bool {
	return p.Axes == 0
}

// Vec returns a Partial3 with every component set.
func Vec(x, y, z float32) Partial3 {
	return Partial3{Value: [3]float32{x, y, z}, Axes: AxisX | AxisY | AxisZ}
}

// ProgressFunc is called after a binding writes the scene, every time its progress changes.
type ProgressFunc func(progress float32, s scene.Scene) error

// Binding ties camera keyframe targets to a section's scroll range.
type Binding struct {
	// Name identifies the binding in logs.
	Name string

	// Section is the registry handle of the section that drives the binding.
	Section scroll.SectionHandle

	// Position holds the camera position components to move, and their values at progress 1.
	Position Partial3

	// LookAt holds look-at point components to move. When any is set the camera is re-oriented
	// toward the interpolated point on every write.
	LookAt Partial3

	// Ease shapes progress; nil uses the choreographer's default ease.
	Ease EaseFunc

	// OnProgress runs after each write. May be nil.
	OnProgress ProgressFunc
}

// LookAt returns a ProgressFunc that orients the scene camera toward a fixed point, recomputing
// the facing direction from the camera's freshly written position.
//
// Parameters:
//   - point: the world-space point to face
//
// Returns:
//   - ProgressFunc: the hook
func LookAt(point [3]float32) ProgressFunc {
	return func(_ float32, s scene.Scene) error {
		s.Camera().LookAt(point)
		return nil
	}
}

// Chain runs several hooks in order and stops at the first error.
func Chain(hooks ...ProgressFunc) ProgressFunc {
	return func(p float32, s scene.Scene) error {
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if err := h(p, s); err != nil {
				return err
			}
		}
		return nil
	}
}

// Progress returns the binding progress of an offset within a range, always in [0, 1].
// A zero-width range is a step: 0 below the start, 1 at or past it.
//
// Parameters:
//   - offset: the scroll offset
//   - r: the resolved range
//
// Returns:
//   - float32: progress in [0, 1]
func Progress(offset float32, r scroll.Range) float32 {
	w := r.Width()
	if w <= 0 {
		if offset < r.Start {
			return 0
		}
		return 1
	}
	return min(max((offset-r.Start)/w, 0), 1)
}

// StateAt returns the state of an offset relative to a range. Both ends are inclusive.
func StateAt(offset float32, r scroll.Range) State {
	switch {
	case offset < r.Start:
		return StateBefore
	case offset > r.End:
		return StateAfter
	default:
		return StateActive
	}
}
