package scroll

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Listener is notified with the displayed scroll offset whenever it changes.
type Listener func(offset float32)

// Extent reports the current maximum scroll offset.
type Extent interface {
	ScrollHeight() float32
	ViewportHeight() float32
}

const (
	settleDistance = 0.25
	settleVelocity = 1.0
)

// Scroller turns discrete input (wheel lines, page keys) into a continuous scroll offset.
//
// It keeps a target offset, moved instantly by input, and a displayed offset that follows the
// target through a critically damped spring on each Advance. Listeners only ever see the
// displayed offset. It is not safe for concurrent use.
type Scroller struct {
	extent Extent

	target    float64
	pos       float64
	vel       float64
	maxOffset float64

	smooth    bool
	frequency float64
	damping   float64
	lineStep  float32

	spring   harmonica.Spring
	springDt time.Duration

	listeners []Listener
}

// NewScroller creates a scroller at offset 0 over an extent.
//
// Parameters:
//   - extent: provides the scroll height and viewport height
//   - options: a variadic list of ScrollerBuilderOption functions
//
// Returns:
//   - *Scroller: the new scroller
func NewScroller(extent Extent, options ...ScrollerBuilderOption) *Scroller {
	if extent == nil {
		panic("scroll: NewScroller requires an extent")
	}
	s := &Scroller{
		extent:    extent,
		smooth:    true,
		frequency: 7,
		damping:   1,
		lineStep:  40,
	}
	for _, opt := range options {
		opt(s)
	}
	s.maxOffset = float64(extent.ScrollHeight())
	return s
}

// Subscribe registers a listener for displayed offset changes.
func (s *Scroller) Subscribe(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// Offset returns the displayed scroll offset.
func (s *Scroller) Offset() float32 {
	return float32(s.pos)
}

// Target returns the offset the scroller is moving toward.
func (s *Scroller) Target() float32 {
	return float32(s.target)
}

// Max returns the largest reachable offset.
func (s *Scroller) Max() float32 {
	return float32(s.maxOffset)
}

// Settled reports whether the displayed offset has reached the target.
func (s *Scroller) Settled() bool {
	return s.pos == s.target && s.vel == 0
}

// ScrollTo sets the target offset, clamped to [0, Max].
func (s *Scroller) ScrollTo(y float32) {
	s.target = s.clamp(float64(y))
}

// ScrollBy moves the target offset by dy pixels.
func (s *Scroller) ScrollBy(dy float32) {
	s.ScrollTo(float32(s.target) + dy)
}

// ScrollLines moves the target by n wheel lines (positive scrolls down).
func (s *Scroller) ScrollLines(n float32) {
	s.ScrollBy(n * s.lineStep)
}

// Page moves the target by n viewport heights.
func (s *Scroller) Page(n float32) {
	s.ScrollBy(n * s.extent.ViewportHeight())
}

// Home scrolls to the top of the page.
func (s *Scroller) Home() {
	s.ScrollTo(0)
}

// End scrolls to the bottom of the page.
func (s *Scroller) End() {
	s.ScrollTo(float32(s.maxOffset))
}

// Jump moves both the target and the displayed offset, without smoothing, and notifies.
func (s *Scroller) Jump(y float32) {
	s.target = s.clamp(float64(y))
	s.vel = 0
	s.set(s.target)
}

// Advance moves the displayed offset toward the target by one frame of dt.
//
// Parameters:
//   - dt: time since the previous Advance
//
// Returns:
//   - bool: true if the displayed offset changed (listeners were notified)
func (s *Scroller) Advance(dt time.Duration) bool {
	if s.pos == s.target {
		s.vel = 0
		return false
	}
	if !s.smooth || dt <= 0 {
		s.vel = 0
		return s.set(s.target)
	}

	if dt != s.springDt {
		s.spring = harmonica.NewSpring(dt.Seconds(), s.frequency, s.damping)
		s.springDt = dt
	}
	pos, vel := s.spring.Update(s.pos, s.vel, s.target)
	if math.Abs(s.target-pos) < settleDistance && math.Abs(vel) < settleVelocity {
		pos, vel = s.target, 0
	}
	s.vel = vel
	return s.set(s.clamp(pos))
}

// Resize re-reads the scroll height and keeps the same relative scroll position, so content
// anchored to a fraction of the page stays in view.
func (s *Scroller) Resize() {
	newMax := float64(s.extent.ScrollHeight())
	posFrac, targetFrac := 0.0, 0.0
	if s.maxOffset > 0 {
		posFrac = s.pos / s.maxOffset
		targetFrac = s.target / s.maxOffset
	}
	s.maxOffset = newMax
	s.target = s.clamp(targetFrac * newMax)
	s.vel = 0
	s.set(s.clamp(posFrac * newMax))
}

func (s *Scroller) set(p float64) bool {
	if p == s.pos {
		return false
	}
	s.pos = p
	for _, l := range s.listeners {
		l(float32(p))
	}
	return true
}

func (s *Scroller) clamp(y float64) float64 {
	return min(max(y, 0), s.maxOffset)
}
