package scroll

import (
	"errors"
	"fmt"
)

// ErrElementNotFound is returned when a section's trigger element is not in the layout.
var ErrElementNotFound = errors.New("trigger element not found")

// ErrUnknownSection is returned when resolving a handle the registry did not issue.
var ErrUnknownSection = errors.New("unknown section handle")

// Section is a named scroll range defined by a trigger element and two anchors.
type Section struct {
	Name    string
	Trigger string
	Start   Anchor
	End     Anchor
}

// Range is a resolved section in scroll pixels.
type Range struct {
	Start float32
	End   float32
}

// Width returns End - Start.
func (r Range) Width() float32 {
	return r.End - r.Start
}

// SectionHandle identifies a registered section.
type SectionHandle int

type resolved struct {
	generation uint64
	valid      bool
	rng        Range
	err        error
}

// Registry holds the ordered set of page sections and resolves their anchors against a Layout.
//
// Resolution is lazy: a section is resolved on first query and again only after the layout's
// generation changes or Invalidate is called. It is not safe for concurrent use.
type Registry struct {
	layout   Layout
	sections []Section
	cache    []resolved
}

// NewRegistry creates an empty registry over a layout.
//
// Parameters:
//   - layout: the element geometry anchors are resolved against
//
// Returns:
//   - *Registry: the new registry
func NewRegistry(layout Layout) *Registry {
	if layout == nil {
		panic("scroll: NewRegistry requires a layout")
	}
	return &Registry{layout: layout}
}

// Register appends a section. Sections are immutable once registered.
//
// Parameters:
//   - s: the section definition
//
// Returns:
//   - SectionHandle: the handle to resolve the section with
func (r *Registry) Register(s Section) SectionHandle {
	r.sections = append(r.sections, s)
	r.cache = append(r.cache, resolved{})
	return SectionHandle(len(r.sections) - 1)
}

// Section returns the definition behind a handle.
func (r *Registry) Section(h SectionHandle) (Section, bool) {
	if int(h) < 0 || int(h) >= len(r.sections) {
		return Section{}, false
	}
	return r.sections[h], true
}

// Len returns the number of registered sections.
func (r *Registry) Len() int {
	return len(r.sections)
}

// Layout returns the layout the registry resolves against.
func (r *Registry) Layout() Layout {
	return r.layout
}

// Resolve returns the section's scroll range. An end anchor that resolves above the start
// anchor is clamped to the start, giving a zero-width range.
//
// Parameters:
//   - h: the section handle
//
// Returns:
//   - Range: start and end scroll offsets
//   - error: ErrElementNotFound (wrapped with the section name) if the trigger is missing
func (r *Registry) Resolve(h SectionHandle) (Range, error) {
	if int(h) < 0 || int(h) >= len(r.sections) {
		return Range{}, fmt.Errorf("%w: %d", ErrUnknownSection, int(h))
	}

	gen := r.layout.Generation()
	c := &r.cache[h]
	if c.valid && c.generation == gen {
		return c.rng, c.err
	}

	s := r.sections[h]
	c.generation = gen
	c.valid = true
	c.rng, c.err = Range{}, nil

	rect, ok := r.layout.Element(s.Trigger)
	if !ok {
		c.err = fmt.Errorf("section %q: %w: %q", s.Name, ErrElementNotFound, s.Trigger)
		return c.rng, c.err
	}

	vh := r.layout.ViewportHeight()
	start := s.Start.offset(rect, vh)
	end := max(s.End.offset(rect, vh), start)
	c.rng = Range{Start: start, End: end}
	return c.rng, nil
}

// Invalidate drops every cached resolution so the next Resolve recomputes.
func (r *Registry) Invalidate() {
	for i := range r.cache {
		r.cache[i].valid = false
	}
}
