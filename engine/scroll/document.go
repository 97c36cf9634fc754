package scroll

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Rect is the vertical extent of a page element in document pixels.
type Rect struct {
	Top    float32
	Height float32
}

// Bottom returns the element's bottom coordinate.
func (r Rect) Bottom() float32 {
	return r.Top + r.Height
}

func (r Rect) edge(e Edge) float32 {
	switch e {
	case EdgeCenter:
		return r.Top + r.Height/2
	case EdgeBottom:
		return r.Bottom()
	default:
		return r.Top
	}
}

// Layout is the source of element geometry that anchors resolve against.
type Layout interface {
	// Element returns the rect of the element with the given id.
	//
	// Parameters:
	//   - id: the element id
	//
	// Returns:
	//   - Rect: the element's extent in document pixels
	//   - bool: false if no such element exists
	Element(id string) (Rect, bool)

	// ViewportHeight returns the current viewport height in pixels.
	ViewportHeight() float32

	// Generation returns a counter that changes whenever element geometry may have changed.
	Generation() uint64
}

// Unit is the unit of a block height.
type Unit int

const (
	UnitPixels Unit = iota
	UnitViewport
)

// Length is a block height in pixels or viewport-height percent.
type Length struct {
	Value float32
	Unit  Unit
}

// Px returns a pixel length.
func Px(v float32) Length { return Length{Value: v, Unit: UnitPixels} }

// Vh returns a viewport-relative length (100 = one viewport).
func Vh(v float32) Length { return Length{Value: v, Unit: UnitViewport} }

// String returns the length in "<n>px" or "<n>vh" form.
func (l Length) String() string {
	unit := "px"
	if l.Unit == UnitViewport {
		unit = "vh"
	}
	return strconv.FormatFloat(float64(l.Value), 'f', -1, 32) + unit
}

// ErrInvalidLength is returned by ParseLength.
var ErrInvalidLength = errors.New("invalid length")

// ParseLength parses "120vh", "800px" or a bare number of pixels.
//
// Parameters:
//   - s: the length string
//
// Returns:
//   - Length: the parsed length
//   - error: ErrInvalidLength for malformed or negative values
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := UnitPixels
	switch {
	case strings.HasSuffix(s, "vh"):
		unit = UnitViewport
		s = strings.TrimSuffix(s, "vh")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return Length{}, fmt.Errorf("%w: %v", ErrInvalidLength, err)
	}
	if v < 0 {
		return Length{}, fmt.Errorf("%w: negative value %g", ErrInvalidLength, v)
	}
	return Length{Value: float32(v), Unit: unit}, nil
}

func (l Length) pixels(viewportHeight float32) float32 {
	if l.Unit == UnitViewport {
		return l.Value * viewportHeight / 100
	}
	return l.Value
}

// Block is one element of a Document, stacked below the previous one.
type Block struct {
	ID     string
	Height Length
}

// Document is a Layout made of vertically stacked blocks, standing in for the page body the
// scene is scrolled over. It is not safe for concurrent use.
type Document struct {
	blocks []Block
	rects  map[string]Rect

	width      float32
	height     float32
	total      float32
	generation uint64
}

var _ Layout = &Document{}

// NewDocument lays out blocks for a viewport of the given size.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//   - blocks: the page blocks, top to bottom
//
// Returns:
//   - *Document: the laid-out document
func NewDocument(width, height float32, blocks ...Block) *Document {
	d := &Document{blocks: append([]Block(nil), blocks...)}
	d.Resize(width, height)
	return d
}

// Resize re-lays the document out for a new viewport size and bumps the generation.
func (d *Document) Resize(width, height float32) {
	d.width = max(width, 0)
	d.height = max(height, 0)
	d.rects = make(map[string]Rect, len(d.blocks))

	var y float32
	for _, b := range d.blocks {
		h := b.Height.pixels(d.height)
		if b.ID != "" {
			d.rects[b.ID] = Rect{Top: y, Height: h}
		}
		y += h
	}
	d.total = y
	d.generation++
}

func (d *Document) Element(id string) (Rect, bool) {
	r, ok := d.rects[id]
	return r, ok
}

func (d *Document) ViewportHeight() float32 {
	return d.height
}

// ViewportWidth returns the current viewport width in pixels.
func (d *Document) ViewportWidth() float32 {
	return d.width
}

func (d *Document) Generation() uint64 {
	return d.generation
}

// Height returns the total document height.
func (d *Document) Height() float32 {
	return d.total
}

// ScrollHeight returns the maximum scroll offset: document height minus viewport height.
func (d *Document) ScrollHeight() float32 {
	return max(d.total-d.height, 0)
}
