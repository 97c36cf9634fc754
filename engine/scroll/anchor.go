package scroll

import (
	"errors"
	"fmt"
	"strings"
)

// Edge selects a horizontal line of an element or of the viewport.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeCenter
	EdgeBottom
)

// String returns the keyword form of the edge.
func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeCenter:
		return "center"
	case EdgeBottom:
		return "bottom"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// ErrInvalidAnchor is returned by ParseAnchor for malformed anchor strings.
var ErrInvalidAnchor = errors.New("invalid scroll anchor")

// Anchor pairs an element edge with a viewport edge. It resolves to the scroll offset at which
// the two lines coincide.
type Anchor struct {
	Element  Edge
	Viewport Edge
}

// String returns the anchor in "<element-edge> <viewport-edge>" form.
func (a Anchor) String() string {
	return a.Element.String() + " " + a.Viewport.String()
}

// ParseAnchor parses an anchor of the form "<element-edge> <viewport-edge>", for example
// "top bottom" (the element's top meets the viewport's bottom, i.e. the element starts to enter).
//
// Parameters:
//   - s: the anchor string
//
// Returns:
//   - Anchor: the parsed anchor
//   - error: ErrInvalidAnchor if s is not two known edge keywords
func ParseAnchor(s string) (Anchor, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Anchor{}, fmt.Errorf("%w: %q: want \"<element-edge> <viewport-edge>\"", ErrInvalidAnchor, s)
	}
	el, err := parseEdge(fields[0])
	if err != nil {
		return Anchor{}, fmt.Errorf("%w: %q: %v", ErrInvalidAnchor, s, err)
	}
	vp, err := parseEdge(fields[1])
	if err != nil {
		return Anchor{}, fmt.Errorf("%w: %q: %v", ErrInvalidAnchor, s, err)
	}
	return Anchor{Element: el, Viewport: vp}, nil
}

// MustParseAnchor is like ParseAnchor but panics on error.
func MustParseAnchor(s string) Anchor {
	a, err := ParseAnchor(s)
	if err != nil {
		panic(err)
	}
	return a
}

func parseEdge(s string) (Edge, error) {
	switch strings.ToLower(s) {
	case "top":
		return EdgeTop, nil
	case "center", "middle":
		return EdgeCenter, nil
	case "bottom":
		return EdgeBottom, nil
	default:
		return 0, fmt.Errorf("unknown edge %q", s)
	}
}

// offset returns the scroll offset at which the anchor's element edge meets its viewport edge.
func (a Anchor) offset(r Rect, viewportHeight float32) float32 {
	return r.edge(a.Element) - viewportEdge(a.Viewport, viewportHeight)
}

func viewportEdge(e Edge, h float32) float32 {
	switch e {
	case EdgeCenter:
		return h / 2
	case EdgeBottom:
		return h
	default:
		return 0
	}
}
