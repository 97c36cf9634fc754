package choreo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// EaseFunc maps linear progress in [0, 1] to eased progress. It must return 0 at 0 and 1 at 1.
type EaseFunc func(t float32) float32

// DefaultEaseName is the ease used when a binding does not name one.
const DefaultEaseName = "power1.inOut"

// ErrUnknownEase is returned by EaseByName for unrecognised names.
var ErrUnknownEase = errors.New("unknown ease")

// Linear is the identity ease.
func Linear(t float32) float32 {
	return t
}

// DefaultEase returns the ease named by DefaultEaseName.
func DefaultEase() EaseFunc {
	return powerInOut(1)
}

// EaseByName looks up an ease by name. Names are "<family>" or "<family>.<in|out|inOut>", where
// family is none, linear, power0 to power4 (or quad, cubic, quart, quint) or sine. A family with
// no direction eases out.
//
// Parameters:
//   - name: the ease name; empty selects DefaultEaseName
//
// Returns:
//   - EaseFunc: the ease
//   - error: ErrUnknownEase for unrecognised names
func EaseByName(name string) (EaseFunc, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEaseName
	}

	family, dir, _ := strings.Cut(name, ".")
	family = strings.ToLower(family)
	dir = strings.ToLower(dir)
	if dir == "" {
		dir = "out"
	}

	switch family {
	case "none", "linear", "power0":
		return Linear, nil
	case "sine":
		switch dir {
		case "in":
			return sineIn, nil
		case "out":
			return sineOut, nil
		case "inout":
			return sineInOut, nil
		}
	default:
		if n, ok := powerOf(family); ok {
			switch dir {
			case "in":
				return powerIn(n), nil
			case "out":
				return powerOut(n), nil
			case "inout":
				return powerInOut(n), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEase, name)
}

func powerOf(family string) (int, bool) {
	switch family {
	case "power1", "quad":
		return 1, true
	case "power2", "cubic":
		return 2, true
	case "power3", "quart":
		return 3, true
	case "power4", "quint", "strong":
		return 4, true
	}
	return 0, false
}

func powerIn(n int) EaseFunc {
	exp := float32(n + 1)
	return func(t float32) float32 {
		return math32.Pow(t, exp)
	}
}

func powerOut(n int) EaseFunc {
	exp := float32(n + 1)
	return func(t float32) float32 {
		return 1 - math32.Pow(1-t, exp)
	}
}

func powerInOut(n int) EaseFunc {
	exp := float32(n + 1)
	return func(t float32) float32 {
		if t < 0.5 {
			return math32.Pow(2*t, exp) / 2
		}
		return 1 - math32.Pow(2-2*t, exp)/2
	}
}

func sineIn(t float32) float32 {
	if t >= 1 {
		return 1
	}
	return 1 - math32.Cos(t*math32.Pi/2)
}

func sineOut(t float32) float32 {
	return math32.Sin(t * math32.Pi / 2)
}

func sineInOut(t float32) float32 {
	if t >= 1 {
		return 1
	}
	return -(math32.Cos(math32.Pi*t) - 1) / 2
}
