package scroll

// ScrollerBuilderOption is a functional option for configuring a Scroller via NewScroller.
type ScrollerBuilderOption func(*Scroller)

// WithSmoothing enables spring smoothing of the displayed offset.
//
// Parameters:
//   - frequency: angular frequency of the spring; higher follows the target faster
//   - damping: damping ratio; 1 is critically damped (no overshoot)
//
// Returns:
//   - ScrollerBuilderOption: a function that applies the smoothing option to a scroller
func WithSmoothing(frequency, damping float64) ScrollerBuilderOption {
	return func(s *Scroller) {
		s.smooth = true
		if frequency > 0 {
			s.frequency = frequency
		}
		if damping >= 0 {
			s.damping = damping
		}
	}
}

// WithoutSmoothing makes the displayed offset jump to the target on the next Advance.
func WithoutSmoothing() ScrollerBuilderOption {
	return func(s *Scroller) {
		s.smooth = false
	}
}

// WithLineStep sets how many pixels one wheel line scrolls.
func WithLineStep(px float32) ScrollerBuilderOption {
	return func(s *Scroller) {
		if px > 0 {
			s.lineStep = px
		}
	}
}
