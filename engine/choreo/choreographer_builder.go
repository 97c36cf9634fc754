package choreo

// ChoreographerBuilderOption is a functional option for configuring a Choreographer.
type ChoreographerBuilderOption func(*Choreographer)

// WithDefaultEase sets the ease used by bindings that do not name one.
//
// Parameters:
//   - e: the ease; nil keeps the built-in default
//
// Returns:
//   - ChoreographerBuilderOption: a function that applies the ease option
func WithDefaultEase(e EaseFunc) ChoreographerBuilderOption {
	return func(c *Choreographer) {
		if e != nil {
			c.ease = e
		}
	}
}

// WithInitialOffset sets the offset bindings registered afterwards compute their initial state
// from.
func WithInitialOffset(offset float32) ChoreographerBuilderOption {
	return func(c *Choreographer) {
		c.offset = offset
	}
}

// WithLogf replaces log.Printf for suspension and hook error messages.
func WithLogf(logf func(format string, args ...any)) ChoreographerBuilderOption {
	return func(c *Choreographer) {
		if logf != nil {
			c.logf = logf
		}
	}
}
