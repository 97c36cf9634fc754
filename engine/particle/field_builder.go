package particle

// FieldBuilderOption is a functional option for configuring a Field via NewField.
type FieldBuilderOption func(*field)

// WithName sets the field identifier.
func WithName(name string) FieldBuilderOption {
	return func(f *field) {
		if name != "" {
			f.name = name
		}
	}
}

// WithCount sets the number of points. Zero produces an empty field.
//
// Parameters:
//   - n: the point count (must be >= 0)
//
// Returns:
//   - FieldBuilderOption: a function that applies the count option to a field
func WithCount(n int) FieldBuilderOption {
	return func(f *field) {
		f.count = n
	}
}

// WithBounds sets the axis-aligned box points are placed in, uniformly at random.
//
// Parameters:
//   - lo: minimum corner
//   - hi: maximum corner
//
// Returns:
//   - FieldBuilderOption: a function that applies the bounds option to a field
func WithBounds(lo, hi [3]float32) FieldBuilderOption {
	return func(f *field) {
		f.boundsMin = lo
		f.boundsMax = hi
	}
}

// WithScaleRange sets the range per-point scales are drawn from (firefly variant only).
//
// Parameters:
//   - lo: minimum scale (inclusive)
//   - hi: maximum scale (exclusive)
//
// Returns:
//   - FieldBuilderOption: a function that applies the scale range option to a field
func WithScaleRange(lo, hi float32) FieldBuilderOption {
	return func(f *field) {
		f.scaleMin = lo
		f.scaleMax = hi
	}
}

// WithSeed sets the random seed. Equal seeds generate identical fields.
func WithSeed(seed uint64) FieldBuilderOption {
	return func(f *field) {
		f.seed = seed
	}
}

// WithSize sets the world-space point size.
func WithSize(size float32) FieldBuilderOption {
	return func(f *field) {
		f.size = size
	}
}

// WithColor sets the point colour.
func WithColor(c [3]float32) FieldBuilderOption {
	return func(f *field) {
		f.color = c
	}
}

// WithPosition offsets the whole field from the scene root.
func WithPosition(p [3]float32) FieldBuilderOption {
	return func(f *field) {
		f.position = p
	}
}

// WithRotationSpeed sets the per-axis rotation in radians per elapsed second.
//
// Parameters:
//   - speed: radians per second around X, Y and Z
//
// Returns:
//   - FieldBuilderOption: a function that applies the rotation speed option to a field
func WithRotationSpeed(speed [3]float32) FieldBuilderOption {
	return func(f *field) {
		f.rotationSpeed = speed
	}
}

// WithWorkers caps the number of goroutines used for generation.
func WithWorkers(n int) FieldBuilderOption {
	return func(f *field) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithChunkSize sets how many points each generation task produces. Changing it changes the
// generated positions for a given seed.
func WithChunkSize(n int) FieldBuilderOption {
	return func(f *field) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}
