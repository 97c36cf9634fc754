package particle

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Carmen-Shannon/oxy-scroll/common"
)

// Variant selects how a field is generated and animated.
type Variant int

const (
	// VariantStatic is a plain point cloud whose only animation is a rotation of the whole
	// cloud proportional to elapsed time.
	VariantStatic Variant = iota

	// VariantFirefly gives every point an independent random scale, fixed at construction,
	// and animates size and opacity in the shader from a shared time value.
	VariantFirefly
)

// String returns the config name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantStatic:
		return "static"
	case VariantFirefly:
		return "firefly"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ErrUnknownVariant is returned by ParseVariant for unrecognised names.
var ErrUnknownVariant = errors.New("unknown particle variant")

// ParseVariant converts a config name ("static", "firefly" or "fireflies") into a Variant.
//
// Parameters:
//   - s: the variant name
//
// Returns:
//   - Variant: the parsed variant
//   - error: ErrUnknownVariant for unrecognised names
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "static", "points":
		return VariantStatic, nil
	case "firefly", "fireflies":
		return VariantFirefly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// field is the implementation of the Field interface.
type field struct {
	name    string
	variant Variant
	count   int

	boundsMin [3]float32
	boundsMax [3]float32
	scaleMin  float32
	scaleMax  float32
	seed      uint64
	workers   int
	chunkSize int

	size          float32
	color         [3]float32
	position      [3]float32
	rotationSpeed [3]float32

	positions [][3]float32
	scales    []float32

	rotation [3]float32
	time     float32
}

// Field is a procedurally generated point cloud.
//
// Positions, and for the firefly variant the per-point scales, are generated once by NewField
// and never change. Update is the per-frame hook: it only moves the shared rotation (static)
// or the shared time value (firefly).
type Field interface {
	// Name returns the field identifier.
	Name() string

	// Variant returns the field's variant.
	Variant() Variant

	// Count returns the number of points. Zero is a valid, empty field.
	Count() int

	// Positions returns the model-space point positions. The slice must not be modified.
	Positions() [][3]float32

	// Scales returns the per-point scales of a firefly field, or nil for a static field.
	// The slice must not be modified.
	Scales() []float32

	// Size returns the world-space point size.
	Size() float32

	// Color returns the point colour.
	Color() [3]float32

	// Time returns the shared elapsed time last passed to Update.
	Time() float32

	// Rotation returns the cloud's current Euler rotation in radians.
	Rotation() [3]float32

	// Update advances the field to elapsed seconds since the render loop started.
	//
	// Parameters:
	//   - elapsed: monotonic seconds since loop start
	Update(elapsed float32)

	// ModelMatrix returns the field's local transform (offset and rotation).
	ModelMatrix() [16]float32

	// Instances packs the points into GPU instance records.
	//
	// Returns:
	//   - []GPUParticle: one record per point, scale 1 for static fields
	Instances() []GPUParticle

	// Globals returns the per-field uniform for the current frame.
	//
	// Parameters:
	//   - parent: the transform of the scene root the field hangs from
	//
	// Returns:
	//   - GPUFieldGlobals: the uniform block
	Globals(parent [16]float32) GPUFieldGlobals
}

var _ Field = &field{}

// NewField generates a point field of the given variant.
//
// Parameters:
//   - variant: VariantStatic or VariantFirefly
//   - options: a variadic list of FieldBuilderOption functions
//
// Returns:
//   - Field: the generated field
//   - error: error if the options describe an impossible field
func NewField(variant Variant, options ...FieldBuilderOption) (Field, error) {
	f := &field{
		variant:   variant,
		color:     [3]float32{1, 1, 1},
		seed:      1,
		workers:   4,
		chunkSize: 4096,
	}

	switch variant {
	case VariantStatic:
		f.name = "particles"
		f.count = 200
		f.boundsMin = [3]float32{-5, 0, -5}
		f.boundsMax = [3]float32{5, 10, 5}
		f.size = 0.03
		f.rotationSpeed = [3]float32{0.05, 0, 0}
	case VariantFirefly:
		f.name = "fireflies"
		f.count = 30
		f.boundsMin = [3]float32{-2, 0, -2}
		f.boundsMax = [3]float32{2, 1.5, 2}
		f.size = 0.15
		f.scaleMin = 0
		f.scaleMax = 1
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(variant))
	}

	for _, opt := range options {
		opt(f)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("particle field %q: %w", f.name, err)
	}

	f.positions = make([][3]float32, f.count)
	if f.variant == VariantFirefly {
		f.scales = make([]float32, f.count)
	}

	err := generate(f.count, f.chunkSize, f.workers, f.seed, func(r *rand.Rand, i int) {
		for a := range 3 {
			f.positions[i][a] = uniform(r, f.boundsMin[a], f.boundsMax[a])
		}
		if f.scales != nil {
			f.scales[i] = uniform(r, f.scaleMin, f.scaleMax)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("particle field %q: %w", f.name, err)
	}
	return f, nil
}

func (f *field) validate() error {
	var errs []error
	if f.count < 0 {
		errs = append(errs, fmt.Errorf("count must be >= 0, got %d", f.count))
	}
	for a := range 3 {
		if f.boundsMax[a] < f.boundsMin[a] {
			errs = append(errs, fmt.Errorf("bounds axis %d: max %g < min %g", a, f.boundsMax[a], f.boundsMin[a]))
		}
	}
	if f.scaleMax < f.scaleMin {
		errs = append(errs, fmt.Errorf("scale range: max %g < min %g", f.scaleMax, f.scaleMin))
	}
	if f.size < 0 {
		errs = append(errs, fmt.Errorf("size must be >= 0, got %g", f.size))
	}
	return errors.Join(errs...)
}

func (f *field) Name() string {
	return f.name
}

func (f *field) Variant() Variant {
	return f.variant
}

func (f *field) Count() int {
	return f.count
}

func (f *field) Positions() [][3]float32 {
	return f.positions
}

func (f *field) Scales() []float32 {
	return f.scales
}

func (f *field) Size() float32 {
	return f.size
}

func (f *field) Color() [3]float32 {
	return f.color
}

func (f *field) Time() float32 {
	return f.time
}

func (f *field) Rotation() [3]float32 {
	return f.rotation
}

func (f *field) Update(elapsed float32) {
	f.time = elapsed
	for a := range 3 {
		f.rotation[a] = f.rotationSpeed[a] * elapsed
	}
}

func (f *field) ModelMatrix() [16]float32 {
	var out [16]float32
	common.BuildModelMatrix(out[:], f.position, f.rotation, [3]float32{1, 1, 1})
	return out
}

func (f *field) Instances() []GPUParticle {
	out := make([]GPUParticle, f.count)
	for i, p := range f.positions {
		out[i] = GPUParticle{Position: p, Scale: 1}
		if f.scales != nil {
			out[i].Scale = f.scales[i]
		}
	}
	return out
}

func (f *field) Globals(parent [16]float32) GPUFieldGlobals {
	local := f.ModelMatrix()
	g := GPUFieldGlobals{
		Color:     f.color,
		PointSize: f.size,
		Time:      f.time,
		Variant:   uint32(f.variant),
	}
	common.Mul4(g.Model[:], parent[:], local[:])
	return g
}
