package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/engine/camera"
	"github.com/Carmen-Shannon/oxy-scroll/engine/choreo"
	"github.com/Carmen-Shannon/oxy-scroll/engine/light"
	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
	"github.com/Carmen-Shannon/oxy-scroll/engine/particle"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scroll"
)

// Validate checks the whole description and reports every problem found.
//
// Returns:
//   - error: all problems joined with errors.Join, or nil
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		add("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	for _, lim := range [][2]int{{c.Window.MinWidth, c.Window.MaxWidth}, {c.Window.MinHeight, c.Window.MaxHeight}} {
		if lim[0] < 0 || lim[1] < 0 || (lim[1] > 0 && lim[0] > lim[1]) {
			add("window: size limits must satisfy 0 <= min <= max, got min=%d max=%d", lim[0], lim[1])
		}
	}
	if !slices.Contains([]int{0, 1, 4, 8, 16}, c.Render.MSAA) {
		add("render: msaa must be 1, 4, 8 or 16, got %d", c.Render.MSAA)
	}
	if c.Render.FPS < 0 {
		add("render: fps must be >= 0, got %d", c.Render.FPS)
	}
	if c.Render.Background != "" {
		if _, err := common.ParseHexColor(c.Render.Background); err != nil {
			add("render: background: %w", err)
		}
	}
	if c.Scroll.PixelsPerLine < 0 {
		add("scroll: pixels_per_line must be >= 0")
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		add("camera: need 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		add("camera: fov must be in (0, 180) degrees, got %g", c.Camera.FOV)
	}

	for i, l := range c.Lights {
		if _, err := parseLightType(l.Type); err != nil {
			add("lights[%d]: %w", i, err)
		}
		if l.Color != "" {
			if _, err := common.ParseHexColor(l.Color); err != nil {
				add("lights[%d]: %w", i, err)
			}
		}
	}

	for i, p := range c.Particles {
		if _, err := particle.ParseVariant(p.Variant); err != nil {
			add("particles[%d]: %w", i, err)
		}
		if p.Count != nil && *p.Count < 0 {
			add("particles[%d]: count must be >= 0, got %d", i, *p.Count)
		}
		if p.Color != "" {
			if _, err := common.ParseHexColor(p.Color); err != nil {
				add("particles[%d]: %w", i, err)
			}
		}
	}

	for i, m := range c.Models {
		if strings.TrimSpace(m.Path) == "" {
			add("models[%d]: path is required", i)
		}
	}

	ids := make(map[string]bool, len(c.Page))
	for i, b := range c.Page {
		if _, err := scroll.ParseLength(b.Height); err != nil {
			add("page[%d]: %w", i, err)
		}
		if b.ID != "" && ids[b.ID] {
			add("page[%d]: duplicate id %q", i, b.ID)
		}
		ids[b.ID] = true
	}

	sections := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		if s.Name == "" {
			add("sections[%d]: name is required", i)
		} else if sections[s.Name] {
			add("sections[%d]: duplicate name %q", i, s.Name)
		}
		sections[s.Name] = true
		if _, err := scroll.ParseAnchor(s.Start); err != nil {
			add("sections[%d] %q: start: %w", i, s.Name, err)
		}
		if _, err := scroll.ParseAnchor(s.End); err != nil {
			add("sections[%d] %q: end: %w", i, s.Name, err)
		}
	}

	if _, err := choreo.EaseByName(c.Ease); err != nil {
		add("ease: %w", err)
	}
	for i, b := range c.Bindings {
		if !sections[b.Section] {
			add("bindings[%d]: unknown section %q", i, b.Section)
		}
		if b.Ease != "" {
			if _, err := choreo.EaseByName(b.Ease); err != nil {
				add("bindings[%d]: %w", i, err)
			}
		}
	}

	return errors.Join(errs...)
}

// BackgroundColor returns the parsed clear colour (black if unset).
func (c *Config) BackgroundColor() [3]float32 {
	col, _ := common.ParseHexColor(common.Coalesce(c.Render.Background, "#000000"))
	return col
}

// CameraOptions converts the camera description into builder options.
//
// Returns:
//   - []camera.CameraBuilderOption: options for camera.NewCamera
func (c *Config) CameraOptions() []camera.CameraBuilderOption {
	opts := []camera.CameraBuilderOption{
		camera.WithFovDegrees(c.Camera.FOV),
		camera.WithClipPlanes(c.Camera.Near, c.Camera.Far),
		camera.WithPosition(c.Camera.Position.Array()),
	}
	if c.Window.Height > 0 {
		opts = append(opts, camera.WithAspect(float32(c.Window.Width)/float32(c.Window.Height)))
	}
	if c.Camera.LookAt != nil {
		opts = append(opts, camera.WithLookAt(c.Camera.LookAt.Array()))
	}
	return opts
}

// BuildLights creates the configured lights.
//
// Returns:
//   - []light.Light: the lights, in file order
//   - error: error if a light type or colour is invalid
func (c *Config) BuildLights() ([]light.Light, error) {
	out := make([]light.Light, 0, len(c.Lights))
	for i, l := range c.Lights {
		typ, err := parseLightType(l.Type)
		if err != nil {
			return nil, fmt.Errorf("lights[%d]: %w", i, err)
		}
		col, err := common.ParseHexColor(common.Coalesce(l.Color, "#ffffff"))
		if err != nil {
			return nil, fmt.Errorf("lights[%d]: %w", i, err)
		}
		opts := []light.LightBuilderOption{
			light.WithColor(col),
			light.WithIntensity(common.Coalesce(l.Intensity, 1)),
			light.WithPosition(l.Position.Array()),
		}
		if l.Direction != nil {
			opts = append(opts, light.WithDirection(l.Direction.Array()))
		}
		if l.Range > 0 {
			opts = append(opts, light.WithRange(l.Range))
		}
		out = append(out, light.NewLight(typ, opts...))
	}
	return out, nil
}

// BuildFields generates the configured particle fields.
//
// Returns:
//   - []particle.Field: the fields, in file order
//   - error: error if a field description is invalid
func (c *Config) BuildFields() ([]particle.Field, error) {
	out := make([]particle.Field, 0, len(c.Particles))
	for i, p := range c.Particles {
		variant, opts, err := p.options()
		if err != nil {
			return nil, fmt.Errorf("particles[%d]: %w", i, err)
		}
		f, err := particle.NewField(variant, opts...)
		if err != nil {
			return nil, fmt.Errorf("particles[%d]: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (p ParticleConfig) options() (particle.Variant, []particle.FieldBuilderOption, error) {
	variant, err := particle.ParseVariant(p.Variant)
	if err != nil {
		return 0, nil, err
	}
	opts := []particle.FieldBuilderOption{
		particle.WithName(p.Name),
		particle.WithPosition(p.Position.Array()),
		particle.WithWorkers(p.Workers),
	}
	if p.Count != nil {
		opts = append(opts, particle.WithCount(*p.Count))
	}
	if p.Seed != 0 {
		opts = append(opts, particle.WithSeed(p.Seed))
	}
	if p.Size > 0 {
		opts = append(opts, particle.WithSize(p.Size))
	}
	if p.Color != "" {
		col, err := common.ParseHexColor(p.Color)
		if err != nil {
			return 0, nil, err
		}
		opts = append(opts, particle.WithColor(col))
	}
	if p.Bounds != nil {
		opts = append(opts, particle.WithBounds(p.Bounds.Min.Array(), p.Bounds.Max.Array()))
	}
	if p.RotationSpeed != nil {
		opts = append(opts, particle.WithRotationSpeed(p.RotationSpeed.Array()))
	}
	if p.Scale != nil {
		opts = append(opts, particle.WithScaleRange(p.Scale.Min, p.Scale.Max))
	}
	return variant, opts, nil
}

// Place applies the configured placement to a loaded model.
//
// Parameters:
//   - mdl: the model to position
func (m ModelConfig) Place(mdl model.Model) {
	mdl.SetPosition(m.Position.Array())
	mdl.SetRotation(m.Rotation.Array())
	if m.Scale != nil {
		mdl.SetScale(m.Scale.Array())
	}
}

// Blocks converts the page description into document blocks.
//
// Returns:
//   - []scroll.Block: the blocks, top to bottom
//   - error: error if a height is malformed
func (c *Config) Blocks() ([]scroll.Block, error) {
	out := make([]scroll.Block, 0, len(c.Page))
	for i, b := range c.Page {
		h, err := scroll.ParseLength(b.Height)
		if err != nil {
			return nil, fmt.Errorf("page[%d]: %w", i, err)
		}
		out = append(out, scroll.Block{ID: b.ID, Height: h})
	}
	return out, nil
}

// SectionDefs converts the section list into registry sections.
//
// Returns:
//   - []scroll.Section: the sections, in file order
//   - error: error if an anchor is malformed
func (c *Config) SectionDefs() ([]scroll.Section, error) {
	out := make([]scroll.Section, 0, len(c.Sections))
	for i, s := range c.Sections {
		start, err := scroll.ParseAnchor(s.Start)
		if err != nil {
			return nil, fmt.Errorf("sections[%d] %q: start: %w", i, s.Name, err)
		}
		end, err := scroll.ParseAnchor(s.End)
		if err != nil {
			return nil, fmt.Errorf("sections[%d] %q: end: %w", i, s.Name, err)
		}
		out = append(out, scroll.Section{Name: s.Name, Trigger: s.Trigger, Start: start, End: end})
	}
	return out, nil
}

// ToBinding converts a binding description into a choreographer binding.
//
// Parameters:
//   - section: the registry handle of the binding's section
//
// Returns:
//   - choreo.Binding: the binding; a nil Ease means the choreographer default
//   - error: error if the ease name is unknown
func (b BindingConfig) ToBinding(section scroll.SectionHandle) (choreo.Binding, error) {
	out := choreo.Binding{
		Name:     common.Coalesce(b.Name, b.Section),
		Section:  section,
		Position: b.Position.partial(),
		LookAt:   b.LookAt.partial(),
	}
	if b.Ease != "" {
		e, err := choreo.EaseByName(b.Ease)
		if err != nil {
			return choreo.Binding{}, err
		}
		out.Ease = e
	}
	if b.Track != nil {
		out.OnProgress = choreo.LookAt(b.Track.Array())
	}
	return out, nil
}

func (p *PartialVec) partial() choreo.Partial3 {
	var out choreo.Partial3
	if p == nil {
		return out
	}
	for i, v := range []*float32{p.X, p.Y, p.Z} {
		if v != nil {
			out = out.Set(i, *v)
		}
	}
	return out
}

// ScrollerOptions converts the scroll description into scroller options.
func (c *Config) ScrollerOptions() []scroll.ScrollerBuilderOption {
	opts := []scroll.ScrollerBuilderOption{scroll.WithLineStep(c.Scroll.PixelsPerLine)}
	if c.Scroll.Smoothing {
		opts = append(opts, scroll.WithSmoothing(c.Scroll.Frequency, c.Scroll.Damping))
	} else {
		opts = append(opts, scroll.WithoutSmoothing())
	}
	return opts
}

func parseLightType(s string) (light.LightType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ambient":
		return light.LightTypeAmbient, nil
	case "directional":
		return light.LightTypeDirectional, nil
	case "point":
		return light.LightTypePoint, nil
	default:
		return 0, fmt.Errorf("unknown light type %q", s)
	}
}
