// Package config loads the YAML page description: window and render settings, the static scene
// (camera, lights, particle fields, models), the page layout, the scroll sections and the camera
// bindings that run over them.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_page.yaml
var defaultPage []byte

// Config is a complete page description.
type Config struct {
	Window    WindowConfig     `yaml:"window"`
	Render    RenderConfig     `yaml:"render"`
	Scroll    ScrollConfig     `yaml:"scroll"`
	Camera    CameraConfig     `yaml:"camera"`
	Scene     SceneConfig      `yaml:"scene"`
	Lights    []LightConfig    `yaml:"lights"`
	Particles []ParticleConfig `yaml:"particles"`
	Models    []ModelConfig    `yaml:"models"`
	Page      []BlockConfig    `yaml:"page"`
	Sections  []SectionConfig  `yaml:"sections"`
	Ease      string           `yaml:"ease"`
	Bindings  []BindingConfig  `yaml:"bindings"`
	Session   SessionConfig    `yaml:"session"`
}

// WindowConfig describes the native window. Zero size limits leave that axis unlimited.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
}

// RenderConfig describes frame pacing, presentation and the clear colour. MSAA is a sample
// count (1, 4, 8 or 16; 0 for the default). VSync defaults to on.
type RenderConfig struct {
	FPS        int    `yaml:"fps"`
	Background string `yaml:"background"`
	MSAA       int    `yaml:"msaa"`
	VSync      *bool  `yaml:"vsync"`
}

// VSyncEnabled reports whether frames wait for vertical blank.
func (r RenderConfig) VSyncEnabled() bool {
	return r.VSync == nil || *r.VSync
}

// ScrollConfig describes how input turns into scroll offset.
type ScrollConfig struct {
	PixelsPerLine float32 `yaml:"pixels_per_line"`
	Smoothing     bool    `yaml:"smoothing"`
	Frequency     float64 `yaml:"frequency"`
	Damping       float64 `yaml:"damping"`
}

// CameraConfig describes the initial camera. FOV is in degrees.
type CameraConfig struct {
	FOV      float32 `yaml:"fov"`
	Near     float32 `yaml:"near"`
	Far      float32 `yaml:"far"`
	Position Vec3    `yaml:"position"`
	LookAt   *Vec3   `yaml:"look_at"`
}

// SceneConfig describes the scene root.
type SceneConfig struct {
	Rotation   Vec3   `yaml:"rotation"`
	Background string `yaml:"background"`
}

// LightConfig describes one light. Type is ambient, directional or point.
type LightConfig struct {
	Type      string  `yaml:"type"`
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
	Position  Vec3    `yaml:"position"`
	Direction *Vec3   `yaml:"direction"`
	Range     float32 `yaml:"range"`
}

// ParticleConfig describes one particle field. Unset fields keep the variant's defaults.
type ParticleConfig struct {
	Name          string      `yaml:"name"`
	Variant       string      `yaml:"variant"`
	Count         *int        `yaml:"count"`
	Seed          uint64      `yaml:"seed"`
	Size          float32     `yaml:"size"`
	Color         string      `yaml:"color"`
	Position      Vec3        `yaml:"position"`
	Bounds        *BoxConfig  `yaml:"bounds"`
	RotationSpeed *Vec3       `yaml:"rotation_speed"`
	Scale         *RangeFloat `yaml:"scale"`
	Workers       int         `yaml:"workers"`
}

// BoxConfig is an axis-aligned box.
type BoxConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// RangeFloat is a closed-open float interval.
type RangeFloat struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// ModelConfig describes a model to load asynchronously.
type ModelConfig struct {
	Path     string `yaml:"path"`
	Position Vec3   `yaml:"position"`
	Rotation Vec3   `yaml:"rotation"`
	Scale    *Vec3  `yaml:"scale"`
}

// BlockConfig is one page block. Height is "<n>vh" or "<n>px".
type BlockConfig struct {
	ID     string `yaml:"id"`
	Height string `yaml:"height"`
}

// SectionConfig names a scroll range: trigger is a page block id, start and end are anchors of
// the form "<element-edge> <viewport-edge>".
type SectionConfig struct {
	Name    string `yaml:"name"`
	Trigger string `yaml:"trigger"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

// BindingConfig moves camera properties over a section. Track orients the camera toward a fixed
// point after every write; LookAt interpolates the look-at point itself.
type BindingConfig struct {
	Name     string      `yaml:"name"`
	Section  string      `yaml:"section"`
	Position *PartialVec `yaml:"position"`
	LookAt   *PartialVec `yaml:"look_at"`
	Track    *Vec3       `yaml:"track"`
	Ease     string      `yaml:"ease"`
}

// SessionConfig controls scroll position persistence.
type SessionConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppName string `yaml:"app_name"`
}

// Vec3 is a full 3-vector.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Array returns the vector as an array.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// PartialVec is a 3-vector whose components may be omitted.
type PartialVec struct {
	X *float32 `yaml:"x"`
	Y *float32 `yaml:"y"`
	Z *float32 `yaml:"z"`
}

// Default returns the built-in page description.
//
// Returns:
//   - *Config: the default configuration
//   - error: error if the embedded page fails to parse
func Default() (*Config, error) {
	c := &Config{}
	if err := decode(bytes.NewReader(defaultPage), c); err != nil {
		return nil, fmt.Errorf("default page: %w", err)
	}
	return c, nil
}

// Load reads a page description from path. Keys the file leaves out keep their built-in
// defaults; lists given in the file replace the default lists entirely.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - *Config: the validated configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a page description over the defaults and validates it.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the validated configuration
//   - error: error if the source fails to parse or validate
func Parse(r io.Reader) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := decode(r, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(r io.Reader, c *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}
