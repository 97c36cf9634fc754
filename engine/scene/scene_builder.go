package scene

import (
	"github.com/Carmen-Shannon/oxy-scroll/engine/camera"
	"github.com/Carmen-Shannon/oxy-scroll/engine/light"
	"github.com/Carmen-Shannon/oxy-scroll/engine/particle"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCamera sets the scene's camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			s.AddLight(l)
		}
	}
}

// WithFields adds initial particle fields to the scene.
func WithFields(fields ...particle.Field) SceneBuilderOption {
	return func(s *scene) {
		for _, f := range fields {
			s.AddField(f)
		}
	}
}

// WithRootRotation overrides the root rotation (Euler XYZ, radians).
func WithRootRotation(r [3]float32) SceneBuilderOption {
	return func(s *scene) {
		s.root = r
	}
}

// WithBackground sets the clear colour.
func WithBackground(c [3]float32) SceneBuilderOption {
	return func(s *scene) {
		s.background = c
	}
}
