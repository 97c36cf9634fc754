package scene

import (
	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/engine/camera"
	"github.com/Carmen-Shannon/oxy-scroll/engine/light"
	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
	"github.com/Carmen-Shannon/oxy-scroll/engine/particle"
)

// DefaultRootRotation is the Y rotation, in radians, the page scene is presented at.
const DefaultRootRotation float32 = 1.88

// Scene is the state every producer writes into and the render loop reads from: one camera,
// the lights, the loaded objects and the particle fields, all hanging from a rotated root.
//
// A Scene is owned by the engine's dispatch goroutine and is not safe for concurrent use.
// Each field has a single writer: the choreographer moves the camera, static setup adds lights,
// loader completions add objects and the render loop advances the particle fields.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Lights returns the scene's lights in insertion order.
	Lights() []light.Light

	// AddLight adds a light to the scene.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Objects returns the loaded objects in insertion order. Objects are only ever appended,
	// so a reader can detect new objects by comparing lengths.
	Objects() []model.Model

	// AddObject appends a loaded object.
	//
	// Parameters:
	//   - m: the object to add
	AddObject(m model.Model)

	// Fields returns the particle fields in insertion order.
	Fields() []particle.Field

	// AddField adds a particle field.
	//
	// Parameters:
	//   - f: the field to add
	AddField(f particle.Field)

	// RootRotation returns the Euler XYZ rotation applied to every object and field.
	RootRotation() [3]float32

	// SetRootRotation sets the root rotation in radians.
	SetRootRotation(r [3]float32)

	// RootMatrix returns the root transform (column-major).
	RootMatrix() [16]float32

	// Background returns the clear colour.
	Background() [3]float32
}

type scene struct {
	name       string
	camera     camera.Camera
	lights     []light.Light
	objects    []model.Model
	fields     []particle.Field
	root       [3]float32
	background [3]float32
}

var _ Scene = &scene{}

// NewScene creates a new Scene with a default camera and the page's root rotation.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		name: "scene",
		root: [3]float32{0, DefaultRootRotation, 0},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("scene: SetCamera requires a camera")
	}
	s.camera = cam
}

func (s *scene) Lights() []light.Light {
	return s.lights
}

func (s *scene) AddLight(l light.Light) {
	if l != nil {
		s.lights = append(s.lights, l)
	}
}

func (s *scene) Objects() []model.Model {
	return s.objects
}

func (s *scene) AddObject(m model.Model) {
	if m != nil {
		s.objects = append(s.objects, m)
	}
}

func (s *scene) Fields() []particle.Field {
	return s.fields
}

func (s *scene) AddField(f particle.Field) {
	if f != nil {
		s.fields = append(s.fields, f)
	}
}

func (s *scene) RootRotation() [3]float32 {
	return s.root
}

func (s *scene) SetRootRotation(r [3]float32) {
	s.root = r
}

func (s *scene) RootMatrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:], [3]float32{}, s.root, [3]float32{1, 1, 1})
	return m
}

func (s *scene) Background() [3]float32 {
	return s.background
}
