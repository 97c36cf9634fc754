package model

import (
	"github.com/Carmen-Shannon/oxy-scroll/common"
)

// model is the implementation of the Model interface.
type model struct {
	name     string
	position [3]float32
	rotation [3]float32
	scale    [3]float32

	vertices    []GPUVertex
	indices     []uint32
	boundingMin [3]float32
	boundingMax [3]float32
}

// Model is a static mesh object placed in the scene.
//
// All meshes of an imported file are merged into one vertex and index list so the renderer
// can draw the whole object with a single indexed draw call.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the merged vertex list.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns the merged triangle index list.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// Bounds returns the model-space axis-aligned bounding box.
	//
	// Returns:
	//   - [3]float32: minimum corner
	//   - [3]float32: maximum corner
	Bounds() ([3]float32, [3]float32)

	// Position returns the object's translation relative to the scene root.
	Position() [3]float32

	// Rotation returns the object's Euler rotation in radians.
	Rotation() [3]float32

	// Scale returns the object's scale.
	Scale() [3]float32

	// SetPosition sets the object's translation relative to the scene root.
	SetPosition(p [3]float32)

	// SetRotation sets the object's Euler rotation in radians.
	SetRotation(r [3]float32)

	// SetScale sets the object's scale.
	SetScale(s [3]float32)

	// ModelMatrix builds the object's local transform.
	//
	// Returns:
	//   - [16]float32: the column-major model matrix
	ModelMatrix() [16]float32
}

var _ Model = &model{}

// NewModel creates a new Model with identity transform and the provided options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		scale: [3]float32{1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported merges every mesh of an imported model into one Model.
//
// Parameters:
//   - imported: the importer output
//   - options: additional ModelBuilderOption functions (transform overrides)
//
// Returns:
//   - Model: the merged model
func FromImported(imported *ImportedModel, options ...ModelBuilderOption) Model {
	var vertices []GPUVertex
	var indices []uint32
	bmin, bmax := [3]float32{}, [3]float32{}

	for i, mesh := range imported.Meshes {
		base := uint32(len(vertices))
		vertices = append(vertices, mesh.Vertices...)
		for _, idx := range mesh.Indices {
			indices = append(indices, idx+base)
		}
		if i == 0 {
			bmin, bmax = mesh.BoundingMin, mesh.BoundingMax
			continue
		}
		for a := range 3 {
			bmin[a] = min(bmin[a], mesh.BoundingMin[a])
			bmax[a] = max(bmax[a], mesh.BoundingMax[a])
		}
	}

	opts := append([]ModelBuilderOption{
		WithName(imported.Name),
		WithMesh(vertices, indices),
		withBounds(bmin, bmax),
	}, options...)
	return NewModel(opts...)
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) Bounds() ([3]float32, [3]float32) {
	return m.boundingMin, m.boundingMax
}

func (m *model) Position() [3]float32 {
	return m.position
}

func (m *model) Rotation() [3]float32 {
	return m.rotation
}

func (m *model) Scale() [3]float32 {
	return m.scale
}

func (m *model) SetPosition(p [3]float32) {
	m.position = p
}

func (m *model) SetRotation(r [3]float32) {
	m.rotation = r
}

func (m *model) SetScale(s [3]float32) {
	m.scale = s
}

func (m *model) ModelMatrix() [16]float32 {
	var out [16]float32
	common.BuildModelMatrix(out[:], m.position, m.rotation, m.scale)
	return out
}
