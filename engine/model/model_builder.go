package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName sets the model identifier.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh sets the vertex and index data of the model.
//
// Parameters:
//   - vertices: the vertex list
//   - indices: the triangle index list
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option
func WithMesh(vertices []GPUVertex, indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
		m.indices = indices
	}
}

// WithPosition sets the initial translation.
func WithPosition(p [3]float32) ModelBuilderOption {
	return func(m *model) {
		m.position = p
	}
}

// WithRotation sets the initial Euler rotation in radians.
func WithRotation(r [3]float32) ModelBuilderOption {
	return func(m *model) {
		m.rotation = r
	}
}

// WithScale sets the initial scale.
func WithScale(s [3]float32) ModelBuilderOption {
	return func(m *model) {
		m.scale = s
	}
}

func withBounds(bmin, bmax [3]float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingMin = bmin
		m.boundingMax = bmax
	}
}
