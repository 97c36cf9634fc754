package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts the mesh instances of a parsed document into engine-ready
// ImportedMesh values, flattening the node hierarchy into model space.
type gltfMeshExtractor interface {
	// ExtractScene walks the default scene (or every root node when the document has no
	// scenes) and returns one ImportedMesh per primitive instance with node transforms baked in.
	//
	// Returns:
	//   - []model.ImportedMesh: all primitive instances
	//   - error: error if extraction fails
	ExtractScene() ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractScene() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var identity [16]float32
	common.Identity(identity[:])

	// Documents without nodes still carry drawable meshes.
	if len(doc.Nodes) == 0 {
		var result []model.ImportedMesh
		for i := range doc.Meshes {
			meshes, err := e.extractMesh(i, identity)
			if err != nil {
				return nil, err
			}
			result = append(result, meshes...)
		}
		return result, nil
	}

	var result []model.ImportedMesh
	visited := make([]bool, len(doc.Nodes))
	var walk func(nodeIndex int, parent [16]float32) error
	walk = func(nodeIndex int, parent [16]float32) error {
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", nodeIndex)
		}
		if visited[nodeIndex] {
			return fmt.Errorf("node %d visited twice: cyclic hierarchy", nodeIndex)
		}
		visited[nodeIndex] = true

		node := &doc.Nodes[nodeIndex]
		local := gltfNodeMatrix(node)
		var world [16]float32
		common.Mul4(world[:], parent[:], local[:])

		if node.Mesh != nil {
			meshes, err := e.extractMesh(*node.Mesh, world)
			if err != nil {
				return fmt.Errorf("node %d: %w", nodeIndex, err)
			}
			result = append(result, meshes...)
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range gltfRootNodes(doc) {
		if err := walk(root, identity); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// extractMesh extracts every primitive of a mesh, transformed by world.
func (e *gltfMeshExtractorImpl) extractMesh(meshIndex int, world [16]float32) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.ImportedMesh, 0, len(mesh.Primitives))
	for primIdx := range mesh.Primitives {
		imported, err := e.extractPrimitive(&mesh.Primitives[primIdx], mesh.Name, primIdx, world)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		result = append(result, *imported)
	}
	return result, nil
}

// extractPrimitive extracts a single primitive as an ImportedMesh.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, primIndex int, world [16]float32) (*model.ImportedMesh, error) {
	if _, ok := prim.Extensions[gltfExtensionDraco]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, gltfExtensionDraco)
	}
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	baseColor := e.baseColor(prim)
	vertexCount := len(positions)
	vertices := make([]model.GPUVertex, vertexCount)
	for i, pos := range positions {
		vertices[i].Position = common.TransformPoint(world[:], pos)
		vertices[i].Color = baseColor
	}

	hasNormals := false
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(normalAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), vertexCount) {
			vertices[i].Normal = common.Normalize3(transformDirection(world, normals[i]))
		}
		hasNormals = true
	}

	if colorAccessor, ok := prim.Attributes["COLOR_0"]; ok {
		colors, err := e.parser.ReadColorAccessor(colorAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read colors: %w", err)
		}
		for i := range min(len(colors), vertexCount) {
			for c := range 4 {
				vertices[i].Color[c] *= colors[i][c]
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("index %d exceeds vertex count %d", idx, vertexCount)
			}
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if !hasNormals && len(indices) >= 3 {
		generateNormals(vertices, indices)
	}

	bmin, bmax := gltfCalculateBoundingBox(vertices)

	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", primIndex)
	}
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}

	return &model.ImportedMesh{
		Name:        name,
		Vertices:    vertices,
		Indices:     indices,
		BoundingMin: bmin,
		BoundingMax: bmax,
	}, nil
}

// baseColor returns the material's baseColorFactor, or opaque white.
func (e *gltfMeshExtractorImpl) baseColor(prim *gltfPrimitive) [4]float32 {
	doc := e.parser.Document()
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
		return [4]float32{1, 1, 1, 1}
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return [4]float32{1, 1, 1, 1}
	}
	return *pbr.BaseColorFactor
}

// gltfRootNodes returns the root nodes of the default scene, falling back to every node that
// is nobody's child.
func gltfRootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			sceneIdx = *doc.Scene
		}
		return doc.Scenes[sceneIdx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeMatrix returns the node's local transform: its matrix, or T * R * S.
func gltfNodeMatrix(node *gltfNode) [16]float32 {
	if node.Matrix != nil {
		return *node.Matrix
	}

	t := [3]float32{}
	if node.Translation != nil {
		t = *node.Translation
	}
	q := [4]float32{0, 0, 0, 1}
	if node.Rotation != nil {
		q = *node.Rotation
	}
	s := [3]float32{1, 1, 1}
	if node.Scale != nil {
		s = *node.Scale
	}

	x, y, z, w := q[0], q[1], q[2], q[3]
	return [16]float32{
		(1 - 2*(y*y+z*z)) * s[0], 2 * (x*y + z*w) * s[0], 2 * (x*z - y*w) * s[0], 0,
		2 * (x*y - z*w) * s[1], (1 - 2*(x*x+z*z)) * s[1], 2 * (y*z + x*w) * s[1], 0,
		2 * (x*z + y*w) * s[2], 2 * (y*z - x*w) * s[2], (1 - 2*(x*x+y*y)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

// transformDirection applies the upper 3x3 of a column-major matrix to a direction.
func transformDirection(m [16]float32, d [3]float32) [3]float32 {
	return [3]float32{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	}
}

// gltfCalculateBoundingBox computes the axis-aligned bounding box of the vertex positions.
func gltfCalculateBoundingBox(vertices []model.GPUVertex) ([3]float32, [3]float32) {
	if len(vertices) == 0 {
		return [3]float32{}, [3]float32{}
	}

	bmin := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	bmax := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range vertices {
		for j := range 3 {
			bmin[j] = min(bmin[j], v.Position[j])
			bmax[j] = max(bmax[j], v.Position[j])
		}
	}
	return bmin, bmax
}

// generateNormals computes smooth vertex normals from the triangle geometry when the
// file does not provide a NORMAL attribute. Face normals are accumulated area-weighted onto
// every vertex of their triangle and normalized at the end.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer (must be a multiple of 3)
func generateNormals(vertices []model.GPUVertex, indices []uint32) {
	n := len(vertices)
	accum := make([][3]float32, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0, p1, p2 := vertices[i0].Position, vertices[i1].Position, vertices[i2].Position
		face := common.Cross3(common.Sub3(p1, p0), common.Sub3(p2, p0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			accum[idx] = common.Add3(accum[idx], face)
		}
	}

	for i := range n {
		if accum[i] == ([3]float32{}) {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = common.Normalize3(accum[i])
	}
}
