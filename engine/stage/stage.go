package stage

import (
	_ "embed"
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-scroll/common"
	"github.com/Carmen-Shannon/oxy-scroll/engine/light"
	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
	"github.com/Carmen-Shannon/oxy-scroll/engine/particle"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
)

// Pipeline keys registered by NewStage.
const (
	PipelineMesh      = "mesh"
	PipelinePoints    = "points"
	PipelineFireflies = "fireflies"
)

// particleStride is the size in bytes of one GPUParticle.
const particleStride = 16

//go:embed assets/mesh_vertex.wgsl
var meshVertexSource string

//go:embed assets/mesh_fragment.wgsl
var meshFragmentSource string

//go:embed assets/particle_vertex.wgsl
var particleVertexSource string

//go:embed assets/particle_fragment.wgsl
var particleFragmentSource string

// ErrReleased is returned by RenderFrame after Release.
var ErrReleased = errors.New("stage released")

// quadCorners is the unit billboard every point is expanded from, as vec2 corners.
var quadCorners = []float32{
	-1, -1,
	1, -1,
	1, 1,
	-1, 1,
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// Stage draws a scene.Scene through a renderer.Renderer. It implements engine.FrameRenderer.
//
// GPU resources are created lazily: the first frame that sees an object or field uploads its
// buffers, later frames only rewrite uniforms. Objects are drawn lit and opaque, skipping any
// whose bounds fall outside the camera frustum. Static point fields follow, and fireflies are
// drawn last with additive blending and no depth writes.
// A Stage is used from the engine's dispatch goroutine only.
type Stage struct {
	renderer renderer.Renderer
	logf     func(format string, args ...any)

	camera bind_group_provider.BindGroupProvider
	lights bind_group_provider.BindGroupProvider
	quad   bind_group_provider.BindGroupProvider

	objects map[model.Model]bind_group_provider.BindGroupProvider
	fields  map[particle.Field]bind_group_provider.BindGroupProvider

	// skipped holds objects that can never be drawn, so they are reported once.
	skipped map[model.Model]struct{}

	sharedReady bool
	released    bool
}

// NewStage registers the stage's pipelines with r and uploads the shared billboard mesh.
//
// Parameters:
//   - r: the renderer to draw through
//   - options: a variadic list of StageBuilderOption functions
//
// Returns:
//   - *Stage: the stage
//   - error: an error if a shader fails to parse or a pipeline cannot be created
func NewStage(r renderer.Renderer, options ...StageBuilderOption) (*Stage, error) {
	if r == nil {
		return nil, errors.New("stage: renderer is required")
	}
	s := &Stage{
		renderer: r,
		logf:     log.Printf,
		objects:  make(map[model.Model]bind_group_provider.BindGroupProvider),
		fields:   make(map[particle.Field]bind_group_provider.BindGroupProvider),
		skipped:  make(map[model.Model]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	pipelines, err := buildPipelines()
	if err != nil {
		return nil, err
	}
	if err := r.RegisterPipelines(pipelines...); err != nil {
		return nil, fmt.Errorf("stage: register pipelines: %w", err)
	}

	s.quad = bind_group_provider.NewBindGroupProvider("quad")
	if err := r.InitMeshBuffers(s.quad, common.SliceToBytes(quadCorners), common.SliceToBytes(quadIndices), len(quadIndices)); err != nil {
		return nil, fmt.Errorf("stage: upload billboard: %w", err)
	}
	return s, nil
}

// buildPipelines parses the embedded shaders into the three pipelines the stage draws with.
func buildPipelines() ([]pipeline.Pipeline, error) {
	meshVS, err := shader.ParseShader("mesh_vertex", shader.ShaderTypeVertex, meshVertexSource)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	meshFS, err := shader.ParseShader("mesh_fragment", shader.ShaderTypeFragment, meshFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	pointVS, err := shader.ParseShader("particle_vertex", shader.ShaderTypeVertex, particleVertexSource)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	pointFS, err := shader.ParseShader("particle_fragment", shader.ShaderTypeFragment, particleFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	return []pipeline.Pipeline{
		pipeline.NewPipeline(PipelineMesh,
			pipeline.WithVertexShader(meshVS),
			pipeline.WithFragmentShader(meshFS),
		),
		pipeline.NewPipeline(PipelinePoints,
			pipeline.WithVertexShader(pointVS),
			pipeline.WithFragmentShader(pointFS),
		),
		pipeline.NewPipeline(PipelineFireflies,
			pipeline.WithVertexShader(pointVS),
			pipeline.WithFragmentShader(pointFS),
			pipeline.WithBlendMode(pipeline.BlendAdditive),
			pipeline.WithDepthWriteEnabled(false),
		),
	}, nil
}

// RenderFrame draws one frame of sc. Any panic raised after the frame has begun still closes
// and presents the frame before propagating.
//
// Parameters:
//   - sc: the scene to draw
//
// Returns:
//   - error: an error if resources could not be created or no surface image was available
func (s *Stage) RenderFrame(sc scene.Scene) error {
	if s.released {
		return ErrReleased
	}
	if err := s.prepare(sc); err != nil {
		return err
	}

	root := sc.RootMatrix()
	s.renderer.WriteBuffers(s.frameWrites(sc, root))
	frustum := common.FrustumFromMatrix(sc.Camera().ViewProjectionMatrix())
	s.renderer.SetClearColor(sc.Background())

	if err := s.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("stage: begin frame: %w", err)
	}
	defer s.renderer.Present()
	defer s.renderer.EndFrame()

	for _, m := range sc.Objects() {
		p, ok := s.objects[m]
		if !ok || !visible(&frustum, root, m) {
			continue
		}
		if err := s.renderer.DrawCall(PipelineMesh, p, 1, []bind_group_provider.BindGroupProvider{s.camera, p, s.lights}); err != nil {
			return fmt.Errorf("stage: draw %q: %w", m.Name(), err)
		}
	}
	for _, variant := range []particle.Variant{particle.VariantStatic, particle.VariantFirefly} {
		for _, f := range sc.Fields() {
			if f.Variant() != variant || f.Count() == 0 {
				continue
			}
			if err := s.renderer.DrawCall(fieldPipeline(f), s.quad, uint32(f.Count()), []bind_group_provider.BindGroupProvider{s.camera, s.fields[f]}); err != nil {
				return fmt.Errorf("stage: draw field %q: %w", f.Name(), err)
			}
		}
	}
	return nil
}

// prepare creates GPU resources for anything in sc that does not have them yet.
func (s *Stage) prepare(sc scene.Scene) error {
	if !s.sharedReady {
		cam := bind_group_provider.NewBindGroupProvider("camera")
		if err := s.renderer.InitBindGroup(cam, PipelineMesh, 0, nil); err != nil {
			return fmt.Errorf("stage: camera bind group: %w", err)
		}
		lights := bind_group_provider.NewBindGroupProvider("lights")
		if err := s.renderer.InitBindGroup(lights, PipelineMesh, 2, nil); err != nil {
			cam.Release()
			return fmt.Errorf("stage: lights bind group: %w", err)
		}
		s.camera, s.lights = cam, lights
		s.sharedReady = true
	}

	for _, f := range sc.Fields() {
		if _, ok := s.fields[f]; ok {
			continue
		}
		p := bind_group_provider.NewBindGroupProvider("field:" + f.Name())
		size := uint64(max(f.Count(), 1) * particleStride)
		if err := s.renderer.InitBindGroup(p, fieldPipeline(f), 1, map[int]uint64{1: size}); err != nil {
			return fmt.Errorf("stage: field %q bind group: %w", f.Name(), err)
		}
		if f.Count() > 0 {
			s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
				{Provider: p, Binding: 1, Data: particle.MarshalParticles(f.Instances())},
			})
		}
		s.fields[f] = p
	}

	for _, m := range sc.Objects() {
		if _, ok := s.objects[m]; ok {
			continue
		}
		if _, ok := s.skipped[m]; ok {
			continue
		}
		if len(m.Indices()) == 0 || len(m.Vertices()) == 0 {
			s.skipped[m] = struct{}{}
			s.logf("[Stage] object %q has no triangles, not drawing it", m.Name())
			continue
		}
		p := bind_group_provider.NewBindGroupProvider("object:" + m.Name())
		if err := s.renderer.InitMeshBuffers(p, common.SliceToBytes(m.Vertices()), common.SliceToBytes(m.Indices()), len(m.Indices())); err != nil {
			return fmt.Errorf("stage: object %q mesh: %w", m.Name(), err)
		}
		if err := s.renderer.InitBindGroup(p, PipelineMesh, 1, nil); err != nil {
			p.Release()
			return fmt.Errorf("stage: object %q bind group: %w", m.Name(), err)
		}
		s.objects[m] = p
	}
	return nil
}

// frameWrites collects the per-frame uniform updates for camera, lights, objects and fields.
func (s *Stage) frameWrites(sc scene.Scene, root [16]float32) []bind_group_provider.BufferWrite {
	camUniform := sc.Camera().Uniform()
	packed := light.PackLights(sc.Lights())

	writes := []bind_group_provider.BufferWrite{
		{Provider: s.camera, Binding: 0, Data: camUniform.Marshal()},
		{Provider: s.lights, Binding: 0, Data: packed.Marshal()},
	}
	for _, m := range sc.Objects() {
		p, ok := s.objects[m]
		if !ok {
			continue
		}
		obj := model.GPUObjectUniform{Model: worldMatrix(root, m)}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: obj.Marshal()})
	}
	for _, f := range sc.Fields() {
		globals := f.Globals(root)
		writes = append(writes, bind_group_provider.BufferWrite{Provider: s.fields[f], Binding: 0, Data: globals.Marshal()})
	}
	return writes
}

func worldMatrix(root [16]float32, m model.Model) [16]float32 {
	local := m.ModelMatrix()
	var world [16]float32
	common.Mul4(world[:], root[:], local[:])
	return world
}

// visible reports whether m's bounds touch the view frustum. Objects without bounds are always
// drawn.
func visible(f *common.Frustum, root [16]float32, m model.Model) bool {
	bmin, bmax := m.Bounds()
	if bmin == bmax {
		return true
	}
	world := worldMatrix(root, m)
	wmin, wmax := common.TransformBox(world[:], bmin, bmax)
	return f.IntersectsBox(wmin, wmax)
}

func fieldPipeline(f particle.Field) string {
	if f.Variant() == particle.VariantFirefly {
		return PipelineFireflies
	}
	return PipelinePoints
}

// Resize reconfigures the renderer's surface.
//
// Parameters:
//   - width: new width in pixels
//   - height: new height in pixels
func (s *Stage) Resize(width, height int) {
	s.renderer.Resize(width, height)
}

// Release releases every provider the stage created and then the renderer.
func (s *Stage) Release() {
	if s.released {
		return
	}
	s.released = true
	for _, p := range s.objects {
		p.Release()
	}
	for _, p := range s.fields {
		p.Release()
	}
	for _, p := range []bind_group_provider.BindGroupProvider{s.camera, s.lights, s.quad} {
		if p != nil {
			p.Release()
		}
	}
	s.objects = nil
	s.fields = nil
	s.renderer.Release()
}
