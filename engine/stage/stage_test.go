package stage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-scroll/engine/model"
	"github.com/Carmen-Shannon/oxy-scroll/engine/particle"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scroll/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draw struct {
	pipeline  string
	mesh      string
	instances uint32
	groups    []string
}

type fakeRenderer struct {
	pipelines map[string]pipeline.Pipeline
	events    []string
	inits     []string
	sizes     map[string]map[int]uint64
	writes    map[string]int
	draws     []draw
	clear     [3]float32

	beginErr  error
	drawPanic bool
	released  bool
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		pipelines: make(map[string]pipeline.Pipeline),
		sizes:     make(map[string]map[int]uint64),
		writes:    make(map[string]int),
	}
}

func (r *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return r.pipelines[key] }

func (r *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *fakeRenderer) Resize(width, height int) {
	r.events = append(r.events, fmt.Sprintf("resize %dx%d", width, height))
}

func (r *fakeRenderer) SetPresentMode(renderer.PresentMode) {}

func (r *fakeRenderer) SetClearColor(rgb [3]float32) { r.clear = rgb }

func (r *fakeRenderer) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	p.SetIndexCount(indexCount)
	r.inits = append(r.inits, "mesh "+p.Label())
	return nil
}

func (r *fakeRenderer) InitBindGroup(p bind_group_provider.BindGroupProvider, pipelineKey string, group int, sizes map[int]uint64) error {
	pl, ok := r.pipelines[pipelineKey]
	if !ok {
		return fmt.Errorf("unknown pipeline %q", pipelineKey)
	}
	if _, ok := pl.BindGroupLayoutDescriptor(group); !ok {
		return fmt.Errorf("pipeline %q has no group %d", pipelineKey, group)
	}
	r.inits = append(r.inits, fmt.Sprintf("group %s %s/%d", p.Label(), pipelineKey, group))
	r.sizes[p.Label()] = sizes
	return nil
}

func (r *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		r.writes[fmt.Sprintf("%s/%d", w.Provider.Label(), w.Binding)]++
	}
}

func (r *fakeRenderer) BeginFrame() error {
	if r.beginErr != nil {
		return r.beginErr
	}
	r.events = append(r.events, "begin")
	return nil
}

func (r *fakeRenderer) DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instances uint32, groups []bind_group_provider.BindGroupProvider) error {
	if r.drawPanic {
		panic("draw exploded")
	}
	d := draw{pipeline: pipelineKey, mesh: mesh.Label(), instances: instances}
	for _, g := range groups {
		d.groups = append(d.groups, g.Label())
	}
	r.draws = append(r.draws, d)
	return nil
}

func (r *fakeRenderer) EndFrame() { r.events = append(r.events, "end") }

func (r *fakeRenderer) Present() { r.events = append(r.events, "present") }

func (r *fakeRenderer) Release() { r.released = true }

func triangle(name string) model.Model {
	return model.NewModel(model.WithName(name), model.WithMesh([]model.GPUVertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint32{0, 1, 2}))
}

func newField(t *testing.T, v particle.Variant, name string, n int) particle.Field {
	t.Helper()
	f, err := particle.NewField(v, particle.WithName(name), particle.WithCount(n))
	require.NoError(t, err)
	return f
}

func newTestStage(t *testing.T) (*Stage, *fakeRenderer, *[]string) {
	t.Helper()
	r := newFakeRenderer()
	var logs []string
	s, err := NewStage(r, WithLogf(func(format string, args ...any) {
		logs = append(logs, fmt.Sprintf(format, args...))
	}))
	require.NoError(t, err)
	return s, r, &logs
}

func TestNewStageRegistersPipelines(t *testing.T) {
	_, r, _ := newTestStage(t)

	require.Len(t, r.pipelines, 3)
	mesh := r.Pipeline(PipelineMesh)
	require.NotNil(t, mesh)
	assert.Equal(t, 3, mesh.GroupCount())
	assert.Equal(t, pipeline.BlendNone, mesh.BlendMode())

	points := r.Pipeline(PipelinePoints)
	require.NotNil(t, points)
	assert.Equal(t, 2, points.GroupCount())
	assert.True(t, points.DepthWriteEnabled())

	fireflies := r.Pipeline(PipelineFireflies)
	require.NotNil(t, fireflies)
	assert.Equal(t, pipeline.BlendAdditive, fireflies.BlendMode())
	assert.False(t, fireflies.DepthWriteEnabled())

	assert.Equal(t, []string{"mesh quad"}, r.inits)
}

func TestNewStageRequiresRenderer(t *testing.T) {
	_, err := NewStage(nil)
	assert.Error(t, err)
}

func TestRenderFrameDrawOrder(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene(scene.WithFields(
		newField(t, particle.VariantFirefly, "bugs", 5),
		newField(t, particle.VariantStatic, "stars", 7),
	))
	sc.AddObject(triangle("island"))

	require.NoError(t, s.RenderFrame(sc))

	require.Len(t, r.draws, 3)
	assert.Equal(t, draw{pipeline: PipelineMesh, mesh: "object:island", instances: 1, groups: []string{"camera", "object:island", "lights"}}, r.draws[0])
	assert.Equal(t, draw{pipeline: PipelinePoints, mesh: "quad", instances: 7, groups: []string{"camera", "field:stars"}}, r.draws[1])
	assert.Equal(t, draw{pipeline: PipelineFireflies, mesh: "quad", instances: 5, groups: []string{"camera", "field:bugs"}}, r.draws[2])
	assert.Equal(t, []string{"begin", "end", "present"}, r.events)
}

func TestRenderFrameInitialisesResourcesOnce(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene(scene.WithFields(newField(t, particle.VariantStatic, "stars", 4)))

	require.NoError(t, s.RenderFrame(sc))
	require.NoError(t, s.RenderFrame(sc))

	assert.Equal(t, []string{
		"mesh quad",
		"group camera mesh/0",
		"group lights mesh/2",
		"group field:stars points/1",
	}, r.inits)
	assert.Equal(t, map[int]uint64{1: 4 * particleStride}, r.sizes["field:stars"])
	assert.Equal(t, 1, r.writes["field:stars/1"], "instances are uploaded once")
	assert.Equal(t, 2, r.writes["field:stars/0"])
	assert.Equal(t, 2, r.writes["camera/0"])
	assert.Equal(t, 2, r.writes["lights/0"])
}

func TestRenderFramePicksUpLateObjects(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene()

	require.NoError(t, s.RenderFrame(sc))
	assert.Empty(t, r.draws)

	sc.AddObject(triangle("tree"))
	require.NoError(t, s.RenderFrame(sc))

	require.Len(t, r.draws, 1)
	assert.Equal(t, "object:tree", r.draws[0].mesh)
	assert.Contains(t, r.inits, "mesh object:tree")
	assert.Contains(t, r.inits, "group object:tree mesh/1")
}

func TestRenderFrameEmptyFieldIsNotDrawn(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene(scene.WithFields(newField(t, particle.VariantFirefly, "none", 0)))

	require.NoError(t, s.RenderFrame(sc))

	assert.Empty(t, r.draws)
	assert.Equal(t, map[int]uint64{1: particleStride}, r.sizes["field:none"])
	assert.Zero(t, r.writes["field:none/1"])
	assert.Equal(t, 1, r.writes["field:none/0"])
}

func TestRenderFrameSkipsObjectWithoutTrianglesOnce(t *testing.T) {
	s, r, logs := newTestStage(t)
	sc := scene.NewScene()
	sc.AddObject(model.NewModel(model.WithName("empty")))

	require.NoError(t, s.RenderFrame(sc))
	require.NoError(t, s.RenderFrame(sc))

	assert.Empty(t, r.draws)
	assert.Len(t, *logs, 1)
	assert.Contains(t, (*logs)[0], "empty")
}

func TestRenderFrameBeginFailure(t *testing.T) {
	s, r, _ := newTestStage(t)
	r.beginErr = errors.New("surface lost")
	sc := scene.NewScene(scene.WithFields(newField(t, particle.VariantStatic, "stars", 3)))

	err := s.RenderFrame(sc)

	assert.ErrorIs(t, err, r.beginErr)
	assert.Empty(t, r.draws)
	assert.Empty(t, r.events)
}

func TestRenderFramePanicStillEndsFrame(t *testing.T) {
	s, r, _ := newTestStage(t)
	r.drawPanic = true
	sc := scene.NewScene(scene.WithFields(newField(t, particle.VariantStatic, "stars", 3)))

	assert.Panics(t, func() { _ = s.RenderFrame(sc) })
	assert.Equal(t, []string{"begin", "end", "present"}, r.events)
}

func TestRenderFrameUsesBackground(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene(scene.WithBackground([3]float32{0.1, 0.2, 0.3}))

	require.NoError(t, s.RenderFrame(sc))
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, r.clear)
}

func TestReleaseStopsRendering(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene()
	require.NoError(t, s.RenderFrame(sc))

	s.Release()
	s.Release()

	assert.True(t, r.released)
	assert.ErrorIs(t, s.RenderFrame(sc), ErrReleased)
}

func TestResizeDelegates(t *testing.T) {
	s, r, _ := newTestStage(t)
	s.Resize(800, 600)
	assert.Equal(t, []string{"resize 800x600"}, r.events)
}

func TestRenderFrameCullsObjectsOutsideView(t *testing.T) {
	s, r, _ := newTestStage(t)
	sc := scene.NewScene(scene.WithRootRotation([3]float32{}))

	box := func(name string, z float32) model.Model {
		mesh := model.ImportedMesh{
			Vertices:    []model.GPUVertex{{Position: [3]float32{-1, -1, 0}}, {Position: [3]float32{1, -1, 0}}, {Position: [3]float32{0, 1, 0}}},
			Indices:     []uint32{0, 1, 2},
			BoundingMin: [3]float32{-1, -1, -1},
			BoundingMax: [3]float32{1, 1, 1},
		}
		return model.FromImported(&model.ImportedModel{Name: name, Meshes: []model.ImportedMesh{mesh}}, model.WithPosition([3]float32{0, 0, z}))
	}
	sc.AddObject(box("ahead", -10))
	sc.AddObject(box("behind", 50))

	require.NoError(t, s.RenderFrame(sc))

	require.Len(t, r.draws, 1)
	assert.Equal(t, "object:ahead", r.draws[0].mesh)
	assert.Equal(t, 1, r.writes["object:behind/0"], "culled objects keep their uniforms current")
}
