package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scroll/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `//@oxy:include camera
//@oxy:include field_globals
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:group 1 0 storage_uniform globals field_globals

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(globals.color, f32(i));
}
`

const fragmentSource = `//@oxy:include field_globals
//@oxy:include lights
//@oxy:group 1 0 storage_uniform globals field_globals
//@oxy:group 2 0 storage_uniform lights lights

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(globals.color * lights.ambient, 1.0);
}
`

func testPipeline(t *testing.T, opts ...PipelineBuilderOption) Pipeline {
	t.Helper()
	vs, err := shader.ParseShader("vs", shader.ShaderTypeVertex, vertexSource)
	require.NoError(t, err)
	fs, err := shader.ParseShader("fs", shader.ShaderTypeFragment, fragmentSource)
	require.NoError(t, err)
	return NewPipeline("test", append([]PipelineBuilderOption{WithVertexShader(vs), WithFragmentShader(fs)}, opts...)...)
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("plain")

	assert.Equal(t, "plain", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, BlendNone, p.BlendMode())
	assert.Nil(t, p.BlendState())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Zero(t, p.GroupCount())
	assert.Nil(t, p.RenderPipeline())
}

func TestBlendStates(t *testing.T) {
	alpha := NewPipeline("alpha", WithBlendMode(BlendAlpha)).BlendState()
	require.NotNil(t, alpha)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, alpha.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, alpha.Color.DstFactor)

	additive := NewPipeline("additive", WithBlendMode(BlendAdditive)).BlendState()
	require.NotNil(t, additive)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, additive.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, additive.Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorZero, additive.Alpha.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, additive.Alpha.DstFactor)
}

func TestShaderLookup(t *testing.T) {
	p := testPipeline(t)
	require.NotNil(t, p.Shader(shader.ShaderTypeVertex))
	require.NotNil(t, p.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, "vs", p.Shader(shader.ShaderTypeVertex).Key())
	assert.Equal(t, "fs", p.Shader(shader.ShaderTypeFragment).Key())
}

func TestMergedLayoutsCombineStages(t *testing.T) {
	p := testPipeline(t, WithDepthWriteEnabled(false))

	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, 3, p.GroupCount())

	cam, ok := p.BindGroupLayoutDescriptor(0)
	require.True(t, ok)
	require.Len(t, cam.Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex, cam.Entries[0].Visibility)

	shared, ok := p.BindGroupLayoutDescriptor(1)
	require.True(t, ok)
	require.Len(t, shared.Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, shared.Entries[0].Visibility)
	assert.Equal(t, uint64(96), shared.Entries[0].Buffer.MinBindingSize)

	lights, ok := p.BindGroupLayoutDescriptor(2)
	require.True(t, ok)
	assert.Equal(t, wgpu.ShaderStageFragment, lights.Entries[0].Visibility)

	_, ok = p.BindGroupLayoutDescriptor(3)
	assert.False(t, ok)

	assert.Len(t, p.Declarations(), 4)
}

func TestMergeBindGroupLayoutsSortsBindings(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 2, Visibility: wgpu.ShaderStageVertex}}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)

	require.Len(t, merged[0].Entries, 2)
	assert.Equal(t, uint32(1), merged[0].Entries[0].Binding)
	assert.Equal(t, uint32(2), merged[0].Entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[1].Visibility)
}
