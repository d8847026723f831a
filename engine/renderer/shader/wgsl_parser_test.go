package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) world_normal: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    return out;
}
`

func TestParseVertexLayoutsBuildsAttributes(t *testing.T) {
	layouts := parseVertexLayouts(vertexSource)
	require.Len(t, layouts, 1)

	layout := layouts[0][0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)

	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
}

func TestParseVertexLayoutsSkipsOutputStructs(t *testing.T) {
	// VertexOutput mixes @location with @builtin(position) and must not
	// produce a vertex buffer layout.
	layouts := parseVertexLayouts(vertexSource)
	require.Len(t, layouts, 1)
	assert.Equal(t, uint32(0), layouts[0][0].Attributes[0].ShaderLocation)
}

func TestParseVertexLayoutsInstanceStepMode(t *testing.T) {
	src := `
struct SegmentInstance {
    @location(0) point_a: vec4<f32>,
    @location(1) point_b: vec4<f32>,
}

@vertex
fn vs_main() {}
`
	layouts := parseVertexLayouts(src)
	require.Len(t, layouts, 1)
	assert.Equal(t, wgpu.VertexStepModeInstance, layouts[0][0].StepMode)
	assert.Equal(t, uint64(32), layouts[0][0].ArrayStride)
}

func TestParseBindGroupLayoutsClassifiesResources(t *testing.T) {
	src := `
struct ViewUniforms {
    view: mat4x4<f32>,
    proj: mat4x4<f32>,
    viewport: vec4<f32>,
}

@group(0) @binding(0) var<uniform> view_data: ViewUniforms;
@group(1) @binding(0) var atlas: texture_2d<f32>;
@group(1) @binding(1) var atlas_sampler: sampler;
@group(2) @binding(0) var<storage, read> segments: array<ViewUniforms>;
`
	groups, varNames := parseBindGroupLayouts(src, wgpu.ShaderStageFragment)
	require.Len(t, groups, 3)

	g0 := groups[0].Entries
	require.Len(t, g0, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g0[0].Buffer.Type)
	assert.Equal(t, uint64(144), g0[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, g0[0].Visibility)

	g1 := groups[1].Entries
	require.Len(t, g1, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, g1[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, g1[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, g1[1].Sampler.Type)

	g2 := groups[2].Entries
	require.Len(t, g2, 1)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, g2[0].Buffer.Type)
	// Runtime-sized arrays bind at least one element.
	assert.Equal(t, uint64(144), g2[0].Buffer.MinBindingSize)

	assert.Equal(t, "view_data", varNames[0][0])
	assert.Equal(t, "atlas", varNames[1][0])
	assert.Equal(t, "atlas_sampler", varNames[1][1])
}

func TestParseBindGroupLayoutsSortsByBinding(t *testing.T) {
	src := `
@group(0) @binding(2) var s: sampler;
@group(0) @binding(0) var t0: texture_2d<f32>;
@group(0) @binding(1) var t1: texture_2d<f32>;
`
	groups, _ := parseBindGroupLayouts(src, wgpu.ShaderStageFragment)
	entries := groups[0].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Equal(t, uint32(2), entries[2].Binding)
}

func TestParseBindGroupLayoutsIgnoresCommentedDeclarations(t *testing.T) {
	src := `
// @group(0) @binding(0) var<uniform> ghost: f32;
/* @group(0) @binding(1) var<uniform> ghost2: f32; */
@group(0) @binding(0) var<uniform> real: f32;
`
	groups, _ := parseBindGroupLayouts(src, wgpu.ShaderStageVertex)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Entries, 1)
}

func TestParseEntryPoint(t *testing.T) {
	src := `
@vertex
fn vs_main() {}

@fragment
fn fs_main() {}
`
	assert.Equal(t, "vs_main", parseEntryPoint(src, ShaderTypeVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(src, ShaderTypeFragment))
	assert.Equal(t, "", parseEntryPoint(src, ShaderTypeCompute))
}

func TestParseWorkgroupSizeDefaults(t *testing.T) {
	assert.Equal(t, [3]uint32{1, 1, 1}, parseWorkgroupSize("fn noop() {}"))
	assert.Equal(t, [3]uint32{64, 1, 1}, parseWorkgroupSize("@compute @workgroup_size(64) fn main() {}"))
	assert.Equal(t, [3]uint32{8, 8, 2}, parseWorkgroupSize("@compute @workgroup_size(8, 8, 2) fn main() {}"))
}

func TestResolveTypeLayoutFixedArray(t *testing.T) {
	layout, ok := resolveTypeLayout("array<vec3<f32>, 4>", nil)
	require.True(t, ok)
	// vec3<f32> has size 12, align 16, so the stride is 16.
	assert.Equal(t, uint64(64), layout.size)
	assert.Equal(t, uint64(16), layout.align)
}

func TestComputeStructSizesResolvesDependencies(t *testing.T) {
	src := `
struct Inner {
    a: vec3<f32>,
    b: f32,
}

struct Outer {
    items: array<Inner, 2>,
    count: u32,
}
`
	structs := parseStructBlocks(src)
	sizes := computeStructSizes(structs)

	require.Contains(t, sizes, "Inner")
	require.Contains(t, sizes, "Outer")
	assert.Equal(t, uint64(16), sizes["Inner"].size)
	// Two Inner elements plus the u32, padded to 16-byte alignment.
	assert.Equal(t, uint64(48), sizes["Outer"].size)
}

func TestStripBlockCommentsHandlesNesting(t *testing.T) {
	src := "a /* outer /* inner */ still outer */ b"
	assert.Equal(t, "a  b", stripBlockComments(src))
}
