package renderer

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dimforge/kiss3d/engine/renderer/pipeline"
	"github.com/dimforge/kiss3d/engine/renderer/shader"
)

// Pipeline cache keys for the builtin render passes. Materials reference these
// via Material.PipelineKey and scenes resolve them against the Renderer cache.
const (
	// PipelineKeyMeshBlinnPhong is the default lit mesh pass.
	PipelineKeyMeshBlinnPhong = "mesh:blinn_phong"

	// PipelineKeyMeshPBR is the Cook-Torrance physically based mesh pass.
	PipelineKeyMeshPBR = "mesh:pbr"

	// PipelineKeyMeshFlat is the unlit solid color mesh pass.
	PipelineKeyMeshFlat = "mesh:flat"

	// PipelineKeyMeshNormals is the normal visualization mesh pass.
	PipelineKeyMeshNormals = "mesh:normals"

	// PipelineKeyPlanarFlat is the 2D surface pass: unlit, alpha blended, no
	// culling and no depth test, so planar objects layer in draw order above
	// the 3D content.
	PipelineKeyPlanarFlat = "mesh2d:flat"

	// PipelineKeyWireframe expands mesh edges into screen-space quads.
	PipelineKeyWireframe = "overlay:wireframe"

	// PipelineKeyPoints expands mesh vertices into screen-space squares.
	PipelineKeyPoints = "overlay:points"

	// PipelineKeyPolyline draws immediate-mode 3D line segments with depth testing.
	PipelineKeyPolyline = "overlay:polyline"

	// PipelineKeyPolyline2D draws immediate-mode planar line segments on top of the scene.
	PipelineKeyPolyline2D = "overlay:polyline2d"

	// PipelineKeyText draws screen-space glyph quads from the text atlas.
	PipelineKeyText = "overlay:text"
)

//go:embed assets/mesh_blinn_phong.wgsl
var meshBlinnPhongSource string

//go:embed assets/mesh_pbr.wgsl
var meshPBRSource string

//go:embed assets/mesh_flat.wgsl
var meshFlatSource string

//go:embed assets/mesh_normals.wgsl
var meshNormalsSource string

//go:embed assets/wireframe.wgsl
var wireframeSource string

//go:embed assets/points.wgsl
var pointsSource string

//go:embed assets/polyline.wgsl
var polylineSource string

//go:embed assets/text.wgsl
var textSource string

// shaderPair builds the vertex and fragment shader options for a single WGSL
// source containing both entry points.
func shaderPair(key, source string) []pipeline.PipelineBuilderOption {
	return []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(shader.NewShader(key+":vs", shader.ShaderTypeVertex, source)),
		pipeline.WithFragmentShader(shader.NewShader(key+":fs", shader.ShaderTypeFragment, source)),
	}
}

// BuiltinPipelines constructs the full set of builtin render pipelines with
// their pass configuration. The returned pipelines are not yet registered;
// pass them to Renderer.RegisterPipelines.
//
// Mesh passes depth test and write with back-face culling. Overlay passes
// blend and test against mesh depth without writing it, so coincident
// wireframes and points stay visible on top of their surfaces. The planar
// surface pass and the planar line and text overlays skip the depth test
// entirely and draw in submission order.
//
// Returns:
//   - []pipeline.Pipeline: the builtin pipelines, ready for registration
func BuiltinPipelines() []pipeline.Pipeline {
	meshOpts := func(key, source string) []pipeline.PipelineBuilderOption {
		return append(shaderPair(key, source),
			pipeline.WithCullMode(wgpu.CullModeBack),
		)
	}
	overlayOpts := func(key, source string) []pipeline.PipelineBuilderOption {
		return append(shaderPair(key, source),
			pipeline.WithBlendEnabled(true),
			pipeline.WithDepthCompare(wgpu.CompareFunctionLessEqual),
			pipeline.WithDepthWriteEnabled(false),
		)
	}

	return []pipeline.Pipeline{
		pipeline.NewPipeline(PipelineKeyMeshBlinnPhong, meshOpts(PipelineKeyMeshBlinnPhong, meshBlinnPhongSource)...),
		pipeline.NewPipeline(PipelineKeyMeshPBR, meshOpts(PipelineKeyMeshPBR, meshPBRSource)...),
		pipeline.NewPipeline(PipelineKeyMeshFlat, meshOpts(PipelineKeyMeshFlat, meshFlatSource)...),
		pipeline.NewPipeline(PipelineKeyMeshNormals, meshOpts(PipelineKeyMeshNormals, meshNormalsSource)...),

		// The planar surface pass reuses the flat shader: 2D meshes sit on
		// z = 0 and an orthographic camera supplies the frame uniforms.
		pipeline.NewPipeline(PipelineKeyPlanarFlat, append(shaderPair(PipelineKeyPlanarFlat, meshFlatSource),
			pipeline.WithBlendEnabled(true),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		)...),

		pipeline.NewPipeline(PipelineKeyWireframe, overlayOpts(PipelineKeyWireframe, wireframeSource)...),
		pipeline.NewPipeline(PipelineKeyPoints, overlayOpts(PipelineKeyPoints, pointsSource)...),
		pipeline.NewPipeline(PipelineKeyPolyline, overlayOpts(PipelineKeyPolyline, polylineSource)...),

		// Planar lines and text render in screen space above everything.
		pipeline.NewPipeline(PipelineKeyPolyline2D, append(shaderPair(PipelineKeyPolyline2D, polylineSource),
			pipeline.WithBlendEnabled(true),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		)...),
		pipeline.NewPipeline(PipelineKeyText, append(shaderPair(PipelineKeyText, textSource),
			pipeline.WithBlendEnabled(true),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		)...),
	}
}
