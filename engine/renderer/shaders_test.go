package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimforge/kiss3d/engine/renderer/pipeline"
)

func TestBuiltinPipelineKeys(t *testing.T) {
	byKey := make(map[string]pipeline.Pipeline)
	for _, p := range BuiltinPipelines() {
		byKey[p.PipelineKey()] = p
	}

	for _, key := range []string{
		PipelineKeyMeshBlinnPhong,
		PipelineKeyMeshPBR,
		PipelineKeyMeshFlat,
		PipelineKeyMeshNormals,
		PipelineKeyPlanarFlat,
		PipelineKeyWireframe,
		PipelineKeyPoints,
		PipelineKeyPolyline,
		PipelineKeyPolyline2D,
		PipelineKeyText,
	} {
		assert.Contains(t, byKey, key)
	}
}

func TestPlanarSurfacePipelineState(t *testing.T) {
	var planar pipeline.Pipeline
	for _, p := range BuiltinPipelines() {
		if p.PipelineKey() == PipelineKeyPlanarFlat {
			planar = p
		}
	}
	require.NotNil(t, planar)

	// 2D surfaces blend in draw order above the 3D content, visible from
	// both sides regardless of winding.
	assert.True(t, planar.BlendEnabled())
	assert.False(t, planar.DepthTestEnabled())
	assert.False(t, planar.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeNone, planar.CullMode())
}
