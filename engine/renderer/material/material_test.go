package material

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimforge/kiss3d/common"
)

func readF32(t *testing.T, buf []byte, off int) float32 {
	t.Helper()
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestObjectUniformsLayout(t *testing.T) {
	u := ObjectUniforms{
		Color:                   [4]float32{0.1, 0.2, 0.3, 0.4},
		Metallic:                0.5,
		Roughness:               0.25,
		Emissive:                [4]float32{1, 2, 3, 4},
		HasNormalMap:            1,
		HasMetallicRoughnessMap: 0,
		HasOcclusionMap:         1,
		HasEmissiveMap:          1,
	}
	for i := range u.Transform {
		u.Transform[i] = float32(i)
	}
	for i := range u.NTransform {
		u.NTransform[i] = float32(100 + i)
	}
	for i := range u.Scale {
		u.Scale[i] = float32(200 + i)
	}

	require.Equal(t, ObjectUniformsSize, u.Size())
	require.Equal(t, uintptr(ObjectUniformsSize), unsafe.Sizeof(u))

	buf := u.Marshal()
	require.Len(t, buf, ObjectUniformsSize)

	assert.Equal(t, float32(0), readF32(t, buf, 0))
	assert.Equal(t, float32(15), readF32(t, buf, 60))
	assert.Equal(t, float32(100), readF32(t, buf, 64))
	assert.Equal(t, float32(111), readF32(t, buf, 108))
	assert.Equal(t, float32(200), readF32(t, buf, 112))
	assert.Equal(t, float32(0.1), readF32(t, buf, 160))
	assert.Equal(t, float32(0.5), readF32(t, buf, 176))
	assert.Equal(t, float32(0.25), readF32(t, buf, 180))
	assert.Equal(t, float32(0), readF32(t, buf, 184))
	assert.Equal(t, float32(1), readF32(t, buf, 192))
	assert.Equal(t, float32(1), readF32(t, buf, 208))
	assert.Equal(t, float32(0), readF32(t, buf, 212))
	assert.Equal(t, float32(1), readF32(t, buf, 216))
	assert.Equal(t, float32(1), readF32(t, buf, 220))
}

func TestOverlayModelUniformsLayout(t *testing.T) {
	w := WireframeModelUniforms{
		Scale:          [3]float32{2, 3, 4},
		NumEdges:       12,
		DefaultColor:   [4]float32{1, 0, 0, 1},
		DefaultWidth:   1.5,
		UsePerspective: 1,
	}
	for i := range w.Transform {
		w.Transform[i] = float32(i)
	}

	require.Equal(t, OverlayModelUniformsSize, w.Size())

	buf := w.Marshal()
	require.Len(t, buf, OverlayModelUniformsSize)
	assert.Equal(t, float32(2), readF32(t, buf, 64))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(buf[76:]))
	assert.Equal(t, float32(1), readF32(t, buf, 80))
	assert.Equal(t, float32(1.5), readF32(t, buf, 96))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[100:]))
	assert.Equal(t, float32(0), readF32(t, buf, 104))
	assert.Equal(t, float32(0), readF32(t, buf, 108))
}

func TestPointsModelUniformsMatchesWireframeShape(t *testing.T) {
	p := PointsModelUniforms{
		Scale:        [3]float32{1, 1, 1},
		NumVertices:  8,
		DefaultColor: [4]float32{0, 1, 0, 1},
		DefaultSize:  4,
	}
	require.Equal(t, OverlayModelUniformsSize, p.Size())

	buf := p.Marshal()
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(buf[76:]))
	assert.Equal(t, float32(4), readF32(t, buf, 96))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[100:]))
}

func TestLineSegmentLayout(t *testing.T) {
	l := LineSegment{
		PointA:      [3]float32{1, 2, 3},
		Width:       2.5,
		PointB:      [3]float32{4, 5, 6},
		DepthBias:   0.001,
		Color:       [4]float32{1, 1, 0, 1},
		Perspective: 1,
	}

	require.Equal(t, LineSegmentSize, l.Size())

	buf := l.Marshal()
	require.Len(t, buf, LineSegmentSize)
	assert.Equal(t, float32(1), readF32(t, buf, 0))
	assert.Equal(t, float32(2.5), readF32(t, buf, 12))
	assert.Equal(t, float32(4), readF32(t, buf, 16))
	assert.Equal(t, float32(0.001), readF32(t, buf, 28))
	assert.Equal(t, float32(1), readF32(t, buf, 32))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[48:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[52:]))
}

func TestMaterialDefaults(t *testing.T) {
	m := NewMaterial()

	assert.Equal(t, ShadingBlinnPhong, m.Mode())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(0), m.Metallic())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Nil(t, m.AlbedoTexture())
}

func TestMaterialUniformsPresenceFlags(t *testing.T) {
	normal := &common.ImportedTexture{}
	m := NewMaterial(
		WithMode(ShadingPBR),
		WithMetallic(0.8),
		WithRoughness(0.3),
		WithNormalTexture(normal),
	)

	var u ObjectUniforms
	m.Uniforms(&u)

	assert.Equal(t, float32(0.8), u.Metallic)
	assert.Equal(t, float32(0.3), u.Roughness)
	assert.Equal(t, float32(1), u.HasNormalMap)
	assert.Equal(t, float32(0), u.HasMetallicRoughnessMap)
	assert.Equal(t, float32(0), u.HasOcclusionMap)
	assert.Equal(t, float32(0), u.HasEmissiveMap)
}
