package model

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimforge/kiss3d/common"
)

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.5, 0.25},
	}
	require.Equal(t, 32, v.Size())
	require.Len(t, v.Marshal(), 32)
}

func TestGPUEdgeLayout(t *testing.T) {
	e := GPUEdge{PointA: [3]float32{1, 0, 0}, PointB: [3]float32{0, 1, 0}}
	require.Equal(t, 32, e.Size())
	buf := e.Marshal()
	require.Len(t, buf, 32)
	// Padding words are zeroed.
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[12:16])
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[28:32])
}

func TestNewMeshDerivesFlatNormals(t *testing.T) {
	data := &common.MeshData{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	m, err := NewMesh("tri", data)
	require.NoError(t, err)

	for _, v := range m.Vertices() {
		assert.InDelta(t, 1.0, float64(v.Normal[2]), 1e-6)
	}
}

func TestNewMeshRejectsBadIndices(t *testing.T) {
	data := &common.MeshData{
		Positions: [][3]float32{{0, 0, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	_, err := NewMesh("bad", data)
	assert.Error(t, err)
}

func TestEdgeExtractionUnique(t *testing.T) {
	// Two triangles sharing the edge 1-2: five unique edges, not six.
	data := &common.MeshData{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Indices:   []uint32{0, 1, 2, 1, 3, 2},
	}
	m, err := NewMesh("quad", data)
	require.NoError(t, err)
	assert.Len(t, m.Edges(), 5)
}

func TestCuboidGeometry(t *testing.T) {
	data := Cuboid(2, 4, 6)
	require.NoError(t, data.Validate())
	assert.Len(t, data.Positions, 24)
	assert.Len(t, data.Indices, 36)

	m, err := NewMesh("box", data)
	require.NoError(t, err)
	assert.InDelta(t, math32.Sqrt(1+4+9), m.BoundingRadius(), 1e-5)
}

func TestSphereGeometry(t *testing.T) {
	data := Sphere(2, 16, 8)
	require.NoError(t, data.Validate())

	for i, p := range data.Positions {
		r := math32.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		assert.InDelta(t, 1.0, r, 1e-5, "vertex %d", i)
	}
}

func TestPrimitivesValidate(t *testing.T) {
	for name, data := range map[string]*common.MeshData{
		"cone":     Cone(1, 2, 16),
		"cylinder": Cylinder(1, 2, 16),
		"capsule":  Capsule(1, 2, 16, 8),
		"quad":     Quad(3, 2, 4, 4),
	} {
		assert.NoError(t, data.Validate(), name)
	}
}

func TestRegistryRefCounts(t *testing.T) {
	r := NewRegistry()

	// Built-ins come pre-registered.
	for _, name := range []string{"cube", "sphere", "cone", "cylinder"} {
		require.True(t, r.Contains(name), name)
	}

	m, err := r.Register("tri", &common.MeshData{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	})
	require.NoError(t, err)
	require.NotNil(t, m)

	_, err = r.Register("tri", &common.MeshData{
		Positions: [][3]float32{{0, 0, 0}},
	})
	assert.Error(t, err)

	require.NotNil(t, r.Acquire("tri"))
	require.NotNil(t, r.Acquire("tri"))
	assert.Equal(t, 2, r.Refs("tri"))

	assert.False(t, r.Release("tri"))
	assert.True(t, r.Release("tri"))
	assert.False(t, r.Contains("tri"))

	assert.Nil(t, r.Acquire("missing"))
}

func TestGrowCapacity(t *testing.T) {
	assert.Equal(t, uint64(1024), GrowCapacity(1))
	assert.Equal(t, uint64(1024), GrowCapacity(1024))
	assert.Equal(t, uint64(2048), GrowCapacity(1025))
	assert.Equal(t, uint64(65536), GrowCapacity(40000))
}

func TestSentinelResolution(t *testing.T) {
	assert.Equal(t, float32(2.5), ResolveWidth(common.LinesWidthUseObject, 2.5))
	assert.Equal(t, float32(1.0), ResolveWidth(1.0, 2.5))
	// Zero is a legal explicit width, not a sentinel.
	assert.Equal(t, float32(0), ResolveWidth(0, 2.5))

	def := common.Red
	assert.Equal(t, def, ResolveColor(common.UseObjectColor, def))
	assert.Equal(t, common.Blue, ResolveColor(common.Blue, def))
}

func TestInstanceBufferStreams(t *testing.T) {
	b := NewInstanceBuffer()
	assert.Equal(t, 1, b.Len())
	assert.False(t, b.AnyInstanceHasLinesWidth())

	inst := DefaultInstance()
	inst.Position = [3]float32{1, 2, 3}
	inst.LinesWidth = 2
	other := DefaultInstance()

	b.Set([]InstanceData{inst, other})
	assert.Equal(t, 2, b.Len())
	assert.True(t, b.AnyInstanceHasLinesWidth())

	// Stream byte lengths follow the documented strides.
	assert.Equal(t, 2*MeshInstanceStride, b.Mesh().Len())
	assert.Equal(t, 2*OverlayInstanceStride, b.Lines().Len())
	assert.Equal(t, 2*OverlayInstanceStride, b.Points().Len())

	// A full rewrite drops stale instances.
	b.Set([]InstanceData{DefaultInstance()})
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, MeshInstanceStride, b.Mesh().Len())
	assert.False(t, b.AnyInstanceHasLinesWidth())
}
