package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleOBJ = `
# simple triangle
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 0 1
f 1/1/1 2/2/1 3/3/1
`

func TestParseTriangle(t *testing.T) {
	t.Parallel()

	l := NewLoader()
	meshes, err := l.LoadReader("tri", strings.NewReader(triangleOBJ))
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "tri", m.Name)
	assert.Len(t, m.Data.Positions, 3)
	assert.Equal(t, []uint32{0, 1, 2}, m.Data.Indices)
	assert.Equal(t, [3]float32{0, 0, 1}, m.Data.Normals[0])
	// vt v=0 lands at the bottom of the image, so the uploaded v is flipped.
	assert.Equal(t, [2]float32{0, 1}, m.Data.UVs[0])
}

func TestParseQuadTriangulates(t *testing.T) {
	t.Parallel()

	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	meshes, err := NewLoader().LoadReader("quad", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, meshes[0].Data.Indices)
	assert.Empty(t, meshes[0].Data.Normals, "flat normals are derived at upload")
}

func TestParseNegativeIndices(t *testing.T) {
	t.Parallel()

	src := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	meshes, err := NewLoader().LoadReader("neg", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, meshes[0].Data.Indices)
}

func TestParseMultipleObjects(t *testing.T) {
	t.Parallel()

	src := `
o first
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o second
v 0 0 1
v 1 0 1
v 0 1 1
f 4 5 6
`
	meshes, err := NewLoader().LoadReader("multi", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, meshes, 2)
	assert.Equal(t, "first", meshes[0].Name)
	assert.Equal(t, "second", meshes[1].Name)
	// Indices are rebased per object.
	assert.Equal(t, []uint32{0, 1, 2}, meshes[1].Data.Indices)
	assert.Equal(t, [3]float32{0, 0, 1}, meshes[1].Data.Positions[0])
}

func TestCornerDeduplication(t *testing.T) {
	t.Parallel()

	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	meshes, err := NewLoader().LoadReader("dedup", strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, meshes[0].Data.Positions, 4, "shared corners collapse to one vertex")
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, meshes[0].Data.Indices)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"out of range index", "v 0 0 0\nf 1 2 3\n"},
		{"malformed corner", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/2/3/4 2 3\n"},
		{"short position", "v 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLoader().LoadReader(tt.name, strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load("model.gltf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mesh file extension")
}

func TestLoadReaderCaches(t *testing.T) {
	t.Parallel()

	l := NewLoader()
	first, err := l.LoadReader("tri", strings.NewReader(triangleOBJ))
	require.NoError(t, err)
	assert.True(t, l.Cached("tri"))

	// A second load with an empty reader must hit the cache.
	second, err := l.LoadReader("tri", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	l.Evict("tri")
	assert.False(t, l.Cached("tri"))
}
