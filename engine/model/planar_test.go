package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectangleLiesOnPlane(t *testing.T) {
	data := Rectangle(4, 2)
	require.Len(t, data.Positions, 4)
	require.Len(t, data.Indices, 6)

	for _, p := range data.Positions {
		assert.Zero(t, p[2])
		assert.LessOrEqual(t, p[0], float32(2))
		assert.GreaterOrEqual(t, p[0], float32(-2))
		assert.LessOrEqual(t, p[1], float32(1))
		assert.GreaterOrEqual(t, p[1], float32(-1))
	}
	for _, n := range data.Normals {
		assert.Equal(t, [3]float32{0, 0, 1}, n)
	}
}

func TestCircleFansAroundCenter(t *testing.T) {
	const subdivs = 8
	data := Circle(3, subdivs)

	// Center plus one rim vertex per subdivision, one triangle each.
	require.Len(t, data.Positions, subdivs+1)
	require.Len(t, data.Indices, subdivs*3)

	assert.Equal(t, [3]float32{0, 0, 0}, data.Positions[0])
	for _, p := range data.Positions[1:] {
		r := p[0]*p[0] + p[1]*p[1]
		assert.InDelta(t, 9, r, 1e-4)
		assert.Zero(t, p[2])
	}
	// Every triangle fans from the center.
	for i := 0; i < len(data.Indices); i += 3 {
		assert.Zero(t, data.Indices[i])
	}
	// The last triangle closes the fan back to the first rim vertex.
	assert.Equal(t, uint32(1), data.Indices[len(data.Indices)-1])
}

func TestCircleClampsSubdivisions(t *testing.T) {
	data := Circle(1, 0)
	assert.Len(t, data.Positions, 4)
}

func TestPlanarCapsuleExtents(t *testing.T) {
	const (
		radius float32 = 1
		height float32 = 2
	)
	data := PlanarCapsule(radius, height, 16)
	require.NotEmpty(t, data.Indices)

	for _, p := range data.Positions {
		assert.Zero(t, p[2])
		assert.LessOrEqual(t, p[1], height/2+radius+1e-5)
		assert.GreaterOrEqual(t, p[1], -height/2-radius-1e-5)
		assert.LessOrEqual(t, p[0], radius+1e-5)
		assert.GreaterOrEqual(t, p[0], -radius-1e-5)
	}

	// The caps reach beyond the rectangular section.
	var maxY float32
	for _, p := range data.Positions {
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	assert.InDelta(t, height/2+radius, maxY, 1e-4)
}

func TestConvexPolygonFan(t *testing.T) {
	data := ConvexPolygon([][2]float32{{0, 0}, {2, 0}, {2, 2}, {0, 2}})
	require.Len(t, data.Positions, 4)
	// n-2 triangles fanned from the first point.
	require.Len(t, data.Indices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, data.Indices)

	// UVs span the bounding box with v flipped.
	assert.Equal(t, [2]float32{0, 1}, data.UVs[0])
	assert.Equal(t, [2]float32{1, 0}, data.UVs[2])
}

func TestConvexPolygonRejectsDegenerate(t *testing.T) {
	data := ConvexPolygon([][2]float32{{0, 0}, {1, 1}})
	assert.Empty(t, data.Positions)
	assert.Empty(t, data.Indices)
}
