package scene

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimforge/kiss3d/engine/light"
	"github.com/dimforge/kiss3d/engine/renderer"
	"github.com/dimforge/kiss3d/engine/renderer/material"
)

func TestGraphAttachDetach(t *testing.T) {
	g := newGraph()
	require.Equal(t, 1, g.count)
	require.True(t, g.valid(g.root()))

	a := g.alloc(g.root())
	b := g.alloc(a)
	c := g.alloc(a)
	require.Equal(t, 4, g.count)
	require.True(t, g.valid(b))

	// Removing a frees its whole subtree.
	freed := 0
	require.True(t, g.remove(a, func(*node) { freed++ }))
	assert.Equal(t, 3, freed)
	assert.Equal(t, 1, g.count)
	assert.False(t, g.valid(a))
	assert.False(t, g.valid(b))
	assert.False(t, g.valid(c))

	// The root can never be removed, nor can dead handles.
	assert.False(t, g.remove(g.root(), nil))
	assert.False(t, g.remove(a, nil))
	assert.False(t, g.remove(InvalidHandle, nil))

	// Freed slots are recycled.
	d := g.alloc(g.root())
	assert.True(t, g.valid(d))
	assert.Equal(t, 2, g.count)
}

func TestGraphAllocRejectsDeadParent(t *testing.T) {
	g := newGraph()
	a := g.alloc(g.root())
	require.True(t, g.remove(a, nil))
	assert.Equal(t, InvalidHandle, g.alloc(a))
}

func TestGraphWorldTransformPropagation(t *testing.T) {
	g := newGraph()
	parent := g.alloc(g.root())
	child := g.alloc(parent)

	g.nodes[parent].translation = [3]float32{1, 2, 3}
	g.nodes[parent].dirty = true
	g.nodes[child].translation = [3]float32{10, 0, 0}
	g.nodes[child].dirty = true
	g.propagate()

	pos := g.nodes[child].worldTranslation()
	assert.InDelta(t, 11, pos[0], 1e-5)
	assert.InDelta(t, 2, pos[1], 1e-5)
	assert.InDelta(t, 3, pos[2], 1e-5)

	// Rotating the parent 90 degrees about Y swings the child's +X offset
	// onto -Z.
	g.nodes[parent].rotation = [3]float32{0, math32.Pi / 2, 0}
	g.nodes[parent].dirty = true
	g.propagate()

	pos = g.nodes[child].worldTranslation()
	assert.InDelta(t, 1, pos[0], 1e-5)
	assert.InDelta(t, 2, pos[1], 1e-5)
	assert.InDelta(t, 3-10, pos[2], 1e-5)
}

func TestGraphScaleInheritsWithoutScalingOffsets(t *testing.T) {
	g := newGraph()
	parent := g.alloc(g.root())
	child := g.alloc(parent)

	g.nodes[parent].scale = [3]float32{5, 5, 5}
	g.nodes[parent].dirty = true
	g.nodes[child].scale = [3]float32{2, 1, 1}
	g.nodes[child].translation = [3]float32{1, 0, 0}
	g.nodes[child].dirty = true
	g.propagate()

	// The world matrix stays rigid: the child sits one unit away, not five.
	pos := g.nodes[child].worldTranslation()
	assert.InDelta(t, 1, pos[0], 1e-5)

	// Geometry scale inherits componentwise down the tree.
	assert.Equal(t, [3]float32{10, 5, 5}, g.nodes[child].worldScale)
	var packed [12]float32
	g.nodes[child].scaleMat3(packed[:])
	assert.InDelta(t, 10, packed[0], 1e-6)
	assert.InDelta(t, 5, packed[5], 1e-6)
	assert.InDelta(t, 5, packed[10], 1e-6)

	// Rescaling the parent alone reaches the child on the next propagate.
	g.nodes[parent].scale = [3]float32{1, 1, 1}
	g.nodes[parent].dirty = true
	g.propagate()
	assert.Equal(t, [3]float32{2, 1, 1}, g.nodes[child].worldScale)
}

func TestGraphVisitSkipsInvisibleSubtrees(t *testing.T) {
	g := newGraph()
	a := g.alloc(g.root())
	b := g.alloc(a)
	c := g.alloc(g.root())
	g.nodes[a].visible = false

	var seen []NodeHandle
	g.visit(func(h NodeHandle, _ *node) { seen = append(seen, h) })

	assert.Contains(t, seen, g.root())
	assert.Contains(t, seen, c)
	assert.NotContains(t, seen, a)
	assert.NotContains(t, seen, b)
}

func TestLightCollectionFirstEightInTraversalOrder(t *testing.T) {
	g := newGraph()
	handles := make([]NodeHandle, 0, 10)
	for i := 0; i < 10; i++ {
		h := g.alloc(g.root())
		g.nodes[h].translation = [3]float32{float32(i), 0, 0}
		g.nodes[h].dirty = true
		g.nodes[h].light = light.NewPoint(50)
		handles = append(handles, h)
	}
	g.propagate()

	lights := light.NewCollection()
	g.visit(func(_ NodeHandle, n *node) {
		if n.light != nil && n.light.Enabled() {
			lights.Add(light.CollectedLight{
				Light:          n.light,
				WorldPosition:  n.worldTranslation(),
				WorldDirection: n.worldDirection(n.light.Direction()),
			})
		}
	})

	require.Equal(t, light.MaxLights, lights.Len())
	for i, cl := range lights.Lights() {
		assert.InDelta(t, float32(i), cl.WorldPosition[0], 1e-5)
	}

	var frame light.FrameUniforms
	lights.Fill(&frame)
	assert.Equal(t, uint32(light.MaxLights), frame.NumLights)
}

func TestNodeWorldDirection(t *testing.T) {
	g := newGraph()
	h := g.alloc(g.root())
	g.nodes[h].rotation = [3]float32{0, math32.Pi / 2, 0}
	g.nodes[h].dirty = true
	g.propagate()

	// A light facing -Z turns to face -X after a 90 degree yaw.
	dir := g.nodes[h].worldDirection([3]float32{0, 0, -1})
	assert.InDelta(t, -1, dir[0], 1e-5)
	assert.InDelta(t, 0, dir[1], 1e-5)
	assert.InDelta(t, 0, dir[2], 1e-5)

	// A degenerate direction falls back to -Z.
	dir = g.nodes[h].worldDirection([3]float32{})
	assert.Equal(t, [3]float32{0, 0, -1}, dir)
}

func TestNodeScaleMat3WithDeformation(t *testing.T) {
	g := newGraph()
	h := g.alloc(g.root())
	n := &g.nodes[h]
	n.scale = [3]float32{2, 3, 4}
	g.propagate()

	var packed [12]float32
	n.scaleMat3(packed[:])
	assert.InDelta(t, 2, packed[0], 1e-6)
	assert.InDelta(t, 3, packed[5], 1e-6)
	assert.InDelta(t, 4, packed[10], 1e-6)
	// Padding lanes stay zero.
	assert.Zero(t, packed[3])
	assert.Zero(t, packed[7])
	assert.Zero(t, packed[11])

	// A shear deformation lands in the packed matrix scaled by the row scale.
	n.deformation = []float32{1, 0, 0, 1, 1, 0, 0, 0, 1}
	n.scaleMat3(packed[:])
	assert.InDelta(t, 2, packed[4], 1e-6)
	assert.InDelta(t, 3, packed[5], 1e-6)
}

func TestNodeMaxScale(t *testing.T) {
	g := newGraph()
	h := g.alloc(g.root())
	g.nodes[h].scale = [3]float32{-7, 2, 3}
	g.propagate()
	assert.InDelta(t, 7, g.nodes[h].maxScale(), 1e-6)
}

func TestPipelineKeyForMaterial(t *testing.T) {
	assert.Equal(t, renderer.PipelineKeyMeshBlinnPhong, pipelineKeyForMaterial(material.NewMaterial()))
	assert.Equal(t, renderer.PipelineKeyMeshPBR, pipelineKeyForMaterial(material.NewMaterial(material.WithMode(material.ShadingPBR))))
	assert.Equal(t, renderer.PipelineKeyMeshFlat, pipelineKeyForMaterial(material.NewMaterial(material.WithMode(material.ShadingFlat))))
	assert.Equal(t, renderer.PipelineKeyMeshNormals, pipelineKeyForMaterial(material.NewMaterial(material.WithMode(material.ShadingNormals))))

	custom := material.NewMaterial()
	custom.SetPipelineKey("mesh:custom")
	assert.Equal(t, "mesh:custom", pipelineKeyForMaterial(custom))
}

func TestPlanarAccessorsMapOntoNode(t *testing.T) {
	s := &scene{mu: &sync.RWMutex{}, g: newGraph()}
	h := s.g.alloc(s.g.root())

	s.SetPlanarTranslation(h, [2]float32{3, -4})
	assert.Equal(t, [3]float32{3, -4, 0}, s.g.nodes[h].translation)
	assert.Equal(t, [2]float32{3, -4}, s.PlanarTranslation(h))

	s.SetPlanarRotation(h, math32.Pi/3)
	assert.Equal(t, [3]float32{0, 0, math32.Pi / 3}, s.g.nodes[h].rotation)
	assert.InDelta(t, math32.Pi/3, s.PlanarRotation(h), 1e-6)

	s.SetPlanarScale(h, [2]float32{2, 5})
	assert.Equal(t, [3]float32{2, 5, 1}, s.g.nodes[h].scale)
	assert.Equal(t, [2]float32{2, 5}, s.PlanarScale(h))
	assert.True(t, s.g.nodes[h].dirty)

	// Dead handles are ignored.
	s.SetPlanarRotation(InvalidHandle, 1)
	assert.Zero(t, s.PlanarRotation(InvalidHandle))
}

func TestPlanarRotationSpinsAboutZ(t *testing.T) {
	s := &scene{mu: &sync.RWMutex{}, g: newGraph()}
	h := s.g.alloc(s.g.root())

	s.SetPlanarRotation(h, math32.Pi/2)
	s.g.propagate()

	// A quarter turn about z maps +x onto +y in the world matrix.
	w := s.g.nodes[h].world
	assert.InDelta(t, 0, w[0], 1e-6)
	assert.InDelta(t, 1, w[1], 1e-6)
}
