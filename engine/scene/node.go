package scene

import (
	"github.com/dimforge/kiss3d/common"
	"github.com/dimforge/kiss3d/engine/light"
	"github.com/dimforge/kiss3d/engine/model"
	"github.com/dimforge/kiss3d/engine/renderer/bind_group_provider"
	"github.com/dimforge/kiss3d/engine/renderer/material"
)

// NodeHandle identifies a node in a scene's graph. Handles are stable for the
// lifetime of the node; removing a node frees its slot for reuse by a later
// Add call, so a handle must not be used after the node it named was removed.
type NodeHandle int

// InvalidHandle is returned by Add operations that fail and never names a
// live node.
const InvalidHandle NodeHandle = -1

// node is one arena slot of the scene graph. Local translation and rotation
// propagate to children through the rigid world matrix. Scale inherits
// componentwise down the tree and shapes geometry without scaling child
// offsets; deformation stays node-local.
type node struct {
	alive    bool
	parent   NodeHandle
	children []NodeHandle

	translation [3]float32
	rotation    [3]float32 // euler angles in radians
	scale       [3]float32
	deformation []float32 // optional 3x3 column-major, nil for identity

	visible    bool
	dirty      bool
	world      [16]float32 // parent world * T * R, scale excluded
	worldScale [3]float32  // parent world scale * local scale, componentwise

	object *object
	light  light.Light
}

// object holds the render state of a mesh-bearing node: the shared mesh, its
// material, the instance set, and the per-object GPU uniform providers.
type object struct {
	meshName string
	mesh     model.Mesh
	mat      material.Material

	instances *model.InstanceBuffer
	data      []model.InstanceData
	dataDirty bool

	color [4]float32 // multiplied into the material base color

	surface    bool
	linesWidth float32 // 0 disables the wireframe overlay
	linesColor common.Color
	pointsSize float32 // 0 disables the point overlay
	pointsColor common.Color
	linesPerspective  bool
	pointsPerspective bool

	objectBGP bind_group_provider.BindGroupProvider // mesh pass, group 1
	wireBGP   bind_group_provider.BindGroupProvider // wireframe pass, group 1
	pointsBGP bind_group_provider.BindGroupProvider // points pass, group 1
	pbrBGP    bind_group_provider.BindGroupProvider // PBR pass, group 3, nil unless needed
}

// graph is the arena backing a scene's node hierarchy. Slot 0 is the root and
// is never removed. Removed slots go on a free list and are recycled.
type graph struct {
	nodes []node
	free  []NodeHandle
	count int // live nodes, root included
}

// newGraph creates a graph holding only the root node.
func newGraph() *graph {
	g := &graph{}
	g.nodes = append(g.nodes, node{
		alive:      true,
		parent:     InvalidHandle,
		scale:      [3]float32{1, 1, 1},
		worldScale: [3]float32{1, 1, 1},
		visible:    true,
	})
	common.Identity(g.nodes[0].world[:])
	g.count = 1
	return g
}

// root returns the handle of the root node.
func (g *graph) root() NodeHandle {
	return 0
}

// valid reports whether h names a live node.
func (g *graph) valid(h NodeHandle) bool {
	return h >= 0 && int(h) < len(g.nodes) && g.nodes[h].alive
}

// get returns the node named by h, or nil when the handle is stale.
func (g *graph) get(h NodeHandle) *node {
	if !g.valid(h) {
		return nil
	}
	return &g.nodes[h]
}

// alloc attaches a fresh node under parent and returns its handle. The
// parent must be live.
func (g *graph) alloc(parent NodeHandle) NodeHandle {
	if !g.valid(parent) {
		return InvalidHandle
	}

	n := node{
		alive:      true,
		parent:     parent,
		scale:      [3]float32{1, 1, 1},
		worldScale: [3]float32{1, 1, 1},
		visible:    true,
		dirty:      true,
	}

	var h NodeHandle
	if len(g.free) > 0 {
		h = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		g.nodes[h] = n
	} else {
		h = NodeHandle(len(g.nodes))
		g.nodes = append(g.nodes, n)
	}

	g.nodes[parent].children = append(g.nodes[parent].children, h)
	g.count++
	return h
}

// remove detaches h from its parent and frees its whole subtree. The root
// cannot be removed. The released object state of each freed node is handed
// to onFree so the scene can drop GPU resources.
//
// Returns:
//   - bool: true if h named a live non-root node
func (g *graph) remove(h NodeHandle, onFree func(*node)) bool {
	if h == 0 || !g.valid(h) {
		return false
	}

	parent := g.nodes[h].parent
	if g.valid(parent) {
		siblings := g.nodes[parent].children
		for i, c := range siblings {
			if c == h {
				g.nodes[parent].children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}

	g.freeSubtree(h, onFree)
	return true
}

func (g *graph) freeSubtree(h NodeHandle, onFree func(*node)) {
	n := &g.nodes[h]
	for _, c := range n.children {
		g.freeSubtree(c, onFree)
	}
	if onFree != nil {
		onFree(n)
	}
	*n = node{parent: InvalidHandle}
	g.free = append(g.free, h)
	g.count--
}

// propagate recomputes world matrices and world scales for every node whose
// local transform changed since the last call, pushing the recomputation down
// each dirty subtree.
func (g *graph) propagate() {
	g.propagateFrom(0, nil, [3]float32{1, 1, 1}, false)
}

func (g *graph) propagateFrom(h NodeHandle, parentWorld []float32, parentScale [3]float32, parentDirty bool) {
	n := &g.nodes[h]
	dirty := parentDirty || n.dirty
	if dirty {
		var local [16]float32
		common.BuildTransform(local[:], n.translation, n.rotation, [3]float32{1, 1, 1}, nil)
		if parentWorld == nil {
			copy(n.world[:], local[:])
		} else {
			common.Mul4(n.world[:], parentWorld, local[:])
		}
		n.worldScale = [3]float32{
			parentScale[0] * n.scale[0],
			parentScale[1] * n.scale[1],
			parentScale[2] * n.scale[2],
		}
		n.dirty = false
	}
	for _, c := range n.children {
		g.propagateFrom(c, n.world[:], n.worldScale, dirty)
	}
}

// visit walks the live graph in depth-first order, skipping invisible
// subtrees, and calls fn for every visited node including the root.
func (g *graph) visit(fn func(h NodeHandle, n *node)) {
	g.visitFrom(0, fn)
}

func (g *graph) visitFrom(h NodeHandle, fn func(NodeHandle, *node)) {
	n := &g.nodes[h]
	if !n.visible {
		return
	}
	fn(h, n)
	for _, c := range n.children {
		g.visitFrom(c, fn)
	}
}

// worldDirection rotates a local direction into world space using the node's
// world rotation and normalizes the result.
func (n *node) worldDirection(local [3]float32) [3]float32 {
	w := n.world
	out := [3]float32{
		w[0]*local[0] + w[4]*local[1] + w[8]*local[2],
		w[1]*local[0] + w[5]*local[1] + w[9]*local[2],
		w[2]*local[0] + w[6]*local[1] + w[10]*local[2],
	}
	return common.NormalizeVec3(out, [3]float32{0, 0, -1})
}

// worldTranslation returns the node's world-space position.
func (n *node) worldTranslation() [3]float32 {
	return [3]float32{n.world[12], n.world[13], n.world[14]}
}

// localLinear builds the node's 4x4 linear transform from its inherited world
// scale and optional deformation, the part of the node transform the rigid
// world matrix excludes.
func (n *node) localLinear(out []float32) {
	var s [9]float32
	s[0], s[4], s[8] = n.worldScale[0], n.worldScale[1], n.worldScale[2]
	lin := s[:]
	if n.deformation != nil {
		var buf [9]float32
		common.Mul3(buf[:], s[:], n.deformation)
		lin = buf[:]
	}
	for i := range out {
		out[i] = 0
	}
	out[0], out[1], out[2] = lin[0], lin[1], lin[2]
	out[4], out[5], out[6] = lin[3], lin[4], lin[5]
	out[8], out[9], out[10] = lin[6], lin[7], lin[8]
	out[15] = 1
}

// scaleMat3 packs the node's inherited world scale and deformation into the
// padded mat3 layout consumed by the mesh pipelines.
func (n *node) scaleMat3(out []float32) {
	var s [9]float32
	s[0], s[4], s[8] = n.worldScale[0], n.worldScale[1], n.worldScale[2]
	if n.deformation != nil {
		var buf [9]float32
		common.Mul3(buf[:], s[:], n.deformation)
		copy(s[:], buf[:])
	}
	common.PackMat3(out, s[:])
}

// maxScale returns the largest absolute world scale factor, used to inflate
// the bounding radius for frustum tests.
func (n *node) maxScale() float32 {
	m := n.worldScale[0]
	if m < 0 {
		m = -m
	}
	for _, s := range n.worldScale[1:] {
		if s < 0 {
			s = -s
		}
		if s > m {
			m = s
		}
	}
	return m
}
