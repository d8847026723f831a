package model

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/dimforge/kiss3d/common"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name           string
	vertices       []GPUVertex
	indices        []uint32
	edges          []GPUEdge
	boundingRadius float32
	backfaceCull   bool
}

// Mesh defines the interface for an immutable uploaded mesh.
// A Mesh holds the CPU-side vertex, index and wireframe-edge streams that
// surface, wireframe and point pipelines draw from. It is shared by
// reference across many scene nodes and owned by the Registry, which tracks
// reference counts.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices retrieves the vertex stream.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices retrieves the triangle index stream.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// Edges retrieves the unique wireframe edges derived from the triangles.
	//
	// Returns:
	//   - []GPUEdge: the edges
	Edges() []GPUEdge

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the bounding sphere radius around the origin,
	// used for frustum visibility tests.
	//
	// Returns:
	//   - float32: the radius
	BoundingRadius() float32

	// BackfaceCulling reports whether back faces should be culled when this
	// mesh is drawn. Double-sided geometry (quads) disables it.
	//
	// Returns:
	//   - bool: true when culling is enabled
	BackfaceCulling() bool

	// SetBackfaceCulling toggles back face culling for this mesh.
	//
	// Parameters:
	//   - enabled: true to cull back faces
	SetBackfaceCulling(enabled bool)

	// VertexData returns the marshaled vertex buffer contents.
	//
	// Returns:
	//   - []byte: the vertex bytes (32 per vertex)
	VertexData() []byte

	// IndexData returns the marshaled index buffer contents.
	//
	// Returns:
	//   - []byte: the index bytes (4 per index)
	IndexData() []byte

	// EdgeData returns the marshaled edge storage buffer contents.
	//
	// Returns:
	//   - []byte: the edge bytes (32 per edge)
	EdgeData() []byte
}

var _ Mesh = &mesh{}

// NewMesh builds a mesh from loader-shaped data. Missing normals are derived
// flat from the triangle faces; missing UVs default to zero. Unique edges are
// extracted for the wireframe pass.
//
// Parameters:
//   - name: the mesh identifier
//   - data: validated vertex/index streams
//
// Returns:
//   - Mesh: the constructed mesh
//   - error: error if the data is inconsistent
func NewMesh(name string, data *common.MeshData) (Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mesh %q: %w", name, err)
	}

	m := &mesh{
		name:         name,
		vertices:     make([]GPUVertex, len(data.Positions)),
		indices:      append([]uint32(nil), data.Indices...),
		backfaceCull: true,
	}

	for i, p := range data.Positions {
		m.vertices[i].Position = p
		if len(data.Normals) > 0 {
			m.vertices[i].Normal = data.Normals[i]
		}
		if len(data.UVs) > 0 {
			m.vertices[i].TexCoord = data.UVs[i]
		}
	}

	if len(data.Normals) == 0 {
		computeFlatNormals(m.vertices, m.indices)
	}

	m.edges = extractEdges(m.vertices, m.indices)
	m.boundingRadius = ComputeBoundingRadius(m.vertices)

	return m, nil
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []GPUVertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) Edges() []GPUEdge {
	return m.edges
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *mesh) BackfaceCulling() bool {
	return m.backfaceCull
}

func (m *mesh) SetBackfaceCulling(enabled bool) {
	m.backfaceCull = enabled
}

func (m *mesh) VertexData() []byte {
	buf := make([]byte, 0, len(m.vertices)*32)
	for i := range m.vertices {
		buf = append(buf, m.vertices[i].Marshal()...)
	}
	return buf
}

func (m *mesh) IndexData() []byte {
	return common.SliceToBytes(m.indices)
}

func (m *mesh) EdgeData() []byte {
	buf := make([]byte, 0, len(m.edges)*32)
	for i := range m.edges {
		buf = append(buf, m.edges[i].Marshal()...)
	}
	return buf
}

// computeFlatNormals accumulates face normals onto each referenced vertex and
// renormalizes, skipping degenerate faces below the epsilon threshold.
func computeFlatNormals(vertices []GPUVertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		a := vertices[indices[i]].Position
		b := vertices[indices[i+1]].Position
		c := vertices[indices[i+2]].Position

		ab := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
		ac := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
		n := [3]float32{
			ab[1]*ac[2] - ab[2]*ac[1],
			ab[2]*ac[0] - ab[0]*ac[2],
			ab[0]*ac[1] - ab[1]*ac[0],
		}

		for k := 0; k < 3; k++ {
			v := &vertices[indices[i+k]]
			v.Normal[0] += n[0]
			v.Normal[1] += n[1]
			v.Normal[2] += n[2]
		}
	}

	for i := range vertices {
		n := vertices[i].Normal
		lenSq := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
		if lenSq < common.NormalEpsilon {
			continue
		}
		inv := 1.0 / math32.Sqrt(lenSq)
		vertices[i].Normal = [3]float32{n[0] * inv, n[1] * inv, n[2] * inv}
	}
}

// extractEdges collects the unique undirected edges of the triangle list in
// a deterministic order for the wireframe storage buffer.
func extractEdges(vertices []GPUVertex, indices []uint32) []GPUEdge {
	type key struct{ lo, hi uint32 }
	seen := make(map[key]struct{}, len(indices))
	keys := make([]key, 0, len(indices))

	add := func(a, b uint32) {
		k := key{a, b}
		if a > b {
			k = key{b, a}
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for i := 0; i+2 < len(indices); i += 3 {
		add(indices[i], indices[i+1])
		add(indices[i+1], indices[i+2])
		add(indices[i+2], indices[i])
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lo != keys[j].lo {
			return keys[i].lo < keys[j].lo
		}
		return keys[i].hi < keys[j].hi
	})

	edges := make([]GPUEdge, len(keys))
	for i, k := range keys {
		edges[i] = GPUEdge{
			PointA: vertices[k.lo].Position,
			PointB: vertices[k.hi].Position,
		}
	}
	return edges
}
