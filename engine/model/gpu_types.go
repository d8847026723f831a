package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct
// for surface pipelines. Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes (tightly packed, no padding required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	return buf
}

// GPUEdgeSource is the canonical WGSL definition of the Edge struct consumed
// by the wireframe pipeline's storage buffer. Matches GPUEdge exactly
// (32 bytes).
//
//go:embed assets/edge.wgsl
var GPUEdgeSource string

// GPUEdge is one unique mesh edge for wireframe rendering. Each endpoint is
// padded to vec4 alignment. Size: 32 bytes.
type GPUEdge struct {
	PointA [3]float32 // offset  0: first endpoint in model space
	_pad0  float32    // offset 12: padding
	PointB [3]float32 // offset 16: second endpoint in model space
	_pad1  float32    // offset 28: padding
}

// Size returns the size of the GPUEdge struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUEdge) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUEdge struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUEdge) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.PointA[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.PointA[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.PointA[2]))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // padding
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.PointB[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.PointB[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.PointB[2]))
	binary.LittleEndian.PutUint32(buf[28:32], 0) // padding
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// GPUVertex positions. The radius is the maximum distance from the origin
// across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return math32.Sqrt(maxDistSq)
}
