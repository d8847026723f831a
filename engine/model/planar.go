package model

import (
	"github.com/chewxy/math32"

	"github.com/dimforge/kiss3d/common"
)

// Planar primitive generators. All shapes sit on the z = 0 plane with +z
// normals and are centered at the origin, ready for the planar surface
// pipeline and an orthographic camera.

// Rectangle generates an axis-aligned rectangle with the given full extents.
//
// Parameters:
//   - wx, wy: extents along each axis
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Rectangle(wx, wy float32) *common.MeshData {
	return Quad(wx, wy, 1, 1)
}

// Circle generates a disc as a triangle fan around a center vertex.
//
// Parameters:
//   - radius: the disc radius
//   - nsubdiv: subdivisions around the circumference (minimum 3)
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Circle(radius float32, nsubdiv uint32) *common.MeshData {
	if nsubdiv < 3 {
		nsubdiv = 3
	}

	data := &common.MeshData{}
	data.Positions = append(data.Positions, [3]float32{0, 0, 0})
	data.Normals = append(data.Normals, [3]float32{0, 0, 1})
	data.UVs = append(data.UVs, [2]float32{0.5, 0.5})

	for i := uint32(0); i < nsubdiv; i++ {
		ang := float32(i) / float32(nsubdiv) * 2 * math32.Pi
		s, c := math32.Sincos(ang)
		data.Positions = append(data.Positions, [3]float32{c * radius, s * radius, 0})
		data.Normals = append(data.Normals, [3]float32{0, 0, 1})
		data.UVs = append(data.UVs, [2]float32{(c + 1) / 2, (1 - s) / 2})
	}

	for i := uint32(1); i < nsubdiv; i++ {
		data.Indices = append(data.Indices, 0, i, i+1)
	}
	data.Indices = append(data.Indices, 0, nsubdiv, 1)
	return data
}

// PlanarCapsule generates a 2D capsule: a stadium shape with semicircular
// caps above and below a rectangular middle, fanned around a center vertex.
//
// Parameters:
//   - radius: the caps radius
//   - height: the height of the rectangular section
//   - nsubdiv: subdivisions per semicircular cap (minimum 2)
//
// Returns:
//   - *common.MeshData: the generated mesh data
func PlanarCapsule(radius, height float32, nsubdiv uint32) *common.MeshData {
	if nsubdiv < 2 {
		nsubdiv = 2
	}
	hh := height / 2

	data := &common.MeshData{}
	data.Positions = append(data.Positions, [3]float32{0, 0, 0})
	data.Normals = append(data.Normals, [3]float32{0, 0, 1})
	data.UVs = append(data.UVs, [2]float32{0.5, 0.5})

	push := func(x, y float32) {
		data.Positions = append(data.Positions, [3]float32{x, y, 0})
		data.Normals = append(data.Normals, [3]float32{0, 0, 1})
		u := (x/radius + 1) / 2
		v := (1 - y/(hh+radius)) / 2
		data.UVs = append(data.UVs, [2]float32{u, v})
	}

	// Top cap sweeps from +x to -x, bottom cap continues back to +x; the
	// fan closes across the straight sides.
	for i := uint32(0); i <= nsubdiv; i++ {
		ang := float32(i) / float32(nsubdiv) * math32.Pi
		s, c := math32.Sincos(ang)
		push(c*radius, s*radius+hh)
	}
	for i := nsubdiv; i <= nsubdiv*2; i++ {
		ang := float32(i) / float32(nsubdiv) * math32.Pi
		s, c := math32.Sincos(ang)
		push(c*radius, s*radius-hh)
	}

	rim := uint32(len(data.Positions)) - 1
	for i := uint32(1); i < rim; i++ {
		data.Indices = append(data.Indices, 0, i, i+1)
	}
	data.Indices = append(data.Indices, 0, rim, 1)
	return data
}

// ConvexPolygon generates a filled convex polygon from its boundary points,
// fanned from the first point. Points must describe a convex outline in
// counter-clockwise order; fewer than three points yield an empty mesh.
//
// Parameters:
//   - points: the polygon boundary on the z = 0 plane
//
// Returns:
//   - *common.MeshData: the generated mesh data
func ConvexPolygon(points [][2]float32) *common.MeshData {
	data := &common.MeshData{}
	if len(points) < 3 {
		return data
	}

	minX, minY := points[0][0], points[0][1]
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math32.Min(minX, p[0])
		minY = math32.Min(minY, p[1])
		maxX = math32.Max(maxX, p[0])
		maxY = math32.Max(maxY, p[1])
	}
	spanX := math32.Max(maxX-minX, 1e-6)
	spanY := math32.Max(maxY-minY, 1e-6)

	for _, p := range points {
		data.Positions = append(data.Positions, [3]float32{p[0], p[1], 0})
		data.Normals = append(data.Normals, [3]float32{0, 0, 1})
		data.UVs = append(data.UVs, [2]float32{
			(p[0] - minX) / spanX,
			1 - (p[1]-minY)/spanY,
		})
	}

	for i := uint32(1); i < uint32(len(points))-1; i++ {
		data.Indices = append(data.Indices, 0, i, i+1)
	}
	return data
}
