package model

import (
	"github.com/chewxy/math32"

	"github.com/dimforge/kiss3d/common"
)

// Procedural primitive generators. All shapes are centered at the origin and
// sized so a unit parameter set produces a unit-extent mesh; callers scale
// through the scene node rather than re-tessellating.

// Cuboid generates an axis-aligned box with the given full extents.
//
// Parameters:
//   - wx, wy, wz: extents along each axis
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Cuboid(wx, wy, wz float32) *common.MeshData {
	hx, hy, hz := wx/2, wy/2, wz/2

	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{0, 0, 1}, [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
	}

	data := &common.MeshData{}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for _, f := range faces {
		base := uint32(len(data.Positions))
		for i, c := range f.corners {
			data.Positions = append(data.Positions, c)
			data.Normals = append(data.Normals, f.normal)
			data.UVs = append(data.UVs, uvs[i])
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return data
}

// Sphere generates a UV sphere with the given diameter.
//
// Parameters:
//   - diameter: the sphere diameter
//   - nthetaSubdiv: subdivisions around the sphere (longitude)
//   - nphiSubdiv: subdivisions from pole to pole (latitude)
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Sphere(diameter float32, nthetaSubdiv, nphiSubdiv uint32) *common.MeshData {
	r := diameter / 2
	data := &common.MeshData{}

	for phi := uint32(0); phi <= nphiSubdiv; phi++ {
		v := float32(phi) / float32(nphiSubdiv)
		polar := v * math32.Pi
		sp, cp := math32.Sincos(polar)

		for theta := uint32(0); theta <= nthetaSubdiv; theta++ {
			u := float32(theta) / float32(nthetaSubdiv)
			azim := u * 2 * math32.Pi
			sa, ca := math32.Sincos(azim)

			n := [3]float32{sp * ca, cp, sp * sa}
			data.Positions = append(data.Positions, [3]float32{n[0] * r, n[1] * r, n[2] * r})
			data.Normals = append(data.Normals, n)
			data.UVs = append(data.UVs, [2]float32{u, v})
		}
	}

	stride := nthetaSubdiv + 1
	for phi := uint32(0); phi < nphiSubdiv; phi++ {
		for theta := uint32(0); theta < nthetaSubdiv; theta++ {
			a := phi*stride + theta
			b := a + stride
			data.Indices = append(data.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return data
}

// Cone generates a cone pointing toward +y, base at -height/2.
//
// Parameters:
//   - diameter: the base diameter
//   - height: the cone height
//   - nsubdiv: subdivisions around the base circle
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Cone(diameter, height float32, nsubdiv uint32) *common.MeshData {
	r := diameter / 2
	hh := height / 2
	data := &common.MeshData{}

	// Side surface: duplicated apex per segment for hard-edged normals.
	for i := uint32(0); i <= nsubdiv; i++ {
		u := float32(i) / float32(nsubdiv)
		s, c := math32.Sincos(u * 2 * math32.Pi)

		// Slope normal: lean the radial direction up by the cone angle.
		slope := r / height
		n := common.NormalizeVec3([3]float32{c, slope, s}, [3]float32{0, 1, 0})

		data.Positions = append(data.Positions, [3]float32{c * r, -hh, s * r})
		data.Normals = append(data.Normals, n)
		data.UVs = append(data.UVs, [2]float32{u, 1})

		data.Positions = append(data.Positions, [3]float32{0, hh, 0})
		data.Normals = append(data.Normals, n)
		data.UVs = append(data.UVs, [2]float32{u, 0})
	}
	for i := uint32(0); i < nsubdiv; i++ {
		base := i * 2
		data.Indices = append(data.Indices, base, base+1, base+2)
	}

	appendDisk(data, r, -hh, nsubdiv, false)
	return data
}

// Cylinder generates a cylinder with its axis along y.
//
// Parameters:
//   - diameter: the cylinder diameter
//   - height: the cylinder height
//   - nsubdiv: subdivisions around the circumference
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Cylinder(diameter, height float32, nsubdiv uint32) *common.MeshData {
	r := diameter / 2
	hh := height / 2
	data := &common.MeshData{}

	for i := uint32(0); i <= nsubdiv; i++ {
		u := float32(i) / float32(nsubdiv)
		s, c := math32.Sincos(u * 2 * math32.Pi)
		n := [3]float32{c, 0, s}

		data.Positions = append(data.Positions, [3]float32{c * r, -hh, s * r})
		data.Normals = append(data.Normals, n)
		data.UVs = append(data.UVs, [2]float32{u, 1})

		data.Positions = append(data.Positions, [3]float32{c * r, hh, s * r})
		data.Normals = append(data.Normals, n)
		data.UVs = append(data.UVs, [2]float32{u, 0})
	}
	for i := uint32(0); i < nsubdiv; i++ {
		base := i * 2
		data.Indices = append(data.Indices,
			base, base+1, base+2,
			base+2, base+1, base+3)
	}

	appendDisk(data, r, -hh, nsubdiv, false)
	appendDisk(data, r, hh, nsubdiv, true)
	return data
}

// Capsule generates a capsule with its axis along y: a cylinder of the given
// height capped by two hemispheres.
//
// Parameters:
//   - diameter: the caps diameter
//   - height: the cylindrical section height
//   - nthetaSubdiv: subdivisions around the capsule
//   - nphiSubdiv: subdivisions along each hemisphere
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Capsule(diameter, height float32, nthetaSubdiv, nphiSubdiv uint32) *common.MeshData {
	r := diameter / 2
	hh := height / 2
	data := &common.MeshData{}

	// One longitudinal strip from the top pole to the bottom pole; the
	// cylindrical section is the middle band between the two hemispheres.
	rows := nphiSubdiv*2 + 2
	for row := uint32(0); row <= rows; row++ {
		var y, ny float32
		var ringR float32
		switch {
		case row <= nphiSubdiv: // top hemisphere
			polar := float32(row) / float32(nphiSubdiv) * math32.Pi / 2
			sp, cp := math32.Sincos(polar)
			ringR = sp * r
			y = hh + cp*r
			ny = cp
		case row >= nphiSubdiv+2: // bottom hemisphere
			polar := float32(row-nphiSubdiv-2) / float32(nphiSubdiv) * math32.Pi / 2
			sp, cp := math32.Sincos(polar + math32.Pi/2)
			ringR = sp * r
			y = -hh + cp*r
			ny = cp
		default: // bottom edge of the cylinder band
			ringR = r
			y = -hh
			ny = 0
		}

		v := float32(row) / float32(rows)
		for theta := uint32(0); theta <= nthetaSubdiv; theta++ {
			u := float32(theta) / float32(nthetaSubdiv)
			s, c := math32.Sincos(u * 2 * math32.Pi)
			horiz := math32.Sqrt(1 - ny*ny)
			data.Positions = append(data.Positions, [3]float32{c * ringR, y, s * ringR})
			data.Normals = append(data.Normals, common.NormalizeVec3([3]float32{c * horiz, ny, s * horiz}, [3]float32{0, 1, 0}))
			data.UVs = append(data.UVs, [2]float32{u, v})
		}
	}

	stride := nthetaSubdiv + 1
	for row := uint32(0); row < rows; row++ {
		for theta := uint32(0); theta < nthetaSubdiv; theta++ {
			a := row*stride + theta
			b := a + stride
			data.Indices = append(data.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return data
}

// Quad generates a subdivided grid in the x/y plane, centered at the origin.
// The result is intended for double-sided rendering; callers should disable
// backface culling on the mesh.
//
// Parameters:
//   - width: the quad width
//   - height: the quad height
//   - usubdivs: horizontal subdivisions (must be >= 1)
//   - vsubdivs: vertical subdivisions (must be >= 1)
//
// Returns:
//   - *common.MeshData: the generated mesh data
func Quad(width, height float32, usubdivs, vsubdivs uint32) *common.MeshData {
	if usubdivs == 0 {
		usubdivs = 1
	}
	if vsubdivs == 0 {
		vsubdivs = 1
	}

	data := &common.MeshData{}
	for row := uint32(0); row <= vsubdivs; row++ {
		v := float32(row) / float32(vsubdivs)
		for col := uint32(0); col <= usubdivs; col++ {
			u := float32(col) / float32(usubdivs)
			data.Positions = append(data.Positions, [3]float32{(u - 0.5) * width, (v - 0.5) * height, 0})
			data.Normals = append(data.Normals, [3]float32{0, 0, 1})
			data.UVs = append(data.UVs, [2]float32{u, 1 - v})
		}
	}

	stride := usubdivs + 1
	for row := uint32(0); row < vsubdivs; row++ {
		for col := uint32(0); col < usubdivs; col++ {
			a := row*stride + col
			b := a + stride
			data.Indices = append(data.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return data
}

// QuadWithVertices generates a grid from explicit vertex positions laid out
// row-major as nhpoints columns by nvpoints rows. Normals are derived flat.
//
// Parameters:
//   - vertices: the grid positions (len must be nhpoints * nvpoints)
//   - nhpoints: number of horizontal points (must be >= 2)
//   - nvpoints: number of vertical points (must be >= 2)
//
// Returns:
//   - *common.MeshData: the generated mesh data
func QuadWithVertices(vertices [][3]float32, nhpoints, nvpoints uint32) *common.MeshData {
	data := &common.MeshData{}
	data.Positions = append(data.Positions, vertices...)
	for row := uint32(0); row < nvpoints; row++ {
		for col := uint32(0); col < nhpoints; col++ {
			data.UVs = append(data.UVs, [2]float32{
				float32(col) / float32(nhpoints-1),
				float32(row) / float32(nvpoints-1),
			})
		}
	}
	for row := uint32(0); row < nvpoints-1; row++ {
		for col := uint32(0); col < nhpoints-1; col++ {
			a := row*nhpoints + col
			b := a + nhpoints
			data.Indices = append(data.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return data
}

// appendDisk adds a cap disk at the given y with an up or down normal.
func appendDisk(data *common.MeshData, r, y float32, nsubdiv uint32, up bool) {
	ny := float32(-1)
	if up {
		ny = 1
	}
	normal := [3]float32{0, ny, 0}

	center := uint32(len(data.Positions))
	data.Positions = append(data.Positions, [3]float32{0, y, 0})
	data.Normals = append(data.Normals, normal)
	data.UVs = append(data.UVs, [2]float32{0.5, 0.5})

	for i := uint32(0); i <= nsubdiv; i++ {
		u := float32(i) / float32(nsubdiv)
		s, c := math32.Sincos(u * 2 * math32.Pi)
		data.Positions = append(data.Positions, [3]float32{c * r, y, s * r})
		data.Normals = append(data.Normals, normal)
		data.UVs = append(data.UVs, [2]float32{(c + 1) / 2, (s + 1) / 2})
	}

	for i := uint32(0); i < nsubdiv; i++ {
		a := center + 1 + i
		if up {
			data.Indices = append(data.Indices, center, a+1, a)
		} else {
			data.Indices = append(data.Indices, center, a, a+1)
		}
	}
}
