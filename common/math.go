package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// NormalEpsilon is the squared-length threshold below which axis
// renormalization is skipped to avoid NaN normals from degenerate scales.
const NormalEpsilon = 1e-6

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Mul4Vec4 transforms a 4-component vector by a 4x4 column-major matrix.
//
// Parameters:
//   - m: matrix (16 elements, column-major)
//   - x, y, z, w: vector components
//
// Returns:
//   - [4]float32: the transformed vector
func Mul4Vec4(m []float32, x, y, z, w float32) [4]float32 {
	return [4]float32{
		m[0]*x + m[4]*y + m[8]*z + m[12]*w,
		m[1]*x + m[5]*y + m[9]*z + m[13]*w,
		m[2]*x + m[6]*y + m[10]*z + m[14]*w,
		m[3]*x + m[7]*y + m[11]*z + m[15]*w,
	}
}

// Perspective creates a perspective projection matrix targeting the
// WebGPU clip space convention (z in [0, 1]).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// Ortho creates an orthographic projection matrix targeting the WebGPU
// clip space convention (z in [0, 1]).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right, bottom, top: view volume extents
//   - near, far: clipping plane distances
func Ortho(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2.0 / (right - left)
	out[5] = 2.0 / (top - bottom)
	out[10] = 1.0 / (near - far)
	out[12] = (right + left) / (left - right)
	out[13] = (top + bottom) / (bottom - top)
	out[14] = near / (near - far)
}

// BuildTransform constructs a 4x4 model matrix from translation, Euler
// rotation, non-uniform scale and an optional 3x3 deformation applied before
// scale and rotation. The rotation order is Y * X * Z (yaw-pitch-roll), the
// resulting composition is T * R * S * D. All matrices are column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - tra: translation [x, y, z]
//   - rot: rotation angles in radians around each axis [x, y, z]
//   - scale: scale factors along each axis [x, y, z]
//   - deformation: optional 3x3 column-major matrix (9 elements), nil for identity
func BuildTransform(out []float32, tra, rot, scale [3]float32, deformation []float32) {
	cx := math32.Cos(rot[0])
	sx := math32.Sin(rot[0])
	cy := math32.Cos(rot[1])
	sy := math32.Sin(rot[1])
	cz := math32.Cos(rot[2])
	sz := math32.Sin(rot[2])

	// R * S, column-major
	var rs [9]float32
	rs[0] = (cy*cz + sy*sx*sz) * scale[0]
	rs[1] = (cx * sz) * scale[0]
	rs[2] = (-sy*cz + cy*sx*sz) * scale[0]
	rs[3] = (cy*-sz + sy*sx*cz) * scale[1]
	rs[4] = (cx * cz) * scale[1]
	rs[5] = (sy*sz + cy*sx*cz) * scale[1]
	rs[6] = (sy * cx) * scale[2]
	rs[7] = (-sx) * scale[2]
	rs[8] = (cy * cx) * scale[2]

	upper := rs[:]
	if deformation != nil {
		var buf [9]float32
		Mul3(buf[:], rs[:], deformation)
		upper = buf[:]
	}

	out[0], out[1], out[2], out[3] = upper[0], upper[1], upper[2], 0
	out[4], out[5], out[6], out[7] = upper[3], upper[4], upper[5], 0
	out[8], out[9], out[10], out[11] = upper[6], upper[7], upper[8], 0
	out[12], out[13], out[14], out[15] = tra[0], tra[1], tra[2], 1
}

// Mul3 multiplies two 3x3 column-major matrices: out = a * b.
func Mul3(out, a, b []float32) {
	var buf [9]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			buf[i*3+j] = a[j]*b[i*3] + a[3+j]*b[i*3+1] + a[6+j]*b[i*3+2]
		}
	}
	copy(out, buf[:])
}

// Identity3 resets a 3x3 column-major matrix (flat slice) to identity.
func Identity3(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[4], m[8] = 1, 1, 1
}

// NormalMatrix extracts the normal transform from the upper-left 3x3 of a
// 4x4 model matrix. Each column is divided by its squared length, which is
// equivalent to the inverse-transpose for rotation combined with
// non-uniform scale. Columns whose squared length falls below
// NormalEpsilon are copied through unchanged so degenerate scale axes
// never produce NaN normals.
//
// Parameters:
//   - out: destination 3x3 slice (must be at least 9 elements)
//   - model: source 4x4 matrix (16 elements, column-major)
func NormalMatrix(out, model []float32) {
	for c := 0; c < 3; c++ {
		x := model[c*4]
		y := model[c*4+1]
		z := model[c*4+2]
		lenSq := x*x + y*y + z*z
		if lenSq < NormalEpsilon {
			out[c*3], out[c*3+1], out[c*3+2] = x, y, z
			continue
		}
		inv := 1.0 / lenSq
		out[c*3] = x * inv
		out[c*3+1] = y * inv
		out[c*3+2] = z * inv
	}
}

// PackMat3 packs a 3x3 column-major matrix into three padded vec4 columns,
// the std140/WGSL uniform layout for mat3x3. Padding lanes are zeroed.
//
// Parameters:
//   - out: destination slice (must be at least 12 elements)
//   - m: source 3x3 matrix (9 elements, column-major)
func PackMat3(out, m []float32) {
	for c := 0; c < 3; c++ {
		out[c*4] = m[c*3]
		out[c*4+1] = m[c*3+1]
		out[c*4+2] = m[c*3+2]
		out[c*4+3] = 0
	}
}

// UnpackMat3 reverses PackMat3, dropping the padding lanes.
//
// Parameters:
//   - out: destination 3x3 slice (must be at least 9 elements)
//   - packed: source padded columns (12 elements)
func UnpackMat3(out, packed []float32) {
	for c := 0; c < 3; c++ {
		out[c*3] = packed[c*4]
		out[c*3+1] = packed[c*4+1]
		out[c*3+2] = packed[c*4+2]
	}
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular (determinant ≈ 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	// 2x2 sub-determinants of the upper-left and lower-right quadrants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return true
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z0 := eyeX - centerX
	z1 := eyeY - centerY
	z2 := eyeZ - centerZ
	val := z0*z0 + z1*z1 + z2*z2
	if val == 0 {
		val = 1
	}
	invLen := 1.0 / math32.Sqrt(val)
	z0 *= invLen
	z1 *= invLen
	z2 *= invLen

	x0 := upY*z2 - upZ*z1
	x1 := upZ*z0 - upX*z2
	x2 := upX*z1 - upY*z0
	val = x0*x0 + x1*x1 + x2*x2
	if val == 0 {
		val = 1
	}
	invLen = 1.0 / math32.Sqrt(val)
	x0 *= invLen
	x1 *= invLen
	x2 *= invLen

	y0 := z1*x2 - z2*x1
	y1 := z2*x0 - z0*x2
	y2 := z0*x1 - z1*x0

	out[0], out[4], out[8], out[12] = x0, x1, x2, -(x0*eyeX + x1*eyeY + x2*eyeZ)
	out[1], out[5], out[9], out[13] = y0, y1, y2, -(y0*eyeX + y1*eyeY + y2*eyeZ)
	out[2], out[6], out[10], out[14] = z0, z1, z2, -(z0*eyeX + z1*eyeY + z2*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// RotateVec3 rotates a vector by the Euler angles (Y * X * Z order) used by
// BuildTransform, without applying scale or translation.
//
// Parameters:
//   - rot: rotation angles in radians around each axis [x, y, z]
//   - v: the vector to rotate
//
// Returns:
//   - [3]float32: the rotated vector
func RotateVec3(rot, v [3]float32) [3]float32 {
	cx := math32.Cos(rot[0])
	sx := math32.Sin(rot[0])
	cy := math32.Cos(rot[1])
	sy := math32.Sin(rot[1])
	cz := math32.Cos(rot[2])
	sz := math32.Sin(rot[2])

	return [3]float32{
		(cy*cz+sy*sx*sz)*v[0] + (cy*-sz+sy*sx*cz)*v[1] + (sy*cx)*v[2],
		(cx*sz)*v[0] + (cx*cz)*v[1] + (-sx)*v[2],
		(-sy*cz+cy*sx*sz)*v[0] + (sy*sz+cy*sx*cz)*v[1] + (cy*cx)*v[2],
	}
}

// NormalizeVec3 returns the unit-length version of v, or fallback when the
// vector's length is below the degenerate threshold.
func NormalizeVec3(v, fallback [3]float32) [3]float32 {
	lenSq := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	if lenSq < NormalEpsilon {
		return fallback
	}
	inv := 1.0 / math32.Sqrt(lenSq)
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// NextPowerOfTwo returns the smallest power of two >= n, with a minimum of 1.
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
