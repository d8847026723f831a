package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// ViewUniformsSource is the canonical WGSL definition of the ViewUniforms
// struct used by the planar and overlay pipelines.
//
//go:embed assets/view_uniforms.wgsl
var ViewUniformsSource string

// ViewUniformsSize is the byte size of the view uniform block:
// view mat4 (64) + proj mat4 (64) + viewport vec4 (16).
const ViewUniformsSize = 144

// ViewUniforms is the GPU-aligned uniform block carrying the camera
// matrices and viewport extents for the screen-space pipelines.
// Matches the WGSL ViewUniforms struct layout exactly (see
// ViewUniformsSource). Size: 144 bytes.
type ViewUniforms struct {
	View     [16]float32 // offset   0: view matrix, column-major
	Proj     [16]float32 // offset  64: projection matrix, column-major
	Viewport [4]float32  // offset 128: width, height, 1/width, 1/height
}

// NewViewUniforms captures the camera matrices and viewport size.
//
// Parameters:
//   - cam: the camera to read matrices from
//   - width, height: viewport size in pixels
//
// Returns:
//   - ViewUniforms: the filled uniform block
func NewViewUniforms(cam Camera, width, height float32) ViewUniforms {
	u := ViewUniforms{
		View: cam.ViewMatrix(),
		Proj: cam.ProjectionMatrix(),
	}
	u.Viewport = [4]float32{width, height, 1 / width, 1 / height}
	return u
}

// Marshal serializes the ViewUniforms into a byte buffer suitable for GPU
// upload.
//
// Returns:
//   - []byte: 144-byte buffer ready for GPU upload
func (u *ViewUniforms) Marshal() []byte {
	buf := make([]byte, ViewUniformsSize)
	off := 0
	for _, f := range u.View {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	for _, f := range u.Proj {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	for _, f := range u.Viewport {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	return buf
}
