// gpu_types.go defines the GPU-facing uniform block shared by the
// post-processing effects. The struct layout must match the canonical WGSL
// definition in assets/effect_uniforms.wgsl byte for byte; every effect
// uploads the same 48-byte block and its shader reads the fields it needs.
package post

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// EffectUniformsSize is the marshaled size of EffectUniforms in bytes.
const EffectUniformsSize = 48

// EffectUniformsSource is the canonical WGSL source of the EffectUniforms struct,
// embedded so the effect shaders and the Go marshaling cannot drift apart.
//
//go:embed assets/effect_uniforms.wgsl
var EffectUniformsSource string

// EffectUniforms is the uniform block bound at group 0, binding 2 of every
// post-processing pipeline.
type EffectUniforms struct {
	// NX is the horizontal sampling step, 2 / width. Offset 0.
	NX float32

	// NY is the vertical sampling step, 2 / height. Offset 4.
	NY float32

	// ZNear is the camera near plane used for depth linearization. Offset 8.
	ZNear float32

	// ZFar is the camera far plane used for depth linearization. Offset 12.
	ZFar float32

	// Threshold is the edge detection cutoff. Offset 16.
	Threshold float32

	// TimeOffset is the accumulated animation phase in radians. Offset 20.
	TimeOffset float32

	// Kappa holds the radial distortion polynomial coefficients. Offset 32.
	Kappa [4]float32
}

// Marshal serializes the uniforms into a 48-byte little-endian buffer matching
// the WGSL struct layout, including the 8 bytes of padding before Kappa.
//
// Returns:
//   - []byte: the marshaled uniform block, always EffectUniformsSize bytes
func (u *EffectUniforms) Marshal() []byte {
	buf := make([]byte, EffectUniformsSize)
	putF32 := func(offset int, v float32) {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
	}

	putF32(0, u.NX)
	putF32(4, u.NY)
	putF32(8, u.ZNear)
	putF32(12, u.ZFar)
	putF32(16, u.Threshold)
	putF32(20, u.TimeOffset)
	for i, k := range u.Kappa {
		putF32(32+i*4, k)
	}
	return buf
}
