package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxLights is the number of light slots in the per-frame uniform buffer.
// The scene collects lights in traversal order and the first MaxLights
// enabled lights win; the rest are dropped for the frame. This ordering is
// deterministic and part of the engine's documented behavior.
const MaxLights = 8

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 64 bytes.
type GPULight struct {
	Position          [3]float32 // offset  0: world-space position (point/spot) or unused (directional)
	LightType         uint32     // offset 12: 0 = point, 1 = directional, 2 = spot
	Direction         [3]float32 // offset 16: normalized world direction (directional/spot) or unused (point)
	Intensity         float32    // offset 28: scalar multiplier
	Color             [3]float32 // offset 32: RGB color
	InnerConeCos      float32    // offset 44: cos(inner half-angle) for spot
	OuterConeCos      float32    // offset 48: cos(outer half-angle) for spot
	AttenuationRadius float32    // offset 52: point/spot falloff radius
	_pad              [2]float32 // offset 56: padding to 64-byte alignment
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 64)
	g.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the GPULight into the first 64 bytes of buf.
//
// Parameters:
//   - buf: destination slice (must be at least 64 bytes)
func (g *GPULight) MarshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.InnerConeCos))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.OuterConeCos))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.AttenuationRadius))
	binary.LittleEndian.PutUint32(buf[56:60], 0) // padding
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
}

// FrameUniformsSize is the byte size of the per-frame uniform block:
// view mat4 (64) + proj mat4 (64) + lights (8 * 64) + num_lights u32 +
// ambient_intensity f32 + 2 pad f32.
const FrameUniformsSize = 64 + 64 + MaxLights*64 + 16

// GPUFrameUniformsSource is the canonical WGSL definition of the
// FrameUniforms struct bound at group 0. The field order and padding are a
// fixed binary contract with every surface pipeline.
//
//go:embed assets/frame_uniforms.wgsl
var GPUFrameUniformsSource string

// FrameUniforms is the CPU-side staging struct for the per-frame uniform
// block consumed at bind group 0 by all surface pipelines. Rebuilt once per
// rendered frame from the active camera and the collected light set.
type FrameUniforms struct {
	View             [16]float32
	Proj             [16]float32
	Lights           [MaxLights]GPULight
	NumLights        uint32
	AmbientIntensity float32
}

// Size returns the byte size of the marshaled uniform block.
//
// Returns:
//   - int: FrameUniformsSize (656)
func (f *FrameUniforms) Size() int {
	return FrameUniformsSize
}

// Marshal serializes the frame uniforms into a byte buffer suitable for GPU
// upload. Light slots beyond NumLights are zero-filled.
//
// Returns:
//   - []byte: FrameUniformsSize-byte buffer ready for GPU upload
func (f *FrameUniforms) Marshal() []byte {
	buf := make([]byte, FrameUniformsSize)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f.View[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(f.Proj[i]))
	}
	for i := 0; i < int(f.NumLights) && i < MaxLights; i++ {
		f.Lights[i].MarshalInto(buf[128+i*64:])
	}
	tail := 128 + MaxLights*64
	binary.LittleEndian.PutUint32(buf[tail:], f.NumLights)
	binary.LittleEndian.PutUint32(buf[tail+4:], math.Float32bits(f.AmbientIntensity))
	// 8 bytes of trailing padding
	return buf
}

// CollectedLight is a light resolved against its node's world transform
// during the collection pass of scene preparation.
type CollectedLight struct {
	// Light is the source light.
	Light Light
	// WorldPosition is the owning node's world translation.
	WorldPosition [3]float32
	// WorldDirection is the light's local direction rotated into world space.
	WorldDirection [3]float32
}

// GPU converts the collected light into its packed GPU representation.
//
// Returns:
//   - GPULight: the 64-byte uniform slot contents
func (c *CollectedLight) GPU() GPULight {
	return GPULight{
		Position:          c.WorldPosition,
		LightType:         uint32(c.Light.Type()),
		Direction:         c.WorldDirection,
		Intensity:         c.Light.Intensity(),
		Color:             c.Light.Color(),
		InnerConeCos:      c.Light.InnerConeCos(),
		OuterConeCos:      c.Light.OuterConeCos(),
		AttenuationRadius: c.Light.AttenuationRadius(),
	}
}
