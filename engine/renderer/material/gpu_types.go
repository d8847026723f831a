package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// ObjectUniformsSource is the canonical WGSL definition of the ObjectUniforms
// struct used by the lit mesh pipelines.
// Matches ObjectUniforms layout exactly (224 bytes, uniform aligned).
//
//go:embed assets/object_uniforms.wgsl
var ObjectUniformsSource string

// ObjectUniformsSize is the byte size of the per-object uniform block:
// transform mat4 (64) + ntransform mat3 padded to 3 vec4 (48) + scale mat3
// padded to 3 vec4 (48) + color vec4 (16) + metallic/roughness/pad (16) +
// emissive vec4 (16) + 4 texture presence flags (16).
const ObjectUniformsSize = 224

// ObjectUniforms is the GPU-aligned per-object uniform block for the lit
// mesh pipelines. Bound at group 1 with a dynamic offset, one slot per
// drawn object per frame.
// Matches the WGSL ObjectUniforms struct layout exactly (see
// ObjectUniformsSource). Size: 224 bytes.
type ObjectUniforms struct {
	Transform  [16]float32 // offset   0: model transform, column-major
	NTransform [12]float32 // offset  64: normal matrix, 3 vec4-padded columns
	Scale      [12]float32 // offset 112: non-uniform scale matrix, 3 vec4-padded columns
	Color      [4]float32  // offset 160: base color RGBA
	Metallic   float32     // offset 176: metallic factor
	Roughness  float32     // offset 180: roughness factor
	_pad0      [2]float32  // offset 184: padding to 16-byte alignment
	Emissive   [4]float32  // offset 192: emissive color RGBA

	// Texture presence flags, 0.0 or 1.0. WGSL uniforms cannot hold bools.
	HasNormalMap            float32 // offset 208
	HasMetallicRoughnessMap float32 // offset 212
	HasOcclusionMap         float32 // offset 216
	HasEmissiveMap          float32 // offset 220
}

// Size returns the size of the ObjectUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (224)
func (o *ObjectUniforms) Size() int {
	return int(unsafe.Sizeof(*o))
}

// Marshal serializes the ObjectUniforms struct into a byte buffer suitable
// for GPU upload.
//
// Returns:
//   - []byte: 224-byte buffer ready for GPU upload
func (o *ObjectUniforms) Marshal() []byte {
	buf := make([]byte, ObjectUniformsSize)
	o.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the ObjectUniforms into the first 224 bytes of buf.
//
// Parameters:
//   - buf: destination slice (must be at least 224 bytes)
func (o *ObjectUniforms) MarshalInto(buf []byte) {
	off := 0
	putF32 := func(f float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	for _, f := range o.Transform {
		putF32(f)
	}
	for _, f := range o.NTransform {
		putF32(f)
	}
	for _, f := range o.Scale {
		putF32(f)
	}
	for _, f := range o.Color {
		putF32(f)
	}
	putF32(o.Metallic)
	putF32(o.Roughness)
	putF32(0) // _pad0
	putF32(0) // _pad0
	for _, f := range o.Emissive {
		putF32(f)
	}
	putF32(o.HasNormalMap)
	putF32(o.HasMetallicRoughnessMap)
	putF32(o.HasOcclusionMap)
	putF32(o.HasEmissiveMap)
}

// WireframeModelUniformsSource is the canonical WGSL definition of the
// WireframeModelUniforms struct.
//
//go:embed assets/wireframe_model_uniforms.wgsl
var WireframeModelUniformsSource string

// PointsModelUniformsSource is the canonical WGSL definition of the
// PointsModelUniforms struct.
//
//go:embed assets/points_model_uniforms.wgsl
var PointsModelUniformsSource string

// OverlayModelUniformsSize is the byte size of the per-object uniform block
// shared by the wireframe and point overlay pipelines:
// transform mat4 (64) + scale vec3 (12) + element count u32 (4) +
// default color vec4 (16) + default scalar f32 (4) + perspective flag u32
// (4) + 2 pad f32 (8).
const OverlayModelUniformsSize = 112

// WireframeModelUniforms is the GPU-aligned per-object uniform block for
// the wireframe overlay pipeline. The default color and width apply to any
// instance carrying the use-object sentinels.
// Size: 112 bytes.
type WireframeModelUniforms struct {
	Transform      [16]float32 // offset   0: model transform, column-major
	Scale          [3]float32  // offset  64: non-uniform scale factors
	NumEdges       uint32      // offset  76: edge count for the expansion shader
	DefaultColor   [4]float32  // offset  80: color for instances without an override
	DefaultWidth   float32     // offset  96: line width in pixels
	UsePerspective uint32      // offset 100: 1 = width shrinks with distance
	_pad           [2]float32  // offset 104: padding to 16-byte alignment
}

// Size returns the size of the WireframeModelUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (w *WireframeModelUniforms) Size() int {
	return int(unsafe.Sizeof(*w))
}

// Marshal serializes the WireframeModelUniforms struct into a byte buffer
// suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload
func (w *WireframeModelUniforms) Marshal() []byte {
	return marshalOverlayModel(w.Transform, w.Scale, w.NumEdges, w.DefaultColor, w.DefaultWidth, w.UsePerspective)
}

// PointsModelUniforms is the GPU-aligned per-object uniform block for the
// point overlay pipeline. Identical shape to WireframeModelUniforms with
// the element count holding vertices and the scalar holding the point size.
// Size: 112 bytes.
type PointsModelUniforms struct {
	Transform      [16]float32 // offset   0: model transform, column-major
	Scale          [3]float32  // offset  64: non-uniform scale factors
	NumVertices    uint32      // offset  76: vertex count for the expansion shader
	DefaultColor   [4]float32  // offset  80: color for instances without an override
	DefaultSize    float32     // offset  96: point size in pixels
	UsePerspective uint32      // offset 100: 1 = size shrinks with distance
	_pad           [2]float32  // offset 104: padding to 16-byte alignment
}

// Size returns the size of the PointsModelUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (p *PointsModelUniforms) Size() int {
	return int(unsafe.Sizeof(*p))
}

// Marshal serializes the PointsModelUniforms struct into a byte buffer
// suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload
func (p *PointsModelUniforms) Marshal() []byte {
	return marshalOverlayModel(p.Transform, p.Scale, p.NumVertices, p.DefaultColor, p.DefaultSize, p.UsePerspective)
}

// marshalOverlayModel packs the shared wireframe/points uniform shape.
func marshalOverlayModel(transform [16]float32, scale [3]float32, count uint32, color [4]float32, scalar float32, perspective uint32) []byte {
	buf := make([]byte, OverlayModelUniformsSize)
	off := 0
	putF32 := func(f float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	for _, f := range transform {
		putF32(f)
	}
	for _, f := range scale {
		putF32(f)
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], count)
	off += 4
	for _, f := range color {
		putF32(f)
	}
	putF32(scalar)
	binary.LittleEndian.PutUint32(buf[off:off+4], perspective)
	off += 4
	putF32(0) // _pad
	putF32(0) // _pad
	return buf
}

// LineSegmentSize is the byte size of one polyline instance.
const LineSegmentSize = 64

// LineSegment is the per-instance vertex data of the polyline pipelines.
// Each instance is expanded to a screen-space quad by a six-vertex draw
// (draw(6, numSegments)).
// Size: 64 bytes.
type LineSegment struct {
	PointA      [3]float32 // offset  0: segment start in world space
	Width       float32    // offset 12: line width in pixels
	PointB      [3]float32 // offset 16: segment end in world space
	DepthBias   float32    // offset 28: clip-space depth offset toward the camera
	Color       [4]float32 // offset 32: RGBA color
	Perspective uint32     // offset 48: 1 = width shrinks with distance
	_pad        [3]uint32  // offset 52: padding to 64-byte alignment
}

// Size returns the size of the LineSegment struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (l *LineSegment) Size() int {
	return int(unsafe.Sizeof(*l))
}

// Marshal serializes the LineSegment struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (l *LineSegment) Marshal() []byte {
	buf := make([]byte, LineSegmentSize)
	l.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the LineSegment into the first 64 bytes of buf.
//
// Parameters:
//   - buf: destination slice (must be at least 64 bytes)
func (l *LineSegment) MarshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(l.PointA[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(l.PointA[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(l.PointA[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(l.Width))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(l.PointB[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(l.PointB[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(l.PointB[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(l.DepthBias))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(l.Color[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(l.Color[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(l.Color[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(l.Color[3]))
	binary.LittleEndian.PutUint32(buf[48:52], l.Perspective)
	binary.LittleEndian.PutUint32(buf[52:56], 0) // padding
	binary.LittleEndian.PutUint32(buf[56:60], 0) // padding
	binary.LittleEndian.PutUint32(buf[60:64], 0) // padding
}
