package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo pairs a wgpu vertex format with its byte size so attribute
// offsets can be accumulated while walking a vertex input struct.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// sampledTextureInfo describes how a sampled texture type maps onto a bind
// group layout entry.
type sampledTextureInfo struct {
	viewDimension wgpu.TextureViewDimension
	multisampled  bool
}

// wgslTypeLayout is the byte size and alignment of a WGSL host-shareable type.
// Buffer bindings use the resolved size as MinBindingSize.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one field of a WGSL struct. location is -1 when the field has
// no @location attribute.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a struct block lifted out of WGSL source.
type parsedStruct struct {
	name   string
	fields []parsedField
}
