package text

import (
	"encoding/binary"
	"math"
)

// GlyphVertexSize is the byte size of one glyph vertex consumed by the text
// pipeline, matching GlyphInput:
//
//	position: vec2<f32>  // offset 0, screen pixels, top-left origin
//	uv:       vec2<f32>  // offset 8
//	color:    vec4<f32>  // offset 16
const GlyphVertexSize = 32

// VerticesPerGlyph is the number of vertices emitted per glyph quad.
const VerticesPerGlyph = 6

// AppendText appends the six-vertex quads for a string to a glyph vertex
// stream. Position is the top-left corner of the first glyph in screen pixels.
// Newlines advance to the next line; all other control characters render as a
// space. The returned slice may reallocate, so callers keep the result.
//
// Parameters:
//   - dst: the vertex stream to append to, in GlyphVertexSize strides
//   - atlas: the glyph atlas supplying UV rectangles
//   - s: the text to lay out
//   - x, y: the top-left position of the text in screen pixels
//   - scale: glyph scale factor, 1 renders at the native 7x13 cell size
//   - color: RGBA text color
//
// Returns:
//   - []byte: dst with the text's vertices appended
func AppendText(dst []byte, atlas Atlas, s string, x, y, scale float32, color [4]float32) []byte {
	if scale <= 0 {
		scale = 1
	}

	advanceX := float32(GlyphWidth) * scale
	advanceY := float32(GlyphHeight) * scale

	penX, penY := x, y
	for _, r := range s {
		if r == '\n' {
			penX = x
			penY += advanceY
			continue
		}

		u0, v0, u1, v1 := atlas.GlyphUV(r)
		x0, y0 := penX, penY
		x1, y1 := penX+advanceX, penY+advanceY

		// Two CCW triangles covering the glyph cell.
		corners := [VerticesPerGlyph][4]float32{
			{x0, y0, u0, v0},
			{x0, y1, u0, v1},
			{x1, y1, u1, v1},
			{x0, y0, u0, v0},
			{x1, y1, u1, v1},
			{x1, y0, u1, v0},
		}
		for _, c := range corners {
			dst = appendGlyphVertex(dst, c[0], c[1], c[2], c[3], color)
		}

		penX += advanceX
	}

	return dst
}

func appendGlyphVertex(dst []byte, x, y, u, v float32, color [4]float32) []byte {
	var buf [GlyphVertexSize]byte
	putF32 := func(offset int, val float32) {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(val))
	}
	putF32(0, x)
	putF32(4, y)
	putF32(8, u)
	putF32(12, v)
	for i, c := range color {
		putF32(16+i*4, c)
	}
	return append(dst, buf[:]...)
}
