package text

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF32(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestAtlasStagingIsSingleChannel(t *testing.T) {
	atlas := NewAtlas()
	staging := atlas.Staging()

	assert.Equal(t, wgpu.TextureFormatR8Unorm, staging.Format)
	assert.Equal(t, uint32(1), staging.BytesPerPixel())
	assert.Equal(t, int(staging.Width*staging.Height), len(staging.Pixels))
	assert.Equal(t, uint32(16*GlyphWidth), staging.Width)
}

func TestAtlasRasterizesVisibleGlyphs(t *testing.T) {
	atlas := NewAtlas().(*atlasImpl)

	// 'A' must produce coverage; a space must not.
	assert.True(t, cellHasCoverage(atlas, 'A'))
	assert.False(t, cellHasCoverage(atlas, ' '))
}

func cellHasCoverage(a *atlasImpl, r rune) bool {
	u0, v0, u1, v1 := a.GlyphUV(r)
	x0 := int(u0 * float32(a.width))
	x1 := int(u1 * float32(a.width))
	y0 := int(v0 * float32(a.height))
	y1 := int(v1 * float32(a.height))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if a.pixels[y*a.width+x] != 0 {
				return true
			}
		}
	}
	return false
}

func TestGlyphUVOutOfRangeFallsBackToSpace(t *testing.T) {
	atlas := NewAtlas()

	u0, v0, u1, v1 := atlas.GlyphUV('\t')
	su0, sv0, su1, sv1 := atlas.GlyphUV(' ')
	assert.Equal(t, [4]float32{su0, sv0, su1, sv1}, [4]float32{u0, v0, u1, v1})
}

func TestAppendTextEmitsSixVerticesPerGlyph(t *testing.T) {
	atlas := NewAtlas()

	out := AppendText(nil, atlas, "hi", 10, 20, 1, [4]float32{1, 1, 1, 1})
	require.Len(t, out, 2*VerticesPerGlyph*GlyphVertexSize)

	// First vertex of the first glyph sits at the requested position.
	assert.Equal(t, float32(10), readF32(out, 0))
	assert.Equal(t, float32(20), readF32(out, 4))

	// First vertex of the second glyph advances by one cell width.
	second := VerticesPerGlyph * GlyphVertexSize
	assert.Equal(t, float32(10+GlyphWidth), readF32(out, second))
	assert.Equal(t, float32(20), readF32(out, second+4))
}

func TestAppendTextNewlineResetsPen(t *testing.T) {
	atlas := NewAtlas()

	out := AppendText(nil, atlas, "a\nb", 5, 0, 2, [4]float32{1, 0, 0, 1})
	require.Len(t, out, 2*VerticesPerGlyph*GlyphVertexSize)

	// 'b' starts back at x=5, one scaled line down.
	second := VerticesPerGlyph * GlyphVertexSize
	assert.Equal(t, float32(5), readF32(out, second))
	assert.Equal(t, float32(2*GlyphHeight), readF32(out, second+4))

	// Color carried on every vertex.
	assert.Equal(t, float32(1), readF32(out, 16))
	assert.Equal(t, float32(0), readF32(out, 20))
}
