package text

import (
	"image"
	"image/draw"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dimforge/kiss3d/common"
)

const (
	// firstGlyph and lastGlyph bound the printable ASCII range baked into the atlas.
	firstGlyph = ' '
	lastGlyph  = '~'

	// atlasColumns is the glyph grid width. 95 printable glyphs fit in a 16x6 grid.
	atlasColumns = 16

	// GlyphWidth and GlyphHeight are the cell dimensions of one glyph in texels,
	// fixed by the basicfont.Face7x13 bitmap face.
	GlyphWidth  = 7
	GlyphHeight = 13
)

type atlasImpl struct {
	pixels []byte
	width  int
	height int
}

// Atlas is a single-channel glyph texture baked once at startup from the
// builtin 7x13 bitmap face. Glyphs cover printable ASCII; anything outside
// that range renders as a space.
type Atlas interface {
	// Staging returns the texture upload description for the atlas. The pixel
	// data is single-channel coverage, uploaded as R8Unorm.
	//
	// Returns:
	//   - common.TextureStagingData: the atlas pixels, dimensions, and format
	Staging() common.TextureStagingData

	// GlyphUV returns the normalized texture rectangle of a rune within the atlas.
	//
	// Parameters:
	//   - r: the rune to look up
	//
	// Returns:
	//   - u0, v0: the top-left corner of the glyph cell in UV space
	//   - u1, v1: the bottom-right corner of the glyph cell in UV space
	GlyphUV(r rune) (u0, v0, u1, v1 float32)
}

var _ Atlas = &atlasImpl{}

// NewAtlas rasterizes the printable ASCII range of basicfont.Face7x13 into a
// single-channel grid texture.
//
// Returns:
//   - Atlas: the baked glyph atlas
func NewAtlas() Atlas {
	glyphCount := int(lastGlyph-firstGlyph) + 1
	rows := (glyphCount + atlasColumns - 1) / atlasColumns

	width := atlasColumns * GlyphWidth
	height := rows * GlyphHeight

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	for i := 0; i < glyphCount; i++ {
		col := i % atlasColumns
		row := i / atlasColumns

		// The face draws relative to the baseline, Ascent texels below the cell top.
		d := font.Drawer{
			Dst:  img,
			Src:  image.White,
			Face: face,
			Dot: fixed.P(
				col*GlyphWidth,
				row*GlyphHeight+face.Metrics().Ascent.Ceil(),
			),
		}
		d.DrawString(string(rune(firstGlyph + i)))
	}

	return &atlasImpl{
		pixels: img.Pix,
		width:  width,
		height: height,
	}
}

func (a *atlasImpl) Staging() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: a.pixels,
		Width:  uint32(a.width),
		Height: uint32(a.height),
		Format: wgpu.TextureFormatR8Unorm,
	}
}

func (a *atlasImpl) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = firstGlyph
	}
	i := int(r - firstGlyph)
	col := i % atlasColumns
	row := i / atlasColumns

	u0 = float32(col*GlyphWidth) / float32(a.width)
	v0 = float32(row*GlyphHeight) / float32(a.height)
	u1 = float32((col+1)*GlyphWidth) / float32(a.width)
	v1 = float32((row+1)*GlyphHeight) / float32(a.height)
	return u0, v0, u1, v1
}
