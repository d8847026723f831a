// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
	// Format is the texture format for the GPU texture. When left as the zero value
	// (TextureFormatUndefined), RGBA8UnormSrgb is used. Single-channel data such as a
	// glyph atlas uses TextureFormatR8Unorm with 1 byte per pixel.
	Format wgpu.TextureFormat
}

// BytesPerPixel returns the pixel stride implied by Format.
//
// Returns:
//   - uint32: bytes per pixel for the staged data
func (t *TextureStagingData) BytesPerPixel() uint32 {
	switch t.Format {
	case wgpu.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used in the BindGroupProvider to stage sampler data before creating the GPU sampler and bind group.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering, which can improve texture quality at oblique viewing angles.
	MaxAnisotropy uint16
}

// MeshData is the shape an asset loader must produce to feed geometry into
// the engine: parallel per-vertex streams plus a triangle index list. It is
// the boundary between external importers (OBJ and friends) and the mesh
// registry.
type MeshData struct {
	// Positions holds one [x, y, z] entry per vertex.
	Positions [][3]float32
	// Normals holds one [x, y, z] entry per vertex. May be empty, in which
	// case flat normals are derived from the triangle faces.
	Normals [][3]float32
	// UVs holds one [u, v] entry per vertex. May be empty.
	UVs [][2]float32
	// Indices holds triangle corner indices into the vertex streams.
	Indices []uint32
}

// Validate checks stream lengths and index bounds.
//
// Returns:
//   - error: nil when the mesh data is consistent
func (m *MeshData) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return fmt.Errorf("mesh has no vertices")
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("normal stream length %d does not match %d vertices", len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("uv stream length %d does not match %d vertices", len(m.UVs), n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}
	return nil
}

// ImportedTexture represents texture data supplied by an asset loader.
// Embedded textures carry raw image bytes in Data; external textures carry
// a file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures (PNG/JPEG).
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// SamplerData holds GPU sampler parameters for this texture. When
	// non-nil, these values override the default linear/repeat settings.
	SamplerData *SamplerStagingData
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil {
		return nil, 0, 0, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, 0, 0, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return nil, 0, 0, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	t.Width = width
	t.Height = height

	return rgba.Pix, uint32(width), uint32(height), nil
}
