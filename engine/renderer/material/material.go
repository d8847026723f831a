package material

import (
	"github.com/dimforge/kiss3d/common"
	"github.com/dimforge/kiss3d/engine/renderer/bind_group_provider"
)

// ShadingMode selects the fragment shading model used for a surface.
type ShadingMode uint8

const (
	// ShadingBlinnPhong is the classic specular model with a fixed
	// shininess exponent.
	ShadingBlinnPhong ShadingMode = iota
	// ShadingPBR is the Cook-Torrance metallic-roughness model.
	ShadingPBR
	// ShadingNormals colors each fragment by its world-space normal,
	// for debugging.
	ShadingNormals
	// ShadingFlat writes the base color with no lighting.
	ShadingFlat
)

// material is the implementation of the Material interface.
type material struct {
	name                     string
	mode                     ShadingMode
	baseColor                [4]float32
	metallic                 float32
	roughness                float32
	emissive                 [4]float32
	albedoTexture            *common.ImportedTexture
	normalTexture            *common.ImportedTexture
	metallicRoughnessTexture *common.ImportedTexture
	occlusionTexture         *common.ImportedTexture
	emissiveTexture          *common.ImportedTexture
	pipelineKey              string
	bindGroupProvider        bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material, encapsulating surface
// properties, texture references, and GPU resource bindings needed for draw calls.
//
// Surface properties (name, shading mode, base color, factors, textures) are set
// at construction and are read-only through this interface. GPU resource
// references (pipeline key, bind group provider) are mutable so they can be
// configured after construction, once the device exists.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Mode retrieves the shading model used by this material.
	//
	// Returns:
	//   - ShadingMode: the shading mode
	Mode() ShadingMode

	// BaseColor retrieves the albedo RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	// Only meaningful for ShadingPBR.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	// Only meaningful for ShadingPBR.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Emissive retrieves the emissive RGBA color added after lighting.
	//
	// Returns:
	//   - [4]float32: the emissive color
	Emissive() [4]float32

	// AlbedoTexture retrieves the albedo texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the albedo texture, or nil
	AlbedoTexture() *common.ImportedTexture

	// NormalTexture retrieves the normal map texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the normal texture, or nil
	NormalTexture() *common.ImportedTexture

	// MetallicRoughnessTexture retrieves the metallic-roughness texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the metallic-roughness texture, or nil
	MetallicRoughnessTexture() *common.ImportedTexture

	// OcclusionTexture retrieves the ambient occlusion texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the occlusion texture, or nil
	OcclusionTexture() *common.ImportedTexture

	// EmissiveTexture retrieves the emissive texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the emissive texture, or nil
	EmissiveTexture() *common.ImportedTexture

	// Uniforms fills the surface fields of an ObjectUniforms block. The
	// caller fills the transform fields before upload.
	//
	// Parameters:
	//   - out: the uniform block to fill
	Uniforms(out *ObjectUniforms)

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// The defaults produce a white Blinn-Phong surface.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Mode() ShadingMode {
	return m.mode
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Emissive() [4]float32 {
	return m.emissive
}

func (m *material) AlbedoTexture() *common.ImportedTexture {
	return m.albedoTexture
}

func (m *material) NormalTexture() *common.ImportedTexture {
	return m.normalTexture
}

func (m *material) MetallicRoughnessTexture() *common.ImportedTexture {
	return m.metallicRoughnessTexture
}

func (m *material) OcclusionTexture() *common.ImportedTexture {
	return m.occlusionTexture
}

func (m *material) EmissiveTexture() *common.ImportedTexture {
	return m.emissiveTexture
}

func (m *material) Uniforms(out *ObjectUniforms) {
	out.Color = m.baseColor
	out.Metallic = m.metallic
	out.Roughness = m.roughness
	out.Emissive = m.emissive
	out.HasNormalMap = presenceFlag(m.normalTexture)
	out.HasMetallicRoughnessMap = presenceFlag(m.metallicRoughnessTexture)
	out.HasOcclusionMap = presenceFlag(m.occlusionTexture)
	out.HasEmissiveMap = presenceFlag(m.emissiveTexture)
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}

func presenceFlag(tex *common.ImportedTexture) float32 {
	if tex != nil {
		return 1
	}
	return 0
}
