// annotations.go defines the annotation types, argument constants, and parser for
// the WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @kiss: that drive automatic struct injection, bind group declaration, and
// resource provider registration. The parsed results are stored as Annotation values
// and consumed by the PreProcessor and the renderer to wire GPU resources without
// manual low-level plumbing.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@kiss:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation does not produce
	// a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@kiss:include <struct_type>
	//
	// Example: //@kiss:include frame
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type, enabling the
	// renderer to semantically match bindings to resource providers without string lookups.
	//
	// Syntax: //@kiss:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@kiss:group 0 0 storage_uniform frame frame
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings that
	// contain raw WGSL types (textures, samplers, flat arrays of primitives) which have no
	// corresponding registered struct in the pre-processor's struct registry.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	//
	// Syntax:
	//   //@kiss:provider <group> <binding> <provider_identity>
	//   //@kiss:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@kiss:provider 2 0 material albedo_texture
	//   //@kiss:provider 3 0 pbr_textures normal_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @kiss: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices. Annotations of type AnnotationTypeBindingGroup and
// AnnotationTypeProvider are appended to the PreProcessor's declarations list for
// consumption by the renderer during resource wiring.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "frame")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "material"), [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into three categories: struct type keys (used with include and group),
// address space identifiers (used with group), and provider identity keys (used with provider).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @kiss:include
// annotations (to inject the struct source) and in @kiss:group annotations (as the
// type field, optionally wrapped in array<>). Each maps to a Go GPU type with an
// embedded .wgsl asset file.

const (
	// AnnotationArgFrame identifies the FrameUniforms struct holding the camera
	// matrices and the aggregated light slots for the lit pipelines.
	// Source: engine/light/assets/frame_uniforms.wgsl
	AnnotationArgFrame AnnotationArg = "frame"

	// AnnotationArgLight identifies the Light struct for per-light GPU data.
	// Source: engine/light/assets/light.wgsl
	AnnotationArgLight AnnotationArg = "light"

	// AnnotationArgObject identifies the ObjectUniforms struct for per-object surface data.
	// Source: engine/renderer/material/assets/object_uniforms.wgsl
	AnnotationArgObject AnnotationArg = "object"

	// AnnotationArgView identifies the ViewUniforms struct used by the screen-space
	// line, point, and text pipelines.
	// Source: engine/camera/assets/view_uniforms.wgsl
	AnnotationArgView AnnotationArg = "view"

	// annotationArgVertex identifies the VertexInput struct for mesh vertices.
	// Source: engine/model/assets/vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgEdge identifies the Edge struct stored in the wireframe edge buffer.
	// Source: engine/model/assets/edge.wgsl
	AnnotationArgEdge AnnotationArg = "edge"

	// AnnotationArgWireframeModel identifies the WireframeModelUniforms struct.
	// Source: engine/renderer/material/assets/wireframe_model_uniforms.wgsl
	AnnotationArgWireframeModel AnnotationArg = "wireframe_model"

	// AnnotationArgPointsModel identifies the PointsModelUniforms struct.
	// Source: engine/renderer/material/assets/points_model_uniforms.wgsl
	AnnotationArgPointsModel AnnotationArg = "points_model"

	// AnnotationArgEffect identifies the EffectUniforms struct shared by the
	// post-processing pipelines.
	// Source: engine/renderer/post/assets/effect_uniforms.wgsl
	AnnotationArgEffect AnnotationArg = "effect"

	// annotationArgExpand identifies the shared screen-space quad expansion helper
	// functions used by the line, wireframe, and point pipelines. Include-only; it
	// declares functions rather than a struct and cannot appear in group annotations.
	// Source: engine/renderer/shader/assets/screen_expand.wgsl
	annotationArgExpand AnnotationArg = "expand"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @kiss:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which renderer-level resource provider owns a bind group. Used in
// @kiss:provider annotations and matched by the renderer's draw setup logic to wire
// the correct BindGroupProvider for each group.

const (
	// AnnotationArgFrameProvider identifies the per-frame provider (frame uniform buffer).
	AnnotationArgFrameProvider AnnotationArg = "frame_data"

	// AnnotationArgObjectProvider identifies the per-object provider (dynamic-offset uniform buffer).
	AnnotationArgObjectProvider AnnotationArg = "object_data"

	// AnnotationArgMaterial identifies the material provider (albedo texture and sampler).
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgPBRTextures identifies the extended texture provider
	// (normal, metallic-roughness, occlusion, and emissive maps with samplers).
	AnnotationArgPBRTextures AnnotationArg = "pbr_textures"

	// AnnotationArgViewProvider identifies the view provider for screen-space pipelines.
	AnnotationArgViewProvider AnnotationArg = "view_data"

	// AnnotationArgTextAtlas identifies the glyph atlas provider for the text pipeline.
	AnnotationArgTextAtlas AnnotationArg = "text_atlas"

	// AnnotationArgEffectInput identifies the scene color input of a post-processing pass.
	AnnotationArgEffectInput AnnotationArg = "effect_input"
)

// ── Texture binding role arguments ─────────────────────────────────────────────
// These qualify individual bindings within a texture provider group. They appear
// as the optional fourth argument of an @kiss:provider annotation, telling the
// renderer which texture or sampler role each binding fulfils without relying on
// variable-name string matching.

const (
	// AnnotationArgAlbedoTexture identifies the albedo / base-color texture binding.
	AnnotationArgAlbedoTexture AnnotationArg = "albedo_texture"

	// AnnotationArgAlbedoSampler identifies the sampler paired with the albedo texture.
	AnnotationArgAlbedoSampler AnnotationArg = "albedo_sampler"

	// AnnotationArgNormalTexture identifies a tangent-space normal map texture binding.
	AnnotationArgNormalTexture AnnotationArg = "normal_texture"

	// AnnotationArgNormalSampler identifies the sampler paired with the normal map.
	AnnotationArgNormalSampler AnnotationArg = "normal_sampler"

	// AnnotationArgMetallicRoughnessTexture identifies a combined metallic-roughness texture binding.
	AnnotationArgMetallicRoughnessTexture AnnotationArg = "metallic_roughness_texture"

	// AnnotationArgMetallicRoughnessSampler identifies the sampler paired with the metallic-roughness texture.
	AnnotationArgMetallicRoughnessSampler AnnotationArg = "metallic_roughness_sampler"

	// AnnotationArgOcclusionTexture identifies an ambient occlusion texture binding.
	AnnotationArgOcclusionTexture AnnotationArg = "occlusion_texture"

	// AnnotationArgOcclusionSampler identifies the sampler paired with the occlusion map.
	AnnotationArgOcclusionSampler AnnotationArg = "occlusion_sampler"

	// AnnotationArgEmissiveTexture identifies an emissive texture binding.
	AnnotationArgEmissiveTexture AnnotationArg = "emissive_texture"

	// AnnotationArgEmissiveSampler identifies the sampler paired with the emissive map.
	AnnotationArgEmissiveSampler AnnotationArg = "emissive_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @kiss:include and @kiss:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgFrame,
	AnnotationArgLight,
	AnnotationArgObject,
	AnnotationArgView,
	annotationArgVertex,
	AnnotationArgEdge,
	AnnotationArgWireframeModel,
	AnnotationArgPointsModel,
	AnnotationArgEffect,
}

// validIncludeOnlyArgs lists AnnotationArg values accepted in @kiss:include
// annotations but not in @kiss:group annotations. These inject helper function
// source rather than a struct definition, so they have no WGSL type name.
var validIncludeOnlyArgs = []AnnotationArg{
	annotationArgExpand,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @kiss:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @kiss:provider annotations. Each maps to a
// renderer-level resource provider used during draw setup wiring.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgFrameProvider,
	AnnotationArgObjectProvider,
	AnnotationArgMaterial,
	AnnotationArgPBRTextures,
	AnnotationArgViewProvider,
	AnnotationArgTextAtlas,
	AnnotationArgEffectInput,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @kiss:provider annotations. These identify the semantic purpose
// of individual bindings within a texture provider group.
var validBindingRoles = []AnnotationArg{
	AnnotationArgAlbedoTexture,
	AnnotationArgAlbedoSampler,
	AnnotationArgNormalTexture,
	AnnotationArgNormalSampler,
	AnnotationArgMetallicRoughnessTexture,
	AnnotationArgMetallicRoughnessSampler,
	AnnotationArgOcclusionTexture,
	AnnotationArgOcclusionSampler,
	AnnotationArgEmissiveTexture,
	AnnotationArgEmissiveSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @kiss: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @kiss annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @kiss include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) && !slices.Contains(validIncludeOnlyArgs, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @kiss include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @kiss group annotation requires exactly five arguments (group number, binding number, address space, var name, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @kiss group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @kiss group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @kiss group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @kiss group annotation", lineNum, inner)
			}
		} else {
			if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
				return nil, fmt.Errorf("line %d: unknown struct type %q in @kiss group annotation", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @kiss provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @kiss provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @kiss provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @kiss provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @kiss annotation type %q", lineNum, args[0])
	}
}
