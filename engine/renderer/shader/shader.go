package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which pipeline stage a shader module serves.
type ShaderType int

const (
	// ShaderTypeCompute marks a module with a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex marks the vertex stage of a render pipeline.
	ShaderTypeVertex

	// ShaderTypeFragment marks the fragment stage paired with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface. Everything a pipeline
// needs from a WGSL module is parsed once at construction and kept here.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	workGroupSize              [3]uint32
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a loaded and parsed WGSL module. It exposes the reflected layout
// metadata (bind group layouts, vertex buffer layouts, entry point, workgroup
// size) and the pre-processor declarations the renderer uses to wire resource
// providers to bind groups.
type Shader interface {
	// Key returns the unique identifier used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source returns the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source after annotation expansion
	Source() string

	// BindGroupLayoutDescriptor returns the layout descriptor for one group index.
	//
	// Parameters:
	//   - bindingKey: the group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty one when the group does not exist
	BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected layout descriptor. These
	// are CPU-side descriptions; the renderer turns them into wgpu.BindGroupLayout
	// objects when pipelines are created.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable name bound at group/binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or empty when not declared
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName looks a binding index up by variable name within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, or -1 when not found
	//   - bool: whether the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames returns every declared variable name.
	//
	// Returns:
	//   - map[int]map[int]string: variable names keyed by group then binding index
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout returns the vertex buffer layout at the given slot index.
	//
	// Parameters:
	//   - key: the vertex buffer slot index
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layout, or nil when the slot is unused
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts returns every reflected vertex buffer layout.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by slot index
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// EntryPoint returns the entry point function name for this stage.
	//
	// Returns:
	//   - string: the entry point name, empty when the stage attribute is absent
	EntryPoint() string

	// WorkgroupSize returns the @workgroup_size dimensions of a compute shader.
	// Non-compute shaders report [0, 0, 0]; a compute shader without the
	// attribute reports [1, 1, 1].
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Module returns the shader module descriptor built at construction.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: descriptor holding the processed WGSL and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns which pipeline stage this shader serves.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute
	ShaderType() ShaderType

	// Declarations returns the annotations collected during pre-processing. The
	// renderer matches these against resource providers during draw setup.
	//
	// Returns:
	//   - []Annotation: binding group and provider annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader builds a Shader from embedded WGSL source. Pre-processing expands
// the annotations first, then the entry point, vertex buffer layouts, and bind
// group layouts are reflected from the expanded source. Panics on empty source
// or malformed annotations, since builtin shader assets are compiled in and
// these are programming errors.
//
// Parameters:
//   - key: a unique identifier used for caching and lookups
//   - shaderType: the pipeline stage this module serves
//   - source: the raw WGSL source, typically from a go:embed asset
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s must have a non-empty WGSL source", key))
	}
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		workGroupSize:              [3]uint32{0, 0, 0},
		pp:                         NewPreProcessor(),
	}
	s.parseSource(source)
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[bindingKey]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) SetVertexLayout(key int, layout []wgpu.VertexBufferLayout) {
	s.vertexLayouts[key] = layout
}

func (s *shader) SetVertexLayouts(layouts map[int][]wgpu.VertexBufferLayout) {
	s.vertexLayouts = layouts
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource runs the pre-processor, builds the module descriptor, and
// reflects stage-appropriate metadata: vertex layouts for vertex shaders,
// workgroup size for compute shaders, bind group layouts for every stage.
func (s *shader) parseSource(raw string) {
	var err error
	s.source, err = s.pp.Process(raw)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process shader %q: %v", s.key, err))
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	if s.shaderType == ShaderTypeCompute {
		s.workGroupSize = parseWorkgroupSize(s.source)
	}
	var visibility wgpu.ShaderStage
	switch s.shaderType {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		visibility = wgpu.ShaderStageCompute
	default:
		visibility = wgpu.ShaderStageNone
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
}
