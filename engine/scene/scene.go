package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/dimforge/kiss3d/common"
	"github.com/dimforge/kiss3d/engine/camera"
	"github.com/dimforge/kiss3d/engine/light"
	"github.com/dimforge/kiss3d/engine/model"
	"github.com/dimforge/kiss3d/engine/renderer"
	"github.com/dimforge/kiss3d/engine/renderer/bind_group_provider"
	"github.com/dimforge/kiss3d/engine/renderer/material"
	"github.com/dimforge/kiss3d/engine/renderer/shader"
)

// Scene owns a hierarchy of nodes arranged as a handle-addressed arena. Nodes
// carry a local translation, rotation, scale, and optional deformation;
// translation and rotation propagate to children through a rigid world
// matrix, scale inherits componentwise without scaling child offsets, and
// deformation stays node-local. A node optionally carries a renderable object
// (a shared mesh plus material and instance set) or a light source.
//
// Each frame the owner calls Prepare to propagate transforms, collect lights,
// and stage GPU uploads, then Render inside a renderer frame to issue the
// draw calls. Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Root returns the handle of the root node. The root is always present,
	// always visible as far as its own flag goes, and cannot be removed.
	Root() NodeHandle

	// AddGroup attaches an empty transform node under parent. Group nodes
	// render nothing themselves but position and orient their subtree.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//
	// Returns:
	//   - NodeHandle: the new node, or InvalidHandle if parent is not live
	AddGroup(parent NodeHandle) NodeHandle

	// AddMesh attaches a node rendering the given mesh data under parent.
	// Mesh data registered under the same name is uploaded once and shared by
	// every node referencing it. The node starts with a single identity
	// instance, a white Blinn-Phong material, surface rendering on, and both
	// overlays off.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - name: the registry name identifying the mesh
	//   - data: the mesh geometry; ignored when name is already registered
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead or GPU setup fails
	AddMesh(parent NodeHandle, name string, data *common.MeshData) (NodeHandle, error)

	// AddCube attaches a cuboid mesh node with the given extents.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - wx, wy, wz: the cuboid extents along each axis
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead or GPU setup fails
	AddCube(parent NodeHandle, wx, wy, wz float32) (NodeHandle, error)

	// AddSphere attaches a UV sphere mesh node with the given diameter.
	AddSphere(parent NodeHandle, diameter float32) (NodeHandle, error)

	// AddCone attaches a cone mesh node. The apex points along +Y.
	AddCone(parent NodeHandle, diameter, height float32) (NodeHandle, error)

	// AddCylinder attaches a capped cylinder mesh node aligned with the Y axis.
	AddCylinder(parent NodeHandle, diameter, height float32) (NodeHandle, error)

	// AddCapsule attaches a capsule mesh node aligned with the Y axis. The
	// height measures the cylindrical section, caps excluded.
	AddCapsule(parent NodeHandle, diameter, height float32) (NodeHandle, error)

	// AddQuad attaches a subdivided planar quad mesh node in the XY plane.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - width, height: the quad extents
	//   - usubdivs, vsubdivs: subdivision counts along each axis
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead or GPU setup fails
	AddQuad(parent NodeHandle, width, height float32, usubdivs, vsubdivs uint32) (NodeHandle, error)

	// AddRectangle attaches a planar rectangle node centered at the origin of
	// the z = 0 plane. Planar nodes render through the unlit 2D surface pass
	// above the 3D content and are typically paired with a planar camera.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - wx, wy: the rectangle extents
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead or GPU setup fails
	AddRectangle(parent NodeHandle, wx, wy float32) (NodeHandle, error)

	// AddCircle attaches a planar disc node centered at the origin.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - radius: the disc radius
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead or GPU setup fails
	AddCircle(parent NodeHandle, radius float32) (NodeHandle, error)

	// AddPlanarCapsule attaches a planar capsule node: a stadium shape with
	// semicircular caps above and below a rectangular middle section.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - radius: the caps radius
	//   - height: the rectangular section height
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead or GPU setup fails
	AddPlanarCapsule(parent NodeHandle, radius, height float32) (NodeHandle, error)

	// AddConvexPolygon attaches a filled convex polygon node. Points must
	// describe a convex outline in counter-clockwise order.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - points: the polygon boundary on the z = 0 plane
	//
	// Returns:
	//   - NodeHandle: the new node
	//   - error: error if the parent is dead, the polygon has fewer than
	//     three points, or GPU setup fails
	AddConvexPolygon(parent NodeHandle, points [][2]float32) (NodeHandle, error)

	// AddLight attaches a light source node under parent. The light shades
	// from the node's world position, and its direction is rotated by the
	// node's world orientation. At most light.MaxLights lights reach the GPU
	// each frame; the first lights in traversal order win.
	//
	// Parameters:
	//   - parent: the handle of the parent node
	//   - l: the light to attach
	//
	// Returns:
	//   - NodeHandle: the new node, or InvalidHandle if parent is not live
	AddLight(parent NodeHandle, l light.Light) NodeHandle

	// Remove detaches the node and frees its whole subtree, releasing the GPU
	// resources of every removed object. Mesh buffers are released once the
	// last node referencing a mesh is gone. The root cannot be removed.
	//
	// Parameters:
	//   - h: the handle of the node to remove
	//
	// Returns:
	//   - bool: true if h named a live non-root node
	Remove(h NodeHandle) bool

	// Contains reports whether h names a live node.
	Contains(h NodeHandle) bool

	// Count returns the number of live nodes, root included.
	Count() int

	// SetTranslation sets the node's local translation. No-op on dead handles.
	SetTranslation(h NodeHandle, t [3]float32)

	// Translation returns the node's local translation.
	Translation(h NodeHandle) [3]float32

	// SetRotation sets the node's local rotation as euler angles in radians.
	SetRotation(h NodeHandle, r [3]float32)

	// Rotation returns the node's local rotation in radians.
	Rotation(h NodeHandle) [3]float32

	// SetScale sets the node's local scale. Scale inherits componentwise:
	// children render with parent scale * local scale, while their
	// translation offsets stay unscaled.
	SetScale(h NodeHandle, s [3]float32)

	// Scale returns the node's local scale.
	Scale(h NodeHandle) [3]float32

	// SetPlanarTranslation sets a planar node's local translation on the
	// z = 0 plane. No-op on dead handles.
	SetPlanarTranslation(h NodeHandle, t [2]float32)

	// PlanarTranslation returns the node's local translation on the z = 0 plane.
	PlanarTranslation(h NodeHandle) [2]float32

	// SetPlanarRotation sets a planar node's local rotation about the z axis
	// in radians.
	SetPlanarRotation(h NodeHandle, angle float32)

	// PlanarRotation returns the node's local rotation about the z axis.
	PlanarRotation(h NodeHandle) float32

	// SetPlanarScale sets a planar node's local scale. Like 3D scale it
	// inherits componentwise without scaling child offsets.
	SetPlanarScale(h NodeHandle, s [2]float32)

	// PlanarScale returns the node's local planar scale.
	PlanarScale(h NodeHandle) [2]float32

	// SetDeformation sets an optional 3x3 column-major deformation applied to
	// the node's geometry after its per-instance deformations. Pass nil to
	// clear. Like scale it does not propagate to children.
	//
	// Parameters:
	//   - h: the node handle
	//   - d: the 3x3 column-major matrix, or nil for identity
	SetDeformation(h NodeHandle, d []float32)

	// SetVisible toggles the node. An invisible node hides its whole subtree
	// from rendering and light collection.
	SetVisible(h NodeHandle, visible bool)

	// Visible returns the node's own visibility flag.
	Visible(h NodeHandle) bool

	// WorldTransform returns the node's world matrix (translation and
	// rotation, scale excluded) as of the last Prepare call.
	WorldTransform(h NodeHandle) [16]float32

	// SetColor sets a per-node color multiplied into the material base color.
	// No-op unless the node carries an object.
	SetColor(h NodeHandle, color [4]float32)

	// SetMaterial replaces the node object's material and initializes its GPU
	// resources, decoding any textures it carries.
	//
	// Parameters:
	//   - h: the node handle
	//   - mat: the new material (must not be nil)
	//
	// Returns:
	//   - error: error if the node has no object or GPU setup fails
	SetMaterial(h NodeHandle, mat material.Material) error

	// SetInstances replaces the node object's instance set. An empty slice
	// hides the object. Instances are packed and uploaded on the next Prepare.
	//
	// Parameters:
	//   - h: the node handle
	//   - instances: the new instance records
	SetInstances(h NodeHandle, instances []model.InstanceData)

	// Instances returns the node object's current instance records.
	Instances(h NodeHandle) []model.InstanceData

	// SetSurfaceRendering toggles the node object's filled surface pass.
	SetSurfaceRendering(h NodeHandle, enabled bool)

	// SetLinesWidth sets the wireframe overlay width in pixels. Zero disables
	// the overlay; this is the default.
	SetLinesWidth(h NodeHandle, width float32)

	// SetLinesColor sets the wireframe color used by instances that do not
	// override it.
	SetLinesColor(h NodeHandle, color common.Color)

	// SetPointsSize sets the vertex point overlay size in pixels. Zero
	// disables the overlay; this is the default.
	SetPointsSize(h NodeHandle, size float32)

	// SetPointsColor sets the point color used by instances that do not
	// override it.
	SetPointsColor(h NodeHandle, color common.Color)

	// SetLinesPerspective makes the wireframe width shrink with distance
	// instead of staying constant in screen space.
	SetLinesPerspective(h NodeHandle, enabled bool)

	// SetPointsPerspective makes the point size shrink with distance instead
	// of staying constant in screen space.
	SetPointsPerspective(h NodeHandle, enabled bool)

	// AmbientIntensity returns the scene's ambient light intensity.
	AmbientIntensity() float32

	// SetAmbientIntensity sets the scene's ambient light intensity.
	SetAmbientIntensity(ambient float32)

	// CullingDisabled returns whether per-object frustum culling is disabled.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables per-object frustum culling.
	// Culling only ever skips single-instance objects, since instanced
	// objects place copies at arbitrary offsets from the node.
	SetCullingDisabled(disabled bool)

	// Prepare advances the camera, propagates node transforms, collects
	// lights, packs every object's instance streams and uniform blocks, and
	// stages the resulting GPU uploads. Must be called once per frame before
	// Render, outside the renderer's frame block.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: joined per-object upload errors, nil when everything staged
	Prepare(deltaTime float32) error

	// Render issues the surface and overlay draw calls for every visible
	// object. Must be called within a BeginFrame/EndFrame block on the
	// renderer. A failing object is skipped, not the frame.
	//
	// Returns:
	//   - error: joined per-object draw errors, nil when everything drew
	Render() error

	// Release frees every GPU resource owned by the scene. The scene must not
	// be used afterwards.
	Release()
}

// meshResources holds the GPU buffers shared by every node rendering the same
// registered mesh: the vertex/index buffers for the surface pass, the edge
// storage buffer for the wireframe pass, and the vertex storage bind group
// for the points pass.
type meshResources struct {
	bgp      bind_group_provider.BindGroupProvider
	edgesBGP bind_group_provider.BindGroupProvider // nil for edge-free meshes
	vertsBGP bind_group_provider.BindGroupProvider

	edgeCount   int
	vertexCount int
}

// prepEntry is the per-object staging record of a single Prepare pass. The
// parallel phase fills the marshaled uniform blocks; the serial phase turns
// them into coalesced buffer writes.
type prepEntry struct {
	n   *node
	obj *object

	objData    []byte
	wireData   []byte
	pointsData []byte
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer

	g        *graph
	registry *model.Registry
	meshRes  map[string]*meshResources

	lights *light.LightCollection
	frame  light.FrameUniforms

	frameBGP bind_group_provider.BindGroupProvider // mesh passes, group 0
	viewBGP  bind_group_provider.BindGroupProvider // overlay passes, group 0

	cullingDisabled bool
	planarSeq       int // registry name sequence for caller-supplied 2D geometry

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	prepScratch    []prepEntry
	writePool      []bind_group_provider.BufferWrite
	drawGroupsPool []bind_group_provider.BindGroupProvider

	// prepPool manages a bounded set of reusable goroutines for the parallel
	// packing phase of Prepare. Workers persist across frames, avoiding
	// per-frame goroutine spawn/teardown overhead.
	prepPool    worker.DynamicWorkerPool
	prepWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer, registers
// the builtin render pipelines, and initializes the shared frame and view
// uniform bind groups. Both the camera and the renderer are required and
// NewScene panics if either is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		active:         false,
		cam:            cam,
		r:              r,
		g:              newGraph(),
		registry:       model.NewRegistry(),
		meshRes:        make(map[string]*meshResources),
		lights:         light.NewCollection(),
		prepWorkers:    max(runtime.NumCPU()-1, 1),
		drawGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 4),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the prep pool after options so WithPrepWorkers can override
	// the default. Queue size of 256 accommodates typical object counts with
	// headroom.
	s.prepPool = worker.NewDynamicWorkerPool(s.prepWorkers, 256, 1*time.Second)

	if err := r.RegisterPipelines(renderer.BuiltinPipelines()...); err != nil {
		panic(fmt.Sprintf("scene: failed to register builtin pipelines: %v", err))
	}

	// The frame uniform layout is shared by all mesh pipelines; the view
	// uniform layout by all overlay pipelines. Either representative shader
	// provides the descriptor.
	meshVS := r.Pipeline(renderer.PipelineKeyMeshBlinnPhong).Shader(shader.ShaderTypeVertex)
	s.frameBGP = bind_group_provider.NewBindGroupProvider(name + "_frame")
	if err := r.InitBindGroup(s.frameBGP, meshVS.BindGroupLayoutDescriptor(0), nil, map[int]uint64{0: light.FrameUniformsSize}); err != nil {
		panic(fmt.Sprintf("scene: failed to init frame bind group: %v", err))
	}

	overlayVS := r.Pipeline(renderer.PipelineKeyWireframe).Shader(shader.ShaderTypeVertex)
	s.viewBGP = bind_group_provider.NewBindGroupProvider(name + "_view")
	if err := r.InitBindGroup(s.viewBGP, overlayVS.BindGroupLayoutDescriptor(0), nil, map[int]uint64{0: camera.ViewUniformsSize}); err != nil {
		panic(fmt.Sprintf("scene: failed to init view bind group: %v", err))
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Root() NodeHandle {
	return s.g.root()
}

func (s *scene) AddGroup(parent NodeHandle) NodeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.alloc(parent)
}

func (s *scene) AddMesh(parent NodeHandle, name string, data *common.MeshData) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addObject(parent, name, data)
}

func (s *scene) AddCube(parent NodeHandle, wx, wy, wz float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("cube_%g_%g_%g", wx, wy, wz)
	return s.addObject(parent, name, model.Cuboid(wx, wy, wz))
}

func (s *scene) AddSphere(parent NodeHandle, diameter float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("sphere_%g", diameter)
	return s.addObject(parent, name, model.Sphere(diameter, 32, 16))
}

func (s *scene) AddCone(parent NodeHandle, diameter, height float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("cone_%g_%g", diameter, height)
	return s.addObject(parent, name, model.Cone(diameter, height, 32))
}

func (s *scene) AddCylinder(parent NodeHandle, diameter, height float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("cylinder_%g_%g", diameter, height)
	return s.addObject(parent, name, model.Cylinder(diameter, height, 32))
}

func (s *scene) AddCapsule(parent NodeHandle, diameter, height float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("capsule_%g_%g", diameter, height)
	return s.addObject(parent, name, model.Capsule(diameter, height, 32, 16))
}

func (s *scene) AddQuad(parent NodeHandle, width, height float32, usubdivs, vsubdivs uint32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("quad_%g_%g_%d_%d", width, height, usubdivs, vsubdivs)
	return s.addObject(parent, name, model.Quad(width, height, usubdivs, vsubdivs))
}

func (s *scene) AddRectangle(parent NodeHandle, wx, wy float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("rectangle_%g_%g", wx, wy)
	return s.addPlanarObject(parent, name, model.Rectangle(wx, wy))
}

func (s *scene) AddCircle(parent NodeHandle, radius float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("circle_%g", radius)
	return s.addPlanarObject(parent, name, model.Circle(radius, 64))
}

func (s *scene) AddPlanarCapsule(parent NodeHandle, radius, height float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("planar_capsule_%g_%g", radius, height)
	return s.addPlanarObject(parent, name, model.PlanarCapsule(radius, height, 50))
}

func (s *scene) AddConvexPolygon(parent NodeHandle, points [][2]float32) (NodeHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(points) < 3 {
		return InvalidHandle, fmt.Errorf("scene %q: convex polygon needs at least 3 points, got %d", s.name, len(points))
	}
	// Caller geometry is never shared; a per-scene sequence keeps the
	// registry names unique.
	s.planarSeq++
	name := fmt.Sprintf("polygon_%d", s.planarSeq)
	return s.addPlanarObject(parent, name, model.ConvexPolygon(points))
}

func (s *scene) AddLight(parent NodeHandle, l light.Light) NodeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.g.alloc(parent)
	if h == InvalidHandle {
		return InvalidHandle
	}
	s.g.nodes[h].light = l
	return h
}

// addObject attaches a mesh-bearing node with the default lit material.
// Caller must hold s.mu write lock.
func (s *scene) addObject(parent NodeHandle, name string, data *common.MeshData) (NodeHandle, error) {
	return s.addObjectWithMaterial(parent, name, data, material.NewMaterial())
}

// addPlanarObject attaches a 2D mesh node rendered through the unlit planar
// surface pass. Caller must hold s.mu write lock.
func (s *scene) addPlanarObject(parent NodeHandle, name string, data *common.MeshData) (NodeHandle, error) {
	mat := material.NewMaterial(
		material.WithMode(material.ShadingFlat),
		material.WithPipelineKey(renderer.PipelineKeyPlanarFlat),
	)
	return s.addObjectWithMaterial(parent, name, data, mat)
}

// addObjectWithMaterial attaches a mesh-bearing node. Caller must hold s.mu
// write lock.
func (s *scene) addObjectWithMaterial(parent NodeHandle, name string, data *common.MeshData, mat material.Material) (NodeHandle, error) {
	if !s.g.valid(parent) {
		return InvalidHandle, fmt.Errorf("scene %q: parent handle %d is not a live node", s.name, parent)
	}

	msh := s.registry.Acquire(name)
	if msh == nil {
		var err error
		msh, err = s.registry.Register(name, data)
		if err != nil {
			return InvalidHandle, fmt.Errorf("scene %q: register mesh %q: %w", s.name, name, err)
		}
	}

	res, err := s.ensureMeshResources(name, msh)
	if err != nil {
		s.registry.Release(name)
		return InvalidHandle, err
	}

	obj := &object{
		meshName:    name,
		mesh:        msh,
		mat:         mat,
		instances:   model.NewInstanceBuffer(),
		data:        []model.InstanceData{model.DefaultInstance()},
		dataDirty:   true,
		color:       [4]float32{1, 1, 1, 1},
		surface:     true,
		linesColor:  common.NewColor(0, 0, 0),
		pointsColor: common.NewColor(0, 0, 0),
	}

	h := s.g.alloc(parent)
	if err := s.initObjectResources(h, obj, res); err != nil {
		s.g.remove(h, nil)
		s.registry.Release(name)
		return InvalidHandle, err
	}

	s.g.nodes[h].object = obj
	return h, nil
}

// ensureMeshResources uploads the mesh buffers the first time a mesh name is
// seen and returns the shared resources. Caller must hold s.mu write lock.
func (s *scene) ensureMeshResources(name string, msh model.Mesh) (*meshResources, error) {
	if res, ok := s.meshRes[name]; ok {
		return res, nil
	}

	res := &meshResources{
		edgeCount:   len(msh.Edges()),
		vertexCount: len(msh.Vertices()),
	}

	res.bgp = bind_group_provider.NewBindGroupProvider(name + "_mesh")
	if err := s.r.InitMeshBuffers(res.bgp, msh.VertexData(), msh.IndexData(), msh.IndexCount()); err != nil {
		return nil, fmt.Errorf("scene %q: init mesh buffers for %q: %w", s.name, name, err)
	}

	// The wireframe pass reads edges from a storage buffer; the points pass
	// reads the vertex buffer itself, which InitMeshBuffers created with
	// storage usage.
	if edgeData := msh.EdgeData(); len(edgeData) > 0 {
		buf, err := s.r.CreateDynamicBuffer(name+"_edges", uint64(len(edgeData)), wgpu.BufferUsageStorage)
		if err != nil {
			return nil, fmt.Errorf("scene %q: create edge buffer for %q: %w", s.name, name, err)
		}
		s.r.WriteBuffer(buf, 0, edgeData)

		wireVS := s.r.Pipeline(renderer.PipelineKeyWireframe).Shader(shader.ShaderTypeVertex)
		res.edgesBGP = bind_group_provider.NewBindGroupProvider(name + "_edges")
		res.edgesBGP.SetBuffer(0, buf)
		if err := s.r.InitBindGroup(res.edgesBGP, wireVS.BindGroupLayoutDescriptor(2), nil, nil); err != nil {
			return nil, fmt.Errorf("scene %q: init edge bind group for %q: %w", s.name, name, err)
		}
	}

	pointsVS := s.r.Pipeline(renderer.PipelineKeyPoints).Shader(shader.ShaderTypeVertex)
	res.vertsBGP = bind_group_provider.NewBindGroupProvider(name + "_verts")
	res.vertsBGP.SetBuffer(0, res.bgp.VertexBuffer())
	if err := s.r.InitBindGroup(res.vertsBGP, pointsVS.BindGroupLayoutDescriptor(2), nil, nil); err != nil {
		return nil, fmt.Errorf("scene %q: init vertex storage bind group for %q: %w", s.name, name, err)
	}

	s.meshRes[name] = res
	return res, nil
}

// initObjectResources creates the per-object uniform bind groups and the
// material's texture resources. Caller must hold s.mu write lock.
func (s *scene) initObjectResources(h NodeHandle, obj *object, res *meshResources) error {
	label := fmt.Sprintf("%s_node%d", s.name, h)

	meshVS := s.r.Pipeline(renderer.PipelineKeyMeshBlinnPhong).Shader(shader.ShaderTypeVertex)
	obj.objectBGP = bind_group_provider.NewBindGroupProvider(label + "_object")
	if err := s.r.InitBindGroup(obj.objectBGP, meshVS.BindGroupLayoutDescriptor(1), nil, map[int]uint64{0: material.ObjectUniformsSize}); err != nil {
		return fmt.Errorf("scene %q: init object bind group: %w", s.name, err)
	}

	if res.edgesBGP != nil {
		wireVS := s.r.Pipeline(renderer.PipelineKeyWireframe).Shader(shader.ShaderTypeVertex)
		obj.wireBGP = bind_group_provider.NewBindGroupProvider(label + "_wire")
		if err := s.r.InitBindGroup(obj.wireBGP, wireVS.BindGroupLayoutDescriptor(1), nil, map[int]uint64{0: material.OverlayModelUniformsSize}); err != nil {
			return fmt.Errorf("scene %q: init wireframe bind group: %w", s.name, err)
		}
	}

	pointsVS := s.r.Pipeline(renderer.PipelineKeyPoints).Shader(shader.ShaderTypeVertex)
	obj.pointsBGP = bind_group_provider.NewBindGroupProvider(label + "_points")
	if err := s.r.InitBindGroup(obj.pointsBGP, pointsVS.BindGroupLayoutDescriptor(1), nil, map[int]uint64{0: material.OverlayModelUniformsSize}); err != nil {
		return fmt.Errorf("scene %q: init points bind group: %w", s.name, err)
	}

	return s.initMaterialResources(obj)
}

// initMaterialResources decodes the material's textures (falling back to
// neutral single-pixel textures) and builds its bind groups. Caller must hold
// s.mu write lock.
func (s *scene) initMaterialResources(obj *object) error {
	key := pipelineKeyForMaterial(obj.mat)
	obj.mat.SetPipelineKey(key)

	if obj.mat.Mode() == material.ShadingNormals {
		// The normals pipeline binds no material group.
		return nil
	}

	fs := s.r.Pipeline(key).Shader(shader.ShaderTypeFragment)

	bgp := obj.mat.BindGroupProvider()
	if bgp == nil {
		bgp = bind_group_provider.NewBindGroupProvider(s.name + "_mat_" + obj.meshName)
		obj.mat.SetBindGroupProvider(bgp)
	}
	if bgp.BindGroup() == nil {
		if err := s.initTexturePair(bgp, 0, obj.mat.AlbedoTexture(), whitePixel()); err != nil {
			return err
		}
		if err := s.r.InitBindGroup(bgp, fs.BindGroupLayoutDescriptor(2), nil, nil); err != nil {
			return fmt.Errorf("scene %q: init material bind group: %w", s.name, err)
		}
	}

	if obj.mat.Mode() != material.ShadingPBR {
		return nil
	}

	pbr := bind_group_provider.NewBindGroupProvider(s.name + "_pbr_" + obj.meshName)
	pairs := []struct {
		binding  int
		tex      *common.ImportedTexture
		fallback common.TextureStagingData
	}{
		{0, obj.mat.NormalTexture(), flatNormalPixel()},
		{2, obj.mat.MetallicRoughnessTexture(), whitePixel()},
		{4, obj.mat.OcclusionTexture(), whitePixel()},
		{6, obj.mat.EmissiveTexture(), whitePixel()},
	}
	for _, p := range pairs {
		if err := s.initTexturePair(pbr, p.binding, p.tex, p.fallback); err != nil {
			return err
		}
	}
	if err := s.r.InitBindGroup(pbr, fs.BindGroupLayoutDescriptor(3), nil, nil); err != nil {
		return fmt.Errorf("scene %q: init pbr bind group: %w", s.name, err)
	}
	obj.pbrBGP = pbr
	return nil
}

// initTexturePair stages one texture binding and its sampler at binding+1.
func (s *scene) initTexturePair(bgp bind_group_provider.BindGroupProvider, binding int, tex *common.ImportedTexture, fallback common.TextureStagingData) error {
	staging := fallback
	sampler := defaultSampler()
	if tex != nil {
		pixels, w, h, err := tex.Decode()
		if err != nil {
			return fmt.Errorf("scene %q: decode texture %q: %w", s.name, tex.Name, err)
		}
		staging = common.TextureStagingData{Pixels: pixels, Width: w, Height: h}
		if tex.SamplerData != nil {
			sampler = *tex.SamplerData
		}
	}
	if err := s.r.InitTextureView(bgp, binding, staging); err != nil {
		return fmt.Errorf("scene %q: init texture view: %w", s.name, err)
	}
	if err := s.r.InitSampler(bgp, binding+1, sampler); err != nil {
		return fmt.Errorf("scene %q: init sampler: %w", s.name, err)
	}
	return nil
}

func (s *scene) Remove(h NodeHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.remove(h, s.freeNode)
}

// freeNode releases the GPU resources of a removed node's object and drops
// the shared mesh resources when the last reference goes away. Caller must
// hold s.mu write lock.
func (s *scene) freeNode(n *node) {
	obj := n.object
	if obj == nil {
		return
	}
	obj.instances.Release()
	releaseBGP(obj.objectBGP)
	releaseBGP(obj.wireBGP)
	releaseBGP(obj.pointsBGP)
	releaseBGP(obj.pbrBGP)

	s.registry.Release(obj.meshName)
	if !s.registry.Contains(obj.meshName) {
		if res, ok := s.meshRes[obj.meshName]; ok {
			// The verts bind group borrows the mesh vertex buffer; detach it
			// so only the mesh provider releases it. The edge buffer is owned
			// by the edges bind group.
			if res.vertsBGP != nil {
				res.vertsBGP.SetBuffer(0, nil)
			}
			releaseBGP(res.bgp)
			releaseBGP(res.edgesBGP)
			releaseBGP(res.vertsBGP)
			delete(s.meshRes, obj.meshName)
		}
	}
}

func releaseBGP(bgp bind_group_provider.BindGroupProvider) {
	if bgp != nil {
		bgp.Release()
	}
}

func (s *scene) Contains(h NodeHandle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.valid(h)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.count
}

func (s *scene) SetTranslation(h NodeHandle, t [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.translation = t
		n.dirty = true
	}
}

func (s *scene) Translation(h NodeHandle) [3]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return n.translation
	}
	return [3]float32{}
}

func (s *scene) SetRotation(h NodeHandle, r [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.rotation = r
		n.dirty = true
	}
}

func (s *scene) Rotation(h NodeHandle) [3]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return n.rotation
	}
	return [3]float32{}
}

func (s *scene) SetScale(h NodeHandle, sc [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.scale = sc
		n.dirty = true
	}
}

func (s *scene) Scale(h NodeHandle) [3]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return n.scale
	}
	return [3]float32{}
}

func (s *scene) SetPlanarTranslation(h NodeHandle, t [2]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.translation = [3]float32{t[0], t[1], 0}
		n.dirty = true
	}
}

func (s *scene) PlanarTranslation(h NodeHandle) [2]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return [2]float32{n.translation[0], n.translation[1]}
	}
	return [2]float32{}
}

func (s *scene) SetPlanarRotation(h NodeHandle, angle float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.rotation = [3]float32{0, 0, angle}
		n.dirty = true
	}
}

func (s *scene) PlanarRotation(h NodeHandle) float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return n.rotation[2]
	}
	return 0
}

func (s *scene) SetPlanarScale(h NodeHandle, sc [2]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.scale = [3]float32{sc[0], sc[1], 1}
		n.dirty = true
	}
}

func (s *scene) PlanarScale(h NodeHandle) [2]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return [2]float32{n.scale[0], n.scale[1]}
	}
	return [2]float32{}
}

func (s *scene) SetDeformation(h NodeHandle, d []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.g.get(h)
	if n == nil {
		return
	}
	if d == nil {
		n.deformation = nil
		return
	}
	buf := make([]float32, 9)
	copy(buf, d)
	n.deformation = buf
}

func (s *scene) SetVisible(h NodeHandle, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil {
		n.visible = visible
	}
}

func (s *scene) Visible(h NodeHandle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return n.visible
	}
	return false
}

func (s *scene) WorldTransform(h NodeHandle) [16]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil {
		return n.world
	}
	var out [16]float32
	common.Identity(out[:])
	return out
}

func (s *scene) SetColor(h NodeHandle, color [4]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.color = color
	}
}

func (s *scene) SetMaterial(h NodeHandle, mat material.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.g.get(h)
	if n == nil || n.object == nil {
		return fmt.Errorf("scene %q: handle %d has no object", s.name, h)
	}
	if mat == nil {
		return fmt.Errorf("scene %q: SetMaterial requires a non-nil material", s.name)
	}
	n.object.mat = mat
	n.object.pbrBGP = nil
	return s.initMaterialResources(n.object)
}

func (s *scene) SetInstances(h NodeHandle, instances []model.InstanceData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.data = instances
		n.object.dataDirty = true
	}
}

func (s *scene) Instances(h NodeHandle) []model.InstanceData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		return n.object.data
	}
	return nil
}

func (s *scene) SetSurfaceRendering(h NodeHandle, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.surface = enabled
	}
}

func (s *scene) SetLinesWidth(h NodeHandle, width float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.linesWidth = width
	}
}

func (s *scene) SetLinesColor(h NodeHandle, color common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.linesColor = color
	}
}

func (s *scene) SetPointsSize(h NodeHandle, size float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.pointsSize = size
	}
}

func (s *scene) SetPointsColor(h NodeHandle, color common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.pointsColor = color
	}
}

func (s *scene) SetLinesPerspective(h NodeHandle, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.linesPerspective = enabled
	}
}

func (s *scene) SetPointsPerspective(h NodeHandle, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.g.get(h); n != nil && n.object != nil {
		n.object.pointsPerspective = enabled
	}
}

func (s *scene) AmbientIntensity() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights.Ambient()
}

func (s *scene) SetAmbientIntensity(ambient float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights.SetAmbient(ambient)
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) Prepare(deltaTime float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	width, height := s.r.SurfaceSize()
	if height > 0 {
		s.cam.SetAspect(float32(width) / float32(height))
	}
	s.cam.Update(deltaTime)

	s.g.propagate()

	// Light collection walks the visible graph in traversal order; once the
	// cap is reached further lights are silently dropped this frame.
	s.lights.Reset()
	entries := s.prepScratch[:0]
	s.g.visit(func(h NodeHandle, n *node) {
		if n.light != nil && n.light.Enabled() {
			s.lights.Add(light.CollectedLight{
				Light:          n.light,
				WorldPosition:  n.worldTranslation(),
				WorldDirection: n.worldDirection(n.light.Direction()),
			})
		}
		if n.object != nil && len(n.object.data) > 0 {
			entries = append(entries, prepEntry{n: n, obj: n.object})
		}
	})
	s.prepScratch = entries

	s.frame.View = s.cam.ViewMatrix()
	s.frame.Proj = s.cam.ProjectionMatrix()
	s.lights.Fill(&s.frame)

	view := camera.NewViewUniforms(s.cam, float32(width), float32(height))

	// Phase 1: parallel packing of instance streams and uniform blocks.
	// Workers are reused across frames; a WaitGroup provides the per-frame
	// barrier since the pool itself never drains mid-run.
	var wg sync.WaitGroup
	for i := range entries {
		wg.Add(1)
		e := &entries[i]
		s.prepPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				s.packEntry(e)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: serial GPU submission. Instance buffers grow on the device as
	// needed, then every uniform write goes out in one coalesced batch.
	var errs []error
	writes := s.writePool[:0]
	writes = append(writes,
		bind_group_provider.BufferWrite{Provider: s.frameBGP, Binding: 0, Data: s.frame.Marshal()},
		bind_group_provider.BufferWrite{Provider: s.viewBGP, Binding: 0, Data: view.Marshal()},
	)
	for i := range entries {
		e := &entries[i]
		if e.obj.dataDirty {
			e.obj.instances.Set(e.obj.data)
			e.obj.dataDirty = false
		}
		if err := e.obj.instances.Upload(s.r.Device(), s.r.Queue()); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: upload instances for %q: %w", s.name, e.obj.meshName, err))
			continue
		}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: e.obj.objectBGP, Binding: 0, Data: e.objData})
		if e.obj.wireBGP != nil {
			writes = append(writes, bind_group_provider.BufferWrite{Provider: e.obj.wireBGP, Binding: 0, Data: e.wireData})
		}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: e.obj.pointsBGP, Binding: 0, Data: e.pointsData})
	}
	s.writePool = writes
	s.r.WriteBuffers(writes)

	return errors.Join(errs...)
}

// packEntry marshals one object's uniform blocks. Runs on a prep worker; it
// touches only the entry and immutable node state, never the GPU.
func (s *scene) packEntry(e *prepEntry) {
	n, obj := e.n, e.obj

	var u material.ObjectUniforms
	obj.mat.Uniforms(&u)
	for i := range u.Color {
		u.Color[i] *= obj.color[i]
	}
	u.Transform = n.world
	n.scaleMat3(u.Scale[:])

	// The normal matrix covers the full node-local linear transform so
	// non-uniform scale and deformation keep normals perpendicular.
	var lin, full [16]float32
	n.localLinear(lin[:])
	common.Mul4(full[:], n.world[:], lin[:])
	var nm [9]float32
	common.NormalMatrix(nm[:], full[:])
	common.PackMat3(u.NTransform[:], nm[:])

	e.objData = u.Marshal()

	res := s.meshRes[obj.meshName]
	if obj.wireBGP != nil {
		wu := material.WireframeModelUniforms{
			Transform:      n.world,
			Scale:          n.worldScale,
			NumEdges:       uint32(res.edgeCount),
			DefaultColor:   obj.linesColor.Array(),
			DefaultWidth:   obj.linesWidth,
			UsePerspective: boolToUint(obj.linesPerspective),
		}
		e.wireData = wu.Marshal()
	}

	pu := material.PointsModelUniforms{
		Transform:      n.world,
		Scale:          n.worldScale,
		NumVertices:    uint32(res.vertexCount),
		DefaultColor:   obj.pointsColor.Array(),
		DefaultSize:    obj.pointsSize,
		UsePerspective: boolToUint(obj.pointsPerspective),
	}
	e.pointsData = pu.Marshal()
}

func (s *scene) Render() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frustum := s.cam.Frustum()

	var errs []error
	s.g.visit(func(h NodeHandle, n *node) {
		obj := n.object
		if obj == nil || len(obj.data) == 0 {
			return
		}

		// Culling only applies to single-instance objects: instanced copies
		// sit at arbitrary offsets the node's bounding sphere cannot cover.
		if !s.cullingDisabled && len(obj.data) == 1 {
			center := n.worldTranslation()
			off := obj.data[0].Position
			center[0] += off[0]
			center[1] += off[1]
			center[2] += off[2]
			radius := obj.mesh.BoundingRadius() * n.maxScale()
			if !frustum.ContainsSphere(center, radius) {
				return
			}
		}

		if err := s.drawObject(n, obj); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// drawObject issues the surface and overlay passes of one object. Caller must
// hold s.mu read lock.
func (s *scene) drawObject(n *node, obj *object) error {
	res := s.meshRes[obj.meshName]
	count := uint32(obj.instances.Len())
	if res == nil || count == 0 {
		return nil
	}

	var errs []error

	if obj.surface {
		groups := append(s.drawGroupsPool[:0], s.frameBGP, obj.objectBGP)
		if matBGP := obj.mat.BindGroupProvider(); matBGP != nil && obj.mat.Mode() != material.ShadingNormals {
			groups = append(groups, matBGP)
		}
		if obj.pbrBGP != nil {
			groups = append(groups, obj.pbrBGP)
		}
		key := obj.mat.PipelineKey()
		if key == "" {
			key = pipelineKeyForMaterial(obj.mat)
		}
		if err := s.r.DrawCall(key, res.bgp, obj.instances.Mesh().Buffer(), count, groups); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: surface pass for %q: %w", s.name, obj.meshName, err))
		}
	}

	if obj.linesWidth != 0 && obj.wireBGP != nil && res.edgesBGP != nil {
		groups := []bind_group_provider.BindGroupProvider{s.viewBGP, obj.wireBGP, res.edgesBGP}
		vertexCount := uint32(res.edgeCount) * 6
		if err := s.r.DrawVertices(renderer.PipelineKeyWireframe, []*wgpu.Buffer{obj.instances.Lines().Buffer()}, vertexCount, count, groups); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: wireframe pass for %q: %w", s.name, obj.meshName, err))
		}
	}

	if obj.pointsSize != 0 {
		groups := []bind_group_provider.BindGroupProvider{s.viewBGP, obj.pointsBGP, res.vertsBGP}
		vertexCount := uint32(res.vertexCount) * 6
		if err := s.r.DrawVertices(renderer.PipelineKeyPoints, []*wgpu.Buffer{obj.instances.Points().Buffer()}, vertexCount, count, groups); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: points pass for %q: %w", s.name, obj.meshName, err))
		}
	}

	return errors.Join(errs...)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.g.nodes[0].children {
		s.g.freeSubtree(c, s.freeNode)
	}
	s.g.nodes[0].children = nil

	releaseBGP(s.frameBGP)
	releaseBGP(s.viewBGP)
	s.frameBGP = nil
	s.viewBGP = nil
}

// pipelineKeyForMaterial maps a material's shading mode to the builtin
// pipeline key, honoring an explicit key when the material set one.
func pipelineKeyForMaterial(mat material.Material) string {
	if key := mat.PipelineKey(); key != "" {
		return key
	}
	switch mat.Mode() {
	case material.ShadingPBR:
		return renderer.PipelineKeyMeshPBR
	case material.ShadingFlat:
		return renderer.PipelineKeyMeshFlat
	case material.ShadingNormals:
		return renderer.PipelineKeyMeshNormals
	default:
		return renderer.PipelineKeyMeshBlinnPhong
	}
}

// whitePixel returns a 1x1 opaque white texture used when a material carries
// no texture for a binding.
func whitePixel() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	}
}

// flatNormalPixel returns a 1x1 neutral tangent-space normal.
func flatNormalPixel() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: []byte{128, 128, 255, 255},
		Width:  1,
		Height: 1,
	}
}

// defaultSampler returns the linear repeat sampler used for material textures
// without explicit sampler settings.
func defaultSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
