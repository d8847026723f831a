package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dimforge/kiss3d/common"
	"github.com/dimforge/kiss3d/engine/renderer/bind_group_provider"
	"github.com/dimforge/kiss3d/engine/renderer/pipeline"
	"github.com/dimforge/kiss3d/engine/renderer/post"
	"github.com/dimforge/kiss3d/engine/renderer/shader"
)

// postPassResources holds the per-effect GPU state for one post-processing pass.
type postPassResources struct {
	effect   post.Effect
	pipeline pipeline.Pipeline

	// uniform is the persistent EffectUniforms buffer, nil when the effect's
	// shader declares no uniform binding.
	uniform *wgpu.Buffer

	// layouts are the bind group layouts created during pipeline registration,
	// indexed by group. Bind groups are rebuilt from these every frame because
	// the source texture view ping-pongs between the two offscreen targets.
	layouts []*wgpu.BindGroupLayout
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	surfaceWidth  int
	surfaceHeight int

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Post-processing chain state. When the chain is non-empty, the main pass
	// renders into offscreenColor[0] and the chain filters it through the
	// second target before the final pass writes to the swapchain view.
	postChain        []post.Effect
	postResources    map[string]*postPassResources
	offscreenColor   [2]*wgpu.Texture
	offscreenView    [2]*wgpu.TextureView
	offscreenDepth   *wgpu.TextureView
	postSampler      *wgpu.Sampler
	postDepthSampler *wgpu.Sampler

	// Frame capture state. When enabled, EndFrame copies the final surface
	// texture — after the post chain has written its last pass — into
	// captureTexture, so CaptureFrame can read the presented image back even
	// though the swapchain texture is released on Present.
	captureEnabled bool
	captureTexture *wgpu.Texture
	captureWidth   int
	captureHeight  int
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface
	SetDevice(device *wgpu.Device)
	SetQueue(queue *wgpu.Queue)
	SetInstance(instance *wgpu.Instance)
	SetAdapter(adapter *wgpu.Adapter)
	SetSurface(surface *wgpu.Surface)

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SurfaceSize returns the current surface dimensions in pixels.
	//
	// Returns:
	//   - int: the surface width
	//   - int: the surface height
	SurfaceSize() (int, int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline is a high-level function that creates a render pipeline based on the provided pipeline.
	// It handles creating the shader module, pipeline layout, and render pipeline based on the pipeline's configuration.
	//
	// Parameters:
	//   - p: the pipeline object containing the source code and configuration for the pipeline
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterPostPipeline creates the render pipeline and uniform buffer for one
	// post-processing effect. Post pipelines render a full-screen triangle with no
	// depth attachment, sample count 1, and the surface format as their color target.
	//
	// Parameters:
	//   - e: the effect supplying the uniform block each frame
	//   - p: the pipeline object holding the effect's compiled shaders
	//
	// Returns:
	//   - error: an error if pipeline or buffer creation fails
	RegisterPostPipeline(e post.Effect, p pipeline.Pipeline) error

	// SetPostChain sets the ordered list of post-processing effects applied after
	// the main pass each frame. Every effect must already be registered via
	// RegisterPostPipeline. Passing an empty slice disables post-processing.
	//
	// Parameters:
	//   - effects: the effects to run, in order
	SetPostChain(effects []post.Effect)

	// InitMeshBuffers inits the vertex and index buffers for a mesh based on the provided vertex and index data, and stores them on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex and index buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created or initialized, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup is a high-level function that creates GPU buffers and a bind group based on a BindGroupProvider's layout entries.
	// It handles creating the necessary GPU resources and storing them back on the provider for later use.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the layout entries and storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//   - bufferUsageOverrides: a map of binding indices to buffer usage flags, allowing customization of buffer usage
	//   - bufferSizeOverrides: a map of binding indices to buffer sizes, allowing customization of buffer sizes
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU texture and texture view based on the provided staging data, and stores the view on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the integer key identifying the bind group layout entry for this texture
	//   - stagingData: the TextureStagingData containing the raw texture data and metadata for creating the texture
	//
	// Returns:
	//   - error: an error if the texture view could not be created or initialized, otherwise nil
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler based on the provided staging data, and stores it on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the integer key identifying the bind group layout entry for this sampler
	//   - stagingData: the SamplerStagingData containing the configuration for creating the sampler
	//
	// Returns:
	//   - error: an error if the sampler could not be created or initialized, otherwise nil
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// CreateDynamicBuffer creates a GPU buffer intended to be rewritten every frame,
	// such as an instance stream or an immediate-mode vertex list.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - size: the buffer size in bytes
	//   - usage: the buffer usage flags (CopyDst is added automatically)
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if buffer creation fails
	CreateDynamicBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// WriteBuffer writes raw bytes into a buffer created with CreateDynamicBuffer.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the destination byte offset
	//   - data: the bytes to write
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass. When a post-processing chain is set, the main pass targets the
	// offscreen color and depth textures instead of the swapchain. Must be paired with
	// EndFrame after all draw invocations.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired. Surface loss is
	//     recoverable: skip the frame, reconfigure via ConfigureSurface, and retry on the
	//     next presentation cycle.
	BeginFrame() error

	// DrawCall encodes a single indexed instanced draw command within the current render pass
	// started by BeginFrame. The mesh vertex buffer occupies slot 0; when instanceBuffer is
	// non-nil it occupies slot 1 and advances per instance.
	//
	// Parameters:
	//   - p: the cached Pipeline containing the render pipeline to use
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceBuffer: the per-instance attribute buffer, or nil for non-instanced pipelines
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: a slice of BindGroupProviders whose BindGroups will be set on the render pass
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceBuffer *wgpu.Buffer, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// DrawVertices encodes a non-indexed draw within the current render pass. Used by the
	// screen-space expansion pipelines, which generate their geometry from the vertex index
	// and read primitive data from storage buffers or per-instance attributes.
	//
	// Parameters:
	//   - p: the cached Pipeline containing the render pipeline to use
	//   - vertexBuffers: buffers assigned to vertex buffer slots in order; nil entries are skipped
	//   - vertexCount: the number of vertices to draw
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: a slice of BindGroupProviders whose BindGroups will be set on the render pass
	DrawVertices(p pipeline.Pipeline, vertexBuffers []*wgpu.Buffer, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the main render pass, encodes the post-processing chain when one is
	// set, and submits the command buffer to the GPU. Does not present the surface — call
	// Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// SetFrameCapture toggles the per-frame snapshot of the presented image. Capture is
	// enabled by default; disabling it skips the swapchain copy in EndFrame and releases
	// the capture texture.
	//
	// Parameters:
	//   - enabled: whether EndFrame should keep a copy of each presented frame
	SetFrameCapture(enabled bool)

	// CaptureFrame reads back the most recently presented frame as tightly packed RGBA
	// bytes. The frame is the final image shown on screen, including the post-processing
	// chain's output when one is active. Requires capture to be enabled and at least one
	// frame to have completed.
	//
	// Returns:
	//   - []byte: RGBA pixel data, 4 bytes per pixel, row-major
	//   - int: image width in pixels
	//   - int: image height in pixels
	//   - error: an error if capture is disabled, no frame has completed, or the readback fails
	CaptureFrame() ([]byte, int, int, error)
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeImmediate,
		sampleCount:    sampleCount,
		postResources:  make(map[string]*postPassResources),
		captureEnabled: true,
	}
	w.SetSurface(w.instance.CreateSurface(surfaceDescriptor))

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.SetAdapter(a)

	// Start from the WebGPU spec default limits and raise MaxBindGroups so the
	// textured lit pipelines' four bind groups plus headroom are allowed.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.SetDevice(d)
	w.SetQueue(d.GetQueue())

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surfaceWidth = width
	b.surfaceHeight = height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	// CopySrc lets EndFrame copy the presented image into the capture
	// texture for screenshots and recording.
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// Create the MSAA texture that the render pass draws into; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	} else {
		// No MSAA — the render pass draws directly to the swapchain view.
		b.msaaTextureView = nil
	}

	// Depth texture sample count must match the color attachment. When a post
	// chain is active the main pass uses the offscreen depth texture instead.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// Build the cached render pass descriptor for the main render target.
	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is
	// set per-frame to the swapchain view. When disabled, View is set
	// per-frame to the swapchain view and ResolveTarget remains nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard // Don't store MSAA data, just resolve
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView, // Persistent until resize
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard, // Depth not needed after resolving
			DepthClearValue: 1.0,
		},
	}

	// The capture texture must match the surface size; drop a stale one and
	// let EndFrame recreate it on demand.
	if b.captureTexture != nil && (b.captureWidth != width || b.captureHeight != height) {
		b.captureTexture.Release()
		b.captureTexture = nil
	}

	if len(b.postChain) > 0 {
		if err := b.createOffscreenTargets(); err != nil {
			slog.Warn("offscreen target creation failed, post-processing disabled", "error", err)
		}
	}
}

func (b *wgpuRendererBackendImpl) SurfaceSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceWidth, b.surfaceHeight
}

// createOffscreenTargets builds the ping-pong color textures, the sampleable
// depth texture, and the samplers used by the post-processing chain. Caller
// must hold b.mu and have configured the surface at least once. On error the
// partially built targets are released so the frame path falls back to
// rendering straight to the swapchain.
func (b *wgpuRendererBackendImpl) createOffscreenTargets() error {
	fail := func(err error) error {
		b.releaseOffscreenTargets()
		return err
	}

	for i := 0; i < 2; i++ {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: fmt.Sprintf("Offscreen Color %d", i),
			Size: wgpu.Extent3D{
				Width:              uint32(b.surfaceWidth),
				Height:             uint32(b.surfaceHeight),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
		})
		if err != nil {
			return fail(fmt.Errorf("offscreen color %d: %w", i, err))
		}
		b.offscreenColor[i] = tex
		view, err := tex.CreateView(nil)
		if err != nil {
			return fail(fmt.Errorf("offscreen color %d view: %w", i, err))
		}
		b.offscreenView[i] = view
	}

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Offscreen Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(b.surfaceWidth),
			Height:             uint32(b.surfaceHeight),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fail(fmt.Errorf("offscreen depth: %w", err))
	}
	b.offscreenDepth, err = depthTexture.CreateView(nil)
	if err != nil {
		return fail(fmt.Errorf("offscreen depth view: %w", err))
	}

	if b.postSampler == nil {
		b.postSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:         "Post Color Sampler",
			AddressModeU:  wgpu.AddressModeClampToEdge,
			AddressModeV:  wgpu.AddressModeClampToEdge,
			AddressModeW:  wgpu.AddressModeClampToEdge,
			MagFilter:     wgpu.FilterModeLinear,
			MinFilter:     wgpu.FilterModeLinear,
			MipmapFilter:  wgpu.MipmapFilterModeNearest,
			MaxAnisotropy: 1,
		})
		if err != nil {
			return fail(fmt.Errorf("post color sampler: %w", err))
		}
	}
	if b.postDepthSampler == nil {
		b.postDepthSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:         "Post Depth Sampler",
			AddressModeU:  wgpu.AddressModeClampToEdge,
			AddressModeV:  wgpu.AddressModeClampToEdge,
			AddressModeW:  wgpu.AddressModeClampToEdge,
			MagFilter:     wgpu.FilterModeNearest,
			MinFilter:     wgpu.FilterModeNearest,
			MipmapFilter:  wgpu.MipmapFilterModeNearest,
			MaxAnisotropy: 1,
		})
		if err != nil {
			return fail(fmt.Errorf("post depth sampler: %w", err))
		}
	}
	return nil
}

// releaseOffscreenTargets drops any offscreen post-processing resources so the
// nil checks in BeginFrame and EndFrame keep the frame on the swapchain path.
// Caller must hold b.mu.
func (b *wgpuRendererBackendImpl) releaseOffscreenTargets() {
	for i := 0; i < 2; i++ {
		if b.offscreenView[i] != nil {
			b.offscreenView[i].Release()
			b.offscreenView[i] = nil
		}
		if b.offscreenColor[i] != nil {
			b.offscreenColor[i].Release()
			b.offscreenColor[i] = nil
		}
	}
	if b.offscreenDepth != nil {
		b.offscreenDepth.Release()
		b.offscreenDepth = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return err
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Source(),
		},
	})
	if err != nil {
		return err
	}

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		if g > maxGroup {
			maxGroup = g
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for i := range vertexShader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(i)...)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    *b.surfaceFormat,
						WriteMask: p.WriteMask(),
					}
					if p.BlendEnabled() {
						state.Blend = p.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: func() *wgpu.DepthStencilState {
			depthCompare := p.DepthCompare()
			if !p.DepthTestEnabled() {
				depthCompare = wgpu.CompareFunctionAlways
			}
			return &wgpu.DepthStencilState{
				Format:              wgpu.TextureFormatDepth24Plus,
				DepthWriteEnabled:   p.DepthWriteEnabled(),
				DepthCompare:        depthCompare,
				DepthBias:           p.DepthBias(),
				DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
				StencilFront: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
				StencilBack: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
			}
		}(),
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)

	return nil
}

func (b *wgpuRendererBackendImpl) RegisterPostPipeline(e post.Effect, p pipeline.Pipeline) error {
	if b.sampleCount > 1 {
		return errors.New("post-processing requires MSAAOff: the chain samples single-sample offscreen targets")
	}
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("both vertex and fragment shaders must be set to create a post pipeline")
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return err
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Source(),
		},
	})
	if err != nil {
		return err
	}

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		if g > maxGroup {
			maxGroup = g
		}
	}

	hasUniform := false
	layouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		// The depth target cannot be sampled with a filtering sampler, and the
		// parser classifies every plain sampler as filtering.
		if g == 1 && e.NeedsDepth() {
			for i := range desc.Entries {
				if desc.Entries[i].Sampler.Type == wgpu.SamplerBindingTypeFiltering {
					desc.Entries[i].Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
				}
			}
		}
		if g == 0 {
			for _, entry := range desc.Entries {
				if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
					hasUniform = true
				}
			}
		}
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("post %q: failed to create bind group layout for group %d: %w", e.Key(), g, layoutErr)
		}
		layouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Post Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		// Full-screen passes carry no depth attachment.
		DepthStencil: nil,
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)

	res := &postPassResources{
		effect:   e,
		pipeline: p,
		layouts:  layouts,
	}
	if hasUniform {
		res.uniform, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: e.Key() + " Uniform Buffer",
			Size:  post.EffectUniformsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}

	b.mu.Lock()
	b.postResources[e.Key()] = res
	b.mu.Unlock()
	return nil
}

func (b *wgpuRendererBackendImpl) SetPostChain(effects []post.Effect) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.postChain = effects
	if len(effects) > 0 && b.surfaceWidth > 0 && b.offscreenView[0] == nil {
		if err := b.createOffscreenTargets(); err != nil {
			slog.Warn("offscreen target creation failed, post-processing disabled", "error", err)
		}
	}
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		if isTexture {
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view — call InitTextureView first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		} else if isSampler {
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("sampler binding %d has no sampler — call InitSampler first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		} else {
			// Buffer binding — create if not already present
			var usage wgpu.BufferUsage
			switch entry.Buffer.Type {
			case wgpu.BufferBindingTypeUniform:
				usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			case wgpu.BufferBindingTypeStorage:
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			case wgpu.BufferBindingTypeReadOnlyStorage:
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}
			if overrideUsage, ok := bufferUsageOverrides[binding]; ok {
				usage |= overrideUsage
			}

			buf := provider.Buffer(binding)
			if buf == nil {
				var bufErr error
				bufSize := entry.Buffer.MinBindingSize
				if overrideSize, ok := bufferSizeOverrides[binding]; ok {
					bufSize = overrideSize
				}
				buf, bufErr = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: provider.Label() + " Buffer",
					Size:  bufSize,
					Usage: usage,
				})
				if bufErr != nil {
					return bufErr
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	format := stagingData.Format
	if format == wgpu.TextureFormatUndefined {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * stagingData.BytesPerPixel(),
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		return err
	}
	provider.SetTextureView(bindingKey, view)

	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingKey, samp)

	return nil
}

func (b *wgpuRendererBackendImpl) CreateDynamicBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf == nil || len(data) == 0 {
		return
	}
	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	var pass *wgpu.RenderPassEncoder
	if len(b.postChain) > 0 && b.offscreenView[0] != nil {
		// Post chain active: the main pass renders into the first offscreen
		// target and the depth result is kept for depth-sampling effects.
		pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:    b.offscreenView[0],
					LoadOp:  wgpu.LoadOpClear,
					StoreOp: wgpu.StoreOpStore,
					ClearValue: wgpu.Color{
						R: 0.1, G: 0.1, B: 0.1, A: 1.0,
					},
				},
			},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            b.offscreenDepth,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
	} else {
		// When MSAA is enabled, the MSAA texture is the color attachment View and
		// the swapchain view is the ResolveTarget. When MSAA is off, the swapchain
		// view is the color attachment View directly and ResolveTarget is nil.
		if b.sampleCount > 1 {
			b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
		} else {
			b.renderPassDescriptor.ColorAttachments[0].View = view
		}
		pass = encoder.BeginRenderPass(b.renderPassDescriptor)
	}

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceBuffer *wgpu.Buffer,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	if instanceBuffer != nil {
		b.framePass.SetVertexBuffer(1, instanceBuffer, 0, wgpu.WholeSize)
	}
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawVertices(
	p pipeline.Pipeline,
	vertexBuffers []*wgpu.Buffer,
	vertexCount, instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}

	for slot, buf := range vertexBuffers {
		if buf == nil {
			continue
		}
		b.framePass.SetVertexBuffer(uint32(slot), buf, 0, wgpu.WholeSize)
	}
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass.End()

	if len(b.postChain) > 0 && b.offscreenView[0] != nil {
		b.encodePostChain()
	}

	// Snapshot the finished frame after the post chain has written its last
	// pass, so capture sees exactly what Present will display.
	if b.captureEnabled && b.frameSurface != nil {
		b.encodeFrameCapture()
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

// encodePostChain encodes one full-screen pass per effect, ping-ponging between
// the offscreen color targets and writing the final pass to the swapchain view.
// Per-draw failures skip the effect rather than aborting the frame. Caller must
// hold b.mu.
func (b *wgpuRendererBackendImpl) encodePostChain() {
	src := 0
	for i, e := range b.postChain {
		res := b.postResources[e.Key()]
		if res == nil || res.pipeline.Pipeline() == nil {
			continue
		}

		if res.uniform != nil {
			u := e.Uniforms()
			b.queue.WriteBuffer(res.uniform, 0, u.Marshal())
		}

		entries := []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: b.offscreenView[src]},
			{Binding: 1, Sampler: b.postSampler},
		}
		if res.uniform != nil {
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: 2,
				Buffer:  res.uniform,
				Size:    wgpu.WholeSize,
			})
		}
		colorGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   e.Key() + " Color Bind Group",
			Layout:  res.layouts[0],
			Entries: entries,
		})
		if err != nil {
			continue
		}

		var depthGroup *wgpu.BindGroup
		if e.NeedsDepth() && len(res.layouts) > 1 {
			depthGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Label:  e.Key() + " Depth Bind Group",
				Layout: res.layouts[1],
				Entries: []wgpu.BindGroupEntry{
					{Binding: 0, TextureView: b.offscreenDepth},
					{Binding: 1, Sampler: b.postDepthSampler},
				},
			})
			if err != nil {
				colorGroup.Release()
				continue
			}
		}

		output := b.frameView
		if i < len(b.postChain)-1 {
			output = b.offscreenView[1-src]
		}

		pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       output,
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{A: 1.0},
				},
			},
		})
		pass.SetPipeline(res.pipeline.Pipeline())
		pass.SetBindGroup(0, colorGroup, nil)
		if depthGroup != nil {
			pass.SetBindGroup(1, depthGroup, nil)
		}
		pass.Draw(3, 1, 0, 0)
		pass.End()

		colorGroup.Release()
		if depthGroup != nil {
			depthGroup.Release()
		}

		if i < len(b.postChain)-1 {
			src = 1 - src
		}
	}
}

// encodeFrameCapture copies the current swapchain texture into the persistent
// capture texture inside the frame's command encoder. Failures only disable
// capture for this frame. Caller must hold b.mu.
func (b *wgpuRendererBackendImpl) encodeFrameCapture() {
	if b.captureTexture == nil {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "Frame Capture Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(b.surfaceWidth),
				Height:             uint32(b.surfaceHeight),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc,
		})
		if err != nil {
			slog.Warn("frame capture texture creation failed", "error", err)
			return
		}
		b.captureTexture = tex
		b.captureWidth = b.surfaceWidth
		b.captureHeight = b.surfaceHeight
	}

	err := b.frameEncoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{
			Texture: b.frameSurface,
			Aspect:  wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyTexture{
			Texture: b.captureTexture,
			Aspect:  wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{
			Width:              uint32(b.captureWidth),
			Height:             uint32(b.captureHeight),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		slog.Warn("frame capture copy failed", "error", err)
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	// Present the acquired surface image and release local references.
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) SetFrameCapture(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.captureEnabled = enabled
	if !enabled && b.captureTexture != nil {
		b.captureTexture.Release()
		b.captureTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) CaptureFrame() ([]byte, int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.captureEnabled {
		return nil, 0, 0, errors.New("frame capture is disabled")
	}
	if b.captureTexture == nil {
		return nil, 0, 0, errors.New("no frame has been captured yet")
	}

	width := uint32(b.captureWidth)
	height := uint32(b.captureHeight)

	// Rows must be 256-byte aligned for texture-to-buffer copies.
	bytesPerRow := (width*4 + 255) &^ 255
	bufSize := uint64(bytesPerRow) * uint64(height)

	readback, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Capture Buffer",
		Size:  bufSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	defer readback.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, 0, 0, err
	}
	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture: b.captureTexture,
			Aspect:  wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		encoder.Release()
		return nil, 0, 0, err
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, 0, 0, err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	var mapErr error
	done := false
	err = readback.MapAsync(wgpu.MapModeRead, 0, bufSize, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("frame capture map failed with status %v", status)
		}
		done = true
	})
	if err != nil {
		return nil, 0, 0, err
	}
	for !done {
		b.device.Poll(true, nil)
	}
	if mapErr != nil {
		return nil, 0, 0, mapErr
	}
	defer readback.Unmap()

	mapped := readback.GetMappedRange(0, uint(bufSize))
	pixels := packTightRows(mapped, width, height, bytesPerRow)

	return pixels, int(width), int(height), nil
}

// packTightRows compacts a row-aligned readback buffer into tightly packed
// RGBA rows, dropping the per-row padding required by texture-to-buffer
// copies.
func packTightRows(src []byte, width, height, bytesPerRow uint32) []byte {
	pixels := make([]byte, width*4*height)
	for row := uint32(0); row < height; row++ {
		srcOff := row * bytesPerRow
		dstOff := row * width * 4
		copy(pixels[dstOff:dstOff+width*4], src[srcOff:srcOff+width*4])
	}
	return pixels
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) SetDevice(device *wgpu.Device) {
	b.device = device
}

func (b *wgpuRendererBackendImpl) SetQueue(queue *wgpu.Queue) {
	b.queue = queue
}

func (b *wgpuRendererBackendImpl) SetInstance(instance *wgpu.Instance) {
	b.instance = instance
}

func (b *wgpuRendererBackendImpl) SetAdapter(adapter *wgpu.Adapter) {
	b.adapter = adapter
}

func (b *wgpuRendererBackendImpl) SetSurface(surface *wgpu.Surface) {
	b.surface = surface
}

// mergeBindGroupLayouts merges the bind group layout descriptors from a vertex and fragment shader
// into a unified set of descriptors suitable for a render pipeline layout.
//
// For each group index present in either shader:
//   - Entries with the same binding number have their Visibility flags ORed together
//   - Entries unique to one shader are included with their original visibility
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	// collect all group indices from both maps
	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		vDesc, hasV := vertexLayouts[g]
		fDesc, hasF := fragmentLayouts[g]

		switch {
		case hasV && !hasF:
			// group only in vertex shader — use as-is
			merged[g] = vDesc
		case hasF && !hasV:
			// group only in fragment shader — use as-is
			merged[g] = fDesc
		default:
			// group in both — merge entries by binding number
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range vDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range fDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					// same binding in both stages — OR the visibility
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}

			// flatten back to a sorted slice
			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			// sort by binding for deterministic layout
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})

			merged[g] = wgpu.BindGroupLayoutDescriptor{
				Label:   vDesc.Label, // or generate a composite label
				Entries: entries,
			}
		}
	}

	return merged
}
