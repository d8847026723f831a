package renderer

// RendererBackendType selects which GPU API implementation backs the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU renders through WebGPU.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames reach the display surface.
type PresentMode int

const (
	// PresentModeVSync blocks presentation until the next vertical blank.
	// Frame rate is capped at the monitor refresh rate and tearing cannot occur.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents as soon as a frame is ready. Lowest latency,
	// but frames may tear.
	PresentModeUncapped
)

// MSAASampleCount is the multisample anti-aliasing sample count. WebGPU
// guarantees 1 and 4; 8 and 16 depend on the adapter.
type MSAASampleCount uint32

const (
	// MSAAOff renders without multisampling (sample count 1). Required when a
	// post-processing chain is registered, since effects resolve single-sample
	// color targets.
	MSAAOff MSAASampleCount = 1

	// MSAA4x is the default sample count.
	MSAA4x MSAASampleCount = 4

	// MSAA8x is adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x is adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
