package renderer

import (
	"github.com/dimforge/kiss3d/engine/renderer/pipeline"
)

// RendererBuilderOption configures a renderer during NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers one Pipeline in the cache under key. Scenes
// register the builtin pipelines themselves, so this is only needed for
// custom pipelines created outside the scene graph.
//
// Parameters:
//   - key: the cache key for the pipeline
//   - p: the Pipeline to register
//
// Returns:
//   - RendererBuilderOption: an option registering the pipeline
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}

// WithPipelines replaces the whole pipeline cache.
//
// Parameters:
//   - pipelines: cache key to Pipeline mapping
//
// Returns:
//   - RendererBuilderOption: an option replacing the cache
func WithPipelines(pipelines map[string]pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache = pipelines
	}
}

// WithPresentMode selects how frames are delivered to the display surface.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: an option applying the present mode
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA selects the multisample count. The default is MSAA4x; pass MSAAOff
// to disable multisampling, which is required when post-processing effects are
// registered. MSAA8x and MSAA16x depend on adapter support.
//
// Parameters:
//   - count: the sample count to use
//
// Returns:
//   - RendererBuilderOption: an option applying the sample count
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer requests a CPU fallback adapter instead of hardware
// acceleration. A software Vulkan ICD such as SwiftShader or lavapipe must be
// installed for this to succeed.
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - RendererBuilderOption: an option applying the adapter preference
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
