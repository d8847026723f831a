package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithAmbientIntensity sets the scene's ambient light intensity.
// Defaults to light.DefaultAmbient.
//
// Parameters:
//   - ambient: the ambient intensity
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientIntensity(ambient float32) SceneBuilderOption {
	return func(s *scene) {
		s.lights.SetAmbient(ambient)
	}
}

// WithPrepWorkers sets the number of worker goroutines used during the
// parallel packing phase of Prepare. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput for scenes with many objects; lower
// values reduce scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of prep workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPrepWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.prepWorkers = n
	}
}

// WithCullingDisabled disables per-object frustum culling for the scene.
// When disabled every visible object is drawn regardless of its position
// relative to the camera frustum. By default culling is enabled.
//
// Parameters:
//   - disabled: true to disable frustum culling, false to enable it (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}
