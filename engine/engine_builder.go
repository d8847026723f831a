package engine

import (
	"time"

	"github.com/dimforge/kiss3d/engine/camera"
	"github.com/dimforge/kiss3d/engine/scene"
	"github.com/dimforge/kiss3d/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// The tick callback will be called at this rate for game logic updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Scenes are rendered in ascending key order during the render loop.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// WithLineWidth sets the pixel width of immediate-mode overlay lines.
// Values <= 0 are treated as 1.
//
// Parameters:
//   - px: line width in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLineWidth(px float32) EngineBuilderOption {
	return func(e *engine) {
		if px <= 0 {
			px = 1
		}
		e.lineWidth = px
	}
}

// WithPointSize sets the pixel size of immediate-mode overlay points.
// Values <= 0 are treated as 1.
//
// Parameters:
//   - px: point size in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPointSize(px float32) EngineBuilderOption {
	return func(e *engine) {
		if px <= 0 {
			px = 1
		}
		e.pointSize = px
	}
}

// WithPlanarCamera sets the camera used by the planar line overlay.
// Defaults to a fixed-view 2D camera when not provided.
//
// Parameters:
//   - cam: the 2D camera mapping planar coordinates to the screen
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPlanarCamera(cam camera.PlanarCamera) EngineBuilderOption {
	return func(e *engine) {
		if cam != nil {
			e.planarCam = cam
		}
	}
}

// WithFrameSink installs a recording sink during construction. The engine
// feeds it every presented frame until recording is paused or the sink is
// removed.
//
// Parameters:
//   - sink: the frame consumer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSink(sink window.FrameSink) EngineBuilderOption {
	return func(e *engine) {
		e.frameSink = sink
		e.recording = sink != nil
	}
}
