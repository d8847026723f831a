package engine

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dimforge/kiss3d/engine/camera"
	"github.com/dimforge/kiss3d/engine/profiler"
	"github.com/dimforge/kiss3d/engine/renderer"
	"github.com/dimforge/kiss3d/engine/scene"
	"github.com/dimforge/kiss3d/engine/window"
)

// frameState tracks where the render loop is within a single frame.
// The loop moves Idle -> FrameRequested -> FramePresented -> Idle; a failed
// surface acquisition skips straight back to Idle for the next iteration.
type frameState uint8

const (
	frameIdle frameState = iota
	frameRequested
	framePresented
)

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	frameState frameState

	// Immediate-mode overlay rendering state, initialized lazily on the first
	// frame that drains a non-empty draw list.
	overlay   overlayResources
	planarCam camera.PlanarCamera
	lineWidth float32
	pointSize float32

	// Recording state. While a sink is set and recording is active, the
	// engine feeds every presented frame's pixels to the sink.
	sinkMu    sync.Mutex
	frameSink window.FrameSink
	recording bool
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame.
	// Use this for per-frame updates that must stay in lockstep with drawing,
	// such as queueing immediate-mode overlay commands.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order during the render loop.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// SetLineWidth sets the pixel width of lines queued via Window.DrawLine
	// and Window.DrawPlanarLine.
	//
	// Parameters:
	//   - px: line width in pixels (values <= 0 reset to 1)
	SetLineWidth(px float32)

	// SetPointSize sets the pixel size of points queued via Window.DrawPoint.
	//
	// Parameters:
	//   - px: point size in pixels (values <= 0 reset to 1)
	SetPointSize(px float32)

	// SetPlanarCamera replaces the camera used by the planar line overlay.
	//
	// Parameters:
	//   - cam: the 2D camera mapping planar coordinates to the screen
	SetPlanarCamera(cam camera.PlanarCamera)

	// PlanarCamera returns the camera used by the planar line overlay.
	//
	// Returns:
	//   - camera.PlanarCamera: the active planar camera
	PlanarCamera() camera.PlanarCamera

	// Snap reads back the most recently rendered frame as tightly packed
	// RGBA pixels. Only valid once at least one frame has been presented.
	//
	// Returns:
	//   - []byte: RGBA pixel data, 4 bytes per pixel, row-major
	//   - int: frame width in pixels
	//   - int: frame height in pixels
	//   - error: an error if no frame has been rendered or the readback fails
	Snap() ([]byte, int, int, error)

	// SetFrameSink installs a recording sink and starts feeding it rendered
	// frames. Pass nil to remove the sink and stop recording. A sink error
	// stops recording without removing the sink.
	//
	// Parameters:
	//   - sink: the frame consumer, or nil to stop recording
	SetFrameSink(sink window.FrameSink)

	// PauseRecording suspends frame delivery to the sink without removing it.
	PauseRecording()

	// ResumeRecording restarts frame delivery to a previously paused sink.
	// No-op when no sink is installed.
	ResumeRecording()

	// Run starts the main engine loop (blocks until window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes the quit machinery and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		planarCam:        camera.NewFixedView(),
		lineWidth:        1,
		pointSize:        1,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			for _, s := range e.scenes {
				if r := s.Renderer(); r != nil {
					r.Resize(width, height)
				}
				if c := s.Camera(); c != nil {
					c.SetAspect(float32(width) / float32(height))
				}
			}
			e.planarCam.SetAspect(float32(width) / float32(height))
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
	e.overlay.release()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle marks the engine running and launches the engine, render, and quit
// goroutines. Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running.Store(true)
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Each iteration prepares active scenes in ascending z-index order, renders them
// into a single frame, draws the immediate-mode overlays on top, and presents.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			e.renderFrame(dt)

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame executes one full frame: prepare every active scene, then draw
// them all into a single render pass in ascending z-index order, draw the
// queued overlays on top, and present. All scenes sharing the same renderer
// are rendered within one pass, enabling layered compositing.
//
// The frame state machine gates each stage: a frame only begins from
// frameIdle, submission and present require frameRequested, and the sink is
// fed only from framePresented.
func (e *engine) renderFrame(dt float32) {
	if e.frameState != frameIdle {
		return
	}
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var activeScenes []scene.Scene
	for _, k := range keys {
		s := e.scenes[k]
		if s.Active() {
			activeScenes = append(activeScenes, s)
		}
	}
	if len(activeScenes) == 0 {
		// Nothing to draw; drop the queued overlay commands for this frame.
		e.window.DrainDrawLists()
		return
	}

	// The first active scene's renderer owns the frame lifecycle.
	frameRenderer := activeScenes[0].Renderer()
	frameCamera := activeScenes[0].Camera()
	if frameRenderer == nil {
		return
	}

	// Prepare runs outside the render pass so instance uploads and uniform
	// writes land before any draw encodes.
	for _, s := range activeScenes {
		if err := s.Prepare(dt); err != nil {
			slog.Warn("scene prepare failed", "scene", s.Name(), "error", err)
		}
	}

	// A failed acquisition means the surface was lost or outdated; the
	// renderer reconfigures on the next attempt, so skip this frame and
	// stay in frameIdle.
	if err := frameRenderer.BeginFrame(); err != nil {
		return
	}
	e.frameState = frameRequested

	for _, s := range activeScenes {
		if err := s.Render(); err != nil {
			slog.Warn("scene render failed", "scene", s.Name(), "error", err)
		}
	}

	if err := e.renderOverlays(frameRenderer, frameCamera); err != nil {
		slog.Warn("overlay render failed", "error", err)
	}

	if e.frameState == frameRequested {
		frameRenderer.EndFrame()
		frameRenderer.Present()
		e.frameState = framePresented
	}

	if frameCamera != nil {
		frameRenderer.AdvancePostEffects(dt, frameCamera.Near(), frameCamera.Far())
	}

	e.feedFrameSink(frameRenderer)
	e.frameState = frameIdle
}

// feedFrameSink delivers the presented frame to the recording sink, if one
// is installed and recording is active. A write error stops recording but
// keeps the sink installed so it can be resumed.
// feedFrameSink hands the presented frame to the active sink. It captures
// only after a successful present, so a skipped or failed frame never
// produces a stale recording entry.
func (e *engine) feedFrameSink(r renderer.Renderer) {
	if e.frameState != framePresented {
		return
	}
	e.sinkMu.Lock()
	sink := e.frameSink
	active := e.recording
	e.sinkMu.Unlock()
	if sink == nil || !active {
		return
	}

	pixels, w, h, err := r.CaptureFrame()
	if err != nil {
		slog.Warn("frame capture failed", "error", err)
		return
	}
	if err := sink.WriteFrame(pixels, w, h); err != nil {
		slog.Warn("frame sink rejected frame, recording paused", "error", err)
		e.PauseRecording()
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running.Load() {
		// Send to channel for immediate update in running engine loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) SetLineWidth(px float32) {
	if px <= 0 {
		px = 1
	}
	e.lineWidth = px
}

func (e *engine) SetPointSize(px float32) {
	if px <= 0 {
		px = 1
	}
	e.pointSize = px
}

func (e *engine) SetPlanarCamera(cam camera.PlanarCamera) {
	if cam == nil {
		return
	}
	e.planarCam = cam
}

func (e *engine) PlanarCamera() camera.PlanarCamera {
	return e.planarCam
}

func (e *engine) Snap() ([]byte, int, int, error) {
	for _, s := range e.scenes {
		if !s.Active() {
			continue
		}
		if r := s.Renderer(); r != nil {
			return r.CaptureFrame()
		}
	}
	return nil, 0, 0, errors.New("engine: no active scene to capture")
}

func (e *engine) SetFrameSink(sink window.FrameSink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.frameSink = sink
	e.recording = sink != nil
}

func (e *engine) PauseRecording() {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.recording = false
}

func (e *engine) ResumeRecording() {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.recording = e.frameSink != nil
}
