package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Mouse button identifiers passed to the mouse button callback.
const (
	MouseButtonLeft = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface,
// and collects the immediate-mode overlay draw lists consumed once per frame.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the callback for mouse button press and release.
	//
	// Parameters:
	//   - callback: function receiving the button (MouseButtonLeft/Right/Middle),
	//     the pressed state, and the cursor position in pixels
	SetMouseButtonCallback(callback func(button int, pressed bool, x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// SetTitle replaces the window title.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SetCursorVisible shows or hides the system cursor over the window.
	//
	// Parameters:
	//   - visible: true to show the cursor, false to hide it
	SetCursorVisible(visible bool)

	// Hide makes the window invisible without destroying it.
	Hide()

	// Show makes a hidden window visible again.
	Show()

	// CursorPos returns the last known cursor position in pixels.
	//
	// Returns:
	//   - x, y: the cursor position
	CursorPos() (x, y int32)

	// KeyPressed reports whether the given virtual key code is currently held.
	//
	// Parameters:
	//   - keyCode: the virtual key code to query
	//
	// Returns:
	//   - bool: true while the key is held
	KeyPressed(keyCode uint32) bool

	// MouseButtonPressed reports whether the given mouse button is currently held.
	//
	// Parameters:
	//   - button: MouseButtonLeft, MouseButtonRight or MouseButtonMiddle
	//
	// Returns:
	//   - bool: true while the button is held
	MouseButtonPressed(button int) bool

	// DrawLine queues a world-space line segment for the current frame's overlay.
	//
	// Parameters:
	//   - a, b: the segment endpoints in world space
	//   - color: the RGB line color
	DrawLine(a, b [3]float32, color [3]float32)

	// DrawPlanarLine queues a screen-aligned 2D line segment for the current frame's overlay.
	//
	// Parameters:
	//   - a, b: the segment endpoints in planar world coordinates
	//   - color: the RGB line color
	DrawPlanarLine(a, b [2]float32, color [3]float32)

	// DrawPoint queues a world-space point for the current frame's overlay.
	//
	// Parameters:
	//   - p: the point position in world space
	//   - color: the RGB point color
	DrawPoint(p [3]float32, color [3]float32)

	// DrawText queues a screen-space text string for the current frame's overlay.
	//
	// Parameters:
	//   - s: the text to draw
	//   - x, y: the top-left position in screen pixels
	//   - scale: glyph scale factor
	//   - color: the RGBA text color
	DrawText(s string, x, y, scale float32, color [4]float32)

	// DrainDrawLists returns the queued overlay commands and clears the lists.
	// Called once per frame by the render loop.
	//
	// Returns:
	//   - DrawLists: the commands queued since the previous drain
	DrainDrawLists() DrawLists
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, event callbacks, and the per-frame
// overlay draw lists.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current window client area width in pixels.
	width int

	// height is the current window client area height in pixels.
	height int

	// hidden creates the window invisible until Show is called.
	hidden bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the window is resized.
	onResize func(width, height int)

	// onScroll is called for mouse wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	onScroll func(delta float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)

	// onMouseButton is called when a mouse button is pressed or released.
	onMouseButton func(button int, pressed bool, x, y int32)

	// onMouseMove is called when the mouse moves within the window.
	onMouseMove func(x, y int32)

	// Input state tracked from the GLFW callbacks for polling queries.
	cursorX, cursorY int32
	keysDown         map[uint32]bool
	buttonsDown      [3]bool

	// drawMu guards the overlay draw lists, which user code may append to
	// from the update callback while the render loop drains them.
	drawMu    sync.Mutex
	drawLists DrawLists
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window (not yet spawned)
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "kiss3d",
		maxWidth:  1600,
		maxHeight: 1200,
		minWidth:  600,
		minHeight: 200,
		width:     1280,
		height:    720,
		keysDown:  make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button int, pressed bool, x, y int32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SetCursorVisible(visible bool) {
	platformSetCursorVisible(w, visible)
}

func (w *engineWindow) Hide() {
	platformSetVisible(w, false)
}

func (w *engineWindow) Show() {
	platformSetVisible(w, true)
}

func (w *engineWindow) CursorPos() (int32, int32) {
	return w.cursorX, w.cursorY
}

func (w *engineWindow) KeyPressed(keyCode uint32) bool {
	return w.keysDown[keyCode]
}

func (w *engineWindow) MouseButtonPressed(button int) bool {
	if button < 0 || button >= len(w.buttonsDown) {
		return false
	}
	return w.buttonsDown[button]
}

func (w *engineWindow) DrawLine(a, b [3]float32, color [3]float32) {
	w.drawMu.Lock()
	defer w.drawMu.Unlock()
	w.drawLists.Lines = append(w.drawLists.Lines, LineCommand{A: a, B: b, Color: color})
}

func (w *engineWindow) DrawPlanarLine(a, b [2]float32, color [3]float32) {
	w.drawMu.Lock()
	defer w.drawMu.Unlock()
	w.drawLists.PlanarLines = append(w.drawLists.PlanarLines, PlanarLineCommand{A: a, B: b, Color: color})
}

func (w *engineWindow) DrawPoint(p [3]float32, color [3]float32) {
	w.drawMu.Lock()
	defer w.drawMu.Unlock()
	w.drawLists.Points = append(w.drawLists.Points, PointCommand{Position: p, Color: color})
}

func (w *engineWindow) DrawText(s string, x, y, scale float32, color [4]float32) {
	w.drawMu.Lock()
	defer w.drawMu.Unlock()
	w.drawLists.Texts = append(w.drawLists.Texts, TextCommand{Text: s, X: x, Y: y, Scale: scale, Color: color})
}

func (w *engineWindow) DrainDrawLists() DrawLists {
	w.drawMu.Lock()
	defer w.drawMu.Unlock()
	lists := w.drawLists
	w.drawLists = DrawLists{}
	return lists
}
