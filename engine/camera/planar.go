package camera

import (
	"sync"

	"github.com/dimforge/kiss3d/common"
)

// planarNear and planarFar bound the depth range used by the 2D cameras.
// Planar content lives on the z=0 plane so the exact values only matter
// for depth-buffer precision.
const (
	planarNear = -1024.0
	planarFar  = 1024.0
)

// planarImpl implements both 2D camera kinds. The fixed-view camera owns
// its center and responds to drag and scroll input, the sidescroll camera
// tracks an externally driven point and ignores input.
type planarImpl struct {
	mu sync.Mutex

	center   [2]float32
	zoom     float32
	aspect   float32
	halfSpan float32

	interactive bool
	dragging    bool
	lastX       float64
	lastY       float64
	hasLast     bool

	view [16]float32
	proj [16]float32
}

var _ Camera = &planarImpl{}

// PlanarCamera extends Camera with 2D-specific controls.
type PlanarCamera interface {
	Camera

	// SetCenter moves the camera center in world units.
	//
	// Parameters:
	//   - x, y: the new center
	SetCenter(x, y float32)

	// Center returns the current camera center.
	//
	// Returns:
	//   - [2]float32: the center in world units
	Center() [2]float32

	// SetZoom sets the zoom factor. Values above 1 magnify.
	//
	// Parameters:
	//   - zoom: the zoom factor, clamped to a small positive minimum
	SetZoom(zoom float32)
}

// NewFixedView creates a 2D camera centered on the origin. Dragging with
// the right button pans and the scroll wheel zooms.
//
// Returns:
//   - PlanarCamera: the configured camera
func NewFixedView() PlanarCamera {
	c := &planarImpl{
		zoom:        1,
		aspect:      1,
		halfSpan:    400,
		interactive: true,
	}
	c.updateMatrices()
	return c
}

// NewSidescroll creates a 2D camera that follows a point driven through
// SetCenter. Input events are ignored.
//
// Returns:
//   - PlanarCamera: the configured camera
func NewSidescroll() PlanarCamera {
	c := &planarImpl{
		zoom:     1,
		aspect:   1,
		halfSpan: 400,
	}
	c.updateMatrices()
	return c
}

func (c *planarImpl) Update(_ float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *planarImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *planarImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *planarImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [3]float32{c.center[0], c.center[1], 1}
}

func (c *planarImpl) Near() float32 { return planarNear }

func (c *planarImpl) Far() float32 { return planarFar }

func (c *planarImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *planarImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frustumFromMatrices(c.proj, c.view)
}

func (c *planarImpl) HandleCursorMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasLast {
		c.lastX, c.lastY = x, y
		c.hasLast = true
		return
	}
	dx := float32(x - c.lastX)
	dy := float32(y - c.lastY)
	c.lastX, c.lastY = x, y

	if !c.interactive || !c.dragging {
		return
	}
	scale := c.halfSpan / (c.zoom * 400)
	c.center[0] -= dx * scale
	c.center[1] += dy * scale
	c.updateMatrices()
}

func (c *planarImpl) HandleMouseButton(button int, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interactive && button == MouseButtonRight {
		c.dragging = pressed
	}
}

func (c *planarImpl) HandleScroll(dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.interactive {
		return
	}
	c.setZoomLocked(c.zoom * (1 + float32(dy)*0.1))
}

func (c *planarImpl) HandleKey(_ int, _ bool) {}

func (c *planarImpl) SetCenter(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = [2]float32{x, y}
	c.updateMatrices()
}

func (c *planarImpl) Center() [2]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

func (c *planarImpl) SetZoom(zoom float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setZoomLocked(zoom)
}

// setZoomLocked clamps and applies the zoom. Caller must hold the mutex.
func (c *planarImpl) setZoomLocked(zoom float32) {
	if zoom < 0.001 {
		zoom = 0.001
	}
	c.zoom = zoom
	c.updateMatrices()
}

// updateMatrices recomputes the view and projection matrices.
// Caller must hold the mutex.
func (c *planarImpl) updateMatrices() {
	hw := c.halfSpan * c.aspect / c.zoom
	hh := c.halfSpan / c.zoom
	common.Ortho(c.proj[:],
		c.center[0]-hw, c.center[0]+hw,
		c.center[1]-hh, c.center[1]+hh,
		planarNear, planarFar,
	)
	common.Identity(c.view[:])
}
