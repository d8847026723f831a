package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/dimforge/kiss3d/common"
)

// pitchLimit keeps the orbit camera away from the poles so the up vector
// never becomes colinear with the view direction.
const pitchLimit = math32.Pi/2 - 0.01

// arcBallImpl is the implementation of the arc-ball orbit camera.
type arcBallImpl struct {
	mu sync.Mutex

	focus    [3]float32
	yaw      float32
	pitch    float32
	dist     float32
	minDist  float32
	maxDist  float32
	fov      float32
	aspect   float32
	near     float32
	far      float32
	rotating bool
	panning  bool
	lastX    float64
	lastY    float64
	hasLast  bool

	view [16]float32
	proj [16]float32
}

var _ Camera = &arcBallImpl{}

// NewArcBall creates an orbit camera looking at the origin from the given
// eye position. Dragging with the left button rotates, the right button
// pans the focus point, and the scroll wheel zooms.
//
// Parameters:
//   - eyeX, eyeY, eyeZ: initial camera position
//   - options: functional options to customize the camera
//
// Returns:
//   - Camera: the configured camera
func NewArcBall(eyeX, eyeY, eyeZ float32, options ...ArcBallBuilderOption) Camera {
	c := &arcBallImpl{
		minDist: 0.1,
		maxDist: 1024,
		fov:     45.0 * math32.Pi / 180.0,
		aspect:  1,
		near:    0.1,
		far:     1024,
	}

	dx := eyeX - c.focus[0]
	dy := eyeY - c.focus[1]
	dz := eyeZ - c.focus[2]
	c.dist = math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if c.dist < c.minDist {
		c.dist = c.minDist
	}
	c.yaw = math32.Atan2(dx, dz)
	c.pitch = math32.Asin(dy / c.dist)

	for _, option := range options {
		option(c)
	}

	c.updateMatrices()
	return c
}

func (c *arcBallImpl) Update(_ float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *arcBallImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *arcBallImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *arcBallImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye()
}

func (c *arcBallImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *arcBallImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *arcBallImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *arcBallImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frustumFromMatrices(c.proj, c.view)
}

func (c *arcBallImpl) HandleCursorMove(x, y float64) {
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

	switch {
	case c.rotating:
		c.yaw -= dx * 0.005
		c.pitch += dy * 0.005
		if c.pitch > pitchLimit {
			c.pitch = pitchLimit
		}
		if c.pitch < -pitchLimit {
			c.pitch = -pitchLimit
		}
	case c.panning:
		// Pan in the camera's screen plane, scaled by distance.
		scale := c.dist * 0.002
		sy, cy := math32.Sincos(c.yaw)
		right := [3]float32{cy, 0, -sy}
		up := [3]float32{0, 1, 0}
		c.focus[0] -= (right[0]*dx - up[0]*dy) * scale
		c.focus[1] -= (right[1]*dx - up[1]*dy) * scale
		c.focus[2] -= (right[2]*dx - up[2]*dy) * scale
	default:
		return
	}
	c.updateMatrices()
}

func (c *arcBallImpl) HandleMouseButton(button int, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch button {
	case MouseButtonLeft:
		c.rotating = pressed
	case MouseButtonRight:
		c.panning = pressed
	}
}

func (c *arcBallImpl) HandleScroll(dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dist *= 1 - float32(dy)*0.1
	if c.dist < c.minDist {
		c.dist = c.minDist
	}
	if c.dist > c.maxDist {
		c.dist = c.maxDist
	}
	c.updateMatrices()
}

func (c *arcBallImpl) HandleKey(_ int, _ bool) {}

// eye computes the camera position from the orbit parameters.
// Caller must hold the mutex.
func (c *arcBallImpl) eye() [3]float32 {
	sp, cp := math32.Sincos(c.pitch)
	sy, cy := math32.Sincos(c.yaw)
	return [3]float32{
		c.focus[0] + c.dist*cp*sy,
		c.focus[1] + c.dist*sp,
		c.focus[2] + c.dist*cp*cy,
	}
}

// updateMatrices recomputes the view and projection matrices.
// Caller must hold the mutex.
func (c *arcBallImpl) updateMatrices() {
	eye := c.eye()
	common.LookAt(c.view[:],
		eye[0], eye[1], eye[2],
		c.focus[0], c.focus[1], c.focus[2],
		0, 1, 0,
	)
	common.Perspective(c.proj[:], c.fov, c.aspect, c.near, c.far)
}
