package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/dimforge/kiss3d/common"
)

// firstPersonImpl is the implementation of the free-flying first person camera.
type firstPersonImpl struct {
	mu sync.Mutex

	position [3]float32
	yaw      float32
	pitch    float32
	speed    float32
	fov      float32
	aspect   float32
	near     float32
	far      float32

	looking bool
	lastX   float64
	lastY   float64
	hasLast bool
	keys    map[int]bool

	view [16]float32
	proj [16]float32
}

var _ Camera = &firstPersonImpl{}

// NewFirstPerson creates a free-flying camera at the given position looking
// toward the given target. WASD moves in the view plane, Q and E move
// vertically, and dragging with the right button looks around.
//
// Parameters:
//   - eyeX, eyeY, eyeZ: initial camera position
//   - atX, atY, atZ: initial look-at target
//   - options: functional options to customize the camera
//
// Returns:
//   - Camera: the configured camera
func NewFirstPerson(eyeX, eyeY, eyeZ, atX, atY, atZ float32, options ...FirstPersonBuilderOption) Camera {
	c := &firstPersonImpl{
		position: [3]float32{eyeX, eyeY, eyeZ},
		speed:    8,
		fov:      45.0 * math32.Pi / 180.0,
		aspect:   1,
		near:     0.1,
		far:      1024,
		keys:     make(map[int]bool),
	}

	dx := atX - eyeX
	dy := atY - eyeY
	dz := atZ - eyeZ
	dir := common.NormalizeVec3([3]float32{dx, dy, dz}, [3]float32{0, 0, -1})
	c.yaw = math32.Atan2(-dir[0], -dir[2])
	c.pitch = math32.Asin(dir[1])

	for _, option := range options {
		option(c)
	}

	c.updateMatrices()
	return c
}

func (c *firstPersonImpl) Update(dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	forward := c.forward()
	sy, cy := math32.Sincos(c.yaw)
	right := [3]float32{cy, 0, -sy}

	var move [3]float32
	if c.keys[common.KeyW] {
		move[0] += forward[0]
		move[1] += forward[1]
		move[2] += forward[2]
	}
	if c.keys[common.KeyS] {
		move[0] -= forward[0]
		move[1] -= forward[1]
		move[2] -= forward[2]
	}
	if c.keys[common.KeyD] {
		move[0] += right[0]
		move[2] += right[2]
	}
	if c.keys[common.KeyA] {
		move[0] -= right[0]
		move[2] -= right[2]
	}
	if c.keys[common.KeyE] {
		move[1]++
	}
	if c.keys[common.KeyQ] {
		move[1]--
	}

	if move != [3]float32{} {
		move = common.NormalizeVec3(move, [3]float32{})
		step := c.speed * dt
		c.position[0] += move[0] * step
		c.position[1] += move[1] * step
		c.position[2] += move[2] * step
	}
	c.updateMatrices()
}

func (c *firstPersonImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *firstPersonImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *firstPersonImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *firstPersonImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *firstPersonImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *firstPersonImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *firstPersonImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frustumFromMatrices(c.proj, c.view)
}

func (c *firstPersonImpl) HandleCursorMove(x, y float64) {
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

	if !c.looking {
		return
	}
	c.yaw -= dx * 0.003
	c.pitch -= dy * 0.003
	if c.pitch > pitchLimit {
		c.pitch = pitchLimit
	}
	if c.pitch < -pitchLimit {
		c.pitch = -pitchLimit
	}
	c.updateMatrices()
}

func (c *firstPersonImpl) HandleMouseButton(button int, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if button == MouseButtonRight {
		c.looking = pressed
	}
}

func (c *firstPersonImpl) HandleScroll(dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed *= 1 + float32(dy)*0.1
	if c.speed < 0.1 {
		c.speed = 0.1
	}
}

func (c *firstPersonImpl) HandleKey(key int, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = pressed
}

// forward computes the unit view direction from yaw and pitch.
// Caller must hold the mutex.
func (c *firstPersonImpl) forward() [3]float32 {
	sp, cp := math32.Sincos(c.pitch)
	sy, cy := math32.Sincos(c.yaw)
	return [3]float32{-cp * sy, sp, -cp * cy}
}

// updateMatrices recomputes the view and projection matrices.
// Caller must hold the mutex.
func (c *firstPersonImpl) updateMatrices() {
	f := c.forward()
	common.LookAt(c.view[:],
		c.position[0], c.position[1], c.position[2],
		c.position[0]+f[0], c.position[1]+f[1], c.position[2]+f[2],
		0, 1, 0,
	)
	common.Perspective(c.proj[:], c.fov, c.aspect, c.near, c.far)
}
