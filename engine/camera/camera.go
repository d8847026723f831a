package camera

import (
	"github.com/dimforge/kiss3d/common"
)

// Mouse button identifiers forwarded by the window layer.
const (
	MouseButtonLeft = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Camera defines the interface for a 3D camera. A camera consumes the input
// events the window forwards to it and produces the view and projection
// matrices consumed by the per-frame uniforms. The concrete kinds are a
// small closed set (arc-ball orbit, first person, fixed-view and
// sidescroll planar cameras).
type Camera interface {
	// Update advances time-dependent camera state.
	// Called once per frame before the frame uniforms are rebuilt.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	Update(dt float32)

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// Eye returns the camera position in world space.
	//
	// Returns:
	//   - [3]float32: the eye position
	Eye() [3]float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetAspect sets the viewport aspect ratio (width / height) and
	// recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Frustum returns the world-space view frustum for visibility tests.
	//
	// Returns:
	//   - common.Frustum: the current frustum
	Frustum() common.Frustum

	// HandleCursorMove processes a cursor position event.
	//
	// Parameters:
	//   - x, y: cursor position in screen pixels
	HandleCursorMove(x, y float64)

	// HandleMouseButton processes a button press or release.
	//
	// Parameters:
	//   - button: MouseButtonLeft, MouseButtonRight or MouseButtonMiddle
	//   - pressed: true on press, false on release
	HandleMouseButton(button int, pressed bool)

	// HandleScroll processes a scroll wheel event.
	//
	// Parameters:
	//   - dy: vertical scroll offset
	HandleScroll(dy float64)

	// HandleKey processes a key press or release.
	//
	// Parameters:
	//   - key: a common.Key* value
	//   - pressed: true on press, false on release
	HandleKey(key int, pressed bool)
}

// frustumFromMatrices is the shared frustum computation for every camera kind.
func frustumFromMatrices(proj, view [16]float32) common.Frustum {
	var vp [16]float32
	common.Mul4(vp[:], proj[:], view[:])
	return common.ExtractFrustumFromMatrix(vp[:])
}
