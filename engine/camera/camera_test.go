package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimforge/kiss3d/common"
)

func TestArcBallEyeMatchesConstructor(t *testing.T) {
	cam := NewArcBall(3, 4, 5)

	eye := cam.Eye()
	assert.InDelta(t, 3, eye[0], 1e-4)
	assert.InDelta(t, 4, eye[1], 1e-4)
	assert.InDelta(t, 5, eye[2], 1e-4)
}

func TestArcBallFocusProjectsToViewAxis(t *testing.T) {
	cam := NewArcBall(0, 0, 10, WithArcBallFocus(1, 2, 3))

	view := cam.ViewMatrix()
	p := common.Mul4Vec4(view[:], 1, 2, 3, 1)

	// The focus point sits on the view axis, in front of the camera.
	assert.InDelta(t, 0, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)
	assert.Less(t, p[2], float32(0))
}

func TestArcBallScrollClampsDistance(t *testing.T) {
	cam := NewArcBall(0, 0, 5, WithArcBallDistanceLimits(1, 10))

	for range 100 {
		cam.HandleScroll(1)
	}
	eye := cam.Eye()
	dist := float32(math.Sqrt(float64(eye[0]*eye[0] + eye[1]*eye[1] + eye[2]*eye[2])))
	assert.InDelta(t, 1, dist, 1e-3)

	for range 100 {
		cam.HandleScroll(-1)
	}
	eye = cam.Eye()
	dist = float32(math.Sqrt(float64(eye[0]*eye[0] + eye[1]*eye[1] + eye[2]*eye[2])))
	assert.InDelta(t, 10, dist, 1e-3)
}

func TestArcBallDragRotatesOnlyWhilePressed(t *testing.T) {
	cam := NewArcBall(0, 0, 5)

	// First move only records the cursor position.
	cam.HandleCursorMove(100, 100)
	before := cam.Eye()

	cam.HandleCursorMove(150, 100)
	assert.Equal(t, before, cam.Eye(), "move without a pressed button must not rotate")

	cam.HandleMouseButton(MouseButtonLeft, true)
	cam.HandleCursorMove(250, 100)
	cam.HandleMouseButton(MouseButtonLeft, false)
	assert.NotEqual(t, before, cam.Eye())
}

func TestFirstPersonMovesForward(t *testing.T) {
	cam := NewFirstPerson(0, 0, 10, 0, 0, 0, WithFirstPersonSpeed(2))

	cam.HandleKey(common.KeyW, true)
	cam.Update(1)
	cam.HandleKey(common.KeyW, false)

	eye := cam.Eye()
	assert.InDelta(t, 0, eye[0], 1e-4)
	assert.InDelta(t, 0, eye[1], 1e-4)
	assert.InDelta(t, 8, eye[2], 1e-4, "one second at speed 2 toward the origin")
}

func TestFirstPersonDiagonalMovementIsNormalized(t *testing.T) {
	cam := NewFirstPerson(0, 0, 0, 0, 0, -1, WithFirstPersonSpeed(1))

	cam.HandleKey(common.KeyW, true)
	cam.HandleKey(common.KeyD, true)
	cam.Update(1)

	eye := cam.Eye()
	dist := float32(math.Sqrt(float64(eye[0]*eye[0] + eye[1]*eye[1] + eye[2]*eye[2])))
	assert.InDelta(t, 1, dist, 1e-4)
}

func TestFixedViewCenterMapsToClipOrigin(t *testing.T) {
	cam := NewFixedView()
	cam.SetCenter(42, -7)
	cam.SetAspect(16.0 / 9.0)

	var vp [16]float32
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	common.Mul4(vp[:], proj[:], view[:])

	p := common.Mul4Vec4(vp[:], 42, -7, 0, 1)
	assert.InDelta(t, 0, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)
}

func TestSidescrollIgnoresInput(t *testing.T) {
	cam := NewSidescroll()
	cam.SetCenter(5, 5)

	cam.HandleMouseButton(MouseButtonRight, true)
	cam.HandleCursorMove(0, 0)
	cam.HandleCursorMove(300, 300)
	cam.HandleScroll(5)

	assert.Equal(t, [2]float32{5, 5}, cam.Center())
}

func TestPlanarZoomClamped(t *testing.T) {
	cam := NewFixedView()
	cam.SetZoom(-3)
	cam.SetZoom(0)

	// A clamped zoom keeps the projection finite.
	proj := cam.ProjectionMatrix()
	for _, f := range proj {
		require.False(t, math.IsNaN(float64(f)))
		require.False(t, math.IsInf(float64(f), 0))
	}
}

func TestViewUniformsLayout(t *testing.T) {
	cam := NewArcBall(0, 0, 5)
	u := NewViewUniforms(cam, 800, 600)
	buf := u.Marshal()

	require.Len(t, buf, ViewUniformsSize)

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	assert.Equal(t, view[0], readF32(0))
	assert.Equal(t, view[15], readF32(60))
	assert.Equal(t, proj[0], readF32(64))
	assert.Equal(t, float32(800), readF32(128))
	assert.Equal(t, float32(600), readF32(132))
	assert.InDelta(t, 1.0/800.0, readF32(136), 1e-7)
	assert.InDelta(t, 1.0/600.0, readF32(140), 1e-7)
}

func TestFrustumContainsVisiblePoint(t *testing.T) {
	cam := NewArcBall(0, 0, 10)
	f := cam.Frustum()

	assert.True(t, f.ContainsSphere([3]float32{0, 0, 0}, 1), "the focus point is visible")
	assert.False(t, f.ContainsSphere([3]float32{0, 0, 100}, 1), "behind the camera")
}
