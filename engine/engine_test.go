package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityMatrix() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// perspectiveW builds a minimal perspective projection where clip.w equals
// the negated view-space depth, which is all pointSegment reads from it.
func perspectiveW(focal float32) [16]float32 {
	var m [16]float32
	m[0] = focal
	m[5] = focal
	m[11] = -1
	return m
}

func TestPointSegmentSizesWithDepth(t *testing.T) {
	t.Parallel()

	view := identityMatrix()
	proj := perspectiveW(1)
	color := [4]float32{1, 0, 0, 1}

	seg, ok := pointSegment(view, proj, 800, [3]float32{0, 0, -5}, 4, color)
	require.True(t, ok)

	// At depth 5 with focal 1 and an 800px viewport, 4 pixels subtend
	// 4*5/800 = 0.025 world units of half extent along the camera right axis.
	assert.InDelta(t, -0.025, seg.PointA[0], 1e-6)
	assert.InDelta(t, 0.025, seg.PointB[0], 1e-6)
	assert.Equal(t, float32(0), seg.PointA[1])
	assert.Equal(t, float32(-5), seg.PointA[2])
	assert.Equal(t, float32(4), seg.Width)
	assert.Equal(t, color, seg.Color)
}

func TestPointSegmentRejectsBehindCamera(t *testing.T) {
	t.Parallel()

	view := identityMatrix()
	proj := perspectiveW(1)

	_, ok := pointSegment(view, proj, 800, [3]float32{0, 0, 5}, 4, [4]float32{1, 1, 1, 1})
	assert.False(t, ok)
}

func TestPointSegmentFollowsCameraRight(t *testing.T) {
	t.Parallel()

	// 90 degree yaw: camera right in world space is -z.
	var view [16]float32
	view[8] = 1  // row 0: (0, 0, 1) -> right = (0, 0, 1)
	view[5] = 1  // row 1: (0, 1, 0)
	view[2] = -1 // row 2: (-1, 0, 0)
	view[15] = 1
	proj := perspectiveW(1)

	// World point at x = -5 sits 5 units in front of the rotated camera.
	seg, ok := pointSegment(view, proj, 800, [3]float32{-5, 0, 0}, 4, [4]float32{1, 1, 1, 1})
	require.True(t, ok)
	assert.InDelta(t, -0.025, seg.PointA[2], 1e-6)
	assert.InDelta(t, 0.025, seg.PointB[2], 1e-6)
	assert.Equal(t, float32(-5), seg.PointA[0])
}

func TestGrowBytesReusesCapacity(t *testing.T) {
	t.Parallel()

	b := make([]byte, 0, 128)
	grown := growBytes(b, 64)
	assert.Len(t, grown, 64)
	assert.Equal(t, 128, cap(grown))

	regrown := growBytes(grown, 256)
	assert.Len(t, regrown, 256)
}

func TestOpaquePromotesAlpha(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [4]float32{0.2, 0.4, 0.6, 1}, opaque([3]float32{0.2, 0.4, 0.6}))
}

func TestNewEngineDefaults(t *testing.T) {
	t.Parallel()

	e := NewEngine().(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.Equal(t, float32(1), e.lineWidth)
	assert.Equal(t, float32(1), e.pointSize)
	assert.NotNil(t, e.planarCam)
	assert.False(t, e.recording)
	assert.Equal(t, frameIdle, e.frameState)
}

func TestSetTickRateClampsBeforeRunning(t *testing.T) {
	t.Parallel()

	e := NewEngine().(*engine)
	e.SetTickRate(120)
	assert.Equal(t, time.Second/120, e.engineTickRate)

	e.SetTickRate(0)
	assert.Equal(t, time.Second/60, e.engineTickRate)
}

func TestSetTickRateWhileRunningReachesTickLoop(t *testing.T) {
	t.Parallel()

	e := NewEngine().(*engine)
	e.running.Store(true)

	e.SetTickRate(30)
	select {
	case rate := <-e.tickRateChannel:
		assert.Equal(t, time.Second/30, rate)
	default:
		t.Fatal("tick rate change never reached the channel")
	}

	// A pending update is replaced rather than dropped.
	e.SetTickRate(30)
	e.SetTickRate(144)
	select {
	case rate := <-e.tickRateChannel:
		assert.Equal(t, time.Second/144, rate)
	default:
		t.Fatal("tick rate change never reached the channel")
	}
}

func TestBuilderOptionsClampOverlaySizes(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithLineWidth(-2), WithPointSize(8)).(*engine)
	assert.Equal(t, float32(1), e.lineWidth)
	assert.Equal(t, float32(8), e.pointSize)

	e.SetPointSize(0)
	assert.Equal(t, float32(1), e.pointSize)
}

type sinkStub struct {
	frames int
	err    error
}

func (s *sinkStub) WriteFrame(pixels []byte, width, height int) error {
	s.frames++
	return s.err
}

func TestRecordingPauseResume(t *testing.T) {
	t.Parallel()

	sink := &sinkStub{}
	e := NewEngine(WithFrameSink(sink)).(*engine)
	assert.True(t, e.recording)

	e.PauseRecording()
	assert.False(t, e.recording)

	e.ResumeRecording()
	assert.True(t, e.recording)

	// Resuming without a sink stays off.
	e.SetFrameSink(nil)
	e.ResumeRecording()
	assert.False(t, e.recording)
}

func TestRenderFrameOnlyStartsFromIdle(t *testing.T) {
	t.Parallel()

	// The engine has no window or scenes, so any work past the state gate
	// would dereference nil. A frame already in flight must be a no-op.
	e := NewEngine().(*engine)
	e.frameState = frameRequested
	e.renderFrame(0.016)
	assert.Equal(t, frameRequested, e.frameState)

	e.frameState = framePresented
	e.renderFrame(0.016)
	assert.Equal(t, framePresented, e.frameState)
}

func TestFeedFrameSinkRequiresPresentedFrame(t *testing.T) {
	t.Parallel()

	sink := &sinkStub{}
	e := NewEngine(WithFrameSink(sink)).(*engine)
	require.True(t, e.recording)

	// No capture before a present: a nil renderer would panic past the gate.
	e.frameState = frameIdle
	e.feedFrameSink(nil)
	assert.Zero(t, sink.frames)

	e.frameState = frameRequested
	e.feedFrameSink(nil)
	assert.Zero(t, sink.frames)
}

func TestQuitIsIdempotent(t *testing.T) {
	t.Parallel()

	e := NewEngine().(*engine)
	e.Quit()
	e.Quit()

	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel should be closed")
	}
}

func TestSnapWithoutScenes(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	_, _, _, err := e.Snap()
	require.Error(t, err)
}
