package renderer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimforge/kiss3d/engine/renderer/post"
)

func TestCaptureFrameBeforeFirstFrame(t *testing.T) {
	// Capture is enabled by default but no frame has been copied yet. The
	// guard must not demand a post-processing chain: capture works on the
	// plain swapchain path too.
	b := &wgpuRendererBackendImpl{mu: &sync.Mutex{}, captureEnabled: true}

	_, _, _, err := b.CaptureFrame()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no frame has been captured")
}

func TestCaptureFrameDisabled(t *testing.T) {
	b := &wgpuRendererBackendImpl{mu: &sync.Mutex{}}

	_, _, _, err := b.CaptureFrame()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestSetFrameCaptureToggles(t *testing.T) {
	b := &wgpuRendererBackendImpl{mu: &sync.Mutex{}, captureEnabled: true}

	b.SetFrameCapture(false)
	assert.False(t, b.captureEnabled)

	b.SetFrameCapture(true)
	assert.True(t, b.captureEnabled)
}

func TestOffscreenFailureFallsBackToSwapchainPath(t *testing.T) {
	// After a failed target creation the offscreen views are nil, so the
	// frame path predicates in BeginFrame and EndFrame must stay on the
	// swapchain even though a post chain is registered.
	b := &wgpuRendererBackendImpl{mu: &sync.Mutex{}}
	b.postChain = []post.Effect{post.NewGrayscale()}
	b.releaseOffscreenTargets()

	assert.Nil(t, b.offscreenView[0])
	assert.Nil(t, b.offscreenDepth)
	assert.False(t, len(b.postChain) > 0 && b.offscreenView[0] != nil)
}

func TestPackTightRowsDropsRowPadding(t *testing.T) {
	const (
		width       = 3
		height      = 2
		bytesPerRow = 256 // copies align rows to 256 bytes
	)

	src := make([]byte, bytesPerRow*height)
	for row := 0; row < height; row++ {
		for i := 0; i < width*4; i++ {
			src[row*bytesPerRow+i] = byte(row*100 + i)
		}
	}

	pixels := packTightRows(src, width, height, bytesPerRow)
	require.Len(t, pixels, width*4*height)
	for row := 0; row < height; row++ {
		for i := 0; i < width*4; i++ {
			assert.Equal(t, byte(row*100+i), pixels[row*width*4+i])
		}
	}
}
