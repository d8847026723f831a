package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBareWindow builds an engineWindow without a platform surface so the
// overlay draw list behavior can run headless.
func newBareWindow() *engineWindow {
	return &engineWindow{keysDown: make(map[uint32]bool)}
}

func TestDrainDrawListsReturnsAndClears(t *testing.T) {
	w := newBareWindow()

	w.DrawLine([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{1, 0, 0})
	w.DrawPlanarLine([2]float32{0, 0}, [2]float32{5, 5}, [3]float32{0, 1, 0})
	w.DrawPoint([3]float32{1, 2, 3}, [3]float32{0, 0, 1})
	w.DrawText("fps: 60", 10, 10, 1, [4]float32{1, 1, 1, 1})

	lists := w.DrainDrawLists()
	require.Len(t, lists.Lines, 1)
	require.Len(t, lists.PlanarLines, 1)
	require.Len(t, lists.Points, 1)
	require.Len(t, lists.Texts, 1)
	assert.False(t, lists.Empty())

	assert.Equal(t, [3]float32{1, 0, 0}, lists.Lines[0].B)
	assert.Equal(t, "fps: 60", lists.Texts[0].Text)

	// Commands live for exactly one frame.
	assert.True(t, w.DrainDrawLists().Empty())
}

func TestMouseButtonPressedBounds(t *testing.T) {
	w := newBareWindow()

	assert.False(t, w.MouseButtonPressed(-1))
	assert.False(t, w.MouseButtonPressed(99))

	w.buttonsDown[MouseButtonRight] = true
	assert.True(t, w.MouseButtonPressed(MouseButtonRight))
	assert.False(t, w.MouseButtonPressed(MouseButtonLeft))
}
