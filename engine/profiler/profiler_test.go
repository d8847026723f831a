package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsAfterInterval(t *testing.T) {
	t.Parallel()

	p := NewProfiler()
	assert.False(t, p.Tick(), "first tick should not report")

	p.updateInterval = 0
	assert.True(t, p.Tick(), "tick past the interval should report")
	assert.Equal(t, 0, p.frameCount, "frame count resets after a report")

	p.updateInterval = time.Hour
	assert.False(t, p.Tick())
	assert.Equal(t, 1, p.frameCount)
}
