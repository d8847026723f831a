package renderer

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipSegmentNearKeepsFrontSegmentsUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for range 200 {
		w := rng.Float32()*10 + 0.1
		a := [4]float32{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32() * w, w}
		b := [4]float32{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32() * w, w}

		ca, cb, keep := clipSegmentNear(a, b)
		require.True(t, keep)
		assert.Equal(t, a, ca)
		assert.Equal(t, b, cb)
	}
}

func TestClipSegmentNearMovesBehindEndpointOntoPlane(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for range 200 {
		w := rng.Float32()*10 + 0.1
		// a in front, b behind the near plane
		a := [4]float32{rng.Float32(), rng.Float32(), rng.Float32() * w * 0.99, w}
		b := [4]float32{rng.Float32(), rng.Float32(), w + rng.Float32()*5 + 0.01, w}

		ca, cb, keep := clipSegmentNear(a, b)
		require.True(t, keep)
		assert.Equal(t, a, ca)

		// The clipped endpoint sits on the plane z == w.
		assert.InDelta(t, cb[3], cb[2], 1e-3)

		// And lies between the original endpoints.
		tVal := nearClipT(b[2]-b[3], a[2]-a[3])
		assert.GreaterOrEqual(t, tVal, float32(0))
		assert.LessOrEqual(t, tVal, float32(1))
	}
}

func TestClipSegmentNearDropsFullyBehindSegments(t *testing.T) {
	a := [4]float32{0, 0, 2, 1}
	b := [4]float32{1, 1, 3, 1}

	_, _, keep := clipSegmentNear(a, b)
	assert.False(t, keep)
}

func TestSegmentTangentDegenerateFallback(t *testing.T) {
	tx, ty := segmentTangent(0, 0)
	assert.Equal(t, float32(1), tx)
	assert.Equal(t, float32(0), ty)

	nx, ny := segmentNormal(tx, ty)
	assert.Equal(t, float32(0), nx)
	assert.Equal(t, float32(1), ny)

	// Tiny but nonzero directions must not produce NaN either.
	tx, ty = segmentTangent(1e-9, -1e-9)
	assert.False(t, math32.IsNaN(tx))
	assert.False(t, math32.IsNaN(ty))
}

func TestSegmentTangentIsUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	for range 100 {
		dx := rng.Float32()*200 - 100
		dy := rng.Float32()*200 - 100
		if dx == 0 && dy == 0 {
			continue
		}
		tx, ty := segmentTangent(dx, dy)
		assert.InDelta(t, 1, math32.Hypot(tx, ty), 1e-4)

		nx, ny := segmentNormal(tx, ty)
		assert.InDelta(t, 0, tx*nx+ty*ny, 1e-5)
	}
}

func TestScreenClipRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	const vw, vh = 800, 600

	for range 100 {
		x := rng.Float32() * vw
		y := rng.Float32() * vh
		z := rng.Float32()
		w := rng.Float32()*5 + 0.1

		clip := screenToClip(x, y, z, w, vw, vh)
		assert.Equal(t, z, clip[2])
		assert.Equal(t, w, clip[3])

		rx, ry := clipToScreen(clip, vw, vh)
		assert.InDelta(t, x, rx, 1e-2)
		assert.InDelta(t, y, ry, 1e-2)
	}
}

func TestQuadCornerTemplateSpansBothEndpointsAndSides(t *testing.T) {
	seenEndpoint := map[float32]bool{}
	seenSide := map[float32]bool{}

	for i := uint32(0); i < 6; i++ {
		x, y := quadCorner(i)
		assert.Contains(t, []float32{0, 1}, x)
		assert.Contains(t, []float32{-0.5, 0.5}, y)
		seenEndpoint[x] = true
		seenSide[y] = true
	}

	assert.Len(t, seenEndpoint, 2)
	assert.Len(t, seenSide, 2)

	// The two triangles share the diagonal corners (1, 0.5) and (0, -0.5).
	x3, y3 := quadCorner(3)
	x0, y0 := quadCorner(0)
	assert.Equal(t, x0, x3)
	assert.Equal(t, y0, y3)
	x4, y4 := quadCorner(4)
	x2, y2 := quadCorner(2)
	assert.Equal(t, x2, x4)
	assert.Equal(t, y2, y4)
}
