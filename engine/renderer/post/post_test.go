package post

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF32(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(buf))
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestEffectUniformsLayout(t *testing.T) {
	u := EffectUniforms{
		NX:         0.25,
		NY:         0.5,
		ZNear:      0.1,
		ZFar:       1024.0,
		Threshold:  0.75,
		TimeOffset: 3.5,
		Kappa:      [4]float32{1.0, 1.7, 0.7, 15.0},
	}

	buf := u.Marshal()
	require.Len(t, buf, EffectUniformsSize)

	assert.Equal(t, float32(0.25), readF32(t, buf, 0))
	assert.Equal(t, float32(0.5), readF32(t, buf, 4))
	assert.Equal(t, float32(0.1), readF32(t, buf, 8))
	assert.Equal(t, float32(1024.0), readF32(t, buf, 12))
	assert.Equal(t, float32(0.75), readF32(t, buf, 16))
	assert.Equal(t, float32(3.5), readF32(t, buf, 20))

	// Padding before the distortion coefficients stays zeroed.
	assert.Equal(t, float32(0), readF32(t, buf, 24))
	assert.Equal(t, float32(0), readF32(t, buf, 28))

	assert.Equal(t, float32(1.0), readF32(t, buf, 32))
	assert.Equal(t, float32(1.7), readF32(t, buf, 36))
	assert.Equal(t, float32(0.7), readF32(t, buf, 40))
	assert.Equal(t, float32(15.0), readF32(t, buf, 44))
}

func TestLuminancePureRed(t *testing.T) {
	assert.InDelta(t, 0.2126, Luminance(1, 0, 0), 1e-6)
	assert.InDelta(t, 0.7152, Luminance(0, 1, 0), 1e-6)
	assert.InDelta(t, 0.0722, Luminance(0, 0, 1), 1e-6)
	assert.InDelta(t, 1.0, Luminance(1, 1, 1), 1e-6)
}

func TestGrayscaleShaderUsesLuminanceWeights(t *testing.T) {
	e := NewGrayscale()
	assert.Contains(t, e.Source(), "0.2126, 0.7152, 0.0722")
	assert.False(t, e.NeedsDepth())
}

func TestWavesAccumulatesPhase(t *testing.T) {
	e := NewWaves()
	e.Update(1.0, 800, 600, 0.1, 1024)

	// Three quarters of a full wave cycle after one second.
	assert.InDelta(t, 2.0*math.Pi*0.75, float64(e.Uniforms().TimeOffset), 1e-4)

	e.Update(1.0, 800, 600, 0.1, 1024)
	assert.InDelta(t, 2.0*2.0*math.Pi*0.75, float64(e.Uniforms().TimeOffset), 1e-4)
}

func TestSobelTracksViewportAndPlanes(t *testing.T) {
	e := NewSobelEdgeHighlight(0.5)
	require.True(t, e.NeedsDepth())

	e.Update(0.016, 800, 400, 0.1, 256)
	u := e.Uniforms()
	assert.InDelta(t, 2.0/800.0, float64(u.NX), 1e-7)
	assert.InDelta(t, 2.0/400.0, float64(u.NY), 1e-7)
	assert.Equal(t, float32(0.1), u.ZNear)
	assert.Equal(t, float32(256), u.ZFar)
	assert.Equal(t, float32(0.5), u.Threshold)
}

func TestOculusPinsDistortionCoefficients(t *testing.T) {
	e := NewOculusStereo()
	assert.Equal(t, [4]float32{1.0, 1.7, 0.7, 15.0}, e.Uniforms().Kappa)
	assert.False(t, e.NeedsDepth())
}

func TestEffectKeysAreUnique(t *testing.T) {
	effects := []Effect{NewGrayscale(), NewWaves(), NewSobelEdgeHighlight(0.25), NewOculusStereo()}
	seen := make(map[string]bool, len(effects))
	for _, e := range effects {
		assert.False(t, seen[e.Key()], "duplicate effect key %q", e.Key())
		seen[e.Key()] = true
		assert.NotEmpty(t, e.Source())
	}
}
