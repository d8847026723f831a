package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	l := New(LightTypePoint)
	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, DefaultIntensity, l.Intensity())
	assert.Equal(t, DefaultAttenuationRadius, l.AttenuationRadius())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.True(t, l.Enabled())
}

func TestLightTypeEncoding(t *testing.T) {
	// Part of the GPU contract; reordering the enum breaks shaders silently.
	assert.Equal(t, uint32(0), uint32(LightTypePoint))
	assert.Equal(t, uint32(1), uint32(LightTypeDirectional))
	assert.Equal(t, uint32(2), uint32(LightTypeSpot))
}

func TestDirectionNormalized(t *testing.T) {
	l := NewDirectional(0, -10, 0)
	assert.InDelta(t, -1.0, l.Direction()[1], 1e-6)

	l.SetDirection(0, 0, 0)
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())
}

func TestGPULightLayout(t *testing.T) {
	g := GPULight{
		Position:          [3]float32{1, 2, 3},
		LightType:         uint32(LightTypeSpot),
		Direction:         [3]float32{0, -1, 0},
		Intensity:         3,
		Color:             [3]float32{1, 0.5, 0.25},
		InnerConeCos:      0.9,
		OuterConeCos:      0.8,
		AttenuationRadius: 100,
	}
	require.Equal(t, 64, g.Size())

	buf := g.Marshal()
	require.Len(t, buf, 64)

	f32At := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	assert.Equal(t, float32(1), f32At(0))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, float32(-1), f32At(20))
	assert.Equal(t, float32(3), f32At(28))
	assert.Equal(t, float32(0.25), f32At(40))
	assert.Equal(t, float32(0.9), f32At(44))
	assert.Equal(t, float32(0.8), f32At(48))
	assert.Equal(t, float32(100), f32At(52))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[56:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[60:]))
}

func TestFrameUniformsLayout(t *testing.T) {
	var f FrameUniforms
	require.Equal(t, 656, f.Size())

	f.View[0] = 7
	f.Proj[15] = 9
	f.NumLights = 1
	f.Lights[0] = GPULight{Intensity: 5}
	f.AmbientIntensity = 0.2

	buf := f.Marshal()
	require.Len(t, buf, FrameUniformsSize)

	assert.Equal(t, float32(7), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(9), math.Float32frombits(binary.LittleEndian.Uint32(buf[124:])))
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(buf[128+28:])))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[640:]))
	assert.Equal(t, float32(0.2), math.Float32frombits(binary.LittleEndian.Uint32(buf[644:])))
}

func TestCollectionFirstEightWin(t *testing.T) {
	c := NewCollection()
	for i := 0; i < 12; i++ {
		added := c.Add(CollectedLight{
			Light:         New(LightTypePoint, WithIntensity(float32(i))),
			WorldPosition: [3]float32{float32(i), 0, 0},
		})
		assert.Equal(t, i < MaxLights, added)
	}
	require.Equal(t, MaxLights, c.Len())

	var f FrameUniforms
	c.Fill(&f)
	assert.Equal(t, uint32(MaxLights), f.NumLights)
	// Traversal order is preserved: slot i holds the i-th light added.
	for i := 0; i < MaxLights; i++ {
		assert.Equal(t, float32(i), f.Lights[i].Intensity)
		assert.Equal(t, float32(i), f.Lights[i].Position[0])
	}
}

func TestCollectionResetClearsSlots(t *testing.T) {
	c := NewCollection()
	c.Add(CollectedLight{Light: New(LightTypePoint, WithIntensity(42))})

	var f FrameUniforms
	c.Fill(&f)
	require.Equal(t, uint32(1), f.NumLights)

	c.Reset()
	c.Fill(&f)
	assert.Equal(t, uint32(0), f.NumLights)
	assert.Equal(t, float32(0), f.Lights[0].Intensity)
}

func TestCollectedLightGPU(t *testing.T) {
	cl := CollectedLight{
		Light:          NewSpot(0.3, 0.5, 50, WithColor(1, 0, 0)),
		WorldPosition:  [3]float32{1, 2, 3},
		WorldDirection: [3]float32{0, 0, -1},
	}
	g := cl.GPU()
	assert.Equal(t, uint32(LightTypeSpot), g.LightType)
	assert.Equal(t, [3]float32{1, 2, 3}, g.Position)
	assert.Equal(t, [3]float32{0, 0, -1}, g.Direction)
	assert.Equal(t, float32(50), g.AttenuationRadius)
	assert.InDelta(t, math.Cos(0.3), float64(g.InnerConeCos), 1e-6)
	assert.InDelta(t, math.Cos(0.5), float64(g.OuterConeCos), 1e-6)
}
