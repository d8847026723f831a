package post

import (
	"math"

	_ "embed"
)

//go:embed assets/waves.wgsl
var wavesSource string

// wavesImpl deforms the frame with a horizontal sinusoidal displacement whose
// phase advances three quarters of a wave cycle per second.
type wavesImpl struct {
	time float32
}

var _ Effect = &wavesImpl{}

// NewWaves creates a post-processing effect which deforms the displayed scene
// with an animated wave.
//
// Returns:
//   - Effect: the waves effect
func NewWaves() Effect {
	return &wavesImpl{}
}

func (e *wavesImpl) Key() string {
	return "post:waves"
}

func (e *wavesImpl) Source() string {
	return wavesSource
}

func (e *wavesImpl) NeedsDepth() bool {
	return false
}

func (e *wavesImpl) Update(dt, width, height, znear, zfar float32) {
	e.time += dt
}

func (e *wavesImpl) Uniforms() EffectUniforms {
	return EffectUniforms{
		TimeOffset: e.time * 2.0 * math.Pi * 0.75,
	}
}
