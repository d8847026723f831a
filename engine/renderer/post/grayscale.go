package post

import _ "embed"

//go:embed assets/grayscale.wgsl
var grayscaleSource string

// grayscaleImpl converts the frame to grey levels using BT.709 luminance weights.
type grayscaleImpl struct{}

var _ Effect = &grayscaleImpl{}

// NewGrayscale creates a post-processing effect which turns everything to
// gray scales.
//
// Returns:
//   - Effect: the grayscale effect
func NewGrayscale() Effect {
	return &grayscaleImpl{}
}

func (e *grayscaleImpl) Key() string {
	return "post:grayscale"
}

func (e *grayscaleImpl) Source() string {
	return grayscaleSource
}

func (e *grayscaleImpl) NeedsDepth() bool {
	return false
}

func (e *grayscaleImpl) Update(dt, width, height, znear, zfar float32) {}

func (e *grayscaleImpl) Uniforms() EffectUniforms {
	return EffectUniforms{}
}
