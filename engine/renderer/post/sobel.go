package post

import _ "embed"

//go:embed assets/sobel.wgsl
var sobelSource string

// sobelImpl highlights depth discontinuities by running a Sobel gradient over
// the linearized depth target and painting edges above the threshold.
type sobelImpl struct {
	threshold float32
	nx        float32
	ny        float32
	znear     float32
	zfar      float32
}

var _ Effect = &sobelImpl{}

// NewSobelEdgeHighlight creates a post-processing effect which draws detected
// edges on top of the original frame.
//
// Parameters:
//   - threshold: gradient magnitude above which a pixel counts as an edge
//
// Returns:
//   - Effect: the edge highlight effect
func NewSobelEdgeHighlight(threshold float32) Effect {
	return &sobelImpl{threshold: threshold}
}

func (e *sobelImpl) Key() string {
	return "post:sobel_edge_highlight"
}

func (e *sobelImpl) Source() string {
	return sobelSource
}

func (e *sobelImpl) NeedsDepth() bool {
	return true
}

func (e *sobelImpl) Update(dt, width, height, znear, zfar float32) {
	e.nx = 2.0 / width
	e.ny = 2.0 / height
	e.znear = znear
	e.zfar = zfar
}

func (e *sobelImpl) Uniforms() EffectUniforms {
	return EffectUniforms{
		NX:        e.nx,
		NY:        e.ny,
		ZNear:     e.znear,
		ZFar:      e.zfar,
		Threshold: e.threshold,
	}
}
