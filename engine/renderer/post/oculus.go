package post

import _ "embed"

//go:embed assets/oculus.wgsl
var oculusSource string

// oculusKappa holds the radial distortion polynomial coefficients of the
// stereo lens model.
var oculusKappa = [4]float32{1.0, 1.7, 0.7, 15.0}

// oculusImpl renders the frame side by side with a per-eye radial lens
// distortion, discarding samples that fall outside each eye's half.
type oculusImpl struct{}

var _ Effect = &oculusImpl{}

// NewOculusStereo creates a post-processing effect which warps the frame for
// a stereo head-mounted display.
//
// Returns:
//   - Effect: the stereo distortion effect
func NewOculusStereo() Effect {
	return &oculusImpl{}
}

func (e *oculusImpl) Key() string {
	return "post:oculus_stereo"
}

func (e *oculusImpl) Source() string {
	return oculusSource
}

func (e *oculusImpl) NeedsDepth() bool {
	return false
}

func (e *oculusImpl) Update(dt, width, height, znear, zfar float32) {}

func (e *oculusImpl) Uniforms() EffectUniforms {
	return EffectUniforms{Kappa: oculusKappa}
}
