// effect.go defines the post-processing effect interface. An effect is a
// full-screen pass that samples the frame's offscreen color target (and
// optionally its depth target) and writes the filtered result to the next
// target in the chain. Effects own no GPU resources; they supply WGSL source
// and a uniform block, and the renderer owns pipelines, bind groups, and
// buffers keyed by the effect's identity.
package post

// Effect is a single full-screen post-processing pass.
//
// Effects are stateless between frames apart from the animation phase some of
// them accumulate in Update. The renderer calls Update once per frame before
// drawing the post chain, then uploads Uniforms and issues a three-vertex
// full-screen triangle draw with the effect's pipeline.
type Effect interface {
	// Key returns the stable identity of this effect, used by the renderer to
	// cache the compiled pipeline across frames.
	//
	// Returns:
	//   - string: a unique effect identifier (e.g. "post:grayscale")
	Key() string

	// Source returns the annotated WGSL source of this effect's pipeline,
	// containing both the vertex and fragment entry points.
	//
	// Returns:
	//   - string: the raw WGSL source prior to pre-processing
	Source() string

	// NeedsDepth reports whether this effect samples the frame's depth target
	// in addition to its color target. The renderer binds the depth texture
	// group only when this returns true.
	//
	// Returns:
	//   - bool: true if the depth target must be bound
	NeedsDepth() bool

	// Update advances the effect's per-frame state before drawing.
	//
	// Parameters:
	//   - dt: seconds elapsed since the previous frame
	//   - width: current target width in pixels
	//   - height: current target height in pixels
	//   - znear: camera near plane distance
	//   - zfar: camera far plane distance
	Update(dt, width, height, znear, zfar float32)

	// Uniforms returns the uniform block to upload for this frame's pass,
	// reflecting the most recent Update call.
	//
	// Returns:
	//   - EffectUniforms: the per-frame uniform values
	Uniforms() EffectUniforms
}

// Luminance returns the ITU-R BT.709 luminance of a linear RGB color. This is
// the same weighting the grayscale shader applies on the GPU.
//
// Parameters:
//   - r: red channel in [0, 1]
//   - g: green channel in [0, 1]
//   - b: blue channel in [0, 1]
//
// Returns:
//   - float32: the perceptual luminance
func Luminance(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}
