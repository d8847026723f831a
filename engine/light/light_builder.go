package light

import "github.com/chewxy/math32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithDirection is an option builder that sets the local direction of the light.
// The direction is normalized before storing; a zero-length input falls back
// to the forward axis (0, 0, -1).
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize3(x, y, z)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAttenuationRadius is an option builder that sets the maximum attenuation
// distance for point and spot lights.
//
// Parameters:
//   - radius: the radius value
//
// Returns:
//   - LightBuilderOption: a function that applies the radius option to a lightImpl
func WithAttenuationRadius(radius float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.attenuationRadius = radius
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone
// half-angles for spot lights. Angles are specified in radians and converted
// to cosines internally, which is the format required by the GPU shader.
//
// Parameters:
//   - inner: inner cone half-angle in radians
//   - outer: outer cone half-angle in radians
//
// Returns:
//   - LightBuilderOption: a function that applies the spot cone option to a lightImpl
func WithSpotCone(inner, outer float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.innerConeCos = cosRad(inner)
		l.outerConeCos = cosRad(outer)
	}
}

// WithEnabled is an option builder that sets whether the light is active for rendering.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// normalize3 normalizes a 3-component vector. Returns the forward axis if the
// input has zero length.
func normalize3(x, y, z float32) [3]float32 {
	length := math32.Sqrt(x*x + y*y + z*z)
	if length == 0 {
		return [3]float32{0, 0, -1}
	}
	inv := 1.0 / length
	return [3]float32{x * inv, y * inv, z * inv}
}

// cosRad returns the cosine of an angle in radians.
func cosRad(rad float32) float32 {
	return math32.Cos(rad)
}
