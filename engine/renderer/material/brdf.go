package material

import "github.com/chewxy/math32"

// CPU evaluation of the Cook-Torrance shading terms used by the lit mesh
// pass. Kept in lockstep with the mesh_pbr shader so lighting behavior can
// be verified without a GPU.

// brdfPi matches the PI constant baked into the shader source.
const brdfPi = 3.14159265359

// DistributionGGX evaluates the GGX normal distribution.
//
// Parameters:
//   - nDotH: cosine between the surface normal and the half vector
//   - roughness: perceptual roughness in [0.04, 1]
//
// Returns:
//   - float32: the microfacet density along the half vector
func DistributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (brdfPi * d * d)
}

// GeometrySchlickGGX evaluates the Schlick-GGX visibility term for a single
// direction.
//
// Parameters:
//   - nDotX: cosine between the surface normal and the direction
//   - k: the remapped roughness (roughness+1)^2 / 8
//
// Returns:
//   - float32: the masking factor in (0, 1]
func GeometrySchlickGGX(nDotX, k float32) float32 {
	return nDotX / (nDotX*(1-k) + k)
}

// GeometrySmith combines the Schlick-GGX terms of the view and light
// directions with the direct-lighting k remap.
//
// Parameters:
//   - nDotV, nDotL: cosines between the normal and the view/light directions
//   - roughness: perceptual roughness
//
// Returns:
//   - float32: the combined geometry term
func GeometrySmith(nDotV, nDotL, roughness float32) float32 {
	r := roughness + 1
	k := (r * r) / 8
	return GeometrySchlickGGX(nDotV, k) * GeometrySchlickGGX(nDotL, k)
}

// FresnelSchlick evaluates the Schlick Fresnel approximation.
//
// Parameters:
//   - hDotV: cosine between the half vector and the view direction
//   - f0: reflectance at normal incidence, mix(0.04, albedo, metallic)
//
// Returns:
//   - [3]float32: the reflected fraction per channel
func FresnelSchlick(hDotV float32, f0 [3]float32) [3]float32 {
	t := math32.Pow(clamp01(1-hDotV), 5)
	return [3]float32{
		f0[0] + (1-f0[0])*t,
		f0[1] + (1-f0[1])*t,
		f0[2] + (1-f0[2])*t,
	}
}

// SpecularBRDF evaluates the full Cook-Torrance specular lobe
// D*G*F / (4 * nDotV * nDotL), with the shader's denominator floor.
//
// Parameters:
//   - nDotV, nDotL, nDotH, hDotV: the shading cosines, unclamped light term
//   - roughness: perceptual roughness
//   - f0: reflectance at normal incidence
//
// Returns:
//   - [3]float32: the specular contribution per channel
func SpecularBRDF(nDotV, nDotL, nDotH, hDotV, roughness float32, f0 [3]float32) [3]float32 {
	d := DistributionGGX(nDotH, roughness)
	g := GeometrySmith(nDotV, math32.Max(nDotL, 0), roughness)
	f := FresnelSchlick(hDotV, f0)
	denom := math32.Max(4*nDotV*math32.Max(nDotL, 0), 1e-4)
	s := d * g / denom
	return [3]float32{f[0] * s, f[1] * s, f[2] * s}
}

// RadialFalloff evaluates the point and spot light attenuation
// (1 - (d/radius)^2)^2 clamped to [0, 1].
//
// Parameters:
//   - dist: distance from the light
//   - radius: the light's attenuation radius
//
// Returns:
//   - float32: the attenuation factor
func RadialFalloff(dist, radius float32) float32 {
	ratio := dist / math32.Max(radius, 1e-6)
	falloff := 1 - ratio*ratio
	return clamp01(falloff * falloff)
}

// SpotFalloff evaluates the squared angular falloff between the spot cone
// cosines.
//
// Parameters:
//   - cosAngle: cosine between the spot direction and the fragment direction
//   - innerCos, outerCos: cone boundary cosines, inner > outer
//
// Returns:
//   - float32: the angular attenuation factor
func SpotFalloff(cosAngle, innerCos, outerCos float32) float32 {
	denom := math32.Max(innerCos-outerCos, 1e-6)
	angular := clamp01((cosAngle - outerCos) / denom)
	return angular * angular
}

// WrapDiffuse applies the half-Lambert wrap of the lit mesh passes.
//
// Parameters:
//   - nDotL: raw cosine between the normal and the light direction
//   - wrap: the wrap factor (the shaders use 0.2)
//
// Returns:
//   - float32: the wrapped diffuse term in [0, 1]
func WrapDiffuse(nDotL, wrap float32) float32 {
	return clamp01((nDotL + wrap) / (1 + wrap))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
