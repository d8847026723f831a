package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistributionConstantAtFullRoughness(t *testing.T) {
	t.Parallel()

	// At roughness 1 the GGX density degenerates to 1/pi regardless of the
	// half vector, so a fully rough surface has no specular highlight shape.
	want := DistributionGGX(1, 1)
	for _, nDotH := range []float32{0, 0.25, 0.5, 0.75, 1} {
		assert.InDelta(t, want, DistributionGGX(nDotH, 1), 1e-6, "n_dot_h %v", nDotH)
	}
	assert.InDelta(t, 1/float32(brdfPi), want, 1e-6)
}

func TestDistributionPeaksAlongNormal(t *testing.T) {
	t.Parallel()

	// A smooth surface concentrates the density at n_dot_h = 1.
	assert.Greater(t, DistributionGGX(1, 0.1), DistributionGGX(0.8, 0.1))
	assert.Greater(t, DistributionGGX(0.8, 0.1), DistributionGGX(0.5, 0.1))
}

func TestFresnelBounds(t *testing.T) {
	t.Parallel()

	f0 := [3]float32{0.04, 0.5, 1}

	head := FresnelSchlick(1, f0)
	for i := range f0 {
		assert.InDelta(t, f0[i], head[i], 1e-6, "normal incidence returns f0")
	}

	grazing := FresnelSchlick(0, f0)
	for i := range f0 {
		assert.InDelta(t, 1, grazing[i], 1e-6, "grazing incidence reflects fully")
	}
}

func TestGeometryTermBounds(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1, GeometrySchlickGGX(1, 0.5), 1e-6, "fully visible along the normal")
	for _, rough := range []float32{0.04, 0.5, 1} {
		g := GeometrySmith(1, 1, rough)
		assert.Greater(t, g, float32(0))
		assert.LessOrEqual(t, g, float32(1))
	}
}

func TestRadialFalloff(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1, RadialFalloff(0, 100), 1e-6)
	assert.InDelta(t, 0, RadialFalloff(100, 100), 1e-6)
	assert.InDelta(t, 0, RadialFalloff(250, 100), 1e-6, "beyond the radius clamps to zero")
	assert.InDelta(t, 0.5625, RadialFalloff(50, 100), 1e-4)
}

func TestSpotFalloff(t *testing.T) {
	t.Parallel()

	inner, outer := float32(0.9), float32(0.7)
	assert.InDelta(t, 1, SpotFalloff(0.95, inner, outer), 1e-6, "inside the inner cone")
	assert.InDelta(t, 0, SpotFalloff(0.6, inner, outer), 1e-6, "outside the outer cone")
	assert.InDelta(t, 0.25, SpotFalloff(0.8, inner, outer), 1e-4, "squared at the midpoint")
}

func TestWrapDiffuseSoftensTerminator(t *testing.T) {
	t.Parallel()

	// The wrap keeps slightly back-facing geometry lit.
	assert.Greater(t, WrapDiffuse(-0.1, 0.2), float32(0))
	assert.InDelta(t, 0, WrapDiffuse(-0.2, 0.2), 1e-6)
	assert.InDelta(t, 1, WrapDiffuse(1, 0.2), 1e-6)
}

func TestSpecularVanishesBelowHorizon(t *testing.T) {
	t.Parallel()

	s := SpecularBRDF(0.5, -0.3, 0.9, 0.9, 0.2, [3]float32{0.04, 0.04, 0.04})
	for _, c := range s {
		assert.Equal(t, float32(0), c)
	}
}
