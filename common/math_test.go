package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func TestPackUnpackMat3Lossless(t *testing.T) {
	m := []float32{
		0.25, -3, 7.5,
		1e-8, 42, -0.001,
		2, 2, 2,
	}
	packed := make([]float32, 12)
	PackMat3(packed, m)

	// Padding lanes are zeroed, columns survive untouched.
	assert.Zero(t, packed[3])
	assert.Zero(t, packed[7])
	assert.Zero(t, packed[11])

	out := make([]float32, 9)
	UnpackMat3(out, packed)
	assert.Equal(t, m, out)
}

func TestNormalMatrixPreservesUnitLength(t *testing.T) {
	cases := []struct {
		name        string
		rot         [3]float32
		scale       [3]float32
		deformation []float32
	}{
		{"identity", [3]float32{}, [3]float32{1, 1, 1}, nil},
		{"rotated", [3]float32{0.3, -1.2, 2.1}, [3]float32{1, 1, 1}, nil},
		{"nonuniform scale", [3]float32{0.5, 0.25, 0}, [3]float32{2, 0.5, 9}, nil},
		{"sheared", [3]float32{0, 1, 0}, [3]float32{3, 1, 0.2}, []float32{1, 0, 0, 0.5, 1, 0, 0, 0, 1}},
	}

	normals := [][3]float32{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{0.577350269, 0.577350269, 0.577350269},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := make([]float32, 16)
			BuildTransform(model, [3]float32{1, 2, 3}, tc.rot, tc.scale, tc.deformation)

			nm := make([]float32, 9)
			NormalMatrix(nm, model)

			for _, n := range normals {
				tx := nm[0]*n[0] + nm[3]*n[1] + nm[6]*n[2]
				ty := nm[1]*n[0] + nm[4]*n[1] + nm[7]*n[2]
				tz := nm[2]*n[0] + nm[5]*n[1] + nm[8]*n[2]

				length := math32.Sqrt(tx*tx + ty*ty + tz*tz)
				require.False(t, math32.IsNaN(length))
				require.Greater(t, length, float32(0))

				// Renormalizing must land back on the unit sphere.
				unit := math32.Sqrt((tx/length)*(tx/length) + (ty/length)*(ty/length) + (tz/length)*(tz/length))
				assert.InDelta(t, 1.0, unit, tol)
			}
		})
	}
}

func TestNormalMatrixDegenerateScaleNoNaN(t *testing.T) {
	model := make([]float32, 16)
	BuildTransform(model, [3]float32{}, [3]float32{}, [3]float32{0, 1, 1}, nil)

	nm := make([]float32, 9)
	NormalMatrix(nm, model)

	for _, v := range nm {
		assert.False(t, math32.IsNaN(v))
		assert.False(t, math32.IsInf(v, 0))
	}
	// Degenerate column passes through unchanged.
	assert.Zero(t, nm[0])
	assert.Zero(t, nm[1])
	assert.Zero(t, nm[2])
}

func TestBuildTransformComposition(t *testing.T) {
	out := make([]float32, 16)
	BuildTransform(out, [3]float32{5, -2, 1}, [3]float32{}, [3]float32{2, 3, 4}, nil)

	p := Mul4Vec4(out, 1, 1, 1, 1)
	assert.InDelta(t, 5+2.0, p[0], tol)
	assert.InDelta(t, -2+3.0, p[1], tol)
	assert.InDelta(t, 1+4.0, p[2], tol)
	assert.InDelta(t, 1.0, p[3], tol)
}

func TestBuildTransformDeformationBeforeScale(t *testing.T) {
	// Shear in x by y, then scale x by 2: x' = 2*(x + 0.5y).
	deform := []float32{1, 0, 0, 0.5, 0, 0, 0, 0, 0}
	deform[4], deform[8] = 1, 1

	out := make([]float32, 16)
	BuildTransform(out, [3]float32{}, [3]float32{}, [3]float32{2, 1, 1}, deform)

	p := Mul4Vec4(out, 0, 1, 0, 1)
	assert.InDelta(t, 1.0, p[0], tol)
	assert.InDelta(t, 1.0, p[1], tol)
}

func TestInvert4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	BuildTransform(m, [3]float32{1, 2, 3}, [3]float32{0.4, 0.8, -0.3}, [3]float32{2, 0.5, 1.5}, nil)

	inv := make([]float32, 16)
	require.True(t, Invert4(inv, m))

	id := make([]float32, 16)
	Mul4(id, m, inv)

	want := make([]float32, 16)
	Identity(want)
	for i := range want {
		assert.InDelta(t, want[i], id[i], 1e-4)
	}
}

func TestInvert4Singular(t *testing.T) {
	m := make([]float32, 16)
	out := make([]float32, 16)
	assert.False(t, Invert4(out, m))
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, uint64(1), NextPowerOfTwo(0))
	assert.Equal(t, uint64(1), NextPowerOfTwo(1))
	assert.Equal(t, uint64(2), NextPowerOfTwo(2))
	assert.Equal(t, uint64(4), NextPowerOfTwo(3))
	assert.Equal(t, uint64(1024), NextPowerOfTwo(1000))
	assert.Equal(t, uint64(2048), NextPowerOfTwo(1025))
}

func TestNormalizeVec3Fallback(t *testing.T) {
	fallback := [3]float32{0, 0, -1}
	assert.Equal(t, fallback, NormalizeVec3([3]float32{}, fallback))

	v := NormalizeVec3([3]float32{3, 0, 4}, fallback)
	assert.InDelta(t, 0.6, v[0], tol)
	assert.InDelta(t, 0.8, v[2], tol)
}

func TestFrustumContainsSphere(t *testing.T) {
	proj := make([]float32, 16)
	Perspective(proj, math32.Pi/2, 1, 0.1, 100)
	view := make([]float32, 16)
	LookAt(view, 0, 0, 10, 0, 0, 0, 0, 1, 0)

	vp := make([]float32, 16)
	Mul4(vp, proj, view)
	f := ExtractFrustumFromMatrix(vp)

	assert.True(t, f.ContainsSphere([3]float32{0, 0, 0}, 1))
	assert.False(t, f.ContainsSphere([3]float32{0, 0, 200}, 1))
	assert.False(t, f.ContainsSphere([3]float32{500, 0, 0}, 1))
	// Straddling the left plane still counts as visible.
	assert.True(t, f.ContainsSphere([3]float32{-10, 0, 0}, 5))
}
