package renderer

import (
	"github.com/chewxy/math32"
)

// CPU mirror of the screen-space expansion helpers in
// shader/assets/screen_expand.wgsl. The overlay pipelines run this math on the
// GPU; the functions here pin down the contract so the clipping and basis
// behavior stays verifiable without a device.

// quadCorner returns the corner of the six-vertex quad template for index i.
// x selects the segment endpoint (0 or 1), y the side offset (-0.5 or +0.5).
func quadCorner(i uint32) (x, y float32) {
	switch i {
	case 0:
		return 0, -0.5
	case 1:
		return 1, -0.5
	case 2:
		return 1, 0.5
	case 3:
		return 0, -0.5
	case 4:
		return 1, 0.5
	default:
		return 0, 0.5
	}
}

// nearClipT returns the interpolation factor moving a point behind the near
// plane (z > w) onto it. dA and dB are the signed near-plane distances z - w
// of the two endpoints.
func nearClipT(dA, dB float32) float32 {
	return dA / (dA - dB)
}

// clipSegmentNear clips the clip-space segment [a, b] against the near plane.
// Endpoints with z > w are moved onto the plane; keep is false when both
// endpoints are behind it and the segment produces no visible pixels.
func clipSegmentNear(a, b [4]float32) (ca, cb [4]float32, keep bool) {
	dA := a[2] - a[3]
	dB := b[2] - b[3]

	behindA := dA > 0
	behindB := dB > 0
	if behindA && behindB {
		return a, b, false
	}

	ca, cb = a, b
	if behindA {
		t := nearClipT(dA, dB)
		for i := 0; i < 4; i++ {
			ca[i] = a[i] + (b[i]-a[i])*t
		}
	} else if behindB {
		t := nearClipT(dB, dA)
		for i := 0; i < 4; i++ {
			cb[i] = b[i] + (a[i]-b[i])*t
		}
	}
	return ca, cb, true
}

// clipToScreen projects a clip-space position to screen pixels for the given
// viewport size.
func clipToScreen(clip [4]float32, viewportW, viewportH float32) (x, y float32) {
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	return (ndcX*0.5 + 0.5) * viewportW, (ndcY*-0.5 + 0.5) * viewportH
}

// screenToClip converts a screen pixel position back to clip space at the
// given depth and w.
func screenToClip(x, y, z, w, viewportW, viewportH float32) [4]float32 {
	ndcX := (x/viewportW - 0.5) * 2
	ndcY := (y/viewportH - 0.5) * -2
	return [4]float32{ndcX * w, ndcY * w, z, w}
}

// segmentTangent returns the unit tangent of a screen-space segment.
// Degenerate segments fall back to the x axis so the paired normal stays (0, 1).
func segmentTangent(dx, dy float32) (tx, ty float32) {
	length := math32.Hypot(dx, dy)
	if length < 1e-6 {
		return 1, 0
	}
	return dx / length, dy / length
}

// segmentNormal returns the normal paired with segmentTangent, rotated 90
// degrees counter-clockwise.
func segmentNormal(tx, ty float32) (nx, ny float32) {
	return -ty, tx
}
