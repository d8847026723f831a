package common

// Color is an RGBA color with float32 components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// NewColor creates a fully opaque color from RGB components.
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Array returns the color as a [4]float32 suitable for GPU upload.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Common colors.
var (
	White   = Color{1, 1, 1, 1}
	Black   = Color{0, 0, 0, 1}
	Red     = Color{1, 0, 0, 1}
	Lime    = Color{0, 1, 0, 1}
	Blue    = Color{0, 0, 1, 1}
	Yellow  = Color{1, 1, 0, 1}
	Cyan    = Color{0, 1, 1, 1}
	Magenta = Color{1, 0, 1, 1}
)

// Sentinel values for per-instance overrides. A negative width or size and a
// zero-alpha color both mean "use the owning object's default"; resolution
// happens before rasterization, identically for every primitive in a batch.
const (
	LinesWidthUseObject = float32(-1.0)
	PointsSizeUseObject = float32(-1.0)
)

// UseObjectColor is the zero-alpha sentinel color meaning "use the owning
// object's default color".
var UseObjectColor = Color{0, 0, 0, 0}
