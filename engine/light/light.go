package light

// LightType identifies the kind of light source. The numeric values are part
// of the GPU contract (see GPULight.LightType) and must not be reordered.
type LightType uint32

const (
	// LightTypePoint represents a light that emits in all directions from a
	// position. Attenuates with distance up to a configurable radius.
	LightTypePoint LightType = iota

	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional

	// LightTypeSpot represents a light that emits in a cone from a position
	// along a direction. Attenuates with both distance and angle from the cone
	// axis, controlled by inner and outer cone angles.
	LightTypeSpot
)

// Default light parameters applied by New when no option overrides them.
const (
	// DefaultIntensity is the scalar multiplier applied to new lights.
	DefaultIntensity = float32(3.0)
	// DefaultAmbient is the scene-wide ambient intensity.
	DefaultAmbient = float32(0.2)
	// DefaultAttenuationRadius is the point/spot falloff radius for new lights.
	DefaultAttenuationRadius = float32(100.0)
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType         LightType
	direction         [3]float32
	color             [3]float32
	intensity         float32
	attenuationRadius float32
	innerConeCos      float32
	outerConeCos      float32
	enabled           bool
}

// Light defines the interface for a light source attached to a scene node.
//
// A light has no position of its own; its world-space position and direction
// come from the owning node's accumulated transform when the scene is
// prepared. All light types (point, directional, spot) share this interface;
// type-specific properties (e.g. cone cosines for spot lights) return zero
// values when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (point, directional, or spot)
	Type() LightType

	// Direction returns the local-space direction of the light before the
	// owning node's rotation is applied. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// AttenuationRadius returns the maximum attenuation distance for point and
	// spot lights. Beyond this distance the light contributes zero energy.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - float32: the radius value
	AttenuationRadius() float32

	// InnerConeCos returns the cosine of the inner cone half-angle for spot
	// lights. Fragments within this angle receive full intensity.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerConeCos() float32

	// OuterConeCos returns the cosine of the outer cone half-angle for spot
	// lights. Fragments outside this angle receive zero spot intensity.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterConeCos() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped during collection.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetDirection sets the local direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetAttenuationRadius sets the maximum attenuation distance.
	//
	// Parameters:
	//   - radius: the radius value
	SetAttenuationRadius(radius float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	// Angles are specified in radians and stored internally as cosines.
	//
	// Parameters:
	//   - inner: inner cone half-angle in radians
	//   - outer: outer cone half-angle in radians
	SetSpotCone(inner, outer float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// New creates a light of the given type with engine defaults (white color,
// intensity 3, attenuation radius 100, enabled), then applies any options.
//
// Parameters:
//   - lightType: the kind of light to create
//   - options: optional LightBuilderOption functions to customize the light
//
// Returns:
//   - Light: the configured light
func New(lightType LightType, options ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:         lightType,
		direction:         [3]float32{0, 0, -1},
		color:             [3]float32{1, 1, 1},
		intensity:         DefaultIntensity,
		attenuationRadius: DefaultAttenuationRadius,
		innerConeCos:      1,
		outerConeCos:      1,
		enabled:           true,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// NewPoint creates an omnidirectional light with the given attenuation radius.
//
// Parameters:
//   - attenuationRadius: maximum distance the light affects
//   - options: optional LightBuilderOption functions
//
// Returns:
//   - Light: the configured point light
func NewPoint(attenuationRadius float32, options ...LightBuilderOption) Light {
	opts := append([]LightBuilderOption{WithAttenuationRadius(attenuationRadius)}, options...)
	return New(LightTypePoint, opts...)
}

// NewDirectional creates a sun-style light shining along direction.
//
// Parameters:
//   - x, y, z: the light direction (normalized internally)
//   - options: optional LightBuilderOption functions
//
// Returns:
//   - Light: the configured directional light
func NewDirectional(x, y, z float32, options ...LightBuilderOption) Light {
	opts := append([]LightBuilderOption{WithDirection(x, y, z)}, options...)
	return New(LightTypeDirectional, opts...)
}

// NewSpot creates a cone light.
//
// Parameters:
//   - inner: inner cone half-angle in radians (full intensity inside)
//   - outer: outer cone half-angle in radians (fades to zero)
//   - attenuationRadius: maximum distance the light affects
//   - options: optional LightBuilderOption functions
//
// Returns:
//   - Light: the configured spot light
func NewSpot(inner, outer, attenuationRadius float32, options ...LightBuilderOption) Light {
	opts := append([]LightBuilderOption{
		WithSpotCone(inner, outer),
		WithAttenuationRadius(attenuationRadius),
	}, options...)
	return New(LightTypeSpot, opts...)
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) AttenuationRadius() float32 {
	return l.attenuationRadius
}

func (l *lightImpl) InnerConeCos() float32 {
	return l.innerConeCos
}

func (l *lightImpl) OuterConeCos() float32 {
	return l.outerConeCos
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetAttenuationRadius(radius float32) {
	l.attenuationRadius = radius
}

func (l *lightImpl) SetSpotCone(inner, outer float32) {
	l.innerConeCos = cosRad(inner)
	l.outerConeCos = cosRad(outer)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
