package light

// LightCollection accumulates lights during the collection pass of scene
// preparation. It holds at most MaxLights entries; Add refuses further lights
// once full so the first MaxLights lights in traversal order win.
type LightCollection struct {
	lights  []CollectedLight
	ambient float32
}

// NewCollection creates an empty collection with the default ambient intensity.
//
// Returns:
//   - *LightCollection: the empty collection
func NewCollection() *LightCollection {
	return &LightCollection{
		lights:  make([]CollectedLight, 0, MaxLights),
		ambient: DefaultAmbient,
	}
}

// Add appends a collected light if the collection is not yet full.
//
// Parameters:
//   - l: the light resolved against its node's world transform
//
// Returns:
//   - bool: true if the light was added, false if the cap was reached
func (c *LightCollection) Add(l CollectedLight) bool {
	if len(c.lights) >= MaxLights {
		return false
	}
	c.lights = append(c.lights, l)
	return true
}

// Reset clears the collection for the next frame, keeping capacity and the
// ambient setting.
func (c *LightCollection) Reset() {
	c.lights = c.lights[:0]
}

// Len returns the number of collected lights.
func (c *LightCollection) Len() int {
	return len(c.lights)
}

// Lights returns the collected lights in traversal order.
func (c *LightCollection) Lights() []CollectedLight {
	return c.lights
}

// Ambient returns the scene ambient intensity.
func (c *LightCollection) Ambient() float32 {
	return c.ambient
}

// SetAmbient sets the scene ambient intensity.
//
// Parameters:
//   - ambient: the new ambient intensity
func (c *LightCollection) SetAmbient(ambient float32) {
	c.ambient = ambient
}

// Fill writes the collected lights and ambient intensity into the frame
// uniforms, zeroing unused slots.
//
// Parameters:
//   - f: destination frame uniforms
func (c *LightCollection) Fill(f *FrameUniforms) {
	for i := range f.Lights {
		f.Lights[i] = GPULight{}
	}
	for i, cl := range c.lights {
		f.Lights[i] = cl.GPU()
	}
	f.NumLights = uint32(len(c.lights))
	f.AmbientIntensity = c.ambient
}
