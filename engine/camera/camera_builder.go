package camera

// ArcBallBuilderOption defines a functional option for configuring an
// arc-ball camera during creation.
type ArcBallBuilderOption func(*arcBallImpl)

// WithArcBallFocus sets the orbit focus point.
//
// Parameters:
//   - x, y, z: the focus point in world space
//
// Returns:
//   - ArcBallBuilderOption: the option function
func WithArcBallFocus(x, y, z float32) ArcBallBuilderOption {
	return func(c *arcBallImpl) {
		c.focus = [3]float32{x, y, z}
	}
}

// WithArcBallDistanceLimits sets the zoom distance range.
//
// Parameters:
//   - minDist: closest allowed distance to the focus
//   - maxDist: farthest allowed distance to the focus
//
// Returns:
//   - ArcBallBuilderOption: the option function
func WithArcBallDistanceLimits(minDist, maxDist float32) ArcBallBuilderOption {
	return func(c *arcBallImpl) {
		c.minDist = minDist
		c.maxDist = maxDist
		if c.dist < minDist {
			c.dist = minDist
		}
		if c.dist > maxDist {
			c.dist = maxDist
		}
	}
}

// WithArcBallPerspective sets the projection parameters.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - ArcBallBuilderOption: the option function
func WithArcBallPerspective(fovY, near, far float32) ArcBallBuilderOption {
	return func(c *arcBallImpl) {
		c.fov = fovY
		c.near = near
		c.far = far
	}
}

// FirstPersonBuilderOption defines a functional option for configuring a
// first person camera during creation.
type FirstPersonBuilderOption func(*firstPersonImpl)

// WithFirstPersonSpeed sets the movement speed in world units per second.
//
// Parameters:
//   - speed: the movement speed
//
// Returns:
//   - FirstPersonBuilderOption: the option function
func WithFirstPersonSpeed(speed float32) FirstPersonBuilderOption {
	return func(c *firstPersonImpl) {
		c.speed = speed
	}
}

// WithFirstPersonPerspective sets the projection parameters.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - FirstPersonBuilderOption: the option function
func WithFirstPersonPerspective(fovY, near, far float32) FirstPersonBuilderOption {
	return func(c *firstPersonImpl) {
		c.fov = fovY
		c.near = near
		c.far = far
	}
}
