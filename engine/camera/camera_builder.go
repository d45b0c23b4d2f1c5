package camera

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPerspective is an option builder that configures a perspective projection.
//
// Parameters:
//   - fovY: the vertical field of view in radians
//   - aspect: the width/height aspect ratio
//   - near: the near clip distance
//   - far: the far clip distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the perspective option to a camera
func WithPerspective(fovY, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.base = projection{
			fovY:   fovY,
			aspect: aspect,
			near:   near,
			far:    far,
		}
	}
}

// WithOrthographic is an option builder that configures an orthographic
// projection with explicit extents.
//
// Parameters:
//   - left, right: the horizontal clip extents
//   - bottom, top: the vertical clip extents
//   - near: the near clip distance
//   - far: the far clip distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the orthographic option to a camera
func WithOrthographic(left, right, bottom, top, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.base = projection{
			orthographic: true,
			left:         left,
			right:        right,
			bottom:       bottom,
			top:          top,
			near:         near,
			far:          far,
		}
	}
}

// WithPosition is an option builder that sets the initial camera position.
//
// Parameters:
//   - x, y, z: the world-space position
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option to a camera
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [3]float32{x, y, z}
	}
}

// WithYawPitch is an option builder that sets the initial look angles. Pitch is
// clamped to ±89 degrees.
//
// Parameters:
//   - yaw: the yaw angle in radians
//   - pitch: the pitch angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that applies the angle option to a camera
func WithYawPitch(yaw, pitch float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.yaw = yaw
		if pitch > pitchLimit {
			pitch = pitchLimit
		}
		if pitch < -pitchLimit {
			pitch = -pitchLimit
		}
		c.pitch = pitch
	}
}

// WithUp is an option builder that overrides the world up axis (default +Y).
//
// Parameters:
//   - x, y, z: the up vector components
//
// Returns:
//   - CameraBuilderOption: a function that applies the up-axis option to a camera
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}
