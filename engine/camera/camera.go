package camera

import (
	"math"
	"sync"

	"github.com/tessera-gl/tessera/common"
)

// ResizeStrategy controls how an orthographic projection reacts to a surface
// resize. Perspective projections always track the new aspect ratio and ignore
// the strategy.
type ResizeStrategy int

const (
	// ResizeKeepY preserves the vertical extents and widens or narrows the
	// horizontal extents with the aspect ratio.
	ResizeKeepY ResizeStrategy = iota

	// ResizeKeepX preserves the horizontal extents and adjusts the vertical
	// extents with the inverse aspect ratio.
	ResizeKeepX

	// ResizeStretch keeps the configured extents as-is and lets the image
	// stretch with the surface.
	ResizeStretch
)

const (
	defaultYaw   = math.Pi
	pitchLimit   = 89.0 * math.Pi / 180.0
	defaultFov   = 45.0 * math.Pi / 180.0
	defaultNear  = 0.1
	defaultFar   = 100.0
	defaultWidth = 1.0
)

// projection holds either a perspective or an orthographic configuration.
// Resize always derives the active projection from the configured one so
// repeated resizes never accumulate float error.
type projection struct {
	orthographic bool

	// perspective
	fovY   float32
	aspect float32

	// orthographic
	left, right, bottom, top float32

	near, far float32
}

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	base   projection // as configured, resize-independent
	active projection // after the last Resize

	position [3]float32
	pitch    float32 // radians, positive looking up, clamped to ±89°
	yaw      float32 // radians, positive looking right

	viewProjection [16]float32
	// explicit is set when SetViewProjection bypassed the pose-derived matrix;
	// Update clears it.
	explicit bool
	dirty    bool
}

// Camera owns the single view-projection transform every draw call of a frame
// shares. It is a value holder with single-writer-per-frame discipline: the
// frame loop either feeds it a ready matrix via SetViewProjection or adjusts
// the pose and calls Update once per frame, then the frame submitter uploads
// Current when ConsumeDirty reports a change. No invertibility validation is
// performed — projection matrices are not generally invertible in the naive
// sense.
type Camera interface {
	// SetViewProjection replaces the current camera transform with an externally
	// computed matrix and marks it dirty for re-upload. Re-upload itself is the
	// frame submitter's responsibility.
	//
	// Parameters:
	//   - m: the column-major 4x4 view-projection matrix
	SetViewProjection(m [16]float32)

	// Current returns the active view-projection transform for uniform upload.
	//
	// Returns:
	//   - [16]float32: the column-major view-projection matrix
	Current() [16]float32

	// ConsumeDirty reports whether the transform changed since the last call and
	// clears the flag. The frame submitter calls this once per frame to decide
	// whether the camera uniform needs a re-upload.
	//
	// Returns:
	//   - bool: true if a re-upload is needed
	ConsumeDirty() bool

	// Position returns the camera position in world space.
	//
	// Returns:
	//   - x, y, z: the position components
	Position() (x, y, z float32)

	// SetPosition moves the camera to a world-space position.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Translate offsets the camera position.
	//
	// Parameters:
	//   - dx, dy, dz: the world-space offset
	Translate(dx, dy, dz float32)

	// LookDir returns the unit direction the camera faces, derived from yaw and
	// pitch.
	//
	// Returns:
	//   - x, y, z: the look direction components
	LookDir() (x, y, z float32)

	// LookAdd adjusts yaw and pitch by the given deltas. Pitch is clamped to
	// ±89 degrees so the view never flips over the up axis.
	//
	// Parameters:
	//   - dYaw: yaw delta in radians (positive looks right)
	//   - dPitch: pitch delta in radians (positive looks up)
	LookAdd(dYaw, dPitch float32)

	// Resize re-derives the projection for a new surface size. Perspective
	// projections track the new aspect ratio; orthographic projections apply the
	// strategy to the extents configured at construction, so repeated resizes
	// never accumulate error.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	//   - strategy: how orthographic extents react (ignored for perspective)
	Resize(width, height int, strategy ResizeStrategy)

	// Update recomputes the view-projection from the projection and pose and
	// marks it dirty. Called once per frame before instance submission.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with default perspective settings (45° fov, aspect
// 1, near 0.1, far 100) positioned at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu: &sync.Mutex{},
		up: [3]float32{0, 1, 0},
		base: projection{
			fovY:   defaultFov,
			aspect: defaultWidth,
			near:   defaultNear,
			far:    defaultFar,
		},
		yaw: defaultYaw,
	}
	for _, option := range options {
		option(c)
	}
	c.active = c.base
	c.compute()
	return c
}

func (c *cameraImpl) SetViewProjection(m [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewProjection = m
	c.explicit = true
	c.dirty = true
}

func (c *cameraImpl) Current() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) ConsumeDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dirty
	c.dirty = false
	return d
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
}

func (c *cameraImpl) Translate(dx, dy, dz float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position[0] += dx
	c.position[1] += dy
	c.position[2] += dz
}

func (c *cameraImpl) LookDir() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookDir()
}

// lookDir derives the facing direction from yaw and pitch. Caller must hold the mutex.
func (c *cameraImpl) lookDir() (x, y, z float32) {
	sy := float32(math.Sin(float64(c.yaw)))
	cy := float32(math.Cos(float64(c.yaw)))
	sp := float32(math.Sin(float64(c.pitch)))
	cp := float32(math.Cos(float64(c.pitch)))
	return sy * cp, sp, cp * cy
}

func (c *cameraImpl) LookAdd(dYaw, dPitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += dYaw
	c.pitch += dPitch
	if c.pitch > pitchLimit {
		c.pitch = pitchLimit
	}
	if c.pitch < -pitchLimit {
		c.pitch = -pitchLimit
	}
}

func (c *cameraImpl) Resize(width, height int, strategy ResizeStrategy) {
	if width <= 0 || height <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.base
	if !next.orthographic {
		next.aspect = float32(width) / float32(height)
	} else {
		switch strategy {
		case ResizeKeepY:
			aspect := float32(width) / float32(height)
			next.left *= aspect
			next.right *= aspect
		case ResizeKeepX:
			inverse := float32(height) / float32(width)
			next.top *= inverse
			next.bottom *= inverse
		case ResizeStretch:
			// extents stay as configured
		}
	}
	c.active = next
	c.compute()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.explicit = false
	c.compute()
}

// compute rebuilds the view-projection from the active projection and pose and
// marks it dirty. Skipped while an explicit matrix is pinned. Caller must hold
// the mutex.
func (c *cameraImpl) compute() {
	if c.explicit {
		return
	}

	var proj, view [16]float32
	if c.active.orthographic {
		common.Orthographic(proj[:], c.active.left, c.active.right, c.active.bottom, c.active.top, c.active.near, c.active.far)
	} else {
		common.Perspective(proj[:], c.active.fovY, c.active.aspect, c.active.near, c.active.far)
	}

	dx, dy, dz := c.lookDir()
	common.LookTo(view[:],
		c.position[0], c.position[1], c.position[2],
		dx, dy, dz,
		c.up[0], c.up[1], c.up[2],
	)

	common.Mul4(c.viewProjection[:], proj[:], view[:])
	c.dirty = true
}
