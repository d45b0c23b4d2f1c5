package atlas

import "errors"

var (
	// ErrAtlasFull is returned by Allocate when no shelf, free region, or remaining
	// vertical space can satisfy the requested size. The failed call leaves the
	// allocator state untouched — the caller may Release unused handles or Grow
	// the atlas and retry.
	ErrAtlasFull = errors.New("atlas: no free region large enough")

	// ErrRectOutOfBounds is returned when a rectangle's offset+size exceeds the
	// current texture dimensions. This is a configuration error and is reported,
	// never silently clamped — clamping would hide authoring mistakes as seams.
	ErrRectOutOfBounds = errors.New("atlas: rectangle exceeds texture dimensions")

	// ErrStaleHandle is returned when a handle refers to a region that has been
	// released (and possibly reallocated to a different image). Handles are
	// versioned so stale use is detected instead of silently sampling the wrong
	// image.
	ErrStaleHandle = errors.New("atlas: handle is released or reallocated")

	// ErrPixelSizeMismatch is returned by SetPixels when the provided RGBA data
	// does not match the handle's rectangle dimensions.
	ErrPixelSizeMismatch = errors.New("atlas: pixel data does not match rectangle size")
)
