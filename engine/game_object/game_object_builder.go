package game_object

import (
	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/model"
)

// GameObjectBuilderOption is a function that configures a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithMesh sets the Mesh this object instances.
//
// Parameters:
//   - m: the Mesh to instance
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the mesh option
func WithMesh(m model.Mesh) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mesh = m
	}
}

// WithAtlasRect attaches an atlas rect handle, selecting the atlas variant for
// this object.
//
// Parameters:
//   - h: the rect handle
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the atlas rect option
func WithAtlasRect(h *atlas.Handle) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.atlasRect = h
	}
}

// WithEphemeral marks the object as ephemeral so it is not persisted in the
// scene registry when added.
//
// Parameters:
//   - ephemeral: true to mark ephemeral
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the ephemeral option
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.ephemeral = ephemeral
	}
}

// WithPosition sets the object's initial world position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the object's initial Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation option
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = [3]float32{rx, ry, rz}
	}
}

// WithRotationSpeed sets the object's rotation speed in radians per second.
//
// Parameters:
//   - rx, ry, rz: rotation speed values
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation speed option
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotationSpeed = [3]float32{rx, ry, rz}
	}
}

// WithScale sets the object's scale factors.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the scale option
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = [3]float32{sx, sy, sz}
	}
}
