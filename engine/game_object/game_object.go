package game_object

import (
	"sync/atomic"

	"github.com/tessera-gl/tessera/common"
	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/batch"
	"github.com/tessera-gl/tessera/engine/model"
)

type gameObject struct {
	id        uint64
	enabled   atomic.Bool
	ephemeral bool

	mesh      model.Mesh
	atlasRect *atlas.Handle

	position      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32
}

// GameObject is a scene entity that submits one instance per frame: a mesh
// reference, a world transform, and an optional atlas rect handle. The scene
// reads the object's model matrix and variant during frame building; the
// object itself holds no GPU state.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is submitted for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are not persisted in the scene's registry when added.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Mesh returns the Mesh this object instances, or nil if not set.
	//
	// Returns:
	//   - model.Mesh: the mesh or nil
	Mesh() model.Mesh

	// AtlasRect returns the atlas rect handle this object samples, or nil for
	// untextured (plain) objects.
	//
	// Returns:
	//   - *atlas.Handle: the rect handle or nil
	AtlasRect() *atlas.Handle

	// Variant derives the shading contract for this object: Overlay2D when the
	// mesh is overlay geometry, InstancedAtlas when an atlas rect is attached,
	// InstancedPlain otherwise.
	//
	// Returns:
	//   - batch.Variant: the derived pipeline variant
	Variant() batch.Variant

	// Position returns the object's world position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// RotationSpeed returns the object's rotation speed in radians per second.
	//
	// Returns:
	//   - rx, ry, rz: rotation speed values
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the object's scale factors.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// ModelMatrix builds the column-major world matrix from the object's
	// position, rotation, and scale.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// Advance integrates the rotation speed over the elapsed time.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Advance(deltaTime float32)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is submitted for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetMesh assigns a Mesh to this object.
	//
	// Parameters:
	//   - m: the Mesh to instance
	SetMesh(m model.Mesh)

	// SetAtlasRect attaches an atlas rect handle, switching the object to the
	// atlas variant. Pass nil to detach and fall back to the plain variant.
	//
	// Parameters:
	//   - h: the rect handle, or nil to detach
	SetAtlasRect(h *atlas.Handle)

	// SetPosition sets the object's world position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the object's Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed sets the object's rotation speed in radians per second.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation speed values
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale sets the object's scale factors.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects default to enabled with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Ephemeral() bool {
	return g.ephemeral
}

func (g *gameObject) Mesh() model.Mesh {
	return g.mesh
}

func (g *gameObject) AtlasRect() *atlas.Handle {
	return g.atlasRect
}

func (g *gameObject) Variant() batch.Variant {
	if g.mesh != nil && g.mesh.Overlay() {
		return batch.VariantOverlay2D
	}
	if g.atlasRect != nil {
		return batch.VariantInstancedAtlas
	}
	return batch.VariantInstancedPlain
}

func (g *gameObject) Position() (x, y, z float32) {
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	return g.rotationSpeed[0], g.rotationSpeed[1], g.rotationSpeed[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) ModelMatrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:],
		g.position[0], g.position[1], g.position[2],
		g.rotation[0], g.rotation[1], g.rotation[2],
		g.scale[0], g.scale[1], g.scale[2],
	)
	return m
}

func (g *gameObject) Advance(deltaTime float32) {
	g.rotation[0] += g.rotationSpeed[0] * deltaTime
	g.rotation[1] += g.rotationSpeed[1] * deltaTime
	g.rotation[2] += g.rotationSpeed[2] * deltaTime
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetMesh(m model.Mesh) {
	g.mesh = m
}

func (g *gameObject) SetAtlasRect(h *atlas.Handle) {
	g.atlasRect = h
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.rotationSpeed = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.scale = [3]float32{sx, sy, sz}
}
