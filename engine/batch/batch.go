package batch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tessera-gl/tessera/engine/atlas"
)

var (
	// ErrMissingAtlasRect is returned when an instance is submitted to the
	// atlas-mapped variant without an atlas handle. This is a caller contract
	// violation and is reported immediately — silently defaulting to the full
	// texture would mask authoring bugs as visual artifacts.
	ErrMissingAtlasRect = errors.New("batch: atlas variant instance has no atlas rect")

	// ErrUnexpectedAtlasRect is returned when an instance is submitted with an
	// atlas handle to a variant that does not sample the atlas through a rect.
	// Reported for the same reason missing rects are: ignoring the handle would
	// hide the authoring mistake.
	ErrUnexpectedAtlasRect = errors.New("batch: non-atlas variant instance carries an atlas rect")

	// ErrDegenerateScale is returned when a transform's upper-left 3x3 block has
	// a zero-length basis column. A zero scale on any axis makes the affine map
	// singular and collapses that axis at rasterization.
	ErrDegenerateScale = errors.New("batch: transform has zero scale on an axis")
)

// Variant identifies which of the three shading contracts a batch is submitted
// under. The variant decides the vertex layout, the per-instance payload, and
// how the fragment stage resolves uv coordinates.
type Variant int

const (
	// VariantInstancedPlain draws 3D meshes with per-instance transforms; uv
	// coordinates pass through to the sampler unchanged.
	VariantInstancedPlain Variant = iota

	// VariantInstancedAtlas draws 3D meshes with per-instance transforms and an
	// atlas rect; uv coordinates are remapped into the rect's sub-region of the
	// shared atlas texture.
	VariantInstancedAtlas

	// VariantOverlay2D draws non-instanced 2D geometry (HUD text, screen-space
	// quads); positions are 2D and uv coordinates pass through unchanged.
	VariantOverlay2D
)

// String returns a short human-readable name for the variant.
//
// Returns:
//   - string: the variant name
func (v Variant) String() string {
	switch v {
	case VariantInstancedPlain:
		return "instanced-plain"
	case VariantInstancedAtlas:
		return "instanced-atlas"
	case VariantOverlay2D:
		return "overlay-2d"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// MeshID identifies a registered mesh. Mesh registration and vertex data are an
// external collaborator's concern; the batcher only groups by the identifier.
type MeshID uint32

// InstanceRecord is one object scheduled for the current frame: its world
// transform plus, for the atlas variant, the handle of its atlas region. Records
// live only for the frame that created them; cross-frame identity is layered on
// top by the caller if needed.
type InstanceRecord struct {
	// Transform is the object's 4x4 world matrix, column-major. The upper-left
	// 3x3 block must compose rotation with non-degenerate scale.
	Transform [16]float32

	// Rect is the atlas region handle for VariantInstancedAtlas, nil otherwise.
	Rect *atlas.Handle
}

// Batch is an ordered sequence of InstanceRecords sharing one mesh and one
// pipeline variant — the unit a draw call is issued for.
type Batch struct {
	// MeshID is the mesh every record in the batch is an instance of.
	MeshID MeshID

	// Variant is the shading contract the batch is submitted under.
	Variant Variant

	// Records holds the instances in the order they were added.
	Records []InstanceRecord
}

type batchKey struct {
	mesh    MeshID
	variant Variant
}

// frameImpl is the implementation of the Frame interface.
type frameImpl struct {
	mu *sync.Mutex

	batches map[batchKey]*Batch
	// order preserves first-creation order of batches; records within a batch
	// preserve submission order. No ordering is promised beyond that.
	order []batchKey
}

// Frame is one frame's batching scope. A fresh Frame is created at frame start
// and drained at frame end — never a long-lived shared singleton — so the
// single-writer, per-frame-lifetime discipline is enforced by construction and
// overlapping pipelined frames cannot share mutable batch state.
type Frame interface {
	// AddInstance appends an InstanceRecord to the batch keyed by
	// (meshID, variant), creating the batch lazily. rect is required for
	// VariantInstancedAtlas and must be nil for the other variants.
	//
	// Parameters:
	//   - meshID: the mesh the instance draws
	//   - variant: the shading contract for the instance's batch
	//   - transform: the object's column-major 4x4 world matrix
	//   - rect: the atlas region handle, or nil
	//
	// Returns:
	//   - error: ErrMissingAtlasRect, ErrUnexpectedAtlasRect, or ErrDegenerateScale
	AddInstance(meshID MeshID, variant Variant, transform [16]float32, rect *atlas.Handle) error

	// Finalize drains all batches in first-creation order and resets the frame
	// scope. The returned batches are exclusively owned by the caller; the Frame
	// is empty afterwards and carries nothing into the next frame.
	//
	// Returns:
	//   - []*Batch: the drained batches, ready for dispatch
	Finalize() []*Batch

	// InstanceCount returns the total number of records across all pending batches.
	//
	// Returns:
	//   - int: the pending instance count
	InstanceCount() int

	// BatchCount returns the number of pending batches.
	//
	// Returns:
	//   - int: the pending batch count
	BatchCount() int
}

var _ Frame = &frameImpl{}

// NewFrame creates an empty batching scope for one frame's preparation.
//
// Returns:
//   - Frame: the new frame scope
func NewFrame() Frame {
	return &frameImpl{
		mu:      &sync.Mutex{},
		batches: make(map[batchKey]*Batch),
	}
}

func (f *frameImpl) AddInstance(meshID MeshID, variant Variant, transform [16]float32, rect *atlas.Handle) error {
	switch variant {
	case VariantInstancedAtlas:
		if rect == nil {
			return fmt.Errorf("mesh %d: %w", meshID, ErrMissingAtlasRect)
		}
	default:
		if rect != nil {
			return fmt.Errorf("mesh %d variant %s: %w", meshID, variant, ErrUnexpectedAtlasRect)
		}
	}
	if err := checkScale(transform); err != nil {
		return fmt.Errorf("mesh %d: %w", meshID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := batchKey{mesh: meshID, variant: variant}
	b, exists := f.batches[key]
	if !exists {
		b = &Batch{MeshID: meshID, Variant: variant}
		f.batches[key] = b
		f.order = append(f.order, key)
	}
	b.Records = append(b.Records, InstanceRecord{Transform: transform, Rect: rect})
	return nil
}

func (f *frameImpl) Finalize() []*Batch {
	f.mu.Lock()
	defer f.mu.Unlock()

	drained := make([]*Batch, 0, len(f.order))
	for _, key := range f.order {
		drained = append(drained, f.batches[key])
	}
	f.batches = make(map[batchKey]*Batch)
	f.order = nil
	return drained
}

func (f *frameImpl) InstanceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, b := range f.batches {
		count += len(b.Records)
	}
	return count
}

func (f *frameImpl) BatchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

// checkScale rejects transforms whose upper-left 3x3 block has a zero-length
// basis column — a singular affine map that would collapse an axis.
func checkScale(m [16]float32) error {
	for col := 0; col < 3; col++ {
		x := m[col*4]
		y := m[col*4+1]
		z := m[col*4+2]
		if x*x+y*y+z*z == 0 {
			return fmt.Errorf("basis column %d: %w", col, ErrDegenerateScale)
		}
	}
	return nil
}
