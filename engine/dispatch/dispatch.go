package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/batch"
)

// ErrNoAtlas is returned when an atlas-variant batch is dispatched but no atlas
// was configured to resolve its rect handles against.
var ErrNoAtlas = errors.New("dispatch: atlas variant batch with no atlas configured")

// DrawBatch is one draw call's worth of GPU-ready data: the mesh to bind, the
// pipeline variant to draw it with, and the packed per-instance buffer.
type DrawBatch struct {
	// MeshID is the mesh the draw call binds.
	MeshID batch.MeshID

	// Variant selects the pipeline the draw call runs on.
	Variant batch.Variant

	// InstanceData is the packed per-instance buffer: 64 bytes per plain
	// instance, 80 per atlas instance. Nil for the overlay variant, whose
	// geometry is baked in screen space.
	InstanceData []byte

	// InstanceCount is the number of instances to draw.
	InstanceCount int
}

// dispatcherImpl is the implementation of the Dispatcher interface.
type dispatcherImpl struct {
	mu *sync.Mutex

	atlas atlas.Atlas
}

// Dispatcher turns a frame's finalized batches into GPU-ready draw batches. It
// resolves atlas rect handles against the current atlas dimensions at
// preparation time, so instances packed after an atlas Grow automatically pick
// up the new normalization — handles are stored, not baked uv coordinates.
type Dispatcher interface {
	// Prepare packs the finalized batches into draw-ready instance buffers,
	// preserving batch order. Records whose rect handles fail to resolve (stale
	// after a Release) are dropped from their batch; the remaining records still
	// draw, and the first fault is reported alongside the results. Batches left
	// with no records are omitted.
	//
	// Parameters:
	//   - batches: the finalized batches from a frame scope
	//
	// Returns:
	//   - []DrawBatch: the draw-ready batches in submission order
	//   - error: nil, or the first fault annotated with the dropped-record count
	Prepare(batches []*batch.Batch) ([]DrawBatch, error)
}

var _ Dispatcher = &dispatcherImpl{}

// NewDispatcher creates a Dispatcher with the specified options applied. A
// dispatcher without an atlas can still serve plain and overlay batches.
//
// Parameters:
//   - options: functional options to configure the dispatcher
//
// Returns:
//   - Dispatcher: the newly created dispatcher
func NewDispatcher(options ...DispatcherBuilderOption) Dispatcher {
	d := &dispatcherImpl{
		mu: &sync.Mutex{},
	}
	for _, option := range options {
		option(d)
	}
	return d
}

func (d *dispatcherImpl) Prepare(batches []*batch.Batch) ([]DrawBatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]DrawBatch, 0, len(batches))
	var firstErr error
	dropped := 0

	for _, b := range batches {
		var db DrawBatch
		var err error
		var skipped int

		switch b.Variant {
		case batch.VariantInstancedAtlas:
			db, skipped, err = d.packAtlas(b)
		case batch.VariantOverlay2D:
			db = DrawBatch{MeshID: b.MeshID, Variant: b.Variant, InstanceCount: 1}
		default:
			db = packPlain(b)
		}

		dropped += skipped
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if db.InstanceCount > 0 {
			out = append(out, db)
		}
	}

	if firstErr != nil {
		return out, fmt.Errorf("dispatch: dropped %d instances: %w", dropped, firstErr)
	}
	return out, nil
}

func packPlain(b *batch.Batch) DrawBatch {
	data := make([]byte, 0, len(b.Records)*64)
	for i := range b.Records {
		inst := GPUPlainInstance{Model: b.Records[i].Transform}
		data = append(data, inst.Marshal()...)
	}
	return DrawBatch{
		MeshID:        b.MeshID,
		Variant:       b.Variant,
		InstanceData:  data,
		InstanceCount: len(b.Records),
	}
}

// packAtlas resolves each record's rect handle to normalized coordinates
// against the atlas's current dimensions. Records with stale handles are
// skipped; the first resolution error is returned.
func (d *dispatcherImpl) packAtlas(b *batch.Batch) (DrawBatch, int, error) {
	if d.atlas == nil {
		return DrawBatch{}, len(b.Records), fmt.Errorf("mesh %d: %w", b.MeshID, ErrNoAtlas)
	}

	w := float32(d.atlas.Width())
	h := float32(d.atlas.Height())

	data := make([]byte, 0, len(b.Records)*80)
	count := 0
	var firstErr error

	for i := range b.Records {
		rec := &b.Records[i]
		r, err := d.atlas.Rect(*rec.Rect)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("mesh %d record %d: %w", b.MeshID, i, err)
			}
			continue
		}

		inst := GPUAtlasInstance{
			Model:      rec.Transform,
			RectOffset: [2]float32{float32(r.X) / w, float32(r.Y) / h},
			RectSize:   [2]float32{float32(r.Width) / w, float32(r.Height) / h},
		}
		data = append(data, inst.Marshal()...)
		count++
	}

	db := DrawBatch{
		MeshID:        b.MeshID,
		Variant:       b.Variant,
		InstanceData:  data,
		InstanceCount: count,
	}
	return db, len(b.Records) - count, firstErr
}
