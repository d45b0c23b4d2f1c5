package dispatch

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/batch"
)

var identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func translated(x float32) [16]float32 {
	m := identity
	m[12] = x
	return m
}

func float32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestPreparePlainLayout(t *testing.T) {
	f := batch.NewFrame()
	for i := 0; i < 2; i++ {
		if err := f.AddInstance(3, batch.VariantInstancedPlain, translated(float32(i+1)), nil); err != nil {
			t.Fatalf("AddInstance failed: %v", err)
		}
	}

	d := NewDispatcher()
	draws, err := d.Prepare(f.Finalize())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(draws) != 1 {
		t.Fatalf("got %d draw batches, want 1", len(draws))
	}

	db := draws[0]
	if db.InstanceCount != 2 || len(db.InstanceData) != 128 {
		t.Fatalf("count=%d len=%d, want 2/128", db.InstanceCount, len(db.InstanceData))
	}
	// Translation lives in transform element 12 of each 64-byte instance.
	if got := float32At(t, db.InstanceData, 12*4); got != 1 {
		t.Errorf("instance 0 translation = %v, want 1", got)
	}
	if got := float32At(t, db.InstanceData, 64+12*4); got != 2 {
		t.Errorf("instance 1 translation = %v, want 2", got)
	}
}

func TestPrepareAtlasNormalizesRect(t *testing.T) {
	a := atlas.NewAtlas(atlas.WithSize(256, 256))
	if _, err := a.Allocate(64, 64); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	h, err := a.Allocate(64, 64) // lands at (64, 0)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	f := batch.NewFrame()
	if err := f.AddInstance(1, batch.VariantInstancedAtlas, identity, &h); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}

	d := NewDispatcher(WithAtlas(a))
	draws, err := d.Prepare(f.Finalize())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	db := draws[0]
	if db.InstanceCount != 1 || len(db.InstanceData) != 80 {
		t.Fatalf("count=%d len=%d, want 1/80", db.InstanceCount, len(db.InstanceData))
	}

	// Rect (64,0,64,64) in a 256x256 atlas: offset (0.25, 0), size (0.25, 0.25).
	if got := float32At(t, db.InstanceData, 64); got != 0.25 {
		t.Errorf("rect offset u = %v, want 0.25", got)
	}
	if got := float32At(t, db.InstanceData, 68); got != 0 {
		t.Errorf("rect offset v = %v, want 0", got)
	}
	if got := float32At(t, db.InstanceData, 72); got != 0.25 {
		t.Errorf("rect size u = %v, want 0.25", got)
	}
	if got := float32At(t, db.InstanceData, 76); got != 0.25 {
		t.Errorf("rect size v = %v, want 0.25", got)
	}
}

func TestPrepareDropsStaleHandles(t *testing.T) {
	a := atlas.NewAtlas(atlas.WithSize(256, 256))
	good, err := a.Allocate(32, 32)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	stale, err := a.Allocate(32, 32)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := a.Release(stale); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	f := batch.NewFrame()
	if err := f.AddInstance(1, batch.VariantInstancedAtlas, identity, &stale); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}
	if err := f.AddInstance(1, batch.VariantInstancedAtlas, identity, &good); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}

	d := NewDispatcher(WithAtlas(a))
	draws, err := d.Prepare(f.Finalize())
	if !errors.Is(err, atlas.ErrStaleHandle) {
		t.Errorf("Prepare error = %v, want ErrStaleHandle", err)
	}
	// The surviving record still draws.
	if len(draws) != 1 || draws[0].InstanceCount != 1 {
		t.Fatalf("draws = %+v, want one batch with one instance", draws)
	}
}

func TestPrepareOverlayHasNoInstanceBuffer(t *testing.T) {
	f := batch.NewFrame()
	if err := f.AddInstance(9, batch.VariantOverlay2D, identity, nil); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}

	d := NewDispatcher()
	draws, err := d.Prepare(f.Finalize())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	db := draws[0]
	if db.InstanceData != nil {
		t.Errorf("overlay batch packed %d bytes of instance data", len(db.InstanceData))
	}
	if db.InstanceCount != 1 {
		t.Errorf("overlay InstanceCount = %d, want 1", db.InstanceCount)
	}
}

func TestPrepareAtlasVariantWithoutAtlas(t *testing.T) {
	a := atlas.NewAtlas(atlas.WithSize(64, 64))
	h, err := a.Allocate(16, 16)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	f := batch.NewFrame()
	if err := f.AddInstance(1, batch.VariantInstancedAtlas, identity, &h); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}

	d := NewDispatcher() // no atlas wired
	draws, err := d.Prepare(f.Finalize())
	if !errors.Is(err, ErrNoAtlas) {
		t.Errorf("Prepare error = %v, want ErrNoAtlas", err)
	}
	if len(draws) != 0 {
		t.Errorf("got %d draw batches, want 0", len(draws))
	}
}

func TestPreparePreservesBatchOrder(t *testing.T) {
	f := batch.NewFrame()
	for _, mesh := range []batch.MeshID{5, 2, 8} {
		if err := f.AddInstance(mesh, batch.VariantInstancedPlain, identity, nil); err != nil {
			t.Fatalf("AddInstance failed: %v", err)
		}
	}

	d := NewDispatcher()
	draws, err := d.Prepare(f.Finalize())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	want := []batch.MeshID{5, 2, 8}
	if len(draws) != 3 {
		t.Fatalf("got %d draw batches, want 3", len(draws))
	}
	for i, db := range draws {
		if db.MeshID != want[i] {
			t.Errorf("draw %d mesh = %d, want %d", i, db.MeshID, want[i])
		}
	}
}
