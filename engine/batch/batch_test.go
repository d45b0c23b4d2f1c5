package batch

import (
	"errors"
	"testing"

	"github.com/tessera-gl/tessera/engine/atlas"
)

// identity is a valid transform for tests that only care about batching.
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

func testHandle(t *testing.T) *atlas.Handle {
	t.Helper()
	a := atlas.NewAtlas(atlas.WithSize(64, 64))
	h, err := a.Allocate(16, 16)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	return &h
}

func TestAddInstancePreservesOrder(t *testing.T) {
	f := NewFrame()
	for i := 0; i < 3; i++ {
		if err := f.AddInstance(7, VariantInstancedPlain, translated(float32(i)), nil); err != nil {
			t.Fatalf("AddInstance %d failed: %v", i, err)
		}
	}

	batches := f.Finalize()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	b := batches[0]
	if b.MeshID != 7 || b.Variant != VariantInstancedPlain {
		t.Fatalf("batch key = (%d, %s)", b.MeshID, b.Variant)
	}
	if len(b.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(b.Records))
	}
	for i, rec := range b.Records {
		if rec.Transform[12] != float32(i) {
			t.Errorf("record %d has translation %v, want %d (submission order lost)", i, rec.Transform[12], i)
		}
	}
}

func TestBatchesKeyedByMeshAndVariant(t *testing.T) {
	f := NewFrame()
	h := testHandle(t)

	adds := []struct {
		mesh    MeshID
		variant Variant
		rect    *atlas.Handle
	}{
		{1, VariantInstancedPlain, nil},
		{2, VariantInstancedPlain, nil},
		{1, VariantInstancedAtlas, h},
		{1, VariantInstancedPlain, nil},
	}
	for i, a := range adds {
		if err := f.AddInstance(a.mesh, a.variant, identity, a.rect); err != nil {
			t.Fatalf("AddInstance %d failed: %v", i, err)
		}
	}
	if got := f.BatchCount(); got != 3 {
		t.Fatalf("BatchCount = %d, want 3", got)
	}
	if got := f.InstanceCount(); got != 4 {
		t.Fatalf("InstanceCount = %d, want 4", got)
	}

	batches := f.Finalize()
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	// Batches drain in first-creation order.
	if batches[0].MeshID != 1 || batches[0].Variant != VariantInstancedPlain {
		t.Errorf("batch 0 = (%d, %s)", batches[0].MeshID, batches[0].Variant)
	}
	if batches[1].MeshID != 2 {
		t.Errorf("batch 1 mesh = %d, want 2", batches[1].MeshID)
	}
	if batches[2].Variant != VariantInstancedAtlas {
		t.Errorf("batch 2 variant = %s, want instanced-atlas", batches[2].Variant)
	}
	if len(batches[0].Records) != 2 {
		t.Errorf("batch 0 has %d records, want 2", len(batches[0].Records))
	}
}

func TestAtlasVariantRequiresRect(t *testing.T) {
	f := NewFrame()

	err := f.AddInstance(1, VariantInstancedAtlas, identity, nil)
	if !errors.Is(err, ErrMissingAtlasRect) {
		t.Errorf("atlas variant without rect = %v, want ErrMissingAtlasRect", err)
	}

	// The same call under the plain variant succeeds.
	if err := f.AddInstance(1, VariantInstancedPlain, identity, nil); err != nil {
		t.Errorf("plain variant without rect failed: %v", err)
	}

	// Faulty submissions must not leave partial records behind.
	if got := f.InstanceCount(); got != 1 {
		t.Errorf("InstanceCount = %d, want 1", got)
	}
}

func TestNonAtlasVariantRejectsRect(t *testing.T) {
	f := NewFrame()
	h := testHandle(t)

	for _, v := range []Variant{VariantInstancedPlain, VariantOverlay2D} {
		err := f.AddInstance(1, v, identity, h)
		if !errors.Is(err, ErrUnexpectedAtlasRect) {
			t.Errorf("%s with rect = %v, want ErrUnexpectedAtlasRect", v, err)
		}
	}
}

func TestDegenerateScaleRejected(t *testing.T) {
	f := NewFrame()

	m := identity
	m[5] = 0 // zero the Y basis column
	err := f.AddInstance(1, VariantInstancedPlain, m, nil)
	if !errors.Is(err, ErrDegenerateScale) {
		t.Errorf("zero-scale transform = %v, want ErrDegenerateScale", err)
	}

	// Rotation combined with non-unit scale is fine.
	rot := [16]float32{
		0, 2, 0, 0,
		-2, 0, 0, 0,
		0, 0, 0.5, 0,
		3, 4, 5, 1,
	}
	if err := f.AddInstance(1, VariantInstancedPlain, rot, nil); err != nil {
		t.Errorf("rotated+scaled transform rejected: %v", err)
	}
}

func TestFinalizeResetsFrameScope(t *testing.T) {
	f := NewFrame()
	if err := f.AddInstance(1, VariantInstancedPlain, identity, nil); err != nil {
		t.Fatalf("AddInstance failed: %v", err)
	}

	first := f.Finalize()
	if len(first) != 1 {
		t.Fatalf("first Finalize got %d batches", len(first))
	}
	if got := f.Finalize(); len(got) != 0 {
		t.Errorf("second Finalize got %d batches, want 0 (state carried across frames)", len(got))
	}
	if f.InstanceCount() != 0 || f.BatchCount() != 0 {
		t.Errorf("counts nonzero after Finalize")
	}

	// Re-use after drain starts a fresh batch, not the drained one.
	if err := f.AddInstance(1, VariantInstancedPlain, identity, nil); err != nil {
		t.Fatalf("AddInstance after Finalize failed: %v", err)
	}
	second := f.Finalize()
	if len(second) != 1 || len(second[0].Records) != 1 {
		t.Fatalf("batch after reset = %+v", second)
	}
	if second[0] == first[0] {
		t.Error("Finalize handed back the same batch object across frames")
	}
}

func TestIndependentFrameScopes(t *testing.T) {
	// Pipelined frames each own their records; one frame's drain must not
	// disturb another's.
	f1 := NewFrame()
	f2 := NewFrame()
	if err := f1.AddInstance(1, VariantInstancedPlain, translated(1), nil); err != nil {
		t.Fatal(err)
	}
	if err := f2.AddInstance(1, VariantInstancedPlain, translated(2), nil); err != nil {
		t.Fatal(err)
	}

	got1 := f1.Finalize()
	if f2.InstanceCount() != 1 {
		t.Errorf("draining frame 1 disturbed frame 2")
	}
	got2 := f2.Finalize()
	if got1[0].Records[0].Transform[12] != 1 || got2[0].Records[0].Transform[12] != 2 {
		t.Errorf("frames shared record state")
	}
}
