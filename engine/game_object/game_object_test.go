package game_object

import (
	"math"
	"testing"

	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/batch"
	"github.com/tessera-gl/tessera/engine/model"
)

func testMeshes(t *testing.T) (plain, overlay model.Mesh) {
	t.Helper()
	reg := model.NewRegistry()
	plain = reg.Register(model.WithName("tri"), model.WithVertices(
		[]model.GPUVertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 1, 0}},
		},
		[]uint32{0, 1, 2},
	))
	overlay = reg.Register(model.WithName("hud"), model.WithOverlayVertices(
		[]model.GPUOverlayVertex{
			{Position: [2]float32{0, 0}},
			{Position: [2]float32{1, 0}},
			{Position: [2]float32{0, 1}},
		},
		[]uint32{0, 1, 2},
	))
	return plain, overlay
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

func TestVariantDerivation(t *testing.T) {
	plain, overlay := testMeshes(t)
	h := testHandle(t)

	tests := []struct {
		name string
		obj  GameObject
		want batch.Variant
	}{
		{"plain mesh no rect", NewGameObject(WithMesh(plain)), batch.VariantInstancedPlain},
		{"plain mesh with rect", NewGameObject(WithMesh(plain), WithAtlasRect(h)), batch.VariantInstancedAtlas},
		{"overlay mesh", NewGameObject(WithMesh(overlay)), batch.VariantOverlay2D},
		{"overlay mesh with rect", NewGameObject(WithMesh(overlay), WithAtlasRect(h)), batch.VariantOverlay2D},
	}
	for _, tt := range tests {
		if got := tt.obj.Variant(); got != tt.want {
			t.Errorf("%s: Variant() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSetAtlasRectSwitchesVariant(t *testing.T) {
	plain, _ := testMeshes(t)
	obj := NewGameObject(WithMesh(plain))
	if obj.Variant() != batch.VariantInstancedPlain {
		t.Fatalf("Variant() = %s, want %s", obj.Variant(), batch.VariantInstancedPlain)
	}

	obj.SetAtlasRect(testHandle(t))
	if obj.Variant() != batch.VariantInstancedAtlas {
		t.Errorf("after attach: Variant() = %s, want %s", obj.Variant(), batch.VariantInstancedAtlas)
	}

	obj.SetAtlasRect(nil)
	if obj.Variant() != batch.VariantInstancedPlain {
		t.Errorf("after detach: Variant() = %s, want %s", obj.Variant(), batch.VariantInstancedPlain)
	}
}

func TestDefaults(t *testing.T) {
	obj := NewGameObject()
	if !obj.Enabled() {
		t.Error("new object should be enabled")
	}
	if obj.Ephemeral() {
		t.Error("new object should not be ephemeral")
	}
	sx, sy, sz := obj.Scale()
	if sx != 1 || sy != 1 || sz != 1 {
		t.Errorf("Scale() = (%v, %v, %v), want unit scale", sx, sy, sz)
	}
}

func TestAdvanceIntegratesRotationSpeed(t *testing.T) {
	obj := NewGameObject(
		WithRotation(0.5, 0, 0),
		WithRotationSpeed(1, 2, -4),
	)

	obj.Advance(0.25)
	rx, ry, rz := obj.Rotation()
	if math.Abs(float64(rx-0.75)) > 1e-6 || math.Abs(float64(ry-0.5)) > 1e-6 || math.Abs(float64(rz+1)) > 1e-6 {
		t.Errorf("Rotation() = (%v, %v, %v), want (0.75, 0.5, -1)", rx, ry, rz)
	}

	obj.Advance(0.25)
	rx, ry, rz = obj.Rotation()
	if math.Abs(float64(rx-1)) > 1e-6 || math.Abs(float64(ry-1)) > 1e-6 || math.Abs(float64(rz+2)) > 1e-6 {
		t.Errorf("second Advance: Rotation() = (%v, %v, %v), want (1, 1, -2)", rx, ry, rz)
	}
}

func TestModelMatrixTranslationAndScale(t *testing.T) {
	obj := NewGameObject(
		WithPosition(3, -2, 7),
		WithScale(2, 2, 2),
	)

	m := obj.ModelMatrix()
	if m[12] != 3 || m[13] != -2 || m[14] != 7 {
		t.Errorf("translation = (%v, %v, %v), want (3, -2, 7)", m[12], m[13], m[14])
	}
	// No rotation, so the diagonal carries the scale.
	if m[0] != 2 || m[5] != 2 || m[10] != 2 {
		t.Errorf("scale diagonal = (%v, %v, %v), want (2, 2, 2)", m[0], m[5], m[10])
	}
	if m[15] != 1 {
		t.Errorf("m[15] = %v, want 1", m[15])
	}
}
