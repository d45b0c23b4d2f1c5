package model

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestRegistryAssignsDistinctIDs(t *testing.T) {
	r := NewRegistry()
	v, idx := QuadGeometry(1, 1)

	a := r.Register(WithName("a"), WithVertices(v, idx))
	b := r.Register(WithName("b"), WithVertices(v, idx))
	if a.ID() == b.ID() {
		t.Fatalf("two registrations share id %d", a.ID())
	}
	if r.Count() != 2 {
		t.Fatalf("Count = %d, want 2", r.Count())
	}

	got, ok := r.Mesh(b.ID())
	if !ok || got.Name() != "b" {
		t.Errorf("lookup of %d gave (%v, %v)", b.ID(), got, ok)
	}
	if _, ok := r.Mesh(999); ok {
		t.Error("lookup of unknown id succeeded")
	}
}

func TestMeshDataSizes(t *testing.T) {
	r := NewRegistry()
	v, idx := CubeGeometry(2)

	m := r.Register(WithName("cube"), WithVertices(v, idx))
	if m.VertexCount() != 24 {
		t.Errorf("cube VertexCount = %d, want 24", m.VertexCount())
	}
	if m.IndexCount() != 36 {
		t.Errorf("cube IndexCount = %d, want 36", m.IndexCount())
	}
	if len(m.VertexData()) != 24*20 {
		t.Errorf("cube vertex data = %d bytes, want %d", len(m.VertexData()), 24*20)
	}
	if len(m.IndexData()) != 36*4 {
		t.Errorf("cube index data = %d bytes, want %d", len(m.IndexData()), 36*4)
	}
	if m.Overlay() {
		t.Error("3D mesh reported as overlay")
	}
}

func TestOverlayMeshDataSizes(t *testing.T) {
	r := NewRegistry()
	v, idx := OverlayQuadGeometry(10, 20, 100, 50, 0, 0, 1, 1)

	m := r.Register(WithName("hud"), WithOverlayVertices(v, idx))
	if !m.Overlay() {
		t.Error("overlay mesh not flagged as overlay")
	}
	if len(m.VertexData()) != 4*16 {
		t.Errorf("overlay vertex data = %d bytes, want %d", len(m.VertexData()), 4*16)
	}
	if m.IndexCount() != 6 {
		t.Errorf("overlay IndexCount = %d, want 6", m.IndexCount())
	}
}

func TestGPUVertexMarshalLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		TexCoord: [2]float32{0.25, 0.75},
	}
	if v.Size() != 20 {
		t.Fatalf("GPUVertex Size = %d, want 20", v.Size())
	}

	buf := v.Marshal()
	if len(buf) != 20 {
		t.Fatalf("Marshal length = %d, want 20", len(buf))
	}
	want := []float32{1, 2, 3, 0.25, 0.75}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestOverlayQuadGeometryCorners(t *testing.T) {
	v, idx := OverlayQuadGeometry(10, 20, 100, 50, 0.1, 0.2, 0.3, 0.4)
	if len(v) != 4 || len(idx) != 6 {
		t.Fatalf("got %d vertices, %d indices", len(v), len(idx))
	}

	// Corners wind top-left, top-right, bottom-right, bottom-left.
	if v[0].Position != [2]float32{10, 20} || v[0].TexCoord != [2]float32{0.1, 0.2} {
		t.Errorf("top-left = %+v", v[0])
	}
	if v[2].Position != [2]float32{110, 70} || v[2].TexCoord != [2]float32{0.3, 0.4} {
		t.Errorf("bottom-right = %+v", v[2])
	}
}

func TestIndexMarshalLittleEndian(t *testing.T) {
	r := NewRegistry()
	v, _ := QuadGeometry(1, 1)
	m := r.Register(WithVertices(v, []uint32{0, 1, 0x01020304}))

	data := m.IndexData()
	if got := binary.LittleEndian.Uint32(data[8:]); got != 0x01020304 {
		t.Errorf("index 2 = %#x, want 0x01020304", got)
	}
}
