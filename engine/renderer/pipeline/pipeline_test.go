package pipeline

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/tessera-gl/tessera/engine/batch"
)

func TestPlainVariantLayouts(t *testing.T) {
	layouts := VertexLayouts(batch.VariantInstancedPlain)
	if len(layouts) != 2 {
		t.Fatalf("got %d buffers, want 2 (vertex + instance)", len(layouts))
	}

	vtx := layouts[0]
	if vtx.ArrayStride != 20 || vtx.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("vertex buffer stride/step = %d/%v", vtx.ArrayStride, vtx.StepMode)
	}
	if len(vtx.Attributes) != 2 {
		t.Fatalf("vertex buffer has %d attributes, want 2", len(vtx.Attributes))
	}
	if vtx.Attributes[0].Format != wgpu.VertexFormatFloat32x3 || vtx.Attributes[0].Offset != 0 {
		t.Errorf("position attribute = %+v", vtx.Attributes[0])
	}
	if vtx.Attributes[1].Format != wgpu.VertexFormatFloat32x2 || vtx.Attributes[1].Offset != 12 {
		t.Errorf("uv attribute = %+v", vtx.Attributes[1])
	}

	inst := layouts[1]
	if inst.ArrayStride != 64 || inst.StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("instance buffer stride/step = %d/%v", inst.ArrayStride, inst.StepMode)
	}
	if len(inst.Attributes) != 4 {
		t.Fatalf("plain instance buffer has %d attributes, want 4 transform columns", len(inst.Attributes))
	}
	for i, attr := range inst.Attributes {
		if attr.Format != wgpu.VertexFormatFloat32x4 {
			t.Errorf("column %d format = %v", i, attr.Format)
		}
		if attr.Offset != uint64(i*16) {
			t.Errorf("column %d offset = %d, want %d", i, attr.Offset, i*16)
		}
		if attr.ShaderLocation != uint32(2+i) {
			t.Errorf("column %d location = %d, want %d", i, attr.ShaderLocation, 2+i)
		}
	}
}

func TestAtlasVariantLayoutAddsRect(t *testing.T) {
	layouts := VertexLayouts(batch.VariantInstancedAtlas)
	if len(layouts) != 2 {
		t.Fatalf("got %d buffers, want 2", len(layouts))
	}

	inst := layouts[1]
	if inst.ArrayStride != 80 {
		t.Errorf("atlas instance stride = %d, want 80", inst.ArrayStride)
	}
	if len(inst.Attributes) != 6 {
		t.Fatalf("atlas instance buffer has %d attributes, want 6", len(inst.Attributes))
	}

	offset := inst.Attributes[4]
	if offset.Format != wgpu.VertexFormatFloat32x2 || offset.Offset != 64 || offset.ShaderLocation != 6 {
		t.Errorf("rect offset attribute = %+v", offset)
	}
	size := inst.Attributes[5]
	if size.Format != wgpu.VertexFormatFloat32x2 || size.Offset != 72 || size.ShaderLocation != 7 {
		t.Errorf("rect size attribute = %+v", size)
	}
}

func TestOverlayVariantLayout(t *testing.T) {
	layouts := VertexLayouts(batch.VariantOverlay2D)
	if len(layouts) != 1 {
		t.Fatalf("overlay got %d buffers, want 1 (no instancing)", len(layouts))
	}

	vtx := layouts[0]
	if vtx.ArrayStride != 16 {
		t.Errorf("overlay vertex stride = %d, want 16", vtx.ArrayStride)
	}
	if vtx.Attributes[0].Format != wgpu.VertexFormatFloat32x2 {
		t.Errorf("overlay position format = %v", vtx.Attributes[0].Format)
	}
}

func TestVariantDefaults(t *testing.T) {
	p3d := NewPipeline(batch.VariantInstancedAtlas)
	if !p3d.DepthTestEnabled() || !p3d.DepthWriteEnabled() {
		t.Error("instanced pipeline should depth test and write")
	}
	if p3d.BlendEnabled() {
		t.Error("instanced pipeline should not blend by default")
	}
	if p3d.CullMode() != wgpu.CullModeBack {
		t.Errorf("instanced cull mode = %v, want back", p3d.CullMode())
	}

	hud := NewPipeline(batch.VariantOverlay2D)
	if hud.DepthTestEnabled() || hud.DepthWriteEnabled() {
		t.Error("overlay pipeline must not depth test or write")
	}
	if !hud.BlendEnabled() {
		t.Error("overlay pipeline must alpha blend")
	}
	if hud.CullMode() != wgpu.CullModeNone {
		t.Errorf("overlay cull mode = %v, want none", hud.CullMode())
	}
}

func TestBuilderOverrides(t *testing.T) {
	p := NewPipeline(batch.VariantInstancedPlain,
		WithPipelineKey("custom"),
		WithCullMode(wgpu.CullModeNone),
		WithDepthWriteEnabled(false),
	)
	if p.PipelineKey() != "custom" {
		t.Errorf("key = %q", p.PipelineKey())
	}
	if p.CullMode() != wgpu.CullModeNone || p.DepthWriteEnabled() {
		t.Error("builder options not applied")
	}
}

func TestShaderSourcesMatchVariants(t *testing.T) {
	for _, tc := range []struct {
		variant batch.Variant
		needle  string
	}{
		{batch.VariantInstancedPlain, "@location(5) model_3"},
		{batch.VariantInstancedAtlas, "rect_offset + vertex.uv * instance.rect_size"},
		{batch.VariantOverlay2D, "@location(0) position: vec2<f32>"},
	} {
		src := NewPipeline(tc.variant).ShaderSource()
		if !strings.Contains(src, tc.needle) {
			t.Errorf("%s shader missing %q", tc.variant, tc.needle)
		}
		if !strings.Contains(src, "fn vs_main") || !strings.Contains(src, "fn fs_main") {
			t.Errorf("%s shader missing entry points", tc.variant)
		}
	}
}
