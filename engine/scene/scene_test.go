package scene

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/tessera-gl/tessera/common"
	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/batch"
	"github.com/tessera-gl/tessera/engine/camera"
	"github.com/tessera-gl/tessera/engine/game_object"
	"github.com/tessera-gl/tessera/engine/model"
	"github.com/tessera-gl/tessera/engine/renderer"
	"github.com/tessera-gl/tessera/engine/renderer/bind_group_provider"
	"github.com/tessera-gl/tessera/engine/renderer/pipeline"
)

// drawRecord captures one DrawCall issued against the stub renderer.
type drawRecord struct {
	pipelineKey   string
	instanceCount uint32
	hasInstances  bool
}

// stubRenderer implements renderer.Renderer without a GPU, recording the
// calls the scene makes so frame behavior can be asserted.
type stubRenderer struct {
	pipelines   map[string]pipeline.Pipeline
	uploadSizes []int
	writeCalls  [][]bind_group_provider.BufferWrite
	texInits    int
	texWrites   int
	draws       []drawRecord
}

var _ renderer.Renderer = &stubRenderer{}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (r *stubRenderer) Pipeline(key string) pipeline.Pipeline {
	return r.pipelines[key]
}

func (r *stubRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *stubRenderer) Resize(width, height int)          {}
func (r *stubRenderer) SetPresentMode(renderer.PresentMode) {}

func (r *stubRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return nil
}

func (r *stubRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return nil
}

func (r *stubRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	r.texInits++
	return nil
}

func (r *stubRenderer) WriteTexture(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	r.texWrites++
	return nil
}

func (r *stubRenderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return nil
}

func (r *stubRenderer) UploadInstances(provider bind_group_provider.BindGroupProvider, data []byte) error {
	r.uploadSizes = append(r.uploadSizes, len(data))
	return nil
}

func (r *stubRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.writeCalls = append(r.writeCalls, writes)
}

func (r *stubRenderer) BeginFrame() error { return nil }

func (r *stubRenderer) DrawCall(pipelineKey string, meshProvider, instanceProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.draws = append(r.draws, drawRecord{
		pipelineKey:   pipelineKey,
		instanceCount: instanceCount,
		hasInstances:  instanceProvider != nil,
	})
	return nil
}

func (r *stubRenderer) EndFrame() {}
func (r *stubRenderer) Present()  {}

func testCamera() camera.Camera {
	return camera.NewCamera(camera.WithPerspective(1.0, 16.0/9.0, 0.1, 100))
}

func registerCube(t *testing.T, s Scene) model.Mesh {
	t.Helper()
	return s.Meshes().Register(model.WithName("cube"), model.WithVertices(
		[]model.GPUVertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 1, 0}},
		},
		[]uint32{0, 1, 2},
	))
}

func registerHud(t *testing.T, s Scene) model.Mesh {
	t.Helper()
	return s.Meshes().Register(model.WithName("hud"), model.WithOverlayVertices(
		[]model.GPUOverlayVertex{
			{Position: [2]float32{0, 0}},
			{Position: [2]float32{64, 0}},
			{Position: [2]float32{0, 64}},
		},
		[]uint32{0, 1, 2},
	))
}

func TestAddGetRemove(t *testing.T) {
	s := NewScene("test", testCamera(), newStubRenderer(), nil, 800, 600)
	mesh := registerCube(t, s)

	id := s.Add(game_object.NewGameObject(game_object.WithMesh(mesh)))
	if id == 0 {
		t.Fatal("Add returned zero ID")
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
	if s.Get(id) == nil {
		t.Fatal("Get returned nil for persisted object")
	}

	// Ephemeral objects are submitted but not persisted.
	ephID := s.Add(game_object.NewGameObject(game_object.WithMesh(mesh), game_object.WithEphemeral(true)))
	if s.Count() != 1 {
		t.Fatalf("Count() after ephemeral Add = %d, want 1", s.Count())
	}
	if s.Get(ephID) != nil {
		t.Fatal("Get returned an ephemeral object")
	}

	s.Remove(id)
	if s.Count() != 0 || s.Get(id) != nil {
		t.Fatal("Remove did not evict the object")
	}
}

func TestAddWithoutMeshPanics(t *testing.T) {
	s := NewScene("test", testCamera(), newStubRenderer(), nil, 800, 600)
	defer func() {
		if recover() == nil {
			t.Fatal("Add without a mesh did not panic")
		}
	}()
	s.Add(game_object.NewGameObject())
}

func TestUpdateBatchesByVariant(t *testing.T) {
	stub := newStubRenderer()
	atl := atlas.NewAtlas(atlas.WithSize(64, 64))
	h, err := atl.Allocate(16, 16)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	s := NewScene("test", testCamera(), stub, atl, 800, 600)
	cube := registerCube(t, s)
	hud := registerHud(t, s)

	s.Add(game_object.NewGameObject(game_object.WithMesh(cube)))
	s.Add(game_object.NewGameObject(game_object.WithMesh(cube), game_object.WithPosition(2, 0, 0)))
	s.Add(game_object.NewGameObject(game_object.WithMesh(cube), game_object.WithAtlasRect(&h)))
	s.Add(game_object.NewGameObject(game_object.WithMesh(hud)))

	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.InstanceCount() != 4 {
		t.Errorf("InstanceCount() = %d, want 4", s.InstanceCount())
	}
	// Same mesh splits by variant; overlay gets its own batch.
	if s.BatchCount() != 3 {
		t.Errorf("BatchCount() = %d, want 3", s.BatchCount())
	}

	// Plain batch packs 64 bytes per instance, atlas 80; the overlay batch
	// uploads nothing.
	if len(stub.uploadSizes) != 2 {
		t.Fatalf("got %d instance uploads, want 2", len(stub.uploadSizes))
	}
	if stub.uploadSizes[0] != 2*64 {
		t.Errorf("plain upload = %d bytes, want 128", stub.uploadSizes[0])
	}
	if stub.uploadSizes[1] != 80 {
		t.Errorf("atlas upload = %d bytes, want 80", stub.uploadSizes[1])
	}
}

func TestDrawCallsPerBatch(t *testing.T) {
	stub := newStubRenderer()
	atl := atlas.NewAtlas(atlas.WithSize(64, 64))
	h, err := atl.Allocate(16, 16)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	s := NewScene("test", testCamera(), stub, atl, 800, 600)
	cube := registerCube(t, s)
	hud := registerHud(t, s)

	s.Add(game_object.NewGameObject(game_object.WithMesh(cube)))
	s.Add(game_object.NewGameObject(game_object.WithMesh(cube), game_object.WithAtlasRect(&h)))
	s.Add(game_object.NewGameObject(game_object.WithMesh(hud)))

	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls failed: %v", err)
	}

	if len(stub.draws) != 3 {
		t.Fatalf("got %d draws, want 3", len(stub.draws))
	}

	wantKeys := []string{
		batch.VariantInstancedPlain.String(),
		batch.VariantInstancedAtlas.String(),
		batch.VariantOverlay2D.String(),
	}
	for i, d := range stub.draws {
		if d.pipelineKey != wantKeys[i] {
			t.Errorf("draw %d used pipeline %q, want %q", i, d.pipelineKey, wantKeys[i])
		}
	}

	// Instanced variants bind an instance buffer; overlay draws a single
	// non-instanced quad.
	if !stub.draws[0].hasInstances || !stub.draws[1].hasInstances {
		t.Error("instanced draws missing instance provider")
	}
	if stub.draws[2].hasInstances {
		t.Error("overlay draw should not bind an instance buffer")
	}
	if stub.draws[2].instanceCount != 1 {
		t.Errorf("overlay instance count = %d, want 1", stub.draws[2].instanceCount)
	}
}

func TestStaleHandleFaultDropsInstanceOnly(t *testing.T) {
	stub := newStubRenderer()
	atl := atlas.NewAtlas(atlas.WithSize(64, 64))
	h, err := atl.Allocate(16, 16)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	s := NewScene("test", testCamera(), stub, atl, 800, 600)
	cube := registerCube(t, s)

	s.Add(game_object.NewGameObject(game_object.WithMesh(cube)))
	s.Add(game_object.NewGameObject(game_object.WithMesh(cube), game_object.WithAtlasRect(&h)))

	if err := atl.Release(h); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	err = s.Update(0.016)
	if !errors.Is(err, atlas.ErrStaleHandle) {
		t.Fatalf("Update error = %v, want ErrStaleHandle", err)
	}

	// The plain instance survives; the emptied atlas batch is omitted.
	if s.BatchCount() != 1 {
		t.Errorf("BatchCount() = %d, want 1", s.BatchCount())
	}
	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls failed: %v", err)
	}
	if len(stub.draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(stub.draws))
	}
}

func TestDisabledObjectsNotSubmitted(t *testing.T) {
	s := NewScene("test", testCamera(), newStubRenderer(), nil, 800, 600)
	cube := registerCube(t, s)

	obj := game_object.NewGameObject(game_object.WithMesh(cube))
	s.Add(obj)
	obj.SetEnabled(false)

	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.InstanceCount() != 0 {
		t.Errorf("InstanceCount() = %d, want 0", s.InstanceCount())
	}
	if s.BatchCount() != 0 {
		t.Errorf("BatchCount() = %d, want 0", s.BatchCount())
	}
}

func TestResizeRefreshesOverlayProjection(t *testing.T) {
	stub := newStubRenderer()
	s := NewScene("test", testCamera(), stub, nil, 800, 600)
	cube := registerCube(t, s)
	s.Add(game_object.NewGameObject(game_object.WithMesh(cube)))

	// First frame writes the camera and overlay uniforms.
	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	first := len(stub.writeCalls)
	if first != 1 {
		t.Fatalf("got %d WriteBuffers calls after first frame, want 1", first)
	}

	// A steady frame has nothing to write.
	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(stub.writeCalls) != first {
		t.Fatalf("steady frame issued uniform writes")
	}

	s.Resize(1024, 768)
	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(stub.writeCalls) != first+1 {
		t.Fatal("resize did not refresh uniforms on the next frame")
	}
}

func TestAtlasUploadOnDirtyAndGrow(t *testing.T) {
	stub := newStubRenderer()
	atl := atlas.NewAtlas(atlas.WithSize(32, 32))
	if _, err := atl.Register(make([]byte, 16*16*4), 16, 16); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// NewScene composites the initial staging data, clearing the dirty flag
	// and creating the first texture.
	s := NewScene("test", testCamera(), stub, atl, 800, 600)
	initTex := stub.texInits

	cube := registerCube(t, s)
	h, err := atl.Register(make([]byte, 8*8*4), 8, 8)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	s.Add(game_object.NewGameObject(game_object.WithMesh(cube), game_object.WithAtlasRect(&h)))

	// Same dimensions: texels stream into the existing texture.
	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if stub.texWrites != 1 {
		t.Fatalf("texWrites = %d, want 1", stub.texWrites)
	}
	if stub.texInits != initTex {
		t.Fatal("same-size upload recreated the texture")
	}

	// Grow: the texture and bind group must be recreated.
	if err := atl.Grow(64, 64); err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if err := s.Update(0.016); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if stub.texInits != initTex+1 {
		t.Fatalf("texInits = %d, want %d (grow recreates texture)", stub.texInits, initTex+1)
	}
	if stub.texWrites != 1 {
		t.Fatalf("texWrites = %d after grow, want 1", stub.texWrites)
	}
}
