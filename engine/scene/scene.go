package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/tessera-gl/tessera/common"
	"github.com/tessera-gl/tessera/engine/atlas"
	"github.com/tessera-gl/tessera/engine/batch"
	"github.com/tessera-gl/tessera/engine/camera"
	"github.com/tessera-gl/tessera/engine/dispatch"
	"github.com/tessera-gl/tessera/engine/game_object"
	"github.com/tessera-gl/tessera/engine/model"
	"github.com/tessera-gl/tessera/engine/renderer"
	"github.com/tessera-gl/tessera/engine/renderer/bind_group_provider"
	"github.com/tessera-gl/tessera/engine/renderer/material"
	"github.com/tessera-gl/tessera/engine/renderer/pipeline"
)

// Scene owns one frame pipeline end to end: a registry of GameObjects, the
// Camera, the texture Atlas, and the Renderer. Each Update collects enabled
// objects into per-(mesh, variant) batches, resolves atlas rect handles into
// packed instance data, and uploads camera, texture, and instance buffers;
// DrawCalls then issues one instanced draw per surviving batch.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Atlas returns the scene's texture atlas, or nil if none is attached.
	Atlas() atlas.Atlas

	// Meshes returns the scene's mesh registry.
	Meshes() model.Registry

	// Count returns the number of persisted GameObjects in the scene's registry.
	// Does not include ephemeral objects.
	//
	// Returns:
	//   - int: count of non-ephemeral GameObjects in the registry
	Count() int

	// InstanceCount returns the number of instances submitted in the last Update.
	//
	// Returns:
	//   - int: instances packed last frame
	InstanceCount() int

	// BatchCount returns the number of draw batches produced by the last Update.
	//
	// Returns:
	//   - int: draw batches prepared last frame
	BatchCount() int

	// Add adds a GameObject to the scene. The object must carry a Mesh; the
	// scene lazily creates and initializes GPU vertex/index buffers for each
	// distinct mesh on first use. If the object is not ephemeral it is also
	// persisted in the registry for later lookup or removal by ID.
	//
	// Panics if the object has no Mesh.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a non-ephemeral GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject from the scene by ID. The object stops being
	// submitted on the next Update; its mesh buffers stay cached for other
	// instances of the same mesh.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects from the scene.
	// Does not release GPU resources.
	Clear()

	// Resize propagates a new surface size to the renderer, the camera, and
	// the overlay projection.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// Update advances object rotations, rebuilds the frame's batches, resolves
	// atlas rects into packed instance data, and uploads all GPU buffers
	// (camera and overlay uniforms, atlas texels, per-batch instance data).
	// Per-instance faults (stale handles, missing rects) drop the faulting
	// instance and are reported without aborting the frame.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: the first per-instance fault encountered, or nil
	Update(deltaTime float32) error

	// DrawCalls issues one instanced draw call per batch prepared by the last
	// Update. Must be called within a BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: error if a draw call fails
	DrawCalls() error
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam        camera.Camera
	r          renderer.Renderer
	atl        atlas.Atlas
	dispatcher dispatch.Dispatcher
	meshes     model.Registry

	resizeStrategy camera.ResizeStrategy

	objects  []game_object.GameObject // submission order
	registry map[uint64]game_object.GameObject
	nextID   uint64

	// GPU resource wiring. Mesh geometry buffers are cached per mesh ID;
	// instance buffers per (mesh, variant) batch key so they persist and grow
	// across frames.
	meshProviders     map[batch.MeshID]bind_group_provider.BindGroupProvider
	instanceProviders map[string]bind_group_provider.BindGroupProvider

	cameraBGP  bind_group_provider.BindGroupProvider // group 0 for the instanced variants
	overlayBGP bind_group_provider.BindGroupProvider // group 0 for the overlay variant

	atlasMaterial material.Material // group 1 for atlas and overlay variants
	plainMaterial material.Material // group 1 for the plain variant

	surfaceWidth  int
	surfaceHeight int
	overlayDirty  bool

	// Last-uploaded atlas texture dimensions; a mismatch against the staging
	// data means the atlas grew and the texture must be recreated.
	atlasTexWidth  uint32
	atlasTexHeight uint32

	drawBatches []dispatch.DrawBatch
	frameFault  error
	instances   int

	// Pre-allocated scratch reused each frame to avoid per-frame allocations.
	matrixScratch [][16]float32
	writePool     []bind_group_provider.BufferWrite

	// matrixPool manages a bounded set of reusable goroutines for the parallel
	// model-matrix build phase of Update. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	matrixPool    worker.DynamicWorkerPool
	matrixWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera, renderer, and atlas.
// Camera and renderer are required and NewScene panics if either is nil; the
// atlas may be nil for scenes that only draw the plain variant. NewScene
// registers the three variant render pipelines, creates the camera and
// overlay uniform bind groups, and initializes the atlas and fallback texture
// surfaces on the GPU.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - atl: the texture atlas shared by the atlas and overlay variants (may be nil)
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, atl atlas.Atlas, width, height int, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                &sync.RWMutex{},
		name:              name,
		active:            false,
		cam:               cam,
		r:                 r,
		atl:               atl,
		meshes:            model.NewRegistry(),
		registry:          make(map[uint64]game_object.GameObject),
		nextID:            1,
		meshProviders:     make(map[batch.MeshID]bind_group_provider.BindGroupProvider),
		instanceProviders: make(map[string]bind_group_provider.BindGroupProvider),
		resizeStrategy:    camera.ResizeKeepY,
		surfaceWidth:      width,
		surfaceHeight:     height,
		overlayDirty:      true,
		matrixWorkers:     max(runtime.NumCPU()-1, 1),
	}

	var dispatchOpts []dispatch.DispatcherBuilderOption
	if atl != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithAtlas(atl))
	}
	s.dispatcher = dispatch.NewDispatcher(dispatchOpts...)

	for _, option := range options {
		option(s)
	}

	// Initialize the matrix pool after options so WithMatrixWorkers can override
	// the default. Queue size of 256 accommodates typical chunk counts with headroom.
	s.matrixPool = worker.NewDynamicWorkerPool(s.matrixWorkers, 256, 1*time.Second)

	// Register the three variant render pipelines.
	if err := r.RegisterPipelines(
		pipeline.NewPipeline(batch.VariantInstancedPlain),
		pipeline.NewPipeline(batch.VariantInstancedAtlas),
		pipeline.NewPipeline(batch.VariantOverlay2D),
	); err != nil {
		panic(fmt.Sprintf("scene: failed to register variant pipelines: %v", err))
	}

	// Camera uniform (group 0 for the instanced variants).
	s.cameraBGP = bind_group_provider.NewBindGroupProvider(name + "_camera")
	if err := r.InitBindGroup(s.cameraBGP, renderer.UniformBindGroupLayout(), nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init camera bind group: %v", err))
	}

	// Overlay projection uniform (group 0 for the overlay variant).
	s.overlayBGP = bind_group_provider.NewBindGroupProvider(name + "_overlay")
	if err := r.InitBindGroup(s.overlayBGP, renderer.UniformBindGroupLayout(), nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init overlay bind group: %v", err))
	}

	// Fallback surface for the plain variant: a white 1x1 so all variants share
	// the same texture bind group layout.
	s.plainMaterial = material.NewMaterial(
		material.WithName(name+"_plain"),
		material.WithTextureData(material.SolidTexture(255, 255, 255, 255)),
		material.WithPipelineKey(batch.VariantInstancedPlain.String()),
	)
	s.initMaterial(s.plainMaterial)

	// Atlas surface shared by the atlas and overlay variants.
	if atl != nil {
		staging := atl.StagingData()
		s.atlasMaterial = material.NewMaterial(
			material.WithName(name+"_atlas"),
			material.WithTextureData(staging),
			material.WithSamplerData(atl.SamplerData()),
			material.WithPipelineKey(batch.VariantInstancedAtlas.String()),
		)
		s.initMaterial(s.atlasMaterial)
		s.atlasTexWidth = staging.Width
		s.atlasTexHeight = staging.Height
	}

	return s
}

// initMaterial creates the texture, sampler, and bind group for a material's
// staged surface data.
func (s *scene) initMaterial(m material.Material) {
	bgp := bind_group_provider.NewBindGroupProvider(m.Name())
	if err := s.r.InitTextureView(bgp, 0, m.TextureData()); err != nil {
		panic(fmt.Sprintf("scene: failed to init texture for material %q: %v", m.Name(), err))
	}
	if err := s.r.InitSampler(bgp, 1, m.SamplerData()); err != nil {
		panic(fmt.Sprintf("scene: failed to init sampler for material %q: %v", m.Name(), err))
	}
	if err := s.r.InitBindGroup(bgp, renderer.TextureBindGroupLayout(), nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init bind group for material %q: %v", m.Name(), err))
	}
	m.SetBindGroupProvider(bgp)
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Atlas() atlas.Atlas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atl
}

func (s *scene) Meshes() model.Registry {
	return s.meshes
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) InstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances
}

func (s *scene) BatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drawBatches)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	mesh := obj.Mesh()
	if mesh == nil {
		panic("scene: cannot Add a GameObject without a Mesh")
	}

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}

	// Lazily create GPU geometry buffers the first time a mesh is used.
	if _, exists := s.meshProviders[mesh.ID()]; !exists {
		bgp := bind_group_provider.NewBindGroupProvider(mesh.Name())
		if err := s.r.InitMeshBuffers(bgp, mesh.VertexData(), mesh.IndexData(), mesh.IndexCount()); err != nil {
			panic(fmt.Sprintf("scene: failed to init mesh buffers for %q: %v", mesh.Name(), err))
		}
		s.meshProviders[mesh.ID()] = bgp
	}

	s.objects = append(s.objects, obj)
	if !obj.Ephemeral() {
		s.registry[obj.ID()] = obj
	}

	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.registry, id)
	for i, obj := range s.objects {
		if obj.ID() == id {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects = nil
	s.registry = make(map[uint64]game_object.GameObject)
	s.drawBatches = nil
	s.instances = 0
}

func (s *scene) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	s.surfaceWidth = width
	s.surfaceHeight = height
	s.overlayDirty = true

	s.r.Resize(width, height)
	if s.cam != nil {
		s.cam.Resize(width, height, s.resizeStrategy)
	}
}

func (s *scene) Update(deltaTime float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frameFault = nil
	s.writePool = s.writePool[:0]

	// Phase 1: parallel CPU prep — advance rotations and build model matrices
	// for all objects. Workers are reused across frames; a WaitGroup provides
	// per-frame barrier sync since pool.Wait() blocks until workers idle-exit
	// which is unsuitable for frame-rate workloads.
	n := len(s.objects)
	if cap(s.matrixScratch) < n {
		s.matrixScratch = make([][16]float32, n)
	}
	s.matrixScratch = s.matrixScratch[:n]

	if n > 0 {
		chunk := (n + s.matrixWorkers - 1) / s.matrixWorkers
		var wg sync.WaitGroup
		taskID := 0
		for start := 0; start < n; start += chunk {
			end := min(start+chunk, n)
			wg.Add(1)
			lo, hi := start, end
			id := taskID
			taskID++
			s.matrixPool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					for i := lo; i < hi; i++ {
						obj := s.objects[i]
						obj.Advance(deltaTime)
						s.matrixScratch[i] = obj.ModelMatrix()
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	// Phase 2: serial frame build — submission order must match s.objects so
	// batches fill deterministically.
	frame := batch.NewFrame()
	for i, obj := range s.objects {
		if !obj.Enabled() || obj.Mesh() == nil {
			continue
		}
		if err := frame.AddInstance(obj.Mesh().ID(), obj.Variant(), s.matrixScratch[i], obj.AtlasRect()); err != nil {
			if s.frameFault == nil {
				s.frameFault = err
			}
			continue
		}
	}
	s.instances = frame.InstanceCount()

	// Phase 3: resolve handles into packed instance data.
	drawBatches, err := s.dispatcher.Prepare(frame.Finalize())
	if err != nil && s.frameFault == nil {
		s.frameFault = err
	}
	s.drawBatches = drawBatches

	// Phase 4: camera and overlay uniforms.
	if s.cam != nil {
		s.cam.Update()
		if s.cam.ConsumeDirty() {
			uniform := camera.GPUCameraUniform{ViewProj: s.cam.Current()}
			s.writePool = append(s.writePool, bind_group_provider.BufferWrite{
				Provider: s.cameraBGP,
				Binding:  0,
				Offset:   0,
				Data:     uniform.Marshal(),
			})
		}
	}
	if s.overlayDirty {
		var ortho [16]float32
		// Pixel space with a top-left origin, mapped straight to clip space.
		common.Orthographic(ortho[:], 0, float32(s.surfaceWidth), float32(s.surfaceHeight), 0, 0, 1)
		uniform := camera.GPUCameraUniform{ViewProj: ortho}
		s.writePool = append(s.writePool, bind_group_provider.BufferWrite{
			Provider: s.overlayBGP,
			Binding:  0,
			Offset:   0,
			Data:     uniform.Marshal(),
		})
		s.overlayDirty = false
	}
	if len(s.writePool) > 0 {
		s.r.WriteBuffers(s.writePool)
	}

	// Phase 5: atlas texel upload. Same dimensions re-use the existing texture;
	// a grow recreates texture, view, and bind group.
	if s.atl != nil && s.atl.Dirty() && s.atlasMaterial != nil {
		staging := s.atl.StagingData()
		s.atlasMaterial.SetTextureData(staging)
		bgp := s.atlasMaterial.BindGroupProvider()
		if staging.Width == s.atlasTexWidth && staging.Height == s.atlasTexHeight {
			if err := s.r.WriteTexture(bgp, 0, staging); err != nil && s.frameFault == nil {
				s.frameFault = err
			}
		} else {
			if err := s.r.InitTextureView(bgp, 0, staging); err != nil {
				if s.frameFault == nil {
					s.frameFault = err
				}
			} else {
				if old := bgp.BindGroup(); old != nil {
					old.Release()
					bgp.SetBindGroup(nil)
				}
				if err := s.r.InitBindGroup(bgp, renderer.TextureBindGroupLayout(), nil, nil); err != nil && s.frameFault == nil {
					s.frameFault = err
				}
				s.atlasTexWidth = staging.Width
				s.atlasTexHeight = staging.Height
			}
		}
	}

	// Phase 6: per-batch instance buffer uploads.
	for _, db := range s.drawBatches {
		if len(db.InstanceData) == 0 {
			continue
		}
		provider := s.instanceProvider(db.MeshID, db.Variant)
		if err := s.r.UploadInstances(provider, db.InstanceData); err != nil && s.frameFault == nil {
			s.frameFault = err
		}
	}

	return s.frameFault
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, db := range s.drawBatches {
		meshProvider := s.meshProviders[db.MeshID]
		if meshProvider == nil {
			continue
		}

		uniformBGP := s.cameraBGP
		textureBGP := s.plainMaterial.BindGroupProvider()
		var instanceProvider bind_group_provider.BindGroupProvider

		switch db.Variant {
		case batch.VariantInstancedAtlas:
			if s.atlasMaterial == nil {
				continue
			}
			textureBGP = s.atlasMaterial.BindGroupProvider()
			instanceProvider = s.instanceProviders[batchProviderKey(db.MeshID, db.Variant)]
		case batch.VariantOverlay2D:
			uniformBGP = s.overlayBGP
			if s.atlasMaterial != nil {
				textureBGP = s.atlasMaterial.BindGroupProvider()
			}
		default:
			instanceProvider = s.instanceProviders[batchProviderKey(db.MeshID, db.Variant)]
		}

		bindGroups := []bind_group_provider.BindGroupProvider{uniformBGP, textureBGP}
		if err := s.r.DrawCall(db.Variant.String(), meshProvider, instanceProvider, uint32(db.InstanceCount), bindGroups); err != nil {
			return err
		}
	}
	return nil
}

// instanceProvider returns the persistent instance buffer provider for a
// (mesh, variant) batch, creating it on first use. Caller must hold s.mu.
func (s *scene) instanceProvider(meshID batch.MeshID, variant batch.Variant) bind_group_provider.BindGroupProvider {
	key := batchProviderKey(meshID, variant)
	provider, exists := s.instanceProviders[key]
	if !exists {
		provider = bind_group_provider.NewBindGroupProvider(s.name + "_" + key)
		s.instanceProviders[key] = provider
	}
	return provider
}

func batchProviderKey(meshID batch.MeshID, variant batch.Variant) string {
	return fmt.Sprintf("mesh%d_%s", meshID, variant)
}
