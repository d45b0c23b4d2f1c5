package model

import (
	"sync"

	"github.com/tessera-gl/tessera/engine/batch"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	id          batch.MeshID
	name        string
	overlay     bool
	vertexData  []byte
	indexData   []byte
	vertexCount int
	indexCount  int
}

// Mesh is a GPU-ready container for one registered geometry: marshaled vertex
// and index data plus the identifier instance batches refer to it by. Meshes
// are immutable after registration.
type Mesh interface {
	// ID retrieves the registry-assigned mesh identifier.
	//
	// Returns:
	//   - batch.MeshID: the mesh identifier
	ID() batch.MeshID

	// Name retrieves the mesh name.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Overlay reports whether the mesh uses the 2D overlay vertex format instead
	// of the 3D instanced format.
	//
	// Returns:
	//   - bool: true for overlay meshes
	Overlay() bool

	// VertexData returns the raw marshaled vertex data for GPU upload.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the raw marshaled uint32 index data for GPU upload.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// VertexCount returns the number of vertices in the mesh.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int
}

var _ Mesh = &mesh{}

func (m *mesh) ID() batch.MeshID {
	return m.id
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Overlay() bool {
	return m.overlay
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) IndexData() []byte {
	return m.indexData
}

func (m *mesh) VertexCount() int {
	return m.vertexCount
}

func (m *mesh) IndexCount() int {
	return m.indexCount
}

// registryImpl is the implementation of the Registry interface.
type registryImpl struct {
	mu *sync.Mutex

	meshes map[batch.MeshID]*mesh
	nextID batch.MeshID
}

// Registry owns mesh registration and lookup. Instance batches carry only mesh
// identifiers; the registry is where the dispatcher resolves them back to
// vertex and index data at draw preparation time.
type Registry interface {
	// Register builds a mesh from the given options, assigns it the next free
	// identifier, and stores it for lookup.
	//
	// Parameters:
	//   - options: functional options supplying name and geometry
	//
	// Returns:
	//   - Mesh: the registered mesh
	Register(options ...MeshBuilderOption) Mesh

	// Mesh looks up a registered mesh by identifier.
	//
	// Parameters:
	//   - id: the mesh identifier
	//
	// Returns:
	//   - Mesh: the mesh, or nil if the id is unknown
	//   - bool: true if the mesh was found
	Mesh(id batch.MeshID) (Mesh, bool)

	// Count returns the number of registered meshes.
	//
	// Returns:
	//   - int: the mesh count
	Count() int
}

var _ Registry = &registryImpl{}

// NewRegistry creates an empty mesh registry.
//
// Returns:
//   - Registry: the new registry
func NewRegistry() Registry {
	return &registryImpl{
		mu:     &sync.Mutex{},
		meshes: make(map[batch.MeshID]*mesh),
	}
}

func (r *registryImpl) Register(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, option := range options {
		option(m)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m.id = r.nextID
	r.nextID++
	r.meshes[m.id] = m
	return m
}

func (r *registryImpl) Mesh(id batch.MeshID) (Mesh, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meshes[id]
	if !ok {
		return nil, false
	}
	return m, true
}

func (r *registryImpl) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meshes)
}
