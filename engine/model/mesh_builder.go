package model

import (
	"encoding/binary"
)

// MeshBuilderOption is a functional option for configuring a Mesh via Registry.Register.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the mesh name.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithVertices is an option builder that supplies 3D instanced-format geometry.
// The vertex and index data are marshaled immediately into GPU-ready buffers.
//
// Parameters:
//   - vertices: the mesh vertices
//   - indices: the triangle list indices
//
// Returns:
//   - MeshBuilderOption: a function that applies the geometry to a mesh
func WithVertices(vertices []GPUVertex, indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.overlay = false
		m.vertexCount = len(vertices)
		m.indexCount = len(indices)
		m.vertexData = make([]byte, 0, len(vertices)*20)
		for i := range vertices {
			m.vertexData = append(m.vertexData, vertices[i].Marshal()...)
		}
		m.indexData = marshalIndices(indices)
	}
}

// WithOverlayVertices is an option builder that supplies 2D overlay-format
// geometry. The vertex and index data are marshaled immediately into GPU-ready
// buffers.
//
// Parameters:
//   - vertices: the overlay vertices
//   - indices: the triangle list indices
//
// Returns:
//   - MeshBuilderOption: a function that applies the geometry to a mesh
func WithOverlayVertices(vertices []GPUOverlayVertex, indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.overlay = true
		m.vertexCount = len(vertices)
		m.indexCount = len(indices)
		m.vertexData = make([]byte, 0, len(vertices)*16)
		for i := range vertices {
			m.vertexData = append(m.vertexData, vertices[i].Marshal()...)
		}
		m.indexData = marshalIndices(indices)
	}
}

func marshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// CubeGeometry builds an axis-aligned cube centered on the origin with 24
// vertices (4 per face, so each face gets its own uv mapping) and 36 indices.
//
// Parameters:
//   - size: the cube edge length
//
// Returns:
//   - []GPUVertex: the cube vertices
//   - []uint32: the triangle list indices
func CubeGeometry(size float32) ([]GPUVertex, []uint32) {
	h := size / 2
	vertices := []GPUVertex{
		// +Z face
		{Position: [3]float32{-h, -h, h}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, -h, h}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{h, h, h}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-h, h, h}, TexCoord: [2]float32{0, 0}},
		// -Z face
		{Position: [3]float32{h, -h, -h}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{-h, -h, -h}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-h, h, -h}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{h, h, -h}, TexCoord: [2]float32{0, 0}},
		// +X face
		{Position: [3]float32{h, -h, h}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, -h, -h}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{h, h, -h}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{h, h, h}, TexCoord: [2]float32{0, 0}},
		// -X face
		{Position: [3]float32{-h, -h, -h}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{-h, -h, h}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-h, h, h}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-h, h, -h}, TexCoord: [2]float32{0, 0}},
		// +Y face
		{Position: [3]float32{-h, h, h}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, h, h}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{h, h, -h}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-h, h, -h}, TexCoord: [2]float32{0, 0}},
		// -Y face
		{Position: [3]float32{-h, -h, -h}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, -h, -h}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{h, -h, h}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-h, -h, h}, TexCoord: [2]float32{0, 0}},
	}

	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// QuadGeometry builds a unit-facing quad in the XY plane centered on the
// origin, with uvs covering [0,1] and the v axis pointing down (image
// convention).
//
// Parameters:
//   - width: the quad width
//   - height: the quad height
//
// Returns:
//   - []GPUVertex: the quad vertices
//   - []uint32: the triangle list indices
func QuadGeometry(width, height float32) ([]GPUVertex, []uint32) {
	hw, hh := width/2, height/2
	vertices := []GPUVertex{
		{Position: [3]float32{-hw, -hh, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{hw, -hh, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{hw, hh, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-hw, hh, 0}, TexCoord: [2]float32{0, 0}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// OverlayQuadGeometry builds a screen-space quad for the 2D overlay pipeline.
// Positions are in screen units with the origin at the top-left; the uv range
// selects the sampled sub-region of the overlay texture.
//
// Parameters:
//   - x, y: the top-left corner in screen units
//   - width, height: the quad extents in screen units
//   - u0, v0: the uv coordinate of the top-left corner
//   - u1, v1: the uv coordinate of the bottom-right corner
//
// Returns:
//   - []GPUOverlayVertex: the quad vertices
//   - []uint32: the triangle list indices
func OverlayQuadGeometry(x, y, width, height, u0, v0, u1, v1 float32) ([]GPUOverlayVertex, []uint32) {
	vertices := []GPUOverlayVertex{
		{Position: [2]float32{x, y}, TexCoord: [2]float32{u0, v0}},
		{Position: [2]float32{x + width, y}, TexCoord: [2]float32{u1, v0}},
		{Position: [2]float32{x + width, y + height}, TexCoord: [2]float32{u1, v1}},
		{Position: [2]float32{x, y + height}, TexCoord: [2]float32{u0, v1}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}
