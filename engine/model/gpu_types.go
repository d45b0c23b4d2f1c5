package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for
// instanced mesh pipelines. Matches GPUVertex layout exactly (20 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex for the
// instanced pipelines. Matches the WGSL VertexInput struct layout exactly (see
// GPUVertexSource). Size: 20 bytes, tightly packed.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord [2]float32 // offset 12: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoord[1]))
	return buf
}

// GPUOverlayVertexSource is the canonical WGSL definition of the VertexInput
// struct for the 2D overlay pipeline. Matches GPUOverlayVertex layout exactly
// (16 bytes).
//
//go:embed assets/overlay_vertex.wgsl
var GPUOverlayVertexSource string

// GPUOverlayVertex is the GPU-aligned representation of a single 2D overlay
// vertex (HUD quads, text glyphs). Positions are in screen units; the overlay
// pipeline maps them to clip space with an orthographic projection. Matches the
// WGSL VertexInput struct layout exactly (see GPUOverlayVertexSource).
// Size: 16 bytes, tightly packed.
type GPUOverlayVertex struct {
	Position [2]float32 // offset 0: vertex position in screen space (8 bytes)
	TexCoord [2]float32 // offset 8: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUOverlayVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUOverlayVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUOverlayVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUOverlayVertex) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[1]))
	return buf
}
