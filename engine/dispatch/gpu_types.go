package dispatch

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPlainInstanceSource is the canonical WGSL definition of the InstanceInput
// struct for the plain instanced pipeline. Matches GPUPlainInstance layout
// exactly (64 bytes).
//
//go:embed assets/plain_instance.wgsl
var GPUPlainInstanceSource string

// GPUPlainInstance is the GPU-aligned per-instance payload for the plain
// instanced pipeline: the object's world transform as four vec4 columns.
// Matches the WGSL InstanceInput struct layout exactly (see
// GPUPlainInstanceSource). Size: 64 bytes.
type GPUPlainInstance struct {
	Model [16]float32 // offset 0: column-major world transform (mat4x4<f32> as 4x vec4)
}

// Size returns the size of the GPUPlainInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUPlainInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPlainInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUPlainInstance) Marshal() []byte {
	buf := make([]byte, 64)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	return buf
}

// GPUAtlasInstanceSource is the canonical WGSL definition of the InstanceInput
// struct for the atlas instanced pipeline. Matches GPUAtlasInstance layout
// exactly (80 bytes).
//
//go:embed assets/atlas_instance.wgsl
var GPUAtlasInstanceSource string

// GPUAtlasInstance is the GPU-aligned per-instance payload for the atlas
// instanced pipeline: the world transform plus the instance's atlas rect in
// normalized texture coordinates. The shader remaps mesh uvs with
// offset + uv * size. Matches the WGSL InstanceInput struct layout exactly
// (see GPUAtlasInstanceSource). Size: 80 bytes.
type GPUAtlasInstance struct {
	Model      [16]float32 // offset  0: column-major world transform (mat4x4<f32> as 4x vec4)
	RectOffset [2]float32  // offset 64: normalized atlas rect origin (vec2<f32>)
	RectSize   [2]float32  // offset 72: normalized atlas rect extents (vec2<f32>)
}

// Size returns the size of the GPUAtlasInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUAtlasInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUAtlasInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPUAtlasInstance) Marshal() []byte {
	buf := make([]byte, 80)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.RectOffset[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.RectOffset[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.RectSize[0]))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(g.RectSize[1]))
	return buf
}
