package pipeline

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/tessera-gl/tessera/engine/batch"
)

// Byte strides of the vertex and instance buffers per variant. These must stay
// in lockstep with the Go GPU structs and the WGSL VertexInput/InstanceInput
// definitions.
const (
	// VertexStride3D is the byte stride of one 3D mesh vertex (vec3 position + vec2 uv).
	VertexStride3D = 20

	// VertexStrideOverlay is the byte stride of one 2D overlay vertex (vec2 position + vec2 uv).
	VertexStrideOverlay = 16

	// InstanceStridePlain is the byte stride of one plain instance: a 4x4
	// transform as four vec4 columns.
	InstanceStridePlain = 64

	// InstanceStrideAtlas is the byte stride of one atlas instance: the plain
	// transform plus normalized atlas rect offset and size.
	InstanceStrideAtlas = 80
)

//go:embed assets/instanced_plain.wgsl
var instancedPlainSource string

//go:embed assets/instanced_atlas.wgsl
var instancedAtlasSource string

//go:embed assets/overlay.wgsl
var overlaySource string

// defaultShaderSource returns the built-in WGSL module for a variant.
func defaultShaderSource(variant batch.Variant) string {
	switch variant {
	case batch.VariantInstancedAtlas:
		return instancedAtlasSource
	case batch.VariantOverlay2D:
		return overlaySource
	default:
		return instancedPlainSource
	}
}

// VertexLayouts returns the vertex buffer layouts for a shading contract.
// Buffer 0 steps per vertex; the instanced variants add buffer 1 stepping per
// instance with the transform columns in locations 2-5 and, for the atlas
// variant, the normalized rect offset and size in locations 6 and 7.
//
// Parameters:
//   - variant: the shading contract to build layouts for
//
// Returns:
//   - []wgpu.VertexBufferLayout: the vertex buffer layouts for the variant
func VertexLayouts(variant batch.Variant) []wgpu.VertexBufferLayout {
	switch variant {
	case batch.VariantOverlay2D:
		return []wgpu.VertexBufferLayout{
			{
				ArrayStride: VertexStrideOverlay,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				},
			},
		}
	case batch.VariantInstancedAtlas:
		return []wgpu.VertexBufferLayout{
			meshVertexLayout(),
			{
				ArrayStride: InstanceStrideAtlas,
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 64, ShaderLocation: 6},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 72, ShaderLocation: 7},
				},
			},
		}
	default:
		return []wgpu.VertexBufferLayout{
			meshVertexLayout(),
			{
				ArrayStride: InstanceStridePlain,
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
				},
			},
		}
	}
}

func meshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexStride3D,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}
