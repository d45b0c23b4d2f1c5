package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/tessera-gl/tessera/engine/batch"
)

// pipelineImpl is the implementation of the Pipeline interface.
// It holds the underlying WebGPU render pipeline and the configuration state
// used to create it.
type pipelineImpl struct {
	// variant is the shading contract this pipeline renders
	variant batch.Variant
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// shaderSource is the complete WGSL module for the pipeline; entry points are
	// vs_main and fs_main.
	shaderSource string

	// renderPipeline is the compiled pipeline once the backend has created it
	renderPipeline *wgpu.RenderPipeline

	// The following properties configure the pipeline during creation and can be
	// toggled/set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline defines the interface for a render pipeline serving one shading
// contract. It holds all configuration state required for pipeline creation
// including depth, blend, cull, and topology settings, plus the vertex buffer
// layouts the contract's batches are drawn with.
type Pipeline interface {
	// Variant returns the shading contract this pipeline renders.
	//
	// Returns:
	//   - batch.Variant: the pipeline's variant
	Variant() batch.Variant

	// PipelineKey returns the unique key associated with this pipeline, used for
	// caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// ShaderSource returns the complete WGSL module for this pipeline.
	//
	// Returns:
	//   - string: the WGSL source
	ShaderSource() string

	// VertexLayouts returns the vertex buffer layouts for this pipeline's
	// variant: a per-vertex buffer, plus a per-instance buffer for the
	// instanced variants.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// RenderPipeline returns the compiled WebGPU pipeline, or nil before the
	// backend has created it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the compiled WebGPU pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a Pipeline for the given shading contract with
// variant-appropriate defaults: the instanced variants depth-test and
// back-face cull; the 2D overlay alpha-blends with depth disabled so it
// composites over the 3D scene regardless of draw depth.
//
// Parameters:
//   - variant: the shading contract this pipeline renders
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance for the variant
func NewPipeline(variant batch.Variant, opts ...PipelineBuilderOption) Pipeline {
	p := &pipelineImpl{
		variant:           variant,
		pipelineKey:       variant.String(),
		shaderSource:      defaultShaderSource(variant),
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	if variant == batch.VariantOverlay2D {
		p.depthTestEnabled = false
		p.depthWriteEnabled = false
		p.blendEnabled = true
		p.cullMode = wgpu.CullModeNone
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipelineImpl) Variant() batch.Variant {
	return p.variant
}

func (p *pipelineImpl) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipelineImpl) ShaderSource() string {
	return p.shaderSource
}

func (p *pipelineImpl) VertexLayouts() []wgpu.VertexBufferLayout {
	return VertexLayouts(p.variant)
}

func (p *pipelineImpl) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipelineImpl) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipelineImpl) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipelineImpl) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipelineImpl) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipelineImpl) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipelineImpl) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipelineImpl) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipelineImpl) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipelineImpl) BlendState() *wgpu.BlendState {
	return p.blendState
}
