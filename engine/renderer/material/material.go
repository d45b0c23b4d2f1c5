package material

import (
	"github.com/tessera-gl/tessera/common"
	"github.com/tessera-gl/tessera/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	texture           common.TextureStagingData
	sampler           common.SamplerStagingData
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material pairs a sampled texture surface with the pipeline that shades it.
// The scene creates one Material per shading contract — the atlas surface for
// the atlas and overlay variants, a solid fallback for the plain variant —
// and the renderer initializes its texture, sampler, and bind group from the
// staged data.
//
// Texture and sampler staging data are mutable so the scene can restage atlas
// pixels after a grow; the bind group provider is set once GPU resources exist.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// TextureData retrieves the staged pixel data and dimensions for this
	// material's texture.
	//
	// Returns:
	//   - common.TextureStagingData: the staged texture data
	TextureData() common.TextureStagingData

	// SamplerData retrieves the sampler configuration for this material.
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler configuration
	SamplerData() common.SamplerStagingData

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetTextureData restages the material's texture pixels, e.g. after an
	// atlas recomposite or grow.
	//
	// Parameters:
	//   - data: the new staged texture data
	SetTextureData(data common.TextureStagingData)

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// SolidTexture builds 1x1 staging data of the given RGBA color, used as the
// fallback surface for the plain variant so every pipeline shares the same
// texture bind group layout.
//
// Parameters:
//   - r, g, b, a: the color channels
//
// Returns:
//   - common.TextureStagingData: a 1x1 texture of the color
func SolidTexture(r, g, b, a byte) common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: []byte{r, g, b, a},
		Width:  1,
		Height: 1,
	}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) TextureData() common.TextureStagingData {
	return m.texture
}

func (m *material) SamplerData() common.SamplerStagingData {
	return m.sampler
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetTextureData(data common.TextureStagingData) {
	m.texture = data
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
