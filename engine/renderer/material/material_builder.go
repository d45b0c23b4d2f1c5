package material

import (
	"github.com/tessera-gl/tessera/common"
	"github.com/tessera-gl/tessera/engine/renderer/bind_group_provider"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithTextureData is an option builder that stages the material's texture pixels.
//
// Parameters:
//   - data: the pixel data and dimensions for the texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture data option to a material
func WithTextureData(data common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.texture = data
	}
}

// WithSamplerData is an option builder that sets the material's sampler configuration.
//
// Parameters:
//   - data: the sampler configuration
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler data option to a material
func WithSamplerData(data common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = data
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the material.
//
// Parameters:
//   - key: the pipeline key to associate with the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBindGroupProvider is an option builder that sets the bind group provider for the material.
//
// Parameters:
//   - provider: the bind group provider containing GPU resources for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the bind group provider option to a material
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}
