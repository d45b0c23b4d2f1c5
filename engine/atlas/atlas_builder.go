package atlas

import "github.com/tessera-gl/tessera/common"

// AtlasBuilderOption is a functional option for configuring an Atlas via NewAtlas.
type AtlasBuilderOption func(*atlasImpl)

// WithSize is an option builder that sets the initial texture dimensions of the Atlas.
//
// Parameters:
//   - width: the texture width in texels
//   - height: the texture height in texels
//
// Returns:
//   - AtlasBuilderOption: a function that applies the size option to an atlas
func WithSize(width, height uint32) AtlasBuilderOption {
	return func(a *atlasImpl) {
		a.width = width
		a.height = height
	}
}

// WithPadding is an option builder that sets the texel padding inserted between
// packed regions. Padding keeps linear filtering from bleeding neighboring cells
// into a region's edge texels.
//
// Parameters:
//   - padding: the padding in texels between regions
//
// Returns:
//   - AtlasBuilderOption: a function that applies the padding option to an atlas
func WithPadding(padding uint32) AtlasBuilderOption {
	return func(a *atlasImpl) {
		a.padding = padding
	}
}

// WithSampler is an option builder that overrides the sampler configuration the
// atlas texture is sampled with.
//
// Parameters:
//   - sampler: the sampler configuration to use
//
// Returns:
//   - AtlasBuilderOption: a function that applies the sampler option to an atlas
func WithSampler(sampler common.SamplerStagingData) AtlasBuilderOption {
	return func(a *atlasImpl) {
		a.sampler = sampler
	}
}
