package renderer

import "github.com/cogentcore/webgpu/wgpu"

// All three shading contracts share the same two bind groups: group 0 holds the
// frame uniform (the 3D camera for the instanced pipelines, the screen
// projection for the overlay), group 1 holds the texture and sampler. These
// descriptors are used both when registering pipelines and when initializing
// the matching bind groups, so the pipeline layouts and the created bind
// groups cannot drift apart.

// UniformBindGroupLayout returns the layout descriptor for bind group 0: a
// single 64-byte uniform buffer visible to the vertex stage.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the uniform bind group layout descriptor
func UniformBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Uniform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 64,
				},
			},
		},
	}
}

// TextureBindGroupLayout returns the layout descriptor for bind group 1: a
// 2D float texture at binding 0 and a filtering sampler at binding 1, both
// visible to the fragment stage.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the texture bind group layout descriptor
func TextureBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}
