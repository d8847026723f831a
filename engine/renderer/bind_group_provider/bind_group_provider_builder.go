package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption configures a BindGroupProvider at construction time.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroup seeds the provider with an already-created bind group.
//
// Parameters:
//   - bg: the bind group to attach
//
// Returns:
//   - BindGroupProviderOption: an option applying the bind group
func WithBindGroup(bg *wgpu.BindGroup) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroup = bg
	}
}

// WithBindGroupLayout seeds the provider with an already-created bind group layout.
//
// Parameters:
//   - bgl: the layout to attach
//
// Returns:
//   - BindGroupProviderOption: an option applying the layout
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer attaches one buffer at the given binding index.
//
// Parameters:
//   - binding: the binding index within the group
//   - buf: the buffer to attach
//
// Returns:
//   - BindGroupProviderOption: an option applying the buffer
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithBuffers replaces the provider's buffer map wholesale.
//
// Parameters:
//   - buffers: binding index to buffer mapping
//
// Returns:
//   - BindGroupProviderOption: an option applying the buffer map
func WithBuffers(buffers map[int]*wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers = buffers
	}
}
