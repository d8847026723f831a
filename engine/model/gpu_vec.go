package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dimforge/kiss3d/common"
)

// minBufferCapacity is the floor for GPU buffer allocations in bytes.
// Growth above the floor doubles (next power of two) so per-frame rewrites
// of instance streams never reallocate once per element.
const minBufferCapacity = 1024

// GPUVec is a growable device buffer backing one per-instance or per-vertex
// stream. The CPU-side staging slice is the source of truth; Upload rewrites
// the device buffer in full every time, so no stale data from a previous
// frame can ever be sampled.
type GPUVec struct {
	label    string
	usage    wgpu.BufferUsage
	data     []byte
	buffer   *wgpu.Buffer
	capacity uint64
	dirty    bool
}

// NewGPUVec creates an empty vector that will allocate buffers with the given
// usage flags (CopyDst is always added).
//
// Parameters:
//   - label: debug label applied to the device buffer
//   - usage: buffer usage flags (vertex, index, storage, ...)
//
// Returns:
//   - *GPUVec: the empty vector
func NewGPUVec(label string, usage wgpu.BufferUsage) *GPUVec {
	return &GPUVec{
		label: label,
		usage: usage | wgpu.BufferUsageCopyDst,
	}
}

// Set replaces the staged contents. The previous staging slice is reused when
// large enough.
//
// Parameters:
//   - data: the new contents (copied)
func (v *GPUVec) Set(data []byte) {
	v.data = append(v.data[:0], data...)
	v.dirty = true
}

// Len returns the staged byte length.
func (v *GPUVec) Len() int {
	return len(v.data)
}

// Capacity returns the current device buffer capacity in bytes.
func (v *GPUVec) Capacity() uint64 {
	return v.capacity
}

// GrowCapacity returns the capacity a buffer must have to hold n bytes:
// the next power of two, with a floor of minBufferCapacity.
//
// Parameters:
//   - n: required byte length
//
// Returns:
//   - uint64: the target capacity
func GrowCapacity(n uint64) uint64 {
	c := common.NextPowerOfTwo(n)
	if c < minBufferCapacity {
		c = minBufferCapacity
	}
	return c
}

// Upload ensures the device buffer exists and is large enough, then rewrites
// it with the staged contents. Reallocates only when the staged length
// exceeds the current capacity; growth is geometric.
//
// Parameters:
//   - device: the wgpu device used for (re)allocation
//   - queue: the queue used for the buffer write
//
// Returns:
//   - error: error if buffer creation fails
func (v *GPUVec) Upload(device *wgpu.Device, queue *wgpu.Queue) error {
	if len(v.data) == 0 {
		v.dirty = false
		return nil
	}

	needed := uint64(len(v.data))
	if v.buffer == nil || needed > v.capacity {
		if v.buffer != nil {
			v.buffer.Release()
			v.buffer = nil
		}
		capacity := GrowCapacity(needed)
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            v.label,
			Size:             capacity,
			Usage:            v.usage,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("failed to allocate %s (%d bytes): %w", v.label, capacity, err)
		}
		v.buffer = buf
		v.capacity = capacity
	}

	if v.dirty {
		queue.WriteBuffer(v.buffer, 0, v.data)
		v.dirty = false
	}
	return nil
}

// Buffer returns the device buffer, or nil if nothing has been uploaded yet.
func (v *GPUVec) Buffer() *wgpu.Buffer {
	return v.buffer
}

// Release frees the device buffer. The staged contents survive and the next
// Upload reallocates.
func (v *GPUVec) Release() {
	if v.buffer != nil {
		v.buffer.Release()
		v.buffer = nil
		v.capacity = 0
		v.dirty = true
	}
}
