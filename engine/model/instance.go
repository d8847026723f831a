package model

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dimforge/kiss3d/common"
)

// InstanceData is the per-draw-call data for one rendered copy of a mesh.
// Optional overrides use the sentinel scheme from the common package: a
// negative width/size or a zero-alpha color means "use the owning object's
// default". Resolution happens before rasterization, identically for every
// primitive in the batch.
type InstanceData struct {
	// Position is the world-space offset for this instance.
	Position [3]float32
	// Deformation is the 3x3 column-major deformation matrix
	// (scale, rotation, shear) for this instance.
	Deformation [9]float32
	// Color is the RGBA color for this instance.
	Color common.Color
	// LinesColor overrides the object's wireframe color when its alpha is
	// nonzero.
	LinesColor common.Color
	// LinesWidth overrides the object's wireframe width when non-negative.
	LinesWidth float32
	// PointsColor overrides the object's point color when its alpha is
	// nonzero.
	PointsColor common.Color
	// PointsSize overrides the object's point size when non-negative.
	PointsSize float32
}

// DefaultInstance returns the identity instance: origin position, identity
// deformation, white color, every override left at its sentinel.
//
// Returns:
//   - InstanceData: the default instance
func DefaultInstance() InstanceData {
	return InstanceData{
		Deformation: [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
		Color:       common.White,
		LinesColor:  common.UseObjectColor,
		LinesWidth:  common.LinesWidthUseObject,
		PointsColor: common.UseObjectColor,
		PointsSize:  common.PointsSizeUseObject,
	}
}

// ResolveWidth applies the sentinel rule for width/size overrides.
//
// Parameters:
//   - value: the per-instance value (negative means unset)
//   - fallback: the object default
//
// Returns:
//   - float32: the resolved value
func ResolveWidth(value, fallback float32) float32 {
	if value < 0 {
		return fallback
	}
	return value
}

// ResolveColor applies the sentinel rule for color overrides.
//
// Parameters:
//   - value: the per-instance color (zero alpha means unset)
//   - fallback: the object default
//
// Returns:
//   - common.Color: the resolved color
func ResolveColor(value, fallback common.Color) common.Color {
	if value.A == 0 {
		return fallback
	}
	return value
}

// Packed per-instance record sizes. Each record is one element of an
// instance-step vertex buffer whose attributes the shaders declare as a
// single struct, so the CPU packing must match the shader's field order.
const (
	// MeshInstanceStride packs translation vec3, color vec4 and three
	// deformation columns: 16 floats.
	MeshInstanceStride = 64

	// OverlayInstanceStride adds the width/size override float between the
	// color and the deformation columns: 17 floats.
	OverlayInstanceStride = 68
)

// InstanceBuffer maintains the packed per-instance vertex streams for one
// object: one stream for the surface pass and one each for the wireframe and
// point passes. Every Set fully rewrites the staged bytes, so no stale
// instance from a previous frame survives; device buffers grow geometrically.
//
// Record layouts (field order matches the shaders' instance structs):
//   - mesh: tra vec3, color vec4, deform 3 x vec3 (stride 64)
//   - lines: tra vec3, lines_color vec4, lines_width f32, deform (stride 68)
//   - points: tra vec3, points_color vec4, points_size f32, deform (stride 68)
type InstanceBuffer struct {
	count int

	mesh   *GPUVec
	lines  *GPUVec
	points *GPUVec

	anyLinesWidth bool
	anyPointsSize bool
}

// NewInstanceBuffer creates an instance buffer staged with the single
// default instance.
//
// Returns:
//   - *InstanceBuffer: the buffer
func NewInstanceBuffer() *InstanceBuffer {
	b := &InstanceBuffer{
		mesh:   NewGPUVec("mesh instances", wgpu.BufferUsageVertex),
		lines:  NewGPUVec("line instances", wgpu.BufferUsageVertex),
		points: NewGPUVec("point instances", wgpu.BufferUsageVertex),
	}
	b.Set([]InstanceData{DefaultInstance()})
	return b
}

// Set rewrites every stream from the given instances.
//
// Parameters:
//   - instances: the live instances for this frame
func (b *InstanceBuffer) Set(instances []InstanceData) {
	b.count = len(instances)
	b.anyLinesWidth = false
	b.anyPointsSize = false

	mesh := make([]float32, 0, len(instances)*16)
	lines := make([]float32, 0, len(instances)*17)
	points := make([]float32, 0, len(instances)*17)

	for i := range instances {
		inst := &instances[i]
		c := inst.Color.Array()

		mesh = append(mesh, inst.Position[0], inst.Position[1], inst.Position[2])
		mesh = append(mesh, c[0], c[1], c[2], c[3])
		mesh = append(mesh, inst.Deformation[:]...)

		lc := inst.LinesColor.Array()
		lines = append(lines, inst.Position[0], inst.Position[1], inst.Position[2])
		lines = append(lines, lc[0], lc[1], lc[2], lc[3])
		lines = append(lines, inst.LinesWidth)
		lines = append(lines, inst.Deformation[:]...)
		if inst.LinesWidth >= 0 {
			b.anyLinesWidth = true
		}

		pc := inst.PointsColor.Array()
		points = append(points, inst.Position[0], inst.Position[1], inst.Position[2])
		points = append(points, pc[0], pc[1], pc[2], pc[3])
		points = append(points, inst.PointsSize)
		points = append(points, inst.Deformation[:]...)
		if inst.PointsSize >= 0 {
			b.anyPointsSize = true
		}
	}

	b.mesh.Set(common.SliceToBytes(mesh))
	b.lines.Set(common.SliceToBytes(lines))
	b.points.Set(common.SliceToBytes(points))
}

// Len returns the number of live instances.
func (b *InstanceBuffer) Len() int {
	return b.count
}

// AnyInstanceHasLinesWidth reports whether any live instance carries an
// explicit wireframe width (not the sentinel).
func (b *InstanceBuffer) AnyInstanceHasLinesWidth() bool {
	return b.anyLinesWidth
}

// AnyInstanceHasPointsSize reports whether any live instance carries an
// explicit point size (not the sentinel).
func (b *InstanceBuffer) AnyInstanceHasPointsSize() bool {
	return b.anyPointsSize
}

// Upload pushes every dirty stream to the device.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the wgpu queue
//
// Returns:
//   - error: the first allocation failure encountered
func (b *InstanceBuffer) Upload(device *wgpu.Device, queue *wgpu.Queue) error {
	for _, v := range b.streams() {
		if err := v.Upload(device, queue); err != nil {
			return err
		}
	}
	return nil
}

// Mesh returns the packed surface-pass instance stream.
func (b *InstanceBuffer) Mesh() *GPUVec { return b.mesh }

// Lines returns the packed wireframe-pass instance stream.
func (b *InstanceBuffer) Lines() *GPUVec { return b.lines }

// Points returns the packed point-pass instance stream.
func (b *InstanceBuffer) Points() *GPUVec { return b.points }

// Release frees every device buffer.
func (b *InstanceBuffer) Release() {
	for _, v := range b.streams() {
		v.Release()
	}
}

func (b *InstanceBuffer) streams() []*GPUVec {
	return []*GPUVec{b.mesh, b.lines, b.points}
}
