package engine

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/dimforge/kiss3d/common"
	"github.com/dimforge/kiss3d/engine/camera"
	"github.com/dimforge/kiss3d/engine/renderer"
	"github.com/dimforge/kiss3d/engine/renderer/bind_group_provider"
	"github.com/dimforge/kiss3d/engine/renderer/material"
	"github.com/dimforge/kiss3d/engine/renderer/shader"
	"github.com/dimforge/kiss3d/engine/text"
	"github.com/dimforge/kiss3d/engine/window"
)

// overlayBufferMin is the smallest dynamic buffer allocated for an overlay
// stream. Streams grow geometrically so steady-state frames never reallocate.
const overlayBufferMin = 4096

// overlayResources holds the GPU state of the immediate-mode overlay passes:
// the world and planar view bind groups, the glyph atlas, and the per-frame
// vertex streams for line segments and glyph quads.
type overlayResources struct {
	ready bool

	atlas text.Atlas

	viewBGP       bind_group_provider.BindGroupProvider // world-space overlay passes, group 0
	planarViewBGP bind_group_provider.BindGroupProvider // planar line pass, group 0
	atlasBGP      bind_group_provider.BindGroupProvider // text pass, group 1

	segmentBuf *wgpu.Buffer // 3D line and point segments
	segmentCap uint64
	planarBuf  *wgpu.Buffer // planar line segments
	planarCap  uint64
	glyphBuf   *wgpu.Buffer // glyph quad vertices
	glyphCap   uint64

	segmentScratch []byte
	glyphScratch   []byte
}

func (o *overlayResources) release() {
	if o.viewBGP != nil {
		o.viewBGP.Release()
	}
	if o.planarViewBGP != nil {
		o.planarViewBGP.Release()
	}
	if o.atlasBGP != nil {
		o.atlasBGP.Release()
	}
	if o.segmentBuf != nil {
		o.segmentBuf.Release()
	}
	if o.planarBuf != nil {
		o.planarBuf.Release()
	}
	if o.glyphBuf != nil {
		o.glyphBuf.Release()
	}
	o.ready = false
}

// ensureOverlayResources initializes the overlay bind groups and glyph atlas
// on the first frame that needs them. The renderer must already have the
// builtin pipelines registered, which every scene guarantees on construction.
func (e *engine) ensureOverlayResources(r renderer.Renderer) error {
	if e.overlay.ready {
		return nil
	}

	e.overlay.atlas = text.NewAtlas()

	// All overlay pipelines share the view uniform layout at group 0; the
	// polyline shader is the representative descriptor source.
	overlayVS := r.Pipeline(renderer.PipelineKeyPolyline).Shader(shader.ShaderTypeVertex)

	e.overlay.viewBGP = bind_group_provider.NewBindGroupProvider("overlay_view")
	if err := r.InitBindGroup(e.overlay.viewBGP, overlayVS.BindGroupLayoutDescriptor(0), nil, map[int]uint64{0: camera.ViewUniformsSize}); err != nil {
		return err
	}

	e.overlay.planarViewBGP = bind_group_provider.NewBindGroupProvider("overlay_planar_view")
	if err := r.InitBindGroup(e.overlay.planarViewBGP, overlayVS.BindGroupLayoutDescriptor(0), nil, map[int]uint64{0: camera.ViewUniformsSize}); err != nil {
		return err
	}

	textFS := r.Pipeline(renderer.PipelineKeyText).Shader(shader.ShaderTypeFragment)
	e.overlay.atlasBGP = bind_group_provider.NewBindGroupProvider("overlay_text_atlas")
	if err := r.InitTextureView(e.overlay.atlasBGP, 0, e.overlay.atlas.Staging()); err != nil {
		return err
	}
	if err := r.InitSampler(e.overlay.atlasBGP, 1, glyphSampler()); err != nil {
		return err
	}
	if err := r.InitBindGroup(e.overlay.atlasBGP, textFS.BindGroupLayoutDescriptor(1), nil, nil); err != nil {
		return err
	}

	e.overlay.ready = true
	return nil
}

// renderOverlays drains the window draw lists and encodes the overlay passes
// into the current frame: world-space segments (lines and points), planar
// segments, then text. Must run between BeginFrame and EndFrame, after the
// scene passes so the overlays composite on top.
func (e *engine) renderOverlays(r renderer.Renderer, cam camera.Camera) error {
	lists := e.window.DrainDrawLists()
	if lists.Empty() || cam == nil {
		return nil
	}
	if err := e.ensureOverlayResources(r); err != nil {
		return err
	}

	w, h := r.SurfaceSize()
	fw, fh := float32(w), float32(h)

	view := camera.NewViewUniforms(cam, fw, fh)
	r.WriteBuffer(e.overlay.viewBGP.Buffer(0), 0, view.Marshal())

	if count, err := e.packWorldSegments(r, lists, cam, fw); err != nil {
		return err
	} else if count > 0 {
		if err := r.DrawVertices(renderer.PipelineKeyPolyline, []*wgpu.Buffer{e.overlay.segmentBuf}, 6, count, []bind_group_provider.BindGroupProvider{e.overlay.viewBGP}); err != nil {
			return err
		}
	}

	if len(lists.PlanarLines) > 0 {
		planarView := camera.NewViewUniforms(e.planarCam, fw, fh)
		r.WriteBuffer(e.overlay.planarViewBGP.Buffer(0), 0, planarView.Marshal())

		count, err := e.packPlanarSegments(r, lists)
		if err != nil {
			return err
		}
		if count > 0 {
			if err := r.DrawVertices(renderer.PipelineKeyPolyline2D, []*wgpu.Buffer{e.overlay.planarBuf}, 6, count, []bind_group_provider.BindGroupProvider{e.overlay.planarViewBGP}); err != nil {
				return err
			}
		}
	}

	if len(lists.Texts) > 0 {
		buf := e.overlay.glyphScratch[:0]
		for _, t := range lists.Texts {
			buf = text.AppendText(buf, e.overlay.atlas, t.Text, t.X, t.Y, t.Scale, t.Color)
		}
		e.overlay.glyphScratch = buf
		if len(buf) > 0 {
			if err := ensureOverlayBuffer(r, &e.overlay.glyphBuf, &e.overlay.glyphCap, uint64(len(buf)), "overlay_glyphs"); err != nil {
				return err
			}
			r.WriteBuffer(e.overlay.glyphBuf, 0, buf)
			vertexCount := uint32(len(buf) / text.GlyphVertexSize)
			if err := r.DrawVertices(renderer.PipelineKeyText, []*wgpu.Buffer{e.overlay.glyphBuf}, vertexCount, 1, []bind_group_provider.BindGroupProvider{e.overlay.viewBGP, e.overlay.atlasBGP}); err != nil {
				return err
			}
		}
	}

	return nil
}

// packWorldSegments marshals the 3D line and point commands into the shared
// segment stream and uploads it. Points become short camera-facing segments
// sized to the configured point size at their projected depth.
func (e *engine) packWorldSegments(r renderer.Renderer, lists window.DrawLists, cam camera.Camera, viewportWidth float32) (uint32, error) {
	total := len(lists.Lines) + len(lists.Points)
	if total == 0 {
		return 0, nil
	}

	buf := growBytes(e.overlay.segmentScratch, total*material.LineSegmentSize)
	count := 0
	for _, l := range lists.Lines {
		seg := material.LineSegment{
			PointA: l.A,
			Width:  e.lineWidth,
			PointB: l.B,
			Color:  opaque(l.Color),
		}
		seg.MarshalInto(buf[count*material.LineSegmentSize:])
		count++
	}
	viewMat := cam.ViewMatrix()
	projMat := cam.ProjectionMatrix()
	for _, p := range lists.Points {
		seg, ok := pointSegment(viewMat, projMat, viewportWidth, p.Position, e.pointSize, opaque(p.Color))
		if !ok {
			continue
		}
		seg.MarshalInto(buf[count*material.LineSegmentSize:])
		count++
	}
	e.overlay.segmentScratch = buf
	if count == 0 {
		return 0, nil
	}

	used := uint64(count * material.LineSegmentSize)
	if err := ensureOverlayBuffer(r, &e.overlay.segmentBuf, &e.overlay.segmentCap, used, "overlay_segments"); err != nil {
		return 0, err
	}
	r.WriteBuffer(e.overlay.segmentBuf, 0, buf[:used])
	return uint32(count), nil
}

// packPlanarSegments marshals the planar line commands onto the z=0 plane
// and uploads them for the depth-test-free planar pipeline.
func (e *engine) packPlanarSegments(r renderer.Renderer, lists window.DrawLists) (uint32, error) {
	used := uint64(len(lists.PlanarLines) * material.LineSegmentSize)
	buf := growBytes(nil, int(used))
	for i, l := range lists.PlanarLines {
		seg := material.LineSegment{
			PointA: [3]float32{l.A[0], l.A[1], 0},
			Width:  e.lineWidth,
			PointB: [3]float32{l.B[0], l.B[1], 0},
			Color:  opaque(l.Color),
		}
		seg.MarshalInto(buf[i*material.LineSegmentSize:])
	}

	if err := ensureOverlayBuffer(r, &e.overlay.planarBuf, &e.overlay.planarCap, used, "overlay_planar_segments"); err != nil {
		return 0, err
	}
	r.WriteBuffer(e.overlay.planarBuf, 0, buf[:used])
	return uint32(len(lists.PlanarLines)), nil
}

// pointSegment converts a world-space point into a camera-facing segment
// whose screen length matches the requested pixel size. Points behind the
// camera are rejected.
//
// Parameters:
//   - view, proj: the camera matrices, column-major
//   - viewportWidth: viewport width in pixels
//   - p: the point position in world space
//   - size: the point size in pixels
//   - color: the RGBA point color
//
// Returns:
//   - material.LineSegment: the expanded segment
//   - bool: false when the point projects behind the camera
func pointSegment(view, proj [16]float32, viewportWidth float32, p [3]float32, size float32, color [4]float32) (material.LineSegment, bool) {
	// View-space position.
	vx := view[0]*p[0] + view[4]*p[1] + view[8]*p[2] + view[12]
	vy := view[1]*p[0] + view[5]*p[1] + view[9]*p[2] + view[13]
	vz := view[2]*p[0] + view[6]*p[1] + view[10]*p[2] + view[14]
	clipW := proj[3]*vx + proj[7]*vy + proj[11]*vz + proj[15]
	if clipW <= 0 {
		return material.LineSegment{}, false
	}

	// World-space half extent subtending size pixels at this depth. The view
	// rotation rows are orthonormal, so row 0 is the camera right axis.
	half := size * clipW / (proj[0] * viewportWidth)
	right := [3]float32{view[0], view[4], view[8]}

	return material.LineSegment{
		PointA: [3]float32{p[0] - right[0]*half, p[1] - right[1]*half, p[2] - right[2]*half},
		Width:  size,
		PointB: [3]float32{p[0] + right[0]*half, p[1] + right[1]*half, p[2] + right[2]*half},
		Color:  color,
	}, true
}

// ensureOverlayBuffer grows a dynamic overlay vertex buffer to hold at least
// needed bytes, reallocating geometrically so repeated frames stabilize.
func ensureOverlayBuffer(r renderer.Renderer, buf **wgpu.Buffer, capacity *uint64, needed uint64, label string) error {
	if *buf != nil && *capacity >= needed {
		return nil
	}
	if *buf != nil {
		(*buf).Release()
		*buf = nil
	}
	size := max(needed*2, overlayBufferMin)
	b, err := r.CreateDynamicBuffer(label, size, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	*buf = b
	*capacity = size
	return nil
}

// growBytes returns a slice of exactly n bytes, reusing the backing array
// when it is large enough.
func growBytes(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}

// opaque promotes an RGB color to RGBA with full alpha. Overlay commands
// carry opaque colors; alpha zero is the shader's sentinel for defaults.
func opaque(rgb [3]float32) [4]float32 {
	return [4]float32{rgb[0], rgb[1], rgb[2], 1}
}

// glyphSampler returns the sampler description for the text atlas. Nearest
// filtering keeps the bitmap glyphs crisp at integer scales.
func glyphSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	}
}
