package window

// Immediate-mode overlay commands. User code queues these during the update
// callback and the render loop drains them once per frame, so every command
// lives for exactly one frame.

// LineCommand is a world-space line segment queued via DrawLine.
type LineCommand struct {
	A, B  [3]float32
	Color [3]float32
}

// PlanarLineCommand is a 2D line segment queued via DrawPlanarLine, expressed
// in planar world coordinates and drawn on top of the scene.
type PlanarLineCommand struct {
	A, B  [2]float32
	Color [3]float32
}

// PointCommand is a world-space point queued via DrawPoint.
type PointCommand struct {
	Position [3]float32
	Color    [3]float32
}

// TextCommand is a screen-space string queued via DrawText.
type TextCommand struct {
	Text     string
	X, Y     float32
	Scale    float32
	Color    [4]float32
}

// DrawLists holds one frame's queued overlay commands.
type DrawLists struct {
	Lines       []LineCommand
	PlanarLines []PlanarLineCommand
	Points      []PointCommand
	Texts       []TextCommand
}

// Empty reports whether no commands are queued.
func (d DrawLists) Empty() bool {
	return len(d.Lines) == 0 && len(d.PlanarLines) == 0 && len(d.Points) == 0 && len(d.Texts) == 0
}

// FrameSink receives the rendered frames of a recording session. The engine
// feeds it tightly packed RGBA pixels after each presented frame while
// recording is active.
type FrameSink interface {
	// WriteFrame consumes one rendered frame.
	//
	// Parameters:
	//   - pixels: RGBA pixel data, 4 bytes per pixel, row-major
	//   - width: frame width in pixels
	//   - height: frame height in pixels
	//
	// Returns:
	//   - error: an error if the sink cannot accept the frame; recording stops
	WriteFrame(pixels []byte, width, height int) error
}
