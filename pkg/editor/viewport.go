package editor

// Position is a point or offset on the canvas, in screen pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pointer buttons as delivered by the host UI.
const (
	ButtonPrimary = 0
	ButtonMiddle  = 1
	ButtonRight   = 2
)

// Zoom bounds, in percent.
const (
	MinZoom     = 25
	MaxZoom     = 300
	DefaultZoom = 100
	ZoomStep    = 25
)

// Viewport tracks the pan offset and zoom factor of the canvas,
// independent of document content. Two pointer-driven states exist: idle
// and panning. Pan accumulates pointer deltas while panning; zoom moves in
// discrete steps or by direct input, always clamped to [MinZoom, MaxZoom].
type Viewport struct {
	pan     Position
	zoom    int
	panning bool
	lastPos Position
}

func NewViewport() *Viewport {
	return &Viewport{zoom: DefaultZoom}
}

func (v *Viewport) Pan() Position {
	return v.pan
}

func (v *Viewport) Zoom() int {
	return v.zoom
}

func (v *Viewport) Panning() bool {
	return v.panning
}

// PointerDown enters panning on middle or right button.
func (v *Viewport) PointerDown(button int, x, y float64) {
	if button != ButtonMiddle && button != ButtonRight {
		return
	}

	v.panning = true
	v.lastPos = Position{X: x, Y: y}
}

// PointerMove accumulates the delta since the last pointer position while
// panning; outside panning it only tracks position.
func (v *Viewport) PointerMove(x, y float64) {
	if v.panning {
		v.pan.X += x - v.lastPos.X
		v.pan.Y += y - v.lastPos.Y
	}

	v.lastPos = Position{X: x, Y: y}
}

// PointerUp leaves panning. Pointer-leave maps here too, so the viewport
// can never stay stuck mid-pan.
func (v *Viewport) PointerUp() {
	v.panning = false
}

// TogglePanning is the button-gated variant some editions use instead of
// button-down panning.
func (v *Viewport) TogglePanning() {
	v.panning = !v.panning
}

func (v *Viewport) ZoomIn() {
	v.zoom = clampZoom(v.zoom + ZoomStep)
}

func (v *Viewport) ZoomOut() {
	v.zoom = clampZoom(v.zoom - ZoomStep)
}

// SetZoom takes direct numeric input, clamped.
func (v *Viewport) SetZoom(zoom int) {
	v.zoom = clampZoom(zoom)
}

// Wheel zooms only when the modifier key is held, so plain scrolling is
// never hijacked. A positive delta scrolls down and zooms out.
func (v *Viewport) Wheel(deltaY float64, modifier bool) {
	if !modifier {
		return
	}

	if deltaY > 0 {
		v.ZoomOut()
	} else if deltaY < 0 {
		v.ZoomIn()
	}
}

// Reset restores zoom to 100% and the pan offset to the origin.
func (v *Viewport) Reset() {
	v.zoom = DefaultZoom
	v.pan = Position{}
}

func clampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}

	if zoom > MaxZoom {
		return MaxZoom
	}

	return zoom
}
