package jsoncanvas

import "math"

// Zoom bounds and step of the canvas view.
const (
	MinZoom  = 0.5
	MaxZoom  = 2.0
	ZoomStep = 0.1
)

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Viewport maps between viewport coordinates (where pointer events happen)
// and document coordinates (where elements live). The canvas is drawn with
// its top-left corner at Origin and scaled by the zoom factor.
//
// The zero value is an unzoomed view at the viewport origin.
type Viewport struct {
	Origin Point
	zoom   float64
}

// Zoom returns the current scale factor.
func (v Viewport) Zoom() float64 {
	if v.zoom == 0 {
		return 1
	}
	return v.zoom
}

// SetZoom sets the scale factor, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	v.zoom = math.Round(min(MaxZoom, max(MinZoom, z))*100) / 100
}

func (v *Viewport) ZoomIn()  { v.SetZoom(v.Zoom() + ZoomStep) }
func (v *Viewport) ZoomOut() { v.SetZoom(v.Zoom() - ZoomStep) }

// Percent is the zoom as a rounded percentage, as shown in the toolbar.
func (v Viewport) Percent() int {
	return int(math.Round(v.Zoom() * 100))
}

// ToDocument converts a viewport position to document coordinates.
func (v Viewport) ToDocument(p Point) Point {
	z := v.Zoom()
	return Point{X: (p.X - v.Origin.X) / z, Y: (p.Y - v.Origin.Y) / z}
}

// ToViewport converts a document position to viewport coordinates.
func (v Viewport) ToViewport(p Point) Point {
	z := v.Zoom()
	return Point{X: p.X*z + v.Origin.X, Y: p.Y*z + v.Origin.Y}
}

// ToDocumentDelta converts a pointer displacement to document units.
func (v Viewport) ToDocumentDelta(dx, dy float64) (float64, float64) {
	z := v.Zoom()
	return dx / z, dy / z
}
