package export

import "math"

// PageSize represents paper dimensions in millimetres.
type PageSize struct {
	Width  float64 // Width in millimetres.
	Height float64 // Height in millimetres.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 297, Height: 420}
	A4      = PageSize{Width: 210, Height: 297}
	A5      = PageSize{Width: 148, Height: 210}
	Letter  = PageSize{Width: 215.9, Height: 279.4}
	Legal   = PageSize{Width: 215.9, Height: 355.6}
	Tabloid = PageSize{Width: 279.4, Height: 431.8}
)

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// CSSPixelsPerInch is the resolution at which the on-screen page is laid out.
const CSSPixelsPerInch = 96.0

// PageGeometry is the fixed printable page used both for the on-screen
// canvas and for export pagination.
//
// A zero-value PageGeometry resolves to A4 portrait at 96 DPI, which lays
// the canvas out at 794×1123 pixels.
type PageGeometry struct {
	// Size specifies the paper size. Defaults to A4.
	Size PageSize

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation

	// DPI is the canvas resolution in pixels per inch. Defaults to 96.
	DPI float64
}

// DefaultPageGeometry returns A4 portrait at 96 DPI.
func DefaultPageGeometry() PageGeometry {
	return PageGeometry{
		Size:        A4,
		Orientation: Portrait,
		DPI:         CSSPixelsPerInch,
	}
}

// resolved returns a PageGeometry with all zero values replaced by defaults.
func (g *PageGeometry) resolved() PageGeometry {
	d := DefaultPageGeometry()
	if g == nil {
		return d
	}
	r := *g
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		r.Size = d.Size
	}
	if r.DPI <= 0 {
		r.DPI = d.DPI
	}
	return r
}

// Dimensions returns the page width and height in millimetres, accounting
// for orientation.
func (g *PageGeometry) Dimensions() (width, height float64) {
	r := g.resolved()
	if r.Orientation == Landscape {
		return r.Size.Height, r.Size.Width
	}
	return r.Size.Width, r.Size.Height
}

// Pixels returns the canvas size in pixels, rounded to whole pixels.
func (g *PageGeometry) Pixels() (width, height int) {
	r := g.resolved()
	w, h := g.Dimensions()
	return int(math.Round(mmToInches(w) * r.DPI)), int(math.Round(mmToInches(h) * r.DPI))
}

// Inches returns the page width and height in inches.
func (g *PageGeometry) Inches() (width, height float64) {
	w, h := g.Dimensions()
	return mmToInches(w), mmToInches(h)
}

// mmToInches converts millimetres to inches.
func mmToInches(mm float64) float64 {
	return mm / 25.4
}
