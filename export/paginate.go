package export

import "fmt"

// DefaultSliverTolerance is the leftover height, in millimetres, below which
// no extra page is started. It absorbs the rounding between the pixel
// canvas and the paper size (an A4 canvas of 1123 px maps to 297.015 mm).
const DefaultSliverTolerance = 0.5

// Plan describes how one bitmap is laid out across pages. All lengths are
// in millimetres.
type Plan struct {
	Title       string
	Orientation Orientation
	PageWidth   float64
	PageHeight  float64
	ImageWidth  float64 // always PageWidth
	ImageHeight float64 // ImageWidth scaled by the bitmap's aspect ratio

	// Offsets holds, per page, the vertical position of the image's top
	// edge. The first page is at 0 and each following page is shifted up
	// by one more page height, so page n shows the slice starting at
	// n*PageHeight.
	Offsets []float64
}

// Pages returns the number of pages in the plan.
func (p Plan) Pages() int {
	return len(p.Offsets)
}

// Paginate plans the pages for a bitmap of w×h pixels. The image spans the
// full page width and keeps its aspect ratio; pages are added while the
// unconsumed image height exceeds sliver.
func Paginate(w, h int, g PageGeometry, sliver float64) (Plan, error) {
	if w <= 0 || h <= 0 {
		return Plan{}, fmt.Errorf("paginating %dx%d bitmap: empty image", w, h)
	}
	if sliver < 0 {
		sliver = 0
	}
	r := g.resolved()
	pageW, pageH := r.Dimensions()

	plan := Plan{
		Orientation: r.Orientation,
		PageWidth:   pageW,
		PageHeight:  pageH,
		ImageWidth:  pageW,
		ImageHeight: float64(h) * pageW / float64(w),
	}

	heightLeft := plan.ImageHeight
	plan.Offsets = append(plan.Offsets, 0)
	heightLeft -= pageH
	for heightLeft > sliver {
		plan.Offsets = append(plan.Offsets, heightLeft-plan.ImageHeight)
		heightLeft -= pageH
	}
	return plan, nil
}
