package export

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestMmToInches(t *testing.T) {
	tests := []struct {
		mm   float64
		want float64
	}{
		{25.4, 1.0},
		{0, 0},
		{210, 8.2677},
		{297, 11.6929},
	}
	for _, tt := range tests {
		got := mmToInches(tt.mm)
		assert.True(t, almostEqual(got, tt.want, 0.001), "mmToInches(%v) = %v, want ~%v", tt.mm, got, tt.want)
	}
}

func TestDefaultPageGeometry(t *testing.T) {
	d := DefaultPageGeometry()
	assert.Equal(t, A4, d.Size)
	assert.Equal(t, Portrait, d.Orientation)
	assert.Equal(t, 96.0, d.DPI)
}

func TestPageGeometryResolved_Nil(t *testing.T) {
	var g *PageGeometry
	assert.Equal(t, DefaultPageGeometry(), g.resolved())
}

func TestPageGeometryResolved_ZeroValues(t *testing.T) {
	g := &PageGeometry{}
	r := g.resolved()
	assert.Equal(t, A4, r.Size)
	assert.Equal(t, 96.0, r.DPI)
}

func TestPageGeometryResolved_PreservesExplicit(t *testing.T) {
	g := &PageGeometry{Size: Letter, Orientation: Landscape, DPI: 72}
	r := g.resolved()
	assert.Equal(t, Letter, r.Size)
	assert.Equal(t, Landscape, r.Orientation)
	assert.Equal(t, 72.0, r.DPI)
}

func TestPixels_A4At96DPI(t *testing.T) {
	g := DefaultPageGeometry()
	w, h := g.Pixels()
	assert.Equal(t, 794, w)
	assert.Equal(t, 1123, h)
}

func TestDimensions_Landscape(t *testing.T) {
	g := &PageGeometry{Size: A4, Orientation: Landscape}
	w, h := g.Dimensions()
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)

	iw, ih := g.Inches()
	assert.True(t, almostEqual(iw, 11.693, 0.01))
	assert.True(t, almostEqual(ih, 8.267, 0.01))
}
