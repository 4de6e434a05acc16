package export

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate_SinglePage(t *testing.T) {
	// An A4 canvas at 96 DPI, supersampled by two.
	plan, err := Paginate(1588, 2246, DefaultPageGeometry(), DefaultSliverTolerance)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Pages())
	assert.Equal(t, []float64{0}, plan.Offsets)
	assert.InDelta(t, 210, plan.ImageWidth, 1e-9)
	assert.InDelta(t, 297, plan.ImageHeight, 0.1)
}

func TestPaginate_TallBitmap(t *testing.T) {
	// 2.4 page heights at A4 aspect.
	w := 1000
	pages := 2.4
	h := int(math.Round(float64(w) * 297.0 / 210.0 * pages))
	plan, err := Paginate(w, h, DefaultPageGeometry(), DefaultSliverTolerance)
	require.NoError(t, err)

	require.Equal(t, 3, plan.Pages())
	assert.InDelta(t, 0, plan.Offsets[0], 1e-9)
	assert.InDelta(t, -297, plan.Offsets[1], 0.05)
	assert.InDelta(t, -594, plan.Offsets[2], 0.05)
}

func TestPaginate_ExactMultiple(t *testing.T) {
	plan, err := Paginate(210, 594, DefaultPageGeometry(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Pages())
}

func TestPaginate_SliverTolerance(t *testing.T) {
	// 2246 px at 1588 px wide is 297.015 mm, a hair over one page.
	plan, err := Paginate(1588, 2246, DefaultPageGeometry(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Pages(), "zero tolerance keeps the sliver page")

	plan, err = Paginate(1588, 2246, DefaultPageGeometry(), -1)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Pages(), "negative tolerance acts as zero")
}

func TestPaginate_Landscape(t *testing.T) {
	g := PageGeometry{Size: A4, Orientation: Landscape}
	plan, err := Paginate(297, 420, g, DefaultSliverTolerance)
	require.NoError(t, err)

	assert.Equal(t, Landscape, plan.Orientation)
	assert.InDelta(t, 297, plan.PageWidth, 1e-9)
	assert.InDelta(t, 210, plan.PageHeight, 1e-9)
	assert.Equal(t, 2, plan.Pages())
}

func TestPaginate_Empty(t *testing.T) {
	_, err := Paginate(0, 100, DefaultPageGeometry(), 0)
	assert.Error(t, err)
}
