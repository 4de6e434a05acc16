package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
)

func tableElement(t *testing.T, rows int) element.Element {
	t.Helper()
	data := jsonvalue.Array{}
	for i := 0; i < rows; i++ {
		o := jsonvalue.NewObject()
		o.Set("name", "row")
		o.Set("n", float64(i))
		data = append(data, o)
	}
	return element.Element{
		ID:        "t1",
		Kind:      element.KindTable,
		X:         20,
		Y:         40,
		Width:     element.Float(400),
		Height:    element.Float(200),
		FieldPath: "items",
		Style:     element.Style{element.StyleBorder: "1px solid #ccc", element.StyleBackgroundColor: "#ffffff"},
		Data:      data,
		Columns: []element.Column{
			{Field: "name", Header: "name", Width: 100},
			{Field: "n", Header: "n", Width: 100},
		},
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#000000", color.NRGBA{0, 0, 0, 0xff}, true},
		{"#ccc", color.NRGBA{0xcc, 0xcc, 0xcc, 0xff}, true},
		{"#ff000080", color.NRGBA{0xff, 0, 0, 0x80}, true},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 0xff}, true},
		{"rgba(10,20,30,0.5)", color.NRGBA{10, 20, 30, 128}, true},
		{"White", color.NRGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#12", color.NRGBA{}, false},
		{"chartreuse-ish", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := parseColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseBorder(t *testing.T) {
	b := parseBorder("1px solid #ccc")
	assert.Equal(t, 1.0, b.Width)
	assert.Equal(t, "solid", b.Style)
	assert.Equal(t, color.NRGBA{0xcc, 0xcc, 0xcc, 0xff}, b.Color)

	b = parseBorder("dashed 2px rgb(1, 2, 3)")
	assert.Equal(t, 2.0, b.Width)
	assert.Equal(t, "dashed", b.Style)
	assert.Equal(t, color.NRGBA{1, 2, 3, 0xff}, b.Color)

	assert.False(t, parseBorder("none").visible())
	assert.False(t, parseBorder("").visible())
}

func TestParseLength(t *testing.T) {
	assert.Equal(t, 16.0, parseLength("16px", 0))
	assert.Equal(t, 12.0, parseLength("12", 0))
	assert.InDelta(t, 16.0, parseLength("12pt", 0), 1e-9)
	assert.Equal(t, 24.0, parseLength("1.5em", 0))
	assert.Equal(t, 7.0, parseLength("wide", 7))
	assert.Equal(t, 7.0, parseLength("-3px", 7))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, [4]float64{4, 4, 4, 4}, padding("4px"))
	assert.Equal(t, [4]float64{4, 8, 4, 8}, padding("4px 8px"))
	assert.Equal(t, [4]float64{1, 2, 3, 4}, padding("1px 2px 3px 4px"))
	assert.Equal(t, [4]float64{}, padding(""))
}

func TestCSSDecl(t *testing.T) {
	d, ok := cssDecl(element.StyleBackgroundColor, "#fff")
	require.True(t, ok)
	assert.Equal(t, "background-color:#fff", d)

	_, ok = cssDecl("position", "fixed")
	assert.False(t, ok, "unknown property")

	_, ok = cssDecl(element.StyleColor, "red;position:fixed")
	assert.False(t, ok, "declaration break-out")

	_, ok = cssDecl(element.StyleBackgroundColor, "url(http://x)")
	assert.False(t, ok)
}

func TestHTML(t *testing.T) {
	s := &export.Surface{
		Width:      794,
		Height:     1123,
		Background: "#ffffff",
		Elements: []element.Element{
			{
				ID:      "a",
				Kind:    element.KindText,
				X:       10,
				Y:       12.5,
				Content: "<b>Total</b>",
				Style:   element.Style{element.StyleFontSize: "16px", "onclick": "alert(1)"},
			},
			tableElement(t, 7),
		},
	}
	out, err := HTML(s)
	require.NoError(t, err)

	assert.Contains(t, out, `id="canvas"`)
	assert.Contains(t, out, "width:794px;height:1123px")
	assert.Contains(t, out, "left:10px;top:12.5px;")
	assert.Contains(t, out, "font-size:16px;")
	assert.Contains(t, out, "&lt;b&gt;Total&lt;/b&gt;")
	assert.NotContains(t, out, "alert")

	assert.Contains(t, out, "<th style=\"width:100px;\">name</th>")
	assert.Equal(t, element.PreviewRows, strings.Count(out, "<tr><td>"))
	assert.Contains(t, out, "2 more rows...")
	assert.Less(t, strings.Index(out, `data-id="a"`), strings.Index(out, `data-id="t1"`), "paint order")
}

func TestHTML_NilSurface(t *testing.T) {
	_, err := HTML(nil)
	assert.Error(t, err)
}

func decode(t *testing.T, b *export.Bitmap) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b.PNG))
	require.NoError(t, err)
	return img
}

func rgb(c color.Color) [3]uint32 {
	r, g, b, _ := c.RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestRasterize(t *testing.T) {
	s := &export.Surface{
		Width:      200,
		Height:     300,
		Background: "#00ff00",
		Elements: []element.Element{
			{
				ID:     "box",
				Kind:   element.KindText,
				X:      10,
				Y:      10,
				Width:  element.Float(100),
				Height: element.Float(50),
				Style:  element.Style{element.StyleBackgroundColor: "#0000ff"},
			},
		},
	}
	bmp, err := NewRasterizer().Rasterize(context.Background(), s, 2)
	require.NoError(t, err)
	require.NoError(t, bmp.Validate())
	assert.Equal(t, 400, bmp.Width)
	assert.Equal(t, 600, bmp.Height)

	img := decode(t, bmp)
	assert.Equal(t, [3]uint32{0, 0, 0xff}, rgb(img.At(60, 60)), "inside the box")
	assert.Equal(t, [3]uint32{0, 0xff, 0}, rgb(img.At(300, 500)), "page background")
}

func TestRasterize_Table(t *testing.T) {
	s := &export.Surface{Width: 794, Height: 1123, Elements: []element.Element{tableElement(t, 12)}}
	bmp, err := NewRasterizer().Rasterize(context.Background(), s, 1)
	require.NoError(t, err)
	require.NoError(t, bmp.Validate())

	img := decode(t, bmp)
	// caption bar
	assert.Equal(t, [3]uint32{0xf3, 0xf4, 0xf6}, rgb(img.At(20+390, 40+2)))
	// untouched page
	assert.Equal(t, [3]uint32{0xff, 0xff, 0xff}, rgb(img.At(700, 1000)))
}

func TestRasterize_IntrinsicText(t *testing.T) {
	e := element.Element{ID: "t", Kind: element.KindText, Content: "Hello\nworld", Style: element.Style{element.StyleFontSize: "20px"}}
	p := &painter{scale: 1, faces: newFaceSet(newFontCache())}
	w, h := p.size(e)
	assert.GreaterOrEqual(t, w, defaultTextWidth)
	assert.InDelta(t, 2*20*lineHeightFactor, h, 1e-9)
}

func TestRasterize_EmptySurface(t *testing.T) {
	_, err := NewRasterizer().Rasterize(context.Background(), &export.Surface{}, 2)
	assert.Error(t, err)
}

func TestRasterize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &export.Surface{Width: 10, Height: 10, Elements: []element.Element{{ID: "x", Kind: element.KindText}}}
	_, err := NewRasterizer().Rasterize(ctx, s, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRasterize_OversizedElementIsClipped(t *testing.T) {
	huge := 1e8
	s := &export.Surface{
		Width:      794,
		Height:     1123,
		Background: "#ffffff",
		Elements: []element.Element{{
			ID:      "big",
			Kind:    element.KindText,
			Content: "overflow",
			X:       10,
			Y:       10,
			Width:   &huge,
			Height:  &huge,
			Style: element.Style{
				element.StyleBackgroundColor: "#ff0000",
				element.StyleBorder:          "2px solid #0000ff",
				element.StyleBorderRadius:    "8px",
			},
		}},
	}
	bmp, err := NewRasterizer().Rasterize(context.Background(), s, 2)
	require.NoError(t, err)
	assert.Equal(t, 1588, bmp.Width)
	assert.Equal(t, 2246, bmp.Height)

	img := decode(t, bmp)
	assert.Equal(t, [3]uint32{0xff, 0xff, 0xff}, rgb(img.At(5, 5)), "above and left of the box")
	assert.Equal(t, [3]uint32{0xff, 0x00, 0x00}, rgb(img.At(1500, 2200)), "box fills the rest of the page")
}

func TestRasterize_PartlyOffPage(t *testing.T) {
	w, h := 100.0, 40.0
	s := &export.Surface{
		Width:  200,
		Height: 100,
		Elements: []element.Element{{
			ID:     "left",
			Kind:   element.KindText,
			X:      -50,
			Y:      -20,
			Width:  &w,
			Height: &h,
			Style:  element.Style{element.StyleBackgroundColor: "#0000ff"},
		}},
	}
	bmp, err := NewRasterizer().Rasterize(context.Background(), s, 1)
	require.NoError(t, err)

	img := decode(t, bmp)
	assert.Equal(t, [3]uint32{0x00, 0x00, 0xff}, rgb(img.At(10, 10)))
	assert.Equal(t, [3]uint32{0xff, 0xff, 0xff}, rgb(img.At(60, 10)))
	assert.Equal(t, [3]uint32{0xff, 0xff, 0xff}, rgb(img.At(10, 30)))
}

func TestRasterize_OversizedThroughExporter(t *testing.T) {
	huge := 1e8
	s := &export.Surface{
		Width:  794,
		Height: 1123,
		Elements: []element.Element{{
			ID: "big", Kind: element.KindText, Content: "x",
			Width: &huge, Height: &huge,
		}},
	}
	x := export.NewExporter(NewRasterizer(), export.FpdfAssembler{})
	res, err := x.Export(context.Background(), s, "Oversized")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages(), "content past the page is cut, not paginated")
}
