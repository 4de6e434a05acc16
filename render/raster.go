package render

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/export"
)

// Rasterizer draws surfaces natively with the Go fonts. It needs no
// browser, so it is the default rasterizer. Rounded corners are drawn;
// image elements render as a placeholder with their alt text.
//
// A Rasterizer is safe for concurrent use.
type Rasterizer struct {
	fonts *fontCache
}

// NewRasterizer returns a Rasterizer with an empty font cache.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{fonts: newFontCache()}
}

// Rasterize implements [export.Rasterizer].
func (r *Rasterizer) Rasterize(ctx context.Context, s *export.Surface, scale float64) (*export.Bitmap, error) {
	if s == nil || s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("render: empty surface")
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	w := int(math.Round(float64(s.Width) * scale))
	h := int(math.Round(float64(s.Height) * scale))

	dc := gg.NewContext(w, h)
	dc.SetColor(colorOr(s.Background, color.NRGBA{0xff, 0xff, 0xff, 0xff}))
	dc.Clear()

	p := &painter{dc: dc, scale: scale, faces: newFaceSet(r.fonts)}
	for _, e := range s.Elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Finite() {
			continue
		}
		p.element(e)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("render: encoding png: %w", err)
	}
	return &export.Bitmap{PNG: buf.Bytes(), Width: w, Height: h}, nil
}

// painter draws elements onto the page. Every element is drawn into its
// own context covering the visible part of its box, which clips overflowing
// content, and then composited at its position. Boxes reaching past the
// page are cut at the page edge.
type painter struct {
	dc    *gg.Context
	scale float64
	faces *faceSet

	// ox, oy is the pixel offset of the visible part within the current
	// element's box and bw, bh its pixel size.
	ox, oy float64
	bw, bh float64
}

// clipMargin is how far, in canvas units, shapes may extend past the
// visible part of a box. It exceeds any border or corner radius in use.
const clipMargin = 1024

func (p *painter) element(e element.Element) {
	w, h := p.size(e)
	if w <= 0 || h <= 0 {
		return
	}
	ex, ey := math.Round(e.X*p.scale), math.Round(e.Y*p.scale)
	x0 := max(ex, 0)
	y0 := max(ey, 0)
	x1 := min(ex+math.Ceil(w*p.scale), float64(p.dc.Width()))
	y1 := min(ey+math.Ceil(h*p.scale), float64(p.dc.Height()))
	if x1 <= x0 || y1 <= y0 {
		return
	}
	box := gg.NewContext(int(x1-x0), int(y1-y0))
	p.ox, p.oy = x0-ex, y0-ey
	p.bw, p.bh = x1-x0, y1-y0
	box.Translate(-p.ox, -p.oy)
	box.Scale(p.scale, p.scale)

	switch e.Kind {
	case element.KindText:
		p.background(box, e.Style, 0, 0, w, h)
		p.text(box, e, w)
	case element.KindTable:
		p.table(box, e, w, h)
	case element.KindImage:
		p.image(box, e, w, h)
	}
	p.dc.DrawImage(box.Image(), int(x0), int(y0))
}

// clip cuts a rectangle in box units down to the visible part of the box
// plus clipMargin. Shapes of huge boxes then keep small path coordinates.
func (p *painter) clip(x, y, w, h float64) (float64, float64, float64, float64) {
	left := p.ox/p.scale - clipMargin
	top := p.oy/p.scale - clipMargin
	right := (p.ox+p.bw)/p.scale + clipMargin
	bottom := (p.oy+p.bh)/p.scale + clipMargin
	x0, y0 := max(x, left), max(y, top)
	x1, y1 := min(x+w, right), min(y+h, bottom)
	return x0, y0, max(0, x1-x0), max(0, y1-y0)
}

// visible reports whether a text run of width w and height h, with its
// baseline starting at pixel x, y of the box, meets the visible part.
func (p *painter) visible(x, y, w, h float64) bool {
	x -= p.ox
	y -= p.oy
	return x+w >= 0 && x <= p.bw && y+h >= 0 && y-h <= p.bh
}

// pixels switches dc to unscaled pixel coordinates of the element box.
func (p *painter) pixels(dc *gg.Context) {
	dc.Identity()
	dc.Translate(-p.ox, -p.oy)
}

// size resolves the element's box, measuring text that has no explicit
// size.
func (p *painter) size(e element.Element) (w, h float64) {
	w, h = layoutSize(e)
	switch {
	case e.Kind == element.KindImage && (w <= 0 || h <= 0):
		return 150, 100
	case e.Kind != element.KindText || (w > 0 && h > 0):
		return w, h
	}
	f := fontOf(e.Style, defaultFontSize)
	face := p.faces.face(f, p.scale)
	pad := padding(e.Style.Get(element.StylePadding, "0"))
	lines := strings.Split(e.Content, "\n")
	if w <= 0 {
		widest := 0.0
		for _, l := range lines {
			widest = max(widest, measure(face, l)/p.scale)
		}
		// one pixel of slack keeps the last glyph from being clipped
		w = max(defaultTextWidth, math.Ceil(widest)+pad[1]+pad[3]+1)
	}
	if h <= 0 {
		wrapped := wrap(face, lines, (w-pad[1]-pad[3])*p.scale)
		h = max(defaultTextHeight, float64(len(wrapped))*f.Size*lineHeightFactor+pad[0]+pad[2])
	}
	return w, h
}

func (p *painter) background(dc *gg.Context, s element.Style, x, y, w, h float64) {
	radius := parseLength(s.Get(element.StyleBorderRadius, "0"), 0)
	if bg, ok := parseColor(s.Get(element.StyleBackgroundColor, "")); ok && bg.A > 0 {
		dc.SetColor(bg)
		cx, cy, cw, ch := p.clip(x, y, w, h)
		roundedRect(dc, radius, cx, cy, cw, ch)
		dc.Fill()
	}
	b := parseBorder(s.Get(element.StyleBorder, ""))
	if !b.visible() {
		return
	}
	dc.SetColor(b.Color)
	dc.SetLineWidth(b.Width)
	switch b.Style {
	case "dashed":
		dc.SetDash(3*b.Width, 2*b.Width)
	case "dotted":
		dc.SetDash(b.Width, b.Width)
	}
	inset := b.Width / 2
	bx, by, bw, bh := p.clip(x+inset, y+inset, w-b.Width, h-b.Width)
	roundedRect(dc, max(0, radius-inset), bx, by, bw, bh)
	dc.Stroke()
	dc.SetDash()
}

func roundedRect(dc *gg.Context, r, x, y, w, h float64) {
	r = min(r, w/2, h/2)
	if r <= 0 {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	dc.DrawRoundedRectangle(x, y, w, h, r)
}

func (p *painter) text(dc *gg.Context, e element.Element, w float64) {
	f := fontOf(e.Style, defaultFontSize)
	pad := padding(e.Style.Get(element.StylePadding, "0"))
	inner := w - pad[1] - pad[3]
	face := p.faces.face(f, p.scale)
	lines := wrap(face, strings.Split(e.Content, "\n"), inner*p.scale)

	// Glyphs are drawn unscaled at the scaled face size so that they stay
	// crisp.
	dc.Push()
	p.pixels(dc)
	dc.SetFontFace(face)
	dc.SetColor(colorOr(e.Style.Get(element.StyleColor, ""), color.NRGBA{A: 0xff}))
	lineH := f.Size * lineHeightFactor
	align := e.Style.Get(element.StyleTextAlign, "left")
	for i, l := range lines {
		x := pad[3]
		switch align {
		case "center":
			x += (inner - measure(face, l)/p.scale) / 2
		case "right", "end":
			x += inner - measure(face, l)/p.scale
		}
		baseline := pad[0] + float64(i)*lineH + (lineH+f.Size*0.7)/2
		if !p.visible(x*p.scale, baseline*p.scale, measure(face, l), lineH*p.scale) {
			continue
		}
		dc.DrawString(l, x*p.scale, baseline*p.scale)
	}
	dc.Pop()
}

func (p *painter) table(dc *gg.Context, e element.Element, w, h float64) {
	// caption bar with the source path
	dc.SetColor(colorCaption)
	dc.DrawRectangle(p.clip(0, 0, w, captionHeight))
	dc.Fill()
	capFont := fontSpec{Bold: true, Size: captionFontSize}
	p.cell(dc, capFont, colorCaptionText, e.FieldPath, 4, 0, w-8, captionHeight, "left")

	bodyH := h - captionHeight
	if bodyH <= 0 {
		return
	}
	p.background(dc, e.Style, 0, captionHeight, w, bodyH)

	base := fontOf(e.Style, tableFontSize)
	ink := colorOr(e.Style.Get(element.StyleColor, ""), color.NRGBA{A: 0xff})
	rowH := base.Size*lineHeightFactor + 2*cellPadding

	y := captionHeight
	x := 0.0
	for _, c := range e.Columns {
		hf := fontOf(element.Style{element.StyleFontWeight: "bold"}.Merge(c.Style), base.Size)
		p.cell(dc, hf, colorOr(c.Style.Get(element.StyleColor, ""), ink), c.Header, x+cellPadding, y, c.Width-2*cellPadding, rowH, c.Style.Get(element.StyleTextAlign, "left"))
		x += c.Width
	}
	p.rule(dc, y+rowH, w)
	y += rowH

	rows, more := e.Preview()
	for _, row := range rows {
		x = 0
		for _, c := range e.Columns {
			p.cell(dc, base, ink, c.Cell(row), x+cellPadding, y, c.Width-2*cellPadding, rowH, "left")
			x += c.Width
		}
		p.rule(dc, y+rowH, w)
		y += rowH
	}
	if more > 0 {
		mf := base
		mf.Italic = true
		p.cell(dc, mf, colorMuted, element.MoreRowsLabel(more), cellPadding, y, w-2*cellPadding, rowH, "center")
	}
}

func (p *painter) image(dc *gg.Context, e element.Element, w, h float64) {
	dc.SetColor(colorCaption)
	dc.DrawRectangle(p.clip(0, 0, w, h))
	dc.Fill()
	dc.SetColor(colorPlaceholder)
	dc.SetLineWidth(1)
	dc.SetDash(3, 2)
	dc.DrawRectangle(p.clip(0.5, 0.5, w-1, h-1))
	dc.Stroke()
	dc.SetDash()
	label := e.Alt
	if label == "" {
		label = "image"
	}
	p.cell(dc, fontSpec{Size: tableFontSize}, colorMuted, label, 4, 0, w-8, h, "center")
}

// cell draws one line of text vertically centred in a box, truncated with
// an ellipsis when it does not fit. Box coordinates are unscaled.
func (p *painter) cell(dc *gg.Context, f fontSpec, c color.Color, s string, x, y, w, h float64, align string) {
	if w <= 0 || s == "" {
		return
	}
	face := p.faces.face(f, p.scale)
	s = truncate(face, s, w*p.scale)
	tw := measure(face, s) / p.scale
	switch align {
	case "center":
		x += (w - tw) / 2
	case "right", "end":
		x += w - tw
	}
	baseline := (y + (h+f.Size*0.7)/2) * p.scale
	if !p.visible(x*p.scale, baseline, tw*p.scale, h*p.scale) {
		return
	}
	dc.Push()
	p.pixels(dc)
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(s, x*p.scale, baseline)
	dc.Pop()
}

func (p *painter) rule(dc *gg.Context, y, w float64) {
	dc.SetColor(colorRule)
	dc.SetLineWidth(1)
	x, _, lw, _ := p.clip(0, y-0.5, w, 0)
	dc.DrawLine(x, y-0.5, x+lw, y-0.5)
	dc.Stroke()
}

func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// truncate shortens s with an ellipsis until it fits limit pixels.
func truncate(face font.Face, s string, limit float64) string {
	if measure(face, s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if t := string(r) + "…"; measure(face, t) <= limit {
			return t
		}
	}
	return ""
}

// wrap breaks lines at spaces so that each fits limit pixels. A single word
// wider than limit is kept on its own line.
func wrap(face font.Face, lines []string, limit float64) []string {
	var out []string
	for _, l := range lines {
		words := strings.Fields(l)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, wd := range words[1:] {
			if measure(face, cur+" "+wd) <= limit {
				cur += " " + wd
				continue
			}
			out = append(out, cur)
			cur = wd
		}
		out = append(out, cur)
	}
	return out
}

// fontCache parses each embedded Go font once. Parsed fonts are read-only
// and shared; faces hold glyph caches and are not safe for concurrent use,
// so each rasterization keeps its own [faceSet].
type fontCache struct {
	mu    sync.Mutex
	fonts map[fontKey]*truetype.Font
}

type fontKey struct{ mono, bold, italic bool }

var fontData = map[fontKey][]byte{
	{false, false, false}: goregular.TTF,
	{false, true, false}:  gobold.TTF,
	{false, false, true}:  goitalic.TTF,
	{false, true, true}:   gobolditalic.TTF,
	{true, false, false}:  gomono.TTF,
	{true, true, false}:   gomonobold.TTF,
	{true, false, true}:   gomonoitalic.TTF,
	{true, true, true}:    gomonobolditalic.TTF,
}

func newFontCache() *fontCache {
	return &fontCache{fonts: make(map[fontKey]*truetype.Font)}
}

func (c *fontCache) font(k fontKey) *truetype.Font {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft, ok := c.fonts[k]
	if !ok {
		// The embedded fonts are known to parse.
		ft, _ = truetype.Parse(fontData[k])
		c.fonts[k] = ft
	}
	return ft
}

type faceKey struct {
	fontKey
	size float64
}

// faceSet keeps one face per font variant and pixel size.
type faceSet struct {
	fonts *fontCache
	faces map[faceKey]font.Face
}

func newFaceSet(fonts *fontCache) *faceSet {
	return &faceSet{fonts: fonts, faces: make(map[faceKey]font.Face)}
}

// face returns the face for f at f.Size*scale pixels.
func (s *faceSet) face(f fontSpec, scale float64) font.Face {
	fk := fontKey{f.Mono, f.Bold, f.Italic}
	size := math.Round(f.Size*scale*4) / 4
	if size <= 0 {
		size = defaultFontSize * scale
	}
	key := faceKey{fk, size}
	if face, ok := s.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(s.fonts.font(fk), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	s.faces[key] = face
	return face
}
