// Package render draws a canvas surface. [HTML] produces the markup a
// browser rasterizes; [Rasterizer] draws the same layout natively without
// a browser.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/export"
)

// CanvasID is the id of the element that holds the page surface. Browser
// rasterizers capture this node.
const CanvasID = "canvas"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html,body{margin:0;padding:0;background:#fff}
#canvas{position:relative;overflow:hidden;font-family:Arial,Helvetica,sans-serif;font-size:16px;line-height:1.2}
.el{position:absolute;box-sizing:border-box;overflow:hidden}
.text{white-space:pre-wrap;word-wrap:break-word}
.caption{height:24px;box-sizing:border-box;padding:4px;background:#f3f4f6;color:#374151;font-size:12px;font-weight:500;white-space:nowrap;overflow:hidden;text-overflow:ellipsis}
.body{box-sizing:border-box;overflow:hidden}
table{border-collapse:collapse;table-layout:fixed;font-size:14px}
th,td{padding:8px;text-align:left;white-space:nowrap;overflow:hidden;text-overflow:ellipsis;border-bottom:1px solid #e5e7eb}
th{font-weight:600}
td.more{text-align:center;color:#6b7280;font-style:italic}
.image{display:flex;align-items:center;justify-content:center;background:#f3f4f6;border:1px dashed #d1d5db;color:#6b7280}
.image img{width:100%;height:100%;object-fit:contain}
</style>
</head>
<body>
<div id="canvas" style="width:{{.Width}}px;height:{{.Height}}px;background:{{.Background}}">
{{- range .Elements}}
{{- if eq .Kind "text"}}
<div class="el text" data-id="{{.ID}}" style="{{.Box}}{{.CSS}}">{{.Content}}</div>
{{- else if eq .Kind "table"}}
<div class="el table" data-id="{{.ID}}" style="{{.Box}}">
<div class="caption">{{.FieldPath}}</div>
<div class="body" style="{{.BodyBox}}{{.CSS}}">
<table>
<thead><tr>{{range .Columns}}<th style="{{.CSS}}">{{.Header}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
{{- if .More}}
<tr><td class="more" colspan="{{len .Columns}}">{{.More}}</td></tr>
{{- end}}
</tbody>
</table>
</div>
</div>
{{- else}}
<div class="el image" data-id="{{.ID}}" style="{{.Box}}{{.CSS}}">{{if .Src}}<img src="{{.Src}}" alt="{{.Alt}}">{{else}}{{.Alt}}{{end}}</div>
{{- end}}
{{- end}}
</div>
</body>
</html>
`))

type pageView struct {
	Width      int
	Height     int
	Background template.CSS
	Elements   []elementView
}

type columnView struct {
	Header string
	CSS    template.CSS
}

type elementView struct {
	ID        string
	Kind      element.Kind
	Box       template.CSS
	BodyBox   template.CSS
	CSS       template.CSS
	FieldPath string
	Content   string
	Columns   []columnView
	Rows      [][]string
	More      string
	Src       string
	Alt       string
}

// HTML renders s as a standalone page. The surface is a fixed-size
// positioned block with id [CanvasID]; elements are absolutely positioned
// in paint order. Only recognized style properties with plain values reach
// the output.
func HTML(s *export.Surface) (string, error) {
	if s == nil {
		return "", fmt.Errorf("render: nil surface")
	}
	bg, ok := cssDecl(element.StyleBackgroundColor, s.Background)
	if !ok {
		bg = "background-color:#ffffff"
	}
	view := pageView{
		Width:      s.Width,
		Height:     s.Height,
		Background: template.CSS(strings.TrimPrefix(bg, "background-color:")),
	}
	for _, e := range s.Elements {
		view.Elements = append(view.Elements, viewOf(e))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render: executing template: %w", err)
	}
	return buf.String(), nil
}

func viewOf(e element.Element) elementView {
	v := elementView{
		ID:        e.ID,
		Kind:      e.Kind,
		FieldPath: e.FieldPath,
		CSS:       styleCSS(e.Style),
	}
	w, h := layoutSize(e)
	box := fmt.Sprintf("left:%gpx;top:%gpx;", e.X, e.Y)
	if w > 0 {
		box += fmt.Sprintf("width:%gpx;", w)
	}
	if h > 0 {
		box += fmt.Sprintf("height:%gpx;", h)
	}
	v.Box = template.CSS(box)

	switch e.Kind {
	case element.KindText:
		v.Content = e.Content
	case element.KindTable:
		v.BodyBox = template.CSS(fmt.Sprintf("height:%gpx;", max(0, h-captionHeight)))
		for _, c := range e.Columns {
			css := fmt.Sprintf("width:%gpx;", c.Width)
			v.Columns = append(v.Columns, columnView{Header: c.Header, CSS: template.CSS(css) + styleCSS(c.Style)})
		}
		rows, more := e.Preview()
		for _, row := range rows {
			cells := make([]string, len(e.Columns))
			for i, c := range e.Columns {
				cells[i] = c.Cell(row)
			}
			v.Rows = append(v.Rows, cells)
		}
		if more > 0 {
			v.More = element.MoreRowsLabel(more)
		}
	case element.KindImage:
		v.Src = e.Src
		v.Alt = e.Alt
	}
	return v
}

// layoutSize returns the box size an element is laid out with. A zero
// dimension means the renderer sizes it to its content.
func layoutSize(e element.Element) (w, h float64) {
	if e.Width != nil {
		w = *e.Width
	}
	if e.Height != nil {
		h = *e.Height
	}
	if e.Kind == element.KindTable {
		if w <= 0 {
			w = 400
		}
		if h <= 0 {
			h = 200
		}
	}
	return w, h
}

// styleCSS renders the recognized, safe declarations of s in a stable order.
func styleCSS(s element.Style) template.CSS {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		if d, ok := cssDecl(k, s[k]); ok {
			b.WriteString(d)
			b.WriteByte(';')
		}
	}
	return template.CSS(b.String())
}
