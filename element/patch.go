package element

import "github.com/porticus-lab/go-json-canvas/jsonvalue"

// Patch is a partial update. Nil fields are left alone. Style is merged one
// level deep; every other field replaces the current value. Variant fields
// that do not belong to the element's kind are ignored, as are non-finite
// coordinates and sizes.
type Patch struct {
	X, Y          *float64
	Width, Height *float64
	Style         Style
	FieldPath     *string

	Content *string // text

	Data    *jsonvalue.Array // table
	Columns []Column

	Src, Alt *string // image
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Style == nil && p.FieldPath == nil && p.Content == nil &&
		p.Data == nil && p.Columns == nil && p.Src == nil && p.Alt == nil
}

// Apply returns a copy of e with p applied.
func (e Element) Apply(p Patch) Element {
	out := e.Clone()
	setFinite(&out.X, p.X)
	setFinite(&out.Y, p.Y)
	if p.Width != nil && finite(*p.Width) {
		out.Width = Float(*p.Width)
	}
	if p.Height != nil && finite(*p.Height) {
		out.Height = Float(*p.Height)
	}
	if p.Style != nil {
		out.Style = out.Style.Merge(p.Style)
	}
	if p.FieldPath != nil {
		out.FieldPath = *p.FieldPath
	}
	switch out.Kind {
	case KindText:
		if p.Content != nil {
			out.Content = *p.Content
		}
	case KindTable:
		if p.Data != nil {
			out.Data = *p.Data
		}
		if p.Columns != nil {
			out.Columns = make([]Column, len(p.Columns))
			copy(out.Columns, p.Columns)
		}
	case KindImage:
		if p.Src != nil {
			out.Src = *p.Src
		}
		if p.Alt != nil {
			out.Alt = *p.Alt
		}
	}
	return out
}

func setFinite(dst *float64, v *float64) {
	if v != nil && finite(*v) {
		*dst = *v
	}
}

// ColumnPatch is a partial update of one table column. The column's field is
// fixed at creation and cannot be patched. A non-nil Style replaces the
// column style wholesale.
type ColumnPatch struct {
	Header *string
	Width  *float64
	Style  Style
}

func (c Column) apply(p ColumnPatch) Column {
	out := c
	out.Style = c.Style.Clone()
	if p.Header != nil {
		out.Header = *p.Header
	}
	if p.Width != nil && finite(*p.Width) {
		out.Width = *p.Width
	}
	if p.Style != nil {
		out.Style = p.Style.Clone()
	}
	return out
}
