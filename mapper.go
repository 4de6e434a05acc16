package jsoncanvas

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
)

// Defaults applied to newly placed elements.
const (
	DefaultTableWidth   = 400.0
	DefaultTableHeight  = 200.0
	DefaultColumnWidth  = 100.0
	ScalarColumnWidth   = 200.0
	ScalarColumnHeader  = "Value"
	elementIDPrefix     = "element-"
	defaultDocumentName = "Untitled document"
)

// IDGenerator returns a fresh element id on every call.
type IDGenerator func() string

// NewElementID is the default generator: "element-" followed by a random
// UUID.
func NewElementID() string {
	return elementIDPrefix + uuid.NewString()
}

// Mapper turns a dropped JSON field into a new element.
type Mapper struct {
	newID IDGenerator
}

// NewMapper returns a Mapper using gen for ids, or [NewElementID] when gen
// is nil.
func NewMapper(gen IDGenerator) *Mapper {
	if gen == nil {
		gen = NewElementID
	}
	return &Mapper{newID: gen}
}

// Map builds the element for value dropped at document position at. Arrays
// become tables; everything else becomes text holding the value's string
// form.
func (m *Mapper) Map(fieldPath string, value jsonvalue.Value, at Point) element.Element {
	e := element.Element{
		ID:        m.newID(),
		X:         at.X,
		Y:         at.Y,
		FieldPath: fieldPath,
	}
	if rows, ok := asArray(value); ok {
		e.Kind = element.KindTable
		e.Data = rows
		e.Columns = columnsFor(rows)
		e.Width = element.Float(DefaultTableWidth)
		e.Height = element.Float(DefaultTableHeight)
		e.Style = element.Style{
			element.StyleBorder:          "1px solid #ccc",
			element.StyleBorderRadius:    "4px",
			element.StyleBackgroundColor: "#ffffff",
		}
		return e
	}
	e.Kind = element.KindText
	e.Content = jsonvalue.Stringify(value)
	e.Style = element.Style{
		element.StyleColor:      "#000000",
		element.StyleFontSize:   "16px",
		element.StyleFontFamily: "Arial",
	}
	return e
}

func asArray(v jsonvalue.Value) (jsonvalue.Array, bool) {
	switch a := v.(type) {
	case jsonvalue.Array:
		if a == nil {
			a = jsonvalue.Array{}
		}
		return a, true
	case []any:
		return jsonvalue.Array(a), true
	}
	return nil, false
}

// columnsFor derives the columns from the first row: one per key of an
// object, one per index of a nested array, else a single column showing
// the row itself. An empty object or array row yields no columns.
func columnsFor(rows jsonvalue.Array) []element.Column {
	fields, ok := rowFields(rows)
	if !ok {
		return []element.Column{{Field: element.ScalarField, Header: ScalarColumnHeader, Width: ScalarColumnWidth}}
	}
	cols := make([]element.Column, len(fields))
	for i, f := range fields {
		cols[i] = element.Column{Field: f, Header: f, Width: DefaultColumnWidth}
	}
	return cols
}

// rowFields lists the keys or indices of the first row. It reports false
// when there is no first row or it is not a container.
func rowFields(rows jsonvalue.Array) ([]string, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	switch first := rows[0].(type) {
	case *jsonvalue.Object:
		if first == nil {
			return nil, false
		}
		return first.Keys(), true
	case jsonvalue.Array:
		fields := make([]string, len(first))
		for i := range first {
			fields[i] = strconv.Itoa(i)
		}
		return fields, true
	}
	return nil, false
}
