package jsoncanvas

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
)

func seqIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("element-%d", n)
	}
}

func parse(t *testing.T, s string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestMapper_ArrayOfObjects(t *testing.T) {
	m := NewMapper(seqIDs())
	e := m.Map("rows", parse(t, `[{"a":1,"b":2},{"a":3,"b":4}]`), Point{X: 5, Y: 6})

	assert.Equal(t, element.KindTable, e.Kind)
	assert.Equal(t, "element-1", e.ID)
	assert.Equal(t, "rows", e.FieldPath)
	assert.Equal(t, 5.0, e.X)
	assert.Equal(t, 6.0, e.Y)
	assert.Equal(t, []element.Column{
		{Field: "a", Header: "a", Width: 100},
		{Field: "b", Header: "b", Width: 100},
	}, e.Columns)
	assert.Len(t, e.Data, 2)
	require.NotNil(t, e.Width)
	require.NotNil(t, e.Height)
	assert.Equal(t, 400.0, *e.Width)
	assert.Equal(t, 200.0, *e.Height)
	assert.Equal(t, "1px solid #ccc", e.Style[element.StyleBorder])
	assert.Equal(t, "4px", e.Style[element.StyleBorderRadius])
	assert.Equal(t, "#ffffff", e.Style[element.StyleBackgroundColor])
}

func TestMapper_ScalarArray(t *testing.T) {
	e := NewMapper(nil).Map("n", parse(t, `[10,20,30]`), Point{})
	assert.Equal(t, element.KindTable, e.Kind)
	require.Len(t, e.Columns, 1)
	assert.Equal(t, element.Column{Field: "0", Header: "Value", Width: 200}, e.Columns[0])
	assert.Len(t, e.Data, 3)
	assert.Equal(t, "20", e.Columns[0].Cell(e.Data[1]))
	assert.True(t, strings.HasPrefix(e.ID, "element-"))
}

func TestMapper_EmptyAndNullFirst(t *testing.T) {
	m := NewMapper(seqIDs())

	e := m.Map("empty", parse(t, `[]`), Point{})
	assert.Equal(t, element.KindTable, e.Kind)
	assert.Equal(t, []element.Column{{Field: "0", Header: "Value", Width: 200}}, e.Columns)
	assert.Empty(t, e.Data)

	e = m.Map("nulls", parse(t, `[null,{"a":1}]`), Point{})
	assert.Equal(t, []element.Column{{Field: "0", Header: "Value", Width: 200}}, e.Columns)
}

func TestMapper_EmptyFirstRow(t *testing.T) {
	m := NewMapper(seqIDs())

	e := m.Map("rows", parse(t, `[{}, {"a":1}]`), Point{})
	assert.Equal(t, element.KindTable, e.Kind)
	assert.NotNil(t, e.Columns)
	assert.Empty(t, e.Columns, "columns come from the first row only")
	assert.Len(t, e.Data, 2)

	e = m.Map("grid", parse(t, `[[], ["x"]]`), Point{})
	assert.Empty(t, e.Columns)
}

func TestMapper_NestedArrays(t *testing.T) {
	e := NewMapper(nil).Map("grid", parse(t, `[["x","y"],["z"]]`), Point{})
	require.Len(t, e.Columns, 2)
	assert.Equal(t, "1", e.Columns[1].Field)
	assert.Equal(t, "y", e.Columns[1].Cell(e.Data[0]))
	assert.Equal(t, "", e.Columns[1].Cell(e.Data[1]), "short rows render empty")
}

func TestMapper_Scalars(t *testing.T) {
	m := NewMapper(seqIDs())
	tests := []struct {
		in   string
		want string
	}{
		{`"Ada"`, "Ada"},
		{`42`, "42"},
		{`1.5`, "1.5"},
		{`true`, "true"},
		{`null`, "null"},
		{`{"k":1}`, `{"k":1}`},
	}
	for _, tt := range tests {
		e := m.Map("f", parse(t, tt.in), Point{X: 1, Y: 2})
		assert.Equal(t, element.KindText, e.Kind, tt.in)
		assert.Equal(t, tt.want, e.Content, tt.in)
		assert.Nil(t, e.Width, "text sizes itself")
		assert.Equal(t, element.Style{"color": "#000000", "fontSize": "16px", "fontFamily": "Arial"}, e.Style)
	}
}

func TestNewElementID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewElementID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
