package element

import (
	"strconv"

	"github.com/porticus-lab/go-json-canvas/jsonvalue"
)

// ScalarField is the column field that addresses a scalar row directly.
const ScalarField = "0"

// PreviewRows is the number of data rows a table displays before the
// remaining ones are summarized.
const PreviewRows = 5

// Value returns the row's value for this column. Object rows are looked up
// by key and array rows by index; a scalar row is its own value under
// [ScalarField].
func (c Column) Value(row jsonvalue.Value) (jsonvalue.Value, bool) {
	switch r := row.(type) {
	case *jsonvalue.Object:
		return r.Get(c.Field)
	case jsonvalue.Array:
		i, err := strconv.Atoi(c.Field)
		if err != nil || i < 0 || i >= len(r) {
			return nil, false
		}
		return r[i], true
	}
	if c.Field == ScalarField {
		return row, true
	}
	return nil, false
}

// Cell returns the display text of the row's value for this column.
func (c Column) Cell(row jsonvalue.Value) string {
	return jsonvalue.Cell(c.Value(row))
}

// Preview returns the rows a table displays and how many were left out.
func (e Element) Preview() (rows jsonvalue.Array, more int) {
	if len(e.Data) <= PreviewRows {
		return e.Data, 0
	}
	return e.Data[:PreviewRows], len(e.Data) - PreviewRows
}

// MoreRowsLabel is the summary line shown under a truncated table.
func MoreRowsLabel(n int) string {
	return strconv.Itoa(n) + " more rows..."
}
