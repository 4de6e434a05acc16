// Package element is the editor's document model: the placed elements of a
// canvas and the immutable ordered collection that holds them.
//
// An [Element] is a closed tagged variant. Its [Kind] is fixed at creation
// and is the only thing code dispatches on; the variant payload fields
// (Content for text, Data and Columns for tables, Src and Alt for images)
// are meaningful only for their kind.
package element

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/porticus-lab/go-json-canvas/jsonvalue"
)

// Sentinel errors returned by the package.
var (
	// ErrDuplicateID is returned by Collection.Add when an element with the
	// same id is already present. Ids are generated unique, so this signals a
	// broken invariant rather than a user mistake.
	ErrDuplicateID = errors.New("element: duplicate element id")

	// ErrUnknownKind is returned when decoding an element with an
	// unrecognized type discriminant.
	ErrUnknownKind = errors.New("element: unknown element type")
)

// Kind is the element discriminant.
type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
	KindImage Kind = "image"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindTable, KindImage:
		return true
	}
	return false
}

// Column describes one displayed table column.
type Column struct {
	Field  string  `json:"field"`
	Header string  `json:"header"`
	Width  float64 `json:"width"`
	Style  Style   `json:"style,omitempty"`
}

// Element is one placed visual unit on the canvas. Positions and sizes are
// in document coordinates: unscaled pixels relative to the page's top-left
// corner.
type Element struct {
	ID        string
	Kind      Kind
	X, Y      float64
	Width     *float64 // nil means intrinsic size (text only)
	Height    *float64
	Style     Style
	FieldPath string

	// KindText
	Content string

	// KindTable
	Data    jsonvalue.Array
	Columns []Column

	// KindImage
	Src string
	Alt string
}

// Size returns the element's explicit size. ok is false when either
// dimension is intrinsic.
func (e Element) Size() (w, h float64, ok bool) {
	if e.Width == nil || e.Height == nil {
		return 0, 0, false
	}
	return *e.Width, *e.Height, true
}

// Clone returns a copy that shares no mutable maps or slices with e, except
// the table data, which is never modified in place.
func (e Element) Clone() Element {
	out := e
	out.Style = e.Style.Clone()
	if e.Width != nil {
		out.Width = Float(*e.Width)
	}
	if e.Height != nil {
		out.Height = Float(*e.Height)
	}
	if e.Columns != nil {
		out.Columns = make([]Column, len(e.Columns))
		for i, c := range e.Columns {
			c.Style = c.Style.Clone()
			out.Columns[i] = c
		}
	}
	return out
}

// Finite reports whether every coordinate and size of e is a finite number.
func (e Element) Finite() bool {
	if !finite(e.X) || !finite(e.Y) {
		return false
	}
	if e.Width != nil && !finite(*e.Width) {
		return false
	}
	if e.Height != nil && !finite(*e.Height) {
		return false
	}
	return true
}

// Float returns a pointer to v, for the optional size fields.
func Float(v float64) *float64 {
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// wireElement is the JSON layout shared with browser-side templates.
type wireElement struct {
	ID        string           `json:"id"`
	Type      Kind             `json:"type"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`
	Width     *float64         `json:"width,omitempty"`
	Height    *float64         `json:"height,omitempty"`
	Style     Style            `json:"style"`
	FieldPath string           `json:"fieldPath,omitempty"`
	Content   *string          `json:"content,omitempty"`
	Data      *jsonvalue.Array `json:"data,omitempty"`
	Columns   *[]Column        `json:"columns,omitempty"`
	Src       *string          `json:"src,omitempty"`
	Alt       *string          `json:"alt,omitempty"`
}

// MarshalJSON writes the common fields plus the payload of e's kind only.
func (e Element) MarshalJSON() ([]byte, error) {
	w := wireElement{
		ID:        e.ID,
		Type:      e.Kind,
		X:         e.X,
		Y:         e.Y,
		Width:     e.Width,
		Height:    e.Height,
		Style:     e.Style,
		FieldPath: e.FieldPath,
	}
	switch e.Kind {
	case KindText:
		w.Content = &e.Content
	case KindTable:
		w.Data = &e.Data
		w.Columns = &e.Columns
	case KindImage:
		w.Src = &e.Src
		if e.Alt != "" {
			w.Alt = &e.Alt
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes an element and rejects unknown kinds.
func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}
	out := Element{
		ID:        w.ID,
		Kind:      w.Type,
		X:         w.X,
		Y:         w.Y,
		Width:     w.Width,
		Height:    w.Height,
		Style:     w.Style,
		FieldPath: w.FieldPath,
	}
	switch w.Type {
	case KindText:
		if w.Content != nil {
			out.Content = *w.Content
		}
	case KindTable:
		if w.Data != nil {
			out.Data = *w.Data
		}
		if w.Columns != nil {
			out.Columns = *w.Columns
		}
	case KindImage:
		if w.Src != nil {
			out.Src = *w.Src
		}
		if w.Alt != nil {
			out.Alt = *w.Alt
		}
	}
	*e = out
	return nil
}
