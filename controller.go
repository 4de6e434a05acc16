package jsoncanvas

import (
	"math"
	"sync"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
)

// Minimum table size a resize gesture can produce.
const (
	MinResizeWidth  = 100.0
	MinResizeHeight = 50.0
)

// Gesture identifies the pointer gesture in progress.
type Gesture int

const (
	GestureIdle Gesture = iota
	GestureMove
	GestureResize
)

func (g Gesture) String() string {
	switch g {
	case GestureMove:
		return "move"
	case GestureResize:
		return "resize"
	}
	return "idle"
}

// session is the ephemeral state of one move or resize gesture. It never
// reaches the document until Release commits it.
type session struct {
	kind Gesture
	id   string

	anchor Point // move: pointer minus element position at start, document units
	start  Point // resize: pointer at start, viewport units
	startW float64
	startH float64

	pos  Point
	w, h float64
}

// Controller turns pointer input into committed edits. All positions it
// receives are viewport coordinates; it converts them with the editor's
// current [Viewport] before anything is stored.
//
// At most one gesture is active. Starting another press abandons a gesture
// whose release was never seen.
type Controller struct {
	ed *Editor

	mu       sync.Mutex
	cur      *session
	dropOver bool
}

// Gesture returns the gesture in progress.
func (c *Controller) Gesture() Gesture {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return GestureIdle
	}
	return c.cur.kind
}

// PressElement handles a pointer-down on the body of element id. An
// unselected element is only selected; pressing the selected element
// starts a move. It reports whether a move started.
func (c *Controller) PressElement(id string, p Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = nil

	e, ok := c.ed.Element(id)
	if !ok {
		return false
	}
	if c.ed.SelectedID() != id {
		c.ed.Select(id)
		return false
	}
	d := c.ed.Viewport().ToDocument(p)
	c.cur = &session{
		kind:   GestureMove,
		id:     id,
		anchor: Point{X: d.X - e.X, Y: d.Y - e.Y},
		pos:    Point{X: e.X, Y: e.Y},
	}
	return true
}

// PressHandle handles a pointer-down on the resize handle of element id.
// Only tables resize; like the body, an unselected table is only selected.
// It reports whether a resize started.
func (c *Controller) PressHandle(id string, p Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = nil

	e, ok := c.ed.Element(id)
	if !ok || e.Kind != element.KindTable {
		return false
	}
	if c.ed.SelectedID() != id {
		c.ed.Select(id)
		return false
	}
	w, h := DefaultTableWidth, DefaultTableHeight
	if e.Width != nil {
		w = *e.Width
	}
	if e.Height != nil {
		h = *e.Height
	}
	c.cur = &session{
		kind:   GestureResize,
		id:     id,
		start:  p,
		startW: w,
		startH: h,
		pos:    Point{X: e.X, Y: e.Y},
		w:      w,
		h:      h,
	}
	return true
}

// PressCanvas handles a pointer-down on empty canvas: the selection is
// cleared.
func (c *Controller) PressCanvas() {
	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
	c.ed.ClearSelection()
}

// Move updates the transient position or size of the active gesture.
func (c *Controller) Move(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track(p)
}

func (c *Controller) track(p Point) {
	s := c.cur
	if s == nil {
		return
	}
	view := c.ed.Viewport()
	switch s.kind {
	case GestureMove:
		d := view.ToDocument(p)
		next := Point{X: d.X - s.anchor.X, Y: d.Y - s.anchor.Y}
		if finite(next.X) && finite(next.Y) {
			s.pos = next
		}
	case GestureResize:
		dx, dy := view.ToDocumentDelta(p.X-s.start.X, p.Y-s.start.Y)
		w := max(MinResizeWidth, s.startW+dx)
		h := max(MinResizeHeight, s.startH+dy)
		if finite(w) && finite(h) {
			s.w, s.h = w, h
		}
	}
}

// Release ends the active gesture at p and commits its result. A gesture
// whose element was deleted meanwhile commits nothing.
func (c *Controller) Release(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.cur
	if s == nil {
		return
	}
	c.track(p)
	c.cur = nil

	switch s.kind {
	case GestureMove:
		c.ed.SetPosition(s.id, s.pos.X, s.pos.Y)
	case GestureResize:
		c.ed.SetSize(s.id, s.w, s.h)
	}
}

// Cancel abandons the active gesture without committing it.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
}

// Preview returns the element under the active gesture with its transient
// position and size applied, for live drawing.
func (c *Controller) Preview() (element.Element, bool) {
	c.mu.Lock()
	s := c.cur
	var snap session
	if s != nil {
		snap = *s
	}
	c.mu.Unlock()
	if s == nil {
		return element.Element{}, false
	}
	e, ok := c.ed.Element(snap.id)
	if !ok {
		return element.Element{}, false
	}
	p := element.Patch{X: &snap.pos.X, Y: &snap.pos.Y}
	if snap.kind == GestureResize {
		p.Width, p.Height = &snap.w, &snap.h
	}
	return e.Apply(p), true
}

// DragEnter marks the canvas as a valid drop target while a field is
// dragged over it.
func (c *Controller) DragEnter() {
	c.mu.Lock()
	c.dropOver = true
	c.mu.Unlock()
}

// DragLeave clears the drop-target highlight.
func (c *Controller) DragLeave() {
	c.mu.Lock()
	c.dropOver = false
	c.mu.Unlock()
}

// DropTarget reports whether a field is hovering over the canvas.
func (c *Controller) DropTarget() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropOver
}

// Drop places a field dragged from the explorer at viewport position p.
// The new element is appended and selected.
func (c *Controller) Drop(fieldPath string, value jsonvalue.Value, p Point) (element.Element, error) {
	c.mu.Lock()
	c.dropOver = false
	c.cur = nil
	c.mu.Unlock()
	return c.ed.Place(fieldPath, value, c.ed.Viewport().ToDocument(p))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
