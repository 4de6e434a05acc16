package element

import (
	"encoding/json"
	"fmt"
)

// Collection is the ordered set of elements on a canvas. Order is creation
// order and doubles as paint order: later elements draw on top.
//
// A Collection is an immutable value. Every operation returns a new
// collection and leaves the receiver untouched, so a reader holding a
// collection always sees a consistent snapshot. Operations that target an
// absent id return the receiver unchanged.
type Collection struct {
	items []Element
}

// NewCollection builds a collection from elems, keeping the first element
// for any repeated id.
func NewCollection(elems ...Element) Collection {
	return ReplaceAll(elems)
}

// ReplaceAll returns a collection holding exactly elems, in order. Elements
// whose id repeats an earlier one are dropped so ids stay unique.
func ReplaceAll(elems []Element) Collection {
	seen := make(map[string]struct{}, len(elems))
	items := make([]Element, 0, len(elems))
	for _, e := range elems {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		items = append(items, e.Clone())
	}
	return Collection{items: items}
}

// Len returns the number of elements.
func (c Collection) Len() int {
	return len(c.items)
}

// Elements returns a copy of the elements in collection order.
func (c Collection) Elements() []Element {
	out := make([]Element, len(c.items))
	for i, e := range c.items {
		out[i] = e.Clone()
	}
	return out
}

// IDs returns the element ids in collection order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c.items))
	for i, e := range c.items {
		ids[i] = e.ID
	}
	return ids
}

// Index returns the position of id, or -1.
func (c Collection) Index(id string) int {
	for i, e := range c.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the element with the given id.
func (c Collection) Get(id string) (Element, bool) {
	i := c.Index(id)
	if i < 0 {
		return Element{}, false
	}
	return c.items[i].Clone(), true
}

// Contains reports whether an element with id is present.
func (c Collection) Contains(id string) bool {
	return c.Index(id) >= 0
}

// Add appends e. It fails with ErrDuplicateID if e.ID is already present.
func (c Collection) Add(e Element) (Collection, error) {
	if c.Contains(e.ID) {
		return c, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	items := make([]Element, len(c.items), len(c.items)+1)
	copy(items, c.items)
	items = append(items, e.Clone())
	return Collection{items: items}, nil
}

// Update returns a collection where the element with id has p applied.
func (c Collection) Update(id string, p Patch) Collection {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	return c.replaceAt(i, c.items[i].Apply(p))
}

// UpdateColumn patches column index of the table with id. Non-table
// elements, unknown ids and out-of-range indexes leave c unchanged.
func (c Collection) UpdateColumn(id string, index int, p ColumnPatch) Collection {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	e := c.items[i]
	if e.Kind != KindTable || index < 0 || index >= len(e.Columns) {
		return c
	}
	next := e.Clone()
	next.Columns[index] = e.Columns[index].apply(p)
	return c.replaceAt(i, next)
}

// Remove returns a collection without the element with id.
func (c Collection) Remove(id string) Collection {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	items := make([]Element, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Collection{items: items}
}

// PaintOrder returns the elements in the order they are drawn: collection
// order, except that the selected element, if any, is drawn last.
func (c Collection) PaintOrder(selected string) []Element {
	out := make([]Element, 0, len(c.items))
	var top *Element
	for i := range c.items {
		if selected != "" && c.items[i].ID == selected {
			top = &c.items[i]
			continue
		}
		out = append(out, c.items[i].Clone())
	}
	if top != nil {
		out = append(out, top.Clone())
	}
	return out
}

func (c Collection) replaceAt(i int, e Element) Collection {
	items := make([]Element, len(c.items))
	copy(items, c.items)
	items[i] = e
	return Collection{items: items}
}

// MarshalJSON encodes the collection as a JSON array of elements.
func (c Collection) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// UnmarshalJSON decodes a JSON array of elements.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var elems []Element
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	*c = ReplaceAll(elems)
	return nil
}
