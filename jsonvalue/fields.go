package jsonvalue

import (
	"strconv"
	"strings"
)

// PreviewLength is how many characters of a scalar the explorer shows.
const PreviewLength = 15

// Field is one node of the explorer tree.
type Field struct {
	Path     string // dotted path from the root, e.g. "orders.0.total"
	Name     string // last path segment, "root" for the document itself
	Depth    int
	Kind     Kind
	Value    Value
	Children int    // number of keys or items for containers
	Preview  string // truncated display text for scalars
}

// Draggable reports whether the field can be dropped onto the canvas.
// Scalars become text elements, arrays become tables.
func (f Field) Draggable() bool {
	return f.Kind != KindObject
}

// Fields walks root depth-first and lists every node in document order.
// When filter is non-empty only draggable fields whose path contains it
// (case-insensitively) are kept; containers are still descended.
func Fields(root Value, filter string) []Field {
	var out []Field
	needle := strings.ToLower(filter)
	var walk func(v Value, path string, depth int)
	walk = func(v Value, path string, depth int) {
		f := Field{
			Path:  path,
			Name:  lastSegment(path),
			Depth: depth,
			Kind:  KindOf(v),
			Value: v,
		}
		switch t := v.(type) {
		case *Object:
			f.Children = t.Len()
		case Array:
			f.Children = len(t)
		default:
			f.Preview = Preview(Stringify(v), PreviewLength)
		}
		if needle == "" || (f.Draggable() && strings.Contains(strings.ToLower(path), needle)) {
			out = append(out, f)
		}
		switch t := v.(type) {
		case *Object:
			for _, k := range t.keys {
				walk(t.values[k], join(path, k), depth+1)
			}
		case Array:
			for i, item := range t {
				walk(item, join(path, strconv.Itoa(i)), depth+1)
			}
		}
	}
	walk(root, "", 0)
	return out
}

// Lookup resolves a dotted path produced by Fields. Bracket indices
// ("items[2].name") are accepted as well.
func Lookup(root Value, path string) (Value, bool) {
	if path == "" {
		return root, true
	}
	cur := root
	for _, seg := range splitPath(path) {
		switch t := cur.(type) {
		case *Object:
			v, ok := t.Get(seg)
			if !ok {
				return nil, false
			}
			cur = v
		case Array:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func splitPath(path string) []string {
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	var segs []string
	for _, s := range strings.Split(path, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func lastSegment(path string) string {
	if path == "" {
		return "root"
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
