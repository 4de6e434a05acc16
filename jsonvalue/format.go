package jsonvalue

import (
	"math"
	"strconv"
	"strings"
)

// Kind names the JSON type of a value.
type Kind string

const (
	KindNull   Kind = "null"
	KindBool   Kind = "boolean"
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// KindOf reports the JSON kind of v. Values outside the decoded set report
// as null.
func KindOf(v Value) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case float64, int:
		return KindNumber
	case string:
		return KindString
	case Array, []any:
		return KindArray
	case *Object:
		return KindObject
	default:
		return KindNull
	}
}

// IsScalar reports whether v is null, a boolean, a number or a string.
func IsScalar(v Value) bool {
	switch KindOf(v) {
	case KindArray, KindObject:
		return false
	}
	return true
}

// Stringify converts v to the text a browser produces with String(v) for
// scalars: null becomes "null", booleans "true"/"false" and numbers their
// shortest decimal form. Arrays and objects become compact JSON.
func Stringify(v Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return FormatNumber(t)
	case int:
		return strconv.Itoa(t)
	case string:
		return t
	}
	b, err := Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Cell renders one table cell: a missing value is empty, nested arrays and
// objects (and null) are compact JSON, anything else goes through Stringify.
func Cell(v Value, present bool) string {
	if !present {
		return ""
	}
	switch v.(type) {
	case nil, Array, []any, *Object:
		b, err := Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return Stringify(v)
}

// FormatNumber formats f the way ECMAScript Number#toString does for the
// finite values JSON can carry.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + string(sign) + digits
}

// Preview truncates s to max runes, appending "..." when it was cut.
func Preview(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
