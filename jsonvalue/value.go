// Package jsonvalue holds decoded JSON documents with object key order
// preserved, plus the helpers the editor needs around them: file ingestion,
// scalar string conversion and the field listing shown by the explorer.
//
// A decoded [Value] is one of:
//
//	nil      JSON null
//	bool     JSON true / false
//	float64  JSON number
//	string   JSON string
//	Array    JSON array
//	*Object  JSON object, keys kept in document order
package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// Value is any decoded JSON value. See the package documentation for the
// set of dynamic types it may hold.
type Value = any

// Array is a decoded JSON array.
type Array []Value

// Object is a decoded JSON object that remembers the order in which its keys
// appeared. The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores v under key. A new key is appended to the key order; an existing
// key keeps its position and gets the new value.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the object's keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON encodes the object with its keys in document order.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("jsonvalue: expected object, got %s", KindOf(v))
	}
	*o = *obj
	return nil
}

// UnmarshalJSON decodes a JSON array whose nested objects keep key order.
func (a *Array) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	switch arr := v.(type) {
	case Array:
		*a = arr
	case nil:
		*a = nil
	default:
		return fmt.Errorf("jsonvalue: expected array, got %s", KindOf(v))
	}
	return nil
}

// Parse decodes exactly one JSON value from data. Duplicate object keys are
// accepted and the last occurrence wins, as browsers do.
func Parse(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("jsonvalue: %w", err)
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("jsonvalue: unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '"':
		return tok.String(), nil
	case '0':
		return tok.Float(), nil
	case '{':
		obj := NewObject()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// The token is voided by the next decoder call.
			key := name.String()
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := Array{}
		for dec.PeekKind() != ']' {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok.Kind())
	}
}

// Marshal encodes v as compact JSON. Object keys are written in document
// order and HTML characters are not escaped.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := encodeValue(enc, v); err != nil {
		return nil, fmt.Errorf("jsonvalue: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeValue(enc *jsontext.Encoder, v Value) error {
	switch t := v.(type) {
	case nil:
		return enc.WriteToken(jsontext.Null)
	case bool:
		return enc.WriteToken(jsontext.Bool(t))
	case float64:
		return enc.WriteToken(jsontext.Float(t))
	case int:
		return enc.WriteToken(jsontext.Int(int64(t)))
	case string:
		return enc.WriteToken(jsontext.String(t))
	case Array:
		return encodeArray(enc, t)
	case []any:
		return encodeArray(enc, t)
	case *Object:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		if t != nil {
			for _, k := range t.keys {
				if err := enc.WriteToken(jsontext.String(k)); err != nil {
					return err
				}
				if err := encodeValue(enc, t.values[k]); err != nil {
					return err
				}
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

func encodeArray(enc *jsontext.Encoder, items []Value) error {
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, item := range items {
		if err := encodeValue(enc, item); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndArray)
}
