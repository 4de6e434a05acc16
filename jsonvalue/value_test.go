package jsonvalue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":[1,"x"]}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	inner, _ := obj.Get("alpha")
	assert.Equal(t, []string{"b", "a"}, inner.(*Object).Keys())

	mid, _ := obj.Get("mid")
	assert.Equal(t, Array{1.0, "x"}, mid)
}

func TestParse_Objects(t *testing.T) {
	v, err := Parse([]byte(`{"a":1}`))
	require.NoError(t, err)
	a, ok := v.(*Object).Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, a)

	v, err = Parse([]byte(`{"a":{"b":{"c":"deep"}}}`))
	require.NoError(t, err)
	got, ok := Lookup(v, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, "deep", got)

	v, err = Parse([]byte(`[{}, {"a":1}, {"b":[{"c":2}]}]`))
	require.NoError(t, err)
	arr := v.(Array)
	require.Len(t, arr, 3)
	assert.Equal(t, 0, arr[0].(*Object).Len())
	assert.Equal(t, []string{"a"}, arr[1].(*Object).Keys())
	got, ok = Lookup(v, "2.b.0.c")
	require.True(t, ok)
	assert.Equal(t, 2.0, got)
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	v, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)
	obj := v.(*Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	a, _ := obj.Get("a")
	assert.Equal(t, 3.0, a)
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":}`, `[1,2`, `{} {}`, `nope`} {
		_, err := Parse([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	src := `{"name":"<b>","n":1.5,"list":[{"y":1,"x":2}],"ok":false,"none":null}`
	v, err := Parse([]byte(src))
	require.NoError(t, err)
	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestArray_UnmarshalThroughEncodingJSON(t *testing.T) {
	var holder struct {
		Rows Array `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"rows":[{"b":1,"a":2}]}`), &holder))
	require.Len(t, holder.Rows, 1)
	assert.Equal(t, []string{"b", "a"}, holder.Rows[0].(*Object).Keys())

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":[{"b":1,"a":2}]}`, string(out))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{42.0, "42"},
		{-0.5, "-0.5"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012.0, "123456789012"},
		{"hola", "hola"},
		{Array{1.0, 2.0}, "[1,2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in), "Stringify(%v)", tt.in)
	}
}

func TestCell(t *testing.T) {
	obj := NewObject()
	obj.Set("k", "v")
	assert.Equal(t, "", Cell(nil, false))
	assert.Equal(t, "null", Cell(nil, true))
	assert.Equal(t, `{"k":"v"}`, Cell(obj, true))
	assert.Equal(t, "7", Cell(7.0, true))
}

func TestLoad_RejectsExtension(t *testing.T) {
	_, err := Load("data.txt", []byte(`{}`))
	assert.True(t, errors.Is(err, ErrInvalidInputFile))
}

func TestLoad_RejectsBadContent(t *testing.T) {
	_, err := Load("data.json", []byte(`{broken`))
	assert.True(t, errors.Is(err, ErrInvalidInputFile))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"orders":[{"id":1}]}`), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "orders.json", doc.Name)
	assert.EqualValues(t, 21, doc.Size)
	assert.Equal(t, KindObject, KindOf(doc.Root))
}
