package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"customer":{"name":"Ada Lovelace","vip":true},"orders":[{"id":1,"total":9.5},{"id":2,"total":20}]}`

func TestFields_DocumentOrder(t *testing.T) {
	root, err := Parse([]byte(sample))
	require.NoError(t, err)

	var paths []string
	for _, f := range Fields(root, "") {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"", "customer", "customer.name", "customer.vip",
		"orders", "orders.0", "orders.0.id", "orders.0.total",
		"orders.1", "orders.1.id", "orders.1.total",
	}, paths)
}

func TestFields_Metadata(t *testing.T) {
	root, err := Parse([]byte(sample))
	require.NoError(t, err)
	fields := Fields(root, "")

	assert.Equal(t, "root", fields[0].Name)
	assert.False(t, fields[0].Draggable())

	name := fields[2]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, 2, name.Depth)
	assert.Equal(t, "Ada Lovelace", name.Preview)

	orders := fields[4]
	assert.Equal(t, KindArray, orders.Kind)
	assert.Equal(t, 2, orders.Children)
	assert.True(t, orders.Draggable())
}

func TestFields_Filter(t *testing.T) {
	root, err := Parse([]byte(sample))
	require.NoError(t, err)

	var paths []string
	for _, f := range Fields(root, "TOTAL") {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"orders.0.total", "orders.1.total"}, paths)
}

func TestFields_PreviewTruncates(t *testing.T) {
	fields := Fields("a fairly long string value", "")
	require.Len(t, fields, 1)
	assert.Equal(t, "a fairly long s...", fields[0].Preview)
}

func TestLookup(t *testing.T) {
	root, err := Parse([]byte(sample))
	require.NoError(t, err)

	v, ok := Lookup(root, "orders.1.total")
	require.True(t, ok)
	assert.Equal(t, 20.0, v)

	v, ok = Lookup(root, "orders[0].id")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = Lookup(root, "orders.9")
	assert.False(t, ok)
	_, ok = Lookup(root, "customer.name.first")
	assert.False(t, ok)
}
