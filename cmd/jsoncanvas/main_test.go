package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoncanvas "github.com/porticus-lab/go-json-canvas"
)

func TestParseDrop(t *testing.T) {
	path, at, err := parseDrop("items@40,120.5")
	require.NoError(t, err)
	assert.Equal(t, "items", path)
	assert.Equal(t, jsoncanvas.Point{X: 40, Y: 120.5}, at)

	path, at, err = parseDrop("customer.name")
	require.NoError(t, err)
	assert.Equal(t, "customer.name", path)
	assert.Equal(t, jsoncanvas.Point{}, at, "no position drops at the origin")

	for _, bad := range []string{"a@1", "a@x,2", "a@1,y"} {
		_, _, err := parseDrop(bad)
		assert.Error(t, err, bad)
	}
}
