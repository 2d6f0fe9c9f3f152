// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndex(t *testing.T) {
	t.Parallel()
	src := `{
  "$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
  "contentVersion": "1.0.0.0",
  "parameters": {
    "siteName": {
      "type": "string"
    }
  },
  "resources": [
    {
      "type": "Microsoft.Web/sites",
      "apiVersion": "2019-08-01",
      "name": "site1",
      "properties": {
        "httpsOnly": false
      }
    }
  ]
}`
	li, err := NewLineIndex([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, 1, li.Line(""))
	assert.Equal(t, 2, li.Line("$schema"))
	assert.Equal(t, 4, li.Line("parameters"))
	assert.Equal(t, 5, li.Line("parameters.siteName"))
	assert.Equal(t, 6, li.Line("parameters.siteName.type"))
	assert.Equal(t, 9, li.Line("resources"))
	assert.Equal(t, 10, li.Line("resources[0]"))
	assert.Equal(t, 11, li.Line("resources[0].type"))
	assert.Equal(t, 13, li.Line("resources[0].name"))
	assert.Equal(t, 14, li.Line("resources[0].properties"))
	assert.Equal(t, 15, li.Line("resources[0].properties.httpsOnly"))

	// unknown paths are 0
	assert.Equal(t, 0, li.Line("resources[1]"))
	assert.Equal(t, 0, li.Line("parameters.other"))
}

func TestLineIndexArraysOnOneLine(t *testing.T) {
	t.Parallel()
	li, err := NewLineIndex([]byte(`{"a":[1,2,{"b":3}],"c":"d"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, li.Line("a"))
	assert.Equal(t, 1, li.Line("a[0]"))
	assert.Equal(t, 1, li.Line("a[1]"))
	assert.Equal(t, 1, li.Line("a[2]"))
	assert.Equal(t, 1, li.Line("a[2].b"))
	assert.Equal(t, 1, li.Line("c"))
	assert.Equal(t, 0, li.Line("a[3]"))
}

func TestLineIndexFirstOccurrenceWins(t *testing.T) {
	t.Parallel()
	src := `{
"x": 1,
"x": 2
}`
	li, err := NewLineIndex([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 2, li.Line("x"))
}

func TestLineIndexInvalidJSON(t *testing.T) {
	t.Parallel()
	_, err := NewLineIndex([]byte(`{"a":`))
	require.Error(t, err)
}

func TestLineIndexNilIsSafe(t *testing.T) {
	t.Parallel()
	var li *LineIndex
	assert.Equal(t, 0, li.Line("anything"))
}

func TestParentPath(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"a.b[3]", "a.b"},
		{"a.b", "a"},
		{"resources[2]", "resources"},
		{"a[1][2]", "a[1]"},
		{"a", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parentPath(tc.in), "parentPath(%q)", tc.in)
	}
}
