// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimple(t *testing.T) {
	t.Parallel()
	p, err := Parse("properties.httpsOnly")
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Key: "properties"}, {Key: "httpsOnly"}}, p.Segments())
	assert.Equal(t, "properties.httpsOnly", p.String())
	assert.False(t, p.HasWildcard())
}

func TestParseIndexAndWildcard(t *testing.T) {
	t.Parallel()
	p, err := Parse("properties.siteConfig.cors.allowedOrigins[0]")
	require.NoError(t, err)
	segs := p.Segments()
	require.Len(t, segs, 5)
	assert.Equal(t, Segment{Index: 0, IsIndex: true}, segs[4])

	p, err = Parse("resources[*].properties")
	require.NoError(t, err)
	segs = p.Segments()
	require.Len(t, segs, 3)
	assert.True(t, segs[1].Wildcard)
	assert.True(t, p.HasWildcard())
}

func TestParseEmptyIsRoot(t *testing.T) {
	t.Parallel()
	p, err := Parse("")
	require.NoError(t, err)
	assert.True(t, p.IsRoot())
	assert.Empty(t, p.Segments())
}

func TestParseLeadingIndex(t *testing.T) {
	t.Parallel()
	p, err := Parse("[2].name")
	require.NoError(t, err)
	segs := p.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Index: 2, IsIndex: true}, segs[0])
	assert.Equal(t, Segment{Key: "name"}, segs[1])
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	cases := []string{
		".leading",
		"a..b",
		"a.[0]",
		"a[",
		"a[x]",
		"a[-1]",
		"a[0]b",
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		assert.Error(t, err, "expected %q to fail", raw)
		target := new(ErrInvalidPath)
		assert.ErrorAs(t, err, &target)
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustParse(".bad") })
	assert.NotPanics(t, func() { MustParse("fine.path[*]") })
}

func TestJoin(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "resources[0].properties.httpsOnly", Join("resources[0]", "properties.httpsOnly"))
	assert.Equal(t, "resources[0][1]", Join("resources[0]", "[1]"))
	assert.Equal(t, "properties", Join("", "properties"))
	assert.Equal(t, "resources[0]", Join("resources[0]", ""))
}
