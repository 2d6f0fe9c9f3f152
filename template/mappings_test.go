// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceMappingsPrefixSubstitution(t *testing.T) {
	t.Parallel()
	m := NewResourceMappings()
	require.NoError(t, m.Add("resources[1]", "resources[0]"))

	assert.Equal(t, "resources[0]", m.ToOriginal("resources[1]"))
	assert.Equal(t, "resources[0].properties.httpsOnly", m.ToOriginal("resources[1].properties.httpsOnly"))

	// unmapped paths come back unchanged
	assert.Equal(t, "resources[5].name", m.ToOriginal("resources[5].name"))

	var nilMappings *ResourceMappings
	assert.Equal(t, "resources[3]", nilMappings.ToOriginal("resources[3]"))
}

func TestResourceMappingsAddConflicts(t *testing.T) {
	t.Parallel()
	m := NewResourceMappings()
	require.NoError(t, m.Add("resources[0]", "resources[0]"))
	require.NoError(t, m.Add("resources[0]", "resources[0]"))

	err := m.Add("resources[0]", "resources[9]")
	require.Error(t, err)
	conflict := &ErrMappingConflict{}
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "resources[0]", conflict.Expanded)
	assert.Equal(t, "resources[9]", conflict.Original)
	assert.Equal(t, "resources[0]", conflict.Existing)
}

func TestResourceMappingsCopyFanOut(t *testing.T) {
	t.Parallel()
	m := NewResourceMappings()
	require.NoError(t, m.Add("resources[0]", "resources[0]"))
	require.NoError(t, m.Add("resources[1]", "resources[0]"))
	require.NoError(t, m.Add("resources[2]", "resources[0]"))

	assert.Equal(t, 3, m.Len())
	snap := m.Snapshot()
	assert.Equal(t, map[string]string{
		"resources[0]": "resources[0]",
		"resources[1]": "resources[0]",
		"resources[2]": "resources[0]",
	}, snap)
}

func TestResourceMappingsDerivedPermutations(t *testing.T) {
	t.Parallel()
	m := NewResourceMappings()
	require.NoError(t, m.Add("resources[0]", "resources[0]"))
	require.NoError(t, m.Add("resources[1]", "resources[0]"))

	// a mapping under one copy instance projects onto the other instances
	require.NoError(t, m.Add("resources[0].resources[0]", "resources[0].resources[0]"))
	assert.Equal(t, "resources[0].resources[0]", m.ToOriginal("resources[1].resources[0]"))
	assert.Equal(t, "resources[0].resources[0].properties.x", m.ToOriginal("resources[1].resources[0].properties.x"))

	// a later direct mapping for a derived path replaces it without conflict
	require.NoError(t, m.Add("resources[1].resources[0]", "resources[0].resources[0]"))

	// but conflicting direct mappings still fail
	err := m.Add("resources[1].resources[0]", "resources[2]")
	require.Error(t, err)
	conflict := &ErrMappingConflict{}
	require.ErrorAs(t, err, &conflict)
}

func TestResourceMappingsFreeze(t *testing.T) {
	t.Parallel()
	m := NewResourceMappings()
	require.NoError(t, m.Add("resources[0]", "resources[0]"))
	m.Freeze()
	require.Error(t, m.Add("resources[1]", "resources[0]"))
	assert.Equal(t, "resources[0]", m.ToOriginal("resources[0]"))
}
