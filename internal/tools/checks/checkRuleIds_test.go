// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/armlint/rules"
)

func loadCatalog(t *testing.T, src string) rules.Catalog {
	t.Helper()
	catalog, err := rules.LoadCatalog([]byte(src))
	require.NoError(t, err)
	return catalog
}

func TestCheckRuleIds(t *testing.T) {
	t.Parallel()
	good := loadCatalog(t, `[
		{"id": "TA-000001", "description": "d", "recommendation": "r", "severity": 1,
		 "evaluation": {"resourceType": "Microsoft.Web/sites", "path": "name", "hasValue": true}}
	]`)
	assert.NoError(t, checkRuleIds(good))

	bad := loadCatalog(t, `[
		{"id": "TA-1", "description": "d", "recommendation": "r", "severity": 1,
		 "evaluation": {"resourceType": "Microsoft.Web/sites", "path": "name", "hasValue": true}},
		{"id": "rule-two", "description": "d", "recommendation": "r", "severity": 1,
		 "evaluation": {"resourceType": "Microsoft.Web/sites", "path": "name", "hasValue": true}}
	]`)
	err := checkRuleIds(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRuleID)
	assert.Contains(t, err.Error(), "`TA-1`")
	assert.Contains(t, err.Error(), "`rule-two`")
}
