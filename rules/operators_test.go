// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Azure/armlint/jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustLeaf parses a single leaf expression from its JSON form.
func mustLeaf(t *testing.T, raw string) *LeafExpression {
	t.Helper()
	expr, err := ParseExpression(json.RawMessage(raw))
	require.NoError(t, err)
	leaf, ok := expr.(*LeafExpression)
	require.True(t, ok, "expected a leaf expression, got %T", expr)
	return leaf
}

func TestOperatorEquals(t *testing.T) {
	t.Parallel()
	leaf := mustLeaf(t, `{"path": "p", "equals": "Enabled"}`)
	assert.True(t, leaf.apply("Enabled"))
	assert.True(t, leaf.apply("enabled"), "string equality is case-insensitive")
	assert.False(t, leaf.apply("Disabled"))
	assert.False(t, leaf.apply(nil))
	assert.False(t, leaf.apply(jsonpath.Missing), "missing equals nothing")

	num := mustLeaf(t, `{"path": "p", "equals": 443}`)
	assert.True(t, num.apply(float64(443)))
	assert.False(t, num.apply("443"), "no string to number coercion")

	deep := mustLeaf(t, `{"path": "p", "equals": {"a": [1, "B"]}}`)
	assert.True(t, deep.apply(map[string]any{"a": []any{float64(1), "b"}}))
	assert.False(t, deep.apply(map[string]any{"a": []any{float64(1)}}))
}

func TestOperatorNotEquals(t *testing.T) {
	t.Parallel()
	leaf := mustLeaf(t, `{"path": "p", "notEquals": "*"}`)
	assert.True(t, leaf.apply("https://contoso.com"))
	assert.False(t, leaf.apply("*"))
	assert.True(t, leaf.apply(jsonpath.Missing), "missing is not equal to anything")
}

func TestOperatorHasValue(t *testing.T) {
	t.Parallel()
	leaf := mustLeaf(t, `{"path": "p", "hasValue": true}`)
	assert.True(t, leaf.apply("x"))
	assert.True(t, leaf.apply(false), "a boolean is a value even when false")
	assert.True(t, leaf.apply(float64(0)))
	assert.False(t, leaf.apply(""))
	assert.False(t, leaf.apply(nil))
	assert.False(t, leaf.apply([]any{}), "empty array has no value")
	assert.False(t, leaf.apply(map[string]any{}), "empty object has no value")
	assert.False(t, leaf.apply(jsonpath.Missing))

	inverse := mustLeaf(t, `{"path": "p", "hasValue": false}`)
	assert.True(t, inverse.apply(""))
	assert.False(t, inverse.apply("x"))
}

func TestOperatorExists(t *testing.T) {
	t.Parallel()
	leaf := mustLeaf(t, `{"path": "p", "exists": true}`)
	assert.True(t, leaf.apply(nil), "an explicit null exists")
	assert.True(t, leaf.apply(""))
	assert.False(t, leaf.apply(jsonpath.Missing))

	inverse := mustLeaf(t, `{"path": "p", "exists": false}`)
	assert.True(t, inverse.apply(jsonpath.Missing))
	assert.False(t, inverse.apply(nil))
}

func TestOperatorIn(t *testing.T) {
	t.Parallel()
	leaf := mustLeaf(t, `{"path": "p", "in": ["TLS1_2", "TLS1_3"]}`)
	assert.True(t, leaf.apply("TLS1_2"))
	assert.True(t, leaf.apply("tls1_3"), "membership uses equals semantics")
	assert.False(t, leaf.apply("TLS1_0"))
	assert.False(t, leaf.apply(jsonpath.Missing))
}

func TestOperatorRegex(t *testing.T) {
	t.Parallel()
	leaf := mustLeaf(t, `{"path": "p", "regex": "^1\\.11\\.[0-8]$"}`)
	assert.True(t, leaf.apply("1.11.8"))
	assert.False(t, leaf.apply("1.14.0"))
	assert.False(t, leaf.apply(nil))
	assert.False(t, leaf.apply(jsonpath.Missing))
	assert.False(t, leaf.apply([]any{"1.11.8"}), "arrays do not stringify")

	substring := mustLeaf(t, `{"path": "p", "regex": "functionapp"}`)
	assert.True(t, substring.apply("functionapp,linux"), "unanchored patterns match substrings")
	assert.False(t, substring.apply("app"))

	number := mustLeaf(t, `{"path": "p", "regex": "^443$"}`)
	assert.True(t, number.apply(float64(443)), "numbers stringify for matching")
}

func TestOperatorComparisons(t *testing.T) {
	t.Parallel()
	cases := []struct {
		op      string
		operand float64
		actual  any
		want    bool
	}{
		{"greater", 90, float64(91), true},
		{"greater", 90, float64(90), false},
		{"greaterOrEquals", 90, float64(90), true},
		{"less", 30, float64(29), true},
		{"less", 30, float64(30), false},
		{"lessOrEquals", 30, float64(30), true},
		{"greater", 90, "91", false},
		{"less", 30, jsonpath.Missing, false},
		{"greaterOrEquals", 0, nil, false},
	}
	for _, tc := range cases {
		leaf := mustLeaf(t, fmt.Sprintf(`{"path": "p", "%s": %v}`, tc.op, tc.operand))
		assert.Equal(t, tc.want, leaf.apply(tc.actual), "%s %v against %v", tc.op, tc.operand, tc.actual)
	}
}

func TestDeepEqualsMixedNumberForms(t *testing.T) {
	t.Parallel()
	assert.True(t, deepEquals(float64(1), json.Number("1")))
	assert.True(t, deepEquals(json.Number("1.5"), float64(1.5)))
	assert.False(t, deepEquals(float64(1), "1"))
}

func TestStringifyScalar(t *testing.T) {
	t.Parallel()
	s, ok := stringifyScalar(true)
	assert.True(t, ok)
	assert.Equal(t, "true", s)

	s, ok = stringifyScalar(float64(1.11))
	assert.True(t, ok)
	assert.Equal(t, "1.11", s)

	_, ok = stringifyScalar(map[string]any{})
	assert.False(t, ok)
}
