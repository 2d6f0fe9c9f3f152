// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpression(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		{"[parameters('name')]", true},
		{"[concat('a', 'b')]", true},
		{"['literal']", true},
		{"[[escaped]", false},
		{"plain string", false},
		{"[unclosed", false},
		{"unopened]", false},
		{"", false},
		{"[]", true},
		{"[", false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, IsExpression(tt.input), "input %q", tt.input)
	}
}

func TestParseLiterals(t *testing.T) {
	t.Parallel()
	n, err := parse("'hello'")
	require.NoError(t, err)
	assert.Equal(t, literalNode{value: "hello"}, n)

	n, err = parse("'it''s'")
	require.NoError(t, err)
	assert.Equal(t, literalNode{value: "it's"}, n)

	n, err = parse("42")
	require.NoError(t, err)
	assert.Equal(t, literalNode{value: float64(42)}, n)

	n, err = parse("-7")
	require.NoError(t, err)
	assert.Equal(t, literalNode{value: float64(-7)}, n)
}

func TestParseCall(t *testing.T) {
	t.Parallel()
	n, err := parse("concat('a', 'b')")
	require.NoError(t, err)
	call, ok := n.(callNode)
	require.True(t, ok)
	assert.Equal(t, "concat", call.name)
	assert.Empty(t, call.namespace)
	require.Len(t, call.args, 2)
	assert.Equal(t, literalNode{value: "a"}, call.args[0])
	assert.Equal(t, literalNode{value: "b"}, call.args[1])
}

func TestParseNamespacedCall(t *testing.T) {
	t.Parallel()
	n, err := parse("contoso.uniqueName('storage')")
	require.NoError(t, err)
	call, ok := n.(callNode)
	require.True(t, ok)
	assert.Equal(t, "contoso", call.namespace)
	assert.Equal(t, "uniqueName", call.name)
	require.Len(t, call.args, 1)
}

func TestParseAccessors(t *testing.T) {
	t.Parallel()
	n, err := parse("resourceGroup().location")
	require.NoError(t, err)
	prop, ok := n.(propertyNode)
	require.True(t, ok)
	assert.Equal(t, "location", prop.name)
	call, ok := prop.base.(callNode)
	require.True(t, ok)
	assert.Equal(t, "resourceGroup", call.name)

	n, err = parse("parameters('subnets')[0].name")
	require.NoError(t, err)
	prop, ok = n.(propertyNode)
	require.True(t, ok)
	assert.Equal(t, "name", prop.name)
	idx, ok := prop.base.(indexNode)
	require.True(t, ok)
	assert.Equal(t, literalNode{value: float64(0)}, idx.index)
}

func TestParseNestedCalls(t *testing.T) {
	t.Parallel()
	n, err := parse("toLower(concat(parameters('prefix'), '-', variables('suffix')))")
	require.NoError(t, err)
	outer, ok := n.(callNode)
	require.True(t, ok)
	assert.Equal(t, "toLower", outer.name)
	require.Len(t, outer.args, 1)
	inner, ok := outer.args[0].(callNode)
	require.True(t, ok)
	assert.Equal(t, "concat", inner.name)
	assert.Len(t, inner.args, 3)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unterminated string", "'unterminated"},
		{"missing close paren", "concat('a'"},
		{"trailing tokens", "1 2"},
		{"leading dot", ".foo"},
		{"empty argument", "concat(,)"},
		{"bare identifier", "concat"},
		{"dangling minus", "-"},
		{"unexpected character", "concat('a') & 'b'"},
		{"unterminated index", "parameters('a')[0"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parse(tt.input)
			require.Error(t, err)
			var perr *ErrParse
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestLexStringEscapes(t *testing.T) {
	t.Parallel()
	l := &lexer{input: "'a''b''c'"}
	tok, err := l.next()
	require.NoError(t, err)
	assert.Equal(t, tokString, tok.kind)
	assert.Equal(t, "a'b'c", tok.text)
	tok, err = l.next()
	require.NoError(t, err)
	assert.Equal(t, tokEOF, tok.kind)
}
