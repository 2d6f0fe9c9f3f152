// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseParamDefinitions(t *testing.T) {
	t.Parallel()
	doc := map[string]any{
		"parameters": map[string]any{
			"siteName": map[string]any{
				"type":      "string",
				"minLength": float64(10),
				"maxLength": float64(24),
			},
			"env": map[string]any{
				"type":          "string",
				"allowedValues": []any{"dev", "prod"},
			},
			"bogus": "not an object",
		},
	}
	defs := parseParamDefinitions(doc, discardLogger())
	require.Len(t, defs, 2)

	require.Contains(t, defs, "siteName")
	assert.Equal(t, "string", defs["siteName"].typ)
	assert.True(t, defs["siteName"].hasMinLength)
	assert.Equal(t, 10, defs["siteName"].minLength)
	assert.True(t, defs["siteName"].hasMaxLength)
	assert.Equal(t, 24, defs["siteName"].maxLength)

	require.Contains(t, defs, "env")
	assert.Equal(t, []any{"dev", "prod"}, defs["env"].allowedValues)
}

func TestPlaceholderValues(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		def  *paramDefinition
		want any
	}{
		{"allowed values pick the first", &paramDefinition{name: "env", typ: "string", allowedValues: []any{"dev", "prod"}}, "dev"},
		{"int defaults to one", &paramDefinition{name: "count", typ: "int"}, float64(1)},
		{"int honors minValue", &paramDefinition{name: "count", typ: "int", minValue: 5, hasMinValue: true}, float64(5)},
		{"bool is false", &paramDefinition{name: "flag", typ: "bool"}, false},
		{"array is empty", &paramDefinition{name: "items", typ: "array"}, []any{}},
		{"object is empty", &paramDefinition{name: "tags", typ: "object"}, map[string]any{}},
		{"secure object is empty", &paramDefinition{name: "secret", typ: "secureObject"}, map[string]any{}},
		{"location names get a region", &paramDefinition{name: "location", typ: "string"}, "westus2"},
		{"embedded location names too", &paramDefinition{name: "resourceLocation", typ: "string"}, "westus2"},
		{"string is the lowercased name", &paramDefinition{name: "SiteName", typ: "string"}, "sitename"},
		{"minLength pads with x", &paramDefinition{name: "x", typ: "string", minLength: 3, hasMinLength: true}, "xxx"},
		{"maxLength clips", &paramDefinition{name: "verylongname", typ: "string", maxLength: 4, hasMaxLength: true}, "very"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, placeholderValue(tc.def))
		})
	}
}

func TestPlaceholdersAreDeterministic(t *testing.T) {
	t.Parallel()
	def := &paramDefinition{name: "storageAccount", typ: "string", minLength: 20, hasMinLength: true}
	first := placeholderValue(def)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, placeholderValue(def))
	}
	assert.Len(t, first, 20)
}

func TestParseParametersFile(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#",
		"contentVersion": "1.0.0.0",
		"parameters": {
			"siteName": { "value": "mysite" },
			"adminPassword": { "reference": { "keyVault": { "id": "kv" }, "secretName": "pw" } }
		}
	}`)
	supplied, err := parseParametersFile("azuredeploy.parameters.json", data)
	require.NoError(t, err)
	require.Len(t, supplied, 2)
	assert.Equal(t, "mysite", supplied["siteName"].value)
	assert.False(t, supplied["siteName"].isReference)
	assert.True(t, supplied["adminPassword"].isReference)
}

func TestParseParametersFileErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"missing parameters key", `{"contentVersion": "1.0.0.0"}`},
		{"parameters not an object", `{"parameters": []}`},
		{"entry not an object", `{"parameters": {"p": 42}}`},
		{"entry with neither value nor reference", `{"parameters": {"p": {"metadata": {}}}}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseParametersFile("bad.parameters.json", []byte(tc.data))
			require.Error(t, err)
			target := &ErrParameterParse{}
			assert.ErrorAs(t, err, &target)
		})
	}
}

func TestBindParameters(t *testing.T) {
	t.Parallel()
	defs := map[string]*paramDefinition{
		"siteName":    {name: "siteName", typ: "string"},
		"withDefault": {name: "withDefault", typ: "string", defaultValue: "fallback", hasDefault: true},
		"secret":      {name: "secret", typ: "secureString"},
		"plain":       {name: "plain", typ: "string"},
	}
	supplied := map[string]suppliedParameter{
		"SITENAME":    {value: "supplied-site"},
		"withDefault": {value: "supplied-over-default"},
		"secret":      {isReference: true},
		"extra":       {value: float64(7)},
	}
	bound := bindParameters(defs, supplied)

	// supplied beats default beats placeholder, case-insensitively
	assert.Equal(t, "supplied-site", bound["siteName"])
	assert.Equal(t, "supplied-over-default", bound["withDefault"])
	assert.Equal(t, "REF_NOT_AVAIL_secret", bound["secret"])
	assert.Equal(t, "plain", bound["plain"])
	assert.Equal(t, float64(7), bound["extra"])
}
