// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Azure/armlint/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSarif(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var log map[string]any
	require.NoError(t, json.Unmarshal(data, &log))
	return log
}

func TestSarifWriterShape(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sw := NewSarifWriter(&buf, nil)
	require.NoError(t, sw.Write(testResult()))
	require.NoError(t, sw.Close())

	log := decodeSarif(t, buf.Bytes())
	assert.Equal(t, "2.1.0", log["version"])
	assert.Contains(t, log["$schema"], "sarif-schema-2.1.0")

	runs := log["runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)

	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	assert.Equal(t, "armlint", driver["name"])
	ruleDefs := driver["rules"].([]any)
	require.Len(t, ruleDefs, 1)
	rule := ruleDefs[0].(map[string]any)
	assert.Equal(t, "TA-000004", rule["id"])
	assert.Equal(t, "https://example.com/ta-000004", rule["helpUri"])

	results := run["results"].([]any)
	require.Len(t, results, 1)
	result := results[0].(map[string]any)
	assert.Equal(t, "TA-000004", result["ruleId"])
	assert.Equal(t, float64(0), result["ruleIndex"])
	assert.Equal(t, "error", result["level"])

	locations := result["locations"].([]any)
	require.Len(t, locations, 1)
	phys := locations[0].(map[string]any)["physicalLocation"].(map[string]any)
	assert.Equal(t, "testdata/template.json", phys["artifactLocation"].(map[string]any)["uri"])
	assert.Equal(t, float64(14), phys["region"].(map[string]any)["startLine"])
}

func TestSarifWriterRuleDeduplication(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sw := NewSarifWriter(&buf, nil)
	require.NoError(t, sw.Write(testResult()))
	require.NoError(t, sw.Write(testResult()))
	require.NoError(t, sw.Close())

	log := decodeSarif(t, buf.Bytes())
	run := log["runs"].([]any)[0].(map[string]any)
	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	assert.Len(t, driver["rules"].([]any), 1)
	assert.Len(t, run["results"].([]any), 2)
}

func TestSarifWriterIncludePassed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sw := NewSarifWriter(&buf, &Options{IncludePassed: true})
	require.NoError(t, sw.Write(testResult()))
	require.NoError(t, sw.Close())

	log := decodeSarif(t, buf.Bytes())
	run := log["runs"].([]any)[0].(map[string]any)
	results := run["results"].([]any)
	require.Len(t, results, 2)
	pass := results[1].(map[string]any)
	assert.Equal(t, "pass", pass["kind"])
	assert.Equal(t, "none", pass["level"])
}

func TestSarifSeverityLevels(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "error", severityLevel(rules.SeverityHigh))
	assert.Equal(t, "warning", severityLevel(rules.SeverityMedium))
	assert.Equal(t, "note", severityLevel(rules.SeverityLow))
	assert.Equal(t, "note", severityLevel(rules.SeverityInformational))
}
