// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import "strings"

// foldGet looks up a key in an object the way ARM does: exact match first,
// then case-insensitive. Ties resolve to the lexicographically smallest key
// so lookups stay deterministic.
func foldGet(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	bestKey := ""
	found := false
	for k := range obj {
		if strings.EqualFold(k, key) && (!found || k < bestKey) {
			bestKey, found = k, true
		}
	}
	if !found {
		return nil, false
	}
	return obj[bestKey], true
}

// foldString returns the string at key, or "" when absent or not a string.
func foldString(obj map[string]any, key string) string {
	v, ok := foldGet(obj, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}
