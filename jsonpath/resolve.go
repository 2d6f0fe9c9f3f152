// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package jsonpath

import (
	"fmt"
	"strings"
)

// missingValue is the type of the Missing sentinel.
type missingValue struct{}

func (missingValue) String() string {
	return "<missing>"
}

// Missing is the value yielded for a path whose final segment is absent from
// the document. It is distinct from a decoded JSON null, which resolves to an
// untyped nil.
var Missing any = missingValue{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingValue)
	return ok
}

// Match is one result of resolving a path against a document.
type Match struct {
	// Path is the absolute path of the matched value, with wildcard segments
	// replaced by the concrete indexes they matched.
	Path string
	// Value is the matched sub-document, or Missing when the final segment
	// does not exist.
	Value any
}

// IsMissing reports whether the match carries the Missing sentinel.
func (m Match) IsMissing() bool {
	return IsMissing(m.Value)
}

// Resolve walks doc along path and returns every match. A missing
// intermediate segment yields no matches; a missing final segment yields
// exactly one match whose value is Missing. Object member lookup is
// case-insensitive.
func Resolve(doc any, path Path) []Match {
	return resolve(doc, path.segments, "")
}

func resolve(doc any, segs []Segment, at string) []Match {
	if len(segs) == 0 {
		return []Match{{Path: at, Value: doc}}
	}
	seg, rest := segs[0], segs[1:]
	terminal := len(rest) == 0
	switch {
	case seg.Wildcard:
		arr, ok := doc.([]any)
		if !ok {
			if terminal {
				return []Match{{Path: at + "[*]", Value: Missing}}
			}
			return nil
		}
		matches := make([]Match, 0, len(arr))
		for i, elem := range arr {
			matches = append(matches, resolve(elem, rest, fmt.Sprintf("%s[%d]", at, i))...)
		}
		return matches
	case seg.IsIndex:
		indexed := fmt.Sprintf("%s[%d]", at, seg.Index)
		arr, ok := doc.([]any)
		if !ok || seg.Index >= len(arr) {
			if terminal {
				return []Match{{Path: indexed, Value: Missing}}
			}
			return nil
		}
		return resolve(arr[seg.Index], rest, indexed)
	default:
		keyed := Join(at, seg.Key)
		obj, ok := doc.(map[string]any)
		if !ok {
			if terminal {
				return []Match{{Path: keyed, Value: Missing}}
			}
			return nil
		}
		val, found := lookup(obj, seg.Key)
		if !found {
			if terminal {
				return []Match{{Path: keyed, Value: Missing}}
			}
			return nil
		}
		return resolve(val, rest, keyed)
	}
}

// lookup finds key in obj case-insensitively. An exact match wins; otherwise
// the lexicographically smallest folding match is used so that resolution
// stays deterministic when keys differ only by case.
func lookup(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	best := ""
	found := false
	for k := range obj {
		if strings.EqualFold(k, key) && (!found || k < best) {
			best, found = k, true
		}
	}
	if !found {
		return nil, false
	}
	return obj[best], true
}
