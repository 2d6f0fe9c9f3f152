// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import "fmt"

// ResourceMappings records, for each path in the expanded template, the
// originating path in the source template. The relation is many-to-one:
// every copy instance maps back to its prototype. Mappings are build-only
// during processing and frozen before rule evaluation.
type ResourceMappings struct {
	expandedToOriginal map[string]string
	originalToExpanded map[string][]string
	derived            map[string]bool
	frozen             bool
}

// NewResourceMappings creates an empty mapping set.
func NewResourceMappings() *ResourceMappings {
	return &ResourceMappings{
		expandedToOriginal: make(map[string]string),
		originalToExpanded: make(map[string][]string),
		derived:            make(map[string]bool),
	}
}

// Add records that expanded originates at original. Re-adding the same pair
// is a no-op; adding a different original for a known expanded path is a
// conflict. Adding also derives the equivalent mappings through every copy
// of the expanded path's ancestors, so that paths inside copy subtrees
// resolve without bespoke lookups.
func (m *ResourceMappings) Add(expanded, original string) error {
	if m.frozen {
		return fmt.Errorf("ResourceMappings.Add: mappings are frozen")
	}
	if existing, ok := m.expandedToOriginal[expanded]; ok {
		if !m.derived[expanded] {
			if existing == original {
				return nil
			}
			return NewErrMappingConflict(expanded, original, existing)
		}
		// a direct mapping replaces a derived one
		m.removeReverse(existing, expanded)
	}
	m.insert(expanded, original, false)
	m.derivePermutations(expanded, original)
	return nil
}

// ToOriginal rewrites an expanded path into the corresponding original path
// by substituting the longest mapped prefix. Paths with no mapped prefix are
// returned unchanged.
func (m *ResourceMappings) ToOriginal(expanded string) string {
	if m == nil {
		return expanded
	}
	for p := expanded; p != ""; p = parentPath(p) {
		if orig, ok := m.expandedToOriginal[p]; ok {
			return orig + expanded[len(p):]
		}
	}
	return expanded
}

// Freeze marks the mappings read-only.
func (m *ResourceMappings) Freeze() {
	m.frozen = true
}

// Len returns the number of recorded expanded paths.
func (m *ResourceMappings) Len() int {
	return len(m.expandedToOriginal)
}

// Snapshot returns a copy of the expanded-to-original relation.
func (m *ResourceMappings) Snapshot() map[string]string {
	out := make(map[string]string, len(m.expandedToOriginal))
	for k, v := range m.expandedToOriginal {
		out[k] = v
	}
	return out
}

func (m *ResourceMappings) insert(expanded, original string, isDerived bool) {
	m.expandedToOriginal[expanded] = original
	if isDerived {
		m.derived[expanded] = true
	} else {
		delete(m.derived, expanded)
	}
	for _, e := range m.originalToExpanded[original] {
		if e == expanded {
			return
		}
	}
	m.originalToExpanded[original] = append(m.originalToExpanded[original], expanded)
}

func (m *ResourceMappings) removeReverse(original, expanded string) {
	list := m.originalToExpanded[original]
	for i, e := range list {
		if e == expanded {
			m.originalToExpanded[original] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// derivePermutations projects the new mapping through copies of the expanded
// path's ancestors: if an ancestor originates at a path that has other
// expanded instances, the same subtree exists under each instance and the
// matching paths there originate at the same place. Direct mappings always
// win over derived ones.
func (m *ResourceMappings) derivePermutations(expanded, original string) {
	for a := parentPath(expanded); a != ""; a = parentPath(a) {
		suffix := expanded[len(a):]
		for _, alias := range m.originalToExpanded[m.ToOriginal(a)] {
			if alias == a {
				continue
			}
			k := alias + suffix
			if k == expanded {
				continue
			}
			if _, exists := m.expandedToOriginal[k]; exists {
				continue
			}
			m.insert(k, original, true)
		}
	}
}
