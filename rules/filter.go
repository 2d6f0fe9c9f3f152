// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/maps"
)

// FilterSelector names rules by severity and/or id. A rule matches the
// selector when it matches either list. Ids are matched case-insensitively,
// like every other identifier comparison in the engine.
type FilterSelector struct {
	Severities []Severity `json:"severity,omitempty"`
	IDs        []string   `json:"ids,omitempty"`
}

// FilterConfig narrows a catalog. Inclusions and exclusions are mutually
// exclusive; severity overrides apply to the rules surviving the filter.
type FilterConfig struct {
	Inclusions        *FilterSelector     `json:"inclusions,omitempty"`
	Exclusions        *FilterSelector     `json:"exclusions,omitempty"`
	SeverityOverrides map[string]Severity `json:"severityOverrides,omitempty"`
}

// compiledSelector is a FilterSelector with its lists turned into sets.
type compiledSelector struct {
	severities mapset.Set[Severity]
	ids        mapset.Set[string]
}

func (s *FilterSelector) compile() compiledSelector {
	ids := mapset.NewThreadUnsafeSetWithSize[string](len(s.IDs))
	for _, id := range s.IDs {
		ids.Add(strings.ToLower(id))
	}
	return compiledSelector{
		severities: mapset.NewThreadUnsafeSet(s.Severities...),
		ids:        ids,
	}
}

func (s compiledSelector) matches(r *RuleDefinition) bool {
	sev := r.Severity
	if r.authoredSeverity.Valid() {
		sev = r.authoredSeverity
	}
	return s.severities.Contains(sev) || s.ids.Contains(strings.ToLower(r.ID))
}

// Filter returns the catalog narrowed by cfg. The receiver is not modified;
// rules whose severity is overridden are shallow-copied so the original
// catalog can keep serving other analyses. Filtering with the same config
// twice yields the same catalog (the operation is idempotent).
func (c Catalog) Filter(cfg *FilterConfig) (Catalog, error) {
	if cfg == nil {
		return c, nil
	}
	if cfg.Inclusions != nil && cfg.Exclusions != nil {
		return nil, NewErrFilterConflict()
	}
	out := make(Catalog, 0, len(c))
	switch {
	case cfg.Inclusions != nil:
		sel := cfg.Inclusions.compile()
		for _, r := range c {
			if sel.matches(r) {
				out = append(out, r)
			}
		}
	case cfg.Exclusions != nil:
		sel := cfg.Exclusions.compile()
		for _, r := range c {
			if !sel.matches(r) {
				out = append(out, r)
			}
		}
	default:
		out = append(out, c...)
	}
	// Override ids are folded to lower case; sorted insertion keeps the
	// winner deterministic should two keys collide after folding.
	overrides := make(map[string]Severity, len(cfg.SeverityOverrides))
	overrideIDs := maps.Keys(cfg.SeverityOverrides)
	slices.Sort(overrideIDs)
	for _, id := range overrideIDs {
		overrides[strings.ToLower(id)] = cfg.SeverityOverrides[id]
	}
	for i, r := range out {
		sev, ok := overrides[strings.ToLower(r.ID)]
		if !ok || sev == r.Severity {
			continue
		}
		if !sev.Valid() {
			return nil, NewErrInvalidSeverity(int(sev))
		}
		clone := *r
		clone.Severity = sev
		out[i] = &clone
	}
	return out, nil
}
