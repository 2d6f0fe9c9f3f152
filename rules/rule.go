// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// RuleDefinition is one rule of a catalog: identifying metadata plus the
// compiled evaluation expression.
type RuleDefinition struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	Recommendation string     `json:"recommendation"`
	HelpURI        string     `json:"helpUri,omitempty"`
	Severity       Severity   `json:"severity"`
	Evaluation     Expression `json:"evaluation"`

	// authoredSeverity is the severity the rule was loaded with. Severity
	// filters match against it, so overriding a severity cannot change which
	// rules a repeated filter selects.
	authoredSeverity Severity
}

// UnmarshalJSON implements json.Unmarshaler for type RuleDefinition,
// compiling the evaluation expression eagerly.
func (r *RuleDefinition) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string          `json:"id"`
		Description    string          `json:"description"`
		Recommendation string          `json:"recommendation"`
		HelpURI        string          `json:"helpUri"`
		Severity       Severity        `json:"severity"`
		Evaluation     json.RawMessage `json:"evaluation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("RuleDefinition.UnmarshalJSON: %w", err)
	}
	if raw.ID == "" {
		return fmt.Errorf("RuleDefinition.UnmarshalJSON: rule id must not be empty")
	}
	if !raw.Severity.Valid() {
		return NewErrInvalidSeverity(int(raw.Severity))
	}
	if len(raw.Evaluation) == 0 {
		return fmt.Errorf("RuleDefinition.UnmarshalJSON: rule %s has no evaluation", raw.ID)
	}
	expr, err := ParseExpression(raw.Evaluation)
	if err != nil {
		return fmt.Errorf("RuleDefinition.UnmarshalJSON: rule %s: %w", raw.ID, err)
	}
	r.ID = raw.ID
	r.Description = raw.Description
	r.Recommendation = raw.Recommendation
	r.HelpURI = raw.HelpURI
	r.Severity = raw.Severity
	r.Evaluation = expr
	r.authoredSeverity = raw.Severity
	return nil
}

// Catalog is an ordered, immutable collection of rules. Filtering returns a
// new catalog and never mutates the receiver, so a loaded catalog may be
// shared read-only across concurrent template analyses.
type Catalog []*RuleDefinition

// LoadCatalog parses a JSON array of rule definitions. Each rule's
// evaluation is compiled eagerly; a parse failure of any single rule aborts
// the load with an error naming the offending rule.
func LoadCatalog(data []byte) (Catalog, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewErrCatalogParse("", fmt.Errorf("rule catalog must be a JSON array: %w", err))
	}
	catalog := make(Catalog, 0, len(raw))
	ids := mapset.NewThreadUnsafeSet[string]()
	for i, r := range raw {
		rule := new(RuleDefinition)
		if err := json.Unmarshal(r, rule); err != nil {
			return nil, NewErrCatalogParse(peekRuleID(r), fmt.Errorf("rule at index %d: %w", i, err))
		}
		if !ids.Add(rule.ID) {
			return nil, NewErrDuplicateRuleID(rule.ID)
		}
		catalog = append(catalog, rule)
	}
	return catalog, nil
}

// WithID returns the rule with the given id, or nil when absent.
func (c Catalog) WithID(id string) *RuleDefinition {
	for _, r := range c {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// IDs returns the rule ids of the catalog in order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, r := range c {
		ids = append(ids, r.ID)
	}
	return ids
}

// peekRuleID extracts the id of a raw rule for error reporting, tolerating
// otherwise malformed definitions.
func peekRuleID(raw json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}
