// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Azure/armlint/jsonpath"
)

// Expression is one node of a rule's evaluation tree. The set of
// implementations is closed: LeafExpression, AllOfExpression,
// AnyOfExpression, NotExpression and ScopedExpression.
type Expression interface {
	json.Marshaler

	// evaluate runs the expression against a scope and returns its outcomes.
	// Most expressions yield exactly one evaluation per scope; a
	// ScopedExpression yields one per resource it selects.
	evaluate(ec *evalContext, scope evalScope) []Evaluation

	isExpression()
}

var (
	_ Expression = (*LeafExpression)(nil)
	_ Expression = (*AllOfExpression)(nil)
	_ Expression = (*AnyOfExpression)(nil)
	_ Expression = (*NotExpression)(nil)
	_ Expression = (*ScopedExpression)(nil)
)

// LeafExpression applies a single primitive predicate to the value(s) at a
// property path. A path containing `[*]` quantifies universally: the leaf
// passes only when every element satisfies the predicate.
type LeafExpression struct {
	// Path locates the value the predicate applies to, relative to the
	// enclosing scope.
	Path jsonpath.Path
	// Operator is the predicate to apply.
	Operator Operator
	// Operand is the decoded JSON operand of the predicate.
	Operand any

	// regex is the compiled operand when Operator is OpRegex.
	regex *regexp.Regexp
}

func (*LeafExpression) isExpression() {}

// MarshalJSON implements json.Marshaler for type LeafExpression.
func (l *LeafExpression) MarshalJSON() ([]byte, error) {
	node := map[string]any{"path": l.Path.String()}
	node[string(l.Operator)] = l.Operand
	return json.Marshal(node)
}

// AllOfExpression passes when every child passes.
type AllOfExpression struct {
	Children []Expression
}

func (*AllOfExpression) isExpression() {}

// MarshalJSON implements json.Marshaler for type AllOfExpression.
func (a *AllOfExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"allOf": a.Children})
}

// AnyOfExpression passes when at least one child passes.
type AnyOfExpression struct {
	Children []Expression
}

func (*AnyOfExpression) isExpression() {}

// MarshalJSON implements json.Marshaler for type AnyOfExpression.
func (a *AnyOfExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"anyOf": a.Children})
}

// NotExpression inverts the outcome of its child.
type NotExpression struct {
	Child Expression
}

func (*NotExpression) isExpression() {}

// MarshalJSON implements json.Marshaler for type NotExpression.
func (n *NotExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"not": n.Child})
}

// ScopedExpression redirects evaluation of its body to every resource of
// ResourceType, optionally filtered by Where. Resources failing the filter
// are dropped without producing evaluations. An empty ResourceType keeps the
// current scope.
type ScopedExpression struct {
	// ResourceType is the fully qualified resource type to select, matched
	// case-insensitively. Empty keeps the current scope.
	ResourceType string
	// Where filters the selected resources. May be nil.
	Where Expression
	// Body is evaluated once per surviving resource. Never nil.
	Body Expression
}

func (*ScopedExpression) isExpression() {}

// MarshalJSON implements json.Marshaler for type ScopedExpression. The scope
// keys are folded into the body's object, reproducing the rule DSL form.
func (s *ScopedExpression) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(s.Body)
	if err != nil {
		return nil, err
	}
	var node map[string]json.RawMessage
	if err := json.Unmarshal(body, &node); err != nil {
		return nil, fmt.Errorf("ScopedExpression.MarshalJSON: body did not marshal to an object: %w", err)
	}
	if s.ResourceType != "" {
		rt, err := json.Marshal(s.ResourceType)
		if err != nil {
			return nil, err
		}
		node["resourceType"] = rt
	}
	if s.Where != nil {
		w, err := json.Marshal(s.Where)
		if err != nil {
			return nil, err
		}
		node["where"] = w
	}
	return json.Marshal(node)
}
