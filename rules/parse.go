// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Azure/armlint/jsonpath"
)

// ParseExpression compiles the JSON form of a rule evaluation into an
// Expression tree. Any node may carry `resourceType` and/or `where` keys, in
// which case the parsed body is wrapped in a ScopedExpression. Parsing is
// eager: invalid paths, operators, operands and regex patterns are rejected
// here rather than at evaluation time.
func ParseExpression(raw json.RawMessage) (Expression, error) {
	var node map[string]json.RawMessage
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("ParseExpression: expression must be a JSON object: %w", err)
	}
	var resourceType string
	if rt, ok := node["resourceType"]; ok {
		if err := json.Unmarshal(rt, &resourceType); err != nil {
			return nil, fmt.Errorf("ParseExpression: resourceType must be a string: %w", err)
		}
		delete(node, "resourceType")
	}
	var where Expression
	if w, ok := node["where"]; ok {
		parsed, err := ParseExpression(w)
		if err != nil {
			return nil, fmt.Errorf("ParseExpression: where: %w", err)
		}
		where = parsed
		delete(node, "where")
	}
	body, err := parseBody(node)
	if err != nil {
		return nil, err
	}
	if resourceType == "" && where == nil {
		return body, nil
	}
	return &ScopedExpression{ResourceType: resourceType, Where: where, Body: body}, nil
}

// parseBody dispatches on the structural key of an expression node, with the
// scope keys already stripped.
func parseBody(node map[string]json.RawMessage) (Expression, error) {
	_, hasAllOf := node["allOf"]
	_, hasAnyOf := node["anyOf"]
	_, hasNot := node["not"]
	_, hasPath := node["path"]
	structural := 0
	for _, present := range []bool{hasAllOf, hasAnyOf, hasNot, hasPath} {
		if present {
			structural++
		}
	}
	if structural != 1 {
		return nil, fmt.Errorf("parseBody: expression must contain exactly one of allOf, anyOf, not or path, got %d", structural)
	}
	switch {
	case hasAllOf:
		children, err := parseChildren(node, "allOf")
		if err != nil {
			return nil, err
		}
		return &AllOfExpression{Children: children}, nil
	case hasAnyOf:
		children, err := parseChildren(node, "anyOf")
		if err != nil {
			return nil, err
		}
		return &AnyOfExpression{Children: children}, nil
	case hasNot:
		if err := rejectUnknownKeys(node, "not"); err != nil {
			return nil, err
		}
		child, err := ParseExpression(node["not"])
		if err != nil {
			return nil, fmt.Errorf("parseBody: not: %w", err)
		}
		return &NotExpression{Child: child}, nil
	default:
		return parseLeaf(node)
	}
}

// parseChildren parses the child array of an allOf/anyOf combinator.
func parseChildren(node map[string]json.RawMessage, key string) ([]Expression, error) {
	if err := rejectUnknownKeys(node, key); err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(node[key], &raw); err != nil {
		return nil, fmt.Errorf("parseChildren: %s must be a JSON array: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("parseChildren: %s must not be empty", key)
	}
	children := make([]Expression, 0, len(raw))
	for i, r := range raw {
		child, err := ParseExpression(r)
		if err != nil {
			return nil, fmt.Errorf("parseChildren: %s[%d]: %w", key, i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

// parseLeaf parses a node holding a path and exactly one operator.
func parseLeaf(node map[string]json.RawMessage) (Expression, error) {
	var rawPath string
	if err := json.Unmarshal(node["path"], &rawPath); err != nil {
		return nil, fmt.Errorf("parseLeaf: path must be a string: %w", err)
	}
	path, err := jsonpath.Parse(rawPath)
	if err != nil {
		return nil, fmt.Errorf("parseLeaf: %w", err)
	}
	leaf := &LeafExpression{Path: path}
	for _, op := range allOperators {
		raw, ok := node[string(op)]
		if !ok {
			continue
		}
		if leaf.Operator != "" {
			return nil, fmt.Errorf("parseLeaf: leaf at path %q has multiple operators (%s, %s)", rawPath, leaf.Operator, op)
		}
		var operand any
		if err := json.Unmarshal(raw, &operand); err != nil {
			return nil, fmt.Errorf("parseLeaf: operand of %s: %w", op, err)
		}
		leaf.Operator = op
		leaf.Operand = operand
	}
	if leaf.Operator == "" {
		return nil, fmt.Errorf("parseLeaf: leaf at path %q has no operator", rawPath)
	}
	known := make([]string, 0, len(allOperators)+1)
	known = append(known, "path")
	for _, op := range allOperators {
		known = append(known, string(op))
	}
	if err := rejectUnknownKeys(node, known...); err != nil {
		return nil, err
	}
	if err := validateOperand(leaf); err != nil {
		return nil, fmt.Errorf("parseLeaf: leaf at path %q: %w", rawPath, err)
	}
	return leaf, nil
}

// validateOperand enforces the operand type of each operator and compiles
// regex operands.
func validateOperand(leaf *LeafExpression) error {
	switch leaf.Operator {
	case OpHasValue, OpExists:
		if _, ok := leaf.Operand.(bool); !ok {
			return fmt.Errorf("operand of %s must be a boolean", leaf.Operator)
		}
	case OpIn:
		if _, ok := leaf.Operand.([]any); !ok {
			return fmt.Errorf("operand of %s must be an array", leaf.Operator)
		}
	case OpRegex:
		pattern, ok := leaf.Operand.(string)
		if !ok {
			return fmt.Errorf("operand of %s must be a string", leaf.Operator)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("operand of %s: %w", leaf.Operator, err)
		}
		leaf.regex = re
	case OpGreater, OpGreaterOrEquals, OpLess, OpLessOrEquals:
		if _, ok := toNumber(leaf.Operand); !ok {
			return fmt.Errorf("operand of %s must be a number", leaf.Operator)
		}
	}
	return nil
}

// rejectUnknownKeys errors when node holds keys outside the allowed set.
func rejectUnknownKeys(node map[string]json.RawMessage, allowed ...string) error {
	var unknown []string
	for k := range node {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf("unknown expression keys: %s", strings.Join(unknown, ", "))
}
