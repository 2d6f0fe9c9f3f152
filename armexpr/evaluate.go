// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armexpr

import (
	"fmt"
	"strings"
)

// Evaluate parses and evaluates a bracketed template language expression.
func Evaluate(s string, scope *Scope) (any, error) {
	if !IsExpression(s) {
		return nil, NewErrParse(s, 0, "not a template language expression")
	}
	n, err := parse(s[1 : len(s)-1])
	if err != nil {
		return nil, err
	}
	return evalNode(n, scope)
}

// EvaluateString evaluates s when it is an expression, unescapes the `[[`
// form to a literal bracket string, and passes every other string through
// unchanged.
func EvaluateString(s string, scope *Scope) (any, error) {
	if strings.HasPrefix(s, "[[") {
		return s[1:], nil
	}
	if !IsExpression(s) {
		return s, nil
	}
	return Evaluate(s, scope)
}

func evalNode(n node, scope *Scope) (any, error) {
	switch t := n.(type) {
	case literalNode:
		return t.value, nil
	case propertyNode:
		base, err := evalNode(t.base, scope)
		if err != nil {
			return nil, err
		}
		return propertyOf(base, t.name)
	case indexNode:
		base, err := evalNode(t.base, scope)
		if err != nil {
			return nil, err
		}
		index, err := evalNode(t.index, scope)
		if err != nil {
			return nil, err
		}
		return elementOf(base, index)
	case callNode:
		return evalCall(t, scope)
	default:
		return nil, fmt.Errorf("evalNode: unhandled node type %T", n)
	}
}

func evalCall(call callNode, scope *Scope) (any, error) {
	// if() evaluates only the branch the condition selects, so an error in
	// the untaken branch cannot poison the result
	if call.namespace == "" && strings.EqualFold(call.name, "if") {
		return evalIf(call, scope)
	}
	args := make([]any, 0, len(call.args))
	for _, argNode := range call.args {
		arg, err := evalNode(argNode, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if call.namespace != "" {
		return scope.userFunction(call.namespace, call.name, args)
	}
	if fn, ok := scope.extension(call.name); ok {
		return fn(args)
	}
	name := strings.ToLower(call.name)
	if fn, ok := builtins[name]; ok {
		return fn(scope, args)
	}
	if strings.HasPrefix(name, "list") {
		return nil, NewErrNotStatic(call.name)
	}
	return nil, NewErrUnknownFunction(call.name)
}

func evalIf(call callNode, scope *Scope) (any, error) {
	if len(call.args) != 3 {
		return nil, NewErrArgument("if", fmt.Sprintf("expected 3 arguments, got %d", len(call.args)))
	}
	cond, err := evalNode(call.args[0], scope)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(bool)
	if !ok {
		return nil, NewErrArgument("if", "condition must be a boolean")
	}
	if b {
		return evalNode(call.args[1], scope)
	}
	return evalNode(call.args[2], scope)
}

// propertyOf resolves a dotted property access, matching object members
// case-insensitively like the rest of ARM.
func propertyOf(base any, name string) (any, error) {
	obj, ok := base.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("propertyOf: cannot access property %q of a %T value", name, base)
	}
	if v, ok := obj[name]; ok {
		return v, nil
	}
	bestKey := ""
	found := false
	for k := range obj {
		if strings.EqualFold(k, name) && (!found || k < bestKey) {
			bestKey, found = k, true
		}
	}
	if !found {
		return nil, fmt.Errorf("propertyOf: property %q not found", name)
	}
	return obj[bestKey], nil
}

// elementOf resolves a bracketed index access: numeric indexes address
// arrays, string indexes address object members.
func elementOf(base, index any) (any, error) {
	switch idx := index.(type) {
	case float64:
		arr, ok := base.([]any)
		if !ok {
			return nil, fmt.Errorf("elementOf: cannot index a %T value with a number", base)
		}
		i := int(idx)
		if float64(i) != idx || i < 0 || i >= len(arr) {
			return nil, fmt.Errorf("elementOf: index %v out of range for array of length %d", idx, len(arr))
		}
		return arr[i], nil
	case string:
		return propertyOf(base, idx)
	default:
		return nil, fmt.Errorf("elementOf: index must be a number or string, got %T", index)
	}
}
