// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armexpr

import "strings"

// Scope supplies the deployment-context lookups an expression may need.
// Hooks left nil make the corresponding functions fail with ErrNotStatic,
// which lenient callers turn into a sentinel value.
type Scope struct {
	// Parameter resolves parameters('name').
	Parameter func(name string) (any, error)
	// Variable resolves variables('name').
	Variable func(name string) (any, error)
	// Reference resolves reference(target, ...). When full is set the caller
	// asked for the complete resource object rather than its properties.
	Reference func(target string, full bool) (any, error)
	// UserFunction resolves namespace.function(args) calls declared in the
	// template's functions section.
	UserFunction func(namespace, name string, args []any) (any, error)
	// CopyIndex resolves copyIndex([loopName], [offset]). loopName is empty
	// for the innermost loop form.
	CopyIndex func(loopName string, offset int) (int, error)
	// Functions adds or overrides named template functions. Names are
	// matched case-insensitively and take precedence over the builtin set.
	Functions map[string]func(args []any) (any, error)
}

func (s *Scope) extension(name string) (func(args []any) (any, error), bool) {
	if s == nil || len(s.Functions) == 0 {
		return nil, false
	}
	if fn, ok := s.Functions[name]; ok {
		return fn, true
	}
	bestKey := ""
	found := false
	for k := range s.Functions {
		if strings.EqualFold(k, name) && (!found || k < bestKey) {
			bestKey, found = k, true
		}
	}
	if !found {
		return nil, false
	}
	return s.Functions[bestKey], true
}

func (s *Scope) parameter(name string) (any, error) {
	if s == nil || s.Parameter == nil {
		return nil, NewErrNotStatic("parameters")
	}
	return s.Parameter(name)
}

func (s *Scope) variable(name string) (any, error) {
	if s == nil || s.Variable == nil {
		return nil, NewErrNotStatic("variables")
	}
	return s.Variable(name)
}

func (s *Scope) reference(target string, full bool) (any, error) {
	if s == nil || s.Reference == nil {
		return nil, NewErrNotStatic("reference")
	}
	return s.Reference(target, full)
}

func (s *Scope) userFunction(namespace, name string, args []any) (any, error) {
	if s == nil || s.UserFunction == nil {
		return nil, NewErrUnknownFunction(namespace + "." + name)
	}
	return s.UserFunction(namespace, name, args)
}

func (s *Scope) copyIndex(loopName string, offset int) (int, error) {
	if s == nil || s.CopyIndex == nil {
		return 0, NewErrNotStatic("copyIndex")
	}
	return s.CopyIndex(loopName, offset)
}
