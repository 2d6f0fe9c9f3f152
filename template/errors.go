// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import "fmt"

var _ error = (*ErrTemplateParse)(nil)
var _ error = (*ErrParameterParse)(nil)
var _ error = (*ErrExpression)(nil)
var _ error = (*ErrMappingConflict)(nil)
var _ error = (*ErrDuplicateResource)(nil)

// ErrTemplateParse is an error type that indicates the ARM template JSON is
// malformed or missing mandatory sections.
type ErrTemplateParse struct {
	Identifier string
	Reason     string
	Err        error
}

// Error implements the error interface for type ErrTemplateParse.
func (e *ErrTemplateParse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse template %s: %s: %v", e.Identifier, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse template %s: %s", e.Identifier, e.Reason)
}

// Unwrap returns the wrapped error.
func (e *ErrTemplateParse) Unwrap() error {
	return e.Err
}

// NewErrTemplateParse creates a new ErrTemplateParse error.
func NewErrTemplateParse(identifier, reason string, err error) error {
	return &ErrTemplateParse{Identifier: identifier, Reason: reason, Err: err}
}

// ErrParameterParse is an error type that indicates the parameters JSON is
// malformed or missing the parameters key.
type ErrParameterParse struct {
	Identifier string
	Reason     string
	Err        error
}

// Error implements the error interface for type ErrParameterParse.
func (e *ErrParameterParse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse parameters for template %s: %s: %v", e.Identifier, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse parameters for template %s: %s", e.Identifier, e.Reason)
}

// Unwrap returns the wrapped error.
func (e *ErrParameterParse) Unwrap() error {
	return e.Err
}

// NewErrParameterParse creates a new ErrParameterParse error.
func NewErrParameterParse(identifier, reason string, err error) error {
	return &ErrParameterParse{Identifier: identifier, Reason: reason, Err: err}
}

// ErrExpression is an error type that indicates a template language
// expression could not be evaluated. It is only surfaced in strict mode; the
// default behavior substitutes the NOT_PARSED sentinel and continues.
type ErrExpression struct {
	Expression string
	Err        error
}

// Error implements the error interface for type ErrExpression.
func (e *ErrExpression) Error() string {
	return fmt.Sprintf("cannot evaluate expression %q: %v", e.Expression, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ErrExpression) Unwrap() error {
	return e.Err
}

// NewErrExpression creates a new ErrExpression error.
func NewErrExpression(expression string, err error) error {
	return &ErrExpression{Expression: expression, Err: err}
}

// ErrMappingConflict is an error type that indicates the same expanded path
// would map to two different original paths. This means the processor made
// inconsistent decisions and the result cannot be trusted.
type ErrMappingConflict struct {
	Expanded string
	Original string
	Existing string
}

// Error implements the error interface for type ErrMappingConflict.
func (e *ErrMappingConflict) Error() string {
	return fmt.Sprintf("resource mapping conflict: expanded path %q already maps to %q, cannot remap to %q", e.Expanded, e.Existing, e.Original)
}

// NewErrMappingConflict creates a new ErrMappingConflict error.
func NewErrMappingConflict(expanded, original, existing string) error {
	return &ErrMappingConflict{Expanded: expanded, Original: original, Existing: existing}
}

// ErrDuplicateResource is an error type that indicates two resources share
// the same flattened identity key.
type ErrDuplicateResource struct {
	Key string
}

// Error implements the error interface for type ErrDuplicateResource.
func (e *ErrDuplicateResource) Error() string {
	return fmt.Sprintf("duplicate resource identity %q in template", e.Key)
}

// NewErrDuplicateResource creates a new ErrDuplicateResource error.
func NewErrDuplicateResource(key string) error {
	return &ErrDuplicateResource{Key: key}
}
