// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armexpr

import "fmt"

var _ error = (*ErrParse)(nil)
var _ error = (*ErrUnknownFunction)(nil)
var _ error = (*ErrArgument)(nil)
var _ error = (*ErrNotStatic)(nil)

// ErrParse is an error type that indicates an expression string could not be
// parsed.
type ErrParse struct {
	Input  string
	Pos    int
	Reason string
}

// Error implements the error interface for type ErrParse.
func (e *ErrParse) Error() string {
	return fmt.Sprintf("cannot parse expression %q at position %d: %s", e.Input, e.Pos, e.Reason)
}

// NewErrParse creates a new ErrParse error.
func NewErrParse(input string, pos int, reason string) error {
	return &ErrParse{Input: input, Pos: pos, Reason: reason}
}

// ErrUnknownFunction is an error type that indicates a call to a template
// function this package does not implement.
type ErrUnknownFunction struct {
	Name string
}

// Error implements the error interface for type ErrUnknownFunction.
func (e *ErrUnknownFunction) Error() string {
	return fmt.Sprintf("unknown template function %q", e.Name)
}

// NewErrUnknownFunction creates a new ErrUnknownFunction error.
func NewErrUnknownFunction(name string) error {
	return &ErrUnknownFunction{Name: name}
}

// ErrArgument is an error type that indicates a template function was called
// with invalid arguments.
type ErrArgument struct {
	Function string
	Reason   string
}

// Error implements the error interface for type ErrArgument.
func (e *ErrArgument) Error() string {
	return fmt.Sprintf("invalid arguments to %s: %s", e.Function, e.Reason)
}

// NewErrArgument creates a new ErrArgument error.
func NewErrArgument(function, reason string) error {
	return &ErrArgument{Function: function, Reason: reason}
}

// ErrNotStatic is an error type that indicates a template function whose
// value only exists at deployment time, e.g. listKeys. Callers typically
// substitute a sentinel and continue.
type ErrNotStatic struct {
	Function string
}

// Error implements the error interface for type ErrNotStatic.
func (e *ErrNotStatic) Error() string {
	return fmt.Sprintf("template function %s cannot be evaluated statically", e.Function)
}

// NewErrNotStatic creates a new ErrNotStatic error.
func NewErrNotStatic(function string) error {
	return &ErrNotStatic{Function: function}
}
