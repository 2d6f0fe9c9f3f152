// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package jsonpath

import "fmt"

var _ error = (*ErrInvalidPath)(nil)

// ErrInvalidPath is an error type that indicates a path string could not be parsed.
type ErrInvalidPath struct {
	Path   string
	Reason string
}

// Error implements the error interface for type ErrInvalidPath.
func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// NewErrInvalidPath creates a new ErrInvalidPath error.
func NewErrInvalidPath(path, reason string) error {
	return &ErrInvalidPath{Path: path, Reason: reason}
}
