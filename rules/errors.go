// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import "fmt"

var _ error = (*ErrCatalogParse)(nil)
var _ error = (*ErrDuplicateRuleID)(nil)
var _ error = (*ErrInvalidSeverity)(nil)
var _ error = (*ErrFilterConflict)(nil)
var _ error = (*ErrEngine)(nil)

// ErrCatalogParse is an error type that indicates a rule catalog could not be
// parsed. RuleID identifies the offending rule when it could be determined.
type ErrCatalogParse struct {
	RuleID string
	Err    error
}

// Error implements the error interface for type ErrCatalogParse.
func (e *ErrCatalogParse) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule catalog parse error: %v", e.Err)
	}
	return fmt.Sprintf("rule catalog parse error in rule %s: %v", e.RuleID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ErrCatalogParse) Unwrap() error {
	return e.Err
}

// NewErrCatalogParse creates a new ErrCatalogParse error.
func NewErrCatalogParse(ruleID string, err error) error {
	return &ErrCatalogParse{RuleID: ruleID, Err: err}
}

// ErrDuplicateRuleID is an error type that indicates a catalog declares the
// same rule id twice.
type ErrDuplicateRuleID struct {
	ID string
}

// Error implements the error interface for type ErrDuplicateRuleID.
func (e *ErrDuplicateRuleID) Error() string {
	return fmt.Sprintf("duplicate rule id %s in catalog", e.ID)
}

// NewErrDuplicateRuleID creates a new ErrDuplicateRuleID error.
func NewErrDuplicateRuleID(id string) error {
	return &ErrDuplicateRuleID{ID: id}
}

// ErrInvalidSeverity is an error type that indicates a severity outside the
// defined 1..4 range.
type ErrInvalidSeverity struct {
	Value int
}

// Error implements the error interface for type ErrInvalidSeverity.
func (e *ErrInvalidSeverity) Error() string {
	return fmt.Sprintf("severity must be between %d and %d, got %d", int(SeverityHigh), int(SeverityInformational), e.Value)
}

// NewErrInvalidSeverity creates a new ErrInvalidSeverity error.
func NewErrInvalidSeverity(value int) error {
	return &ErrInvalidSeverity{Value: value}
}

// ErrFilterConflict is an error type that indicates a filter config sets both
// inclusions and exclusions.
type ErrFilterConflict struct{}

// Error implements the error interface for type ErrFilterConflict.
func (e *ErrFilterConflict) Error() string {
	return "filter config must not set both inclusions and exclusions"
}

// NewErrFilterConflict creates a new ErrFilterConflict error.
func NewErrFilterConflict() error {
	return &ErrFilterConflict{}
}

// ErrEngine is an error type that indicates evaluation failed in a way that
// would otherwise have escaped the engine boundary.
type ErrEngine struct {
	RuleID string
	Reason string
}

// Error implements the error interface for type ErrEngine.
func (e *ErrEngine) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule engine error: %s", e.Reason)
	}
	return fmt.Sprintf("rule engine error in rule %s: %s", e.RuleID, e.Reason)
}

// NewErrEngine creates a new ErrEngine error.
func NewErrEngine(ruleID, reason string) error {
	return &ErrEngine{RuleID: ruleID, Reason: reason}
}
