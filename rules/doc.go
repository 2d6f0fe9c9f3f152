// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package rules implements the declarative JSON rule DSL used to analyze ARM
// deployment templates: rule definitions, their boolean evaluation
// expressions, catalog loading and filtering, and the evaluation engine that
// runs a catalog against a processed template.
//
// An expression tree is a closed set of variants: LeafExpression applies a
// primitive predicate at a property path, AllOfExpression, AnyOfExpression
// and NotExpression combine children logically, and ScopedExpression shifts
// evaluation to every resource of a given type, optionally filtered by a
// where clause.
package rules
