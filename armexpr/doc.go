// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package armexpr evaluates ARM template language expressions: strings of the
// form `[functionName(arg1, arg2)]`, including nested calls, string and
// integer literals, and property/index access on function results.
//
// Functions that depend on deployment context (parameters, variables,
// reference, copyIndex, user defined functions) are resolved through
// injectable hooks on Scope. Everything else is evaluated by the built-in
// function library in this package. Evaluation is deterministic: functions
// that are random at deployment time (newGuid) produce stable derived values,
// which is what a static analyzer needs.
package armexpr
