// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package template simulates the deployment-time expansion of an ARM
// template so that rules can be evaluated against what Azure would actually
// deploy.
//
// The Processor parses the template, binds supplied parameter values and
// generates deterministic placeholders for the rest, expands copy loops,
// evaluates template language expressions, flattens nested child resources
// and attaches dependsOn children under their parents. Throughout the
// pipeline it maintains a mapping from every path in the expanded template
// back to the originating path in the source text, which is how findings
// report source line numbers.
package template
