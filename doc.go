// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package armlint statically analyzes ARM deployment templates against a
// declarative rule catalog. It expands each template the way Azure Resource
// Manager would (parameters, copy loops, template language expressions,
// nested resources) and evaluates every rule of the catalog against the
// expanded result, reporting findings with line numbers in the original
// source.
//
// The Analyzer is configured with rule libraries supplied as fs.FS values:
// the embedded builtin library (BuiltinRules), local directories, or remote
// libraries fetched with FetchLibrariesWithDependencies. Analysis never
// contacts Azure; unresolvable runtime values are substituted with
// deterministic placeholders.
package armlint
