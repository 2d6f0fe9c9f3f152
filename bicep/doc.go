// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package bicep defines the contract between the analyzer and an external
// Bicep front-end. The analyzer does not compile Bicep itself: a host
// supplies a Compiler that produces ARM JSON plus a source map, and findings
// are translated back to Bicep source lines through that map.
package bicep
