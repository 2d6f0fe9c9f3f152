// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package report renders analysis results for people and machines. The
// console writer prints colorized findings grouped per template, the JSON
// writer emits a stable document for scripting, and the SARIF writer
// produces a SARIF 2.1.0 log that code scanning services ingest.
//
// All writers implement the Writer interface: one Write call per analyzed
// template, then a single Close to flush.
package report
