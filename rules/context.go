// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

// TemplateResource is one flattened resource of an expanded template, as
// visible to rule evaluation.
type TemplateResource struct {
	// Type is the fully qualified resource type, e.g. "Microsoft.Web/sites".
	Type string
	// Document is the resource's subtree of the expanded template.
	Document map[string]any
	// Path is the absolute path of the resource in the expanded template,
	// e.g. "resources[2].resources[0]".
	Path string
}

// TemplateContext supplies rule evaluation with the expanded view of one
// template. A processed template implements this; tests may substitute their
// own.
type TemplateContext interface {
	// Identifier names the template for reporting, typically its file path.
	Identifier() string
	// Document returns the decoded expanded template.
	Document() map[string]any
	// Resources returns the expanded, flattened resources in discovery order.
	Resources() []TemplateResource
	// LineNumber maps an expanded-template path to the line in the original
	// source at which it begins, or 0 when unknown.
	LineNumber(expandedPath string) int
}
