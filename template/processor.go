// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/Azure/armlint/bicep"
	"github.com/Azure/armlint/rules"
)

// Input is one template to process. ParametersJSON and SourceMap are
// optional; SourceMap is set when the template was compiled from Bicep.
type Input struct {
	Identifier     string
	TemplateJSON   []byte
	ParametersJSON []byte
	SourceMap      *bicep.SourceMap
}

// ProcessorOptions are options for the Processor.
type ProcessorOptions struct {
	// StrictExpressions surfaces template language evaluation failures as
	// errors instead of substituting the NOT_PARSED sentinel.
	StrictExpressions bool
	Logger            *slog.Logger
}

// Processor expands ARM templates for analysis. It is safe for concurrent
// use; all per-template state lives in the ProcessedTemplate.
type Processor struct {
	logger *slog.Logger
	strict bool
}

// NewProcessor returns a Processor. A nil opts selects lenient expression
// handling and the default logger.
func NewProcessor(opts *ProcessorOptions) *Processor {
	if opts == nil {
		opts = &ProcessorOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger: logger,
		strict: opts.StrictExpressions,
	}
}

// Process runs the expansion pipeline: bind parameters, expand copy loops,
// evaluate template language expressions, flatten resources, attach
// dependsOn children and freeze the path mappings.
func (p *Processor) Process(in Input) (*ProcessedTemplate, error) {
	logger := p.logger.With("template", in.Identifier)

	var working map[string]any
	if err := json.Unmarshal(in.TemplateJSON, &working); err != nil {
		return nil, NewErrTemplateParse(in.Identifier, "template is not valid JSON", err)
	}
	if err := validateTopLevel(in.Identifier, working); err != nil {
		return nil, err
	}
	var original map[string]any
	if err := json.Unmarshal(in.TemplateJSON, &original); err != nil {
		return nil, NewErrTemplateParse(in.Identifier, "template is not valid JSON", err)
	}
	lines, err := NewLineIndex(in.TemplateJSON)
	if err != nil {
		return nil, NewErrTemplateParse(in.Identifier, "could not index source lines", err)
	}

	defs := parseParamDefinitions(working, logger)
	var supplied map[string]suppliedParameter
	if len(in.ParametersJSON) > 0 {
		supplied, err = parseParametersFile(in.Identifier, in.ParametersJSON)
		if err != nil {
			return nil, err
		}
	}
	bound := bindParameters(defs, supplied)

	ev := newEvaluator(in.Identifier, working, bound, logger, p.strict)
	mappings := NewResourceMappings()
	frames := make(map[string][]copyFrame)

	resKey, resArr, ok := resourcesEntry(working)
	if !ok {
		return nil, NewErrTemplateParse(in.Identifier, "resources is not an array", nil)
	}
	expanded, err := ev.expandResourceCopies(resArr, "resources", "resources", nil, frames, mappings)
	if err != nil {
		return nil, err
	}
	working[resKey] = expanded

	ev.snapshotNames(expanded, "resources", frames)
	if err := ev.evaluateResources(expanded, "resources", frames); err != nil {
		return nil, err
	}
	if err := ev.evaluateOutputs(); err != nil {
		return nil, err
	}
	if err := validateResources(in.Identifier, expanded, logger); err != nil {
		return nil, err
	}

	flat, err := flatten(working, original, mappings)
	if err != nil {
		return nil, err
	}
	attachDependencies(flat, mappings, logger)
	mappings.Freeze()

	return &ProcessedTemplate{
		identifier: in.Identifier,
		original:   original,
		expanded:   working,
		mappings:   mappings,
		flat:       flat,
		lines:      lines,
		sourceMap:  in.SourceMap,
	}, nil
}

// validateTopLevel checks the document shape required of a deployment
// template before any expansion work begins.
func validateTopLevel(identifier string, doc map[string]any) error {
	schema := foldString(doc, "$schema")
	if schema == "" {
		return NewErrTemplateParse(identifier, "missing or non-string $schema", nil)
	}
	if !strings.Contains(strings.ToLower(schema), "deploymenttemplate.json") {
		return NewErrTemplateParse(identifier, "$schema is not a deployment template schema", nil)
	}
	raw, ok := foldGet(doc, "resources")
	if !ok {
		return NewErrTemplateParse(identifier, "missing resources array", nil)
	}
	if _, ok := asArray(raw); !ok {
		return NewErrTemplateParse(identifier, "resources is not an array", nil)
	}
	return nil
}

// validateResources checks every expanded resource declares a name and
// type. A missing apiVersion is tolerated with a warning.
func validateResources(identifier string, arr []any, logger *slog.Logger) error {
	for _, e := range arr {
		doc, ok := asObject(e)
		if !ok {
			return NewErrTemplateParse(identifier, "resource entry is not an object", nil)
		}
		if foldString(doc, "name") == "" {
			return NewErrTemplateParse(identifier, "resource is missing a name", nil)
		}
		typ := foldString(doc, "type")
		if typ == "" {
			return NewErrTemplateParse(identifier, "resource is missing a type", nil)
		}
		if _, ok := foldGet(doc, "apiVersion"); !ok {
			logger.Warn("resource is missing an apiVersion", "type", typ)
		}
		if _, children, ok := resourcesEntry(doc); ok {
			if err := validateResources(identifier, children, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessedTemplate is the expanded template plus everything needed to
// evaluate rules against it and report findings at original source lines.
type ProcessedTemplate struct {
	identifier string
	original   map[string]any
	expanded   map[string]any
	mappings   *ResourceMappings
	flat       *flatSet
	lines      *LineIndex
	sourceMap  *bicep.SourceMap
}

var _ rules.TemplateContext = (*ProcessedTemplate)(nil)

// Identifier names the template, typically its file path.
func (t *ProcessedTemplate) Identifier() string {
	return t.identifier
}

// Document returns the expanded template tree.
func (t *ProcessedTemplate) Document() map[string]any {
	return t.expanded
}

// Original returns the template tree as parsed, before expansion.
func (t *ProcessedTemplate) Original() map[string]any {
	return t.original
}

// Mappings returns the frozen expanded-to-original path mappings.
func (t *ProcessedTemplate) Mappings() *ResourceMappings {
	return t.mappings
}

// Resources returns the flattened resources in discovery order.
func (t *ProcessedTemplate) Resources() []rules.TemplateResource {
	out := make([]rules.TemplateResource, 0, len(t.flat.order))
	for _, fr := range t.flat.order {
		out = append(out, rules.TemplateResource{
			Type:     fr.typeChain,
			Document: fr.doc,
			Path:     fr.path,
		})
	}
	return out
}

// OriginalPath maps an expanded-template path back to the source template.
func (t *ProcessedTemplate) OriginalPath(expandedPath string) string {
	return t.mappings.ToOriginal(expandedPath)
}

// LineNumber returns the source line at which the value behind an
// expanded-template path begins, falling back to the closest ancestor
// present in the source. For Bicep-compiled templates the line is
// translated through the compiler's source map. Unknown locations are 0.
func (t *ProcessedTemplate) LineNumber(expandedPath string) int {
	_, line := t.SourceLocation(expandedPath)
	return line
}

// SourceLocation returns the file and line behind an expanded-template
// path. The file differs from the template identifier when a Bicep source
// map points into a module.
func (t *ProcessedTemplate) SourceLocation(expandedPath string) (string, int) {
	if t.lines == nil {
		return t.identifier, 0
	}
	line := 0
	for p := t.mappings.ToOriginal(expandedPath); ; p = parentPath(p) {
		if l := t.lines.Line(p); l > 0 {
			line = l
			break
		}
		if p == "" {
			break
		}
	}
	if line == 0 || t.sourceMap == nil {
		return t.identifier, line
	}
	loc, ok := t.sourceMap.Lookup(line)
	if !ok {
		return t.identifier, 0
	}
	return loc.FilePath, loc.Line
}
