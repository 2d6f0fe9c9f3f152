// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package bicep

import (
	"context"
	"encoding/json"
	"fmt"
)

// Compiler turns a Bicep file into an ARM JSON template. Implementations
// typically shell out to the bicep CLI or call a compilation service.
type Compiler interface {
	Compile(ctx context.Context, path string) (*CompiledTemplate, error)
}

// CompiledTemplate is the output of a Bicep compilation.
type CompiledTemplate struct {
	// TemplateJSON is the compiled ARM deployment template.
	TemplateJSON []byte
	// SourceMap translates compiled JSON lines back to Bicep source lines.
	// May be nil when the compiler cannot produce one.
	SourceMap *SourceMap
}

// SourceMap is the line-level source map emitted by the Bicep compiler.
type SourceMap struct {
	Entries []SourceMapEntry `json:"entries"`
}

// SourceMapEntry holds the mappings for one Bicep source file. A compilation
// involving modules produces one entry per file.
type SourceMapEntry struct {
	FilePath  string        `json:"filePath"`
	SourceMap []LineMapping `json:"sourceMap"`
}

// LineMapping relates one line of Bicep source to one line of the compiled
// JSON. Lines are 1-based.
type LineMapping struct {
	SourceLine int `json:"sourceLine"`
	TargetLine int `json:"targetLine"`
}

// SourceLocation is a position in a Bicep source file.
type SourceLocation struct {
	FilePath string
	Line     int
}

// ParseSourceMap loads a source map from its JSON representation.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, fmt.Errorf("ParseSourceMap: %w", err)
	}
	return &sm, nil
}

// Lookup finds the Bicep source location for a line of the compiled JSON.
// Entries are scanned in order and the first match wins, which keeps results
// deterministic when modules overlap.
func (sm *SourceMap) Lookup(jsonLine int) (SourceLocation, bool) {
	if sm == nil {
		return SourceLocation{}, false
	}
	for _, entry := range sm.Entries {
		for _, m := range entry.SourceMap {
			if m.TargetLine == jsonLine {
				return SourceLocation{FilePath: entry.FilePath, Line: m.SourceLine}, true
			}
		}
	}
	return SourceLocation{}, false
}
