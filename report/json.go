// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Azure/armlint/rules"
)

// JSONWriter buffers results and emits a single JSON array of per-template
// records on Close. Field order is fixed by the struct definitions, so the
// output is stable for identical inputs.
type JSONWriter struct {
	w             io.Writer
	includePassed bool
	results       []*AnalysisResult
}

var _ Writer = (*JSONWriter)(nil)

// NewJSONWriter returns a JSON writer emitting to w.
func NewJSONWriter(w io.Writer, opts *Options) *JSONWriter {
	return &JSONWriter{
		w:             w,
		includePassed: opts.orDefault().IncludePassed,
	}
}

// Write implements Writer for type JSONWriter.
func (jw *JSONWriter) Write(res *AnalysisResult) error {
	if jw.includePassed {
		jw.results = append(jw.results, res)
		return nil
	}
	failed := make([]rules.Evaluation, 0, len(res.Evaluations))
	for i := range res.Evaluations {
		if res.Evaluations[i].Passed {
			continue
		}
		failed = append(failed, res.Evaluations[i])
	}
	jw.results = append(jw.results, &AnalysisResult{
		Identifier:  res.Identifier,
		Evaluations: failed,
	})
	return nil
}

// Close implements Writer for type JSONWriter.
func (jw *JSONWriter) Close() error {
	if jw.results == nil {
		jw.results = make([]*AnalysisResult, 0)
	}
	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jw.results); err != nil {
		return fmt.Errorf("JSONWriter.Close: %w", err)
	}
	return nil
}
