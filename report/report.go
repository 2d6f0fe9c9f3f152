// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"github.com/Azure/armlint/rules"
)

// AnalysisResult is the outcome of analyzing one template.
type AnalysisResult struct {
	// Identifier names the analyzed template, typically its file path.
	Identifier string `json:"identifier"`
	// Evaluations are the per-rule outcomes in catalog order.
	Evaluations []rules.Evaluation `json:"evaluations"`
}

// Counts returns the number of failed and passed evaluations in the result.
func (r *AnalysisResult) Counts() (failed, passed int) {
	for i := range r.Evaluations {
		if r.Evaluations[i].Passed {
			passed++
			continue
		}
		failed++
	}
	return failed, passed
}

// Failed reports whether any evaluation in the result failed.
func (r *AnalysisResult) Failed() bool {
	failed, _ := r.Counts()
	return failed > 0
}

// Writer renders analysis results in one output format. Write is called once
// per analyzed template; Close flushes buffered output and must be called
// exactly once after the last Write.
type Writer interface {
	Write(res *AnalysisResult) error
	Close() error
}

// Options are options for the report writers.
// Writers accept a nil *Options and fall back to the defaults.
type Options struct {
	// IncludePassed emits passing evaluations alongside failures. Passing
	// evaluations carry no result location.
	IncludePassed bool
}

func (o *Options) orDefault() *Options {
	if o == nil {
		return &Options{}
	}
	return o
}
