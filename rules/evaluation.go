// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

// Result pinpoints the template location an evaluation inspected.
type Result struct {
	// Path is the concrete path in the expanded template, with the enclosing
	// resource's path prepended.
	Path string `json:"path"`
	// LineNumber is the line in the original source at which the path's value
	// begins, or 0 when unknown.
	LineNumber int `json:"line_number"`
}

// Evaluation is the outcome of evaluating an expression against one scope.
// Top-level evaluations carry the rule metadata attached by the engine;
// nested evaluations carry only their own outcome. Combinator and wildcard
// outcomes aggregate their children in SubEvaluations.
type Evaluation struct {
	RuleID         string       `json:"rule_id,omitempty"`
	Description    string       `json:"description,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
	HelpURI        string       `json:"help_uri,omitempty"`
	Severity       Severity     `json:"severity,omitempty"`
	Passed         bool         `json:"passed"`
	FileIdentifier string       `json:"file_identifier,omitempty"`
	Result         *Result      `json:"result"`
	SubEvaluations []Evaluation `json:"sub_evaluations,omitempty"`
}

// Failed reports whether the evaluation did not pass.
func (e *Evaluation) Failed() bool {
	return !e.Passed
}

// invert flips the passed flag of the evaluation and of every nested
// evaluation. Inversion is involutive, so not(not(e)) restores e.
func (e *Evaluation) invert() {
	e.Passed = !e.Passed
	for i := range e.SubEvaluations {
		e.SubEvaluations[i].invert()
	}
}

// FailedResults collects the results of every failing evaluation in the
// tree, depth-first. Passing branches are not descended into.
func (e *Evaluation) FailedResults() []Result {
	var out []Result
	e.appendFailedResults(&out)
	return out
}

func (e *Evaluation) appendFailedResults(out *[]Result) {
	if e.Passed {
		return
	}
	if e.Result != nil {
		*out = append(*out, *e.Result)
	}
	for i := range e.SubEvaluations {
		e.SubEvaluations[i].appendFailedResults(out)
	}
}

// firstFailedResult returns the first failing result in depth-first order,
// or nil when the tree holds none.
func (e *Evaluation) firstFailedResult() *Result {
	if e.Passed {
		return nil
	}
	if e.Result != nil {
		return e.Result
	}
	for i := range e.SubEvaluations {
		if r := e.SubEvaluations[i].firstFailedResult(); r != nil {
			return r
		}
	}
	return nil
}
