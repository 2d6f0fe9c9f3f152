// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"fmt"
	"strings"

	"github.com/Azure/armlint/jsonpath"
)

// evalScope is the subtree an expression is currently evaluated against,
// together with its absolute path in the expanded template.
type evalScope struct {
	doc  any
	path string
}

// evalContext carries the per-template state shared by one evaluation run.
type evalContext struct {
	tmpl TemplateContext
}

// line resolves the original line number of an expanded path. A nil template
// context yields the unknown sentinel.
func (ec *evalContext) line(path string) int {
	if ec.tmpl == nil {
		return 0
	}
	return ec.tmpl.LineNumber(path)
}

// resources enumerates the flattened resources of the template in discovery
// order.
func (ec *evalContext) resources() []TemplateResource {
	if ec.tmpl == nil {
		return nil
	}
	return ec.tmpl.Resources()
}

// evaluate resolves the leaf's path within the scope and applies the
// predicate. A wildcard path quantifies universally: every resolved element
// becomes a child evaluation and the leaf passes only when all of them do.
// A path whose intermediate segments are absent resolves to nothing and the
// leaf passes vacuously.
func (l *LeafExpression) evaluate(ec *evalContext, scope evalScope) []Evaluation {
	matches := jsonpath.Resolve(scope.doc, l.Path)
	if len(matches) == 0 {
		return []Evaluation{{Passed: true}}
	}
	if len(matches) == 1 && !l.Path.HasWildcard() {
		abs := jsonpath.Join(scope.path, matches[0].Path)
		return []Evaluation{{
			Passed: l.apply(matches[0].Value),
			Result: &Result{Path: abs, LineNumber: ec.line(abs)},
		}}
	}
	subs := make([]Evaluation, 0, len(matches))
	passed := true
	for _, m := range matches {
		abs := jsonpath.Join(scope.path, m.Path)
		ok := l.apply(m.Value)
		passed = passed && ok
		subs = append(subs, Evaluation{
			Passed: ok,
			Result: &Result{Path: abs, LineNumber: ec.line(abs)},
		})
	}
	return []Evaluation{{Passed: passed, SubEvaluations: subs}}
}

// evaluate runs every child against the same scope. There is no
// short-circuit: each child's outcome is retained for diagnostics.
func (a *AllOfExpression) evaluate(ec *evalContext, scope evalScope) []Evaluation {
	subs := make([]Evaluation, 0, len(a.Children))
	passed := true
	for _, child := range a.Children {
		for _, e := range child.evaluate(ec, scope) {
			passed = passed && e.Passed
			subs = append(subs, e)
		}
	}
	return []Evaluation{{Passed: passed, SubEvaluations: subs}}
}

// evaluate runs every child against the same scope, passing when at least
// one child passes.
func (a *AnyOfExpression) evaluate(ec *evalContext, scope evalScope) []Evaluation {
	subs := make([]Evaluation, 0, len(a.Children))
	passed := false
	for _, child := range a.Children {
		for _, e := range child.evaluate(ec, scope) {
			passed = passed || e.Passed
			subs = append(subs, e)
		}
	}
	return []Evaluation{{Passed: passed, SubEvaluations: subs}}
}

// evaluate inverts the child's outcomes, recursively flipping nested passed
// flags so failing paths stay discoverable in the inverted tree.
func (n *NotExpression) evaluate(ec *evalContext, scope evalScope) []Evaluation {
	evals := n.Child.evaluate(ec, scope)
	for i := range evals {
		evals[i].invert()
	}
	return evals
}

// evaluate selects the resources in scope, filters them with the where
// clause, then evaluates the body once per survivor. Resources failing the
// filter are dropped silently; an empty survivor set yields no evaluations.
func (s *ScopedExpression) evaluate(ec *evalContext, scope evalScope) []Evaluation {
	var out []Evaluation
	for _, target := range s.targets(ec, scope) {
		if s.Where != nil && !passesFilter(s.Where, ec, target) {
			continue
		}
		body := s.Body.evaluate(ec, target)
		if len(body) == 1 {
			out = append(out, body[0])
			continue
		}
		passed := true
		for _, e := range body {
			passed = passed && e.Passed
		}
		out = append(out, Evaluation{Passed: passed, SubEvaluations: body})
	}
	return out
}

// targets resolves the scopes the expression applies to: every resource of
// ResourceType, or the current scope when no type is given.
func (s *ScopedExpression) targets(ec *evalContext, scope evalScope) []evalScope {
	if s.ResourceType == "" {
		return []evalScope{scope}
	}
	var targets []evalScope
	for _, r := range ec.resources() {
		if strings.EqualFold(r.Type, s.ResourceType) {
			targets = append(targets, evalScope{doc: r.Document, path: r.Path})
		}
	}
	return targets
}

// passesFilter reports whether every outcome of the where clause passed for
// the target scope. The filter's evaluations are discarded.
func passesFilter(where Expression, ec *evalContext, scope evalScope) bool {
	for _, e := range where.evaluate(ec, scope) {
		if !e.Passed {
			return false
		}
	}
	return true
}

// Analyze evaluates every rule of the catalog against the template,
// returning the evaluations in (rule order, resource discovery order). The
// ordering is deterministic across runs for identical inputs.
func (c Catalog) Analyze(tmpl TemplateContext) ([]Evaluation, error) {
	if tmpl == nil {
		return nil, NewErrEngine("", "template context must not be nil")
	}
	ec := &evalContext{tmpl: tmpl}
	out := make([]Evaluation, 0, len(c))
	for _, rule := range c {
		evals, err := rule.analyze(ec)
		if err != nil {
			return nil, err
		}
		out = append(out, evals...)
	}
	return out, nil
}

// analyze evaluates a single rule, attaching the rule metadata to each
// outcome. Panics inside expression evaluation are recovered and surfaced
// as an engine error rather than crossing the API boundary.
func (r *RuleDefinition) analyze(ec *evalContext) (evals []Evaluation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			evals = nil
			err = NewErrEngine(r.ID, fmt.Sprintf("panic during evaluation: %v", rec))
		}
	}()
	root := evalScope{doc: ec.tmpl.Document()}
	for _, e := range r.Evaluation.evaluate(ec, root) {
		e.RuleID = r.ID
		e.Description = r.Description
		e.Recommendation = r.Recommendation
		e.HelpURI = r.HelpURI
		e.Severity = r.Severity
		e.FileIdentifier = ec.tmpl.Identifier()
		if !e.Passed && e.Result == nil {
			if first := e.firstFailedResult(); first != nil {
				cp := *first
				e.Result = &cp
			}
		}
		evals = append(evals, e)
	}
	return evals, nil
}
