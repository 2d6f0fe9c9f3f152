// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Azure/armlint/armexpr"
	"github.com/Azure/armlint/jsonpath"
)

// NotParsed replaces template language expressions the static evaluator
// cannot resolve, so that analysis continues past them.
const NotParsed = "NOT_PARSED"

// maxCopyCount caps loop expansion at the ARM service limit.
const maxCopyCount = 800

// copyFrame is one active copy loop: the ordinal the loop is currently at.
type copyFrame struct {
	name  string
	index int
}

// lazyValue defers parameter and variable evaluation until first use and
// memoizes the result. busy guards against self-referencing declarations.
type lazyValue struct {
	raw  any
	val  any
	done bool
	busy bool
}

type userFunction struct {
	paramNames []string
	output     any
}

type resourceName struct {
	name string
	typ  string
	path string
}

// evaluator resolves template language expressions against the template's
// own parameters, variables and functions sections. It is single-use and
// single-threaded: the copy loop stack mutates as the walk descends.
type evaluator struct {
	identifier string
	logger     *slog.Logger
	strict     bool

	doc       map[string]any
	params    map[string]*lazyValue
	vars      map[string]*lazyValue
	varCopies []propertyCopy
	functions map[string]map[string]userFunction

	names     []resourceName
	copyStack []copyFrame

	scope *armexpr.Scope
}

func newEvaluator(identifier string, doc map[string]any, boundParams map[string]any, logger *slog.Logger, strict bool) *evaluator {
	ev := &evaluator{
		identifier: identifier,
		logger:     logger,
		strict:     strict,
		doc:        doc,
		params:     make(map[string]*lazyValue, len(boundParams)),
		vars:       make(map[string]*lazyValue),
		functions:  make(map[string]map[string]userFunction),
	}
	for name, raw := range boundParams {
		ev.params[name] = &lazyValue{raw: raw}
	}
	ev.parseVariables()
	ev.parseFunctions()
	ev.scope = &armexpr.Scope{
		Parameter:    ev.parameter,
		Variable:     ev.variable,
		Reference:    ev.reference,
		UserFunction: ev.userFunction,
		CopyIndex:    ev.copyIndex,
		Functions: map[string]func(args []any) (any, error){
			"deployment": ev.deploymentMetadata,
		},
	}
	return ev
}

func (ev *evaluator) parseVariables() {
	raw, ok := foldGet(ev.doc, "variables")
	if !ok {
		return
	}
	section, ok := asObject(raw)
	if !ok {
		return
	}
	for k, v := range section {
		if strings.EqualFold(k, "copy") {
			if descs, ok := propertyCopyDescriptors(v); ok {
				ev.varCopies = descs
				continue
			}
		}
		ev.vars[k] = &lazyValue{raw: v}
	}
}

func (ev *evaluator) parseFunctions() {
	raw, ok := foldGet(ev.doc, "functions")
	if !ok {
		return
	}
	arr, ok := asArray(raw)
	if !ok {
		return
	}
	for _, f := range arr {
		fo, ok := asObject(f)
		if !ok {
			continue
		}
		ns := strings.ToLower(foldString(fo, "namespace"))
		if ns == "" {
			continue
		}
		membersRaw, ok := foldGet(fo, "members")
		if !ok {
			continue
		}
		members, ok := asObject(membersRaw)
		if !ok {
			continue
		}
		if ev.functions[ns] == nil {
			ev.functions[ns] = make(map[string]userFunction, len(members))
		}
		for mname, mv := range members {
			mo, ok := asObject(mv)
			if !ok {
				continue
			}
			fn := userFunction{}
			if paramsRaw, ok := foldGet(mo, "parameters"); ok {
				if params, ok := asArray(paramsRaw); ok {
					for _, p := range params {
						po, ok := asObject(p)
						if !ok {
							continue
						}
						fn.paramNames = append(fn.paramNames, foldString(po, "name"))
					}
				}
			}
			if outputRaw, ok := foldGet(mo, "output"); ok {
				if output, ok := asObject(outputRaw); ok {
					fn.output, _ = foldGet(output, "value")
				}
			}
			ev.functions[ns][strings.ToLower(mname)] = fn
		}
	}
}

// walk evaluates every expression string in v, returning a new tree. Under
// lenient evaluation a failed expression becomes the NotParsed sentinel;
// otherwise the failure aborts the walk.
func (ev *evaluator) walk(v any, sc *armexpr.Scope, lenient bool) (any, error) {
	switch t := v.(type) {
	case string:
		out, err := armexpr.EvaluateString(t, sc)
		if err == nil {
			return out, nil
		}
		if !lenient {
			return nil, NewErrExpression(t, err)
		}
		ev.logger.Debug("expression left unresolved", "expression", t, "reason", err)
		return NotParsed, nil
	case map[string]any:
		return ev.walkObject(t, sc, lenient)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			w, err := ev.walk(e, sc, lenient)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	default:
		return v, nil
	}
}

func (ev *evaluator) walkObject(obj map[string]any, sc *armexpr.Scope, lenient bool) (map[string]any, error) {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if strings.EqualFold(k, "copy") {
			if descs, ok := propertyCopyDescriptors(v); ok {
				if err := ev.expandPropertyCopies(descs, out, sc, lenient); err != nil {
					return nil, err
				}
				continue
			}
		}
		w, err := ev.walk(v, sc, lenient)
		if err != nil {
			return nil, err
		}
		out[k] = w
	}
	return out, nil
}

// propertyCopy is one descriptor of a property (or variable) copy loop.
type propertyCopy struct {
	name  string
	count any
	input any
}

// propertyCopyDescriptors recognizes the array form of copy used for
// properties, variables and outputs. Resource copies use an object and are
// expanded earlier in the pipeline.
func propertyCopyDescriptors(v any) ([]propertyCopy, bool) {
	arr, ok := asArray(v)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	out := make([]propertyCopy, 0, len(arr))
	for _, e := range arr {
		obj, ok := asObject(e)
		if !ok {
			return nil, false
		}
		name := foldString(obj, "name")
		count, hasCount := foldGet(obj, "count")
		input, hasInput := foldGet(obj, "input")
		if name == "" || !hasCount || !hasInput {
			return nil, false
		}
		out = append(out, propertyCopy{name: name, count: count, input: input})
	}
	return out, true
}

func (ev *evaluator) expandPropertyCopies(descs []propertyCopy, out map[string]any, sc *armexpr.Scope, lenient bool) error {
	var kept []any
	for _, d := range descs {
		cv, err := ev.walk(d.count, sc, lenient)
		if err != nil {
			return err
		}
		n, ok := toCount(cv)
		if !ok {
			ev.logger.Warn("copy count not statically resolvable, leaving loop unexpanded", "loop", d.name)
			kept = append(kept, map[string]any{"name": d.name, "count": d.count, "input": d.input})
			continue
		}
		if n > maxCopyCount {
			ev.logger.Warn("copy count exceeds limit, clamping", "loop", d.name, "count", n)
			n = maxCopyCount
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			ev.copyStack = append(ev.copyStack, copyFrame{name: d.name, index: i})
			item, err := ev.walk(d.input, sc, lenient)
			ev.copyStack = ev.copyStack[:len(ev.copyStack)-1]
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		out[d.name] = items
	}
	if len(kept) > 0 {
		out["copy"] = kept
	}
	return nil
}

// toCount converts an evaluated copy count to an instance count.
func toCount(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < 0 {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// snapshotNames evaluates every resource's name and type ahead of the full
// walk so that reference() calls can resolve forward targets.
func (ev *evaluator) snapshotNames(arr []any, basePath string, frames map[string][]copyFrame) {
	for i, e := range arr {
		doc, ok := asObject(e)
		if !ok {
			continue
		}
		p := fmt.Sprintf("%s[%d]", basePath, i)
		ev.copyStack = frames[p]
		entry := resourceName{path: p}
		if name, ok := foldGet(doc, "name"); ok {
			if v, err := ev.walk(name, ev.scope, true); err == nil {
				entry.name, _ = v.(string)
			}
		}
		if typ, ok := foldGet(doc, "type"); ok {
			if v, err := ev.walk(typ, ev.scope, true); err == nil {
				entry.typ, _ = v.(string)
			}
		}
		ev.names = append(ev.names, entry)
		if _, children, ok := resourcesEntry(doc); ok {
			ev.snapshotNames(children, p+".resources", frames)
		}
	}
	ev.copyStack = nil
}

// evaluateResources walks each resource in place. Child resources arrays
// recurse with their own copy frames.
func (ev *evaluator) evaluateResources(arr []any, basePath string, frames map[string][]copyFrame) error {
	for i, e := range arr {
		doc, ok := asObject(e)
		if !ok {
			continue
		}
		p := fmt.Sprintf("%s[%d]", basePath, i)
		ev.copyStack = frames[p]
		for k, v := range doc {
			if strings.EqualFold(k, "resources") {
				continue
			}
			w, err := ev.walk(v, ev.scope, !ev.strict)
			if err != nil {
				return err
			}
			doc[k] = w
		}
		if key, children, ok := resourcesEntry(doc); ok {
			if err := ev.evaluateResources(children, p+".resources", frames); err != nil {
				return err
			}
			doc[key] = children
		}
	}
	ev.copyStack = nil
	return nil
}

// evaluateOutputs walks the outputs section, if any.
func (ev *evaluator) evaluateOutputs() error {
	raw, ok := foldGet(ev.doc, "outputs")
	if !ok {
		return nil
	}
	section, ok := asObject(raw)
	if !ok {
		return nil
	}
	ev.copyStack = nil
	out, err := ev.walkObject(section, ev.scope, !ev.strict)
	if err != nil {
		return err
	}
	for k := range ev.doc {
		if strings.EqualFold(k, "outputs") {
			ev.doc[k] = out
			break
		}
	}
	return nil
}

func (ev *evaluator) parameter(name string) (any, error) {
	lv := lookupLazy(ev.params, name)
	if lv == nil {
		return nil, fmt.Errorf("undeclared parameter %q", name)
	}
	return ev.evalLazy(lv, "parameter", name)
}

func (ev *evaluator) variable(name string) (any, error) {
	lv := lookupLazy(ev.vars, name)
	if lv == nil {
		return ev.variableFromCopy(name)
	}
	return ev.evalLazy(lv, "variable", name)
}

// variableFromCopy materializes a variable declared through a variables
// copy loop.
func (ev *evaluator) variableFromCopy(name string) (any, error) {
	for _, d := range ev.varCopies {
		if !strings.EqualFold(d.name, name) {
			continue
		}
		cv, err := ev.walk(d.count, ev.scope, !ev.strict)
		if err != nil {
			return nil, err
		}
		n, ok := toCount(cv)
		if !ok {
			return nil, fmt.Errorf("variable %q copy count is not statically resolvable", name)
		}
		if n > maxCopyCount {
			n = maxCopyCount
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			ev.copyStack = append(ev.copyStack, copyFrame{name: d.name, index: i})
			item, err := ev.walk(d.input, ev.scope, !ev.strict)
			ev.copyStack = ev.copyStack[:len(ev.copyStack)-1]
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		ev.vars[name] = &lazyValue{val: items, done: true}
		return items, nil
	}
	return nil, fmt.Errorf("undeclared variable %q", name)
}

func (ev *evaluator) evalLazy(lv *lazyValue, kind, name string) (any, error) {
	if lv.done {
		return lv.val, nil
	}
	if lv.busy {
		return nil, fmt.Errorf("%s %q references itself", kind, name)
	}
	lv.busy = true
	v, err := ev.walk(lv.raw, ev.scope, !ev.strict)
	lv.busy = false
	if err != nil {
		return nil, err
	}
	lv.val = v
	lv.done = true
	return v, nil
}

func lookupLazy(m map[string]*lazyValue, name string) *lazyValue {
	if lv, ok := m[name]; ok {
		return lv
	}
	bestKey := ""
	found := false
	for k := range m {
		if strings.EqualFold(k, name) && (!found || k < bestKey) {
			bestKey, found = k, true
		}
	}
	if !found {
		return nil
	}
	return m[bestKey]
}

// reference resolves reference() calls against the template's own
// resources. Values come from the live expanded tree, so resources already
// walked return evaluated properties.
func (ev *evaluator) reference(target string, full bool) (any, error) {
	tail := target
	if i := strings.LastIndex(target, "/"); i >= 0 {
		tail = target[i+1:]
	}
	for _, entry := range ev.names {
		if entry.name == "" {
			continue
		}
		if !strings.EqualFold(entry.name, target) && !strings.EqualFold(entry.name, tail) {
			continue
		}
		matches := jsonpath.Resolve(ev.doc, jsonpath.MustParse(entry.path))
		if len(matches) != 1 || matches[0].IsMissing() {
			break
		}
		doc, ok := asObject(matches[0].Value)
		if !ok {
			break
		}
		if full {
			return doc, nil
		}
		if props, ok := foldGet(doc, "properties"); ok {
			return props, nil
		}
		return map[string]any{}, nil
	}
	ev.logger.Warn("unknown reference target", "target", target)
	return nil, fmt.Errorf("unknown reference target %q", target)
}

func (ev *evaluator) userFunction(namespace, name string, args []any) (any, error) {
	members, ok := ev.functions[strings.ToLower(namespace)]
	if !ok {
		return nil, armexpr.NewErrUnknownFunction(namespace + "." + name)
	}
	fn, ok := members[strings.ToLower(name)]
	if !ok {
		return nil, armexpr.NewErrUnknownFunction(namespace + "." + name)
	}
	if len(args) != len(fn.paramNames) {
		return nil, fmt.Errorf("function %s.%s expects %d argument(s), got %d", namespace, name, len(fn.paramNames), len(args))
	}
	// user functions see only their own parameters
	sc := &armexpr.Scope{
		Parameter: func(pname string) (any, error) {
			for i, n := range fn.paramNames {
				if strings.EqualFold(n, pname) {
					return args[i], nil
				}
			}
			return nil, fmt.Errorf("unknown parameter %q in function %s.%s", pname, namespace, name)
		},
	}
	return ev.walk(fn.output, sc, false)
}

func (ev *evaluator) copyIndex(loop string, offset int) (int, error) {
	for i := len(ev.copyStack) - 1; i >= 0; i-- {
		f := ev.copyStack[i]
		if loop == "" || strings.EqualFold(f.name, loop) {
			return f.index + offset, nil
		}
	}
	if loop == "" {
		return 0, fmt.Errorf("copyIndex used outside of a copy loop")
	}
	return 0, fmt.Errorf("copyIndex refers to unknown loop %q", loop)
}

func (ev *evaluator) deploymentMetadata(args []any) (any, error) {
	if len(args) != 0 {
		return nil, armexpr.NewErrArgument("deployment", "expected no arguments")
	}
	stem := identifierStem(ev.identifier)
	return map[string]any{
		"name": stem,
		"properties": map[string]any{
			"templateLink": map[string]any{
				"uri": "https://localhost/" + stem + ".json",
			},
			"mode":              "Incremental",
			"provisioningState": "Accepted",
		},
	}, nil
}

func identifierStem(identifier string) string {
	base := filepath.Base(identifier)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return "template"
	}
	return base
}

// resourcesEntry returns the actual key and array of a resource's (or the
// template root's) child resources. The smallest matching key wins so
// behavior is deterministic if a document carries case-variant duplicates.
func resourcesEntry(obj map[string]any) (string, []any, bool) {
	bestKey := ""
	found := false
	for k := range obj {
		if strings.EqualFold(k, "resources") && (!found || k < bestKey) {
			bestKey, found = k, true
		}
	}
	if !found {
		return "", nil, false
	}
	arr, ok := asArray(obj[bestKey])
	if !ok {
		return "", nil, false
	}
	return bestKey, arr, true
}
