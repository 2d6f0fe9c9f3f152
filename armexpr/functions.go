// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armexpr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// builtinFunc evaluates one built-in template function over already
// evaluated arguments.
type builtinFunc func(scope *Scope, args []any) (any, error)

// builtins maps lowercase function names to implementations. ARM function
// names are case-insensitive. The if function is absent: it is evaluated
// lazily by the caller.
var builtins = map[string]builtinFunc{
	// numeric
	"add":   fnAdd,
	"sub":   fnSub,
	"mul":   fnMul,
	"div":   fnDiv,
	"mod":   fnMod,
	"min":   fnMin,
	"max":   fnMax,
	"int":   fnInt,
	"float": fnFloat,

	// logical
	"and":             fnAnd,
	"or":              fnOr,
	"not":             fnNot,
	"bool":            fnBool,
	"true":            fnTrue,
	"false":           fnFalse,
	"equals":          fnEquals,
	"greater":         fnGreater,
	"greaterorequals": fnGreaterOrEquals,
	"less":            fnLess,
	"lessorequals":    fnLessOrEquals,
	"coalesce":        fnCoalesce,

	// string
	"concat":               fnConcat,
	"contains":             fnContains,
	"empty":                fnEmpty,
	"endswith":             fnEndsWith,
	"startswith":           fnStartsWith,
	"first":                fnFirst,
	"last":                 fnLast,
	"format":               fnFormat,
	"guid":                 fnGUID,
	"newguid":              fnNewGUID,
	"indexof":              fnIndexOf,
	"join":                 fnJoin,
	"lastindexof":          fnLastIndexOf,
	"length":               fnLength,
	"padleft":              fnPadLeft,
	"replace":              fnReplace,
	"skip":                 fnSkip,
	"split":                fnSplit,
	"string":               fnString,
	"substring":            fnSubstring,
	"take":                 fnTake,
	"tolower":              fnToLower,
	"toupper":              fnToUpper,
	"trim":                 fnTrim,
	"uniquestring":         fnUniqueString,
	"uri":                  fnURI,
	"uricomponent":         fnURIComponent,
	"uricomponenttostring": fnURIComponentToString,
	"base64":               fnBase64,
	"base64tostring":       fnBase64ToString,
	"utcnow":               fnUTCNow,
	"json":                 fnJSON,

	// array and object
	"array":        fnArray,
	"createarray":  fnCreateArray,
	"createobject": fnCreateObject,
	"union":        fnUnion,
	"intersection": fnIntersection,
	"range":        fnRange,

	// deployment context
	"parameters":      fnParameters,
	"variables":       fnVariables,
	"deployment":      fnDeployment,
	"environment":     fnEnvironment,
	"managementgroup": fnManagementGroup,

	// resource
	"resourceid":             fnResourceID,
	"subscriptionresourceid": fnSubscriptionResourceID,
	"tenantresourceid":       fnTenantResourceID,
	"extensionresourceid":    fnExtensionResourceID,
	"resourcegroup":          fnResourceGroup,
	"subscription":           fnSubscription,
	"reference":              fnReference,
	"copyindex":              fnCopyIndex,
}

// placeholderLocation is the deterministic location used by the static
// deployment context.
const placeholderLocation = "westus2"

// utcNowPlaceholder keeps utcNow deterministic across analysis runs.
const utcNowPlaceholder = "2024-01-01T00:00:00Z"

func checkArgs(fn string, args []any, minArgs, maxArgs int) error {
	if len(args) < minArgs {
		return NewErrArgument(fn, fmt.Sprintf("expected at least %d argument(s), got %d", minArgs, len(args)))
	}
	if maxArgs >= 0 && len(args) > maxArgs {
		return NewErrArgument(fn, fmt.Sprintf("expected at most %d argument(s), got %d", maxArgs, len(args)))
	}
	return nil
}

func strArg(fn string, args []any, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", NewErrArgument(fn, fmt.Sprintf("argument %d must be a string, got %T", i+1, args[i]))
	}
	return s, nil
}

func numArg(fn string, args []any, i int) (float64, error) {
	f, ok := args[i].(float64)
	if !ok {
		return 0, NewErrArgument(fn, fmt.Sprintf("argument %d must be a number, got %T", i+1, args[i]))
	}
	return f, nil
}

func intArg(fn string, args []any, i int) (int, error) {
	f, err := numArg(fn, args, i)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, NewErrArgument(fn, fmt.Sprintf("argument %d must be an integer", i+1))
	}
	return int(f), nil
}

func boolArg(fn string, args []any, i int) (bool, error) {
	b, ok := args[i].(bool)
	if !ok {
		return false, NewErrArgument(fn, fmt.Sprintf("argument %d must be a boolean, got %T", i+1, args[i]))
	}
	return b, nil
}

// formatNumber renders a number the way ARM string conversion does, without
// a trailing fraction for whole values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toString converts a value for string building functions.
func toString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return formatNumber(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case nil:
		return "", fmt.Errorf("toString: cannot convert null to string")
	default:
		return "", fmt.Errorf("toString: cannot convert %T to string", v)
	}
}

// canonicalJSON renders a value to a canonical byte form for equality and
// set membership. Map keys marshal sorted, so equal objects compare equal.
func canonicalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%T", v)
	}
	return string(b)
}

// deterministicGUID derives a stable uuid v5 from its inputs.
func deterministicGUID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.Join(parts, "-"))).String()
}

func fnAdd(_ *Scope, args []any) (any, error) {
	return arith("add", args, func(a, b float64) (float64, error) { return a + b, nil })
}

func fnSub(_ *Scope, args []any) (any, error) {
	return arith("sub", args, func(a, b float64) (float64, error) { return a - b, nil })
}

func fnMul(_ *Scope, args []any) (any, error) {
	return arith("mul", args, func(a, b float64) (float64, error) { return a * b, nil })
}

func fnDiv(_ *Scope, args []any) (any, error) {
	return arith("div", args, func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, NewErrArgument("div", "division by zero")
		}
		return math.Trunc(a / b), nil
	})
}

func fnMod(_ *Scope, args []any) (any, error) {
	return arith("mod", args, func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, NewErrArgument("mod", "division by zero")
		}
		return math.Mod(a, b), nil
	})
}

func arith(fn string, args []any, op func(a, b float64) (float64, error)) (any, error) {
	if err := checkArgs(fn, args, 2, 2); err != nil {
		return nil, err
	}
	a, err := numArg(fn, args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numArg(fn, args, 1)
	if err != nil {
		return nil, err
	}
	return op(a, b)
}

func fnMin(_ *Scope, args []any) (any, error) {
	return extremum("min", args, func(best, next float64) bool { return next < best })
}

func fnMax(_ *Scope, args []any) (any, error) {
	return extremum("max", args, func(best, next float64) bool { return next > best })
}

func extremum(fn string, args []any, better func(best, next float64) bool) (any, error) {
	if err := checkArgs(fn, args, 1, -1); err != nil {
		return nil, err
	}
	// a single array argument is the n-ary form
	if arr, ok := args[0].([]any); ok && len(args) == 1 {
		args = arr
	}
	best, err := numArg(fn, args, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(args); i++ {
		next, err := numArg(fn, args, i)
		if err != nil {
			return nil, err
		}
		if better(best, next) {
			best = next
		}
	}
	return best, nil
}

func fnInt(_ *Scope, args []any) (any, error) {
	if err := checkArgs("int", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case float64:
		if t != math.Trunc(t) {
			return nil, NewErrArgument("int", "value has a fractional part")
		}
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || f != math.Trunc(f) {
			return nil, NewErrArgument("int", fmt.Sprintf("cannot convert %q to an integer", t))
		}
		return f, nil
	default:
		return nil, NewErrArgument("int", fmt.Sprintf("cannot convert %T to an integer", args[0]))
	}
}

func fnFloat(_ *Scope, args []any) (any, error) {
	if err := checkArgs("float", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, NewErrArgument("float", fmt.Sprintf("cannot convert %q to a float", t))
		}
		return f, nil
	default:
		return nil, NewErrArgument("float", fmt.Sprintf("cannot convert %T to a float", args[0]))
	}
}

func fnAnd(_ *Scope, args []any) (any, error) {
	if err := checkArgs("and", args, 2, -1); err != nil {
		return nil, err
	}
	for i := range args {
		b, err := boolArg("and", args, i)
		if err != nil {
			return nil, err
		}
		if !b {
			return false, nil
		}
	}
	return true, nil
}

func fnOr(_ *Scope, args []any) (any, error) {
	if err := checkArgs("or", args, 2, -1); err != nil {
		return nil, err
	}
	for i := range args {
		b, err := boolArg("or", args, i)
		if err != nil {
			return nil, err
		}
		if b {
			return true, nil
		}
	}
	return false, nil
}

func fnNot(_ *Scope, args []any) (any, error) {
	if err := checkArgs("not", args, 1, 1); err != nil {
		return nil, err
	}
	b, err := boolArg("not", args, 0)
	if err != nil {
		return nil, err
	}
	return !b, nil
}

func fnBool(_ *Scope, args []any) (any, error) {
	if err := checkArgs("bool", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(t) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, NewErrArgument("bool", fmt.Sprintf("cannot convert %q to a boolean", t))
	default:
		return nil, NewErrArgument("bool", fmt.Sprintf("cannot convert %T to a boolean", args[0]))
	}
}

func fnTrue(_ *Scope, args []any) (any, error) {
	if err := checkArgs("true", args, 0, 0); err != nil {
		return nil, err
	}
	return true, nil
}

func fnFalse(_ *Scope, args []any) (any, error) {
	if err := checkArgs("false", args, 0, 0); err != nil {
		return nil, err
	}
	return false, nil
}

func fnEquals(_ *Scope, args []any) (any, error) {
	if err := checkArgs("equals", args, 2, 2); err != nil {
		return nil, err
	}
	return canonicalJSON(args[0]) == canonicalJSON(args[1]), nil
}

func fnGreater(_ *Scope, args []any) (any, error) {
	return compare("greater", args, func(a, b float64) bool { return a > b })
}

func fnGreaterOrEquals(_ *Scope, args []any) (any, error) {
	return compare("greaterOrEquals", args, func(a, b float64) bool { return a >= b })
}

func fnLess(_ *Scope, args []any) (any, error) {
	return compare("less", args, func(a, b float64) bool { return a < b })
}

func fnLessOrEquals(_ *Scope, args []any) (any, error) {
	return compare("lessOrEquals", args, func(a, b float64) bool { return a <= b })
}

func compare(fn string, args []any, op func(a, b float64) bool) (any, error) {
	if err := checkArgs(fn, args, 2, 2); err != nil {
		return nil, err
	}
	if as, aok := args[0].(string); aok {
		bs, bok := args[1].(string)
		if !bok {
			return nil, NewErrArgument(fn, "cannot compare a string with a non-string")
		}
		// string comparison is ordinal
		switch {
		case as < bs:
			return op(0, 1), nil
		case as > bs:
			return op(1, 0), nil
		default:
			return op(0, 0), nil
		}
	}
	a, err := numArg(fn, args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numArg(fn, args, 1)
	if err != nil {
		return nil, err
	}
	return op(a, b), nil
}

func fnCoalesce(_ *Scope, args []any) (any, error) {
	if err := checkArgs("coalesce", args, 1, -1); err != nil {
		return nil, err
	}
	for _, a := range args {
		if a != nil {
			return a, nil
		}
	}
	return nil, nil
}

func fnConcat(_ *Scope, args []any) (any, error) {
	if err := checkArgs("concat", args, 1, -1); err != nil {
		return nil, err
	}
	if _, ok := args[0].([]any); ok {
		var out []any
		for i, a := range args {
			arr, ok := a.([]any)
			if !ok {
				return nil, NewErrArgument("concat", fmt.Sprintf("argument %d is not an array", i+1))
			}
			out = append(out, arr...)
		}
		return out, nil
	}
	var sb strings.Builder
	for _, a := range args {
		s, err := toString(a)
		if err != nil {
			return nil, NewErrArgument("concat", err.Error())
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func fnContains(_ *Scope, args []any) (any, error) {
	if err := checkArgs("contains", args, 2, 2); err != nil {
		return nil, err
	}
	switch container := args[0].(type) {
	case string:
		item, err := strArg("contains", args, 1)
		if err != nil {
			return nil, err
		}
		return strings.Contains(strings.ToLower(container), strings.ToLower(item)), nil
	case []any:
		want := canonicalJSON(args[1])
		for _, e := range container {
			if canonicalJSON(e) == want {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		key, err := strArg("contains", args, 1)
		if err != nil {
			return nil, err
		}
		for k := range container {
			if strings.EqualFold(k, key) {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, NewErrArgument("contains", fmt.Sprintf("argument 1 must be a string, array or object, got %T", args[0]))
	}
}

func fnEmpty(_ *Scope, args []any) (any, error) {
	if err := checkArgs("empty", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case nil:
		return true, nil
	case string:
		return t == "", nil
	case []any:
		return len(t) == 0, nil
	case map[string]any:
		return len(t) == 0, nil
	default:
		return false, nil
	}
}

func fnEndsWith(_ *Scope, args []any) (any, error) {
	return affix("endsWith", args, strings.HasSuffix)
}

func fnStartsWith(_ *Scope, args []any) (any, error) {
	return affix("startsWith", args, strings.HasPrefix)
}

func affix(fn string, args []any, match func(s, affix string) bool) (any, error) {
	if err := checkArgs(fn, args, 2, 2); err != nil {
		return nil, err
	}
	s, err := strArg(fn, args, 0)
	if err != nil {
		return nil, err
	}
	a, err := strArg(fn, args, 1)
	if err != nil {
		return nil, err
	}
	return match(strings.ToLower(s), strings.ToLower(a)), nil
}

func fnFirst(_ *Scope, args []any) (any, error) {
	if err := checkArgs("first", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case string:
		if t == "" {
			return "", nil
		}
		return t[:1], nil
	case []any:
		if len(t) == 0 {
			return nil, nil
		}
		return t[0], nil
	default:
		return nil, NewErrArgument("first", fmt.Sprintf("argument must be a string or array, got %T", args[0]))
	}
}

func fnLast(_ *Scope, args []any) (any, error) {
	if err := checkArgs("last", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case string:
		if t == "" {
			return "", nil
		}
		return t[len(t)-1:], nil
	case []any:
		if len(t) == 0 {
			return nil, nil
		}
		return t[len(t)-1], nil
	default:
		return nil, NewErrArgument("last", fmt.Sprintf("argument must be a string or array, got %T", args[0]))
	}
}

// formatPlaceholder matches {n} tokens of composite format strings.
var formatPlaceholder = regexp.MustCompile(`\{(\d+)\}`)

func fnFormat(_ *Scope, args []any) (any, error) {
	if err := checkArgs("format", args, 1, -1); err != nil {
		return nil, err
	}
	layout, err := strArg("format", args, 0)
	if err != nil {
		return nil, err
	}
	var failure error
	out := formatPlaceholder.ReplaceAllStringFunc(layout, func(tok string) string {
		idx, err := strconv.Atoi(tok[1 : len(tok)-1])
		if err != nil || idx+1 >= len(args) {
			failure = NewErrArgument("format", fmt.Sprintf("placeholder %s has no matching argument", tok))
			return tok
		}
		s, err := toString(args[idx+1])
		if err != nil {
			failure = NewErrArgument("format", err.Error())
			return tok
		}
		return s
	})
	if failure != nil {
		return nil, failure
	}
	return strings.ReplaceAll(strings.ReplaceAll(out, "{{", "{"), "}}", "}"), nil
}

func fnGUID(_ *Scope, args []any) (any, error) {
	if err := checkArgs("guid", args, 1, -1); err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(args))
	for i := range args {
		s, err := strArg("guid", args, i)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return deterministicGUID(parts...), nil
}

func fnNewGUID(_ *Scope, args []any) (any, error) {
	if err := checkArgs("newGuid", args, 0, 0); err != nil {
		return nil, err
	}
	// random at deployment time; derived here so analysis stays reproducible
	return deterministicGUID("newGuid"), nil
}

func fnJoin(_ *Scope, args []any) (any, error) {
	if err := checkArgs("join", args, 2, 2); err != nil {
		return nil, err
	}
	arr, ok := args[0].([]any)
	if !ok {
		return nil, NewErrArgument("join", fmt.Sprintf("argument 1 must be an array, got %T", args[0]))
	}
	delim, err := strArg("join", args, 1)
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, NewErrArgument("join", fmt.Sprintf("element %d is not a string", i))
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, delim), nil
}

func fnIndexOf(_ *Scope, args []any) (any, error) {
	return indexOf("indexOf", args, strings.Index)
}

func fnLastIndexOf(_ *Scope, args []any) (any, error) {
	return indexOf("lastIndexOf", args, strings.LastIndex)
}

func indexOf(fn string, args []any, find func(s, sub string) int) (any, error) {
	if err := checkArgs(fn, args, 2, 2); err != nil {
		return nil, err
	}
	s, err := strArg(fn, args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := strArg(fn, args, 1)
	if err != nil {
		return nil, err
	}
	return float64(find(strings.ToLower(s), strings.ToLower(sub))), nil
}

func fnLength(_ *Scope, args []any) (any, error) {
	if err := checkArgs("length", args, 1, 1); err != nil {
		return nil, err
	}
	switch t := args[0].(type) {
	case string:
		return float64(len(t)), nil
	case []any:
		return float64(len(t)), nil
	case map[string]any:
		return float64(len(t)), nil
	default:
		return nil, NewErrArgument("length", fmt.Sprintf("argument must be a string, array or object, got %T", args[0]))
	}
}

func fnPadLeft(_ *Scope, args []any) (any, error) {
	if err := checkArgs("padLeft", args, 2, 3); err != nil {
		return nil, err
	}
	value, err := toString(args[0])
	if err != nil {
		return nil, NewErrArgument("padLeft", err.Error())
	}
	width, err := intArg("padLeft", args, 1)
	if err != nil {
		return nil, err
	}
	pad := " "
	if len(args) == 3 {
		pad, err = strArg("padLeft", args, 2)
		if err != nil {
			return nil, err
		}
		if len(pad) != 1 {
			return nil, NewErrArgument("padLeft", "padding character must be a single character")
		}
	}
	for len(value) < width {
		value = pad + value
	}
	return value, nil
}

func fnReplace(_ *Scope, args []any) (any, error) {
	if err := checkArgs("replace", args, 3, 3); err != nil {
		return nil, err
	}
	s, err := strArg("replace", args, 0)
	if err != nil {
		return nil, err
	}
	old, err := strArg("replace", args, 1)
	if err != nil {
		return nil, err
	}
	newS, err := strArg("replace", args, 2)
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(s, old, newS), nil
}

func fnSkip(_ *Scope, args []any) (any, error) {
	if err := checkArgs("skip", args, 2, 2); err != nil {
		return nil, err
	}
	n, err := intArg("skip", args, 1)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	switch t := args[0].(type) {
	case string:
		if n > len(t) {
			return "", nil
		}
		return t[n:], nil
	case []any:
		if n > len(t) {
			return []any{}, nil
		}
		return t[n:], nil
	default:
		return nil, NewErrArgument("skip", fmt.Sprintf("argument must be a string or array, got %T", args[0]))
	}
}

func fnTake(_ *Scope, args []any) (any, error) {
	if err := checkArgs("take", args, 2, 2); err != nil {
		return nil, err
	}
	n, err := intArg("take", args, 1)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	switch t := args[0].(type) {
	case string:
		if n > len(t) {
			n = len(t)
		}
		return t[:n], nil
	case []any:
		if n > len(t) {
			n = len(t)
		}
		return t[:n], nil
	default:
		return nil, NewErrArgument("take", fmt.Sprintf("argument must be a string or array, got %T", args[0]))
	}
}

func fnSplit(_ *Scope, args []any) (any, error) {
	if err := checkArgs("split", args, 2, 2); err != nil {
		return nil, err
	}
	s, err := strArg("split", args, 0)
	if err != nil {
		return nil, err
	}
	var delims []string
	switch d := args[1].(type) {
	case string:
		delims = []string{d}
	case []any:
		for i, e := range d {
			ds, ok := e.(string)
			if !ok {
				return nil, NewErrArgument("split", fmt.Sprintf("delimiter %d is not a string", i+1))
			}
			delims = append(delims, ds)
		}
	default:
		return nil, NewErrArgument("split", "argument 2 must be a string or array of strings")
	}
	if len(delims) == 0 {
		return []any{s}, nil
	}
	// normalize every delimiter to the first, then split once
	norm := s
	for _, d := range delims[1:] {
		if d != "" {
			norm = strings.ReplaceAll(norm, d, delims[0])
		}
	}
	parts := strings.Split(norm, delims[0])
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, p)
	}
	return out, nil
}

func fnString(_ *Scope, args []any) (any, error) {
	if err := checkArgs("string", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := toString(args[0])
	if err != nil {
		return nil, NewErrArgument("string", err.Error())
	}
	return s, nil
}

func fnSubstring(_ *Scope, args []any) (any, error) {
	if err := checkArgs("substring", args, 2, 3); err != nil {
		return nil, err
	}
	s, err := strArg("substring", args, 0)
	if err != nil {
		return nil, err
	}
	start, err := intArg("substring", args, 1)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > len(s) {
		return nil, NewErrArgument("substring", "start index out of range")
	}
	if len(args) == 2 {
		return s[start:], nil
	}
	length, err := intArg("substring", args, 2)
	if err != nil {
		return nil, err
	}
	if length < 0 || start+length > len(s) {
		return nil, NewErrArgument("substring", "length out of range")
	}
	return s[start : start+length], nil
}

func fnToLower(_ *Scope, args []any) (any, error) {
	if err := checkArgs("toLower", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("toLower", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToLower(s), nil
}

func fnToUpper(_ *Scope, args []any) (any, error) {
	if err := checkArgs("toUpper", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("toUpper", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

func fnTrim(_ *Scope, args []any) (any, error) {
	if err := checkArgs("trim", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("trim", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

// uniqueStringAlphabet matches the lowercase base32 character set ARM uses
// for uniqueString results.
const uniqueStringAlphabet = "abcdefghijklmnopqrstuvwxyz234567"

func fnUniqueString(_ *Scope, args []any) (any, error) {
	if err := checkArgs("uniqueString", args, 1, -1); err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(args))
	for i := range args {
		s, err := strArg("uniqueString", args, i)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "-")))
	sum := h.Sum64()
	var sb strings.Builder
	for i := 0; i < 13; i++ {
		sb.WriteByte(uniqueStringAlphabet[sum&31])
		sum >>= 5
	}
	return sb.String(), nil
}

func fnURI(_ *Scope, args []any) (any, error) {
	if err := checkArgs("uri", args, 2, 2); err != nil {
		return nil, err
	}
	base, err := strArg("uri", args, 0)
	if err != nil {
		return nil, err
	}
	rel, err := strArg("uri", args, 1)
	if err != nil {
		return nil, err
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, NewErrArgument("uri", fmt.Sprintf("invalid base uri: %v", err))
	}
	relURL, err := url.Parse(rel)
	if err != nil {
		return nil, NewErrArgument("uri", fmt.Sprintf("invalid relative uri: %v", err))
	}
	return baseURL.ResolveReference(relURL).String(), nil
}

func fnURIComponent(_ *Scope, args []any) (any, error) {
	if err := checkArgs("uriComponent", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("uriComponent", args, 0)
	if err != nil {
		return nil, err
	}
	return url.QueryEscape(s), nil
}

func fnURIComponentToString(_ *Scope, args []any) (any, error) {
	if err := checkArgs("uriComponentToString", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("uriComponentToString", args, 0)
	if err != nil {
		return nil, err
	}
	out, err := url.QueryUnescape(s)
	if err != nil {
		return nil, NewErrArgument("uriComponentToString", err.Error())
	}
	return out, nil
}

func fnBase64(_ *Scope, args []any) (any, error) {
	if err := checkArgs("base64", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("base64", args, 0)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString([]byte(s)), nil
}

func fnBase64ToString(_ *Scope, args []any) (any, error) {
	if err := checkArgs("base64ToString", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("base64ToString", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, NewErrArgument("base64ToString", err.Error())
	}
	return string(b), nil
}

func fnUTCNow(_ *Scope, args []any) (any, error) {
	if err := checkArgs("utcNow", args, 0, 1); err != nil {
		return nil, err
	}
	// fixed timestamp: analysis results must not depend on the wall clock
	return utcNowPlaceholder, nil
}

func fnJSON(_ *Scope, args []any) (any, error) {
	if err := checkArgs("json", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := strArg("json", args, 0)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, NewErrArgument("json", err.Error())
	}
	return out, nil
}

func fnArray(_ *Scope, args []any) (any, error) {
	if err := checkArgs("array", args, 1, 1); err != nil {
		return nil, err
	}
	if arr, ok := args[0].([]any); ok {
		return arr, nil
	}
	return []any{args[0]}, nil
}

func fnCreateArray(_ *Scope, args []any) (any, error) {
	out := make([]any, len(args))
	copy(out, args)
	return out, nil
}

func fnCreateObject(_ *Scope, args []any) (any, error) {
	if len(args)%2 != 0 {
		return nil, NewErrArgument("createObject", "expected an even number of arguments")
	}
	out := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, err := strArg("createObject", args, i)
		if err != nil {
			return nil, err
		}
		out[key] = args[i+1]
	}
	return out, nil
}

func fnUnion(_ *Scope, args []any) (any, error) {
	if err := checkArgs("union", args, 2, -1); err != nil {
		return nil, err
	}
	if _, ok := args[0].(map[string]any); ok {
		out := make(map[string]any)
		for i, a := range args {
			obj, ok := a.(map[string]any)
			if !ok {
				return nil, NewErrArgument("union", fmt.Sprintf("argument %d is not an object", i+1))
			}
			for k, v := range obj {
				out[k] = v
			}
		}
		return out, nil
	}
	var out []any
	seen := map[string]struct{}{}
	for i, a := range args {
		arr, ok := a.([]any)
		if !ok {
			return nil, NewErrArgument("union", fmt.Sprintf("argument %d is not an array", i+1))
		}
		for _, e := range arr {
			key := canonicalJSON(e)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	return out, nil
}

func fnIntersection(_ *Scope, args []any) (any, error) {
	if err := checkArgs("intersection", args, 2, -1); err != nil {
		return nil, err
	}
	if _, ok := args[0].(map[string]any); ok {
		first, _ := args[0].(map[string]any)
		out := make(map[string]any)
		for k, v := range first {
			inAll := true
			for _, a := range args[1:] {
				obj, ok := a.(map[string]any)
				if !ok {
					return nil, NewErrArgument("intersection", "arguments must all be objects")
				}
				other, present := obj[k]
				if !present || canonicalJSON(other) != canonicalJSON(v) {
					inAll = false
					break
				}
			}
			if inAll {
				out[k] = v
			}
		}
		return out, nil
	}
	first, ok := args[0].([]any)
	if !ok {
		return nil, NewErrArgument("intersection", "arguments must all be arrays or all be objects")
	}
	out := []any{}
	for _, e := range first {
		key := canonicalJSON(e)
		inAll := true
		for _, a := range args[1:] {
			arr, ok := a.([]any)
			if !ok {
				return nil, NewErrArgument("intersection", "arguments must all be arrays or all be objects")
			}
			found := false
			for _, o := range arr {
				if canonicalJSON(o) == key {
					found = true
					break
				}
			}
			if !found {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, e)
		}
	}
	return out, nil
}

func fnRange(_ *Scope, args []any) (any, error) {
	if err := checkArgs("range", args, 2, 2); err != nil {
		return nil, err
	}
	start, err := intArg("range", args, 0)
	if err != nil {
		return nil, err
	}
	count, err := intArg("range", args, 1)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > 10000 {
		return nil, NewErrArgument("range", "count must be between 0 and 10000")
	}
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, float64(start+i))
	}
	return out, nil
}

func fnParameters(scope *Scope, args []any) (any, error) {
	if err := checkArgs("parameters", args, 1, 1); err != nil {
		return nil, err
	}
	name, err := strArg("parameters", args, 0)
	if err != nil {
		return nil, err
	}
	return scope.parameter(name)
}

func fnVariables(scope *Scope, args []any) (any, error) {
	if err := checkArgs("variables", args, 1, 1); err != nil {
		return nil, err
	}
	name, err := strArg("variables", args, 0)
	if err != nil {
		return nil, err
	}
	return scope.variable(name)
}

func fnDeployment(_ *Scope, args []any) (any, error) {
	if err := checkArgs("deployment", args, 0, 0); err != nil {
		return nil, err
	}
	return map[string]any{
		"name": "placeholder-deployment",
		"properties": map[string]any{
			"templateLink": map[string]any{
				"uri": "https://localhost/placeholder-deployment.json",
			},
			"mode":              "Incremental",
			"provisioningState": "Accepted",
		},
	}, nil
}

func fnEnvironment(_ *Scope, args []any) (any, error) {
	if err := checkArgs("environment", args, 0, 0); err != nil {
		return nil, err
	}
	return map[string]any{
		"name":            "AzureCloud",
		"gallery":         "https://gallery.azure.com/",
		"graph":           "https://graph.windows.net/",
		"portal":          "https://portal.azure.com",
		"resourceManager": "https://management.azure.com/",
		"authentication": map[string]any{
			"loginEndpoint": "https://login.microsoftonline.com/",
			"audiences": []any{
				"https://management.core.windows.net/",
				"https://management.azure.com/",
			},
			"tenant":           "common",
			"identityProvider": "AAD",
		},
		"suffixes": map[string]any{
			"keyvaultDns":       ".vault.azure.net",
			"storage":           "core.windows.net",
			"sqlServerHostname": ".database.windows.net",
		},
	}, nil
}

func fnManagementGroup(_ *Scope, args []any) (any, error) {
	if err := checkArgs("managementGroup", args, 0, 0); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":   "/providers/Microsoft.Management/managementGroups/placeholder-mg",
		"name": "placeholder-mg",
		"type": "Microsoft.Management/managementGroups",
		"properties": map[string]any{
			"displayName": "Placeholder Management Group",
			"tenantId":    deterministicGUID("tenantId"),
		},
	}, nil
}

func fnResourceGroup(_ *Scope, args []any) (any, error) {
	if err := checkArgs("resourceGroup", args, 0, 0); err != nil {
		return nil, err
	}
	sub := deterministicGUID("subscriptionId")
	return map[string]any{
		"id":         fmt.Sprintf("/subscriptions/%s/resourceGroups/placeholder-rg", sub),
		"name":       "placeholder-rg",
		"type":       "Microsoft.Resources/resourceGroups",
		"location":   placeholderLocation,
		"properties": map[string]any{"provisioningState": "Succeeded"},
		"tags":       map[string]any{},
	}, nil
}

func fnSubscription(_ *Scope, args []any) (any, error) {
	if err := checkArgs("subscription", args, 0, 0); err != nil {
		return nil, err
	}
	sub := deterministicGUID("subscriptionId")
	return map[string]any{
		"id":             fmt.Sprintf("/subscriptions/%s", sub),
		"subscriptionId": sub,
		"tenantId":       deterministicGUID("tenantId"),
		"displayName":    "Placeholder Subscription",
	}, nil
}

func fnResourceID(_ *Scope, args []any) (any, error) {
	return buildResourceID("resourceId", args, true, true)
}

func fnSubscriptionResourceID(_ *Scope, args []any) (any, error) {
	return buildResourceID("subscriptionResourceId", args, true, false)
}

func fnTenantResourceID(_ *Scope, args []any) (any, error) {
	return buildResourceID("tenantResourceId", args, false, false)
}

func fnExtensionResourceID(_ *Scope, args []any) (any, error) {
	if err := checkArgs("extensionResourceId", args, 3, -1); err != nil {
		return nil, err
	}
	base, err := strArg("extensionResourceId", args, 0)
	if err != nil {
		return nil, err
	}
	suffix, err := buildResourceID("extensionResourceId", args[1:], false, false)
	if err != nil {
		return nil, err
	}
	return base + suffix.(string), nil
}

// buildResourceID assembles a fully qualified resource id. The id may carry
// a subscription segment and a resource group segment; when allowed and not
// supplied, deterministic placeholders are used.
func buildResourceID(fn string, args []any, withSubscription, withResourceGroup bool) (any, error) {
	if err := checkArgs(fn, args, 1, -1); err != nil {
		return nil, err
	}
	strs := make([]string, len(args))
	for i := range args {
		s, err := strArg(fn, args, i)
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}
	typeIdx := -1
	for i, s := range strs {
		if strings.Contains(s, "/") {
			typeIdx = i
			break
		}
	}
	if typeIdx < 0 {
		return nil, NewErrArgument(fn, "no resource type argument found")
	}
	sub := deterministicGUID("subscriptionId")
	rg := "placeholder-rg"
	switch typeIdx {
	case 0:
		// no scope overrides
	case 1:
		if !withResourceGroup && !withSubscription {
			return nil, NewErrArgument(fn, "unexpected scope argument")
		}
		if withResourceGroup {
			rg = strs[0]
		} else {
			sub = strs[0]
		}
	case 2:
		if !withSubscription || !withResourceGroup {
			return nil, NewErrArgument(fn, "too many scope arguments")
		}
		sub = strs[0]
		rg = strs[1]
	default:
		return nil, NewErrArgument(fn, "too many scope arguments")
	}
	typeParts := strings.Split(strs[typeIdx], "/")
	names := strs[typeIdx+1:]
	if len(typeParts) < 2 || len(names) != len(typeParts)-1 {
		return nil, NewErrArgument(fn, "resource type and name segments do not line up")
	}
	var sb strings.Builder
	if withSubscription {
		sb.WriteString("/subscriptions/")
		sb.WriteString(sub)
	}
	if withResourceGroup {
		sb.WriteString("/resourceGroups/")
		sb.WriteString(rg)
	}
	sb.WriteString("/providers/")
	sb.WriteString(typeParts[0])
	for i, name := range names {
		sb.WriteString("/")
		sb.WriteString(typeParts[i+1])
		sb.WriteString("/")
		sb.WriteString(name)
	}
	return sb.String(), nil
}

func fnReference(scope *Scope, args []any) (any, error) {
	if err := checkArgs("reference", args, 1, 3); err != nil {
		return nil, err
	}
	target, err := strArg("reference", args, 0)
	if err != nil {
		return nil, err
	}
	full := false
	if len(args) == 3 {
		mode, err := strArg("reference", args, 2)
		if err != nil {
			return nil, err
		}
		full = strings.EqualFold(mode, "Full")
	}
	return scope.reference(target, full)
}

func fnCopyIndex(scope *Scope, args []any) (any, error) {
	if err := checkArgs("copyIndex", args, 0, 2); err != nil {
		return nil, err
	}
	loopName := ""
	offset := 0
	switch len(args) {
	case 1:
		switch t := args[0].(type) {
		case string:
			loopName = t
		case float64:
			o, err := intArg("copyIndex", args, 0)
			if err != nil {
				return nil, err
			}
			offset = o
		default:
			return nil, NewErrArgument("copyIndex", "argument must be a loop name or offset")
		}
	case 2:
		name, err := strArg("copyIndex", args, 0)
		if err != nil {
			return nil, err
		}
		o, err := intArg("copyIndex", args, 1)
		if err != nil {
			return nil, err
		}
		loopName = name
		offset = o
	}
	idx, err := scope.copyIndex(loopName, offset)
	if err != nil {
		return nil, err
	}
	return float64(idx), nil
}
