// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Azure/armlint/jsonpath"
)

// Operator identifies a leaf predicate. The string value is the JSON property
// name the operator is authored with.
type Operator string

const (
	OpEquals          Operator = "equals"
	OpNotEquals       Operator = "notEquals"
	OpHasValue        Operator = "hasValue"
	OpExists          Operator = "exists"
	OpIn              Operator = "in"
	OpRegex           Operator = "regex"
	OpGreater         Operator = "greater"
	OpGreaterOrEquals Operator = "greaterOrEquals"
	OpLess            Operator = "less"
	OpLessOrEquals    Operator = "lessOrEquals"
)

// allOperators lists every leaf operator in a fixed order.
var allOperators = []Operator{
	OpEquals,
	OpNotEquals,
	OpHasValue,
	OpExists,
	OpIn,
	OpRegex,
	OpGreater,
	OpGreaterOrEquals,
	OpLess,
	OpLessOrEquals,
}

// Valid reports whether o is a defined operator.
func (o Operator) Valid() bool {
	for _, op := range allOperators {
		if o == op {
			return true
		}
	}
	return false
}

// apply evaluates the leaf's predicate against a resolved value. The value
// may be the jsonpath.Missing sentinel.
func (l *LeafExpression) apply(actual any) bool {
	switch l.Operator {
	case OpEquals:
		return deepEquals(actual, l.Operand)
	case OpNotEquals:
		return !deepEquals(actual, l.Operand)
	case OpHasValue:
		want, _ := l.Operand.(bool)
		return hasValue(actual) == want
	case OpExists:
		want, _ := l.Operand.(bool)
		return !jsonpath.IsMissing(actual) == want
	case OpIn:
		members, _ := l.Operand.([]any)
		for _, m := range members {
			if deepEquals(actual, m) {
				return true
			}
		}
		return false
	case OpRegex:
		s, ok := stringifyScalar(actual)
		return ok && l.regex.MatchString(s)
	case OpGreater, OpGreaterOrEquals, OpLess, OpLessOrEquals:
		a, aok := toNumber(actual)
		b, bok := toNumber(l.Operand)
		if !aok || !bok {
			return false
		}
		switch l.Operator {
		case OpGreater:
			return a > b
		case OpGreaterOrEquals:
			return a >= b
		case OpLess:
			return a < b
		default:
			return a <= b
		}
	default:
		return false
	}
}

// deepEquals implements rule equality: deep structural comparison with
// case-insensitive strings and numeric equality across number forms. The
// missing sentinel never equals anything, which also makes notEquals hold
// for missing values.
func deepEquals(a, b any) bool {
	if jsonpath.IsMissing(a) || jsonpath.IsMissing(b) {
		return false
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && strings.EqualFold(av, bv)
	case float64, json.Number:
		an, _ := toNumber(a)
		bn, ok := toNumber(b)
		return ok && an == bn
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEquals(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEquals(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// hasValue reports whether v is present and carries a usable value. Null,
// empty strings, empty arrays and empty objects all count as "no value".
func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return !jsonpath.IsMissing(v)
	}
}

// stringifyScalar renders a scalar JSON value for regex matching. Arrays,
// objects, nulls and missing values do not stringify.
func stringifyScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// toNumber coerces the numeric forms JSON decoding can produce.
func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
