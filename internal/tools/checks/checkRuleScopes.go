// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Azure/armlint/internal/tools/checker"
	"github.com/Azure/armlint/rules"
)

// resourceTypePattern matches fully qualified ARM resource types, e.g.
// `Microsoft.Web/sites` or `Microsoft.Sql/servers/databases`.
var resourceTypePattern = regexp.MustCompile(`^[A-Za-z0-9]+(\.[A-Za-z0-9]+)+(/[A-Za-z0-9]+)+$`)

// CheckRuleScopes verifies that every rule narrows evaluation to at least one
// resource type and that every declared resource type is well formed. A rule
// without any resource type scope evaluates against the whole template
// document, which is almost always an authoring mistake in a published
// library.
func CheckRuleScopes(catalog rules.Catalog) checker.ValidatorCheck {
	return checker.NewValidatorCheck(
		"Rule scoping",
		func() error {
			return checkRuleScopes(catalog)
		},
	)
}

func checkRuleScopes(catalog rules.Catalog) error {
	var unscoped, malformed []string
	for _, r := range catalog {
		types := scopedResourceTypes(r.Evaluation)
		if len(types) == 0 {
			unscoped = append(unscoped, r.ID)
			continue
		}
		for _, rt := range types {
			if !resourceTypePattern.MatchString(rt) {
				malformed = append(malformed, fmt.Sprintf("%s (`%s`)", r.ID, rt))
			}
		}
	}
	if len(unscoped) > 0 {
		return fmt.Errorf("checkRuleScopes: %w: %s", ErrUnscopedRule, strings.Join(unscoped, ", "))
	}
	if len(malformed) > 0 {
		return fmt.Errorf("checkRuleScopes: %w: %s", ErrInvalidResourceType, strings.Join(malformed, ", "))
	}
	return nil
}

// scopedResourceTypes collects every resource type declared by scope nodes in
// the expression tree, where clauses included.
func scopedResourceTypes(e rules.Expression) []string {
	var types []string
	switch t := e.(type) {
	case *rules.ScopedExpression:
		if t.ResourceType != "" {
			types = append(types, t.ResourceType)
		}
		if t.Where != nil {
			types = append(types, scopedResourceTypes(t.Where)...)
		}
		types = append(types, scopedResourceTypes(t.Body)...)
	case *rules.AllOfExpression:
		for _, c := range t.Children {
			types = append(types, scopedResourceTypes(c)...)
		}
	case *rules.AnyOfExpression:
		for _, c := range t.Children {
			types = append(types, scopedResourceTypes(c)...)
		}
	case *rules.NotExpression:
		types = append(types, scopedResourceTypes(t.Child)...)
	}
	return types
}
