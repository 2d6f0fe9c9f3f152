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

// ruleIDPattern is the naming scheme of published rule ids.
var ruleIDPattern = regexp.MustCompile(`^TA-\d{6}$`)

// CheckRuleIDs verifies that every rule id follows the `TA-` naming scheme.
func CheckRuleIDs(catalog rules.Catalog) checker.ValidatorCheck {
	return checker.NewValidatorCheck(
		"Rule id format",
		func() error {
			return checkRuleIds(catalog)
		},
	)
}

func checkRuleIds(catalog rules.Catalog) error {
	var bad []string
	for _, r := range catalog {
		if !ruleIDPattern.MatchString(r.ID) {
			bad = append(bad, fmt.Sprintf("`%s`", r.ID))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("checkRuleIds: %w: %s (want TA-nnnnnn)", ErrInvalidRuleID, strings.Join(bad, ", "))
	}
	return nil
}
