// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package checks

import (
	"fmt"
	"strings"

	"github.com/Azure/armlint/internal/tools/checker"
	"github.com/Azure/armlint/rules"
)

// CheckGuidance verifies that every rule carries a description and a
// recommendation. A finding the user cannot act on is noise.
func CheckGuidance(catalog rules.Catalog) checker.ValidatorCheck {
	return checker.NewValidatorCheck(
		"Rule guidance",
		func() error {
			return checkGuidance(catalog)
		},
	)
}

func checkGuidance(catalog rules.Catalog) error {
	var bad []string
	for _, r := range catalog {
		switch {
		case strings.TrimSpace(r.Description) == "":
			bad = append(bad, fmt.Sprintf("%s (description)", r.ID))
		case strings.TrimSpace(r.Recommendation) == "":
			bad = append(bad, fmt.Sprintf("%s (recommendation)", r.ID))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("checkGuidance: %w: %s", ErrMissingGuidance, strings.Join(bad, ", "))
	}
	return nil
}
