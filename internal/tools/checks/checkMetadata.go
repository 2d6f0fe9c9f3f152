// Copyright (c) Microsoft Corporation 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package checks

import (
	"fmt"

	"github.com/Azure/armlint/internal/processor"
	"github.com/Azure/armlint/internal/tools/checker"
)

// CheckMetadata verifies that a published library declares its name and
// display name. Dependency references are validated when the library is
// processed, so they are not re-checked here.
func CheckMetadata(metad *processor.LibMetadata) checker.ValidatorCheck {
	return checker.NewValidatorCheck(
		"Library metadata",
		func() error {
			return checkMetadata(metad)
		},
	)
}

func checkMetadata(metad *processor.LibMetadata) error {
	if metad == nil || metad.Name == "" {
		return fmt.Errorf("checkMetadata: %w: name is required", ErrMissingMetadata)
	}
	if metad.DisplayName == "" {
		return fmt.Errorf("checkMetadata: %w: display_name is required for library `%s`", ErrMissingMetadata, metad.Name)
	}
	return nil
}
