// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package rules

import "fmt"

// Severity ranks the impact of a rule finding. Smaller values are more severe.
type Severity int

const (
	// SeverityHigh marks findings that should be fixed immediately.
	SeverityHigh Severity = 1
	// SeverityMedium marks findings that represent a meaningful risk.
	SeverityMedium Severity = 2
	// SeverityLow marks hardening opportunities.
	SeverityLow Severity = 3
	// SeverityInformational marks findings with no direct security impact.
	SeverityInformational Severity = 4
)

// Valid reports whether s is within the defined range.
func (s Severity) Valid() bool {
	return s >= SeverityHigh && s <= SeverityInformational
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	case SeverityInformational:
		return "Informational"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}
