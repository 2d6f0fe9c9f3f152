// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package checks

import "errors"

var (
	// ErrInvalidRuleID is returned when a rule id does not follow the catalog naming scheme.
	ErrInvalidRuleID = errors.New("invalid rule id")
	// ErrInvalidHelpURI is returned when a rule's help uri is not an absolute http(s) URL.
	ErrInvalidHelpURI = errors.New("invalid help uri")
	// ErrUnscopedRule is returned when a rule never narrows evaluation to a resource type.
	ErrUnscopedRule = errors.New("rule is not scoped to a resource type")
	// ErrInvalidResourceType is returned when a scoped resource type is malformed.
	ErrInvalidResourceType = errors.New("invalid resource type")
	// ErrMissingGuidance is returned when a rule lacks a description or recommendation.
	ErrMissingGuidance = errors.New("missing rule guidance")
	// ErrMissingMetadata is returned when a library's metadata lacks required fields.
	ErrMissingMetadata = errors.New("missing library metadata")
)
