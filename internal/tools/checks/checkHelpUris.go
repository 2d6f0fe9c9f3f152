// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package checks

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/armlint/internal/tools/checker"
	"github.com/Azure/armlint/rules"
)

// CheckHelpURIs verifies that every declared help uri is an absolute http(s)
// URL. Rules without a help uri pass; the uri is optional.
func CheckHelpURIs(catalog rules.Catalog) checker.ValidatorCheck {
	return checker.NewValidatorCheck(
		"Help uris",
		func() error {
			return checkHelpUris(catalog)
		},
	)
}

func checkHelpUris(catalog rules.Catalog) error {
	var bad []string
	for _, r := range catalog {
		if r.HelpURI == "" {
			continue
		}
		u, err := url.Parse(r.HelpURI)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			bad = append(bad, fmt.Sprintf("%s (`%s`)", r.ID, r.HelpURI))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("checkHelpUris: %w: %s", ErrInvalidHelpURI, strings.Join(bad, ", "))
	}
	return nil
}
