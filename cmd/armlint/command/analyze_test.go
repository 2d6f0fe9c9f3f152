// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"bytes"
	"testing"
)

func TestNewReportWriter(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range []string{formatConsole, formatJSON, formatSarif} {
		if _, err := newReportWriter(format, &buf, nil); err != nil {
			t.Errorf("expected a %s writer, but got error: %v", format, err)
		}
	}
	if _, err := newReportWriter("xml", &buf, nil); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}
