// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"github.com/Azure/armlint/rules"
)

func testResult() *AnalysisResult {
	return &AnalysisResult{
		Identifier: "testdata/template.json",
		Evaluations: []rules.Evaluation{
			{
				RuleID:         "TA-000004",
				Description:    "App Service apps should only be accessible over HTTPS",
				Recommendation: "Set properties.httpsOnly to true",
				HelpURI:        "https://example.com/ta-000004",
				Severity:       rules.SeverityHigh,
				Passed:         false,
				FileIdentifier: "testdata/template.json",
				Result:         &rules.Result{Path: "resources[0].properties.httpsOnly", LineNumber: 14},
			},
			{
				RuleID:         "TA-000006",
				Description:    "CORS should not allow every resource to access App Service apps",
				Severity:       rules.SeverityLow,
				Passed:         true,
				FileIdentifier: "testdata/template.json",
			},
		},
	}
}
