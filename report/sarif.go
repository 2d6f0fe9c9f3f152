// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Azure/armlint/rules"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"

	toolName           = "armlint"
	toolInformationURI = "https://github.com/Azure/armlint"
)

// sarifLog is the subset of SARIF 2.1.0 the writer emits.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	ShortDescription sarifMessage   `json:"shortDescription"`
	FullDescription  *sarifMessage  `json:"fullDescription,omitempty"`
	HelpURI          string         `json:"helpUri,omitempty"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Kind      string          `json:"kind,omitempty"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// SarifWriter buffers results and emits a single SARIF 2.1.0 log on Close.
type SarifWriter struct {
	w             io.Writer
	includePassed bool

	rules     []sarifRule
	ruleIndex map[string]int
	results   []sarifResult
}

var _ Writer = (*SarifWriter)(nil)

// NewSarifWriter returns a SARIF writer emitting to w.
func NewSarifWriter(w io.Writer, opts *Options) *SarifWriter {
	return &SarifWriter{
		w:             w,
		includePassed: opts.orDefault().IncludePassed,
		rules:         make([]sarifRule, 0),
		ruleIndex:     make(map[string]int),
		results:       make([]sarifResult, 0),
	}
}

// Write implements Writer for type SarifWriter.
func (sw *SarifWriter) Write(res *AnalysisResult) error {
	for i := range res.Evaluations {
		ev := &res.Evaluations[i]
		if ev.Passed && !sw.includePassed {
			continue
		}
		sw.results = append(sw.results, sw.result(res.Identifier, ev))
	}
	return nil
}

// result converts one evaluation into a SARIF result, registering the rule
// in the driver on first sight.
func (sw *SarifWriter) result(identifier string, ev *rules.Evaluation) sarifResult {
	idx, ok := sw.ruleIndex[ev.RuleID]
	if !ok {
		idx = len(sw.rules)
		sw.ruleIndex[ev.RuleID] = idx
		rule := sarifRule{
			ID:               ev.RuleID,
			ShortDescription: sarifMessage{Text: ev.Description},
			HelpURI:          ev.HelpURI,
			Properties:       map[string]any{"severity": ev.Severity.String()},
		}
		if ev.Recommendation != "" {
			rule.FullDescription = &sarifMessage{Text: ev.Recommendation}
		}
		sw.rules = append(sw.rules, rule)
	}

	out := sarifResult{
		RuleID:    ev.RuleID,
		RuleIndex: idx,
		Level:     severityLevel(ev.Severity),
		Message:   sarifMessage{Text: resultMessage(ev)},
	}
	if ev.Passed {
		out.Kind = "pass"
		out.Level = "none"
		out.Locations = []sarifLocation{location(identifier, nil)}
		return out
	}
	for _, r := range ev.FailedResults() {
		r := r
		out.Locations = append(out.Locations, location(identifier, &r))
	}
	if len(out.Locations) == 0 {
		out.Locations = []sarifLocation{location(identifier, nil)}
	}
	return out
}

func resultMessage(ev *rules.Evaluation) string {
	if !ev.Passed && ev.Recommendation != "" {
		return ev.Recommendation
	}
	return ev.Description
}

// severityLevel maps rule severities onto the SARIF level vocabulary.
func severityLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityHigh:
		return "error"
	case rules.SeverityMedium:
		return "warning"
	case rules.SeverityLow, rules.SeverityInformational:
		return "note"
	default:
		return "warning"
	}
}

func location(identifier string, res *rules.Result) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: identifier},
		},
	}
	if res != nil && res.LineNumber > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: res.LineNumber}
	}
	return loc
}

// Close implements Writer for type SarifWriter.
func (sw *SarifWriter) Close() error {
	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: toolName, InformationURI: toolInformationURI, Rules: sw.rules}},
			Results: sw.results,
		}},
	}
	enc := json.NewEncoder(sw.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return fmt.Errorf("SarifWriter.Close: %w", err)
	}
	return nil
}
