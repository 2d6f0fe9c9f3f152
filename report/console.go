// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package report

import (
	"fmt"
	"io"

	"github.com/Azure/armlint/rules"
	"github.com/fatih/color"
)

var (
	failColor     = color.New(color.FgRed, color.Bold)
	passColor     = color.New(color.FgGreen)
	locationColor = color.New(color.Faint)

	severityColors = map[rules.Severity]*color.Color{
		rules.SeverityHigh:          color.New(color.FgRed),
		rules.SeverityMedium:        color.New(color.FgYellow),
		rules.SeverityLow:           color.New(color.FgCyan),
		rules.SeverityInformational: color.New(color.FgWhite),
	}
)

// ConsoleWriter prints findings for humans, colorized when the destination
// supports it. The color package disables itself on non-terminals and when
// NO_COLOR is set.
type ConsoleWriter struct {
	w             io.Writer
	includePassed bool

	templates int
	failed    int
	passed    int
}

var _ Writer = (*ConsoleWriter)(nil)

// NewConsoleWriter returns a console writer emitting to w.
func NewConsoleWriter(w io.Writer, opts *Options) *ConsoleWriter {
	return &ConsoleWriter{
		w:             w,
		includePassed: opts.orDefault().IncludePassed,
	}
}

// Write implements Writer for type ConsoleWriter.
func (cw *ConsoleWriter) Write(res *AnalysisResult) error {
	failed, passed := res.Counts()
	cw.templates++
	cw.failed += failed
	cw.passed += passed

	if _, err := fmt.Fprintf(cw.w, "%s: %d failed, %d passed\n", res.Identifier, failed, passed); err != nil {
		return fmt.Errorf("ConsoleWriter.Write: %w", err)
	}
	for i := range res.Evaluations {
		ev := &res.Evaluations[i]
		if ev.Passed && !cw.includePassed {
			continue
		}
		if err := cw.writeEvaluation(ev); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(cw.w); err != nil {
		return fmt.Errorf("ConsoleWriter.Write: %w", err)
	}
	return nil
}

func (cw *ConsoleWriter) writeEvaluation(ev *rules.Evaluation) error {
	verdict := failColor.Sprint("FAIL")
	if ev.Passed {
		verdict = passColor.Sprint("PASS")
	}
	sev := ev.Severity.String()
	if c, ok := severityColors[ev.Severity]; ok {
		sev = c.Sprint(sev)
	}
	if _, err := fmt.Fprintf(cw.w, "  %s  %s  [%s]  %s\n", verdict, ev.RuleID, sev, ev.Description); err != nil {
		return fmt.Errorf("ConsoleWriter.writeEvaluation: %w", err)
	}
	if ev.Passed {
		return nil
	}
	for _, res := range ev.FailedResults() {
		loc := res.Path
		if res.LineNumber > 0 {
			loc = fmt.Sprintf("%s (line %d)", res.Path, res.LineNumber)
		}
		if _, err := fmt.Fprintf(cw.w, "        %s\n", locationColor.Sprint(loc)); err != nil {
			return fmt.Errorf("ConsoleWriter.writeEvaluation: %w", err)
		}
	}
	if ev.Recommendation != "" {
		if _, err := fmt.Fprintf(cw.w, "        Recommendation: %s\n", ev.Recommendation); err != nil {
			return fmt.Errorf("ConsoleWriter.writeEvaluation: %w", err)
		}
	}
	if ev.HelpURI != "" {
		if _, err := fmt.Fprintf(cw.w, "        More information: %s\n", ev.HelpURI); err != nil {
			return fmt.Errorf("ConsoleWriter.writeEvaluation: %w", err)
		}
	}
	return nil
}

// Close implements Writer for type ConsoleWriter, printing the summary line.
func (cw *ConsoleWriter) Close() error {
	plural := "s"
	if cw.templates == 1 {
		plural = ""
	}
	summary := fmt.Sprintf("%d template%s analyzed: %d failed, %d passed", cw.templates, plural, cw.failed, cw.passed)
	if cw.failed == 0 {
		summary = passColor.Sprint(summary)
	} else {
		summary = failColor.Sprint(summary)
	}
	if _, err := fmt.Fprintln(cw.w, summary); err != nil {
		return fmt.Errorf("ConsoleWriter.Close: %w", err)
	}
	return nil
}
