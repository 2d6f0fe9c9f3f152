// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/armlint"
	"github.com/Azure/armlint/report"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
	formatSarif   = "sarif"
)

// analyzeCmd represents the analyze command.
var analyzeCmd = cobra.Command{
	Use:   "analyze [flags] template...",
	Short: "Analyze ARM deployment templates against the rule catalog.",
	Long: `Analyzes one or more ARM deployment templates against the builtin rule
catalog plus any additional rule libraries, and reports the evaluations
that failed.

Inputs ending in .bicep are compiled with the bicep CLI before analysis.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		paramsFile, _ := cmd.Flags().GetString("parameters")
		bicepCLI, _ := cmd.Flags().GetString("bicep-cli")
		format, _ := cmd.Flags().GetString("format")
		outputFile, _ := cmd.Flags().GetString("output")
		includePassed, _ := cmd.Flags().GetBool("include-passed")
		query, _ := cmd.Flags().GetString("query")
		strict, _ := cmd.Flags().GetBool("strict")
		allowDup, _ := cmd.Flags().GetBool("allow-duplicate-rule-ids")

		if query != "" && format != formatJSON {
			cmd.PrintErrf("%s --query requires --format json\n", cmd.ErrPrefix())
			os.Exit(2)
		}
		if outputFile != "" {
			// No ANSI sequences when the report goes to a file.
			color.NoColor = true
		}

		var paramsJSON []byte
		if paramsFile != "" {
			var err error
			paramsJSON, err = os.ReadFile(paramsFile)
			if err != nil {
				cmd.PrintErrf("%s could not read parameters file: %v\n", cmd.ErrPrefix(), err)
				os.Exit(2)
			}
		}

		reqs := make([]armlint.TemplateAnalysisRequest, 0, len(args))
		for _, arg := range args {
			req, err := newAnalysisRequest(cmd.Context(), arg, paramsJSON, bicepCLI)
			if err != nil {
				cmd.PrintErrf("%s could not load template %s: %v\n", cmd.ErrPrefix(), arg, err)
				os.Exit(2)
			}
			reqs = append(reqs, req)
		}

		a, err := initAnalyzer(cmd, &armlint.Options{
			AllowDuplicateRuleIDs: allowDup,
			StrictExpressions:     strict,
		})
		if err != nil {
			cmd.PrintErrf("%s could not initialize analyzer: %v\n", cmd.ErrPrefix(), err)
			os.Exit(2)
		}

		evals, err := a.AnalyzeTemplates(cmd.Context(), reqs)
		if err != nil {
			cmd.PrintErrf("%s analysis error: %v\n", cmd.ErrPrefix(), err)
			os.Exit(2)
		}

		var buf bytes.Buffer
		w, err := newReportWriter(format, &buf, &report.Options{IncludePassed: includePassed})
		if err != nil {
			cmd.PrintErrf("%s %v\n", cmd.ErrPrefix(), err)
			os.Exit(2)
		}
		failed := false
		for i := range reqs {
			res := &report.AnalysisResult{
				Identifier:  reqs[i].Identifier,
				Evaluations: evals[i],
			}
			if res.Failed() {
				failed = true
			}
			if err := w.Write(res); err != nil {
				cmd.PrintErrf("%s could not write report: %v\n", cmd.ErrPrefix(), err)
				os.Exit(2)
			}
		}
		if err := w.Close(); err != nil {
			cmd.PrintErrf("%s could not write report: %v\n", cmd.ErrPrefix(), err)
			os.Exit(2)
		}

		out := buf.Bytes()
		if query != "" {
			out, err = applyQuery(out, query)
			if err != nil {
				cmd.PrintErrf("%s query error: %v\n", cmd.ErrPrefix(), err)
				os.Exit(2)
			}
		}
		if err := writeOutput(outputFile, out); err != nil {
			cmd.PrintErrf("%s could not write output: %v\n", cmd.ErrPrefix(), err)
			os.Exit(2)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	analyzeCmd.Flags().
		StringP("parameters", "p", "", "Path to a parameters file applied to every analyzed template.")
	analyzeCmd.Flags().
		StringArrayP("rules", "r", nil, "Path to an additional rule library directory. Repeatable.")
	analyzeCmd.Flags().
		String("config", "", "Path to a filter configuration file (JSON or YAML).")
	analyzeCmd.Flags().
		String("format", formatConsole, "Report format: console, json or sarif.")
	analyzeCmd.Flags().
		StringP("output", "o", "", "Write the report to a file instead of stdout.")
	analyzeCmd.Flags().
		Bool("include-passed", false, "Include passing evaluations in the report.")
	analyzeCmd.Flags().
		String("query", "", "jq expression applied to the JSON report before output.")
	analyzeCmd.Flags().
		String("bicep-cli", "", "Path to the bicep CLI used for .bicep inputs. Defaults to bicep on the PATH.")
	analyzeCmd.Flags().
		Bool("strict", false, "Treat template language expressions that fail to evaluate as errors.")
	analyzeCmd.Flags().
		Bool("allow-duplicate-rule-ids", false, "Let a later rule library redefine an earlier rule id.")
}

// initAnalyzer builds an analyzer from the builtin rule library plus the
// libraries named by --rules, then narrows the catalog with --config. The
// analyze and rules commands share these two flags.
func initAnalyzer(cmd *cobra.Command, opts *armlint.Options) (*armlint.Analyzer, error) {
	a := armlint.NewAnalyzer(opts)
	libs := []fs.FS{armlint.BuiltinRules()}
	dirs, _ := cmd.Flags().GetStringArray("rules")
	for _, dir := range dirs {
		libs = append(libs, os.DirFS(dir))
	}
	if err := a.Init(cmd.Context(), libs...); err != nil {
		return nil, err
	}
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		return a, nil
	}
	cfg, err := loadFilterConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := a.Filter(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// newAnalysisRequest loads one template argument, compiling it first when it
// is a Bicep file.
func newAnalysisRequest(ctx context.Context, path string, paramsJSON []byte, bicepCLI string) (armlint.TemplateAnalysisRequest, error) {
	req := armlint.TemplateAnalysisRequest{
		Identifier:     path,
		ParametersJSON: paramsJSON,
	}
	if strings.EqualFold(filepath.Ext(path), ".bicep") {
		compiler, err := newCLICompiler(bicepCLI)
		if err != nil {
			return req, err
		}
		compiled, err := compiler.Compile(ctx, path)
		if err != nil {
			return req, err
		}
		req.TemplateJSON = compiled.TemplateJSON
		req.SourceMap = compiled.SourceMap
		return req, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	req.TemplateJSON = data
	return req, nil
}

func newReportWriter(format string, w io.Writer, opts *report.Options) (report.Writer, error) {
	switch format {
	case formatConsole:
		return report.NewConsoleWriter(w, opts), nil
	case formatJSON:
		return report.NewJSONWriter(w, opts), nil
	case formatSarif:
		return report.NewSarifWriter(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want console, json or sarif)", format)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
