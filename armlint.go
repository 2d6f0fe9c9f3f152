// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armlint

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"github.com/Azure/armlint/bicep"
	"github.com/Azure/armlint/internal/processor"
	"github.com/Azure/armlint/rules"
	"github.com/Azure/armlint/template"
	"golang.org/x/sync/errgroup"
)

const (
	defaultParallelism = 10 // default number of templates analyzed concurrently
)

// Embed the builtin rule library into the binary.
//
//go:embed rules/lib
var builtinLib embed.FS

// BuiltinRules returns the embedded builtin rule library. Pass it to
// Analyzer.Init to analyze with the rules that ship in the binary.
func BuiltinRules() fs.FS {
	sub, err := fs.Sub(builtinLib, "rules/lib")
	if err != nil {
		// The embedded path is fixed at compile time.
		panic(fmt.Sprintf("BuiltinRules: %v", err))
	}
	return sub
}

// Analyzer is the engine that runs a rule catalog against ARM templates.
// Do not create this directly, use NewAnalyzer instead.
type Analyzer struct {
	opts    *Options
	logger  *slog.Logger
	catalog rules.Catalog
	mu      sync.RWMutex // mu protects catalog against concurrent Init/Filter/analysis
}

// Options are options for the Analyzer.
type Options struct {
	// Parallelism is the number of templates analyzed concurrently by
	// AnalyzeTemplates. Zero selects the default.
	Parallelism int
	// AllowDuplicateRuleIDs makes a rule id declared by a later library
	// replace the earlier definition instead of failing Init.
	AllowDuplicateRuleIDs bool
	// StrictExpressions surfaces template language evaluation failures as
	// errors instead of substituting the NOT_PARSED sentinel.
	StrictExpressions bool
	// Logger receives engine diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewAnalyzer returns a new Analyzer with an empty rule catalog.
// A nil opts selects the defaults.
func NewAnalyzer(opts *Options) *Analyzer {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Parallelism == 0 {
		opts.Parallelism = defaultParallelism
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		opts:    opts,
		logger:  logger,
		catalog: make(rules.Catalog, 0),
	}
}

// Init processes rule libraries, supplied as fs.FS interfaces.
// These are typically the embedded library returned by BuiltinRules, an
// os.DirFS, or the filesystems of fetched RuleLibraryReferences.
// Libraries are processed in order; rule ids must be unique across all of
// them unless Options.AllowDuplicateRuleIDs is set, in which case the later
// definition wins while keeping the earlier catalog position.
func (a *Analyzer) Init(_ context.Context, libs ...fs.FS) error {
	for i, lib := range libs {
		res := processor.NewResult()
		client := processor.NewClient(lib)
		if err := client.Process(res); err != nil {
			return fmt.Errorf("Analyzer.Init: error processing library at index %d: %w", i, err)
		}
		if err := a.addProcessedResult(res); err != nil {
			return fmt.Errorf("Analyzer.Init: library at index %d: %w", i, err)
		}
		a.logger.Debug("processed rule library",
			"name", res.Metadata.Name,
			"rules", len(res.Catalog),
		)
	}
	return nil
}

// addProcessedResult merges the rules of a processed library into the
// catalog.
func (a *Analyzer) addProcessedResult(res *processor.Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rule := range res.Catalog {
		idx := slices.IndexFunc(a.catalog, func(r *rules.RuleDefinition) bool {
			return r.ID == rule.ID
		})
		if idx < 0 {
			a.catalog = append(a.catalog, rule)
			continue
		}
		if !a.opts.AllowDuplicateRuleIDs {
			return rules.NewErrDuplicateRuleID(rule.ID)
		}
		a.catalog[idx] = rule
	}
	return nil
}

// Rules returns a snapshot of the current catalog in order.
func (a *Analyzer) Rules() rules.Catalog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.catalog)
}

// Filter narrows the catalog in place. Filtering with the same config twice
// leaves the catalog unchanged the second time.
func (a *Analyzer) Filter(cfg *rules.FilterConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	filtered, err := a.catalog.Filter(cfg)
	if err != nil {
		return fmt.Errorf("Analyzer.Filter: %w", err)
	}
	a.catalog = filtered
	return nil
}

// TemplateAnalysisRequest is one template to analyze. ParametersJSON and
// SourceMap are optional; SourceMap translates reported line numbers back to
// the Bicep source the template was compiled from.
type TemplateAnalysisRequest struct {
	Identifier     string
	TemplateJSON   []byte
	ParametersJSON []byte
	SourceMap      *bicep.SourceMap
}

// AnalyzeTemplate expands one template and evaluates the catalog against it.
// Evaluations are returned in (rule order, resource discovery order) and are
// deterministic for identical inputs. A panic during analysis is recovered
// and returned as a *rules.ErrEngine.
func (a *Analyzer) AnalyzeTemplate(ctx context.Context, req TemplateAnalysisRequest) (evals []rules.Evaluation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			evals = nil
			err = rules.NewErrEngine("", fmt.Sprintf("panic analyzing %s: %v", req.Identifier, rec))
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("Analyzer.AnalyzeTemplate: %w", err)
	}
	catalog := a.Rules()
	proc := template.NewProcessor(&template.ProcessorOptions{
		StrictExpressions: a.opts.StrictExpressions,
		Logger:            a.logger,
	})
	processed, err := proc.Process(template.Input{
		Identifier:     req.Identifier,
		TemplateJSON:   req.TemplateJSON,
		ParametersJSON: req.ParametersJSON,
		SourceMap:      req.SourceMap,
	})
	if err != nil {
		return nil, fmt.Errorf("Analyzer.AnalyzeTemplate: %w", err)
	}
	evals, err = catalog.Analyze(processed)
	if err != nil {
		return nil, fmt.Errorf("Analyzer.AnalyzeTemplate: %w", err)
	}
	return evals, nil
}

// AnalyzeTemplates analyzes multiple templates with bounded parallelism
// (Options.Parallelism). Results are returned in input order; the first
// error cancels the remaining analyses.
func (a *Analyzer) AnalyzeTemplates(ctx context.Context, reqs []TemplateAnalysisRequest) ([][]rules.Evaluation, error) {
	out := make([][]rules.Evaluation, len(reqs))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(a.opts.Parallelism)
	for i, req := range reqs {
		i, req := i, req
		grp.Go(func() error {
			evals, err := a.AnalyzeTemplate(ctx, req)
			if err != nil {
				return err
			}
			out[i] = evals
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("Analyzer.AnalyzeTemplates: %w", err)
	}
	return out, nil
}
