// Package analysis orchestrates one validation run over a bundle of plugins:
// fan-out of per-resource rule evaluation, the cross-artifact barrier per
// plugin and the leftover barrier per bundle.
package analysis

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"github.com/google/uuid"

	"github.com/plugdev/pluglint/internal/capability"
	"github.com/plugdev/pluglint/internal/config"
	"github.com/plugdev/pluglint/internal/crossref"
	"github.com/plugdev/pluglint/internal/leftover"
	"github.com/plugdev/pluglint/internal/logging"
	"github.com/plugdev/pluglint/internal/profile"
	"github.com/plugdev/pluglint/internal/rules/bpmn"
	"github.com/plugdev/pluglint/internal/rules/fhir"
	"github.com/plugdev/pluglint/pkg/lint"
	"github.com/plugdev/pluglint/pkg/model"
)

// Options configures a Runner.
type Options struct {
	// Rulebook defaults to config.Default() when nil.
	Rulebook *config.Rulebook
	// Logger defaults to a discarding logger when nil.
	Logger *slog.Logger
	// Workers bounds concurrent resource validation; defaults to GOMAXPROCS.
	Workers int
}

// Runner analyzes the plugins of one bundle. All caches (profile
// cardinalities, capability queries) are scoped to the Runner and never
// invalidated within the run.
type Runner struct {
	runID  string
	rules  *config.Rulebook
	logger *slog.Logger

	index      *Index
	verifier   *capability.Verifier
	profiles   *profile.Cache
	resources  *fhir.Rules
	structural *structuralValidator
	leftovers  *leftover.Analyzer
	pool       *workerPool
}

// NewRunner creates a Runner for one bundle.
func NewRunner(opts Options) (*Runner, error) {
	rules := opts.Rulebook
	if rules == nil {
		rules = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// Run, plugin and resource IDs ride on the context; the correlation
	// handler attaches them to every record.
	logger = slog.New(logging.NewCorrelationHandler(logger.Handler()))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	structural, err := newStructuralValidator()
	if err != nil {
		return nil, lint.NewError(lint.ErrCodeConfig, "compile document schema").WithCause(err)
	}

	index := NewIndex()
	profiles := profile.NewCache(index)

	return &Runner{
		runID:      uuid.NewString(),
		rules:      rules,
		logger:     logger,
		index:      index,
		verifier:   capability.NewVerifier(logger),
		profiles:   profiles,
		resources:  fhir.New(rules, profiles, index),
		structural: structural,
		leftovers:  leftover.NewAnalyzer(),
		pool:       newWorkerPool(workers),
	}, nil
}

// RunID returns the correlation ID of this analysis run.
func (r *Runner) RunID() string {
	return r.runID
}

// Verifier exposes the run's capability verifier so callers can preload a
// type registry from a plugin registration manifest.
func (r *Runner) Verifier() *capability.Verifier {
	return r.verifier
}

// AnalyzePlugin validates one plugin's process graphs and resource documents
// and accumulates its definitions and references for the bundle's leftover
// analysis. The only fatal condition is a missing plugin registration; every
// other problem is folded into the returned item collection.
func (r *Runner) AnalyzePlugin(ctx context.Context, p *model.Plugin) (*lint.Result, error) {
	ctx = logging.WithRunID(ctx, r.runID)
	ctx = logging.WithPlugin(ctx, p.Name)

	if p.DefinitionType == "" {
		r.logger.ErrorContext(ctx, "plugin has no registered definition type")
		return nil, lint.MissingRegistration(p.Name)
	}

	// The resource index must be complete before any rule touches it: the
	// cross-artifact checker resolves against the whole scope.
	r.index.AddPlugin(p)

	result := &lint.Result{}
	result.Add(r.checkDefinitionType(p))

	refs := crossref.NewChecker(r.rules, r.index)
	dispatcher := bpmn.NewDispatcher(r.rules, refs, r.verifier, p.Generation, p.ProjectRoot, r.logger)

	for kind, files := range p.Resources {
		for _, rf := range files {
			rf := rf
			err := r.pool.Submit(ctx, func() {
				result.Add(r.validateDocument(ctx, kind, rf)...)
			})
			if err != nil {
				return nil, lint.NewError(lint.ErrCodeValidation, "submit resource validation").
					WithPlugin(p.Name).WithCause(err)
			}
		}
	}

	for _, pf := range p.Processes {
		pf := pf
		err := r.pool.Submit(ctx, func() {
			result.Add(r.validateGraph(ctx, dispatcher, pf)...)
		})
		if err != nil {
			return nil, lint.NewError(lint.ErrCodeValidation, "submit graph validation").
				WithPlugin(p.Name).WithCause(err)
		}
	}

	// Barrier: cross-plugin aggregation reads complete per-plugin output.
	r.pool.Wait()

	r.leftovers.Accumulate(p)

	r.logger.InfoContext(ctx, "plugin analyzed",
		slog.Int("items", len(result.Items())),
		slog.Int("errors", result.Count(lint.SeverityError)))
	return result, nil
}

// validateDocument runs the structural stage and, when it passes, the kind
// rule set. A panic inside a rule set is isolated into a diagnostic item.
func (r *Runner) validateDocument(ctx context.Context, kind model.ResourceKind, rf model.ResourceFile) (items []lint.Item) {
	subject := model.FileRef{File: rf.File}
	if rf.Document != nil {
		subject.Element = rf.Document.URL
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(logging.WithResource(ctx, rf.File),
				"resource rule set panicked", slog.Any("panic", rec))
			items = append(items, lint.Errorf(lint.CategoryResource, subject,
				"rule evaluation failed: %v", rec))
		}
	}()

	if rf.Document == nil {
		return []lint.Item{lint.Error(lint.CategoryStructural, subject,
			"document could not be parsed")}
	}
	if rf.Document.Kind == "" {
		rf.Document.Kind = kind
	}

	structuralItems, ok := r.structural.Check(rf.Document, subject)
	items = append(items, structuralItems...)
	if !ok {
		return items
	}

	items = append(items, r.resources.Evaluate(rf.Document, rf.File)...)
	return items
}

// validateGraph runs the dispatcher over one process graph with the same
// panic isolation as documents.
func (r *Runner) validateGraph(ctx context.Context, dispatcher *bpmn.Dispatcher, pf model.ProcessFile) (items []lint.Item) {
	subject := model.FileRef{File: pf.File}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(logging.WithResource(ctx, pf.File),
				"graph validation panicked", slog.Any("panic", rec))
			items = append(items, lint.Errorf(lint.CategoryProcess, subject,
				"graph validation failed: %v", rec))
		}
	}()

	if pf.Graph == nil {
		return []lint.Item{lint.Error(lint.CategoryProcess, subject,
			"process graph could not be parsed")}
	}
	return dispatcher.Validate(pf.Graph, pf.File)
}

// checkDefinitionType verifies the plugin's registered definition type
// against the generation's required base contract.
func (r *Runner) checkDefinitionType(p *model.Plugin) lint.Item {
	subject := model.FileRef{File: p.Name, Element: p.DefinitionType}
	contract := r.rules.Contracts(p.Generation).Definition

	q := r.verifier.Verify(p.DefinitionType, contract, p.ProjectRoot)
	switch {
	case !q.Exists:
		return lint.Errorf(lint.CategoryCapability, subject,
			"definition type %s not found in project artifacts", p.DefinitionType)
	case !q.ImplementsRequired:
		return lint.Errorf(lint.CategoryCapability, subject,
			"definition type %s does not implement %s", p.DefinitionType, contract)
	default:
		return lint.Successf(lint.CategoryCapability, subject,
			"definition type %s implements %s", p.DefinitionType, contract)
	}
}

// Finish closes the bundle: it must run after every plugin has been analyzed.
// Each leftover is reported exactly once.
func (r *Runner) Finish() (leftover.Report, []lint.Item) {
	r.pool.Shutdown()

	report := r.leftovers.Leftovers()

	var items []lint.Item
	for _, id := range report.Processes {
		items = append(items, lint.Warnf(lint.CategoryLeftover,
			model.FileRef{Element: id}, "process %s is referenced by no plugin in the bundle", id))
	}
	for kind, ids := range report.Resources {
		for _, id := range ids {
			items = append(items, lint.Warnf(lint.CategoryLeftover,
				model.FileRef{Element: id}, "%s %s is referenced by no process graph in the bundle", kind, id))
		}
	}
	return report, items
}
