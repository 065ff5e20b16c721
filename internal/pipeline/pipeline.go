package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/passes"
	"github.com/thesistools/thesisfmt/internal/report"
)

// Default returns a registry with the standard formatting passes in
// their canonical order.
func Default() *Registry {
	r := NewRegistry()
	for _, p := range []passes.Pass{
		&passes.StructurePass{},
		&passes.ReorderPass{},
		&passes.CoverPass{},
		&passes.FontsPass{},
		&passes.SpacingPass{},
		&passes.PageZonesPass{},
		&passes.HeaderPass{},
		&passes.KeywordsPass{},
		&passes.FigTabPass{},
		&passes.FootnotesPass{},
		&passes.MathPass{},
		&passes.TOCPass{},
		&passes.AcknowledgmentsPass{},
		&passes.AppendixPass{},
	} {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// Options configures one formatting run.
type Options struct {
	Config *config.Config
	Meta   config.Metadata
	Logger *slog.Logger

	// OnPass, when set, is called before each pass runs with its name
	// and 1-based position.
	OnPass func(name string, index, total int)
}

// Runner executes a pass registry against documents.
type Runner struct {
	registry *Registry
}

// NewRunner wires a runner to the given registry, falling back to the
// default pass set when nil.
func NewRunner(registry *Registry) *Runner {
	if registry == nil {
		registry = Default()
	}
	return &Runner{registry: registry}
}

// Run executes the passes in dependency order, mutating doc in place.
// A pass that errors or panics degrades the report and the run
// continues; the returned error is non-nil only for cancellation or a
// broken registry. Cancellation is observed at pass boundaries, so a
// cancelled run leaves the document mid-transformation and the caller
// must discard it.
func (rn *Runner) Run(ctx context.Context, doc *model.Document, opts Options) (*report.Report, error) {
	rep := report.New()

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ordered, err := rn.registry.GetOrdered()
	if err != nil {
		return rep, fmt.Errorf("resolving pass order: %w", err)
	}

	pc := &passes.Context{
		Doc:    doc,
		Config: cfg,
		Meta:   opts.Meta,
		Report: rep,
		Logger: logger,
	}

	for i, p := range ordered {
		if err := ctx.Err(); err != nil {
			rep.Fail(p.Name(), "run cancelled before pass")
			rep.Finish()
			return rep, err
		}
		name := p.Name()
		if name != passes.PassStructure && !cfg.PassEnabled(name) {
			logger.Debug("pass disabled", "pass", name)
			continue
		}
		if opts.OnPass != nil {
			opts.OnPass(name, i+1, len(ordered))
		}
		runPass(pc, p, logger)
	}

	rep.Finish()
	return rep, nil
}

// runPass isolates one pass: an error or panic is recorded against the
// report without stopping the run.
func runPass(pc *passes.Context, p passes.Pass, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pass panicked", "pass", p.Name(), "panic", r)
			pc.Report.Fail(p.Name(), "panic: %v", r)
		}
	}()
	if err := p.Run(pc); err != nil {
		logger.Warn("pass failed", "pass", p.Name(), "error", err)
		pc.Report.Fail(p.Name(), "%v", err)
	}
}
