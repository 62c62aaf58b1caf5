// Package extract ties one table's configuration to the extraction pipeline:
// raw cells come in through the (usually cached) reader, continuation rows are
// folded, and either the declarative transform pipeline or a script engine
// produces the final logical rows.
package extract

import (
	"context"
	"io"
	"time"

	"github.com/tabfold/tabfold/cache"
	"github.com/tabfold/tabfold/fold"
	"github.com/tabfold/tabfold/model"
	"github.com/tabfold/tabfold/observability"
	"github.com/tabfold/tabfold/scripting"
	"github.com/tabfold/tabfold/transform"
)

// ScriptConfig selects a scripting engine and the script source for a table
// whose reshaping is expressed as code rather than transforms. Modules are
// preloaded into the engine before the transform runs.
type ScriptConfig struct {
	Engine  string
	Source  string
	Modules []Module
}

// Module is a named helper source preloaded into a script engine.
type Module struct {
	Name   string
	Source string
}

// TableConfig describes how one table is extracted. Exactly one of Transforms
// and Script may be set; a config with neither means the table is skipped.
type TableConfig struct {
	// Name identifies the table in diagnostics.
	Name string

	// Continues, when set, drives the initial continuation fold over the raw
	// rows of each region before they are concatenated.
	Continues fold.ContinuationFunc

	Transforms transform.Spec
	Script     *ScriptConfig
}

// Result is one extracted table plus the pages it was read from.
type Result struct {
	Pages []int
	Rows  model.Table
}

// EngineFactory builds a script engine by name. The default is scripting.New;
// tests substitute fakes through it.
type EngineFactory func(name string) (scripting.Engine, error)

// Extractor runs table extractions against one raw reader. The reader (and
// any script engine the extractor creates) is used from the calling
// goroutine only; callers extracting tables in parallel hold one Extractor
// per worker or serialize access themselves.
type Extractor struct {
	reader  cache.RawReader
	engines EngineFactory
	log     observability.Logger
	tracer  observability.Tracer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the extractor's logger.
func WithLogger(log observability.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithTracer sets the tracer that spans each extraction.
func WithTracer(t observability.Tracer) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithEngineFactory overrides how script engines are built.
func WithEngineFactory(f EngineFactory) Option {
	return func(e *Extractor) {
		if f != nil {
			e.engines = f
		}
	}
}

// New builds an extractor over the given raw reader, which is typically a
// *cache.Cache wrapping the real locator.
func New(reader cache.RawReader, opts ...Option) *Extractor {
	e := &Extractor{
		reader:  reader,
		engines: scripting.New,
		log:     observability.NopLogger{},
		tracer:  observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table extracts one table. A config with no extraction method returns
// (nil, nil): the table is skipped, not failed. All pipeline failures carry
// the model.ErrConfig category and are attributable to this one table.
func (e *Extractor) Table(ctx context.Context, pdfPath string, template io.Reader, cfg TableConfig) (*Result, error) {
	if cfg.Transforms == nil && cfg.Script == nil {
		e.log.Debug("table has no extraction configured, skipping",
			observability.String("table", cfg.Name))
		return nil, nil
	}
	if cfg.Transforms != nil && cfg.Script != nil {
		return nil, model.Configf("table %q configures both transforms and a script", cfg.Name)
	}

	ctx, span := e.tracer.StartSpan(ctx, "table.extract")
	defer span.Finish()
	span.SetTag("table", cfg.Name)

	start := time.Now()
	res, err := e.extract(ctx, pdfPath, template, cfg)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag("rows", len(res.Rows))
	e.log.Info("table extracted",
		observability.String("table", cfg.Name),
		observability.Int("rows", len(res.Rows)),
		observability.Int("pages", len(res.Pages)),
		observability.Int64(observability.MetricExtractTime, time.Since(start).Milliseconds()))
	return res, nil
}

func (e *Extractor) extract(ctx context.Context, pdfPath string, template io.Reader, cfg TableConfig) (*Result, error) {
	raws, err := e.reader.Read(ctx, pdfPath, template)
	if err != nil {
		return nil, err
	}
	raws, err = e.foldContinuations(raws, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Script != nil {
		return e.runScript(ctx, raws, cfg)
	}
	return e.runTransforms(raws, cfg)
}

// foldContinuations applies the caller-supplied continuation predicate to each
// raw region before regions are concatenated, so a cell wrapped across raw
// rows arrives at the transforms as one logical row.
func (e *Extractor) foldContinuations(raws []model.RawTable, cfg TableConfig) ([]model.RawTable, error) {
	if cfg.Continues == nil {
		return raws, nil
	}
	out := make([]model.RawTable, len(raws))
	for i, rt := range raws {
		folded, err := fold.Fold(rt.Rows, cfg.Continues, "\n")
		if err != nil {
			return nil, model.Configf("table %q page %d: %v", cfg.Name, rt.Page, err)
		}
		out[i] = model.RawTable{Page: rt.Page, Rows: folded}
	}
	return out, nil
}

func (e *Extractor) runTransforms(raws []model.RawTable, cfg TableConfig) (*Result, error) {
	rows, pages := model.Concat(raws)
	rows, err := transform.Apply(cfg.Transforms, rows)
	if err != nil {
		return nil, model.Configf("table %q: %v", cfg.Name, err)
	}
	return &Result{Pages: pages, Rows: rows}, nil
}

func (e *Extractor) runScript(ctx context.Context, raws []model.RawTable, cfg TableConfig) (*Result, error) {
	engine, err := e.engines(cfg.Script.Engine)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	for _, m := range cfg.Script.Modules {
		if err := engine.Preload(ctx, m.Name, m.Source); err != nil {
			return nil, err
		}
	}

	tables := make([]model.Table, len(raws))
	for i, rt := range raws {
		tables[i] = rt.Rows
	}
	_, pages := model.Concat(raws)

	start := time.Now()
	rows, err := engine.Transform(ctx, tables, cfg.Script.Source)
	if err != nil {
		return nil, err
	}
	e.log.Debug("script transform finished",
		observability.String("table", cfg.Name),
		observability.String("engine", engine.Name()),
		observability.Int64(observability.MetricScriptTime, time.Since(start).Milliseconds()))
	return &Result{Pages: pages, Rows: rows}, nil
}
