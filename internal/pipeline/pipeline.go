// Package pipeline compiles metadata documents into emitted JavaScript or
// type declarations. Documents are compiled concurrently, each with its own
// constant pool; results keep the input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"ngdefc/internal/config"
	"ngdefc/internal/metadata"
	"ngdefc/internal/observability"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/render3/view/compiler"
	"ngdefc/packages/compiler/render3/view/template"
)

// Source is one metadata document.
type Source struct {
	Path string
	Data []byte
}

// Options configure Run. Zero values fall back to a single worker, JS
// output and the reference template builder.
type Options struct {
	Workers             int
	Format              string
	ClosureCompiler     bool
	EmitClassStatements bool
	WrapInClosure       bool

	TemplateBuilder view.TemplateBuilder
	Tracer          trace.Tracer
	Logger          *slog.Logger
	Metrics         *observability.CompileMetrics
}

// FromConfig copies the compiler and output settings of cfg.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Workers:             cfg.Workers,
		Format:              cfg.Output.Format,
		ClosureCompiler:     cfg.Compiler.ClosureCompiler,
		EmitClassStatements: cfg.Compiler.EmitClassStatements,
		WrapInClosure:       cfg.Compiler.WrapInClosure,
	}
}

// UnitResult is the outcome of one directive or component.
type UnitResult struct {
	Name            string
	Kind            metadata.Kind
	Duration        time.Duration
	EmittedBytes    int
	PooledConstants int
	Err             error
}

// DocumentResult is the outcome of one document. Output is empty when Err
// is set.
type DocumentResult struct {
	Path   string
	Output string
	Units  []UnitResult
	Err    error
}

// Failed reports whether the document or any of its units failed.
func (r *DocumentResult) Failed() bool {
	return r.Err != nil
}

// Run compiles every source. The returned slice is parallel to sources.
// The error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, sources []Source, opts Options) ([]DocumentResult, error) {
	opts = withDefaults(opts)
	results := make([]DocumentResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = compileDocument(gctx, sources[i], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("compile documents: %w", err)
	}
	return results, nil
}

func withDefaults(opts Options) Options {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Format == "" {
		opts.Format = config.OutputFormatJS
	}
	if opts.TemplateBuilder == nil {
		opts.TemplateBuilder = template.NewBuilder()
	}
	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("ngdefc")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}

func compileDocument(ctx context.Context, src Source, opts Options) DocumentResult {
	ctx, span := opts.Tracer.Start(ctx, "ngdefc.document",
		trace.WithAttributes(attribute.String("document.path", src.Path)))
	defer span.End()

	result := DocumentResult{Path: src.Path}
	fail := func(err error) DocumentResult {
		result.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result
	}

	doc, err := metadata.Parse(src.Path, src.Data)
	if err != nil {
		return fail(err)
	}
	units, err := doc.Units(metadata.Options{WrapInClosure: opts.WrapInClosure})
	if err != nil {
		return fail(fmt.Errorf("%s: %w", src.Path, err))
	}

	cctx := view.NewCompilationContext(opts.ClosureCompiler)
	cctx.TemplateBuilder = opts.TemplateBuilder
	emitter := output.NewJsEmitter()

	var (
		chunks []string
		errs   []error
	)
	for _, unit := range units {
		res, ur := compileUnit(ctx, unit, cctx, opts)
		if ur.Err == nil {
			text := render(emitter, unit, res, opts)
			ur.EmittedBytes = len(text)
			chunks = append(chunks, text)
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", unit.Name, ur.Err))
		}
		opts.Metrics.RecordUnit(ctx, unitStats(ur))
		opts.Logger.DebugContext(ctx, "compiled unit",
			slog.String("document", src.Path),
			slog.String("unit", unit.Name),
			slog.String("kind", string(unit.Kind)),
			slog.Duration("duration", ur.Duration),
			slog.Bool("ok", ur.Err == nil))
		result.Units = append(result.Units, ur)
	}
	if len(errs) > 0 {
		return fail(fmt.Errorf("%s: %w", src.Path, errors.Join(errs...)))
	}

	result.Output = assemble(emitter, cctx, chunks, opts)
	return result
}

func compileUnit(ctx context.Context, unit metadata.Unit, cctx *view.CompilationContext, opts Options) (*render3.R3CompiledExpression, UnitResult) {
	_, span := opts.Tracer.Start(ctx, "ngdefc.unit", trace.WithAttributes(
		attribute.String("unit.name", unit.Name),
		attribute.String("unit.kind", string(unit.Kind)),
	))
	defer span.End()

	ur := UnitResult{Name: unit.Name, Kind: unit.Kind}
	pooledBefore := len(cctx.Pool.Statements())
	start := time.Now()

	var (
		res *render3.R3CompiledExpression
		err error
	)
	switch unit.Kind {
	case metadata.KindComponent:
		res, err = compiler.CompileComponentFromSummary(unit.Component, cctx)
	case metadata.KindPipe:
		res, err = compiler.CompilePipeFromSummary(unit.Pipe)
	default:
		res, err = compiler.CompileDirectiveFromSummary(unit.Directive, cctx)
	}

	ur.Duration = time.Since(start)
	ur.PooledConstants = len(cctx.Pool.Statements()) - pooledBefore
	if err != nil {
		ur.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, ur
}

func unitStats(ur UnitResult) observability.UnitStats {
	status := observability.StatusOK
	if ur.Err != nil {
		status = observability.StatusError
	}
	return observability.UnitStats{
		Kind:            string(ur.Kind),
		Status:          status,
		Duration:        ur.Duration,
		EmittedBytes:    ur.EmittedBytes,
		PooledConstants: ur.PooledConstants,
	}
}

// definitionField is the static class field a definition is assigned to.
func definitionField(kind metadata.Kind) string {
	switch kind {
	case metadata.KindComponent:
		return "ngComponentDef"
	case metadata.KindPipe:
		return "ngPipeDef"
	}
	return "ngDirectiveDef"
}

func render(emitter *output.JsEmitter, unit metadata.Unit, res *render3.R3CompiledExpression, opts Options) string {
	field := definitionField(unit.Kind)
	if opts.Format == config.OutputFormatDTS {
		return fmt.Sprintf("export declare class %s {\n  static %s: %s;\n}", unit.Name, field, emitter.EmitType(res.Type))
	}

	stmts := res.Statements
	if !opts.EmitClassStatements {
		// the class assignment is always the last statement
		stmts = append(stmts[:len(stmts)-1:len(stmts)-1],
			output.NewDeclareVarStmt(unit.Name+"_"+field, res.Expression, nil, output.StmtModifierNone, nil))
	}
	return strings.TrimRight(emitter.EmitStatements(stmts), "\n")
}

// assemble joins the import header, the pooled constants and the unit
// chunks. Constants are emitted last so every module alias is known.
func assemble(emitter *output.JsEmitter, cctx *view.CompilationContext, chunks []string, opts Options) string {
	var constants string
	if opts.Format != config.OutputFormatDTS {
		constants = strings.TrimRight(emitter.EmitStatements(cctx.Pool.Statements()), "\n")
	}

	var parts []string
	if header := emitter.ImportHeader(); header != "" {
		parts = append(parts, header)
	}
	if constants != "" {
		parts = append(parts, constants)
	}
	parts = append(parts, chunks...)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n"
}
