package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"ngdefc/internal/config"
	"ngdefc/internal/metadata"
	"ngdefc/internal/observability"
	"ngdefc/internal/pipeline"
	"ngdefc/packages/compiler/util"
)

const directivesDoc = `
directives:
  - name: MyDir
    selector: "[myDir]"
    queries:
      - property: items
        predicate: [item]
`

const componentsDoc = `
components:
  - name: MyComp
    selector: my-comp
    template:
      - element: span
`

func run(t *testing.T, opts pipeline.Options, sources ...pipeline.Source) []pipeline.DocumentResult {
	t.Helper()
	results, err := pipeline.Run(context.Background(), sources, opts)
	require.NoError(t, err)
	require.Len(t, results, len(sources))
	return results
}

func TestRun(t *testing.T) {
	t.Run("should keep the input order", func(t *testing.T) {
		results := run(t, pipeline.Options{Workers: 4, EmitClassStatements: true},
			pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc)},
			pipeline.Source{Path: "b.yaml", Data: []byte(componentsDoc)},
		)
		assert.Equal(t, "a.yaml", results[0].Path)
		assert.Equal(t, "b.yaml", results[1].Path)
		require.NoError(t, results[0].Err)
		require.NoError(t, results[1].Err)
		assert.Contains(t, results[0].Output, "MyDir.ngDirectiveDef = i0.ɵdefineDirective({")
		assert.Contains(t, results[1].Output, "MyComp.ngComponentDef = i0.ɵdefineComponent({")
	})

	t.Run("should emit imports and constants before definitions", func(t *testing.T) {
		out := run(t, pipeline.Options{EmitClassStatements: true},
			pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc)})[0].Output

		assert.True(t, strings.HasPrefix(out, "import * as i0 from '@angular/core';\n"), out)
		constant := strings.Index(out, "var _c0 = ['item'];")
		definition := strings.Index(out, "MyDir.ngDirectiveDef")
		require.GreaterOrEqual(t, constant, 0, out)
		assert.Less(t, constant, definition)
	})

	t.Run("should report unit statistics", func(t *testing.T) {
		units := run(t, pipeline.Options{EmitClassStatements: true},
			pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc)})[0].Units
		require.Len(t, units, 1)
		assert.Equal(t, "MyDir", units[0].Name)
		assert.Equal(t, metadata.KindDirective, units[0].Kind)
		assert.Equal(t, 1, units[0].PooledConstants)
		assert.Positive(t, units[0].EmittedBytes)
	})

	t.Run("should declare variables without class statements", func(t *testing.T) {
		out := run(t, pipeline.Options{},
			pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc)})[0].Output
		assert.Contains(t, out, "var MyDir_ngDirectiveDef = i0.ɵdefineDirective({")
		assert.NotContains(t, out, "MyDir.ngDirectiveDef")
	})

	t.Run("should emit type declarations", func(t *testing.T) {
		out := run(t, pipeline.Options{Format: config.OutputFormatDTS},
			pipeline.Source{Path: "b.yaml", Data: []byte(componentsDoc)})[0].Output
		assert.Equal(t, "import * as i0 from '@angular/core';\n"+
			"export declare class MyComp {\n"+
			"  static ngComponentDef: i0.ɵComponentDefWithMeta<MyComp, 'my-comp', never, {}, {}, never>;\n"+
			"}\n", out)
	})

	t.Run("should define pipes", func(t *testing.T) {
		out := run(t, pipeline.Options{EmitClassStatements: true},
			pipeline.Source{Path: "p.yaml", Data: []byte("pipes: [{name: UpperPipe, pipeName: upper}]")})[0].Output
		assert.Contains(t, out, "UpperPipe.ngPipeDef = i0.ɵdefinePipe({name:'upper',type:UpperPipe,")
		assert.Contains(t, out, "pure:true})")
	})

	t.Run("should fail a document with an anonymous directive", func(t *testing.T) {
		results := run(t, pipeline.Options{Workers: 2},
			pipeline.Source{Path: "bad.yaml", Data: []byte("directives: [{selector: '[x]'}]")},
			pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc)},
		)
		assert.True(t, results[0].Failed())
		assert.ErrorIs(t, results[0].Err, util.ErrUnresolvableIdentity)
		assert.Empty(t, results[0].Output)
		assert.False(t, results[1].Failed())
	})

	t.Run("should fail a document that breaks the schema", func(t *testing.T) {
		result := run(t, pipeline.Options{},
			pipeline.Source{Path: "bad.yaml", Data: []byte("directives: [{name: A, bogus: true}]")})[0]
		assert.ErrorIs(t, result.Err, metadata.ErrInvalidDocument)
		assert.Empty(t, result.Units)
	})

	t.Run("should produce identical output on every run", func(t *testing.T) {
		src := pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc + strings.TrimPrefix(componentsDoc, "\n"))}
		first := run(t, pipeline.Options{}, src)[0]
		second := run(t, pipeline.Options{}, src)[0]
		require.NoError(t, first.Err)
		assert.Equal(t, first.Output, second.Output)
	})

	t.Run("should stop on a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pipeline.Run(ctx, []pipeline.Source{{Path: "a.yaml", Data: []byte(directivesDoc)}}, pipeline.Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRunTelemetry(t *testing.T) {
	t.Run("should record spans and metrics per unit", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		metrics, err := observability.NewCompileMetrics(mp.Meter("test"))
		require.NoError(t, err)

		run(t, pipeline.Options{Tracer: tp.Tracer("test"), Metrics: metrics},
			pipeline.Source{Path: "a.yaml", Data: []byte(directivesDoc)},
			pipeline.Source{Path: "b.yaml", Data: []byte(componentsDoc)},
		)

		names := map[string]int{}
		for _, span := range recorder.Ended() {
			names[span.Name()]++
		}
		assert.Equal(t, map[string]int{"ngdefc.document": 2, "ngdefc.unit": 2}, names)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		var total int64
		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				if m.Name != "ngdefc.units.total" {
					continue
				}
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
		assert.Equal(t, int64(2), total)
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("should copy compiler settings", func(t *testing.T) {
		cfg := &config.Config{
			Compiler: config.CompilerConfig{ClosureCompiler: true, EmitClassStatements: true, WrapInClosure: true},
			Output:   config.OutputConfig{Format: config.OutputFormatDTS},
			Workers:  3,
		}
		opts := pipeline.FromConfig(cfg)
		assert.Equal(t, 3, opts.Workers)
		assert.Equal(t, config.OutputFormatDTS, opts.Format)
		assert.True(t, opts.ClosureCompiler)
		assert.True(t, opts.EmitClassStatements)
		assert.True(t, opts.WrapInClosure)
	})
}
