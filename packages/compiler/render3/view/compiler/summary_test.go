package compiler_test

import (
	"errors"
	"strings"
	"testing"

	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/render3/view/compiler"
	"ngdefc/packages/compiler/util"
)

func TestCompileDirectiveFromSummary(t *testing.T) {
	t.Run("should assign the definition to the class", func(t *testing.T) {
		raw := util.NewOrderedMap[string]()
		raw.Set("[title]", "title")
		raw.Set("(click)", "onClick()")
		summary := &compiler.DirectiveSummary{R3DirectiveMetadata: *newDirective("MyDir", "[my-dir]"), RawHost: raw}

		res, err := compiler.CompileDirectiveFromSummary(summary, view.NewCompilationContext(false))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(res.Statements) != 1 {
			t.Fatalf("Expected one statement, got %d", len(res.Statements))
		}
		got := output.NewJsEmitter().EmitStatements(res.Statements)
		if !strings.HasPrefix(got, "MyDir.ngDirectiveDef = i0.ɵdefineDirective({") {
			t.Errorf("Unexpected statement %q", got)
		}
		for _, want := range []string{"i0.ɵlistener('click'", "i0.ɵelementProperty(elIndex,'title'"} {
			if !strings.Contains(got, want) {
				t.Errorf("Expected %q in %q", want, got)
			}
		}
	})

	t.Run("should ignore pre-split host metadata", func(t *testing.T) {
		meta := newDirective("MyDir", "[my-dir]")
		meta.Host.Properties.Set("title", "title")
		res, err := compiler.CompileDirectiveFromSummary(&compiler.DirectiveSummary{R3DirectiveMetadata: *meta}, view.NewCompilationContext(false))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if hasField(t, res, "hostBindings") {
			t.Errorf("Expected the raw host map to be the only source of bindings")
		}
	})

	t.Run("should describe an anonymous directive without a name", func(t *testing.T) {
		meta := newDirective("", "")
		meta.Selector = nil
		_, err := compiler.CompileDirectiveFromSummary(&compiler.DirectiveSummary{R3DirectiveMetadata: *meta}, view.NewCompilationContext(false))
		if !errors.Is(err, util.ErrUnresolvableIdentity) {
			t.Fatalf("Expected ErrUnresolvableIdentity, got %v", err)
		}
		if want := "Cannot resolve the name of an anonymous directive"; !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %q", want, err.Error())
		}
	})
}

func TestCompileComponentFromSummary(t *testing.T) {
	t.Run("should assign the component definition to the class", func(t *testing.T) {
		ctx := view.NewCompilationContext(false)
		ctx.TemplateBuilder = &recordingBuilder{}
		summary := &compiler.ComponentSummary{R3ComponentMetadata: *newComponent("MyComp", "my-comp")}

		res, err := compiler.CompileComponentFromSummary(summary, ctx)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got := output.NewJsEmitter().EmitStatements(res.Statements)
		if !strings.HasPrefix(got, "MyComp.ngComponentDef = i0.ɵdefineComponent({") {
			t.Errorf("Unexpected statement %q", got)
		}
	})
}

func TestCompilePipeFromSummary(t *testing.T) {
	t.Run("should assign the pipe definition to the class", func(t *testing.T) {
		res, err := compiler.CompilePipeFromSummary(&render3.R3PipeMetadata{
			Name:     "UpperPipe",
			Type:     render3.NewR3Reference("UpperPipe"),
			PipeName: "upper",
			Deps:     []render3.R3DependencyMetadata{},
			Pure:     true,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got := output.NewJsEmitter().EmitStatements(res.Statements)
		if !strings.HasPrefix(got, "UpperPipe.ngPipeDef = i0.ɵdefinePipe({name:'upper',type:UpperPipe,") {
			t.Errorf("Unexpected statement %q", got)
		}
	})
}
