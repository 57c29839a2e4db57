package render3_test

import (
	"errors"
	"testing"

	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/util"
)

func TestCompilePipeFromMetadata(t *testing.T) {
	t.Run("should define a pure pipe", func(t *testing.T) {
		res, err := render3.CompilePipeFromMetadata(&render3.R3PipeMetadata{
			Name:     "MyPipe",
			Type:     render3.NewR3Reference("MyPipe"),
			PipeName: "myPipe",
			Deps:     []render3.R3DependencyMetadata{{Token: output.Variable("Locale")}},
			Pure:     true,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		emitter := output.NewJsEmitter()
		expected := "i0.ɵdefinePipe({name:'myPipe',type:MyPipe,factory:function MyPipe_Factory(t) {\n" +
			"  return new (t || MyPipe)(i0.ɵdirectiveInject(Locale));\n" +
			"},pure:true})"
		if got := emitter.EmitExpression(res.Expression); got != expected {
			t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
		}
		if got, want := emitter.EmitType(res.Type), "i0.ɵPipeDefWithMeta<MyPipe, 'myPipe'>"; got != want {
			t.Errorf("Expected type %q, got %q", want, got)
		}
	})

	t.Run("should fall back to the class name", func(t *testing.T) {
		res, err := render3.CompilePipeFromMetadata(&render3.R3PipeMetadata{
			Name: "Upper",
			Type: render3.NewR3Reference("Upper"),
			Deps: []render3.R3DependencyMetadata{},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got, want := output.NewJsEmitter().EmitType(res.Type), "i0.ɵPipeDefWithMeta<Upper, 'Upper'>"; got != want {
			t.Errorf("Expected type %q, got %q", want, got)
		}
	})

	t.Run("should declare the base factory of an inheriting pipe", func(t *testing.T) {
		res, err := render3.CompilePipeFromMetadata(&render3.R3PipeMetadata{
			Name:     "Child",
			Type:     render3.NewR3Reference("Child"),
			PipeName: "child",
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(res.Statements) != 1 {
			t.Fatalf("Expected the base factory statement, got %d statements", len(res.Statements))
		}
	})

	t.Run("should reject a pipe without a class name", func(t *testing.T) {
		_, err := render3.CompilePipeFromMetadata(&render3.R3PipeMetadata{PipeName: "anon"})
		if !errors.Is(err, util.ErrUnresolvableIdentity) {
			t.Fatalf("Expected ErrUnresolvableIdentity, got %v", err)
		}
	})
}
