package render3_test

import (
	"testing"

	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
)

func TestCompileFactoryFunction(t *testing.T) {
	t.Run("should instantiate the type with injected dependencies", func(t *testing.T) {
		fn, err := render3.CompileFactoryFunction(&render3.R3FactoryMetadata{
			Name: "MyDir",
			Type: output.Variable("MyDir"),
			Deps: []render3.R3DependencyMetadata{
				{Token: output.Variable("Service")},
				{Token: output.Variable("Other"), Optional: true, Self: true},
				{Token: output.Literal("title"), Resolved: render3.R3ResolvedDependencyTypeAttribute},
				{Resolved: render3.R3ResolvedDependencyTypeElementRef},
				{Resolved: render3.R3ResolvedDependencyTypeChangeDetectorRef},
				{Resolved: render3.R3ResolvedDependencyTypeInjector},
			},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "function MyDir_Factory(t) {\n" +
			"  return new (t || MyDir)(i0.ɵdirectiveInject(Service),i0.ɵdirectiveInject(Other,10)," +
			"i0.ɵinjectAttribute('title'),i0.ɵinjectElementRef(),i0.ɵinjectChangeDetectorRef()," +
			"i0.ɵdirectiveInject(i0.INJECTOR));\n" +
			"}"
		if got := output.NewJsEmitter().EmitExpression(fn.Factory); got != expected {
			t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
		}
		if len(fn.Statements) != 0 {
			t.Errorf("Expected no statements, got %d", len(fn.Statements))
		}
	})

	t.Run("should emit an empty constructor call for empty deps", func(t *testing.T) {
		fn, err := render3.CompileFactoryFunction(&render3.R3FactoryMetadata{
			Name: "MyDir",
			Type: output.Variable("MyDir"),
			Deps: []render3.R3DependencyMetadata{},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "function MyDir_Factory(t) {\n  return new (t || MyDir)();\n}"
		if got := output.NewJsEmitter().EmitExpression(fn.Factory); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	})

	t.Run("should delegate to the inherited factory without deps", func(t *testing.T) {
		fn, err := render3.CompileFactoryFunction(&render3.R3FactoryMetadata{
			Name: "Child",
			Type: output.Variable("Child"),
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		e := output.NewJsEmitter()
		if got := e.EmitExpression(fn.Factory); got != "function Child_Factory(t) {\n  return ɵChild_BaseFactory((t || Child));\n}" {
			t.Errorf("Unexpected factory %q", got)
		}
		if got := e.EmitStatements(fn.Statements); got != "var ɵChild_BaseFactory = i0.ɵgetInheritedFactory(Child);" {
			t.Errorf("Unexpected statements %q", got)
		}
	})

	t.Run("should reject unknown dependency kinds", func(t *testing.T) {
		_, err := render3.CompileFactoryFunction(&render3.R3FactoryMetadata{
			Name: "MyDir",
			Type: output.Variable("MyDir"),
			Deps: []render3.R3DependencyMetadata{{Resolved: render3.R3ResolvedDependencyType(99)}},
		})
		if err == nil {
			t.Errorf("Expected an error")
		}
	})
}

func TestTypeWithParameters(t *testing.T) {
	t.Run("should add one any per type argument", func(t *testing.T) {
		e := output.NewJsEmitter()
		if got := e.EmitType(render3.TypeWithParameters(output.Variable("Box"), 2)); got != "Box<any, any>" {
			t.Errorf("Expected %q, got %q", "Box<any, any>", got)
		}
		if got := e.EmitType(render3.TypeWithParameters(output.Variable("Box"), 0)); got != "Box" {
			t.Errorf("Expected %q, got %q", "Box", got)
		}
	})
}

func TestRefsToArray(t *testing.T) {
	t.Run("should wrap in a closure when forward declared", func(t *testing.T) {
		e := output.NewJsEmitter()
		refs := []output.OutputExpression{output.Variable("A"), output.Variable("B")}
		if got := e.EmitExpression(render3.RefsToArray(refs, false)); got != "[A,B]" {
			t.Errorf("Expected %q, got %q", "[A,B]", got)
		}
		if got := e.EmitExpression(render3.RefsToArray(refs, true)); got != "function() {\n  return [A,B];\n}" {
			t.Errorf("Unexpected closure %q", got)
		}
	})
}
