package constant_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
)

func strArr(values ...string) *output.LiteralArrayExpr {
	entries := make([]output.OutputExpression, len(values))
	for i, v := range values {
		entries[i] = output.Literal(v)
	}
	return output.LiteralArr(entries)
}

func TestConstantPool(t *testing.T) {
	t.Run("should leave short primitive literals inline", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		lit := output.Literal("dir")
		if got := pool.GetConstLiteral(lit, true); got != lit {
			t.Errorf("Expected the literal itself, got %T", got)
		}
		if len(pool.Statements()) != 0 {
			t.Errorf("Expected no statements, got %d", len(pool.Statements()))
		}
	})

	t.Run("should share an array on first use when forced", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		e := output.NewJsEmitter()
		ref := pool.GetConstLiteral(strArr("a", "b"), true)
		if got := e.EmitExpression(ref); got != "_c0" {
			t.Errorf("Expected %q, got %q", "_c0", got)
		}
		got := e.EmitStatements(pool.Statements())
		want := "var _c0 = ['a','b'];"
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	})

	t.Run("should promote a literal on its second use", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		e := output.NewJsEmitter()
		first := pool.GetConstLiteral(strArr("x"), false)
		if got := e.EmitExpression(first); got != "['x']" {
			t.Errorf("Expected inline literal, got %q", got)
		}
		second := pool.GetConstLiteral(strArr("x"), false)
		if got := e.EmitExpression(first); got != "_c0" {
			t.Errorf("Expected first use to be fixed up to %q, got %q", "_c0", got)
		}
		if got := e.EmitExpression(second); got != "_c0" {
			t.Errorf("Expected %q, got %q", "_c0", got)
		}
		if len(pool.Statements()) != 1 {
			t.Errorf("Expected 1 statement, got %d", len(pool.Statements()))
		}
	})

	t.Run("should reuse identical constants", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		a := pool.GetConstLiteral(strArr("q"), true)
		b := pool.GetConstLiteral(strArr("q"), true)
		c := pool.GetConstLiteral(strArr("r"), true)
		e := output.NewJsEmitter()
		got := []string{e.EmitExpression(a), e.EmitExpression(b), e.EmitExpression(c)}
		if diff := cmp.Diff([]string{"_c0", "_c0", "_c1"}, got); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should wrap long strings in a function under closure", func(t *testing.T) {
		pool := constant.NewConstantPool(true)
		long := output.Literal("0123456789012345678901234567890123456789012345678901234567890")
		ref := pool.GetConstLiteral(long, true)
		e := output.NewJsEmitter()
		if got := e.EmitExpression(ref); got != "_c0()" {
			t.Errorf("Expected %q, got %q", "_c0()", got)
		}
	})

	t.Run("should build a pure literal factory for non-constant entries", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		lit := output.LiteralArr([]output.OutputExpression{output.Literal(1), output.Variable("ctx")})
		factory, args, err := pool.GetLiteralFactory(lit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		e := output.NewJsEmitter()
		if got := e.EmitExpression(factory); got != "_c0" {
			t.Errorf("Expected %q, got %q", "_c0", got)
		}
		if len(args) != 1 {
			t.Fatalf("Expected 1 argument, got %d", len(args))
		}
		again, _, _ := pool.GetLiteralFactory(output.LiteralArr([]output.OutputExpression{output.Literal(1), output.Variable("other")}))
		if again != factory {
			t.Errorf("Expected the factory to be reused")
		}
	})

	t.Run("should reject non-literal factories", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		if _, _, err := pool.GetLiteralFactory(output.Variable("x")); err == nil {
			t.Errorf("Expected an error")
		}
	})

	t.Run("should hand out unique names", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		got := []string{
			pool.UniqueName("_t", false),
			pool.UniqueName("_t", false),
			pool.UniqueName("_b", true),
		}
		if diff := cmp.Diff([]string{"_t", "_t1", "_b0"}, got); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})
}
