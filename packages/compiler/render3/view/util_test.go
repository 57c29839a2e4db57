package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3/view"
)

func TestParseNamedProperty(t *testing.T) {
	cases := []struct {
		name, property, unit string
	}{
		{"style.width.px", "width", "px"},
		{"style.color", "color", ""},
		{"class.is-active", "is-active", ""},
		{"title", "title", ""},
	}
	for _, c := range cases {
		t.Run("should parse "+c.name, func(t *testing.T) {
			property, unit := view.ParseNamedProperty(c.name)
			if property != c.property || unit != c.unit {
				t.Errorf("Expected (%q, %q), got (%q, %q)", c.property, c.unit, property, unit)
			}
		})
	}
}

func TestDefinitionMap(t *testing.T) {
	t.Run("should keep insertion order and overwrite in place", func(t *testing.T) {
		dm := view.NewDefinitionMap()
		dm.Set("type", output.Variable("MyDir"))
		dm.Set("selectors", output.Literal("x"))
		dm.Set("type", output.Variable("Other"))
		dm.Set("ignored", nil)
		dm.SetOptional("missing", view.None)
		dm.SetOptional("exportAs", view.Some(output.Literal("dir")))

		if diff := cmp.Diff([]string{"type", "selectors", "exportAs"}, dm.Keys()); diff != "" {
			t.Errorf("Keys mismatch (-want +got):\n%s", diff)
		}
		expected := "{type:Other,selectors:'x',exportAs:'dir'}"
		if got := output.NewJsEmitter().EmitExpression(dm.ToLiteralMap()); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	})
}

func TestConditionallyCreateMapObjectLiteral(t *testing.T) {
	t.Run("should return None for no bindings", func(t *testing.T) {
		if view.ConditionallyCreateMapObjectLiteral(nil).Present() {
			t.Errorf("Expected None")
		}
	})

	t.Run("should emit pairs for renamed bindings", func(t *testing.T) {
		literal := view.ConditionallyCreateMapObjectLiteral([]view.R3BindingPropertyMetadata{
			{ClassPropertyName: "value", BindingPropertyName: "value"},
			{ClassPropertyName: "label", BindingPropertyName: "aria-label"},
		})
		expected := "{value:'value',label:['aria-label','label']}"
		if got := emitOptional(t, literal); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	})
}

func TestAsLiteral(t *testing.T) {
	t.Run("should convert parsed selectors", func(t *testing.T) {
		selector := "[dir], .cls"
		selectors, err := core.ParseSelectorToR3Selector(&selector)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "[['','dir',''],['',8,'cls']]"
		if got := output.NewJsEmitter().EmitExpression(view.AsLiteral(selectors)); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	})
}

func TestRenderFlagCheckIfStmt(t *testing.T) {
	t.Run("should guard statements by render flag", func(t *testing.T) {
		stmt := view.RenderFlagCheckIfStmt(core.RenderFlagsUpdate, []output.OutputStatement{output.Stmt(output.Variable("a"))})
		if got := output.NewJsEmitter().EmitStatements([]output.OutputStatement{stmt}); got != "if (rf & 2) { a; }" {
			t.Errorf("Unexpected statement %q", got)
		}
	})
}
