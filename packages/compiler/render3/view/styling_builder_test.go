package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	ep "ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
	"ngdefc/packages/compiler/render3/view"
)

func emitInstructions(t *testing.T, e *output.JsEmitter, instructions ...*view.Instruction) []string {
	t.Helper()
	convert := func(value ep.AST) (output.OutputExpression, error) {
		res, err := view.ConvertPropertyBinding(nil, output.Variable("ctx"), value, "b", view.BindingFormTrySimple, nil)
		if err != nil {
			return nil, err
		}
		return res.CurrValExpr, nil
	}
	var result []string
	for _, instruction := range instructions {
		if instruction == nil {
			result = append(result, "<nil>")
			continue
		}
		params, err := instruction.BuildParams(convert)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		result = append(result, e.EmitExpression(output.Call(output.ImportExpr(instruction.Reference), params...)))
	}
	return result
}

func newHostValueConverter(pool *constant.ConstantPool) *view.ValueConverter {
	slots := 0
	return view.NewValueConverter(pool, nil, func(n int) int {
		start := slots
		slots += n
		return start
	}, nil)
}

func TestClassifyHostBinding(t *testing.T) {
	cases := []struct {
		name        string
		isAnimation bool
		expected    view.HostBinding
	}{
		{"style.width.px", false, view.HostBinding{Kind: view.HostBindingKindStyleProp, Name: "width", Unit: "px"}},
		{"style.color", false, view.HostBinding{Kind: view.HostBindingKindStyleProp, Name: "color"}},
		{"style", false, view.HostBinding{Kind: view.HostBindingKindStyleMap}},
		{"class.active", false, view.HostBinding{Kind: view.HostBindingKindClassProp, Name: "active"}},
		{"className", false, view.HostBinding{Kind: view.HostBindingKindClassMap}},
		{"attr.aria-label", false, view.HostBinding{Kind: view.HostBindingKindAttribute, Name: "aria-label"}},
		{"fade", true, view.HostBinding{Kind: view.HostBindingKindSyntheticProperty, Name: "@fade"}},
		{"title", false, view.HostBinding{Kind: view.HostBindingKindProperty, Name: "title"}},
	}
	for _, c := range cases {
		t.Run("should classify "+c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, view.ClassifyHostBinding(c.name, c.isAnimation)); diff != "" {
				t.Errorf("ClassifyHostBinding(%q) mismatch (-want +got):\n%s", c.name, diff)
			}
		})
	}

	t.Run("should only report styling kinds as styling", func(t *testing.T) {
		if view.HostBindingKindProperty.IsStyling() || view.HostBindingKindAttribute.IsStyling() {
			t.Errorf("Expected property and attribute bindings not to be styling")
		}
		if !view.HostBindingKindClassMap.IsStyling() || !view.HostBindingKindStyleProp.IsStyling() {
			t.Errorf("Expected style and class bindings to be styling")
		}
	})
}

func TestStylingBuilder(t *testing.T) {
	t.Run("should produce nothing without styling", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		b := view.NewStylingBuilder(output.Variable("elIndex"), output.Variable("ctx"))
		if b.HasBindingsOrInitialValues() {
			t.Errorf("Expected no bindings")
		}
		if b.BuildHostAttrsInstruction(nil, nil, pool) != nil || b.BuildElementStylingInstruction(nil, pool) != nil {
			t.Errorf("Expected no create instructions")
		}
		update, err := b.BuildUpdateLevelInstructions(newHostValueConverter(pool))
		if err != nil || len(update) != 0 {
			t.Errorf("Expected no update instructions, got %d (%v)", len(update), err)
		}
	})

	t.Run("should emit host attrs, styling and updates for a host element", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		e := output.NewJsEmitter()
		b := view.NewStylingBuilder(output.Variable("elIndex"), output.Variable("ctx"))
		b.RegisterClassAttr("  foo   bar ")
		b.RegisterStyleAttr("width: 100px")
		b.RegisterStyleInput("height", parseBinding(t, "h"), "px", nil)
		b.RegisterClassInput("active", parseBinding(t, "isActive"), nil)

		create := emitInstructions(t, e,
			b.BuildHostAttrsInstruction(nil, nil, pool),
			b.BuildElementStylingInstruction(nil, pool),
		)
		expectedCreate := []string{
			"i0.ɵelementHostAttrs(ctx,_c0)",
			"i0.ɵelementStyling(_c1,_c2,null,ctx)",
		}
		if diff := cmp.Diff(expectedCreate, create); diff != "" {
			t.Errorf("create mismatch (-want +got):\n%s", diff)
		}
		if got := e.EmitStatements(pool.Statements()); got != "var _c0 = [1,'foo','bar',2,'width','100px'];\nvar _c1 = ['active'];\nvar _c2 = ['height'];" {
			t.Errorf("Unexpected pool statements %q", got)
		}

		instructions, err := b.BuildUpdateLevelInstructions(newHostValueConverter(pool))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expectedUpdate := []string{
			"i0.ɵelementStyleProp(elIndex,0,ctx.h,'px',ctx)",
			"i0.ɵelementClassProp(elIndex,0,ctx.isActive,ctx)",
			"i0.ɵelementStylingApply(elIndex,ctx)",
		}
		if diff := cmp.Diff(expectedUpdate, emitInstructions(t, e, instructions...)); diff != "" {
			t.Errorf("update mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should pass the sanitizer and null units for maps and sanitizable props", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		e := output.NewJsEmitter()
		b := view.NewStylingBuilder(output.Variable("elIndex"), output.Variable("ctx"))
		b.RegisterStyleInput("", parseBinding(t, "styles"), "", nil)
		b.RegisterStyleInput("background-image", parseBinding(t, "img"), "", nil)

		if b.BuildHostAttrsInstruction(nil, nil, pool) != nil {
			t.Errorf("Expected no host attrs without initial values")
		}
		instructions, err := b.BuildUpdateLevelInstructions(newHostValueConverter(pool))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got := emitInstructions(t, e, append([]*view.Instruction{b.BuildElementStylingInstruction(nil, pool)}, instructions...)...)
		expected := []string{
			"i0.ɵelementStyling(null,_c0,i0.ɵdefaultStyleSanitizer,ctx)",
			"i0.ɵelementStylingMap(elIndex,null,ctx.styles,ctx)",
			"i0.ɵelementStyleProp(elIndex,0,ctx.img,null,ctx)",
			"i0.ɵelementStylingApply(elIndex,ctx)",
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("instructions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should trim trailing arguments without a directive", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		e := output.NewJsEmitter()
		b := view.NewStylingBuilder(output.Literal(0), nil)
		b.RegisterClassInput("on", parseBinding(t, "on"), nil)
		b.RegisterClassInput("", parseBinding(t, "classes"), nil)

		instructions, err := b.BuildUpdateLevelInstructions(newHostValueConverter(pool))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got := emitInstructions(t, e, append([]*view.Instruction{b.BuildElementStylingInstruction(nil, pool)}, instructions...)...)
		expected := []string{
			"i0.ɵelementStyling(_c0)",
			"i0.ɵelementStylingMap(0,ctx.classes)",
			"i0.ɵelementClassProp(0,0,ctx.on)",
			"i0.ɵelementStylingApply(0)",
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("instructions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should give repeated names a single index", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		e := output.NewJsEmitter()
		b := view.NewStylingBuilder(output.Variable("elIndex"), output.Variable("ctx"))
		b.RegisterStyleInput("width", parseBinding(t, "a"), "", nil)
		b.RegisterStyleInput("color", parseBinding(t, "b"), "", nil)
		b.RegisterStyleInput("width", parseBinding(t, "c"), "em", nil)

		instructions, err := b.BuildUpdateLevelInstructions(newHostValueConverter(pool))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := []string{
			"i0.ɵelementStyleProp(elIndex,0,ctx.a,null,ctx)",
			"i0.ɵelementStyleProp(elIndex,1,ctx.b,null,ctx)",
			"i0.ɵelementStyleProp(elIndex,0,ctx.c,'em',ctx)",
			"i0.ɵelementStylingApply(elIndex,ctx)",
		}
		if diff := cmp.Diff(expected, emitInstructions(t, e, instructions...)); diff != "" {
			t.Errorf("instructions mismatch (-want +got):\n%s", diff)
		}
	})
}
