package view_test

import (
	"errors"
	"testing"

	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/util"
)

func stringQuery(property string, first bool, selectors ...string) *view.R3QueryMetadata {
	predicate := make([]view.QuerySelector, len(selectors))
	for i, s := range selectors {
		predicate[i] = view.QuerySelector{Value: s}
	}
	return &view.R3QueryMetadata{PropertyName: property, First: first, Predicate: predicate, Descendants: true}
}

func emitOptional(t *testing.T, o view.Optional) string {
	t.Helper()
	expr, ok := o.Get()
	if !ok {
		t.Fatalf("Expected a function")
	}
	return output.NewJsEmitter().EmitExpression(expr)
}

func TestGetQueryPredicate(t *testing.T) {
	t.Run("should split comma separated string selectors", func(t *testing.T) {
		pool := constant.NewConstantPool(false)
		predicate, err := view.GetQueryPredicate(stringQuery("items", false, "a, b", "c"), pool)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		e := output.NewJsEmitter()
		if got := e.EmitExpression(predicate); got != "_c0" {
			t.Errorf("Expected %q, got %q", "_c0", got)
		}
		if got := e.EmitStatements(pool.Statements()); got != "var _c0 = ['a','b','c'];" {
			t.Errorf("Unexpected pool statements %q", got)
		}
	})

	t.Run("should use a single type selector as is", func(t *testing.T) {
		query := &view.R3QueryMetadata{
			PropertyName: "child",
			Predicate:    []view.QuerySelector{{Type: output.Variable("ChildDir")}},
		}
		predicate, err := view.GetQueryPredicate(query, constant.NewConstantPool(false))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := output.NewJsEmitter().EmitExpression(predicate); got != "ChildDir" {
			t.Errorf("Expected %q, got %q", "ChildDir", got)
		}
	})

	t.Run("should reject types mixed into string selectors", func(t *testing.T) {
		query := &view.R3QueryMetadata{
			PropertyName: "mixed",
			Predicate:    []view.QuerySelector{{Value: "a"}, {Type: output.Variable("T")}},
		}
		_, err := view.GetQueryPredicate(query, constant.NewConstantPool(false))
		if !errors.Is(err, util.ErrMalformedQuery) {
			t.Errorf("Expected ErrMalformedQuery, got %v", err)
		}
	})

	t.Run("should reject an empty predicate", func(t *testing.T) {
		_, err := view.GetQueryPredicate(&view.R3QueryMetadata{PropertyName: "none"}, constant.NewConstantPool(false))
		if !errors.Is(err, util.ErrMalformedQuery) {
			t.Errorf("Expected ErrMalformedQuery, got %v", err)
		}
	})
}

func TestContentQueries(t *testing.T) {
	queries := []*view.R3QueryMetadata{
		stringQuery("first", true, "ref"),
		{
			PropertyName: "all",
			Predicate:    []view.QuerySelector{{Type: output.Variable("Item")}},
			Read:         output.Variable("ElementRef"),
		},
	}

	t.Run("should register every content query", func(t *testing.T) {
		fn, err := view.CreateContentQueriesFunction(queries, constant.NewConstantPool(false), "MyDir")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "function MyDir_ContentQueries(dirIndex) {\n" +
			"  i0.ɵregisterContentQuery(i0.ɵquery(null,_c0,true),dirIndex);\n" +
			"  i0.ɵregisterContentQuery(i0.ɵquery(null,Item,false,ElementRef),dirIndex);\n" +
			"}"
		if got := emitOptional(t, fn); got != expected {
			t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
		}
	})

	t.Run("should refresh content queries from the query start index", func(t *testing.T) {
		expected := "function MyDir_ContentQueriesRefresh(dirIndex,queryStartIndex) {\n" +
			"  var instance = i0.ɵload(dirIndex);\n" +
			"  var _t;\n" +
			"  (i0.ɵqueryRefresh((_t = i0.ɵloadQueryList(queryStartIndex))) && (instance.first = _t.first));\n" +
			"  (i0.ɵqueryRefresh((_t = i0.ɵloadQueryList((queryStartIndex + 1)))) && (instance.all = _t));\n" +
			"}"
		if got := emitOptional(t, view.CreateContentQueriesRefreshFunction(queries, "MyDir")); got != expected {
			t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
		}
	})

	t.Run("should produce nothing without queries", func(t *testing.T) {
		fn, err := view.CreateContentQueriesFunction(nil, constant.NewConstantPool(false), "MyDir")
		if err != nil || fn.Present() {
			t.Errorf("Expected no function, got %v (%v)", fn, err)
		}
		if view.CreateContentQueriesRefreshFunction(nil, "MyDir").Present() {
			t.Errorf("Expected no refresh function")
		}
	})
}

func TestViewQueries(t *testing.T) {
	t.Run("should create view queries and refresh them into ctx", func(t *testing.T) {
		queries := []*view.R3QueryMetadata{
			stringQuery("input", true, "in"),
			{PropertyName: "rows", Predicate: []view.QuerySelector{{Type: output.Variable("Row")}}},
		}
		fn, err := view.CreateViewQueriesFunction(queries, constant.NewConstantPool(false), "MyComp")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expected := "function MyComp_Query(rf,ctx) {\n" +
			"  if (rf & 1) {\n" +
			"    i0.ɵquery(0,_c0,true);\n" +
			"    i0.ɵquery(1,Row,false);\n" +
			"  }\n" +
			"  if (rf & 2) {\n" +
			"    var _t;\n" +
			"    (i0.ɵqueryRefresh((_t = i0.ɵload(0))) && (ctx.input = _t.first));\n" +
			"    (i0.ɵqueryRefresh((_t = i0.ɵload(1))) && (ctx.rows = _t));\n" +
			"  }\n" +
			"}"
		if got := emitOptional(t, fn); got != expected {
			t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
		}
	})

	t.Run("should surface malformed predicates", func(t *testing.T) {
		_, err := view.CreateViewQueriesFunction([]*view.R3QueryMetadata{{PropertyName: "bad"}}, constant.NewConstantPool(false), "MyComp")
		if !errors.Is(err, util.ErrMalformedQuery) {
			t.Errorf("Expected ErrMalformedQuery, got %v", err)
		}
	})
}
