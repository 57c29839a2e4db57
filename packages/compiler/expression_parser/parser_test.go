package expression_parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	ep "ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/util"
)

func newParser() *ep.Parser {
	return ep.NewParser(ep.NewLexer())
}

func TestLexer(t *testing.T) {
	t.Run("should tokenize operators and identifiers", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize("a?.b !== 1.5e2 && c['d']")
		got := []string{}
		for _, tok := range tokens {
			got = append(got, tok.String())
		}
		want := []string{"a", "?.", "b", "!==", "150", "&&", "c", "[", "d", "]"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should unescape strings", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize(`'a\'b\nA'`)
		if len(tokens) != 1 || tokens[0].StrValue != "a'b\nA" {
			t.Errorf("Expected %q, got %v", "a'b\nA", tokens)
		}
	})

	t.Run("should stop at an unterminated quote", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize(`a + "b`)
		last := tokens[len(tokens)-1]
		if last.Type != ep.TokenTypeError || !strings.Contains(last.StrValue, "Unterminated quote") {
			t.Errorf("Expected an unterminated quote error, got %v", last)
		}
	})
}

func TestParser(t *testing.T) {
	t.Run("should parse property reads on the implicit receiver", func(t *testing.T) {
		res := newParser().ParseBinding("user.name", "host", nil)
		if err := res.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		read, ok := res.AST.(*ep.PropertyRead)
		if !ok || read.Name != "name" {
			t.Fatalf("Expected a read of name, got %#v", res.AST)
		}
		inner, ok := read.Receiver.(*ep.PropertyRead)
		if !ok || inner.Name != "user" {
			t.Fatalf("Expected a read of user, got %#v", read.Receiver)
		}
		if _, ok := inner.Receiver.(*ep.ImplicitReceiver); !ok {
			t.Errorf("Expected an implicit receiver, got %T", inner.Receiver)
		}
	})

	t.Run("should respect operator precedence", func(t *testing.T) {
		res := newParser().ParseBinding("a + b * c", "host", nil)
		bin, ok := res.AST.(*ep.Binary)
		if !ok || bin.Operation != "+" {
			t.Fatalf("Expected a + at the root, got %#v", res.AST)
		}
		if right, ok := bin.Right.(*ep.Binary); !ok || right.Operation != "*" {
			t.Errorf("Expected * on the right, got %#v", bin.Right)
		}
	})

	t.Run("should parse calls, literals and conditionals", func(t *testing.T) {
		res := newParser().ParseBinding("ok ? fmt([1, x], {a: 1, 'b-c': y}) : null", "host", nil)
		if err := res.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cond, ok := res.AST.(*ep.Conditional)
		if !ok {
			t.Fatalf("Expected a conditional, got %T", res.AST)
		}
		call, ok := cond.TrueExp.(*ep.Call)
		if !ok || len(call.Args) != 2 {
			t.Fatalf("Expected a call with two args, got %#v", cond.TrueExp)
		}
		m := call.Args[1].(*ep.LiteralMap)
		want := []ep.LiteralMapKey{{Key: "a"}, {Key: "b-c", Quoted: true}}
		if diff := cmp.Diff(want, m.Keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse pipes in bindings", func(t *testing.T) {
		res := newParser().ParseBinding("value | date:'short'", "host", nil)
		pipe, ok := res.AST.(*ep.BindingPipe)
		if !ok || pipe.Name != "date" || len(pipe.Args) != 1 {
			t.Errorf("Expected a date pipe with one argument, got %#v", res.AST)
		}
	})

	t.Run("should parse assignment chains in actions", func(t *testing.T) {
		res := newParser().ParseAction("count = count + 1; log($event)", "host", nil)
		if err := res.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		chain, ok := res.AST.(*ep.Chain)
		if !ok || len(chain.Expressions) != 2 {
			t.Fatalf("Expected a chain of two, got %#v", res.AST)
		}
		if _, ok := chain.Expressions[0].(*ep.PropertyWrite); !ok {
			t.Errorf("Expected a property write, got %T", chain.Expressions[0])
		}
	})

	errorCases := []struct {
		name    string
		action  bool
		input   string
		message string
	}{
		{"should reject assignments in bindings", false, "a = 1", "Bindings cannot contain assignments"},
		{"should reject chains in bindings", false, "a; b", "Binding expression cannot contain chained expression"},
		{"should reject pipes in actions", true, "a | b", "Cannot have a pipe in an action expression"},
		{"should reject interpolation in bindings", false, "{{a}}", "Got interpolation ({{}}) where expression was expected"},
		{"should reject incomplete conditionals", false, "a ? b", "requires all 3 expressions"},
		{"should reject trailing tokens", false, "a b", "Unexpected token 'b'"},
		{"should reject a dangling operator", false, "a +", "Unexpected end of expression"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			var res *ep.ASTWithSource
			if tc.action {
				res = newParser().ParseAction(tc.input, "host", nil)
			} else {
				res = newParser().ParseBinding(tc.input, "host", nil)
			}
			err := res.Err()
			if err == nil {
				t.Fatalf("Expected an error for %q", tc.input)
			}
			if !errors.Is(err, util.ErrParse) {
				t.Errorf("Expected ErrParse, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("Expected %q in %q", tc.message, err.Error())
			}
		})
	}
}

func TestInterpolation(t *testing.T) {
	t.Run("should return nil without markers", func(t *testing.T) {
		if res := newParser().ParseInterpolation("plain", "host", nil, ep.DefaultInterpolation); res != nil {
			t.Errorf("Expected nil, got %v", res)
		}
	})

	t.Run("should split text and expressions", func(t *testing.T) {
		res := newParser().ParseInterpolation("a {{x}} b {{ y }}", "host", nil, ep.DefaultInterpolation)
		interp, ok := res.AST.(*ep.Interpolation)
		if !ok {
			t.Fatalf("Expected an interpolation, got %T", res.AST)
		}
		if diff := cmp.Diff([]string{"a ", " b ", ""}, interp.Strings); diff != "" {
			t.Errorf("strings mismatch (-want +got):\n%s", diff)
		}
		if len(interp.Expressions) != 2 {
			t.Errorf("Expected 2 expressions, got %d", len(interp.Expressions))
		}
	})

	t.Run("should honor custom markers", func(t *testing.T) {
		res := newParser().ParseInterpolation("[[v]]", "host", nil, [2]string{"[[", "]]"})
		if res == nil || len(res.AST.(*ep.Interpolation).Expressions) != 1 {
			t.Errorf("Expected one expression, got %v", res)
		}
	})

	t.Run("should reject blank expressions", func(t *testing.T) {
		res := newParser().ParseInterpolation("a {{ }}", "host", nil, ep.DefaultInterpolation)
		if res.Err() == nil || !strings.Contains(res.Err().Error(), "Blank expressions") {
			t.Errorf("Expected a blank expression error, got %v", res.Err())
		}
	})
}
