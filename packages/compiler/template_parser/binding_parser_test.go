package template_parser_test

import (
	"errors"
	"strings"
	"testing"

	"ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/template_parser"
	"ngdefc/packages/compiler/util"
)

func summaryOf(props, listeners [][2]string) *template_parser.DirectiveSummary {
	s := &template_parser.DirectiveSummary{
		Name:           "Dir",
		HostProperties: util.NewOrderedMap[string](),
		HostListeners:  util.NewOrderedMap[string](),
	}
	for _, p := range props {
		s.HostProperties.Set(p[0], p[1])
	}
	for _, l := range listeners {
		s.HostListeners.Set(l[0], l[1])
	}
	return s
}

func TestBindingParser(t *testing.T) {
	span := util.SyntheticSourceSpan("Directive", "Dir", "dir.ts")
	bp := template_parser.NewBindingParser(nil, [2]string{})

	t.Run("should keep host properties in declaration order", func(t *testing.T) {
		props, err := bp.CreateBoundHostProperties(summaryOf([][2]string{
			{"title", "label"}, {"attr.role", "role"}, {"@fade", "state"}, {"animate-slide", ""},
		}, nil), span)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		names := []string{}
		for _, p := range props {
			names = append(names, p.Name)
		}
		if got := strings.Join(names, ","); got != "title,attr.role,fade,slide" {
			t.Errorf("Expected %q, got %q", "title,attr.role,fade,slide", got)
		}
		if props[0].IsAnimation() || !props[2].IsAnimation() || !props[3].IsAnimation() {
			t.Errorf("Expected only the @ and animate- bindings to be animations")
		}
		if _, ok := props[3].Expression.AST.(*expression_parser.LiteralPrimitive); !ok {
			t.Errorf("Expected an empty animation binding to parse as null, got %T", props[3].Expression.AST)
		}
	})

	t.Run("should parse interpolated values as interpolations", func(t *testing.T) {
		props, err := bp.CreateBoundHostProperties(summaryOf([][2]string{{"title", "a {{b}}"}}, nil), span)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, ok := props[0].Expression.AST.(*expression_parser.Interpolation); !ok {
			t.Errorf("Expected Interpolation, got %T", props[0].Expression.AST)
		}
	})

	t.Run("should return nil when there are no bindings", func(t *testing.T) {
		props, err := bp.CreateBoundHostProperties(summaryOf(nil, nil), span)
		if err != nil || props != nil {
			t.Errorf("Expected nil, got %v (%v)", props, err)
		}
		events, err := bp.CreateDirectiveHostEventAsts(summaryOf(nil, nil), span)
		if err != nil || events != nil {
			t.Errorf("Expected nil, got %v (%v)", events, err)
		}
	})

	t.Run("should report property parse errors", func(t *testing.T) {
		_, err := bp.CreateBoundHostProperties(summaryOf([][2]string{{"title", "a = 1"}}, nil), span)
		if !errors.Is(err, util.ErrParse) {
			t.Fatalf("Expected a parse error, got %v", err)
		}
		if !strings.Contains(err.Error(), "Bindings cannot contain assignments") {
			t.Errorf("Expected assignment error, got %q", err.Error())
		}
	})

	t.Run("should split event targets and animation phases", func(t *testing.T) {
		events, err := bp.CreateDirectiveHostEventAsts(summaryOf(nil, [][2]string{
			{"click", "onClick($event)"}, {"window:resize", "onResize()"}, {"@open.Done", "opened()"},
		}), span)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		cases := []struct {
			name, target string
			typ          template_parser.ParsedEventType
		}{
			{"click", "", template_parser.ParsedEventTypeRegular},
			{"resize", "window", template_parser.ParsedEventTypeRegular},
			{"open", "done", template_parser.ParsedEventTypeAnimation},
		}
		for i, c := range cases {
			e := events[i]
			if e.Name != c.name || e.TargetOrPhase != c.target || e.Type != c.typ {
				t.Errorf("Expected %s/%s/%d, got %s/%s/%d", c.name, c.target, c.typ, e.Name, e.TargetOrPhase, e.Type)
			}
		}
	})

	t.Run("should reject animation listeners without a valid phase", func(t *testing.T) {
		tests := map[string]string{
			"@open":      "is missing its phase value name",
			"@open.half": `phase value "half" for "@open" is not supported`,
		}
		for name, want := range tests {
			_, err := bp.CreateDirectiveHostEventAsts(summaryOf(nil, [][2]string{{name, "x()"}}), span)
			if err == nil || !strings.Contains(err.Error(), want) {
				t.Errorf("Expected error containing %q, got %v", want, err)
			}
		}
	})

	t.Run("should reject pipes in listeners", func(t *testing.T) {
		_, err := bp.CreateDirectiveHostEventAsts(summaryOf(nil, [][2]string{{"click", "a | b"}}), span)
		if !errors.Is(err, util.ErrParse) {
			t.Errorf("Expected a parse error, got %v", err)
		}
	})
}
