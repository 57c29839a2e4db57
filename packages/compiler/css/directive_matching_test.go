package css_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngdefc/packages/compiler/css"
)

func mustParse(t *testing.T, selector string) []*css.CssSelector {
	t.Helper()
	result, err := css.ParseCssSelector(selector)
	if err != nil {
		t.Fatalf("parse %q: %v", selector, err)
	}
	return result
}

func TestParseCssSelector(t *testing.T) {
	t.Run("should parse elements, classes and attributes", func(t *testing.T) {
		s := mustParse(t, "div.Foo.bar[title=Hello][hidden]")[0]
		if s.Element == nil || *s.Element != "div" {
			t.Fatalf("Expected element div, got %v", s.Element)
		}
		if diff := cmp.Diff([]string{"foo", "bar"}, s.ClassNames); diff != "" {
			t.Errorf("classes mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"title", "hello", "hidden", ""}, s.Attrs); diff != "" {
			t.Errorf("attrs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse quoted attribute values", func(t *testing.T) {
		got := []string{}
		for _, s := range mustParse(t, `[a="x y"],[b='z']`) {
			got = append(got, s.Attrs...)
		}
		if diff := cmp.Diff([]string{"a", "x y", "b", "z"}, got); diff != "" {
			t.Errorf("attrs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should fold classes into the attrs of GetAttrs", func(t *testing.T) {
		s := mustParse(t, "my-app.a.b[role=main]")[0]
		if diff := cmp.Diff([]string{"class", "a b", "role", "main"}, s.GetAttrs()); diff != "" {
			t.Errorf("attrs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should print selectors back", func(t *testing.T) {
		s := mustParse(t, "a.b[c=d]:not([e])")[0]
		if got := s.String(); got != "a.b[c=d]:not([e])" {
			t.Errorf("Expected %q, got %q", "a.b[c=d]:not([e])", got)
		}
	})

	t.Run("should reject multiple selectors inside :not", func(t *testing.T) {
		if _, err := css.ParseCssSelector("a:not(b, c)"); err == nil {
			t.Errorf("Expected an error")
		}
	})
}

func TestSelectorMatcher(t *testing.T) {
	register := func(t *testing.T, selectors ...string) *css.SelectorMatcher[string] {
		m := css.NewSelectorMatcher[string]()
		for _, s := range selectors {
			m.AddSelectables(mustParse(t, s), s)
		}
		return m
	}
	matches := func(m *css.SelectorMatcher[string], el *css.CssSelector) []string {
		got := []string{}
		m.Match(el, func(_ *css.CssSelector, ctx string) { got = append(got, ctx) })
		return got
	}

	t.Run("should match elements and attributes", func(t *testing.T) {
		m := register(t, "my-comp", "[dir]", "[other]")
		el := css.CreateCssSelector("my-comp", [][2]string{{"dir", ""}})
		if diff := cmp.Diff([]string{"my-comp", "[dir]"}, matches(m, el)); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should match attribute values and bare attributes", func(t *testing.T) {
		m := register(t, "[type=text]", "[type]", "[type=number]")
		el := css.CreateCssSelector("input", [][2]string{{"type", "text"}})
		if diff := cmp.Diff([]string{"[type]", "[type=text]"}, matches(m, el)); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should match classes from the class attribute", func(t *testing.T) {
		m := register(t, ".active", "button.primary")
		el := css.CreateCssSelector("button", [][2]string{{"class", "primary active"}})
		if diff := cmp.Diff([]string{"button.primary", ".active"}, matches(m, el)); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should honor :not", func(t *testing.T) {
		m := register(t, "[foo]:not([bar])")
		if got := matches(m, css.CreateCssSelector("div", [][2]string{{"foo", ""}})); len(got) != 1 {
			t.Errorf("Expected one match, got %v", got)
		}
		if got := matches(m, css.CreateCssSelector("div", [][2]string{{"foo", ""}, {"bar", ""}})); len(got) != 0 {
			t.Errorf("Expected no match, got %v", got)
		}
	})

	t.Run("should report a selector list once", func(t *testing.T) {
		m := register(t, "a, [b]")
		got := matches(m, css.CreateCssSelector("a", [][2]string{{"b", ""}}))
		if diff := cmp.Diff([]string{"a, [b]"}, got); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report no match", func(t *testing.T) {
		m := register(t, "x-foo")
		if m.Match(css.CreateCssSelector("x-bar", nil), nil) {
			t.Errorf("Expected no match")
		}
	})
}
