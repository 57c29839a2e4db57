package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngdefc/packages/compiler/render3/view"
)

func TestParseStyle(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"should parse empty or blank strings", "    ", nil},
		{"should parse a string into a key/value map", "width:100px;height:200px;opacity:0",
			[]string{"width", "100px", "height", "200px", "opacity", "0"}},
		{"should allow empty values", "width:;height:   ;",
			[]string{"width", "", "height", ""}},
		{"should trim values and properties", "width :333px ; height:666px    ; opacity: 0.5;",
			[]string{"width", "333px", "height", "666px", "opacity", "0.5"}},
		{"should chomp out start/end quotes", `content: "foo"; width: '100px'`,
			[]string{"content", "foo", "width", "100px"}},
		{"should not mess up with quoted strings that contain [:;] values", `content: "foo; man: guy"; width: 100px`,
			[]string{"content", "foo; man: guy", "width", "100px"}},
		{"should not mess up with quoted strings that contain inner quote values", `content: "one 'two' three "four" five"; width: 123px`,
			[]string{"content", `"one 'two' three "four" five"`, "width", "123px"}},
		{"should respect parenthesis that are placed within a style", `background-image: url("foo.jpg")`,
			[]string{"background-image", `url("foo.jpg")`}},
		{"should respect multi-level parenthesis that contain special [:;] characters", `color: rgba(calc(50 * 4), var(--cool), :5;); height: 100px;`,
			[]string{"color", "rgba(calc(50 * 4), var(--cool), :5;)", "height", "100px"}},
		{"should hyphenate style properties from camel case", "borderWidth: 200px",
			[]string{"border-width", "200px"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.expected, view.ParseStyle(c.input)); diff != "" {
				t.Errorf("ParseStyle(%q) mismatch (-want +got):\n%s", c.input, diff)
			}
		})
	}
}

func TestHyphenate(t *testing.T) {
	t.Run("should convert a camel-cased value to a hyphenated value", func(t *testing.T) {
		for input, expected := range map[string]string{
			"fooBar":      "foo-bar",
			"fooBarMan":   "foo-bar-man",
			"-fooBar-man": "-foo-bar-man",
		} {
			if got := view.Hyphenate(input); got != expected {
				t.Errorf("Expected %q, got %q", expected, got)
			}
		}
	})

	t.Run("should make everything lowercase", func(t *testing.T) {
		if got := view.Hyphenate("-WebkitAnimation"); got != "-webkit-animation" {
			t.Errorf("Expected %q, got %q", "-webkit-animation", got)
		}
	})
}

func TestStripUnnecessaryQuotes(t *testing.T) {
	t.Run("should keep quotes around values holding other quotes", func(t *testing.T) {
		if got := view.StripUnnecessaryQuotes(`"a 'b' c"`); got != `"a 'b' c"` {
			t.Errorf("Expected the value unchanged, got %q", got)
		}
	})

	t.Run("should keep mismatched quotes", func(t *testing.T) {
		if got := view.StripUnnecessaryQuotes(`"a'`); got != `"a'` {
			t.Errorf("Expected the value unchanged, got %q", got)
		}
	})
}
