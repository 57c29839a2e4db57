package util_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ngdefc/packages/compiler/util"
)

func TestSplitAtColon(t *testing.T) {
	t.Run("should split at the first colon and trim", func(t *testing.T) {
		got := util.SplitAtColon("window: resize", nil)
		if diff := cmp.Diff([]string{"window", "resize"}, got); diff != "" {
			t.Errorf("SplitAtColon mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should return defaults when there is no colon", func(t *testing.T) {
		got := util.SplitAtColon("click", []string{"", "click"})
		if diff := cmp.Diff([]string{"", "click"}, got); diff != "" {
			t.Errorf("SplitAtColon mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSanitizeIdentifier(t *testing.T) {
	if got := util.SanitizeIdentifier("@fade.done"); got != "_fade_done" {
		t.Errorf("Expected %q, got %q", "_fade_done", got)
	}
}

func TestOrderedMap(t *testing.T) {
	t.Run("should keep insertion order and overwrite in place", func(t *testing.T) {
		m := util.NewOrderedMap[string]()
		m.Set("b", "1")
		m.Set("a", "2")
		m.Set("b", "3")

		if diff := cmp.Diff([]string{"b", "a"}, m.Keys()); diff != "" {
			t.Errorf("Keys mismatch (-want +got):\n%s", diff)
		}
		if v, _ := m.Get("b"); v != "3" {
			t.Errorf("Expected %q, got %q", "3", v)
		}
	})

	t.Run("should treat a nil map as empty", func(t *testing.T) {
		var m *util.OrderedMap[int]
		if m.Len() != 0 {
			t.Errorf("Expected empty map")
		}
		if _, ok := m.Get("x"); ok {
			t.Errorf("Expected missing key")
		}
	})
}

func TestCompileError(t *testing.T) {
	err := error(util.NewCompileError(util.ErrMalformedQuery, nil, "Unexpected query form"))
	if !errors.Is(err, util.ErrMalformedQuery) {
		t.Errorf("Expected error to unwrap to ErrMalformedQuery")
	}
	if err.Error() != "Unexpected query form" {
		t.Errorf("Expected %q, got %q", "Unexpected query form", err.Error())
	}

	span := util.SyntheticSourceSpan("Directive", "MyDir", "my_dir.yaml")
	err = util.NewCompileError(util.ErrParse, span, "bad %s", "token")
	if got, want := err.Error(), "bad token (my_dir.yaml@0:0)"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestAssertInterpolationSymbols(t *testing.T) {
	if err := util.AssertInterpolationSymbols("interpolation", nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := util.AssertInterpolationSymbols("interpolation", []string{"[[", "]]"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := util.AssertInterpolationSymbols("interpolation", []string{"<%", "%>"}); err == nil {
		t.Errorf("Expected html-like symbols to be rejected")
	}
	if err := util.AssertInterpolationSymbols("interpolation", []string{"{{"}); err == nil {
		t.Errorf("Expected a single symbol to be rejected")
	}
}
