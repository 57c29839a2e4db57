package util

import (
	"fmt"
	"regexp"
)

// Interpolation markers must not be mistaken for markup by the template
// lexer.
var unusableInterpolationMarkers = []*regexp.Regexp{
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`[<>]`),
	regexp.MustCompile(`^[{}]$`),
	regexp.MustCompile(`(?i)&(#|[a-z])`),
	regexp.MustCompile(`^//`),
}

// AssertInterpolationSymbols accepts an empty value or a [start, end]
// pair of usable markers.
func AssertInterpolationSymbols(field string, value []string) error {
	switch len(value) {
	case 0:
		return nil
	case 2:
	default:
		return fmt.Errorf("%s: want [start, end], got %d values", field, len(value))
	}
	for i, marker := range value {
		for _, re := range unusableInterpolationMarkers {
			if re.MatchString(marker) {
				return fmt.Errorf("%s: %s marker %q is not usable", field, [2]string{"start", "end"}[i], marker)
			}
		}
	}
	return nil
}
