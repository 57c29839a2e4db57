package view

import (
	"regexp"
	"strings"
)

var camelCaseBoundary = regexp.MustCompile(`[a-z][A-Z]`)

// ParseStyle splits a static `style` attribute value into its declarations,
// returned as alternating property names and values. Semicolons and colons
// inside quotes or parentheses do not split. Property names are hyphenated.
func ParseStyle(value string) []string {
	var styles []string
	parenDepth := 0
	var quote byte
	valueStart := 0
	propStart := 0
	currentProp := ""
	valueHasQuotes := false

	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '\'', '"':
			valueHasQuotes = valueHasQuotes || valueStart > 0
			if quote == 0 {
				quote = c
			} else if quote == c && (i == 0 || value[i-1] != '\\') {
				quote = 0
			}
		case ':':
			if currentProp == "" && parenDepth == 0 && quote == 0 {
				currentProp = Hyphenate(strings.TrimSpace(value[propStart:i]))
				valueStart = i + 1
			}
		case ';':
			if currentProp != "" && valueStart > 0 && parenDepth == 0 && quote == 0 {
				styles = append(styles, currentProp, styleValue(value[valueStart:i], valueHasQuotes))
				propStart = i + 1
				valueStart = 0
				currentProp = ""
				valueHasQuotes = false
			}
		}
	}
	if currentProp != "" && valueStart > 0 {
		styles = append(styles, currentProp, styleValue(value[valueStart:], valueHasQuotes))
	}
	return styles
}

func styleValue(raw string, hasQuotes bool) string {
	v := strings.TrimSpace(raw)
	if hasQuotes {
		return StripUnnecessaryQuotes(v)
	}
	return v
}

// StripUnnecessaryQuotes removes one pair of matching outer quotes when the
// value contains no other quotes.
func StripUnnecessaryQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '\'' || first == '"') {
		inner := value[1 : len(value)-1]
		if !strings.ContainsAny(inner, `'"`) {
			return inner
		}
	}
	return value
}

// Hyphenate turns `backgroundColor` into `background-color`
func Hyphenate(value string) string {
	return strings.ToLower(camelCaseBoundary.ReplaceAllStringFunc(value, func(m string) string {
		return m[:1] + "-" + m[1:]
	}))
}
