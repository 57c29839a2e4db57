package util

import (
	"regexp"
	"strings"
)

var (
	nonWordRegexp       = regexp.MustCompile(`\W`)
	unsafeObjectKeyName = regexp.MustCompile(`[-.]`)
)

// SplitAtColon splits a string at the first colon. When there is no colon
// defaultValues is returned unchanged.
func SplitAtColon(input string, defaultValues []string) []string {
	return splitAt(input, ':', defaultValues)
}

// SplitAtPeriod splits a string at the first period
func SplitAtPeriod(input string, defaultValues []string) []string {
	return splitAt(input, '.', defaultValues)
}

func splitAt(input string, character byte, defaultValues []string) []string {
	index := strings.IndexByte(input, character)
	if index == -1 {
		return defaultValues
	}
	return []string{
		strings.TrimSpace(input[:index]),
		strings.TrimSpace(input[index+1:]),
	}
}

// SanitizeIdentifier replaces every non-word character with an underscore
func SanitizeIdentifier(name string) string {
	return nonWordRegexp.ReplaceAllString(name, "_")
}

// IsUnsafeObjectKey reports whether key must be quoted when used as an
// object literal key.
func IsUnsafeObjectKey(key string) bool {
	return unsafeObjectKeyName.MatchString(key)
}
