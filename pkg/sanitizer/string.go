package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if unicode.IsPrint(r) {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeResourceName collapses whitespace and drops control characters.
func NormalizeResourceName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeResourceType lowercases the type so "Room" and "room" are equal.
func NormalizeResourceType(t string) string {
	return Pipeline{TrimAndNormalize, strings.ToLower}.Apply(t)
}

// NormalizeNameForComparison is used for case-insensitive duplicate detection.
func NormalizeNameForComparison(name string) string {
	return strings.ToLower(TrimAndNormalize(name))
}
