package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Inflect singularizes word when toSingular is set. Only the three suffix
// rules used by the association naming convention are applied.
func Inflect(word string, toSingular bool) string {
	if !toSingular {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies"):
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "sses"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	default:
		return word
	}
}

// AssociationTarget derives a type name from an association label:
// blog_posts -> BlogPost when singularizing.
func AssociationTarget(label string, toSingular bool) string {
	segments := strings.Split(label, "_")
	last := len(segments) - 1
	segments[last] = Inflect(segments[last], toSingular)

	var b strings.Builder
	b.Grow(len(label))
	for _, segment := range segments {
		b.WriteString(capitalize(segment))
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
