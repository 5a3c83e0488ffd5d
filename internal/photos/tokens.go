package photos

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Tokenize lowercases name and splits it on every non-alphanumeric rune.
// "Gutter_Before-01.JPG" becomes [gutter before 01 jpg].
func Tokenize(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// Slugify joins the tokens of s with dashes.
func Slugify(s string) string {
	return strings.Join(Tokenize(s), "-")
}

func fileTokens(path string) []string {
	return Tokenize(filepath.Base(path))
}

func hasAny(tokens, words []string) bool {
	for _, w := range words {
		for _, t := range tokens {
			if t == w {
				return true
			}
		}
	}
	return false
}

// ServiceFromTokens returns the service mapped from the first token found in
// keywords.
func ServiceFromTokens(tokens []string, keywords map[string]string) string {
	for _, t := range tokens {
		if svc, ok := keywords[t]; ok {
			return svc
		}
	}
	return ""
}

// CityFromTokens matches city slugs ("mercer-island") against consecutive
// tokens and returns the display name.
func CityFromTokens(tokens []string, cities []string) string {
	joined := " " + strings.Join(tokens, " ") + " "
	for _, city := range cities {
		words := Tokenize(city)
		if len(words) == 0 {
			continue
		}
		if strings.Contains(joined, " "+strings.Join(words, " ")+" ") {
			return displayName(words)
		}
	}
	return ""
}

func displayName(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		out[i] = string(r)
	}
	return strings.Join(out, " ")
}

// KeywordHint reports "before" or "after" when the tokens name exactly one of
// the two keyword lists.
func KeywordHint(tokens, before, after []string) string {
	b, a := hasAny(tokens, before), hasAny(tokens, after)
	switch {
	case b && !a:
		return TypeBefore
	case a && !b:
		return TypeAfter
	default:
		return ""
	}
}
