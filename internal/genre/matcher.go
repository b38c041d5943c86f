// Package genre normalizes free-text genre tags to the fixed
// vocabulary the inference stage understands.
package genre

import (
	"strings"
	"unicode"
)

// Fallback is returned when nothing in the vocabulary matches.
const Fallback = "pop"

var validSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(validGenres))
	for _, g := range validGenres {
		m[g] = struct{}{}
	}
	return m
}()

// Match maps an arbitrary candidate to the closest vocabulary entry.
// It is total: any input yields a valid genre, Fallback at worst.
func Match(candidate string) string {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return Fallback
	}

	if _, ok := validSet[c]; ok {
		return c
	}

	cleaned := stripSpecial(c)
	if _, ok := validSet[cleaned]; ok {
		return cleaned
	}

	if target, ok := aliases[c]; ok {
		if _, valid := validSet[target]; valid {
			return target
		}
	}

	// Substring match in either direction. validGenres is sorted, so
	// the winner among several candidates is the lexicographically
	// smallest one.
	for _, g := range validGenres {
		if strings.Contains(g, c) || strings.Contains(c, g) {
			return g
		}
	}

	return Fallback
}

// MatchMany matches each candidate and discards Fallback results when
// at least one candidate matched something real, so a multi-genre
// request is not diluted with the default. A candidate that names the
// fallback genre verbatim is a real match, not a miss, and is kept.
// An all-miss batch yields [Fallback].
func MatchMany(candidates []string) []string {
	var matched []string
	for _, c := range candidates {
		g := Match(c)
		if g != Fallback || Valid(strings.TrimSpace(c)) {
			matched = append(matched, g)
		}
	}
	if len(matched) == 0 {
		return []string{Fallback}
	}
	return matched
}

// Valid reports whether g is already a vocabulary entry.
func Valid(g string) bool {
	_, ok := validSet[strings.ToLower(g)]
	return ok
}

// All returns the vocabulary in lexicographic order.
func All() []string {
	return append([]string(nil), validGenres...)
}

func stripSpecial(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
