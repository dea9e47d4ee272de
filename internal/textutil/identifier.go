package textutil

import (
	"strconv"
	"strings"
)

// SanitizeToken converts a string to a lowercase identifier token.
// Letters are lowercased, digits and underscores are kept, everything else
// becomes an underscore. A leading digit gets an underscore prefix. Returns
// "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unknown"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// UniqueTokens sanitizes every name and disambiguates collisions with a
// numeric suffix, keeping input order. Names listed in reserved are treated as
// already taken.
func UniqueTokens(names []string, reserved ...string) []string {
	taken := make(map[string]struct{}, len(names)+len(reserved))
	for _, r := range reserved {
		taken[r] = struct{}{}
	}
	out := make([]string, len(names))
	for i, name := range names {
		base := SanitizeToken(name)
		token := base
		for n := 2; ; n++ {
			if _, ok := taken[token]; !ok {
				break
			}
			token = base + "_" + strconv.Itoa(n)
		}
		taken[token] = struct{}{}
		out[i] = token
	}
	return out
}

// QuoteIdentifier wraps name in double quotes for use in SQL, doubling any
// embedded quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
