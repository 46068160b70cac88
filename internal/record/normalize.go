package record

import "strings"

// NormalizeToken upper-cases a keyword and strips everything but
// letters and digits, so "Central Park", "central-park" and
// "CENTRAL_PARK" all collapse to the same GBF item.
func NormalizeToken(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TokenizeNormalized splits a raw keyword string on whitespace and
// commas, normalizes each piece, and drops anything that normalizes
// to empty.
func TokenizeNormalized(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		n := NormalizeToken(f)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
