package scraper

import "strings"

// escapeJSString renders s as a double-quoted JavaScript string literal,
// safe to splice into injected page scripts. Beyond the usual quote and
// backslash escapes, U+2028 and U+2029 must be escaped too: they are valid
// in JSON strings but act as line terminators in JS source.
func escapeJSString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
