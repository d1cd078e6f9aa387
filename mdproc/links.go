package mdproc

import (
	"net/url"
	"sort"
	"strings"
)

// linkConstruct is one located link or image destination, recorded as byte
// offsets into the scanned chunk.
type linkConstruct struct {
	// replaceStart/replaceEnd span the raw destination exactly as written,
	// including the angle brackets for the bracketed syntax.
	replaceStart int
	replaceEnd   int

	// closeIdx is the offset of the construct's closing ')'.
	closeIdx int

	// bracketed records whether the destination was written as <...>.
	bracketed bool

	// urlText is the destination with the syntax's escape sequences
	// resolved to their literal characters.
	urlText string
}

// scanConstructs locates every link and image construct in text, in document
// order. The image marker '!' needs no special handling: the construct is
// found from its '[' and images and links are rewritten identically.
// Anything that fails to parse as a complete construct is simply not
// reported, leaving its bytes untouched downstream.
func scanConstructs(text string) []linkConstruct {
	var constructs []linkConstruct
	for i := 0; i < len(text); {
		idx := strings.IndexByte(text[i:], '[')
		if idx < 0 {
			break
		}
		open := i + idx
		i = open + 1
		if escapedAt(text, open) {
			continue
		}
		afterLabel, ok := matchLabel(text, open)
		if !ok || afterLabel >= len(text) || text[afterLabel] != '(' {
			continue
		}
		c, ok := parseDestination(text, afterLabel+1)
		if !ok {
			continue
		}
		constructs = append(constructs, c)
	}
	return constructs
}

// escapedAt reports whether the byte at pos is preceded by an odd number of
// backslashes.
func escapedAt(text string, pos int) bool {
	n := 0
	for pos-n-1 >= 0 && text[pos-n-1] == '\\' {
		n++
	}
	return n%2 == 1
}

// matchLabel matches the bracketed label starting at the '[' at open and
// returns the offset just past its closing ']'. Nested brackets inside the
// label are matched by depth counting.
func matchLabel(text string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// parseDestination parses the destination (and optional title) beginning
// just past the construct's opening '('. The first non-blank character
// selects the sub-grammar: '<' for a bracketed destination, anything else
// for a plain one.
func parseDestination(text string, pos int) (linkConstruct, bool) {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
		pos++
	}
	if pos >= len(text) {
		return linkConstruct{}, false
	}
	if text[pos] == '<' {
		return parseBracketed(text, pos)
	}
	return parsePlain(text, pos)
}

// parseBracketed scans a <...> destination. The only escape recognized is
// \>, which hides a '>' from the terminator search; literal spaces are
// permitted. Destinations never span a newline.
func parseBracketed(text string, pos int) (linkConstruct, bool) {
	start := pos + 1
	for j := start; j < len(text); {
		switch text[j] {
		case '\\':
			j += 2
		case '\n':
			return linkConstruct{}, false
		case '>':
			closeIdx, ok := scanTitleAndClose(text, j+1)
			if !ok {
				return linkConstruct{}, false
			}
			return linkConstruct{
				replaceStart: pos,
				replaceEnd:   j + 1,
				closeIdx:     closeIdx,
				bracketed:    true,
				urlText:      unescapeBracketed(text[start:j]),
			}, true
		default:
			j++
		}
	}
	return linkConstruct{}, false
}

// parsePlain scans a plain destination. Escaped parentheses and escaped
// spaces are literal URL characters, not structure; an unescaped space at
// parenthesis depth one ends the destination and may begin a title.
func parsePlain(text string, pos int) (linkConstruct, bool) {
	depth := 1
	for j := pos; j < len(text); {
		ch := text[j]
		switch {
		case ch == '\\' && j+1 < len(text):
			j += 2
		case ch == '\n':
			return linkConstruct{}, false
		case ch == '(':
			depth++
			j++
		case ch == ')':
			depth--
			if depth == 0 {
				return linkConstruct{
					replaceStart: pos,
					replaceEnd:   j,
					closeIdx:     j,
					urlText:      unescapePlain(text[pos:j]),
				}, true
			}
			j++
		case ch == ' ' || ch == '\t':
			if depth > 1 {
				j++
				continue
			}
			closeIdx, ok := scanTitleAndClose(text, j)
			if !ok {
				return linkConstruct{}, false
			}
			return linkConstruct{
				replaceStart: pos,
				replaceEnd:   j,
				closeIdx:     closeIdx,
				urlText:      unescapePlain(text[pos:j]),
			}, true
		default:
			j++
		}
	}
	return linkConstruct{}, false
}

// scanTitleAndClose consumes optional whitespace and an optional delimited
// title, then expects the construct's closing ')'. Title delimiters are only
// recognized here, after the destination has ended, so a quote or apostrophe
// inside the destination can never start a title.
func scanTitleAndClose(text string, pos int) (int, bool) {
	i := pos
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) {
		return 0, false
	}
	if text[i] == ')' {
		return i, true
	}
	var closer byte
	switch text[i] {
	case '"':
		closer = '"'
	case '\'':
		closer = '\''
	case '(':
		closer = ')'
	default:
		return 0, false
	}
	for i++; i < len(text); {
		switch text[i] {
		case '\\':
			i += 2
		case '\n':
			return 0, false
		case closer:
			i++
			for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
				i++
			}
			if i < len(text) && text[i] == ')' {
				return i, true
			}
			return 0, false
		default:
			i++
		}
	}
	return 0, false
}

// unescapePlain resolves the delimiter-colliding escapes of the plain
// syntax: \(, \) and "\ ". Every other backslash sequence passes through
// unchanged; a general Markdown unescape here would corrupt intentionally
// escaped text elsewhere in the destination.
func unescapePlain(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			next := raw[i+1]
			if next == '(' || next == ')' || next == ' ' {
				b.WriteByte(next)
			} else {
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// unescapeBracketed resolves the single escape of the bracketed syntax, \>.
func unescapeBracketed(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			next := raw[i+1]
			if next == '>' {
				b.WriteByte(next)
			} else {
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// resolveDestination applies RFC 3986 relative-reference resolution against
// base. The boolean reports whether resolution applied; it does not when the
// destination is empty, fragment-only, already absolute, or unparseable.
func resolveDestination(urlText string, base *url.URL) (string, bool) {
	if urlText == "" || strings.HasPrefix(urlText, "#") {
		return "", false
	}
	ref, err := url.Parse(urlText)
	if err != nil || ref.IsAbs() {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// resolveChunk rewrites every resolvable destination in a chunk of
// non-fenced text. When resolution does not apply, the original raw bytes
// are kept, escapes included. Constructs found inside another construct's
// already-rewritten destination are skipped.
func resolveChunk(text string, base *url.URL) string {
	constructs := scanConstructs(text)
	if len(constructs) == 0 {
		return text
	}
	sort.Slice(constructs, func(a, b int) bool {
		return constructs[a].replaceStart < constructs[b].replaceStart
	})

	var b strings.Builder
	b.Grow(len(text) + 64)
	cursor := 0
	for _, c := range constructs {
		if c.replaceStart < cursor {
			continue
		}
		resolved, ok := resolveDestination(c.urlText, base)
		if !ok {
			continue
		}
		b.WriteString(text[cursor:c.replaceStart])
		if c.bracketed {
			b.WriteByte('<')
			b.WriteString(resolved)
			b.WriteByte('>')
		} else {
			b.WriteString(resolved)
		}
		cursor = c.replaceEnd
	}
	b.WriteString(text[cursor:])
	return b.String()
}

// resolveLinkLines runs the link pass over every maximal run of consecutive
// non-fenced lines. Joining a run before scanning lets a label wrap across
// lines while fenced content stays byte-identical. Rewrites never add or
// remove newlines, so the fence classification stays valid for the table
// pass that follows.
func resolveLinkLines(lines []string, inside []bool, base *url.URL) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	for i := 0; i < len(lines); {
		if inside[i] {
			i++
			continue
		}
		j := i
		for j < len(lines) && !inside[j] {
			j++
		}
		chunk := strings.Join(lines[i:j], "\n")
		if rewritten := resolveChunk(chunk, base); rewritten != chunk {
			copy(out[i:j], strings.Split(rewritten, "\n"))
		}
		i = j
	}
	return out
}
