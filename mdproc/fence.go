package mdproc

import "strings"

// fenceState tracks code-fence boundaries while walking a document line by
// line. A fence opens with a run of >=3 backticks or tildes; it closes only
// on a run of the same character at least as long as the opening run.
type fenceState struct {
	open   bool
	marker byte
	length int
}

// feed consumes the next line and reports whether it lies inside an open
// fenced region. The opening and closing marker lines themselves are
// reported as outside: they are boundaries, and neither rewrite pass
// recognizes a construct on a fence marker line anyway.
func (s *fenceState) feed(line string) bool {
	if marker, length, ok := fenceMarker(line); ok {
		if !s.open {
			s.open = true
			s.marker = marker
			s.length = length
			return false
		}
		if marker == s.marker && length >= s.length {
			s.open = false
			s.marker = 0
			s.length = 0
			return false
		}
	}
	return s.open
}

// fenceMarker reports the fence character and run length when the line's
// leading non-blank content is a run of >=3 backticks or tildes.
func fenceMarker(line string) (byte, int, bool) {
	t := strings.TrimLeft(line, " \t")
	if t == "" {
		return 0, 0, false
	}
	m := t[0]
	if m != '`' && m != '~' {
		return 0, 0, false
	}
	n := 1
	for n < len(t) && t[n] == m {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return m, n, true
}

// classifyFences tags every line as inside (true) or outside (false) a
// fenced code region. An unterminated fence keeps the remainder of the
// document inside.
func classifyFences(lines []string) []bool {
	inside := make([]bool, len(lines))
	var state fenceState
	for i, line := range lines {
		inside[i] = state.feed(line)
	}
	return inside
}
