package mdproc

import "strings"

// maxTableIndent is the most leading spaces a table line may carry; four or
// more means indented code, which must stay untouched.
const maxTableIndent = 3

// tableRow is one pipe-delimited line split into cells, remembering enough
// shape to rebuild the row without inventing structure that was not there.
type tableRow struct {
	indent       string
	cells        []string
	leadingPipe  bool
	trailingPipe bool
}

// parseTableRow splits a line into table cells on unescaped pipes. It
// reports false for lines that do not have the table row shape.
func parseTableRow(line string) (tableRow, bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > maxTableIndent {
		return tableRow{}, false
	}
	body := strings.TrimRight(line[indent:], " \t")
	if !hasUnescapedPipe(body) {
		return tableRow{}, false
	}

	row := tableRow{indent: line[:indent]}
	if body[0] == '|' {
		row.leadingPipe = true
		body = body[1:]
	}
	cells := splitCells(body)
	// A trailing unescaped pipe leaves a final empty segment behind.
	if len(cells) > 1 && cells[len(cells)-1] == "" {
		row.trailingPipe = true
		cells = cells[:len(cells)-1]
	}
	if len(cells) == 0 {
		return tableRow{}, false
	}
	row.cells = cells
	return row, true
}

func hasUnescapedPipe(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '|':
			return true
		}
	}
	return false
}

// splitCells splits on unescaped '|'. Escaped pipes stay inside their cell.
func splitCells(s string) []string {
	var cells []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '|':
			cells = append(cells, s[start:i])
			start = i + 1
		}
	}
	return append(cells, s[start:])
}

// isSeparatorCell reports whether a cell is a valid delimiter-row cell: an
// optional alignment colon, a dash run, an optional alignment colon.
func isSeparatorCell(cell string) bool {
	t := strings.TrimSpace(cell)
	if t == "" {
		return false
	}
	if t[0] == ':' {
		t = t[1:]
	}
	if len(t) > 0 && t[len(t)-1] == ':' {
		t = t[:len(t)-1]
	}
	if t == "" {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != '-' {
			return false
		}
	}
	return true
}

func isSeparatorRow(row tableRow) bool {
	for _, c := range row.cells {
		if !isSeparatorCell(c) {
			return false
		}
	}
	return len(row.cells) > 0
}

// compactCells trims each cell and shortens separator-shaped cells to the
// minimal run that preserves their alignment colons.
func compactCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		t := strings.TrimSpace(c)
		if isSeparatorCell(t) {
			start, end := "", ""
			if strings.HasPrefix(t, ":") {
				start = ":"
			}
			if strings.HasSuffix(t, ":") {
				end = ":"
			}
			t = start + "-" + end
		}
		out[i] = t
	}
	return out
}

// renderRow rebuilds a row with exactly one space of padding per cell,
// keeping the row's original indentation and edge-pipe shape.
func renderRow(row tableRow, cells []string) string {
	var b strings.Builder
	b.WriteString(row.indent)
	if row.leadingPipe {
		b.WriteString("| ")
	}
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(cell)
	}
	if row.trailingPipe {
		b.WriteString(" |")
	}
	return b.String()
}

// compactTableLines rewrites recognized table blocks among non-fenced lines.
// A block is a header row with at least one unescaped pipe, immediately
// followed by a separator row with the same column count, then body rows
// sharing the table shape. Rows whose cell count does not match the header
// pass through byte-identical; malformed tables are not "fixed".
func compactTableLines(lines []string, inside []bool) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	for i := 0; i+1 < len(lines); i++ {
		if inside[i] || inside[i+1] {
			continue
		}
		header, ok := parseTableRow(lines[i])
		if !ok {
			continue
		}
		sep, ok := parseTableRow(lines[i+1])
		if !ok || !isSeparatorRow(sep) || len(sep.cells) != len(header.cells) {
			continue
		}

		columns := len(header.cells)
		out[i] = renderRow(header, compactCells(header.cells))
		out[i+1] = renderRow(sep, compactCells(sep.cells))

		j := i + 2
		for j < len(lines) && !inside[j] {
			row, ok := parseTableRow(lines[j])
			if !ok {
				break
			}
			if len(row.cells) == columns {
				out[j] = renderRow(row, compactCells(row.cells))
			}
			j++
		}
		i = j - 1
	}
	return out
}
