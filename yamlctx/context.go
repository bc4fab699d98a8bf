package yamlctx

import (
	"strings"
)

// Position is a zero-based caret location. Column is a byte offset into the
// line.
type Position struct {
	Line   int
	Column int
}

// Context is the structural position of a caret.
type Context struct {
	// Ancestors holds the enclosing keys, outermost first.
	Ancestors []string
	// Siblings holds the keys already present in the caret's mapping.
	Siblings []string
	// Prefix is the partial key typed between the indentation and the caret.
	Prefix string
	// Depth is the nesting level of the caret, len(Ancestors).
	Depth int
	// Indent is the indentation depth of the caret line.
	Indent int
}

// Lines splits text into lines, dropping the "\r" of CRLF endings. Empty
// text is a single empty line.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}

// Indentation returns the indentation depth of line: the number of leading
// space and "-" characters divided by two. ok is false when the count is
// odd.
func Indentation(line string) (int, bool) {
	n := indentWidth(line)
	if n%2 != 0 {
		return 0, false
	}

	return n / 2, true
}

// Resolve computes the [Context] of caret within lines. ok is false when
// the caret is outside the document, the caret line's indentation is odd,
// the caret follows a key's ":" on its line, or an indented caret has no
// chain of enclosing keys back to column zero.
//
// When nothing is typed between the indentation and the caret, a complete
// key after the caret on the same line is a sibling.
func Resolve(lines []string, caret Position) (Context, bool) {
	if caret.Line < 0 || caret.Line >= len(lines) || caret.Column < 0 {
		return Context{}, false
	}

	line := lines[caret.Line]

	indent, ok := Indentation(line)
	if !ok {
		return Context{}, false
	}

	width := indentWidth(line)

	col := min(caret.Column, len(line))

	var prefix string
	if col > width {
		prefix = line[width:col]
		if strings.Contains(prefix, ":") {
			return Context{}, false
		}

		prefix = strings.TrimSpace(prefix)
	}

	ancestors, ok := findAncestors(lines, caret.Line, width)
	if !ok {
		return Context{}, false
	}

	siblings := findSiblings(lines, caret.Line, width)

	if prefix == "" {
		if k, ok := key(line[col:]); ok {
			siblings = append(siblings, k)
		}
	}

	return Context{
		Ancestors: ancestors,
		Siblings:  siblings,
		Prefix:    prefix,
		Depth:     len(ancestors),
		Indent:    indent,
	}, true
}

// findAncestors walks up from the caret collecting the nearest keyed line
// of strictly smaller indentation, repeatedly, until column zero.
func findAncestors(lines []string, caretLine, width int) ([]string, bool) {
	var chain []string

	ref := width
	for i := caretLine - 1; i >= 0 && ref > 0; i-- {
		l := lines[i]
		if skippable(l) {
			continue
		}

		w := indentWidth(l)
		if w >= ref {
			continue
		}

		k, ok := key(l)
		if !ok {
			continue
		}

		chain = append([]string{k}, chain...)
		ref = w
	}

	if ref > 0 {
		return nil, false
	}

	return chain, true
}

// findSiblings collects the keys of the mapping the caret is in. Deeper
// lines are skipped and shallower ones end the scan. A "- " line whose key
// sits at the caret's column opens a list item: scanning up it is the
// item's first key and the last sibling; scanning down it belongs to the
// next item.
func findSiblings(lines []string, caretLine, width int) []string {
	var siblings []string

	add := func(l string) {
		if k, ok := key(l); ok {
			siblings = append(siblings, k)
		}
	}

	// A caret on a "- " line starts a new item; nothing above belongs to it.
	if !isListItem(lines[caretLine]) {
		for i := caretLine - 1; i >= 0; i-- {
			l := lines[i]
			if skippable(l) {
				continue
			}

			w := indentWidth(l)
			if w > width {
				continue
			}

			if w < width {
				break
			}

			add(l)

			if isListItem(l) {
				break
			}
		}
	}

	for i := caretLine + 1; i < len(lines); i++ {
		l := lines[i]
		if skippable(l) {
			continue
		}

		w := indentWidth(l)
		if w > width {
			continue
		}

		if w < width || isListItem(l) {
			break
		}

		add(l)
	}

	return siblings
}

// indentWidth counts the leading space and "-" characters of line.
func indentWidth(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '-') {
		n++
	}

	return n
}

// isListItem reports whether the first non-space character of line is a
// list marker.
func isListItem(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), "-")
}

// skippable reports whether line carries no structure: blank or a comment.
func skippable(line string) bool {
	t := strings.TrimSpace(line)

	return t == "" || strings.HasPrefix(t, "#")
}

// key extracts the mapping key of line: the text before the first ":",
// with list markers and quotes removed.
func key(line string) (string, bool) {
	t := strings.TrimLeft(line, " -")

	k, _, found := strings.Cut(t, ":")
	if !found {
		return "", false
	}

	k = strings.TrimSpace(k)
	if len(k) >= 2 && (k[0] == '"' || k[0] == '\'') && k[len(k)-1] == k[0] {
		k = k[1 : len(k)-1]
	}

	if k == "" {
		return "", false
	}

	return k, true
}
