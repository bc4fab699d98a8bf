package stringtest

import (
	"strings"
)

// CaretMarker marks the caret position in documents passed to [Caret].
const CaretMarker = "‸"

// Input dedents a raw string literal so YAML documents can be written inline
// with the surrounding test code. One leading and one trailing newline are
// removed, the whitespace prefix shared by all non-blank lines is stripped,
// and whitespace-only lines become empty. A whitespace-only final line, such
// as the indentation before a closing backtick, is dropped.
//
// Example:
//
//	doc := stringtest.Input(`
//		jobs:
//		  build:
//		    steps: []
//	`) // -> "jobs:\n  build:\n    steps: []"
func Input(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		if tail := s[i+1:]; tail != "" && strings.TrimSpace(tail) == "" {
			s = s[:i+1]
		}
	}

	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")

	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = lead
			first = false

			continue
		}

		prefix = commonPrefix(prefix, lead)
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""

			continue
		}

		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}

// Caret removes the first [CaretMarker] from doc and returns the remaining
// text with the marker's zero-based line and byte column. If doc has no
// marker, line and col are -1.
//
// Example:
//
//	text, line, col := stringtest.Caret(stringtest.Input(`
//		jobs:
//		  build:
//		    ‸
//	`)) // -> "jobs:\n  build:\n    ", 2, 4
func Caret(doc string) (string, int, int) {
	before, after, found := strings.Cut(doc, CaretMarker)
	if !found {
		return doc, -1, -1
	}

	line := strings.Count(before, "\n")
	col := len(before)

	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		col = len(before) - i - 1
	}

	return before + after, line, col
}

// JoinLF joins multiple strings with LF line endings.
//
// Example:
//
//	doc := stringtest.JoinLF(
//		"on:",
//		"  push:",
//		"    branches: [main]",
//	) // -> "on:\n  push:\n    branches: [main]"
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}

// JoinCRLF joins multiple strings with CRLF line endings, for documents
// saved by Windows editors.
//
// Example:
//
//	doc := stringtest.JoinCRLF(
//		"on:",
//		"  push:",
//	) // -> "on:\r\n  push:"
func JoinCRLF(ss ...string) string {
	return strings.Join(ss, "\r\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return a[:i]
		}
	}

	return a[:n]
}
