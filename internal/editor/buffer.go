package editor

import (
	"fmt"
	"strings"
	"unicode"
)

// Buffer is an in-memory Document used by the CLI host and tests.
type Buffer struct {
	uri   string
	lines []string
	sel   Range
}

// NewBuffer builds a buffer over the given content.
func NewBuffer(uri, content string) *Buffer {
	return &Buffer{uri: uri, lines: strings.Split(content, "\n")}
}

func (b *Buffer) URI() string { return b.uri }

func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns line n, or "" when n is out of bounds.
func (b *Buffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

func (b *Buffer) Selection() Range { return b.sel }

// SetSelection places the selection.
func (b *Buffer) SetSelection(r Range) { b.sel = r }

// SetCursor places a zero-width selection.
func (b *Buffer) SetCursor(p Position) { b.sel = Range{Start: p, End: p} }

// Content returns the whole buffer as a single string.
func (b *Buffer) Content() string { return strings.Join(b.lines, "\n") }

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordRangeAt returns the range of the word containing p, if any.
func (b *Buffer) WordRangeAt(p Position) (Range, bool) {
	if p.Line < 0 || p.Line >= len(b.lines) {
		return Range{}, false
	}
	runes := []rune(b.lines[p.Line])
	col := p.Col
	if col > len(runes) {
		col = len(runes)
	}

	start, end := col, col
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	if start == end {
		return Range{}, false
	}
	return Range{Start: Position{p.Line, start}, End: Position{p.Line, end}}, true
}

// Text returns the content of the range, clamped to the document bounds.
func (b *Buffer) Text(r Range) string {
	if len(b.lines) == 0 || r.Start.Line >= len(b.lines) || r.Start.Line < 0 {
		return ""
	}
	end := r.End
	if end.Line >= len(b.lines) {
		last := len(b.lines) - 1
		end = Position{Line: last, Col: len([]rune(b.lines[last]))}
	}

	if r.Start.Line == end.Line {
		runes := []rune(b.lines[r.Start.Line])
		s, e := clampCol(r.Start.Col, runes), clampCol(end.Col, runes)
		if s >= e {
			return ""
		}
		return string(runes[s:e])
	}

	var parts []string
	first := []rune(b.lines[r.Start.Line])
	parts = append(parts, string(first[clampCol(r.Start.Col, first):]))
	for ln := r.Start.Line + 1; ln < end.Line; ln++ {
		parts = append(parts, b.lines[ln])
	}
	last := []rune(b.lines[end.Line])
	parts = append(parts, string(last[:clampCol(end.Col, last)]))

	return strings.Join(parts, "\n")
}

func clampCol(col int, runes []rune) int {
	if col < 0 {
		return 0
	}
	if col > len(runes) {
		return len(runes)
	}
	return col
}

// InsertSnippet replaces the range with the given text.
func (b *Buffer) InsertSnippet(r Range, text string) error {
	if r.Start.Line < 0 || r.Start.Line >= len(b.lines) {
		return fmt.Errorf("insert position out of bounds: line %d", r.Start.Line)
	}
	b.lines = strings.Split(b.headText(r.Start)+text+b.tailText(r.End), "\n")
	return nil
}

// headText is the content strictly before p.
func (b *Buffer) headText(p Position) string {
	var parts []string
	for ln := 0; ln < p.Line && ln < len(b.lines); ln++ {
		parts = append(parts, b.lines[ln])
	}
	runes := []rune(b.Line(p.Line))
	parts = append(parts, string(runes[:clampCol(p.Col, runes)]))
	return strings.Join(parts, "\n")
}

// tailText is the content from p to the end of the buffer.
func (b *Buffer) tailText(p Position) string {
	if p.Line >= len(b.lines) {
		return ""
	}
	runes := []rune(b.lines[p.Line])
	parts := []string{string(runes[clampCol(p.Col, runes):])}
	for ln := p.Line + 1; ln < len(b.lines); ln++ {
		parts = append(parts, b.lines[ln])
	}
	return strings.Join(parts, "\n")
}
