// Package editor abstracts the host editor surface consumed by the action
// handlers: selections, word ranges, text extraction and snippet insertion.
package editor

// Position is a zero-based line and column location in a document.
type Position struct {
	Line int
	Col  int
}

// Range is a region between two positions. An end position at column zero
// addresses whole lines up to, but excluding, that line.
type Range struct {
	Start Position
	End   Position
}

// Document is the view of one open editor document.
type Document interface {
	URI() string
	LineCount() int
	Line(n int) string
	Selection() Range
	WordRangeAt(p Position) (Range, bool)
	Text(r Range) string
	InsertSnippet(r Range, text string) error
}

// Editor exposes the currently active document, when there is one.
type Editor interface {
	ActiveDocument() (Document, bool)
}
