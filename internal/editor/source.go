package editor

import (
	"fmt"
	"path"
	"regexp"
)

var (
	functionStartRe = regexp.MustCompile(`(?i)(function|method|class)\s+\w+`)
	functionEndRe   = regexp.MustCompile(`(?i)^\s*(return|endclass)\b`)
)

// LinkToSource renders the human-readable label narrations use to point at
// a document region.
func LinkToSource(uri string, r Range) string {
	base := path.Base(uri)
	if base == "." || base == "/" {
		base = uri
	}
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("[%s:%d]", base, r.Start.Line+1)
	}
	return fmt.Sprintf("[%s:%d-%d]", base, r.Start.Line+1, r.End.Line+1)
}

// FindFunctionBounds scans outward from the given position for the
// enclosing definition: upward for a start-of-definition line, downward for
// the matching end marker. The returned range excludes the end-marker line
// and is capped at the document end when no marker is found.
func FindFunctionBounds(doc Document, from Position) (Range, bool) {
	line := from.Line
	if line >= doc.LineCount() {
		line = doc.LineCount() - 1
	}

	start := -1
	for ln := line; ln >= 0; ln-- {
		if functionStartRe.MatchString(doc.Line(ln)) {
			start = ln
			break
		}
	}
	if start < 0 {
		return Range{}, false
	}

	end := doc.LineCount()
	for ln := line; ln < doc.LineCount(); ln++ {
		if functionEndRe.MatchString(doc.Line(ln)) {
			end = ln
			break
		}
	}

	return Range{Start: Position{Line: start}, End: Position{Line: end}}, true
}
