package util

import (
	"fmt"
	"strings"
)

// ParseSourceFile is a named chunk of source text
type ParseSourceFile struct {
	Content string
	URL     string
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{Content: content, URL: url}
}

// ParseLocation is an offset into a ParseSourceFile with its line and column
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{File: file, Offset: offset, Line: line, Col: col}
}

// String returns url@line:col
func (p *ParseLocation) String() string {
	if p.Offset >= 0 {
		return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line, p.Col)
	}
	return p.File.URL
}

// MoveBy returns a new location delta bytes forward, tracking lines.
func (p *ParseLocation) MoveBy(delta int) *ParseLocation {
	source := p.File.Content
	offset, line, col := p.Offset, p.Line, p.Col
	for delta > 0 && offset < len(source) {
		if source[offset] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		offset++
		delta--
	}
	return NewParseLocation(p.File, offset, line, col)
}

// ParseSourceSpan is a start/end pair of locations
type ParseSourceSpan struct {
	Start   *ParseLocation
	End     *ParseLocation
	Details *string
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation, details *string) *ParseSourceSpan {
	return &ParseSourceSpan{Start: start, End: end, Details: details}
}

// String returns the source text covered by the span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// SyntheticSourceSpan builds a span covering an entire in-memory snippet,
// used when metadata did not come from a real file.
func SyntheticSourceSpan(kind, typeName, url string) *ParseSourceSpan {
	content := fmt.Sprintf("in %s %s in %s", kind, typeName, url)
	file := NewParseSourceFile(content, url)
	start := NewParseLocation(file, 0, 0, 0)
	return NewParseSourceSpan(start, start.MoveBy(len(content)), nil)
}

// ParseError is a syntax error with its location
type ParseError struct {
	Span *ParseSourceSpan
	Msg  string
}

// NewParseError creates a new ParseError
func NewParseError(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{Span: span, Msg: msg}
}

// Error implements the error interface
func (p *ParseError) Error() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	var b strings.Builder
	b.WriteString(p.Msg)
	b.WriteString(": ")
	b.WriteString(p.Span.Start.String())
	if p.Span.Details != nil {
		b.WriteString(", ")
		b.WriteString(*p.Span.Details)
	}
	return b.String()
}
