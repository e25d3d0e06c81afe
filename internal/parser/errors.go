package parser

import (
	"fmt"
	"strings"
)

// ParseError reports malformed input. It carries the offending source line
// so callers can show it without re-reading the input.
type ParseError struct {
	Message string
	Snippet string
	Line    int
	Column  int
	Offset  int
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	if e.Snippet != "" {
		msg += "\n  " + e.Snippet
	}
	return msg
}

// Code is the stable error code used in response envelopes.
func (e *ParseError) Code() string { return "parse_error" }

const maxSnippet = 80

// newParseError positions msg at offset within src.
func newParseError(src string, offset int, format string, args ...any) *ParseError {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}

	line := 1 + strings.Count(src[:offset], "\n")
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEnd := strings.IndexByte(src[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += offset
	}

	snippet := src[lineStart:lineEnd]
	col := offset - lineStart
	if len(snippet) > maxSnippet {
		from := col - maxSnippet/2
		if from < 0 {
			from = 0
		}
		to := from + maxSnippet
		if to > len(snippet) {
			to = len(snippet)
		}
		snippet = snippet[from:to]
	}

	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Snippet: strings.TrimRight(snippet, " \t\r"),
		Line:    line,
		Column:  col + 1,
		Offset:  offset,
	}
}
