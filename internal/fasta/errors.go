package fasta

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is reported for a header line with no id after the marker.
	ErrMalformedHeader = errors.New("malformed header: missing id")
	// ErrInvalidEncoding is reported for a line that is not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("invalid encoding: line is not valid UTF-8")
)

// ParseError describes a line the parser could not accept. Err is one of
// ErrMalformedHeader or ErrInvalidEncoding.
type ParseError struct {
	Line int    // 1-based line number of the offending line
	Text string // offending line, terminator stripped
	Err  error
}

func (e *ParseError) Error() string {
	text := e.Text
	if i := runeOffset(text, 50); i < len(text) {
		text = text[:i] + "..."
	}
	return fmt.Sprintf("fasta: line %d: %v: %q", e.Line, e.Err, text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadError wraps a failure reported by the underlying source.
type ReadError struct {
	Line int // line being read when the source failed
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("fasta: read line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
