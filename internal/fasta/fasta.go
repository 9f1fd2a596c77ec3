// Package fasta reads and writes FASTA formatted sequence data.
//
// A Buffer pulls records one at a time from any line oriented source,
// holding only the current line and the record being assembled:
//
//	b := fasta.NewBuffer(f)
//	for {
//		rec, err := b.Next()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		// use rec
//	}
//
// Format and Writer render records back to canonical text, wrapping the
// sequence at a fixed width. The package never logs; callers decide how to
// report errors.
package fasta

import (
	"bufio"
	"io"
	"iter"
	"strings"
	"unicode/utf8"
)

// LineReader is the capability a Buffer needs from its source.
// *bufio.Reader and *bytes.Buffer satisfy it.
type LineReader interface {
	ReadString(delim byte) (string, error)
}

type state int

const (
	stateIdle state = iota
	stateAccumulating
	stateExhausted
	statePoisoned
)

const readBufferSize = 64 * 1024

// Option configures a Buffer.
type Option func(*Buffer)

// WithComments makes the Buffer skip lines starting with ';', as in the
// original FASTA comment convention. By default such lines are sequence.
func WithComments() Option {
	return func(b *Buffer) { b.comments = true }
}

// Buffer is a pull parser producing Records from a line source.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	r        LineReader
	comments bool

	state   state
	srcDone bool // source returned io.EOF
	line    int  // lines consumed so far
	err     error

	// pending record, valid in stateAccumulating
	id   string
	desc string
	seq  strings.Builder

	// header line that terminated the previously returned record
	ahead     string
	aheadLine int
	hasAhead  bool
}

// NewBuffer returns a Buffer reading from r. If r does not implement
// LineReader it is wrapped in a bufio.Reader.
func NewBuffer(r io.Reader, opts ...Option) *Buffer {
	lr, ok := r.(LineReader)
	if !ok {
		lr = bufio.NewReaderSize(r, readBufferSize)
	}
	return NewLineBuffer(lr, opts...)
}

// NewLineBuffer returns a Buffer reading directly from lr.
func NewLineBuffer(lr LineReader, opts ...Option) *Buffer {
	b := &Buffer{r: lr}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Line returns the number of lines consumed from the source.
func (b *Buffer) Line() int {
	return b.line
}

// Err returns the fatal error latched by a failed read or an encoding
// failure, or nil.
func (b *Buffer) Err() error {
	return b.err
}

// Done reports whether Next will never return another record.
func (b *Buffer) Done() bool {
	return b.state == stateExhausted || b.state == statePoisoned
}

// Next returns the next record. At the end of input it returns io.EOF, and
// keeps returning io.EOF on later calls.
//
// A header without an id yields a *ParseError wrapping ErrMalformedHeader;
// the line is dropped together with the sequence lines following it, and
// Next may be called again to continue with the next header.
// Read and encoding failures are fatal: the pending record is discarded and
// every later call returns the same error.
func (b *Buffer) Next() (Record, error) {
	switch b.state {
	case stateExhausted:
		return Record{}, io.EOF
	case statePoisoned:
		return Record{}, b.err
	}

	if b.hasAhead {
		b.hasAhead = false
		if err := b.start(b.ahead, b.aheadLine); err != nil {
			return Record{}, err
		}
	}

	for {
		if b.srcDone {
			return b.finishInput()
		}
		text, err := b.r.ReadString('\n')
		if err == io.EOF {
			b.srcDone = true
		} else if err != nil {
			return Record{}, b.poison(&ReadError{Line: b.line + 1, Err: err})
		}
		if text == "" {
			continue
		}
		b.line++
		line := trimEOL(text)
		if !utf8.ValidString(line) {
			return Record{}, b.poison(&ParseError{Line: b.line, Text: strings.ToValidUTF8(line, "�"), Err: ErrInvalidEncoding})
		}

		switch {
		case isBlank(line):
		case line[0] == Marker:
			if b.state == stateAccumulating {
				b.ahead, b.aheadLine, b.hasAhead = line, b.line, true
				return b.finish(), nil
			}
			if err := b.start(line, b.line); err != nil {
				return Record{}, err
			}
		case b.comments && line[0] == ';':
		case b.state == stateAccumulating:
			b.seq.WriteString(line)
		}
	}
}

// All returns an iterator over the remaining records. Iteration ends at the
// end of input, after a fatal error has been yielded, or when the consumer
// stops. Malformed headers are yielded as errors and iteration goes on.
func (b *Buffer) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := b.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			if err != nil && b.state == statePoisoned {
				return
			}
		}
	}
}

// ReadAll reads every record from r. It stops at the first error and
// returns the records parsed before it.
func ReadAll(r io.Reader, opts ...Option) ([]Record, error) {
	b := NewBuffer(r, opts...)
	var records []Record
	for {
		rec, err := b.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// start makes the header line the pending record.
func (b *Buffer) start(line string, n int) error {
	id, desc, ok := parseHeader(line[1:])
	if !ok {
		b.state = stateIdle
		return &ParseError{Line: n, Text: line, Err: ErrMalformedHeader}
	}
	b.id, b.desc = id, desc
	b.state = stateAccumulating
	return nil
}

func (b *Buffer) finish() Record {
	rec := Record{ID: b.id, Description: b.desc, Sequence: b.seq.String()}
	b.id, b.desc = "", ""
	b.seq.Reset()
	b.state = stateIdle
	return rec
}

func (b *Buffer) finishInput() (Record, error) {
	if b.state == stateAccumulating {
		rec := b.finish()
		b.state = stateExhausted
		return rec, nil
	}
	b.state = stateExhausted
	return Record{}, io.EOF
}

func (b *Buffer) poison(err error) error {
	b.id, b.desc = "", ""
	b.seq.Reset()
	b.hasAhead = false
	b.err = err
	b.state = statePoisoned
	return err
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
