package fasta

import (
	"bufio"
	"io"
	"strings"
)

// DefaultWrapWidth is the canonical number of sequence characters per line.
const DefaultWrapWidth = 80

// Format renders rec as canonical FASTA text, wrapping the sequence every
// width characters. A width <= 0 writes the sequence on a single line.
func Format(rec Record, width int) string {
	var sb strings.Builder
	sb.Grow(formatSize(rec, width))
	writeRecord(&sb, rec, width)
	return sb.String()
}

// WriteRecord writes the canonical form of rec to w.
func WriteRecord(w io.Writer, rec Record, width int) (int, error) {
	return io.WriteString(w, Format(rec, width))
}

// formatSize returns the byte length of the canonical form of rec. It is
// exact for ASCII sequences and an upper bound otherwise.
func formatSize(rec Record, width int) int {
	n := len(rec.ID) + 2
	if rec.Description != "" {
		n += len(rec.Description) + 1
	}
	seq := len(rec.Sequence)
	switch {
	case seq == 0:
	case width <= 0:
		n += seq + 1
	default:
		n += seq + (seq+width-1)/width
	}
	return n
}

func writeRecord(sb *strings.Builder, rec Record, width int) {
	sb.WriteByte(Marker)
	sb.WriteString(rec.ID)
	if rec.Description != "" {
		sb.WriteByte(' ')
		sb.WriteString(rec.Description)
	}
	sb.WriteByte('\n')

	seq := rec.Sequence
	if width <= 0 {
		if seq != "" {
			sb.WriteString(seq)
			sb.WriteByte('\n')
		}
		return
	}
	for seq != "" {
		i := runeOffset(seq, width)
		sb.WriteString(seq[:i])
		sb.WriteByte('\n')
		seq = seq[i:]
	}
}

// Writer writes records in canonical form through a bufio.Writer.
type Writer struct {
	w     *bufio.Writer
	width int
}

// NewWriter returns a Writer wrapping sequences at width characters.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{
		w:     bufio.NewWriter(w),
		width: width,
	}
}

// Write writes a single record and returns the number of bytes written.
func (w *Writer) Write(rec Record) (int, error) {
	return WriteRecord(w.w, rec, w.width)
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
