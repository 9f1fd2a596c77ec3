package fasta

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Marker starts every header line.
const Marker = '>'

// displayLen is how many sequence characters String shows.
const displayLen = 40

// Record represents a single FASTA record (header and sequence).
type Record struct {
	ID          string
	Description string
	Sequence    string
}

// Header returns the header line without the marker.
func (r Record) Header() string {
	if r.Description == "" {
		return r.ID
	}
	return r.ID + " " + r.Description
}

// Len returns the sequence length in characters.
func (r Record) Len() int {
	return utf8.RuneCountInString(r.Sequence)
}

// String returns a short human readable form: the header line followed by
// the first characters of the sequence.
func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte(Marker)
	sb.WriteString(r.Header())
	sb.WriteByte('\n')
	seq := r.Sequence
	if i := runeOffset(seq, displayLen); i < len(seq) {
		sb.WriteString(seq[:i])
		sb.WriteString("...")
	} else {
		sb.WriteString(seq)
	}
	return sb.String()
}

// parseHeader splits header text (marker already removed) into id and
// description. ok is false when the id is empty.
func parseHeader(s string) (id, desc string, ok bool) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", s != ""
	}
	if i == 0 {
		return "", "", false
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace), true
}

// runeOffset returns the byte offset of the n-th rune in s, or len(s).
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
