package fasta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string, opts ...Option) []Record {
	t.Helper()
	recs, err := ReadAll(strings.NewReader(input), opts...)
	require.NoError(t, err)
	return recs
}

func TestBuffer_Next(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  []Record
	}{
		{
			name:  "multi-line sequence",
			input: ">a desc\nAAAA\nCCCC\n",
			want:  []Record{{ID: "a", Description: "desc", Sequence: "AAAACCCC"}},
		},
		{
			name:  "blank line inside record",
			input: ">a\nAAAA\n\nCCCC\n",
			want:  []Record{{ID: "a", Sequence: "AAAACCCC"}},
		},
		{
			name:  "no trailing newline",
			input: ">a\nAAAA",
			want:  []Record{{ID: "a", Sequence: "AAAA"}},
		},
		{
			name:  "empty sequence header",
			input: ">a\n>b\nAAAA\n",
			want: []Record{
				{ID: "a"},
				{ID: "b", Sequence: "AAAA"},
			},
		},
		{
			name:  "header at end of input",
			input: ">a\nAC\n>b",
			want: []Record{
				{ID: "a", Sequence: "AC"},
				{ID: "b"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "no header lines",
			input: "AAAA\nCCCC\n",
			want:  nil,
		},
		{
			name:  "sequence before first header is ignored",
			input: "NNNN\n>a\nAC\n",
			want:  []Record{{ID: "a", Sequence: "AC"}},
		},
		{
			name:  "leading blank lines",
			input: "\n\n  \t\n>a\nAC\n",
			want:  []Record{{ID: "a", Sequence: "AC"}},
		},
		{
			name:  "crlf line endings",
			input: ">a x\r\nAC\r\nGT\r\n",
			want:  []Record{{ID: "a", Description: "x", Sequence: "ACGT"}},
		},
		{
			name:  "description keeps inner whitespace",
			input: ">a \t two  words\nAC\n",
			want:  []Record{{ID: "a", Description: "two  words", Sequence: "AC"}},
		},
		{
			name:  "case preserved",
			input: ">a\nacgtNNnn\n",
			want:  []Record{{ID: "a", Sequence: "acgtNNnn"}},
		},
		{
			name:  "semicolon line is sequence by default",
			input: ">a\n;note\nAC\n",
			want:  []Record{{ID: "a", Sequence: ";noteAC"}},
		},
		{
			name:  "comments skipped when enabled",
			input: ">a\n;note\nAC\n",
			opts:  []Option{WithComments()},
			want:  []Record{{ID: "a", Sequence: "AC"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, tt.input, tt.opts...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuffer_ExhaustionIsIdempotent(t *testing.T) {
	b := NewBuffer(strings.NewReader(">a\nAC\n"))

	rec, err := b.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", rec.ID)

	for i := 0; i < 3; i++ {
		rec, err = b.Next()
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, Record{}, rec)
	}
	assert.True(t, b.Done())
	assert.NoError(t, b.Err())
	assert.Equal(t, 2, b.Line())
}

func TestBuffer_MalformedHeader(t *testing.T) {
	t.Run("only marker", func(t *testing.T) {
		b := NewBuffer(strings.NewReader(">\nAAAA\n"))

		_, err := b.Next()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedHeader)

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 1, perr.Line)
		assert.Equal(t, ">", perr.Text)

		_, err = b.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("marker followed by whitespace", func(t *testing.T) {
		_, err := NewBuffer(strings.NewReader("> a\nAC\n")).Next()
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})

	t.Run("parsing continues after a bad header", func(t *testing.T) {
		b := NewBuffer(strings.NewReader(">a\nAC\n>\nGG\n>b\nTT\n"))

		rec, err := b.Next()
		require.NoError(t, err)
		assert.Equal(t, Record{ID: "a", Sequence: "AC"}, rec)

		_, err = b.Next()
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 3, perr.Line)
		assert.False(t, b.Done())

		rec, err = b.Next()
		require.NoError(t, err)
		assert.Equal(t, Record{ID: "b", Sequence: "TT"}, rec)

		_, err = b.Next()
		assert.Equal(t, io.EOF, err)
	})
}

func TestBuffer_ReadError(t *testing.T) {
	errBoom := errors.New("boom")
	src := io.MultiReader(strings.NewReader(">a\nAC\n"), iotest.ErrReader(errBoom))
	b := NewBuffer(src)

	rec, err := b.Next()
	require.Error(t, err)
	assert.Equal(t, Record{}, rec)
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrMalformedHeader)

	var rerr *ReadError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 3, rerr.Line)

	// poisoned: the same failure is reported again
	_, err2 := b.Next()
	assert.Equal(t, err, err2)
	assert.True(t, b.Done())
	assert.Equal(t, err, b.Err())
}

func TestBuffer_InvalidEncoding(t *testing.T) {
	b := NewBuffer(strings.NewReader(">a\nAC\xff\n>b\nGG\n"))

	_, err := b.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.NotErrorIs(t, err, ErrMalformedHeader)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)

	_, err2 := b.Next()
	assert.Equal(t, err, err2)
	assert.True(t, b.Done())
}

func TestBuffer_LineReaderSource(t *testing.T) {
	// *bytes.Buffer is used directly without extra buffering
	src := bytes.NewBufferString(">a\nAC\n>b\nGT\n")
	b := NewBuffer(src)
	assert.Same(t, src, b.r)

	var ids []string
	for rec, err := range b.All() {
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestBuffer_All(t *testing.T) {
	t.Run("yields malformed headers and continues", func(t *testing.T) {
		b := NewBuffer(strings.NewReader(">a\nAC\n>\nGG\n>b\nTT\n"))
		var ids []string
		var errs []error
		for rec, err := range b.All() {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			ids = append(ids, rec.ID)
		}
		assert.Equal(t, []string{"a", "b"}, ids)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrMalformedHeader)
	})

	t.Run("stops after fatal error", func(t *testing.T) {
		b := NewBuffer(strings.NewReader(">a\nAC\n>b\n\xfe\n>c\nGG\n"))
		var n, nerr int
		for _, err := range b.All() {
			if err != nil {
				nerr++
				continue
			}
			n++
		}
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, nerr)
	})

	t.Run("consumer can stop early", func(t *testing.T) {
		b := NewBuffer(strings.NewReader(">a\nAC\n>b\nGT\n>c\nTT\n"))
		for rec, err := range b.All() {
			require.NoError(t, err)
			assert.Equal(t, "a", rec.ID)
			break
		}
		rec, err := b.Next()
		require.NoError(t, err)
		assert.Equal(t, "b", rec.ID)
	})
}

func TestReadAll_StopsAtFirstError(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(">a\nAC\n>\nGG\n>b\nTT\n"))
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.Equal(t, []Record{{ID: "a", Sequence: "AC"}}, recs)
}

func TestOrderPreserved(t *testing.T) {
	var sb strings.Builder
	const n = 250
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, ">seq%d record %d\nACGT\nTT\n", i, i)
	}
	recs := readAll(t, sb.String())
	require.Len(t, recs, n)
	for i, rec := range recs {
		assert.Equal(t, fmt.Sprintf("seq%d", i), rec.ID)
		assert.Equal(t, fmt.Sprintf("record %d", i), rec.Description)
		assert.Equal(t, "ACGTTT", rec.Sequence)
	}
}

func randomRecord(rnd *rand.Rand) Record {
	const idChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_.|:"
	const seqChars = "ACGTNacgtn-*RYKM"
	const descChars = "abcdef XYZ=0123,;()[]"

	pick := func(alphabet string, n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rnd.Intn(len(alphabet))]
		}
		return string(b)
	}

	rec := Record{
		ID:       pick(idChars, 1+rnd.Intn(20)),
		Sequence: pick(seqChars, rnd.Intn(400)),
	}
	if rnd.Intn(3) > 0 {
		// descriptions never start with whitespace
		rec.Description = "d" + pick(descChars, rnd.Intn(40))
	}
	return rec
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, width := range []int{1, 7, 60, 70, DefaultWrapWidth, 0, -1} {
		t.Run(fmt.Sprintf("width=%d", width), func(t *testing.T) {
			want := make([]Record, 50)
			var buf bytes.Buffer
			w := NewWriter(&buf, width)
			for i := range want {
				want[i] = randomRecord(rnd)
				_, err := w.Write(want[i])
				require.NoError(t, err)
			}
			require.NoError(t, w.Flush())

			got := readAll(t, buf.String())
			assert.Equal(t, want, got)
		})
	}
}

func TestRoundTrip_NormalizedDescription(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{desc: "  lead", want: "lead"},
		{desc: "\tlead tab", want: "lead tab"},
		{desc: "cr\r", want: "cr"},
		{desc: "trail ", want: "trail "},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.desc), func(t *testing.T) {
			text := Format(Record{ID: "a", Description: tt.desc, Sequence: "ACGT"}, DefaultWrapWidth)
			got := readAll(t, text)
			require.Len(t, got, 1)
			assert.Equal(t, Record{ID: "a", Description: tt.want, Sequence: "ACGT"}, got[0])
		})
	}
}
