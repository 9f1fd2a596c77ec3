// Package seqio opens sequence files that may be compressed with gzip,
// zstd or brotli. It supplies the readable streams consumed by the fasta
// package and the writable streams its Writer renders into.
package seqio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdio is the path meaning stdin for Open and stdout for Create.
const Stdio = "-"

// Compression identifies a stream encoding.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
	Brotli
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// FromPath picks a compression from the file extension.
func FromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	case ".br":
		return Brotli
	}
	return None
}

// Sniff detects gzip and zstd by magic number. Brotli has no magic number
// and is only recognized by extension.
func Sniff(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	}
	return None
}

// readCloser reads from a decompressor and closes both it and the file.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// zstdCloser adapts zstd.Decoder, whose Close returns nothing.
type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}

// Open opens path for reading, or stdin for "-". Compressed content is
// decoded transparently.
func Open(path string) (io.ReadCloser, error) {
	var f io.ReadCloser
	if path == Stdio {
		f = io.NopCloser(os.Stdin)
	} else {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		f = fh
	}
	rc, err := NewReader(f, FromPath(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return rc, nil
}

// NewReader wraps f with a decompressor. The compression is taken from the
// stream's magic number, falling back to hint. Closing the result closes f.
func NewReader(f io.ReadCloser, hint Compression) (io.ReadCloser, error) {
	br := bufio.NewReader(f)
	head, _ := br.Peek(len(zstdMagic))
	c := Sniff(head)
	if c == None {
		c = hint
	}
	switch c {
	case Gzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: gr, closers: []io.Closer{gr, f}}, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zstdCloser{zr}, f}}, nil
	case Brotli:
		return &readCloser{Reader: brotli.NewReader(br), closers: []io.Closer{f}}, nil
	}
	return &readCloser{Reader: br, closers: []io.Closer{f}}, nil
}

// writeCloser compresses into a file. A failed write or close removes the
// partially written file.
type writeCloser struct {
	w      io.WriteCloser // compressor, nil when writing plain text
	f      io.WriteCloser
	path   string // removed on failure, empty for stdout
	failed bool
	closed bool
}

func (wc *writeCloser) Write(p []byte) (int, error) {
	dst := wc.f
	if wc.w != nil {
		dst = wc.w
	}
	n, err := dst.Write(p)
	if err != nil {
		wc.failed = true
	}
	return n, err
}

func (wc *writeCloser) Close() error {
	if wc.closed {
		return nil
	}
	wc.closed = true
	var err error
	if wc.w != nil {
		err = wc.w.Close()
	}
	if cerr := wc.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if (err != nil || wc.failed) && wc.path != "" {
		os.Remove(wc.path)
	}
	return err
}

// Abort closes a stream returned by Create or NewWriter and removes the
// file it was writing, leaving no partial output behind. Other closers are
// just closed.
func Abort(w io.WriteCloser) error {
	if wc, ok := w.(*writeCloser); ok {
		wc.failed = true
	}
	return w.Close()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Create creates path for writing, or writes to stdout for "-". The output
// is compressed according to the file extension.
func Create(path string) (io.WriteCloser, error) {
	if path == Stdio {
		return &writeCloser{f: nopWriteCloser{os.Stdout}}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wc, err := newWriteCloser(f, FromPath(path))
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	wc.path = path
	return wc, nil
}

// NewWriter wraps f with a compressor for c. Closing the result flushes the
// compressor and closes f.
func NewWriter(f io.WriteCloser, c Compression) (io.WriteCloser, error) {
	wc, err := newWriteCloser(f, c)
	if err != nil {
		return nil, err
	}
	return wc, nil
}

func newWriteCloser(f io.WriteCloser, c Compression) (*writeCloser, error) {
	wc := &writeCloser{f: f}
	switch c {
	case Gzip:
		wc.w = gzip.NewWriter(f)
	case Zstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return nil, err
		}
		wc.w = zw
	case Brotli:
		wc.w = brotli.NewWriter(f)
	}
	return wc, nil
}
