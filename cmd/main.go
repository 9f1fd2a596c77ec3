package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/magwenelab-rust/fasta/internal/config"
	"github.com/magwenelab-rust/fasta/internal/fasta"
	"github.com/magwenelab-rust/fasta/internal/seqio"

	"github.com/charmbracelet/log"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// defaultSummary is how many records are printed after parsing when neither
// the flag nor the config choose a count.
const defaultSummary = 5

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next Write
			t.buf.Reset()
			t.buf.WriteString(line)
			break
		}
		now := time.Now
		if t.now != nil {
			now = t.now
		}
		ts := now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// parseLevel maps a config log_level to a charm log level.
func parseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	}
	return log.InfoLevel, false
}

// job is one parse run over an input stream.
type job struct {
	in        string
	out       string // canonical FASTA output, empty to skip
	width     int
	opts      []fasta.Option
	keepGoing bool // log and skip malformed headers
	summary   int  // records to print after parsing
}

type result struct {
	stats   fasta.Stats
	skipped int
	head    []fasta.Record
	elapsed time.Duration
}

// run streams every record of j.in, re-rendering it to j.out when set.
// On any error the partially written output is removed.
func run(logger *log.Logger, j job) (_ *result, err error) {
	r, err := seqio.Open(j.in)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var (
		wc io.WriteCloser
		fw *fasta.Writer
	)
	if j.out != "" {
		wc, err = seqio.Create(j.out)
		if err != nil {
			return nil, err
		}
		// Close after the explicit Close below is a no-op
		defer func() {
			if err != nil {
				_ = seqio.Abort(wc)
				return
			}
			wc.Close()
		}()
		fw = fasta.NewWriter(wc, j.width)
	}

	res := &result{}
	start := time.Now()
	b := fasta.NewBuffer(r, j.opts...)
	for rec, err := range b.All() {
		if err != nil {
			if j.keepGoing && errors.Is(err, fasta.ErrMalformedHeader) {
				logger.Warn("skipping malformed header", "path", j.in, "err", err)
				res.skipped++
				continue
			}
			return nil, fmt.Errorf("parse %s: %w", j.in, err)
		}
		res.stats.Add(rec)
		if len(res.head) < j.summary {
			res.head = append(res.head, rec)
		}
		if fw != nil {
			if _, err := fw.Write(rec); err != nil {
				return nil, fmt.Errorf("write %s: %w", j.out, err)
			}
		}
	}
	res.elapsed = time.Since(start)
	logger.Debug("input consumed", "path", j.in, "lines", b.Line())

	if fw != nil {
		if err := fw.Flush(); err != nil {
			return nil, fmt.Errorf("write %s: %w", j.out, err)
		}
		if err := wc.Close(); err != nil {
			return nil, fmt.Errorf("close %s: %w", j.out, err)
		}
		logger.Info("wrote canonical fasta", "path", j.out, "records", res.stats.Records, "wrap_width", j.width)
	}
	return res, nil
}

func main() {
	os.Exit(cli(os.Args[1:], os.Stdout, os.Stderr))
}

// cli runs the command with args and returns the process exit code.
// Deferred cleanup such as closing the log file runs before it returns.
func cli(args []string, stdout, stderr io.Writer) int {
	// CLI flags
	fs := flag.NewFlagSet("fasta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputFlag := fs.String("in", "", "input FASTA file path, '-' for stdin (gzip/zstd/brotli accepted)")
	outputFlag := fs.String("out", "", "write canonical FASTA to this path, '-' for stdout (compressed by extension)")
	configFlag := fs.String("config", "", "path to config.json (optional)")
	widthFlag := fs.Int("width", 0, "sequence wrap width for -out; 0 uses config or default, negative disables wrapping")
	commentsFlag := fs.Bool("comments", false, "skip ';' comment lines")
	keepGoing := fs.Bool("keep-going", false, "log and skip records with malformed headers instead of stopping")
	summaryFlag := fs.Int("summary", defaultSummary, "number of records to print after parsing")
	verbose := fs.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *versionFlag {
		fmt.Fprintln(stdout, "fasta", version)
		return 0
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// load config (optional file)
	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	// merge CLI flags into config (flags override config when provided)
	if *inputFlag != "" {
		cfg.InputFasta = *inputFlag
	}
	if cfg.InputFasta == "" {
		cfg.InputFasta = seqio.Stdio
	}
	if *outputFlag != "" {
		cfg.OutputFasta = *outputFlag
	}
	if *widthFlag != 0 {
		cfg.WrapWidth = *widthFlag
	}
	if *commentsFlag {
		cfg.SkipComments = true
	}
	summary := cfg.Summary(defaultSummary)
	if set["summary"] {
		summary = *summaryFlag
	}

	// configure logger output
	loggerOut := stderr
	var logFileHandle *os.File
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(stderr, f)
			logFileHandle = f
			defer func() { _ = logFileHandle.Close() }()
		}
	}
	// create logger backed by the timestamping writer and expose Fd so charm.log can detect TTY
	var logW io.Writer = &timestampWriter{w: loggerOut}
	if f, ok := stderr.(*os.File); ok {
		logW = &terminalWriter{w: logW, fd: f.Fd()}
	}
	logger := log.New(logW)

	// apply log level from flags/config (flags override config)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		level, ok := parseLevel(cfg.LogLevel)
		logger.SetLevel(level)
		if !ok {
			logger.Warn("unknown log_level in config.json, defaulting to info", "provided", cfg.LogLevel)
		}
	}

	logger.Debug("loaded config", "input_fasta", cfg.InputFasta, "output_fasta", cfg.OutputFasta, "log_file", cfg.LogFile, "log_level", cfg.LogLevel, "wrap_width", cfg.Width(), "skip_comments", cfg.SkipComments)
	if cfg.LogFile != "" && logFileHandle == nil {
		logger.Warn("log_file specified but could not be opened; logging to stderr only", "path", cfg.LogFile)
	}

	j := job{
		in:        cfg.InputFasta,
		out:       cfg.OutputFasta,
		width:     cfg.Width(),
		opts:      cfg.Options(),
		keepGoing: *keepGoing,
		summary:   summary,
	}
	if j.out == seqio.Stdio {
		// records go to stdout, keep it clean
		j.summary = 0
	}

	res, err := run(logger, j)
	if err != nil {
		logger.Error("failed to process fasta", "err", err)
		return 1
	}

	st := res.stats
	logger.Info("parsed fasta", "path", j.in, "records", st.Records, "residues", st.Residues, "skipped", res.skipped, "duration_ms", res.elapsed.Milliseconds())
	logger.Debug("sequence lengths", "min", st.MinLen, "max", st.MaxLen, "mean", fmt.Sprintf("%.1f", st.MeanLen()), "empty", st.Empty)

	for _, rec := range res.head {
		fmt.Fprintln(stdout, rec)
	}
	return 0
}
