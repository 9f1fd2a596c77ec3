package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/magwenelab-rust/fasta/internal/fasta"
)

type Config struct {
	InputFasta   string `json:"input_fasta"`
	OutputFasta  string `json:"output_fasta"`
	LogFile      string `json:"log_file"`
	LogLevel     string `json:"log_level"`
	WrapWidth    int    `json:"wrap_width"`
	SkipComments bool   `json:"skip_comments"`
	SummaryCount *int   `json:"summary_count"` // nil when unset; 0 prints no records
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
// A missing file is not an error and yields the zero Config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

// Width returns the sequence wrap width to render with. Zero means the
// default width; a negative value disables wrapping.
func (c *Config) Width() int {
	if c.WrapWidth == 0 {
		return fasta.DefaultWrapWidth
	}
	return c.WrapWidth
}

// Summary returns how many records to print after parsing, or def when the
// config does not say.
func (c *Config) Summary(def int) int {
	if c.SummaryCount == nil {
		return def
	}
	return max(*c.SummaryCount, 0)
}

// Options returns the parser options selected by the config.
func (c *Config) Options() []fasta.Option {
	var opts []fasta.Option
	if c.SkipComments {
		opts = append(opts, fasta.WithComments())
	}
	return opts
}
