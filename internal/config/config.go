// Package config loads mmctl settings from an optional YAML file.
//
//	backing: file          # mem | file
//	heap_file: /tmp/heap.bin
//	max_heap: 64MiB        # humanized sizes accepted
//	check_every: 1000      # run the heap checker every N ops (0 = off)
//	log:
//	  level: debug
//	  json: true
//	  dir: /var/log/mmctl
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/heapkit/heap/sbrk"
	"github.com/joshuapare/heapkit/internal/format"
)

// Backing selects the heap-extend implementation.
type Backing string

const (
	BackingMem  Backing = "mem"
	BackingFile Backing = "file"
)

// ErrInvalid indicates a configuration value out of range.
var ErrInvalid = errors.New("config: invalid value")

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir"`
}

// Config is the full mmctl configuration.
type Config struct {
	Backing    Backing `yaml:"backing"`
	HeapFile   string  `yaml:"heap_file"`
	MaxHeap    Size    `yaml:"max_heap"`
	CheckEvery int     `yaml:"check_every"`
	Log        Log     `yaml:"log"`
}

// Size is a byte count that unmarshals from either an integer or a
// humanized string such as "20MiB".
type Size int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: size must be a scalar (line %d)", ErrInvalid, n.Line)
	}
	v, err := humanize.ParseBytes(n.Value)
	if err != nil {
		return fmt.Errorf("%w: size %q (line %d): %w", ErrInvalid, n.Value, n.Line, err)
	}
	*s = Size(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Size) MarshalYAML() (any, error) {
	return humanize.IBytes(uint64(s)), nil
}

func (s Size) String() string { return humanize.IBytes(uint64(s)) }

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Backing: BackingMem,
		MaxHeap: Size(sbrk.DefaultMaxHeap),
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := Decode(f, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg and validates the result. Unknown keys
// are rejected.
func Decode(r io.Reader, cfg *Config) error {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Backing {
	case BackingMem:
	case BackingFile:
		if c.HeapFile == "" {
			return fmt.Errorf("%w: backing %q needs heap_file", ErrInvalid, c.Backing)
		}
	default:
		return fmt.Errorf("%w: backing %q (want mem or file)", ErrInvalid, c.Backing)
	}
	if c.MaxHeap <= 0 || int64(c.MaxHeap) > format.MaxHeapSize {
		return fmt.Errorf("%w: max_heap %d out of range", ErrInvalid, int64(c.MaxHeap))
	}
	if c.CheckEvery < 0 {
		return fmt.Errorf("%w: check_every %d", ErrInvalid, c.CheckEvery)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses the log level name.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return l, nil
}
