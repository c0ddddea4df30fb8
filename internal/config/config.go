// Package config loads the YAML run configuration of idensity.
//
// Every field has a command-line flag of the same meaning; a flag given on
// the command line wins over the file. Unknown keys are rejected so that a
// misspelt option is never silently ignored.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ideadensity/internal/ir"
)

// Config is the complete run configuration.
type Config struct {
	// Format is the output format name (text, json, yaml, table, cpidr,
	// csv, xlsx).
	Format   string         `yaml:"format"`
	LogLevel string         `yaml:"log_level"`
	Score    ScoreConfig    `yaml:"score"`
	Language LanguageConfig `yaml:"language"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ScoreConfig selects the rules and how sentences are scored.
type ScoreConfig struct {
	// Profile names a CUE rule profile (default "cpidr").
	Profile     string `yaml:"profile"`
	ProfilesDir string `yaml:"profiles_dir"`
	// Speech, Enable and Disable are applied on top of the profile.
	Speech  bool      `yaml:"speech"`
	Enable  []ir.Code `yaml:"enable,omitempty"`
	Disable []ir.Code `yaml:"disable,omitempty"`
	// Detail keeps per-word annotations for formats that do not need them.
	Detail      bool   `yaml:"detail"`
	Workers     int    `yaml:"workers"`
	InputFormat string `yaml:"input_format"`
}

// LanguageConfig configures the English guard.
type LanguageConfig struct {
	Check  bool `yaml:"check"`
	Strict bool `yaml:"strict"`
}

// ArchiveConfig configures the SQLite result archive.
type ArchiveConfig struct {
	// DB is the database path; empty disables archiving.
	DB string `yaml:"db"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	// File is the textfile path; empty disables the export.
	File string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Format:   "text",
		LogLevel: "warn",
		Score: ScoreConfig{
			Profile: "cpidr",
			Workers: 1,
		},
	}
}

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	inputFormats = []string{"", "json", "conllu"}
)

// Validate checks field values that YAML decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	if !contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q must be one of %s", c.LogLevel, strings.Join(logLevels, ", ")))
	}
	if c.Score.Workers < 0 {
		errs = append(errs, fmt.Errorf("score.workers must not be negative, got %d", c.Score.Workers))
	}
	if !contains(inputFormats, c.Score.InputFormat) {
		errs = append(errs, fmt.Errorf("score.input_format %q must be json or conllu", c.Score.InputFormat))
	}
	if c.Language.Strict && !c.Language.Check {
		errs = append(errs, errors.New("language.strict requires language.check"))
	}
	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == strings.ToLower(s) {
			return true
		}
	}
	return false
}

// Parse reads a configuration over the defaults.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", nameKeys(data, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var lineRe = regexp.MustCompile(`^line (\d+): `)

// nameKeys prefixes each message of a *yaml.TypeError with the dotted key
// at its line ("score.workers: line 2: cannot unmarshal ..."). yaml.v3
// reports only line numbers.
func nameKeys(data []byte, err error) error {
	var te *yaml.TypeError
	if !errors.As(err, &te) {
		return err
	}
	var root yaml.Node
	if yaml.Unmarshal(data, &root) != nil {
		return err
	}
	named := &yaml.TypeError{Errors: make([]string, len(te.Errors))}
	for i, msg := range te.Errors {
		named.Errors[i] = msg
		m := lineRe.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[1])
		if key := keyAt(&root, line, ""); key != "" {
			named.Errors[i] = key + ": " + msg
		}
	}
	return named
}

// keyAt returns the dotted path of the mapping key whose entry starts on
// line, or "".
func keyAt(n *yaml.Node, line int, prefix string) string {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if k := keyAt(c, line, prefix); k != "" {
				return k
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			path := key.Value
			if prefix != "" {
				path = prefix + "." + key.Value
			}
			if k := keyAt(val, line, path); k != "" {
				return k
			}
			if key.Line == line || (val.Kind == yaml.ScalarNode && val.Line == line) {
				return path
			}
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if c.Line == line {
				return prefix
			}
		}
	}
	return ""
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}
