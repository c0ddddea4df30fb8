package format

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ideadensity/internal/scorer"
)

// JSON writes the batch report of results as indented JSON.
func JSON(w io.Writer, results ...*scorer.Result) error {
	return EncodeJSON(w, NewBatch(results...))
}

// EncodeJSON writes b as indented JSON.
func EncodeJSON(w io.Writer, b Batch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// ParseJSON reads a report written by JSON. Unknown fields are rejected.
func ParseJSON(r io.Reader) (Batch, error) {
	var b Batch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("parse json report: %w", err)
	}
	return b, nil
}

// YAML writes the batch report of results as YAML.
func YAML(w io.Writer, results ...*scorer.Result) error {
	return EncodeYAML(w, NewBatch(results...))
}

// EncodeYAML writes b as YAML.
func EncodeYAML(w io.Writer, b Batch) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}

// ParseYAML reads a report written by YAML. Unknown fields are rejected.
func ParseYAML(r io.Reader) (Batch, error) {
	var b Batch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("parse yaml report: %w", err)
	}
	return b, nil
}
