package format

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/roach88/ideadensity/internal/scorer"
)

// Name selects an output format.
type Name string

const (
	NameText  Name = "text"
	NameJSON  Name = "json"
	NameYAML  Name = "yaml"
	NameTable Name = "table"
	NameCPIDR Name = "cpidr"
	NameCSV   Name = "csv"
	NameXLSX  Name = "xlsx"
)

// Names lists every format in the order shown by --help.
var Names = []Name{NameText, NameJSON, NameYAML, NameTable, NameCPIDR, NameCSV, NameXLSX}

// ParseName validates a format name.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(s))
	if slices.Contains(Names, n) {
		return n, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of %s", s, strings.Join(NameStrings(), ", "))
}

// NameStrings returns Names as strings.
func NameStrings() []string {
	out := make([]string, len(Names))
	for i, n := range Names {
		out[i] = string(n)
	}
	return out
}

// NeedsDetail reports whether the format lists individual words, so the
// results must be scored with annotations kept.
func (n Name) NeedsDetail() bool {
	switch n {
	case NameTable, NameCPIDR, NameCSV, NameXLSX:
		return true
	}
	return false
}

// Binary reports whether the format should not be written to a terminal.
func (n Name) Binary() bool {
	return n == NameXLSX
}

// Write renders results in format n.
func Write(w io.Writer, n Name, results ...*scorer.Result) error {
	switch n {
	case NameText:
		return Text(w, results...)
	case NameJSON:
		return JSON(w, results...)
	case NameYAML:
		return YAML(w, results...)
	case NameTable:
		return Table(w, results...)
	case NameCPIDR:
		return CPIDR(w, results...)
	case NameCSV:
		return CSV(w, results...)
	case NameXLSX:
		return XLSX(w, results...)
	}
	return fmt.Errorf("unknown format %q", n)
}
