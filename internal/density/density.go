// Package density computes propositional idea density, the ratio of
// propositions to words.
package density

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Undefined is the serialized value of a density over zero words.
const Undefined = "undefined"

// Ratio is a proposition count over a word count.
type Ratio struct {
	Propositions int
	Words        int
}

// Of returns the ratio props/words.
func Of(props, words int) Ratio {
	return Ratio{Propositions: props, Words: words}
}

// Value returns the density. ok is false when there are no words, in
// which case the density is undefined rather than zero or NaN.
func (r Ratio) Value() (float64, bool) {
	if r.Words == 0 {
		return 0, false
	}
	return float64(r.Propositions) / float64(r.Words), true
}

// Defined reports whether the ratio has any words.
func (r Ratio) Defined() bool { return r.Words > 0 }

// Format renders the density with prec decimals, or "undefined".
func (r Ratio) Format(prec int) string {
	v, ok := r.Value()
	if !ok {
		return Undefined
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// String renders the density with three decimals, as CPIDR does.
func (r Ratio) String() string {
	return r.Format(3)
}

// Add returns the sum of two ratios (numerators and denominators added).
func (r Ratio) Add(o Ratio) Ratio {
	return Ratio{Propositions: r.Propositions + o.Propositions, Words: r.Words + o.Words}
}

// Sum aggregates ratios. The density of the sum is the whole-text density.
func Sum(rs ...Ratio) Ratio {
	var total Ratio
	for _, r := range rs {
		total = total.Add(r)
	}
	return total
}

// Mean returns the unweighted mean of the defined densities. It is not
// the whole-text density and is reported for comparison only.
func Mean(rs ...Ratio) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range rs {
		if v, ok := r.Value(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Density is a serializable density value: a number, or the string
// "undefined" when there were no words.
type Density struct {
	Value   float64
	Defined bool
}

// From returns the density of r.
func From(r Ratio) Density {
	v, ok := r.Value()
	return Density{Value: v, Defined: ok}
}

// MarshalJSON implements json.Marshaler.
func (d Density) MarshalJSON() ([]byte, error) {
	if !d.Defined {
		return json.Marshal(Undefined)
	}
	return json.Marshal(d.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Density) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != Undefined {
			return fmt.Errorf("invalid density %q", s)
		}
		*d = Density{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid density: %w", err)
	}
	*d = Density{Value: v, Defined: true}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Density) MarshalYAML() (any, error) {
	if !d.Defined {
		return Undefined, nil
	}
	return d.Value, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Density) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Value == Undefined {
		*d = Density{}
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("invalid density: %w", err)
	}
	*d = Density{Value: v, Defined: true}
	return nil
}
