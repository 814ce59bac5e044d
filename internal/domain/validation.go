package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validatable describes one input value and the rules it has to satisfy.
// Length rules only apply to text values and range rules only to numbers.
type Validatable struct {
	Text     string
	Number   float64
	IsNumber bool

	Required  bool
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
	Integer   bool
}

// TextValue starts a rule set for a text value.
func TextValue(s string) Validatable {
	return Validatable{Text: s}
}

// NumberValue starts a rule set for a numeric value.
func NumberValue(n float64) Validatable {
	return Validatable{Number: n, IsNumber: true}
}

// WithRequired requires a non-blank value.
func (v Validatable) WithRequired() Validatable {
	v.Required = true
	return v
}

// WithMinLength sets the minimum rune count.
func (v Validatable) WithMinLength(n int) Validatable {
	v.MinLength = &n
	return v
}

// WithMaxLength sets the maximum rune count.
func (v Validatable) WithMaxLength(n int) Validatable {
	v.MaxLength = &n
	return v
}

// WithMin sets the inclusive lower bound.
func (v Validatable) WithMin(n float64) Validatable {
	v.Min = &n
	return v
}

// WithMax sets the inclusive upper bound.
func (v Validatable) WithMax(n float64) Validatable {
	v.Max = &n
	return v
}

// WithInteger rejects numbers with a fractional part.
func (v Validatable) WithInteger() Validatable {
	v.Integer = true
	return v
}

// String renders the value the way the required rule inspects it.
func (v Validatable) String() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Violations lists every failed rule. An empty result means the value is valid.
func (v Validatable) Violations() []string {
	var out []string
	if v.Required && strings.TrimSpace(v.String()) == "" {
		out = append(out, "required")
	}
	if !v.IsNumber {
		n := utf8.RuneCountInString(v.Text)
		if v.MinLength != nil && n < *v.MinLength {
			out = append(out, fmt.Sprintf("min_length=%d", *v.MinLength))
		}
		if v.MaxLength != nil && n > *v.MaxLength {
			out = append(out, fmt.Sprintf("max_length=%d", *v.MaxLength))
		}
		return out
	}
	// NaN compares false against every bound, so it fails any range rule.
	if v.Min != nil && !(v.Number >= *v.Min) {
		out = append(out, fmt.Sprintf("min=%g", *v.Min))
	}
	if v.Max != nil && !(v.Number <= *v.Max) {
		out = append(out, fmt.Sprintf("max=%g", *v.Max))
	}
	if v.Integer && (math.IsNaN(v.Number) || math.IsInf(v.Number, 0) || v.Number != math.Trunc(v.Number)) {
		out = append(out, "integer")
	}
	return out
}

// Validate reports whether every rule on v holds.
func Validate(v Validatable) bool {
	return len(v.Violations()) == 0
}

// ParseNumber coerces form input into a number. Blank input is zero and
// unparseable input is NaN, which fails any range rule.
func ParseNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}
